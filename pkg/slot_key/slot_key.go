package slot_key

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/klokku/studyplan/pkg/calendar_date"
)

var ErrInvalidKey = errors.New("invalid composite key")

const (
	FirstHour = 9
	LastHour  = 22
	DaysCount = 7
	// HoursCount is the number of hourly slots in a day of the grid.
	HoursCount = LastHour - FirstHour + 1
)

// DayKey identifies a day of the week grid, day1 is Monday and day7 is Sunday.
type DayKey string

// HourKey identifies an hourly slot, hour9 to hour22.
type HourKey string

// CompositeKey joins a schedule slot with its achievement record:
// "YYYY-MM-DD_dayN_hourH".
type CompositeKey string

type Parts struct {
	DateStr string
	DayKey  DayKey
	HourKey HourKey
}

var dayKeys = func() []DayKey {
	keys := make([]DayKey, 0, DaysCount)
	for i := 1; i <= DaysCount; i++ {
		keys = append(keys, DayKey("day"+strconv.Itoa(i)))
	}
	return keys
}()

var hourKeys = func() []HourKey {
	keys := make([]HourKey, 0, HoursCount)
	for h := FirstHour; h <= LastHour; h++ {
		keys = append(keys, HourKey("hour"+strconv.Itoa(h)))
	}
	return keys
}()

// DayKeys returns day1..day7 in order.
func DayKeys() []DayKey {
	return append([]DayKey(nil), dayKeys...)
}

// HourKeys returns hour9..hour22 in order.
func HourKeys() []HourKey {
	return append([]HourKey(nil), hourKeys...)
}

// DayKeyForWeekday maps Monday to day1 and Sunday to day7.
func DayKeyForWeekday(weekday time.Weekday) DayKey {
	if weekday == time.Sunday {
		return dayKeys[6]
	}
	return dayKeys[int(weekday)-1]
}

// HourKeyFor returns the key for an hour of the day and whether that hour is on the grid.
func HourKeyFor(hour int) (HourKey, bool) {
	if hour < FirstHour || hour > LastHour {
		return "", false
	}
	return hourKeys[hour-FirstHour], true
}

// Index returns the zero based offset of the day from Monday, or -1 when the key is unknown.
func (d DayKey) Index() int {
	n, ok := keyNumber(string(d), "day")
	if !ok || n < 1 || n > DaysCount {
		return -1
	}
	return n - 1
}

func (d DayKey) Valid() bool {
	return d.Index() >= 0
}

// Hour returns the hour of the day, or -1 when the key is unknown.
func (h HourKey) Hour() int {
	n, ok := keyNumber(string(h), "hour")
	if !ok || n < FirstHour || n > LastHour {
		return -1
	}
	return n
}

func (h HourKey) Valid() bool {
	return h.Hour() >= 0
}

// MakeKey is the single place where composite keys are built. The date is
// always formatted through CalendarDate so time of day can never leak in.
func MakeKey(date calendar_date.CalendarDate, day DayKey, hour HourKey) CompositeKey {
	return CompositeKey(date.String() + "_" + string(day) + "_" + string(hour))
}

// ParseKey splits a composite key back into its parts.
func ParseKey(key CompositeKey) (Parts, error) {
	segments := strings.Split(string(key), "_")
	if len(segments) < 3 {
		return Parts{}, fmt.Errorf("%w: %q has %d segments", ErrInvalidKey, key, len(segments))
	}
	parts := Parts{
		DateStr: segments[0],
		DayKey:  DayKey(segments[1]),
		HourKey: HourKey(segments[2]),
	}
	if _, err := calendar_date.ParseString(parts.DateStr); err != nil {
		return Parts{}, fmt.Errorf("%w: %q: %v", ErrInvalidKey, key, err)
	}
	if !parts.DayKey.Valid() || !parts.HourKey.Valid() {
		return Parts{}, fmt.Errorf("%w: %q: unknown day or hour", ErrInvalidKey, key)
	}
	return parts, nil
}

// Date returns the parsed calendar date of the key.
func (p Parts) Date() calendar_date.CalendarDate {
	d, _ := calendar_date.ParseString(p.DateStr)
	return d
}

func (k CompositeKey) String() string {
	return string(k)
}

func keyNumber(key string, prefix string) (int, bool) {
	if !strings.HasPrefix(key, prefix) {
		return 0, false
	}
	digits := key[len(prefix):]
	if digits == "" || digits[0] == '0' || digits[0] == '+' || digits[0] == '-' {
		return 0, false
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return n, true
}
