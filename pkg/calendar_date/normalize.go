package calendar_date

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// Input is one of the accepted date representations: StringDate, NativeDate,
// EpochTimestamp or EpochMillis.
type Input interface {
	dateInput()
}

// StringDate is an ISO-8601 date or date-time string.
type StringDate string

// NativeDate wraps a time.Time value.
type NativeDate struct {
	time.Time
}

// EpochTimestamp is a document-store timestamp object.
type EpochTimestamp struct {
	Seconds     int64 `json:"seconds"`
	Nanoseconds int64 `json:"nanoseconds"`
}

// EpochMillis is milliseconds since the Unix epoch.
type EpochMillis int64

func (StringDate) dateInput()     {}
func (NativeDate) dateInput()     {}
func (EpochTimestamp) dateInput() {}
func (EpochMillis) dateInput()    {}

var stringLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.000",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// Parse converts in to a CalendarDate in loc. Date-only strings are taken as
// calendar days as-is; anything carrying a time of day is first moved to loc.
func Parse(in Input, loc *time.Location) (CalendarDate, error) {
	if loc == nil {
		loc = time.Local
	}
	var t time.Time
	switch v := in.(type) {
	case StringDate:
		s := strings.TrimSpace(string(v))
		if d, err := ParseString(s); err == nil {
			return checkRange(d)
		}
		parsed, ok := parseDateTime(s, loc)
		if !ok {
			return CalendarDate{}, fmt.Errorf("%w: unparseable string %q", ErrInvalidDate, s)
		}
		t = parsed
	case NativeDate:
		if v.IsZero() {
			return CalendarDate{}, fmt.Errorf("%w: zero time", ErrInvalidDate)
		}
		t = v.Time
	case EpochTimestamp:
		if v.Nanoseconds < 0 || v.Nanoseconds >= int64(time.Second) {
			return CalendarDate{}, fmt.Errorf("%w: nanoseconds out of range: %d", ErrInvalidDate, v.Nanoseconds)
		}
		t = time.Unix(v.Seconds, v.Nanoseconds)
	case EpochMillis:
		t = time.UnixMilli(int64(v))
	case nil:
		return CalendarDate{}, fmt.Errorf("%w: missing", ErrInvalidDate)
	default:
		return CalendarDate{}, fmt.Errorf("%w: unsupported input %T", ErrInvalidDate, in)
	}
	return checkRange(Of(t.In(loc)))
}

// Normalize is Parse that never fails. Invalid input falls back to the day of
// now (in now's location) and the fallback is logged.
func Normalize(in Input, now time.Time) CalendarDate {
	d, err := Parse(in, now.Location())
	if err != nil {
		fallback := Of(now)
		log.WithField("input", fmt.Sprintf("%#v", in)).
			Warnf("date normalization failed, falling back to %s: %v", fallback, err)
		return fallback
	}
	return d
}

// FromRaw picks the Input variant for a persisted JSON value: strings become
// StringDate, numbers EpochMillis and {seconds, nanoseconds} objects
// EpochTimestamp. It reports false for null, missing or any other shape.
func FromRaw(raw json.RawMessage) (Input, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false
	}
	switch c := raw[0]; {
	case c == '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, false
		}
		return StringDate(s), true
	case c == '{':
		var ts struct {
			Seconds      *int64 `json:"seconds"`
			Nanoseconds  int64  `json:"nanoseconds"`
			USeconds     *int64 `json:"_seconds"`
			UNanoseconds int64  `json:"_nanoseconds"`
		}
		if err := json.Unmarshal(raw, &ts); err != nil {
			return nil, false
		}
		if ts.Seconds != nil {
			return EpochTimestamp{Seconds: *ts.Seconds, Nanoseconds: ts.Nanoseconds}, true
		}
		if ts.USeconds != nil {
			return EpochTimestamp{Seconds: *ts.USeconds, Nanoseconds: ts.UNanoseconds}, true
		}
		return nil, false
	case c == '-' || (c >= '0' && c <= '9'):
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return nil, false
		}
		ms, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return nil, false
			}
			ms = int64(f)
		}
		return EpochMillis(ms), true
	default:
		return nil, false
	}
}

func parseDateTime(s string, loc *time.Location) (time.Time, bool) {
	for _, l := range stringLayouts {
		var t time.Time
		var err error
		if l == time.RFC3339Nano {
			t, err = time.Parse(l, s)
		} else {
			t, err = time.ParseInLocation(l, s, loc)
		}
		if err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func checkRange(d CalendarDate) (CalendarDate, error) {
	if d.Year < 1 || d.Year > 9999 {
		return CalendarDate{}, fmt.Errorf("%w: year out of range: %d", ErrInvalidDate, d.Year)
	}
	return d, nil
}
