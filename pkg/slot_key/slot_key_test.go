package slot_key

import (
	"testing"
	"time"

	"github.com/klokku/studyplan/pkg/calendar_date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeKey(t *testing.T) {
	date := calendar_date.CalendarDate{Year: 2024, Month: time.March, Day: 4}

	key := MakeKey(date, "day1", "hour10")

	assert.Equal(t, CompositeKey("2024-03-04_day1_hour10"), key)
}

func TestMakeKey_ParseKey_RoundTrip(t *testing.T) {
	start := calendar_date.CalendarDate{Year: 2023, Month: time.December, Day: 25}
	for offset := 0; offset < 21; offset++ {
		date := start.AddDays(offset)
		for _, day := range DayKeys() {
			for _, hour := range HourKeys() {
				parts, err := ParseKey(MakeKey(date, day, hour))
				require.NoError(t, err)
				assert.Equal(t, date.String(), parts.DateStr)
				assert.Equal(t, date, parts.Date())
				assert.Equal(t, day, parts.DayKey)
				assert.Equal(t, hour, parts.HourKey)
			}
		}
	}
}

func TestMakeKey_IgnoresTimeOfDay(t *testing.T) {
	location, _ := time.LoadLocation("Europe/Warsaw")
	now := time.Date(2024, time.March, 4, 0, 0, 0, 0, location)
	morning := calendar_date.Normalize(calendar_date.NativeDate{Time: now.Add(9 * time.Hour)}, now)
	evening := calendar_date.Normalize(calendar_date.StringDate("2024-03-04T21:59:00"), now)

	assert.Equal(t, MakeKey(morning, "day1", "hour9"), MakeKey(evening, "day1", "hour9"))
}

func TestParseKey_Invalid(t *testing.T) {
	tests := []struct {
		name string
		key  CompositeKey
	}{
		{"empty", ""},
		{"two segments", "2024-03-04_day1"},
		{"bad date", "2024-3-4_day1_hour10"},
		{"unknown day", "2024-03-04_day8_hour10"},
		{"unknown hour", "2024-03-04_day1_hour8"},
		{"zero padded hour", "2024-03-04_day1_hour09"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseKey(tt.key)
			require.ErrorIs(t, err, ErrInvalidKey)
		})
	}
}

func TestKeys(t *testing.T) {
	assert.Len(t, DayKeys(), 7)
	assert.Len(t, HourKeys(), 14)
	assert.Equal(t, DayKey("day1"), DayKeyForWeekday(time.Monday))
	assert.Equal(t, DayKey("day7"), DayKeyForWeekday(time.Sunday))
	assert.Equal(t, 6, DayKey("day7").Index())
	assert.Equal(t, -1, DayKey("monday").Index())
	assert.Equal(t, 22, HourKey("hour22").Hour())

	key, ok := HourKeyFor(9)
	assert.True(t, ok)
	assert.Equal(t, HourKey("hour9"), key)
	_, ok = HourKeyFor(23)
	assert.False(t, ok)
}
