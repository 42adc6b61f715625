package achievement

import (
	"errors"
	"fmt"
	"time"

	"github.com/klokku/studyplan/pkg/calendar_date"
	"github.com/klokku/studyplan/pkg/slot_key"
)

var ErrInvalidStatus = errors.New("invalid achievement status")

type Status string

const (
	Completed Status = "completed"
	Partial   Status = "partial"
	Failed    Status = "failed"
)

func ParseStatus(s string) (Status, error) {
	switch status := Status(s); status {
	case Completed, Partial, Failed:
		return status, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}

// Counts reports whether the status makes a planned hour count as studied.
func (s Status) Counts() bool {
	return s == Completed || s == Partial
}

// Record is what the user reported for one planned hour.
type Record struct {
	Id        string                     `json:"id"`
	Status    Status                     `json:"status"`
	Comment   string                     `json:"comment"`
	DayKey    slot_key.DayKey            `json:"dayKey"`
	HourKey   slot_key.HourKey           `json:"hourKey"`
	Date      calendar_date.CalendarDate `json:"date"`
	CreatedAt time.Time                  `json:"createdAt"`
}

// Key rebuilds the composite key of the record from its own fields.
func (r Record) Key() slot_key.CompositeKey {
	return slot_key.MakeKey(r.Date, r.DayKey, r.HourKey)
}

// Map is the sparse achievement document of a week.
type Map map[slot_key.CompositeKey]Record

// Lookup returns the record stored under key, if any. A nil map has no records.
func (m Map) Lookup(key slot_key.CompositeKey) (Record, bool) {
	record, ok := m[key]
	return record, ok
}

func (m Map) Clone() Map {
	clone := make(Map, len(m))
	for k, v := range m {
		clone[k] = v
	}
	return clone
}
