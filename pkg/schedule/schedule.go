package schedule

import (
	"encoding/json"
	"time"

	"github.com/klokku/studyplan/pkg/calendar_date"
	"github.com/klokku/studyplan/pkg/slot_key"
)

// Slot is a planned study hour. An empty cell of the grid is a nil *Slot.
type Slot struct {
	Id         string                     `json:"id"`
	CategoryId string                     `json:"categoryId"`
	Date       calendar_date.CalendarDate `json:"date"`
}

// WeekGrid always holds all 7 days x 14 hours. Empty cells are nil, never missing.
type WeekGrid map[slot_key.DayKey]map[slot_key.HourKey]*Slot

// PersistedGrid is the raw stored shape of a week grid. Nothing about it is
// trusted until it went through Repair.
type PersistedGrid map[string]map[string]json.RawMessage

// StartOfWeek returns the Monday of the week containing date. Sunday belongs
// to the week that started six days earlier.
func StartOfWeek(date calendar_date.CalendarDate) calendar_date.CalendarDate {
	weekday := int(date.Weekday())
	offset := 1 - weekday
	if date.Weekday() == time.Sunday {
		offset = -6
	}
	return date.AddDays(offset)
}

// WeekIdentifier is the document id shared by the schedule and achievements of a week.
func WeekIdentifier(date calendar_date.CalendarDate) string {
	return StartOfWeek(date).String()
}

// EmptyGrid builds a grid with every cell present and empty.
func EmptyGrid() WeekGrid {
	grid := make(WeekGrid, slot_key.DaysCount)
	for _, day := range slot_key.DayKeys() {
		hours := make(map[slot_key.HourKey]*Slot, slot_key.HoursCount)
		for _, hour := range slot_key.HourKeys() {
			hours[hour] = nil
		}
		grid[day] = hours
	}
	return grid
}

// Get returns the slot of a cell, nil when the cell is empty.
func (g WeekGrid) Get(day slot_key.DayKey, hour slot_key.HourKey) *Slot {
	return g[day][hour]
}

// Clone returns a deep copy, so callers can replace a grid as a whole value.
func (g WeekGrid) Clone() WeekGrid {
	clone := make(WeekGrid, len(g))
	for day, hours := range g {
		hoursClone := make(map[slot_key.HourKey]*Slot, len(hours))
		for hour, slot := range hours {
			if slot != nil {
				s := *slot
				hoursClone[hour] = &s
			} else {
				hoursClone[hour] = nil
			}
		}
		clone[day] = hoursClone
	}
	return clone
}

// PlannedSlot is a non-empty cell together with its position in the grid.
type PlannedSlot struct {
	Day  slot_key.DayKey
	Hour slot_key.HourKey
	Slot Slot
}

// Key returns the composite key that joins the slot with its achievement.
func (p PlannedSlot) Key() slot_key.CompositeKey {
	return slot_key.MakeKey(p.Slot.Date, p.Day, p.Hour)
}

// PlannedSlots lists the non-empty cells ordered by day and hour.
func (g WeekGrid) PlannedSlots() []PlannedSlot {
	var planned []PlannedSlot
	for _, day := range slot_key.DayKeys() {
		for _, hour := range slot_key.HourKeys() {
			if slot := g[day][hour]; slot != nil {
				planned = append(planned, PlannedSlot{Day: day, Hour: hour, Slot: *slot})
			}
		}
	}
	return planned
}

// Persisted converts the grid to its stored shape.
func (g WeekGrid) Persisted() (PersistedGrid, error) {
	persisted := make(PersistedGrid, len(g))
	for day, hours := range g {
		rawHours := make(map[string]json.RawMessage, len(hours))
		for hour, slot := range hours {
			raw, err := json.Marshal(slot)
			if err != nil {
				return nil, err
			}
			rawHours[string(hour)] = raw
		}
		persisted[string(day)] = rawHours
	}
	return persisted, nil
}

// DecodePersisted reads a stored grid document. Days that are not JSON objects
// are skipped and left for Repair to fill. Only a document that is not an object
// at all is an error.
func DecodePersisted(data json.RawMessage) (PersistedGrid, error) {
	var days map[string]json.RawMessage
	if err := json.Unmarshal(data, &days); err != nil {
		return nil, err
	}
	persisted := make(PersistedGrid, len(days))
	for day, rawHours := range days {
		var hours map[string]json.RawMessage
		if err := json.Unmarshal(rawHours, &hours); err != nil || hours == nil {
			continue
		}
		persisted[day] = hours
	}
	return persisted, nil
}
