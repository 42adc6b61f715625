package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/klokku/studyplan/pkg/calendar_date"
	"github.com/klokku/studyplan/pkg/slot_key"
)

var newSlotId = uuid.NewString

type RepairResult struct {
	Grid WeekGrid
	// Changed reports that the stored document differs from Grid and should be written back.
	Changed bool
	Changes []string
}

// Repair turns whatever was stored for a week into a complete grid.
// Dates are resolved in the local time zone.
func Repair(persisted PersistedGrid, weekStart calendar_date.CalendarDate) RepairResult {
	return RepairIn(persisted, weekStart, time.Local)
}

// RepairIn is Repair with an explicit location for timestamp dates.
//
// Missing cells become empty. Cells without a category are emptied. A slot
// whose date is missing, unparseable or not the day of its cell gets
// weekStart + day index. A slot without id gets a new one. Unknown day keys,
// hour keys and slot fields are dropped. Running it on its own output changes
// nothing.
func RepairIn(persisted PersistedGrid, weekStart calendar_date.CalendarDate, loc *time.Location) RepairResult {
	result := RepairResult{Grid: EmptyGrid()}
	changed := func(format string, args ...any) {
		result.Changed = true
		result.Changes = append(result.Changes, fmt.Sprintf(format, args...))
	}

	for day := range persisted {
		if !slot_key.DayKey(day).Valid() {
			changed("unknown day %q dropped", day)
			continue
		}
		for hour := range persisted[day] {
			if !slot_key.HourKey(hour).Valid() {
				changed("unknown hour %s/%q dropped", day, hour)
			}
		}
	}

	for dayIndex, day := range slot_key.DayKeys() {
		hours, ok := persisted[string(day)]
		if !ok {
			changed("day %s missing", day)
		}
		expectedDate := weekStart.AddDays(dayIndex)
		for _, hour := range slot_key.HourKeys() {
			raw, ok := hours[string(hour)]
			if !ok {
				if hours != nil {
					changed("cell %s/%s missing", day, hour)
				}
				continue
			}
			slot, notes := repairSlot(raw, expectedDate, loc)
			for _, note := range notes {
				changed("cell %s/%s: %s", day, hour, note)
			}
			result.Grid[day][hour] = slot
		}
	}
	return result
}

type storedSlot struct {
	Id         *string         `json:"id"`
	CategoryId *string         `json:"categoryId"`
	Date       json.RawMessage `json:"date"`
}

func repairSlot(raw json.RawMessage, expectedDate calendar_date.CalendarDate, loc *time.Location) (*Slot, []string) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}
	var stored storedSlot
	if err := json.Unmarshal(trimmed, &stored); err != nil {
		return nil, []string{"not a slot object, emptied"}
	}
	if stored.CategoryId == nil || *stored.CategoryId == "" {
		return nil, []string{"no category, emptied"}
	}

	var notes []string
	slot := &Slot{CategoryId: *stored.CategoryId, Date: expectedDate}

	if extra := unknownSlotFields(trimmed); len(extra) > 0 {
		notes = append(notes, fmt.Sprintf("unknown fields %v dropped", extra))
	}

	if stored.Id == nil || *stored.Id == "" {
		slot.Id = newSlotId()
		notes = append(notes, "id generated")
	} else {
		slot.Id = *stored.Id
	}

	date, ok := storedDate(stored.Date, loc)
	switch {
	case !ok:
		notes = append(notes, "date missing or invalid, derived from week start")
	case date != expectedDate:
		notes = append(notes, fmt.Sprintf("date %s outside its day, replaced", date))
	case !bytes.Equal(bytes.TrimSpace(stored.Date), []byte(`"`+expectedDate.String()+`"`)):
		notes = append(notes, "date rewritten as calendar date")
	}
	return slot, notes
}

func unknownSlotFields(raw json.RawMessage) []string {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}
	var extra []string
	for name := range fields {
		switch name {
		case "id", "categoryId", "date":
		default:
			extra = append(extra, name)
		}
	}
	sort.Strings(extra)
	return extra
}

func storedDate(raw json.RawMessage, loc *time.Location) (calendar_date.CalendarDate, bool) {
	if len(raw) == 0 {
		return calendar_date.CalendarDate{}, false
	}
	in, ok := calendar_date.FromRaw(raw)
	if !ok {
		return calendar_date.CalendarDate{}, false
	}
	date, err := calendar_date.Parse(in, loc)
	if err != nil {
		return calendar_date.CalendarDate{}, false
	}
	return date, true
}
