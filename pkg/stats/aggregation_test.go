package stats

import (
	"fmt"
	"testing"
	"time"

	"github.com/klokku/studyplan/pkg/achievement"
	"github.com/klokku/studyplan/pkg/calendar_date"
	"github.com/klokku/studyplan/pkg/category"
	"github.com/klokku/studyplan/pkg/preferences"
	"github.com/klokku/studyplan/pkg/schedule"
	"github.com/klokku/studyplan/pkg/slot_key"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var monday = calendar_date.CalendarDate{Year: 2024, Month: time.March, Day: 4}

func plan(grid schedule.WeekGrid, day slot_key.DayKey, hour slot_key.HourKey, categoryId string) slot_key.CompositeKey {
	date := monday.AddDays(day.Index())
	grid[day][hour] = &schedule.Slot{Id: fmt.Sprintf("%s-%s", day, hour), CategoryId: categoryId, Date: date}
	return slot_key.MakeKey(date, day, hour)
}

func record(key slot_key.CompositeKey, status achievement.Status) achievement.Record {
	parts, _ := slot_key.ParseKey(key)
	return achievement.Record{Id: "r-" + key.String(), Status: status, DayKey: parts.DayKey, HourKey: parts.HourKey, Date: parts.Date()}
}

func TestWeekTotalHours_PolicySwitch(t *testing.T) {
	grid := schedule.EmptyGrid()
	for i, hour := range slot_key.HourKeys()[:5] {
		plan(grid, slot_key.DayKeys()[i], hour, "math")
	}

	assert.Equal(t, 5.0, WeekTotalHours(grid, nil, preferences.AllPlanned))
	assert.Equal(t, 0.0, WeekTotalHours(grid, nil, preferences.AchievementsOnly))
	assert.Equal(t, 0.0, WeekTotalHours(grid, achievement.Map{}, preferences.AchievementsOnly))
}

func TestWeekTotalHours_CountsCompletedAndPartial(t *testing.T) {
	grid := schedule.EmptyGrid()
	achievements := achievement.Map{}
	for i, status := range []achievement.Status{achievement.Completed, achievement.Partial, achievement.Failed} {
		key := plan(grid, "day2", slot_key.HourKeys()[i], "math")
		achievements[key] = record(key, status)
	}
	plan(grid, "day3", "hour9", "math")

	assert.Equal(t, 2.0, WeekTotalHours(grid, achievements, preferences.AchievementsOnly))
	assert.Equal(t, 4.0, WeekTotalHours(grid, achievements, preferences.AllPlanned))
}

func TestAllTimeHours_StatusWeighting(t *testing.T) {
	grid := schedule.EmptyGrid()
	achievements := achievement.Map{}
	statuses := []achievement.Status{
		achievement.Completed, achievement.Completed, achievement.Completed,
		achievement.Partial, achievement.Partial,
		achievement.Failed,
	}
	for i, status := range statuses {
		key := plan(grid, slot_key.DayKeys()[i], "hour12", "math")
		achievements[key] = record(key, status)
	}
	weeks := []Week{{Grid: grid, Achievements: achievements}}

	for _, policy := range []preferences.InclusionPolicy{preferences.AchievementsOnly, preferences.AllPlanned} {
		t.Run(policy.Name(), func(t *testing.T) {
			hours := AllTimeHours(weeks, policy)

			assert.True(t, decimal.RequireFromString("4.4").Equal(hours), "got %s", hours)
			assert.Equal(t, "4.4", hours.String())
		})
	}
}

func TestAllTimeHours_SumsWeeksAndIgnoresUnplannedRecords(t *testing.T) {
	first := schedule.EmptyGrid()
	firstKey := plan(first, "day1", "hour9", "math")
	second := schedule.EmptyGrid()
	secondKey := plan(second, "day7", "hour22", "art")
	orphan := slot_key.MakeKey(monday, "day1", "hour10")

	hours := AllTimeHours([]Week{
		{Grid: first, Achievements: achievement.Map{firstKey: record(firstKey, achievement.Partial), orphan: record(orphan, achievement.Completed)}},
		{Grid: second, Achievements: achievement.Map{secondKey: record(secondKey, achievement.Partial)}},
	}, preferences.AchievementsOnly)

	assert.Equal(t, "1.4", hours.String())
}

func TestCategoryMinutes_Scenario(t *testing.T) {
	categories := []category.Category{{Id: "math", Name: "Math"}, {Id: "art", Name: "Art"}}
	grid := schedule.EmptyGrid()
	key := plan(grid, "day1", "hour10", "math")
	require.Equal(t, slot_key.CompositeKey("2024-03-04_day1_hour10"), key)
	achievements := achievement.Map{key: record(key, achievement.Completed)}

	assert.Equal(t, map[string]int{"math": 60, "art": 0}, CategoryMinutes(grid, categories, achievements, preferences.AchievementsOnly))

	grid["day1"]["hour10"] = nil

	assert.Equal(t, map[string]int{"math": 0, "art": 0}, CategoryMinutes(grid, categories, achievements, preferences.AchievementsOnly))
	assert.Contains(t, achievements, key, "clearing a slot keeps its achievement")
}

func TestCategoryMinutes_UnlistedCategory(t *testing.T) {
	grid := schedule.EmptyGrid()
	plan(grid, "day5", "hour18", "chess")
	plan(grid, "day5", "hour19", "chess")

	minutes := CategoryMinutes(grid, []category.Category{{Id: "math"}}, nil, preferences.AllPlanned)

	assert.Equal(t, map[string]int{"math": 0, "chess": 120}, minutes)
}

func TestRates(t *testing.T) {
	grid := schedule.EmptyGrid()
	achievements := achievement.Map{}
	for i, status := range []achievement.Status{achievement.Completed, achievement.Partial, achievement.Failed} {
		key := plan(grid, "day4", slot_key.HourKeys()[i], "math")
		achievements[key] = record(key, status)
	}
	plan(grid, "day4", "hour20", "math")

	assert.Equal(t, 75, RecordRate(grid, achievements))
	assert.Equal(t, 50, CompletionRate(grid, achievements))
}

func TestEmptyGrid_AggregatesToZero(t *testing.T) {
	grid := schedule.EmptyGrid()

	assert.Equal(t, 0.0, WeekTotalHours(grid, nil, preferences.AllPlanned))
	assert.Equal(t, 0, RecordRate(grid, nil))
	assert.Equal(t, 0, CompletionRate(grid, nil))
	assert.True(t, AllTimeHours([]Week{{Grid: grid}}, preferences.AllPlanned).IsZero())
	assert.Empty(t, CategoryMinutes(grid, nil, nil, preferences.AllPlanned))
}

func dateOf(t *testing.T, s string) calendar_date.CalendarDate {
	t.Helper()
	d, err := calendar_date.ParseString(s)
	require.NoError(t, err)
	return d
}

func slotDay(s string) slot_key.DayKey   { return slot_key.DayKey(s) }
func slotHour(s string) slot_key.HourKey { return slot_key.HourKey(s) }
