package stats

import (
	"math"

	"github.com/klokku/studyplan/pkg/achievement"
	"github.com/klokku/studyplan/pkg/category"
	"github.com/klokku/studyplan/pkg/preferences"
	"github.com/klokku/studyplan/pkg/schedule"
	"github.com/shopspring/decimal"
)

const minutesPerSlot = 60

var (
	completedWeight = decimal.NewFromInt(1)
	partialWeight   = decimal.RequireFromString("0.7")
)

// Week is the schedule and the achievements stored for one week.
type Week struct {
	Grid         schedule.WeekGrid
	Achievements achievement.Map
}

func counts(slot schedule.PlannedSlot, achievements achievement.Map, policy preferences.InclusionPolicy) bool {
	if policy == preferences.AllPlanned {
		return true
	}
	record, ok := achievements.Lookup(slot.Key())
	return ok && record.Status.Counts()
}

// CategoryMinutes gives every counted slot 60 minutes in the bucket of its
// category. Every listed category is present, with 0 when nothing counted.
// Planned categories missing from the list get their own bucket.
func CategoryMinutes(
	grid schedule.WeekGrid,
	categories []category.Category,
	achievements achievement.Map,
	policy preferences.InclusionPolicy,
) map[string]int {
	minutes := make(map[string]int, len(categories))
	for _, c := range categories {
		minutes[c.Id] = 0
	}
	for _, slot := range grid.PlannedSlots() {
		bucket := minutes[slot.Slot.CategoryId]
		if counts(slot, achievements, policy) {
			bucket += minutesPerSlot
		}
		minutes[slot.Slot.CategoryId] = bucket
	}
	return minutes
}

// WeekTotalHours is one hour per counted slot, rounded to one decimal place.
func WeekTotalHours(grid schedule.WeekGrid, achievements achievement.Map, policy preferences.InclusionPolicy) float64 {
	counted := 0
	for _, slot := range grid.PlannedSlots() {
		if counts(slot, achievements, policy) {
			counted++
		}
	}
	return math.Round(float64(counted)*10) / 10
}

// StatusWeight is the number of hours an achievement is worth in all-time totals.
func StatusWeight(status achievement.Status) decimal.Decimal {
	switch status {
	case achievement.Completed:
		return completedWeight
	case achievement.Partial:
		return partialWeight
	default:
		return decimal.Zero
	}
}

// AllTimeHours weights the achievement of every planned slot of every week:
// completed 1.0, partial 0.7, failed or missing 0. Unlike WeekTotalHours it
// does not count slots, so both policies give the same result: under either
// one a slot without a completed or partial achievement adds nothing.
func AllTimeHours(weeks []Week, _ preferences.InclusionPolicy) decimal.Decimal {
	total := decimal.Zero
	for _, week := range weeks {
		for _, slot := range week.Grid.PlannedSlots() {
			if record, ok := week.Achievements.Lookup(slot.Key()); ok {
				total = total.Add(StatusWeight(record.Status))
			}
		}
	}
	return total
}

// RecordRate is the share of planned slots that have any achievement, in percent.
func RecordRate(grid schedule.WeekGrid, achievements achievement.Map) int {
	planned := grid.PlannedSlots()
	recorded := 0
	for _, slot := range planned {
		if _, ok := achievements.Lookup(slot.Key()); ok {
			recorded++
		}
	}
	return percent(recorded, len(planned))
}

// CompletionRate is the share of planned slots completed or partially completed, in percent.
func CompletionRate(grid schedule.WeekGrid, achievements achievement.Map) int {
	planned := grid.PlannedSlots()
	done := 0
	for _, slot := range planned {
		if record, ok := achievements.Lookup(slot.Key()); ok && record.Status.Counts() {
			done++
		}
	}
	return percent(done, len(planned))
}

func percent(part int, whole int) int {
	if whole == 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(whole)))
}
