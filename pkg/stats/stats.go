package stats

import (
	"github.com/klokku/studyplan/pkg/calendar_date"
	"github.com/klokku/studyplan/pkg/preferences"
	"github.com/shopspring/decimal"
)

type CategoryStats struct {
	CategoryId string
	Name       string
	Color      string
	Minutes    int
}

type GoalProgress struct {
	TargetHours   decimal.Decimal
	AchievedHours decimal.Decimal
	Percent       int
}

type WeeklyStats struct {
	WeekStart      calendar_date.CalendarDate
	Policy         preferences.InclusionPolicy
	Categories     []CategoryStats
	TotalHours     float64
	PlannedSlots   int
	RecordedSlots  int
	RecordRate     int
	CompletionRate int
	// Goal is nil when no goal was set for the week.
	Goal *GoalProgress
}

// DateRange limits all-time totals. A zero bound is open.
type DateRange struct {
	From calendar_date.CalendarDate
	To   calendar_date.CalendarDate
}

func (r DateRange) Contains(date calendar_date.CalendarDate) bool {
	if !r.From.IsZero() && date.Before(r.From) {
		return false
	}
	if !r.To.IsZero() && date.After(r.To) {
		return false
	}
	return true
}

type AllTimeSummary struct {
	Range DateRange
	Hours decimal.Decimal
	Weeks int
}
