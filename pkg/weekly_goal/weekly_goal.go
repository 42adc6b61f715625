package weekly_goal

import (
	"context"
	"errors"
	"fmt"

	"github.com/klokku/studyplan/internal/docstore"
	"github.com/klokku/studyplan/pkg/calendar_date"
	"github.com/klokku/studyplan/pkg/schedule"
	"github.com/klokku/studyplan/pkg/user"
	"github.com/shopspring/decimal"
)

var ErrInvalidGoal = errors.New("invalid weekly goal")

// Goal is the number of hours the user wants to study in a week.
type Goal struct {
	WeekId      string          `json:"weekId"`
	TargetHours decimal.Decimal `json:"targetHours"`
}

type Service interface {
	// Get returns the goal of the week containing date and whether one was set.
	Get(ctx context.Context, date calendar_date.CalendarDate) (Goal, bool, error)
	Set(ctx context.Context, date calendar_date.CalendarDate, targetHours decimal.Decimal) (Goal, error)
}

type ServiceImpl struct {
	store docstore.Store
}

func NewService(store docstore.Store) *ServiceImpl {
	return &ServiceImpl{store: store}
}

func (s *ServiceImpl) Get(ctx context.Context, date calendar_date.CalendarDate) (Goal, bool, error) {
	owner, err := user.CurrentId(ctx)
	if err != nil {
		return Goal{}, false, fmt.Errorf("failed to get current user: %w", err)
	}
	weekId := schedule.WeekIdentifier(date)
	var goal Goal
	found, err := docstore.GetJSON(ctx, s.store, owner, docstore.WeeklyGoals, weekId, &goal)
	if err != nil || !found {
		return Goal{WeekId: weekId}, false, err
	}
	goal.WeekId = weekId
	return goal, true, nil
}

func (s *ServiceImpl) Set(ctx context.Context, date calendar_date.CalendarDate, targetHours decimal.Decimal) (Goal, error) {
	owner, err := user.CurrentId(ctx)
	if err != nil {
		return Goal{}, fmt.Errorf("failed to get current user: %w", err)
	}
	if targetHours.IsNegative() || targetHours.GreaterThan(decimal.NewFromInt(24*7)) {
		return Goal{}, fmt.Errorf("%w: %s hours", ErrInvalidGoal, targetHours)
	}
	goal := Goal{WeekId: schedule.WeekIdentifier(date), TargetHours: targetHours}
	if err := docstore.SetJSON(ctx, s.store, owner, docstore.WeeklyGoals, goal.WeekId, goal); err != nil {
		return Goal{}, err
	}
	return goal, nil
}

// Progress is the achieved share of the target in percent, capped at 100.
// A zero target gives 0.
func (g Goal) Progress(achievedHours decimal.Decimal) int {
	if !g.TargetHours.IsPositive() {
		return 0
	}
	percent := achievedHours.Div(g.TargetHours).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	return int(min(percent, 100))
}
