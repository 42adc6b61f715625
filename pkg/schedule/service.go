package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/klokku/studyplan/internal/event_bus"
	"github.com/klokku/studyplan/internal/week_lock"
	"github.com/klokku/studyplan/pkg/calendar_date"
	"github.com/klokku/studyplan/pkg/slot_key"
	"github.com/klokku/studyplan/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidSlot = errors.New("invalid slot")

// AchievementCascade removes achievements together with the slots they belong to.
// It is called while the week lock is already held, so it must not take it again.
type AchievementCascade interface {
	DeleteKeys(ctx context.Context, owner string, weekId string, keys []slot_key.CompositeKey) (int, error)
	DeleteWeek(ctx context.Context, owner string, weekId string) error
}

type Service interface {
	// GetWeek returns the repaired grid of the week containing date.
	GetWeek(ctx context.Context, date calendar_date.CalendarDate) (WeekGrid, error)
	SetSlot(ctx context.Context, date calendar_date.CalendarDate, day slot_key.DayKey, hour slot_key.HourKey, categoryId string) (Slot, error)
	// ClearSlot empties a cell. The achievement recorded for it is kept.
	ClearSlot(ctx context.Context, date calendar_date.CalendarDate, day slot_key.DayKey, hour slot_key.HourKey) (WeekGrid, error)
	// DeleteSlot empties a cell and deletes the achievement recorded for it.
	DeleteSlot(ctx context.Context, date calendar_date.CalendarDate, day slot_key.DayKey, hour slot_key.HourKey) (WeekGrid, error)
	// ResetWeek empties every cell and deletes all achievements of the week.
	ResetWeek(ctx context.Context, date calendar_date.CalendarDate) (WeekGrid, error)
	// RepairAll repairs every stored week of the current user and returns the ids of rewritten weeks.
	RepairAll(ctx context.Context) ([]string, error)
}

type ServiceImpl struct {
	repo         Repository
	achievements AchievementCascade
	locker       *week_lock.Locker
	eventBus     *event_bus.EventBus
}

func NewService(
	repo Repository,
	achievements AchievementCascade,
	locker *week_lock.Locker,
	eventBus *event_bus.EventBus,
) *ServiceImpl {
	return &ServiceImpl{
		repo:         repo,
		achievements: achievements,
		locker:       locker,
		eventBus:     eventBus,
	}
}

func (s *ServiceImpl) GetWeek(ctx context.Context, date calendar_date.CalendarDate) (WeekGrid, error) {
	owner, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	weekStart := StartOfWeek(date)
	var grid WeekGrid
	err = s.locker.WithWeekLock(ctx, owner, weekStart.String(), func(ctx context.Context) error {
		grid, err = s.loadWeek(ctx, owner, weekStart)
		return err
	})
	if err != nil {
		return nil, err
	}
	return grid, nil
}

// loadWeek reads and repairs a week, writing it back only when the repair changed it.
// A week that was never stored is returned empty and not written.
func (s *ServiceImpl) loadWeek(ctx context.Context, owner string, weekStart calendar_date.CalendarDate) (WeekGrid, error) {
	weekId := weekStart.String()
	persisted, err := s.repo.GetWeek(ctx, owner, weekId)
	if err != nil {
		return nil, fmt.Errorf("failed to load week %s: %w", weekId, err)
	}
	if persisted == nil {
		return EmptyGrid(), nil
	}
	result := Repair(persisted, weekStart)
	if result.Changed {
		log.WithFields(log.Fields{"week": weekId, "changes": len(result.Changes)}).
			Infof("stored schedule repaired: %v", result.Changes)
		if err := s.repo.StoreWeek(ctx, owner, weekId, result.Grid); err != nil {
			return nil, fmt.Errorf("failed to store repaired week %s: %w", weekId, err)
		}
	}
	return result.Grid, nil
}

func (s *ServiceImpl) SetSlot(
	ctx context.Context,
	date calendar_date.CalendarDate,
	day slot_key.DayKey,
	hour slot_key.HourKey,
	categoryId string,
) (Slot, error) {
	if categoryId == "" {
		return Slot{}, fmt.Errorf("%w: category is required", ErrInvalidSlot)
	}
	var slot Slot
	_, err := s.mutateWeek(ctx, date, day, hour, func(grid WeekGrid, slotDate calendar_date.CalendarDate) []slot_key.CompositeKey {
		existing := grid[day][hour]
		slot = Slot{Id: newSlotId(), CategoryId: categoryId, Date: slotDate}
		if existing != nil {
			slot.Id = existing.Id
		}
		grid[day][hour] = &slot
		return nil
	})
	if err != nil {
		return Slot{}, err
	}
	return slot, nil
}

func (s *ServiceImpl) ClearSlot(ctx context.Context, date calendar_date.CalendarDate, day slot_key.DayKey, hour slot_key.HourKey) (WeekGrid, error) {
	return s.mutateWeek(ctx, date, day, hour, func(grid WeekGrid, _ calendar_date.CalendarDate) []slot_key.CompositeKey {
		grid[day][hour] = nil
		return nil
	})
}

func (s *ServiceImpl) DeleteSlot(ctx context.Context, date calendar_date.CalendarDate, day slot_key.DayKey, hour slot_key.HourKey) (WeekGrid, error) {
	return s.mutateWeek(ctx, date, day, hour, func(grid WeekGrid, slotDate calendar_date.CalendarDate) []slot_key.CompositeKey {
		grid[day][hour] = nil
		return []slot_key.CompositeKey{slot_key.MakeKey(slotDate, day, hour)}
	})
}

// mutateWeek applies change to a copy of the repaired grid under the week lock,
// stores it, then removes the achievements of the keys change returned.
func (s *ServiceImpl) mutateWeek(
	ctx context.Context,
	date calendar_date.CalendarDate,
	day slot_key.DayKey,
	hour slot_key.HourKey,
	change func(grid WeekGrid, slotDate calendar_date.CalendarDate) []slot_key.CompositeKey,
) (WeekGrid, error) {
	if !day.Valid() || !hour.Valid() {
		return nil, fmt.Errorf("%w: unknown cell %s/%s", ErrInvalidSlot, day, hour)
	}
	owner, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	weekStart := StartOfWeek(date)
	weekId := weekStart.String()
	slotDate := weekStart.AddDays(day.Index())

	var updated WeekGrid
	var cascaded []slot_key.CompositeKey
	err = s.locker.WithWeekLock(ctx, owner, weekId, func(ctx context.Context) error {
		current, err := s.loadWeek(ctx, owner, weekStart)
		if err != nil {
			return err
		}
		next := current.Clone()
		cascade := change(next, slotDate)
		if err := s.repo.StoreWeek(ctx, owner, weekId, next); err != nil {
			return fmt.Errorf("failed to store week %s: %w", weekId, err)
		}
		if len(cascade) > 0 {
			deleted, err := s.achievements.DeleteKeys(ctx, owner, weekId, cascade)
			if err != nil {
				s.restoreWeek(ctx, owner, weekId, current)
				return fmt.Errorf("failed to remove the achievement of the deleted slot: %w", err)
			}
			if deleted > 0 {
				cascaded = cascade
			}
		}
		updated = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishChanged(ctx, owner, weekStart, cascaded)
	return updated, nil
}

func (s *ServiceImpl) ResetWeek(ctx context.Context, date calendar_date.CalendarDate) (WeekGrid, error) {
	owner, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	weekStart := StartOfWeek(date)
	weekId := weekStart.String()
	grid := EmptyGrid()
	err = s.locker.WithWeekLock(ctx, owner, weekId, func(ctx context.Context) error {
		current, err := s.loadWeek(ctx, owner, weekStart)
		if err != nil {
			return err
		}
		if err := s.repo.StoreWeek(ctx, owner, weekId, grid); err != nil {
			return fmt.Errorf("failed to store week %s: %w", weekId, err)
		}
		if err := s.achievements.DeleteWeek(ctx, owner, weekId); err != nil {
			s.restoreWeek(ctx, owner, weekId, current)
			return fmt.Errorf("failed to remove the achievements of week %s: %w", weekId, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishChanged(ctx, owner, weekStart, nil)
	return grid, nil
}

// restoreWeek writes back the grid a failed mutation started from, so the
// failed call leaves the week as it was.
func (s *ServiceImpl) restoreWeek(ctx context.Context, owner string, weekId string, grid WeekGrid) {
	if err := s.repo.StoreWeek(context.WithoutCancel(ctx), owner, weekId, grid); err != nil {
		log.WithFields(log.Fields{"week": weekId, "owner": owner}).Errorf("failed to restore week after a failed cascade: %v", err)
	}
}

func (s *ServiceImpl) RepairAll(ctx context.Context) ([]string, error) {
	owner, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	weeks, err := s.repo.ListWeeks(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list weeks: %w", err)
	}
	weekIds := make([]string, 0, len(weeks))
	for weekId := range weeks {
		weekIds = append(weekIds, weekId)
	}
	sort.Strings(weekIds)

	var repaired []string
	for _, weekId := range weekIds {
		weekStart, err := calendar_date.ParseString(weekId)
		if err != nil || StartOfWeek(weekStart) != weekStart {
			log.Warnf("skipping schedule document %q, id is not a week start", weekId)
			continue
		}
		err = s.locker.WithWeekLock(ctx, owner, weekId, func(ctx context.Context) error {
			// re-read under the lock, the listing may be stale
			persisted, err := s.repo.GetWeek(ctx, owner, weekId)
			if err != nil || persisted == nil {
				return err
			}
			result := Repair(persisted, weekStart)
			if !result.Changed {
				return nil
			}
			if err := s.repo.StoreWeek(ctx, owner, weekId, result.Grid); err != nil {
				return err
			}
			log.WithFields(log.Fields{"week": weekId, "changes": len(result.Changes)}).Info("stored schedule repaired")
			repaired = append(repaired, weekId)
			return nil
		})
		if err != nil {
			return repaired, fmt.Errorf("failed to repair week %s: %w", weekId, err)
		}
	}
	if len(repaired) > 0 {
		s.publishChanged(ctx, owner, calendar_date.CalendarDate{}, nil)
	}
	return repaired, nil
}

func (s *ServiceImpl) publishChanged(ctx context.Context, owner string, weekStart calendar_date.CalendarDate, cascaded []slot_key.CompositeKey) {
	keys := make([]string, 0, len(cascaded))
	for _, key := range cascaded {
		keys = append(keys, key.String())
	}
	err := event_bus.PublishTyped(ctx, s.eventBus, event_bus.ScheduleChanged, event_bus.ScheduleChangedEvent{
		Owner:                owner,
		WeekStart:            weekStart,
		CascadedAchievements: keys,
	})
	if err != nil {
		log.Errorf("failed to publish schedule change for week %s: %v", weekStart, err)
	}
}
