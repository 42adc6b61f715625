package achievement

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/klokku/studyplan/internal/event_bus"
	"github.com/klokku/studyplan/internal/utils"
	"github.com/klokku/studyplan/internal/week_lock"
	"github.com/klokku/studyplan/pkg/calendar_date"
	"github.com/klokku/studyplan/pkg/schedule"
	"github.com/klokku/studyplan/pkg/slot_key"
	"github.com/klokku/studyplan/pkg/user"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidCell = errors.New("invalid achievement cell")

type Service interface {
	// GetWeek returns the achievements of the week containing date, empty when none were recorded.
	GetWeek(ctx context.Context, date calendar_date.CalendarDate) (Map, error)
	Save(ctx context.Context, date calendar_date.CalendarDate, day slot_key.DayKey, hour slot_key.HourKey, status Status, comment string) (Record, error)
	// Delete removes the achievement of a cell. Deleting a missing achievement succeeds.
	Delete(ctx context.Context, date calendar_date.CalendarDate, day slot_key.DayKey, hour slot_key.HourKey) error
}

type ServiceImpl struct {
	repo     Repository
	locker   *week_lock.Locker
	eventBus *event_bus.EventBus
	clock    utils.Clock
}

func NewService(repo Repository, locker *week_lock.Locker, eventBus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, locker: locker, eventBus: eventBus, clock: clock}
}

func (s *ServiceImpl) GetWeek(ctx context.Context, date calendar_date.CalendarDate) (Map, error) {
	owner, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	weekId := schedule.WeekIdentifier(date)
	m, err := s.repo.Get(ctx, owner, weekId)
	if err != nil {
		return nil, fmt.Errorf("failed to load achievements of week %s: %w", weekId, err)
	}
	if m == nil {
		return Map{}, nil
	}
	return m, nil
}

func (s *ServiceImpl) Save(
	ctx context.Context,
	date calendar_date.CalendarDate,
	day slot_key.DayKey,
	hour slot_key.HourKey,
	status Status,
	comment string,
) (Record, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return Record{}, err
	}
	key, weekId, cellDate, err := cell(date, day, hour)
	if err != nil {
		return Record{}, err
	}
	owner, err := user.CurrentId(ctx)
	if err != nil {
		return Record{}, fmt.Errorf("failed to get current user: %w", err)
	}

	var saved Record
	err = s.locker.WithWeekLock(ctx, owner, weekId, func(ctx context.Context) error {
		current, err := s.repo.Get(ctx, owner, weekId)
		if err != nil {
			return err
		}
		record := Record{
			Id:        uuid.NewString(),
			Status:    status,
			Comment:   comment,
			DayKey:    day,
			HourKey:   hour,
			Date:      cellDate,
			CreatedAt: s.clock.Now(),
		}
		if existing, ok := current.Lookup(key); ok {
			record.Id = existing.Id
			record.CreatedAt = existing.CreatedAt
		}
		if err := s.repo.Upsert(ctx, owner, weekId, key, record); err != nil {
			return err
		}
		saved = record
		return nil
	})
	if err != nil {
		return Record{}, fmt.Errorf("failed to save achievement %s: %w", key, err)
	}
	s.publishChanged(ctx, owner, weekId, key, false)
	return saved, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, date calendar_date.CalendarDate, day slot_key.DayKey, hour slot_key.HourKey) error {
	key, weekId, _, err := cell(date, day, hour)
	if err != nil {
		return err
	}
	owner, err := user.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	var deleted bool
	err = s.locker.WithWeekLock(ctx, owner, weekId, func(ctx context.Context) error {
		deleted, err = s.repo.Delete(ctx, owner, weekId, key)
		return err
	})
	if err != nil {
		return fmt.Errorf("failed to delete achievement %s: %w", key, err)
	}
	if deleted {
		s.publishChanged(ctx, owner, weekId, key, true)
	}
	return nil
}

// cell resolves the key of a grid cell. The date of the cell is always derived
// from the week start, the same way schedule slots get theirs.
func cell(date calendar_date.CalendarDate, day slot_key.DayKey, hour slot_key.HourKey) (slot_key.CompositeKey, string, calendar_date.CalendarDate, error) {
	if !day.Valid() || !hour.Valid() {
		return "", "", calendar_date.CalendarDate{}, fmt.Errorf("%w: %s/%s", ErrInvalidCell, day, hour)
	}
	weekStart := schedule.StartOfWeek(date)
	cellDate := weekStart.AddDays(day.Index())
	return slot_key.MakeKey(cellDate, day, hour), weekStart.String(), cellDate, nil
}

func (s *ServiceImpl) publishChanged(ctx context.Context, owner string, weekId string, key slot_key.CompositeKey, deleted bool) {
	err := event_bus.PublishTyped(ctx, s.eventBus, event_bus.AchievementChanged, event_bus.AchievementChangedEvent{
		Owner:   owner,
		WeekId:  weekId,
		Key:     key.String(),
		Deleted: deleted,
	})
	if err != nil {
		log.Errorf("failed to publish achievement change %s: %v", key, err)
	}
}
