package milestone

import (
	"context"
	"fmt"

	"github.com/klokku/studyplan/pkg/user"
	"github.com/shopspring/decimal"
)

type HoursSource interface {
	CumulativeHours(ctx context.Context) (decimal.Decimal, error)
}

type CollectionItem struct {
	Entry    Entry
	Unlocked bool
	Shown    bool
}

type Service interface {
	// Next returns the milestone to present now, nil when there is none.
	Next(ctx context.Context) (*Entry, decimal.Decimal, error)
	// MarkShown records that a milestone was presented. It must be called before
	// the milestone is presented again. Marking twice is a no-op.
	MarkShown(ctx context.Context, id string) error
	Collection(ctx context.Context) ([]CollectionItem, decimal.Decimal, error)
}

type ServiceImpl struct {
	catalog Catalog
	hours   HoursSource
	shown   *ShownStore
}

func NewService(catalog Catalog, hours HoursSource, shown *ShownStore) *ServiceImpl {
	return &ServiceImpl{catalog: catalog, hours: hours, shown: shown}
}

func (s *ServiceImpl) Next(ctx context.Context) (*Entry, decimal.Decimal, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to get current user: %w", err)
	}
	hours, err := s.hours.CumulativeHours(ctx)
	if err != nil {
		return nil, decimal.Zero, err
	}
	shown, err := s.shown.Load(ctx, current)
	if err != nil {
		return nil, hours, err
	}
	return Evaluate(hours, s.catalog, shown), hours, nil
}

func (s *ServiceImpl) MarkShown(ctx context.Context, id string) error {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current user: %w", err)
	}
	if _, ok := s.catalog.Find(id); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownMilestone, id)
	}
	if _, err := s.shown.Add(ctx, current, id); err != nil {
		return fmt.Errorf("failed to mark milestone %s as shown: %w", id, err)
	}
	return nil
}

func (s *ServiceImpl) Collection(ctx context.Context) ([]CollectionItem, decimal.Decimal, error) {
	current, err := user.CurrentUser(ctx)
	if err != nil {
		return nil, decimal.Zero, fmt.Errorf("failed to get current user: %w", err)
	}
	hours, err := s.hours.CumulativeHours(ctx)
	if err != nil {
		return nil, decimal.Zero, err
	}
	shown, err := s.shown.Load(ctx, current)
	if err != nil {
		return nil, hours, err
	}
	items := make([]CollectionItem, 0, len(s.catalog))
	for _, e := range s.catalog {
		items = append(items, CollectionItem{
			Entry:    e,
			Unlocked: e.threshold().LessThanOrEqual(hours),
			Shown:    shown.Contains(e.Id),
		})
	}
	return items, hours, nil
}
