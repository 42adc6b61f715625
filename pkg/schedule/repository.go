package schedule

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/klokku/studyplan/internal/docstore"
	log "github.com/sirupsen/logrus"
)

type Repository interface {
	// GetWeek returns the stored grid of a week, nil when nothing was stored yet.
	GetWeek(ctx context.Context, owner string, weekId string) (PersistedGrid, error)
	StoreWeek(ctx context.Context, owner string, weekId string, grid WeekGrid) error
	// ListWeeks returns every stored grid of the owner keyed by week id.
	ListWeeks(ctx context.Context, owner string) (map[string]PersistedGrid, error)
}

type RepositoryImpl struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) *RepositoryImpl {
	return &RepositoryImpl{store: store}
}

func (r *RepositoryImpl) GetWeek(ctx context.Context, owner string, weekId string) (PersistedGrid, error) {
	data, err := r.store.GetDocument(ctx, owner, docstore.Schedules, weekId)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return decodeOrEmpty(weekId, data), nil
}

func (r *RepositoryImpl) StoreWeek(ctx context.Context, owner string, weekId string, grid WeekGrid) error {
	persisted, err := grid.Persisted()
	if err != nil {
		return fmt.Errorf("failed to encode week %s: %w", weekId, err)
	}
	return docstore.SetJSON(ctx, r.store, owner, docstore.Schedules, weekId, persisted)
}

func (r *RepositoryImpl) ListWeeks(ctx context.Context, owner string) (map[string]PersistedGrid, error) {
	docs, err := r.store.ListAllDocuments(ctx, owner, docstore.Schedules)
	if err != nil {
		return nil, err
	}
	weeks := make(map[string]PersistedGrid, len(docs))
	for weekId, data := range docs {
		weeks[weekId] = decodeOrEmpty(weekId, data)
	}
	return weeks, nil
}

// decodeOrEmpty never fails: a document that is not a grid at all is repaired
// from scratch.
func decodeOrEmpty(weekId string, data json.RawMessage) PersistedGrid {
	persisted, err := DecodePersisted(data)
	if err != nil {
		log.WithField("week", weekId).Warnf("stored schedule is not a grid, starting from an empty one: %v", err)
		return PersistedGrid{}
	}
	return persisted
}
