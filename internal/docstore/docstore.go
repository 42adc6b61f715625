package docstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrStorageUnavailable = errors.New("storage unavailable")

// Collections used by the planner.
const (
	Schedules       = "schedules"
	Achievements    = "achievements"
	ShownMilestones = "shownMilestones"
	WeeklyGoals     = "weeklyGoals"
	Preferences     = "preferences"
	Categories      = "categories"
)

// Store is a per-owner document store addressed by (collection, id).
// Documents are JSON objects replaced as a whole on every write.
type Store interface {
	// GetDocument returns nil, nil when the document does not exist.
	GetDocument(ctx context.Context, owner string, collection string, id string) (json.RawMessage, error)
	// SetDocument creates or replaces the document. Creation time is kept, update time is refreshed.
	SetDocument(ctx context.Context, owner string, collection string, id string, data json.RawMessage) error
	// DeleteDocument removes the document. Deleting a missing document is not an error.
	DeleteDocument(ctx context.Context, owner string, collection string, id string) error
	ListAllDocuments(ctx context.Context, owner string, collection string) (map[string]json.RawMessage, error)
}

// GetJSON loads a document into v and reports whether it existed.
func GetJSON(ctx context.Context, store Store, owner string, collection string, id string, v any) (bool, error) {
	data, err := store.GetDocument(ctx, owner, collection, id)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("failed to decode %s/%s: %w", collection, id, err)
	}
	return true, nil
}

// SetJSON encodes v and stores it as the whole document.
func SetJSON(ctx context.Context, store Store, owner string, collection string, id string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", collection, id, err)
	}
	return store.SetDocument(ctx, owner, collection, id, data)
}

func unavailable(op string, collection string, id string, err error) error {
	return fmt.Errorf("%w: %s %s/%s: %w", ErrStorageUnavailable, op, collection, id, err)
}
