package achievement

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klokku/studyplan/internal/docstore"
	"github.com/klokku/studyplan/pkg/calendar_date"
	"github.com/klokku/studyplan/pkg/slot_key"
	log "github.com/sirupsen/logrus"
)

// Repository stores one document per week. The storage has no per-key update,
// so every mutation reads the whole week, changes it and writes it back.
// Callers serialize mutations of a week with the week lock.
type Repository interface {
	// Get returns the achievements of a week, nil when the week has no document.
	Get(ctx context.Context, owner string, weekId string) (Map, error)
	Upsert(ctx context.Context, owner string, weekId string, key slot_key.CompositeKey, record Record) error
	// Delete removes one record. A missing document or key is not an error, deleted is false then.
	Delete(ctx context.Context, owner string, weekId string, key slot_key.CompositeKey) (deleted bool, err error)
	DeleteKeys(ctx context.Context, owner string, weekId string, keys []slot_key.CompositeKey) (int, error)
	DeleteWeek(ctx context.Context, owner string, weekId string) error
	// ListWeeks returns every achievement document of the owner keyed by week id.
	ListWeeks(ctx context.Context, owner string) (map[string]Map, error)
}

type RepositoryImpl struct {
	store docstore.Store
}

func NewRepository(store docstore.Store) *RepositoryImpl {
	return &RepositoryImpl{store: store}
}

func (r *RepositoryImpl) Get(ctx context.Context, owner string, weekId string) (Map, error) {
	data, err := r.store.GetDocument(ctx, owner, docstore.Achievements, weekId)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return decodeMap(weekId, data), nil
}

func (r *RepositoryImpl) Upsert(ctx context.Context, owner string, weekId string, key slot_key.CompositeKey, record Record) error {
	current, err := r.Get(ctx, owner, weekId)
	if err != nil {
		return err
	}
	next := current.Clone()
	next[key] = record
	return r.write(ctx, owner, weekId, next)
}

func (r *RepositoryImpl) Delete(ctx context.Context, owner string, weekId string, key slot_key.CompositeKey) (bool, error) {
	deleted, err := r.DeleteKeys(ctx, owner, weekId, []slot_key.CompositeKey{key})
	return deleted > 0, err
}

func (r *RepositoryImpl) DeleteKeys(ctx context.Context, owner string, weekId string, keys []slot_key.CompositeKey) (int, error) {
	current, err := r.Get(ctx, owner, weekId)
	if err != nil {
		return 0, err
	}
	next := current.Clone()
	deleted := 0
	for _, key := range keys {
		if _, ok := next[key]; ok {
			delete(next, key)
			deleted++
		}
	}
	if deleted == 0 {
		return 0, nil
	}
	if err := r.write(ctx, owner, weekId, next); err != nil {
		return 0, err
	}
	return deleted, nil
}

func (r *RepositoryImpl) DeleteWeek(ctx context.Context, owner string, weekId string) error {
	return r.store.DeleteDocument(ctx, owner, docstore.Achievements, weekId)
}

func (r *RepositoryImpl) ListWeeks(ctx context.Context, owner string) (map[string]Map, error) {
	docs, err := r.store.ListAllDocuments(ctx, owner, docstore.Achievements)
	if err != nil {
		return nil, err
	}
	weeks := make(map[string]Map, len(docs))
	for weekId, data := range docs {
		weeks[weekId] = decodeMap(weekId, data)
	}
	return weeks, nil
}

func (r *RepositoryImpl) write(ctx context.Context, owner string, weekId string, m Map) error {
	doc := make(map[string]Record, len(m))
	for key, record := range m {
		doc[key.String()] = record
	}
	if err := docstore.SetJSON(ctx, r.store, owner, docstore.Achievements, weekId, doc); err != nil {
		return fmt.Errorf("failed to store achievements of week %s: %w", weekId, err)
	}
	return nil
}

type storedRecord struct {
	Id        string          `json:"id"`
	Status    Status          `json:"status"`
	Comment   string          `json:"comment"`
	DayKey    string          `json:"dayKey"`
	HourKey   string          `json:"hourKey"`
	Date      json.RawMessage `json:"date"`
	CreatedAt json.RawMessage `json:"createdAt"`
}

// decodeMap reads a week document leniently. Entries with a malformed key or
// body are skipped, the key is the source of truth for day, hour and date.
func decodeMap(weekId string, data json.RawMessage) Map {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		log.WithField("week", weekId).Warnf("stored achievements are not an object, ignoring them: %v", err)
		return Map{}
	}
	m := make(Map, len(raw))
	for rawKey, rawRecord := range raw {
		key := slot_key.CompositeKey(rawKey)
		parts, err := slot_key.ParseKey(key)
		if err != nil {
			log.WithField("week", weekId).Warnf("skipping achievement: %v", err)
			continue
		}
		var stored storedRecord
		if err := json.Unmarshal(rawRecord, &stored); err != nil {
			log.WithFields(log.Fields{"week": weekId, "key": rawKey}).Warnf("skipping malformed achievement: %v", err)
			continue
		}
		m[key] = Record{
			Id:        stored.Id,
			Status:    stored.Status,
			Comment:   stored.Comment,
			DayKey:    parts.DayKey,
			HourKey:   parts.HourKey,
			Date:      parts.Date(),
			CreatedAt: createdAt(stored.CreatedAt),
		}
	}
	return m
}

func createdAt(raw json.RawMessage) time.Time {
	var t time.Time
	if err := json.Unmarshal(raw, &t); err == nil {
		return t
	}
	if in, ok := calendar_date.FromRaw(raw); ok {
		switch v := in.(type) {
		case calendar_date.EpochTimestamp:
			return time.Unix(v.Seconds, v.Nanoseconds)
		case calendar_date.EpochMillis:
			return time.UnixMilli(int64(v))
		}
	}
	return time.Time{}
}
