package docstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

// SQLiteStore keeps documents in a local sqlite file. It is the local mirror
// the milestone store falls back to when the durable backend is unreachable.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

func (s *SQLiteStore) GetDocument(ctx context.Context, owner string, collection string, id string) (json.RawMessage, error) {
	var data string
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM documents WHERE owner = ? AND collection = ? AND id = ?`,
		owner, collection, id,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, unavailable("get", collection, id, err)
	}
	return json.RawMessage(data), nil
}

func (s *SQLiteStore) SetDocument(ctx context.Context, owner string, collection string, id string, data json.RawMessage) error {
	now := s.now().UnixMilli()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (owner, collection, id, data, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT (owner, collection, id) DO UPDATE SET
				data = excluded.data,
				updated_at = excluded.updated_at`,
		owner, collection, id, string(data), now, now,
	)
	if err != nil {
		log.Errorf("failed to write local document %s/%s: %v", collection, id, err)
		return unavailable("set", collection, id, err)
	}
	return nil
}

func (s *SQLiteStore) DeleteDocument(ctx context.Context, owner string, collection string, id string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM documents WHERE owner = ? AND collection = ? AND id = ?`,
		owner, collection, id,
	)
	if err != nil {
		return unavailable("delete", collection, id, err)
	}
	return nil
}

func (s *SQLiteStore) ListAllDocuments(ctx context.Context, owner string, collection string) (map[string]json.RawMessage, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data FROM documents WHERE owner = ? AND collection = ? ORDER BY id`,
		owner, collection,
	)
	if err != nil {
		return nil, unavailable("list", collection, "*", err)
	}
	defer rows.Close()

	result := make(map[string]json.RawMessage)
	for rows.Next() {
		var id, data string
		if err := rows.Scan(&id, &data); err != nil {
			return nil, unavailable("list", collection, "*", err)
		}
		result[id] = json.RawMessage(data)
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list", collection, "*", err)
	}
	return result, nil
}
