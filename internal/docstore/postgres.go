package docstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

// PostgresStore is the durable backend of authenticated sessions. Documents
// live in a single JSONB table keyed by (owner, collection, id).
type PostgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetDocument(ctx context.Context, owner string, collection string, id string) (json.RawMessage, error) {
	query := `SELECT data FROM documents WHERE owner = $1 AND collection = $2 AND id = $3`
	var data []byte
	err := s.db.QueryRow(ctx, query, owner, collection, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		log.Errorf("failed to get document %s/%s: %v", collection, id, err)
		return nil, unavailable("get", collection, id, err)
	}
	return data, nil
}

func (s *PostgresStore) SetDocument(ctx context.Context, owner string, collection string, id string, data json.RawMessage) error {
	query := `INSERT INTO documents (owner, collection, id, data) 
				VALUES ($1, $2, $3, $4::jsonb) 
				ON CONFLICT (owner, collection, id) DO UPDATE SET 
					data = EXCLUDED.data,
					updated_at = now()`
	_, err := s.db.Exec(ctx, query, owner, collection, id, string(data))
	if err != nil {
		log.Errorf("failed to set document %s/%s: %v", collection, id, err)
		return unavailable("set", collection, id, err)
	}
	return nil
}

func (s *PostgresStore) DeleteDocument(ctx context.Context, owner string, collection string, id string) error {
	query := `DELETE FROM documents WHERE owner = $1 AND collection = $2 AND id = $3`
	_, err := s.db.Exec(ctx, query, owner, collection, id)
	if err != nil {
		log.Errorf("failed to delete document %s/%s: %v", collection, id, err)
		return unavailable("delete", collection, id, err)
	}
	return nil
}

func (s *PostgresStore) ListAllDocuments(ctx context.Context, owner string, collection string) (map[string]json.RawMessage, error) {
	query := `SELECT id, data FROM documents WHERE owner = $1 AND collection = $2 ORDER BY id`
	rows, err := s.db.Query(ctx, query, owner, collection)
	if err != nil {
		return nil, unavailable("list", collection, "*", err)
	}
	defer rows.Close()

	result := make(map[string]json.RawMessage)
	for rows.Next() {
		var id string
		var data []byte
		if err := rows.Scan(&id, &data); err != nil {
			return nil, unavailable("list", collection, "*", err)
		}
		result[id] = data
	}
	if err := rows.Err(); err != nil {
		return nil, unavailable("list", collection, "*", err)
	}
	return result, nil
}
