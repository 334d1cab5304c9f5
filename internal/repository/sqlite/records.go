package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/msomdec/taskboard/internal/domain"
)

// RecordStore implements domain.RecordStore on a single key/value table.
type RecordStore struct {
	db *sql.DB
}

// NewRecordStore creates a new SQLite-backed RecordStore.
func NewRecordStore(db *DB) *RecordStore {
	return &RecordStore{db: db.SqlDB}
}

func (s *RecordStore) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM records WHERE record_key = ?", key,
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return data, nil
}

// Set inserts or replaces the record. Last write wins.
func (s *RecordStore) Set(ctx context.Context, key string, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (record_key, data, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(record_key) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		key, data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("set record: %w", err)
	}
	return nil
}

func (s *RecordStore) Remove(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM records WHERE record_key = ?", key)
	if err != nil {
		return fmt.Errorf("remove record: %w", err)
	}
	return nil
}
