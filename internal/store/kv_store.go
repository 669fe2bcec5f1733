package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// KVEntry is a row in the kv_entries table.
type KVEntry struct {
	Namespace string    `db:"namespace"`
	Key       string    `db:"entry_key"`
	Value     string    `db:"entry_value"`
	UpdatedAt time.Time `db:"updated_at"`
}

// KVStore is the sqlx-backed store for per-visitor preferences.
type KVStore struct {
	db *sqlx.DB
}

// NewKVStore creates a new KVStore.
func NewKVStore(db *sqlx.DB) *KVStore {
	return &KVStore{db: db}
}

// q rebinds ? placeholders to the driver's native format.
func (s *KVStore) q(query string) string { return s.db.Rebind(query) }

// Get returns the value stored under (namespace, key), or ErrNotFound.
func (s *KVStore) Get(ctx context.Context, namespace, key string) (string, error) {
	var v string
	err := s.db.GetContext(ctx, &v, s.q(`
		SELECT entry_value FROM kv_entries WHERE namespace = ? AND entry_key = ?
	`), namespace, key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return v, nil
}

// Put stores value under (namespace, key), replacing any previous value.
// UPDATE-then-INSERT keeps the statement portable across sqlite, mysql and
// postgres; a concurrent insert of the same key falls back to UPDATE.
func (s *KVStore) Put(ctx context.Context, namespace, key, value string) error {
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx, s.q(`
		UPDATE kv_entries SET entry_value = ?, updated_at = ? WHERE namespace = ? AND entry_key = ?
	`), value, now, namespace, key)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	_, err = s.db.ExecContext(ctx, s.q(`
		INSERT INTO kv_entries (namespace, entry_key, entry_value, updated_at) VALUES (?, ?, ?, ?)
	`), namespace, key, value, now)
	if isUniqueConstraintError(err) {
		_, err = s.db.ExecContext(ctx, s.q(`
			UPDATE kv_entries SET entry_value = ?, updated_at = ? WHERE namespace = ? AND entry_key = ?
		`), value, now, namespace, key)
	}
	return err
}

// List returns every entry in a namespace ordered by key.
func (s *KVStore) List(ctx context.Context, namespace string) ([]*KVEntry, error) {
	var entries []*KVEntry
	err := s.db.SelectContext(ctx, &entries, s.q(`
		SELECT namespace, entry_key, entry_value, updated_at FROM kv_entries
		WHERE namespace = ? ORDER BY entry_key ASC
	`), namespace)
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteNamespace removes every entry for a visitor.
func (s *KVStore) DeleteNamespace(ctx context.Context, namespace string) error {
	_, err := s.db.ExecContext(ctx, s.q(`DELETE FROM kv_entries WHERE namespace = ?`), namespace)
	return err
}
