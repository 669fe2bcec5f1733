package kv

import (
	"context"
	"errors"

	"github.com/joestump/sitekit/internal/store"
)

// SQL stores values in the kv_entries table, one namespace per visitor.
type SQL struct {
	kv        *store.KVStore
	namespace string
}

// SQLBackend scopes a KVStore to visitors.
type SQLBackend struct {
	kv *store.KVStore
}

// NewSQLBackend creates a Backend over kv.
func NewSQLBackend(kv *store.KVStore) *SQLBackend {
	return &SQLBackend{kv: kv}
}

// Scope implements Backend. An empty visitor cannot be persisted.
func (b *SQLBackend) Scope(visitor string) Store {
	if visitor == "" {
		return Unavailable{}
	}
	return &SQL{kv: b.kv, namespace: visitor}
}

func (s *SQL) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.kv.Get(ctx, s.namespace, key)
	if errors.Is(err, store.ErrNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (s *SQL) Set(ctx context.Context, key, value string) error {
	return s.kv.Put(ctx, s.namespace, key, value)
}
