// Package kv provides the per-visitor key-value stores behind consent and
// theme preferences.
package kv

import (
	"context"
	"errors"
)

// ErrUnavailable is returned when the backing store cannot be used at all,
// e.g. storage is disabled or the session was never loaded.
var ErrUnavailable = errors.New("kv: storage unavailable")

// Store is a string key-value store scoped to one visitor.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Backend hands out a Store for a visitor namespace.
type Backend interface {
	Scope(visitor string) Store
}

// BackendFunc adapts a function to Backend.
type BackendFunc func(visitor string) Store

// Scope implements Backend.
func (f BackendFunc) Scope(visitor string) Store { return f(visitor) }

// Unavailable is a Store that always fails. It stands in when persistence is
// switched off so callers exercise their degraded path.
type Unavailable struct{}

func (Unavailable) Get(context.Context, string) (string, bool, error) {
	return "", false, ErrUnavailable
}

func (Unavailable) Set(context.Context, string, string) error {
	return ErrUnavailable
}
