package kv

import (
	"context"

	"github.com/joestump/sitekit/internal/metrics"
)

// Instrument wraps s so that failures are counted in sitekit_storage_errors_total.
func Instrument(s Store) Store {
	return instrumented{s}
}

type instrumented struct {
	Store
}

func (i instrumented) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := i.Store.Get(ctx, key)
	if err != nil {
		metrics.StorageErrorsTotal.WithLabelValues("get").Inc()
	}
	return v, ok, err
}

func (i instrumented) Set(ctx context.Context, key, value string) error {
	err := i.Store.Set(ctx, key, value)
	if err != nil {
		metrics.StorageErrorsTotal.WithLabelValues("set").Inc()
	}
	return err
}
