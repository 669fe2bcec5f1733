package analytics_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joestump/sitekit/internal/analytics"
	"github.com/joestump/sitekit/internal/consent"
	"github.com/joestump/sitekit/internal/store"
	"github.com/joestump/sitekit/internal/testutil"
	"github.com/joestump/sitekit/internal/visitor"
)

var delta = map[string]consent.Value{
	"ad_storage":        consent.Denied,
	"analytics_storage": consent.Granted,
}

func TestHXTrigger(t *testing.T) {
	w := httptest.NewRecorder()
	analytics.NewHXTrigger(w).Report(context.Background(), consent.ActionUpdate, delta)

	var got map[string]struct {
		Action string            `json:"action"`
		Delta  map[string]string `json:"delta"`
	}
	require.NoError(t, json.Unmarshal([]byte(w.Header().Get("HX-Trigger")), &got))

	ev, ok := got[analytics.TriggerEvent]
	require.True(t, ok)
	assert.Equal(t, "update", ev.Action)
	assert.Equal(t, map[string]string{"ad_storage": "denied", "analytics_storage": "granted"}, ev.Delta)
}

func TestRecorder_RunPersistsAndDrains(t *testing.T) {
	rs := store.NewReportStore(testutil.NewTestDB(t))
	rec := analytics.NewRecorder(8, zerolog.Nop())

	ctx := visitor.WithID(context.Background(), "visitor-1")
	rec.Report(ctx, consent.ActionUpdate, delta)
	rec.Report(ctx, consent.ActionUpdate, delta)
	rec.Close()

	rec.Run(context.Background(), rs)

	reports, err := rs.ListByVisitor(context.Background(), "visitor-1", 10)
	require.NoError(t, err)
	assert.Len(t, reports, 2)
}

func TestRecorder_DrainsOnCancel(t *testing.T) {
	rs := store.NewReportStore(testutil.NewTestDB(t))
	rec := analytics.NewRecorder(8, zerolog.Nop())

	rec.Report(visitor.WithID(context.Background(), "v"), consent.ActionUpdate, delta)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.Run(ctx, rs)

	reports, err := rs.ListByVisitor(context.Background(), "v", 10)
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestRecorder_FullQueueDrops(t *testing.T) {
	rec := analytics.NewRecorder(1, zerolog.Nop())
	ctx := context.Background()

	// Neither call may block even though nothing is draining.
	rec.Report(ctx, consent.ActionUpdate, delta)
	rec.Report(ctx, consent.ActionUpdate, delta)
}

type countingReporter struct{ n int }

func (c *countingReporter) Report(context.Context, string, map[string]consent.Value) { c.n++ }

func TestMulti(t *testing.T) {
	a, b := &countingReporter{}, &countingReporter{}
	analytics.Multi{a, nil, b, analytics.Counting{}}.Report(context.Background(), consent.ActionUpdate, delta)
	assert.Equal(t, 1, a.n)
	assert.Equal(t, 1, b.n)
}
