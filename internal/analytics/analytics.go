// Package analytics delivers consent deltas to the analytics consent API.
//
// The browser's gtag shim is the real consumer: HXTrigger hands it the delta
// on the response, and Recorder keeps an audit trail of what was sent.
package analytics

import (
	"context"

	"github.com/joestump/sitekit/internal/consent"
	"github.com/joestump/sitekit/internal/metrics"
)

// Multi fans a report out to several reporters.
type Multi []consent.Reporter

// Report implements consent.Reporter.
func (m Multi) Report(ctx context.Context, action string, delta map[string]consent.Value) {
	for _, r := range m {
		if r != nil {
			r.Report(ctx, action, delta)
		}
	}
}

// Counting records reported keys in Prometheus.
type Counting struct{}

// Report implements consent.Reporter.
func (Counting) Report(_ context.Context, _ string, delta map[string]consent.Value) {
	for _, v := range delta {
		metrics.ConsentKeysReportedTotal.WithLabelValues(string(v)).Inc()
	}
}

func toStrings(delta map[string]consent.Value) map[string]string {
	out := make(map[string]string, len(delta))
	for k, v := range delta {
		out[k] = string(v)
	}
	return out
}
