package analytics

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/joestump/sitekit/internal/consent"
	"github.com/joestump/sitekit/internal/metrics"
	"github.com/joestump/sitekit/internal/store"
	"github.com/joestump/sitekit/internal/visitor"
)

// Recorder queues reports for the audit trail. Report never blocks: when the
// queue is full the event is dropped and counted.
type Recorder struct {
	ch  chan store.ReportEvent
	log zerolog.Logger
}

// NewRecorder creates a Recorder with a queue of size buffer.
func NewRecorder(buffer int, log zerolog.Logger) *Recorder {
	return &Recorder{ch: make(chan store.ReportEvent, buffer), log: log}
}

// Report implements consent.Reporter.
func (r *Recorder) Report(ctx context.Context, action string, delta map[string]consent.Value) {
	e := store.ReportEvent{
		Visitor: visitor.FromContext(ctx),
		Action:  action,
		Delta:   toStrings(delta),
	}
	select {
	case r.ch <- e:
	default:
		metrics.ReportsDroppedTotal.Inc()
		r.log.Warn().Str("visitor", e.Visitor).Msg("consent report queue full, dropping")
	}
}

// Close stops accepting events; Run drains what is queued and returns.
func (r *Recorder) Close() {
	close(r.ch)
}

// Run persists queued events until the queue is closed or ctx is cancelled.
// On cancellation it drains remaining events before returning. Writes already
// dequeued are not aborted by cancellation.
func (r *Recorder) Run(ctx context.Context, rs *store.ReportStore) {
	for {
		select {
		case e, ok := <-r.ch:
			if !ok {
				return
			}
			r.write(context.WithoutCancel(ctx), rs, e)
		case <-ctx.Done():
			for {
				select {
				case e, ok := <-r.ch:
					if !ok {
						return
					}
					r.write(context.Background(), rs, e)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(ctx context.Context, rs *store.ReportStore, e store.ReportEvent) {
	if err := rs.Record(ctx, e); err != nil {
		metrics.ReportsRecordErrorsTotal.Inc()
		r.log.Error().Err(err).Str("visitor", e.Visitor).Msg("consent report write failed")
		return
	}
	metrics.ReportsRecordedTotal.Inc()
}
