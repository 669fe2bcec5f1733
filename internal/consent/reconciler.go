package consent

import (
	"context"
	"maps"

	"github.com/rs/zerolog"
)

const (
	// KeyPrefix namespaces a category's persisted decision.
	KeyPrefix = "cookieConsent"
	// DoneKey marks that the visitor has completed the consent flow.
	DoneKey = "cookieConsentDone"

	// ActionUpdate is the action tag passed to the Reporter.
	ActionUpdate = "update"
)

// Storage is the per-visitor key-value persistence used for decisions.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// Reporter forwards changed tracking keys to the analytics consent API.
// Implementations must not block the caller on delivery.
type Reporter interface {
	Report(ctx context.Context, action string, delta map[string]Value)
}

// Result is the outcome of a consent change.
type Result struct {
	Categories Categories       `json:"categories"`
	Delta      map[string]Value `json:"delta"`
}

// Reconciler loads and applies consent decisions for one visitor's storage.
// Storage failures never surface to the caller: reads fall back to unset and
// writes are logged and dropped.
type Reconciler struct {
	store          Storage
	reporter       Reporter
	log            zerolog.Logger
	completeOnSave bool
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithReporter sets where deltas are reported.
func WithReporter(rep Reporter) Option {
	return func(r *Reconciler) { r.reporter = rep }
}

// WithLogger sets the logger for degraded storage.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Reconciler) { r.log = l }
}

// WithCompleteOnSave marks the flow completed on every selective save, even
// when nothing changed.
func WithCompleteOnSave(v bool) Option {
	return func(r *Reconciler) { r.completeOnSave = v }
}

// NewReconciler creates a Reconciler over store.
func NewReconciler(store Storage, opts ...Option) *Reconciler {
	r := &Reconciler{store: store, log: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Load returns a copy of cs with each Value read from storage. Exempt
// categories are always granted.
func (r *Reconciler) Load(ctx context.Context, cs Categories) Categories {
	out := cs.Clone()
	for i := range out {
		c := &out[i]
		if c.Exempt {
			c.Value = Granted
			continue
		}
		v, ok, err := r.store.Get(ctx, KeyPrefix+c.Key)
		if err != nil {
			r.log.Warn().Err(err).Str("category", c.Key).Msg("consent storage read failed")
			c.Value = Unset
			continue
		}
		if !ok {
			c.Value = Unset
			continue
		}
		c.Value = ParseValue(v)
	}
	return out
}

// LoadEffective maps every tracking key to its effective decision.
func (r *Reconciler) LoadEffective(ctx context.Context, cs Categories) map[string]Value {
	eff := make(map[string]Value)
	for _, c := range r.Load(ctx, cs) {
		v := c.effective()
		for _, k := range c.Group {
			eff[k] = v
		}
	}
	return eff
}

// DefaultSettings is the payload for the analytics "default" consent call:
// the effective decisions plus each category's passthrough params.
func (r *Reconciler) DefaultSettings(ctx context.Context, cs Categories) map[string]any {
	settings := make(map[string]any)
	for _, c := range cs {
		for k, v := range c.Params {
			settings[k] = v
		}
	}
	for k, v := range r.LoadEffective(ctx, cs) {
		settings[k] = string(v)
	}
	return settings
}

// ApplyBulk grants or denies every non-exempt category. Exempt categories are
// neither changed nor reported. The consent flow is marked completed.
func (r *Reconciler) ApplyBulk(ctx context.Context, cs Categories, decision Value) Result {
	if decision != Granted {
		decision = Denied
	}

	out := cs.Clone()
	delta := make(map[string]Value)
	for i := range out {
		c := &out[i]
		if c.Exempt {
			continue
		}
		r.set(ctx, KeyPrefix+c.Key, string(decision))
		c.Value = decision
		for _, k := range c.Group {
			delta[k] = decision
		}
	}

	r.markDone(ctx)
	r.report(ctx, delta)
	return Result{Categories: out, Delta: delta}
}

// ApplySelective grants the categories named in checked and denies the rest.
// Only categories whose value changed are persisted and reported. Exempt
// categories have no toggle and are left alone.
func (r *Reconciler) ApplySelective(ctx context.Context, cs Categories, checked map[string]bool) Result {
	out := cs.Clone()
	delta := make(map[string]Value)
	for i := range out {
		c := &out[i]
		if c.Exempt {
			continue
		}
		next := Denied
		if checked[c.Key] {
			next = Granted
		}
		if next == c.Value {
			continue
		}
		r.set(ctx, KeyPrefix+c.Key, string(next))
		c.Value = next
		for _, k := range c.Group {
			delta[k] = next
		}
	}

	if len(delta) > 0 || r.completeOnSave {
		r.markDone(ctx)
	}
	r.report(ctx, delta)
	return Result{Categories: out, Delta: delta}
}

// BannerDone reports whether the visitor already completed the consent flow.
// Unreadable storage counts as not done.
func (r *Reconciler) BannerDone(ctx context.Context) bool {
	v, ok, err := r.store.Get(ctx, DoneKey)
	if err != nil {
		r.log.Warn().Err(err).Msg("consent storage read failed")
		return false
	}
	return ok && v != ""
}

func (r *Reconciler) markDone(ctx context.Context) {
	r.set(ctx, DoneKey, "true")
}

func (r *Reconciler) set(ctx context.Context, key, value string) {
	if err := r.store.Set(ctx, key, value); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("consent storage write dropped")
	}
}

func (r *Reconciler) report(ctx context.Context, delta map[string]Value) {
	if r.reporter == nil || len(delta) == 0 {
		return
	}
	r.reporter.Report(ctx, ActionUpdate, maps.Clone(delta))
}
