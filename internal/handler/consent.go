package handler

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/joestump/sitekit/internal/analytics"
	"github.com/joestump/sitekit/internal/consent"
	"github.com/joestump/sitekit/internal/kv"
	"github.com/joestump/sitekit/internal/metrics"
	"github.com/joestump/sitekit/internal/visitor"
)

// ConsentOptions configures the consent endpoints.
type ConsentOptions struct {
	Categories     consent.Categories
	CompleteOnSave bool
	// Recorder receives every reported delta in addition to the HX-Trigger
	// header. May be nil.
	Recorder consent.Reporter
}

// ConsentHandler serves the cookie-consent banner and records decisions.
type ConsentHandler struct {
	backend kv.Backend
	opts    ConsentOptions
	log     zerolog.Logger
}

// NewConsentHandler creates a new ConsentHandler.
func NewConsentHandler(backend kv.Backend, opts ConsentOptions, log zerolog.Logger) *ConsentHandler {
	return &ConsentHandler{backend: backend, opts: opts, log: log}
}

// reconciler builds a Reconciler over the requesting visitor's storage that
// reports through the response and the recorder.
func (h *ConsentHandler) reconciler(w http.ResponseWriter, r *http.Request) *consent.Reconciler {
	id := visitor.FromContext(r.Context())
	return consent.NewReconciler(
		kv.Instrument(h.backend.Scope(id)),
		consent.WithReporter(analytics.Multi{analytics.NewHXTrigger(w), h.opts.Recorder, analytics.Counting{}}),
		consent.WithLogger(h.log.With().Str("visitor", id).Logger()),
		consent.WithCompleteOnSave(h.opts.CompleteOnSave),
	)
}

type consentView struct {
	BasePage
	Categories consent.Categories
	Saved      bool
}

// Settings handles GET /consent/settings: the payload for the page's
// gtag('consent', 'default', ...) call.
func (h *ConsentHandler) Settings(w http.ResponseWriter, r *http.Request) {
	rec := h.reconciler(w, r)
	writeJSON(w, http.StatusOK, rec.DefaultSettings(r.Context(), h.opts.Categories))
}

// Banner handles GET /consent/banner. Visitors who finished the consent flow
// get 204 No Content.
func (h *ConsentHandler) Banner(w http.ResponseWriter, r *http.Request) {
	rec := h.reconciler(w, r)
	if rec.BannerDone(r.Context()) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	var toggles consent.Categories
	for _, c := range h.opts.Categories {
		if !c.Exempt {
			toggles = append(toggles, c)
		}
	}
	renderFragment(w, "consent_bar", consentView{Categories: toggles})
}

// Form handles GET /consent/form: the settings form with each checkbox
// reflecting the stored decision.
func (h *ConsentHandler) Form(w http.ResponseWriter, r *http.Request) {
	rec := h.reconciler(w, r)
	renderFragment(w, "consent_settings", consentView{Categories: rec.Load(r.Context(), h.opts.Categories)})
}

// Page handles GET /consent, a full preferences page for visitors without
// JavaScript.
func (h *ConsentHandler) Page(w http.ResponseWriter, r *http.Request) {
	rec := h.reconciler(w, r)
	render(w, "consent.html", consentView{
		BasePage:   BasePage{Theme: themeFromRequest(r)},
		Categories: rec.Load(r.Context(), h.opts.Categories),
		Saved:      r.URL.Query().Get("saved") == "1",
	})
}

// Bulk handles POST /consent/bulk with decision=accept|deny. Plain form posts
// from the preferences page are redirected back to it.
func (h *ConsentHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "bad request", "bad_request")
		return
	}

	var decision consent.Value
	var kind string
	switch r.FormValue("decision") {
	case "accept":
		decision, kind = consent.Granted, "bulk_accept"
	case "deny":
		decision, kind = consent.Denied, "bulk_deny"
	default:
		writeError(w, http.StatusBadRequest, "decision must be accept or deny", "invalid_decision")
		return
	}

	rec := h.reconciler(w, r)
	res := rec.ApplyBulk(r.Context(), rec.Load(r.Context(), h.opts.Categories), decision)
	metrics.ConsentUpdatesTotal.WithLabelValues(kind).Inc()

	if !isHTMX(r) && r.Header.Get("Accept") != "application/json" {
		http.Redirect(w, r, "/consent?saved=1", http.StatusSeeOther)
		return
	}
	h.respond(w, r, res)
}

// Save handles POST /consent with one consent=<category> value per checked box.
func (h *ConsentHandler) Save(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "bad request", "bad_request")
		return
	}

	checked := make(map[string]bool)
	for _, key := range r.Form["consent"] {
		if _, ok := h.opts.Categories.Lookup(key); !ok {
			writeError(w, http.StatusBadRequest, "unknown consent category "+key, "unknown_category")
			return
		}
		checked[key] = true
	}

	rec := h.reconciler(w, r)
	res := rec.ApplySelective(r.Context(), rec.Load(r.Context(), h.opts.Categories), checked)
	if len(res.Delta) > 0 {
		metrics.ConsentUpdatesTotal.WithLabelValues("selective").Inc()
	}

	if !isHTMX(r) && r.Header.Get("Accept") != "application/json" {
		http.Redirect(w, r, "/consent?saved=1", http.StatusSeeOther)
		return
	}
	h.respond(w, r, res)
}

// respond closes the banner for HTMX callers (empty body swapped over it) and
// returns the result as JSON otherwise.
func (h *ConsentHandler) respond(w http.ResponseWriter, r *http.Request, res consent.Result) {
	if isHTMX(r) {
		w.WriteHeader(http.StatusOK)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
