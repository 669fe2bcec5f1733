// Package handler wires the HTTP surface the static site calls into.
package handler

import (
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/joestump/sitekit/internal/kv"
	"github.com/joestump/sitekit/internal/store"
	"github.com/joestump/sitekit/internal/visitor"
)

// Deps holds all dependencies required to build the HTTP router.
type Deps struct {
	// SessionManager is nil unless the session storage backend is in use.
	SessionManager *scs.SessionManager
	Visitor        *visitor.Middleware
	Backend        kv.Backend
	// ReportStore serves /consent/history; nil without a database.
	ReportStore    *store.ReportStore
	Pager          PagerOptions
	Consent        ConsentOptions
	DefaultTheme   string
	SecureCookies  bool
	CORSOrigins    []string
	Logger         zerolog.Logger
}

// NewRouter assembles the full chi router with all middleware and routes.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	// The static site is usually served from another origin. Credentials are
	// allowed so the visitor and session cookies travel with fetches.
	if len(deps.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   deps.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "HX-Request", "HX-Current-URL", "HX-Target", "HX-Trigger"},
			ExposedHeaders:   []string{"HX-Trigger"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	// Pager endpoints are stateless; no visitor or session needed.
	pagerHandler := NewPagerHandler(deps.Pager, deps.Logger)
	r.Get("/pager", pagerHandler.Show)
	r.Get("/pager/window", pagerHandler.Window)

	backend := deps.Backend
	if backend == nil {
		backend = kv.BackendFunc(func(string) kv.Store { return kv.Unavailable{} })
	}

	r.Group(func(r chi.Router) {
		if deps.SessionManager != nil {
			r.Use(deps.SessionManager.LoadAndSave)
		}
		if deps.Visitor != nil {
			r.Use(deps.Visitor.Identify)
		}

		consentHandler := NewConsentHandler(backend, deps.Consent, deps.Logger)
		r.Get("/consent", consentHandler.Page)
		r.Post("/consent", consentHandler.Save)
		r.Get("/consent/settings", consentHandler.Settings)
		r.Get("/consent/banner", consentHandler.Banner)
		r.Get("/consent/form", consentHandler.Form)
		r.Post("/consent/bulk", consentHandler.Bulk)
		if deps.ReportStore != nil {
			r.Get("/consent/history", NewHistoryHandler(deps.ReportStore).List)
		}

		themeHandler := NewThemeHandler(backend, deps.DefaultTheme, deps.SecureCookies, deps.Logger)
		r.Get("/theme", themeHandler.Get)
		r.Post("/theme", themeHandler.Toggle)
	})

	return r
}
