package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/joestump/sitekit/internal/kv"
	"github.com/joestump/sitekit/internal/metrics"
	"github.com/joestump/sitekit/internal/visitor"
)

const (
	themeLight = "light"
	themeDark  = "dark"

	// themeStorageKey is the visitor storage key of the color scheme.
	themeStorageKey = "colorScheme"
)

func validTheme(t string) bool {
	return t == themeLight || t == themeDark
}

// themeFromRequest reads the "theme" cookie. Returns "" if absent or invalid,
// so the server omits data-theme and lets the page's inline script handle it.
func themeFromRequest(r *http.Request) string {
	c, err := r.Cookie("theme")
	if err != nil {
		return ""
	}
	if validTheme(c.Value) {
		return c.Value
	}
	return ""
}

// ThemeHandler handles the light/dark theme endpoints.
type ThemeHandler struct {
	backend      kv.Backend
	defaultTheme string
	secure       bool
	log          zerolog.Logger
}

// NewThemeHandler creates a new ThemeHandler.
func NewThemeHandler(backend kv.Backend, defaultTheme string, secure bool, log zerolog.Logger) *ThemeHandler {
	if !validTheme(defaultTheme) {
		defaultTheme = themeLight
	}
	return &ThemeHandler{backend: backend, defaultTheme: defaultTheme, secure: secure, log: log}
}

// Get handles GET /theme. The stored preference wins over the cookie, which
// wins over the configured default.
func (h *ThemeHandler) Get(w http.ResponseWriter, r *http.Request) {
	theme := h.defaultTheme
	if c := themeFromRequest(r); c != "" {
		theme = c
	}
	store := kv.Instrument(h.backend.Scope(visitor.FromContext(r.Context())))
	v, ok, err := store.Get(r.Context(), themeStorageKey)
	if err != nil {
		h.log.Debug().Err(err).Msg("theme storage read failed")
	} else if ok && validTheme(v) {
		theme = v
	}
	writeJSON(w, http.StatusOK, map[string]string{"theme": theme})
}

// Toggle handles POST /theme with theme=light|dark.
// It persists the choice and returns HX-Trigger for client-side swap.
func (h *ThemeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	theme := r.FormValue("theme")
	if !validTheme(theme) {
		http.Error(w, "invalid theme", http.StatusBadRequest)
		return
	}

	store := kv.Instrument(h.backend.Scope(visitor.FromContext(r.Context())))
	if err := store.Set(r.Context(), themeStorageKey, theme); err != nil {
		// The cookie below still carries the preference.
		h.log.Warn().Err(err).Msg("theme storage write dropped")
	}

	// Non-HttpOnly so the anti-flash script can read it.
	http.SetCookie(w, &http.Cookie{
		Name:     "theme",
		Value:    theme,
		Path:     "/",
		MaxAge:   365 * 24 * 60 * 60, // 1 year
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
		HttpOnly: false,
	})
	metrics.ThemeChangesTotal.WithLabelValues(theme).Inc()

	trigger, _ := json.Marshal(map[string]any{
		"themeChanged": map[string]string{"theme": theme},
	})
	w.Header().Set("HX-Trigger", string(trigger))
	w.WriteHeader(http.StatusOK)
}
