package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/joestump/sitekit/internal/store"
	"github.com/joestump/sitekit/internal/visitor"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// parseLimit extracts limit from the query string.
// limit defaults to 20 and is silently capped at 100.
func parseLimit(r *http.Request) int {
	limit := defaultHistoryLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return limit
}

// HistoryHandler lets a visitor see which consent changes were reported on
// their behalf.
type HistoryHandler struct {
	reports *store.ReportStore
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(reports *store.ReportStore) *HistoryHandler {
	return &HistoryHandler{reports: reports}
}

type historyEntry struct {
	Action    string            `json:"action"`
	Delta     map[string]string `json:"delta"`
	CreatedAt time.Time         `json:"created_at"`
}

// List handles GET /consent/history?limit=.
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	id := visitor.FromContext(r.Context())
	if id == "" {
		writeJSON(w, http.StatusOK, map[string]any{"reports": []historyEntry{}})
		return
	}

	reports, err := h.reports.ListByVisitor(r.Context(), id, parseLimit(r))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not load history", "internal_error")
		return
	}

	entries := make([]historyEntry, 0, len(reports))
	for _, rep := range reports {
		delta, err := rep.Delta()
		if err != nil {
			continue
		}
		entries = append(entries, historyEntry{Action: rep.Action, Delta: delta, CreatedAt: rep.CreatedAt})
	}
	writeJSON(w, http.StatusOK, map[string]any{"reports": entries})
}
