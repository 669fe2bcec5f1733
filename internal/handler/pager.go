package handler

import (
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/joestump/sitekit/internal/metrics"
	"github.com/joestump/sitekit/internal/pager"
)

// DefaultMaxPages bounds page counts accepted from clients when
// PagerOptions.MaxPages is unset.
const DefaultMaxPages = 1000

// PagerOptions configures the paginator endpoints.
type PagerOptions struct {
	Sizer            pager.Sizer
	Labels           pager.Labels
	QueryURLTemplate string
	RefreshDelay     time.Duration
	// MaxPages is the largest total, count or page list a request may carry.
	MaxPages int
}

// PagerHandler serves paginator windows for the static post lists.
type PagerHandler struct {
	opts PagerOptions
	log  zerolog.Logger
}

// NewPagerHandler creates a new PagerHandler.
func NewPagerHandler(opts PagerOptions, log zerolog.Logger) *PagerHandler {
	if opts.Sizer == nil {
		opts.Sizer = pager.Fixed(5)
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	return &PagerHandler{opts: opts, log: log}
}

// Window handles GET /pager/window?total=&active=&size=.
// It exposes the bare window computation; size defaults to the configured
// sizer evaluated at width=.
func (h *PagerHandler) Window(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	total, err := intParam(q, "total", 0)
	if err != nil || total < 0 {
		writeError(w, http.StatusBadRequest, "total must be a non-negative integer", "invalid_total")
		return
	}
	if total > h.opts.MaxPages {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("total must not exceed %d", h.opts.MaxPages), "too_many_pages")
		return
	}
	active, err := intParam(q, "active", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "active must be an integer", "invalid_active")
		return
	}
	width, _ := intParam(q, "width", 0)
	size, err := intParam(q, "size", h.opts.Sizer.Size(width))
	if err != nil {
		writeError(w, http.StatusBadRequest, "size must be an integer", "invalid_size")
		return
	}

	win := pager.Compute(total, active, size)
	if win.Pages == nil {
		win.Pages = []int{}
	}
	writeJSON(w, http.StatusOK, win)
}

// pagerView is the template data for the "paginator" fragment.
type pagerView struct {
	RefreshDelayMS int64
	Buttons        []buttonView
}

type buttonView struct {
	Label    string
	URL      any // template.URL for pseudo-URLs we generated, string otherwise
	Disabled bool
	Active   bool
}

// Show handles GET /pager.
//
// Query parameters:
//   - page: repeated, the static page URLs in order
//   - count: page count from a completed client-side query (-1 restores the static pages)
//   - active: 1-based active page; when absent it is resolved from path (or the Referer)
//   - click: a page URL the visitor just clicked
//   - width: viewport width in pixels for automatic sizing
//
// The response is JSON, or the "paginator" fragment for HTMX requests. When
// there is nothing to render the response is 204 No Content.
func (h *PagerHandler) Show(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() { metrics.PagerDuration.Observe(time.Since(start).Seconds()) }()

	q := r.URL.Query()
	static := q["page"]
	if len(static) > h.opts.MaxPages {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %d pages are accepted", h.opts.MaxPages), "too_many_pages")
		return
	}
	state := pager.NewState(static)

	generated := false
	if raw := q.Get("count"); raw != "" {
		count, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "count must be an integer", "invalid_count")
			return
		}
		if count > h.opts.MaxPages {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("count must not exceed %d", h.opts.MaxPages), "too_many_pages")
			return
		}
		if err := state.QueryDone(count, static, h.opts.QueryURLTemplate); err != nil {
			h.log.Debug().Err(err).Msg("ignoring query-done notification")
		} else {
			generated = count > 0
		}
	}

	if raw := q.Get("active"); raw != "" {
		active, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "active must be an integer", "invalid_active")
			return
		}
		state.Active = active
	}
	state.Resolve(currentPath(r))
	if href := q.Get("click"); href != "" {
		state.Click(href)
	}

	width, _ := intParam(q, "width", 0)
	nav, ok := pager.Build(state, h.opts.Sizer.Size(width), h.opts.Labels)
	if !ok {
		metrics.PagerRendersTotal.WithLabelValues("empty").Inc()
		w.WriteHeader(http.StatusNoContent)
		return
	}
	metrics.PagerRendersTotal.WithLabelValues("rendered").Inc()

	if !isHTMX(r) {
		writeJSON(w, http.StatusOK, nav)
		return
	}

	trusted := map[string]bool{}
	if generated {
		for _, p := range state.Pages {
			trusted[p] = true
		}
	}
	view := pagerView{RefreshDelayMS: h.opts.RefreshDelay.Milliseconds()}
	for _, b := range nav.Buttons {
		view.Buttons = append(view.Buttons, buttonView{
			Label:    b.Label,
			URL:      buttonURL(b, trusted),
			Disabled: b.Disabled,
			Active:   b.Active,
		})
	}
	renderFragment(w, "paginator", view)
}

// buttonURL marks only URLs this service produced as safe; page URLs supplied
// by the client go through html/template's URL sanitizer.
func buttonURL(b pager.Button, trusted map[string]bool) any {
	if b.Active || trusted[b.URL] {
		return template.URL(b.URL)
	}
	return b.URL
}

// currentPath is the page the paginator sits on: the path parameter, or the
// path of the Referer.
func currentPath(r *http.Request) string {
	if p := r.URL.Query().Get("path"); p != "" {
		return p
	}
	if ref := r.Referer(); ref != "" {
		if u, err := url.Parse(ref); err == nil {
			return u.Path
		}
	}
	return ""
}

func intParam(q url.Values, name string, def int) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}
