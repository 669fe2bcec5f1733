package pager

import (
	"fmt"
	"slices"
	"strings"
)

// StaticPages is the page-count sentinel meaning "use the static page list".
const StaticPages = -1

// DefaultQueryURLTemplate is the pseudo-URL used for client-side query pages.
// The single %d verb receives the 1-based page number.
const DefaultQueryURLTemplate = "javascript:PostQuery.pagerShow(%d);"

// State is the caller-owned paginator state: the ordered page URLs and the
// active page (1-indexed, 0 when unresolved).
type State struct {
	Pages  []string
	Active int
}

// NewState returns a State over a copy of pages with no active page.
func NewState(pages []string) *State {
	return &State{Pages: slices.Clone(pages)}
}

// Resolve sets Active from the current location when it is not yet known.
// It returns false when the path is not one of the pages.
func (s *State) Resolve(path string) bool {
	if s.Active > 0 {
		return true
	}
	s.Active = indexOf(s.Pages, path)
	return s.Active > 0
}

// Click moves the active page to href. An unknown href leaves the state as is.
func (s *State) Click(href string) bool {
	n := indexOf(s.Pages, href)
	if n == 0 {
		return false
	}
	s.Active = n
	return true
}

// QueryDone applies a "query completed" notification. A positive pageCount
// replaces the pages with generated pseudo-URLs and activates the first one;
// StaticPages restores static and clears the active page. Any other count is
// rejected and the state is left untouched.
func (s *State) QueryDone(pageCount int, static []string, urlTemplate string) error {
	switch {
	case pageCount > 0:
		if urlTemplate == "" || !strings.Contains(urlTemplate, "%d") {
			urlTemplate = DefaultQueryURLTemplate
		}
		pages := make([]string, 0, pageCount)
		for i := 1; i <= pageCount; i++ {
			pages = append(pages, fmt.Sprintf(urlTemplate, i))
		}
		s.Pages = pages
		s.Active = 1
		return nil
	case pageCount == StaticPages:
		s.Pages = slices.Clone(static)
		s.Active = 0
		return nil
	default:
		// Left untouched rather than cleared, so a bogus count from the client
		// cannot hide the static paginator.
		return fmt.Errorf("unexpected page count %d", pageCount)
	}
}

func indexOf(pages []string, url string) int {
	return slices.Index(pages, url) + 1
}
