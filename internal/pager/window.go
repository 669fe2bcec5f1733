// Package pager computes paginator windows for the static site's post lists.
package pager

// Window is the set of page buttons to render for one paginator.
// The Show* flags report whether a navigation button is enabled; a disabled
// button is still rendered, just not clickable.
type Window struct {
	ShowFirst bool  `json:"show_first"`
	ShowPrev  bool  `json:"show_prev"`
	ShowNext  bool  `json:"show_next"`
	ShowLast  bool  `json:"show_last"`
	PrevPage  int   `json:"prev_page,omitempty"`
	NextPage  int   `json:"next_page,omitempty"`
	Pages     []int `json:"pages"`
}

// Empty reports whether the window has nothing to render.
func (w Window) Empty() bool {
	return len(w.Pages) == 0
}

// Compute returns the contiguous window of page numbers around activePage.
// Page numbers are 1-indexed. The window starts at activePage and is shifted
// left when it would run past the last page. A total of one page or fewer, or
// an activePage outside [1, totalPages], yields an empty Window.
func Compute(totalPages, activePage, windowSize int) Window {
	if totalPages <= 1 {
		return Window{}
	}
	if activePage < 1 || activePage > totalPages {
		return Window{}
	}

	if windowSize > totalPages {
		windowSize = totalPages
	}
	if windowSize < 1 {
		windowSize = 1
	}

	start := activePage
	end := start + windowSize - 1
	if end > totalPages {
		start -= end - totalPages
		end = start + windowSize - 1
	}

	pages := make([]int, 0, windowSize)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}

	return Window{
		ShowFirst: activePage != 1,
		ShowPrev:  activePage != 1,
		ShowNext:  activePage != totalPages,
		ShowLast:  activePage != totalPages,
		PrevPage:  max(activePage-1, 1),
		NextPage:  min(activePage+1, totalPages),
		Pages:     pages,
	}
}
