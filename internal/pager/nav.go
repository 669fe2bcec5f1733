package pager

import "strconv"

// inertURL is the link target of the active page button.
const inertURL = "javascript:void(0);"

// Labels holds the navigation button captions. A caption of a single blank
// (or an empty one) suppresses that button.
type Labels struct {
	First string
	Prev  string
	Next  string
	Last  string
}

// Button is one rendered paginator entry.
type Button struct {
	Label    string `json:"label"`
	URL      string `json:"url"`
	Disabled bool   `json:"disabled,omitempty"`
	Active   bool   `json:"active,omitempty"`
}

// Nav is a Window resolved against concrete page URLs.
type Nav struct {
	Window  Window   `json:"window"`
	Buttons []Button `json:"buttons"`
}

// Build resolves the active page of s and lays out its buttons. It returns
// false when there is nothing to render: fewer than two pages or no active page.
func Build(s *State, size int, labels Labels) (Nav, bool) {
	total := len(s.Pages)
	if total <= 1 || s.Active <= 0 {
		return Nav{}, false
	}

	w := Compute(total, s.Active, size)
	if w.Empty() {
		return Nav{}, false
	}

	url := func(page int) string { return s.Pages[page-1] }

	buttons := make([]Button, 0, len(w.Pages)+4)
	buttons = appendNav(buttons, labels.First, url(1), !w.ShowFirst)
	buttons = appendNav(buttons, labels.Prev, url(w.PrevPage), !w.ShowPrev)
	for _, p := range w.Pages {
		b := Button{Label: strconv.Itoa(p), URL: url(p)}
		if p == s.Active {
			b.Active = true
			b.URL = inertURL
		}
		buttons = append(buttons, b)
	}
	buttons = appendNav(buttons, labels.Next, url(w.NextPage), !w.ShowNext)
	buttons = appendNav(buttons, labels.Last, url(total), !w.ShowLast)

	return Nav{Window: w, Buttons: buttons}, true
}

func appendNav(buttons []Button, label, url string, disabled bool) []Button {
	if label == "" || label == " " {
		return buttons
	}
	return append(buttons, Button{Label: label, URL: url, Disabled: disabled})
}
