package analytics

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/joestump/sitekit/internal/consent"
)

// TriggerEvent is the HX-Trigger event name the page listens for.
const TriggerEvent = "consentUpdate"

// HXTrigger attaches the delta to the response as an HX-Trigger event, so the
// page can call gtag('consent', action, delta). It must report before the
// response header is written.
type HXTrigger struct {
	w http.ResponseWriter
}

// NewHXTrigger returns a reporter bound to one response.
func NewHXTrigger(w http.ResponseWriter) *HXTrigger {
	return &HXTrigger{w: w}
}

// Report implements consent.Reporter.
func (h *HXTrigger) Report(_ context.Context, action string, delta map[string]consent.Value) {
	trigger, err := json.Marshal(map[string]any{
		TriggerEvent: map[string]any{
			"action": action,
			"delta":  toStrings(delta),
		},
	})
	if err != nil {
		return
	}
	h.w.Header().Set("HX-Trigger", string(trigger))
}
