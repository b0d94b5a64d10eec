package activity

import (
	"context"
	"sync"
)

// CaptureHook records events for assertions in tests.
type CaptureHook struct {
	Events []Event
	Err    error
	mu     sync.Mutex
}

// Notify records the event and returns any configured error.
func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, NormalizeEvent(event))
	return h.Err
}

// Verbs returns the recorded verb sequence in emission order, letting tests
// assert a lifecycle like object.initialized through object.destroyed in one
// comparison.
func (h *CaptureHook) Verbs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	verbs := make([]string, 0, len(h.Events))
	for _, event := range h.Events {
		verbs = append(verbs, event.Verb)
	}
	return verbs
}

// ForVerb returns the recorded events matching verb, in emission order.
func (h *CaptureHook) ForVerb(verb string) []Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	var matched []Event
	for _, event := range h.Events {
		if event.Verb == verb {
			matched = append(matched, event)
		}
	}
	return matched
}
