package activity

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Event describes one occurrence in an environment's lifecycle: an object
// being initialized or destroyed, a property write, or a history sample.
// IDs are stringly-typed to avoid coupling call sites to specific UUID types;
// domain details (type tag, property name, snapshot ID, old/new values) ride
// in Metadata under the Metadata* keys and are read back through the typed
// accessors below.
type Event struct {
	Verb           string
	ActorID        string
	UserID         string
	TenantID       string
	ObjectType     string
	ObjectID       string
	Channel        string
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// TypeTag returns the registry type tag the event's object was constructed
// under, when recorded.
func (e Event) TypeTag() string {
	return e.metadataString(MetadataTypeTag)
}

// Property returns the property name a property-write event concerns.
func (e Event) Property() string {
	return e.metadataString(MetadataProperty)
}

// SnapshotID returns the history snapshot identifier a sampling event carries.
func (e Event) SnapshotID() string {
	return e.metadataString(MetadataSnapshotID)
}

// OldValue returns the previous property value recorded on a rewrite, with ok
// reporting whether one was present.
func (e Event) OldValue() (any, bool) {
	value, ok := e.Metadata[MetadataOldValue]
	return value, ok
}

// NewValue returns the property value recorded after a write, with ok
// reporting whether one was present.
func (e Event) NewValue() (any, bool) {
	value, ok := e.Metadata[MetadataNewValue]
	return value, ok
}

func (e Event) metadataString(key string) string {
	value, _ := e.Metadata[key].(string)
	return value
}

// ActivityHook receives normalized activity events.
type ActivityHook interface {
	Notify(ctx context.Context, event Event) error
}

// HookFunc allows plain functions to satisfy ActivityHook.
type HookFunc func(ctx context.Context, event Event) error

// Notify dispatches to the underlying function.
func (fn HookFunc) Notify(ctx context.Context, event Event) error {
	if fn == nil {
		return nil
	}
	return fn(ctx, event)
}

// Hooks fans out events to zero or more hooks.
type Hooks []ActivityHook

// Enabled reports whether there are any hooks to notify.
func (h Hooks) Enabled() bool {
	return len(h) > 0
}

// Notify forwards the event to all hooks, returning a joined error if any fail.
// It normalizes the event and short-circuits when required fields are missing.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	if len(h) == 0 {
		return nil
	}

	normalized := NormalizeEvent(event)
	if normalized.Verb == "" || normalized.ObjectType == "" || normalized.ObjectID == "" {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, normalized); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

// NormalizeEvent trims whitespace, clones metadata, and ensures a timestamp is present.
func NormalizeEvent(event Event) Event {
	normalized := event
	normalized.Verb = strings.TrimSpace(event.Verb)
	normalized.ActorID = strings.TrimSpace(event.ActorID)
	normalized.UserID = strings.TrimSpace(event.UserID)
	normalized.TenantID = strings.TrimSpace(event.TenantID)
	normalized.ObjectType = strings.TrimSpace(event.ObjectType)
	normalized.ObjectID = strings.TrimSpace(event.ObjectID)
	normalized.Channel = strings.TrimSpace(event.Channel)
	normalized.DefinitionCode = strings.TrimSpace(event.DefinitionCode)
	normalized.Metadata = cloneMap(event.Metadata)
	if len(event.Recipients) > 0 {
		normalized.Recipients = append([]string{}, event.Recipients...)
	} else {
		normalized.Recipients = nil
	}
	if normalized.OccurredAt.IsZero() {
		normalized.OccurredAt = time.Now()
	}
	return normalized
}

func cloneMap(src map[string]any) map[string]any {
	if len(src) == 0 {
		return nil
	}
	dst := make(map[string]any, len(src))
	for key, value := range src {
		dst[key] = value
	}
	return dst
}
