package activity

import (
	"strings"
	"time"
)

// Metadata keys environment lifecycle events carry. Builders populate them;
// Event accessors read them back without the string literals leaking into
// consumers.
const (
	MetadataTypeTag    = "type_tag"
	MetadataProperty   = "property"
	MetadataSnapshotID = "snapshot_id"
	MetadataOldValue   = "old_value"
	MetadataNewValue   = "new_value"
)

// EnvironmentEventInput describes the common fields for environment lifecycle
// events.
type EnvironmentEventInput struct {
	ActorID    string
	UserID     string
	TenantID   string
	ObjectKey  string
	TypeTag    string
	Channel    string
	Recipients []string
	Metadata   map[string]any
	Property   string
	OldValue   any
	NewValue   any
	SnapshotID string
	OccurredAt time.Time
}

// BuildObjectInitializedEvent constructs a normalized event for object creation.
func BuildObjectInitializedEvent(input EnvironmentEventInput) Event {
	return buildEnvironmentEvent("object.initialized", "object", input)
}

// BuildObjectDestroyedEvent constructs a normalized event for object removal.
func BuildObjectDestroyedEvent(input EnvironmentEventInput) Event {
	return buildEnvironmentEvent("object.destroyed", "object", input)
}

// BuildPropertySetEvent constructs a normalized event for a property write.
func BuildPropertySetEvent(input EnvironmentEventInput) Event {
	return buildEnvironmentEvent("object.property.set", "object.property", input)
}

// BuildHistorySampledEvent constructs a normalized event for a history sample.
func BuildHistorySampledEvent(input EnvironmentEventInput) Event {
	return buildEnvironmentEvent("history.sampled", "environment.history", input)
}

func buildEnvironmentEvent(verb, objectType string, input EnvironmentEventInput) Event {
	metadata := cloneMap(input.Metadata)
	if input.TypeTag != "" {
		metadata = ensureMetadata(metadata)
		metadata[MetadataTypeTag] = input.TypeTag
	}
	if input.Property != "" {
		metadata = ensureMetadata(metadata)
		metadata[MetadataProperty] = input.Property
	}
	if input.SnapshotID != "" {
		metadata = ensureMetadata(metadata)
		metadata[MetadataSnapshotID] = input.SnapshotID
	}
	if input.OldValue != nil {
		metadata = ensureMetadata(metadata)
		metadata[MetadataOldValue] = input.OldValue
	}
	if input.NewValue != nil {
		metadata = ensureMetadata(metadata)
		metadata[MetadataNewValue] = input.NewValue
	}

	recipients := input.Recipients
	if len(recipients) > 0 {
		recipients = append([]string{}, input.Recipients...)
	}

	objectID := strings.TrimSpace(input.ObjectKey)
	if objectID == "" {
		objectID = strings.TrimSpace(input.SnapshotID)
	}
	if objectID == "" {
		objectID = objectType
	}

	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   objectID,
		Channel:    strings.TrimSpace(input.Channel),
		Recipients: recipients,
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}

func ensureMetadata(meta map[string]any) map[string]any {
	if meta == nil {
		return map[string]any{}
	}
	return meta
}
