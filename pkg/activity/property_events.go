package activity

import (
	"maps"
	"strings"
	"time"
)

const (
	VerbPropertySet        = "property.set"
	VerbPropertyRemoved    = "property.removed"
	VerbPropertyFileLoaded = "property.file.loaded"

	ObjectProperty     = "property"
	ObjectPropertyFile = "property.file"
)

// PropertyEventInput carries the fields shared by property events.
type PropertyEventInput struct {
	ActorID  string
	UserID   string
	TenantID string
	Channel  string

	// Key is the property name for set/remove events.
	Key string
	// OldValue is the value replaced or removed. It is only reported when
	// Existed is true.
	OldValue string
	NewValue string
	Existed  bool
	Provider string

	// Path, Format, Entries and Found describe a property file load.
	Path    string
	Format  string
	Entries int
	Found   bool

	Metadata   map[string]any
	OccurredAt time.Time
}

// BuildPropertySetEvent describes a persistent property write.
func BuildPropertySetEvent(input PropertyEventInput) Event {
	metadata := baseMetadata(input)
	metadata["key"] = input.Key
	metadata["new_value"] = input.NewValue
	metadata["created"] = !input.Existed
	if input.Existed {
		metadata["old_value"] = input.OldValue
	}
	return buildEvent(VerbPropertySet, ObjectProperty, input.Key, input, metadata)
}

// BuildPropertyRemovedEvent describes a persistent property removal.
func BuildPropertyRemovedEvent(input PropertyEventInput) Event {
	metadata := baseMetadata(input)
	metadata["key"] = input.Key
	metadata["existed"] = input.Existed
	if input.Existed {
		metadata["old_value"] = input.OldValue
	}
	return buildEvent(VerbPropertyRemoved, ObjectProperty, input.Key, input, metadata)
}

// BuildPropertyFileLoadedEvent describes a property file merged into the
// global table. Found is false for resources that did not exist.
func BuildPropertyFileLoadedEvent(input PropertyEventInput) Event {
	metadata := baseMetadata(input)
	metadata["path"] = input.Path
	metadata["entries"] = input.Entries
	metadata["found"] = input.Found
	if input.Format != "" {
		metadata["format"] = input.Format
	}
	return buildEvent(VerbPropertyFileLoaded, ObjectPropertyFile, input.Path, input, metadata)
}

func baseMetadata(input PropertyEventInput) map[string]any {
	metadata := maps.Clone(input.Metadata)
	if metadata == nil {
		metadata = map[string]any{}
	}
	if provider := strings.TrimSpace(input.Provider); provider != "" {
		metadata["provider"] = provider
	}
	return metadata
}

func buildEvent(verb, objectType, objectID string, input PropertyEventInput, metadata map[string]any) Event {
	return Event{
		Verb:       verb,
		ActorID:    strings.TrimSpace(input.ActorID),
		UserID:     strings.TrimSpace(input.UserID),
		TenantID:   strings.TrimSpace(input.TenantID),
		ObjectType: objectType,
		ObjectID:   strings.TrimSpace(objectID),
		Channel:    strings.TrimSpace(input.Channel),
		Metadata:   metadata,
		OccurredAt: input.OccurredAt,
	}
}
