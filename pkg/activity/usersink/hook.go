// Package usersink forwards property activity into a go-users ActivitySink.
package usersink

import (
	"context"
	"strings"

	"github.com/goliatone/go-props/pkg/activity"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

// Hook adapts activity events to a go-users ActivitySink. Identity fields
// that are not UUIDs are recorded as uuid.Nil and kept verbatim in the record
// data under actor_ref, user_ref and tenant_ref.
type Hook struct {
	Sink usertypes.ActivitySink
}

// Notify maps the event into an ActivityRecord and forwards it to the sink.
func (h Hook) Notify(ctx context.Context, event activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	normalized := activity.NormalizeEvent(event)
	if !normalized.Valid() {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	data := normalized.Metadata
	record := usertypes.ActivityRecord{
		ActorID:    parseUUID(normalized.ActorID, "actor_ref", &data),
		UserID:     parseUUID(normalized.UserID, "user_ref", &data),
		TenantID:   parseUUID(normalized.TenantID, "tenant_ref", &data),
		Verb:       normalized.Verb,
		ObjectType: normalized.ObjectType,
		ObjectID:   normalized.ObjectID,
		Channel:    normalized.Channel,
		OccurredAt: normalized.OccurredAt,
	}
	record.Data = data
	return h.Sink.Log(ctx, record)
}

func parseUUID(input, refKey string, data *map[string]any) uuid.UUID {
	value := strings.TrimSpace(input)
	if value == "" {
		return uuid.Nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		if *data == nil {
			*data = map[string]any{}
		}
		(*data)[refKey] = value
		return uuid.Nil
	}
	return id
}
