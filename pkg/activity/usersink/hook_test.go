package usersink_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-props/pkg/activity"
	"github.com/goliatone/go-props/pkg/activity/usersink"
	usertypes "github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"
)

type recordingSink struct {
	records []usertypes.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record usertypes.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	userID := uuid.New()
	tenantID := uuid.New()

	event := activity.BuildPropertySetEvent(activity.PropertyEventInput{
		ActorID:    actorID.String(),
		UserID:     userID.String(),
		TenantID:   tenantID.String(),
		Channel:    "properties",
		Key:        "feature.flag",
		NewValue:   "true",
		OccurredAt: now,
	})

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID || record.UserID != userID || record.TenantID != tenantID {
		t.Fatalf("unexpected identity mapping: %+v", record)
	}
	if record.Verb != activity.VerbPropertySet || record.ObjectType != activity.ObjectProperty || record.ObjectID != "feature.flag" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "properties" {
		t.Fatalf("expected channel properties got %q", record.Channel)
	}
	if !record.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v got %v", now, record.OccurredAt)
	}
	if record.Data["new_value"] != "true" || record.Data["key"] != "feature.flag" {
		t.Fatalf("expected metadata passthrough got %v", record.Data)
	}
	if _, ok := record.Data["actor_ref"]; ok {
		t.Fatalf("valid ids should not be copied into data")
	}
}

func TestHookNotifyKeepsNonUUIDIdentities(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	err := hook.Notify(context.Background(), activity.Event{
		Verb:       activity.VerbPropertyRemoved,
		ActorID:    "cli",
		ObjectType: activity.ObjectProperty,
		ObjectID:   "k",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}
	record := sink.records[0]
	if record.ActorID != uuid.Nil || record.Data["actor_ref"] != "cli" {
		t.Fatalf("expected non-uuid actor kept as ref, got %+v", record)
	}
	if record.UserID != uuid.Nil || record.Data["user_ref"] != nil {
		t.Fatalf("empty ids should stay nil, got %+v", record)
	}
	if record.OccurredAt.IsZero() {
		t.Fatalf("expected occurred_at to be defaulted")
	}
}

func TestHookNotifySkipsIncompleteEvents(t *testing.T) {
	sink := &recordingSink{}
	hook := usersink.Hook{Sink: sink}

	_ = hook.Notify(context.Background(), activity.Event{})
	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}

	if err := (usersink.Hook{}).Notify(context.Background(), activity.Event{Verb: "v", ObjectType: "t", ObjectID: "i"}); err != nil {
		t.Fatalf("hook without sink should be a no-op, got %v", err)
	}
}

func TestHookNotifyReturnsSinkError(t *testing.T) {
	boom := errors.New("sink down")
	hook := usersink.Hook{Sink: &recordingSink{err: boom}}
	err := hook.Notify(context.Background(), activity.Event{Verb: "v", ObjectType: "t", ObjectID: "i"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected sink error, got %v", err)
	}
}

func TestHookSatisfiesActivityHook(t *testing.T) {
	var _ activity.ActivityHook = usersink.Hook{}
}
