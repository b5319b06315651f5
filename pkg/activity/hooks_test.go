package activity

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNormalizeEventTrimsClonesAndDefaults(t *testing.T) {
	meta := map[string]any{"k": "v"}
	evt := Event{
		Verb:       " property.set ",
		ActorID:    " actor ",
		UserID:     " user ",
		TenantID:   " tenant ",
		ObjectType: " property ",
		ObjectID:   " app.limit ",
		Channel:    " properties ",
		Metadata:   meta,
	}

	got := NormalizeEvent(evt)

	if got.Verb != "property.set" || got.ObjectType != "property" || got.ObjectID != "app.limit" {
		t.Fatalf("unexpected normalized fields: %+v", got)
	}
	if got.ActorID != "actor" || got.UserID != "user" || got.TenantID != "tenant" || got.Channel != "properties" {
		t.Fatalf("unexpected trimming: %+v", got)
	}
	if got.OccurredAt.IsZero() || got.OccurredAt.Location() != time.UTC {
		t.Fatalf("expected OccurredAt stamped in UTC, got %v", got.OccurredAt)
	}
	got.Metadata["k"] = "changed"
	if evt.Metadata["k"] != "v" {
		t.Fatalf("expected original metadata untouched: %+v", evt.Metadata)
	}
}

func TestNormalizeEventDefaultsObjectType(t *testing.T) {
	got := NormalizeEvent(Event{Verb: VerbPropertyRemoved, ObjectType: "  ", ObjectID: "k"})
	if got.ObjectType != ObjectProperty || !got.Valid() {
		t.Fatalf("expected property object type, got %+v", got)
	}
	if got.Metadata != nil {
		t.Fatalf("expected nil metadata to stay nil, got %v", got.Metadata)
	}
	explicit := NormalizeEvent(Event{Verb: VerbPropertyFileLoaded, ObjectType: ObjectPropertyFile, ObjectID: "app.properties"})
	if explicit.ObjectType != ObjectPropertyFile {
		t.Fatalf("expected explicit object type kept, got %q", explicit.ObjectType)
	}
}

func TestHooksNotifyDropsIncompleteEvents(t *testing.T) {
	capture := &CaptureHook{}
	hooks := Hooks{capture}
	for _, evt := range []Event{{}, {Verb: "property.set", ObjectType: "property"}, {Verb: " ", ObjectType: "property", ObjectID: "k"}} {
		if err := hooks.Notify(context.Background(), evt); err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
	}
	if len(capture.Events()) != 0 {
		t.Fatalf("expected no events captured, got %d", len(capture.Events()))
	}
}

func TestHooksNotifyFanOutAndJoinErrors(t *testing.T) {
	capture := &CaptureHook{}
	boom1 := errors.New("boom1")
	boom2 := errors.New("boom2")
	var ctxSeen bool
	hooks := Hooks{
		HookFunc(func(ctx context.Context, _ Event) error {
			ctxSeen = ctx != nil
			return nil
		}),
		capture,
		HookFunc(func(context.Context, Event) error { return boom1 }),
		nil,
		HookFunc(func(context.Context, Event) error { return boom2 }),
	}

	err := hooks.Notify(nil, Event{Verb: "property.set", ObjectType: "property", ObjectID: "k"})
	if !errors.Is(err, boom1) || !errors.Is(err, boom2) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if msg := err.Error(); !strings.Contains(msg, "hook 2 property.set") || !strings.Contains(msg, "hook 4 property.set") {
		t.Fatalf("expected failing hook positions in %q", msg)
	}
	if !ctxSeen {
		t.Fatalf("expected context fallback to be non-nil")
	}
	if len(capture.Events()) != 1 {
		t.Fatalf("expected event to be captured once, got %d", len(capture.Events()))
	}
}

func TestEmitterDisabledAndEnabled(t *testing.T) {
	capture := &CaptureHook{}
	evt := Event{Verb: "property.set", ObjectType: "property", ObjectID: "k"}

	disabled := NewEmitter(Hooks{capture}, Config{Enabled: false})
	if disabled.Enabled() {
		t.Fatalf("expected emitter to be disabled")
	}
	if err := disabled.Emit(context.Background(), evt); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if len(capture.Events()) != 0 {
		t.Fatalf("expected no events captured when disabled")
	}

	if NewEmitter(Hooks{nil}, Config{Enabled: true}).Enabled() {
		t.Fatalf("emitter with only nil hooks should be disabled")
	}

	var nilEmitter *Emitter
	if err := nilEmitter.Emit(context.Background(), evt); err != nil || nilEmitter.Channel() != DefaultChannel {
		t.Fatalf("nil emitter should be inert, got %v", err)
	}

	enabled := NewEmitter(Hooks{capture}, Config{Enabled: true})
	if err := enabled.Emit(context.Background(), evt); err != nil {
		t.Fatalf("emit: %v", err)
	}
	events := capture.Events()
	if len(events) != 1 || events[0].Channel != DefaultChannel {
		t.Fatalf("expected default channel applied, got %+v", events)
	}
}

func TestEmitterPreservesExplicitChannel(t *testing.T) {
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{capture}, Config{Enabled: true, Channel: "audit"})
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	err := emitter.Emit(context.Background(), Event{
		Verb:       "property.set",
		ObjectType: "property",
		ObjectID:   "k",
		Channel:    "custom",
		OccurredAt: at,
	})
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	events := capture.Events()
	if events[0].Channel != "custom" {
		t.Fatalf("expected explicit channel preserved, got %q", events[0].Channel)
	}
	if !events[0].OccurredAt.Equal(at) {
		t.Fatalf("expected occurred_at preserved, got %v", events[0].OccurredAt)
	}
	if emitter.Channel() != "audit" {
		t.Fatalf("expected configured channel, got %q", emitter.Channel())
	}
}

func TestCaptureHookVerbsAndReset(t *testing.T) {
	capture := &CaptureHook{Err: errors.New("recorded anyway")}
	ctx := context.Background()
	_ = capture.Notify(ctx, Event{Verb: "a"})
	if err := capture.Notify(ctx, Event{Verb: "b"}); err == nil {
		t.Fatalf("expected configured error")
	}
	if verbs := capture.Verbs(); len(verbs) != 2 || verbs[0] != "a" || verbs[1] != "b" {
		t.Fatalf("unexpected verbs %v", verbs)
	}
	capture.Reset()
	if len(capture.Events()) != 0 {
		t.Fatalf("expected reset to drop events")
	}
}
