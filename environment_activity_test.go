package env

import (
	"context"
	"reflect"
	"testing"

	"github.com/goliatone/go-environment/pkg/activity"
)

func TestWithActivityHooksClonesAndFiltersNil(t *testing.T) {
	hook := activity.HookFunc(func(context.Context, activity.Event) error { return nil })

	environment := newTestEnvironment(t, WithActivityHooks(activity.Hooks{nil, hook}))
	hooks := environment.ActivityHooks()
	if len(hooks) != 1 {
		t.Fatalf("expected 1 hook, got %d", len(hooks))
	}

	// Mutate returned slice and ensure original configuration is unaffected.
	hooks[0] = nil
	again := environment.ActivityHooks()
	if len(again) != 1 || again[0] == nil {
		t.Fatalf("expected cloned hooks unaffected by mutation, got %+v", again)
	}
}

func TestActivityHooksDefaultNil(t *testing.T) {
	environment := newTestEnvironment(t)
	if hooks := environment.ActivityHooks(); hooks != nil {
		t.Fatalf("expected nil hooks by default, got %+v", hooks)
	}
}

func TestLifecycleEmitsActivityEvents(t *testing.T) {
	capture := &activity.CaptureHook{}
	environment := newTestEnvironment(t, WithActivityHooks(activity.Hooks{capture}))

	if _, err := environment.InitializeObject("ball"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := environment.SetProperty("ball", "radius", map[string]any{"value": 2.0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := environment.SampleHistory(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := environment.DestroyObject("ball"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantVerbs := []string{"object.initialized", "object.property.set", "history.sampled", "object.destroyed"}
	if got := capture.Verbs(); !reflect.DeepEqual(got, wantVerbs) {
		t.Fatalf("expected verbs %v, got %v", wantVerbs, got)
	}

	initialized := capture.Events[0]
	if initialized.ObjectID != "ball" || initialized.TypeTag() != SphereTypeTag {
		t.Fatalf("unexpected initialized event: %+v", initialized)
	}

	propertySet := capture.Events[1]
	if propertySet.Property() != "radius" {
		t.Fatalf("expected property metadata, got %v", propertySet.Metadata)
	}
	if value, ok := propertySet.NewValue(); !ok || value != 2.0 {
		t.Fatalf("expected new value metadata, got %v", propertySet.Metadata)
	}
	if _, ok := propertySet.OldValue(); ok {
		t.Fatalf("first write should not carry an old value, got %v", propertySet.Metadata)
	}

	sampled := capture.ForVerb("history.sampled")
	if len(sampled) != 1 || sampled[0].SnapshotID() == "" {
		t.Fatalf("expected one sampling event with a snapshot ID, got %+v", sampled)
	}
}

func TestPropertySetEmitsOldValueOnRewrite(t *testing.T) {
	capture := &activity.CaptureHook{}
	environment := newTestEnvironment(t, WithActivityHooks(activity.Hooks{capture}))

	if _, err := environment.InitializeObject("ball"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := environment.SetProperty("ball", "radius", map[string]any{"value": 2.0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := environment.SetProperty("ball", "radius", map[string]any{"value": 3.0}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	last := capture.Events[len(capture.Events)-1]
	old, hadOld := last.OldValue()
	current, hadNew := last.NewValue()
	if !hadOld || !hadNew || old != 2.0 || current != 3.0 {
		t.Fatalf("expected old/new value metadata, got %v", last.Metadata)
	}
}

func TestFailedPropertyWriteEmitsNothing(t *testing.T) {
	capture := &activity.CaptureHook{}
	environment := newTestEnvironment(t, WithActivityHooks(activity.Hooks{capture}))

	if _, err := environment.InitializeObject("ball"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	before := len(capture.Events)

	if err := environment.SetProperty("ball", "radius", map[string]any{"value": "not numeric at all", "extra": 1}); err == nil {
		t.Fatalf("expected invalid write to fail")
	}
	if len(capture.Events) != before {
		t.Fatalf("failed writes must not emit events")
	}
}
