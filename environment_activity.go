package env

import (
	"context"

	"github.com/goliatone/go-environment/pkg/activity"
)

// WithActivityHooks attaches activity hooks to the environment configuration.
// Hooks are cloned and nil entries dropped to preserve immutability.
func WithActivityHooks(hooks activity.Hooks) Option {
	normalized := cloneActivityHooks(hooks)
	return func(cfg *envConfig) {
		cfg.activityHooks = normalized
	}
}

// ActivityHooks returns a cloned slice of activity hooks configured on the
// environment. The returned slice can be safely mutated by the caller.
func (e *Environment) ActivityHooks() activity.Hooks {
	if e == nil {
		return nil
	}
	return cloneActivityHooks(e.cfg.activityHooks)
}

func (e *Environment) emitObjectInitialized(object *Object) {
	if !e.cfg.activityHooks.Enabled() {
		return
	}
	event := activity.BuildObjectInitializedEvent(activity.EnvironmentEventInput{
		ObjectKey: object.Key(),
		TypeTag:   object.TypeTag(),
	})
	_ = e.cfg.activityHooks.Notify(context.Background(), event)
}

func (e *Environment) emitObjectDestroyed(object *Object) {
	if !e.cfg.activityHooks.Enabled() {
		return
	}
	event := activity.BuildObjectDestroyedEvent(activity.EnvironmentEventInput{
		ObjectKey: object.Key(),
		TypeTag:   object.TypeTag(),
	})
	_ = e.cfg.activityHooks.Notify(context.Background(), event)
}

func (e *Environment) emitPropertySet(object *Object, property string, old any, hadOld bool, current any) {
	if !e.cfg.activityHooks.Enabled() {
		return
	}
	input := activity.EnvironmentEventInput{
		ObjectKey: object.Key(),
		TypeTag:   object.TypeTag(),
		Property:  property,
		NewValue:  current,
	}
	if hadOld {
		input.OldValue = old
	}
	_ = e.cfg.activityHooks.Notify(context.Background(), activity.BuildPropertySetEvent(input))
}

func (e *Environment) emitHistorySampled(snapshot HistorySnapshot) {
	if !e.cfg.activityHooks.Enabled() {
		return
	}
	event := activity.BuildHistorySampledEvent(activity.EnvironmentEventInput{
		SnapshotID: snapshot.ID,
		OccurredAt: snapshot.TakenAt,
	})
	_ = e.cfg.activityHooks.Notify(context.Background(), event)
}

func cloneActivityHooks(hooks activity.Hooks) activity.Hooks {
	if len(hooks) == 0 {
		return nil
	}
	normalized := make([]activity.ActivityHook, 0, len(hooks))
	for _, hook := range hooks {
		if hook == nil {
			continue
		}
		normalized = append(normalized, hook)
	}
	if len(normalized) == 0 {
		return nil
	}
	return activity.Hooks(normalized)
}
