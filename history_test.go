package env

import (
	"testing"
)

type fakeTracked struct {
	state map[string]any
}

func (f *fakeTracked) Snapshot() map[string]any {
	out := make(map[string]any, len(f.state))
	for k, v := range f.state {
		out[k] = v
	}
	return out
}

func TestNewBufferFillsEverySlotWithInitialState(t *testing.T) {
	tracked := &fakeTracked{state: map[string]any{"value": 1}}
	buffer, err := NewBuffer(tracked, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if buffer.Capacity() != 3 || buffer.Len() != 3 {
		t.Fatalf("expected fixed capacity 3, got cap=%d len=%d", buffer.Capacity(), buffer.Len())
	}
	states := buffer.States()
	if len(states) != 3 {
		t.Fatalf("expected 3 states, got %d", len(states))
	}
	for i, state := range states {
		if state["value"] != 1 {
			t.Fatalf("slot %d should hold the initial state, got %v", i, state)
		}
	}
}

func TestNewBufferDefaultsLengthAndRejectsNegative(t *testing.T) {
	tracked := &fakeTracked{state: map[string]any{}}

	buffer, err := NewBuffer(tracked, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if buffer.Capacity() != DefaultHistoryLength {
		t.Fatalf("expected default capacity %d, got %d", DefaultHistoryLength, buffer.Capacity())
	}

	if _, err := NewBuffer(tracked, -1); err == nil {
		t.Fatalf("expected negative length to fail")
	}
	if _, err := NewBuffer(nil, 2); err == nil {
		t.Fatalf("expected nil tracked object to fail")
	}
}

func TestLiveSlotTracksMutationsWithoutSampling(t *testing.T) {
	tracked := &fakeTracked{state: map[string]any{"value": 1}}
	buffer, err := NewBuffer(tracked, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tracked.state["value"] = 2

	states := buffer.States()
	if states[0]["value"] != 1 {
		t.Fatalf("frozen slot must keep the initial state, got %v", states[0])
	}
	if states[1]["value"] != 2 {
		t.Fatalf("live slot must mirror mutations, got %v", states[1])
	}
}

func TestSampleFreezesStateAndEvictsOldest(t *testing.T) {
	tracked := &fakeTracked{state: map[string]any{"value": 1}}
	buffer, err := NewBuffer(tracked, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tracked.state["value"] = 2
	first := buffer.Sample()
	if first.ID == "" {
		t.Fatalf("sampled snapshot must carry an ID")
	}

	tracked.state["value"] = 3
	buffer.Sample()
	tracked.state["value"] = 4

	states := buffer.States()
	if len(states) != 3 {
		t.Fatalf("capacity must stay fixed, got %d states", len(states))
	}
	if states[0]["value"] != 2 || states[1]["value"] != 3 || states[2]["value"] != 4 {
		t.Fatalf("expected [2 3 4] oldest-first, got %v", states)
	}
}

func TestSampleOnSingleSlotBufferKeepsLiveView(t *testing.T) {
	tracked := &fakeTracked{state: map[string]any{"value": 1}}
	buffer, err := NewBuffer(tracked, 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snapshot := buffer.Sample()
	if snapshot.State["value"] != 1 {
		t.Fatalf("unexpected sampled state: %v", snapshot.State)
	}

	tracked.state["value"] = 5
	states := buffer.States()
	if len(states) != 1 || states[0]["value"] != 5 {
		t.Fatalf("single-slot buffer must only expose the live view, got %v", states)
	}
}

func TestAtResolvesSlotsAndBoundsChecks(t *testing.T) {
	tracked := &fakeTracked{state: map[string]any{"value": 1}}
	buffer, err := NewBuffer(tracked, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tracked.state["value"] = 7

	oldest, err := buffer.At(0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if oldest["value"] != 1 {
		t.Fatalf("unexpected oldest slot: %v", oldest)
	}

	live, err := buffer.At(1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if live["value"] != 7 {
		t.Fatalf("unexpected live slot: %v", live)
	}

	if _, err := buffer.At(2); err == nil {
		t.Fatalf("expected out-of-range index to fail")
	}
	if _, err := buffer.At(-1); err == nil {
		t.Fatalf("expected negative index to fail")
	}
}

func TestSnapshotsMarksLiveEntryWithoutID(t *testing.T) {
	tracked := &fakeTracked{state: map[string]any{"value": 1}}
	buffer, err := NewBuffer(tracked, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	snapshots := buffer.Snapshots()
	if len(snapshots) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snapshots))
	}
	if snapshots[0].ID == "" {
		t.Fatalf("frozen snapshot must carry an ID")
	}
	if snapshots[1].ID != "" {
		t.Fatalf("live entry must not carry an ID, got %q", snapshots[1].ID)
	}
}

func TestStatesReturnsIndependentCopies(t *testing.T) {
	tracked := &fakeTracked{state: map[string]any{"value": 1}}
	buffer, err := NewBuffer(tracked, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	states := buffer.States()
	states[0]["value"] = 99

	again := buffer.States()
	if again[0]["value"] != 1 {
		t.Fatalf("mutating a returned state leaked into the buffer")
	}
}
