package env

import (
	"fmt"
	"time"

	"github.com/goliatone/go-environment/clone"
	"github.com/google/uuid"
)

// DefaultHistoryLength is the buffer capacity when none is specified.
const DefaultHistoryLength = 2

// Stateful is anything whose aggregate state can be snapshot as a plain map.
// Object and Environment both qualify.
type Stateful interface {
	Snapshot() map[string]any
}

// HistorySnapshot is one frozen point-in-time copy of a tracked object's
// state, stamped with a unique identifier when it was sampled.
type HistorySnapshot struct {
	ID      string         `json:"id"`
	TakenAt time.Time      `json:"taken_at"`
	State   map[string]any `json:"state"`
}

func (s HistorySnapshot) clone() HistorySnapshot {
	out := s
	out.State = clone.Map(s.State)
	return out
}

// Buffer maintains a fixed-capacity, insertion-ordered state history for one
// tracked object. The buffer stores capacity−1 frozen snapshots (oldest
// first) plus a durable reference to the live object: reads synthesize the
// full view by appending the tracked object's current state, so the last slot
// always mirrors live mutations without re-sampling.
//
// The buffer assumes a single mutator: sampling while another goroutine
// mutates the tracked object is undefined behaviour and must be excluded by
// external synchronization.
type Buffer struct {
	tracked  Stateful
	capacity int
	frozen   []HistorySnapshot
}

// NewBuffer constructs a history buffer over tracked. Every slot initially
// equals the tracked object's current state: the capacity−1 frozen slots hold
// independent copies of the initial state and the final slot is the live
// view. A length of 0 selects DefaultHistoryLength.
func NewBuffer(tracked Stateful, length int) (*Buffer, error) {
	if tracked == nil {
		return nil, fmt.Errorf("env: history buffer requires a tracked object")
	}
	if length == 0 {
		length = DefaultHistoryLength
	}
	if length < 1 {
		return nil, fmt.Errorf("env: history length must be positive, got %d", length)
	}

	buffer := &Buffer{
		tracked:  tracked,
		capacity: length,
		frozen:   make([]HistorySnapshot, 0, length-1),
	}
	initial := tracked.Snapshot()
	for i := 0; i < length-1; i++ {
		buffer.frozen = append(buffer.frozen, HistorySnapshot{
			ID:      uuid.NewString(),
			TakenAt: time.Now(),
			State:   clone.Map(initial),
		})
	}
	return buffer, nil
}

// Capacity returns the fixed slot count chosen at construction.
func (b *Buffer) Capacity() int {
	return b.capacity
}

// Len always equals Capacity: the buffer is full from construction onward.
func (b *Buffer) Len() int {
	return b.capacity
}

// Sample freezes the tracked object's current state into a new snapshot,
// evicting the oldest frozen slot. The live slot keeps tracking the object.
func (b *Buffer) Sample() HistorySnapshot {
	snapshot := HistorySnapshot{
		ID:      uuid.NewString(),
		TakenAt: time.Now(),
		State:   b.tracked.Snapshot(),
	}
	if b.capacity == 1 {
		// A single-slot buffer only ever exposes the live view.
		return snapshot
	}
	b.frozen = append(b.frozen, snapshot)
	if len(b.frozen) > b.capacity-1 {
		b.frozen = b.frozen[1:]
	}
	return snapshot.clone()
}

// States returns every slot's current value, oldest first. Frozen slots are
// returned as independent copies; the final element is a fresh snapshot of
// the live object.
func (b *Buffer) States() []map[string]any {
	out := make([]map[string]any, 0, b.capacity)
	for _, snapshot := range b.frozen {
		out = append(out, clone.Map(snapshot.State))
	}
	return append(out, b.tracked.Snapshot())
}

// At returns the state at slot index, where 0 is the oldest slot and
// Capacity()−1 is the live view.
func (b *Buffer) At(index int) (map[string]any, error) {
	if index < 0 || index >= b.capacity {
		return nil, fmt.Errorf("env: history index %d out of range [0,%d)", index, b.capacity)
	}
	if index == b.capacity-1 {
		return b.tracked.Snapshot(), nil
	}
	return clone.Map(b.frozen[index].State), nil
}

// Snapshots returns the frozen snapshots (oldest first) plus a synthetic
// entry for the live slot. The live entry carries no snapshot ID because it
// has not been sampled yet.
func (b *Buffer) Snapshots() []HistorySnapshot {
	out := make([]HistorySnapshot, 0, b.capacity)
	for _, snapshot := range b.frozen {
		out = append(out, snapshot.clone())
	}
	return append(out, HistorySnapshot{
		TakenAt: time.Now(),
		State:   b.tracked.Snapshot(),
	})
}
