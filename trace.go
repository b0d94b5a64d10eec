package env

import (
	"encoding/json"
	"strings"
)

// Trace captures provenance information for a path lookup across every slot
// of a history buffer, oldest first.
type Trace struct {
	Path    string       `json:"path"`
	Samples []Provenance `json:"samples"`
}

// Provenance details how a single history slot resolved a traced path. The
// live slot carries no snapshot ID.
type Provenance struct {
	SnapshotID string `json:"snapshot_id,omitempty"`
	Value      any    `json:"value,omitempty"`
	Found      bool   `json:"found"`
}

// ToJSON serialises the trace into JSON for logging or transport helpers.
func (t Trace) ToJSON() ([]byte, error) {
	type alias Trace
	return json.Marshal(alias(t))
}

// TraceFromJSON deserialises a JSON payload that was previously generated via
// ToJSON.
func TraceFromJSON(payload []byte) (Trace, error) {
	type alias Trace
	var trace alias
	if err := json.Unmarshal(payload, &trace); err != nil {
		return Trace{}, err
	}
	return Trace(trace), nil
}

// Trace resolves path in every buffer slot and reports, per slot, whether the
// path was present and the value it held. Path segments are separated by
// delimiter; an empty delimiter selects DefaultDelimiter.
func (b *Buffer) Trace(path, delimiter string) Trace {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	segments := strings.Split(path, delimiter)
	snapshots := b.Snapshots()
	trace := Trace{
		Path:    path,
		Samples: make([]Provenance, 0, len(snapshots)),
	}
	for _, snapshot := range snapshots {
		value, found := lookupPath(snapshot.State, segments)
		trace.Samples = append(trace.Samples, Provenance{
			SnapshotID: snapshot.ID,
			Value:      value,
			Found:      found,
		})
	}
	return trace
}

func lookupPath(state map[string]any, segments []string) (any, bool) {
	var current any = state
	for _, segment := range segments {
		node, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = node[segment]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
