package env

import (
	"errors"
	"testing"
)

func TestToRecordFlattensDeclaredProperties(t *testing.T) {
	object := NewObject("ball", "sphere", testSchema(t))
	if err := object.SetProperty("position", []float64{1, 2, 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	record, err := object.Record()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := Record{
		"key":        "ball",
		"position/x": 1.0,
		"position/y": 2.0,
		"position/z": 3.0,
		"radius":     1.0,
	}
	if len(record) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), record)
	}
	for path, value := range want {
		if record[path] != value {
			t.Fatalf("expected %q=%v, got %v", path, value, record[path])
		}
	}
}

func TestToRecordHonorsCustomDelimiter(t *testing.T) {
	object := NewObject("ball", "sphere", testSchema(t))

	record, err := object.ToRecord(".")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := record["position.x"]; !ok {
		t.Fatalf("expected dotted path, got %v", record)
	}
}

func TestToRecordMaterializesDefaults(t *testing.T) {
	object := NewObject("ball", "sphere", testSchema(t))

	if _, err := object.Record(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !object.Has("radius") || !object.Has("position") {
		t.Fatalf("flattening should materialize lazy defaults")
	}
}

func TestFlattenScalarPassesThrough(t *testing.T) {
	record, err := Flatten("radius", 2.5, "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record["radius"] != 2.5 {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestFlattenSequenceExpandsByIndex(t *testing.T) {
	record, err := Flatten("samples", []any{1.0, 2.0}, "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record["samples/0"] != 1.0 || record["samples/1"] != 2.0 {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestFlattenMappingExpandsByKey(t *testing.T) {
	record, err := Flatten("position", map[string]float64{"x": 1, "y": 2}, "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record["position/x"] != 1.0 || record["position/y"] != 2.0 {
		t.Fatalf("unexpected record: %v", record)
	}
}

func TestFlattenRejectsDeepShapes(t *testing.T) {
	nested := map[string]any{"inner": map[string]any{"deep": 1}}
	if _, err := Flatten("state", nested, "/"); !errors.Is(err, ErrUnsupportedPropertyShape) {
		t.Fatalf("expected ErrUnsupportedPropertyShape for nested mapping, got %v", err)
	}

	deepSeq := []any{[]any{1}}
	if _, err := Flatten("state", deepSeq, "/"); !errors.Is(err, ErrUnsupportedPropertyShape) {
		t.Fatalf("expected ErrUnsupportedPropertyShape for nested sequence, got %v", err)
	}

	if _, err := Flatten("state", map[int]any{1: "x"}, "/"); !errors.Is(err, ErrUnsupportedPropertyShape) {
		t.Fatalf("expected ErrUnsupportedPropertyShape for non-string keys, got %v", err)
	}

	if _, err := Flatten("state", struct{ X int }{X: 1}, "/"); !errors.Is(err, ErrUnsupportedPropertyShape) {
		t.Fatalf("expected ErrUnsupportedPropertyShape for struct, got %v", err)
	}
}

func TestUnflattenRebuildsOneLevelOfNesting(t *testing.T) {
	record := Record{
		"key":        "ball",
		"radius":     2.0,
		"position/x": 1.0,
		"position/y": 2.0,
	}

	payload := Unflatten(record, "/")
	if payload["key"] != "ball" || payload["radius"] != 2.0 {
		t.Fatalf("top-level entries should pass through, got %v", payload)
	}
	position, ok := payload["position"].(map[string]any)
	if !ok {
		t.Fatalf("expected nested position map, got %T", payload["position"])
	}
	if position["x"] != 1.0 || position["y"] != 2.0 {
		t.Fatalf("unexpected nested values: %v", position)
	}
}

func TestDecodeRecordHydratesTypedView(t *testing.T) {
	type position struct {
		X float64 `json:"x"`
		Y float64 `json:"y"`
		Z float64 `json:"z"`
	}
	type sphereState struct {
		Key      string   `json:"key"`
		Radius   float64  `json:"radius"`
		Position position `json:"position"`
	}

	object := NewObject("ball", "sphere", testSchema(t))
	if err := object.SetProperty("position", []float64{1, 2, 3}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := object.SetProperty("radius", 4.0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	record, err := object.Record()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	state, err := DecodeRecord[sphereState](record, "/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Key != "ball" || state.Radius != 4.0 {
		t.Fatalf("unexpected hydrated state: %+v", state)
	}
	if state.Position.X != 1 || state.Position.Y != 2 || state.Position.Z != 3 {
		t.Fatalf("unexpected hydrated position: %+v", state.Position)
	}
}
