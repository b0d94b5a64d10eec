package env

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestFloatNormalizeCoercesScalars(t *testing.T) {
	spec := Float("radius", 1.0)

	cases := []struct {
		name  string
		input any
		want  float64
	}{
		{name: "float64", input: 2.5, want: 2.5},
		{name: "int", input: 3, want: 3},
		{name: "int64", input: int64(-7), want: -7},
		{name: "uint", input: uint(9), want: 9},
		{name: "float32", input: float32(0.5), want: 0.5},
		{name: "string", input: "4.25", want: 4.25},
		{name: "json number", input: json.Number("6"), want: 6},
	}
	for _, tc := range cases {
		got, err := spec.Normalize(tc.input)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got != any(tc.want) {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestFloatNormalizeRejectsNonScalars(t *testing.T) {
	spec := Float("radius", 1.0)

	for _, input := range []any{nil, true, "not a number", []float64{1}, map[string]any{"value": 1}} {
		if _, err := spec.Normalize(input); !errors.Is(err, ErrInvalidPropertyValue) {
			t.Fatalf("expected ErrInvalidPropertyValue for %T, got %v", input, err)
		}
	}
}

func TestFloatClampBoundsValues(t *testing.T) {
	spec := Float("alpha", 0.5, WithClamp(0, 1))

	got, err := spec.Normalize(2.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != any(1.0) {
		t.Fatalf("expected clamp to 1.0, got %v", got)
	}

	got, err = spec.Normalize(-3.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != any(0.0) {
		t.Fatalf("expected clamp to 0.0, got %v", got)
	}
}

func TestVectorNormalizeAcceptsMappingInput(t *testing.T) {
	spec := Vector("position", []string{"x", "y", "z"}, []float64{0, 0, 0})

	got, err := spec.Normalize(map[string]any{"x": 1, "z": "2.5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fields, ok := got.(map[string]float64)
	if !ok {
		t.Fatalf("expected map[string]float64, got %T", got)
	}
	if fields["x"] != 1 || fields["y"] != 0 || fields["z"] != 2.5 {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestVectorNormalizeAcceptsPositionalInput(t *testing.T) {
	spec := Vector("position", []string{"x", "y", "z"}, []float64{0, 0, 0})

	got, err := spec.Normalize([]float64{4, 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fields := got.(map[string]float64)
	if fields["x"] != 4 || fields["y"] != 5 || fields["z"] != 0 {
		t.Fatalf("expected missing trailing component to fall back to default, got %v", fields)
	}

	if _, err := spec.Normalize([]float64{1, 2, 3, 4}); !errors.Is(err, ErrInvalidPropertyValue) {
		t.Fatalf("expected ErrInvalidPropertyValue for oversized sequence, got %v", err)
	}
}

func TestVectorNormalizeRejectsUnknownComponents(t *testing.T) {
	spec := Vector("position", []string{"x", "y", "z"}, []float64{0, 0, 0})

	if _, err := spec.Normalize(map[string]any{"x": 1, "w": 2}); !errors.Is(err, ErrInvalidPropertyValue) {
		t.Fatalf("expected ErrInvalidPropertyValue for unknown component, got %v", err)
	}
	if _, err := spec.Normalize(42); !errors.Is(err, ErrInvalidPropertyValue) {
		t.Fatalf("expected ErrInvalidPropertyValue for scalar input, got %v", err)
	}
	if _, err := spec.Normalize(nil); !errors.Is(err, ErrInvalidPropertyValue) {
		t.Fatalf("expected ErrInvalidPropertyValue for nil input, got %v", err)
	}
}

func TestVectorClampAppliesPerComponent(t *testing.T) {
	spec := Vector("color", []string{"r", "g", "b", "a"}, []float64{0, 0, 0, 1}, WithClamp(0, 1))

	got, err := spec.Normalize(map[string]any{"r": 2.0, "g": -1.0, "b": 0.5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fields := got.(map[string]float64)
	if fields["r"] != 1 || fields["g"] != 0 || fields["b"] != 0.5 || fields["a"] != 1 {
		t.Fatalf("unexpected clamped fields: %v", fields)
	}
}

func TestVectorDefaultProducesFreshValue(t *testing.T) {
	spec := Vector("position", []string{"x", "y"}, []float64{1, 2})

	first := spec.Default().(map[string]float64)
	second := spec.Default().(map[string]float64)
	first["x"] = 99
	if second["x"] != 1 {
		t.Fatalf("expected defaults to be independent, got %v", second)
	}
}

func TestVectorPanicsOnComponentDefaultMismatch(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic when components and defaults disagree")
		}
	}()
	Vector("broken", []string{"x", "y"}, []float64{1})
}

func TestNewSchemaRejectsDuplicatesAndInvalidSpecs(t *testing.T) {
	if _, err := NewSchema(Float("radius", 1), Float("radius", 2)); err == nil {
		t.Fatalf("expected duplicate property name to fail")
	}
	if _, err := NewSchema(PropertySpec{Name: "bare"}); err == nil {
		t.Fatalf("expected spec without default/normalize to fail")
	}
}

func TestSchemaPreservesDeclarationOrder(t *testing.T) {
	schema := MustSchema(
		Vector("position", []string{"x", "y", "z"}, []float64{0, 0, 0}),
		Float("radius", 1),
	)

	names := schema.Names()
	if len(names) != 2 || names[0] != "position" || names[1] != "radius" {
		t.Fatalf("unexpected name order: %v", names)
	}
	if schema.Len() != 2 {
		t.Fatalf("unexpected length: %d", schema.Len())
	}
	if _, ok := schema.Lookup("radius"); !ok {
		t.Fatalf("expected lookup to find declared property")
	}
	if _, ok := schema.Lookup("missing"); ok {
		t.Fatalf("expected lookup to miss undeclared property")
	}
}
