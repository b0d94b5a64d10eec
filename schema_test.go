package env

import (
	"testing"
)

func TestDefaultSchemaGeneratorDerivesDescriptors(t *testing.T) {
	generator := DefaultSchemaGenerator()

	doc, err := generator.Generate(map[string]any{
		"ball": map[string]any{
			"radius":   2.0,
			"position": map[string]any{"x": 1.0},
			"tags":     []any{"a"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Format != SchemaFormatDescriptors {
		t.Fatalf("unexpected format: %q", doc.Format)
	}

	descriptors := doc.Document.([]FieldDescriptor)
	want := map[string]string{
		"ball.radius":     "float64",
		"ball.position.x": "float64",
		"ball.tags":       "[]string",
	}
	if len(descriptors) != len(want) {
		t.Fatalf("expected %d descriptors, got %v", len(want), descriptors)
	}
	for _, descriptor := range descriptors {
		if want[descriptor.Path] != descriptor.Type {
			t.Fatalf("unexpected descriptor: %+v", descriptor)
		}
	}
}

func TestDefaultSchemaGeneratorExpandsVectorComponents(t *testing.T) {
	generator := DefaultSchemaGenerator()

	doc, err := generator.Generate(map[string]any{
		"ball": map[string]any{
			"position": map[string]float64{"x": 1, "y": 2, "z": 3},
			"radius":   2.0,
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	descriptors := doc.Document.([]FieldDescriptor)
	want := map[string]string{
		"ball.position.x": "float64",
		"ball.position.y": "float64",
		"ball.position.z": "float64",
		"ball.radius":     "float64",
	}
	if len(descriptors) != len(want) {
		t.Fatalf("expected %d descriptors, got %v", len(want), descriptors)
	}
	for _, descriptor := range descriptors {
		if want[descriptor.Path] != descriptor.Type {
			t.Fatalf("unexpected descriptor: %+v", descriptor)
		}
	}
}

func TestDefaultSchemaGeneratorHandlesEmptyAndNil(t *testing.T) {
	generator := DefaultSchemaGenerator()

	doc, err := generator.Generate(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	descriptors := doc.Document.([]FieldDescriptor)
	if len(descriptors) != 0 {
		t.Fatalf("expected no descriptors for nil input, got %v", descriptors)
	}

	doc, err = generator.Generate(map[string]any{"empty": map[string]any{}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	descriptors = doc.Document.([]FieldDescriptor)
	if len(descriptors) != 1 || descriptors[0].Path != "empty" || descriptors[0].Type != "map[string]any" {
		t.Fatalf("unexpected descriptors: %v", descriptors)
	}
}
