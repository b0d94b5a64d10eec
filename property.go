package env

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
)

// PropertySpec declares one typed object property at the type level: a name,
// a default factory and a normalize function that coerces, validates and
// clamps input into the canonical stored shape.
//
// The getter contract is lazy: reading a declared property whose storage key
// is absent first materializes the default into the backing container, then
// returns the normalized view of whatever is stored. Reads never rewrite a
// value that is already present.
type PropertySpec struct {
	// Name is the storage key in the object container.
	Name string
	// Default produces a fresh canonical default value. Implementations must
	// not return a value that aliases shared state.
	Default func() any
	// Normalize coerces arbitrary input into the canonical stored shape, or
	// fails with ErrInvalidPropertyValue.
	Normalize func(value any) (any, error)
	// Components lists the canonical sub-key order for mapping-shaped
	// properties. Empty for scalars.
	Components []string
}

func (s PropertySpec) validate() error {
	if s.Name == "" {
		return fmt.Errorf("env: property name must not be empty")
	}
	if s.Default == nil {
		return fmt.Errorf("env: property %q requires a default factory", s.Name)
	}
	if s.Normalize == nil {
		return fmt.Errorf("env: property %q requires a normalize function", s.Name)
	}
	return nil
}

// PropertyOption configures optional behaviour on property builders.
type PropertyOption func(*propertyConfig)

type propertyConfig struct {
	clamp   bool
	clampLo float64
	clampHi float64
}

// WithClamp bounds every float component into [lo, hi]. Out-of-range input is
// clamped, not rejected.
func WithClamp(lo, hi float64) PropertyOption {
	return func(cfg *propertyConfig) {
		cfg.clamp = true
		cfg.clampLo = lo
		cfg.clampHi = hi
	}
}

func applyPropertyOptions(opts []PropertyOption) propertyConfig {
	cfg := propertyConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Float declares a pure scalar property stored as float64. Numeric kinds and
// numeric strings coerce; any collection input fails ErrInvalidPropertyValue.
func Float(name string, def float64, opts ...PropertyOption) PropertySpec {
	cfg := applyPropertyOptions(opts)
	return PropertySpec{
		Name:    name,
		Default: func() any { return def },
		Normalize: func(value any) (any, error) {
			f, err := toFloat(value)
			if err != nil {
				return nil, err
			}
			return cfg.apply(f), nil
		},
	}
}

// Vector declares a mapping-shaped property with a fixed component order,
// stored as map[string]float64. Input may be a structured mapping or a
// positional sequence; missing components fall back to their default and
// unknown components are rejected.
func Vector(name string, components []string, defaults []float64, opts ...PropertyOption) PropertySpec {
	if len(components) != len(defaults) {
		panic(fmt.Sprintf("env: property %q declares %d components but %d defaults", name, len(components), len(defaults)))
	}
	cfg := applyPropertyOptions(opts)
	order := append([]string(nil), components...)
	base := append([]float64(nil), defaults...)

	return PropertySpec{
		Name:       name,
		Components: order,
		Default: func() any {
			out := make(map[string]float64, len(order))
			for i, component := range order {
				out[component] = cfg.apply(base[i])
			}
			return out
		},
		Normalize: func(value any) (any, error) {
			fields, err := vectorFields(name, order, value)
			if err != nil {
				return nil, err
			}
			out := make(map[string]float64, len(order))
			for i, component := range order {
				raw, ok := fields[component]
				if !ok {
					out[component] = cfg.apply(base[i])
					continue
				}
				f, err := toFloat(raw)
				if err != nil {
					return nil, fmt.Errorf("%w: component %q", err, component)
				}
				out[component] = cfg.apply(f)
			}
			return out, nil
		},
	}
}

func (cfg propertyConfig) apply(f float64) float64 {
	if !cfg.clamp {
		return f
	}
	if f < cfg.clampLo {
		return cfg.clampLo
	}
	if f > cfg.clampHi {
		return cfg.clampHi
	}
	return f
}

// vectorFields reduces structured or positional input to a component→raw map.
func vectorFields(name string, order []string, value any) (map[string]any, error) {
	if value == nil {
		return nil, fmt.Errorf("%w: property %q requires a value", ErrInvalidPropertyValue, name)
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: property %q mapping requires string keys", ErrInvalidPropertyValue, name)
		}
		known := make(map[string]struct{}, len(order))
		for _, component := range order {
			known[component] = struct{}{}
		}
		fields := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			key := iter.Key().String()
			if _, ok := known[key]; !ok {
				return nil, fmt.Errorf("%w: property %q has no component %q", ErrInvalidPropertyValue, name, key)
			}
			fields[key] = iter.Value().Interface()
		}
		return fields, nil
	case reflect.Slice, reflect.Array:
		if rv.Len() > len(order) {
			return nil, fmt.Errorf("%w: property %q accepts at most %d positional values", ErrInvalidPropertyValue, name, len(order))
		}
		fields := make(map[string]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			fields[order[i]] = rv.Index(i).Interface()
		}
		return fields, nil
	default:
		return nil, fmt.Errorf("%w: property %q requires a mapping or sequence, got %T", ErrInvalidPropertyValue, name, value)
	}
}

// toFloat coerces a scalar into float64. Collections are rejected so pure
// scalar properties cannot silently swallow structured input.
func toFloat(value any) (float64, error) {
	switch typed := value.(type) {
	case float64:
		return typed, nil
	case float32:
		return float64(typed), nil
	case int:
		return float64(typed), nil
	case int8:
		return float64(typed), nil
	case int16:
		return float64(typed), nil
	case int32:
		return float64(typed), nil
	case int64:
		return float64(typed), nil
	case uint:
		return float64(typed), nil
	case uint8:
		return float64(typed), nil
	case uint16:
		return float64(typed), nil
	case uint32:
		return float64(typed), nil
	case uint64:
		return float64(typed), nil
	case json.Number:
		f, err := typed.Float64()
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not numeric", ErrInvalidPropertyValue, typed.String())
		}
		return f, nil
	case string:
		f, err := strconv.ParseFloat(typed, 64)
		if err != nil {
			return 0, fmt.Errorf("%w: %q is not numeric", ErrInvalidPropertyValue, typed)
		}
		return f, nil
	case bool:
		return 0, fmt.Errorf("%w: boolean is not numeric", ErrInvalidPropertyValue)
	case nil:
		return 0, fmt.Errorf("%w: value is nil", ErrInvalidPropertyValue)
	}

	switch reflect.ValueOf(value).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return 0, fmt.Errorf("%w: scalar property rejects collection input %T", ErrInvalidPropertyValue, value)
	default:
		return 0, fmt.Errorf("%w: cannot coerce %T to float", ErrInvalidPropertyValue, value)
	}
}

// Schema is the ordered, type-level property table for an object type.
type Schema struct {
	names []string
	specs map[string]PropertySpec
}

// NewSchema validates and orders the supplied property specs. Duplicate names
// are a construction error.
func NewSchema(specs ...PropertySpec) (*Schema, error) {
	schema := &Schema{
		specs: make(map[string]PropertySpec, len(specs)),
	}
	for _, spec := range specs {
		if err := spec.validate(); err != nil {
			return nil, err
		}
		if _, exists := schema.specs[spec.Name]; exists {
			return nil, fmt.Errorf("env: duplicate property %q", spec.Name)
		}
		schema.names = append(schema.names, spec.Name)
		schema.specs[spec.Name] = spec
	}
	return schema, nil
}

// MustSchema is NewSchema that panics on error, for static type tables.
func MustSchema(specs ...PropertySpec) *Schema {
	schema, err := NewSchema(specs...)
	if err != nil {
		panic(err)
	}
	return schema
}

// Names returns the declared property names in declaration order.
func (s *Schema) Names() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.names...)
}

// Lookup returns the spec for name.
func (s *Schema) Lookup(name string) (PropertySpec, bool) {
	if s == nil {
		return PropertySpec{}, false
	}
	spec, ok := s.specs[name]
	return spec, ok
}

// Len reports the number of declared properties.
func (s *Schema) Len() int {
	if s == nil {
		return 0
	}
	return len(s.names)
}
