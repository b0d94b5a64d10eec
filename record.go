package env

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/goliatone/go-environment/internal/hydrate"
)

// DefaultDelimiter separates nested path segments in canonical records.
const DefaultDelimiter = "/"

// RecordKeyField is the reserved record entry holding the object identity.
const RecordKeyField = "key"

// Record is the flat export shape: delimited string paths to scalar values,
// plus one reserved "key" entry. This is the contract any exporter or
// importer of object state must honor.
type Record map[string]any

// ToRecord reads every declared property (materializing defaults as needed),
// flattens the values one level deep and adds the reserved identity entry.
func (o *Object) ToRecord(delimiter string) (Record, error) {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	record := make(Record)
	for _, name := range o.schema.Names() {
		value, err := o.Property(name)
		if err != nil {
			return nil, err
		}
		spec, _ := o.schema.Lookup(name)
		flat, err := flattenValue(name, value, delimiter, spec.Components)
		if err != nil {
			return nil, wrapPropertyError(o.key, name, err)
		}
		for path, scalar := range flat {
			record[path] = scalar
		}
	}
	record[RecordKeyField] = o.key
	return record, nil
}

// Record is ToRecord with the canonical "/" delimiter.
func (o *Object) Record() (Record, error) {
	return o.ToRecord(DefaultDelimiter)
}

// Flatten expands one property value into delimited scalar entries. Mapping
// keys are emitted in sorted order; use the schema-aware Object.ToRecord to
// preserve a property's declared component order.
func Flatten(name string, value any, delimiter string) (Record, error) {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	return flattenValue(name, value, delimiter, nil)
}

// flattenValue handles exactly one level of nesting: scalars pass through,
// sequences expand by index and string-keyed mappings by sub-key. Sub-values
// must themselves be scalar; anything deeper fails rather than guessing.
func flattenValue(name string, value any, delimiter string, components []string) (Record, error) {
	if isScalar(value) {
		return Record{name: value}, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		out := make(Record, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			element := rv.Index(i).Interface()
			if !isScalar(element) {
				return nil, fmt.Errorf("%w: sequence element %d of %q is %T", ErrUnsupportedPropertyShape, i, name, element)
			}
			out[name+delimiter+strconv.Itoa(i)] = element
		}
		return out, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("%w: mapping %q requires string keys", ErrUnsupportedPropertyShape, name)
		}
		keys := orderedMapKeys(rv, components)
		out := make(Record, len(keys))
		for _, key := range keys {
			sub := rv.MapIndex(reflect.ValueOf(key)).Interface()
			if !isScalar(sub) {
				return nil, fmt.Errorf("%w: mapping entry %q of %q is %T", ErrUnsupportedPropertyShape, key, name, sub)
			}
			out[name+delimiter+key] = sub
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: property %q has shape %T", ErrUnsupportedPropertyShape, name, value)
	}
}

func orderedMapKeys(rv reflect.Value, components []string) []string {
	keys := make([]string, 0, rv.Len())
	for _, key := range rv.MapKeys() {
		keys = append(keys, key.String())
	}
	if len(components) == 0 {
		sort.Strings(keys)
		return keys
	}

	present := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		present[key] = struct{}{}
	}
	ordered := make([]string, 0, len(keys))
	for _, component := range components {
		if _, ok := present[component]; ok {
			ordered = append(ordered, component)
			delete(present, component)
		}
	}
	extras := make([]string, 0, len(present))
	for key := range present {
		extras = append(extras, key)
	}
	sort.Strings(extras)
	return append(ordered, extras...)
}

func isScalar(value any) bool {
	switch value.(type) {
	case nil:
		return false
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, uintptr,
		float32, float64:
		return true
	default:
		return false
	}
}

// Unflatten rebuilds the nested payload a record was derived from: delimited
// paths become one level of nested maps and the reserved identity entry stays
// top-level. Sequence indices come back as string sub-keys since the flat
// form does not distinguish them from mapping keys.
func Unflatten(record Record, delimiter string) map[string]any {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	out := make(map[string]any, len(record))
	for path, value := range record {
		head, rest, nested := strings.Cut(path, delimiter)
		if !nested {
			out[path] = value
			continue
		}
		child, ok := out[head].(map[string]any)
		if !ok {
			child = make(map[string]any)
			out[head] = child
		}
		child[rest] = value
	}
	return out
}

// DecodeRecord unflattens a record and hydrates the nested payload into T,
// giving importers a typed view of exported object state.
func DecodeRecord[T any](record Record, delimiter string, opts ...hydrate.DecoderOption[T]) (T, error) {
	payload := Unflatten(record, delimiter)
	key, _ := record[RecordKeyField].(string)
	decoder := hydrate.NewDecoder(opts...)
	return decoder.Decode(hydrate.Context{Key: key}, payload)
}
