package env

import (
	"github.com/goliatone/go-environment/clone"
)

// Object is a uniquely-keyed attribute container hosting the declared
// properties of its type's schema. Declared properties and ad-hoc container
// entries share the same backing storage: property writes are immediately
// visible through Get and container writes are visible through Property.
type Object struct {
	key    string
	tag    string
	schema *Schema
	order  []string
	values map[string]any
}

// NewObject constructs an object with the given identity and schema. A nil
// schema declares no properties; the object still works as a plain container.
func NewObject(key, tag string, schema *Schema) *Object {
	return &Object{
		key:    key,
		tag:    tag,
		schema: schema,
		values: make(map[string]any),
	}
}

// Key returns the unique key identifying the object in its environment.
func (o *Object) Key() string {
	return o.key
}

// TypeTag returns the registry tag the object was constructed under.
func (o *Object) TypeTag() string {
	return o.tag
}

// Schema exposes the type-level property table.
func (o *Object) Schema() *Schema {
	return o.schema
}

// Get performs a plain container lookup. Declared properties that were never
// read or written report absent.
func (o *Object) Get(name string) (any, bool) {
	value, ok := o.values[name]
	return value, ok
}

// Set writes a raw container entry without property normalization.
func (o *Object) Set(name string, value any) {
	if _, exists := o.values[name]; !exists {
		o.order = append(o.order, name)
	}
	o.values[name] = value
}

// Delete removes a container entry. Deleting a declared property resets it to
// its lazy default on the next read.
func (o *Object) Delete(name string) {
	if _, exists := o.values[name]; !exists {
		return
	}
	delete(o.values, name)
	for i, key := range o.order {
		if key == name {
			o.order = append(o.order[:i], o.order[i+1:]...)
			break
		}
	}
}

// Has reports whether a storage key currently exists in the container.
func (o *Object) Has(name string) bool {
	_, ok := o.values[name]
	return ok
}

// Keys returns the container keys in insertion order.
func (o *Object) Keys() []string {
	return append([]string(nil), o.order...)
}

// Len reports the number of container entries currently stored.
func (o *Object) Len() int {
	return len(o.values)
}

// Properties returns the ordered declared property names for the object's
// type, independent of which keys currently exist in the container.
func (o *Object) Properties() []string {
	return o.schema.Names()
}

// IsProperty reports whether name is declared by the object's type.
func (o *Object) IsProperty(name string) bool {
	_, ok := o.schema.Lookup(name)
	return ok
}

// Property reads a declared property. When the storage key is absent the
// default is materialized into the container first; the returned value is
// always the normalized, type-homogeneous view of the stored value.
func (o *Object) Property(name string) (any, error) {
	spec, ok := o.schema.Lookup(name)
	if !ok {
		return nil, wrapPropertyError(o.key, name, ErrUnknownProperty)
	}
	stored, exists := o.values[name]
	if !exists {
		stored = spec.Default()
		o.Set(name, stored)
	}
	normalized, err := spec.Normalize(stored)
	if err != nil {
		return nil, wrapPropertyError(o.key, name, err)
	}
	return normalized, nil
}

// SetProperty normalizes value through the declared property's contract and
// writes the canonical shape into the container. The container is not mutated
// when normalization fails.
func (o *Object) SetProperty(name string, value any) error {
	spec, ok := o.schema.Lookup(name)
	if !ok {
		return wrapPropertyError(o.key, name, ErrUnknownProperty)
	}
	normalized, err := spec.Normalize(value)
	if err != nil {
		return wrapPropertyError(o.key, name, err)
	}
	o.Set(name, normalized)
	return nil
}

// Snapshot returns a deep copy of the container state as a plain map.
func (o *Object) Snapshot() map[string]any {
	out := make(map[string]any, len(o.values))
	for _, key := range o.order {
		out[key] = clone.Clone(o.values[key])
	}
	return out
}

// Clone produces an independent deep copy sharing the (immutable) schema.
func (o *Object) Clone() *Object {
	cp := &Object{
		key:    o.key,
		tag:    o.tag,
		schema: o.schema,
		order:  append([]string(nil), o.order...),
		values: make(map[string]any, len(o.values)),
	}
	for key, value := range o.values {
		cp.values[key] = clone.Clone(value)
	}
	return cp
}
