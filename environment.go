package env

import (
	"fmt"
)

// ObjectType binds a registry tag to the schema used to construct objects of
// that type.
type ObjectType struct {
	Tag    string
	Schema *Schema
}

// TypeRegistry maps type tags to object types. Registration order matters:
// the first registered tag is the default constructor unless overridden.
type TypeRegistry struct {
	tags  []string
	types map[string]ObjectType
}

// NewTypeRegistry constructs an empty type registry.
func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		types: make(map[string]ObjectType),
	}
}

// Register adds or replaces an object type under its tag.
func (r *TypeRegistry) Register(objectType ObjectType) error {
	if objectType.Tag == "" {
		return fmt.Errorf("env: object type tag must not be empty")
	}
	if objectType.Schema == nil {
		return fmt.Errorf("env: object type %q requires a schema", objectType.Tag)
	}
	if _, exists := r.types[objectType.Tag]; !exists {
		r.tags = append(r.tags, objectType.Tag)
	}
	r.types[objectType.Tag] = objectType
	return nil
}

// Lookup resolves a tag to its registered type.
func (r *TypeRegistry) Lookup(tag string) (ObjectType, bool) {
	objectType, ok := r.types[tag]
	return objectType, ok
}

// Tags returns registered tags in registration order.
func (r *TypeRegistry) Tags() []string {
	return append([]string(nil), r.tags...)
}

func (r *TypeRegistry) first() (ObjectType, bool) {
	if len(r.tags) == 0 {
		return ObjectType{}, false
	}
	return r.types[r.tags[0]], true
}

// Environment is the keyed registry of objects sharing one space. Objects are
// created through the type registry and destroyed by explicit removal; every
// key present maps to an object constructed via a registered type.
type Environment struct {
	registry *TypeRegistry
	keys     []string
	objects  map[string]*Object
	cfg      envConfig
	history  *Buffer
}

// New constructs an empty environment.
func New(opts ...Option) *Environment {
	return &Environment{
		registry: NewTypeRegistry(),
		objects:  make(map[string]*Object),
		cfg:      applyOptions(opts),
	}
}

// RegisterType adds an object type to the environment's registry.
func (e *Environment) RegisterType(objectType ObjectType) error {
	return e.registry.Register(objectType)
}

// Registry exposes the type registry for consumers that extend it before
// constructing objects.
func (e *Environment) Registry() *TypeRegistry {
	return e.registry
}

// InitializeObject constructs a new object under key using the registered
// type for typeTag, overwriting any prior object at that key. When typeTag is
// omitted the default type is used: WithDefaultType when configured,
// otherwise the first registered type.
func (e *Environment) InitializeObject(key string, typeTag ...string) (*Object, error) {
	objectType, err := e.resolveType(typeTag...)
	if err != nil {
		return nil, err
	}

	object := NewObject(key, objectType.Tag, objectType.Schema)
	if _, exists := e.objects[key]; !exists {
		e.keys = append(e.keys, key)
	}
	e.objects[key] = object
	e.emitObjectInitialized(object)
	return object, nil
}

func (e *Environment) resolveType(typeTag ...string) (ObjectType, error) {
	tag := e.cfg.defaultType
	if len(typeTag) > 0 && typeTag[len(typeTag)-1] != "" {
		tag = typeTag[len(typeTag)-1]
	}
	if tag == "" {
		objectType, ok := e.registry.first()
		if !ok {
			return ObjectType{}, fmt.Errorf("%w: no types registered", ErrUnknownTypeTag)
		}
		return objectType, nil
	}
	objectType, ok := e.registry.Lookup(tag)
	if !ok {
		return ObjectType{}, fmt.Errorf("%w: %s", ErrUnknownTypeTag, tag)
	}
	return objectType, nil
}

// DestroyObject removes the object at key.
func (e *Environment) DestroyObject(key string) error {
	object, exists := e.objects[key]
	if !exists {
		return fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	delete(e.objects, key)
	for i, existing := range e.keys {
		if existing == key {
			e.keys = append(e.keys[:i], e.keys[i+1:]...)
			break
		}
	}
	e.emitObjectDestroyed(object)
	return nil
}

// Object resolves the object stored under key.
func (e *Environment) Object(key string) (*Object, error) {
	object, exists := e.objects[key]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	return object, nil
}

// Has reports whether key names an object in the environment.
func (e *Environment) Has(key string) bool {
	_, exists := e.objects[key]
	return exists
}

// Keys returns object keys in insertion order.
func (e *Environment) Keys() []string {
	return append([]string(nil), e.keys...)
}

// Len reports the number of objects in the environment.
func (e *Environment) Len() int {
	return len(e.objects)
}

// SetProperty resolves the object at objectKey and invokes the named
// property's setter. When fields holds exactly one entry named "value" the
// bare value is passed through; otherwise the full field mapping is passed as
// the structured input. Callers can therefore set properties generically
// without knowing whether the canonical input shape is scalar or structured.
func (e *Environment) SetProperty(objectKey, propertyName string, fields map[string]any) error {
	object, err := e.Object(objectKey)
	if err != nil {
		return err
	}

	var input any = fields
	if len(fields) == 1 {
		if bare, ok := fields["value"]; ok {
			input = bare
		}
	}
	old, hadOld := object.Get(propertyName)
	if err := object.SetProperty(propertyName, input); err != nil {
		return err
	}
	current, _ := object.Get(propertyName)
	e.emitPropertySet(object, propertyName, old, hadOld, current)
	return nil
}

// Snapshot returns a deep copy of the aggregate environment state: every
// object's container state keyed by object key.
func (e *Environment) Snapshot() map[string]any {
	out := make(map[string]any, len(e.objects))
	for _, key := range e.keys {
		out[key] = e.objects[key].Snapshot()
	}
	return out
}

// Records flattens every object into its flat record, insertion order.
func (e *Environment) Records(delimiter string) ([]Record, error) {
	records := make([]Record, 0, len(e.keys))
	for _, key := range e.keys {
		record, err := e.objects[key].ToRecord(delimiter)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, nil
}

// Clone produces an independent deep copy of the environment: objects are
// themselves copied, so mutating the copy never affects the original. The
// clone shares the type registry and configuration but not the history
// buffer, which stays bound to its original tracked instance.
func (e *Environment) Clone() *Environment {
	cp := &Environment{
		registry: e.registry,
		keys:     append([]string(nil), e.keys...),
		objects:  make(map[string]*Object, len(e.objects)),
		cfg:      e.cfg,
	}
	for key, object := range e.objects {
		cp.objects[key] = object.Clone()
	}
	return cp
}

// History returns the lazily-constructed buffer tracking the environment's
// aggregate state.
func (e *Environment) History() (*Buffer, error) {
	if e.history == nil {
		buffer, err := NewBuffer(e, e.cfg.historyLength)
		if err != nil {
			return nil, err
		}
		e.history = buffer
	}
	return e.history, nil
}

// HistoryLength reports the configured buffer capacity.
func (e *Environment) HistoryLength() int {
	if e.cfg.historyLength == 0 {
		return DefaultHistoryLength
	}
	return e.cfg.historyLength
}

// SampleHistory pushes one snapshot of the whole registry into the history
// buffer, constructing the buffer on first use.
func (e *Environment) SampleHistory() (HistorySnapshot, error) {
	buffer, err := e.History()
	if err != nil {
		return HistorySnapshot{}, err
	}
	snapshot := buffer.Sample()
	e.emitHistorySampled(snapshot)
	return snapshot, nil
}

// Schema generates a schema document describing the environment's current
// aggregate state using the configured generator.
func (e *Environment) Schema() (SchemaDocument, error) {
	return e.schemaGenerator().Generate(e.Snapshot())
}
