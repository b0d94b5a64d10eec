package env

import (
	"fmt"
	"math"
)

// SphereTypeTag is the registry tag for the built-in sphere object type.
const SphereTypeTag = "sphere"

const (
	// PropertyPosition names the sphere center coordinate property.
	PropertyPosition = "position"
	// PropertyRadius names the sphere radius property.
	PropertyRadius = "radius"
	// PropertyColor names the sphere RGBA color property.
	PropertyColor = "color"
)

// SphereSchema declares the sphere property table: a position vector
// defaulting to the origin, a unit radius and an opaque black color whose
// channels clamp into [0, 1].
func SphereSchema() *Schema {
	return MustSchema(
		Vector(PropertyPosition, []string{"x", "y", "z"}, []float64{0, 0, 0}),
		Float(PropertyRadius, 1.0),
		Vector(PropertyColor, []string{"r", "g", "b", "a"}, []float64{0, 0, 0, 1}, WithClamp(0, 1)),
	)
}

// RegisterSphereType registers the sphere object type on the environment.
func RegisterSphereType(e *Environment) error {
	return e.RegisterType(ObjectType{
		Tag:    SphereTypeTag,
		Schema: SphereSchema(),
	})
}

// Sphere is a typed view over an object constructed from the sphere type. It
// reads and writes the underlying container, so changes made through the
// sphere are visible to every other view of the same object.
type Sphere struct {
	object *Object
}

// AsSphere wraps an object in the sphere view. Objects of any other type tag
// are rejected.
func AsSphere(object *Object) (*Sphere, error) {
	if object == nil {
		return nil, fmt.Errorf("env: sphere view requires an object")
	}
	if object.TypeTag() != SphereTypeTag {
		return nil, fmt.Errorf("%w: object %q has type %q, want %q",
			ErrUnknownTypeTag, object.Key(), object.TypeTag(), SphereTypeTag)
	}
	return &Sphere{object: object}, nil
}

// InitializeSphere constructs a sphere object under key and returns its typed
// view.
func (e *Environment) InitializeSphere(key string) (*Sphere, error) {
	object, err := e.InitializeObject(key, SphereTypeTag)
	if err != nil {
		return nil, err
	}
	return AsSphere(object)
}

// SetColor writes the RGBA color of the sphere stored under key. Channels
// clamp into [0, 1].
func (e *Environment) SetColor(key string, r, g, b, a float64) error {
	object, err := e.Object(key)
	if err != nil {
		return err
	}
	sphere, err := AsSphere(object)
	if err != nil {
		return err
	}
	return sphere.SetColor(r, g, b, a)
}

// Object returns the underlying attribute container.
func (s *Sphere) Object() *Object {
	return s.object
}

// Key returns the sphere's object key.
func (s *Sphere) Key() string {
	return s.object.Key()
}

// Position returns the center coordinates, materializing the origin default
// on first read.
func (s *Sphere) Position() (x, y, z float64, err error) {
	fields, err := s.vector(PropertyPosition)
	if err != nil {
		return 0, 0, 0, err
	}
	return fields["x"], fields["y"], fields["z"], nil
}

// SetPosition moves the sphere center.
func (s *Sphere) SetPosition(x, y, z float64) error {
	return s.object.SetProperty(PropertyPosition, map[string]float64{
		"x": x, "y": y, "z": z,
	})
}

// Radius returns the sphere radius, materializing the unit default on first
// read.
func (s *Sphere) Radius() (float64, error) {
	value, err := s.object.Property(PropertyRadius)
	if err != nil {
		return 0, err
	}
	radius, ok := value.(float64)
	if !ok {
		return 0, wrapPropertyError(s.object.Key(), PropertyRadius,
			fmt.Errorf("%w: stored radius is %T", ErrInvalidPropertyValue, value))
	}
	return radius, nil
}

// SetRadius resizes the sphere.
func (s *Sphere) SetRadius(radius float64) error {
	return s.object.SetProperty(PropertyRadius, radius)
}

// Color returns the RGBA channels, each in [0, 1].
func (s *Sphere) Color() (r, g, b, a float64, err error) {
	fields, err := s.vector(PropertyColor)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return fields["r"], fields["g"], fields["b"], fields["a"], nil
}

// SetColor writes the RGBA channels. Out-of-range channels clamp into [0, 1].
func (s *Sphere) SetColor(r, g, b, a float64) error {
	return s.object.SetProperty(PropertyColor, map[string]float64{
		"r": r, "g": g, "b": b, "a": a,
	})
}

// Intersects reports whether the two spheres share at least one point. The
// boundary counts: spheres that merely touch intersect.
func (s *Sphere) Intersects(other *Sphere) (bool, error) {
	if other == nil {
		return false, fmt.Errorf("env: intersection requires a second sphere")
	}
	x1, y1, z1, err := s.Position()
	if err != nil {
		return false, err
	}
	r1, err := s.Radius()
	if err != nil {
		return false, err
	}
	x2, y2, z2, err := other.Position()
	if err != nil {
		return false, err
	}
	r2, err := other.Radius()
	if err != nil {
		return false, err
	}
	dx, dy, dz := x2-x1, y2-y1, z2-z1
	distance := math.Sqrt(dx*dx + dy*dy + dz*dz)
	return distance <= r1+r2, nil
}

func (s *Sphere) vector(name string) (map[string]float64, error) {
	value, err := s.object.Property(name)
	if err != nil {
		return nil, err
	}
	fields, ok := value.(map[string]float64)
	if !ok {
		return nil, wrapPropertyError(s.object.Key(), name,
			fmt.Errorf("%w: stored value is %T", ErrInvalidPropertyValue, value))
	}
	return fields, nil
}
