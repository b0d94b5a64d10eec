package env

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownTypeTag indicates object construction referenced a type tag
	// that was never registered with the environment.
	ErrUnknownTypeTag = errors.New("env: unknown object type tag")
	// ErrKeyNotFound indicates an operation targeted an object key that is
	// not present in the environment.
	ErrKeyNotFound = errors.New("env: object key not found")
	// ErrInvalidPropertyValue indicates a property setter received a value
	// whose shape its contract forbids.
	ErrInvalidPropertyValue = errors.New("env: invalid property value")
	// ErrUnsupportedPropertyShape indicates flattening encountered a value
	// that is not a scalar, sequence or string-keyed mapping.
	ErrUnsupportedPropertyShape = errors.New("env: unsupported property shape")
	// ErrUnknownProperty indicates a property name that the object's schema
	// does not declare.
	ErrUnknownProperty = errors.New("env: unknown object property")
)

// PropertyError captures object and property metadata alongside the
// originating error.
type PropertyError struct {
	Object   string
	Property string
	Err      error
}

func (e *PropertyError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("env: object %q property %q: %v", e.Object, e.Property, e.Err)
}

func (e *PropertyError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func wrapPropertyError(object, property string, err error) error {
	if err == nil {
		return nil
	}

	var propErr *PropertyError
	if errors.As(err, &propErr) {
		if propErr.Object == "" {
			propErr.Object = object
		}
		if propErr.Property == "" {
			propErr.Property = property
		}
		return propErr
	}

	return &PropertyError{
		Object:   object,
		Property: property,
		Err:      err,
	}
}
