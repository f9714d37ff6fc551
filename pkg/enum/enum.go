package enum

import (
	"fmt"
	"reflect"
)

// registry maps an enum's concrete type to its registered string values.
var registry = map[reflect.Type]any{}

type values[T comparable] map[string]T

// New registers value under its string representation and returns it, so
// enum members can be declared as package-level variables.
func New[T comparable](value T) T {
	v := reflect.ValueOf(value)
	vals, ok := registry[v.Type()].(values[T])
	if !ok {
		vals = values[T]{}
		registry[v.Type()] = vals
	}

	vals[v.String()] = value
	return value
}

// ToEnum resolves s against the registered values of T.
func ToEnum[T comparable](s string) (T, error) {
	var zero T
	vals, ok := registry[reflect.TypeOf(zero)].(values[T])
	if !ok {
		return zero, fmt.Errorf("unregistered enum type %T", zero)
	}

	value, ok := vals[s]
	if !ok {
		return zero, fmt.Errorf("unknown value %q for enum %T", s, zero)
	}

	return value, nil
}
