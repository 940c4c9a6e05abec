package models

import (
	"bytes"
	"encoding/json"
)

// Optional is a tri-state field for partial updates: unset, set to null, or
// set to a value. The zero value is unset.
type Optional[T any] struct {
	set   bool
	null  bool
	value T
}

// Some returns an Optional set to v
func Some[T any](v T) Optional[T] {
	return Optional[T]{set: true, value: v}
}

// Null returns an Optional explicitly set to null
func Null[T any]() Optional[T] {
	return Optional[T]{set: true, null: true}
}

// IsSet reports whether the field was provided at all
func (o Optional[T]) IsSet() bool { return o.set }

// IsNull reports whether the field was explicitly cleared
func (o Optional[T]) IsNull() bool { return o.set && o.null }

// HasValue reports whether the field carries a value
func (o Optional[T]) HasValue() bool { return o.set && !o.null }

// Value returns the carried value and whether there is one
func (o Optional[T]) Value() (T, bool) {
	return o.value, o.HasValue()
}

// Ptr returns a pointer to the value, or nil when unset or null
func (o Optional[T]) Ptr() *T {
	if !o.HasValue() {
		return nil
	}
	v := o.value
	return &v
}

// UnmarshalJSON is only invoked for keys present in the payload, so an
// absent key leaves the field unset.
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.null = true
		var zero T
		o.value = zero
		return nil
	}
	o.null = false
	return json.Unmarshal(data, &o.value)
}

// MarshalJSON renders unset and null fields as null
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.HasValue() {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
