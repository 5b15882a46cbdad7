package domain

import (
	"bytes"
	"encoding/json"
)

// Nullable is a tri-state JSON field used in partial update payloads.
// It distinguishes the three cases partial updates care about:
//
//   - field omitted entirely: Set is false, the existing value is preserved
//   - field explicitly null: Set is true, Valid is false, the value is cleared
//   - field present with a value: Set and Valid are true
//
// The zero value means "omitted".
type Nullable[T any] struct {
	Set   bool
	Valid bool
	Value T
}

// NullableOf returns a Nullable carrying the given value.
func NullableOf[T any](value T) Nullable[T] {
	return Nullable[T]{Set: true, Valid: true, Value: value}
}

// NullableNull returns a Nullable representing an explicit null.
func NullableNull[T any]() Nullable[T] {
	return Nullable[T]{Set: true}
}

// UnmarshalJSON implements json.Unmarshaler. It is only invoked when the
// field is present in the payload, so Set is always true afterwards.
func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true

	if bytes.Equal(data, []byte("null")) {
		n.Valid = false
		var zero T
		n.Value = zero
		return nil
	}

	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}

	n.Valid = true
	return nil
}

// MarshalJSON implements json.Marshaler. Both the omitted and the explicit
// null state serialize as null; callers that need to drop omitted fields
// must do so at the struct level.
func (n Nullable[T]) MarshalJSON() ([]byte, error) {
	if !n.Set || !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// Ptr returns a pointer to the value, or nil when the field was omitted
// or explicitly null.
func (n Nullable[T]) Ptr() *T {
	if !n.Set || !n.Valid {
		return nil
	}
	value := n.Value
	return &value
}
