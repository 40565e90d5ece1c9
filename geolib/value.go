package geolib

import (
	"bytes"
	"encoding/json"
)

// Value is a payload field which remembers if it was sent at all and
// if it was sent as null. Zero value is an absent field.
type Value[T any] struct {
	V       T
	Present bool
	Null    bool
}

// Some returns a present non-null value.
func Some[T any](v T) Value[T] {
	return Value[T]{V: v, Present: true}
}

// Null returns a present null value.
func Null[T any]() Value[T] {
	return Value[T]{Present: true, Null: true}
}

// Valid is true if value was sent and it is not null.
func (v Value[T]) Valid() bool {
	return v.Present && !v.Null
}

func (v *Value[T]) UnmarshalJSON(data []byte) error {
	v.Present = true

	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		v.Null = true

		return nil
	}

	return json.Unmarshal(data, &v.V)
}

func (v Value[T]) MarshalJSON() ([]byte, error) {
	if !v.Valid() {
		return []byte("null"), nil
	}

	return json.Marshal(v.V)
}
