// Package patch distinguishes "not supplied" from "supplied as null" in
// partial updates.
package patch

import (
	"bytes"
	"encoding/json"
)

// Field is an optional, nullable value. The zero Field is absent.
type Field[T any] struct {
	Value T
	Set   bool
	Null  bool
}

// Some returns a present, non-null field.
func Some[T any](v T) Field[T] {
	return Field[T]{Value: v, Set: true}
}

// Null returns a present field explicitly set to null.
func Null[T any]() Field[T] {
	return Field[T]{Set: true, Null: true}
}

// Get returns the value when the field is present and non-null.
func (f Field[T]) Get() (T, bool) {
	return f.Value, f.Set && !f.Null
}

// UnmarshalJSON is only invoked for keys present in the document, which is
// what marks the field as set.
func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}
