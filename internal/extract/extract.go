package extract

import (
	"encoding/json"
	"errors"
)

// Shape describes a record type the extractor can produce.
type Shape[T any] struct {
	// Name identifies the shape in logs and schema lookups.
	Name string
	// Default returns a record with every field populated.
	Default func() T
	// Fallback returns the canonical record for unparseable text,
	// carrying raw in the shape's diagnostic field.
	Fallback func(raw string) T
	// Normalize clamps values and replaces nil collections. Optional.
	Normalize func(*T)
}

// Parse extracts the first JSON object from text and decodes it over the
// shape's default, so absent fields keep their default values. When no
// object can be decoded it returns the fallback record and a *ParseError.
func Parse[T any](text string, shape Shape[T]) (T, error) {
	obj, ok := FindObject(text)
	if !ok {
		return shape.fallback(text), &ParseError{Shape: shape.Name, Message: "no JSON object found"}
	}

	rec := shape.Default()
	if err := json.Unmarshal([]byte(obj), &rec); err != nil {
		// A field of the wrong type is skipped by the decoder and keeps its
		// default; anything else means the object is unusable.
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) {
			return shape.fallback(text), &ParseError{Shape: shape.Name, Message: "invalid JSON object", Cause: err}
		}
	}
	if shape.Normalize != nil {
		shape.Normalize(&rec)
	}
	return rec, nil
}

// Extract is Parse without the error. It always returns a usable record.
func Extract[T any](text string, shape Shape[T]) T {
	rec, _ := Parse(text, shape)
	return rec
}

func (s Shape[T]) fallback(raw string) T {
	rec := s.Fallback(raw)
	if s.Normalize != nil {
		s.Normalize(&rec)
	}
	return rec
}

func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func orEmptyMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return m
}
