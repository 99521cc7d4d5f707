// Package docvalues defines the per-segment column-value reader contracts
// that field sorting and collapsing read group keys and sort keys from,
// plus slice-backed implementations for embedders and tests.
package docvalues

import (
	"errors"
	"fmt"
)

// ErrUnknownField is returned when a segment has no column for a field.
var ErrUnknownField = errors.New("unknown doc-values field")

// DocValues reads the per-document value of one single-valued column.
// AdvanceTo may only be called with non-decreasing document ids.
type DocValues[T any] interface {
	// AdvanceTo positions the reader on doc and reports whether the
	// document has a value.
	AdvanceTo(doc int) (bool, error)

	// Value returns the value at the current position. Only valid after
	// AdvanceTo returned true.
	Value() T
}

// Source hands out column readers for one segment. Every call returns a
// fresh reader positioned before the first document.
type Source interface {
	Int64Values(field string) (DocValues[int64], error)
	Float64Values(field string) (DocValues[float64], error)
	KeywordValues(field string) (DocValues[string], error)

	// MultiValued reports whether the field stores more than one value per
	// document. Collapsing rejects such fields.
	MultiValued(field string) bool
}

// SliceValues is a DocValues implementation over a dense slice indexed by
// segment-local document id. A missing entry is marked in the valid set.
type SliceValues[T any] struct {
	values []T
	valid  []bool
	doc    int
}

// NewSliceValues creates a reader over values. When valid is nil every
// document has a value.
func NewSliceValues[T any](values []T, valid []bool) *SliceValues[T] {
	return &SliceValues[T]{values: values, valid: valid, doc: -1}
}

// AdvanceTo implements DocValues.
func (s *SliceValues[T]) AdvanceTo(doc int) (bool, error) {
	if doc < s.doc {
		return false, fmt.Errorf("doc values advanced backwards: %d < %d", doc, s.doc)
	}
	s.doc = doc
	if doc >= len(s.values) {
		return false, nil
	}
	if s.valid != nil && !s.valid[doc] {
		return false, nil
	}
	return true, nil
}

// Value implements DocValues.
func (s *SliceValues[T]) Value() T { return s.values[s.doc] }

// MapSource is a Source over named slice-backed columns.
type MapSource struct {
	int64Cols   map[string][]int64
	float64Cols map[string][]float64
	keywordCols map[string][]string
	validCols   map[string][]bool
	multiValued map[string]bool
}

// NewMapSource creates an empty source.
func NewMapSource() *MapSource {
	return &MapSource{
		int64Cols:   make(map[string][]int64),
		float64Cols: make(map[string][]float64),
		keywordCols: make(map[string][]string),
		validCols:   make(map[string][]bool),
		multiValued: make(map[string]bool),
	}
}

// AddInt64 registers an int64 column.
func (m *MapSource) AddInt64(field string, values []int64, valid []bool) *MapSource {
	m.int64Cols[field] = values
	if valid != nil {
		m.validCols[field] = valid
	}
	return m
}

// AddFloat64 registers a float64 column.
func (m *MapSource) AddFloat64(field string, values []float64, valid []bool) *MapSource {
	m.float64Cols[field] = values
	if valid != nil {
		m.validCols[field] = valid
	}
	return m
}

// AddKeyword registers a keyword column.
func (m *MapSource) AddKeyword(field string, values []string, valid []bool) *MapSource {
	m.keywordCols[field] = values
	if valid != nil {
		m.validCols[field] = valid
	}
	return m
}

// MarkMultiValued flags a field as multi-valued.
func (m *MapSource) MarkMultiValued(field string) *MapSource {
	m.multiValued[field] = true
	return m
}

// Int64Values implements Source.
func (m *MapSource) Int64Values(field string) (DocValues[int64], error) {
	values, ok := m.int64Cols[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return NewSliceValues(values, m.validCols[field]), nil
}

// Float64Values implements Source.
func (m *MapSource) Float64Values(field string) (DocValues[float64], error) {
	values, ok := m.float64Cols[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return NewSliceValues(values, m.validCols[field]), nil
}

// KeywordValues implements Source.
func (m *MapSource) KeywordValues(field string) (DocValues[string], error) {
	values, ok := m.keywordCols[field]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, field)
	}
	return NewSliceValues(values, m.validCols[field]), nil
}

// MultiValued implements Source.
func (m *MapSource) MultiValued(field string) bool { return m.multiValued[field] }
