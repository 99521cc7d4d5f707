// Package group resolves collapse group keys from doc values and interns
// them into integer handles so per-group collection state can live in
// handle-indexed maps instead of being keyed by copied values.
package group

import (
	"errors"
	"fmt"

	"github.com/hupe1980/hybridgo/docvalues"
	"github.com/hupe1980/hybridgo/model"
)

var (
	// ErrMultiValuedField is returned when collapsing is requested on a
	// field that stores multiple values per document.
	ErrMultiValuedField = errors.New("collapse field must be single-valued")

	// ErrMissingGroupValue is returned when a document carries no value
	// for the collapse field.
	ErrMissingGroupValue = errors.New("document has no value for collapse field")
)

// Selector resolves the group key of the document under the collection
// cursor. Implementations are polymorphic over the keyword and numeric
// key representations.
type Selector interface {
	// SetSegment binds the selector to one segment's doc values. It fails
	// when the field is multi-valued.
	SetSegment(src docvalues.Source) error

	// AdvanceTo positions the selector on doc.
	AdvanceTo(doc int) error

	// CurrentKey returns the group key of the current document. The key is
	// a value type and safe to store.
	CurrentKey() model.GroupKey
}

// KeywordSelector groups by a keyword field.
type KeywordSelector struct {
	field  string
	values docvalues.DocValues[string]
	key    model.GroupKey
}

// NewKeywordSelector creates a selector over the given keyword field.
func NewKeywordSelector(field string) *KeywordSelector {
	return &KeywordSelector{field: field}
}

// SetSegment implements Selector.
func (s *KeywordSelector) SetSegment(src docvalues.Source) error {
	if src.MultiValued(s.field) {
		return fmt.Errorf("%w: %q", ErrMultiValuedField, s.field)
	}
	values, err := src.KeywordValues(s.field)
	if err != nil {
		return err
	}
	s.values = values
	return nil
}

// AdvanceTo implements Selector.
func (s *KeywordSelector) AdvanceTo(doc int) error {
	ok, err := s.values.AdvanceTo(doc)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: field %q doc %d", ErrMissingGroupValue, s.field, doc)
	}
	s.key = model.KeywordKey(s.values.Value())
	return nil
}

// CurrentKey implements Selector.
func (s *KeywordSelector) CurrentKey() model.GroupKey { return s.key }

// NumericSelector groups by an int64 field.
type NumericSelector struct {
	field  string
	values docvalues.DocValues[int64]
	key    model.GroupKey
}

// NewNumericSelector creates a selector over the given numeric field.
func NewNumericSelector(field string) *NumericSelector {
	return &NumericSelector{field: field}
}

// SetSegment implements Selector.
func (s *NumericSelector) SetSegment(src docvalues.Source) error {
	if src.MultiValued(s.field) {
		return fmt.Errorf("%w: %q", ErrMultiValuedField, s.field)
	}
	values, err := src.Int64Values(s.field)
	if err != nil {
		return err
	}
	s.values = values
	return nil
}

// AdvanceTo implements Selector.
func (s *NumericSelector) AdvanceTo(doc int) error {
	ok, err := s.values.AdvanceTo(doc)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: field %q doc %d", ErrMissingGroupValue, s.field, doc)
	}
	s.key = model.NumericKey(s.values.Value())
	return nil
}

// CurrentKey implements Selector.
func (s *NumericSelector) CurrentKey() model.GroupKey { return s.key }
