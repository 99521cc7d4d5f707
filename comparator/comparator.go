// Package comparator implements the field comparators that order sorted
// and collapsed hybrid results. A FieldComparator stores candidate sort
// keys in numbered slots; its leaf form reads keys from one segment's doc
// values and compares candidate documents against the stored slots.
package comparator

import (
	"errors"
	"fmt"

	"github.com/hupe1980/hybridgo/docvalues"
	"github.com/hupe1980/hybridgo/model"
	"github.com/hupe1980/hybridgo/scorer"
)

// ErrBadTopValue is returned when a search-after value has the wrong type
// for its sort field.
var ErrBadTopValue = errors.New("search-after value type does not match sort field")

// FieldComparator compares hits by one sort key, buffering the keys of
// queued hits in slots.
type FieldComparator interface {
	// Compare orders two stored slots in the field's natural order.
	Compare(slot1, slot2 int) int

	// Value returns the stored key of a slot, for result assembly.
	Value(slot int) any

	// SetTopValue installs the search-after boundary value CompareTop
	// compares against.
	SetTopValue(value any) error

	// Leaf binds the comparator to one segment's doc values.
	Leaf(src docvalues.Source, docBase int) (LeafFieldComparator, error)
}

// LeafFieldComparator is the per-segment side of a FieldComparator.
type LeafFieldComparator interface {
	// SetBottom marks the slot holding the worst queued hit.
	SetBottom(slot int)

	// CompareBottom orders the bottom slot against doc: positive means doc
	// sorts before the bottom hit in the field's natural order.
	CompareBottom(doc int) (int, error)

	// CompareTop orders the search-after boundary against doc.
	CompareTop(doc int) (int, error)

	// Copy stores doc's key into slot.
	Copy(slot, doc int) error

	// SetScorer hands score-based comparators their score source.
	SetScorer(s scorer.Scorable)

	// SetHitsThresholdReached tells the comparator it may start skipping
	// non-competitive ranges.
	SetHitsThresholdReached() error
}

// ForSort builds one comparator per sort field, sized for numHits slots,
// along with the reverse multipliers that flip reversed fields. The
// subQueryIndex selects which sub-query's score a SortScore field reads.
func ForSort(sort model.Sort, numHits int, subQueryIndex int) ([]FieldComparator, []int, error) {
	if len(sort.Fields) == 0 {
		return nil, nil, errors.New("sort must have at least one field")
	}
	comparators := make([]FieldComparator, len(sort.Fields))
	reverseMul := make([]int, len(sort.Fields))
	for i, f := range sort.Fields {
		c, err := forField(f, numHits, subQueryIndex)
		if err != nil {
			return nil, nil, err
		}
		comparators[i] = c
		reverseMul[i] = 1
		if f.Reverse {
			reverseMul[i] = -1
		}
	}
	return comparators, reverseMul, nil
}

func forField(f model.SortField, numHits, subQueryIndex int) (FieldComparator, error) {
	switch f.Type {
	case model.SortScore:
		return newScoreComparator(numHits, subQueryIndex), nil
	case model.SortDoc:
		return newDocComparator(numHits), nil
	case model.SortInt64:
		return newOrderedComparator(f.Field, numHits, int64Getter), nil
	case model.SortFloat64:
		return newOrderedComparator(f.Field, numHits, float64Getter), nil
	case model.SortKeyword:
		return newOrderedComparator(f.Field, numHits, keywordGetter), nil
	default:
		return nil, fmt.Errorf("unsupported sort field type: %d", f.Type)
	}
}

// MultiLeafComparator composes per-field leaf comparators into one,
// consulting later fields only to break ties. Callers use a reverse
// multiplier of 1 with it; per-field multipliers are applied internally.
type MultiLeafComparator struct {
	comparators []LeafFieldComparator
	reverseMul  []int
}

// NewMultiLeafComparator combines the given leaf comparators. It requires
// at least two; single-field sorts use the leaf comparator directly.
func NewMultiLeafComparator(comparators []LeafFieldComparator, reverseMul []int) *MultiLeafComparator {
	return &MultiLeafComparator{comparators: comparators, reverseMul: reverseMul}
}

// SetBottom implements LeafFieldComparator.
func (m *MultiLeafComparator) SetBottom(slot int) {
	for _, c := range m.comparators {
		c.SetBottom(slot)
	}
}

// CompareBottom implements LeafFieldComparator.
func (m *MultiLeafComparator) CompareBottom(doc int) (int, error) {
	for i, c := range m.comparators {
		cmp, err := c.CompareBottom(doc)
		if err != nil {
			return 0, err
		}
		if cmp != 0 {
			return m.reverseMul[i] * cmp, nil
		}
	}
	return 0, nil
}

// CompareTop implements LeafFieldComparator.
func (m *MultiLeafComparator) CompareTop(doc int) (int, error) {
	for i, c := range m.comparators {
		cmp, err := c.CompareTop(doc)
		if err != nil {
			return 0, err
		}
		if cmp != 0 {
			return m.reverseMul[i] * cmp, nil
		}
	}
	return 0, nil
}

// Copy implements LeafFieldComparator.
func (m *MultiLeafComparator) Copy(slot, doc int) error {
	for _, c := range m.comparators {
		if err := c.Copy(slot, doc); err != nil {
			return err
		}
	}
	return nil
}

// SetScorer implements LeafFieldComparator.
func (m *MultiLeafComparator) SetScorer(s scorer.Scorable) {
	for _, c := range m.comparators {
		c.SetScorer(s)
	}
}

// SetHitsThresholdReached implements LeafFieldComparator.
func (m *MultiLeafComparator) SetHitsThresholdReached() error {
	// Only the primary field drives skipping.
	return m.comparators[0].SetHitsThresholdReached()
}
