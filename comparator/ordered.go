package comparator

import (
	"cmp"
	"fmt"

	"github.com/hupe1980/hybridgo/docvalues"
	"github.com/hupe1980/hybridgo/scorer"
)

// valuesGetter selects the typed column reader for a field.
type valuesGetter[T cmp.Ordered] func(src docvalues.Source, field string) (docvalues.DocValues[T], error)

func int64Getter(src docvalues.Source, field string) (docvalues.DocValues[int64], error) {
	return src.Int64Values(field)
}

func float64Getter(src docvalues.Source, field string) (docvalues.DocValues[float64], error) {
	return src.Float64Values(field)
}

func keywordGetter(src docvalues.Source, field string) (docvalues.DocValues[string], error) {
	return src.KeywordValues(field)
}

// orderedComparator sorts by a doc-values column of any ordered type.
// Documents without a value sort with the zero value of the type.
type orderedComparator[T cmp.Ordered] struct {
	field  string
	getter valuesGetter[T]

	slots  []T
	bottom T
	top    T
	hasTop bool

	values docvalues.DocValues[T]
}

func newOrderedComparator[T cmp.Ordered](field string, numHits int, getter valuesGetter[T]) *orderedComparator[T] {
	return &orderedComparator[T]{
		field:  field,
		getter: getter,
		slots:  make([]T, numHits),
	}
}

func (c *orderedComparator[T]) Compare(slot1, slot2 int) int {
	return cmp.Compare(c.slots[slot1], c.slots[slot2])
}

func (c *orderedComparator[T]) Value(slot int) any { return c.slots[slot] }

func (c *orderedComparator[T]) SetTopValue(value any) error {
	v, ok := value.(T)
	if !ok {
		return fmt.Errorf("%w: field %q got %T", ErrBadTopValue, c.field, value)
	}
	c.top = v
	c.hasTop = true
	return nil
}

func (c *orderedComparator[T]) Leaf(src docvalues.Source, docBase int) (LeafFieldComparator, error) {
	values, err := c.getter(src, c.field)
	if err != nil {
		return nil, err
	}
	c.values = values
	return c, nil
}

func (c *orderedComparator[T]) SetBottom(slot int) { c.bottom = c.slots[slot] }

func (c *orderedComparator[T]) CompareBottom(doc int) (int, error) {
	v, err := c.docValue(doc)
	if err != nil {
		return 0, err
	}
	return cmp.Compare(c.bottom, v), nil
}

func (c *orderedComparator[T]) CompareTop(doc int) (int, error) {
	if !c.hasTop {
		return 0, fmt.Errorf("no search-after value set for field %q", c.field)
	}
	v, err := c.docValue(doc)
	if err != nil {
		return 0, err
	}
	return cmp.Compare(c.top, v), nil
}

func (c *orderedComparator[T]) Copy(slot, doc int) error {
	v, err := c.docValue(doc)
	if err != nil {
		return err
	}
	c.slots[slot] = v
	return nil
}

func (c *orderedComparator[T]) SetScorer(scorer.Scorable) {}

func (c *orderedComparator[T]) SetHitsThresholdReached() error { return nil }

func (c *orderedComparator[T]) docValue(doc int) (T, error) {
	var zero T
	ok, err := c.values.AdvanceTo(doc)
	if err != nil {
		return zero, err
	}
	if !ok {
		return zero, nil
	}
	return c.values.Value(), nil
}
