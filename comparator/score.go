package comparator

import (
	"cmp"
	"fmt"

	"github.com/hupe1980/hybridgo/docvalues"
	"github.com/hupe1980/hybridgo/scorer"
)

// scoreComparator sorts by relevance score. Its natural order is
// descending, matching how a score sort is universally understood, so a
// reverse multiplier of 1 yields best-score-first.
//
// The scorer installed via SetScorer must expose the individual sub-query
// score, never the aggregate hybrid score.
type scoreComparator struct {
	subQueryIndex int
	slots         []float32
	bottom        float32
	top           float32
	hasTop        bool
	scorable      scorer.Scorable
}

func newScoreComparator(numHits, subQueryIndex int) *scoreComparator {
	return &scoreComparator{
		subQueryIndex: subQueryIndex,
		slots:         make([]float32, numHits),
	}
}

func (c *scoreComparator) Compare(slot1, slot2 int) int {
	// Inverted: higher scores sort first.
	return cmp.Compare(c.slots[slot2], c.slots[slot1])
}

func (c *scoreComparator) Value(slot int) any { return c.slots[slot] }

func (c *scoreComparator) SetTopValue(value any) error {
	switch v := value.(type) {
	case float32:
		c.top = v
	case float64:
		c.top = float32(v)
	default:
		return fmt.Errorf("%w: score sort got %T", ErrBadTopValue, value)
	}
	c.hasTop = true
	return nil
}

func (c *scoreComparator) Leaf(docvalues.Source, int) (LeafFieldComparator, error) {
	return c, nil
}

func (c *scoreComparator) SetBottom(slot int) { c.bottom = c.slots[slot] }

func (c *scoreComparator) CompareBottom(doc int) (int, error) {
	score, err := c.scorable.Score()
	if err != nil {
		return 0, err
	}
	return cmp.Compare(score, c.bottom), nil
}

func (c *scoreComparator) CompareTop(doc int) (int, error) {
	score, err := c.scorable.Score()
	if err != nil {
		return 0, err
	}
	if !c.hasTop {
		return 0, fmt.Errorf("no search-after value set for score sort")
	}
	return cmp.Compare(score, c.top), nil
}

func (c *scoreComparator) Copy(slot, doc int) error {
	score, err := c.scorable.Score()
	if err != nil {
		return err
	}
	c.slots[slot] = score
	return nil
}

func (c *scoreComparator) SetScorer(s scorer.Scorable) { c.scorable = s }

func (c *scoreComparator) SetHitsThresholdReached() error { return nil }

// docComparator sorts by shard-global document id, the cheapest stable
// order and the one index sorts always satisfy.
type docComparator struct {
	slots   []int
	bottom  int
	top     int
	hasTop  bool
	docBase int
}

func newDocComparator(numHits int) *docComparator {
	return &docComparator{slots: make([]int, numHits)}
}

func (c *docComparator) Compare(slot1, slot2 int) int {
	return cmp.Compare(c.slots[slot1], c.slots[slot2])
}

func (c *docComparator) Value(slot int) any { return c.slots[slot] }

func (c *docComparator) SetTopValue(value any) error {
	switch v := value.(type) {
	case int:
		c.top = v
	case int64:
		c.top = int(v)
	case float64:
		c.top = int(v)
	default:
		return fmt.Errorf("%w: doc sort got %T", ErrBadTopValue, value)
	}
	c.hasTop = true
	return nil
}

func (c *docComparator) Leaf(src docvalues.Source, docBase int) (LeafFieldComparator, error) {
	c.docBase = docBase
	return c, nil
}

func (c *docComparator) SetBottom(slot int) { c.bottom = c.slots[slot] }

func (c *docComparator) CompareBottom(doc int) (int, error) {
	return cmp.Compare(c.bottom, c.docBase+doc), nil
}

func (c *docComparator) CompareTop(doc int) (int, error) {
	if !c.hasTop {
		return 0, fmt.Errorf("no search-after value set for doc sort")
	}
	return cmp.Compare(c.top, c.docBase+doc), nil
}

func (c *docComparator) Copy(slot, doc int) error {
	c.slots[slot] = c.docBase + doc
	return nil
}

func (c *docComparator) SetScorer(scorer.Scorable) {}

func (c *docComparator) SetHitsThresholdReached() error { return nil }
