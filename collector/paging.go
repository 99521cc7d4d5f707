package collector

import (
	"fmt"

	"github.com/hupe1980/hybridgo/model"
	"github.com/hupe1980/hybridgo/scorer"
)

// PagingFieldCollector gathers the numHits best documents of every
// sub-query under a field sort, skipping everything at or before the
// search-after cursor. Hits that sort before the cursor, or tie with it on
// a smaller-or-equal doc id, belong to a previous page.
type PagingFieldCollector struct {
	*fieldSortCollector
}

var _ SearchCollector = (*PagingFieldCollector)(nil)

// NewPagingFieldCollector creates a sorted collector resuming after the
// given cursor hit. The cursor must carry one value per sort field.
func NewPagingFieldCollector(numHits int, threshold *HitsThresholdChecker, sort model.Sort, after model.FieldDoc) (*PagingFieldCollector, error) {
	if len(after.Fields) != len(sort.Fields) {
		return nil, fmt.Errorf("search-after has %d values but sort has %d fields", len(after.Fields), len(sort.Fields))
	}
	base, err := newFieldSortCollector(numHits, threshold, sort, &after)
	if err != nil {
		return nil, err
	}
	return &PagingFieldCollector{fieldSortCollector: base}, nil
}

// ForSegment implements SearchCollector.
func (c *PagingFieldCollector) ForSegment(seg *Segment) (scorer.LeafCollector, error) {
	c.cached = nil
	return &pagingFieldLeafCollector{
		fieldSortLeafCollector: fieldSortLeafCollector{parent: c.fieldSortCollector, seg: seg},
		afterDoc:               c.after.Doc - seg.DocBase,
	}, nil
}

type pagingFieldLeafCollector struct {
	fieldSortLeafCollector

	// afterDoc is the cursor's doc id in segment-local terms, the tiebreak
	// for docs whose sort keys equal the cursor's.
	afterDoc int
}

// Collect implements scorer.LeafCollector.
func (l *pagingFieldLeafCollector) Collect(doc int) error {
	c := l.parent
	scores := l.subScores.Scores()
	if err := c.incrementTotalHitCount(); err != nil {
		return err
	}
	docBase := l.seg.DocBase
	for i, score := range scores {
		// 0.0 means the sub-query did not match this doc.
		if score == 0 {
			continue
		}
		st := c.states[i]
		if st.queueFull {
			skip, err := l.thresholdCheck(doc, st)
			if err != nil {
				return err
			}
			if skip {
				return nil
			}
		}
		onPreviousPage, err := l.collectedOnPreviousPage(doc, st)
		if err != nil {
			return err
		}
		if onPreviousPage {
			return nil
		}
		if score > c.maxScore {
			c.maxScore = score
		}
		if st.queueFull {
			if err := c.collectCompetitiveHit(doc, st, docBase, score); err != nil {
				return err
			}
		} else {
			st.collected++
			if err := c.collectHit(doc, st, docBase, score); err != nil {
				return err
			}
		}
	}
	return nil
}

// collectedOnPreviousPage reports whether doc sorts at or before the
// search-after cursor for this sub-query.
func (l *pagingFieldLeafCollector) collectedOnPreviousPage(doc int, st *subQuerySortState) (bool, error) {
	v, err := st.leaf.CompareTop(doc)
	if err != nil {
		return false, err
	}
	topCmp := l.parent.leafMul * v
	return topCmp > 0 || (topCmp == 0 && doc <= l.afterDoc), nil
}
