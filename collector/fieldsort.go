package collector

import (
	"fmt"

	"github.com/hupe1980/hybridgo/comparator"
	"github.com/hupe1980/hybridgo/model"
	"github.com/hupe1980/hybridgo/scorer"
)

// subQuerySortState is one sub-query's ranking state under a field sort:
// its own comparator set (slots are per queue), its bounded queue, and the
// segment-bound leaf comparator.
type subQuerySortState struct {
	comparators []comparator.FieldComparator
	reverseMul  []int
	queue       *fieldValueHitQueue
	leaf        comparator.LeafFieldComparator
	bottom      *fieldEntry
	queueFull   bool
	collected   int64
}

// fieldSortCollector holds the state shared by the sorted collectors. The
// concrete collectors differ only in how they filter hits before queuing.
type fieldSortCollector struct {
	numHits   int
	threshold *HitsThresholdChecker
	sort      model.Sort
	after     *model.FieldDoc

	states []*subQuerySortState
	// leafMul flips single-field comparisons at collect time. Multi-field
	// leaf comparators apply per-field multipliers internally, so it is 1
	// for them.
	leafMul int

	totalHits int64
	relation  model.Relation
	maxScore  float32

	// earlyTerminate is decided on the first segment: all segments share
	// one index sort.
	earlyTerminate        bool
	earlyTerminateDecided bool

	cached []model.TopFieldDocs
}

func newFieldSortCollector(numHits int, threshold *HitsThresholdChecker, sort model.Sort, after *model.FieldDoc) (*fieldSortCollector, error) {
	if numHits <= 0 {
		return nil, ErrInvalidNumHits
	}
	if len(sort.Fields) == 0 {
		return nil, fmt.Errorf("sorted collection requires at least one sort field")
	}
	return &fieldSortCollector{
		numHits:   numHits,
		threshold: threshold,
		sort:      sort,
		after:     after,
		relation:  model.RelationEqualTo,
	}, nil
}

// TotalHits implements SearchCollector.
func (c *fieldSortCollector) TotalHits() int64 { return c.totalHits }

// MaxScore implements SearchCollector.
func (c *fieldSortCollector) MaxScore() float32 { return c.maxScore }

// TopFieldDocs returns one sorted result list per sub-query, including the
// sort-field values of every hit. Results are cached on first call.
func (c *fieldSortCollector) TopFieldDocs() ([]model.TopFieldDocs, error) {
	if c.cached != nil {
		return c.cached, nil
	}
	results := make([]model.TopFieldDocs, len(c.states))
	for i, st := range c.states {
		results[i] = model.TopFieldDocs{
			TotalHits: model.TotalHits{Value: st.collected, Relation: c.relation},
			FieldDocs: st.queue.drainFieldDocs(),
			Fields:    c.sort.Fields,
		}
	}
	c.cached = results
	return results, nil
}

// TopDocs implements SearchCollector by flattening the sorted results to
// plain hits.
func (c *fieldSortCollector) TopDocs() ([]model.TopDocs, error) {
	fieldDocs, err := c.TopFieldDocs()
	if err != nil {
		return nil, err
	}
	results := make([]model.TopDocs, len(fieldDocs))
	for i, fd := range fieldDocs {
		docs := make([]model.ScoreDoc, len(fd.FieldDocs))
		for k, d := range fd.FieldDocs {
			docs[k] = d.ScoreDoc
		}
		results[i] = model.TopDocs{TotalHits: fd.TotalHits, ScoreDocs: docs}
	}
	return results, nil
}

// ensureStates sizes the per-sub-query queues and comparators once the
// number of sub-queries is known.
func (c *fieldSortCollector) ensureStates(numSubQueries int) error {
	if c.states != nil {
		return nil
	}
	c.states = make([]*subQuerySortState, numSubQueries)
	for i := range c.states {
		comparators, reverseMul, err := comparator.ForSort(c.sort, c.numHits, i)
		if err != nil {
			return err
		}
		if c.after != nil {
			for k, fc := range comparators {
				if err := fc.SetTopValue(c.after.Fields[k]); err != nil {
					return err
				}
			}
		}
		c.states[i] = &subQuerySortState{
			comparators: comparators,
			reverseMul:  reverseMul,
			queue:       newFieldValueHitQueue(c.numHits, comparators, reverseMul),
		}
	}
	return nil
}

// bindSegment rebinds every sub-query's leaf comparator to the segment and
// hands it the sub-query's score view.
func (c *fieldSortCollector) bindSegment(seg *Segment, subScores *scorer.SubQueryScores) error {
	if !c.earlyTerminateDecided {
		c.earlyTerminate = c.sort.ByDocID() || (seg.IndexSort != nil && c.sort.IsPrefixOf(*seg.IndexSort))
		c.earlyTerminateDecided = true
	}
	for i, st := range c.states {
		leaves := make([]comparator.LeafFieldComparator, len(st.comparators))
		for k, fc := range st.comparators {
			leaf, err := fc.Leaf(seg.Values, seg.DocBase)
			if err != nil {
				return err
			}
			leaves[k] = leaf
		}
		if len(leaves) == 1 {
			st.leaf = leaves[0]
			c.leafMul = st.reverseMul[0]
		} else {
			st.leaf = comparator.NewMultiLeafComparator(leaves, st.reverseMul)
			c.leafMul = 1
		}
		st.leaf.SetScorer(subScores.SubScore(i))
	}
	return nil
}

// incrementTotalHitCount counts one visited doc; the first time the hits
// threshold is reached the comparators are told so they may start skipping
// and the hit count becomes a lower bound.
func (c *fieldSortCollector) incrementTotalHitCount() error {
	c.totalHits++
	c.threshold.Increment()
	if c.relation == model.RelationEqualTo && c.threshold.Reached() {
		for _, st := range c.states {
			if err := st.leaf.SetHitsThresholdReached(); err != nil {
				return err
			}
		}
		c.relation = model.RelationGreaterThanOrEqualTo
	}
	return nil
}

// collectHit queues a hit while the sub-query's queue still has room.
func (c *fieldSortCollector) collectHit(doc int, st *subQuerySortState, docBase int, score float32) error {
	slot := int(st.collected) - 1
	if err := st.leaf.Copy(slot, doc); err != nil {
		return err
	}
	st.bottom = st.queue.add(&fieldEntry{slot: slot, doc: docBase + doc, score: score})
	st.queueFull = slot == c.numHits-1
	if st.queueFull {
		st.leaf.SetBottom(st.bottom.slot)
	}
	return nil
}

// collectCompetitiveHit replaces the worst queued hit with a better one.
func (c *fieldSortCollector) collectCompetitiveHit(doc int, st *subQuerySortState, docBase int, score float32) error {
	if err := st.leaf.Copy(st.bottom.slot, doc); err != nil {
		return err
	}
	st.bottom.doc = docBase + doc
	st.bottom.score = score
	st.bottom = st.queue.updateTop()
	st.leaf.SetBottom(st.bottom.slot)
	return nil
}

// fieldSortLeafCollector is the per-segment state shared by the sorted
// leaf collectors.
type fieldSortLeafCollector struct {
	parent    *fieldSortCollector
	seg       *Segment
	subScores *scorer.SubQueryScores
	bound     bool

	// collectedAllCompetitiveHits is set once docs stop being competitive
	// under an index sort but the hits threshold is not yet reached.
	collectedAllCompetitiveHits bool
}

func (l *fieldSortLeafCollector) SetScorer(s scorer.Scorable) error {
	sub, err := unwrapScores(s)
	if err != nil {
		return err
	}
	l.subScores = sub
	if !l.bound {
		if err := l.parent.ensureStates(sub.NumSubQueries()); err != nil {
			return err
		}
		if err := l.parent.bindSegment(l.seg, sub); err != nil {
			return err
		}
		l.bound = true
	}
	return nil
}

// thresholdCheck reports whether doc is non-competitive for the sub-query.
// Under an index sort, docs arrive in sort order, so the first
// non-competitive doc means no later doc can compete either: collection
// terminates once the hits threshold is reached.
func (l *fieldSortLeafCollector) thresholdCheck(doc int, st *subQuerySortState) (bool, error) {
	cmpBottom := 0
	if !l.collectedAllCompetitiveHits {
		v, err := st.leaf.CompareBottom(doc)
		if err != nil {
			return false, err
		}
		cmpBottom = l.parent.leafMul * v
	}
	if l.collectedAllCompetitiveHits || cmpBottom <= 0 {
		if l.parent.earlyTerminate {
			if l.parent.threshold.Reached() {
				l.parent.relation = model.RelationGreaterThanOrEqualTo
				return false, ErrCollectionTerminated
			}
			l.collectedAllCompetitiveHits = true
		}
		return true, nil
	}
	return false, nil
}

// SimpleFieldCollector gathers the numHits best documents of every
// sub-query under a field sort, from the start of the result set.
type SimpleFieldCollector struct {
	*fieldSortCollector
}

var _ SearchCollector = (*SimpleFieldCollector)(nil)

// NewSimpleFieldCollector creates a sorted collector keeping numHits hits
// per sub-query.
func NewSimpleFieldCollector(numHits int, threshold *HitsThresholdChecker, sort model.Sort) (*SimpleFieldCollector, error) {
	base, err := newFieldSortCollector(numHits, threshold, sort, nil)
	if err != nil {
		return nil, err
	}
	return &SimpleFieldCollector{fieldSortCollector: base}, nil
}

// ForSegment implements SearchCollector.
func (c *SimpleFieldCollector) ForSegment(seg *Segment) (scorer.LeafCollector, error) {
	c.cached = nil
	return &simpleFieldLeafCollector{fieldSortLeafCollector{parent: c.fieldSortCollector, seg: seg}}, nil
}

type simpleFieldLeafCollector struct {
	fieldSortLeafCollector
}

// Collect implements scorer.LeafCollector.
func (l *simpleFieldLeafCollector) Collect(doc int) error {
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
		st.collected++
		if score > c.maxScore {
			c.maxScore = score
		}
		if st.queueFull {
			skip, err := l.thresholdCheck(doc, st)
			if err != nil {
				return err
			}
			if skip {
				return nil
			}
			if err := c.collectCompetitiveHit(doc, st, docBase, score); err != nil {
				return err
			}
		} else {
			if err := c.collectHit(doc, st, docBase, score); err != nil {
				return err
			}
		}
	}
	return nil
}
