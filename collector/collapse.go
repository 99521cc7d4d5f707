package collector

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/hupe1980/hybridgo/comparator"
	"github.com/hupe1980/hybridgo/group"
	"github.com/hupe1980/hybridgo/model"
	"github.com/hupe1980/hybridgo/scorer"
)

// collapseGroupState is one group's collection state: per-sub-query queues
// of up to docsPerGroup hits, each with its own comparator slots.
type collapseGroupState struct {
	subs []*subQuerySortState

	// segGen tracks the segment the leaf comparators are bound to, so
	// groups first seen in an earlier segment get rebound lazily.
	segGen int
}

// CollapsingCollector gathers the best groups of every sub-query, keyed by
// a collapse field, keeping up to docsPerGroup hits inside each group.
// Groups are ranked by their worst kept hit under the sort, so a group
// stays ahead only while its whole kept set is competitive.
//
// Group keys are interned into dense handles once per distinct value;
// per-group state is indexed by handle and never keyed by the mutable
// value a doc-values cursor exposes.
type CollapsingCollector struct {
	collapseField string
	sort          model.Sort
	numGroups     int
	docsPerGroup  int
	threshold     *HitsThresholdChecker
	selector      group.Selector

	arena  *group.Arena
	groups []*collapseGroupState

	numSubQueries int
	leafMul       int
	segGen        int
	curSeg        *Segment
	curScores     *scorer.SubQueryScores

	totalHits int64
	relation  model.Relation
	maxScore  float32

	cached []model.CollapseTopDocs
}

var _ SearchCollector = (*CollapsingCollector)(nil)

// NewCollapsingCollector creates a collapsing collector over the given
// field, keeping the numGroups best groups per sub-query. A docsPerGroup
// of zero or less falls back to numGroups.
func NewCollapsingCollector(collapseField string, kind model.GroupKeyKind, sort model.Sort, numGroups int, threshold *HitsThresholdChecker, docsPerGroup int) (*CollapsingCollector, error) {
	if numGroups <= 0 {
		return nil, ErrInvalidNumHits
	}
	if len(sort.Fields) == 0 {
		return nil, fmt.Errorf("collapsing requires at least one sort field")
	}
	var selector group.Selector
	switch kind {
	case model.GroupKeyKeyword:
		selector = group.NewKeywordSelector(collapseField)
	case model.GroupKeyNumeric:
		selector = group.NewNumericSelector(collapseField)
	default:
		return nil, fmt.Errorf("unsupported collapse key kind: %d", kind)
	}
	if docsPerGroup <= 0 {
		docsPerGroup = numGroups
	}
	return &CollapsingCollector{
		collapseField: collapseField,
		sort:          sort,
		numGroups:     numGroups,
		docsPerGroup:  docsPerGroup,
		threshold:     threshold,
		selector:      selector,
		arena:         group.NewArena(),
		relation:      model.RelationEqualTo,
	}, nil
}

// ForSegment implements SearchCollector. It fails when the collapse field
// is multi-valued in the segment.
func (c *CollapsingCollector) ForSegment(seg *Segment) (scorer.LeafCollector, error) {
	if err := c.selector.SetSegment(seg.Values); err != nil {
		return nil, err
	}
	c.cached = nil
	c.segGen++
	c.curSeg = seg
	return &collapseLeafCollector{parent: c, seg: seg}, nil
}

// TotalHits implements SearchCollector.
func (c *CollapsingCollector) TotalHits() int64 { return c.totalHits }

// MaxScore implements SearchCollector.
func (c *CollapsingCollector) MaxScore() float32 { return c.maxScore }

// TopDocs implements SearchCollector by flattening the grouped results to
// plain hits.
func (c *CollapsingCollector) TopDocs() ([]model.TopDocs, error) {
	collapsed, err := c.CollapseTopDocs()
	if err != nil {
		return nil, err
	}
	results := make([]model.TopDocs, len(collapsed))
	for i, cd := range collapsed {
		docs := make([]model.ScoreDoc, len(cd.FieldDocs))
		for k, d := range cd.FieldDocs {
			docs[k] = d.ScoreDoc
		}
		results[i] = model.TopDocs{TotalHits: cd.TotalHits, ScoreDocs: docs}
	}
	return results, nil
}

// collapseCandidate is one group under consideration for a sub-query's
// result list: its drained hits and the sort keys of its worst kept hit.
type collapseCandidate struct {
	handle int
	docs   []model.FieldDoc
	values []any
	score  float32
}

// CollapseTopDocs returns one grouped result list per sub-query: the hits
// of the numGroups best groups, group by group in group order, each group's
// hits best-first. Results are cached on first call.
func (c *CollapsingCollector) CollapseTopDocs() ([]model.CollapseTopDocs, error) {
	if c.cached != nil {
		return c.cached, nil
	}
	results := make([]model.CollapseTopDocs, c.numSubQueries)
	for i := 0; i < c.numSubQueries; i++ {
		var totalHitsForSubQuery int64
		candidates := make([]*collapseCandidate, 0, len(c.groups))
		for handle, gs := range c.groups {
			st := gs.subs[i]
			totalHitsForSubQuery += st.collected
			if st.queue.size() == 0 {
				continue
			}
			worst := st.queue.top()
			values := make([]any, len(st.comparators))
			for k, fc := range st.comparators {
				values[k] = fc.Value(worst.slot)
			}
			candidates = append(candidates, &collapseCandidate{
				handle: handle,
				docs:   st.queue.drainFieldDocs(),
				values: values,
				score:  worst.score,
			})
		}
		slices.SortFunc(candidates, c.compareCandidates)
		if len(candidates) > c.numGroups {
			candidates = candidates[:c.numGroups]
		}

		var fieldDocs []model.FieldDoc
		var keys []model.GroupKey
		for _, cand := range candidates {
			key := c.arena.Key(cand.handle)
			for _, d := range cand.docs {
				fieldDocs = append(fieldDocs, d)
				keys = append(keys, key)
			}
		}
		results[i] = model.CollapseTopDocs{
			TopFieldDocs: model.TopFieldDocs{
				TotalHits: model.TotalHits{Value: totalHitsForSubQuery, Relation: c.relation},
				FieldDocs: fieldDocs,
				Fields:    c.sort.Fields,
			},
			CollapseField: c.collapseField,
			Keys:          keys,
		}
	}
	c.cached = results
	return results, nil
}

// compareCandidates orders groups best-first by their worst kept hit,
// breaking full ties by higher score.
func (c *CollapsingCollector) compareCandidates(a, b *collapseCandidate) int {
	for k, f := range c.sort.Fields {
		v := compareSortValues(f, a.values[k], b.values[k])
		if f.Reverse {
			v = -v
		}
		if v != 0 {
			return v
		}
	}
	return cmp.Compare(b.score, a.score)
}

// compareSortValues orders two materialized sort keys in the field's
// natural order: ascending for everything except scores.
func compareSortValues(f model.SortField, a, b any) int {
	switch f.Type {
	case model.SortScore:
		return cmp.Compare(b.(float32), a.(float32))
	case model.SortDoc:
		return cmp.Compare(a.(int), b.(int))
	case model.SortInt64:
		return cmp.Compare(a.(int64), b.(int64))
	case model.SortFloat64:
		return cmp.Compare(a.(float64), b.(float64))
	case model.SortKeyword:
		return cmp.Compare(a.(string), b.(string))
	default:
		return 0
	}
}

// groupFor returns the state of the group under the selector cursor,
// allocating and segment-binding it on first sight.
func (c *CollapsingCollector) groupFor(key model.GroupKey) (*collapseGroupState, error) {
	handle, seen := c.arena.Intern(key)
	if !seen {
		gs := &collapseGroupState{subs: make([]*subQuerySortState, c.numSubQueries)}
		for i := range gs.subs {
			comparators, reverseMul, err := comparator.ForSort(c.sort, c.docsPerGroup, i)
			if err != nil {
				return nil, err
			}
			gs.subs[i] = &subQuerySortState{
				comparators: comparators,
				reverseMul:  reverseMul,
				queue:       newFieldValueHitQueue(c.docsPerGroup, comparators, reverseMul),
			}
		}
		c.groups = append(c.groups, gs)
	}
	gs := c.groups[handle]
	if gs.segGen != c.segGen {
		if err := c.bindGroup(gs); err != nil {
			return nil, err
		}
		gs.segGen = c.segGen
	}
	return gs, nil
}

// bindGroup rebinds one group's leaf comparators to the current segment.
func (c *CollapsingCollector) bindGroup(gs *collapseGroupState) error {
	for i, st := range gs.subs {
		leaves := make([]comparator.LeafFieldComparator, len(st.comparators))
		for k, fc := range st.comparators {
			leaf, err := fc.Leaf(c.curSeg.Values, c.curSeg.DocBase)
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
		st.leaf.SetScorer(c.curScores.SubScore(i))
		if st.queueFull {
			st.leaf.SetBottom(st.bottom.slot)
		}
	}
	return nil
}

type collapseLeafCollector struct {
	parent *CollapsingCollector
	seg    *Segment
}

// SetScorer implements scorer.LeafCollector.
func (l *collapseLeafCollector) SetScorer(s scorer.Scorable) error {
	sub, err := unwrapScores(s)
	if err != nil {
		return err
	}
	c := l.parent
	c.curScores = sub
	if c.numSubQueries == 0 {
		c.numSubQueries = sub.NumSubQueries()
	}
	return nil
}

// Collect implements scorer.LeafCollector.
func (l *collapseLeafCollector) Collect(doc int) error {
	c := l.parent
	if err := c.selector.AdvanceTo(doc); err != nil {
		return err
	}
	gs, err := c.groupFor(c.selector.CurrentKey())
	if err != nil {
		return err
	}

	c.totalHits++
	c.threshold.Increment()
	if c.threshold.Reached() {
		c.relation = model.RelationGreaterThanOrEqualTo
		return ErrCollectionTerminated
	}

	scores := c.curScores.Scores()
	docBase := l.seg.DocBase
	for i, score := range scores {
		// 0.0 means the sub-query did not match this doc.
		if score == 0 {
			continue
		}
		st := gs.subs[i]
		slot := int(st.collected)
		st.collected++
		if st.queueFull {
			if err := c.updateExistingEntry(doc, st, docBase, score); err != nil {
				return err
			}
		} else {
			if err := c.addNewEntry(doc, st, docBase, score, slot); err != nil {
				return err
			}
		}
	}
	return nil
}

// updateExistingEntry replaces the group's worst kept hit when doc beats
// it under the sort.
func (c *CollapsingCollector) updateExistingEntry(doc int, st *subQuerySortState, docBase int, score float32) error {
	v, err := st.leaf.CompareBottom(doc)
	if err != nil {
		return err
	}
	if c.leafMul*v <= 0 {
		return nil
	}
	if err := st.leaf.Copy(st.bottom.slot, doc); err != nil {
		return err
	}
	st.bottom.doc = docBase + doc
	st.bottom.score = score
	st.bottom = st.queue.updateTop()
	st.leaf.SetBottom(st.bottom.slot)
	return nil
}

// addNewEntry queues a hit while the group's queue still has room.
func (c *CollapsingCollector) addNewEntry(doc int, st *subQuerySortState, docBase int, score float32, slot int) error {
	if score > c.maxScore {
		c.maxScore = score
	}
	if err := st.leaf.Copy(slot, doc); err != nil {
		return err
	}
	st.bottom = st.queue.add(&fieldEntry{slot: slot, doc: docBase + doc, score: score})
	if slot == c.docsPerGroup-1 {
		st.queueFull = true
		st.leaf.SetBottom(st.bottom.slot)
	}
	return nil
}
