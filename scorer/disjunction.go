package scorer

import (
	"sort"

	"github.com/hupe1980/hybridgo/model"
)

// DisjunctionIterator presents N independently advancing sub-scorer
// iterators as one ascending cursor positioned on the minimum document id
// among the still-active sub-scorers. Exhausted sub-scorers leave the
// queue permanently.
type DisjunctionIterator struct {
	pq   *disiPriorityQueue
	cost int64
}

func newDisjunctionIterator(pq *disiPriorityQueue) *DisjunctionIterator {
	var cost int64
	for _, w := range pq.heap {
		cost += w.cost
	}
	return &DisjunctionIterator{pq: pq, cost: cost}
}

// DocID returns the current minimum document id, or model.NoMoreDocs when
// every sub-scorer is exhausted.
func (d *DisjunctionIterator) DocID() int {
	top := d.pq.top()
	if top == nil {
		return model.NoMoreDocs
	}
	return top.doc
}

// NextDoc advances every sub-scorer positioned on the current document and
// returns the new minimum.
func (d *DisjunctionIterator) NextDoc() (int, error) {
	top := d.pq.top()
	if top == nil {
		return model.NoMoreDocs, nil
	}
	cur := top.doc
	for top != nil && top.doc == cur {
		doc, err := top.iterator.NextDoc()
		if err != nil {
			return 0, err
		}
		top.doc = doc
		if doc == model.NoMoreDocs {
			d.pq.pop()
			top = d.pq.top()
		} else {
			top = d.pq.updateTop()
		}
	}
	return d.DocID(), nil
}

// Advance moves every sub-scorer positioned before target up to at least
// target and returns the new minimum.
func (d *DisjunctionIterator) Advance(target int) (int, error) {
	top := d.pq.top()
	for top != nil && top.doc < target {
		doc, err := top.iterator.Advance(target)
		if err != nil {
			return 0, err
		}
		top.doc = doc
		if doc == model.NoMoreDocs {
			d.pq.pop()
			top = d.pq.top()
		} else {
			top = d.pq.updateTop()
		}
	}
	return d.DocID(), nil
}

// Cost returns the sum of the remaining sub-scorer costs.
func (d *DisjunctionIterator) Cost() int64 { return d.cost }

// disjunctionTwoPhase lazily verifies approximate matches of a hybrid
// scorer. Verification runs cheapest MatchCost first and stops as soon as
// a sub-scorer without a two-phase split sits on the same document, since
// that sub-scorer matches implicitly.
type disjunctionTwoPhase struct {
	pq            *disiPriorityQueue
	approximation *DisjunctionIterator
	matchCost     float64

	// verified chains the wrappers confirmed to match the current
	// document; unverified holds the two-phase wrappers not yet checked.
	verified   *disiWrapper
	unverified []*disiWrapper
}

func newDisjunctionTwoPhase(pq *disiPriorityQueue, approximation *DisjunctionIterator) *disjunctionTwoPhase {
	var cost float64
	for _, w := range pq.heap {
		if w.twoPhase != nil {
			cost += w.matchCost
		}
	}
	return &disjunctionTwoPhase{pq: pq, approximation: approximation, matchCost: cost}
}

func (t *disjunctionTwoPhase) Approximation() DocIDIterator { return t.approximation }

func (t *disjunctionTwoPhase) MatchCost() float64 { return t.matchCost }

// Matches verifies the document the approximation is positioned on. Any
// remaining unverified wrappers are kept for verifiedMatches, which
// completes verification only when per-sub-query scores are needed.
func (t *disjunctionTwoPhase) Matches() (bool, error) {
	t.verified = nil
	t.unverified = t.unverified[:0]

	for w := t.pq.topList(); w != nil; {
		next := w.next
		if w.twoPhase == nil {
			w.next = t.verified
			t.verified = w
		} else {
			t.unverified = append(t.unverified, w)
		}
		w = next
	}

	if t.verified != nil {
		return true, nil
	}

	sort.Slice(t.unverified, func(i, j int) bool {
		return t.unverified[i].matchCost < t.unverified[j].matchCost
	})
	for len(t.unverified) > 0 {
		w := t.unverified[0]
		t.unverified = t.unverified[1:]
		ok, err := w.twoPhase.Matches()
		if err != nil {
			return false, err
		}
		if ok {
			w.next = nil
			t.verified = w
			return true, nil
		}
	}
	return false, nil
}

// verifiedMatches finishes verification of the remaining candidates and
// returns the chain of wrappers that truly match the current document.
func (t *disjunctionTwoPhase) verifiedMatches() (*disiWrapper, error) {
	for _, w := range t.unverified {
		ok, err := w.twoPhase.Matches()
		if err != nil {
			return nil, err
		}
		if ok {
			w.next = t.verified
			t.verified = w
		}
	}
	t.unverified = t.unverified[:0]
	return t.verified, nil
}
