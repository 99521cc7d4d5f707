package collector

import (
	"github.com/hupe1980/hybridgo/comparator"
	"github.com/hupe1980/hybridgo/model"
)

// hitQueue is a bounded min-heap of hits ordered by score, worst on top.
// Ties are broken by document id: of two equal scores, the larger doc id
// is the worse hit. The heap is hand-rolled to keep insertions
// allocation-free.
type hitQueue struct {
	items    []model.ScoreDoc
	capacity int
}

func newHitQueue(capacity int) *hitQueue {
	return &hitQueue{items: make([]model.ScoreDoc, 0, capacity), capacity: capacity}
}

func (q *hitQueue) size() int { return len(q.items) }

// worse reports whether a is a worse hit than b.
func (q *hitQueue) worse(a, b model.ScoreDoc) bool {
	if a.Score == b.Score {
		return a.Doc > b.Doc
	}
	return a.Score < b.Score
}

// insertWithOverflow adds d, evicting and returning the worst hit when the
// queue is full. When d itself is not competitive, d is returned back.
func (q *hitQueue) insertWithOverflow(d model.ScoreDoc) (model.ScoreDoc, bool) {
	if len(q.items) < q.capacity {
		q.items = append(q.items, d)
		q.upHeap(len(q.items) - 1)
		return model.ScoreDoc{}, false
	}
	if q.worse(d, q.items[0]) || d == q.items[0] {
		return d, true
	}
	evicted := q.items[0]
	q.items[0] = d
	q.downHeap(0)
	return evicted, true
}

// pop removes and returns the worst hit.
func (q *hitQueue) pop() model.ScoreDoc {
	top := q.items[0]
	n := len(q.items)
	q.items[0] = q.items[n-1]
	q.items = q.items[:n-1]
	if len(q.items) > 0 {
		q.downHeap(0)
	}
	return top
}

// drainDescending empties the queue into a best-first slice.
func (q *hitQueue) drainDescending() []model.ScoreDoc {
	result := make([]model.ScoreDoc, len(q.items))
	for i := len(result) - 1; i >= 0; i-- {
		result[i] = q.pop()
	}
	return result
}

func (q *hitQueue) upHeap(i int) {
	node := q.items[i]
	for i > 0 {
		parent := (i - 1) / 2
		if !q.worse(node, q.items[parent]) {
			break
		}
		q.items[i] = q.items[parent]
		i = parent
	}
	q.items[i] = node
}

func (q *hitQueue) downHeap(i int) {
	n := len(q.items)
	node := q.items[i]
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && q.worse(q.items[right], q.items[child]) {
			child = right
		}
		if !q.worse(q.items[child], node) {
			break
		}
		q.items[i] = q.items[child]
		i = child
	}
	q.items[i] = node
}

// fieldEntry is one queued hit of a comparator-ordered queue. slot indexes
// the hit's sort keys inside the queue's comparators.
type fieldEntry struct {
	slot  int
	doc   int
	score float32
}

// fieldValueHitQueue is a bounded min-heap ordered by the requested sort,
// worst hit on top. Sort keys live in the comparators' slots; the queue
// owns its comparators so every sub-query queue ranks independently.
type fieldValueHitQueue struct {
	items       []*fieldEntry
	capacity    int
	comparators []comparator.FieldComparator
	reverseMul  []int
}

func newFieldValueHitQueue(capacity int, comparators []comparator.FieldComparator, reverseMul []int) *fieldValueHitQueue {
	return &fieldValueHitQueue{
		items:       make([]*fieldEntry, 0, capacity),
		capacity:    capacity,
		comparators: comparators,
		reverseMul:  reverseMul,
	}
}

func (q *fieldValueHitQueue) size() int { return len(q.items) }

func (q *fieldValueHitQueue) full() bool { return len(q.items) == q.capacity }

// worse reports whether a sorts after b in the requested order.
func (q *fieldValueHitQueue) worse(a, b *fieldEntry) bool {
	for i, c := range q.comparators {
		cmp := q.reverseMul[i] * c.Compare(a.slot, b.slot)
		if cmp != 0 {
			return cmp > 0
		}
	}
	return a.doc > b.doc
}

// add inserts the entry and returns the current worst entry (the bottom).
// The queue must not be full.
func (q *fieldValueHitQueue) add(e *fieldEntry) *fieldEntry {
	q.items = append(q.items, e)
	q.upHeap(len(q.items) - 1)
	return q.items[0]
}

// updateTop restores heap order after the bottom entry was overwritten in
// place and returns the new bottom.
func (q *fieldValueHitQueue) updateTop() *fieldEntry {
	q.downHeap(0)
	return q.items[0]
}

func (q *fieldValueHitQueue) top() *fieldEntry {
	if len(q.items) == 0 {
		return nil
	}
	return q.items[0]
}

func (q *fieldValueHitQueue) pop() *fieldEntry {
	top := q.items[0]
	n := len(q.items)
	q.items[0] = q.items[n-1]
	q.items = q.items[:n-1]
	if len(q.items) > 0 {
		q.downHeap(0)
	}
	return top
}

// drainFieldDocs empties the queue into a best-first slice, materializing
// every entry's sort-field values.
func (q *fieldValueHitQueue) drainFieldDocs() []model.FieldDoc {
	result := make([]model.FieldDoc, len(q.items))
	for i := len(result) - 1; i >= 0; i-- {
		e := q.pop()
		fields := make([]any, len(q.comparators))
		for k, c := range q.comparators {
			fields[k] = c.Value(e.slot)
		}
		result[i] = model.FieldDoc{
			ScoreDoc: model.ScoreDoc{Doc: e.doc, Score: e.score, ShardIndex: -1},
			Fields:   fields,
		}
	}
	return result
}

func (q *fieldValueHitQueue) upHeap(i int) {
	node := q.items[i]
	for i > 0 {
		parent := (i - 1) / 2
		if !q.worse(node, q.items[parent]) {
			break
		}
		q.items[i] = q.items[parent]
		i = parent
	}
	q.items[i] = node
}

func (q *fieldValueHitQueue) downHeap(i int) {
	n := len(q.items)
	node := q.items[i]
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && q.worse(q.items[right], q.items[child]) {
			child = right
		}
		if !q.worse(q.items[child], node) {
			break
		}
		q.items[i] = q.items[child]
		i = child
	}
	q.items[i] = node
}
