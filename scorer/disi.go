package scorer

// disiWrapper is one sub-scorer's slot in the disjunction priority queue.
// doc caches the iterator position so heap ordering never calls through
// the interface. next links wrappers positioned on the same document into
// the topList chain.
type disiWrapper struct {
	scorer Scorer

	// iterator is the approximation when the scorer is two-phase,
	// otherwise the scorer itself.
	iterator  DocIDIterator
	twoPhase  TwoPhase
	cost      int64
	matchCost float64

	// subQueryIndex is the position of this sub-query in the hybrid
	// query, stable even when other positions hold nil scorers.
	subQueryIndex int

	doc  int
	next *disiWrapper
}

func newDisiWrapper(s Scorer, subQueryIndex int) *disiWrapper {
	w := &disiWrapper{
		scorer:        s,
		iterator:      s,
		subQueryIndex: subQueryIndex,
		doc:           -1,
	}
	if tps, ok := s.(TwoPhaseScorer); ok {
		if tp := tps.TwoPhase(); tp != nil {
			w.twoPhase = tp
			w.iterator = tp.Approximation()
			w.matchCost = tp.MatchCost()
		}
	}
	w.cost = w.iterator.Cost()
	w.doc = w.iterator.DocID()
	return w
}

// disiPriorityQueue is a binary min-heap of disiWrappers keyed by current
// document id. Beyond the usual heap operations it can produce, in O(k)
// for k matches, the linked list of all wrappers positioned on the minimum
// document.
type disiPriorityQueue struct {
	heap []*disiWrapper
}

func newDisiPriorityQueue(capacity int) *disiPriorityQueue {
	return &disiPriorityQueue{heap: make([]*disiWrapper, 0, capacity)}
}

func (pq *disiPriorityQueue) size() int { return len(pq.heap) }

func (pq *disiPriorityQueue) top() *disiWrapper {
	if len(pq.heap) == 0 {
		return nil
	}
	return pq.heap[0]
}

func (pq *disiPriorityQueue) add(w *disiWrapper) {
	pq.heap = append(pq.heap, w)
	pq.upHeap(len(pq.heap) - 1)
}

// pop removes and returns the wrapper with the minimum document id.
func (pq *disiPriorityQueue) pop() *disiWrapper {
	n := len(pq.heap)
	if n == 0 {
		return nil
	}
	result := pq.heap[0]
	pq.heap[0] = pq.heap[n-1]
	pq.heap = pq.heap[:n-1]
	if len(pq.heap) > 0 {
		pq.downHeap(0)
	}
	return result
}

// updateTop restores the heap after the top wrapper's doc changed and
// returns the new top.
func (pq *disiPriorityQueue) updateTop() *disiWrapper {
	pq.downHeap(0)
	return pq.heap[0]
}

// topList returns all wrappers positioned on the minimum document id,
// chained through their next pointers. The chain is rebuilt on every call;
// it only stays valid until the queue is reordered.
func (pq *disiPriorityQueue) topList() *disiWrapper {
	if len(pq.heap) == 0 {
		return nil
	}
	list := pq.heap[0]
	list.next = nil
	list = pq.appendMatches(list, 1)
	list = pq.appendMatches(list, 2)
	return list
}

// appendMatches prepends heap[i] and, transitively, its children when they
// share the top document. Children of a non-matching node cannot match
// because the heap orders parents before children.
func (pq *disiPriorityQueue) appendMatches(list *disiWrapper, i int) *disiWrapper {
	if i < len(pq.heap) && pq.heap[i].doc == list.doc {
		w := pq.heap[i]
		w.next = list
		list = w
		list = pq.appendMatches(list, 2*i+1)
		list = pq.appendMatches(list, 2*i+2)
	}
	return list
}

func (pq *disiPriorityQueue) upHeap(i int) {
	node := pq.heap[i]
	for i > 0 {
		parent := (i - 1) / 2
		if pq.heap[parent].doc <= node.doc {
			break
		}
		pq.heap[i] = pq.heap[parent]
		i = parent
	}
	pq.heap[i] = node
}

func (pq *disiPriorityQueue) downHeap(i int) {
	n := len(pq.heap)
	node := pq.heap[i]
	for {
		child := 2*i + 1
		if child >= n {
			break
		}
		if right := child + 1; right < n && pq.heap[right].doc < pq.heap[child].doc {
			child = right
		}
		if pq.heap[child].doc >= node.doc {
			break
		}
		pq.heap[i] = pq.heap[child]
		i = child
	}
	pq.heap[i] = node
}
