package scorer

import (
	"github.com/hupe1980/hybridgo/model"
)

// HybridScorer merges the sub-scorers of one hybrid query into a single
// ascending document cursor and computes, for the document under the
// cursor, both the aggregate score and the per-sub-query score vector.
//
// Sub-scorer positions are stable: subScorers[i] belongs to sub-query i
// even when other positions are nil because their sub-query matched
// nothing on this segment.
type HybridScorer struct {
	subScorers []Scorer
	pq         *disiPriorityQueue
	iterator   *DisjunctionIterator
	twoPhase   *disjunctionTwoPhase
}

// NewHybridScorer builds a hybrid scorer over the given sub-scorers.
// Nil entries mark sub-queries with no matches on this segment and keep
// their index in the score vector. At least one entry must be non-nil,
// otherwise ErrNoSubScorers is returned.
func NewHybridScorer(subScorers []Scorer) (*HybridScorer, error) {
	pq := newDisiPriorityQueue(len(subScorers))
	hasTwoPhase := false
	for i, s := range subScorers {
		if s == nil {
			continue
		}
		w := newDisiWrapper(s, i)
		if w.twoPhase != nil {
			hasTwoPhase = true
		}
		pq.add(w)
	}
	if pq.size() == 0 {
		return nil, ErrNoSubScorers
	}

	hs := &HybridScorer{
		subScorers: subScorers,
		pq:         pq,
		iterator:   newDisjunctionIterator(pq),
	}
	if hasTwoPhase {
		hs.twoPhase = newDisjunctionTwoPhase(pq, hs.iterator)
	}
	return hs, nil
}

// NumSubQueries returns the length of the score vector.
func (s *HybridScorer) NumSubQueries() int { return len(s.subScorers) }

// DocID returns the document id under the cursor.
func (s *HybridScorer) DocID() int { return s.iterator.DocID() }

// NextDoc advances the cursor to the next matching document.
func (s *HybridScorer) NextDoc() (int, error) { return s.iterator.NextDoc() }

// Advance moves the cursor to the first matching document >= target.
func (s *HybridScorer) Advance(target int) (int, error) { return s.iterator.Advance(target) }

// Cost returns the summed cost of all sub-scorers.
func (s *HybridScorer) Cost() int64 { return s.iterator.Cost() }

// Iterator returns the merged document cursor. When any sub-scorer is
// two-phase this is the approximation; callers must confirm candidates
// through TwoPhase before trusting them.
func (s *HybridScorer) Iterator() DocIDIterator { return s.iterator }

// TwoPhase returns the lazy verification phase, or nil when every
// sub-scorer matches in a single phase.
func (s *HybridScorer) TwoPhase() TwoPhase {
	if s.twoPhase == nil {
		return nil
	}
	return s.twoPhase
}

// matches returns the chain of wrappers matching the current document.
func (s *HybridScorer) matches() (*disiWrapper, error) {
	if s.twoPhase != nil {
		return s.twoPhase.verifiedMatches()
	}
	return s.pq.topList(), nil
}

// Score returns the aggregate score of the current document: the sum over
// exactly the sub-scorers positioned on it.
func (s *HybridScorer) Score() (float32, error) {
	var total float32
	w, err := s.matches()
	if err != nil {
		return 0, err
	}
	for ; w != nil; w = w.next {
		if w.doc == model.NoMoreDocs {
			continue
		}
		score, err := w.scorer.Score()
		if err != nil {
			return 0, err
		}
		total += score
	}
	return total, nil
}

// Scores returns the per-sub-query score vector for the current document.
// Index i holds sub-query i's score, or 0 when sub-query i does not match
// this document. The returned slice is freshly allocated per call.
func (s *HybridScorer) Scores() ([]float32, error) {
	scores := make([]float32, len(s.subScorers))
	w, err := s.matches()
	if err != nil {
		return nil, err
	}
	for ; w != nil; w = w.next {
		if w.doc == model.NoMoreDocs {
			continue
		}
		score, err := w.scorer.Score()
		if err != nil {
			return nil, err
		}
		scores[w.subQueryIndex] = score
	}
	return scores, nil
}

// GetMaxScore returns the maximum score any sub-scorer currently positioned
// at or before upTo may produce up to upTo. Sub-scorers without max-score
// support contribute an unbounded estimate via their plain scores only when
// asked, so this is a skipping heuristic, not a guarantee.
func (s *HybridScorer) GetMaxScore(upTo int) (float32, error) {
	var max float32
	for _, w := range s.pq.heap {
		if w.doc > upTo {
			continue
		}
		ms, ok := w.scorer.(MaxScoreScorer)
		if !ok {
			continue
		}
		v, err := ms.GetMaxScore(upTo)
		if err != nil {
			return 0, err
		}
		if v > max {
			max = v
		}
	}
	return max, nil
}

// SetMinCompetitiveScore propagates the competitive floor to every
// sub-scorer that supports pruning.
func (s *HybridScorer) SetMinCompetitiveScore(minScore float32) error {
	for _, sub := range s.subScorers {
		ms, ok := sub.(MaxScoreScorer)
		if !ok {
			continue
		}
		if err := ms.SetMinCompetitiveScore(minScore); err != nil {
			return err
		}
	}
	return nil
}
