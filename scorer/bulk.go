package scorer

import (
	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/hybridgo/model"
)

const (
	windowShift = 12

	// WindowSize is the number of document ids processed per bulk-scoring
	// window.
	WindowSize = 1 << windowShift

	windowMask = WindowSize - 1
)

// BulkScorer scores a hybrid query over fixed-size windows of document ids.
// Per window it fills a bitset of matching documents and a per-sub-query
// score matrix by draining each sub-scorer independently, then delivers
// every matching document to the collector exactly once with the full
// score vector in place. This replaces N virtual score calls per document
// with one batched pass per sub-scorer per window.
//
// Window state is reset between windows; only one window is live at a time.
type BulkScorer struct {
	scorers   []Scorer
	iterators []DocIDIterator
	twoPhases []TwoPhase

	subScores    *SubQueryScores
	needsScores  bool
	matching     *bitset.BitSet
	windowScores [][]float32

	maxDoc int
	docIDs []int
	cost   int64
}

// NewBulkScorer creates a bulk scorer over one segment's sub-scorers.
// Nil entries keep their sub-query index, exactly as in NewHybridScorer.
// maxDoc caps iteration at the segment boundary. When needsScores is
// false only match bits are tracked.
func NewBulkScorer(scorers []Scorer, needsScores bool, maxDoc int) (*BulkScorer, error) {
	n := len(scorers)
	b := &BulkScorer{
		scorers:      scorers,
		iterators:    make([]DocIDIterator, n),
		twoPhases:    make([]TwoPhase, n),
		subScores:    NewSubQueryScores(n),
		needsScores:  needsScores,
		matching:     bitset.New(WindowSize),
		windowScores: make([][]float32, n),
		maxDoc:       maxDoc,
		docIDs:       make([]int, n),
	}

	nonNil := 0
	for i, s := range scorers {
		b.docIDs[i] = model.NoMoreDocs
		if s == nil {
			continue
		}
		nonNil++
		b.iterators[i] = s
		if tps, ok := s.(TwoPhaseScorer); ok {
			if tp := tps.TwoPhase(); tp != nil {
				b.twoPhases[i] = tp
				b.iterators[i] = tp.Approximation()
			}
		}
		b.cost += b.iterators[i].Cost()
		b.windowScores[i] = make([]float32, WindowSize)
	}
	if nonNil == 0 {
		return nil, ErrNoSubScorers
	}
	return b, nil
}

// SubQueryScores exposes the shared score vector so collectors created
// outside the scoring loop can pre-wire competitive floors.
func (b *BulkScorer) SubQueryScores() *SubQueryScores { return b.subScores }

// Cost returns the summed cost of all sub-scorers.
func (b *BulkScorer) Cost() int64 { return b.cost }

// Score collects all matching documents in [minDoc, maxDoc) and returns
// the first candidate document id past the range, or model.NoMoreDocs when
// every sub-scorer is exhausted.
func (b *BulkScorer) Score(collector LeafCollector, acceptDocs Bits, minDoc, maxDoc int) (int, error) {
	if err := collector.SetScorer(b.subScores); err != nil {
		return 0, err
	}
	if maxDoc > b.maxDoc {
		maxDoc = b.maxDoc
	}
	if err := b.advanceAll(minDoc); err != nil {
		return 0, err
	}
	for !b.allDocIDsUsed(maxDoc) {
		if err := b.scoreWindow(collector, acceptDocs, minDoc, maxDoc); err != nil {
			return 0, err
		}
	}
	return b.nextCandidate(), nil
}

// advanceAll moves every sub-scorer to its first document >= minDoc.
func (b *BulkScorer) advanceAll(minDoc int) error {
	for i, it := range b.iterators {
		if it == nil {
			continue
		}
		doc := it.DocID()
		if doc < minDoc {
			var err error
			doc, err = it.Advance(minDoc)
			if err != nil {
				return err
			}
		}
		b.docIDs[i] = doc
	}
	return nil
}

func (b *BulkScorer) allDocIDsUsed(maxDoc int) bool {
	for _, doc := range b.docIDs {
		if doc < maxDoc {
			return false
		}
	}
	return true
}

// scoreWindow fills the bitset and score matrix for the window containing
// the first pending document, then flushes it to the collector.
func (b *BulkScorer) scoreWindow(collector LeafCollector, acceptDocs Bits, minDoc, maxDoc int) error {
	topDoc := -1
	for _, doc := range b.docIDs {
		if doc < maxDoc {
			topDoc = doc
			break
		}
	}

	windowBase := topDoc &^ windowMask
	windowMin := max(minDoc, windowBase)
	windowMax := min(maxDoc, windowBase+WindowSize)

	for i := range b.scorers {
		if b.iterators[i] == nil || b.docIDs[i] >= maxDoc {
			continue
		}
		if err := b.scoreSubQueryWindow(i, acceptDocs, windowMin, windowMax); err != nil {
			return err
		}
	}

	if err := b.flushWindow(collector, windowBase); err != nil {
		return err
	}
	b.resetWindow()
	return nil
}

// scoreSubQueryWindow drains one sub-scorer through [windowMin, windowMax),
// recording a bit and a score for every accepted, competitive document.
func (b *BulkScorer) scoreSubQueryWindow(i int, acceptDocs Bits, windowMin, windowMax int) error {
	it := b.iterators[i]
	doc := b.docIDs[i]
	if doc < windowMin {
		var err error
		doc, err = it.Advance(windowMin)
		if err != nil {
			return err
		}
	}
	for doc < windowMax {
		if acceptDocs == nil || acceptDocs.Get(doc) {
			matches := true
			if tp := b.twoPhases[i]; tp != nil {
				var err error
				matches, err = tp.Matches()
				if err != nil {
					return err
				}
			}
			if matches {
				offset := uint(doc & windowMask)
				if b.needsScores {
					score, err := b.scorers[i].Score()
					if err != nil {
						return err
					}
					// Scores at or below the sub-query's competitive floor
					// can no longer enter its result queue.
					if score > b.subScores.MinScore(i) {
						b.matching.Set(offset)
						b.windowScores[i][offset] = score
					}
				} else {
					b.matching.Set(offset)
				}
			}
		}
		var err error
		doc, err = it.NextDoc()
		if err != nil {
			return err
		}
	}
	b.docIDs[i] = doc
	return nil
}

// flushWindow streams every set bit to the collector, reconstructing the
// per-sub-query score vector from the matrix before each Collect call.
func (b *BulkScorer) flushWindow(collector LeafCollector, windowBase int) error {
	scores := b.subScores.Scores()
	for offset, ok := b.matching.NextSet(0); ok; offset, ok = b.matching.NextSet(offset + 1) {
		for i := range b.windowScores {
			if b.windowScores[i] == nil {
				continue
			}
			scores[i] = b.windowScores[i][offset]
		}
		if err := collector.Collect(windowBase + int(offset)); err != nil {
			return err
		}
	}
	return nil
}

func (b *BulkScorer) resetWindow() {
	b.matching.ClearAll()
	for i := range b.windowScores {
		if b.windowScores[i] == nil {
			continue
		}
		clear(b.windowScores[i])
	}
}

func (b *BulkScorer) nextCandidate() int {
	next := model.NoMoreDocs
	for _, doc := range b.docIDs {
		if doc < next {
			next = doc
		}
	}
	return next
}
