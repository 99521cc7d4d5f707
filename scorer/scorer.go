package scorer

import (
	"errors"

	"github.com/RoaringBitmap/roaring/v2"
)

var (
	// ErrNoSubScorers is returned when a hybrid scorer is constructed
	// without a single non-nil sub-scorer. Callers must handle the
	// no-documents-match case before construction.
	ErrNoSubScorers = errors.New("hybrid scorer requires at least one non-nil sub-scorer")
)

// DocIDIterator iterates matching document ids in ascending order.
// DocID returns -1 before the first call to NextDoc or Advance and
// model.NoMoreDocs once the iterator is exhausted.
type DocIDIterator interface {
	// DocID returns the current document id.
	DocID() int

	// NextDoc advances to the next matching document and returns it.
	NextDoc() (int, error)

	// Advance moves to the first matching document >= target and returns it.
	Advance(target int) (int, error)

	// Cost is an upper bound on the number of documents this iterator
	// might match. It is a planning heuristic, not an exact count.
	Cost() int64
}

// Scorer is the sub-query contract: an ascending document iterator that can
// score its current document. Any clause of a hybrid query (lexical,
// dense-vector, sparse-vector, ...) is plugged in through this interface.
type Scorer interface {
	DocIDIterator

	// Score returns the score of the current document. Only valid when the
	// iterator is positioned on a real document.
	Score() (float32, error)
}

// MaxScoreScorer is an optional capability of a Scorer that can bound its
// scores per block of document ids, enabling competitive-score skipping.
type MaxScoreScorer interface {
	Scorer

	// GetMaxScore returns the maximum score this scorer may produce for
	// documents up to and including upTo.
	GetMaxScore(upTo int) (float32, error)

	// SetMinCompetitiveScore tells the scorer that documents scoring below
	// minScore are not competitive and may be skipped.
	SetMinCompetitiveScore(minScore float32) error
}

// TwoPhase splits matching into a cheap approximation and an expensive
// verification. Matches must only be called when the approximation is
// positioned on a document; it reports whether that document truly matches.
type TwoPhase interface {
	// Approximation returns the cheap superset iterator.
	Approximation() DocIDIterator

	// Matches verifies the document the approximation is positioned on.
	Matches() (bool, error)

	// MatchCost estimates the cost of one Matches call. Cheaper phases are
	// verified first.
	MatchCost() float64
}

// TwoPhaseScorer is an optional capability of a Scorer whose matching is
// two-phase. TwoPhase may return nil when no split applies to this segment.
type TwoPhaseScorer interface {
	Scorer

	TwoPhase() TwoPhase
}

// Scorable is the minimal score accessor handed to collectors and field
// comparators. It deliberately hides iteration.
type Scorable interface {
	Score() (float32, error)
}

// LeafCollector consumes documents delivered by a bulk scorer for one
// segment. SetScorer is invoked once before any Collect call.
type LeafCollector interface {
	// SetScorer hands the collector the score source for this segment.
	SetScorer(scorer Scorable) error

	// Collect is invoked once per matching document, in ascending order of
	// segment-local document id.
	Collect(doc int) error
}

// Bits is a read-only set of document ids, used as the live-docs filter.
type Bits interface {
	Get(doc int) bool
}

// RoaringBits adapts a roaring bitmap to the Bits contract.
type RoaringBits struct {
	bm *roaring.Bitmap
}

// NewRoaringBits wraps the given bitmap. The bitmap must not be mutated
// while a search is running.
func NewRoaringBits(bm *roaring.Bitmap) *RoaringBits {
	return &RoaringBits{bm: bm}
}

// Get reports whether doc is live.
func (b *RoaringBits) Get(doc int) bool {
	return b.bm.Contains(uint32(doc))
}
