package testutil

import (
	"math/rand"
	"slices"
	"sync"

	"github.com/hupe1980/hybridgo/model"
	"github.com/hupe1980/hybridgo/scorer"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float32 returns, as a float32, a pseudo-random number in [0.0,1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// Postings draws a random sorted posting list over [0, maxDoc) where each
// document matches with probability matchRate, scored uniformly in
// (0, maxScore]. Scores stay strictly positive so the zero-means-no-match
// convention holds.
func (r *RNG) Postings(maxDoc int, matchRate float64, maxScore float32) ([]int, []float32) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var docs []int
	var scores []float32
	for doc := 0; doc < maxDoc; doc++ {
		if r.rand.Float64() < matchRate {
			docs = append(docs, doc)
			scores = append(scores, (1-r.rand.Float32())*maxScore)
		}
	}
	return docs, scores
}

// FakeScorer is a scorer over a fixed posting list, for tests. Documents
// must be segment-local, strictly ascending, and paired one-to-one with
// scores.
type FakeScorer struct {
	docs   []int
	scores []float32
	idx    int
}

// NewFakeScorer creates a scorer positioned before the first document.
func NewFakeScorer(docs []int, scores []float32) *FakeScorer {
	if len(docs) != len(scores) {
		panic("testutil: docs and scores length mismatch")
	}
	return &FakeScorer{docs: docs, scores: scores, idx: -1}
}

// DocID returns the current document id, -1 before iteration starts and
// model.NoMoreDocs once exhausted.
func (s *FakeScorer) DocID() int {
	if s.idx < 0 {
		return -1
	}
	if s.idx >= len(s.docs) {
		return model.NoMoreDocs
	}
	return s.docs[s.idx]
}

// NextDoc advances to the next document.
func (s *FakeScorer) NextDoc() (int, error) {
	s.idx++
	return s.DocID(), nil
}

// Advance moves to the first document >= target.
func (s *FakeScorer) Advance(target int) (int, error) {
	if s.idx < 0 {
		s.idx = 0
	}
	for s.idx < len(s.docs) && s.docs[s.idx] < target {
		s.idx++
	}
	return s.DocID(), nil
}

// Cost returns the posting list length.
func (s *FakeScorer) Cost() int64 { return int64(len(s.docs)) }

// Score returns the score of the current document.
func (s *FakeScorer) Score() (float32, error) {
	return s.scores[s.idx], nil
}

// FakeTwoPhaseScorer exposes a FakeScorer's posting list as a cheap
// approximation and verifies membership in a smaller set of docs that
// truly match. It exercises the deferred-verification path of the hybrid
// scorers.
type FakeTwoPhaseScorer struct {
	*FakeScorer

	verified  map[int]struct{}
	matchCost float64

	// MatchCalls counts Matches invocations, to assert verification
	// laziness.
	MatchCalls int
}

// NewFakeTwoPhaseScorer creates a two-phase scorer whose approximation
// iterates docs and whose verification accepts only verifiedDocs.
func NewFakeTwoPhaseScorer(docs []int, scores []float32, verifiedDocs []int, matchCost float64) *FakeTwoPhaseScorer {
	verified := make(map[int]struct{}, len(verifiedDocs))
	for _, doc := range verifiedDocs {
		verified[doc] = struct{}{}
	}
	return &FakeTwoPhaseScorer{
		FakeScorer: NewFakeScorer(docs, scores),
		verified:   verified,
		matchCost:  matchCost,
	}
}

// TwoPhase returns the approximation/verification split.
func (s *FakeTwoPhaseScorer) TwoPhase() scorer.TwoPhase { return (*fakeTwoPhase)(s) }

type fakeTwoPhase FakeTwoPhaseScorer

func (t *fakeTwoPhase) Approximation() scorer.DocIDIterator { return t.FakeScorer }

func (t *fakeTwoPhase) Matches() (bool, error) {
	t.MatchCalls++
	_, ok := t.verified[t.FakeScorer.DocID()]
	return ok, nil
}

func (t *fakeTwoPhase) MatchCost() float64 { return t.matchCost }

// FakeMaxScoreScorer is a FakeScorer that can bound its scores and records
// the competitive floors pushed down to it.
type FakeMaxScoreScorer struct {
	*FakeScorer

	// MinCompetitive holds every SetMinCompetitiveScore value received,
	// in call order.
	MinCompetitive []float32
}

// NewFakeMaxScoreScorer wraps a posting list with max-score support.
func NewFakeMaxScoreScorer(docs []int, scores []float32) *FakeMaxScoreScorer {
	return &FakeMaxScoreScorer{FakeScorer: NewFakeScorer(docs, scores)}
}

// GetMaxScore returns the maximum score among the remaining documents up
// to and including upTo.
func (s *FakeMaxScoreScorer) GetMaxScore(upTo int) (float32, error) {
	var maxScore float32
	start := max(s.idx, 0)
	for i := start; i < len(s.docs) && s.docs[i] <= upTo; i++ {
		maxScore = max(maxScore, s.scores[i])
	}
	return maxScore, nil
}

// SetMinCompetitiveScore records the floor.
func (s *FakeMaxScoreScorer) SetMinCompetitiveScore(minScore float32) error {
	s.MinCompetitive = append(s.MinCompetitive, minScore)
	return nil
}

// StaticScorable returns a fixed score, for driving leaf collectors
// directly.
type StaticScorable float32

// Score returns the fixed score.
func (s StaticScorable) Score() (float32, error) { return float32(s), nil }

// SliceBits is a Bits over an explicit list of live document ids.
type SliceBits map[int]struct{}

// NewSliceBits creates live-docs bits marking exactly the given docs live.
func NewSliceBits(liveDocs ...int) SliceBits {
	b := make(SliceBits, len(liveDocs))
	for _, doc := range liveDocs {
		b[doc] = struct{}{}
	}
	return b
}

// Get reports whether doc is live.
func (b SliceBits) Get(doc int) bool {
	_, ok := b[doc]
	return ok
}

// DocsAndScores splits a doc->score map into the sorted parallel slices
// FakeScorer expects.
func DocsAndScores(hits map[int]float32) ([]int, []float32) {
	docs := make([]int, 0, len(hits))
	for doc := range hits {
		docs = append(docs, doc)
	}
	slices.Sort(docs)

	scores := make([]float32, len(docs))
	for i, doc := range docs {
		scores[i] = hits[doc]
	}
	return docs, scores
}
