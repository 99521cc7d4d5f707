package scorer

// SubQueryScores is the per-document score vector shared between the bulk
// scorer and the collectors. The bulk scorer fills it once per delivered
// document; collectors read it once per Collect call and may raise the
// per-sub-query competitive floors, which the bulk scorer consults when
// filling subsequent windows.
//
// A value of exactly 0 at index i means sub-query i did not match the
// current document and must be skipped by consumers.
type SubQueryScores struct {
	scores    []float32
	minScores []float32
}

// NewSubQueryScores creates a score vector for n sub-queries.
func NewSubQueryScores(n int) *SubQueryScores {
	return &SubQueryScores{
		scores:    make([]float32, n),
		minScores: make([]float32, n),
	}
}

// NumSubQueries returns the vector length.
func (s *SubQueryScores) NumSubQueries() int { return len(s.scores) }

// Scores returns the live score vector for the current document. The slice
// is reused between documents; callers must not retain it.
func (s *SubQueryScores) Scores() []float32 { return s.scores }

// Score returns the aggregate score of the current document: the sum over
// all matching sub-queries.
func (s *SubQueryScores) Score() (float32, error) {
	var total float32
	for _, v := range s.scores {
		total += v
	}
	return total, nil
}

// MinScore returns the competitive floor of sub-query i.
func (s *SubQueryScores) MinScore(i int) float32 { return s.minScores[i] }

// RaiseMinScore lifts the competitive floor of sub-query i. Floors never
// move down.
func (s *SubQueryScores) RaiseMinScore(i int, minScore float32) {
	if minScore > s.minScores[i] {
		s.minScores[i] = minScore
	}
}

// Reset zeroes the score vector before the next document is filled in.
func (s *SubQueryScores) Reset() {
	for i := range s.scores {
		s.scores[i] = 0
	}
}

// SubScore returns a Scorable view of a single sub-query's score. Field
// comparators that use the score as a sort key or tiebreak must see the
// individual sub-query score, never the aggregate.
func (s *SubQueryScores) SubScore(i int) Scorable {
	return subScoreView{scores: s, index: i}
}

type subScoreView struct {
	scores *SubQueryScores
	index  int
}

func (v subScoreView) Score() (float32, error) {
	return v.scores.scores[v.index], nil
}
