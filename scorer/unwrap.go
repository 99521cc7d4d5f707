package scorer

// Profiling and instrumentation layers wrap scorers transparently. Rather
// than inspecting runtime types of arbitrary wrapper hierarchies, a wrapper
// opts in to resolution by exposing its delegate.

// maxUnwrapDepth bounds delegate chains so a cyclic wrapper cannot hang
// resolution.
const maxUnwrapDepth = 64

// ScorerUnwrapper is implemented by scorer wrappers that delegate to an
// inner scorer.
type ScorerUnwrapper interface {
	UnwrapScorer() Scorer
}

// ScorableUnwrapper is implemented by scorable wrappers that delegate to an
// inner scorable.
type ScorableUnwrapper interface {
	UnwrapScorable() Scorable
}

// UnwrapHybrid locates the HybridScorer inside an arbitrarily wrapped
// scorer, following delegate links. It reports false when none is found.
func UnwrapHybrid(s Scorer) (*HybridScorer, bool) {
	for depth := 0; s != nil && depth < maxUnwrapDepth; depth++ {
		if hs, ok := s.(*HybridScorer); ok {
			return hs, true
		}
		u, ok := s.(ScorerUnwrapper)
		if !ok {
			return nil, false
		}
		s = u.UnwrapScorer()
	}
	return nil, false
}

// UnwrapSubQueryScores locates the per-sub-query score vector inside an
// arbitrarily wrapped scorable. It reports false when none is found.
func UnwrapSubQueryScores(s Scorable) (*SubQueryScores, bool) {
	for depth := 0; s != nil && depth < maxUnwrapDepth; depth++ {
		if sub, ok := s.(*SubQueryScores); ok {
			return sub, true
		}
		u, ok := s.(ScorableUnwrapper)
		if !ok {
			return nil, false
		}
		s = u.UnwrapScorable()
	}
	return nil, false
}
