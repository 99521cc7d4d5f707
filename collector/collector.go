package collector

import (
	"errors"
	"fmt"

	"github.com/hupe1980/hybridgo/docvalues"
	"github.com/hupe1980/hybridgo/model"
	"github.com/hupe1980/hybridgo/scorer"
)

var (
	// ErrCollectionTerminated signals that a collector gathered enough
	// hits and the segment loop should stop cleanly. It unwinds collection
	// and is swallowed by the search driver; it is never a failure.
	ErrCollectionTerminated = errors.New("collection terminated early")

	// ErrInvalidNumHits is returned when a collector is configured with a
	// non-positive result size.
	ErrInvalidNumHits = errors.New("number of hits must be positive")

	// ErrMissingScores is returned when a leaf collector receives a score
	// source that does not expose per-sub-query scores.
	ErrMissingScores = errors.New("score source exposes no per-sub-query scores")
)

// Segment describes the index segment a leaf collector operates on.
type Segment struct {
	// DocBase translates segment-local document ids to shard-global ones.
	DocBase int

	// MaxDoc is the exclusive upper bound of segment-local document ids.
	MaxDoc int

	// Values reads doc-values columns for sorting and collapsing. May be
	// nil for score-only collection.
	Values docvalues.Source

	// IndexSort is the order documents are stored in, if any. When the
	// requested sort is a prefix of it, collection can stop early.
	IndexSort *model.Sort
}

// SearchCollector gathers per-sub-query results over the segments of one
// shard-level search.
type SearchCollector interface {
	// ForSegment returns the leaf collector for one segment. Segments must
	// be collected in order, one at a time.
	ForSegment(seg *Segment) (scorer.LeafCollector, error)

	// TopDocs returns one result list per sub-query, best hit first.
	// Results are cached on first call: calling it again without further
	// collection returns the same lists.
	TopDocs() ([]model.TopDocs, error)

	// TotalHits is the number of distinct documents visited on this shard.
	TotalHits() int64

	// MaxScore is the highest per-sub-query score seen on this shard.
	MaxScore() float32
}

// HitsThresholdChecker counts collected hits against the threshold above
// which collectors may stop counting accurately and, where the sort
// allows, stop collecting altogether.
type HitsThresholdChecker struct {
	threshold int
	count     int
}

// NewHitsThresholdChecker creates a checker. The threshold must be
// positive.
func NewHitsThresholdChecker(threshold int) (*HitsThresholdChecker, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("hits threshold must be positive, got %d", threshold)
	}
	return &HitsThresholdChecker{threshold: threshold}, nil
}

// Increment records one collected hit.
func (c *HitsThresholdChecker) Increment() { c.count++ }

// Reached reports whether the threshold has been hit.
func (c *HitsThresholdChecker) Reached() bool { return c.count >= c.threshold }

// unwrapScores resolves the per-sub-query score vector from the scorable a
// bulk scorer hands to leaf collectors, looking through instrumentation
// wrappers.
func unwrapScores(s scorer.Scorable) (*scorer.SubQueryScores, error) {
	sub, ok := scorer.UnwrapSubQueryScores(s)
	if !ok {
		return nil, ErrMissingScores
	}
	return sub, nil
}
