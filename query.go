package hybridgo

import (
	"context"

	"github.com/hupe1980/hybridgo/scorer"
)

// MaxSubQueries is the number of sub-queries a hybrid query may combine.
// Each sub-query costs a score slot per document in every window, so the
// limit keeps the per-window matrix small.
const MaxSubQueries = 5

// SubQuery produces a scorer over one segment's postings. Lexical, vector,
// sparse, or any other retrieval strategy plugs in here.
type SubQuery interface {
	// ScorerFor builds this sub-query's scorer for a segment. Returning a
	// nil scorer (and nil error) means the sub-query matches nothing in
	// the segment; it keeps its result slot and scores no documents.
	ScorerFor(ctx context.Context, seg *Segment) (scorer.Scorer, error)
}

// Query is an ordered list of sub-queries scored side by side. The order
// is load-bearing: results are reported per sub-query index.
type Query struct {
	subQueries []SubQuery
}

// NewQuery creates a hybrid query over the given sub-queries.
func NewQuery(subQueries ...SubQuery) (*Query, error) {
	if len(subQueries) == 0 {
		return nil, ErrEmptyQuery
	}
	if len(subQueries) > MaxSubQueries {
		return nil, &ErrTooManySubQueries{Count: len(subQueries), Limit: MaxSubQueries}
	}
	return &Query{subQueries: subQueries}, nil
}

// SubQueries returns the sub-queries in result order.
func (q *Query) SubQueries() []SubQuery { return q.subQueries }

// NumSubQueries returns the number of sub-queries.
func (q *Query) NumSubQueries() int { return len(q.subQueries) }
