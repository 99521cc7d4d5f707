package hybridgo

import (
	"errors"
	"fmt"

	"github.com/hupe1980/hybridgo/collector"
	"github.com/hupe1980/hybridgo/scorer"
)

var (
	// ErrEmptyQuery is returned when a hybrid query is built without
	// sub-queries.
	ErrEmptyQuery = errors.New("hybrid query must have at least one sub-query")

	// ErrNoSegments is returned when a search is started without segments.
	ErrNoSegments = errors.New("search requires at least one segment")
)

// ErrTooManySubQueries indicates a hybrid query exceeding the sub-query
// limit.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrTooManySubQueries struct {
	Count int
	Limit int
	cause error
}

func (e *ErrTooManySubQueries) Error() string {
	return fmt.Sprintf("too many sub-queries: %d exceeds limit %d", e.Count, e.Limit)
}

func (e *ErrTooManySubQueries) Unwrap() error { return e.cause }

// ErrScorerSetup indicates that building a sub-query's scorer for a
// segment failed.
//
// The original underlying error can be accessed via errors.Unwrap.
type ErrScorerSetup struct {
	SubQueryIndex int
	DocBase       int
	cause         error
}

func (e *ErrScorerSetup) Error() string {
	return fmt.Sprintf("building scorer for sub-query %d on segment at docBase %d: %v", e.SubQueryIndex, e.DocBase, e.cause)
}

func (e *ErrScorerSetup) Unwrap() error { return e.cause }

// translateError normalizes errors from the inner packages into the
// sentinels exposed at this level.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, scorer.ErrNoSubScorers) {
		// Callers hit this only through query misuse; segments where every
		// sub-query is matchless are skipped before scoring.
		return fmt.Errorf("%w: %w", ErrEmptyQuery, err)
	}
	if errors.Is(err, collector.ErrCollectionTerminated) {
		// Never an error; callers stop collecting and read results.
		return nil
	}
	return err
}
