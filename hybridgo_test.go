package hybridgo_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hybridgo"
	"github.com/hupe1980/hybridgo/docvalues"
	"github.com/hupe1980/hybridgo/model"
	"github.com/hupe1980/hybridgo/scorer"
	"github.com/hupe1980/hybridgo/testutil"
)

// subQueryFunc adapts a function to the SubQuery interface.
type subQueryFunc func(ctx context.Context, seg *hybridgo.Segment) (scorer.Scorer, error)

func (f subQueryFunc) ScorerFor(ctx context.Context, seg *hybridgo.Segment) (scorer.Scorer, error) {
	return f(ctx, seg)
}

// staticSubQuery serves fixed postings keyed by segment doc base. Segments
// without postings get a nil scorer.
func staticSubQuery(bySeg map[int]map[int]float32) subQueryFunc {
	return func(_ context.Context, seg *hybridgo.Segment) (scorer.Scorer, error) {
		hits, ok := bySeg[seg.DocBase]
		if !ok {
			return nil, nil
		}
		docs, scores := testutil.DocsAndScores(hits)
		return testutil.NewFakeScorer(docs, scores), nil
	}
}

func TestNewQuery(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		_, err := hybridgo.NewQuery()
		assert.ErrorIs(t, err, hybridgo.ErrEmptyQuery)
	})

	t.Run("TooMany", func(t *testing.T) {
		subs := make([]hybridgo.SubQuery, hybridgo.MaxSubQueries+1)
		for i := range subs {
			subs[i] = staticSubQuery(nil)
		}
		_, err := hybridgo.NewQuery(subs...)

		var tooMany *hybridgo.ErrTooManySubQueries
		require.ErrorAs(t, err, &tooMany)
		assert.Equal(t, hybridgo.MaxSubQueries+1, tooMany.Count)
		assert.Equal(t, hybridgo.MaxSubQueries, tooMany.Limit)
	})

	t.Run("Valid", func(t *testing.T) {
		q, err := hybridgo.NewQuery(staticSubQuery(nil), staticSubQuery(nil))
		require.NoError(t, err)
		assert.Equal(t, 2, q.NumSubQueries())
	})
}

func TestSearchTopScore(t *testing.T) {
	segments := []*hybridgo.Segment{
		{DocBase: 0, MaxDoc: 100},
		{DocBase: 100, MaxDoc: 50},
	}
	query, err := hybridgo.NewQuery(
		staticSubQuery(map[int]map[int]float32{
			0:   {1: 0.9},
			100: {2: 0.4},
		}),
		staticSubQuery(map[int]map[int]float32{
			0: {3: 0.5, 1: 0.2},
		}),
	)
	require.NoError(t, err)

	s := hybridgo.New()
	results, err := s.Search(context.Background(), segments, query, hybridgo.CollectorConfig{NumHits: 3})
	require.NoError(t, err)

	require.Len(t, results.TopDocs, 2)
	assert.Equal(t, []model.ScoreDoc{
		{Doc: 1, Score: 0.9, ShardIndex: -1},
		{Doc: 102, Score: 0.4, ShardIndex: -1},
	}, results.TopDocs[0].ScoreDocs)
	assert.Equal(t, []model.ScoreDoc{
		{Doc: 3, Score: 0.5, ShardIndex: -1},
		{Doc: 1, Score: 0.2, ShardIndex: -1},
	}, results.TopDocs[1].ScoreDocs)

	// Doc 1 matched both sub-queries but is one distinct document.
	assert.Equal(t, int64(3), results.TotalHits)
	assert.Equal(t, float32(0.9), results.MaxScore)
	assert.Empty(t, results.TopFieldDocs)
	assert.Empty(t, results.CollapseTopDocs)
}

func TestSearchLiveDocs(t *testing.T) {
	segments := []*hybridgo.Segment{
		{DocBase: 0, MaxDoc: 100, LiveDocs: testutil.NewSliceBits(3)},
	}
	query, err := hybridgo.NewQuery(staticSubQuery(map[int]map[int]float32{
		0: {1: 0.9, 3: 0.5},
	}))
	require.NoError(t, err)

	results, err := hybridgo.New().Search(context.Background(), segments, query, hybridgo.CollectorConfig{NumHits: 10})
	require.NoError(t, err)
	assert.Equal(t, []model.ScoreDoc{{Doc: 3, Score: 0.5, ShardIndex: -1}}, results.TopDocs[0].ScoreDocs)
}

func TestSearchSorted(t *testing.T) {
	sort := model.NewSort(model.SortField{Field: "price", Type: model.SortInt64})
	segments := []*hybridgo.Segment{
		{
			DocBase: 0,
			MaxDoc:  10,
			Values:  docvalues.NewMapSource().AddInt64("price", []int64{0, 30, 0, 10, 0, 20}, nil),
		},
	}
	query, err := hybridgo.NewQuery(staticSubQuery(map[int]map[int]float32{
		0: {1: 0.9, 3: 0.5, 5: 0.7},
	}))
	require.NoError(t, err)

	results, err := hybridgo.New().Search(context.Background(), segments, query, hybridgo.CollectorConfig{
		NumHits: 2,
		Sort:    &sort,
	})
	require.NoError(t, err)

	require.Len(t, results.TopFieldDocs, 1)
	fd := results.TopFieldDocs[0]
	require.Len(t, fd.FieldDocs, 2)
	assert.Equal(t, 3, fd.FieldDocs[0].Doc)
	assert.Equal(t, []any{int64(10)}, fd.FieldDocs[0].Fields)
	assert.Equal(t, 5, fd.FieldDocs[1].Doc)
	assert.Equal(t, []any{int64(20)}, fd.FieldDocs[1].Fields)

	// The flattened view is always populated.
	require.Len(t, results.TopDocs, 1)
	assert.Equal(t, 3, results.TopDocs[0].ScoreDocs[0].Doc)
}

func TestSearchPagination(t *testing.T) {
	sort := model.NewSort(model.SortField{Field: "price", Type: model.SortInt64})
	segments := []*hybridgo.Segment{
		{
			DocBase: 0,
			MaxDoc:  10,
			Values:  docvalues.NewMapSource().AddInt64("price", []int64{40, 10, 30, 20, 50, 15}, nil),
		},
	}
	query, err := hybridgo.NewQuery(staticSubQuery(map[int]map[int]float32{
		0: {0: 0.1, 1: 0.2, 2: 0.3, 3: 0.4, 4: 0.5, 5: 0.6},
	}))
	require.NoError(t, err)

	s := hybridgo.New()
	page1, err := s.Search(context.Background(), segments, query, hybridgo.CollectorConfig{NumHits: 2, Sort: &sort})
	require.NoError(t, err)
	require.Len(t, page1.TopFieldDocs[0].FieldDocs, 2)

	// Resume behind the last hit via an opaque cursor token.
	token, err := s.CursorFor(page1.TopFieldDocs[0].FieldDocs[1])
	require.NoError(t, err)
	after, err := s.ParseCursor(token)
	require.NoError(t, err)
	assert.Equal(t, page1.TopFieldDocs[0].FieldDocs[1], after)

	page2, err := s.Search(context.Background(), segments, query, hybridgo.CollectorConfig{
		NumHits: 2,
		Sort:    &sort,
		After:   &after,
	})
	require.NoError(t, err)

	var docs []int
	for _, fd := range append(page1.TopFieldDocs[0].FieldDocs, page2.TopFieldDocs[0].FieldDocs...) {
		docs = append(docs, fd.Doc)
	}
	assert.Equal(t, []int{1, 5, 3, 2}, docs)
}

func TestSearchCollapse(t *testing.T) {
	segments := []*hybridgo.Segment{
		{
			DocBase: 0,
			MaxDoc:  10,
			Values:  docvalues.NewMapSource().AddKeyword("brand", []string{"a", "b", "a", "c"}, nil),
		},
	}
	query, err := hybridgo.NewQuery(staticSubQuery(map[int]map[int]float32{
		0: {0: 0.9, 1: 0.8, 2: 0.7, 3: 0.95},
	}))
	require.NoError(t, err)

	results, err := hybridgo.New().Search(context.Background(), segments, query, hybridgo.CollectorConfig{
		NumHits:       2,
		CollapseField: "brand",
		CollapseKind:  model.GroupKeyKeyword,
		DocsPerGroup:  1,
	})
	require.NoError(t, err)

	require.Len(t, results.CollapseTopDocs, 1)
	cd := results.CollapseTopDocs[0]
	assert.Equal(t, "brand", cd.CollapseField)
	require.Len(t, cd.FieldDocs, 2)
	assert.Equal(t, 3, cd.FieldDocs[0].Doc)
	assert.Equal(t, model.KeywordKey("c"), cd.Keys[0])
	assert.Equal(t, 0, cd.FieldDocs[1].Doc)
	assert.Equal(t, model.KeywordKey("a"), cd.Keys[1])
}

func TestSearchValidation(t *testing.T) {
	s := hybridgo.New()
	segments := []*hybridgo.Segment{{MaxDoc: 10}}
	query, err := hybridgo.NewQuery(staticSubQuery(nil))
	require.NoError(t, err)

	t.Run("NilQuery", func(t *testing.T) {
		_, err := s.Search(context.Background(), segments, nil, hybridgo.CollectorConfig{NumHits: 1})
		assert.ErrorIs(t, err, hybridgo.ErrEmptyQuery)
	})

	t.Run("NoSegments", func(t *testing.T) {
		_, err := s.Search(context.Background(), nil, query, hybridgo.CollectorConfig{NumHits: 1})
		assert.ErrorIs(t, err, hybridgo.ErrNoSegments)
	})

	t.Run("ContextCanceled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := s.Search(ctx, segments, query, hybridgo.CollectorConfig{NumHits: 1})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSearchScorerSetupError(t *testing.T) {
	cause := errors.New("index corrupted")
	failing := subQueryFunc(func(context.Context, *hybridgo.Segment) (scorer.Scorer, error) {
		return nil, cause
	})
	query, err := hybridgo.NewQuery(staticSubQuery(nil), failing)
	require.NoError(t, err)

	_, err = hybridgo.New().Search(context.Background(), []*hybridgo.Segment{{DocBase: 7, MaxDoc: 10}}, query, hybridgo.CollectorConfig{NumHits: 1})

	var setupErr *hybridgo.ErrScorerSetup
	require.ErrorAs(t, err, &setupErr)
	assert.Equal(t, 1, setupErr.SubQueryIndex)
	assert.Equal(t, 7, setupErr.DocBase)
	assert.ErrorIs(t, err, cause)
}

func TestSearchAllMatchless(t *testing.T) {
	query, err := hybridgo.NewQuery(staticSubQuery(nil), staticSubQuery(nil))
	require.NoError(t, err)

	results, err := hybridgo.New().Search(context.Background(), []*hybridgo.Segment{{MaxDoc: 10}}, query, hybridgo.CollectorConfig{NumHits: 5})
	require.NoError(t, err)
	assert.Empty(t, results.TopDocs)
	assert.Equal(t, int64(0), results.TotalHits)
}

func TestSearchMetrics(t *testing.T) {
	metrics := &hybridgo.BasicMetricsCollector{}
	s := hybridgo.New(hybridgo.WithMetricsCollector(metrics))

	segments := []*hybridgo.Segment{
		{DocBase: 0, MaxDoc: 10},
		{DocBase: 10, MaxDoc: 10},
	}
	query, err := hybridgo.NewQuery(staticSubQuery(map[int]map[int]float32{
		0:  {1: 0.9},
		10: {2: 0.4},
	}))
	require.NoError(t, err)

	_, err = s.Search(context.Background(), segments, query, hybridgo.CollectorConfig{NumHits: 2})
	require.NoError(t, err)

	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.SearchCount)
	assert.Equal(t, int64(0), stats.SearchErrors)
	assert.Equal(t, int64(2), stats.ScorerSetupCount)
	assert.Equal(t, int64(2), stats.ScorersBuilt)
	assert.Equal(t, int64(2), stats.SegmentCount)
	assert.Equal(t, int64(0), stats.SegmentsTerminated)
}

func TestSearchWithOptions(t *testing.T) {
	s := hybridgo.New(
		hybridgo.WithLogger(hybridgo.NoopLogger()),
		hybridgo.WithCodec(nil),
		hybridgo.WithMaxSetupConcurrency(1),
	)
	query, err := hybridgo.NewQuery(staticSubQuery(map[int]map[int]float32{
		0: {1: 0.9},
	}))
	require.NoError(t, err)

	results, err := s.Search(context.Background(), []*hybridgo.Segment{{MaxDoc: 10}}, query, hybridgo.CollectorConfig{NumHits: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(1), results.TotalHits)
}
