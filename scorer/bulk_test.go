package scorer_test

import (
	"errors"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hybridgo/model"
	"github.com/hupe1980/hybridgo/scorer"
	"github.com/hupe1980/hybridgo/testutil"
)

// captureCollector records every delivered doc with a copy of its score
// vector.
type captureCollector struct {
	subScores *scorer.SubQueryScores
	docs      []int
	vectors   [][]float32
}

func (c *captureCollector) SetScorer(s scorer.Scorable) error {
	sub, ok := scorer.UnwrapSubQueryScores(s)
	if !ok {
		return errors.New("score vector not exposed")
	}
	c.subScores = sub
	return nil
}

func (c *captureCollector) Collect(doc int) error {
	c.docs = append(c.docs, doc)
	c.vectors = append(c.vectors, slices.Clone(c.subScores.Scores()))
	return nil
}

func TestNewBulkScorer(t *testing.T) {
	_, err := scorer.NewBulkScorer([]scorer.Scorer{nil, nil}, true, 100)
	assert.ErrorIs(t, err, scorer.ErrNoSubScorers)
}

func TestBulkScorerScoreVectors(t *testing.T) {
	bulk, err := scorer.NewBulkScorer([]scorer.Scorer{
		testutil.NewFakeScorer([]int{1, 7}, []float32{0.9, 0.4}),
		testutil.NewFakeScorer([]int{3, 7}, []float32{0.5, 0.6}),
	}, true, 100)
	require.NoError(t, err)

	coll := &captureCollector{}
	next, err := bulk.Score(coll, nil, 0, 100)
	require.NoError(t, err)
	assert.Equal(t, model.NoMoreDocs, next)

	assert.Equal(t, []int{1, 3, 7}, coll.docs)
	assert.Equal(t, [][]float32{
		{0.9, 0},
		{0, 0.5},
		{0.4, 0.6},
	}, coll.vectors)
}

func TestBulkScorerCrossWindow(t *testing.T) {
	// Documents spread over multiple scoring windows.
	bulk, err := scorer.NewBulkScorer([]scorer.Scorer{
		testutil.NewFakeScorer([]int{100, 5000, 9000}, []float32{0.1, 0.2, 0.3}),
		testutil.NewFakeScorer([]int{5000}, []float32{0.8}),
	}, true, 10_000)
	require.NoError(t, err)

	coll := &captureCollector{}
	next, err := bulk.Score(coll, nil, 0, 10_000)
	require.NoError(t, err)
	assert.Equal(t, model.NoMoreDocs, next)

	assert.Equal(t, []int{100, 5000, 9000}, coll.docs)
	assert.Equal(t, [][]float32{
		{0.1, 0},
		{0.2, 0.8},
		{0.3, 0},
	}, coll.vectors)
}

func TestBulkScorerLiveDocs(t *testing.T) {
	bulk, err := scorer.NewBulkScorer([]scorer.Scorer{
		testutil.NewFakeScorer([]int{1, 3, 5}, []float32{0.1, 0.2, 0.3}),
	}, true, 100)
	require.NoError(t, err)

	coll := &captureCollector{}
	_, err = bulk.Score(coll, testutil.NewSliceBits(3, 5), 0, 100)
	require.NoError(t, err)

	assert.Equal(t, []int{3, 5}, coll.docs)
}

func TestBulkScorerRange(t *testing.T) {
	bulk, err := scorer.NewBulkScorer([]scorer.Scorer{
		testutil.NewFakeScorer([]int{1, 3, 7}, []float32{0.1, 0.2, 0.3}),
	}, true, 100)
	require.NoError(t, err)

	coll := &captureCollector{}
	next, err := bulk.Score(coll, nil, 0, 4)
	require.NoError(t, err)
	assert.Equal(t, 7, next)
	assert.Equal(t, []int{1, 3}, coll.docs)

	next, err = bulk.Score(coll, nil, 4, 100)
	require.NoError(t, err)
	assert.Equal(t, model.NoMoreDocs, next)
	assert.Equal(t, []int{1, 3, 7}, coll.docs)
}

func TestBulkScorerCompetitiveFloor(t *testing.T) {
	bulk, err := scorer.NewBulkScorer([]scorer.Scorer{
		testutil.NewFakeScorer([]int{1, 2}, []float32{0.4, 0.8}),
	}, true, 100)
	require.NoError(t, err)
	bulk.SubQueryScores().RaiseMinScore(0, 0.5)

	coll := &captureCollector{}
	_, err = bulk.Score(coll, nil, 0, 100)
	require.NoError(t, err)

	assert.Equal(t, []int{2}, coll.docs)
	assert.Equal(t, [][]float32{{0.8}}, coll.vectors)
}

func TestBulkScorerTwoPhaseVerification(t *testing.T) {
	twoPhase := testutil.NewFakeTwoPhaseScorer(
		[]int{2, 4, 6},
		[]float32{0.3, 0.8, 0.2},
		[]int{4, 6},
		1.0,
	)
	bulk, err := scorer.NewBulkScorer([]scorer.Scorer{twoPhase}, true, 100)
	require.NoError(t, err)

	coll := &captureCollector{}
	_, err = bulk.Score(coll, nil, 0, 100)
	require.NoError(t, err)

	assert.Equal(t, []int{4, 6}, coll.docs)
	assert.Equal(t, 3, twoPhase.MatchCalls)
}

func TestBulkScorerWithoutScores(t *testing.T) {
	bulk, err := scorer.NewBulkScorer([]scorer.Scorer{
		testutil.NewFakeScorer([]int{1, 3}, []float32{0.1, 0.2}),
	}, false, 100)
	require.NoError(t, err)

	coll := &captureCollector{}
	_, err = bulk.Score(coll, nil, 0, 100)
	require.NoError(t, err)

	assert.Equal(t, []int{1, 3}, coll.docs)
	assert.Equal(t, [][]float32{{0}, {0}}, coll.vectors)
}

func TestBulkScorerNilEntryKeepsSlot(t *testing.T) {
	bulk, err := scorer.NewBulkScorer([]scorer.Scorer{
		nil,
		testutil.NewFakeScorer([]int{2}, []float32{0.5}),
	}, true, 100)
	require.NoError(t, err)

	coll := &captureCollector{}
	_, err = bulk.Score(coll, nil, 0, 100)
	require.NoError(t, err)

	assert.Equal(t, []int{2}, coll.docs)
	assert.Equal(t, [][]float32{{0, 0.5}}, coll.vectors)
}

func TestBulkScorerRandomizedUnion(t *testing.T) {
	rng := testutil.NewRNG(42)
	const maxDoc = 3 * scorer.WindowSize

	docsA, scoresA := rng.Postings(maxDoc, 0.01, 1.0)
	docsB, scoresB := rng.Postings(maxDoc, 0.01, 1.0)

	bulk, err := scorer.NewBulkScorer([]scorer.Scorer{
		testutil.NewFakeScorer(docsA, scoresA),
		testutil.NewFakeScorer(docsB, scoresB),
	}, true, maxDoc)
	require.NoError(t, err)

	coll := &captureCollector{}
	_, err = bulk.Score(coll, nil, 0, maxDoc)
	require.NoError(t, err)

	want := slices.Clone(docsA)
	want = append(want, docsB...)
	slices.Sort(want)
	want = slices.Compact(want)

	require.Equal(t, want, coll.docs)
	assert.True(t, slices.IsSorted(coll.docs))

	scoreOf := func(docs []int, scores []float32, doc int) float32 {
		if i, ok := slices.BinarySearch(docs, doc); ok {
			return scores[i]
		}
		return 0
	}
	for k, doc := range coll.docs {
		assert.Equal(t, scoreOf(docsA, scoresA, doc), coll.vectors[k][0])
		assert.Equal(t, scoreOf(docsB, scoresB, doc), coll.vectors[k][1])
	}
}
