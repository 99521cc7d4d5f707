package collector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hybridgo/collector"
	"github.com/hupe1980/hybridgo/model"
	"github.com/hupe1980/hybridgo/scorer"
)

// collectDoc drives one Collect call with the given per-sub-query scores.
func collectDoc(t *testing.T, leaf scorer.LeafCollector, sub *scorer.SubQueryScores, doc int, scores ...float32) {
	t.Helper()
	copy(sub.Scores(), scores)
	require.NoError(t, leaf.Collect(doc))
}

func newThreshold(t *testing.T, n int) *collector.HitsThresholdChecker {
	t.Helper()
	checker, err := collector.NewHitsThresholdChecker(n)
	require.NoError(t, err)
	return checker
}

func TestNewTopScoreCollector(t *testing.T) {
	_, err := collector.NewTopScoreCollector(0, newThreshold(t, 10))
	assert.ErrorIs(t, err, collector.ErrInvalidNumHits)
}

func TestTopScoreCollectorPerSubQueryRanking(t *testing.T) {
	coll, err := collector.NewTopScoreCollector(1, newThreshold(t, 100))
	require.NoError(t, err)

	sub := scorer.NewSubQueryScores(2)
	leaf, err := coll.ForSegment(&collector.Segment{MaxDoc: 100})
	require.NoError(t, err)
	require.NoError(t, leaf.SetScorer(sub))

	collectDoc(t, leaf, sub, 1, 0.9, 0)
	collectDoc(t, leaf, sub, 3, 0, 0.5)

	results, err := coll.TopDocs()
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, []model.ScoreDoc{{Doc: 1, Score: 0.9, ShardIndex: -1}}, results[0].ScoreDocs)
	assert.Equal(t, int64(1), results[0].TotalHits.Value)
	assert.Equal(t, model.RelationEqualTo, results[0].TotalHits.Relation)

	assert.Equal(t, []model.ScoreDoc{{Doc: 3, Score: 0.5, ShardIndex: -1}}, results[1].ScoreDocs)
	assert.Equal(t, int64(1), results[1].TotalHits.Value)

	assert.Equal(t, int64(2), coll.TotalHits())
	assert.Equal(t, float32(0.9), coll.MaxScore())
}

func TestTopScoreCollectorEviction(t *testing.T) {
	coll, err := collector.NewTopScoreCollector(2, newThreshold(t, 100))
	require.NoError(t, err)

	sub := scorer.NewSubQueryScores(1)
	leaf, err := coll.ForSegment(&collector.Segment{MaxDoc: 100})
	require.NoError(t, err)
	require.NoError(t, leaf.SetScorer(sub))

	collectDoc(t, leaf, sub, 1, 0.3)
	collectDoc(t, leaf, sub, 2, 0.9)
	collectDoc(t, leaf, sub, 3, 0.5)
	// Same score as the kept doc 3 but a higher doc id: not competitive.
	collectDoc(t, leaf, sub, 4, 0.5)

	results, err := coll.TopDocs()
	require.NoError(t, err)
	assert.Equal(t, []model.ScoreDoc{
		{Doc: 2, Score: 0.9, ShardIndex: -1},
		{Doc: 3, Score: 0.5, ShardIndex: -1},
	}, results[0].ScoreDocs)
	assert.Equal(t, int64(4), results[0].TotalHits.Value)

	// Evictions raised this sub-query's competitive floor.
	assert.Equal(t, float32(0.5), sub.MinScore(0))
}

func TestTopScoreCollectorSkipsNonMatches(t *testing.T) {
	coll, err := collector.NewTopScoreCollector(3, newThreshold(t, 100))
	require.NoError(t, err)

	sub := scorer.NewSubQueryScores(2)
	leaf, err := coll.ForSegment(&collector.Segment{MaxDoc: 100})
	require.NoError(t, err)
	require.NoError(t, leaf.SetScorer(sub))

	collectDoc(t, leaf, sub, 1, 0.9, 0)
	collectDoc(t, leaf, sub, 2, 0, 0.4)

	results, err := coll.TopDocs()
	require.NoError(t, err)
	assert.Equal(t, int64(1), results[0].TotalHits.Value)
	assert.Equal(t, int64(1), results[1].TotalHits.Value)
	assert.Len(t, results[0].ScoreDocs, 1)
	assert.Len(t, results[1].ScoreDocs, 1)
}

func TestTopScoreCollectorThresholdRelation(t *testing.T) {
	coll, err := collector.NewTopScoreCollector(10, newThreshold(t, 2))
	require.NoError(t, err)

	sub := scorer.NewSubQueryScores(1)
	leaf, err := coll.ForSegment(&collector.Segment{MaxDoc: 100})
	require.NoError(t, err)
	require.NoError(t, leaf.SetScorer(sub))

	collectDoc(t, leaf, sub, 1, 0.9)
	collectDoc(t, leaf, sub, 2, 0.8)
	collectDoc(t, leaf, sub, 3, 0.7)

	results, err := coll.TopDocs()
	require.NoError(t, err)
	assert.Equal(t, model.RelationGreaterThanOrEqualTo, results[0].TotalHits.Relation)
	assert.Len(t, results[0].ScoreDocs, 3)
}

func TestTopScoreCollectorMultipleSegments(t *testing.T) {
	coll, err := collector.NewTopScoreCollector(4, newThreshold(t, 100))
	require.NoError(t, err)

	sub := scorer.NewSubQueryScores(1)
	leaf, err := coll.ForSegment(&collector.Segment{DocBase: 0, MaxDoc: 100})
	require.NoError(t, err)
	require.NoError(t, leaf.SetScorer(sub))
	collectDoc(t, leaf, sub, 1, 0.9)

	leaf, err = coll.ForSegment(&collector.Segment{DocBase: 100, MaxDoc: 50})
	require.NoError(t, err)
	require.NoError(t, leaf.SetScorer(sub))
	collectDoc(t, leaf, sub, 2, 0.4)

	results, err := coll.TopDocs()
	require.NoError(t, err)
	assert.Equal(t, []model.ScoreDoc{
		{Doc: 1, Score: 0.9, ShardIndex: -1},
		{Doc: 102, Score: 0.4, ShardIndex: -1},
	}, results[0].ScoreDocs)
}

func TestTopScoreCollectorIdempotentTopDocs(t *testing.T) {
	coll, err := collector.NewTopScoreCollector(2, newThreshold(t, 100))
	require.NoError(t, err)

	sub := scorer.NewSubQueryScores(1)
	leaf, err := coll.ForSegment(&collector.Segment{MaxDoc: 100})
	require.NoError(t, err)
	require.NoError(t, leaf.SetScorer(sub))
	collectDoc(t, leaf, sub, 1, 0.9)

	first, err := coll.TopDocs()
	require.NoError(t, err)
	second, err := coll.TopDocs()
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Len(t, second[0].ScoreDocs, 1)
}
