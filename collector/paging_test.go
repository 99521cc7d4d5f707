package collector_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/hybridgo/collector"
	"github.com/hupe1980/hybridgo/docvalues"
	"github.com/hupe1980/hybridgo/model"
	"github.com/hupe1980/hybridgo/scorer"
)

func TestNewPagingFieldCollector(t *testing.T) {
	after := model.FieldDoc{
		ScoreDoc: model.ScoreDoc{Doc: 10},
		Fields:   []any{int64(20), "extra"},
	}
	_, err := collector.NewPagingFieldCollector(2, newThreshold(t, 100), priceSort, after)
	assert.Error(t, err)
}

func TestPagingFieldCollectorSkipsPreviousPage(t *testing.T) {
	after := model.FieldDoc{
		ScoreDoc: model.ScoreDoc{Doc: 10},
		Fields:   []any{int64(20)},
	}
	coll, err := collector.NewPagingFieldCollector(2, newThreshold(t, 100), priceSort, after)
	require.NoError(t, err)

	prices := make([]int64, 20)
	prices[5] = 20  // ties the cursor on a lower doc: previous page
	prices[11] = 20 // ties the cursor on a higher doc: this page
	prices[12] = 10 // sorts before the cursor: previous page
	prices[13] = 30
	prices[14] = 25

	seg := &collector.Segment{
		MaxDoc: 20,
		Values: docvalues.NewMapSource().AddInt64("price", prices, nil),
	}
	sub := scorer.NewSubQueryScores(1)
	leaf, err := coll.ForSegment(seg)
	require.NoError(t, err)
	require.NoError(t, leaf.SetScorer(sub))

	for _, doc := range []int{5, 11, 12, 13, 14} {
		collectDoc(t, leaf, sub, doc, 0.5)
	}

	results, err := coll.TopFieldDocs()
	require.NoError(t, err)
	fd := results[0]
	require.Len(t, fd.FieldDocs, 2)
	assert.Equal(t, 11, fd.FieldDocs[0].Doc)
	assert.Equal(t, []any{int64(20)}, fd.FieldDocs[0].Fields)
	assert.Equal(t, 14, fd.FieldDocs[1].Doc)
	assert.Equal(t, []any{int64(25)}, fd.FieldDocs[1].Fields)

	// Only queued page hits count.
	assert.Equal(t, int64(2), fd.TotalHits.Value)
	// Every visited doc counts for the shard.
	assert.Equal(t, int64(5), coll.TotalHits())
}

func TestPagingFieldCollectorCursorDocIsSegmentLocal(t *testing.T) {
	// The cursor points at global doc 15 inside a segment based at 10.
	after := model.FieldDoc{
		ScoreDoc: model.ScoreDoc{Doc: 15},
		Fields:   []any{int64(20)},
	}
	coll, err := collector.NewPagingFieldCollector(2, newThreshold(t, 100), priceSort, after)
	require.NoError(t, err)

	seg := &collector.Segment{
		DocBase: 10,
		MaxDoc:  10,
		Values:  docvalues.NewMapSource().AddInt64("price", []int64{20, 0, 0, 0, 0, 20, 20}, nil),
	}
	sub := scorer.NewSubQueryScores(1)
	leaf, err := coll.ForSegment(seg)
	require.NoError(t, err)
	require.NoError(t, leaf.SetScorer(sub))

	collectDoc(t, leaf, sub, 0, 0.5) // global 10 <= 15: previous page
	collectDoc(t, leaf, sub, 5, 0.5) // global 15 <= 15: previous page
	collectDoc(t, leaf, sub, 6, 0.5) // global 16: this page

	results, err := coll.TopFieldDocs()
	require.NoError(t, err)
	fd := results[0]
	require.Len(t, fd.FieldDocs, 1)
	assert.Equal(t, 16, fd.FieldDocs[0].Doc)
}

func TestPagingContinuesSimplePage(t *testing.T) {
	prices := []int64{40, 10, 30, 20, 50, 15}
	newSegment := func() *collector.Segment {
		return &collector.Segment{
			MaxDoc: 10,
			Values: docvalues.NewMapSource().AddInt64("price", prices, nil),
		}
	}
	collectAll := func(coll collector.SearchCollector) {
		sub := scorer.NewSubQueryScores(1)
		leaf, err := coll.ForSegment(newSegment())
		require.NoError(t, err)
		require.NoError(t, leaf.SetScorer(sub))
		for doc := range prices {
			collectDoc(t, leaf, sub, doc, 0.5)
		}
	}

	first, err := collector.NewSimpleFieldCollector(2, newThreshold(t, 100), priceSort)
	require.NoError(t, err)
	collectAll(first)
	page1, err := first.TopFieldDocs()
	require.NoError(t, err)
	require.Len(t, page1[0].FieldDocs, 2)

	second, err := collector.NewPagingFieldCollector(2, newThreshold(t, 100), priceSort, page1[0].FieldDocs[1])
	require.NoError(t, err)
	collectAll(second)
	page2, err := second.TopFieldDocs()
	require.NoError(t, err)

	var docs []int
	for _, fd := range append(page1[0].FieldDocs, page2[0].FieldDocs...) {
		docs = append(docs, fd.Doc)
	}
	// Two disjoint pages in global sort order: 10, 15, 20, 30.
	assert.Equal(t, []int{1, 5, 3, 2}, docs)
}
