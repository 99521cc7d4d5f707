// Package merge combines per-shard per-sub-query top-K lists into global
// per-sub-query lists for result reduction. Inputs keep their internal
// order; merging never re-scores, it only interleaves and caps.
package merge

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"github.com/hupe1980/hybridgo/model"
)

// ErrSubQueryCountMismatch is returned when shards disagree on the number
// of sub-queries.
var ErrSubQueryCountMismatch = errors.New("shards report different sub-query counts")

// ErrInvalidNumHits is returned for a non-positive merged result size.
var ErrInvalidNumHits = errors.New("number of hits must be positive")

// TopDocs merges score-ordered shard results. perShard[s][i] holds shard
// s's hits for sub-query i; hits get their shard index stamped. The merged
// list per sub-query is descending by score, ties broken by shard then doc
// id, capped at numHits.
func TopDocs(perShard [][]model.TopDocs, numHits int) ([]model.TopDocs, error) {
	numSubQueries, err := subQueryCount(len(perShard), func(s int) int { return len(perShard[s]) }, numHits)
	if err != nil {
		return nil, err
	}

	merged := make([]model.TopDocs, numSubQueries)
	for i := 0; i < numSubQueries; i++ {
		var docs []model.ScoreDoc
		total := model.TotalHits{Relation: model.RelationEqualTo}
		for s, shard := range perShard {
			if len(shard) == 0 {
				continue
			}
			td := shard[i]
			total.Value += td.TotalHits.Value
			if td.TotalHits.Relation == model.RelationGreaterThanOrEqualTo {
				total.Relation = model.RelationGreaterThanOrEqualTo
			}
			for _, d := range td.ScoreDocs {
				d.ShardIndex = s
				docs = append(docs, d)
			}
		}
		slices.SortStableFunc(docs, compareScoreDocs)
		if len(docs) > numHits {
			docs = docs[:numHits]
		}
		merged[i] = model.TopDocs{TotalHits: total, ScoreDocs: docs}
	}
	return merged, nil
}

// TopFieldDocs merges sorted shard results under the sort the shards
// collected with. The merged list per sub-query follows the sort, ties
// broken by shard then doc id, capped at numHits.
func TopFieldDocs(perShard [][]model.TopFieldDocs, sort model.Sort, numHits int) ([]model.TopFieldDocs, error) {
	numSubQueries, err := subQueryCount(len(perShard), func(s int) int { return len(perShard[s]) }, numHits)
	if err != nil {
		return nil, err
	}

	merged := make([]model.TopFieldDocs, numSubQueries)
	for i := 0; i < numSubQueries; i++ {
		var docs []model.FieldDoc
		total := model.TotalHits{Relation: model.RelationEqualTo}
		for s, shard := range perShard {
			if len(shard) == 0 {
				continue
			}
			td := shard[i]
			total.Value += td.TotalHits.Value
			if td.TotalHits.Relation == model.RelationGreaterThanOrEqualTo {
				total.Relation = model.RelationGreaterThanOrEqualTo
			}
			for _, d := range td.FieldDocs {
				d.ShardIndex = s
				docs = append(docs, d)
			}
		}
		slices.SortStableFunc(docs, func(a, b model.FieldDoc) int {
			if v := compareFieldValues(sort, a.Fields, b.Fields); v != 0 {
				return v
			}
			if v := cmp.Compare(a.ShardIndex, b.ShardIndex); v != 0 {
				return v
			}
			return cmp.Compare(a.Doc, b.Doc)
		})
		if len(docs) > numHits {
			docs = docs[:numHits]
		}
		merged[i] = model.TopFieldDocs{TotalHits: total, FieldDocs: docs, Fields: sort.Fields}
	}
	return merged, nil
}

func subQueryCount(numShards int, lenOf func(int) int, numHits int) (int, error) {
	if numHits <= 0 {
		return 0, ErrInvalidNumHits
	}
	numSubQueries := 0
	for s := 0; s < numShards; s++ {
		n := lenOf(s)
		if n == 0 {
			// Shard had no hits at all; nothing to disagree about.
			continue
		}
		if numSubQueries == 0 {
			numSubQueries = n
			continue
		}
		if n != numSubQueries {
			return 0, fmt.Errorf("%w: %d vs %d", ErrSubQueryCountMismatch, numSubQueries, n)
		}
	}
	return numSubQueries, nil
}

func compareScoreDocs(a, b model.ScoreDoc) int {
	if v := cmp.Compare(b.Score, a.Score); v != 0 {
		return v
	}
	if v := cmp.Compare(a.ShardIndex, b.ShardIndex); v != 0 {
		return v
	}
	return cmp.Compare(a.Doc, b.Doc)
}

// compareFieldValues orders two hits' materialized sort keys field by
// field, honoring each field's direction.
func compareFieldValues(sort model.Sort, a, b []any) int {
	for k, f := range sort.Fields {
		if k >= len(a) || k >= len(b) {
			return 0
		}
		v := compareSortValue(f, a[k], b[k])
		if f.Reverse {
			v = -v
		}
		if v != 0 {
			return v
		}
	}
	return 0
}

func compareSortValue(f model.SortField, a, b any) int {
	switch f.Type {
	case model.SortScore:
		return cmp.Compare(toFloat(b), toFloat(a))
	case model.SortDoc:
		return cmp.Compare(toInt(a), toInt(b))
	case model.SortInt64:
		return cmp.Compare(toInt(a), toInt(b))
	case model.SortFloat64:
		return cmp.Compare(toFloat(a), toFloat(b))
	case model.SortKeyword:
		as, _ := a.(string)
		bs, _ := b.(string)
		return cmp.Compare(as, bs)
	default:
		return 0
	}
}

// Shard boundaries may have round-tripped through a cursor token, so
// numeric sort values arrive in a handful of widths.
func toFloat(v any) float64 {
	switch v := v.(type) {
	case float32:
		return float64(v)
	case float64:
		return v
	case int:
		return float64(v)
	case int64:
		return float64(v)
	default:
		return 0
	}
}

func toInt(v any) int64 {
	switch v := v.(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	default:
		return 0
	}
}
