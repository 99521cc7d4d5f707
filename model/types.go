package model

import (
	"fmt"
	"math"
)

// NoMoreDocs is the sentinel document id returned by an exhausted iterator.
// It compares greater than every valid document id.
const NoMoreDocs = math.MaxInt32

// Relation qualifies a TotalHits value.
type Relation int

const (
	// RelationEqualTo means the hit count is exact.
	RelationEqualTo Relation = iota
	// RelationGreaterThanOrEqualTo means collection stopped early and the
	// hit count is a lower bound.
	RelationGreaterThanOrEqualTo
)

// String returns a string representation of the relation.
func (r Relation) String() string {
	if r == RelationGreaterThanOrEqualTo {
		return ">="
	}
	return "=="
}

// TotalHits is the number of documents a sub-query matched on a shard,
// qualified by whether collection terminated before the count was exact.
type TotalHits struct {
	Value    int64
	Relation Relation
}

// ScoreDoc is one hit: a shard-global document id and the score one
// sub-query assigned to it.
type ScoreDoc struct {
	Doc   int
	Score float32
	// ShardIndex is set by merge.TopDocs when combining shard results;
	// it is -1 until then.
	ShardIndex int
}

// String returns a string representation of the hit.
func (d ScoreDoc) String() string {
	return fmt.Sprintf("doc=%d score=%g shard=%d", d.Doc, d.Score, d.ShardIndex)
}

// FieldDoc is a hit extended with the values of the sort fields it was
// ranked by, in sort-field order.
type FieldDoc struct {
	ScoreDoc
	Fields []any
}

// TopDocs is one sub-query's top hits on a shard, sorted best-first.
type TopDocs struct {
	TotalHits TotalHits
	ScoreDocs []ScoreDoc
}

// TopFieldDocs is one sub-query's top hits under a field sort.
type TopFieldDocs struct {
	TotalHits TotalHits
	FieldDocs []FieldDoc
	// Fields echoes the sort the hits are ordered by.
	Fields []SortField
}

// CollapseTopDocs is one sub-query's top hits grouped by a collapse field.
// Keys[i] is the group key of FieldDocs[i].
type CollapseTopDocs struct {
	TopFieldDocs
	CollapseField string
	Keys          []GroupKey
}

// GroupKeyKind discriminates the representation of a collapse group key.
type GroupKeyKind int

const (
	// GroupKeyNumeric is an int64-valued group key.
	GroupKeyNumeric GroupKeyKind = iota
	// GroupKeyKeyword is a string-valued group key.
	GroupKeyKeyword
)

// GroupKey is the value of a collapse field for one group. It is a small
// tagged union over the numeric and keyword representations; copies are
// value copies, so keys are safe to store.
type GroupKey struct {
	Kind GroupKeyKind
	Num  int64
	Term string
}

// NumericKey returns a numeric group key.
func NumericKey(v int64) GroupKey { return GroupKey{Kind: GroupKeyNumeric, Num: v} }

// KeywordKey returns a keyword group key.
func KeywordKey(v string) GroupKey { return GroupKey{Kind: GroupKeyKeyword, Term: v} }

// String returns a string representation of the key.
func (k GroupKey) String() string {
	if k.Kind == GroupKeyKeyword {
		return k.Term
	}
	return fmt.Sprintf("%d", k.Num)
}
