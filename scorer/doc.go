// Package scorer implements the hybrid multi-query scoring core: a
// disjunction over independently iterating sub-query scorers that exposes,
// for every matching document, the full vector of per-sub-query scores.
//
// The central types are HybridScorer, which merges N sub-scorers into one
// ascending document cursor, and BulkScorer, which drives a HybridScorer
// over fixed-size document windows to amortize per-document dispatch.
//
// # Score conventions
//
// A per-sub-query score of exactly 0.0 means "this sub-query did not match
// the document". Scoring functions that can legitimately produce 0.0 for a
// real match are not supported; such hits are indistinguishable from
// non-matches and are dropped by every consumer.
package scorer
