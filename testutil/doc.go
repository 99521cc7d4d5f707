// Package testutil provides testing utilities for hybridgo.
//
// This package is intended for use in tests and benchmarks only.
// It provides deterministic random posting lists, fake scorers with
// optional two-phase and max-score capabilities, and small fixtures for
// driving collectors by hand.
//
// # Fake Scorers
//
//	s := testutil.NewFakeScorer([]int{1, 4, 9}, []float32{0.9, 0.3, 0.7})
//	tp := testutil.NewFakeTwoPhaseScorer(docs, scores, verifiedDocs, 2.0)
//
// # Random Posting Lists
//
//	rng := testutil.NewRNG(seed)
//	docs, scores := rng.Postings(10_000, 0.05, 1.0)
package testutil
