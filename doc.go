// Package hybridgo scores and collects hybrid queries: several sub-queries
// (lexical, vector, sparse, or anything implementing the scorer contract)
// executed side by side over one inverted-index shard, with results kept
// per sub-query so a downstream normalizer can combine them.
//
// Core pieces:
//
//   - Disjunctive scoring over all sub-queries with a document-keyed
//     priority queue, two-phase verification, and max-score pruning
//   - Windowed bulk scoring: 4096-doc windows filled per sub-query into a
//     match bitset and a score matrix, flushed doc-at-a-time to collectors
//   - Collector family: top-score, field sort, paginated field sort
//     (search_after), and field collapsing, each keeping one bounded queue
//     per sub-query
//   - Per-shard result merging for the reduce side
//
// # Quick Start
//
// Build a query from sub-queries and search a shard's segments:
//
//	searcher := hybridgo.New(
//	    hybridgo.WithLogger(hybridgo.NewTextLogger(slog.LevelInfo)),
//	)
//	query, err := hybridgo.NewQuery(lexicalSub, vectorSub)
//	if err != nil {
//	    return err
//	}
//	results, err := searcher.Search(ctx, segments, query, hybridgo.CollectorConfig{
//	    NumHits: 10,
//	})
//	if err != nil {
//	    return err
//	}
//	for i, topDocs := range results.TopDocs {
//	    // topDocs holds sub-query i's best hits, descending by score.
//	    _ = topDocs
//	}
//
// Sorted collection with pagination:
//
//	sort := model.NewSort(model.SortField{Field: "price", Type: model.SortInt64})
//	page1, err := searcher.Search(ctx, segments, query, hybridgo.CollectorConfig{
//	    NumHits: 10,
//	    Sort:    &sort,
//	})
//	// ... mint a cursor from the last hit and resume behind it:
//	token, err := searcher.CursorFor(page1.TopFieldDocs[0].FieldDocs[9])
//	after, err := searcher.ParseCursor(token)
//	page2, err := searcher.Search(ctx, segments, query, hybridgo.CollectorConfig{
//	    NumHits: 10,
//	    Sort:    &sort,
//	    After:   &after,
//	})
//
// # Score Semantics
//
// A sub-query score of exactly 0 means "did not match this document"
// throughout the module. Sub-queries that can legitimately score a match
// as 0 must bias their scores away from it.
//
// # Concurrency
//
// Scoring and collection run single-threaded per segment; the only
// internal parallelism is sub-scorer construction, bounded by
// WithMaxSetupConcurrency. A Searcher itself is stateless and safe for
// concurrent use, but each Search call builds its own collector.
package hybridgo
