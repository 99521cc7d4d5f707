// Package collector implements the result-shaping side of hybrid search:
// consumers of the per-document sub-query score vector that maintain one
// bounded result queue per sub-query and produce per-sub-query top-K lists.
//
// Four policies are provided: unsorted top score, field sort, paginated
// field sort (search-after), and field collapsing. New selects exactly one
// of them from a Config.
//
// Collectors are not safe for concurrent use. One collector serves one
// shard-level search; segments must be collected sequentially, or each
// parallel segment must get its own collector merged afterwards.
package collector
