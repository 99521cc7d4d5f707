package collector

import "github.com/hupe1980/hybridgo/model"

// DefaultHitsThreshold is the number of hits after which collectors may
// report lower-bound counts and, where the sort allows, stop collecting.
const DefaultHitsThreshold = 10_000

// Config selects and sizes the collector for one shard-level search.
type Config struct {
	// NumHits is the result size per sub-query. For collapsing it is the
	// number of groups kept per sub-query.
	NumHits int

	// HitsThreshold caps accurate hit counting. Zero or less selects
	// DefaultHitsThreshold.
	HitsThreshold int

	// Sort orders results by field values instead of score. Nil selects
	// plain top-score collection. For collapsing, nil falls back to a
	// score sort.
	Sort *model.Sort

	// After resumes a sorted search behind a previous page's last hit. It
	// requires Sort and must carry one value per sort field.
	After *model.FieldDoc

	// CollapseField groups results by a doc-values field. Empty disables
	// collapsing.
	CollapseField string

	// CollapseKind is the collapse field's key representation.
	CollapseKind model.GroupKeyKind

	// DocsPerGroup bounds hits kept inside each group. Zero or less falls
	// back to NumHits.
	DocsPerGroup int
}

// New chooses exactly one collector for the config: collapsing when a
// collapse field is set, plain top-score when no sort is given, sorted
// collection otherwise, paginated when an after-cursor is present.
func New(cfg Config) (SearchCollector, error) {
	threshold := cfg.HitsThreshold
	if threshold <= 0 {
		threshold = DefaultHitsThreshold
	}
	checker, err := NewHitsThresholdChecker(threshold)
	if err != nil {
		return nil, err
	}

	if cfg.CollapseField != "" {
		sort := model.NewSort(model.SortField{Type: model.SortScore})
		if cfg.Sort != nil {
			sort = *cfg.Sort
		}
		return NewCollapsingCollector(cfg.CollapseField, cfg.CollapseKind, sort, cfg.NumHits, checker, cfg.DocsPerGroup)
	}
	if cfg.Sort == nil {
		return NewTopScoreCollector(cfg.NumHits, checker)
	}
	if cfg.After == nil {
		return NewSimpleFieldCollector(cfg.NumHits, checker, *cfg.Sort)
	}
	return NewPagingFieldCollector(cfg.NumHits, checker, *cfg.Sort, *cfg.After)
}
