package hybridgo

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/hupe1980/hybridgo/codec"
	"github.com/hupe1980/hybridgo/collector"
	"github.com/hupe1980/hybridgo/cursor"
	"github.com/hupe1980/hybridgo/docvalues"
	"github.com/hupe1980/hybridgo/model"
	"github.com/hupe1980/hybridgo/scorer"
)

// Segment is one index segment of the searched shard. Segments are scored
// and collected one at a time, in slice order.
type Segment struct {
	// DocBase translates segment-local document ids to shard-global ones.
	DocBase int

	// MaxDoc is the exclusive upper bound of segment-local document ids.
	MaxDoc int

	// LiveDocs marks documents that survive deletes. Nil means all docs
	// are live.
	LiveDocs scorer.Bits

	// Values reads doc-values columns for sorting and collapsing. May be
	// nil for score-only collection.
	Values docvalues.Source

	// IndexSort is the order documents are stored in, if any.
	IndexSort *model.Sort
}

// CollectorConfig selects and sizes the collector for one search; see
// collector.Config.
type CollectorConfig = collector.Config

// Results is the outcome of one shard-level hybrid search: one result list
// per sub-query, in sub-query order, plus shard aggregates.
type Results struct {
	// TopDocs is always populated.
	TopDocs []model.TopDocs

	// TopFieldDocs carries sort-field values; populated for sorted
	// collections.
	TopFieldDocs []model.TopFieldDocs

	// CollapseTopDocs carries group keys; populated for collapsed
	// collections.
	CollapseTopDocs []model.CollapseTopDocs

	// TotalHits is the number of distinct documents visited on the shard.
	TotalHits int64

	// MaxScore is the highest per-sub-query score seen on the shard.
	MaxScore float32
}

// Searcher drives hybrid queries over the segments of one shard.
// A Searcher is stateless between searches and safe for concurrent use.
type Searcher struct {
	codec               codec.Codec
	logger              *Logger
	metrics             MetricsCollector
	maxSetupConcurrency int
}

// New creates a Searcher.
func New(optFns ...Option) *Searcher {
	opts := options{
		codec:               codec.Default,
		logger:              NoopLogger(),
		metricsCollector:    NoopMetricsCollector{},
		maxSetupConcurrency: DefaultMaxSetupConcurrency,
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Searcher{
		codec:               opts.codec,
		logger:              opts.logger,
		metrics:             opts.metricsCollector,
		maxSetupConcurrency: opts.maxSetupConcurrency,
	}
}

// Search runs the hybrid query over the segments and collects results per
// the config. Scoring and collection are single-threaded per segment; only
// scorer construction fans out.
func (s *Searcher) Search(ctx context.Context, segments []*Segment, query *Query, cfg CollectorConfig) (*Results, error) {
	start := time.Now()
	results, err := s.search(ctx, segments, query, cfg)

	numSubQueries := 0
	if query != nil {
		numSubQueries = query.NumSubQueries()
	}
	s.metrics.RecordSearch(numSubQueries, time.Since(start), err)
	var totalHits int64
	if results != nil {
		totalHits = results.TotalHits
	}
	s.logger.LogSearch(ctx, numSubQueries, len(segments), totalHits, time.Since(start), err)
	return results, err
}

func (s *Searcher) search(ctx context.Context, segments []*Segment, query *Query, cfg CollectorConfig) (*Results, error) {
	if query == nil || query.NumSubQueries() == 0 {
		return nil, ErrEmptyQuery
	}
	if len(segments) == 0 {
		return nil, ErrNoSegments
	}

	coll, err := collector.New(cfg)
	if err != nil {
		return nil, err
	}

	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := s.collectSegment(ctx, coll, query, seg); err != nil {
			return nil, err
		}
	}

	return assembleResults(coll)
}

// collectSegment builds the segment's sub-scorers, then drives one bulk
// scoring pass through the collector.
func (s *Searcher) collectSegment(ctx context.Context, coll collector.SearchCollector, query *Query, seg *Segment) error {
	setupStart := time.Now()
	scorers, err := s.buildScorers(ctx, query, seg)
	built := 0
	for _, sc := range scorers {
		if sc != nil {
			built++
		}
	}
	s.metrics.RecordScorerSetup(built, time.Since(setupStart), err)
	if err != nil {
		return err
	}
	s.logger.LogScorerSetup(ctx, seg.DocBase, built, len(scorers)-built, time.Since(setupStart))
	if built == 0 {
		// No sub-query matches anything here.
		return nil
	}

	bulk, err := scorer.NewBulkScorer(scorers, true, seg.MaxDoc)
	if err != nil {
		return translateError(err)
	}
	leaf, err := coll.ForSegment(&collector.Segment{
		DocBase:   seg.DocBase,
		MaxDoc:    seg.MaxDoc,
		Values:    seg.Values,
		IndexSort: seg.IndexSort,
	})
	if err != nil {
		return err
	}

	segStart := time.Now()
	_, err = bulk.Score(leaf, seg.LiveDocs, 0, seg.MaxDoc)
	terminated := errors.Is(err, collector.ErrCollectionTerminated)
	if err != nil && !terminated {
		return err
	}
	s.metrics.RecordSegment(time.Since(segStart), terminated)
	s.logger.LogSegment(ctx, seg.DocBase, seg.MaxDoc, terminated)
	return nil
}

// buildScorers constructs one scorer per sub-query, in parallel up to the
// configured bound. A nil scorer keeps its index: the sub-query matches
// nothing in this segment but keeps its result slot.
func (s *Searcher) buildScorers(ctx context.Context, query *Query, seg *Segment) ([]scorer.Scorer, error) {
	subQueries := query.SubQueries()
	scorers := make([]scorer.Scorer, len(subQueries))
	sem := semaphore.NewWeighted(int64(s.maxSetupConcurrency))
	g, gctx := errgroup.WithContext(ctx)
	for i, sub := range subQueries {
		i, sub := i, sub
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			sc, err := sub.ScorerFor(gctx, seg)
			if err != nil {
				return &ErrScorerSetup{SubQueryIndex: i, DocBase: seg.DocBase, cause: err}
			}
			scorers[i] = sc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return scorers, err
	}
	return scorers, nil
}

func assembleResults(coll collector.SearchCollector) (*Results, error) {
	topDocs, err := coll.TopDocs()
	if err != nil {
		return nil, err
	}
	results := &Results{
		TopDocs:   topDocs,
		TotalHits: coll.TotalHits(),
		MaxScore:  coll.MaxScore(),
	}
	switch c := coll.(type) {
	case *collector.SimpleFieldCollector:
		results.TopFieldDocs, err = c.TopFieldDocs()
	case *collector.PagingFieldCollector:
		results.TopFieldDocs, err = c.TopFieldDocs()
	case *collector.CollapsingCollector:
		results.CollapseTopDocs, err = c.CollapseTopDocs()
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}

// CursorFor mints a search-after token for the last hit of a page. Feed
// the parsed token back through ParseCursor as CollectorConfig.After to
// collect the next page.
func (s *Searcher) CursorFor(after model.FieldDoc) (string, error) {
	return cursor.Encode(after, s.codec)
}

// ParseCursor parses a search-after token minted by CursorFor.
func (s *Searcher) ParseCursor(token string) (model.FieldDoc, error) {
	return cursor.Decode(token)
}
