package hybridgo

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    searchCounter   prometheus.Counter
//	    searchHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordSearch(subQueries int, duration time.Duration, err error) {
//	    p.searchCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordSearch is called after each shard-level search.
	// subQueries is the number of sub-queries, duration is the time taken,
	// err is nil if successful.
	RecordSearch(subQueries int, duration time.Duration, err error)

	// RecordScorerSetup is called after the sub-scorers of one segment are
	// built. built is the number of non-nil scorers.
	RecordScorerSetup(built int, duration time.Duration, err error)

	// RecordSegment is called after one segment's collection pass.
	// terminated reports whether collection stopped early.
	RecordSegment(duration time.Duration, terminated bool)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordSearch(int, time.Duration, error)      {}
func (NoopMetricsCollector) RecordScorerSetup(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordSegment(time.Duration, bool)           {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	SearchCount        atomic.Int64
	SearchErrors       atomic.Int64
	SearchTotalNanos   atomic.Int64
	ScorerSetupCount   atomic.Int64
	ScorerSetupErrors  atomic.Int64
	ScorersBuilt       atomic.Int64
	SegmentCount       atomic.Int64
	SegmentsTerminated atomic.Int64
	SegmentTotalNanos  atomic.Int64
}

// RecordSearch implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSearch(subQueries int, duration time.Duration, err error) {
	b.SearchCount.Add(1)
	b.SearchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.SearchErrors.Add(1)
	}
}

// RecordScorerSetup implements MetricsCollector.
func (b *BasicMetricsCollector) RecordScorerSetup(built int, duration time.Duration, err error) {
	b.ScorerSetupCount.Add(1)
	b.ScorersBuilt.Add(int64(built))
	if err != nil {
		b.ScorerSetupErrors.Add(1)
	}
}

// RecordSegment implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSegment(duration time.Duration, terminated bool) {
	b.SegmentCount.Add(1)
	b.SegmentTotalNanos.Add(duration.Nanoseconds())
	if terminated {
		b.SegmentsTerminated.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		SearchCount:        b.SearchCount.Load(),
		SearchErrors:       b.SearchErrors.Load(),
		SearchAvgNanos:     b.getAvgSearchNanos(),
		ScorerSetupCount:   b.ScorerSetupCount.Load(),
		ScorerSetupErrors:  b.ScorerSetupErrors.Load(),
		ScorersBuilt:       b.ScorersBuilt.Load(),
		SegmentCount:       b.SegmentCount.Load(),
		SegmentsTerminated: b.SegmentsTerminated.Load(),
	}
}

func (b *BasicMetricsCollector) getAvgSearchNanos() int64 {
	count := b.SearchCount.Load()
	if count == 0 {
		return 0
	}
	return b.SearchTotalNanos.Load() / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	SearchCount        int64
	SearchErrors       int64
	SearchAvgNanos     int64
	ScorerSetupCount   int64
	ScorerSetupErrors  int64
	ScorersBuilt       int64
	SegmentCount       int64
	SegmentsTerminated int64
}
