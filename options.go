package hybridgo

import (
	"github.com/hupe1980/hybridgo/codec"
)

// DefaultMaxSetupConcurrency bounds the number of sub-scorer construction
// tasks running at once per segment.
const DefaultMaxSetupConcurrency = 4

type options struct {
	codec               codec.Codec
	metricsCollector    MetricsCollector
	logger              *Logger
	maxSetupConcurrency int
}

// Option configures Searcher constructor behavior.
//
// Today options primarily exist to avoid exploding the API surface
// (e.g. codec-specific constructor variants).
type Option func(*options)

// WithCodec configures the codec used for search-after cursor tokens.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithLogger configures structured logging. If nil is passed, logging is
// disabled.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithMetricsCollector configures operational metrics collection. If nil
// is passed, metrics are discarded.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithMaxSetupConcurrency bounds how many sub-query scorers are built in
// parallel per segment. Scorer construction (query rewriting, posting
// setup) is the expensive part of a hybrid search; the per-document
// collection loop itself stays single-threaded per segment.
//
// Values below 1 select DefaultMaxSetupConcurrency.
func WithMaxSetupConcurrency(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = DefaultMaxSetupConcurrency
		}
		o.maxSetupConcurrency = n
	}
}
