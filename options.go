package binrange

import (
	"github.com/go-kit/log"
)

type options struct {
	logger   log.Logger
	metrics  *Metrics
	workers  int
	keyed    bool
	format   Formatter
	subs     []AggregatorFactory
	metadata Metadata
}

func defaultOptions() options {
	return options{
		logger:  log.NewNopLogger(),
		workers: 1,
	}
}

type Option func(*options)

func WithLogger(l log.Logger) Option {
	return func(opt *options) {
		opt.logger = l
	}
}

func WithMetrics(m *Metrics) Option {
	return func(opt *options) {
		opt.metrics = m
	}
}

// WithWorkers sets how many partitions Execute aggregates concurrently.
func WithWorkers(n int) Option {
	return func(opt *options) {
		opt.workers = n
	}
}

func WithKeyed(keyed bool) Option {
	return func(opt *options) {
		opt.keyed = keyed
	}
}

// WithFormat overrides the formatter registered for the values source type.
func WithFormat(f Formatter) Option {
	return func(opt *options) {
		opt.format = f
	}
}

func WithSubAggregations(factories ...AggregatorFactory) Option {
	return func(opt *options) {
		opt.subs = append(opt.subs, factories...)
	}
}

// WithMetadata attaches metadata to the aggregators Execute creates.
func WithMetadata(md Metadata) Option {
	return func(opt *options) {
		opt.metadata = md.clone()
	}
}
