package binrange

import (
	"github.com/go-kit/log"
)

// AggregationContext is the per-partition state aggregators are created in.
type AggregationContext struct {
	Segment Segment

	logger  log.Logger
	metrics *Metrics
}

func NewAggregationContext(seg Segment, opts ...Option) *AggregationContext {
	opt := defaultOptions()
	for _, o := range opts {
		o(&opt)
	}
	return &AggregationContext{
		Segment: seg,
		logger:  opt.logger,
		metrics: opt.metrics,
	}
}
