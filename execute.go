package binrange

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// cancellation is checked once per this many documents.
const checkCancelEvery = 1024

// Partition is one segment together with the documents that matched the query.
type Partition struct {
	Segment Segment
	// Matches is nil when every document of the segment matched.
	Matches *roaring.Bitmap
	// Owning assigns a matching document to its owning bucket. When nil every
	// document belongs to owning bucket 0.
	Owning func(doc uint32) int64
}

// Execute aggregates every partition with its own aggregator, concurrently
// up to the configured number of workers, and reduces the per-partition
// results. The returned slice has one aggregation per owning ordinal, in
// input order.
func Execute(ctx context.Context, factory AggregatorFactory, partitions []Partition, owningOrds []int64, opts ...Option) ([]Aggregation, error) {
	opt := defaultOptions()
	for _, o := range opts {
		o(&opt)
	}
	if len(partitions) == 0 {
		return nil, ErrNoPartitions
	}
	workers := opt.workers
	if workers <= 0 {
		workers = 1
	}

	var maxOrd int64
	for _, ord := range owningOrds {
		if ord < 0 {
			return nil, errors.Wrapf(ErrNegativeOrdinal, "requested %d", ord)
		}
		maxOrd = max(maxOrd, ord)
	}
	// owning ordinals are opaque; only a dense request bounds them
	cardinality := CardinalityMany
	if maxOrd < int64(max(len(owningOrds), 1)) {
		cardinality = Cardinality(maxOrd + 1)
	}

	perPartition := make([][]Aggregation, len(partitions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range partitions {
		i := i
		g.Go(func() error {
			logger := log.With(opt.logger, "agg", factory.Name(), "partition", i)
			res, err := runPartition(gctx, factory, partitions[i], owningOrds, cardinality, opt, logger)
			if err != nil {
				level.Error(logger).Log("msg", "partition failed", "err", err)
				return errors.Wrapf(err, "partition %d", i)
			}
			perPartition[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Aggregation, len(owningOrds))
	column := make([]Aggregation, len(partitions))
	for j := range owningOrds {
		for i := range partitions {
			column[i] = perPartition[i][j]
		}
		reduced, err := Reduce(column)
		if err != nil {
			return nil, errors.Wrapf(err, "reduce owning bucket %d", owningOrds[j])
		}
		out[j] = reduced
	}
	return out, nil
}

func runPartition(ctx context.Context, factory AggregatorFactory, p Partition, owningOrds []int64, cardinality Cardinality, opt options, logger log.Logger) ([]Aggregation, error) {
	ac := &AggregationContext{
		Segment: p.Segment,
		logger:  logger,
		metrics: opt.metrics,
	}
	agg, err := factory.Create(ac, nil, cardinality, opt.metadata)
	if err != nil {
		return nil, err
	}

	collected := 0
	if needsCollection(agg) {
		collect := func(doc uint32) error {
			if collected%checkCancelEvery == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			collected++
			var ord int64
			if p.Owning != nil {
				ord = p.Owning(doc)
			}
			return agg.Collect(doc, ord)
		}
		if p.Matches != nil {
			it := p.Matches.Iterator()
			for it.HasNext() {
				if err := collect(it.Next()); err != nil {
					return nil, err
				}
			}
		} else {
			for doc := uint32(0); doc < p.Segment.MaxDoc(); doc++ {
				if err := collect(doc); err != nil {
					return nil, err
				}
			}
		}
	}
	level.Debug(logger).Log("msg", "partition collected", "docs", collected)

	res, err := agg.BuildAggregations(owningOrds)
	if err != nil {
		return nil, err
	}
	if len(res) != len(owningOrds) {
		return nil, errors.Errorf("built %d results for %d owning buckets", len(res), len(owningOrds))
	}
	return res, nil
}
