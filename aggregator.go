package binrange

import (
	"github.com/pkg/errors"
)

// RangeAggregatorParams carries everything a registered constructor needs to
// build a collecting range aggregator.
type RangeAggregatorParams struct {
	Name         string
	SubFactories []AggregatorFactory
	ValuesSource ValuesSource
	Format       Formatter
	Ranges       *RangeList
	Keyed        bool
	Context      *AggregationContext
	Parent       Aggregator
	Cardinality  Cardinality
	Metadata     Metadata
}

type Constructor func(p RangeAggregatorParams) (Aggregator, error)

type rangeAggregator struct {
	name      string
	ranges    *RangeList
	format    Formatter
	keyed     bool
	metadata  Metadata
	values    BinaryValues
	collector *rangeCollector
	subs      []Aggregator
	metrics   *Metrics

	ords []int64
}

// NewRangeAggregator builds the collecting aggregator for a mapped field.
func NewRangeAggregator(p RangeAggregatorParams) (Aggregator, error) {
	a := &rangeAggregator{
		name:      p.Name,
		ranges:    p.Ranges,
		format:    p.Format,
		keyed:     p.Keyed,
		metadata:  p.Metadata.clone(),
		values:    p.ValuesSource.Values(),
		collector: newRangeCollector(p.Ranges, p.Cardinality),
		metrics:   p.Context.metrics,
	}
	subs, err := createSubAggregators(p.Context, a, p.SubFactories, p.Cardinality.Multiply(p.Ranges.Len()))
	if err != nil {
		return nil, err
	}
	a.subs = subs
	return a, nil
}

func (a *rangeAggregator) Name() string { return a.name }

func (a *rangeAggregator) Collect(doc uint32, owningOrd int64) error {
	if err := checkOwningOrdinal(owningOrd, a.ranges.Len()); err != nil {
		return errors.Wrapf(err, "%s: collect doc %d", a.name, doc)
	}
	a.metrics.docCollected()
	if err := a.collector.collect(a.values, doc, owningOrd, a.collectBucket); err != nil {
		return errors.Wrap(err, a.name)
	}
	return nil
}

func (a *rangeAggregator) collectBucket(doc uint32, flatOrd int64) error {
	a.collector.increment(flatOrd)
	for _, sub := range a.subs {
		if err := sub.Collect(doc, flatOrd); err != nil {
			return err
		}
	}
	return nil
}

func (a *rangeAggregator) BuildAggregations(owningOrds []int64) ([]Aggregation, error) {
	numRanges := a.ranges.Len()
	for _, ord := range owningOrds {
		// negative ordinals never collected anything and read as zero
		if err := checkOwningOrdinal(max(ord, 0), numRanges); err != nil {
			return nil, errors.Wrap(err, a.name)
		}
	}
	a.ords = expandOrdinals(a.ords[:0], owningOrds, numRanges)

	subResults, err := buildSubAggregations(a.subs, a.ords)
	if err != nil {
		return nil, errors.Wrap(err, a.name)
	}

	results := make([]Aggregation, len(owningOrds))
	for i := range owningOrds {
		buckets := make([]Bucket, numRanges)
		for j := range buckets {
			idx := i*numRanges + j
			buckets[j] = newBucket(a.ranges.ranges[j], a.format, a.collector.docCount(a.ords[idx]), subAggregationsAt(subResults, idx))
		}
		results[i] = newResult(a.name, a.format, a.keyed, buckets, a.metadata, a.ranges.fingerprint)
	}
	a.metrics.bucketsBuilt(len(a.ords))
	return results, nil
}

func (a *rangeAggregator) BuildEmptyAggregation() Aggregation {
	return newResult(a.name, a.format, a.keyed, nil, a.metadata, a.ranges.fingerprint)
}

func createSubAggregators(ac *AggregationContext, parent Aggregator, factories []AggregatorFactory, cardinality Cardinality) ([]Aggregator, error) {
	if len(factories) == 0 {
		return nil, nil
	}
	subs := make([]Aggregator, len(factories))
	for i, f := range factories {
		sub, err := f.Create(ac, parent, cardinality, nil)
		if err != nil {
			return nil, errors.Wrapf(err, "create sub-aggregation %s", f.Name())
		}
		subs[i] = sub
	}
	return subs, nil
}

// buildSubAggregations returns, per sub aggregator, one result per flat ordinal.
func buildSubAggregations(subs []Aggregator, flatOrds []int64) ([][]Aggregation, error) {
	if len(subs) == 0 {
		return nil, nil
	}
	out := make([][]Aggregation, len(subs))
	for i, sub := range subs {
		res, err := sub.BuildAggregations(flatOrds)
		if err != nil {
			return nil, errors.Wrapf(err, "build sub-aggregation %s", sub.Name())
		}
		if len(res) != len(flatOrds) {
			return nil, errors.Errorf("sub-aggregation %s built %d results for %d ordinals", sub.Name(), len(res), len(flatOrds))
		}
		out[i] = res
	}
	return out, nil
}

func subAggregationsAt(subResults [][]Aggregation, idx int) []Aggregation {
	if len(subResults) == 0 {
		return nil
	}
	aggs := make([]Aggregation, len(subResults))
	for i, res := range subResults {
		aggs[i] = res[idx]
	}
	return aggs
}

func buildEmptySubAggregations(subs []Aggregator) []Aggregation {
	if len(subs) == 0 {
		return nil
	}
	aggs := make([]Aggregation, len(subs))
	for i, sub := range subs {
		aggs[i] = sub.BuildEmptyAggregation()
	}
	return aggs
}
