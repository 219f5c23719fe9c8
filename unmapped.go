package binrange

// unmappedAggregator serves fields that do not exist on the segment. It
// never visits a document; every range reports zero.
type unmappedAggregator struct {
	name     string
	ranges   *RangeList
	format   Formatter
	keyed    bool
	metadata Metadata
	subs     []Aggregator
	metrics  *Metrics
}

func newUnmappedAggregator(ac *AggregationContext, name string, ranges *RangeList, f Formatter, keyed bool, subFactories []AggregatorFactory, metadata Metadata) (*unmappedAggregator, error) {
	a := &unmappedAggregator{
		name:     name,
		ranges:   ranges,
		format:   f,
		keyed:    keyed,
		metadata: metadata.clone(),
		metrics:  ac.metrics,
	}
	subs, err := createSubAggregators(ac, a, subFactories, CardinalityNone)
	if err != nil {
		return nil, err
	}
	a.subs = subs
	return a, nil
}

func (a *unmappedAggregator) Name() string { return a.name }

func (a *unmappedAggregator) Collect(uint32, int64) error { return nil }

func (a *unmappedAggregator) skipsCollection() bool { return true }

func (a *unmappedAggregator) BuildAggregations(owningOrds []int64) ([]Aggregation, error) {
	numRanges := a.ranges.Len()
	empty := buildEmptySubAggregations(a.subs)

	results := make([]Aggregation, len(owningOrds))
	for i := range owningOrds {
		buckets := make([]Bucket, numRanges)
		for j := range buckets {
			buckets[j] = newBucket(a.ranges.ranges[j], a.format, 0, empty)
		}
		results[i] = newResult(a.name, a.format, a.keyed, buckets, a.metadata, a.ranges.fingerprint)
	}
	a.metrics.bucketsBuilt(len(owningOrds) * numRanges)
	return results, nil
}

func (a *unmappedAggregator) BuildEmptyAggregation() Aggregation {
	return newResult(a.name, a.format, a.keyed, nil, a.metadata, a.ranges.fingerprint)
}
