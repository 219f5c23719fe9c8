package binrange

import (
	"github.com/pkg/errors"
)

// Reduce merges the results a factory produced for the same owning bucket on
// different partitions.
func Reduce(aggs []Aggregation) (Aggregation, error) {
	if len(aggs) == 0 {
		return nil, errors.New("binrange: nothing to reduce")
	}
	return aggs[0].Reduce(aggs[1:])
}

// Reduce sums doc counts bucket by bucket and reduces sub-aggregations by
// position. Empty aggregations are skipped; if every input is empty the
// result is empty.
func (r *Result) Reduce(others []Aggregation) (Aggregation, error) {
	var base *Result
	inputs := make([]*Result, 0, len(others)+1)
	for _, a := range append([]Aggregation{r}, others...) {
		res, ok := a.(*Result)
		if !ok {
			return nil, errors.Errorf("binrange: cannot reduce %T into range aggregation %s", a, r.name)
		}
		if len(res.buckets) == 0 {
			continue
		}
		if base == nil {
			base = res
		} else if res.fingerprint != base.fingerprint || len(res.buckets) != len(base.buckets) {
			return nil, errors.Wrapf(ErrIncompatibleRanges, "%s: expected %d buckets, got %d", r.name, len(base.buckets), len(res.buckets))
		}
		inputs = append(inputs, res)
	}
	if base == nil {
		return newResult(r.name, r.format, r.keyed, nil, r.metadata, r.fingerprint), nil
	}

	buckets := make([]Bucket, len(base.buckets))
	for i, b := range base.buckets {
		var docCount uint64
		for _, in := range inputs {
			docCount += in.buckets[i].DocCount
		}
		subs, err := reduceSubAggregations(inputs, i)
		if err != nil {
			return nil, errors.Wrapf(err, "%s: bucket %s", r.name, b.Key)
		}
		buckets[i] = Bucket{
			Key:          b.Key,
			From:         b.From,
			To:           b.To,
			DocCount:     docCount,
			Aggregations: subs,
		}
	}
	return newResult(base.name, base.format, base.keyed, buckets, base.metadata, base.fingerprint), nil
}

func reduceSubAggregations(inputs []*Result, bucket int) ([]Aggregation, error) {
	first := inputs[0].buckets[bucket].Aggregations
	if len(first) == 0 {
		return nil, nil
	}
	out := make([]Aggregation, len(first))
	rest := make([]Aggregation, 0, len(inputs)-1)
	for k, sub := range first {
		rest = rest[:0]
		for _, in := range inputs[1:] {
			subs := in.buckets[bucket].Aggregations
			if len(subs) != len(first) {
				return nil, errors.Errorf("expected %d sub-aggregations, got %d", len(first), len(subs))
			}
			rest = append(rest, subs[k])
		}
		reduced, err := sub.Reduce(rest)
		if err != nil {
			return nil, err
		}
		out[k] = reduced
	}
	return out, nil
}
