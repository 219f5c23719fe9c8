package binrange

import (
	"github.com/pkg/errors"
)

// ValueCountFactory creates metric aggregators counting the values of a
// field per bucket. It is typically nested under a range aggregation.
type ValueCountFactory struct {
	name  string
	field string
}

func NewValueCountFactory(name, field string) *ValueCountFactory {
	return &ValueCountFactory{name: name, field: field}
}

func (f *ValueCountFactory) Name() string { return f.name }

func (f *ValueCountFactory) Create(ac *AggregationContext, _ Aggregator, cardinality Cardinality, _ Metadata) (Aggregator, error) {
	a := &valueCountAggregator{name: f.name}
	if vs, ok := ac.Segment.ValuesSource(f.field); ok {
		a.values = vs.Values()
	}
	a.counts = newOrdinalCounts(cardinality, 1)
	return a, nil
}

type valueCountAggregator struct {
	name   string
	values BinaryValues
	counts ordinalCounts
}

func (a *valueCountAggregator) Name() string { return a.name }

func (a *valueCountAggregator) Collect(doc uint32, owningOrd int64) error {
	if owningOrd < 0 {
		return errors.Wrapf(ErrNegativeOrdinal, "%s: collect doc %d into %d", a.name, doc, owningOrd)
	}
	if a.values == nil {
		return nil
	}
	ok, err := a.values.AdvanceExact(doc)
	if err != nil {
		return errors.Wrapf(err, "%s: advance to doc %d", a.name, doc)
	}
	if !ok {
		return nil
	}
	a.counts.add(owningOrd, uint64(a.values.ValueCount()))
	return nil
}

func (a *valueCountAggregator) BuildAggregations(owningOrds []int64) ([]Aggregation, error) {
	out := make([]Aggregation, len(owningOrds))
	for i, ord := range owningOrds {
		out[i] = &ValueCount{name: a.name, value: a.counts.get(ord)}
	}
	return out, nil
}

func (a *valueCountAggregator) BuildEmptyAggregation() Aggregation {
	return &ValueCount{name: a.name}
}

type ValueCount struct {
	name  string
	value uint64
}

func (v *ValueCount) Name() string { return v.name }

func (v *ValueCount) Value() uint64 { return v.value }

func (v *ValueCount) Reduce(others []Aggregation) (Aggregation, error) {
	sum := v.value
	for _, o := range others {
		vc, ok := o.(*ValueCount)
		if !ok {
			return nil, errors.Errorf("binrange: cannot reduce %T into value count %s", o, v.name)
		}
		sum += vc.value
	}
	return &ValueCount{name: v.name, value: sum}, nil
}

func (v *ValueCount) MarshalJSON() ([]byte, error) {
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)
	stream.WriteObjectStart()
	stream.WriteObjectField("value")
	stream.WriteUint64(v.value)
	stream.WriteObjectEnd()
	return append([]byte(nil), stream.Buffer()...), nil
}
