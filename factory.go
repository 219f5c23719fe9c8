package binrange

import (
	"github.com/go-kit/log/level"
	"github.com/pkg/errors"
)

// Factory creates a range aggregator over one field for each partition,
// choosing the collecting or the unmapped implementation.
type Factory struct {
	name      string
	field     string
	valueType ValuesSourceType
	ranges    *RangeList
	registry  *Registry
	format    Formatter
	keyed     bool
	subs      []AggregatorFactory
}

// NewFactory expects a validated range list: at least one range, and
// from <= to wherever both bounds are set.
func NewFactory(name, field string, valueType ValuesSourceType, ranges *RangeList, registry *Registry, opts ...Option) (*Factory, error) {
	opt := defaultOptions()
	for _, o := range opts {
		o(&opt)
	}
	if ranges == nil || ranges.Len() == 0 {
		return nil, errors.Wrapf(ErrInvalidRange, "%s: no ranges", name)
	}
	_, format, err := registry.Lookup(valueType)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	if opt.format != nil {
		format = opt.format
	}
	return &Factory{
		name:      name,
		field:     field,
		valueType: valueType,
		ranges:    ranges,
		registry:  registry,
		format:    format,
		keyed:     opt.keyed,
		subs:      opt.subs,
	}, nil
}

func (f *Factory) Name() string { return f.name }

func (f *Factory) Ranges() *RangeList { return f.ranges }

func (f *Factory) Create(ac *AggregationContext, parent Aggregator, cardinality Cardinality, metadata Metadata) (Aggregator, error) {
	vs, ok := ac.Segment.ValuesSource(f.field)
	if !ok {
		level.Debug(ac.logger).Log("msg", "field unmapped, creating non-collecting aggregator", "agg", f.name, "field", f.field)
		ac.metrics.aggregatorCreated(modeUnmapped)
		return newUnmappedAggregator(ac, f.name, f.ranges, f.format, f.keyed, f.subs, metadata)
	}

	ctor, _, err := f.registry.Lookup(vs.Type())
	if err != nil {
		return nil, errors.Wrapf(err, "%s: field %s", f.name, f.field)
	}
	level.Debug(ac.logger).Log("msg", "creating range aggregator", "agg", f.name, "field", f.field, "type", vs.Type(), "ranges", f.ranges.Len(), "cardinality", int64(cardinality))
	ac.metrics.aggregatorCreated(modeMapped)
	return ctor(RangeAggregatorParams{
		Name:         f.name,
		SubFactories: f.subs,
		ValuesSource: vs,
		Format:       f.format,
		Ranges:       f.ranges,
		Keyed:        f.keyed,
		Context:      ac,
		Parent:       parent,
		Cardinality:  cardinality,
		Metadata:     metadata.clone(),
	})
}
