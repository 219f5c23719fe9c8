package binrange

import (
	"maps"
	"math"
)

type Aggregation interface {
	Name() string
	// Reduce merges aggregations of the same shape built on other partitions.
	Reduce(others []Aggregation) (Aggregation, error)
}

// not safe for concurrent use
type Aggregator interface {
	Name() string
	Collect(doc uint32, owningOrd int64) error
	BuildAggregations(owningOrds []int64) ([]Aggregation, error)
	BuildEmptyAggregation() Aggregation
}

type AggregatorFactory interface {
	Name() string
	Create(ac *AggregationContext, parent Aggregator, cardinality Cardinality, metadata Metadata) (Aggregator, error)
}

type nonCollecting interface {
	skipsCollection() bool
}

func needsCollection(a Aggregator) bool {
	nc, ok := a.(nonCollecting)
	return !ok || !nc.skipsCollection()
}

type ValuesSourceType string

const (
	ValuesSourceIP      ValuesSourceType = "ip"
	ValuesSourceKeyword ValuesSourceType = "keyword"
)

// BinaryValues iterates the values of one document in ascending byte order.
type BinaryValues interface {
	AdvanceExact(doc uint32) (bool, error)
	ValueCount() int
	NextValue() ([]byte, error)
}

type ValuesSource interface {
	Type() ValuesSourceType
	Values() BinaryValues
}

type Segment interface {
	MaxDoc() uint32
	// ValuesSource reports false when the field does not exist on the segment.
	ValuesSource(field string) (ValuesSource, bool)
}

type Formatter interface {
	Format(v []byte) string
}

// Cardinality hints how many owning buckets will be collected into.
type Cardinality int64

const (
	CardinalityNone Cardinality = 0
	CardinalityOne  Cardinality = 1
	CardinalityMany Cardinality = -1
)

func (c Cardinality) Multiply(n int) Cardinality {
	if c == CardinalityMany || n < 0 {
		return CardinalityMany
	}
	if n > 0 && c > Cardinality(math.MaxInt64/int64(n)) {
		return CardinalityMany
	}
	return c * Cardinality(n)
}

func (c Cardinality) Known() (int64, bool) {
	return int64(c), c >= 0
}

type Metadata map[string]any

func (m Metadata) clone() Metadata {
	if len(m) == 0 {
		return nil
	}
	return maps.Clone(m)
}
