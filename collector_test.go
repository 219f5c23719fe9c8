package binrange

import (
	"context"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func randomValue(r *rand.Rand) []byte {
	v := make([]byte, r.Intn(3))
	r.Read(v)
	return v
}

func randomRanges(r *rand.Rand, n int) []Range {
	ranges := make([]Range, 0, n)
	for len(ranges) < n {
		if len(ranges) > 0 && r.Intn(6) == 0 {
			ranges = append(ranges, ranges[r.Intn(len(ranges))])
			continue
		}
		var rg Range
		if r.Intn(5) != 0 {
			rg.From = randomValue(r)
		}
		if r.Intn(5) != 0 {
			rg.To = randomValue(r)
		}
		if rg.From != nil && rg.To != nil && compareBound(rg.From, rg.To, 1) > 0 {
			rg.From, rg.To = rg.To, rg.From
		}
		ranges = append(ranges, rg)
	}
	return ranges
}

func naiveCounts(ranges []Range, docs [][][]byte, owners []int64) map[int64]uint64 {
	out := make(map[int64]uint64)
	for d, vals := range docs {
		for i, rg := range ranges {
			for _, v := range vals {
				if rg.matches(v) {
					out[FlatOrdinal(owners[d], i, len(ranges))]++
					break
				}
			}
		}
	}
	return out
}

func TestCollectorMatchesNaive(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	for round := 0; round < 50; round++ {
		numRanges := 1 + r.Intn(12)
		numOwning := 1 + r.Intn(4)
		ranges := randomRanges(r, numRanges)

		b := NewSegmentBuilder().DeclareField("k", ValuesSourceKeyword)
		var docs [][][]byte
		var owners []int64
		for d := 0; d < 200; d++ {
			vals := make([][]byte, r.Intn(5))
			for i := range vals {
				vals[i] = randomValue(r)
			}
			_, err := b.AddDocument(map[string][][]byte{"k": vals})
			require.NoError(t, err)
			docs = append(docs, vals)
			owners = append(owners, int64(r.Intn(numOwning)))
		}
		seg := b.Build()
		vs, ok := seg.ValuesSource("k")
		require.True(t, ok)

		list := NewRangeList(ranges...)
		c := newRangeCollector(list, CardinalityMany)
		values := vs.Values()
		for d := range docs {
			err := c.collect(values, uint32(d), owners[d], func(_ uint32, f int64) error {
				c.increment(f)
				return nil
			})
			require.NoError(t, err)
		}

		want := naiveCounts(list.ranges, docs, owners)
		for ord := 0; ord < numOwning; ord++ {
			for i := 0; i < numRanges; i++ {
				f := FlatOrdinal(int64(ord), i, numRanges)
				require.Equal(t, want[f], c.docCount(f), "round %d, flat ordinal %d", round, f)
			}
		}
	}
}

func TestCollectorCountsRangeOncePerDoc(t *testing.T) {
	seg := ipSegment(t,
		[]string{"10.0.0.1", "10.0.0.2", "10.0.0.3"},
		[]string{"10.0.0.5", "10.0.0.200"},
	)
	vs, _ := seg.ValuesSource("ip")
	c := newRangeCollector(lowHigh(), CardinalityOne)
	values := vs.Values()
	for doc := uint32(0); doc < seg.MaxDoc(); doc++ {
		require.NoError(t, c.collect(values, doc, 0, func(_ uint32, f int64) error {
			c.increment(f)
			return nil
		}))
	}
	require.Equal(t, uint64(2), c.docCount(0))
	require.Equal(t, uint64(1), c.docCount(1))
}

func TestCollectorPresizedFromCardinality(t *testing.T) {
	{
		c := newRangeCollector(lowHigh(), Cardinality(3))
		require.Len(t, c.counts.dense, 6)
	}
	{
		c := newRangeCollector(lowHigh(), CardinalityMany)
		require.Empty(t, c.counts.dense)
		c.increment(9)
		require.Equal(t, uint64(1), c.docCount(9))
		require.Equal(t, uint64(0), c.docCount(8))
		require.Equal(t, uint64(0), c.docCount(100))
		require.Equal(t, uint64(0), c.docCount(-1))
	}
}

func TestCollectorHintIsCapped(t *testing.T) {
	for _, hint := range []Cardinality{1 << 40, 1 << 62, Cardinality(math.MaxInt64)} {
		c := newRangeCollector(lowHigh(), hint)
		require.LessOrEqual(t, len(c.counts.dense), maxPresizedOrdinals)
	}
}

func TestCollectorSparseOrdinals(t *testing.T) {
	c := newRangeCollector(lowHigh(), CardinalityMany)
	huge := FlatOrdinal(1<<40, 1, 2)
	c.increment(huge)
	c.increment(huge)
	c.increment(3)
	require.Equal(t, uint64(2), c.docCount(huge))
	require.Equal(t, uint64(0), c.docCount(huge-1))
	require.Equal(t, uint64(1), c.docCount(3))
	require.Less(t, len(c.counts.dense), maxDenseOrdinals)
}

func TestCollectorEmptyValue(t *testing.T) {
	b := NewSegmentBuilder().DeclareField("k", ValuesSourceKeyword)
	_, err := b.AddDocument(map[string][][]byte{"k": {{}}})
	require.NoError(t, err)
	_, err = b.AddDocument(map[string][][]byte{"k": {[]byte("b")}})
	require.NoError(t, err)

	ranges := NewRangeList(
		Range{Key: "all"},
		Range{Key: "below-a", To: []byte("a")},
		Range{Key: "from-a", From: []byte("a")},
		Range{Key: "from-empty", From: []byte{}},
		Range{Key: "below-empty", To: []byte{}},
	)
	f, err := NewFactory("r", "k", ValuesSourceKeyword, ranges, keywordRegistry())
	require.NoError(t, err)
	res, err := Execute(context.Background(), f, []Partition{{Segment: b.Build()}}, []int64{0})
	require.NoError(t, err)
	requireBuckets(t, res[0], []string{"all", "below-a", "from-a", "from-empty", "below-empty"}, []uint64{2, 1, 1, 2, 0})
}

func BenchmarkCollect(b *testing.B) {
	r := rand.New(rand.NewSource(1))
	list := NewRangeList(randomRanges(r, 32)...)
	sb := NewSegmentBuilder().DeclareField("k", ValuesSourceKeyword)
	for d := 0; d < 10000; d++ {
		_, _ = sb.AddDocument(map[string][][]byte{"k": {randomValue(r), randomValue(r)}})
	}
	seg := sb.Build()
	vs, _ := seg.ValuesSource("k")
	matched := 0
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c := newRangeCollector(list, CardinalityOne)
		values := vs.Values()
		for doc := uint32(0); doc < seg.MaxDoc(); doc++ {
			_ = c.collect(values, doc, 0, func(_ uint32, f int64) error {
				c.increment(f)
				matched++
				return nil
			})
		}
	}
	b.ReportMetric(float64(matched)/float64(b.N*int(seg.MaxDoc())), "buckets/doc")
}
