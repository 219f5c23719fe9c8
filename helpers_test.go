package binrange

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustIP(s string) []byte {
	b, err := ParseIP(s)
	if err != nil {
		panic(err)
	}
	return b
}

func lowHigh() *RangeList {
	return NewRangeList(
		Range{Key: "low", To: mustIP("10.0.0.100")},
		Range{Key: "high", From: mustIP("10.0.0.100")},
	)
}

func keywordRegistry() *Registry {
	b := NewRegistryBuilder()
	RegisterAggregators(b)
	b.Register(ValuesSourceKeyword, NewRangeAggregator, RawFormat)
	return b.Build()
}

// ipSegment builds a segment with an "ip" field; each entry of docs is the
// textual values of one document.
func ipSegment(t testing.TB, docs ...[]string) *MemorySegment {
	b := NewSegmentBuilder().DeclareField("ip", ValuesSourceIP)
	for _, vals := range docs {
		encoded := make([][]byte, len(vals))
		for i, v := range vals {
			encoded[i] = mustIP(v)
		}
		_, err := b.AddDocument(map[string][][]byte{"ip": encoded})
		require.NoError(t, err)
	}
	return b.Build()
}

func repeat(n int, v ...string) [][]string {
	out := make([][]string, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func requireBuckets(t testing.TB, agg Aggregation, keys []string, counts []uint64) {
	t.Helper()
	res, ok := agg.(*Result)
	require.True(t, ok, "expected *Result, got %T", agg)
	require.Len(t, res.Buckets(), len(keys))
	for i, b := range res.Buckets() {
		require.Equal(t, keys[i], b.Key, "bucket %d", i)
		require.Equal(t, counts[i], b.DocCount, "bucket %s", b.Key)
	}
}
