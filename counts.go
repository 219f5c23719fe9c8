package binrange

const (
	// presizing never allocates more than this many counters up front
	maxPresizedOrdinals = 1 << 16
	// ordinals at or above this are kept in a map
	maxDenseOrdinals = 1 << 20
)

// ordinalCounts is a counter per ordinal: a dense slice for small ordinals
// and a map for the rest, so a handful of huge ordinals stays cheap.
type ordinalCounts struct {
	dense  []uint64
	sparse map[int64]uint64
}

func newOrdinalCounts(owning Cardinality, perOwning int) ordinalCounts {
	n, ok := owning.Known()
	if !ok || n == 0 || perOwning <= 0 {
		return ordinalCounts{}
	}
	size := int64(maxPresizedOrdinals)
	if n <= size/int64(perOwning) {
		size = n * int64(perOwning)
	}
	return ordinalCounts{dense: make([]uint64, size)}
}

func (c *ordinalCounts) add(ord int64, n uint64) {
	if ord >= maxDenseOrdinals {
		if c.sparse == nil {
			c.sparse = make(map[int64]uint64)
		}
		c.sparse[ord] += n
		return
	}
	if ord >= int64(len(c.dense)) {
		size := min(max(int64(2*len(c.dense)), ord+1), maxDenseOrdinals)
		grown := make([]uint64, size)
		copy(grown, c.dense)
		c.dense = grown
	}
	c.dense[ord] += n
}

// get is zero for ordinals that never counted anything.
func (c *ordinalCounts) get(ord int64) uint64 {
	if ord < 0 {
		return 0
	}
	if ord < int64(len(c.dense)) {
		return c.dense[ord]
	}
	return c.sparse[ord]
}
