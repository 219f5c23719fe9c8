package binrange

import (
	"bytes"
	"slices"

	"github.com/pkg/errors"
)

// rangeCollector counts documents per flat ordinal. Ranges are searched in
// (from, to) order; order maps a sorted position back to the range index so
// flat ordinals always follow the RangeList.
type rangeCollector struct {
	sorted    []Range
	order     []int
	maxTos    [][]byte
	numRanges int
	counts    ordinalCounts
}

func newRangeCollector(ranges *RangeList, cardinality Cardinality) *rangeCollector {
	n := ranges.Len()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return compareRanges(ranges.ranges[a], ranges.ranges[b])
	})

	sorted := make([]Range, n)
	maxTos := make([][]byte, n)
	for i, idx := range order {
		sorted[i] = ranges.ranges[idx]
	}
	if n > 0 {
		maxTos[0] = sorted[0].To
	}
	for i := 1; i < n; i++ {
		if compareBound(sorted[i].To, maxTos[i-1], -1) >= 0 {
			maxTos[i] = sorted[i].To
		} else {
			maxTos[i] = maxTos[i-1]
		}
	}

	return &rangeCollector{
		sorted:    sorted,
		order:     order,
		maxTos:    maxTos,
		numRanges: n,
		counts:    newOrdinalCounts(cardinality, n),
	}
}

// collect calls fn once for every range the document falls into.
func (c *rangeCollector) collect(values BinaryValues, doc uint32, owningOrd int64, fn func(doc uint32, flatOrd int64) error) error {
	ok, err := values.AdvanceExact(doc)
	if err != nil {
		return errors.Wrapf(err, "advance to doc %d", doc)
	}
	if !ok {
		return nil
	}
	lo := 0
	for i, n := 0, values.ValueCount(); i < n; i++ {
		v, err := values.NextValue()
		if err != nil {
			return errors.Wrapf(err, "read value %d of doc %d", i, doc)
		}
		if lo, err = c.collectValue(v, doc, owningOrd, lo, fn); err != nil {
			return err
		}
	}
	return nil
}

// collectValue returns the lowest sorted position a larger value of the same
// document may still match.
func (c *rangeCollector) collectValue(v []byte, doc uint32, owningOrd int64, lowBound int, fn func(uint32, int64) error) (int, error) {
	lo, hi := lowBound, len(c.sorted)-1
	mid := int(uint(lo+hi) >> 1)
	for lo <= hi {
		if belowFrom(v, c.sorted[mid].From) {
			hi = mid - 1
		} else if atOrAboveTo(v, c.maxTos[mid]) {
			lo = mid + 1
		} else {
			break
		}
		mid = int(uint(lo+hi) >> 1)
	}
	if lo > hi {
		return lo, nil
	}

	startLo, startHi := lo, mid
	for startLo <= startHi {
		m := int(uint(startLo+startHi) >> 1)
		if atOrAboveTo(v, c.maxTos[m]) {
			startLo = m + 1
		} else {
			startHi = m - 1
		}
	}

	endLo, endHi := mid, hi
	for endLo <= endHi {
		m := int(uint(endLo+endHi) >> 1)
		if belowFrom(v, c.sorted[m].From) {
			endHi = m - 1
		} else {
			endLo = m + 1
		}
	}

	for i := startLo; i <= endHi; i++ {
		if !c.sorted[i].matches(v) {
			continue
		}
		if err := fn(doc, FlatOrdinal(owningOrd, c.order[i], c.numRanges)); err != nil {
			return 0, err
		}
	}
	return endHi + 1, nil
}

func (c *rangeCollector) increment(flatOrd int64) {
	c.counts.add(flatOrd, 1)
}

func (c *rangeCollector) docCount(flatOrd int64) uint64 {
	return c.counts.get(flatOrd)
}

// A document value is never an open bound, even when it is empty.
func belowFrom(v, from []byte) bool {
	return from != nil && bytes.Compare(v, from) < 0
}

func atOrAboveTo(v, to []byte) bool {
	return to != nil && bytes.Compare(v, to) >= 0
}
