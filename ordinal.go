package binrange

import (
	"math"

	"github.com/pkg/errors"
)

func FlatOrdinal(owningOrd int64, rangeIndex, numRanges int) int64 {
	return owningOrd*int64(numRanges) + int64(rangeIndex)
}

func SplitOrdinal(flatOrd int64, numRanges int) (owningOrd int64, rangeIndex int) {
	r := int64(numRanges)
	return flatOrd / r, int(flatOrd % r)
}

// expandOrdinals appends the flat ordinals of every owning ordinal to dst,
// owning ordinals in input order, ranges in index order.
func expandOrdinals(dst []int64, owningOrds []int64, numRanges int) []int64 {
	if need := len(owningOrds) * numRanges; cap(dst)-len(dst) < need {
		grown := make([]int64, len(dst), len(dst)+need)
		copy(grown, dst)
		dst = grown
	}
	for _, owningOrd := range owningOrds {
		for i := 0; i < numRanges; i++ {
			dst = append(dst, FlatOrdinal(owningOrd, i, numRanges))
		}
	}
	return dst
}

func checkOwningOrdinal(owningOrd int64, numRanges int) error {
	if owningOrd < 0 {
		return errors.Wrapf(ErrNegativeOrdinal, "%d", owningOrd)
	}
	if numRanges > 0 && owningOrd > (math.MaxInt64-int64(numRanges-1))/int64(numRanges) {
		return errors.Wrapf(ErrOrdinalOverflow, "%d with %d ranges", owningOrd, numRanges)
	}
	return nil
}
