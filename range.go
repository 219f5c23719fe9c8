package binrange

import (
	"bytes"
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// Range is a half-open interval [From, To) over binary-comparable values.
// A nil bound is open on that side.
type Range struct {
	Key  string
	From []byte
	To   []byte
}

func (r Range) matches(v []byte) bool {
	return (r.From == nil || bytes.Compare(v, r.From) >= 0) &&
		(r.To == nil || bytes.Compare(v, r.To) < 0)
}

// RangeList is an immutable, ordered set of ranges shared by every owning
// bucket. Position in the list is the range index.
type RangeList struct {
	ranges      []Range
	fingerprint uint64
}

// NewRangeList copies ranges, so the caller may reuse the input afterwards.
// Bounds are not validated here.
func NewRangeList(ranges ...Range) *RangeList {
	l := &RangeList{ranges: make([]Range, len(ranges))}
	for i, r := range ranges {
		l.ranges[i] = Range{
			Key:  r.Key,
			From: cloneBound(r.From),
			To:   cloneBound(r.To),
		}
	}
	l.fingerprint = fingerprintRanges(l.ranges)
	return l
}

func (l *RangeList) Len() int { return len(l.ranges) }

// At returns the i-th range. The bounds must not be modified.
func (l *RangeList) At(i int) Range { return l.ranges[i] }

// Fingerprint identifies the list's keys and bounds in order.
func (l *RangeList) Fingerprint() uint64 { return l.fingerprint }

func cloneBound(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append(make([]byte, 0, len(b)), b...)
}

func fingerprintRanges(ranges []Range) uint64 {
	d := xxhash.New()
	var hdr [9]byte
	writeField := func(present bool, v []byte) {
		hdr[0] = 0
		if present {
			hdr[0] = 1
		}
		binary.LittleEndian.PutUint64(hdr[1:], uint64(len(v)))
		_, _ = d.Write(hdr[:])
		_, _ = d.Write(v)
	}
	for _, r := range ranges {
		writeField(true, []byte(r.Key))
		writeField(r.From != nil, r.From)
		writeField(r.To != nil, r.To)
	}
	return d.Sum64()
}

// compareBound orders a against b where a nil bound stands for an infinity;
// inf is the sign of that infinity as seen from the other operand.
func compareBound(a, b []byte, inf int) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -inf
	case b == nil:
		return inf
	}
	return bytes.Compare(a, b)
}

func compareRanges(a, b Range) int {
	if c := compareBound(a.From, b.From, 1); c != 0 {
		return c
	}
	return compareBound(a.To, b.To, -1)
}

func bucketKey(r Range, f Formatter) string {
	if r.Key != "" {
		return r.Key
	}
	from, to := "*", "*"
	if r.From != nil {
		from = f.Format(r.From)
	}
	if r.To != nil {
		to = f.Format(r.To)
	}
	return from + "-" + to
}
