package binrange

import (
	"encoding/hex"
	"net/netip"

	"github.com/pkg/errors"
)

var (
	// IPFormat renders 16-byte encoded addresses; IPv4-mapped addresses are
	// shown in dotted-quad form.
	IPFormat Formatter = ipFormat{}
	// RawFormat renders values as their bytes.
	RawFormat Formatter = rawFormat{}
)

type ipFormat struct{}

func (ipFormat) Format(v []byte) string {
	if len(v) != 16 {
		return hex.EncodeToString(v)
	}
	return netip.AddrFrom16([16]byte(v)).Unmap().String()
}

type rawFormat struct{}

func (rawFormat) Format(v []byte) string { return string(v) }

// EncodeIP returns the 16-byte, order-preserving encoding of addr.
func EncodeIP(addr netip.Addr) []byte {
	b := addr.WithZone("").As16()
	return b[:]
}

func ParseIP(s string) ([]byte, error) {
	addr, err := netip.ParseAddr(s)
	if err != nil {
		return nil, errors.Wrapf(err, "parse ip %q", s)
	}
	return EncodeIP(addr), nil
}

// ParseMask converts a CIDR mask to the range [network address, last address+1).
// to is nil when the last address is the largest encodable one.
func ParseMask(mask string) (from, to []byte, err error) {
	p, err := netip.ParsePrefix(mask)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "parse mask %q", mask)
	}
	p = p.Masked()
	lower := p.Addr().As16()
	bits := p.Bits()
	if p.Addr().Is4() {
		bits += 96
	}
	upper := lower
	for i := bits; i < 128; i++ {
		upper[i>>3] |= 1 << (7 - i&7)
	}
	from = lower[:]
	if next, ok := increment(upper); ok {
		to = next[:]
	}
	return from, to, nil
}

func increment(b [16]byte) ([16]byte, bool) {
	for i := len(b) - 1; i >= 0; i-- {
		b[i]++
		if b[i] != 0 {
			return b, true
		}
	}
	return b, false
}
