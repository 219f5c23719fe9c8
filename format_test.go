package binrange

import (
	"bytes"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIPFormat(t *testing.T) {
	require.Equal(t, "10.0.0.1", IPFormat.Format(mustIP("10.0.0.1")))
	require.Equal(t, "2001:db8::1", IPFormat.Format(mustIP("2001:db8::1")))
	require.Equal(t, "::", IPFormat.Format(make([]byte, 16)))
	require.Equal(t, "abcd", IPFormat.Format([]byte{0xab, 0xcd}))
	require.Equal(t, "abc", RawFormat.Format([]byte("abc")))
}

func TestEncodeIPOrder(t *testing.T) {
	addrs := []string{"::", "::1", "0.0.0.0", "9.255.255.255", "10.0.0.0", "255.255.255.255", "2001:db8::", "ffff::"}
	for i := 1; i < len(addrs); i++ {
		require.Negative(t, bytes.Compare(mustIP(addrs[i-1]), mustIP(addrs[i])), "%s < %s", addrs[i-1], addrs[i])
	}
	require.Equal(t, mustIP("10.0.0.1"), EncodeIP(netip.MustParseAddr("::ffff:10.0.0.1")))
	require.Equal(t, mustIP("fe80::1"), EncodeIP(netip.MustParseAddr("fe80::1%eth0")))
}

func TestParseIPInvalid(t *testing.T) {
	for _, s := range []string{"", "nope", "10.0.0", "10.0.0.256", "10.0.0.0/8"} {
		_, err := ParseIP(s)
		require.Error(t, err, s)
	}
}

func TestParseMask(t *testing.T) {
	for _, tc := range []struct {
		mask     string
		from, to string
	}{
		{"10.0.0.0/25", "10.0.0.0", "10.0.0.128"},
		{"10.0.0.7/24", "10.0.0.0", "10.0.1.0"},
		{"192.168.1.1/32", "192.168.1.1", "192.168.1.2"},
		{"0.0.0.0/0", "0.0.0.0", "::1:0:0:0"},
		{"2001:db8::/32", "2001:db8::", "2001:db9::"},
		{"::/0", "::", ""},
		{"ffff::/16", "ffff::", ""},
	} {
		from, to, err := ParseMask(tc.mask)
		require.NoError(t, err, tc.mask)
		require.Equal(t, mustIP(tc.from), from, tc.mask)
		if tc.to == "" {
			require.Nil(t, to, tc.mask)
		} else {
			require.Equal(t, mustIP(tc.to), to, tc.mask)
		}
	}

	_, _, err := ParseMask("10.0.0.0")
	require.Error(t, err)
	_, _, err = ParseMask("10.0.0.0/33")
	require.Error(t, err)
}

func TestMaskRangeMatchesMembers(t *testing.T) {
	from, to, err := ParseMask("10.0.0.0/25")
	require.NoError(t, err)
	r := Range{From: from, To: to}
	require.True(t, r.matches(mustIP("10.0.0.0")))
	require.True(t, r.matches(mustIP("10.0.0.127")))
	require.False(t, r.matches(mustIP("10.0.0.128")))
	require.False(t, r.matches(mustIP("9.255.255.255")))
}
