package catalog

import (
	"net"
	"testing"

	"github.com/miekg/dns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustCIDR(t *testing.T, s string) *net.IPNet {
	t.Helper()
	_, n, err := net.ParseCIDR(s)
	require.NoError(t, err)
	return n
}

func TestReverseSOALiteralTable(t *testing.T) {
	cases := []struct {
		cidr string
		want string
	}{
		{"1.2.3.4/24", "3.2.1.in-addr.arpa."},
		{"1.2.3.4/16", "2.1.in-addr.arpa."},
		{"1.2.3.4/8", "1.in-addr.arpa."},
		{"1.2.3.4/22", "2.1.in-addr.arpa."},
		{"1.2.3.4/26", "3.2.1.in-addr.arpa."},
		{"1.2.3.4/32", "4.3.2.1.in-addr.arpa."},
	}
	for _, tc := range cases {
		got, err := ReverseSOA(mustCIDR(t, tc.cidr))
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.cidr)
	}
}

func TestReverseSOAIPv6(t *testing.T) {
	got, err := ReverseSOA(mustCIDR(t, "fd00:1234::/32"))
	require.NoError(t, err)
	assert.Equal(t, "4.3.2.1.0.0.d.f.ip6.arpa.", got)
}

func TestLookupLongestSuffixMatch(t *testing.T) {
	c := New("home.arpa.")
	ptrZone, err := c.AddPTRZone(mustCIDR(t, "10.0.0.0/24"))
	require.NoError(t, err)
	require.NotNil(t, ptrZone)

	z := c.Lookup("islay.home.arpa.")
	require.NotNil(t, z)
	assert.Equal(t, "home.arpa.", z.Apex)

	z = c.Lookup("1.0.0.10.in-addr.arpa.")
	require.NotNil(t, z)
	assert.Equal(t, "0.0.10.in-addr.arpa.", z.Apex)
}

func TestLookupNoMatch(t *testing.T) {
	c := New("home.arpa.")
	assert.Nil(t, c.Lookup("example.com."))
}

func TestPTROwnerNameMatchesZoneApex(t *testing.T) {
	owner, err := PTROwnerName(net.ParseIP("10.0.0.10"))
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.10.in-addr.arpa.", owner)
	assert.True(t, dns.IsSubDomain("0.0.10.in-addr.arpa.", owner))
}
