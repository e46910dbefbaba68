package central

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizedWithAddressesFilters(t *testing.T) {
	members := []Member{
		{NodeID: "a", Authorized: true, IPv4: []string{"10.0.0.1"}},
		{NodeID: "b", Authorized: false, IPv4: []string{"10.0.0.2"}},
		{NodeID: "c", Authorized: true},
		{NodeID: "d", Authorized: true, IPv6: []string{"fd00::1"}},
	}

	got := AuthorizedWithAddresses(members)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].NodeID)
	assert.Equal(t, "d", got[1].NodeID)
}

func TestFakeRoundTrip(t *testing.T) {
	f := NewFake()
	ctx := context.Background()

	f.Members["netid"] = []Member{{NodeID: "abc123", Authorized: true, IPv4: []string{"10.0.0.5"}}}

	members, err := f.ListMembers(ctx, "netid")
	require.NoError(t, err)
	require.Len(t, members, 1)

	m, err := f.GetMember(ctx, "netid", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", m.NodeID)

	_, err = f.GetMember(ctx, "netid", "missing")
	assert.Error(t, err)

	require.NoError(t, f.UpdateNetwork(ctx, "netid", NetworkConfig{ID: "netid", DNSDomain: "home.arpa."}))
	cfg, err := f.GetNetwork(ctx, "netid")
	require.NoError(t, err)
	assert.Equal(t, "home.arpa.", cfg.DNSDomain)
}
