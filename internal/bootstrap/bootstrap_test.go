package bootstrap

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerotier/zt-dnsd/internal/central"
	"github.com/zerotier/zt-dnsd/internal/one"
)

const networkID = "8056c2e21c000001"

func TestStartNoAssignedAddressesFails(t *testing.T) {
	oc := one.NewFake()
	oc.Networks[networkID] = one.NetworkStatus{ID: networkID}
	cc := central.NewFake()

	_, err := Start(context.Background(), Config{NetworkID: networkID}, oc, cc)
	assert.ErrorIs(t, err, ErrNoAssignedAddresses)
}

func TestStartInvalidDomainFails(t *testing.T) {
	oc := one.NewFake()
	oc.Networks[networkID] = one.NetworkStatus{ID: networkID, AssignedAddresses: []string{"172.16.240.2/24"}}
	cc := central.NewFake()

	overlongLabel := strings.Repeat("a", 64) + ".arpa."
	_, err := Start(context.Background(), Config{NetworkID: networkID, Domain: overlongLabel}, oc, cc)
	assert.Error(t, err)
}

func TestStartRegistersWithController(t *testing.T) {
	oc := one.NewFake()
	oc.Networks[networkID] = one.NetworkStatus{ID: networkID, AssignedAddresses: []string{"127.0.0.2/24"}}

	cc := central.NewFake()
	cc.Network[networkID] = central.NetworkConfig{ID: networkID}

	rt, err := Start(context.Background(), Config{NetworkID: networkID, Port: "0"}, oc, cc)
	require.NoError(t, err)
	defer rt.Shutdown()

	require.Len(t, rt.Listeners, 1)
	assert.Equal(t, "home.arpa.", rt.Catalog.Forward().Apex)

	updated := cc.Network[networkID]
	assert.Equal(t, "home.arpa.", updated.DNSDomain)
	assert.Equal(t, []string{"127.0.0.2"}, updated.DNSServers)
}

func TestStartAddsRFC4193PTRZone(t *testing.T) {
	oc := one.NewFake()
	oc.Networks[networkID] = one.NetworkStatus{ID: networkID, AssignedAddresses: []string{"127.0.0.2/24"}}

	cc := central.NewFake()
	cc.Network[networkID] = central.NetworkConfig{
		ID:           networkID,
		V6AssignMode: central.V6AssignMode{RFC4193: true},
	}

	rt, err := Start(context.Background(), Config{NetworkID: networkID, Port: "0"}, oc, cc)
	require.NoError(t, err)
	defer rt.Shutdown()

	assert.Len(t, rt.Catalog.PTRZones(), 2)
}

func TestStartFailsWhenControllerNetworkMissing(t *testing.T) {
	oc := one.NewFake()
	oc.Networks[networkID] = one.NetworkStatus{ID: networkID, AssignedAddresses: []string{"172.16.240.2/24"}}
	cc := central.NewFake()

	_, err := Start(context.Background(), Config{NetworkID: networkID, Port: "0"}, oc, cc)
	assert.Error(t, err)
}
