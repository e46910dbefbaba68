// Package one defines the local-agent client interface the bootstrap
// sequence depends on: this node's own identity and its assigned
// addresses on a network. The concrete HTTP/JSON implementation,
// authenticated by a platform-specific token file, is an external
// collaborator — the core only uses this interface.
package one

import "context"

// Status is this node's local-agent identity.
type Status struct {
	PublicIdentity string
}

// NetworkStatus is this node's own view of a joined network.
type NetworkStatus struct {
	ID                string
	AssignedAddresses []string // CIDR-notation addresses, e.g. "10.0.0.4/24"
}

// Client is the local agent ("One") API surface.
type Client interface {
	GetStatus(ctx context.Context) (*Status, error)
	GetNetwork(ctx context.Context, networkID string) (*NetworkStatus, error)
	UpdateNetwork(ctx context.Context, networkID string, dnsDomain string, dnsServers []string) error
}
