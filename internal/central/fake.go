package central

import (
	"context"
	"fmt"
)

// Fake is an in-memory Client used by reconciler tests, mirroring the
// shape of the teacher's generated-API mocks: fixed, inspectable state
// instead of a real HTTP round trip.
type Fake struct {
	Members map[string][]Member // networkID -> members
	Network map[string]NetworkConfig

	ListMembersErr error
}

func NewFake() *Fake {
	return &Fake{
		Members: make(map[string][]Member),
		Network: make(map[string]NetworkConfig),
	}
}

func (f *Fake) ListMembers(ctx context.Context, networkID string) ([]Member, error) {
	if f.ListMembersErr != nil {
		return nil, f.ListMembersErr
	}
	return f.Members[networkID], nil
}

func (f *Fake) GetMember(ctx context.Context, networkID, nodeID string) (*Member, error) {
	for _, m := range f.Members[networkID] {
		if m.NodeID == nodeID {
			cp := m
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("central: member %s not found on network %s", nodeID, networkID)
}

func (f *Fake) UpdateMember(ctx context.Context, networkID, nodeID string, m Member) error {
	members := f.Members[networkID]
	for i, existing := range members {
		if existing.NodeID == nodeID {
			members[i] = m
			return nil
		}
	}
	f.Members[networkID] = append(members, m)
	return nil
}

func (f *Fake) GetNetwork(ctx context.Context, networkID string) (*NetworkConfig, error) {
	cfg, ok := f.Network[networkID]
	if !ok {
		return nil, fmt.Errorf("central: network %s not found", networkID)
	}
	return &cfg, nil
}

func (f *Fake) UpdateNetwork(ctx context.Context, networkID string, cfg NetworkConfig) error {
	f.Network[networkID] = cfg
	return nil
}
