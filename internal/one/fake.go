package one

import "context"

// Fake is an in-memory Client for bootstrap/reconciler tests.
type Fake struct {
	Status   Status
	Networks map[string]NetworkStatus
}

func NewFake() *Fake {
	return &Fake{Networks: make(map[string]NetworkStatus)}
}

func (f *Fake) GetStatus(ctx context.Context) (*Status, error) {
	s := f.Status
	return &s, nil
}

func (f *Fake) GetNetwork(ctx context.Context, networkID string) (*NetworkStatus, error) {
	n := f.Networks[networkID]
	return &n, nil
}

func (f *Fake) UpdateNetwork(ctx context.Context, networkID string, dnsDomain string, dnsServers []string) error {
	return nil
}
