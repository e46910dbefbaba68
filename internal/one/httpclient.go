package one

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// HTTPClient talks to the local agent's loopback JSON API, authenticated by
// the authtoken.secret this node reads from disk.
type HTTPClient struct {
	baseURL    string
	authtoken  string
	httpClient *http.Client
}

// NewHTTPClient builds an HTTPClient against baseURL (typically
// "http://127.0.0.1:9993") using authtoken as the X-ZT1-Auth credential.
func NewHTTPClient(baseURL, authtoken string) *HTTPClient {
	return &HTTPClient{baseURL: baseURL, authtoken: authtoken, httpClient: &http.Client{Timeout: 10 * time.Second}}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("one: marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("one: build request: %w", err)
	}
	req.Header.Set("X-ZT1-Auth", c.authtoken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("one: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("one: %s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("one: decode response for %s %s: %w", method, path, err)
	}
	return nil
}

type statusWire struct {
	Address string `json:"address"`
}

func (c *HTTPClient) GetStatus(ctx context.Context) (*Status, error) {
	var w statusWire
	if err := c.do(ctx, http.MethodGet, "/status", nil, &w); err != nil {
		return nil, err
	}
	return &Status{PublicIdentity: w.Address}, nil
}

type networkWire struct {
	ID                string   `json:"id"`
	AssignedAddresses []string `json:"assignedAddresses"`
}

func (c *HTTPClient) GetNetwork(ctx context.Context, networkID string) (*NetworkStatus, error) {
	var w networkWire
	if err := c.do(ctx, http.MethodGet, "/network/"+networkID, nil, &w); err != nil {
		return nil, err
	}
	return &NetworkStatus{ID: w.ID, AssignedAddresses: w.AssignedAddresses}, nil
}

// UpdateNetwork sets the network's DNS configuration as the local agent
// understands it (used mainly so a node can see its own DNS assignment
// reflected locally; the authoritative write goes through central.Client).
func (c *HTTPClient) UpdateNetwork(ctx context.Context, networkID string, dnsDomain string, dnsServers []string) error {
	body := map[string]interface{}{
		"dns": map[string]interface{}{
			"domain":  dnsDomain,
			"servers": dnsServers,
		},
	}
	return c.do(ctx, http.MethodPost, "/network/"+networkID, body, nil)
}
