package central

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.zerotier.com/api/v1"

// HTTPClient is the bearer-token-authenticated controller client. It is
// deliberately thin: spec.md scopes the generated HTTP client for this API
// out of design (§1), so this wraps the wire format without modeling the
// full upstream schema.
type HTTPClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewHTTPClient builds an HTTPClient authenticated with token.
func NewHTTPClient(token string) *HTTPClient {
	return &HTTPClient{baseURL: defaultBaseURL, token: token, httpClient: &http.Client{Timeout: 15 * time.Second}}
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reqBody *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("central: marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("central: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("central: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("central: %s %s: status %d", method, path, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("central: decode response for %s %s: %w", method, path, err)
	}
	return nil
}

func (c *HTTPClient) ListMembers(ctx context.Context, networkID string) ([]Member, error) {
	var members []Member
	if err := c.do(ctx, http.MethodGet, "/network/"+networkID+"/member", nil, &members); err != nil {
		return nil, err
	}
	return members, nil
}

func (c *HTTPClient) GetMember(ctx context.Context, networkID, nodeID string) (*Member, error) {
	var m Member
	if err := c.do(ctx, http.MethodGet, "/network/"+networkID+"/member/"+nodeID, nil, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func (c *HTTPClient) UpdateMember(ctx context.Context, networkID, nodeID string, m Member) error {
	return c.do(ctx, http.MethodPost, "/network/"+networkID+"/member/"+nodeID, m, nil)
}

func (c *HTTPClient) GetNetwork(ctx context.Context, networkID string) (*NetworkConfig, error) {
	var cfg NetworkConfig
	if err := c.do(ctx, http.MethodGet, "/network/"+networkID, nil, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *HTTPClient) UpdateNetwork(ctx context.Context, networkID string, cfg NetworkConfig) error {
	return c.do(ctx, http.MethodPost, "/network/"+networkID, cfg, nil)
}
