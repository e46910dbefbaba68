package central

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(srv *httptest.Server, token string) *HTTPClient {
	return &HTTPClient{baseURL: srv.URL, token: token, httpClient: srv.Client()}
}

func TestHTTPClientGetNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/network/8056c2e21c000001", r.URL.Path)
		assert.Equal(t, "Bearer sekrit", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(NetworkConfig{ID: "8056c2e21c000001", Name: "home"})
	}))
	defer srv.Close()

	cfg, err := testClient(srv, "sekrit").GetNetwork(context.Background(), "8056c2e21c000001")
	require.NoError(t, err)
	assert.Equal(t, "home", cfg.Name)
}

func TestHTTPClientUpdateNetwork(t *testing.T) {
	var received NetworkConfig
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
	}))
	defer srv.Close()

	err := testClient(srv, "sekrit").UpdateNetwork(context.Background(), "net1", NetworkConfig{DNSDomain: "home.arpa."})
	require.NoError(t, err)
	assert.Equal(t, "home.arpa.", received.DNSDomain)
}

func TestHTTPClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := testClient(srv, "sekrit").GetNetwork(context.Background(), "net1")
	assert.Error(t, err)
}

func TestHTTPClientListAndGetMember(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/network/net1/member":
			json.NewEncoder(w).Encode([]Member{{NodeID: "abc", Authorized: true}})
		case "/network/net1/member/abc":
			json.NewEncoder(w).Encode(Member{NodeID: "abc", Authorized: true})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := testClient(srv, "sekrit")
	members, err := c.ListMembers(context.Background(), "net1")
	require.NoError(t, err)
	require.Len(t, members, 1)

	m, err := c.GetMember(context.Background(), "net1", "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", m.NodeID)
}
