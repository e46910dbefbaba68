package one

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPClientGetStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/status", r.URL.Path)
		assert.Equal(t, "sekrit", r.Header.Get("X-ZT1-Auth"))
		json.NewEncoder(w).Encode(statusWire{Address: "deadbeef01"})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "sekrit")
	c.httpClient = srv.Client()

	s, err := c.GetStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "deadbeef01", s.PublicIdentity)
}

func TestHTTPClientGetNetwork(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(networkWire{ID: "net1", AssignedAddresses: []string{"10.0.0.4/24"}})
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "sekrit")
	c.httpClient = srv.Client()

	n, err := c.GetNetwork(context.Background(), "net1")
	require.NoError(t, err)
	assert.Equal(t, []string{"10.0.0.4/24"}, n.AssignedAddresses)
}

func TestHTTPClientUpdateNetwork(t *testing.T) {
	var received map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&received))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "sekrit")
	c.httpClient = srv.Client()

	err := c.UpdateNetwork(context.Background(), "net1", "home.arpa.", []string{"10.0.0.4"})
	require.NoError(t, err)
	dns := received["dns"].(map[string]interface{})
	assert.Equal(t, "home.arpa.", dns["domain"])
}

func TestHTTPClientErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "sekrit")
	c.httpClient = srv.Client()

	_, err := c.GetStatus(context.Background())
	assert.Error(t, err)
}
