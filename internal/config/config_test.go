package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zt-dnsd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
domain: home.arpa.
hosts_file: /etc/zt-dnsd/hosts
wildcard: true
update_interval: 45s
`), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "home.arpa.", f.Domain)
	assert.Equal(t, "/etc/zt-dnsd/hosts", f.HostsPath)
	assert.True(t, f.Wildcard)

	d, err := f.Interval(30 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, d)
}

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "zt-dnsd.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"domain":"home.arpa.","wildcard":false}`), 0o644))

	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "home.arpa.", f.Domain)
	assert.False(t, f.Wildcard)
}

func TestIntervalDefaultsWhenUnset(t *testing.T) {
	f := &File{}
	d, err := f.Interval(30 * time.Second)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, d)
}

func TestIntervalRejectsInvalid(t *testing.T) {
	f := &File{UpdateInterval: "not-a-duration"}
	_, err := f.Interval(30 * time.Second)
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/zt-dnsd.yaml")
	assert.Error(t, err)
}
