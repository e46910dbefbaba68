// Package config loads the optional config file layer that mirrors the
// `start`/`supervise` CLI flags, the way cmd/dnsscience-grpc/config.go
// loads its YAML sidecar config. TOML is named in spec.md's file-formats
// list but no TOML library appears anywhere in the retrieved corpus, so
// only YAML and JSON are supported (see DESIGN.md).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// File mirrors every start/supervise flag (spec.md §5), loaded before flag
// overrides are applied. UpdateInterval is a duration string (e.g. "30s")
// rather than time.Duration so it round-trips through YAML/JSON without a
// custom (Un)marshaler.
type File struct {
	Domain         string `yaml:"domain" json:"domain"`
	HostsPath      string `yaml:"hosts_file" json:"hosts_file"`
	AuthtokenPath  string `yaml:"authtoken_path" json:"authtoken_path"`
	TokenPath      string `yaml:"token_path" json:"token_path"`
	Wildcard       bool   `yaml:"wildcard" json:"wildcard"`
	TLSCert        string `yaml:"tls_cert" json:"tls_cert"`
	TLSKey         string `yaml:"tls_key" json:"tls_key"`
	ChainCert      string `yaml:"chain_cert" json:"chain_cert"`
	UpdateInterval string `yaml:"update_interval" json:"update_interval"`
}

// Interval parses UpdateInterval, returning fallback if it is unset.
func (f *File) Interval(fallback time.Duration) (time.Duration, error) {
	if f.UpdateInterval == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(f.UpdateInterval)
	if err != nil {
		return 0, fmt.Errorf("config: invalid update_interval %q: %w", f.UpdateInterval, err)
	}
	return d, nil
}

// Load reads path and unmarshals it as YAML or JSON, chosen by file
// extension (.yaml/.yml → YAML, .json → JSON, anything else is tried as
// YAML since YAML is a superset of JSON for this struct's shape).
func Load(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var f File
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		if err := json.Unmarshal(b, &f); err != nil {
			return nil, fmt.Errorf("config: parse %s as json: %w", path, err)
		}
	default:
		if err := yaml.Unmarshal(b, &f); err != nil {
			return nil, fmt.Errorf("config: parse %s as yaml: %w", path, err)
		}
	}
	return &f, nil
}
