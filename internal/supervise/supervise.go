// Package supervise writes and removes the systemd unit that runs zt-dnsd
// under supervision, ported from the original implementation's
// systemd-unit templating (supervise.rs). Deliberately thin: spec.md scopes
// its *design* out (§1, "platform supervisor installer... treated as
// external collaborator"), it exists only because §6 names the
// `supervise`/`unsupervise` CLI commands.
package supervise

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

const systemDir = "/lib/systemd/system"

const unitTemplate = `[Unit]
Description=zt-dnsd for network {{.Network}}
Requires=zerotier-one.service
After=zerotier-one.service

[Service]
Type=simple
ExecStart={{.Binpath}} start{{if .AuthtokenPath}} -s {{.AuthtokenPath}}{{end}}{{if .HostsPath}} -f {{.HostsPath}}{{end}}{{if .Domain}} -d {{.Domain}}{{end}}{{if .Wildcard}} -w{{end}}{{if .TokenPath}} -t {{.TokenPath}}{{end}} {{.Network}}
TimeoutStopSec=30

[Install]
WantedBy=default.target
`

var tmpl = template.Must(template.New("systemd").Parse(unitTemplate))

// Unit holds the values substituted into the systemd unit file. It mirrors
// the `start` subcommand's own flags so the installed unit reproduces the
// same invocation.
type Unit struct {
	Binpath       string
	Network       string
	Domain        string
	HostsPath     string
	AuthtokenPath string
	TokenPath     string
	Wildcard      bool
}

func (u Unit) serviceName() string { return fmt.Sprintf("zt-dnsd-%s.service", u.Network) }

func (u Unit) servicePath() string { return filepath.Join(systemDir, u.serviceName()) }

// Render returns the rendered unit file contents.
func (u Unit) Render() (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, u); err != nil {
		return "", fmt.Errorf("supervise: render unit: %w", err)
	}
	return buf.String(), nil
}

// Install writes the unit file to disk and returns its path.
func (u Unit) Install() (string, error) {
	if u.Network == "" {
		return "", fmt.Errorf("supervise: network id is required")
	}

	rendered, err := u.Render()
	if err != nil {
		return "", err
	}

	path := u.servicePath()
	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return "", fmt.Errorf("supervise: write %s: %w", path, err)
	}
	return path, nil
}

// Uninstall removes the unit file previously written by Install.
func (u Unit) Uninstall() error {
	if u.Network == "" {
		return fmt.Errorf("supervise: network id is required")
	}
	if err := os.Remove(u.servicePath()); err != nil {
		return fmt.Errorf("supervise: remove %s: %w", u.servicePath(), err)
	}
	return nil
}
