// Package hostsfile parses an /etc/hosts-style file into an ordered map of
// IP to FQDNs, for the reconciler to overlay onto the authoritative zones
// each cycle.
package hostsfile

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"strings"

	"github.com/zerotier/zt-dnsd/internal/dnsutil"
	"github.com/zerotier/zt-dnsd/internal/zlog"
)

// Map is an ordered IP -> FQDNs mapping. A later line for the same IP
// appends to, rather than replaces, the existing name list.
type Map struct {
	order []string
	names map[string][]string
}

func newMap() *Map {
	return &Map{names: make(map[string][]string)}
}

// IPs returns the IPs in the order they were first seen.
func (m *Map) IPs() []string {
	return append([]string(nil), m.order...)
}

// Names returns the FQDNs recorded for ip, in file order.
func (m *Map) Names(ip string) []string {
	return m.names[ip]
}

func (m *Map) add(ip, fqdn string) {
	if _, ok := m.names[ip]; !ok {
		m.order = append(m.order, ip)
	}
	m.names[ip] = append(m.names[ip], fqdn)
}

// Parse reads path as an /etc/hosts-style file: "<ip> <name> [<name> ...]
// [# comment]" per line, blank lines skipped, a '#' anywhere after the IP
// terminating the record. Invalid IPs are logged and the line skipped;
// names that fail normalization are logged and dropped individually,
// leaving the rest of the line's names intact. An empty path returns an
// empty Map with no error.
func Parse(path, apex string) (*Map, error) {
	out := newMap()
	if path == "" {
		return out, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("hostsfile: open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(fields) < 2 {
			continue
		}

		ip := net.ParseIP(fields[0])
		if ip == nil {
			zlog.Warnf("hostsfile: skipping invalid IP %q", fields[0])
			continue
		}

		for _, raw := range fields[1:] {
			fqdn, err := dnsutil.Normalize(raw, apex)
			if err != nil {
				zlog.Warnf("hostsfile: dropping invalid name %q for %s: %v", raw, ip, err)
				continue
			}
			out.add(ip.String(), fqdn)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("hostsfile: read %s: %w", path, err)
	}

	return out, nil
}
