// Package catalog holds the single forward zone and the zero-or-more
// per-CIDR PTR zones that make up the DNS listener's authoritative view,
// and implements the longest-suffix apex match used to dispatch an
// incoming query to the right zone.
package catalog

import (
	"fmt"
	"net"
	"strings"

	"github.com/miekg/dns"

	"github.com/zerotier/zt-dnsd/internal/zone"
)

// Catalog maps zone apex -> *zone.Zone. It is built once at bootstrap
// (one forward zone, one PTR zone per assigned CIDR) and is immutable
// after that: only the Zones it contains are mutated, by the reconciler.
type Catalog struct {
	forward *zone.Zone
	ptr     map[string]*zone.Zone // apex -> zone
}

// New builds a catalog around the forward zone at apex. PTR zones are
// added afterward via AddPTRZone, one per assigned CIDR.
func New(apex string) *Catalog {
	return &Catalog{
		forward: zone.New(apex),
		ptr:     make(map[string]*zone.Zone),
	}
}

// Forward returns the single forward zone.
func (c *Catalog) Forward() *zone.Zone {
	return c.forward
}

// AddPTRZone registers a PTR zone for cidr, keyed by its reverse-SOA
// apex, and returns it. Zones are keyed by apex only, not by CIDR: if a
// zone for the same apex is already registered, that zone is returned and
// no new one is created, so CIDRs that round to one apex share a zone.
func (c *Catalog) AddPTRZone(cidr *net.IPNet) (*zone.Zone, error) {
	apex, err := ReverseSOA(cidr)
	if err != nil {
		return nil, err
	}
	if z, ok := c.ptr[apex]; ok {
		return z, nil
	}
	z := zone.New(apex)
	c.ptr[apex] = z
	return z, nil
}

// PTRZoneFor returns the PTR zone covering ip, if one was registered for
// a CIDR containing it.
func (c *Catalog) PTRZoneFor(ip net.IP) *zone.Zone {
	for _, z := range c.ptr {
		apex := z.Apex
		if reverseNameContainsIP(apex, ip) {
			return z
		}
	}
	return nil
}

// PTRZones returns all registered PTR zones.
func (c *Catalog) PTRZones() []*zone.Zone {
	zones := make([]*zone.Zone, 0, len(c.ptr))
	for _, z := range c.ptr {
		zones = append(zones, z)
	}
	return zones
}

// Lookup dispatches qname to the zone whose apex is the longest suffix
// match (forward or any PTR zone), mirroring an authoritative server
// picking the most specific of several served zones. Returns nil if no
// zone covers qname.
func (c *Catalog) Lookup(qname string) *zone.Zone {
	qname = dns.Fqdn(qname)

	var best *zone.Zone
	bestLen := -1

	consider := func(z *zone.Zone) {
		if dns.IsSubDomain(z.Apex, qname) && len(z.Apex) > bestLen {
			best = z
			bestLen = len(z.Apex)
		}
	}

	consider(c.forward)
	for _, z := range c.ptr {
		consider(z)
	}

	return best
}

// ReverseSOA derives the reverse-SOA apex for cidr: for IPv4, the first
// floor(prefixLen/8) most-significant octets reversed, then
// "in-addr.arpa."; for IPv6, the first floor(prefixLen/4) nibbles
// reversed, then "ip6.arpa.".
func ReverseSOA(cidr *net.IPNet) (string, error) {
	ones, bits := cidr.Mask.Size()
	switch bits {
	case 32:
		ip4 := cidr.IP.To4()
		if ip4 == nil {
			return "", fmt.Errorf("catalog: not a valid IPv4 CIDR: %v", cidr)
		}
		octets := ones / 8
		var parts []string
		for i := octets - 1; i >= 0; i-- {
			parts = append(parts, fmt.Sprintf("%d", ip4[i]))
		}
		parts = append(parts, "in-addr", "arpa")
		return strings.Join(parts, ".") + ".", nil

	case 128:
		ip6 := cidr.IP.To16()
		if ip6 == nil {
			return "", fmt.Errorf("catalog: not a valid IPv6 CIDR: %v", cidr)
		}
		nibbles := ones / 4
		hex := fmt.Sprintf("%032x", ip6)
		var parts []string
		for i := nibbles - 1; i >= 0; i-- {
			parts = append(parts, string(hex[i]))
		}
		parts = append(parts, "ip6", "arpa")
		return strings.Join(parts, ".") + ".", nil

	default:
		return "", fmt.Errorf("catalog: unsupported address length %d bits", bits)
	}
}

// PTROwnerName returns the full reverse-DNS owner name for ip — all four
// IPv4 octets, or all 32 IPv6 nibbles, reversed — regardless of the
// covering PTR zone's CIDR prefix. This is always a subdomain of that
// zone's (possibly shorter) reverse-SOA apex.
func PTROwnerName(ip net.IP) (string, error) {
	return dns.ReverseAddr(ip.String())
}

// reverseNameContainsIP reports whether apex (a reverse-SOA name) is a
// suffix match for ip — i.e. ip's own reverse-SOA name at the same
// prefix length equals apex.
func reverseNameContainsIP(apex string, ip net.IP) bool {
	labels := dns.SplitDomainName(apex)
	if len(labels) == 0 {
		return false
	}
	if strings.HasSuffix(apex, "in-addr.arpa.") {
		ip4 := ip.To4()
		if ip4 == nil {
			return false
		}
		octets := len(labels) - 2 // drop "in-addr","arpa"
		if octets < 0 || octets > 4 {
			return false
		}
		for i := 0; i < octets; i++ {
			if labels[i] != fmt.Sprintf("%d", ip4[octets-1-i]) {
				return false
			}
		}
		return true
	}
	if strings.HasSuffix(apex, "ip6.arpa.") {
		ip6 := ip.To16()
		if ip6 == nil {
			return false
		}
		nibbles := len(labels) - 2 // drop "ip6","arpa"
		if nibbles < 0 || nibbles > 32 {
			return false
		}
		hex := fmt.Sprintf("%032x", ip6)
		for i := 0; i < nibbles; i++ {
			if labels[i] != string(hex[nibbles-1-i]) {
				return false
			}
		}
		return true
	}
	return false
}
