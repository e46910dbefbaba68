// Package zone implements the in-memory authoritative zone store: an
// apex-rooted set of RR-sets with SOA-serial progression and a
// shared-reader/single-writer locking discipline, so the DNS listener can
// read concurrently with the reconciler's periodic rewrites.
package zone

import (
	"fmt"
	"sync"

	"github.com/miekg/dns"
)

const (
	soaRname   = "administrator.zerotier."
	soaRefresh = 60
	soaRetry   = 60
	soaExpire  = 1800
	soaMinTTL  = 5
)

// Zone is an authoritative RR-set store rooted at Apex. All reads and
// writes go through RLock/Lock so a reconciler rewrite never exposes a
// half-applied zone to a concurrent query.
type Zone struct {
	mu sync.RWMutex

	Apex string

	soa *dns.SOA
	// records maps owner -> rrtype -> RRs, all owned by this zone.
	records map[string]map[uint16][]dns.RR
}

// New creates an empty zone at apex, installing an SOA (serial 1) and an
// apex NS pointing at the apex itself.
func New(apex string) *Zone {
	apex = dns.Fqdn(apex)

	z := &Zone{
		Apex:    apex,
		records: make(map[string]map[uint16][]dns.RR),
	}

	z.soa = &dns.SOA{
		Hdr: dns.RR_Header{
			Name:   apex,
			Rrtype: dns.TypeSOA,
			Class:  dns.ClassINET,
			Ttl:    soaMinTTL,
		},
		Ns:      apex,
		Mbox:    soaRname,
		Serial:  1,
		Refresh: soaRefresh,
		Retry:   soaRetry,
		Expire:  soaExpire,
		Minttl:  soaMinTTL,
	}
	z.records[apex] = map[uint16][]dns.RR{dns.TypeSOA: {z.soa}}

	ns := &dns.NS{
		Hdr: dns.RR_Header{Name: apex, Rrtype: dns.TypeNS, Class: dns.ClassINET, Ttl: soaMinTTL},
		Ns:  apex,
	}
	z.records[apex][dns.TypeNS] = []dns.RR{ns}

	return z
}

// Serial returns the zone's current SOA serial.
func (z *Zone) Serial() uint32 {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return z.soa.Serial
}

// SOA returns a copy of the zone's current SOA record.
func (z *Zone) SOA() *dns.SOA {
	z.mu.RLock()
	defer z.mu.RUnlock()
	return dns.Copy(z.soa).(*dns.SOA)
}

// Upsert installs rr into the zone, appending it to the (owner, type)
// RR-set unless an identical record (same owner, type, and rdata string)
// is already present, and advances the zone serial to max(current,
// serial). rr's owner must be this zone's apex or a subdomain of it.
func (z *Zone) Upsert(rr dns.RR, serial uint32) error {
	if rr == nil {
		return fmt.Errorf("zone: cannot upsert nil record")
	}

	owner := dns.Fqdn(rr.Header().Name)
	if !dns.IsSubDomain(z.Apex, owner) {
		return fmt.Errorf("zone: owner %s not in zone %s", owner, z.Apex)
	}

	z.mu.Lock()
	defer z.mu.Unlock()

	typeMap := z.records[owner]
	if typeMap == nil {
		typeMap = make(map[uint16][]dns.RR)
		z.records[owner] = typeMap
	}

	rrtype := rr.Header().Rrtype
	existing := typeMap[rrtype]
	rdata := rrRdataString(rr)
	for _, have := range existing {
		if rrRdataString(have) == rdata {
			if serial > z.soa.Serial {
				z.soa.Serial = serial
			}
			return nil
		}
	}
	typeMap[rrtype] = append(existing, rr)

	if serial > z.soa.Serial {
		z.soa.Serial = serial
	}
	return nil
}

// ClearNonApex removes every record whose owner is not the zone apex,
// preserving the apex's SOA and NS records. Callers must bump the serial
// on the next Upsert.
func (z *Zone) ClearNonApex() {
	z.mu.Lock()
	defer z.mu.Unlock()

	apexRecords := z.records[z.Apex]
	z.records = make(map[string]map[uint16][]dns.RR)
	z.records[z.Apex] = apexRecords
}

// GetRecords returns the RRs for (owner, rrtype), falling back to the
// nearest covering wildcard ("*.<suffix>") if no exact match exists. The
// returned records are cloned and their owner rewritten to the queried
// name when served from a wildcard.
func (z *Zone) GetRecords(owner string, rrtype uint16) []dns.RR {
	owner = dns.Fqdn(owner)

	z.mu.RLock()
	defer z.mu.RUnlock()

	if typeMap, ok := z.records[owner]; ok {
		if records, ok := typeMap[rrtype]; ok {
			return records
		}
	}

	labels := dns.SplitDomainName(owner)
	for i := 0; i < len(labels); i++ {
		wildcard := "*." + joinLabels(labels[i+1:])
		typeMap, ok := z.records[wildcard]
		if !ok {
			continue
		}
		records, ok := typeMap[rrtype]
		if !ok {
			continue
		}
		result := make([]dns.RR, len(records))
		for j, rr := range records {
			clone := dns.Copy(rr)
			clone.Header().Name = owner
			result[j] = clone
		}
		return result
	}

	return nil
}

// HasAnyRecords reports whether owner has any RR-set at all, exact match
// only (no wildcard fallback) — used to distinguish NXDOMAIN from a
// NOERROR/empty answer for an unsupported type at a known name.
func (z *Zone) HasAnyRecords(owner string) bool {
	owner = dns.Fqdn(owner)
	z.mu.RLock()
	defer z.mu.RUnlock()
	typeMap, ok := z.records[owner]
	return ok && len(typeMap) > 0
}

// GetNameservers returns the zone's apex NS records.
func (z *Zone) GetNameservers() []*dns.NS {
	records := z.GetRecords(z.Apex, dns.TypeNS)
	ns := make([]*dns.NS, 0, len(records))
	for _, rr := range records {
		if n, ok := rr.(*dns.NS); ok {
			ns = append(ns, n)
		}
	}
	return ns
}

func rrRdataString(rr dns.RR) string {
	full := rr.String()
	hdr := rr.Header().String()
	return full[len(hdr):]
}

// RdataString returns rr's rdata portion as text, with the header
// stripped — used by callers (e.g. the reconciler) that need to compare
// records for exact-duplicate suppression across projection sources.
func RdataString(rr dns.RR) string {
	return rrRdataString(rr)
}

func joinLabels(labels []string) string {
	if len(labels) == 0 {
		return "."
	}
	result := ""
	for _, label := range labels {
		result += label + "."
	}
	return result
}
