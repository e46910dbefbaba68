// Package reconcile implements the periodic cycle that projects the
// member roster and an optional hosts-file onto the zone catalog: the
// centerpiece of the sidecar, tying together the name normalizer, the
// hosts-file reader, and the zone store.
package reconcile

import (
	"context"
	"fmt"
	"net"
	"sort"
	"sync"
	"time"

	"github.com/miekg/dns"

	"github.com/zerotier/zt-dnsd/internal/catalog"
	"github.com/zerotier/zt-dnsd/internal/central"
	"github.com/zerotier/zt-dnsd/internal/dnsutil"
	"github.com/zerotier/zt-dnsd/internal/hostsfile"
	"github.com/zerotier/zt-dnsd/internal/metrics"
	"github.com/zerotier/zt-dnsd/internal/zlog"
	"github.com/zerotier/zt-dnsd/internal/zone"
)

const defaultTTL = 60

// Config holds the reconciler's per-cycle parameters.
type Config struct {
	NetworkID string
	Apex      string // forward-zone apex, e.g. "home.arpa."
	HostsPath string // optional; re-read every cycle
	Wildcard  bool
	Interval  time.Duration // default 30s
}

// Reconciler periodically projects (members, hosts-file, wildcard flag)
// onto the zones held by a catalog.Catalog.
type Reconciler struct {
	cfg     Config
	catalog *catalog.Catalog
	central central.Client

	done chan struct{}
	wg   sync.WaitGroup
}

// New builds a Reconciler. It does not start the polling loop; call Start.
func New(cfg Config, cat *catalog.Catalog, cc central.Client) *Reconciler {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	return &Reconciler{
		cfg:     cfg,
		catalog: cat,
		central: cc,
		done:    make(chan struct{}),
	}
}

// Start runs one cycle immediately and then continues on a ticker until
// Stop is called.
func (r *Reconciler) Start(ctx context.Context) {
	r.Cycle(ctx)
	r.wg.Add(1)
	go r.poll(ctx)
}

func (r *Reconciler) poll(ctx context.Context) {
	defer r.wg.Done()
	t := time.NewTicker(r.cfg.Interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			r.Cycle(ctx)
		case <-r.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Stop halts the polling loop and waits for the in-flight cycle, if any,
// to finish.
func (r *Reconciler) Stop() {
	close(r.done)
	r.wg.Wait()
}

// emission pairs a target zone with a record to commit into it.
type emission struct {
	zone         *zone.Zone
	rr           dns.RR
	wildcardable bool
}

// Cycle runs exactly one reconciliation pass. It never returns an error
// to the caller: every failure mode described by the cycle's failure
// policy is handled by logging and degrading gracefully.
func (r *Reconciler) Cycle(ctx context.Context) {
	start := time.Now()
	defer func() { metrics.ReconcileDuration.Observe(time.Since(start).Seconds()) }()

	members, err := r.central.ListMembers(ctx, r.cfg.NetworkID)
	if err != nil {
		zlog.Errorf("reconcile: fetch roster for network %s: %v", r.cfg.NetworkID, err)
		metrics.ReconcileCycles.WithLabelValues("roster_error").Inc()
		return
	}
	members = central.AuthorizedWithAddresses(members)
	// Deterministic PTR tie-break (spec.md §9): sort node-ID ascending so
	// "last member wins" on a shared IP always picks the same winner.
	sort.Slice(members, func(i, j int) bool { return members[i].NodeID < members[j].NodeID })

	hosts, err := hostsfile.Parse(r.cfg.HostsPath, r.cfg.Apex)
	if err != nil {
		zlog.Warnf("reconcile: hosts-file read failed, skipping overlay: %v", err)
		hosts, _ = hostsfile.Parse("", r.cfg.Apex)
	}

	var emissions []emission
	seen := make(map[string]bool)
	ptrByOwner := make(map[string]emission)

	emit := func(z *zone.Zone, rr dns.RR, wildcardable bool) {
		key := fmt.Sprintf("%s|%s|%d|%s", z.Apex, rr.Header().Name, rr.Header().Rrtype, zone.RdataString(rr))
		if seen[key] {
			return
		}
		seen[key] = true
		emissions = append(emissions, emission{zone: z, rr: rr, wildcardable: wildcardable})
	}

	// setPTR records the PTR for ip, last writer wins. When two different
	// sources (members sharing an IP, or a member vs. the hosts-file)
	// target the same owner with different rdata, this is a collision:
	// keep the contract (last wins) but log it (spec.md §9).
	setPTR := func(ip net.IP, target, source string) {
		owner, err := catalog.PTROwnerName(ip)
		if err != nil {
			zlog.Warnf("reconcile: cannot derive PTR owner for %s: %v", ip, err)
			return
		}
		z := r.catalog.PTRZoneFor(ip)
		if z == nil {
			return
		}
		rr := &dns.PTR{
			Hdr: dns.RR_Header{Name: owner, Rrtype: dns.TypePTR, Class: dns.ClassINET, Ttl: defaultTTL},
			Ptr: target,
		}
		key := z.Apex + "|" + owner
		if prev, ok := ptrByOwner[key]; ok {
			if prevPTR, ok := prev.rr.(*dns.PTR); ok && prevPTR.Ptr != target {
				zlog.Warnf("reconcile: PTR collision for %s: %s replaces %q with %q (source %s)", ip, owner, prevPTR.Ptr, target, source)
			}
		}
		ptrByOwner[key] = emission{zone: z, rr: rr}
	}

	forward := r.catalog.Forward()

	for _, m := range members {
		canonical := dnsutil.CanonicalMemberName(m.NodeID, r.cfg.Apex)

		var named string
		if m.Name != "" {
			n, err := dnsutil.Normalize(m.Name, r.cfg.Apex)
			if err != nil {
				zlog.Warnf("reconcile: skipping invalid name %q for member %s: %v", m.Name, m.NodeID, err)
			} else {
				named = n
			}
		}

		addrs := append(append([]string{}, m.IPv4...), m.IPv6...)
		for _, addrStr := range addrs {
			ip := net.ParseIP(addrStr)
			if ip == nil {
				zlog.Warnf("reconcile: member %s has unparseable address %q, skipping", m.NodeID, addrStr)
				continue
			}

			rrtype := uint16(dns.TypeA)
			if ip.To4() == nil {
				rrtype = dns.TypeAAAA
			}

			emit(forward, newAddrRR(canonical, ip, rrtype), true)
			if named != "" {
				emit(forward, newAddrRR(named, ip, rrtype), true)
			}

			ptrTarget := canonical
			if named != "" {
				ptrTarget = named
			}
			setPTR(ip, ptrTarget, "member "+m.NodeID)
		}
	}

	for _, ipStr := range hosts.IPs() {
		ip := net.ParseIP(ipStr)
		if ip == nil {
			continue
		}
		names := hosts.Names(ipStr)
		if len(names) == 0 {
			continue
		}

		rrtype := uint16(dns.TypeA)
		if ip.To4() == nil {
			rrtype = dns.TypeAAAA
		}

		for _, fqdn := range names {
			emit(forward, newAddrRR(fqdn, ip, rrtype), true)
		}
		setPTR(ip, names[0], "hosts-file")
	}

	if r.cfg.Wildcard {
		for _, e := range append([]emission(nil), emissions...) {
			if !e.wildcardable {
				continue
			}
			wc := dns.Copy(e.rr)
			wc.Header().Name = dnsutil.Wildcard(e.rr.Header().Name)
			emit(e.zone, wc, false)
		}
	}

	for _, e := range ptrByOwner {
		emissions = append(emissions, e)
	}

	r.commit(emissions)
	metrics.ReconcileCycles.WithLabelValues("ok").Inc()
	metrics.RecordsPublished.Observe(float64(len(emissions)))
}

func (r *Reconciler) commit(emissions []emission) {
	byZone := make(map[*zone.Zone][]dns.RR)
	zones := append([]*zone.Zone{r.catalog.Forward()}, r.catalog.PTRZones()...)
	for _, z := range zones {
		byZone[z] = nil
	}
	for _, e := range emissions {
		byZone[e.zone] = append(byZone[e.zone], e.rr)
	}

	for _, z := range zones {
		z.ClearNonApex()
		serial := z.Serial()
		for _, rr := range byZone[z] {
			serial++
			if err := z.Upsert(rr, serial); err != nil {
				zlog.Warnf("reconcile: upsert into %s: %v", z.Apex, err)
			}
		}
	}
}

func newAddrRR(owner string, ip net.IP, rrtype uint16) dns.RR {
	hdr := dns.RR_Header{Name: owner, Rrtype: rrtype, Class: dns.ClassINET, Ttl: defaultTTL}
	if rrtype == dns.TypeAAAA {
		return &dns.AAAA{Hdr: hdr, AAAA: ip}
	}
	return &dns.A{Hdr: hdr, A: ip}
}
