// Package bootstrap implements the ten-step startup sequence that wires the
// rest of the core together, ported from the original implementation's
// Launcher.start (init.rs): resolve the domain, ask the local agent which
// CIDRs this node was assigned, build the zone catalog, register this node
// with the controller as the network's DNS server, then spawn the
// reconciler and one listener per assigned CIDR.
package bootstrap

import (
	"context"
	"fmt"
	"net"
	"time"

	"github.com/miekg/dns"

	"github.com/zerotier/zt-dnsd/internal/addressing"
	"github.com/zerotier/zt-dnsd/internal/catalog"
	"github.com/zerotier/zt-dnsd/internal/central"
	"github.com/zerotier/zt-dnsd/internal/one"
	"github.com/zerotier/zt-dnsd/internal/reconcile"
	"github.com/zerotier/zt-dnsd/internal/transport"
	"github.com/zerotier/zt-dnsd/internal/zlog"
)

// DefaultDomain is used when no -d/--domain flag is given.
const DefaultDomain = "home.arpa."

// ErrNoAssignedAddresses is returned when the local agent reports no
// assigned CIDRs for the network: nothing to serve, nothing to listen on.
var ErrNoAssignedAddresses = fmt.Errorf("bootstrap: no assigned addresses for this network; assign one in Central")

// Config holds everything the bootstrap sequence needs that isn't reachable
// through the One/Central clients themselves.
type Config struct {
	NetworkID string
	Domain    string // defaults to DefaultDomain
	HostsPath string
	Wildcard  bool

	TLSCertFile  string
	TLSKeyFile   string
	TLSChainFile string // optional intermediate chain for DoT
	DoTPort      string // e.g. "853"; defaults to "853"
	Port        string // DNS port; defaults to "53" (overridable for tests)

	UpdateInterval time.Duration // defaults to 30s, per spec.md §4.F
}

// Runtime is everything bootstrap spawned: the reconciler and one
// transport.Server per listen IP, plus the catalog they share.
type Runtime struct {
	Catalog     *catalog.Catalog
	Reconciler  *reconcile.Reconciler
	Listeners   []*transport.Server
}

// Start runs the ten-step bootstrap sequence and returns the running
// components. The caller owns their lifetime: call Shutdown to stop them.
func Start(ctx context.Context, cfg Config, oneClient one.Client, centralClient central.Client) (*Runtime, error) {
	// 1. Resolve and validate the domain.
	domain := cfg.Domain
	if domain == "" {
		domain = DefaultDomain
	}
	domain = dns.Fqdn(domain)
	if !dns.IsDomainName(domain) {
		return nil, fmt.Errorf("bootstrap: invalid domain %q", domain)
	}

	// 2+3. The local agent's own view of this network's assigned CIDRs.
	netStatus, err := oneClient.GetNetwork(ctx, cfg.NetworkID)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: get network %s from local agent: %w", cfg.NetworkID, err)
	}
	if len(netStatus.AssignedAddresses) == 0 {
		return nil, ErrNoAssignedAddresses
	}

	cat := catalog.New(domain)

	var listenIPs []net.IP
	for _, cidrStr := range netStatus.AssignedAddresses {
		ip, ipnet, err := net.ParseCIDR(cidrStr)
		if err != nil {
			zlog.Warnf("bootstrap: skipping unparseable assigned address %q: %v", cidrStr, err)
			continue
		}
		// 4. PTR zone per CIDR, keyed by its rounded reverse-SOA apex.
		if _, err := cat.AddPTRZone(ipnet); err != nil {
			zlog.Warnf("bootstrap: skipping PTR zone for %s: %v", cidrStr, err)
			continue
		}
		listenIPs = append(listenIPs, ip)
	}
	if len(listenIPs) == 0 {
		return nil, ErrNoAssignedAddresses
	}

	// 5. Forward zone is already built by catalog.New above (step re-ordered
	// to share the one catalog value across steps 4 and 5).

	// 6. RFC4193 PTR zone, if the network assigns it. 6PLANE is not
	// implemented; warn and move on, matching the original's behavior.
	netCfg, err := centralClient.GetNetwork(ctx, cfg.NetworkID)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: get network %s from controller: %w", cfg.NetworkID, err)
	}
	if netCfg.V6AssignMode.SixPlane {
		zlog.Warnf("bootstrap: 6PLANE PTR records are not supported, skipping")
	}
	if netCfg.V6AssignMode.RFC4193 {
		rfc4193Net, err := addressing.RFC4193Network(cfg.NetworkID)
		if err != nil {
			zlog.Warnf("bootstrap: cannot derive RFC4193 network for %s: %v", cfg.NetworkID, err)
		} else if _, err := cat.AddPTRZone(rfc4193Net); err != nil {
			zlog.Warnf("bootstrap: skipping RFC4193 PTR zone: %v", err)
		}
	}

	// 7+8. Register this node with Central as the network's DNS server.
	listenIPStrs := make([]string, len(listenIPs))
	for i, ip := range listenIPs {
		listenIPStrs[i] = ip.String()
	}
	update := *netCfg
	update.DNSDomain = domain
	update.DNSServers = listenIPStrs
	if err := centralClient.UpdateNetwork(ctx, cfg.NetworkID, update); err != nil {
		return nil, fmt.Errorf("bootstrap: register as DNS server for network %s: %w", cfg.NetworkID, err)
	}

	// 9. Spawn the reconciler.
	rec := reconcile.New(reconcile.Config{
		NetworkID: cfg.NetworkID,
		Apex:      domain,
		HostsPath: cfg.HostsPath,
		Wildcard:  cfg.Wildcard,
		Interval:  cfg.UpdateInterval,
	}, cat, centralClient)
	rec.Start(ctx)

	// 10. Spawn one listener per listen IP. A bind failure on :53 is fatal
	// (spec.md §4.I); tear down everything already started and fail.
	dotPort := cfg.DoTPort
	if dotPort == "" {
		dotPort = "853"
	}
	port := cfg.Port
	if port == "" {
		port = "53"
	}

	var listeners []*transport.Server
	for _, ip := range listenIPs {
		addr := net.JoinHostPort(ip.String(), port)
		srv := transport.NewServer(transport.Config{
			Addr:        addr,
			DoTAddr:     net.JoinHostPort(ip.String(), dotPort),
			CertFile:    cfg.TLSCertFile,
			KeyFile:     cfg.TLSKeyFile,
			ChainFile:   cfg.TLSChainFile,
			IdleTimeout: time.Second,
		}, cat)
		if err := srv.Start(); err != nil {
			rec.Stop()
			for _, s := range listeners {
				s.Stop()
			}
			return nil, fmt.Errorf("bootstrap: start listener on %s: %w", addr, err)
		}
		zlog.Infof("bootstrap: listening on %s for network %s", addr, cfg.NetworkID)
		listeners = append(listeners, srv)
	}

	return &Runtime{Catalog: cat, Reconciler: rec, Listeners: listeners}, nil
}

// Shutdown stops the reconciler and every listener bootstrap started.
func (r *Runtime) Shutdown() {
	r.Reconciler.Stop()
	for _, s := range r.Listeners {
		s.Stop()
	}
}
