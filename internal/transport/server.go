// Package transport binds the DNS listener sockets (UDP, TCP, and
// optionally DoT) and answers queries out of a catalog.Catalog, replacing
// the teacher's recursive/ACL/RRL/RPZ pipeline with the single longest-
// suffix catalog lookup spec.md §4.I calls for.
package transport

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/miekg/dns"

	"github.com/zerotier/zt-dnsd/internal/catalog"
	"github.com/zerotier/zt-dnsd/internal/dnspool"
	"github.com/zerotier/zt-dnsd/internal/metrics"
	"github.com/zerotier/zt-dnsd/internal/zlog"
)

// Config holds one listener's bind parameters. One Config exists per
// assigned CIDR's listen IP (spec.md §4.I/§4.J step 10).
type Config struct {
	Addr string // host:port for UDP/TCP, e.g. "172.16.240.1:53"

	// DoT is bound in addition to UDP/TCP when both CertFile and KeyFile
	// are set. A DoT bind failure is logged and skipped; it never aborts
	// the listener.
	DoTAddr   string
	CertFile  string
	KeyFile   string
	ChainFile string

	// IdleTimeout bounds how long a TCP (including DoT) connection may sit
	// idle between queries before the server closes it. Defaults to 1s.
	// The one value applies to both plain TCP and DoT; there is no
	// separate DoT timeout.
	IdleTimeout time.Duration
}

// Server binds one listen IP's UDP, TCP, and (optionally) DoT sockets and
// answers queries out of a shared catalog.Catalog.
type Server struct {
	cfg     Config
	catalog *catalog.Catalog

	mu      sync.Mutex
	udp     *dns.Server
	tcp     *dns.Server
	dot     *DoTListener
	running bool

	queries  atomic.Uint64
	answers  atomic.Uint64
	errors   atomic.Uint64
	nxdomain atomic.Uint64
}

// NewServer builds a Server bound to cat. Start must be called to bind
// sockets.
func NewServer(cfg Config, cat *catalog.Catalog) *Server {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = time.Second
	}
	return &Server{cfg: cfg, catalog: cat}
}

// Start binds UDP:53 and TCP:53 (per cfg.Addr) and, if a cert/key pair is
// configured, TCP:853 under DoT. A UDP/TCP bind failure is returned to the
// caller (spec.md: fatal, aborts bootstrap); a DoT bind failure is logged
// and treated as non-fatal.
func (s *Server) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("transport: server already running")
	}

	handler := dns.HandlerFunc(s.serveDNS)

	s.udp = &dns.Server{Addr: s.cfg.Addr, Net: "udp", Handler: handler}
	udpStarted := make(chan error, 1)
	s.udp.NotifyStartedFunc = func() { udpStarted <- nil }
	go func() {
		if err := s.udp.ListenAndServe(); err != nil {
			select {
			case udpStarted <- err:
			default:
			}
		}
	}()
	if err := <-udpStarted; err != nil {
		return fmt.Errorf("transport: bind udp %s: %w", s.cfg.Addr, err)
	}

	s.tcp = &dns.Server{
		Addr:        s.cfg.Addr,
		Net:         "tcp",
		Handler:     handler,
		IdleTimeout: func() time.Duration { return s.cfg.IdleTimeout },
	}
	tcpStarted := make(chan error, 1)
	s.tcp.NotifyStartedFunc = func() { tcpStarted <- nil }
	go func() {
		if err := s.tcp.ListenAndServe(); err != nil {
			select {
			case tcpStarted <- err:
			default:
			}
		}
	}()
	if err := <-tcpStarted; err != nil {
		s.udp.Shutdown()
		return fmt.Errorf("transport: bind tcp %s: %w", s.cfg.Addr, err)
	}

	if s.cfg.CertFile != "" && s.cfg.KeyFile != "" {
		dot, err := NewDoTListener(DoTConfig{
			Address:   s.cfg.DoTAddr,
			CertFile:  s.cfg.CertFile,
			KeyFile:   s.cfg.KeyFile,
			ChainFile: s.cfg.ChainFile,
			Timeout:   s.cfg.IdleTimeout,
		}, HandlerFunc(s.handleDoT))
		if err != nil {
			zlog.Warnf("transport: dot disabled for %s: %v", s.cfg.Addr, err)
		} else if err := dot.Start(); err != nil {
			zlog.Warnf("transport: dot bind %s failed: %v", s.cfg.DoTAddr, err)
		} else {
			s.dot = dot
		}
	}

	s.running = true
	return nil
}

// Stop closes every socket this Server bound.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}

	if s.udp != nil {
		s.udp.Shutdown()
	}
	if s.tcp != nil {
		s.tcp.Shutdown()
	}
	if s.dot != nil {
		s.dot.Stop()
	}

	s.running = false
	return nil
}

// Stats is a snapshot of this listener's query counters.
type Stats struct {
	Queries  uint64
	Answers  uint64
	Errors   uint64
	NXDOMAIN uint64
}

// Stats returns the current counters.
func (s *Server) Stats() Stats {
	return Stats{
		Queries:  s.queries.Load(),
		Answers:  s.answers.Load(),
		Errors:   s.errors.Load(),
		NXDOMAIN: s.nxdomain.Load(),
	}
}

func (s *Server) serveDNS(w dns.ResponseWriter, req *dns.Msg) {
	transport := "udp"
	if _, ok := w.RemoteAddr().(*net.TCPAddr); ok {
		transport = "tcp"
	}
	resp := s.answer(req, transport)
	w.WriteMsg(resp)
	dnspool.PutMessage(resp)
}

func (s *Server) handleDoT(ctx context.Context, req *dns.Msg) (*dns.Msg, error) {
	return s.answer(req, "dot"), nil
}

// answer resolves req against the catalog: exact match, NXDOMAIN with the
// covering zone's SOA, or REFUSED when no zone covers the name at all.
func (s *Server) answer(req *dns.Msg, transport string) *dns.Msg {
	s.queries.Add(1)
	metrics.Queries.WithLabelValues(transport).Inc()

	m := dnspool.GetMessage()
	m.SetReply(req)
	m.Authoritative = true
	m.RecursionAvailable = false

	if len(req.Question) == 0 {
		m.Rcode = dns.RcodeFormatError
		s.errors.Add(1)
		metrics.Errors.Inc()
		return m
	}

	q := req.Question[0]
	z := s.catalog.Lookup(q.Name)
	if z == nil {
		m.Rcode = dns.RcodeRefused
		s.errors.Add(1)
		metrics.Answers.WithLabelValues("REFUSED").Inc()
		return m
	}

	m.Answer = z.GetRecords(q.Name, q.Qtype)
	if len(m.Answer) == 0 {
		if !z.HasAnyRecords(q.Name) {
			m.Rcode = dns.RcodeNameError
			s.nxdomain.Add(1)
			metrics.NXDOMAIN.Inc()
		}
		m.Ns = []dns.RR{z.SOA()}
	}

	s.answers.Add(1)
	metrics.Answers.WithLabelValues(dns.RcodeToString[m.Rcode]).Inc()
	return m
}
