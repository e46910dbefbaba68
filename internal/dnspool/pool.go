// Package dnspool provides sync.Pool-backed dns.Msg reuse for the DNS
// listener's hot path, trimmed from the teacher's buffer-pool package to the
// one pool this sidecar actually exercises: a catalog lookup builds a small,
// short-lived *dns.Msg per query, and returning it to the pool after
// WriteMsg avoids a GC allocation per query under load.
package dnspool

import (
	"sync"

	"github.com/miekg/dns"
)

var messagePool = sync.Pool{
	New: func() interface{} {
		return new(dns.Msg)
	},
}

// GetMessage returns a zeroed *dns.Msg from the pool.
func GetMessage() *dns.Msg {
	return messagePool.Get().(*dns.Msg)
}

// PutMessage resets msg and returns it to the pool. Callers must not touch
// msg after calling PutMessage.
func PutMessage(msg *dns.Msg) {
	if msg == nil {
		return
	}

	msg.Id = 0
	msg.Response = false
	msg.Opcode = 0
	msg.Authoritative = false
	msg.Truncated = false
	msg.RecursionDesired = false
	msg.RecursionAvailable = false
	msg.Zero = false
	msg.AuthenticatedData = false
	msg.CheckingDisabled = false
	msg.Rcode = 0

	msg.Question = msg.Question[:0]
	msg.Answer = msg.Answer[:0]
	msg.Ns = msg.Ns[:0]
	msg.Extra = msg.Extra[:0]

	messagePool.Put(msg)
}
