// Package dnsutil turns arbitrary member-supplied labels into RFC-compliant,
// fully-qualified DNS names, and derives the handful of synthetic names the
// reconciler needs (canonical member hostnames, wildcard owners).
package dnsutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/miekg/dns"
)

// ErrEmptyLabel is returned when a raw label normalizes to nothing usable.
var ErrEmptyLabel = errors.New("dnsutil: label is empty after normalization")

// ErrInvalidLabel is returned when the cleaned label still isn't a valid DNS name.
var ErrInvalidLabel = errors.New("dnsutil: label is not a valid DNS name")

var whitespaceRun = func(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// Normalize maps a raw, possibly messy label to a fully-qualified name under
// apex. It trims surrounding whitespace, collapses internal whitespace runs
// to a single '-', strips anything that isn't a letter, digit, '.', '-', or
// '_', lowercases the result, and rejects it if it ends up empty, ".", or
// still ends in a dot before the apex is appended.
func Normalize(raw, apex string) (string, error) {
	s := strings.TrimSpace(raw)
	s = collapseWhitespace(s)
	s = stripDisallowed(s)
	s = strings.TrimSpace(s)
	s = strings.ToLower(s)

	if s == "" {
		return "", ErrEmptyLabel
	}
	if s == "." || strings.HasSuffix(s, ".") {
		return "", fmt.Errorf("%w: %q ends in '.' or is bare '.'", ErrInvalidLabel, raw)
	}
	if !dns.IsDomainName(s) {
		return "", fmt.Errorf("%w: %q", ErrInvalidLabel, raw)
	}

	return s + "." + dns.Fqdn(apex), nil
}

func collapseWhitespace(s string) string {
	var b strings.Builder
	inRun := false
	for _, r := range s {
		if whitespaceRun(r) {
			if !inRun {
				b.WriteByte('-')
				inRun = true
			}
			continue
		}
		inRun = false
		b.WriteRune(r)
	}
	return b.String()
}

func stripDisallowed(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CanonicalMemberName builds the canonical "zt-<nodeID>.<apex>" FQDN.
func CanonicalMemberName(nodeID, apex string) string {
	return dns.Fqdn("zt-" + nodeID + "." + strings.TrimSuffix(dns.Fqdn(apex), "."))
}

// Wildcard returns the wildcard owner name "*.<owner>" for owner.
func Wildcard(owner string) string {
	return "*." + owner
}
