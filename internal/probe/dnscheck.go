package probe

import (
	"context"
	"errors"
	"net"
	"strings"
	"time"
)

// DNSClass summarises how a host address resolves.
type DNSClass string

const (
	DNSLiteral     DNSClass = "IP_LITERAL"
	DNSResolves    DNSClass = "RESOLVES"
	DNSNoARecord   DNSClass = "NO_A_RECORD"
	DNSNXDomain    DNSClass = "NXDOMAIN"
	DNSUnavailable DNSClass = "SERVFAIL_or_TIMEOUT"
	DNSInvalidName DNSClass = "INVALID_NAME"
)

type DNSStatus struct {
	Address       string
	IPs           []net.IP
	Nameservers   []string
	Class         DNSClass
	ResolverError string
}

var dnsTimeout = 3 * time.Second

// CheckDNS resolves a host address before it is watched. IP literals are
// reported as such without a lookup.
func CheckDNS(ctx context.Context, address string) DNSStatus {
	s := DNSStatus{Address: strings.TrimSpace(address)}
	if s.Address == "" || strings.ContainsAny(s.Address, "/: ") && net.ParseIP(s.Address) == nil {
		s.Class = DNSInvalidName
		return s
	}
	if ip := net.ParseIP(s.Address); ip != nil {
		s.IPs = []net.IP{ip}
		s.Class = DNSLiteral
		return s
	}

	ctx, cancel := context.WithTimeout(ctx, dnsTimeout)
	defer cancel()
	r := &net.Resolver{}

	ips, err := r.LookupIP(ctx, "ip", s.Address)
	switch {
	case err == nil && len(ips) > 0:
		s.IPs = ips
		s.Class = DNSResolves
		return s
	case err != nil:
		s.ResolverError = err.Error()
		var de *net.DNSError
		if errors.As(err, &de) && !de.IsNotFound {
			s.Class = DNSUnavailable
			return s
		}
	}

	// No address records: a delegated zone without A/AAAA is not the same as NXDOMAIN.
	if ns, err := r.LookupNS(ctx, s.Address); err == nil && len(ns) > 0 {
		for _, n := range ns {
			s.Nameservers = append(s.Nameservers, strings.TrimSuffix(n.Host, "."))
		}
		s.Class = DNSNoARecord
		return s
	}
	s.Class = DNSNXDomain
	return s
}

// Resolvable reports whether the address can be dialled.
func (s DNSStatus) Resolvable() bool {
	return s.Class == DNSResolves || s.Class == DNSLiteral
}
