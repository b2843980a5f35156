// Package clientip derives a best-effort client address from a request.
//
// Forwarding headers are client supplied. The resolved address is only fit for
// rate-limit bucketing and audit logs, never for authorization.
package clientip

import (
	"net/http"
	"net/netip"
	"strings"
)

const (
	HeaderForwardedFor = "X-Forwarded-For"
	HeaderForwarded    = "Forwarded"
)

// Resolve picks the client address: first X-Forwarded-For entry, then the first
// parseable Forwarded for= parameter, then the peer address. It never fails; an
// unparseable peer address yields the zero netip.Addr.
func Resolve(remoteAddr string, headers http.Header) netip.Addr {
	if addr, ok := fromForwardedFor(headers.Get(HeaderForwardedFor)); ok {
		return addr
	}
	if addr, ok := fromForwarded(headers.Get(HeaderForwarded)); ok {
		return addr
	}
	addr, _ := parse(remoteAddr)
	return addr
}

// FromRequest is Resolve over r.RemoteAddr and r.Header
func FromRequest(r *http.Request) netip.Addr {
	return Resolve(r.RemoteAddr, r.Header)
}

func fromForwardedFor(value string) (netip.Addr, bool) {
	if value == "" {
		return netip.Addr{}, false
	}
	first, _, _ := strings.Cut(value, ",")
	return parse(strings.TrimSpace(first))
}

func fromForwarded(value string) (netip.Addr, bool) {
	if value == "" {
		return netip.Addr{}, false
	}
	for _, segment := range strings.Split(value, ";") {
		for _, part := range strings.Split(segment, ",") {
			part = strings.TrimSpace(part)
			if len(part) < 4 || !strings.EqualFold(part[:4], "for=") {
				continue
			}
			candidate := strings.Trim(part[4:], `"`)
			if addr, ok := parse(candidate); ok {
				return addr, true
			}
		}
	}
	return netip.Addr{}, false
}

// parse accepts a bare address, a bracketed IPv6 address or either with a port
func parse(value string) (netip.Addr, bool) {
	if addr, err := netip.ParseAddr(strings.Trim(value, "[]")); err == nil {
		return addr.Unmap(), true
	}
	if addrPort, err := netip.ParseAddrPort(value); err == nil {
		return addrPort.Addr().Unmap(), true
	}
	return netip.Addr{}, false
}
