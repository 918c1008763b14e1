package netutil

import (
	"net"
	"strings"
)

// BracketIPv6 wraps a raw IPv6 literal (optionally carrying a zone e.g. 'fe80::1%eth0') in brackets so a port may be
// appended; hostnames, IPv4 addresses and already bracketed literals are returned as is.
func BracketIPv6(host string) string {
	if strings.HasPrefix(host, "[") {
		return host
	}

	literal, _, _ := strings.Cut(host, "%")

	ip := net.ParseIP(literal)
	if ip == nil || !strings.Contains(literal, ":") {
		return host
	}

	return "[" + host + "]"
}
