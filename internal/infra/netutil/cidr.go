package netutil

import (
	"fmt"
	"net"
)

// ParseCIDRs parses every entry and fails on the first invalid one, so a typo
// in the admin allowlist stops startup instead of silently locking out
// /metrics.
func ParseCIDRs(cidrs []string) ([]*net.IPNet, error) {
	out := make([]*net.IPNet, 0, len(cidrs))
	for _, s := range cidrs {
		_, n, err := net.ParseCIDR(s)
		if err != nil {
			return nil, fmt.Errorf("admin allowlist entry %q: %w", s, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// Contains reports whether ip falls in any of nets.
func Contains(nets []*net.IPNet, ip net.IP) bool {
	for _, n := range nets {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}
