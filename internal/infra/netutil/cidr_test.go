package netutil

import (
	"net"
	"testing"
)

func TestParseCIDRs(t *testing.T) {
	nets, err := ParseCIDRs([]string{"127.0.0.0/8", "::1/128"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !Contains(nets, net.ParseIP("127.0.0.1")) || !Contains(nets, net.ParseIP("::1")) {
		t.Fatalf("expected loopback addresses to match")
	}
	if Contains(nets, net.ParseIP("10.0.0.1")) {
		t.Fatalf("10.0.0.1 should not match")
	}
	if _, err := ParseCIDRs([]string{"127.0.0.1"}); err == nil {
		t.Fatalf("expected error for address without mask")
	}
}
