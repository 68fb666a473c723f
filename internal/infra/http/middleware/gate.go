package middleware

import (
	"net"
	"net/http"

	"limitbook/internal/infra/netutil"

	"github.com/rs/zerolog"
)

// AdminGate restricts access to admin endpoints by remote IP against allowed CIDR list.
func AdminGate(l zerolog.Logger, allowed []*net.IPNet, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if ip := net.ParseIP(host); ip != nil && netutil.Contains(allowed, ip) {
			next.ServeHTTP(w, r)
			return
		}
		l.Warn().Str("remote", r.RemoteAddr).Str("path", r.URL.Path).Msg("admin request denied")
		http.Error(w, "forbidden", http.StatusForbidden)
	})
}
