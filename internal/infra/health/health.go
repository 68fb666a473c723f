package health

import (
	"net/http"
	"sync/atomic"
)

var ready atomic.Bool

// SetReady marks process readiness; main flips it once the admin server and
// the ingest worker are up, and back before shutdown.
func SetReady(v bool) { ready.Store(v) }

func Ready() bool { return ready.Load() }

// Healthz is a simple liveness probe
func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Readyz answers 200 only when the process is marked ready and every extra
// check passes, e.g. "all configured books are loaded".
func Readyz(checks ...func() bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !Ready() {
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		for _, c := range checks {
			if !c() {
				http.Error(w, "books loading", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	}
}
