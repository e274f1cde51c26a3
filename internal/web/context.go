package web

import (
	"net/http"

	"github.com/acadflow/acadflow/internal/core"
)

// withClientMetadata stores the client address and User-Agent for the journal.
// It runs after TrustedRealIP so RemoteAddr is already resolved.
func withClientMetadata(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := core.WithClient(r.Context(), core.Client{IP: r.RemoteAddr, UserAgent: r.UserAgent()})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
