package oauth

import (
	"fmt"
	"net/http"
	"strings"
)

// Gate returns 401 with OAuth discovery pointers for unauthenticated requests
// to the MCP endpoints, which is what triggers a client's OAuth flow in the
// first place. Requests carrying a bearer value or any X-Daktela-* header
// pass through untouched; whether those credentials actually work is decided
// per tool call, not here. Mount it on the MCP endpoints only.
func Gate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.Header.Get("Authorization"), "Bearer ") || hasDaktelaHeader(r.Header) {
			next.ServeHTTP(w, r)
			return
		}

		scheme := r.Header.Get("X-Forwarded-Proto")
		if scheme == "" {
			scheme = "https"
		}
		host := r.Header.Get("X-Forwarded-Host")
		if host == "" {
			host = r.Host
		}
		metadata := fmt.Sprintf("%s://%s/.well-known/oauth-protected-resource", scheme, host)

		w.Header().Set("WWW-Authenticate", fmt.Sprintf("Bearer resource_metadata=%q", metadata))
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})
}

func hasDaktelaHeader(h http.Header) bool {
	for name := range h {
		if strings.HasPrefix(strings.ToLower(name), "x-daktela-") {
			return true
		}
	}
	return false
}
