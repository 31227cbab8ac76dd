package daemon

import (
	"net/http"
	"strings"
)

// withAuth wraps a handler with bearer-token validation. An empty configured
// token disables authentication and passes every request through. Failures
// respond with the same api.ErrorResponse shape the handlers use.
func (s *apiServer) withAuth(token string, next http.HandlerFunc) http.HandlerFunc {
	if token == "" {
		return next
	}
	return func(w http.ResponseWriter, r *http.Request) {
		presented, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || presented != token {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}
