package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
)

const bearerPrefix = "Bearer "

// bearerAuth rejects requests whose Authorization header does not carry the
// configured token. Both the dashboard data routes and the chat stream sit
// behind it.
func (s *Server) bearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if reason := s.checkBearer(r.Header.Get("Authorization")); reason != "" {
			s.logger.Warn("request rejected",
				"request_id", middleware.GetReqID(r.Context()),
				"path", r.URL.Path,
				"reason", reason,
			)
			w.Header().Set("WWW-Authenticate", `Bearer realm="airaware"`)
			s.writeError(w, http.StatusUnauthorized, reason)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// checkBearer returns an empty string when the header is acceptable,
// otherwise the message sent back to the caller.
func (s *Server) checkBearer(header string) string {
	switch {
	case header == "":
		return "missing Authorization header"
	case !strings.HasPrefix(header, bearerPrefix):
		return "invalid Authorization header format"
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, bearerPrefix))
	if token == "" {
		return "missing token"
	}
	if !tokenMatches(token, s.config.Token) {
		return "invalid token"
	}
	return ""
}

func tokenMatches(got, want string) bool {
	if got == "" || want == "" || len(got) != len(want) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), []byte(want)) == 1
}
