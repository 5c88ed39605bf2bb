package server

import (
	"net/http"

	"github.com/jrsteele09/go-bucket-browser/auth"
)

// RequireSession rejects requests without a live session and puts the
// session's user on the request context.
func (s *Server) RequireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.gateway.VerifySession(r.Context(), sessionIDFromRequest(r))
		if err != nil {
			status, msg := statusFor(err)
			writeJSON(w, status, errorResponse{Error: "Authentication required: " + msg})
			return
		}
		next(w, r.WithContext(auth.WithUser(r.Context(), session.User)))
	}
}
