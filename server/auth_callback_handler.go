package server

import (
	"net/http"

	"github.com/jrsteele09/go-bucket-browser/auth"
	"github.com/jrsteele09/go-bucket-browser/sessions"
	"github.com/rs/zerolog/log"
)

// LoginHandler starts a login by redirecting to the identity provider.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authURL, err := s.gateway.BeginLogin(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		result, err := s.gateway.CompleteLogin(r.Context(), auth.CallbackParams{
			Code:             query.Get("code"),
			State:            query.Get("state"),
			Error:            query.Get("error"),
			ErrorDescription: query.Get("error_description"),
		})
		if err != nil {
			writeError(w, err)
			return
		}

		s.SetSessionCookie(w, result.Session.ID, result.MaxAge)
		http.Redirect(w, r, result.RedirectURL, http.StatusFound)
	}
}

func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.gateway.Logout(r.Context(), sessionIDFromRequest(r)); err != nil {
			log.Warn().Err(err).Msg("logout failed to delete session")
		}
		s.ClearSessionCookie(w)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"message": "Logged out successfully",
		})
	}
}

type verifyResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          sessions.User `json:"user"`
}

func (s *Server) VerifySessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.gateway.VerifySession(r.Context(), sessionIDFromRequest(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, verifyResponse{Authenticated: true, User: session.User})
	}
}

func (s *Server) UserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, ok := auth.UserFromContext(r.Context())
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "Authentication required"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]sessions.User{"user": user})
	}
}
