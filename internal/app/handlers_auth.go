package app

import (
	"net/http"
	"time"

	"github.com/Carsk101/acutea/internal/auth"
	"github.com/Carsk101/acutea/internal/models"
)

type sessionResponse struct {
	Token     string `json:"token"`
	UserID    int64  `json:"user_id"`
	Email     string `json:"email"`
	ExpiresAt string `json:"expires_at"`
}

func toSessionResponse(s *models.Session) sessionResponse {
	return sessionResponse{
		Token:     s.Token,
		UserID:    s.UserID,
		Email:     s.Email,
		ExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339),
	}
}

func (s *Server) handleSignUp(w http.ResponseWriter, r *http.Request) {
	var c auth.Credentials
	if err := decode(r, &c); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	sess, err := s.auth.SignUp(r.Context(), c)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(sess))
}

func (s *Server) handleSignIn(w http.ResponseWriter, r *http.Request) {
	var c auth.Credentials
	if err := decode(r, &c); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	sess, err := s.auth.SignIn(r.Context(), c)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}

func (s *Server) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.SignOut(r.Context(), bearer(r)); err != nil {
		s.fail(w, r, err, nil)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.auth.Current(r.Context(), bearer(r))
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(sess))
}
