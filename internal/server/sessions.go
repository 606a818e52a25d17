package server

import (
	"net/http"
	"time"

	"github.com/matzehuels/panecraft/pkg/session"
)

type loginRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type sessionResponse struct {
	Token     string        `json:"token,omitempty"`
	User      *session.User `json:"user"`
	ExpiresAt time.Time     `json:"expiresAt"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	user, err := session.NewUser(req.Name, req.Email)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sess, err := session.New(user, s.opts.SessionTTL)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.opts.Sessions.Set(r.Context(), sess); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.log.Info("signed in", "user", user.ID)
	writeJSON(w, http.StatusCreated, sessionResponse{Token: sess.ID, User: user, ExpiresAt: sess.ExpiresAt})
}

func (s *Server) handleWhoami(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	writeJSON(w, http.StatusOK, sessionResponse{User: sess.User, ExpiresAt: sess.ExpiresAt})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if !s.opts.NoAuth {
		if err := s.opts.Sessions.Delete(r.Context(), sessionFrom(r.Context()).ID); err != nil {
			s.writeError(w, r, err)
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}
