package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	perrors "github.com/matzehuels/panecraft/pkg/errors"
	"github.com/matzehuels/panecraft/pkg/session"
)

type ctxKey int

const sessionKey ctxKey = iota

func withSession(ctx context.Context, sess *session.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// sessionFrom returns the session attached by authenticate.
func sessionFrom(ctx context.Context) *session.Session {
	sess, _ := ctx.Value(sessionKey).(*session.Session)
	return sess
}

// authenticate resolves the bearer token to a session. With NoAuth every
// request runs as the local user.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.NoAuth {
			next.ServeHTTP(w, r.WithContext(withSession(r.Context(), session.MockLocal())))
			return
		}
		token := bearer(r)
		if token == "" {
			s.writeError(w, r, perrors.New(perrors.ErrCodeUnauthorized, "missing bearer token"))
			return
		}
		sess, err := s.opts.Sessions.Get(r.Context(), token)
		switch {
		case perrors.Is(err, perrors.ErrCodeInvalidID):
			sess, err = nil, nil
		case err != nil:
			s.writeError(w, r, err)
			return
		}
		if sess == nil || sess.IsExpired() {
			s.writeError(w, r, perrors.New(perrors.ErrCodeSessionExpired, "session expired or unknown, sign in again"))
			return
		}
		next.ServeHTTP(w, r.WithContext(withSession(r.Context(), sess)))
	})
}

// observe logs each request and records it in the metrics, if configured.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
			route = rctx.RoutePattern()
		}
		d := time.Since(start)

		s.log.Debug("request",
			"id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"route", route,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", d.Round(time.Microsecond))
		if s.opts.Metrics != nil {
			s.opts.Metrics.observeRequest(r.Method, route, strconv.Itoa(status), d)
		}
	})
}
