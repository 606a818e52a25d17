// Package server exposes projects, design trees and generated artifacts over
// HTTP.
//
// Every open project is owned by a [design.Editor], so concurrent requests
// against one design are applied one at a time. After each mutation that
// changes the tree, the new snapshot is written back to the project store
// before the response is sent.
package server

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/panecraft/pkg/buildinfo"
	"github.com/matzehuels/panecraft/pkg/cache"
	"github.com/matzehuels/panecraft/pkg/design"
	"github.com/matzehuels/panecraft/pkg/project"
	"github.com/matzehuels/panecraft/pkg/session"
)

// sessionCleanupInterval is how often expired sessions are purged while the
// server runs.
const sessionCleanupInterval = time.Hour

// Options configures a Server.
type Options struct {
	Projects project.Store
	Sessions session.Store
	Cache    cache.Cache
	Keyer    cache.Keyer

	// Policy is applied to every tree the server opens.
	Policy design.Policy

	// NoAuth serves every request as the local user.
	NoAuth bool

	SessionTTL time.Duration
	CacheTTL   time.Duration

	Logger  *log.Logger
	Metrics *Metrics
}

// ValidateAndSetDefaults checks required fields and fills in the rest.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Projects == nil {
		return errors.New("server: project store is required")
	}
	if o.Sessions == nil {
		o.Sessions = session.NewMemoryStore()
	}
	if o.Cache == nil {
		o.Cache = cache.NewNullCache()
	}
	if o.Keyer == nil {
		o.Keyer = cache.NewDefaultKeyer()
	}
	if o.SessionTTL <= 0 {
		o.SessionTTL = session.DefaultTTL
	}
	if o.CacheTTL <= 0 {
		o.CacheTTL = cache.DefaultTTL
	}
	if o.Logger == nil {
		o.Logger = log.New(io.Discard)
	}
	return o.Policy.ValidateAndSetDefaults()
}

// Server is the HTTP API.
type Server struct {
	opts    Options
	log     *log.Logger
	editors *editors
	router  chi.Router
}

// New builds a server. Call Close (or let Serve return) to stop the editors
// it opens.
func New(opts Options) (*Server, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	s := &Server{
		opts:    opts,
		log:     opts.Logger,
		editors: newEditors(opts.Policy),
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.observe)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	if s.opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.opts.Metrics.Handler())
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/sessions", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/session", s.handleWhoami)
			r.Delete("/session", s.handleLogout)

			r.Get("/projects", s.handleListProjects)
			r.Post("/projects", s.handleCreateProject)
			r.Route("/projects/{projectID}", func(r chi.Router) {
				r.Get("/", s.handleGetProject)
				r.Patch("/", s.handleUpdateProject)
				r.Delete("/", s.handleDeleteProject)

				r.Get("/tree", s.handleGetTree)
				r.Post("/nodes", s.handleAddNode)
				r.Patch("/nodes/{nodeID}", s.handleUpdateProps)
				r.Delete("/nodes/{nodeID}", s.handleDeleteNode)
				r.Post("/nodes/{nodeID}/move", s.handleMoveNode)
				r.Put("/nodes/{nodeID}/constraints/{index}", s.handleUpdateConstraint)
				r.Post("/nodes/{nodeID}/constraints/{index}/resize", s.handleResizeConstraint)

				r.Get("/code", s.handleCode)
				r.Get("/cargo.toml", s.handleManifest)
				r.Get("/graph", s.handleGraph)
			})
		})
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Close stops every open editor.
func (s *Server) Close() {
	s.editors.closeAll()
}

// Run listens on addr and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln, shutdownTimeout)
}

// Serve accepts connections on ln until ctx is cancelled, then shuts down
// gracefully, waiting at most shutdownTimeout for in-flight requests.
func (s *Server) Serve(ctx context.Context, ln net.Listener, shutdownTimeout time.Duration) error {
	defer s.Close()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", "addr", ln.Addr().String(), "auth", !s.opts.NoAuth)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		s.log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	g.Go(func() error {
		tick := time.NewTicker(sessionCleanupInterval)
		defer tick.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-tick.C:
				if err := s.opts.Sessions.Cleanup(gctx); err != nil {
					s.log.Warn("session cleanup failed", "err", err)
				}
			}
		}
	})
	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.String()})
}
