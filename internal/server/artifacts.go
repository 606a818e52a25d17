package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/panecraft/pkg/cache"
	"github.com/matzehuels/panecraft/pkg/codegen"
	"github.com/matzehuels/panecraft/pkg/design"
	perrors "github.com/matzehuels/panecraft/pkg/errors"
	"github.com/matzehuels/panecraft/pkg/render/nodelink"
)

// artifact returns a generated file for snap, from the cache when possible.
func (s *Server) artifact(ctx context.Context, snap design.Snapshot, opts cache.ArtifactKeyOpts, gen func() ([]byte, error)) ([]byte, error) {
	hash, err := cache.HashJSON(snap)
	if err != nil {
		return nil, err
	}
	key := s.opts.Keyer.ArtifactKey(hash, opts)
	return cache.Load(ctx, s.opts.Cache, key, opts.Kind, s.opts.CacheTTL, gen)
}

func (s *Server) handleCode(w http.ResponseWriter, r *http.Request) {
	_, snap, err := s.snapshot(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	src, err := s.artifact(r.Context(), snap, cache.ArtifactKeyOpts{Kind: cache.KindSource}, func() ([]byte, error) {
		return []byte(codegen.Generate(snap)), nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeText(w, "text/x-rust; charset=utf-8", "main.rs", src)
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	p, err := s.readable(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts := cache.ArtifactKeyOpts{Kind: cache.KindManifest, Name: codegen.CrateName(p.Title)}
	// The manifest does not depend on the design, only on the crate name.
	data, err := s.artifact(r.Context(), design.Snapshot{}, opts, func() ([]byte, error) {
		out, err := codegen.CargoManifest(p.Title)
		return []byte(out), err
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeText(w, "application/toml; charset=utf-8", "Cargo.toml", data)
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	_, snap, err := s.snapshot(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q := r.URL.Query()
	opts := nodelink.Options{Detailed: q.Get("detailed") == "true"}
	dot := nodelink.ToDOT(snap, opts)

	variant := ""
	if opts.Detailed {
		variant = "detailed"
	}
	switch q.Get("format") {
	case "dot":
		writeText(w, "text/vnd.graphviz; charset=utf-8", "", []byte(dot))
	case "", "svg":
		svg, err := s.artifact(r.Context(), snap, cache.ArtifactKeyOpts{Kind: cache.KindSVG, Name: variant}, func() ([]byte, error) {
			return nodelink.RenderSVG(r.Context(), dot)
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		writeText(w, "image/svg+xml", "", svg)
	default:
		s.writeError(w, r, perrors.New(perrors.ErrCodeInvalidInput, "unknown graph format %q", q.Get("format")))
	}
}
