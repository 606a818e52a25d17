package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/panecraft/pkg/design"
	perrors "github.com/matzehuels/panecraft/pkg/errors"
	"github.com/matzehuels/panecraft/pkg/project"
)

type createProjectRequest struct {
	Title    string           `json:"title"`
	Design   *design.Snapshot `json:"designData,omitempty"`
	IsPublic bool             `json:"isPublic"`
}

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	opts := project.ListOptions{After: r.URL.Query().Get("after")}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.writeError(w, r, perrors.New(perrors.ErrCodeInvalidInput, "invalid limit %q", v))
			return
		}
		opts.Limit = n
	}
	page, err := s.opts.Projects.ListByUser(r.Context(), sessionFrom(r.Context()).UserID(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if page.Projects == nil {
		page.Projects = []*project.Project{}
	}
	writeJSON(w, http.StatusOK, page)
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	var req createProjectRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	snap := design.New(design.WithPolicy(s.opts.Policy)).Snapshot()
	if req.Design != nil {
		snap = *req.Design
	}
	p := project.New(sessionFrom(r.Context()).UserID(), req.Title, snap)
	p.IsPublic = req.IsPublic
	if err := s.opts.Projects.Create(r.Context(), p); err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) handleGetProject(w http.ResponseWriter, r *http.Request) {
	p, err := s.readable(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleUpdateProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "projectID")
	var u project.Update
	if err := decode(w, r, &u); err != nil {
		s.writeError(w, r, err)
		return
	}
	if _, err := s.writable(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.opts.Projects.Update(r.Context(), id, u)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if u.Design != nil {
		s.editors.evict(id)
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleDeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "projectID")
	if _, err := s.writable(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.opts.Projects.Delete(r.Context(), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.editors.evict(id)
	w.WriteHeader(http.StatusNoContent)
}

// readable loads a project the caller may view. Private projects of other
// users are reported as missing.
func (s *Server) readable(ctx context.Context, id string) (*project.Project, error) {
	if err := perrors.ValidateID(id); err != nil {
		return nil, err
	}
	p, err := s.opts.Projects.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanRead(sessionFrom(ctx).UserID()) {
		return nil, project.ErrNotFound
	}
	return p, nil
}

// writable loads a project the caller owns.
func (s *Server) writable(ctx context.Context, id string) (*project.Project, error) {
	p, err := s.readable(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.CanWrite(sessionFrom(ctx).UserID()) {
		return nil, perrors.New(perrors.ErrCodeForbidden, "project %s is read-only for you", id)
	}
	return p, nil
}
