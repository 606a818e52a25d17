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

type treeResponse struct {
	ID     string          `json:"id,omitempty"`
	Design design.Snapshot `json:"designData"`
}

type addNodeRequest struct {
	ParentID string      `json:"parentId"`
	Node     design.Node `json:"node"`
}

type moveNodeRequest struct {
	ParentID string `json:"parentId"`
	Index    int    `json:"index"`
}

type constraintRequest struct {
	Kind  design.ConstraintKind `json:"type"`
	Value float64               `json:"value"`
}

type resizeRequest struct {
	Delta float64 `json:"delta"`
}

// snapshot returns the live design of a readable project.
func (s *Server) snapshot(ctx context.Context, id string) (*project.Project, design.Snapshot, error) {
	p, err := s.readable(ctx, id)
	if err != nil {
		return nil, design.Snapshot{}, err
	}
	ed, err := s.editors.get(p)
	if err != nil {
		return nil, design.Snapshot{}, err
	}
	var snap design.Snapshot
	if err := ed.View(ctx, func(t *design.Tree) { snap = t.Snapshot() }); err != nil {
		return nil, design.Snapshot{}, err
	}
	return p, snap, nil
}

// mutate runs fn in the project's editor and persists the tree if fn changed
// it. When persisting fails the editor is dropped, so the next request starts
// again from the stored design.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, fn func(t *design.Tree) (string, error)) {
	ctx := r.Context()
	p, err := s.writable(ctx, chi.URLParam(r, "projectID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ed, err := s.editors.get(p)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var (
		resp      treeResponse
		persisted = true
	)
	err = ed.Do(ctx, func(t *design.Tree) error {
		id, err := fn(t)
		if err != nil {
			return err
		}
		resp.ID = id
		resp.Design = t.Snapshot()
		if !t.Dirty() {
			return nil
		}
		if _, err := s.opts.Projects.Update(ctx, p.ID, project.Update{Design: &resp.Design}); err != nil {
			persisted = false
			return err
		}
		t.MarkClean()
		return nil
	})
	if !persisted {
		s.editors.evict(p.ID)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetTree(w http.ResponseWriter, r *http.Request) {
	_, snap, err := s.snapshot(r.Context(), chi.URLParam(r, "projectID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, treeResponse{Design: snap})
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request) {
	var req addNodeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := project.ValidateNode(req.Node); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.mutate(w, r, func(t *design.Tree) (string, error) {
		parent := req.ParentID
		if parent == "" {
			parent = t.RootID()
		}
		return t.Add(parent, req.Node)
	})
}

func (s *Server) handleDeleteNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "nodeID")
	s.mutate(w, r, func(t *design.Tree) (string, error) {
		return "", t.Delete(id)
	})
}

func (s *Server) handleMoveNode(w http.ResponseWriter, r *http.Request) {
	var req moveNodeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "nodeID")
	s.mutate(w, r, func(t *design.Tree) (string, error) {
		return id, t.Move(id, req.ParentID, req.Index)
	})
}

func (s *Server) handleUpdateProps(w http.ResponseWriter, r *http.Request) {
	var props design.Props
	if err := decode(w, r, &props); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := project.ValidateProps(props); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "nodeID")
	s.mutate(w, r, func(t *design.Tree) (string, error) {
		return id, t.UpdateNodeProps(id, props)
	})
}

func (s *Server) handleUpdateConstraint(w http.ResponseWriter, r *http.Request) {
	index, err := slotIndex(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req constraintRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "nodeID")
	s.mutate(w, r, func(t *design.Tree) (string, error) {
		return id, t.UpdateConstraint(id, index, req.Kind, req.Value)
	})
}

func (s *Server) handleResizeConstraint(w http.ResponseWriter, r *http.Request) {
	index, err := slotIndex(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req resizeRequest
	if err := decode(w, r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	id := chi.URLParam(r, "nodeID")
	s.mutate(w, r, func(t *design.Tree) (string, error) {
		return id, t.ResizeConstraint(id, index, req.Delta)
	})
}

func slotIndex(r *http.Request) (int, error) {
	v := chi.URLParam(r, "index")
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, perrors.New(perrors.ErrCodeInvalidInput, "invalid constraint index %q", v)
	}
	return n, nil
}
