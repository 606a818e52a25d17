package server

import (
	"sync"

	"github.com/matzehuels/panecraft/pkg/design"
	"github.com/matzehuels/panecraft/pkg/project"
)

// editors holds one design.Editor per open project.
type editors struct {
	mu     sync.Mutex
	open   map[string]*design.Editor
	policy design.Policy
}

func newEditors(policy design.Policy) *editors {
	return &editors{open: make(map[string]*design.Editor), policy: policy}
}

// get returns the editor for p, loading p's design on first use.
func (e *editors) get(p *project.Project) (*design.Editor, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ed, ok := e.open[p.ID]; ok {
		return ed, nil
	}
	t, err := design.Load(p.Design, design.WithPolicy(e.policy))
	if err != nil {
		return nil, err
	}
	ed := design.NewEditor(t)
	e.open[p.ID] = ed
	return ed, nil
}

// evict closes the editor for id so the next request reloads from the store.
func (e *editors) evict(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if ed, ok := e.open[id]; ok {
		ed.Close()
		delete(e.open, id)
	}
}

func (e *editors) len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.open)
}

func (e *editors) closeAll() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for id, ed := range e.open {
		ed.Close()
		delete(e.open, id)
	}
}
