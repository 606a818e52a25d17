package project

import (
	"context"
	"slices"
	"sync"
)

// MemoryStore keeps projects in a map.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[string]*Project
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{projects: make(map[string]*Project)}
}

func (s *MemoryStore) Create(ctx context.Context, p *Project) error {
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[p.ID]; ok {
		return errExists(p.ID)
	}
	p.CreatedAt = clock()
	p.UpdatedAt = p.CreatedAt
	s.projects[p.ID] = clone(p)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(p), nil
}

func (s *MemoryStore) ListByUser(ctx context.Context, userID string, opts ListOptions) (*Page, error) {
	s.mu.RLock()
	var mine []*Project
	for _, p := range s.projects {
		if p.UserID == userID {
			mine = append(mine, clone(p))
		}
	}
	s.mu.RUnlock()
	slices.SortFunc(mine, newer)
	return paginate(mine, opts)
}

func (s *MemoryStore) Update(ctx context.Context, id string, u Update) (*Project, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	next := clone(cur)
	u.apply(next)
	if err := next.Validate(); err != nil {
		return nil, err
	}
	next.UpdatedAt = bump(cur.UpdatedAt)
	s.projects[id] = next
	return clone(next), nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.projects[id]; !ok {
		return ErrNotFound
	}
	delete(s.projects, id)
	return nil
}

func (s *MemoryStore) Close() error { return nil }

var _ Store = (*MemoryStore)(nil)
