package project

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	perrors "github.com/matzehuels/panecraft/pkg/errors"
	"github.com/matzehuels/panecraft/pkg/observability"
)

// FileStore keeps each project in <dir>/<id>.json. Listing reads every file,
// which is fine for the handful of projects a CLI user keeps locally.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates dir if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create project dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

// Dir returns the project directory.
func (s *FileStore) Dir() string { return s.dir }

func (s *FileStore) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

func (s *FileStore) Create(ctx context.Context, p *Project) (err error) {
	defer observe(ctx, "file", "project.create", time.Now(), &err)
	if err := p.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := os.Stat(s.path(p.ID)); err == nil {
		return errExists(p.ID)
	}
	p.CreatedAt = clock()
	p.UpdatedAt = p.CreatedAt
	return s.write(p)
}

func (s *FileStore) Get(ctx context.Context, id string) (p *Project, err error) {
	defer observe(ctx, "file", "project.get", time.Now(), &err)
	if perrors.ValidateID(id) != nil {
		return nil, ErrNotFound
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.read(s.path(id))
}

func (s *FileStore) ListByUser(ctx context.Context, userID string, opts ListOptions) (page *Page, err error) {
	defer observe(ctx, "file", "project.list", time.Now(), &err)
	s.mu.RLock()
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		s.mu.RUnlock()
		return nil, perrors.Wrap(perrors.ErrCodeStorage, err, "read project dir")
	}
	var mine []*Project
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		p, err := s.read(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		if p.UserID == userID {
			mine = append(mine, p)
		}
	}
	s.mu.RUnlock()
	slices.SortFunc(mine, newer)
	return paginate(mine, opts)
}

func (s *FileStore) Update(ctx context.Context, id string, u Update) (p *Project, err error) {
	defer observe(ctx, "file", "project.update", time.Now(), &err)
	if perrors.ValidateID(id) != nil {
		return nil, ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p, err = s.read(s.path(id))
	if err != nil {
		return nil, err
	}
	prev := p.UpdatedAt
	u.apply(p)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	p.UpdatedAt = bump(prev)
	if err := s.write(p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *FileStore) Delete(ctx context.Context, id string) (err error) {
	defer observe(ctx, "file", "project.delete", time.Now(), &err)
	if perrors.ValidateID(id) != nil {
		return ErrNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err = os.Remove(s.path(id))
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeStorage, err, "delete project %s", id)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

func (s *FileStore) read(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeStorage, err, "read %s", filepath.Base(path))
	}
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, perrors.Wrap(perrors.ErrCodeStorage, err, "parse %s", filepath.Base(path))
	}
	return &p, nil
}

// write replaces the project file atomically.
func (s *FileStore) write(p *Project) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeInternal, err, "encode project")
	}
	tmp, err := os.CreateTemp(s.dir, ".project-*")
	if err != nil {
		return perrors.Wrap(perrors.ErrCodeStorage, err, "write project")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return perrors.Wrap(perrors.ErrCodeStorage, err, "write project")
	}
	if err := tmp.Close(); err != nil {
		return perrors.Wrap(perrors.ErrCodeStorage, err, "write project")
	}
	if err := os.Rename(tmp.Name(), s.path(p.ID)); err != nil {
		return perrors.Wrap(perrors.ErrCodeStorage, err, "write project")
	}
	return nil
}

// observe reports a backend call to the storage hooks.
func observe(ctx context.Context, backend, op string, start time.Time, err *error) {
	observability.Storage().OnStorageOp(ctx, backend, op, time.Since(start), *err)
}

var _ Store = (*FileStore)(nil)
