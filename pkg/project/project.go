// Package project persists designs as named projects owned by a user.
//
// A [Project] wraps a design snapshot with a title, an owner, a visibility
// flag and timestamps. [Store] implementations:
//   - [MemoryStore]: in-process, for tests and --storage=memory
//   - [FileStore]: one JSON file per project, the CLI default
//   - [MongoStore]: the "projects" collection in MongoDB
//
// Listing is per user, newest update first, paged with an opaque cursor.
package project

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/panecraft/pkg/design"
	perrors "github.com/matzehuels/panecraft/pkg/errors"
)

// DefaultPageSize is the list page size when none is given.
const DefaultPageSize = 20

// MaxPageSize caps ListOptions.Limit.
const MaxPageSize = 100

// ErrNotFound is returned when a project does not exist.
var ErrNotFound = perrors.New(perrors.ErrCodeProjectNotFound, "project not found")

// ErrBadCursor is returned for a cursor that was not produced by a Store.
var ErrBadCursor = errors.New("invalid page cursor")

// Project is a saved design.
type Project struct {
	ID        string          `json:"id"`
	UserID    string          `json:"userId"`
	Title     string          `json:"title"`
	Design    design.Snapshot `json:"designData"`
	IsPublic  bool            `json:"isPublic"`
	CreatedAt time.Time       `json:"createdAt"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// New returns an unsaved project with a fresh ID. Timestamps are set by the
// store on Create.
func New(userID, title string, s design.Snapshot) *Project {
	return &Project{
		ID:     uuid.NewString(),
		UserID: userID,
		Title:  strings.TrimSpace(title),
		Design: s,
	}
}

// Validate checks the title, the owner and the design.
func (p *Project) Validate() error {
	if err := perrors.ValidateID(p.ID); err != nil {
		return err
	}
	if p.UserID == "" {
		return perrors.New(perrors.ErrCodeInvalidInput, "project has no owner")
	}
	if err := perrors.ValidateProjectTitle(p.Title); err != nil {
		return err
	}
	return ValidateDesign(p.Design)
}

// CanRead reports whether userID may open p.
func (p *Project) CanRead(userID string) bool {
	return p.IsPublic || p.UserID == userID
}

// CanWrite reports whether userID may change or delete p.
func (p *Project) CanWrite(userID string) bool {
	return p.UserID == userID
}

// Update carries the fields Store.Update changes. Nil fields are kept.
type Update struct {
	Title    *string          `json:"title,omitempty"`
	Design   *design.Snapshot `json:"designData,omitempty"`
	IsPublic *bool            `json:"isPublic,omitempty"`
}

func (u Update) apply(p *Project) {
	if u.Title != nil {
		p.Title = strings.TrimSpace(*u.Title)
	}
	if u.Design != nil {
		p.Design = *u.Design
	}
	if u.IsPublic != nil {
		p.IsPublic = *u.IsPublic
	}
}

// ListOptions selects one page of a user's projects.
type ListOptions struct {
	Limit int
	// After is the Next cursor of the previous page.
	After string
}

func (o ListOptions) limit() int {
	switch {
	case o.Limit <= 0:
		return DefaultPageSize
	case o.Limit > MaxPageSize:
		return MaxPageSize
	}
	return o.Limit
}

// Page is one page of a listing.
type Page struct {
	Projects []*Project `json:"projects"`
	// Next resumes the listing after the last project; empty when HasMore is
	// false.
	Next    string `json:"next,omitempty"`
	HasMore bool   `json:"hasMore"`
}

// Store persists projects.
type Store interface {
	// Create validates and inserts p, setting both timestamps.
	Create(ctx context.Context, p *Project) error

	// Get returns the project with id or ErrNotFound.
	Get(ctx context.Context, id string) (*Project, error)

	// ListByUser returns userID's projects, most recently updated first.
	ListByUser(ctx context.Context, userID string, opts ListOptions) (*Page, error)

	// Update applies u to the project with id, bumps UpdatedAt and returns the
	// stored result.
	Update(ctx context.Context, id string, u Update) (*Project, error)

	// Delete removes the project with id or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources.
	Close() error
}

// cursor is the (UpdatedAt, ID) position of the last listed project.
type cursor struct {
	UpdatedAt time.Time
	ID        string
}

func (c cursor) String() string {
	raw := strconv.FormatInt(c.UpdatedAt.UnixNano(), 10) + ":" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func parseCursor(s string) (cursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return cursor{}, fmt.Errorf("%w: %v", ErrBadCursor, err)
	}
	ns, id, ok := strings.Cut(string(raw), ":")
	if !ok || id == "" {
		return cursor{}, ErrBadCursor
	}
	n, err := strconv.ParseInt(ns, 10, 64)
	if err != nil {
		return cursor{}, fmt.Errorf("%w: %v", ErrBadCursor, err)
	}
	return cursor{UpdatedAt: time.Unix(0, n).UTC(), ID: id}, nil
}

// before reports whether p sorts after c in listing order (newest first,
// ties broken by descending ID).
func (c cursor) before(p *Project) bool {
	if !p.UpdatedAt.Equal(c.UpdatedAt) {
		return p.UpdatedAt.Before(c.UpdatedAt)
	}
	return p.ID < c.ID
}

// newer orders projects for listing.
func newer(a, b *Project) int {
	if c := b.UpdatedAt.Compare(a.UpdatedAt); c != 0 {
		return c
	}
	return strings.Compare(b.ID, a.ID)
}

// paginate cuts one page out of projects already sorted with newer.
func paginate(sorted []*Project, opts ListOptions) (*Page, error) {
	if opts.After != "" {
		c, err := parseCursor(opts.After)
		if err != nil {
			return nil, err
		}
		i := 0
		for i < len(sorted) && !c.before(sorted[i]) {
			i++
		}
		sorted = sorted[i:]
	}
	return page(sorted, opts.limit()), nil
}

// page trims items to limit. items may hold one extra element, which only
// signals that more exist.
func page(items []*Project, limit int) *Page {
	p := &Page{Projects: items}
	if len(items) > limit {
		p.Projects = items[:limit]
		p.HasMore = true
		last := p.Projects[limit-1]
		p.Next = cursor{UpdatedAt: last.UpdatedAt, ID: last.ID}.String()
	}
	if p.Projects == nil {
		p.Projects = []*Project{}
	}
	return p
}

// clock returns the current time truncated to milliseconds, the resolution
// MongoDB stores.
var clock = func() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

// bump returns the time for a new update, strictly after prev so that a
// listing always reflects edit order.
func bump(prev time.Time) time.Time {
	now := clock()
	if !now.After(prev) {
		now = prev.Add(time.Millisecond)
	}
	return now
}

func errExists(id string) error {
	return perrors.New(perrors.ErrCodeConflict, "project %s already exists", id)
}

func clone(p *Project) *Project {
	c := *p
	if t, err := design.Load(p.Design); err == nil {
		c.Design = t.Snapshot()
	}
	return &c
}
