// Package session provides session management for signed-in users.
//
// A session ties a [User] to an opaque random ID with an expiry. The API
// server hands the ID out as a bearer token; the CLI keeps its single session
// in a file under the user's config directory.
//
// Backends implement [Store]:
//   - [MemoryStore]: in-process storage for tests and single-instance servers
//   - [FileStore]: JSON files, used by the CLI
//   - [RedisStore]: shared storage for multi-instance deployments
//
// # Usage
//
//	user, err := session.NewUser("Ada", "ada@example.com")
//	if err != nil {
//	    return err
//	}
//	sess, err := session.New(user, session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
//
//	// Retrieve session
//	sess, err = store.Get(ctx, sessionID)
//	if sess == nil {
//	    // Session not found or expired
//	}
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	perrors "github.com/matzehuels/panecraft/pkg/errors"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session is required but missing or
	// expired.
	ErrNotFound = errors.New("session not found")
)

// userNamespace seeds the name-based UUIDs that identify users, so the same
// email always maps to the same user ID.
var userNamespace = uuid.MustParse("6f1b6c1e-3c55-4b8e-9a57-0d6f1c1e2a44")

// User is the identity a session belongs to.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// NewUser validates email and derives a stable user ID from it. An empty
// name defaults to the local part of the address.
func NewUser(name, email string) (*User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if err := perrors.ValidateEmail(email); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	return &User{
		ID:    uuid.NewSHA1(userNamespace, []byte(email)).String(),
		Name:  name,
		Email: email,
	}, nil
}

// Session stores user session data.
type Session struct {
	ID        string    `json:"id"`
	User      *User     `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// UserID returns the owning user's ID, or "" for a nil session.
// Projects are owned by this ID.
func (s *Session) UserID() string {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.ID
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (may be a no-op for Redis).
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// New creates a new session for user.
func New(user *User, ttl time.Duration) (*Session, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		ID:        id,
		User:      user,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}, nil
}

// LocalUserID owns everything created without signing in.
const LocalUserID = "local"

// MockLocal creates a session for local use without authentication.
// It is used when --no-auth is set or when the CLI is not logged in.
func MockLocal() *Session {
	now := time.Now()
	return &Session{
		ID: "local-session",
		User: &User{
			ID:   LocalUserID,
			Name: "Local User",
		},
		ExpiresAt: now.Add(365 * 24 * time.Hour),
		CreatedAt: now,
	}
}
