// Package session stores rendered diagrams under random ids so they can be
// fetched again after the request that produced them.
//
// A [Session] holds the settled layout of one render plus the artifacts
// produced for it. Stores come in three flavours:
//   - memory: in-process map for the standalone server and tests
//   - file: JSON files for the CLI and single-instance servers
//   - cache: any [cache.Cache] backend, so redis shares renders across
//     server instances
//
// # Usage
//
//	sess := session.New(result.InputHash, result.Layout, result.Artifacts, session.DefaultTTL)
//	if err := store.Set(ctx, sess); err != nil {
//	    return err
//	}
//
//	sess, err := store.Get(ctx, id)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    // unknown or expired
//	}
package session

import (
	"context"
	"errors"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/taskweb/pkg/graph"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// DefaultTTL is how long a stored render stays retrievable.
const DefaultTTL = 24 * time.Hour

// Session is one stored render.
type Session struct {
	ID        string            `json:"id"`
	InputHash string            `json:"input_hash"`
	Layout    graph.Layout      `json:"layout"`
	Artifacts map[string][]byte `json:"artifacts"`
	Warnings  []string          `json:"warnings,omitempty"`
	ExpiresAt time.Time         `json:"expires_at"`
	CreatedAt time.Time         `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Formats lists the stored artifact formats in sorted order.
func (s *Session) Formats() []string {
	return slices.Sorted(maps.Keys(s.Artifacts))
}

// Artifact returns the stored artifact for format.
func (s *Session) Artifact(format string) ([]byte, bool) {
	data, ok := s.Artifacts[format]
	return data, ok
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions (no-op where the backend expires
	// entries itself).
	Cleanup(ctx context.Context) error
}

// GenerateID creates a random session id in canonical UUID form.
func GenerateID() string {
	return uuid.NewString()
}

// New creates a session for a finished render.
func New(inputHash string, l graph.Layout, artifacts map[string][]byte, ttl time.Duration) *Session {
	if artifacts == nil {
		artifacts = map[string][]byte{}
	}
	now := time.Now()
	return &Session{
		ID:        GenerateID(),
		InputHash: inputHash,
		Layout:    l,
		Artifacts: artifacts,
		ExpiresAt: now.Add(ttl),
		CreatedAt: now,
	}
}
