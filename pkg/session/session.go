// Package session records the history of solve invocations: what was
// submitted, what parameters drove the search, and what came out.
//
// # Usage
//
// Create a session store:
//
//	// CLI
//	store, err := session.NewFileStore("")  // ~/.config/minimalloc/sessions/
//
//	// Server
//	store, err := session.NewMongoStore(ctx, session.MongoConfig{URI: "mongodb://localhost:27017"})
//
// Record a solve:
//
//	sess := session.New(inputHash, params, status.String(), backtracks, elapsed, &solution)
//	store.Set(ctx, sess)
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/minimalloc/pkg/alloc/problem"
	"github.com/matzehuels/minimalloc/pkg/cache"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// Session records one solve invocation.
type Session struct {
	ID         string             `json:"id" bson:"_id"`
	InputHash  string             `json:"input_hash" bson:"input_hash"`
	Params     cache.SolveKeyOpts `json:"params" bson:"params"`
	Status     string             `json:"status" bson:"status"`
	Backtracks int                `json:"backtracks" bson:"backtracks"`
	Elapsed    time.Duration      `json:"elapsed" bson:"elapsed"`
	Solution   *problem.Solution  `json:"solution,omitempty" bson:"solution,omitempty"`
	ExpiresAt  time.Time          `json:"expires_at" bson:"expires_at"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
}

// IsExpired returns true if the session has exceeded its TTL.
func (s *Session) IsExpired() bool {
	return !s.ExpiresAt.IsZero() && time.Now().After(s.ExpiresAt)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions (optional, may be no-op for some backends).
	Cleanup(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}

// DefaultTTL is how long a solve-history record is retained by default.
const DefaultTTL = 30 * 24 * time.Hour

// New creates a session recording one solve invocation.
func New(inputHash string, params cache.SolveKeyOpts, status string, backtracks int, elapsed time.Duration, sol *problem.Solution) *Session {
	now := time.Now()
	return &Session{
		ID:         uuid.NewString(),
		InputHash:  inputHash,
		Params:     params,
		Status:     status,
		Backtracks: backtracks,
		Elapsed:    elapsed,
		Solution:   sol,
		ExpiresAt:  now.Add(DefaultTTL),
		CreatedAt:  now,
	}
}
