// Package session keeps the recipe currently displayed to each client
// between requests.
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Simplici0/marges/internal/recipe"
)

// ErrNotFound is returned for unknown or expired sessions.
var ErrNotFound = errors.New("session not found")

// Session is the state behind one browser or API client: the category being
// edited and its working copy, which may hold unsaved edits.
type Session struct {
	ID        string        `json:"id"`
	Category  string        `json:"category"`
	Recipe    recipe.Recipe `json:"recipe"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Store persists sessions with an expiry.
type Store interface {
	Get(ctx context.Context, id string) (Session, error)
	Put(ctx context.Context, s Session) error
	Delete(ctx context.Context, id string) error
}

// NewID returns a fresh random session identifier.
func NewID() string {
	return uuid.NewString()
}

// ValidID reports whether id could have been produced by NewID.
func ValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
