// Package session persists per-conversation dialogue state between
// turns. The payload is opaque JSON: the assistant owns the shape, the
// store only keys and expires it.
package session

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL is how long an idle session survives before expiring.
const DefaultTTL = 24 * time.Hour

// ErrNotFound is returned when a session has never been saved or has
// expired.
var ErrNotFound = errors.New("session: not found")

// Store persists session state keyed by session ID.
type Store interface {
	Load(ctx context.Context, sessionID string) ([]byte, error)
	Save(ctx context.Context, sessionID string, state []byte) error
	Delete(ctx context.Context, sessionID string) error
}
