package session

import (
	"context"
)

// Store defines how session entities are stored and retrieved.
// Get returns (nil, nil) when no session exists for the id.
// Put is an upsert; implementations must maintain CreatedAt/UpdatedAt.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Put(ctx context.Context, s *Session) error
}
