package sessions

import "context"

// Repo defines the storage operations for local session records.
type Repo interface {
	// Upsert creates or updates a session, assigning an ID when empty
	Upsert(ctx context.Context, session *Session) error

	// Delete removes a session by ID
	Delete(ctx context.Context, id string) error

	// Get retrieves a session by ID
	Get(ctx context.Context, id string) (*Session, error)
}
