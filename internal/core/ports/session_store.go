package ports

import (
	"context"
	"time"

	"github.com/opskernel/admin-api/internal/core/domain"
)

// SessionStore maps opaque session identifiers to their authenticated
// principal with an expiry. It is the only component that touches session
// records.
type SessionStore interface {
	// Put writes the session record with the given TTL. A non-nil error
	// means the write was not acknowledged and the session must not be
	// considered issued.
	Put(ctx context.Context, sessionID string, p domain.Principal, ttl time.Duration) error
	// Get returns the principal for sessionID. ok is false on a miss or a
	// corrupt payload; err reports infrastructure failures only.
	Get(ctx context.Context, sessionID string) (p *domain.Principal, ok bool, err error)
	// Delete removes the record, reporting whether one actually existed.
	Delete(ctx context.Context, sessionID string) (bool, error)
}
