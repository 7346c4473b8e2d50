package ports

import (
	"context"

	"github.com/opskernel/admin-api/internal/core/domain"
)

// TokenService issues, verifies, and revokes opaque bearer tokens of the
// form "<sessionId>.<signature>".
type TokenService interface {
	// Issue creates a session for p and returns the bearer token, or an
	// error when the session record could not be persisted.
	Issue(ctx context.Context, p domain.Principal) (string, error)
	// Verify resolves the Authorization header value to its principal.
	// An absent header yields (nil, nil): anonymous is not an error at this
	// layer. Every other failure is a 10401 StatusError with the reason.
	Verify(ctx context.Context, rawHeader string) (*domain.Principal, error)
	// Revoke deletes the session behind the header value. Best effort: it
	// reports false for invalid or already-revoked tokens, never an error.
	Revoke(ctx context.Context, rawHeader string) bool
}
