package ports

import (
	"context"

	"github.com/opskernel/admin-api/internal/core/domain"
)

// AuthService implements login and the per-request role/permission
// resolution used by the authorization middleware.
type AuthService interface {
	// Login validates the credentials and returns a bearer token.
	Login(ctx context.Context, userName, password, clientIP string) (string, error)
	// UserInfo returns the account plus its resolved grants.
	UserInfo(ctx context.Context, userID string) (*domain.User, domain.Grants, error)
	// Grants loads the union of role codes and permissions for a user.
	Grants(ctx context.Context, userID string) (domain.Grants, error)
}
