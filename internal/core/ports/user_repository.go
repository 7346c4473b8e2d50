package ports

import (
	"context"

	"github.com/opskernel/admin-api/internal/core/domain"
)

// UserRepository defines persistence for system accounts.
type UserRepository interface {
	FindByUserName(ctx context.Context, userName string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	// RecordLogin stamps the last login IP and time on the account.
	RecordLogin(ctx context.Context, id, ip string) error
}

// RoleRepository loads role definitions with their permission strings.
type RoleRepository interface {
	FindByIDs(ctx context.Context, ids []string) ([]domain.Role, error)
}
