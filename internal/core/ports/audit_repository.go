package ports

import (
	"context"

	"github.com/opskernel/admin-api/internal/core/domain"
)

// AuditRepository persists operation-log entries.
type AuditRepository interface {
	Insert(ctx context.Context, entry *domain.AuditEntry) error
}
