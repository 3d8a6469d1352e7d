package outbound

import (
	"context"

	"github.com/fixora/taskhub/domain"
)

// AuditRepository is append-only: entries are never updated or removed.
type AuditRepository interface {
	Append(ctx context.Context, entry *domain.AuditLogEntry) error
	// QueryByResource returns entries for a resource, newest first. A nil
	// resourceID matches collection-level entries of the type.
	QueryByResource(ctx context.Context, resourceType string, resourceID *string) ([]*domain.AuditLogEntry, error)
	Query(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLogEntry, error)
}

// AuditMetrics counts recorder outcomes.
type AuditMetrics interface {
	Recorded(action domain.AuditAction, resourceType string)
	Skipped(reason string)
	Failed(resourceType string)
}

// AuditLogger is the subset of the structured logger the recorder needs.
type AuditLogger interface {
	Debug(ctx context.Context, message string, fields map[string]interface{})
	Error(ctx context.Context, message string, err error, fields map[string]interface{})
}
