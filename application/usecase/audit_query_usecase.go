package usecase

import (
	"context"

	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/domain"
	"github.com/fixora/taskhub/domain/apperror"
)

// AuditQueryUseCase reads the audit trail. It never writes.
type AuditQueryUseCase struct {
	auditRepo outbound.AuditRepository
}

func NewAuditQueryUseCase(auditRepo outbound.AuditRepository) *AuditQueryUseCase {
	return &AuditQueryUseCase{auditRepo: auditRepo}
}

// ForResource returns entries for one resource, newest first. An empty
// resourceID selects collection-level entries.
func (uc *AuditQueryUseCase) ForResource(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLogEntry, error) {
	if resourceType == "" {
		return nil, apperror.Validation("resource_type is required").WithField("resource_type", "is required")
	}
	entries, err := uc.auditRepo.QueryByResource(ctx, resourceType, domain.StringPtr(resourceID))
	if err != nil {
		return nil, apperror.Storage("failed to query audit logs", err)
	}
	return entries, nil
}

// Search filters entries by resource and actor with paging.
func (uc *AuditQueryUseCase) Search(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLogEntry, error) {
	if filter.ResourceID != "" && filter.ResourceType == "" {
		return nil, apperror.Validation("resource_type is required when resource_id is set").WithField("resource_type", "is required")
	}
	if filter.Limit <= 0 {
		filter.Limit = defaultListLimit
	}
	if filter.Limit > maxListLimit {
		filter.Limit = maxListLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	entries, err := uc.auditRepo.Query(ctx, filter)
	if err != nil {
		return nil, apperror.Storage("failed to query audit logs", err)
	}
	return entries, nil
}
