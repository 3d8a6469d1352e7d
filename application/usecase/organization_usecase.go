package usecase

import (
	"context"

	"github.com/fixora/taskhub/application/port/inbound"
	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/domain"
	"github.com/fixora/taskhub/domain/apperror"
	"github.com/fixora/taskhub/domain/entity"
)

type OrganizationUseCase struct {
	orgRepo outbound.OrganizationRepository
	audit   *AuditRecorder
}

func NewOrganizationUseCase(orgRepo outbound.OrganizationRepository, audit *AuditRecorder) *OrganizationUseCase {
	return &OrganizationUseCase{orgRepo: orgRepo, audit: audit}
}

func (uc *OrganizationUseCase) Create(ctx context.Context, req inbound.CreateOrganizationRequest) (*entity.Organization, error) {
	org := entity.NewOrganization(req.Name, req.Location)
	if err := org.Validate(); err != nil {
		return nil, err
	}
	if err := uc.orgRepo.Create(ctx, org); err != nil {
		return nil, repoError(err, entity.ResourceOrganization, org.ID, "create")
	}

	uc.audit.RecordCreate(ctx, entity.ResourceOrganization, org.ID, org.Name, org)
	return org, nil
}

func (uc *OrganizationUseCase) Get(ctx context.Context, id string) (*entity.Organization, error) {
	org, err := uc.orgRepo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, entity.ResourceOrganization, id, "find")
	}
	uc.audit.RecordRead(ctx, entity.ResourceOrganization, id)
	return org, nil
}

func (uc *OrganizationUseCase) List(ctx context.Context, filter outbound.ListFilter) ([]*entity.Organization, error) {
	orgs, err := uc.orgRepo.List(ctx, normalizeListFilter(filter))
	if err != nil {
		return nil, apperror.Storage("failed to list organizations", err)
	}
	return orgs, nil
}

func (uc *OrganizationUseCase) Update(ctx context.Context, id string, updates domain.Updates) (*entity.Organization, error) {
	if err := checkMutable(entity.OrganizationMutableFields, updates); err != nil {
		return nil, err
	}

	current, err := uc.orgRepo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, entity.ResourceOrganization, id, "find")
	}

	m, err := applyUpdates(current, updates)
	if err != nil {
		return nil, err
	}
	if err := m.next.Validate(); err != nil {
		return nil, err
	}
	if err := uc.orgRepo.Update(ctx, m.next); err != nil {
		return nil, repoError(err, entity.ResourceOrganization, id, "update")
	}

	uc.audit.RecordChange(ctx, ChangeRecord{
		Action:       domain.AuditActionUpdate,
		ResourceType: entity.ResourceOrganization,
		ResourceID:   domain.StringPtr(id),
		Before:       m.before,
		Updates:      updates,
		Remarks:      auditRemark(entity.ResourceOrganization, m.next.Name, "updated"),
	})
	return m.next, nil
}

func (uc *OrganizationUseCase) Delete(ctx context.Context, id string) error {
	deleted, err := uc.orgRepo.Delete(ctx, id)
	if err != nil {
		return repoError(err, entity.ResourceOrganization, id, "delete")
	}

	before, _ := domain.Snapshot(deleted)
	uc.audit.RecordDelete(ctx, entity.ResourceOrganization, id, deleted.Name, before)
	return nil
}
