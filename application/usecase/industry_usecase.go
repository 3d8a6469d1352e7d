package usecase

import (
	"context"

	"github.com/fixora/taskhub/application/port/inbound"
	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/domain"
	"github.com/fixora/taskhub/domain/apperror"
	"github.com/fixora/taskhub/domain/entity"
)

type IndustryUseCase struct {
	industryRepo outbound.IndustryRepository
	audit        *AuditRecorder
}

func NewIndustryUseCase(industryRepo outbound.IndustryRepository, audit *AuditRecorder) *IndustryUseCase {
	return &IndustryUseCase{industryRepo: industryRepo, audit: audit}
}

func (uc *IndustryUseCase) Create(ctx context.Context, req inbound.CreateIndustryRequest) (*entity.Industry, error) {
	industry := entity.NewIndustry(req.Name, req.Location, req.ContactPoints)
	if err := industry.Validate(); err != nil {
		return nil, err
	}
	if err := uc.industryRepo.Create(ctx, industry); err != nil {
		return nil, repoError(err, entity.ResourceIndustry, industry.ID, "create")
	}

	uc.audit.RecordCreate(ctx, entity.ResourceIndustry, industry.ID, industry.Name, industry)
	return industry, nil
}

func (uc *IndustryUseCase) Get(ctx context.Context, id string) (*entity.Industry, error) {
	industry, err := uc.industryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, entity.ResourceIndustry, id, "find")
	}
	uc.audit.RecordRead(ctx, entity.ResourceIndustry, id)
	return industry, nil
}

func (uc *IndustryUseCase) List(ctx context.Context, filter outbound.ListFilter) ([]*entity.Industry, error) {
	industries, err := uc.industryRepo.List(ctx, normalizeListFilter(filter))
	if err != nil {
		return nil, apperror.Storage("failed to list industries", err)
	}
	return industries, nil
}

func (uc *IndustryUseCase) Update(ctx context.Context, id string, updates domain.Updates) (*entity.Industry, error) {
	if err := checkMutable(entity.IndustryMutableFields, updates); err != nil {
		return nil, err
	}

	current, err := uc.industryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, entity.ResourceIndustry, id, "find")
	}

	m, err := applyUpdates(current, updates)
	if err != nil {
		return nil, err
	}
	if err := m.next.Validate(); err != nil {
		return nil, err
	}
	if err := uc.industryRepo.Update(ctx, m.next); err != nil {
		return nil, repoError(err, entity.ResourceIndustry, id, "update")
	}

	uc.audit.RecordChange(ctx, ChangeRecord{
		Action:       domain.AuditActionUpdate,
		ResourceType: entity.ResourceIndustry,
		ResourceID:   domain.StringPtr(id),
		Before:       m.before,
		Updates:      updates,
		Remarks:      auditRemark(entity.ResourceIndustry, m.next.Name, "updated"),
	})
	return m.next, nil
}

func (uc *IndustryUseCase) Delete(ctx context.Context, id string) error {
	deleted, err := uc.industryRepo.Delete(ctx, id)
	if err != nil {
		return repoError(err, entity.ResourceIndustry, id, "delete")
	}

	before, _ := domain.Snapshot(deleted)
	uc.audit.RecordDelete(ctx, entity.ResourceIndustry, id, deleted.Name, before)
	return nil
}
