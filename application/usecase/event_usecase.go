package usecase

import (
	"context"

	"github.com/fixora/taskhub/application/port/inbound"
	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/application/requestctx"
	"github.com/fixora/taskhub/domain"
	"github.com/fixora/taskhub/domain/apperror"
	"github.com/fixora/taskhub/domain/entity"
)

type EventUseCase struct {
	eventRepo outbound.EventRepository
	files     *FileUseCase
	audit     *AuditRecorder
}

func NewEventUseCase(eventRepo outbound.EventRepository, files *FileUseCase, audit *AuditRecorder) *EventUseCase {
	return &EventUseCase{eventRepo: eventRepo, files: files, audit: audit}
}

func (uc *EventUseCase) Create(ctx context.Context, req inbound.CreateEventRequest) (*entity.Event, error) {
	actor, ok := requestctx.ActorFrom(ctx)
	if !ok {
		return nil, apperror.Auth(apperror.ErrCodeMissingToken, "Authentication required")
	}

	event := entity.NewEvent(entity.Event{
		Name:          req.Name,
		StartDate:     req.StartDate.UTC(),
		EndDate:       req.EndDate.UTC(),
		Location:      req.Location,
		Description:   req.Description,
		Budget:        req.Budget,
		Convener:      req.Convener,
		OrganisedBy:   req.OrganisedBy,
		Organizations: req.Organizations,
		Industries:    req.Industries,
		Employees:     req.Employees,
	}, actor.ID)
	if err := event.Validate(); err != nil {
		return nil, err
	}
	if err := uc.eventRepo.Create(ctx, event); err != nil {
		return nil, repoError(err, entity.ResourceEvent, event.ID, "create")
	}

	uc.audit.RecordCreate(ctx, entity.ResourceEvent, event.ID, event.Name, event)
	return event, nil
}

func (uc *EventUseCase) Get(ctx context.Context, id string) (*entity.Event, error) {
	event, err := uc.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, entity.ResourceEvent, id, "find")
	}
	uc.audit.RecordRead(ctx, entity.ResourceEvent, id)
	return event, nil
}

func (uc *EventUseCase) List(ctx context.Context, filter outbound.ListFilter) ([]*entity.Event, error) {
	events, err := uc.eventRepo.List(ctx, normalizeListFilter(filter))
	if err != nil {
		return nil, apperror.Storage("failed to list events", err)
	}
	return events, nil
}

func (uc *EventUseCase) Update(ctx context.Context, id string, updates domain.Updates) (*entity.Event, error) {
	if err := checkMutable(entity.EventMutableFields, updates); err != nil {
		return nil, err
	}

	current, err := uc.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, entity.ResourceEvent, id, "find")
	}

	m, err := applyUpdates(current, updates)
	if err != nil {
		return nil, err
	}
	if err := m.next.Validate(); err != nil {
		return nil, err
	}
	if err := uc.eventRepo.Update(ctx, m.next); err != nil {
		return nil, repoError(err, entity.ResourceEvent, id, "update")
	}

	uc.audit.RecordChange(ctx, ChangeRecord{
		Action:       domain.AuditActionUpdate,
		ResourceType: entity.ResourceEvent,
		ResourceID:   domain.StringPtr(id),
		Before:       m.before,
		Updates:      updates,
		Remarks:      auditRemark(entity.ResourceEvent, m.next.Name, "updated"),
	})
	return m.next, nil
}

func (uc *EventUseCase) Delete(ctx context.Context, id string) error {
	deleted, err := uc.eventRepo.Delete(ctx, id)
	if err != nil {
		return repoError(err, entity.ResourceEvent, id, "delete")
	}

	before, _ := domain.Snapshot(deleted)
	uc.audit.RecordDelete(ctx, entity.ResourceEvent, id, deleted.Name, before)
	return nil
}

// AttachPosters uploads posters and appends them to the event.
func (uc *EventUseCase) AttachPosters(ctx context.Context, id string, files []outbound.FileUpload) (*entity.Event, error) {
	current, err := uc.eventRepo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, entity.ResourceEvent, id, "find")
	}
	if len(current.Posters)+len(files) > entity.MaxPosters {
		return nil, apperror.New(apperror.KindValidation, apperror.ErrCodeTooManyFiles, "An event can have at most 5 posters", nil)
	}

	refs, err := uc.files.UploadAll(ctx, outbound.FolderPosters, files)
	if err != nil {
		return nil, err
	}

	before, err := domain.Snapshot(current)
	if err != nil {
		return nil, apperror.Storage("failed to snapshot event", err)
	}
	next := *current
	next.Posters = append([]entity.FileRef{}, current.Posters...)
	if err := next.AddPosters(refs...); err != nil {
		return nil, err
	}
	if err := next.Validate(); err != nil {
		return nil, err
	}
	if err := uc.eventRepo.Update(ctx, &next); err != nil {
		return nil, repoError(err, entity.ResourceEvent, id, "update")
	}

	posters, _ := domain.Snapshot(map[string]any{"posters": next.Posters})
	uc.audit.RecordChange(ctx, ChangeRecord{
		Action:       domain.AuditActionUpdate,
		ResourceType: entity.ResourceEvent,
		ResourceID:   domain.StringPtr(id),
		Before:       before,
		Updates:      domain.Updates{{Name: "posters", Value: posters["posters"]}},
		Remarks:      auditRemark(entity.ResourceEvent, next.Name, "posters added"),
	})
	return &next, nil
}
