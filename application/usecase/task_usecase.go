package usecase

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/fixora/taskhub/application/port/inbound"
	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/application/requestctx"
	"github.com/fixora/taskhub/domain"
	"github.com/fixora/taskhub/domain/apperror"
	"github.com/fixora/taskhub/domain/entity"
)

type TaskUseCase struct {
	taskRepo  outbound.TaskRepository
	auditRepo outbound.AuditRepository
	files     *FileUseCase
	audit     *AuditRecorder
	now       func() time.Time
}

func NewTaskUseCase(
	taskRepo outbound.TaskRepository,
	auditRepo outbound.AuditRepository,
	files *FileUseCase,
	audit *AuditRecorder,
) *TaskUseCase {
	return &TaskUseCase{
		taskRepo:  taskRepo,
		auditRepo: auditRepo,
		files:     files,
		audit:     audit,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (uc *TaskUseCase) Create(ctx context.Context, req inbound.CreateTaskRequest) (*entity.Task, error) {
	actor, ok := requestctx.ActorFrom(ctx)
	if !ok {
		return nil, apperror.Auth(apperror.ErrCodeMissingToken, "Authentication required")
	}

	task := entity.NewTask(entity.Task{
		Title:               req.Title,
		Description:         req.Description,
		AssignedTo:          req.AssignedTo,
		Status:              entity.TaskStatus(req.Status),
		StartDate:           req.StartDate.UTC(),
		EndDate:             req.EndDate.UTC(),
		PartnerOrganization: req.PartnerOrganization,
		Industry:            req.Industry,
	}, actor.ID)
	if err := task.Validate(); err != nil {
		return nil, err
	}

	if err := uc.taskRepo.Create(ctx, task); err != nil {
		return nil, repoError(err, entity.ResourceTask, task.ID, "create")
	}

	uc.audit.RecordCreate(ctx, entity.ResourceTask, task.ID, task.Title, task)
	return task, nil
}

func (uc *TaskUseCase) Get(ctx context.Context, id string) (*entity.Task, error) {
	task, err := uc.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, entity.ResourceTask, id, "find")
	}
	uc.audit.RecordRead(ctx, entity.ResourceTask, id)
	return task, nil
}

const (
	summaryWindow = 7 * 24 * time.Hour
	summaryTop    = 10
)

func (uc *TaskUseCase) List(ctx context.Context, filter outbound.TaskFilter) (*inbound.TaskPage, error) {
	filter.ListFilter = normalizeListFilter(filter.ListFilter)
	if filter.Page > 0 {
		filter.Offset = (filter.Page - 1) * filter.Limit
	}
	if err := normalizeTaskSort(&filter); err != nil {
		return nil, err
	}
	if filter.DateFrom != nil && filter.DateTo != nil && filter.DateTo.Before(*filter.DateFrom) {
		return nil, apperror.Validation("date_to must not be before date_from").WithField("date_to", filter.DateTo.Format(time.RFC3339))
	}

	tasks, err := uc.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Storage("failed to list tasks", err)
	}
	total, err := uc.taskRepo.Count(ctx, filter)
	if err != nil {
		return nil, apperror.Storage("failed to count tasks", err)
	}
	return newTaskPage(tasks, total, filter.ListFilter), nil
}

// Summary reports task totals, the last seven days of creations and the
// largest status, partner and industry groups.
func (uc *TaskUseCase) Summary(ctx context.Context) (*outbound.TaskSummary, error) {
	summary, err := uc.taskRepo.Summary(ctx, uc.now().Add(-summaryWindow), summaryTop)
	if err != nil {
		return nil, apperror.Storage("failed to summarize tasks", err)
	}
	return summary, nil
}

func normalizeTaskSort(f *outbound.TaskFilter) error {
	if f.SortBy == "" {
		f.SortBy = "created_at"
	}
	if !slices.Contains(outbound.TaskSortFields, f.SortBy) {
		return apperror.Validation("sort_by must be one of: "+strings.Join(outbound.TaskSortFields, ", ")).
			WithField("sort_by", f.SortBy)
	}
	f.SortOrder = strings.ToLower(f.SortOrder)
	switch f.SortOrder {
	case "":
		f.SortOrder = outbound.SortDesc
	case outbound.SortAsc, outbound.SortDesc:
	default:
		return apperror.Validation("sort_order must be asc or desc").WithField("sort_order", f.SortOrder)
	}
	return nil
}

func newTaskPage(tasks []*entity.Task, total int, f outbound.ListFilter) *inbound.TaskPage {
	page := &inbound.TaskPage{
		Tasks:        tasks,
		TotalTasks:   total,
		TotalPages:   (total + f.Limit - 1) / f.Limit,
		CurrentPage:  f.Offset/f.Limit + 1,
		TasksPerPage: f.Limit,
	}
	page.HasNextPage = page.CurrentPage < page.TotalPages
	page.HasPrevPage = page.CurrentPage > 1
	if page.HasNextPage {
		next := page.CurrentPage + 1
		page.NextPage = &next
	}
	if page.HasPrevPage {
		prev := page.CurrentPage - 1
		page.PrevPage = &prev
	}
	return page
}

// Update applies field updates. A "remarks" entry is not a field assignment:
// it appends a remark and is audited as a synthetic remarks change.
func (uc *TaskUseCase) Update(ctx context.Context, id string, updates domain.Updates) (*entity.Task, error) {
	remark, hasRemark := updates.Get(domain.FieldRemarks)
	fields := updates.Without(domain.FieldRemarks)
	if len(fields) > 0 || !hasRemark {
		if err := checkMutable(entity.TaskMutableFields, fields); err != nil {
			return nil, err
		}
	}

	current, err := uc.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, entity.ResourceTask, id, "find")
	}

	m, err := applyUpdates(current, fields)
	if err != nil {
		return nil, err
	}
	next := m.next

	var extra []domain.AuditChange
	if hasRemark {
		text, file, err := parseRemark(remark)
		if err != nil {
			return nil, err
		}
		next.AddRemark(text, file, uc.now())
		extra = append(extra, domain.RemarkChange(text))
	}

	next.UpdatedAt = uc.now()
	if err := next.Validate(); err != nil {
		return nil, err
	}
	if err := uc.taskRepo.Update(ctx, next); err != nil {
		return nil, repoError(err, entity.ResourceTask, id, "update")
	}

	uc.audit.RecordChange(ctx, ChangeRecord{
		Action:       domain.AuditActionUpdate,
		ResourceType: entity.ResourceTask,
		ResourceID:   domain.StringPtr(id),
		Before:       m.before,
		Updates:      fields,
		Extra:        extra,
		Remarks:      auditRemark(entity.ResourceTask, next.Title, "updated"),
	})
	return next, nil
}

func (uc *TaskUseCase) Delete(ctx context.Context, id string) error {
	current, err := uc.taskRepo.FindByID(ctx, id)
	if err != nil {
		return repoError(err, entity.ResourceTask, id, "find")
	}
	before, err := domain.Snapshot(current)
	if err != nil {
		return apperror.Storage("failed to snapshot task", err)
	}

	if _, err := uc.taskRepo.Delete(ctx, id); err != nil {
		return repoError(err, entity.ResourceTask, id, "delete")
	}

	uc.audit.RecordDelete(ctx, entity.ResourceTask, id, current.Title, before)
	return nil
}

// AttachFiles uploads attachments and appends their URLs to the task.
func (uc *TaskUseCase) AttachFiles(ctx context.Context, id string, files []outbound.FileUpload) (*entity.Task, error) {
	current, err := uc.taskRepo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, entity.ResourceTask, id, "find")
	}

	refs, err := uc.files.UploadAll(ctx, outbound.FolderTaskFiles, files)
	if err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(current.Files)+len(refs))
	urls = append(urls, current.Files...)
	for _, ref := range refs {
		urls = append(urls, ref.URL)
	}

	updates := domain.Updates{{Name: "files", Value: urls}}
	m, err := applyUpdates(current, updates)
	if err != nil {
		return nil, err
	}
	next := m.next
	next.UpdatedAt = uc.now()
	if err := uc.taskRepo.Update(ctx, next); err != nil {
		return nil, repoError(err, entity.ResourceTask, id, "update")
	}

	uc.audit.RecordChange(ctx, ChangeRecord{
		Action:       domain.AuditActionUpdate,
		ResourceType: entity.ResourceTask,
		ResourceID:   domain.StringPtr(id),
		Before:       m.before,
		Updates:      updates,
		Remarks:      auditRemark(entity.ResourceTask, next.Title, "files attached"),
	})
	return next, nil
}

// History returns the task's audit trail, newest first.
func (uc *TaskUseCase) History(ctx context.Context, id string) ([]*domain.AuditLogEntry, error) {
	if _, err := uc.taskRepo.FindByID(ctx, id); err != nil {
		return nil, repoError(err, entity.ResourceTask, id, "find")
	}
	entries, err := uc.auditRepo.QueryByResource(ctx, entity.ResourceTask, domain.StringPtr(id))
	if err != nil {
		return nil, apperror.Storage("failed to load audit logs", err)
	}
	return entries, nil
}

// parseRemark accepts either the remark text or an object {text, file}.
func parseRemark(v any) (text, file string, err error) {
	switch r := v.(type) {
	case string:
		text = r
	case map[string]any:
		text, _ = r["text"].(string)
		file, _ = r["file"].(string)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", "", apperror.Validation("Remark text is required").WithField(domain.FieldRemarks, "text is required")
	}
	return text, file, nil
}
