package inbound

import (
	"context"
	"time"

	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/domain"
	"github.com/fixora/taskhub/domain/entity"
)

type CreateEmployeeRequest struct {
	FirstName   string `json:"first_name" validate:"required,max=100"`
	LastName    string `json:"last_name" validate:"required,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Phone       string `json:"phone" validate:"omitempty,max=17"`
	Designation string `json:"designation" validate:"required,oneof=LPI PPI User"`
	Password    string `json:"password" validate:"required,min=8"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=8,nefield=OldPassword"`
}

type EmployeeUseCase interface {
	Create(ctx context.Context, req CreateEmployeeRequest) (*entity.Employee, error)
	Get(ctx context.Context, id string) (*entity.Employee, error)
	List(ctx context.Context, filter outbound.ListFilter) ([]*entity.Employee, error)
	Update(ctx context.Context, id string, updates domain.Updates) (*entity.Employee, error)
	Delete(ctx context.Context, id string) error
	ChangePassword(ctx context.Context, employeeID string, req ChangePasswordRequest) error
}

type CreateOrganizationRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Location string `json:"location" validate:"required,max=200"`
}

type OrganizationUseCase interface {
	Create(ctx context.Context, req CreateOrganizationRequest) (*entity.Organization, error)
	Get(ctx context.Context, id string) (*entity.Organization, error)
	List(ctx context.Context, filter outbound.ListFilter) ([]*entity.Organization, error)
	Update(ctx context.Context, id string, updates domain.Updates) (*entity.Organization, error)
	Delete(ctx context.Context, id string) error
}

type CreateIndustryRequest struct {
	Name          string                `json:"name" validate:"required,max=200"`
	Location      string                `json:"location" validate:"required,max=200"`
	ContactPoints []entity.ContactPoint `json:"contact_points" validate:"omitempty,dive"`
}

type IndustryUseCase interface {
	Create(ctx context.Context, req CreateIndustryRequest) (*entity.Industry, error)
	Get(ctx context.Context, id string) (*entity.Industry, error)
	List(ctx context.Context, filter outbound.ListFilter) ([]*entity.Industry, error)
	Update(ctx context.Context, id string, updates domain.Updates) (*entity.Industry, error)
	Delete(ctx context.Context, id string) error
}

type CreateEventRequest struct {
	Name          string    `json:"name" validate:"required"`
	StartDate     time.Time `json:"start_date" validate:"required"`
	EndDate       time.Time `json:"end_date" validate:"required"`
	Location      string    `json:"location" validate:"required"`
	Description   string    `json:"description" validate:"required"`
	Budget        float64   `json:"budget" validate:"gte=0"`
	Convener      string    `json:"convener" validate:"required"`
	OrganisedBy   string    `json:"organised_by" validate:"required"`
	Organizations []string  `json:"organizations"`
	Industries    []string  `json:"industries"`
	Employees     []string  `json:"employees"`
}

type EventUseCase interface {
	Create(ctx context.Context, req CreateEventRequest) (*entity.Event, error)
	Get(ctx context.Context, id string) (*entity.Event, error)
	List(ctx context.Context, filter outbound.ListFilter) ([]*entity.Event, error)
	Update(ctx context.Context, id string, updates domain.Updates) (*entity.Event, error)
	Delete(ctx context.Context, id string) error
	AttachPosters(ctx context.Context, id string, files []outbound.FileUpload) (*entity.Event, error)
}

type CreateTaskRequest struct {
	Title               string    `json:"title" validate:"required,max=200"`
	Description         string    `json:"description" validate:"required,min=10,max=500"`
	AssignedTo          []string  `json:"assigned_to" validate:"required,min=1"`
	Status              string    `json:"status" validate:"omitempty,oneof='Cancelled' 'In Progress' 'Completed'"`
	StartDate           time.Time `json:"start_date" validate:"required"`
	EndDate             time.Time `json:"end_date" validate:"required,gtfield=StartDate"`
	PartnerOrganization string    `json:"partner_organization" validate:"required"`
	Industry            string    `json:"industry" validate:"required"`
}

// TaskPage is one page of a task listing with its totals.
type TaskPage struct {
	Tasks        []*entity.Task `json:"tasks"`
	TotalTasks   int            `json:"total_tasks"`
	TotalPages   int            `json:"total_pages"`
	CurrentPage  int            `json:"current_page"`
	TasksPerPage int            `json:"tasks_per_page"`
	HasNextPage  bool           `json:"has_next_page"`
	HasPrevPage  bool           `json:"has_prev_page"`
	NextPage     *int           `json:"next_page"`
	PrevPage     *int           `json:"prev_page"`
}

type TaskUseCase interface {
	Create(ctx context.Context, req CreateTaskRequest) (*entity.Task, error)
	Get(ctx context.Context, id string) (*entity.Task, error)
	List(ctx context.Context, filter outbound.TaskFilter) (*TaskPage, error)
	Summary(ctx context.Context) (*outbound.TaskSummary, error)
	Update(ctx context.Context, id string, updates domain.Updates) (*entity.Task, error)
	Delete(ctx context.Context, id string) error
	AttachFiles(ctx context.Context, id string, files []outbound.FileUpload) (*entity.Task, error)
	History(ctx context.Context, id string) ([]*domain.AuditLogEntry, error)
}

type AuditQueryUseCase interface {
	ForResource(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLogEntry, error)
	Search(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLogEntry, error)
}
