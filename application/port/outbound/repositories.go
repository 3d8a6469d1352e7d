package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/fixora/taskhub/domain/entity"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("record already exists")
)

// ListFilter pages through a collection. Zero Limit means the repository default.
type ListFilter struct {
	Search string
	Limit  int
	Offset int
}

// TaskFilter narrows a task listing. PartnerOrganization and Industry match
// case-insensitively on a substring; DateFrom and DateTo bound created_at
// inclusively.
type TaskFilter struct {
	ListFilter
	Status              string
	AssignedTo          string
	CreatedBy           string
	PartnerOrganization string
	Industry            string
	DateFrom            *time.Time
	DateTo              *time.Time
	SortBy              string
	SortOrder           string
	// Page, when positive, replaces Offset with (Page-1)*Limit.
	Page                int
}

const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// TaskSortFields lists the columns a task listing may be ordered by.
var TaskSortFields = []string{
	"created_at",
	"updated_at",
	"start_date",
	"end_date",
	"status",
	"title",
	"partner_organization",
	"industry",
}

// GroupCount is one bucket of a GROUP BY count.
type GroupCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type TaskSummary struct {
	TotalTasks      int          `json:"total_tasks"`
	RecentTasks     int          `json:"recent_tasks"`
	StatusBreakdown []GroupCount `json:"status_breakdown"`
	TopPartners     []GroupCount `json:"top_partners"`
	TopIndustries   []GroupCount `json:"top_industries"`
}

type EmployeeRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Employee, error)
	FindByEmail(ctx context.Context, email string) (*entity.Employee, error)
	Create(ctx context.Context, employee *entity.Employee) error
	Update(ctx context.Context, employee *entity.Employee) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Delete(ctx context.Context, id string) (*entity.Employee, error)
	List(ctx context.Context, filter ListFilter) ([]*entity.Employee, error)
}

type OrganizationRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Organization, error)
	Create(ctx context.Context, org *entity.Organization) error
	Update(ctx context.Context, org *entity.Organization) error
	Delete(ctx context.Context, id string) (*entity.Organization, error)
	List(ctx context.Context, filter ListFilter) ([]*entity.Organization, error)
}

type IndustryRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Industry, error)
	Create(ctx context.Context, industry *entity.Industry) error
	Update(ctx context.Context, industry *entity.Industry) error
	Delete(ctx context.Context, id string) (*entity.Industry, error)
	List(ctx context.Context, filter ListFilter) ([]*entity.Industry, error)
}

type EventRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Event, error)
	Create(ctx context.Context, event *entity.Event) error
	Update(ctx context.Context, event *entity.Event) error
	Delete(ctx context.Context, id string) (*entity.Event, error)
	List(ctx context.Context, filter ListFilter) ([]*entity.Event, error)
}

type TaskRepository interface {
	FindByID(ctx context.Context, id string) (*entity.Task, error)
	Create(ctx context.Context, task *entity.Task) error
	Update(ctx context.Context, task *entity.Task) error
	Delete(ctx context.Context, id string) (*entity.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]*entity.Task, error)
	Count(ctx context.Context, filter TaskFilter) (int, error)
	// Summary counts every task, those created at or after since, and the
	// largest status, partner and industry groups (at most top of each).
	Summary(ctx context.Context, since time.Time, top int) (*TaskSummary, error)
}
