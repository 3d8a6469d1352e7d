package entity

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/fixora/taskhub/domain/apperror"
	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskStatusCancelled  TaskStatus = "Cancelled"
	TaskStatusInProgress TaskStatus = "In Progress"
	TaskStatusCompleted  TaskStatus = "Completed"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusCancelled, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

const (
	taskDescriptionMin = 10
	taskDescriptionMax = 500
)

var TaskMutableFields = []string{
	"title", "description", "assigned_to", "status", "start_date", "end_date",
	"partner_organization", "industry",
}

// Remark is an append-only note on a task.
type Remark struct {
	Text      string    `json:"text"`
	File      string    `json:"file,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Task struct {
	ID                  string     `json:"id"`
	Title               string     `json:"title"`
	Description         string     `json:"description"`
	CreatedBy           string     `json:"created_by"`
	AssignedTo          []string   `json:"assigned_to"`
	Status              TaskStatus `json:"status"`
	StartDate           time.Time  `json:"start_date"`
	EndDate             time.Time  `json:"end_date"`
	Files               []string   `json:"files"`
	PartnerOrganization string     `json:"partner_organization"`
	Industry            string     `json:"industry"`
	Remarks             []Remark   `json:"remarks"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// NewTask fills identity, defaults and timestamps on a caller-populated task.
func NewTask(t Task, createdBy string) *Task {
	now := time.Now().UTC()
	t.ID = uuid.New().String()
	t.Title = strings.TrimSpace(t.Title)
	t.Description = strings.TrimSpace(t.Description)
	t.CreatedBy = createdBy
	if t.Status == "" {
		t.Status = TaskStatusInProgress
	}
	if t.AssignedTo == nil {
		t.AssignedTo = []string{}
	}
	if t.Files == nil {
		t.Files = []string{}
	}
	if t.Remarks == nil {
		t.Remarks = []Remark{}
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	return &t
}

func (t *Task) AuditName() string {
	return t.Title
}

// AddRemark appends a remark; existing remarks are never rewritten.
func (t *Task) AddRemark(text, file string, at time.Time) Remark {
	r := Remark{Text: strings.TrimSpace(text), File: file, CreatedAt: at.UTC()}
	t.Remarks = append(t.Remarks, r)
	return r
}

func (t *Task) AddFiles(urls ...string) {
	t.Files = append(t.Files, urls...)
}

// IsAssigned reports whether the employee is among the assignees.
func (t *Task) IsAssigned(employeeID string) bool {
	for _, id := range t.AssignedTo {
		if id == employeeID {
			return true
		}
	}
	return false
}

func (t *Task) Validate() error {
	errs := fieldErrors{}
	errs.require("title", t.Title)
	errs.require("created_by", t.CreatedBy)
	errs.require("partner_organization", t.PartnerOrganization)
	errs.require("industry", t.Industry)
	if n := utf8.RuneCountInString(t.Description); n < taskDescriptionMin || n > taskDescriptionMax {
		errs["description"] = "must be between 10 and 500 characters"
	}
	if len(t.AssignedTo) == 0 {
		errs["assigned_to"] = "at least one assignee is required"
	}
	if !t.Status.Valid() {
		errs["status"] = "must be one of Cancelled, In Progress, Completed"
	}
	if t.StartDate.IsZero() {
		errs["start_date"] = "is required"
	}
	if t.EndDate.IsZero() {
		errs["end_date"] = "is required"
	}
	if !t.StartDate.IsZero() && !t.EndDate.IsZero() && !t.EndDate.After(t.StartDate) {
		errs["end_date"] = "must be after start_date"
	}
	for _, r := range t.Remarks {
		if r.Text == "" {
			errs["remarks"] = "remark text is required"
			break
		}
	}
	if len(errs) > 0 {
		return apperror.ValidationFields("Invalid task", errs)
	}
	return nil
}
