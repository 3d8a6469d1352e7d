package entity

import (
	"strings"
	"time"

	"github.com/fixora/taskhub/domain/apperror"
	"github.com/google/uuid"
)

// MaxPosters caps the number of posters attached to an event.
const MaxPosters = 5

var EventMutableFields = []string{
	"name", "start_date", "end_date", "location", "description", "budget",
	"convener", "organised_by", "organizations", "industries", "employees",
}

type Event struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Location      string    `json:"location"`
	Description   string    `json:"description"`
	Budget        float64   `json:"budget"`
	CreatedBy     string    `json:"created_by"`
	Convener      string    `json:"convener"`
	OrganisedBy   string    `json:"organised_by"`
	Organizations []string  `json:"organizations"`
	Industries    []string  `json:"industries"`
	Employees     []string  `json:"employees"`
	Posters       []FileRef `json:"posters"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewEvent fills identity and timestamps on a caller-populated event.
func NewEvent(e Event, createdBy string) *Event {
	e.ID = uuid.New().String()
	e.Name = strings.TrimSpace(e.Name)
	e.CreatedBy = createdBy
	e.CreatedAt = time.Now().UTC()
	if e.Organizations == nil {
		e.Organizations = []string{}
	}
	if e.Industries == nil {
		e.Industries = []string{}
	}
	if e.Employees == nil {
		e.Employees = []string{}
	}
	if e.Posters == nil {
		e.Posters = []FileRef{}
	}
	return &e
}

func (e *Event) AuditName() string {
	return e.Name
}

func (e *Event) AddPosters(refs ...FileRef) error {
	if len(e.Posters)+len(refs) > MaxPosters {
		return apperror.New(apperror.KindValidation, apperror.ErrCodeTooManyFiles, "An event can have at most 5 posters", nil)
	}
	e.Posters = append(e.Posters, refs...)
	return nil
}

func (e *Event) Validate() error {
	errs := fieldErrors{}
	errs.require("name", e.Name)
	errs.require("location", e.Location)
	errs.require("description", e.Description)
	errs.require("convener", e.Convener)
	errs.require("organised_by", e.OrganisedBy)
	if e.StartDate.IsZero() {
		errs["start_date"] = "is required"
	}
	if e.EndDate.IsZero() {
		errs["end_date"] = "is required"
	}
	if !e.StartDate.IsZero() && !e.EndDate.IsZero() && e.EndDate.Before(e.StartDate) {
		errs["end_date"] = "must not be before start_date"
	}
	if e.Budget < 0 {
		errs["budget"] = "must not be negative"
	}
	if len(e.Posters) > MaxPosters {
		errs["posters"] = "at most 5 posters"
	}
	if len(errs) > 0 {
		return apperror.ValidationFields("Invalid event", errs)
	}
	return nil
}
