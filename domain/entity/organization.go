package entity

import (
	"strings"
	"time"

	"github.com/fixora/taskhub/domain/apperror"
	"github.com/google/uuid"
)

var OrganizationMutableFields = []string{"name", "location"}

type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	CreatedAt time.Time `json:"created_at"`
}

func NewOrganization(name, location string) *Organization {
	return &Organization{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(name),
		Location:  strings.TrimSpace(location),
		CreatedAt: time.Now().UTC(),
	}
}

func (o *Organization) AuditName() string {
	return o.Name
}

func (o *Organization) Validate() error {
	errs := fieldErrors{}
	errs.require("name", o.Name)
	errs.require("location", o.Location)
	if len(errs) > 0 {
		return apperror.ValidationFields("Invalid organization", errs)
	}
	return nil
}
