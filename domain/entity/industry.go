package entity

import (
	"fmt"
	"strings"
	"time"

	"github.com/fixora/taskhub/domain/apperror"
	"github.com/google/uuid"
)

var IndustryMutableFields = []string{"name", "location", "contact_points"}

type ContactPoint struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type Industry struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Location      string         `json:"location"`
	ContactPoints []ContactPoint `json:"contact_points"`
	CreatedAt     time.Time      `json:"created_at"`
}

func NewIndustry(name, location string, contacts []ContactPoint) *Industry {
	if contacts == nil {
		contacts = []ContactPoint{}
	}
	return &Industry{
		ID:            uuid.New().String(),
		Name:          strings.TrimSpace(name),
		Location:      strings.TrimSpace(location),
		ContactPoints: contacts,
		CreatedAt:     time.Now().UTC(),
	}
}

func (i *Industry) AuditName() string {
	return i.Name
}

func (i *Industry) Validate() error {
	errs := fieldErrors{}
	errs.require("name", i.Name)
	errs.require("location", i.Location)
	for idx, cp := range i.ContactPoints {
		if cp.Name == "" {
			errs[fmt.Sprintf("contact_points[%d].name", idx)] = "is required"
		}
		if cp.Email != "" && !emailRegex.MatchString(cp.Email) {
			errs[fmt.Sprintf("contact_points[%d].email", idx)] = "must be a valid email address"
		}
	}
	if len(errs) > 0 {
		return apperror.ValidationFields("Invalid industry", errs)
	}
	return nil
}
