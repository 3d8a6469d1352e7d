package entity

import (
	"strings"
	"time"

	"github.com/fixora/taskhub/domain/apperror"
	"github.com/google/uuid"
)

// Designation is the employee's role.
type Designation string

const (
	DesignationLPI  Designation = "LPI"
	DesignationPPI  Designation = "PPI"
	DesignationUser Designation = "User"
)

func (d Designation) Valid() bool {
	switch d {
	case DesignationLPI, DesignationPPI, DesignationUser:
		return true
	}
	return false
}

// IsManager reports whether the designation may manage other resources.
func (d Designation) IsManager() bool {
	return d == DesignationLPI || d == DesignationPPI
}

// FieldPassword is accepted in employee updates but never snapshotted.
const FieldPassword = "password"

// EmployeeMutableFields lists the fields an update may touch.
var EmployeeMutableFields = []string{"first_name", "last_name", "email", "phone", "designation", FieldPassword}

type Employee struct {
	ID           string      `json:"id"`
	FirstName    string      `json:"first_name"`
	LastName     string      `json:"last_name"`
	Email        string      `json:"email"`
	Phone        string      `json:"phone,omitempty"`
	Designation  Designation `json:"designation"`
	PasswordHash string      `json:"-"`
	CreatedBy    *string     `json:"created_by"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func NewEmployee(firstName, lastName, email, phone string, designation Designation, createdBy *string) *Employee {
	now := time.Now().UTC()
	return &Employee{
		ID:          uuid.New().String(),
		FirstName:   strings.TrimSpace(firstName),
		LastName:    strings.TrimSpace(lastName),
		Email:       NormalizeEmail(email),
		Phone:       strings.TrimSpace(phone),
		Designation: designation,
		CreatedBy:   createdBy,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (e *Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}

func (e *Employee) AuditName() string {
	return e.FullName()
}

func (e *Employee) Validate() error {
	errs := fieldErrors{}
	errs.require("first_name", e.FirstName)
	errs.require("last_name", e.LastName)
	if !emailRegex.MatchString(e.Email) {
		errs["email"] = "must be a valid email address"
	}
	if e.Phone != "" && !phoneRegex.MatchString(e.Phone) {
		errs["phone"] = "must be a valid phone number"
	}
	if !e.Designation.Valid() {
		errs["designation"] = "must be one of LPI, PPI, User"
	}
	if len(errs) > 0 {
		return apperror.ValidationFields("Invalid employee", errs)
	}
	return nil
}
