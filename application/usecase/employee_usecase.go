package usecase

import (
	"context"
	"errors"

	"github.com/fixora/taskhub/application/port/inbound"
	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/application/requestctx"
	"github.com/fixora/taskhub/domain"
	"github.com/fixora/taskhub/domain/apperror"
	"github.com/fixora/taskhub/domain/entity"
)

// RedactedValue replaces secrets in audit changes.
const RedactedValue = "[redacted]"

type EmployeeUseCase struct {
	employeeRepo    outbound.EmployeeRepository
	passwordService outbound.PasswordService
	audit           *AuditRecorder
}

func NewEmployeeUseCase(
	employeeRepo outbound.EmployeeRepository,
	passwordService outbound.PasswordService,
	audit *AuditRecorder,
) *EmployeeUseCase {
	return &EmployeeUseCase{
		employeeRepo:    employeeRepo,
		passwordService: passwordService,
		audit:           audit,
	}
}

func (uc *EmployeeUseCase) Create(ctx context.Context, req inbound.CreateEmployeeRequest) (*entity.Employee, error) {
	employee := entity.NewEmployee(req.FirstName, req.LastName, req.Email, req.Phone,
		entity.Designation(req.Designation), requestctx.ActorID(ctx))
	if err := employee.Validate(); err != nil {
		return nil, err
	}
	if err := uc.ensureEmailFree(ctx, employee.Email, ""); err != nil {
		return nil, err
	}

	hash, err := uc.passwordService.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.Validation("Invalid password").WithField("password", err.Error())
	}
	employee.PasswordHash = hash

	if err := uc.employeeRepo.Create(ctx, employee); err != nil {
		return nil, repoError(err, entity.ResourceEmployee, employee.ID, "create")
	}

	uc.audit.RecordCreate(ctx, entity.ResourceEmployee, employee.ID, employee.FullName(), employee)
	return employee, nil
}

func (uc *EmployeeUseCase) Get(ctx context.Context, id string) (*entity.Employee, error) {
	employee, err := uc.employeeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, entity.ResourceEmployee, id, "find")
	}
	uc.audit.RecordRead(ctx, entity.ResourceEmployee, id)
	return employee, nil
}

func (uc *EmployeeUseCase) List(ctx context.Context, filter outbound.ListFilter) ([]*entity.Employee, error) {
	employees, err := uc.employeeRepo.List(ctx, normalizeListFilter(filter))
	if err != nil {
		return nil, apperror.Storage("failed to list employees", err)
	}
	return employees, nil
}

// Update applies profile updates. A password update is hashed and recorded
// as a redacted change.
func (uc *EmployeeUseCase) Update(ctx context.Context, id string, updates domain.Updates) (*entity.Employee, error) {
	if err := checkMutable(entity.EmployeeMutableFields, updates); err != nil {
		return nil, err
	}

	password, hasPassword := updates.Get(entity.FieldPassword)
	fields := updates.Without(entity.FieldPassword)
	if email, ok := fields.Get("email"); ok {
		if s, isString := email.(string); isString {
			fields = fields.Set("email", entity.NormalizeEmail(s))
		}
	}

	current, err := uc.employeeRepo.FindByID(ctx, id)
	if err != nil {
		return nil, repoError(err, entity.ResourceEmployee, id, "find")
	}

	m, err := applyUpdates(current, fields)
	if err != nil {
		return nil, err
	}
	next := m.next
	next.PasswordHash = current.PasswordHash
	next.UpdatedAt = nowUTC()

	var extra []domain.AuditChange
	if hasPassword {
		plain, _ := password.(string)
		if len(plain) < 8 {
			return nil, apperror.Validation("Invalid password").WithField("password", "must be at least 8 characters")
		}
		hash, err := uc.passwordService.HashPassword(plain)
		if err != nil {
			return nil, apperror.Validation("Invalid password").WithField("password", err.Error())
		}
		next.PasswordHash = hash
		extra = append(extra, passwordChange())
	}

	if err := next.Validate(); err != nil {
		return nil, err
	}
	if next.Email != current.Email {
		if err := uc.ensureEmailFree(ctx, next.Email, id); err != nil {
			return nil, err
		}
	}

	if err := uc.employeeRepo.Update(ctx, next); err != nil {
		return nil, repoError(err, entity.ResourceEmployee, id, "update")
	}
	if hasPassword {
		if err := uc.employeeRepo.UpdatePassword(ctx, id, next.PasswordHash); err != nil {
			return nil, repoError(err, entity.ResourceEmployee, id, "update")
		}
	}

	uc.audit.RecordChange(ctx, ChangeRecord{
		Action:       domain.AuditActionUpdate,
		ResourceType: entity.ResourceEmployee,
		ResourceID:   domain.StringPtr(id),
		Before:       m.before,
		Updates:      fields,
		Extra:        extra,
		Remarks:      auditRemark(entity.ResourceEmployee, next.FullName(), "updated"),
	})
	return next, nil
}

func (uc *EmployeeUseCase) Delete(ctx context.Context, id string) error {
	if actor, ok := requestctx.ActorFrom(ctx); ok && actor.ID == id {
		return apperror.Forbidden("You cannot delete your own account")
	}

	current, err := uc.employeeRepo.FindByID(ctx, id)
	if err != nil {
		return repoError(err, entity.ResourceEmployee, id, "find")
	}
	before, err := domain.Snapshot(current)
	if err != nil {
		return apperror.Storage("failed to snapshot employee", err)
	}

	if _, err := uc.employeeRepo.Delete(ctx, id); err != nil {
		return repoError(err, entity.ResourceEmployee, id, "delete")
	}

	uc.audit.RecordDelete(ctx, entity.ResourceEmployee, id, current.FullName(), before)
	return nil
}

// ChangePassword verifies the old password before storing the new one.
func (uc *EmployeeUseCase) ChangePassword(ctx context.Context, employeeID string, req inbound.ChangePasswordRequest) error {
	employee, err := uc.employeeRepo.FindByID(ctx, employeeID)
	if err != nil {
		return repoError(err, entity.ResourceEmployee, employeeID, "find")
	}

	if err := uc.passwordService.ComparePassword(employee.PasswordHash, req.OldPassword); err != nil {
		return apperror.Validation("Old password is incorrect").WithField("old_password", "does not match")
	}

	hash, err := uc.passwordService.HashPassword(req.NewPassword)
	if err != nil {
		return apperror.Validation("Invalid password").WithField("new_password", err.Error())
	}
	if err := uc.employeeRepo.UpdatePassword(ctx, employeeID, hash); err != nil {
		return repoError(err, entity.ResourceEmployee, employeeID, "update")
	}

	uc.audit.Record(ctx, RecordRequest{
		Action:       domain.AuditActionUpdate,
		ResourceType: entity.ResourceEmployee,
		ResourceID:   domain.StringPtr(employeeID),
		Changes:      []domain.AuditChange{passwordChange()},
		Remarks:      "Password updated",
	})
	return nil
}

func (uc *EmployeeUseCase) ensureEmailFree(ctx context.Context, email, selfID string) error {
	existing, err := uc.employeeRepo.FindByEmail(ctx, email)
	switch {
	case errors.Is(err, outbound.ErrNotFound):
		return nil
	case err != nil:
		return apperror.Storage("failed to check email", err)
	case existing != nil && existing.ID != selfID:
		return apperror.Conflict("Employee with this email already exists").WithField("email", email)
	}
	return nil
}

func passwordChange() domain.AuditChange {
	return domain.AuditChange{Field: entity.FieldPassword, OldValue: nil, NewValue: RedactedValue}
}
