package usecase

import (
	"testing"

	"github.com/fixora/taskhub/application/port/inbound"
	"github.com/fixora/taskhub/domain"
	"github.com/fixora/taskhub/domain/apperror"
	"github.com/fixora/taskhub/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEmployeeFixture() (*EmployeeUseCase, *fakeEmployeeRepo, *fakeAuditRepo) {
	repo := newFakeEmployeeRepo()
	audit := &fakeAuditRepo{}
	return NewEmployeeUseCase(repo, fakePasswordService{}, newRecorder(audit, false)), repo, audit
}

func aliceRequest() inbound.CreateEmployeeRequest {
	return inbound.CreateEmployeeRequest{
		FirstName:   "Alice",
		LastName:    "Johnson",
		Email:       "Alice.Johnson@curin.com",
		Phone:       "+14155550101",
		Designation: "PPI",
		Password:    "password123",
	}
}

func TestEmployeeUseCase_Create(t *testing.T) {
	ctx := actorCtx("admin-1", "LPI")

	t.Run("hashes password and audits without it", func(t *testing.T) {
		uc, repo, audit := newEmployeeFixture()

		emp, err := uc.Create(ctx, aliceRequest())
		require.NoError(t, err)
		assert.Equal(t, "alice.johnson@curin.com", emp.Email)
		assert.Equal(t, "hashed:password123", repo.items[emp.ID].PasswordHash)
		assert.Equal(t, "admin-1", *emp.CreatedBy)

		entry := audit.last()
		assert.Equal(t, domain.AuditChange{Field: "employee", OldValue: nil, NewValue: "Employee created"}, entry.Changes[0])
		doc := entry.Metadata[domain.MetadataCreatedDocument].(map[string]any)
		assert.NotContains(t, doc, "password")
		assert.NotContains(t, doc, "PasswordHash")
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		uc, _, audit := newEmployeeFixture()
		_, err := uc.Create(ctx, aliceRequest())
		require.NoError(t, err)

		_, err = uc.Create(ctx, aliceRequest())
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
		assert.Len(t, audit.entries, 1)
	})
}

func TestEmployeeUseCase_Update(t *testing.T) {
	ctx := actorCtx("admin-1", "LPI")

	t.Run("password change is redacted", func(t *testing.T) {
		uc, repo, audit := newEmployeeFixture()
		emp, _ := uc.Create(ctx, aliceRequest())

		_, err := uc.Update(ctx, emp.ID, domain.Updates{
			{Name: "phone", Value: "+14155550199"},
			{Name: "password", Value: "new-password"},
		})
		require.NoError(t, err)
		assert.Equal(t, "hashed:new-password", repo.items[emp.ID].PasswordHash)

		changes := audit.last().Changes
		require.Len(t, changes, 2)
		assert.Equal(t, "phone", changes[0].Field)
		assert.Equal(t, domain.AuditChange{Field: "password", OldValue: nil, NewValue: RedactedValue}, changes[1])
	})

	t.Run("email is normalized before diff", func(t *testing.T) {
		uc, _, audit := newEmployeeFixture()
		emp, _ := uc.Create(ctx, aliceRequest())
		before := len(audit.entries)

		updated, err := uc.Update(ctx, emp.ID, domain.Updates{{Name: "email", Value: "ALICE.JOHNSON@curin.com"}})
		require.NoError(t, err)
		assert.Equal(t, "alice.johnson@curin.com", updated.Email)
		assert.Len(t, audit.entries, before)
	})

	t.Run("created_by is immutable", func(t *testing.T) {
		uc, _, _ := newEmployeeFixture()
		emp, _ := uc.Create(ctx, aliceRequest())

		_, err := uc.Update(ctx, emp.ID, domain.Updates{{Name: "created_by", Value: "x"}})
		assert.True(t, apperror.IsValidation(err))
	})

	t.Run("short password rejected", func(t *testing.T) {
		uc, _, _ := newEmployeeFixture()
		emp, _ := uc.Create(ctx, aliceRequest())

		_, err := uc.Update(ctx, emp.ID, domain.Updates{{Name: "password", Value: "short"}})
		assert.True(t, apperror.IsValidation(err))
	})
}

func TestEmployeeUseCase_ChangePassword(t *testing.T) {
	uc, repo, audit := newEmployeeFixture()
	emp, _ := uc.Create(actorCtx("admin-1", "LPI"), aliceRequest())
	ctx := actorCtx(emp.ID, "PPI")

	err := uc.ChangePassword(ctx, emp.ID, inbound.ChangePasswordRequest{OldPassword: "wrong", NewPassword: "another-pass"})
	assert.True(t, apperror.IsValidation(err))

	require.NoError(t, uc.ChangePassword(ctx, emp.ID, inbound.ChangePasswordRequest{OldPassword: "password123", NewPassword: "another-pass"}))
	assert.Equal(t, "hashed:another-pass", repo.items[emp.ID].PasswordHash)

	entry := audit.last()
	assert.Equal(t, emp.ID, *entry.ChangedBy)
	assert.Equal(t, RedactedValue, entry.Changes[0].NewValue)
}

func TestEmployeeUseCase_Delete(t *testing.T) {
	ctx := actorCtx("admin-1", "LPI")
	uc, repo, audit := newEmployeeFixture()
	emp, _ := uc.Create(ctx, aliceRequest())

	err := uc.Delete(actorCtx(emp.ID, "PPI"), emp.ID)
	assert.Equal(t, apperror.KindForbidden, apperror.KindOf(err))

	require.NoError(t, uc.Delete(ctx, emp.ID))
	assert.Empty(t, repo.items)
	doc := audit.last().Metadata[domain.MetadataDeletedDocument].(map[string]any)
	assert.Equal(t, "Alice", doc["first_name"])
	assert.Equal(t, `Employee "Alice Johnson" deleted`, audit.last().Remarks)
	assert.Equal(t, entity.ResourceEmployee, audit.last().ResourceType)
}
