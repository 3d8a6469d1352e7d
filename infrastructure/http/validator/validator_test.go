package validator

import (
	"testing"
	"time"

	"github.com/fixora/taskhub/application/port/inbound"
	"github.com/fixora/taskhub/domain/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStruct(t *testing.T) {
	v := New()

	t.Run("valid", func(t *testing.T) {
		err := v.Struct(inbound.CreateOrganizationRequest{Name: "Curin", Location: "Austin, TX"})
		assert.NoError(t, err)
	})

	t.Run("uses json names", func(t *testing.T) {
		err := v.Struct(inbound.CreateEmployeeRequest{FirstName: "John", Email: "not-an-email", Designation: "Boss", Password: "short"})
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, apperror.KindValidation, appErr.Kind)
		assert.Equal(t, "is required", appErr.Fields["last_name"])
		assert.Equal(t, "must be a valid email", appErr.Fields["email"])
		assert.Contains(t, appErr.Fields["designation"], "must be one of")
		assert.Equal(t, "must be at least 8", appErr.Fields["password"])
		assert.NotContains(t, appErr.Fields, "first_name")
	})

	t.Run("cross field", func(t *testing.T) {
		start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		err := v.Struct(inbound.CreateTaskRequest{
			Title:               "Audit",
			Description:         "Quarterly audit work",
			AssignedTo:          []string{"e1"},
			StartDate:           start,
			EndDate:             start.Add(-time.Hour),
			PartnerOrganization: "o1",
			Industry:            "i1",
		})
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, "must be after StartDate", appErr.Fields["end_date"])
	})
}
