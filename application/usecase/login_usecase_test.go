package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/fixora/taskhub/application/port/inbound"
	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/domain/apperror"
	"github.com/fixora/taskhub/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newLoginFixture() (*LoginUseCase, *mockTokenService, *fakeRateLimit, *entity.Employee) {
	repo := newFakeEmployeeRepo()
	emp := entity.NewEmployee("John", "Smith", "john.smith@curin.com", "", entity.DesignationLPI, nil)
	emp.PasswordHash = "hashed:password123"
	_ = repo.Create(context.Background(), emp)

	tokens := &mockTokenService{}
	limiter := newFakeRateLimit()
	uc := NewLoginUseCase(repo, tokens, fakePasswordService{}, limiter, LoginLimits{
		IPAttempts:    3,
		IPWindow:      time.Minute,
		UserAttempts:  2,
		UserWindow:    time.Minute,
		BlockDuration: time.Minute,
	})
	return uc, tokens, limiter, emp
}

func TestLoginUseCase_Login(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		uc, tokens, _, emp := newLoginFixture()
		tokens.On("GenerateAccessToken", outbound.TokenClaims{
			UserID: emp.ID, Email: emp.Email, Designation: "LPI",
		}).Return("signed-token", nil)

		resp, err := uc.Login(ctx, inbound.LoginRequest{Email: "John.Smith@curin.com", Password: "password123"}, "1.2.3.4")
		require.NoError(t, err)
		assert.Equal(t, "signed-token", resp.Token)
		assert.Equal(t, int((96 * time.Hour).Seconds()), resp.ExpiresIn)
		assert.Equal(t, "LPI", resp.Employee.Designation)
		tokens.AssertExpectations(t)
	})

	t.Run("wrong password", func(t *testing.T) {
		uc, tokens, limiter, _ := newLoginFixture()

		_, err := uc.Login(ctx, inbound.LoginRequest{Email: "john.smith@curin.com", Password: "nope"}, "1.2.3.4")
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, apperror.ErrCodeInvalidCredentials, appErr.Code)
		assert.Equal(t, 1, limiter.counts["login:ip:1.2.3.4"])
		tokens.AssertNotCalled(t, "GenerateAccessToken", mock.Anything)
	})

	t.Run("unknown email", func(t *testing.T) {
		uc, _, _, _ := newLoginFixture()
		_, err := uc.Login(ctx, inbound.LoginRequest{Email: "ghost@curin.com", Password: "password123"}, "1.2.3.4")
		assert.Equal(t, apperror.KindAuth, apperror.KindOf(err))
	})

	t.Run("blocks after repeated failures", func(t *testing.T) {
		uc, _, limiter, _ := newLoginFixture()
		req := inbound.LoginRequest{Email: "john.smith@curin.com", Password: "nope"}

		_, _ = uc.Login(ctx, req, "5.6.7.8")
		_, _ = uc.Login(ctx, req, "5.6.7.8")
		assert.True(t, limiter.blocked["login:user:john.smith@curin.com"])

		_, err := uc.Login(ctx, inbound.LoginRequest{Email: "john.smith@curin.com", Password: "password123"}, "5.6.7.8")
		appErr, ok := apperror.As(err)
		require.True(t, ok)
		assert.Equal(t, apperror.ErrCodeTooManyAttempts, appErr.Code)
	})

	t.Run("malformed email", func(t *testing.T) {
		uc, _, _, _ := newLoginFixture()
		_, err := uc.Login(ctx, inbound.LoginRequest{Email: "john", Password: "x"}, "1.2.3.4")
		assert.True(t, apperror.IsValidation(err))
	})
}

func TestLoginUseCase_Me(t *testing.T) {
	uc, _, _, emp := newLoginFixture()

	me, err := uc.Me(context.Background(), emp.ID)
	require.NoError(t, err)
	assert.Equal(t, "john.smith@curin.com", me.Email)

	_, err = uc.Me(context.Background(), "missing")
	assert.True(t, apperror.IsNotFound(err))
}
