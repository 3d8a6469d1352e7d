package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fixora/taskhub/application/port/inbound"
	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/domain/apperror"
	"github.com/fixora/taskhub/domain/entity"
	"github.com/fixora/taskhub/domain/valueobject"
)

// LoginLimits bounds failed login attempts per client IP and per email.
type LoginLimits struct {
	IPAttempts    int
	IPWindow      time.Duration
	UserAttempts  int
	UserWindow    time.Duration
	BlockDuration time.Duration
}

type LoginUseCase struct {
	employeeRepo    outbound.EmployeeRepository
	tokenService    outbound.TokenService
	passwordService outbound.PasswordService
	rateLimit       outbound.RateLimitService
	limits          LoginLimits
}

func NewLoginUseCase(
	employeeRepo outbound.EmployeeRepository,
	tokenService outbound.TokenService,
	passwordService outbound.PasswordService,
	rateLimit outbound.RateLimitService,
	limits LoginLimits,
) *LoginUseCase {
	return &LoginUseCase{
		employeeRepo:    employeeRepo,
		tokenService:    tokenService,
		passwordService: passwordService,
		rateLimit:       rateLimit,
		limits:          limits,
	}
}

func (uc *LoginUseCase) Login(ctx context.Context, req inbound.LoginRequest, clientIP string) (*inbound.LoginResponse, error) {
	credentials, err := valueobject.NewCredentials(req.Email, req.Password)
	if err != nil {
		return nil, apperror.Validation(err.Error())
	}

	ipKey := valueobject.ClientThrottleKey(clientIP)
	userKey := credentials.ThrottleKey()
	if err := uc.checkBlocked(ctx, ipKey, userKey); err != nil {
		return nil, err
	}

	employee, err := uc.employeeRepo.FindByEmail(ctx, credentials.Email())
	if err != nil && !errors.Is(err, outbound.ErrNotFound) {
		return nil, apperror.Storage("failed to find employee", err)
	}
	if employee == nil || uc.passwordService.ComparePassword(employee.PasswordHash, credentials.Password()) != nil {
		uc.recordFailure(ctx, ipKey, uc.limits.IPAttempts, uc.limits.IPWindow)
		uc.recordFailure(ctx, userKey, uc.limits.UserAttempts, uc.limits.UserWindow)
		return nil, apperror.InvalidCredentials()
	}

	token, err := uc.tokenService.GenerateAccessToken(outbound.TokenClaims{
		UserID:      employee.ID,
		Email:       employee.Email,
		Designation: string(employee.Designation),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	_ = uc.rateLimit.Reset(ctx, userKey)

	return &inbound.LoginResponse{
		Token:     token,
		ExpiresIn: int(uc.tokenService.TTL().Seconds()),
		Employee:  toMeResponse(employee),
	}, nil
}

func (uc *LoginUseCase) Me(ctx context.Context, employeeID string) (*inbound.MeResponse, error) {
	employee, err := uc.employeeRepo.FindByID(ctx, employeeID)
	if err != nil {
		return nil, repoError(err, entity.ResourceEmployee, employeeID, "find")
	}
	return toMeResponse(employee), nil
}

func (uc *LoginUseCase) checkBlocked(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		blocked, err := uc.rateLimit.IsBlocked(ctx, key)
		if err != nil {
			// limiter outage must not lock everyone out
			continue
		}
		if blocked {
			return apperror.TooManyAttempts("Too many failed login attempts. Please try again later.")
		}
	}
	return nil
}

func (uc *LoginUseCase) recordFailure(ctx context.Context, key string, limit int, window time.Duration) {
	if limit <= 0 {
		return
	}
	_ = uc.rateLimit.Increment(ctx, key, window)
	allowed, err := uc.rateLimit.CheckLimit(ctx, key, limit, window)
	if err == nil && !allowed {
		_ = uc.rateLimit.Block(ctx, key, uc.limits.BlockDuration, "too many failed logins")
	}
}

func toMeResponse(e *entity.Employee) *inbound.MeResponse {
	return &inbound.MeResponse{
		ID:          e.ID,
		Email:       e.Email,
		FirstName:   e.FirstName,
		LastName:    e.LastName,
		Designation: string(e.Designation),
	}
}
