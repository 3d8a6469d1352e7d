package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/application/requestctx"
	"github.com/fixora/taskhub/domain/apperror"
	"github.com/fixora/taskhub/domain/entity"
	"github.com/fixora/taskhub/infrastructure/http/response"
	"github.com/fixora/taskhub/infrastructure/service/jwt"
)

const AuthTokenHeader = "x-auth-token"

type AuthMiddleware struct {
	tokenService outbound.TokenService
	employees    outbound.EmployeeRepository
}

func NewAuthMiddleware(tokenService outbound.TokenService, employees outbound.EmployeeRepository) *AuthMiddleware {
	return &AuthMiddleware{
		tokenService: tokenService,
		employees:    employees,
	}
}

// Require authenticates the request and, when roles are given, checks the
// employee's current designation against them.
func (m *AuthMiddleware) Require(roles ...entity.Designation) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			token := extractToken(r)
			if token == "" {
				response.WriteError(w, apperror.Auth(apperror.ErrCodeMissingToken, "No token provided"))
				return
			}

			claims, err := m.tokenService.ValidateAccessToken(token)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					response.WriteError(w, apperror.Auth(apperror.ErrCodeTokenExpired, "Token expired"))
					return
				}
				response.WriteError(w, apperror.Auth(apperror.ErrCodeInvalidToken, "Invalid token"))
				return
			}

			employee, err := m.employees.FindByID(r.Context(), claims.UserID)
			if err != nil || employee == nil {
				if err != nil && !errors.Is(err, outbound.ErrNotFound) {
					response.WriteError(w, apperror.Storage("failed to resolve employee", err))
					return
				}
				response.WriteError(w, apperror.Auth(apperror.ErrCodeInvalidToken, "User not found"))
				return
			}

			if len(roles) > 0 && !hasRole(employee.Designation, roles) {
				response.WriteError(w, apperror.Forbidden("Insufficient permissions"))
				return
			}

			ctx := requestctx.WithActor(r.Context(), requestctx.Actor{
				ID:          employee.ID,
				Email:       employee.Email,
				Designation: string(employee.Designation),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	}
}

// extractToken reads a Bearer token, falling back to the x-auth-token header.
func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok && strings.TrimSpace(token) != "" {
		return strings.TrimSpace(token)
	}
	return strings.TrimSpace(r.Header.Get(AuthTokenHeader))
}

func hasRole(designation entity.Designation, roles []entity.Designation) bool {
	for _, role := range roles {
		if designation == role {
			return true
		}
	}
	return false
}
