package inbound

import (
	"context"
)

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string      `json:"token"`
	ExpiresIn int         `json:"expires_in"`
	Employee  *MeResponse `json:"employee"`
}

type MeResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	Designation string `json:"designation"`
}

type AuthUseCase interface {
	Login(ctx context.Context, req LoginRequest, clientIP string) (*LoginResponse, error)
	Me(ctx context.Context, employeeID string) (*MeResponse, error)
}
