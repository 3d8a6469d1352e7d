package handler

import (
	"net/http"

	"github.com/fixora/taskhub/application/port/inbound"
	"github.com/fixora/taskhub/application/requestctx"
	"github.com/fixora/taskhub/domain/apperror"
	"github.com/fixora/taskhub/domain/entity"
	"github.com/fixora/taskhub/infrastructure/http/response"
	"github.com/fixora/taskhub/infrastructure/http/validator"
)

type EmployeeHandler struct {
	resourceHandler[entity.Employee, inbound.CreateEmployeeRequest]
	useCase inbound.EmployeeUseCase
}

func NewEmployeeHandler(uc inbound.EmployeeUseCase, v *validator.Validator) *EmployeeHandler {
	return &EmployeeHandler{
		resourceHandler: resourceHandler[entity.Employee, inbound.CreateEmployeeRequest]{useCase: uc, validator: v, name: "Employee"},
		useCase:         uc,
	}
}

func (h *EmployeeHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		response.WriteError(w, err)
		return
	}
	employees, err := h.useCase.List(r.Context(), filter)
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "success", employees)
}

// ChangePassword updates the caller's own password.
func (h *EmployeeHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestctx.ActorFrom(r.Context())
	if !ok {
		response.WriteError(w, apperror.Auth(apperror.ErrCodeMissingToken, "User not authenticated"))
		return
	}

	var req inbound.ChangePasswordRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		response.WriteError(w, err)
		return
	}
	if err := h.useCase.ChangePassword(r.Context(), actor.ID, req); err != nil {
		response.WriteError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Password updated successfully", nil)
}
