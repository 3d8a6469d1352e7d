package handler

import (
	"net/http"

	"github.com/fixora/taskhub/application/port/inbound"
	"github.com/fixora/taskhub/application/requestctx"
	"github.com/fixora/taskhub/domain/apperror"
	"github.com/fixora/taskhub/infrastructure/http/middleware"
	"github.com/fixora/taskhub/infrastructure/http/response"
	"github.com/fixora/taskhub/infrastructure/http/validator"
	"github.com/fixora/taskhub/infrastructure/service/logger"
)

// LoginObserver counts login outcomes.
type LoginObserver interface {
	Login(success bool)
}

type AuthHandler struct {
	authUseCase inbound.AuthUseCase
	validator   *validator.Validator
	logger      logger.Logger
	observer    LoginObserver
}

func NewAuthHandler(authUseCase inbound.AuthUseCase, v *validator.Validator, log logger.Logger, observer LoginObserver) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		validator:   v,
		logger:      log,
		observer:    observer,
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req inbound.LoginRequest
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		response.WriteError(w, err)
		return
	}

	clientIP := middleware.ClientIP(r)
	loginRes, err := h.authUseCase.Login(r.Context(), req, clientIP)
	if h.observer != nil {
		h.observer.Login(err == nil)
	}
	logger.LogAuthEvent(r.Context(), h.logger, "login", req.Email, clientIP, err == nil, nil)
	if err != nil {
		response.WriteError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Login successful", loginRes)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, ok := requestctx.ActorFrom(r.Context())
	if !ok {
		response.WriteError(w, apperror.Auth(apperror.ErrCodeMissingToken, "User not authenticated"))
		return
	}

	me, err := h.authUseCase.Me(r.Context(), actor.ID)
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "success", me)
}
