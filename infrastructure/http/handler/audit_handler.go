package handler

import (
	"net/http"

	"github.com/fixora/taskhub/application/port/inbound"
	"github.com/fixora/taskhub/domain"
	"github.com/fixora/taskhub/infrastructure/http/response"
)

type AuditHandler struct {
	useCase inbound.AuditQueryUseCase
}

func NewAuditHandler(uc inbound.AuditQueryUseCase) *AuditHandler {
	return &AuditHandler{useCase: uc}
}

// Search lists audit entries newest first, filtered by resource and actor.
func (h *AuditHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"), "limit")
	if err != nil {
		response.WriteError(w, err)
		return
	}
	offset, err := intParam(q.Get("offset"), "offset")
	if err != nil {
		response.WriteError(w, err)
		return
	}

	entries, err := h.useCase.Search(r.Context(), domain.AuditFilter{
		ResourceType: q.Get("resource_type"),
		ResourceID:   q.Get("resource_id"),
		ChangedBy:    q.Get("changed_by"),
		Limit:        limit,
		Offset:       offset,
	})
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "success", entries)
}
