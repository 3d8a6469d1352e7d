package handler

import (
	"fmt"
	"net/http"

	"github.com/fixora/taskhub/application/port/inbound"
	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/domain/entity"
	"github.com/fixora/taskhub/infrastructure/http/response"
	"github.com/fixora/taskhub/infrastructure/http/validator"
)

type OrganizationHandler struct {
	resourceHandler[entity.Organization, inbound.CreateOrganizationRequest]
	useCase inbound.OrganizationUseCase
}

func NewOrganizationHandler(uc inbound.OrganizationUseCase, v *validator.Validator) *OrganizationHandler {
	return &OrganizationHandler{
		resourceHandler: resourceHandler[entity.Organization, inbound.CreateOrganizationRequest]{useCase: uc, validator: v, name: "Organization"},
		useCase:         uc,
	}
}

func (h *OrganizationHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		response.WriteError(w, err)
		return
	}
	orgs, err := h.useCase.List(r.Context(), filter)
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "success", orgs)
}

type IndustryHandler struct {
	resourceHandler[entity.Industry, inbound.CreateIndustryRequest]
	useCase inbound.IndustryUseCase
}

func NewIndustryHandler(uc inbound.IndustryUseCase, v *validator.Validator) *IndustryHandler {
	return &IndustryHandler{
		resourceHandler: resourceHandler[entity.Industry, inbound.CreateIndustryRequest]{useCase: uc, validator: v, name: "Industry"},
		useCase:         uc,
	}
}

func (h *IndustryHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		response.WriteError(w, err)
		return
	}
	industries, err := h.useCase.List(r.Context(), filter)
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "success", industries)
}

type EventHandler struct {
	resourceHandler[entity.Event, inbound.CreateEventRequest]
	useCase        inbound.EventUseCase
	maxUploadBytes int64
}

func NewEventHandler(uc inbound.EventUseCase, v *validator.Validator, maxUploadBytes int64) *EventHandler {
	return &EventHandler{
		resourceHandler: resourceHandler[entity.Event, inbound.CreateEventRequest]{useCase: uc, validator: v, name: "Event"},
		useCase:         uc,
		maxUploadBytes:  maxUploadBytes,
	}
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := listFilter(r)
	if err != nil {
		response.WriteError(w, err)
		return
	}
	events, err := h.useCase.List(r.Context(), filter)
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "success", events)
}

// AttachPosters handles multipart uploads in the "posters" field.
func (h *EventHandler) AttachPosters(w http.ResponseWriter, r *http.Request) {
	var event *entity.Event
	err := withUploads(r, "posters", h.maxUploadBytes, func(files []outbound.FileUpload) error {
		var err error
		event, err = h.useCase.AttachPosters(r.Context(), pathID(r), files)
		return err
	})
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Posters uploaded successfully", event)
}

type TaskHandler struct {
	resourceHandler[entity.Task, inbound.CreateTaskRequest]
	useCase        inbound.TaskUseCase
	maxUploadBytes int64
}

func NewTaskHandler(uc inbound.TaskUseCase, v *validator.Validator, maxUploadBytes int64) *TaskHandler {
	return &TaskHandler{
		resourceHandler: resourceHandler[entity.Task, inbound.CreateTaskRequest]{useCase: uc, validator: v, name: "Task"},
		useCase:         uc,
		maxUploadBytes:  maxUploadBytes,
	}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	base, err := listFilter(r)
	if err != nil {
		response.WriteError(w, err)
		return
	}
	q := r.URL.Query()
	filter := outbound.TaskFilter{
		ListFilter:          base,
		Status:              q.Get("status"),
		AssignedTo:          q.Get("assigned_to"),
		CreatedBy:           q.Get("created_by"),
		PartnerOrganization: q.Get("partner_organization"),
		Industry:            q.Get("industry"),
		SortBy:              q.Get("sort_by"),
		SortOrder:           q.Get("sort_order"),
	}
	if filter.Page, err = intParam(q.Get("page"), "page"); err != nil {
		response.WriteError(w, err)
		return
	}
	if filter.DateFrom, err = timeParam(q.Get("date_from"), "date_from", false); err != nil {
		response.WriteError(w, err)
		return
	}
	if filter.DateTo, err = timeParam(q.Get("date_to"), "date_to", true); err != nil {
		response.WriteError(w, err)
		return
	}

	page, err := h.useCase.List(r.Context(), filter)
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.Success(w, http.StatusOK, fmt.Sprintf("Retrieved %d task(s)", len(page.Tasks)), page)
}

func (h *TaskHandler) Summary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.useCase.Summary(r.Context())
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Tasks summary retrieved successfully", summary)
}

// AttachFiles handles multipart uploads in the "files" field.
func (h *TaskHandler) AttachFiles(w http.ResponseWriter, r *http.Request) {
	var task *entity.Task
	err := withUploads(r, "files", h.maxUploadBytes, func(files []outbound.FileUpload) error {
		var err error
		task, err = h.useCase.AttachFiles(r.Context(), pathID(r), files)
		return err
	})
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "Files uploaded successfully", task)
}

func (h *TaskHandler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.useCase.History(r.Context(), pathID(r))
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "success", entries)
}
