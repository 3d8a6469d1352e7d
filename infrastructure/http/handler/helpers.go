package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/domain"
	"github.com/fixora/taskhub/domain/apperror"
	"github.com/fixora/taskhub/infrastructure/http/response"
	"github.com/fixora/taskhub/infrastructure/http/validator"
	"github.com/gorilla/mux"
)

const maxJSONBody = 1 << 20

// decodeJSON reads a size-limited JSON body and rejects trailing data.
func decodeJSON(r *http.Request, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperror.Validation("Request body is required")
		}
		return apperror.Validation("Invalid request body")
	}
	if dec.More() {
		return apperror.Validation("Invalid request body")
	}
	return nil
}

func decodeAndValidate(r *http.Request, v *validator.Validator, dst interface{}) error {
	if err := decodeJSON(r, dst); err != nil {
		return err
	}
	return v.Struct(dst)
}

// decodeUpdates reads a JSON object of field updates keeping key order.
func decodeUpdates(r *http.Request) (domain.Updates, error) {
	var updates domain.Updates
	if err := decodeJSON(r, &updates); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return nil, apperror.Validation("No fields to update")
	}
	return updates, nil
}

func pathID(r *http.Request) string {
	return mux.Vars(r)["id"]
}

func listFilter(r *http.Request) (outbound.ListFilter, error) {
	q := r.URL.Query()
	limit, err := intParam(q.Get("limit"), "limit")
	if err != nil {
		return outbound.ListFilter{}, err
	}
	offset, err := intParam(q.Get("offset"), "offset")
	if err != nil {
		return outbound.ListFilter{}, err
	}
	return outbound.ListFilter{Search: q.Get("search"), Limit: limit, Offset: offset}, nil
}

func intParam(raw, name string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperror.Validation(fmt.Sprintf("%s must be a non-negative integer", name)).WithField(name, raw)
	}
	return n, nil
}

// timeParam accepts RFC 3339 or a bare date. A bare date used as an upper
// bound covers the whole day.
func timeParam(raw, name string, endOfDay bool) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		t = t.UTC()
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, apperror.Validation(fmt.Sprintf("%s must be an ISO 8601 date", name)).WithField(name, raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// withUploads parses the multipart field and hands open files to fn, closing them afterwards.
func withUploads(r *http.Request, field string, maxBytes int64, fn func([]outbound.FileUpload) error) error {
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return apperror.Validation("Invalid multipart form")
	}
	defer r.MultipartForm.RemoveAll()

	headers := r.MultipartForm.File[field]
	uploads := make([]outbound.FileUpload, 0, len(headers))
	var opened []multipart.File
	defer func() {
		for _, f := range opened {
			f.Close()
		}
	}()

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return apperror.Validation("Could not read uploaded file").WithField(field, fh.Filename)
		}
		opened = append(opened, f)
		uploads = append(uploads, outbound.FileUpload{
			Name:     fh.Filename,
			MimeType: fh.Header.Get("Content-Type"),
			Size:     fh.Size,
			Content:  f,
		})
	}
	return fn(uploads)
}

// crudUseCase is the shape shared by every entity use case.
type crudUseCase[T any, C any] interface {
	Create(ctx context.Context, req C) (*T, error)
	Get(ctx context.Context, id string) (*T, error)
	Update(ctx context.Context, id string, updates domain.Updates) (*T, error)
	Delete(ctx context.Context, id string) error
}

// resourceHandler serves create/get/update/delete for one entity type.
type resourceHandler[T any, C any] struct {
	useCase   crudUseCase[T, C]
	validator *validator.Validator
	name      string
}

func (h resourceHandler[T, C]) Create(w http.ResponseWriter, r *http.Request) {
	var req C
	if err := decodeAndValidate(r, h.validator, &req); err != nil {
		response.WriteError(w, err)
		return
	}
	created, err := h.useCase.Create(r.Context(), req)
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.Success(w, http.StatusCreated, h.name+" created successfully", created)
}

func (h resourceHandler[T, C]) Get(w http.ResponseWriter, r *http.Request) {
	found, err := h.useCase.Get(r.Context(), pathID(r))
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.Success(w, http.StatusOK, "success", found)
}

func (h resourceHandler[T, C]) Update(w http.ResponseWriter, r *http.Request) {
	updates, err := decodeUpdates(r)
	if err != nil {
		response.WriteError(w, err)
		return
	}
	updated, err := h.useCase.Update(r.Context(), pathID(r), updates)
	if err != nil {
		response.WriteError(w, err)
		return
	}
	response.Success(w, http.StatusOK, h.name+" updated successfully", updated)
}

func (h resourceHandler[T, C]) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.useCase.Delete(r.Context(), pathID(r)); err != nil {
		response.WriteError(w, err)
		return
	}
	response.Success(w, http.StatusOK, h.name+" deleted successfully", nil)
}
