package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/fixora/taskhub/application/port/inbound"
	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/application/requestctx"
	"github.com/fixora/taskhub/domain"
	"github.com/fixora/taskhub/domain/apperror"
	"github.com/fixora/taskhub/domain/entity"
	"github.com/fixora/taskhub/infrastructure/http/response"
	"github.com/fixora/taskhub/infrastructure/http/validator"
	"github.com/fixora/taskhub/infrastructure/service/logger"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockTaskUseCase struct {
	mock.Mock
}

func (m *mockTaskUseCase) Create(ctx context.Context, req inbound.CreateTaskRequest) (*entity.Task, error) {
	args := m.Called(ctx, req)
	task, _ := args.Get(0).(*entity.Task)
	return task, args.Error(1)
}

func (m *mockTaskUseCase) Get(ctx context.Context, id string) (*entity.Task, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*entity.Task)
	return task, args.Error(1)
}

func (m *mockTaskUseCase) List(ctx context.Context, filter outbound.TaskFilter) (*inbound.TaskPage, error) {
	args := m.Called(ctx, filter)
	page, _ := args.Get(0).(*inbound.TaskPage)
	return page, args.Error(1)
}

func (m *mockTaskUseCase) Summary(ctx context.Context) (*outbound.TaskSummary, error) {
	args := m.Called(ctx)
	summary, _ := args.Get(0).(*outbound.TaskSummary)
	return summary, args.Error(1)
}

func (m *mockTaskUseCase) Update(ctx context.Context, id string, updates domain.Updates) (*entity.Task, error) {
	args := m.Called(ctx, id, updates)
	task, _ := args.Get(0).(*entity.Task)
	return task, args.Error(1)
}

func (m *mockTaskUseCase) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockTaskUseCase) AttachFiles(ctx context.Context, id string, files []outbound.FileUpload) (*entity.Task, error) {
	names := make([]string, len(files))
	for i, f := range files {
		body, _ := io.ReadAll(f.Content)
		names[i] = f.Name + ":" + f.MimeType + ":" + string(body)
	}
	args := m.Called(ctx, id, names)
	task, _ := args.Get(0).(*entity.Task)
	return task, args.Error(1)
}

func (m *mockTaskUseCase) History(ctx context.Context, id string) ([]*domain.AuditLogEntry, error) {
	args := m.Called(ctx, id)
	entries, _ := args.Get(0).([]*domain.AuditLogEntry)
	return entries, args.Error(1)
}

func withID(req *http.Request, id string) *http.Request {
	return mux.SetURLVars(req, map[string]string{"id": id})
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestTaskHandler_UpdateKeepsFieldOrder(t *testing.T) {
	uc := &mockTaskUseCase{}
	h := NewTaskHandler(uc, validator.New(), 1<<20)

	expected := domain.Updates{{Name: "status", Value: "Completed"}, {Name: "title", Value: "A"}, {Name: "remarks", Value: "done"}}
	uc.On("Update", mock.Anything, "t1", expected).Return(&entity.Task{ID: "t1", Status: entity.TaskStatusCompleted}, nil)

	req := withID(httptest.NewRequest(http.MethodPut, "/api/v1/tasks/t1",
		strings.NewReader(`{"status":"Completed","title":"A","remarks":"done"}`)), "t1")
	rec := httptest.NewRecorder()
	h.Update(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Task updated successfully", decode(t, rec).Message)
	uc.AssertExpectations(t)
}

func TestTaskHandler_UpdateRejectsEmptyBody(t *testing.T) {
	h := NewTaskHandler(&mockTaskUseCase{}, validator.New(), 1<<20)

	for _, body := range []string{`{}`, ``, `[1]`, `{"a":1} {"b":2}`} {
		rec := httptest.NewRecorder()
		h.Update(rec, withID(httptest.NewRequest(http.MethodPut, "/api/v1/tasks/t1", strings.NewReader(body)), "t1"))
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestTaskHandler_CreateValidation(t *testing.T) {
	uc := &mockTaskUseCase{}
	h := NewTaskHandler(uc, validator.New(), 1<<20)

	rec := httptest.NewRecorder()
	h.Create(rec, httptest.NewRequest(http.MethodPost, "/api/v1/tasks", strings.NewReader(`{"title":"A","description":"short"}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode(t, rec)
	assert.Contains(t, env.Fields, "description")
	assert.Contains(t, env.Fields, "assigned_to")
	uc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestTaskHandler_GetNotFound(t *testing.T) {
	uc := &mockTaskUseCase{}
	uc.On("Get", mock.Anything, "missing").Return(nil, apperror.NotFound("Task", "missing"))

	rec := httptest.NewRecorder()
	NewTaskHandler(uc, validator.New(), 1<<20).Get(rec, withID(httptest.NewRequest(http.MethodGet, "/api/v1/tasks/missing", nil), "missing"))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Task not found", decode(t, rec).Message)
}

func TestTaskHandler_List(t *testing.T) {
	uc := &mockTaskUseCase{}
	uc.On("List", mock.Anything, outbound.TaskFilter{
		ListFilter: outbound.ListFilter{Limit: 5, Offset: 10},
		Status:     "Completed",
		AssignedTo: "emp-2",
	}).Return(&inbound.TaskPage{Tasks: []*entity.Task{{ID: "t1"}}, TotalTasks: 11, TotalPages: 3, CurrentPage: 3}, nil)

	rec := httptest.NewRecorder()
	NewTaskHandler(uc, validator.New(), 1<<20).List(rec,
		httptest.NewRequest(http.MethodGet, "/api/v1/tasks?status=Completed&assigned_to=emp-2&limit=5&offset=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	uc.AssertExpectations(t)

	var body struct {
		Message string `json:"message"`
		Data    struct {
			Tasks      []entity.Task `json:"tasks"`
			TotalTasks int           `json:"total_tasks"`
			TotalPages int           `json:"total_pages"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Retrieved 1 task(s)", body.Message)
	assert.Len(t, body.Data.Tasks, 1)
	assert.Equal(t, 11, body.Data.TotalTasks)
	assert.Equal(t, 3, body.Data.TotalPages)

	rec = httptest.NewRecorder()
	NewTaskHandler(uc, validator.New(), 1<<20).List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tasks?limit=abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTaskHandler_ListFilters(t *testing.T) {
	from := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 1, 31, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)

	uc := &mockTaskUseCase{}
	uc.On("List", mock.Anything, outbound.TaskFilter{
		PartnerOrganization: "TechCorp",
		Industry:            "energy",
		DateFrom:            &from,
		DateTo:              &to,
		SortBy:              "status",
		SortOrder:           "asc",
		Page:                2,
	}).Return(&inbound.TaskPage{Tasks: []*entity.Task{}}, nil)

	rec := httptest.NewRecorder()
	NewTaskHandler(uc, validator.New(), 1<<20).List(rec, httptest.NewRequest(http.MethodGet,
		"/api/v1/tasks?partner_organization=TechCorp&industry=energy&date_from=2025-01-01&date_to=2025-01-31&sort_by=status&sort_order=asc&page=2", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	uc.AssertExpectations(t)

	for _, query := range []string{"date_from=yesterday", "date_to=2025-13-01", "page=-1"} {
		rec := httptest.NewRecorder()
		NewTaskHandler(&mockTaskUseCase{}, validator.New(), 1<<20).List(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tasks?"+query, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, query)
	}
}

func TestTaskHandler_Summary(t *testing.T) {
	uc := &mockTaskUseCase{}
	uc.On("Summary", mock.Anything).Return(&outbound.TaskSummary{
		TotalTasks:      3,
		RecentTasks:     2,
		StatusBreakdown: []outbound.GroupCount{{Key: "Completed", Count: 3}},
	}, nil).Once()
	uc.On("Summary", mock.Anything).Return(nil, apperror.Storage("failed to summarize tasks", assert.AnError)).Once()
	h := NewTaskHandler(uc, validator.New(), 1<<20)

	rec := httptest.NewRecorder()
	h.Summary(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tasks/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data outbound.TaskSummary `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Data.TotalTasks)
	assert.Equal(t, 2, body.Data.RecentTasks)
	assert.Equal(t, []outbound.GroupCount{{Key: "Completed", Count: 3}}, body.Data.StatusBreakdown)

	rec = httptest.NewRecorder()
	h.Summary(rec, httptest.NewRequest(http.MethodGet, "/api/v1/tasks/summary", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	uc.AssertExpectations(t)
}

func TestTaskHandler_History(t *testing.T) {
	uc := &mockTaskUseCase{}
	entry := domain.NewAuditLogEntry(domain.AuditActionUpdate, entity.ResourceTask, domain.StringPtr("t1"), domain.StringPtr("emp-1"),
		[]domain.AuditChange{{Field: "status", OldValue: "In Progress", NewValue: "Completed"}})
	uc.On("History", mock.Anything, "t1").Return([]*domain.AuditLogEntry{entry}, nil)

	rec := httptest.NewRecorder()
	NewTaskHandler(uc, validator.New(), 1<<20).History(rec, withID(httptest.NewRequest(http.MethodGet, "/api/v1/tasks/t1/audit-logs", nil), "t1"))

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data []domain.AuditLogEntry `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, "status", body.Data[0].Changes[0].Field)
	assert.Equal(t, "emp-1", *body.Data[0].ChangedBy)
}

func TestTaskHandler_AttachFiles(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for _, f := range []struct{ name, mime, body string }{
		{"report.pdf", "application/pdf", "pdf-bytes"},
		{"photo.png", "image/png", "png-bytes"},
	} {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="files"; filename="`+f.name+`"`)
		header.Set("Content-Type", f.mime)
		part, err := mw.CreatePart(header)
		require.NoError(t, err)
		_, _ = part.Write([]byte(f.body))
	}
	require.NoError(t, mw.Close())

	uc := &mockTaskUseCase{}
	uc.On("AttachFiles", mock.Anything, "t1", []string{
		"report.pdf:application/pdf:pdf-bytes",
		"photo.png:image/png:png-bytes",
	}).Return(&entity.Task{ID: "t1"}, nil)

	req := withID(httptest.NewRequest(http.MethodPost, "/api/v1/tasks/t1/files", &buf), "t1")
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	NewTaskHandler(uc, validator.New(), 1<<20).AttachFiles(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	uc.AssertExpectations(t)
}

type mockAuditQuery struct {
	mock.Mock
}

func (m *mockAuditQuery) ForResource(ctx context.Context, resourceType, resourceID string) ([]*domain.AuditLogEntry, error) {
	args := m.Called(ctx, resourceType, resourceID)
	entries, _ := args.Get(0).([]*domain.AuditLogEntry)
	return entries, args.Error(1)
}

func (m *mockAuditQuery) Search(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLogEntry, error) {
	args := m.Called(ctx, filter)
	entries, _ := args.Get(0).([]*domain.AuditLogEntry)
	return entries, args.Error(1)
}

func TestAuditHandler_Search(t *testing.T) {
	uc := &mockAuditQuery{}
	uc.On("Search", mock.Anything, domain.AuditFilter{ResourceType: "Task", ChangedBy: "emp-1", Limit: 20}).
		Return([]*domain.AuditLogEntry{}, nil)

	rec := httptest.NewRecorder()
	NewAuditHandler(uc).Search(rec, httptest.NewRequest(http.MethodGet, "/api/v1/audit-logs?resource_type=Task&changed_by=emp-1&limit=20", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	uc.AssertExpectations(t)
}

type stubAuth struct {
	err error
}

func (s stubAuth) Login(_ context.Context, req inbound.LoginRequest, clientIP string) (*inbound.LoginResponse, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &inbound.LoginResponse{Token: "tok", ExpiresIn: int((96 * time.Hour).Seconds())}, nil
}

func (s stubAuth) Me(_ context.Context, id string) (*inbound.MeResponse, error) {
	return &inbound.MeResponse{ID: id}, nil
}

type countingObserver struct {
	success, failure int
}

func (c *countingObserver) Login(success bool) {
	if success {
		c.success++
		return
	}
	c.failure++
}

func TestAuthHandler(t *testing.T) {
	log := logger.NewStructuredLogger(logger.LoggerConfig{Level: "error", Output: io.Discard})

	t.Run("login success", func(t *testing.T) {
		obs := &countingObserver{}
		rec := httptest.NewRecorder()
		NewAuthHandler(stubAuth{}, validator.New(), log, obs).Login(rec,
			httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@curin.com","password":"secret123"}`)))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, obs.success)
		assert.Contains(t, rec.Body.String(), `"token":"tok"`)
	})

	t.Run("login rejected", func(t *testing.T) {
		obs := &countingObserver{}
		rec := httptest.NewRecorder()
		NewAuthHandler(stubAuth{err: apperror.InvalidCredentials()}, validator.New(), log, obs).Login(rec,
			httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"email":"a@curin.com","password":"nope"}`)))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, 1, obs.failure)
	})

	t.Run("me requires actor", func(t *testing.T) {
		h := NewAuthHandler(stubAuth{}, validator.New(), log, nil)

		rec := httptest.NewRecorder()
		h.Me(rec, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req = req.WithContext(requestctx.WithActor(req.Context(), requestctx.Actor{ID: "emp-1"}))
		rec = httptest.NewRecorder()
		h.Me(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
	}).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	NewHealthHandler(map[string]HealthCheck{
		"postgres": func(context.Context) error { return nil },
		"mongo":    func(context.Context) error { return assert.AnError },
	}).Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"mongo":"down"`)
}
