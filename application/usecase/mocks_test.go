package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/application/requestctx"
	"github.com/fixora/taskhub/domain"
	"github.com/fixora/taskhub/domain/entity"
	"github.com/stretchr/testify/mock"
)

// Mock implementations

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*domain.AuditLogEntry
	failErr error
}

func (f *fakeAuditRepo) Append(ctx context.Context, entry *domain.AuditLogEntry) error {
	if f.failErr != nil {
		return f.failErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, entry)
	return nil
}

func (f *fakeAuditRepo) QueryByResource(ctx context.Context, resourceType string, resourceID *string) ([]*domain.AuditLogEntry, error) {
	var out []*domain.AuditLogEntry
	for i := len(f.entries) - 1; i >= 0; i-- {
		e := f.entries[i]
		if e.ResourceType != resourceType {
			continue
		}
		if (resourceID == nil) != (e.ResourceID == nil) {
			continue
		}
		if resourceID != nil && *resourceID != *e.ResourceID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (f *fakeAuditRepo) Query(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLogEntry, error) {
	return f.entries, nil
}

func (f *fakeAuditRepo) last() *domain.AuditLogEntry {
	if len(f.entries) == 0 {
		return nil
	}
	return f.entries[len(f.entries)-1]
}

type fakeMetrics struct {
	recorded int
	skipped  map[string]int
	failed   int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{skipped: map[string]int{}}
}

func (m *fakeMetrics) Recorded(domain.AuditAction, string) { m.recorded++ }
func (m *fakeMetrics) Skipped(reason string)               { m.skipped[reason]++ }
func (m *fakeMetrics) Failed(string)                       { m.failed++ }

type mockAuditLogger struct {
	mock.Mock
}

func (m *mockAuditLogger) Debug(ctx context.Context, message string, fields map[string]interface{}) {
	m.Called(message)
}

func (m *mockAuditLogger) Error(ctx context.Context, message string, err error, fields map[string]interface{}) {
	m.Called(message, err)
}

// memoryRepo is a generic in-memory store keyed by id.
type memoryRepo[T any] struct {
	items map[string]*T
	idOf  func(*T) string
	err   error
}

func newMemoryRepo[T any](idOf func(*T) string) *memoryRepo[T] {
	return &memoryRepo[T]{items: map[string]*T{}, idOf: idOf}
}

func (r *memoryRepo[T]) FindByID(ctx context.Context, id string) (*T, error) {
	if r.err != nil {
		return nil, r.err
	}
	item, ok := r.items[id]
	if !ok {
		return nil, outbound.ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (r *memoryRepo[T]) Create(ctx context.Context, item *T) error {
	if r.err != nil {
		return r.err
	}
	cp := *item
	r.items[r.idOf(item)] = &cp
	return nil
}

func (r *memoryRepo[T]) Update(ctx context.Context, item *T) error {
	if r.err != nil {
		return r.err
	}
	if _, ok := r.items[r.idOf(item)]; !ok {
		return outbound.ErrNotFound
	}
	cp := *item
	r.items[r.idOf(item)] = &cp
	return nil
}

func (r *memoryRepo[T]) Delete(ctx context.Context, id string) (*T, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, outbound.ErrNotFound
	}
	delete(r.items, id)
	return item, nil
}

func (r *memoryRepo[T]) all() []*T {
	keys := make([]string, 0, len(r.items))
	for k := range r.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*T, 0, len(keys))
	for _, k := range keys {
		out = append(out, r.items[k])
	}
	return out
}

type fakeTaskRepo struct {
	*memoryRepo[entity.Task]
	lastFilter   outbound.TaskFilter
	total        int
	summary      *outbound.TaskSummary
	summarySince time.Time
	summaryTop   int
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{memoryRepo: newMemoryRepo(func(t *entity.Task) string { return t.ID })}
}

func (r *fakeTaskRepo) List(ctx context.Context, filter outbound.TaskFilter) ([]*entity.Task, error) {
	r.lastFilter = filter
	return r.all(), nil
}

// Count reports total when set, otherwise the number of stored tasks.
func (r *fakeTaskRepo) Count(ctx context.Context, filter outbound.TaskFilter) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	if r.total > 0 {
		return r.total, nil
	}
	return len(r.items), nil
}

func (r *fakeTaskRepo) Summary(ctx context.Context, since time.Time, top int) (*outbound.TaskSummary, error) {
	if r.err != nil {
		return nil, r.err
	}
	r.summarySince, r.summaryTop = since, top
	return r.summary, nil
}

type fakeEmployeeRepo struct {
	*memoryRepo[entity.Employee]
}

func newFakeEmployeeRepo() *fakeEmployeeRepo {
	return &fakeEmployeeRepo{memoryRepo: newMemoryRepo(func(e *entity.Employee) string { return e.ID })}
}

func (r *fakeEmployeeRepo) FindByEmail(ctx context.Context, email string) (*entity.Employee, error) {
	for _, e := range r.items {
		if e.Email == email {
			cp := *e
			return &cp, nil
		}
	}
	return nil, outbound.ErrNotFound
}

func (r *fakeEmployeeRepo) Update(ctx context.Context, e *entity.Employee) error {
	stored, ok := r.items[e.ID]
	if !ok {
		return outbound.ErrNotFound
	}
	hash := stored.PasswordHash
	cp := *e
	cp.PasswordHash = hash
	r.items[e.ID] = &cp
	return nil
}

func (r *fakeEmployeeRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	stored, ok := r.items[id]
	if !ok {
		return outbound.ErrNotFound
	}
	stored.PasswordHash = hash
	return nil
}

func (r *fakeEmployeeRepo) List(ctx context.Context, filter outbound.ListFilter) ([]*entity.Employee, error) {
	return r.all(), nil
}

type fakeOrganizationRepo struct {
	*memoryRepo[entity.Organization]
}

func newFakeOrganizationRepo() *fakeOrganizationRepo {
	return &fakeOrganizationRepo{memoryRepo: newMemoryRepo(func(o *entity.Organization) string { return o.ID })}
}

func (r *fakeOrganizationRepo) List(ctx context.Context, filter outbound.ListFilter) ([]*entity.Organization, error) {
	return r.all(), nil
}

type fakeIndustryRepo struct {
	*memoryRepo[entity.Industry]
}

func newFakeIndustryRepo() *fakeIndustryRepo {
	return &fakeIndustryRepo{memoryRepo: newMemoryRepo(func(i *entity.Industry) string { return i.ID })}
}

func (r *fakeIndustryRepo) List(ctx context.Context, filter outbound.ListFilter) ([]*entity.Industry, error) {
	return r.all(), nil
}

type fakeEventRepo struct {
	*memoryRepo[entity.Event]
}

func newFakeEventRepo() *fakeEventRepo {
	return &fakeEventRepo{memoryRepo: newMemoryRepo(func(e *entity.Event) string { return e.ID })}
}

func (r *fakeEventRepo) List(ctx context.Context, filter outbound.ListFilter) ([]*entity.Event, error) {
	return r.all(), nil
}

// fakePasswordService "hashes" by prefixing.
type fakePasswordService struct{}

func (fakePasswordService) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakePasswordService) ComparePassword(hashed, password string) error {
	if hashed != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

type mockFileStorage struct {
	mock.Mock
}

func (m *mockFileStorage) Upload(ctx context.Context, folder outbound.StorageFolder, file outbound.FileUpload) (entity.FileRef, error) {
	args := m.Called(ctx, folder, file.Name)
	return args.Get(0).(entity.FileRef), args.Error(1)
}

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) GenerateAccessToken(claims outbound.TokenClaims) (string, error) {
	args := m.Called(claims)
	return args.String(0), args.Error(1)
}

func (m *mockTokenService) ValidateAccessToken(token string) (*outbound.TokenClaims, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*outbound.TokenClaims), args.Error(1)
}

func (m *mockTokenService) TTL() time.Duration {
	return 96 * time.Hour
}

// fakeRateLimit keeps counters in memory.
type fakeRateLimit struct {
	counts  map[string]int
	blocked map[string]bool
}

func newFakeRateLimit() *fakeRateLimit {
	return &fakeRateLimit{counts: map[string]int{}, blocked: map[string]bool{}}
}

func (f *fakeRateLimit) CheckLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	return f.counts[key] < limit, nil
}

func (f *fakeRateLimit) Increment(ctx context.Context, key string, window time.Duration) error {
	f.counts[key]++
	return nil
}

func (f *fakeRateLimit) Block(ctx context.Context, key string, duration time.Duration, reason string) error {
	f.blocked[key] = true
	return nil
}

func (f *fakeRateLimit) IsBlocked(ctx context.Context, key string) (bool, error) {
	return f.blocked[key], nil
}

func (f *fakeRateLimit) GetAttempts(ctx context.Context, key string) (int, error) {
	return f.counts[key], nil
}

func (f *fakeRateLimit) Reset(ctx context.Context, key string) error {
	delete(f.counts, key)
	return nil
}

func actorCtx(id, designation string) context.Context {
	ctx := requestctx.WithActor(context.Background(), requestctx.Actor{ID: id, Designation: designation})
	return requestctx.WithClient(ctx, requestctx.Client{IP: "10.0.0.7", UserAgent: "go-test"})
}

func newRecorder(repo *fakeAuditRepo, logReads bool) *AuditRecorder {
	return NewAuditRecorder(repo, domain.AuditPolicy{LogReads: logReads}, nil, nil)
}
