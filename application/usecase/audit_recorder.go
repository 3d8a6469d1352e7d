package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/application/requestctx"
	"github.com/fixora/taskhub/domain"
)

// Skip reasons reported to metrics.
const (
	SkipMissingFields = "missing_fields"
	SkipPolicy        = "policy"
	SkipNoChanges     = "no_changes"
)

// RecordRequest describes one audited operation.
type RecordRequest struct {
	Action       domain.AuditAction
	ResourceType string
	ResourceID   *string
	Changes      []domain.AuditChange
	Remarks      string
	Metadata     map[string]any
}

// ChangeRecord is an update to be diffed and recorded in one step. Extra
// changes are appended after the computed diff.
type ChangeRecord struct {
	Action       domain.AuditAction
	ResourceType string
	ResourceID   *string
	Before       map[string]any
	Updates      domain.Updates
	Extra        []domain.AuditChange
	Remarks      string
	Metadata     map[string]any
}

// AuditRecorder appends audit entries on a best-effort basis. It never
// returns an error to its caller.
type AuditRecorder struct {
	repo    outbound.AuditRepository
	policy  domain.AuditPolicy
	metrics outbound.AuditMetrics
	logger  outbound.AuditLogger
}

func NewAuditRecorder(
	repo outbound.AuditRepository,
	policy domain.AuditPolicy,
	metrics outbound.AuditMetrics,
	logger outbound.AuditLogger,
) *AuditRecorder {
	if metrics == nil {
		metrics = noopAuditMetrics{}
	}
	if logger == nil {
		logger = noopAuditLogger{}
	}
	return &AuditRecorder{
		repo:    repo,
		policy:  policy,
		metrics: metrics,
		logger:  logger,
	}
}

// Record stores one entry for req. It returns the stored entry and true, or
// nil and false when the entry was skipped or could not be written.
func (r *AuditRecorder) Record(ctx context.Context, req RecordRequest) (*domain.AuditLogEntry, bool) {
	if req.Action == "" || req.ResourceType == "" {
		r.metrics.Skipped(SkipMissingFields)
		r.logger.Debug(ctx, "Audit entry skipped: missing action or resource type", map[string]interface{}{
			"action":        string(req.Action),
			"resource_type": req.ResourceType,
		})
		return nil, false
	}
	if !r.policy.Allows(req.Action) {
		r.metrics.Skipped(SkipPolicy)
		return nil, false
	}

	entry := domain.NewAuditLogEntry(req.Action, req.ResourceType, req.ResourceID, requestctx.ActorID(ctx), req.Changes)
	entry.Remarks = req.Remarks
	entry.Metadata = req.Metadata
	client := requestctx.ClientFrom(ctx)
	entry.IP = client.IP
	entry.UserAgent = client.UserAgent

	if err := r.repo.Append(ctx, entry); err != nil {
		r.metrics.Failed(req.ResourceType)
		r.logger.Error(ctx, "Failed to write audit entry", err, map[string]interface{}{
			"action":        string(req.Action),
			"resource_type": req.ResourceType,
			"resource_id":   deref(req.ResourceID),
		})
		return nil, false
	}

	r.metrics.Recorded(req.Action, req.ResourceType)
	return entry, true
}

// RecordChange diffs rec.Before against rec.Updates and records the result.
// An update that changed nothing is not stored.
func (r *AuditRecorder) RecordChange(ctx context.Context, rec ChangeRecord) (*domain.AuditLogEntry, bool) {
	changes := domain.Diff(rec.Before, rec.Updates)
	changes = append(changes, rec.Extra...)
	if rec.Action == domain.AuditActionUpdate && len(changes) == 0 {
		r.metrics.Skipped(SkipNoChanges)
		r.logger.Debug(ctx, "Audit entry skipped: update changed nothing", map[string]interface{}{
			"resource_type": rec.ResourceType,
			"resource_id":   deref(rec.ResourceID),
		})
		return nil, false
	}
	return r.Record(ctx, RecordRequest{
		Action:       rec.Action,
		ResourceType: rec.ResourceType,
		ResourceID:   rec.ResourceID,
		Changes:      changes,
		Remarks:      rec.Remarks,
		Metadata:     rec.Metadata,
	})
}

// RecordCreate stores the synthetic creation change plus a snapshot of doc.
func (r *AuditRecorder) RecordCreate(ctx context.Context, resourceType, id, name string, doc any) (*domain.AuditLogEntry, bool) {
	req := RecordRequest{
		Action:       domain.AuditActionCreate,
		ResourceType: resourceType,
		ResourceID:   domain.StringPtr(id),
		Changes:      []domain.AuditChange{CreatedChange(resourceType)},
		Remarks:      auditRemark(resourceType, name, "created"),
	}
	if snap, err := domain.Snapshot(doc); err == nil {
		req.Metadata = map[string]any{domain.MetadataCreatedDocument: snap}
	}
	return r.Record(ctx, req)
}

// RecordDelete stores a delete entry whose metadata keeps the removed document.
func (r *AuditRecorder) RecordDelete(ctx context.Context, resourceType, id, name string, before map[string]any) (*domain.AuditLogEntry, bool) {
	return r.Record(ctx, RecordRequest{
		Action:       domain.AuditActionDelete,
		ResourceType: resourceType,
		ResourceID:   domain.StringPtr(id),
		Changes:      []domain.AuditChange{},
		Remarks:      auditRemark(resourceType, name, "deleted"),
		Metadata:     map[string]any{domain.MetadataDeletedDocument: before},
	})
}

func (r *AuditRecorder) RecordRead(ctx context.Context, resourceType, id string) (*domain.AuditLogEntry, bool) {
	return r.Record(ctx, RecordRequest{
		Action:       domain.AuditActionRead,
		ResourceType: resourceType,
		ResourceID:   domain.StringPtr(id),
	})
}

// CreatedChange is the single change recorded for a newly created resource.
func CreatedChange(resourceType string) domain.AuditChange {
	return domain.AuditChange{
		Field:    strings.ToLower(resourceType),
		OldValue: nil,
		NewValue: resourceType + " created",
	}
}

func auditRemark(resourceType, name, verb string) string {
	return fmt.Sprintf("%s %q %s", resourceType, name, verb)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type noopAuditMetrics struct{}

func (noopAuditMetrics) Recorded(domain.AuditAction, string) {}
func (noopAuditMetrics) Skipped(string)                      {}
func (noopAuditMetrics) Failed(string)                       {}

type noopAuditLogger struct{}

func (noopAuditLogger) Debug(context.Context, string, map[string]interface{})        {}
func (noopAuditLogger) Error(context.Context, string, error, map[string]interface{}) {}
