package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction is the kind of operation an audit entry describes.
type AuditAction string

const (
	AuditActionCreate AuditAction = "create"
	AuditActionUpdate AuditAction = "update"
	AuditActionDelete AuditAction = "delete"
	AuditActionRead   AuditAction = "read"
)

// IsMutation reports whether the action changes state.
func (a AuditAction) IsMutation() bool {
	switch a {
	case AuditActionCreate, AuditActionUpdate, AuditActionDelete:
		return true
	}
	return false
}

// Metadata keys used by the entity use cases.
const (
	MetadataDeletedDocument = "deletedDocument"
	MetadataCreatedDocument = "createdDocument"
)

// AuditChange is a single field-level change inside an audit entry.
type AuditChange struct {
	Field    string `json:"field" bson:"field"`
	OldValue any    `json:"old_value" bson:"old_value"`
	NewValue any    `json:"new_value" bson:"new_value"`
}

// AuditLogEntry is an immutable record of one audited operation.
type AuditLogEntry struct {
	ID           string         `json:"id"`
	Action       AuditAction    `json:"action"`
	ResourceType string         `json:"resource_type"`
	ResourceID   *string        `json:"resource_id"`
	ChangedBy    *string        `json:"changed_by"`
	Changes      []AuditChange  `json:"changes"`
	Remarks      string         `json:"remarks,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
	IP           string         `json:"ip,omitempty"`
	UserAgent    string         `json:"user_agent,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// NewAuditLogEntry builds an entry with a fresh id and creation time.
// A nil changes slice is normalized to an empty one.
func NewAuditLogEntry(action AuditAction, resourceType string, resourceID, changedBy *string, changes []AuditChange) *AuditLogEntry {
	if changes == nil {
		changes = []AuditChange{}
	}
	return &AuditLogEntry{
		ID:           uuid.New().String(),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		ChangedBy:    changedBy,
		Changes:      changes,
		CreatedAt:    time.Now().UTC(),
	}
}

// AuditPolicy decides which actions reach the audit store.
type AuditPolicy struct {
	LogReads bool
}

// Allows reports whether an entry with the given action should be persisted.
func (p AuditPolicy) Allows(action AuditAction) bool {
	if action == AuditActionRead {
		return p.LogReads
	}
	return true
}

// AuditFilter narrows audit queries. Zero values mean "any".
type AuditFilter struct {
	ResourceType string
	ResourceID   string
	ChangedBy    string
	Limit        int
	Offset       int
}

// StringPtr returns nil for the empty string.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
