package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/domain"
)

const auditColumns = `id, action, resource_type, resource_id, changed_by, changes, remarks, metadata, ip, user_agent, created_at`

// AuditRepository stores audit entries in an insert-only table.
type AuditRepository struct {
	db *sql.DB
}

func NewAuditRepository(db *sql.DB) outbound.AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Append(ctx context.Context, entry *domain.AuditLogEntry) error {
	changes, err := jsonb(entry.Changes)
	if err != nil {
		return fmt.Errorf("failed to marshal changes: %w", err)
	}
	var metadata interface{}
	if entry.Metadata != nil {
		b, err := json.Marshal(entry.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
		metadata = string(b)
	}

	query := `
		INSERT INTO audit_logs (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	_, err = r.db.ExecContext(ctx, query,
		entry.ID,
		string(entry.Action),
		entry.ResourceType,
		entry.ResourceID,
		entry.ChangedBy,
		changes,
		entry.Remarks,
		metadata,
		entry.IP,
		entry.UserAgent,
		entry.CreatedAt,
	)
	return mapError(err, "append audit entry")
}

func (r *AuditRepository) QueryByResource(ctx context.Context, resourceType string, resourceID *string) ([]*domain.AuditLogEntry, error) {
	var w whereBuilder
	w.add("resource_type = $%d", resourceType)
	if resourceID != nil {
		w.add("resource_id = $%d", *resourceID)
	} else {
		w.conditions = append(w.conditions, "resource_id IS NULL")
	}
	return r.query(ctx, `SELECT `+auditColumns+` FROM audit_logs`+w.sql()+` ORDER BY created_at DESC`, w.args)
}

func (r *AuditRepository) Query(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLogEntry, error) {
	var w whereBuilder
	if filter.ResourceType != "" {
		w.add("resource_type = $%d", filter.ResourceType)
	}
	if filter.ResourceID != "" {
		w.add("resource_id = $%d", filter.ResourceID)
	}
	if filter.ChangedBy != "" {
		w.add("changed_by = $%d", filter.ChangedBy)
	}
	query := `SELECT ` + auditColumns + ` FROM audit_logs` + w.sql() + ` ORDER BY created_at DESC`
	query += w.page(filter.Limit, filter.Offset)
	return r.query(ctx, query, w.args)
}

func (r *AuditRepository) query(ctx context.Context, query string, args []interface{}) ([]*domain.AuditLogEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "query audit entries")
	}
	defer rows.Close()

	entries := []*domain.AuditLogEntry{}
	for rows.Next() {
		var e domain.AuditLogEntry
		var resourceID, changedBy sql.NullString
		var changes, metadata []byte
		err := rows.Scan(
			&e.ID,
			&e.Action,
			&e.ResourceType,
			&resourceID,
			&changedBy,
			&changes,
			&e.Remarks,
			&metadata,
			&e.IP,
			&e.UserAgent,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		if resourceID.Valid {
			e.ResourceID = &resourceID.String
		}
		if changedBy.Valid {
			e.ChangedBy = &changedBy.String
		}
		e.Changes = []domain.AuditChange{}
		if len(changes) > 0 {
			if err := json.Unmarshal(changes, &e.Changes); err != nil {
				return nil, fmt.Errorf("failed to unmarshal changes: %w", err)
			}
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metadata: %w", err)
			}
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}
