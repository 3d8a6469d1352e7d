package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/domain/entity"
	"github.com/lib/pq"
)

const taskColumns = `id, title, description, created_by, assigned_to, status, start_date, end_date,
	files, partner_organization, industry, remarks, created_at, updated_at`

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) outbound.TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row rowScanner) (*entity.Task, error) {
	var t entity.Task
	var remarks []byte
	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.CreatedBy,
		pq.Array(&t.AssignedTo),
		&t.Status,
		&t.StartDate,
		&t.EndDate,
		pq.Array(&t.Files),
		&t.PartnerOrganization,
		&t.Industry,
		&remarks,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(remarks) > 0 {
		if err := json.Unmarshal(remarks, &t.Remarks); err != nil {
			return nil, fmt.Errorf("failed to unmarshal remarks: %w", err)
		}
	}
	return &t, nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id string) (*entity.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "find task")
	}
	return t, nil
}

func (r *TaskRepository) Create(ctx context.Context, t *entity.Task) error {
	remarks, err := jsonb(t.Remarks)
	if err != nil {
		return fmt.Errorf("failed to marshal remarks: %w", err)
	}
	query := `
		INSERT INTO tasks (` + taskColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	_, err = r.db.ExecContext(ctx, query,
		t.ID,
		t.Title,
		t.Description,
		t.CreatedBy,
		pq.Array(t.AssignedTo),
		string(t.Status),
		t.StartDate,
		t.EndDate,
		pq.Array(t.Files),
		t.PartnerOrganization,
		t.Industry,
		remarks,
		t.CreatedAt,
		t.UpdatedAt,
	)
	return mapError(err, "create task")
}

func (r *TaskRepository) Update(ctx context.Context, t *entity.Task) error {
	remarks, err := jsonb(t.Remarks)
	if err != nil {
		return fmt.Errorf("failed to marshal remarks: %w", err)
	}
	query := `
		UPDATE tasks
		SET title = $2, description = $3, assigned_to = $4, status = $5, start_date = $6, end_date = $7,
		    files = $8, partner_organization = $9, industry = $10, remarks = $11, updated_at = $12
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		t.ID,
		t.Title,
		t.Description,
		pq.Array(t.AssignedTo),
		string(t.Status),
		t.StartDate,
		t.EndDate,
		pq.Array(t.Files),
		t.PartnerOrganization,
		t.Industry,
		remarks,
		t.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "update task")
	}
	return checkAffected(result)
}

func (r *TaskRepository) Delete(ctx context.Context, id string) (*entity.Task, error) {
	t, err := scanTask(r.db.QueryRowContext(ctx, `DELETE FROM tasks WHERE id = $1 RETURNING `+taskColumns, id))
	if err != nil {
		return nil, mapError(err, "delete task")
	}
	return t, nil
}

// taskWhere builds the filter clause shared by List and Count.
func taskWhere(filter outbound.TaskFilter) *whereBuilder {
	w := &whereBuilder{}
	w.search([]string{"title", "description"}, filter.Search)
	if filter.Status != "" {
		w.add("status = $%d", filter.Status)
	}
	if filter.AssignedTo != "" {
		w.add("$%d = ANY(assigned_to)", filter.AssignedTo)
	}
	if filter.CreatedBy != "" {
		w.add("created_by = $%d", filter.CreatedBy)
	}
	if filter.PartnerOrganization != "" {
		w.add("partner_organization ILIKE $%d", "%"+filter.PartnerOrganization+"%")
	}
	if filter.Industry != "" {
		w.add("industry ILIKE $%d", "%"+filter.Industry+"%")
	}
	if filter.DateFrom != nil {
		w.add("created_at >= $%d", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		w.add("created_at <= $%d", *filter.DateTo)
	}
	return w
}

// taskOrder only emits whitelisted columns; anything else falls back to newest first.
func taskOrder(sortBy, sortOrder string) string {
	column := "created_at"
	for _, f := range outbound.TaskSortFields {
		if f == sortBy {
			column = f
			break
		}
	}
	dir := "DESC"
	if strings.EqualFold(sortOrder, outbound.SortAsc) {
		dir = "ASC"
	}
	order := " ORDER BY " + column + " " + dir
	if column != "created_at" {
		order += ", created_at DESC"
	}
	return order
}

func (r *TaskRepository) List(ctx context.Context, filter outbound.TaskFilter) ([]*entity.Task, error) {
	w := taskWhere(filter)
	query := `SELECT ` + taskColumns + ` FROM tasks` + w.sql() + taskOrder(filter.SortBy, filter.SortOrder)
	query += w.page(filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, mapError(err, "list tasks")
	}
	defer rows.Close()

	tasks := []*entity.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepository) Count(ctx context.Context, filter outbound.TaskFilter) (int, error) {
	w := taskWhere(filter)
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`+w.sql(), w.args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

func (r *TaskRepository) Summary(ctx context.Context, since time.Time, top int) (*outbound.TaskSummary, error) {
	summary := &outbound.TaskSummary{}
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(*) FILTER (WHERE created_at >= $1) FROM tasks`, since,
	).Scan(&summary.TotalTasks, &summary.RecentTasks)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	if summary.StatusBreakdown, err = r.groupCounts(ctx, "status", 0); err != nil {
		return nil, err
	}
	if summary.TopPartners, err = r.groupCounts(ctx, "partner_organization", top); err != nil {
		return nil, err
	}
	if summary.TopIndustries, err = r.groupCounts(ctx, "industry", top); err != nil {
		return nil, err
	}
	return summary, nil
}

// groupCounts counts tasks per value of column, largest first. column is
// never user input.
func (r *TaskRepository) groupCounts(ctx context.Context, column string, limit int) ([]outbound.GroupCount, error) {
	query := `SELECT ` + column + `, COUNT(*) FROM tasks GROUP BY ` + column + ` ORDER BY COUNT(*) DESC, ` + column
	var args []interface{}
	if limit > 0 {
		query += ` LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to group tasks by %s: %w", column, err)
	}
	defer rows.Close()

	groups := []outbound.GroupCount{}
	for rows.Next() {
		var g outbound.GroupCount
		if err := rows.Scan(&g.Key, &g.Count); err != nil {
			return nil, fmt.Errorf("failed to scan %s group: %w", column, err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}
