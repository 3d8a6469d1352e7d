package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/domain/entity"
	"github.com/lib/pq"
)

const eventColumns = `id, name, start_date, end_date, location, description, budget, created_by,
	convener, organised_by, organizations, industries, employees, posters, created_at`

type EventRepository struct {
	db *sql.DB
}

func NewEventRepository(db *sql.DB) outbound.EventRepository {
	return &EventRepository{db: db}
}

func scanEvent(row rowScanner) (*entity.Event, error) {
	var e entity.Event
	var posters []byte
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.StartDate,
		&e.EndDate,
		&e.Location,
		&e.Description,
		&e.Budget,
		&e.CreatedBy,
		&e.Convener,
		&e.OrganisedBy,
		pq.Array(&e.Organizations),
		pq.Array(&e.Industries),
		pq.Array(&e.Employees),
		&posters,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if len(posters) > 0 {
		if err := json.Unmarshal(posters, &e.Posters); err != nil {
			return nil, fmt.Errorf("failed to unmarshal posters: %w", err)
		}
	}
	return &e, nil
}

func (r *EventRepository) FindByID(ctx context.Context, id string) (*entity.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "find event")
	}
	return e, nil
}

func (r *EventRepository) Create(ctx context.Context, e *entity.Event) error {
	posters, err := jsonb(e.Posters)
	if err != nil {
		return fmt.Errorf("failed to marshal posters: %w", err)
	}
	query := `
		INSERT INTO events (` + eventColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = r.db.ExecContext(ctx, query,
		e.ID,
		e.Name,
		e.StartDate,
		e.EndDate,
		e.Location,
		e.Description,
		e.Budget,
		e.CreatedBy,
		e.Convener,
		e.OrganisedBy,
		pq.Array(e.Organizations),
		pq.Array(e.Industries),
		pq.Array(e.Employees),
		posters,
		e.CreatedAt,
	)
	return mapError(err, "create event")
}

func (r *EventRepository) Update(ctx context.Context, e *entity.Event) error {
	posters, err := jsonb(e.Posters)
	if err != nil {
		return fmt.Errorf("failed to marshal posters: %w", err)
	}
	query := `
		UPDATE events
		SET name = $2, start_date = $3, end_date = $4, location = $5, description = $6, budget = $7,
		    convener = $8, organised_by = $9, organizations = $10, industries = $11, employees = $12, posters = $13
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.Name,
		e.StartDate,
		e.EndDate,
		e.Location,
		e.Description,
		e.Budget,
		e.Convener,
		e.OrganisedBy,
		pq.Array(e.Organizations),
		pq.Array(e.Industries),
		pq.Array(e.Employees),
		posters,
	)
	if err != nil {
		return mapError(err, "update event")
	}
	return checkAffected(result)
}

func (r *EventRepository) Delete(ctx context.Context, id string) (*entity.Event, error) {
	e, err := scanEvent(r.db.QueryRowContext(ctx, `DELETE FROM events WHERE id = $1 RETURNING `+eventColumns, id))
	if err != nil {
		return nil, mapError(err, "delete event")
	}
	return e, nil
}

func (r *EventRepository) List(ctx context.Context, filter outbound.ListFilter) ([]*entity.Event, error) {
	var w whereBuilder
	w.search([]string{"name", "location"}, filter.Search)
	query := `SELECT ` + eventColumns + ` FROM events` + w.sql() + ` ORDER BY start_date DESC`
	query += w.page(filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, mapError(err, "list events")
	}
	defer rows.Close()

	out := []*entity.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
