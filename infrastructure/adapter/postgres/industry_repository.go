package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/domain/entity"
)

const industryColumns = `id, name, location, contact_points, created_at`

type IndustryRepository struct {
	db *sql.DB
}

func NewIndustryRepository(db *sql.DB) outbound.IndustryRepository {
	return &IndustryRepository{db: db}
}

func scanIndustry(row rowScanner) (*entity.Industry, error) {
	var i entity.Industry
	var contacts []byte
	if err := row.Scan(&i.ID, &i.Name, &i.Location, &contacts, &i.CreatedAt); err != nil {
		return nil, err
	}
	if len(contacts) > 0 {
		if err := json.Unmarshal(contacts, &i.ContactPoints); err != nil {
			return nil, fmt.Errorf("failed to unmarshal contact points: %w", err)
		}
	}
	return &i, nil
}

func (r *IndustryRepository) FindByID(ctx context.Context, id string) (*entity.Industry, error) {
	i, err := scanIndustry(r.db.QueryRowContext(ctx,
		`SELECT `+industryColumns+` FROM industries WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "find industry")
	}
	return i, nil
}

func (r *IndustryRepository) Create(ctx context.Context, i *entity.Industry) error {
	contacts, err := jsonb(i.ContactPoints)
	if err != nil {
		return fmt.Errorf("failed to marshal contact points: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO industries (`+industryColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		i.ID, i.Name, i.Location, contacts, i.CreatedAt,
	)
	return mapError(err, "create industry")
}

func (r *IndustryRepository) Update(ctx context.Context, i *entity.Industry) error {
	contacts, err := jsonb(i.ContactPoints)
	if err != nil {
		return fmt.Errorf("failed to marshal contact points: %w", err)
	}
	result, err := r.db.ExecContext(ctx,
		`UPDATE industries SET name = $2, location = $3, contact_points = $4 WHERE id = $1`,
		i.ID, i.Name, i.Location, contacts,
	)
	if err != nil {
		return mapError(err, "update industry")
	}
	return checkAffected(result)
}

func (r *IndustryRepository) Delete(ctx context.Context, id string) (*entity.Industry, error) {
	i, err := scanIndustry(r.db.QueryRowContext(ctx,
		`DELETE FROM industries WHERE id = $1 RETURNING `+industryColumns, id))
	if err != nil {
		return nil, mapError(err, "delete industry")
	}
	return i, nil
}

func (r *IndustryRepository) List(ctx context.Context, filter outbound.ListFilter) ([]*entity.Industry, error) {
	var w whereBuilder
	w.search([]string{"name", "location"}, filter.Search)
	query := `SELECT ` + industryColumns + ` FROM industries` + w.sql() + ` ORDER BY name ASC`
	query += w.page(filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, mapError(err, "list industries")
	}
	defer rows.Close()

	out := []*entity.Industry{}
	for rows.Next() {
		i, err := scanIndustry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan industry: %w", err)
		}
		out = append(out, i)
	}
	return out, rows.Err()
}
