package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/domain/entity"
)

const organizationColumns = `id, name, location, created_at`

type OrganizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) outbound.OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func scanOrganization(row rowScanner) (*entity.Organization, error) {
	var o entity.Organization
	if err := row.Scan(&o.ID, &o.Name, &o.Location, &o.CreatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrganizationRepository) FindByID(ctx context.Context, id string) (*entity.Organization, error) {
	o, err := scanOrganization(r.db.QueryRowContext(ctx,
		`SELECT `+organizationColumns+` FROM organizations WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "find organization")
	}
	return o, nil
}

func (r *OrganizationRepository) Create(ctx context.Context, o *entity.Organization) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO organizations (`+organizationColumns+`) VALUES ($1, $2, $3, $4)`,
		o.ID, o.Name, o.Location, o.CreatedAt,
	)
	return mapError(err, "create organization")
}

func (r *OrganizationRepository) Update(ctx context.Context, o *entity.Organization) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE organizations SET name = $2, location = $3 WHERE id = $1`,
		o.ID, o.Name, o.Location,
	)
	if err != nil {
		return mapError(err, "update organization")
	}
	return checkAffected(result)
}

func (r *OrganizationRepository) Delete(ctx context.Context, id string) (*entity.Organization, error) {
	o, err := scanOrganization(r.db.QueryRowContext(ctx,
		`DELETE FROM organizations WHERE id = $1 RETURNING `+organizationColumns, id))
	if err != nil {
		return nil, mapError(err, "delete organization")
	}
	return o, nil
}

func (r *OrganizationRepository) List(ctx context.Context, filter outbound.ListFilter) ([]*entity.Organization, error) {
	var w whereBuilder
	w.search([]string{"name", "location"}, filter.Search)
	query := `SELECT ` + organizationColumns + ` FROM organizations` + w.sql() + ` ORDER BY name ASC`
	query += w.page(filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, mapError(err, "list organizations")
	}
	defer rows.Close()

	out := []*entity.Organization{}
	for rows.Next() {
		o, err := scanOrganization(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
