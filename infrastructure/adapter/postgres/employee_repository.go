package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fixora/taskhub/application/port/outbound"
	"github.com/fixora/taskhub/domain/entity"
)

const employeeColumns = `id, first_name, last_name, email, phone, designation, password_hash, created_by, created_at, updated_at`

type EmployeeRepository struct {
	db *sql.DB
}

func NewEmployeeRepository(db *sql.DB) outbound.EmployeeRepository {
	return &EmployeeRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmployee(row rowScanner) (*entity.Employee, error) {
	var e entity.Employee
	var phone, createdBy sql.NullString
	err := row.Scan(
		&e.ID,
		&e.FirstName,
		&e.LastName,
		&e.Email,
		&phone,
		&e.Designation,
		&e.PasswordHash,
		&createdBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	e.Phone = phone.String
	if createdBy.Valid {
		e.CreatedBy = &createdBy.String
	}
	return &e, nil
}

func (r *EmployeeRepository) FindByID(ctx context.Context, id string) (*entity.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "find employee")
	}
	return e, nil
}

func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*entity.Employee, error) {
	if email == "" {
		return nil, fmt.Errorf("email cannot be empty")
	}
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE email = $1 LIMIT 1`
	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, mapError(err, "find employee by email")
	}
	return e, nil
}

func (r *EmployeeRepository) Create(ctx context.Context, e *entity.Employee) error {
	if e == nil {
		return fmt.Errorf("employee cannot be nil")
	}
	query := `
		INSERT INTO employees (` + employeeColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.FirstName,
		e.LastName,
		e.Email,
		nullString(e.Phone),
		string(e.Designation),
		e.PasswordHash,
		e.CreatedBy,
		e.CreatedAt,
		e.UpdatedAt,
	)
	return mapError(err, "create employee")
}

// Update writes profile fields only; the password goes through UpdatePassword.
func (r *EmployeeRepository) Update(ctx context.Context, e *entity.Employee) error {
	query := `
		UPDATE employees
		SET first_name = $2, last_name = $3, email = $4, phone = $5, designation = $6, updated_at = $7
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query,
		e.ID,
		e.FirstName,
		e.LastName,
		e.Email,
		nullString(e.Phone),
		string(e.Designation),
		e.UpdatedAt,
	)
	if err != nil {
		return mapError(err, "update employee")
	}
	return checkAffected(result)
}

func (r *EmployeeRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE employees SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		id, passwordHash,
	)
	if err != nil {
		return mapError(err, "update password")
	}
	return checkAffected(result)
}

func (r *EmployeeRepository) Delete(ctx context.Context, id string) (*entity.Employee, error) {
	query := `DELETE FROM employees WHERE id = $1 RETURNING ` + employeeColumns
	e, err := scanEmployee(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "delete employee")
	}
	return e, nil
}

func (r *EmployeeRepository) List(ctx context.Context, filter outbound.ListFilter) ([]*entity.Employee, error) {
	var w whereBuilder
	w.search([]string{"first_name", "last_name", "email"}, filter.Search)
	query := `SELECT ` + employeeColumns + ` FROM employees` + w.sql() + ` ORDER BY created_at DESC`
	query += w.page(filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, w.args...)
	if err != nil {
		return nil, mapError(err, "list employees")
	}
	defer rows.Close()

	employees := []*entity.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}
