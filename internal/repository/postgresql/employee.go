package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const employeeColumns = `id, company_id, display_name, email, status, allowed_locations, work_hours, created_at, updated_at`

type employeeRepositoryImpl struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepositoryImpl{db: db}
}

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var e employee.Employee
	var workHours []byte
	err := row.Scan(&e.ID, &e.CompanyID, &e.DisplayName, &e.Email, &e.Status,
		&e.AllowedLocations, &workHours, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return employee.Employee{}, err
	}
	if len(workHours) > 0 {
		e.WorkHours = &employee.WeeklySchedule{}
		if err := e.WorkHours.Scan(workHours); err != nil {
			return employee.Employee{}, err
		}
	}
	return e, nil
}

func marshalWorkHours(w *employee.WeeklySchedule) ([]byte, error) {
	if w == nil {
		return nil, nil
	}
	return json.Marshal(w)
}

// isUniqueViolation reports a 23505 error from PostgreSQL.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1 AND company_id = $2`

	e, err := scanEmployee(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, fmt.Errorf("employee with id %s not found: %w", id, err)
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee with id %s: %w", id, err)
	}
	return e, nil
}

// ListByCompany implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) ListByCompany(ctx context.Context, companyID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE company_id = $1 ORDER BY display_name`

	rows, err := q.Query(ctx, query, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return employees, nil
}

// Create implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Create(ctx context.Context, newEmployee employee.Employee) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	if newEmployee.ID == "" {
		newEmployee.ID = uuid.NewString()
	}
	workHours, err := marshalWorkHours(newEmployee.WorkHours)
	if err != nil {
		return employee.Employee{}, err
	}
	allowed := newEmployee.AllowedLocations
	if allowed == nil {
		allowed = []string{}
	}

	query := `
		INSERT INTO employees (id, company_id, display_name, email, status, allowed_locations, work_hours)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + employeeColumns

	created, err := scanEmployee(q.QueryRow(ctx, query,
		newEmployee.ID, newEmployee.CompanyID, newEmployee.DisplayName, newEmployee.Email,
		newEmployee.Status, allowed, workHours,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return employee.Employee{}, employee.ErrEmailExists
		}
		return employee.Employee{}, fmt.Errorf("failed to create employee: %w", err)
	}
	return created, nil
}

// Update implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Update(ctx context.Context, e employee.Employee) error {
	q := GetQuerier(ctx, r.db)

	workHours, err := marshalWorkHours(e.WorkHours)
	if err != nil {
		return err
	}
	allowed := e.AllowedLocations
	if allowed == nil {
		allowed = []string{}
	}

	query := `
		UPDATE employees
		SET display_name = $1, email = $2, status = $3, allowed_locations = $4, work_hours = $5, updated_at = NOW()
		WHERE id = $6 AND company_id = $7
		RETURNING id
	`

	var updatedID string
	err = q.QueryRow(ctx, query, e.DisplayName, e.Email, e.Status, allowed, workHours, e.ID, e.CompanyID).Scan(&updatedID)
	if err != nil {
		if isUniqueViolation(err) {
			return employee.ErrEmailExists
		}
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("employee with id %s not found or does not belong to company %s: %w", e.ID, e.CompanyID, err)
		}
		return fmt.Errorf("failed to update employee with id %s: %w", e.ID, err)
	}
	return nil
}

// Delete implements employee.EmployeeRepository.
func (r *employeeRepositoryImpl) Delete(ctx context.Context, id string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM employees WHERE id = $1 AND company_id = $2`, id, companyID)
	if err != nil {
		return fmt.Errorf("failed to delete employee with id %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("employee with id %s not found: %w", id, pgx.ErrNoRows)
	}
	return nil
}
