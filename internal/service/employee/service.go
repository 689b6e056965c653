package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/jwt"
	"github.com/jackc/pgx/v5"
)

type EmployeeServiceImpl struct {
	tx           database.Transactor
	employeeRepo employee.EmployeeRepository
	entryRepo    timeentry.TimeEntryRepository
}

func NewEmployeeService(
	tx database.Transactor,
	employeeRepo employee.EmployeeRepository,
	entryRepo timeentry.TimeEntryRepository,
) employee.EmployeeService {
	return &EmployeeServiceImpl{
		tx:           tx,
		employeeRepo: employeeRepo,
		entryRepo:    entryRepo,
	}
}

// ListEmployees implements employee.EmployeeService.
func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context) ([]employee.EmployeeResponse, error) {
	identity, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	employees, err := s.employeeRepo.ListByCompany(ctx, identity.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	responses := make([]employee.EmployeeResponse, 0, len(employees))
	for _, e := range employees {
		responses = append(responses, employee.NewEmployeeResponse(e))
	}
	return responses, nil
}

// GetEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	identity, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	e, err := s.get(ctx, id, identity.CompanyID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}
	return employee.NewEmployeeResponse(e), nil
}

// CreateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) CreateEmployee(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	identity, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	status := req.Status
	if status == "" {
		status = employee.StatusActive
	}
	workHours := req.WorkHours
	if workHours == nil {
		workHours = employee.DefaultWeeklySchedule()
	}

	created, err := s.employeeRepo.Create(ctx, employee.Employee{
		CompanyID:        identity.CompanyID,
		DisplayName:      strings.TrimSpace(req.DisplayName),
		Email:            strings.ToLower(strings.TrimSpace(req.Email)),
		Status:           status,
		AllowedLocations: normalizeTags(req.AllowedLocations),
		WorkHours:        workHours,
	})
	if err != nil {
		if errors.Is(err, employee.ErrEmailExists) {
			return employee.EmployeeResponse{}, err
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to create employee: %w", err)
	}

	slog.InfoContext(ctx, "Employee created", "employee_id", created.ID, "company_id", created.CompanyID)
	return employee.NewEmployeeResponse(created), nil
}

// UpdateEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) UpdateEmployee(ctx context.Context, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}
	identity, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	e, err := s.get(ctx, req.ID, identity.CompanyID)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	if req.DisplayName != nil {
		e.DisplayName = strings.TrimSpace(*req.DisplayName)
	}
	if req.Email != nil {
		e.Email = strings.ToLower(strings.TrimSpace(*req.Email))
	}
	if req.Status != nil {
		e.Status = *req.Status
	}
	if req.AllowedLocations != nil {
		e.AllowedLocations = normalizeTags(req.AllowedLocations)
	}
	if req.WorkHours != nil {
		e.WorkHours = req.WorkHours
	}

	if err := s.employeeRepo.Update(ctx, e); err != nil {
		if errors.Is(err, employee.ErrEmailExists) {
			return employee.EmployeeResponse{}, err
		}
		return employee.EmployeeResponse{}, fmt.Errorf("failed to update employee: %w", err)
	}
	return employee.NewEmployeeResponse(e), nil
}

// DeleteEmployee implements employee.EmployeeService.
func (s *EmployeeServiceImpl) DeleteEmployee(ctx context.Context, id string) error {
	identity, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return err
	}
	if id == identity.EmployeeID {
		return employee.ErrCannotDeleteSelf
	}

	if _, err := s.get(ctx, id, identity.CompanyID); err != nil {
		return err
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if err := s.entryRepo.DeleteByEmployee(ctx, id, identity.CompanyID); err != nil {
			return fmt.Errorf("failed to delete time entries: %w", err)
		}
		if err := s.employeeRepo.Delete(ctx, id, identity.CompanyID); err != nil {
			return fmt.Errorf("failed to delete employee: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "Employee deleted", "employee_id", id, "deleted_by", identity.EmployeeID)
	return nil
}

func (s *EmployeeServiceImpl) get(ctx context.Context, id, companyID string) (employee.Employee, error) {
	e, err := s.employeeRepo.GetByID(ctx, id, companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}
	return e, nil
}

// normalizeTags trims tags and drops blanks and duplicates, keeping order.
func normalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
