package report

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/export"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/jwt"
	"github.com/jackc/pgx/v5"
)

type ReportServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	entryRepo    timeentry.TimeEntryRepository
	location     *time.Location
	now          func() time.Time
}

func NewReportService(employeeRepo employee.EmployeeRepository, entryRepo timeentry.TimeEntryRepository, location *time.Location) *ReportServiceImpl {
	return &ReportServiceImpl{
		employeeRepo: employeeRepo,
		entryRepo:    entryRepo,
		location:     location,
		now:          time.Now,
	}
}

// TimeEntriesReport implements report.ReportService.
func (s *ReportServiceImpl) TimeEntriesReport(ctx context.Context, req report.TimeEntriesReportRequest) (report.TimeEntriesReport, error) {
	// Validate request
	if err := req.Validate(); err != nil {
		return report.TimeEntriesReport{}, err
	}

	// Get company ID from context
	identity, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return report.TimeEntriesReport{}, err
	}

	return s.build(ctx, identity.CompanyID, req.ListEntriesFilter)
}

// ExportTimeEntriesReport implements report.ReportService.
func (s *ReportServiceImpl) ExportTimeEntriesReport(ctx context.Context, req report.TimeEntriesReportRequest) (report.File, error) {
	r, err := s.TimeEntriesReport(ctx, req)
	if err != nil {
		return report.File{}, err
	}

	name := fmt.Sprintf("time-entries_%s_%s_%s", r.EmployeeID, r.StartDate, r.EndDate)
	switch req.Format {
	case report.FormatPDF:
		content, err := export.PDF(r)
		if err != nil {
			slog.ErrorContext(ctx, "PDF export failed", "employee_id", r.EmployeeID, "error", err)
			return report.File{}, report.ErrReportGenerationFailed
		}
		return report.File{Name: name + ".pdf", ContentType: "application/pdf", Content: content}, nil
	case report.FormatXLSX:
		content, err := export.XLSX(r)
		if err != nil {
			slog.ErrorContext(ctx, "XLSX export failed", "employee_id", r.EmployeeID, "error", err)
			return report.File{}, report.ErrReportGenerationFailed
		}
		return report.File{
			Name:        name + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
			Content:     content,
		}, nil
	default:
		return report.File{}, report.ErrInvalidFormat
	}
}

// MySummary implements report.ReportService.
func (s *ReportServiceImpl) MySummary(ctx context.Context, filter timeentry.ListEntriesFilter) (report.TimeEntriesReport, error) {
	if err := filter.Validate(); err != nil {
		return report.TimeEntriesReport{}, err
	}
	identity, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return report.TimeEntriesReport{}, err
	}

	filter.EmployeeID = identity.EmployeeID
	return s.build(ctx, identity.CompanyID, filter)
}

func (s *ReportServiceImpl) build(ctx context.Context, companyID string, filter timeentry.ListEntriesFilter) (report.TimeEntriesReport, error) {
	emp, err := s.employeeRepo.GetByID(ctx, filter.EmployeeID, companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return report.TimeEntriesReport{}, employee.ErrEmployeeNotFound
		}
		return report.TimeEntriesReport{}, fmt.Errorf("failed to get employee: %w", err)
	}

	from, to := filter.Range(s.location)
	entries, err := s.entryRepo.ListByEmployee(ctx, emp.ID, companyID, from, to)
	if err != nil {
		return report.TimeEntriesReport{}, fmt.Errorf("failed to list time entries: %w", err)
	}

	summary := Compute(entries, emp.WorkHours, s.location)
	return report.NewTimeEntriesReport(emp.ID, emp.DisplayName, filter, summary, s.location, s.now()), nil
}
