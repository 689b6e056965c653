package timeentry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/jwt"
	"github.com/jackc/pgx/v5"
)

// StatusNotifier pushes an employee's derived work status to live streams.
type StatusNotifier interface {
	NotifyStatus(ctx context.Context, employeeID string)
}

type TimeEntryServiceImpl struct {
	entryRepo    timeentry.TimeEntryRepository
	employeeRepo employee.EmployeeRepository
	notifier     StatusNotifier
	location     *time.Location
	now          func() time.Time
}

func NewTimeEntryService(
	entryRepo timeentry.TimeEntryRepository,
	employeeRepo employee.EmployeeRepository,
	notifier StatusNotifier,
	location *time.Location,
) *TimeEntryServiceImpl {
	return &TimeEntryServiceImpl{
		entryRepo:    entryRepo,
		employeeRepo: employeeRepo,
		notifier:     notifier,
		location:     location,
		now:          time.Now,
	}
}

// ListPending implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) ListPending(ctx context.Context) ([]timeentry.TimeEntryResponse, error) {
	identity, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	entries, err := s.entryRepo.ListPending(ctx, identity.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending entries: %w", err)
	}
	return timeentry.NewTimeEntryResponses(entries), nil
}

// Approve implements timeentry.TimeEntryService. The reason is optional.
func (s *TimeEntryServiceImpl) Approve(ctx context.Context, req timeentry.ReviewEntryRequest) (timeentry.TimeEntryResponse, error) {
	return s.review(ctx, req, timeentry.StatusApproved)
}

// Reject implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) Reject(ctx context.Context, req timeentry.ReviewEntryRequest) (timeentry.TimeEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return timeentry.TimeEntryResponse{}, err
	}
	return s.review(ctx, req, timeentry.StatusRejected)
}

func (s *TimeEntryServiceImpl) review(ctx context.Context, req timeentry.ReviewEntryRequest, status timeentry.Status) (timeentry.TimeEntryResponse, error) {
	identity, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return timeentry.TimeEntryResponse{}, err
	}

	entry, err := s.getEntry(ctx, req.ID, identity.CompanyID)
	if err != nil {
		return timeentry.TimeEntryResponse{}, err
	}
	if entry.Status != timeentry.StatusPendingApproval {
		return timeentry.TimeEntryResponse{}, timeentry.ErrEntryAlreadyProcessed
	}

	now := s.now()
	entry.Status = status
	entry.ReviewedBy = &identity.EmployeeID
	entry.ReviewedAt = &now
	if status == timeentry.StatusRejected {
		entry.RejectionReason = timeentry.Trimmed(req.Reason)
	}

	if err := s.entryRepo.Review(ctx, entry); err != nil {
		if errors.Is(err, timeentry.ErrEntryAlreadyProcessed) {
			return timeentry.TimeEntryResponse{}, err
		}
		return timeentry.TimeEntryResponse{}, fmt.Errorf("failed to review time entry: %w", err)
	}

	slog.InfoContext(ctx, "Time entry reviewed",
		"entry_id", entry.ID, "employee_id", entry.EmployeeID, "status", status, "reviewed_by", identity.EmployeeID)
	s.notify(ctx, entry.EmployeeID)
	return timeentry.NewTimeEntryResponse(entry), nil
}

// Edit implements timeentry.TimeEntryService. Status is never changed and
// the first edit's timestamp is kept as the original.
func (s *TimeEntryServiceImpl) Edit(ctx context.Context, req timeentry.EditEntryRequest) (timeentry.TimeEntryResponse, error) {
	if err := req.Validate(s.location); err != nil {
		return timeentry.TimeEntryResponse{}, err
	}
	identity, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return timeentry.TimeEntryResponse{}, err
	}

	newTimestamp, err := req.ParseTimestamp(s.location)
	if err != nil {
		return timeentry.TimeEntryResponse{}, err
	}

	entry, err := s.getEntry(ctx, req.ID, identity.CompanyID)
	if err != nil {
		return timeentry.TimeEntryResponse{}, err
	}
	if entry.Type == timeentry.TypeMedicalCertificate {
		return timeentry.TimeEntryResponse{}, timeentry.ErrCertificateNotEditable
	}

	if !entry.IsEdited {
		original := entry.Timestamp
		entry.OriginalTimestamp = &original
	}
	entry.IsEdited = true
	entry.EditReason = timeentry.Trimmed(req.Reason)
	entry.Timestamp = newTimestamp
	entry.Type = req.Type

	if err := s.entryRepo.Update(ctx, entry); err != nil {
		return timeentry.TimeEntryResponse{}, fmt.Errorf("failed to update time entry: %w", err)
	}

	slog.InfoContext(ctx, "Time entry edited",
		"entry_id", entry.ID, "employee_id", entry.EmployeeID, "edited_by", identity.EmployeeID, "reason", strings.TrimSpace(req.Reason))
	s.notify(ctx, entry.EmployeeID)
	return timeentry.NewTimeEntryResponse(entry), nil
}

// RecordMedicalCertificate implements timeentry.TimeEntryService.
func (s *TimeEntryServiceImpl) RecordMedicalCertificate(ctx context.Context, req timeentry.MedicalCertificateRequest) (timeentry.TimeEntryResponse, error) {
	if err := req.Validate(); err != nil {
		return timeentry.TimeEntryResponse{}, err
	}
	identity, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return timeentry.TimeEntryResponse{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, req.EmployeeID, identity.CompanyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timeentry.TimeEntryResponse{}, employee.ErrEmployeeNotFound
		}
		return timeentry.TimeEntryResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}

	now := s.now()
	entry, err := s.entryRepo.Create(ctx, timeentry.TimeEntry{
		CompanyID:     emp.CompanyID,
		EmployeeID:    emp.ID,
		DisplayName:   emp.DisplayName,
		Timestamp:     req.Noon(s.location),
		Type:          timeentry.TypeMedicalCertificate,
		LocationName:  timeentry.LocationMedicalCertificate,
		Status:        timeentry.StatusApproved,
		Justification: timeentry.Trimmed(req.Reason),
		ReviewedBy:    &identity.EmployeeID,
		ReviewedAt:    &now,
	})
	if err != nil {
		return timeentry.TimeEntryResponse{}, fmt.Errorf("failed to create medical certificate: %w", err)
	}

	slog.InfoContext(ctx, "Medical certificate recorded", "employee_id", emp.ID, "date", req.Date)
	return timeentry.NewTimeEntryResponse(entry), nil
}

func (s *TimeEntryServiceImpl) getEntry(ctx context.Context, id, companyID string) (timeentry.TimeEntry, error) {
	entry, err := s.entryRepo.GetByID(ctx, id, companyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timeentry.TimeEntry{}, timeentry.ErrEntryNotFound
		}
		return timeentry.TimeEntry{}, fmt.Errorf("failed to get time entry: %w", err)
	}
	return entry, nil
}

func (s *TimeEntryServiceImpl) notify(ctx context.Context, employeeID string) {
	if s.notifier != nil {
		s.notifier.NotifyStatus(ctx, employeeID)
	}
}
