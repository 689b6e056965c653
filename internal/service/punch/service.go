package punch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/config"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/kiosk"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/sse"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// maxReplaySkew tolerates client clocks running slightly ahead.
const maxReplaySkew = 5 * time.Minute

// errKeyClaimed aborts the insert when another request holds the same
// idempotency key.
var errKeyClaimed = errors.New("idempotency key claimed by another request")

// StatusEvent is the SSE event name published after every accepted punch.
const StatusEvent = "status"

type PunchServiceImpl struct {
	tx              database.Transactor
	employeeRepo    employee.EmployeeRepository
	companyRepo     company.CompanyRepository
	entryRepo       timeentry.TimeEntryRepository
	idempotencyRepo timeentry.IdempotencyRepository
	hub             *sse.Hub

	policy            *Policy
	lateness          LatenessPolicy
	cooldown          Cooldown
	idempotencyWindow time.Duration
	location          *time.Location
	now               func() time.Time
}

func NewPunchService(
	tx database.Transactor,
	employeeRepo employee.EmployeeRepository,
	companyRepo company.CompanyRepository,
	kioskRepo kiosk.KioskRepository,
	entryRepo timeentry.TimeEntryRepository,
	idempotencyRepo timeentry.IdempotencyRepository,
	hub *sse.Hub,
	cfg config.PunchConfig,
) *PunchServiceImpl {
	return &PunchServiceImpl{
		tx:                tx,
		employeeRepo:      employeeRepo,
		companyRepo:       companyRepo,
		entryRepo:         entryRepo,
		idempotencyRepo:   idempotencyRepo,
		hub:               hub,
		policy:            DefaultPolicy(kioskRepo, cfg.GeofenceRadiusMeters),
		lateness:          LatenessPolicy{Tolerance: cfg.LatenessTolerance, Location: cfg.Location},
		cooldown:          Cooldown{Interval: cfg.Cooldown},
		idempotencyWindow: cfg.IdempotencyWindow,
		location:          cfg.Location,
		now:               time.Now,
	}
}

// Submit implements timeentry.PunchService.
func (s *PunchServiceImpl) Submit(ctx context.Context, req timeentry.PunchRequest) (timeentry.PunchResponse, error) {
	if err := req.Validate(); err != nil {
		return timeentry.PunchResponse{}, err
	}

	identity, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return timeentry.PunchResponse{}, err
	}
	now := s.now()

	requestHash := hashPunch(req)
	if req.IdempotencyKey != "" {
		existing, found, err := s.lookupIdempotent(ctx, identity, req.IdempotencyKey, requestHash, now)
		if err != nil {
			return timeentry.PunchResponse{}, err
		}
		if found {
			return replayed(ctx, req.IdempotencyKey, existing), nil
		}
	}

	emp, err := s.employeeRepo.GetByID(ctx, identity.EmployeeID, identity.CompanyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timeentry.PunchResponse{}, employee.ErrEmployeeNotFound
		}
		return timeentry.PunchResponse{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if !emp.IsActive() {
		return timeentry.PunchResponse{}, employee.ErrEmployeeInactive
	}

	punchTime := now
	if req.IsReplay() {
		if req.CapturedAt.After(now.Add(maxReplaySkew)) {
			return timeentry.PunchResponse{}, timeentry.ErrFutureTimestamp
		}
		punchTime = *req.CapturedAt
	} else {
		last, err := s.entryRepo.LatestActive(ctx, emp.ID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return timeentry.PunchResponse{}, fmt.Errorf("failed to get latest entry: %w", err)
		}
		if err := s.cooldown.Check(last.Timestamp, now); err != nil {
			return timeentry.PunchResponse{}, err
		}
	}

	comp, err := s.companyRepo.GetByID(ctx, emp.CompanyID)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return timeentry.PunchResponse{}, fmt.Errorf("failed to get company: %w", err)
	}

	acceptance, err := s.policy.Validate(ctx, Input{
		Employee:   emp,
		Company:    comp,
		Location:   req.Location,
		KioskToken: req.KioskToken,
	})
	if err != nil {
		slog.InfoContext(ctx, "Punch rejected by location policy",
			"employee_id", emp.ID, "type", req.Type, "reason", err.Error())
		return timeentry.PunchResponse{}, err
	}

	provenance := ProvenanceOf(req.IsReplay(), acceptance.Via)
	decision, err := s.lateness.Decide(req.Type, emp.WorkHours, punchTime, provenance, req.Justification)
	if err != nil {
		return timeentry.PunchResponse{}, err
	}

	entry := timeentry.TimeEntry{
		ID:            uuid.NewString(),
		CompanyID:     emp.CompanyID,
		EmployeeID:    emp.ID,
		DisplayName:   emp.DisplayName,
		Timestamp:     punchTime,
		Type:          req.Type,
		Location:      acceptance.Coordinates,
		LocationName:  acceptance.LocationName,
		ValidatedIP:   req.ClientIP,
		Status:        decision.Status,
		Justification: decision.Justification,
		IsOffline:     req.IsReplay(),
		IsKiosk:       acceptance.Via == ViaKiosk,
	}

	err = s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		if req.IdempotencyKey != "" {
			claimed, err := s.idempotencyRepo.Claim(ctx, timeentry.IdempotencyRecord{
				EmployeeID:  emp.ID,
				Key:         req.IdempotencyKey,
				RequestHash: requestHash,
				EntryID:     entry.ID,
				CreatedAt:   now,
			}, now.Add(-s.idempotencyWindow))
			if err != nil {
				return err
			}
			if !claimed {
				return errKeyClaimed
			}
		}

		created, err := s.entryRepo.Create(ctx, entry)
		if err != nil {
			return fmt.Errorf("failed to create time entry: %w", err)
		}
		entry = created
		return nil
	})
	if errors.Is(err, errKeyClaimed) {
		existing, found, err := s.lookupIdempotent(ctx, identity, req.IdempotencyKey, requestHash, now)
		if err != nil {
			return timeentry.PunchResponse{}, err
		}
		if !found {
			return timeentry.PunchResponse{}, timeentry.ErrIdempotencyConflict
		}
		return replayed(ctx, req.IdempotencyKey, existing), nil
	}
	if err != nil {
		return timeentry.PunchResponse{}, err
	}

	slog.InfoContext(ctx, "Punch recorded",
		"employee_id", emp.ID,
		"entry_id", entry.ID,
		"type", entry.Type,
		"status", entry.Status,
		"via", acceptance.Via,
		"provenance", provenance.String(),
		"lateness_minutes", decision.LatenessMinutes,
	)
	s.NotifyStatus(ctx, emp.ID)

	message := decision.Message
	if message == "" {
		message = fmt.Sprintf("%s recorded successfully at %q.", entry.Type, entry.LocationName)
	}
	return timeentry.PunchResponse{Entry: timeentry.NewTimeEntryResponse(entry), Message: message}, nil
}

func replayed(ctx context.Context, key string, existing timeentry.TimeEntry) timeentry.PunchResponse {
	slog.InfoContext(ctx, "Duplicate punch suppressed",
		"employee_id", existing.EmployeeID, "idempotency_key", key, "entry_id", existing.ID)
	return timeentry.PunchResponse{
		Entry:    timeentry.NewTimeEntryResponse(existing),
		Replayed: true,
		Message:  "Punch already recorded.",
	}
}

func (s *PunchServiceImpl) lookupIdempotent(ctx context.Context, identity jwt.Identity, key, requestHash string, now time.Time) (timeentry.TimeEntry, bool, error) {
	record, err := s.idempotencyRepo.Get(ctx, identity.EmployeeID, key)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timeentry.TimeEntry{}, false, nil
		}
		return timeentry.TimeEntry{}, false, fmt.Errorf("failed to get idempotency key: %w", err)
	}
	if now.Sub(record.CreatedAt) > s.idempotencyWindow {
		return timeentry.TimeEntry{}, false, nil
	}
	if record.RequestHash != requestHash {
		return timeentry.TimeEntry{}, false, timeentry.ErrIdempotencyConflict
	}

	existing, err := s.entryRepo.GetByID(ctx, record.EntryID, identity.CompanyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The entry went away with an employee removal; treat the key as unused.
			return timeentry.TimeEntry{}, false, nil
		}
		return timeentry.TimeEntry{}, false, fmt.Errorf("failed to get time entry: %w", err)
	}
	return existing, true, nil
}

// NotifyStatus pushes the current work status to the employee's open
// streams.
func (s *PunchServiceImpl) NotifyStatus(ctx context.Context, employeeID string) {
	if s.hub == nil || s.hub.SubscriberCount(employeeID) == 0 {
		return
	}
	status, err := s.StatusOf(ctx, employeeID)
	if err != nil {
		slog.WarnContext(ctx, "Failed to compute status for stream", "employee_id", employeeID, "error", err)
		return
	}
	s.hub.Publish(sse.Event{EmployeeID: employeeID, Event: StatusEvent, Data: status})
}

func (s *PunchServiceImpl) StatusOf(ctx context.Context, employeeID string) (timeentry.StatusResponse, error) {
	last, err := s.entryRepo.LatestActive(ctx, employeeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timeentry.StatusResponse{Status: timeentry.DeriveStatus(nil)}, nil
		}
		return timeentry.StatusResponse{}, fmt.Errorf("failed to get latest entry: %w", err)
	}
	resp := timeentry.NewTimeEntryResponse(last)
	return timeentry.StatusResponse{
		Status:    timeentry.DeriveStatus([]timeentry.TimeEntry{last}),
		LastEntry: &resp,
	}, nil
}

// MyStatus implements timeentry.PunchService.
func (s *PunchServiceImpl) MyStatus(ctx context.Context) (timeentry.StatusResponse, error) {
	identity, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return timeentry.StatusResponse{}, err
	}
	return s.StatusOf(ctx, identity.EmployeeID)
}

// MyEntries implements timeentry.PunchService.
func (s *PunchServiceImpl) MyEntries(ctx context.Context, filter timeentry.ListEntriesFilter) ([]timeentry.TimeEntryResponse, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	identity, err := jwt.IdentityFromContext(ctx)
	if err != nil {
		return nil, err
	}

	from, to := filter.Range(s.location)
	entries, err := s.entryRepo.ListByEmployee(ctx, identity.EmployeeID, identity.CompanyID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list time entries: %w", err)
	}
	return timeentry.NewTimeEntryResponses(entries), nil
}

// hashPunch fingerprints the fields that define a punch so a reused
// idempotency key with a different body is detected. The capture timestamp
// is left out: a punch queued after a timed-out live attempt is replayed
// with the same key and a timestamp the live attempt did not carry.
func hashPunch(req timeentry.PunchRequest) string {
	payload, _ := json.Marshal(struct {
		Type          timeentry.Type   `json:"type"`
		Location      *geo.Coordinates `json:"location"`
		KioskToken    string           `json:"kiosk_token"`
		Justification string           `json:"justification"`
	}{
		Type:          req.Type,
		Location:      req.Location,
		KioskToken:    req.KioskToken,
		Justification: req.Justification,
	})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
