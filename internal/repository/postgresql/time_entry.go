package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/database"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/geo"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const timeEntryColumns = `
	id, company_id, employee_id, display_name, timestamp, type, lat, lon, location_name, validated_ip,
	status, justification, rejection_reason, reviewed_by, reviewed_at,
	is_edited, edit_reason, original_timestamp, is_offline, is_kiosk, created_at, updated_at`

type timeEntryRepositoryImpl struct {
	db *database.DB
}

func NewTimeEntryRepository(db *database.DB) timeentry.TimeEntryRepository {
	return &timeEntryRepositoryImpl{db: db}
}

func scanTimeEntry(row pgx.Row) (timeentry.TimeEntry, error) {
	var e timeentry.TimeEntry
	var lat, lon *float64
	err := row.Scan(
		&e.ID, &e.CompanyID, &e.EmployeeID, &e.DisplayName, &e.Timestamp, &e.Type, &lat, &lon,
		&e.LocationName, &e.ValidatedIP, &e.Status, &e.Justification, &e.RejectionReason,
		&e.ReviewedBy, &e.ReviewedAt, &e.IsEdited, &e.EditReason, &e.OriginalTimestamp,
		&e.IsOffline, &e.IsKiosk, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return timeentry.TimeEntry{}, err
	}
	if lat != nil && lon != nil {
		e.Location = &geo.Coordinates{Lat: *lat, Lon: *lon}
	}
	return e, nil
}

func coordinateArgs(c *geo.Coordinates) (lat, lon *float64) {
	if c == nil {
		return nil, nil
	}
	return &c.Lat, &c.Lon
}

func (r *timeEntryRepositoryImpl) list(ctx context.Context, query string, args ...interface{}) ([]timeentry.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []timeentry.TimeEntry
	for rows.Next() {
		e, err := scanTimeEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// Create implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) Create(ctx context.Context, entry timeentry.TimeEntry) (timeentry.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	lat, lon := coordinateArgs(entry.Location)

	query := `
		INSERT INTO time_entries (
			id, company_id, employee_id, display_name, timestamp, type, lat, lon, location_name, validated_ip,
			status, justification, reviewed_by, reviewed_at, is_offline, is_kiosk
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16
		)
		RETURNING ` + timeEntryColumns

	created, err := scanTimeEntry(q.QueryRow(ctx, query,
		entry.ID, entry.CompanyID, entry.EmployeeID, entry.DisplayName, entry.Timestamp, entry.Type, lat, lon,
		entry.LocationName, entry.ValidatedIP, entry.Status, entry.Justification, entry.ReviewedBy, entry.ReviewedAt,
		entry.IsOffline, entry.IsKiosk,
	))
	if err != nil {
		return timeentry.TimeEntry{}, fmt.Errorf("failed to create time entry: %w", err)
	}
	return created, nil
}

// GetByID implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) GetByID(ctx context.Context, id string, companyID string) (timeentry.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timeEntryColumns + ` FROM time_entries WHERE id = $1 AND company_id = $2`

	e, err := scanTimeEntry(q.QueryRow(ctx, query, id, companyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timeentry.TimeEntry{}, fmt.Errorf("time entry with id %s not found: %w", id, err)
		}
		return timeentry.TimeEntry{}, fmt.Errorf("failed to get time entry with id %s: %w", id, err)
	}
	return e, nil
}

// Update implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) Update(ctx context.Context, entry timeentry.TimeEntry) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_entries
		SET timestamp = $1, type = $2, is_edited = $3, edit_reason = $4, original_timestamp = $5, updated_at = NOW()
		WHERE id = $6 AND company_id = $7
	`

	tag, err := q.Exec(ctx, query,
		entry.Timestamp, entry.Type, entry.IsEdited, entry.EditReason, entry.OriginalTimestamp, entry.ID, entry.CompanyID,
	)
	if err != nil {
		return fmt.Errorf("failed to update time entry with id %s: %w", entry.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("time entry with id %s not found: %w", entry.ID, pgx.ErrNoRows)
	}
	return nil
}

// Review implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) Review(ctx context.Context, entry timeentry.TimeEntry) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_entries
		SET status = $1, rejection_reason = $2, reviewed_by = $3, reviewed_at = $4, updated_at = NOW()
		WHERE id = $5 AND company_id = $6 AND status = $7
	`

	tag, err := q.Exec(ctx, query,
		entry.Status, entry.RejectionReason, entry.ReviewedBy, entry.ReviewedAt, entry.ID, entry.CompanyID,
		timeentry.StatusPendingApproval,
	)
	if err != nil {
		return fmt.Errorf("failed to review time entry with id %s: %w", entry.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return timeentry.ErrEntryAlreadyProcessed
	}
	return nil
}

// LatestActive implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) LatestActive(ctx context.Context, employeeID string) (timeentry.TimeEntry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT ` + timeEntryColumns + `
		FROM time_entries
		WHERE employee_id = $1 AND status <> $2 AND type <> $3
		ORDER BY timestamp DESC
		LIMIT 1
	`

	return scanTimeEntry(q.QueryRow(ctx, query, employeeID, timeentry.StatusRejected, timeentry.TypeMedicalCertificate))
}

// ListByEmployee implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) ListByEmployee(ctx context.Context, employeeID string, companyID string, from, to time.Time) ([]timeentry.TimeEntry, error) {
	query := `
		SELECT ` + timeEntryColumns + `
		FROM time_entries
		WHERE employee_id = $1 AND company_id = $2 AND timestamp >= $3 AND timestamp < $4
		ORDER BY timestamp ASC
	`
	return r.list(ctx, query, employeeID, companyID, from, to)
}

// ListPending implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) ListPending(ctx context.Context, companyID string) ([]timeentry.TimeEntry, error) {
	query := `
		SELECT ` + timeEntryColumns + `
		FROM time_entries
		WHERE company_id = $1 AND status = $2
		ORDER BY timestamp ASC
	`
	return r.list(ctx, query, companyID, timeentry.StatusPendingApproval)
}

// DeleteByEmployee implements timeentry.TimeEntryRepository.
func (r *timeEntryRepositoryImpl) DeleteByEmployee(ctx context.Context, employeeID string, companyID string) error {
	q := GetQuerier(ctx, r.db)

	if _, err := q.Exec(ctx, `DELETE FROM time_entries WHERE employee_id = $1 AND company_id = $2`, employeeID, companyID); err != nil {
		return fmt.Errorf("failed to delete time entries of employee %s: %w", employeeID, err)
	}
	return nil
}

// ========================================
// IDEMPOTENCY KEYS
// ========================================

type idempotencyRepositoryImpl struct {
	db *database.DB
}

func NewIdempotencyRepository(db *database.DB) timeentry.IdempotencyRepository {
	return &idempotencyRepositoryImpl{db: db}
}

// Get implements timeentry.IdempotencyRepository.
func (r *idempotencyRepositoryImpl) Get(ctx context.Context, employeeID, key string) (timeentry.IdempotencyRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, key, request_hash, entry_id, created_at
		FROM punch_idempotency_keys
		WHERE employee_id = $1 AND key = $2
	`

	var rec timeentry.IdempotencyRecord
	err := q.QueryRow(ctx, query, employeeID, key).Scan(&rec.EmployeeID, &rec.Key, &rec.RequestHash, &rec.EntryID, &rec.CreatedAt)
	if err != nil {
		return timeentry.IdempotencyRecord{}, err
	}
	return rec, nil
}

// Claim implements timeentry.IdempotencyRepository. A concurrent claim of
// the same key blocks on the conflicting row until its transaction ends.
func (r *idempotencyRepositoryImpl) Claim(ctx context.Context, rec timeentry.IdempotencyRecord, expiredBefore time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO punch_idempotency_keys (employee_id, key, request_hash, entry_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (employee_id, key) DO UPDATE
		SET request_hash = EXCLUDED.request_hash, entry_id = EXCLUDED.entry_id, created_at = EXCLUDED.created_at
		WHERE punch_idempotency_keys.created_at <= $6
	`

	tag, err := q.Exec(ctx, query, rec.EmployeeID, rec.Key, rec.RequestHash, rec.EntryID, rec.CreatedAt, expiredBefore)
	if err != nil {
		return false, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}
