// Package memory provides in-process repositories with the same not-found
// semantics as the PostgreSQL ones. Services use them in tests.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/kiosk"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Transactor runs fn directly.
type Transactor struct{}

func (Transactor) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// ========================================
// EMPLOYEES
// ========================================

type EmployeeRepository struct {
	mu        sync.Mutex
	employees map[string]employee.Employee
}

func NewEmployeeRepository(seed ...employee.Employee) *EmployeeRepository {
	r := &EmployeeRepository{employees: make(map[string]employee.Employee)}
	for _, e := range seed {
		r.employees[e.ID] = e
	}
	return r
}

func (r *EmployeeRepository) GetByID(_ context.Context, id string, companyID string) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[id]
	if !ok || e.CompanyID != companyID {
		return employee.Employee{}, fmt.Errorf("employee %s: %w", id, pgx.ErrNoRows)
	}
	return e, nil
}

func (r *EmployeeRepository) ListByCompany(_ context.Context, companyID string) ([]employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []employee.Employee
	for _, e := range r.employees {
		if e.CompanyID == companyID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, nil
}

func (r *EmployeeRepository) Create(_ context.Context, e employee.Employee) (employee.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.employees {
		if existing.CompanyID == e.CompanyID && existing.Email == e.Email {
			return employee.Employee{}, employee.ErrEmailExists
		}
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	r.employees[e.ID] = e
	return e, nil
}

func (r *EmployeeRepository) Update(_ context.Context, e employee.Employee) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.employees[e.ID]
	if !ok || existing.CompanyID != e.CompanyID {
		return fmt.Errorf("employee %s: %w", e.ID, pgx.ErrNoRows)
	}
	e.UpdatedAt = time.Now()
	r.employees[e.ID] = e
	return nil
}

func (r *EmployeeRepository) Delete(_ context.Context, id string, companyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.employees[id]
	if !ok || e.CompanyID != companyID {
		return fmt.Errorf("employee %s: %w", id, pgx.ErrNoRows)
	}
	delete(r.employees, id)
	return nil
}

// ========================================
// COMPANIES
// ========================================

type CompanyRepository struct {
	mu        sync.Mutex
	companies map[string]company.Company
}

func NewCompanyRepository(seed ...company.Company) *CompanyRepository {
	r := &CompanyRepository{companies: make(map[string]company.Company)}
	for _, c := range seed {
		r.companies[c.ID] = c
	}
	return r
}

func (r *CompanyRepository) GetByID(_ context.Context, id string) (company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.companies[id]
	if !ok {
		return company.Company{}, fmt.Errorf("company %s: %w", id, pgx.ErrNoRows)
	}
	return c, nil
}

func (r *CompanyRepository) Upsert(_ context.Context, c company.Company) (company.Company, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	if existing, ok := r.companies[c.ID]; ok {
		c.CreatedAt = existing.CreatedAt
	} else {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	c.Locations = slices.Clone(c.Locations)
	r.companies[c.ID] = c
	return c, nil
}

// ========================================
// KIOSKS
// ========================================

type KioskRepository struct {
	mu     sync.Mutex
	kiosks map[string]kiosk.Kiosk
}

func NewKioskRepository(seed ...kiosk.Kiosk) *KioskRepository {
	r := &KioskRepository{kiosks: make(map[string]kiosk.Kiosk)}
	for _, k := range seed {
		r.kiosks[k.ID] = k
	}
	return r
}

func (r *KioskRepository) GetByID(_ context.Context, id string) (kiosk.Kiosk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, ok := r.kiosks[id]
	if !ok {
		return kiosk.Kiosk{}, fmt.Errorf("kiosk %s: %w", id, pgx.ErrNoRows)
	}
	return k, nil
}

func (r *KioskRepository) list(companyID string, activeOnly bool) []kiosk.Kiosk {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []kiosk.Kiosk
	for _, k := range r.kiosks {
		if k.CompanyID == companyID && (!activeOnly || k.IsActive) {
			out = append(out, k)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (r *KioskRepository) ListByCompany(_ context.Context, companyID string) ([]kiosk.Kiosk, error) {
	return r.list(companyID, false), nil
}

func (r *KioskRepository) ListActiveByCompany(_ context.Context, companyID string) ([]kiosk.Kiosk, error) {
	return r.list(companyID, true), nil
}

func (r *KioskRepository) Create(_ context.Context, k kiosk.Kiosk) (kiosk.Kiosk, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.kiosks {
		if existing.CompanyID == k.CompanyID && existing.Name == k.Name {
			return kiosk.Kiosk{}, kiosk.ErrKioskNameConflict
		}
	}
	if k.ID == "" {
		k.ID = uuid.NewString()
	}
	k.CreatedAt = time.Now()
	k.UpdatedAt = k.CreatedAt
	r.kiosks[k.ID] = k
	return k, nil
}

func (r *KioskRepository) Update(_ context.Context, k kiosk.Kiosk) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.kiosks[k.ID]; !ok {
		return fmt.Errorf("kiosk %s: %w", k.ID, pgx.ErrNoRows)
	}
	k.UpdatedAt = time.Now()
	r.kiosks[k.ID] = k
	return nil
}

func (r *KioskRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.kiosks[id]; !ok {
		return fmt.Errorf("kiosk %s: %w", id, pgx.ErrNoRows)
	}
	delete(r.kiosks, id)
	return nil
}

// ========================================
// TIME ENTRIES
// ========================================

type TimeEntryRepository struct {
	mu      sync.Mutex
	entries []timeentry.TimeEntry
}

func NewTimeEntryRepository(seed ...timeentry.TimeEntry) *TimeEntryRepository {
	r := &TimeEntryRepository{}
	for _, e := range seed {
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		r.entries = append(r.entries, e)
	}
	return r
}

// All returns a copy of every stored entry in insertion order.
func (r *TimeEntryRepository) All() []timeentry.TimeEntry {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.entries)
}

func (r *TimeEntryRepository) Create(_ context.Context, e timeentry.TimeEntry) (timeentry.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.CreatedAt = time.Now()
	e.UpdatedAt = e.CreatedAt
	r.entries = append(r.entries, e)
	return e, nil
}

func (r *TimeEntryRepository) GetByID(_ context.Context, id string, companyID string) (timeentry.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.entries {
		if e.ID == id && e.CompanyID == companyID {
			return e, nil
		}
	}
	return timeentry.TimeEntry{}, fmt.Errorf("time entry %s: %w", id, pgx.ErrNoRows)
}

func (r *TimeEntryRepository) Update(_ context.Context, updated timeentry.TimeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.ID == updated.ID && e.CompanyID == updated.CompanyID {
			e.Timestamp = updated.Timestamp
			e.Type = updated.Type
			e.IsEdited = updated.IsEdited
			e.EditReason = updated.EditReason
			e.OriginalTimestamp = updated.OriginalTimestamp
			e.UpdatedAt = time.Now()
			r.entries[i] = e
			return nil
		}
	}
	return fmt.Errorf("time entry %s: %w", updated.ID, pgx.ErrNoRows)
}

func (r *TimeEntryRepository) Review(_ context.Context, reviewed timeentry.TimeEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.ID == reviewed.ID && e.CompanyID == reviewed.CompanyID {
			if e.Status != timeentry.StatusPendingApproval {
				return timeentry.ErrEntryAlreadyProcessed
			}
			e.Status = reviewed.Status
			e.RejectionReason = reviewed.RejectionReason
			e.ReviewedBy = reviewed.ReviewedBy
			e.ReviewedAt = reviewed.ReviewedAt
			e.UpdatedAt = time.Now()
			r.entries[i] = e
			return nil
		}
	}
	return fmt.Errorf("time entry %s: %w", reviewed.ID, pgx.ErrNoRows)
}

func (r *TimeEntryRepository) LatestActive(_ context.Context, employeeID string) (timeentry.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var mine []timeentry.TimeEntry
	for _, e := range r.entries {
		if e.EmployeeID == employeeID {
			mine = append(mine, e)
		}
	}
	latest, ok := timeentry.LatestActive(mine)
	if !ok {
		return timeentry.TimeEntry{}, pgx.ErrNoRows
	}
	return latest, nil
}

func (r *TimeEntryRepository) ListByEmployee(_ context.Context, employeeID string, companyID string, from, to time.Time) ([]timeentry.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []timeentry.TimeEntry
	for _, e := range r.entries {
		if e.EmployeeID != employeeID || e.CompanyID != companyID {
			continue
		}
		if e.Timestamp.Before(from) || !e.Timestamp.Before(to) {
			continue
		}
		out = append(out, e)
	}
	sortByTimestamp(out)
	return out, nil
}

func (r *TimeEntryRepository) ListPending(_ context.Context, companyID string) ([]timeentry.TimeEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []timeentry.TimeEntry
	for _, e := range r.entries {
		if e.CompanyID == companyID && e.Status == timeentry.StatusPendingApproval {
			out = append(out, e)
		}
	}
	sortByTimestamp(out)
	return out, nil
}

func (r *TimeEntryRepository) DeleteByEmployee(_ context.Context, employeeID string, companyID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = slices.DeleteFunc(r.entries, func(e timeentry.TimeEntry) bool {
		return e.EmployeeID == employeeID && e.CompanyID == companyID
	})
	return nil
}

func sortByTimestamp(entries []timeentry.TimeEntry) {
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Timestamp.Before(entries[j].Timestamp) })
}

// ========================================
// IDEMPOTENCY KEYS
// ========================================

type IdempotencyRepository struct {
	mu      sync.Mutex
	records map[string]timeentry.IdempotencyRecord
}

func NewIdempotencyRepository() *IdempotencyRepository {
	return &IdempotencyRepository{records: make(map[string]timeentry.IdempotencyRecord)}
}

func (r *IdempotencyRepository) Get(_ context.Context, employeeID, key string) (timeentry.IdempotencyRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[employeeID+"/"+key]
	if !ok {
		return timeentry.IdempotencyRecord{}, pgx.ErrNoRows
	}
	return rec, nil
}

func (r *IdempotencyRepository) Claim(_ context.Context, rec timeentry.IdempotencyRecord, expiredBefore time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := rec.EmployeeID + "/" + rec.Key
	if existing, ok := r.records[id]; ok && existing.CreatedAt.After(expiredBefore) {
		return false, nil
	}
	r.records[id] = rec
	return true, nil
}
