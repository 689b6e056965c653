package timeentry

import (
	"context"
	"time"
)

// TimeEntryRepository defines data access for punches. Reads are scoped to a
// company to prevent cross-company access.
type TimeEntryRepository interface {
	Create(ctx context.Context, entry TimeEntry) (TimeEntry, error)
	GetByID(ctx context.Context, id string, companyID string) (TimeEntry, error)
	// Update writes the editable fields: timestamp, type and the edit audit.
	Update(ctx context.Context, entry TimeEntry) error

	// Review writes the review outcome only while the stored entry is still
	// pending approval, and returns ErrEntryAlreadyProcessed otherwise.
	Review(ctx context.Context, entry TimeEntry) error

	// LatestActive returns the newest non-rejected punch of the employee.
	LatestActive(ctx context.Context, employeeID string) (TimeEntry, error)

	// ListByEmployee returns entries with from <= timestamp < to, oldest first.
	ListByEmployee(ctx context.Context, employeeID string, companyID string, from, to time.Time) ([]TimeEntry, error)

	// ListPending returns the company's pending entries, oldest first.
	ListPending(ctx context.Context, companyID string) ([]TimeEntry, error)

	DeleteByEmployee(ctx context.Context, employeeID string, companyID string) error
}

// IdempotencyRecord binds a client-generated key to the entry it created.
type IdempotencyRecord struct {
	EmployeeID  string
	Key         string
	RequestHash string
	EntryID     string
	CreatedAt   time.Time
}

type IdempotencyRepository interface {
	Get(ctx context.Context, employeeID, key string) (IdempotencyRecord, error)

	// Claim stores the record unless a record with the same key created
	// after expiredBefore exists, and reports whether it did. A record
	// created at or before expiredBefore is replaced.
	Claim(ctx context.Context, record IdempotencyRecord, expiredBefore time.Time) (bool, error)
}
