// Package offline keeps punches captured without connectivity and replays
// them, oldest first, once the server is reachable again.
package offline

import (
	"context"
	"errors"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/geo"
)

var (
	ErrDrainInProgress = errors.New("a queue drain is already running")
	ErrEntryNotQueued  = errors.New("entry is not in the queue")
)

// QueuedPunch is a punch attempt waiting to be replayed. LocalID doubles as
// the Idempotency-Key of every replay.
type QueuedPunch struct {
	LocalID       string           `json:"local_id"`
	Type          timeentry.Type   `json:"type"`
	Location      *geo.Coordinates `json:"location,omitempty"`
	KioskToken    string           `json:"kiosk_token,omitempty"`
	Justification string           `json:"justification,omitempty"`
	CapturedAt    time.Time        `json:"captured_at"`
	QueuedAt      time.Time        `json:"queued_at"`
	Attempts      int              `json:"attempts"`
	LastError     string           `json:"last_error,omitempty"`
}

// Request builds the replay body; the timestamp marks it as offline.
func (p QueuedPunch) Request() timeentry.PunchRequest {
	ts := p.CapturedAt.UTC().Format(time.RFC3339Nano)
	return timeentry.PunchRequest{
		Type:          p.Type,
		Location:      p.Location,
		KioskToken:    p.KioskToken,
		Justification: p.Justification,
		Timestamp:     &ts,
	}
}

// Store is a durable FIFO of queued punches.
type Store interface {
	// Enqueue appends p. A LocalID already in the queue is left untouched.
	Enqueue(ctx context.Context, p QueuedPunch) error
	// PeekAll returns every queued punch in insertion order without removing it.
	PeekAll(ctx context.Context) ([]QueuedPunch, error)
	// Remove deletes the punch with localID. Removing an absent id is a no-op.
	Remove(ctx context.Context, localID string) error
	// MarkFailed records a failed replay attempt without changing the order.
	MarkFailed(ctx context.Context, localID string, reason string) error
	Len(ctx context.Context) (int, error)
}

// ConfirmationLog remembers the last punch this device captured, for the
// client-side cooldown.
type ConfirmationLog interface {
	LastPunchAt(ctx context.Context) (time.Time, error)
	SetLastPunchAt(ctx context.Context, at time.Time) error
}
