package offline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/geo"
	"github.com/google/uuid"
)

// Locator acquires the device position.
type Locator interface {
	Locate(ctx context.Context) (*geo.Coordinates, error)
}

// FixedLocator always reports the same point; nil means no position.
type FixedLocator struct {
	Point *geo.Coordinates
}

func (l FixedLocator) Locate(context.Context) (*geo.Coordinates, error) {
	return l.Point, nil
}

type Attempt struct {
	Type          timeentry.Type
	KioskToken    string
	Justification string
}

type Outcome struct {
	Queued  bool
	LocalID string
	Message string
	Entry   *timeentry.TimeEntryResponse
}

// Puncher is the live punch path of the device.
type Puncher struct {
	submitter       Submitter
	store           Store
	log             ConfirmationLog
	locator         Locator
	cooldown        time.Duration
	locationTimeout time.Duration
	now             func() time.Time
}

func NewPuncher(submitter Submitter, store Store, log ConfirmationLog, locator Locator, cooldown, locationTimeout time.Duration) *Puncher {
	return &Puncher{
		submitter:       submitter,
		store:           store,
		log:             log,
		locator:         locator,
		cooldown:        cooldown,
		locationTimeout: locationTimeout,
		now:             time.Now,
	}
}

// Punch submits an attempt. On transport failure or any answer the drainer
// would retry (see APIError.Permanent) the attempt is queued with its
// capture time and reported as saved locally. Throttling is returned as a
// RateLimitError instead, since a queued replay skips the server cooldown.
// A late clock-in without justification returns
// timeentry.ErrJustificationRequired so the caller can prompt and retry.
func (p *Puncher) Punch(ctx context.Context, a Attempt) (Outcome, error) {
	now := p.now()

	last, err := p.log.LastPunchAt(ctx)
	if err != nil {
		return Outcome{}, fmt.Errorf("failed to read last punch: %w", err)
	}
	if !last.IsZero() && now.Sub(last) < p.cooldown {
		return Outcome{}, &timeentry.RateLimitError{Wait: p.cooldown - now.Sub(last)}
	}

	location := p.locate(ctx)
	localID := uuid.NewString()
	req := timeentry.PunchRequest{
		Type:          a.Type,
		Location:      location,
		KioskToken:    a.KioskToken,
		Justification: a.Justification,
	}

	resp, message, err := p.submitter.Submit(ctx, req, localID)
	if err == nil {
		if err := p.log.SetLastPunchAt(ctx, now); err != nil {
			slog.WarnContext(ctx, "Failed to record last punch", "error", err)
		}
		return Outcome{LocalID: localID, Message: message, Entry: &resp.Entry}, nil
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.RequiresJustification:
			return Outcome{}, fmt.Errorf("%w: %s", timeentry.ErrJustificationRequired, apiErr.Message)
		case apiErr.StatusCode == http.StatusTooManyRequests || apiErr.RetryAfter > 0:
			return Outcome{}, &timeentry.RateLimitError{Wait: apiErr.RetryAfter}
		case apiErr.Permanent():
			return Outcome{}, apiErr
		}
	}

	queued := QueuedPunch{
		LocalID:       localID,
		Type:          a.Type,
		Location:      location,
		KioskToken:    a.KioskToken,
		Justification: a.Justification,
		CapturedAt:    now,
		QueuedAt:      now,
	}
	if err := p.store.Enqueue(ctx, queued); err != nil {
		return Outcome{}, fmt.Errorf("failed to queue punch: %w", err)
	}
	if err := p.log.SetLastPunchAt(ctx, now); err != nil {
		slog.WarnContext(ctx, "Failed to record last punch", "error", err)
	}
	slog.InfoContext(ctx, "Punch queued", "local_id", localID, "type", a.Type, "error", err)

	return Outcome{
		Queued:  true,
		LocalID: localID,
		Message: "No connection. Punch saved locally and will be sent automatically.",
	}, nil
}

// locate returns nil when the position is not available in time.
func (p *Puncher) locate(ctx context.Context) *geo.Coordinates {
	if p.locator == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, p.locationTimeout)
	defer cancel()

	point, err := p.locator.Locate(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Location unavailable, punching without it", "error", err)
		return nil
	}
	return point
}
