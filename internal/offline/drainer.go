package offline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
)

// Submitter sends one punch to the server.
type Submitter interface {
	Submit(ctx context.Context, req timeentry.PunchRequest, idempotencyKey string) (timeentry.PunchResponse, string, error)
}

// Discarded is a queued punch the server refused for good.
type Discarded struct {
	Punch  QueuedPunch
	Reason string
}

type DrainResult struct {
	Synced    int
	Discarded []Discarded
	Remaining int
}

// Drainer replays the queue serially, one punch fully answered before the
// next, so a later punch never reaches the server before an earlier one.
type Drainer struct {
	store     Store
	submitter Submitter
	running   atomic.Bool
}

func NewDrainer(store Store, submitter Submitter) *Drainer {
	return &Drainer{store: store, submitter: submitter}
}

// Drain replays every queued punch. A second call while one is running
// returns ErrDrainInProgress without touching the queue. When a replay fails
// for a reason other than a permanent rejection the drain stops, keeps that
// punch and everything after it, and returns the cause.
func (d *Drainer) Drain(ctx context.Context) (DrainResult, error) {
	if !d.running.CompareAndSwap(false, true) {
		return DrainResult{}, ErrDrainInProgress
	}
	defer d.running.Store(false)

	var result DrainResult
	queued, err := d.store.PeekAll(ctx)
	if err != nil {
		return result, err
	}

	for i, p := range queued {
		_, _, err := d.submitter.Submit(ctx, p.Request(), p.LocalID)
		if err == nil {
			if err := d.store.Remove(ctx, p.LocalID); err != nil {
				return d.finish(ctx, result), fmt.Errorf("failed to remove synced punch: %w", err)
			}
			result.Synced++
			slog.InfoContext(ctx, "Queued punch synced", "local_id", p.LocalID, "type", p.Type)
			continue
		}

		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Permanent() {
			if err := d.store.Remove(ctx, p.LocalID); err != nil {
				return d.finish(ctx, result), fmt.Errorf("failed to remove rejected punch: %w", err)
			}
			result.Discarded = append(result.Discarded, Discarded{Punch: p, Reason: apiErr.Message})
			slog.WarnContext(ctx, "Queued punch discarded", "local_id", p.LocalID, "status", apiErr.StatusCode, "reason", apiErr.Message)
			continue
		}

		if markErr := d.store.MarkFailed(ctx, p.LocalID, err.Error()); markErr != nil {
			slog.WarnContext(ctx, "Failed to record replay attempt", "local_id", p.LocalID, "error", markErr)
		}
		slog.InfoContext(ctx, "Queued punch retained", "local_id", p.LocalID, "remaining", len(queued)-i, "error", err)
		return d.finish(ctx, result), fmt.Errorf("replay of %s stopped: %w", p.LocalID, err)
	}

	return d.finish(ctx, result), nil
}

func (d *Drainer) finish(ctx context.Context, result DrainResult) DrainResult {
	if n, err := d.store.Len(ctx); err == nil {
		result.Remaining = n
	}
	return result
}
