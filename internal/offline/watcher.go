package offline

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Prober checks whether the server is reachable.
type Prober interface {
	Heartbeat(ctx context.Context) error
}

// Watcher probes the server and drains the queue whenever it comes back
// online.
type Watcher struct {
	prober   Prober
	drainer  *Drainer
	interval time.Duration
	online   bool
}

func NewWatcher(prober Prober, drainer *Drainer, interval time.Duration) *Watcher {
	return &Watcher{prober: prober, drainer: drainer, interval: interval}
}

// Run probes every interval until ctx is done.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.Probe(ctx)
		}
	}
}

// Probe runs one check and reports whether the server answered. An
// offline to online transition triggers a drain.
func (w *Watcher) Probe(ctx context.Context) bool {
	err := w.prober.Heartbeat(ctx)
	wasOnline := w.online
	w.online = err == nil

	switch {
	case !w.online && wasOnline:
		slog.InfoContext(ctx, "Server unreachable, punches will be queued", "error", err)
	case w.online && !wasOnline:
		slog.InfoContext(ctx, "Server reachable, draining queue")
		result, err := w.drainer.Drain(ctx)
		if err != nil && !errors.Is(err, ErrDrainInProgress) {
			slog.WarnContext(ctx, "Queue drain stopped", "synced", result.Synced, "remaining", result.Remaining, "error", err)
		}
	}
	return w.online
}
