package punch

import (
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
)

// Cooldown enforces a minimum interval between consecutive live punches of
// one employee.
type Cooldown struct {
	Interval time.Duration
}

// Check returns a RateLimitError when now falls inside the window opened by
// the last punch.
func (c Cooldown) Check(last time.Time, now time.Time) error {
	if c.Interval <= 0 || last.IsZero() {
		return nil
	}
	if wait := c.Interval - now.Sub(last); wait > 0 {
		return &timeentry.RateLimitError{Wait: wait}
	}
	return nil
}
