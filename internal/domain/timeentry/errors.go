package timeentry

import (
	"errors"
	"fmt"
	"math"
	"time"
)

var (
	ErrInvalidPunchType       = errors.New("type must be ClockIn, BreakStart, BreakEnd or ClockOut")
	ErrKioskPermissionDenied  = errors.New("you do not have permission to punch at a kiosk")
	ErrKioskUnauthorized      = errors.New("invalid or inactive kiosk token")
	ErrNoMatchingLocation     = errors.New("no company locations match your permission")
	ErrLocationUnavailable    = errors.New("cannot validate location: no coordinates, kiosk token or external permission")
	ErrJustificationRequired  = errors.New("late clock-in requires a justification")
	ErrEntryNotFound          = errors.New("time entry not found")
	ErrEntryAlreadyProcessed  = errors.New("time entry has already been approved or rejected")
	ErrIdempotencyConflict    = errors.New("idempotency key was already used for a different punch")
	ErrCertificateNotEditable = errors.New("medical certificates cannot be edited")
	ErrFutureTimestamp        = errors.New("timestamp cannot be in the future")
)

// RateLimitError rejects a live punch submitted inside the cooldown window.
type RateLimitError struct {
	Wait time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("please wait %d seconds before punching again", e.Seconds())
}

// Seconds is the remaining wait rounded up.
func (e *RateLimitError) Seconds() int {
	return int(math.Ceil(e.Wait.Seconds()))
}

// OutsideRadiusError reports the closest candidate location so the user can
// move and retry.
type OutsideRadiusError struct {
	ClosestName   string
	ClosestMeters float64
	RadiusMeters  float64
}

func (e *OutsideRadiusError) Error() string {
	return fmt.Sprintf("you are %.0f m from %s, outside the allowed %.0f m radius",
		e.ClosestMeters, e.ClosestName, e.RadiusMeters)
}
