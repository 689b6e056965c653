package punch

import (
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
)

// Provenance is how a punch reached the server.
type Provenance int

const (
	ProvenanceInteractive Provenance = iota
	ProvenanceOfflineReplay
	ProvenanceKiosk
)

func (p Provenance) String() string {
	switch p {
	case ProvenanceOfflineReplay:
		return "offline_replay"
	case ProvenanceKiosk:
		return "kiosk"
	default:
		return "interactive"
	}
}

// ProvenanceOf ranks an offline replay above kiosk validation, since a
// replay has no live user to prompt.
func ProvenanceOf(replay bool, via Via) Provenance {
	switch {
	case replay:
		return ProvenanceOfflineReplay
	case via == ViaKiosk:
		return ProvenanceKiosk
	default:
		return ProvenanceInteractive
	}
}

const offlineLateJustification = "Offline punch synchronized late. Requires manager validation."

// Decision is the outcome of the lateness state machine.
type Decision struct {
	Status          timeentry.Status
	Justification   *string
	LatenessMinutes int
	Late            bool
	Message         string
}

// LatenessPolicy compares clock-ins against the employee's schedule in a
// pinned timezone.
type LatenessPolicy struct {
	Tolerance time.Duration
	Location  *time.Location
}

// Decide returns the status of a punch. ErrJustificationRequired is returned
// for a late interactive clock-in that carries no justification.
func (p LatenessPolicy) Decide(typ timeentry.Type, schedule *employee.WeeklySchedule, punchTime time.Time, prov Provenance, justification string) (Decision, error) {
	decision := Decision{
		Status:        timeentry.StatusApproved,
		Justification: timeentry.Trimmed(justification),
	}

	if typ != timeentry.TypeClockIn {
		return decision, nil
	}
	local := punchTime.In(p.Location)
	day := schedule.DayFor(local.Weekday())
	if day == nil {
		return decision, nil
	}
	scheduled, ok := day.EntryOn(local)
	if !ok {
		return decision, nil
	}

	decision.LatenessMinutes = int(math.Floor(local.Sub(scheduled).Minutes()))
	if decision.LatenessMinutes <= int(p.Tolerance/time.Minute) {
		return decision, nil
	}
	decision.Late = true

	switch prov {
	case ProvenanceOfflineReplay:
		decision.Status = timeentry.StatusPendingApproval
		if decision.Justification == nil {
			decision.Justification = timeentry.Trimmed(offlineLateJustification)
		}
		decision.Message = "Offline punch synchronized, awaiting approval."
	case ProvenanceKiosk:
		decision.Justification = timeentry.Trimmed(fmt.Sprintf("Kiosk punch %d min late.", decision.LatenessMinutes))
		decision.Message = "Kiosk punch recorded late."
	default:
		if decision.Justification == nil {
			return Decision{}, timeentry.ErrJustificationRequired
		}
		decision.Status = timeentry.StatusPendingApproval
		decision.Message = "Clock-in recorded, awaiting manager approval due to lateness."
	}
	return decision, nil
}
