package timeentry

import (
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/geo"
)

type Type string

const (
	TypeClockIn            Type = "ClockIn"
	TypeBreakStart         Type = "BreakStart"
	TypeBreakEnd           Type = "BreakEnd"
	TypeClockOut           Type = "ClockOut"
	TypeMedicalCertificate Type = "MedicalCertificate"
)

// IsPunch reports whether t is one of the four clock events employees submit.
func (t Type) IsPunch() bool {
	switch t {
	case TypeClockIn, TypeBreakStart, TypeBreakEnd, TypeClockOut:
		return true
	}
	return false
}

type Status string

const (
	StatusApproved        Status = "approved"
	StatusPendingApproval Status = "pending_approval"
	StatusRejected        Status = "rejected"
)

// Location labels used when no company location or kiosk resolves the punch.
const (
	LocationExternal           = "External"
	LocationMedicalCertificate = "Medical certificate"
)

type TimeEntry struct {
	ID                string
	CompanyID         string
	EmployeeID        string
	DisplayName       string
	Timestamp         time.Time
	Type              Type
	Location          *geo.Coordinates
	LocationName      string
	ValidatedIP       string
	Status            Status
	Justification     *string
	RejectionReason   *string
	ReviewedBy        *string
	ReviewedAt        *time.Time
	IsEdited          bool
	EditReason        *string
	OriginalTimestamp *time.Time
	IsOffline         bool
	IsKiosk           bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (e TimeEntry) IsRejected() bool {
	return e.Status == StatusRejected
}

type WorkStatus string

const (
	WorkStatusClockedOut WorkStatus = "CLOCKED_OUT"
	WorkStatusWorking    WorkStatus = "WORKING"
	WorkStatusOnBreak    WorkStatus = "ON_BREAK"
)

// LatestActive returns the most recent non-rejected punch. Input order does
// not matter; medical certificates are ignored.
func LatestActive(entries []TimeEntry) (TimeEntry, bool) {
	var (
		latest TimeEntry
		found  bool
	)
	for _, e := range entries {
		if e.IsRejected() || !e.Type.IsPunch() {
			continue
		}
		if !found || e.Timestamp.After(latest.Timestamp) {
			latest, found = e, true
		}
	}
	return latest, found
}

// DeriveStatus computes the current work status from an employee's history.
func DeriveStatus(entries []TimeEntry) WorkStatus {
	latest, ok := LatestActive(entries)
	if !ok {
		return WorkStatusClockedOut
	}
	switch latest.Type {
	case TypeClockIn, TypeBreakEnd:
		return WorkStatusWorking
	case TypeBreakStart:
		return WorkStatusOnBreak
	default:
		return WorkStatusClockedOut
	}
}
