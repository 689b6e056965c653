package timeentry

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/validator"
)

const maxJustificationLength = 500

// ========================================
// PUNCH
// ========================================

// PunchRequest is the body of POST /api/clock-in. Timestamp is only present
// on offline replays.
type PunchRequest struct {
	Type          Type             `json:"type"`
	Location      *geo.Coordinates `json:"location,omitempty"`
	KioskToken    string           `json:"kioskToken,omitempty"`
	Justification string           `json:"justification,omitempty"`
	Timestamp     *string          `json:"timestamp,omitempty"`

	IdempotencyKey string     `json:"-"`
	ClientIP       string     `json:"-"`
	CapturedAt     *time.Time `json:"-"`
}

func (r *PunchRequest) Validate() error {
	var errs validator.ValidationErrors

	if !r.Type.IsPunch() {
		errs = append(errs, validator.ValidationError{Field: "type", Message: ErrInvalidPunchType.Error()})
	}
	if r.Location != nil && !r.Location.Valid() {
		errs = append(errs, validator.ValidationError{Field: "location", Message: "lat must be within [-90, 90] and lon within [-180, 180]"})
	}
	if len(r.Justification) > maxJustificationLength {
		errs = append(errs, validator.ValidationError{Field: "justification", Message: "justification must not exceed 500 characters"})
	}
	if r.Timestamp != nil {
		if captured, ok := validator.IsValidDateTime(*r.Timestamp); ok {
			r.CapturedAt = &captured
		} else {
			errs = append(errs, validator.ValidationError{Field: "timestamp", Message: "timestamp must be an RFC3339 instant"})
		}
	}
	if len(r.IdempotencyKey) > 128 {
		errs = append(errs, validator.ValidationError{Field: "Idempotency-Key", Message: "idempotency key must not exceed 128 characters"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// IsReplay reports whether the punch is an offline replay carrying its own
// capture time.
func (r *PunchRequest) IsReplay() bool {
	return r.CapturedAt != nil
}

type PunchResponse struct {
	Entry    TimeEntryResponse `json:"entry"`
	Replayed bool              `json:"replayed"`
	Message  string            `json:"-"`
}

// ========================================
// READ MODELS
// ========================================

type TimeEntryResponse struct {
	ID                string           `json:"id"`
	EmployeeID        string           `json:"employee_id"`
	DisplayName       string           `json:"display_name"`
	Timestamp         time.Time        `json:"timestamp"`
	Type              Type             `json:"type"`
	Location          *geo.Coordinates `json:"location,omitempty"`
	LocationName      string           `json:"location_name"`
	ValidatedIP       string           `json:"validated_ip,omitempty"`
	Status            Status           `json:"status"`
	Justification     *string          `json:"justification,omitempty"`
	RejectionReason   *string          `json:"rejection_reason,omitempty"`
	IsEdited          bool             `json:"is_edited"`
	EditReason        *string          `json:"edit_reason,omitempty"`
	OriginalTimestamp *time.Time       `json:"original_timestamp,omitempty"`
	IsOffline         bool             `json:"is_offline"`
	IsKiosk           bool             `json:"is_kiosk"`
	IsMedical         bool             `json:"is_medical_certificate"`
}

func NewTimeEntryResponse(e TimeEntry) TimeEntryResponse {
	return TimeEntryResponse{
		ID:                e.ID,
		EmployeeID:        e.EmployeeID,
		DisplayName:       e.DisplayName,
		Timestamp:         e.Timestamp,
		Type:              e.Type,
		Location:          e.Location,
		LocationName:      e.LocationName,
		ValidatedIP:       e.ValidatedIP,
		Status:            e.Status,
		Justification:     e.Justification,
		RejectionReason:   e.RejectionReason,
		IsEdited:          e.IsEdited,
		EditReason:        e.EditReason,
		OriginalTimestamp: e.OriginalTimestamp,
		IsOffline:         e.IsOffline,
		IsKiosk:           e.IsKiosk,
		IsMedical:         e.Type == TypeMedicalCertificate,
	}
}

func NewTimeEntryResponses(entries []TimeEntry) []TimeEntryResponse {
	out := make([]TimeEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, NewTimeEntryResponse(e))
	}
	return out
}

type StatusResponse struct {
	Status    WorkStatus         `json:"status"`
	LastEntry *TimeEntryResponse `json:"last_entry,omitempty"`
}

// ListEntriesFilter selects one employee's entries between two local dates
// (inclusive, YYYY-MM-DD).
type ListEntriesFilter struct {
	EmployeeID string `json:"employee_id"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
}

func (f *ListEntriesFilter) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(f.StartDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "start_date must be YYYY-MM-DD"})
	}
	if _, ok := validator.IsValidDate(f.EndDate); !ok {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must be YYYY-MM-DD"})
	}
	if len(errs) == 0 && f.EndDate < f.StartDate {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "end_date must not be before start_date"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Range converts the filter to a half-open instant range in loc.
func (f ListEntriesFilter) Range(loc *time.Location) (time.Time, time.Time) {
	start, _ := time.ParseInLocation("2006-01-02", f.StartDate, loc)
	end, _ := time.ParseInLocation("2006-01-02", f.EndDate, loc)
	return start, end.AddDate(0, 0, 1)
}

// ========================================
// ADMIN ACTIONS
// ========================================

type ReviewEntryRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

func (r *ReviewEntryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// EditEntryRequest corrects a punch. Timestamp accepts either a local
// "YYYY-MM-DDTHH:MM" wall-clock value or an RFC3339 instant.
type EditEntryRequest struct {
	ID        string `json:"-"`
	Timestamp string `json:"timestamp"`
	Type      Type   `json:"type"`
	Reason    string `json:"reason"`
}

func (r *EditEntryRequest) Validate(loc *time.Location) error {
	var errs validator.ValidationErrors

	_, local := validator.IsValidLocalDateTime(r.Timestamp, loc)
	_, instant := validator.IsValidDateTime(r.Timestamp)
	if !local && !instant {
		errs = append(errs, validator.ValidationError{Field: "timestamp", Message: "timestamp must be YYYY-MM-DDTHH:MM or RFC3339"})
	}
	if !r.Type.IsPunch() {
		errs = append(errs, validator.ValidationError{Field: "type", Message: ErrInvalidPunchType.Error()})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ParseTimestamp resolves the edited instant, reading wall-clock values in loc.
func (r *EditEntryRequest) ParseTimestamp(loc *time.Location) (time.Time, error) {
	if t, ok := validator.IsValidLocalDateTime(r.Timestamp, loc); ok {
		return t, nil
	}
	if t, ok := validator.IsValidDateTime(r.Timestamp); ok {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", r.Timestamp)
}

type MedicalCertificateRequest struct {
	EmployeeID string `json:"employee_id"`
	Date       string `json:"date"`
	Reason     string `json:"reason"`
}

func (r *MedicalCertificateRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "date must be YYYY-MM-DD"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "reason is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Noon returns 12:00 local on the certificate date.
func (r *MedicalCertificateRequest) Noon(loc *time.Location) time.Time {
	d, _ := time.ParseInLocation("2006-01-02", r.Date, loc)
	return time.Date(d.Year(), d.Month(), d.Day(), 12, 0, 0, 0, loc)
}

// Trimmed returns s without surrounding space, or nil when blank.
func Trimmed(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
