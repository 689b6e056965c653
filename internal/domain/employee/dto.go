package employee

import (
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/validator"
)

type CreateEmployeeRequest struct {
	DisplayName      string          `json:"display_name"`
	Email            string          `json:"email"`
	Status           Status          `json:"status,omitempty"`
	AllowedLocations []string        `json:"allowed_locations"`
	WorkHours        *WeeklySchedule `json:"work_hours,omitempty"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.DisplayName) {
		errs = append(errs, validator.ValidationError{Field: "display_name", Message: "display_name is required"})
	}
	if !validator.IsValidEmail(r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "email must be a valid email address"})
	}
	if r.Status != "" && r.Status != StatusActive && r.Status != StatusInactive {
		errs = append(errs, validator.ValidationError{Field: "status", Message: ErrInvalidStatus.Error()})
	}
	if err := r.WorkHours.Validate(); err != nil {
		errs = append(errs, validator.ValidationError{Field: "work_hours", Message: err.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdateEmployeeRequest replaces only the fields that are set.
type UpdateEmployeeRequest struct {
	ID               string          `json:"-"`
	DisplayName      *string         `json:"display_name,omitempty"`
	Email            *string         `json:"email,omitempty"`
	Status           *Status         `json:"status,omitempty"`
	AllowedLocations []string        `json:"allowed_locations,omitempty"`
	WorkHours        *WeeklySchedule `json:"work_hours,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.DisplayName != nil && validator.IsEmpty(*r.DisplayName) {
		errs = append(errs, validator.ValidationError{Field: "display_name", Message: "display_name cannot be empty"})
	}
	if r.Email != nil && !validator.IsValidEmail(*r.Email) {
		errs = append(errs, validator.ValidationError{Field: "email", Message: "email must be a valid email address"})
	}
	if r.Status != nil && *r.Status != StatusActive && *r.Status != StatusInactive {
		errs = append(errs, validator.ValidationError{Field: "status", Message: ErrInvalidStatus.Error()})
	}
	if err := r.WorkHours.Validate(); err != nil {
		errs = append(errs, validator.ValidationError{Field: "work_hours", Message: err.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type EmployeeResponse struct {
	ID               string          `json:"id"`
	CompanyID        string          `json:"company_id"`
	DisplayName      string          `json:"display_name"`
	Email            string          `json:"email"`
	Status           Status          `json:"status"`
	AllowedLocations []string        `json:"allowed_locations"`
	WorkHours        *WeeklySchedule `json:"work_hours,omitempty"`
	CreatedAt        string          `json:"created_at"`
	UpdatedAt        string          `json:"updated_at"`
}

func NewEmployeeResponse(e Employee) EmployeeResponse {
	allowed := e.AllowedLocations
	if allowed == nil {
		allowed = []string{}
	}
	return EmployeeResponse{
		ID:               e.ID,
		CompanyID:        e.CompanyID,
		DisplayName:      e.DisplayName,
		Email:            e.Email,
		Status:           e.Status,
		AllowedLocations: allowed,
		WorkHours:        e.WorkHours,
		CreatedAt:        e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        e.UpdatedAt.Format(time.RFC3339),
	}
}
