package kiosk

import (
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/validator"
)

type CreateKioskRequest struct {
	Name string `json:"name"`
}

func (r *CreateKioskRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: ErrInvalidKioskName.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateKioskRequest struct {
	ID       string  `json:"-"`
	Name     *string `json:"name,omitempty"`
	IsActive *bool   `json:"is_active,omitempty"`
}

func (r *UpdateKioskRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.Name != nil && validator.IsEmpty(*r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: ErrInvalidKioskName.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type KioskResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateKioskResponse is the only response that ever carries the token.
type CreateKioskResponse struct {
	KioskResponse
	Token string `json:"token"`
}

func NewKioskResponse(k Kiosk) KioskResponse {
	return KioskResponse{
		ID:        k.ID,
		Name:      k.Name,
		IsActive:  k.IsActive,
		CreatedAt: k.CreatedAt,
	}
}
