package company

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/geo"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/validator"
)

type CompanyResponse struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	TaxID     string     `json:"tax_id"`
	Locations []Location `json:"locations"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func NewCompanyResponse(c Company) CompanyResponse {
	locations := c.Locations
	if locations == nil {
		locations = []Location{}
	}
	return CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		TaxID:     c.TaxID,
		Locations: locations,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// UpsertCompanyRequest replaces the whole profile of the caller's company.
type UpsertCompanyRequest struct {
	Name      string     `json:"name"`
	TaxID     string     `json:"tax_id"`
	Locations []Location `json:"locations"`
}

func (r *UpsertCompanyRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{Field: "name", Message: ErrInvalidCompanyName.Error()})
	}

	seen := make(map[string]bool, len(r.Locations))
	mains := 0
	for i, l := range r.Locations {
		field := fmt.Sprintf("locations[%d]", i)
		name := strings.TrimSpace(l.Name)
		switch {
		case name == "":
			errs = append(errs, validator.ValidationError{Field: field + ".name", Message: "name is required"})
		case seen[name]:
			errs = append(errs, validator.ValidationError{Field: field + ".name", Message: ErrDuplicateLocation.Error()})
		}
		seen[name] = true
		if l.Coordinates == (geo.Coordinates{}) || !l.Coordinates.Valid() {
			errs = append(errs, validator.ValidationError{Field: field + ".coordinates", Message: ErrMissingCoordinates.Error()})
		}
		if l.IsMain {
			mains++
		}
	}
	if mains > 1 {
		errs = append(errs, validator.ValidationError{Field: "locations", Message: ErrMultipleMainLocation.Error()})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
