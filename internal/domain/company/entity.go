package company

import (
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/geo"
)

type Company struct {
	ID        string
	Name      string
	TaxID     string
	Locations []Location
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location is a registered site used for geofencing. Order is preserved.
type Location struct {
	Name        string          `json:"name"`
	FullAddress string          `json:"full_address"`
	Coordinates geo.Coordinates `json:"coordinates"`
	IsMain      bool            `json:"is_main"`
}

// Main returns the location flagged as main, if any.
func (c Company) Main() (Location, bool) {
	for _, l := range c.Locations {
		if l.IsMain {
			return l, true
		}
	}
	return Location{}, false
}
