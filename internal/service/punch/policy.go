package punch

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/company"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/kiosk"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/geo"
	"golang.org/x/crypto/bcrypt"
)

// Via names the rule that accepted a punch.
type Via string

const (
	ViaExternal Via = "external"
	ViaKiosk    Via = "kiosk"
	ViaGeofence Via = "geofence"
)

// Input is everything the location rules may look at.
type Input struct {
	Employee   employee.Employee
	Company    company.Company
	Location   *geo.Coordinates
	KioskToken string
}

// Acceptance is a fully accepted punch location.
type Acceptance struct {
	Via          Via
	LocationName string
	Coordinates  *geo.Coordinates
}

// Rule is one strategy of the validation chain. The first rule that applies
// decides: it either accepts or returns the rejection.
type Rule interface {
	Name() string
	Applies(in Input) bool
	Evaluate(ctx context.Context, in Input) (Acceptance, error)
}

// Policy evaluates its rules in declared order.
type Policy struct {
	rules []Rule
}

func NewPolicy(rules ...Rule) *Policy {
	return &Policy{rules: rules}
}

// DefaultPolicy is external, then kiosk, then geofence, then rejection.
func DefaultPolicy(kiosks kiosk.KioskRepository, radiusMeters float64) *Policy {
	return NewPolicy(
		ExternalRule{},
		KioskRule{Kiosks: kiosks},
		GeofenceRule{RadiusMeters: radiusMeters},
		FallbackRule{},
	)
}

// Rules returns the rule names in evaluation order.
func (p *Policy) Rules() []string {
	names := make([]string, 0, len(p.rules))
	for _, r := range p.rules {
		names = append(names, r.Name())
	}
	return names
}

func (p *Policy) Validate(ctx context.Context, in Input) (Acceptance, error) {
	for _, rule := range p.rules {
		if rule.Applies(in) {
			return rule.Evaluate(ctx, in)
		}
	}
	return Acceptance{}, timeentry.ErrLocationUnavailable
}

// ExternalRule accepts anything for employees allowed to work off-site. The
// coordinate is kept when supplied but never checked.
type ExternalRule struct{}

func (ExternalRule) Name() string { return "external" }

func (ExternalRule) Applies(in Input) bool {
	return in.Employee.HasTag(employee.TagExternal)
}

func (ExternalRule) Evaluate(_ context.Context, in Input) (Acceptance, error) {
	return Acceptance{
		Via:          ViaExternal,
		LocationName: timeentry.LocationExternal,
		Coordinates:  in.Location,
	}, nil
}

// KioskRule authenticates a shared terminal by its secret token.
type KioskRule struct {
	Kiosks kiosk.KioskRepository
}

func (KioskRule) Name() string { return "kiosk" }

func (KioskRule) Applies(in Input) bool {
	return in.KioskToken != ""
}

func (r KioskRule) Evaluate(ctx context.Context, in Input) (Acceptance, error) {
	if !in.Employee.HasTag(employee.TagKiosk) {
		return Acceptance{}, timeentry.ErrKioskPermissionDenied
	}

	kiosks, err := r.Kiosks.ListActiveByCompany(ctx, in.Employee.CompanyID)
	if err != nil {
		return Acceptance{}, fmt.Errorf("failed to list active kiosks: %w", err)
	}
	for _, k := range kiosks {
		err := bcrypt.CompareHashAndPassword([]byte(k.TokenHash), []byte(in.KioskToken))
		if err == nil {
			return Acceptance{Via: ViaKiosk, LocationName: k.Name}, nil
		}
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return Acceptance{}, fmt.Errorf("failed to compare kiosk token: %w", err)
		}
	}
	return Acceptance{}, timeentry.ErrKioskUnauthorized
}

// GeofenceRule accepts a coordinate within RadiusMeters (inclusive) of a
// company location the employee may use.
type GeofenceRule struct {
	RadiusMeters float64
}

func (GeofenceRule) Name() string { return "geofence" }

func (GeofenceRule) Applies(in Input) bool {
	return in.Location != nil
}

func (r GeofenceRule) Evaluate(_ context.Context, in Input) (Acceptance, error) {
	candidates := permittedLocations(in.Employee, in.Company.Locations)
	if len(candidates) == 0 {
		return Acceptance{}, timeentry.ErrNoMatchingLocation
	}

	closest := &timeentry.OutsideRadiusError{ClosestMeters: math.Inf(1), RadiusMeters: r.RadiusMeters}
	for _, l := range candidates {
		distance := geo.Distance(in.Location, &l.Coordinates)
		if distance <= r.RadiusMeters {
			return Acceptance{Via: ViaGeofence, LocationName: l.Name, Coordinates: in.Location}, nil
		}
		if distance < closest.ClosestMeters {
			closest.ClosestMeters = distance
			closest.ClosestName = l.Name
		}
	}
	return Acceptance{}, closest
}

// permittedLocations keeps company locations named in the employee's tags.
// The legacy main/branch tags select the main location or every other one.
func permittedLocations(e employee.Employee, locations []company.Location) []company.Location {
	var out []company.Location
	for _, l := range locations {
		switch {
		case e.HasTag(l.Name):
		case l.IsMain && e.HasTag(employee.TagMain):
		case !l.IsMain && e.HasTag(employee.TagBranch):
		default:
			continue
		}
		out = append(out, l)
	}
	return out
}

// FallbackRule rejects punches that no other rule could place.
type FallbackRule struct{}

func (FallbackRule) Name() string { return "fallback" }

func (FallbackRule) Applies(Input) bool { return true }

func (FallbackRule) Evaluate(context.Context, Input) (Acceptance, error) {
	return Acceptance{}, timeentry.ErrLocationUnavailable
}
