package employee

import (
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/validator"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
)

// Permission tags recognised in AllowedLocations. Any other value names a
// company location.
const (
	TagExternal = "externo"
	TagKiosk    = "kiosk"
	TagMain     = "matriz"
	TagBranch   = "filial"
)

type Employee struct {
	ID               string
	CompanyID        string
	DisplayName      string
	Email            string
	Status           Status
	AllowedLocations []string
	WorkHours        *WeeklySchedule
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (e Employee) IsActive() bool {
	return e.Status == StatusActive
}

func (e Employee) HasTag(tag string) bool {
	return slices.Contains(e.AllowedLocations, tag)
}

// DaySchedule is the wall-clock plan of a single weekday. Times are "HH:MM".
type DaySchedule struct {
	IsWorkDay  bool   `json:"is_work_day"`
	Entry      string `json:"entry,omitempty"`
	BreakStart string `json:"break_start,omitempty"`
	BreakEnd   string `json:"break_end,omitempty"`
	Exit       string `json:"exit,omitempty"`
}

// Expected returns the scheduled net work time of the day.
func (d DaySchedule) Expected() time.Duration {
	if !d.IsWorkDay {
		return 0
	}
	entry, ok1 := clockOffset(d.Entry)
	exit, ok2 := clockOffset(d.Exit)
	if !ok1 || !ok2 || exit <= entry {
		return 0
	}
	total := exit - entry
	breakStart, ok1 := clockOffset(d.BreakStart)
	breakEnd, ok2 := clockOffset(d.BreakEnd)
	if ok1 && ok2 && breakEnd > breakStart {
		total -= breakEnd - breakStart
	}
	return total
}

// EntryOn returns the scheduled entry instant on the given local date.
func (d DaySchedule) EntryOn(date time.Time) (time.Time, bool) {
	if !d.IsWorkDay {
		return time.Time{}, false
	}
	offset, ok := clockOffset(d.Entry)
	if !ok {
		return time.Time{}, false
	}
	y, m, day := date.Date()
	hour, minute := int(offset/time.Hour), int(offset%time.Hour/time.Minute)
	return time.Date(y, m, day, hour, minute, 0, 0, date.Location()), true
}

func (d DaySchedule) validate() error {
	for name, v := range map[string]string{
		"entry": d.Entry, "break_start": d.BreakStart, "break_end": d.BreakEnd, "exit": d.Exit,
	} {
		if v == "" {
			continue
		}
		if !validator.IsValidClock(v) {
			return fmt.Errorf("%s must be HH:MM", name)
		}
	}
	if d.IsWorkDay && (d.Entry == "" || d.Exit == "") {
		return fmt.Errorf("work day requires entry and exit")
	}
	return nil
}

// WeeklySchedule holds one optional DaySchedule per weekday. Weekday is the
// legacy Monday-to-Friday block still present on older profiles; it only
// applies to weekdays without their own schedule.
type WeeklySchedule struct {
	Sunday    *DaySchedule `json:"sunday,omitempty"`
	Monday    *DaySchedule `json:"monday,omitempty"`
	Tuesday   *DaySchedule `json:"tuesday,omitempty"`
	Wednesday *DaySchedule `json:"wednesday,omitempty"`
	Thursday  *DaySchedule `json:"thursday,omitempty"`
	Friday    *DaySchedule `json:"friday,omitempty"`
	Saturday  *DaySchedule `json:"saturday,omitempty"`
	Weekday   *DaySchedule `json:"weekday,omitempty"`
}

// DayFor resolves the schedule of a weekday, or nil when nothing is planned.
func (w *WeeklySchedule) DayFor(day time.Weekday) *DaySchedule {
	if w == nil {
		return nil
	}
	var d *DaySchedule
	switch day {
	case time.Sunday:
		d = w.Sunday
	case time.Monday:
		d = w.Monday
	case time.Tuesday:
		d = w.Tuesday
	case time.Wednesday:
		d = w.Wednesday
	case time.Thursday:
		d = w.Thursday
	case time.Friday:
		d = w.Friday
	case time.Saturday:
		d = w.Saturday
	}
	if d != nil {
		return d
	}
	if w.Weekday != nil && day != time.Saturday && day != time.Sunday {
		legacy := *w.Weekday
		legacy.IsWorkDay = true
		return &legacy
	}
	return nil
}

// ExpectedOn returns the expected net work of the local date.
func (w *WeeklySchedule) ExpectedOn(date time.Time) time.Duration {
	d := w.DayFor(date.Weekday())
	if d == nil {
		return 0
	}
	return d.Expected()
}

func (w *WeeklySchedule) Validate() error {
	if w == nil {
		return nil
	}
	days := map[string]*DaySchedule{
		"sunday": w.Sunday, "monday": w.Monday, "tuesday": w.Tuesday, "wednesday": w.Wednesday,
		"thursday": w.Thursday, "friday": w.Friday, "saturday": w.Saturday, "weekday": w.Weekday,
	}
	for name, d := range days {
		if d == nil {
			continue
		}
		if err := d.validate(); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Scan lets pgx decode the jsonb column directly.
func (w *WeeklySchedule) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, w)
	case string:
		return json.Unmarshal([]byte(v), w)
	default:
		return fmt.Errorf("unsupported work hours type %T", src)
	}
}

// DefaultWeeklySchedule is assigned to new employees without a schedule.
func DefaultWeeklySchedule() *WeeklySchedule {
	workDay := func() *DaySchedule {
		return &DaySchedule{IsWorkDay: true, Entry: "08:00", BreakStart: "12:00", BreakEnd: "13:00", Exit: "18:00"}
	}
	return &WeeklySchedule{
		Sunday:    &DaySchedule{IsWorkDay: false},
		Monday:    workDay(),
		Tuesday:   workDay(),
		Wednesday: workDay(),
		Thursday:  workDay(),
		Friday:    workDay(),
		Saturday:  &DaySchedule{IsWorkDay: false},
	}
}

func clockOffset(s string) (time.Duration, bool) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, false
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, true
}
