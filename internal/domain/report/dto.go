package report

import (
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/validator"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
	FormatXLSX Format = "xlsx"
)

// ========================================
// TIME ENTRIES REPORT
// ========================================

type TimeEntriesReportRequest struct {
	timeentry.ListEntriesFilter
	Format Format `json:"format"`
}

func (r *TimeEntriesReportRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if err := r.ListEntriesFilter.Validate(); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok {
			errs = append(errs, ve...)
		}
	}
	switch r.Format {
	case "":
		r.Format = FormatJSON
	case FormatJSON, FormatPDF, FormatXLSX:
	default:
		errs = append(errs, validator.ValidationError{Field: "format", Message: ErrInvalidFormat.Error()})
	}

	if len(errs) > 0 {
		return errs
	}

	start, _ := time.Parse("2006-01-02", r.StartDate)
	end, _ := time.Parse("2006-01-02", r.EndDate)
	if end.Sub(start) > 366*24*time.Hour {
		return validator.ValidationErrors{{Field: "end_date", Message: ErrRangeTooLarge.Error()}}
	}
	return nil
}

type TimeEntriesReport struct {
	EmployeeID    string `json:"employee_id"`
	EmployeeName  string `json:"employee_name"`
	StartDate     string `json:"start_date"`
	EndDate       string `json:"end_date"`
	Timezone      string `json:"timezone"`
	GeneratedAt   string `json:"generated_at"`
	HoursWorked   string `json:"hours_worked"`
	NetWorked     string `json:"net_worked"`
	PeriodBalance string `json:"period_balance"`

	InProgressDays      int                        `json:"in_progress_days"`
	Days                []DayReport                `json:"days"`
	Months              []MonthReport              `json:"months"`
	MedicalCertificates []MedicalCertificateReport `json:"medical_certificates"`
}

type DayReport struct {
	Date       string                        `json:"date"`
	Weekday    string                        `json:"weekday"`
	TotalWork  string                        `json:"total_work"`
	TotalBreak string                        `json:"total_break"`
	NetWork    string                        `json:"net_work"`
	Expected   string                        `json:"expected"`
	Balance    *string                       `json:"balance"`
	InProgress bool                          `json:"in_progress"`
	Excused    bool                          `json:"excused"`
	Entries    []timeentry.TimeEntryResponse `json:"entries"`
}

type MonthReport struct {
	Month   string `json:"month"`
	Balance string `json:"balance"`
}

type MedicalCertificateReport struct {
	Date          string  `json:"date"`
	Justification *string `json:"justification,omitempty"`
}

// NewTimeEntriesReport renders a computed period in loc.
func NewTimeEntriesReport(employeeID, employeeName string, filter timeentry.ListEntriesFilter, summary PeriodSummary, loc *time.Location, generatedAt time.Time) TimeEntriesReport {
	out := TimeEntriesReport{
		EmployeeID:          employeeID,
		EmployeeName:        employeeName,
		StartDate:           filter.StartDate,
		EndDate:             filter.EndDate,
		Timezone:            loc.String(),
		GeneratedAt:         generatedAt.In(loc).Format(time.RFC3339),
		HoursWorked:         FormatDuration(summary.HoursWorked),
		NetWorked:           FormatDuration(summary.NetWorked),
		PeriodBalance:       FormatBalance(summary.Balance),
		InProgressDays:      summary.InProgressDays,
		Days:                make([]DayReport, 0, len(summary.Days)),
		Months:              make([]MonthReport, 0, len(summary.Months)),
		MedicalCertificates: []MedicalCertificateReport{},
	}

	for _, d := range summary.Days {
		day := DayReport{
			Date:       d.Date.Format("2006-01-02"),
			Weekday:    d.Date.Weekday().String(),
			TotalWork:  FormatDuration(d.TotalWork),
			TotalBreak: FormatDuration(d.TotalBreak),
			NetWork:    FormatBalance(d.NetWork()),
			Expected:   FormatDuration(d.Expected),
			Excused:    d.Excused(),
			Entries:    timeentry.NewTimeEntryResponses(localEntries(d.Entries, loc)),
		}
		if balance, ok := d.Balance(); ok {
			formatted := FormatBalance(balance)
			day.Balance = &formatted
		} else {
			day.InProgress = true
		}
		out.Days = append(out.Days, day)

		for _, c := range d.Certificates {
			out.MedicalCertificates = append(out.MedicalCertificates, MedicalCertificateReport{
				Date:          day.Date,
				Justification: c.Justification,
			})
		}
	}
	for _, m := range summary.Months {
		out.Months = append(out.Months, MonthReport{
			Month:   m.Month.Format("2006-01"),
			Balance: FormatBalance(m.Balance),
		})
	}
	return out
}

func localEntries(entries []timeentry.TimeEntry, loc *time.Location) []timeentry.TimeEntry {
	out := make([]timeentry.TimeEntry, len(entries))
	for i, e := range entries {
		e.Timestamp = e.Timestamp.In(loc)
		out[i] = e
	}
	return out
}

// File is a rendered binary report.
type File struct {
	Name        string
	ContentType string
	Content     []byte
}
