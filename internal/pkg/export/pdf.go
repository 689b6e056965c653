// Package export renders time entry reports as downloadable documents.
package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
	"github.com/jung-kurt/gofpdf"
)

const inProgressLabel = "in progress"

var pdfColumns = []struct {
	title string
	width float64
}{
	{"Date", 24},
	{"Day", 22},
	{"Punches", 62},
	{"Worked", 16},
	{"Break", 16},
	{"Net", 16},
	{"Expected", 16},
	{"Balance", 18},
}

// PDF renders the report as an A4 document.
func PDF(r report.TimeEntriesReport) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(fmt.Sprintf("Time entries %s", r.EmployeeName), true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(40, 10, "Time Entries Report")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 11)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Employee: %s", r.EmployeeName)))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Period: %s to %s (%s)", r.StartDate, r.EndDate, r.Timezone))
	pdf.Ln(6)
	pdf.Cell(0, 7, fmt.Sprintf("Hours worked: %s   Net: %s   Balance: %s", r.HoursWorked, r.NetWorked, r.PeriodBalance))
	pdf.Ln(6)
	if r.InProgressDays > 0 {
		pdf.Cell(0, 7, fmt.Sprintf("Days in progress (not counted): %d", r.InProgressDays))
		pdf.Ln(6)
	}
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, col := range pdfColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for _, day := range r.Days {
		cells := []string{
			day.Date,
			day.Weekday,
			tr(punchSummary(day)),
			day.TotalWork,
			day.TotalBreak,
			day.NetWork,
			day.Expected,
			balanceLabel(day),
		}
		for i, col := range pdfColumns {
			pdf.CellFormat(col.width, 6, cells[i], "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	if len(r.Months) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Cell(0, 7, "Monthly balance")
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 9)
		for _, m := range r.Months {
			pdf.Cell(0, 6, fmt.Sprintf("%s: %s", m.Month, m.Balance))
			pdf.Ln(5)
		}
	}

	if len(r.MedicalCertificates) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 10)
		pdf.Cell(0, 7, "Medical certificates")
		pdf.Ln(7)
		pdf.SetFont("Helvetica", "", 9)
		for _, c := range r.MedicalCertificates {
			line := c.Date
			if c.Justification != nil {
				line += ": " + *c.Justification
			}
			pdf.MultiCell(0, 5, tr(line), "", "L", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// punchSummary lists the punches of a day as "HH:MM Type", marking rejected
// ones with a trailing "(rejected)".
func punchSummary(day report.DayReport) string {
	parts := make([]string, 0, len(day.Entries))
	for _, e := range day.Entries {
		label := fmt.Sprintf("%s %s", e.Timestamp.Format("15:04"), e.Type)
		if e.Status == timeentry.StatusRejected {
			label += " (rejected)"
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, ", ")
}

func balanceLabel(day report.DayReport) string {
	if day.Balance == nil {
		return inProgressLabel
	}
	return *day.Balance
}
