package export

import (
	"fmt"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/report"
	"github.com/xuri/excelize/v2"
)

const (
	daysSheet    = "Days"
	entriesSheet = "Entries"
	summarySheet = "Summary"
)

// XLSX renders the report as a workbook with a summary, one row per day and
// one row per punch.
func XLSX(r report.TimeEntriesReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	for _, name := range []string{daysSheet, entriesSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6E6E6"}, Pattern: 1},
	})
	if err != nil {
		return nil, err
	}

	summary := [][]interface{}{
		{"Employee", r.EmployeeName},
		{"Employee ID", r.EmployeeID},
		{"Period", fmt.Sprintf("%s to %s", r.StartDate, r.EndDate)},
		{"Timezone", r.Timezone},
		{"Hours worked", r.HoursWorked},
		{"Net worked", r.NetWorked},
		{"Period balance", r.PeriodBalance},
		{"Days in progress", r.InProgressDays},
		{"Generated at", r.GeneratedAt},
	}
	for _, m := range r.Months {
		summary = append(summary, []interface{}{"Balance " + m.Month, m.Balance})
	}
	for _, c := range r.MedicalCertificates {
		note := ""
		if c.Justification != nil {
			note = *c.Justification
		}
		summary = append(summary, []interface{}{"Medical certificate " + c.Date, note})
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(summarySheet, "A1", fmt.Sprintf("A%d", len(summary)), header); err != nil {
		return nil, err
	}

	days := [][]interface{}{{"Date", "Weekday", "Worked", "Break", "Net", "Expected", "Balance", "Excused"}}
	for _, d := range r.Days {
		days = append(days, []interface{}{d.Date, d.Weekday, d.TotalWork, d.TotalBreak, d.NetWork, d.Expected, balanceLabel(d), d.Excused})
	}
	if err := writeRows(f, daysSheet, days); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(daysSheet, "A1", "H1", header); err != nil {
		return nil, err
	}

	entries := [][]interface{}{{"Date", "Time", "Type", "Location", "Status", "Justification", "Rejection reason", "Edited", "Offline", "Kiosk"}}
	for _, d := range r.Days {
		for _, e := range d.Entries {
			entries = append(entries, []interface{}{
				d.Date,
				e.Timestamp.Format("15:04:05"),
				string(e.Type),
				e.LocationName,
				string(e.Status),
				deref(e.Justification),
				deref(e.RejectionReason),
				e.IsEdited,
				e.IsOffline,
				e.IsKiosk,
			})
		}
	}
	if err := writeRows(f, entriesSheet, entries); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(entriesSheet, "A1", "J1", header); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
