package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleReport() report.TimeEntriesReport {
	loc := time.FixedZone("America/Fortaleza", -3*60*60)
	at := func(h, m int) time.Time { return time.Date(2024, 3, 4, h, m, 0, 0, loc) }
	balance := "+00:03"
	reason := "duplicate"
	note := "flu"

	return report.TimeEntriesReport{
		EmployeeID:    "emp-1",
		EmployeeName:  "João Silva",
		StartDate:     "2024-03-04",
		EndDate:       "2024-03-05",
		Timezone:      "America/Fortaleza",
		HoursWorked:   "09:03",
		NetWorked:     "08:03",
		PeriodBalance: "+00:03",
		Days: []report.DayReport{
			{
				Date: "2024-03-04", Weekday: "Monday",
				TotalWork: "09:03", TotalBreak: "01:00", NetWork: "+08:03", Expected: "08:00",
				Balance: &balance,
				Entries: []timeentry.TimeEntryResponse{
					{Timestamp: at(8, 2), Type: timeentry.TypeClockIn, LocationName: "Sede", Status: timeentry.StatusApproved},
					{Timestamp: at(8, 5), Type: timeentry.TypeClockIn, LocationName: "Sede", Status: timeentry.StatusRejected, RejectionReason: &reason},
					{Timestamp: at(17, 5), Type: timeentry.TypeClockOut, LocationName: "Sede", Status: timeentry.StatusApproved},
				},
			},
			{
				Date: "2024-03-05", Weekday: "Tuesday",
				TotalWork: "00:00", TotalBreak: "00:00", NetWork: "00:00", Expected: "08:00",
				InProgress: true,
			},
		},
		Months:              []report.MonthReport{{Month: "2024-03", Balance: "+00:03"}},
		MedicalCertificates: []report.MedicalCertificateReport{{Date: "2024-03-06", Justification: &note}},
	}
}

func TestPDF(t *testing.T) {
	out, err := PDF(sampleReport())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
}

func TestPunchSummary(t *testing.T) {
	day := sampleReport().Days[0]
	assert.Equal(t, "08:02 ClockIn, 08:05 ClockIn (rejected), 17:05 ClockOut", punchSummary(day))
	assert.Equal(t, "+00:03", balanceLabel(day))
	assert.Equal(t, inProgressLabel, balanceLabel(sampleReport().Days[1]))
}

func TestXLSX(t *testing.T) {
	out, err := XLSX(sampleReport())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{summarySheet, daysSheet, entriesSheet}, f.GetSheetList())

	name, err := f.GetCellValue(summarySheet, "B1")
	require.NoError(t, err)
	assert.Equal(t, "João Silva", name)

	rows, err := f.GetRows(daysSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "+00:03", rows[1][6])
	assert.Equal(t, inProgressLabel, rows[2][6])

	entries, err := f.GetRows(entriesSheet)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Equal(t, "rejected", entries[2][4])
	assert.Equal(t, "duplicate", entries[2][6])
}
