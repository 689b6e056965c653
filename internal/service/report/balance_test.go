package report

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fortaleza = time.FixedZone("America/Fortaleza", -3*60*60)

func officeSchedule() *employee.WeeklySchedule {
	day := func() *employee.DaySchedule {
		return &employee.DaySchedule{IsWorkDay: true, Entry: "08:00", BreakStart: "12:00", BreakEnd: "13:00", Exit: "17:00"}
	}
	return &employee.WeeklySchedule{
		Monday: day(), Tuesday: day(), Wednesday: day(), Thursday: day(), Friday: day(),
	}
}

// on returns 2024-03-dd hh:mm in Fortaleza. March 4th 2024 is a Monday.
func on(day, hour, minute int) time.Time {
	return time.Date(2024, 3, day, hour, minute, 0, 0, fortaleza)
}

func punch(typ timeentry.Type, at time.Time) timeentry.TimeEntry {
	return timeentry.TimeEntry{EmployeeID: "emp-1", Type: typ, Timestamp: at, Status: timeentry.StatusApproved}
}

func rejected(e timeentry.TimeEntry) timeentry.TimeEntry {
	e.Status = timeentry.StatusRejected
	return e
}

func TestCompute_FullDay(t *testing.T) {
	summary := Compute([]timeentry.TimeEntry{
		punch(timeentry.TypeClockIn, on(4, 8, 2)),
		punch(timeentry.TypeBreakStart, on(4, 12, 0)),
		punch(timeentry.TypeBreakEnd, on(4, 13, 0)),
		punch(timeentry.TypeClockOut, on(4, 17, 5)),
	}, officeSchedule(), fortaleza)

	require.Len(t, summary.Days, 1)
	day := summary.Days[0]
	assert.Equal(t, 9*time.Hour+3*time.Minute, day.TotalWork)
	assert.Equal(t, time.Hour, day.TotalBreak)
	assert.Equal(t, 8*time.Hour+3*time.Minute, day.NetWork())
	assert.Equal(t, 8*time.Hour, day.Expected)

	balance, ok := day.Balance()
	require.True(t, ok)
	assert.Equal(t, "+00:03", report.FormatBalance(balance))
	assert.Equal(t, "09:03", report.FormatDuration(summary.HoursWorked))
	assert.Equal(t, 3*time.Minute, summary.Balance)
}

func TestCompute_InProgressDayIsNotAggregated(t *testing.T) {
	summary := Compute([]timeentry.TimeEntry{
		punch(timeentry.TypeClockIn, on(4, 8, 0)),
		punch(timeentry.TypeClockOut, on(4, 17, 30)),
		punch(timeentry.TypeClockIn, on(5, 8, 0)),
	}, officeSchedule(), fortaleza)

	require.Len(t, summary.Days, 2)
	_, ok := summary.Days[1].Balance()
	assert.False(t, ok)
	assert.Equal(t, 1, summary.InProgressDays)

	// Monday: 9h30 worked, no break punches, 8h expected.
	assert.Equal(t, 90*time.Minute, summary.Balance)
	require.Len(t, summary.Months, 1)
	assert.Equal(t, 90*time.Minute, summary.Months[0].Balance)
}

func TestCompute_RejectedEntriesAreIgnored(t *testing.T) {
	summary := Compute([]timeentry.TimeEntry{
		punch(timeentry.TypeClockIn, on(4, 8, 0)),
		rejected(punch(timeentry.TypeClockIn, on(4, 8, 5))),
		punch(timeentry.TypeClockOut, on(4, 17, 0)),
	}, officeSchedule(), fortaleza)

	day := summary.Days[0]
	assert.Equal(t, 9*time.Hour, day.TotalWork)
	assert.Len(t, day.Entries, 3, "rejected entries are still listed")
}

func TestCompute_RejectedClockOutLeavesDayInProgress(t *testing.T) {
	summary := Compute([]timeentry.TimeEntry{
		punch(timeentry.TypeClockIn, on(4, 8, 0)),
		rejected(punch(timeentry.TypeClockOut, on(4, 17, 0))),
	}, officeSchedule(), fortaleza)

	_, ok := summary.Days[0].Balance()
	assert.False(t, ok)
	assert.Zero(t, summary.Balance)
}

func TestCompute_LastClockInWins(t *testing.T) {
	summary := Compute([]timeentry.TimeEntry{
		punch(timeentry.TypeClockIn, on(4, 8, 0)),
		punch(timeentry.TypeClockIn, on(4, 9, 0)),
		punch(timeentry.TypeClockOut, on(4, 17, 0)),
	}, officeSchedule(), fortaleza)

	assert.Equal(t, 8*time.Hour, summary.Days[0].TotalWork)
}

func TestCompute_UnsortedInput(t *testing.T) {
	summary := Compute([]timeentry.TimeEntry{
		punch(timeentry.TypeClockOut, on(4, 17, 0)),
		punch(timeentry.TypeBreakEnd, on(4, 13, 0)),
		punch(timeentry.TypeClockIn, on(4, 8, 0)),
		punch(timeentry.TypeBreakStart, on(4, 12, 0)),
	}, officeSchedule(), fortaleza)

	day := summary.Days[0]
	assert.Equal(t, 9*time.Hour, day.TotalWork)
	assert.Equal(t, time.Hour, day.TotalBreak)
	assert.Equal(t, timeentry.TypeClockIn, day.Entries[0].Type)
}

func TestCompute_DayOffCountsEverythingAsExtra(t *testing.T) {
	// Saturday with only a clock-in: nothing expected, so the day is complete.
	summary := Compute([]timeentry.TimeEntry{
		punch(timeentry.TypeClockIn, on(9, 9, 0)),
	}, officeSchedule(), fortaleza)

	balance, ok := summary.Days[0].Balance()
	require.True(t, ok)
	assert.Zero(t, balance)
	assert.Zero(t, summary.InProgressDays)
}

func TestCompute_PartitionsByLocalDate(t *testing.T) {
	// 01:30 UTC on the 5th is still the 4th in Fortaleza.
	late := time.Date(2024, 3, 5, 1, 30, 0, 0, time.UTC)
	summary := Compute([]timeentry.TimeEntry{
		punch(timeentry.TypeClockIn, on(4, 20, 0)),
		punch(timeentry.TypeClockOut, late),
	}, officeSchedule(), fortaleza)

	require.Len(t, summary.Days, 1)
	assert.Equal(t, "2024-03-04", summary.Days[0].Date.Format("2006-01-02"))
	assert.Equal(t, 2*time.Hour+30*time.Minute, summary.Days[0].TotalWork)
}

func TestCompute_MedicalCertificateExcusesDay(t *testing.T) {
	note := "flu"
	cert := punch(timeentry.TypeMedicalCertificate, on(6, 12, 0))
	cert.Justification = &note

	summary := Compute([]timeentry.TimeEntry{
		punch(timeentry.TypeClockIn, on(4, 8, 0)),
		punch(timeentry.TypeClockOut, on(4, 16, 0)),
		cert,
	}, officeSchedule(), fortaleza)

	require.Len(t, summary.Days, 2)
	excused := summary.Days[1]
	assert.True(t, excused.Excused())
	assert.Empty(t, excused.Entries)
	assert.Zero(t, excused.Expected)
	require.Len(t, excused.Certificates, 1)

	// Monday is one hour short; the excused Wednesday adds nothing.
	assert.Equal(t, -time.Hour, summary.Balance)
	assert.Equal(t, "-01:00", report.FormatBalance(summary.Balance))
}

func TestCompute_MonthlySubtotals(t *testing.T) {
	summary := Compute([]timeentry.TimeEntry{
		punch(timeentry.TypeClockIn, time.Date(2024, 2, 29, 8, 0, 0, 0, fortaleza)),
		punch(timeentry.TypeClockOut, time.Date(2024, 2, 29, 17, 30, 0, 0, fortaleza)),
		punch(timeentry.TypeClockIn, on(1, 8, 0)),
		punch(timeentry.TypeClockOut, on(1, 16, 0)),
	}, officeSchedule(), fortaleza)

	require.Len(t, summary.Months, 2)
	assert.Equal(t, "2024-02", summary.Months[0].Month.Format("2006-01"))
	assert.Equal(t, 90*time.Minute, summary.Months[0].Balance)
	assert.Equal(t, -time.Hour, summary.Months[1].Balance)
	assert.Equal(t, 30*time.Minute, summary.Balance)
}

func TestCompute_Empty(t *testing.T) {
	summary := Compute(nil, officeSchedule(), fortaleza)
	assert.Empty(t, summary.Days)
	assert.Zero(t, summary.Balance)
}

func TestFormatBalance(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{3 * time.Minute, "+00:03"},
		{-90 * time.Minute, "-01:30"},
		{59 * time.Second, "00:00"},
		{-59 * time.Second, "00:00"},
		{10*time.Hour + 59*time.Second, "+10:00"},
		{-(2*time.Minute + 30*time.Second), "-00:02"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, report.FormatBalance(tt.in), tt.in.String())
	}
}
