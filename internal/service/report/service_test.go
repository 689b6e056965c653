package report

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/pkg/validator"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/repository/memory"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authContext(t *testing.T, employeeID string, isAdmin bool) context.Context {
	t.Helper()
	tokens := jwt.NewJWTService("test-secret", "1h")
	token, _, err := tokens.GenerateAccessToken(employeeID, "co-1", isAdmin)
	require.NoError(t, err)
	decoded, err := jwtauth.VerifyToken(tokens.JWTAuth(), token)
	require.NoError(t, err)
	return jwtauth.NewContext(context.Background(), decoded, nil)
}

func newReportService() *ReportServiceImpl {
	emps := memory.NewEmployeeRepository(
		employee.Employee{ID: "emp-1", CompanyID: "co-1", DisplayName: "Ana", Status: employee.StatusActive, WorkHours: officeSchedule()},
		employee.Employee{ID: "emp-2", CompanyID: "co-2", DisplayName: "Bia", Status: employee.StatusActive},
	)
	entries := memory.NewTimeEntryRepository(
		timeentry.TimeEntry{CompanyID: "co-1", EmployeeID: "emp-1", Type: timeentry.TypeClockIn, Timestamp: on(4, 8, 2), Status: timeentry.StatusApproved},
		timeentry.TimeEntry{CompanyID: "co-1", EmployeeID: "emp-1", Type: timeentry.TypeBreakStart, Timestamp: on(4, 12, 0), Status: timeentry.StatusApproved},
		timeentry.TimeEntry{CompanyID: "co-1", EmployeeID: "emp-1", Type: timeentry.TypeBreakEnd, Timestamp: on(4, 13, 0), Status: timeentry.StatusApproved},
		timeentry.TimeEntry{CompanyID: "co-1", EmployeeID: "emp-1", Type: timeentry.TypeClockOut, Timestamp: on(4, 17, 5), Status: timeentry.StatusApproved},
		timeentry.TimeEntry{CompanyID: "co-1", EmployeeID: "emp-1", Type: timeentry.TypeClockIn, Timestamp: on(5, 8, 0), Status: timeentry.StatusApproved},
		timeentry.TimeEntry{CompanyID: "co-1", EmployeeID: "emp-1", Type: timeentry.TypeClockIn, Timestamp: on(12, 8, 0), Status: timeentry.StatusApproved},
	)
	svc := NewReportService(emps, entries, fortaleza)
	svc.now = func() time.Time { return on(6, 9, 0) }
	return svc
}

func reportRequest(employeeID string, format report.Format) report.TimeEntriesReportRequest {
	return report.TimeEntriesReportRequest{
		ListEntriesFilter: timeentry.ListEntriesFilter{EmployeeID: employeeID, StartDate: "2024-03-04", EndDate: "2024-03-05"},
		Format:            format,
	}
}

func TestTimeEntriesReport(t *testing.T) {
	svc := newReportService()
	ctx := authContext(t, "admin-1", true)

	r, err := svc.TimeEntriesReport(ctx, reportRequest("emp-1", ""))
	require.NoError(t, err)

	assert.Equal(t, "Ana", r.EmployeeName)
	assert.Equal(t, "09:03", r.HoursWorked)
	assert.Equal(t, "+00:03", r.PeriodBalance)
	assert.Equal(t, 1, r.InProgressDays)
	require.Len(t, r.Days, 2, "entries outside the range are excluded")

	monday := r.Days[0]
	assert.Equal(t, "Monday", monday.Weekday)
	assert.Equal(t, "+08:03", monday.NetWork)
	require.NotNil(t, monday.Balance)
	assert.Equal(t, "+00:03", *monday.Balance)
	assert.Len(t, monday.Entries, 4)

	tuesday := r.Days[1]
	assert.True(t, tuesday.InProgress)
	assert.Nil(t, tuesday.Balance)
}

func TestTimeEntriesReport_Validation(t *testing.T) {
	svc := newReportService()
	ctx := authContext(t, "admin-1", true)

	_, err := svc.TimeEntriesReport(ctx, reportRequest("", ""))
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = svc.TimeEntriesReport(ctx, reportRequest("emp-1", "csv"))
	assert.ErrorAs(t, err, &verrs)

	tooLong := reportRequest("emp-1", "")
	tooLong.EndDate = "2025-12-31"
	_, err = svc.TimeEntriesReport(ctx, tooLong)
	assert.ErrorAs(t, err, &verrs)
}

func TestTimeEntriesReport_OtherCompanyEmployee(t *testing.T) {
	svc := newReportService()
	_, err := svc.TimeEntriesReport(authContext(t, "admin-1", true), reportRequest("emp-2", ""))
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestExportTimeEntriesReport(t *testing.T) {
	svc := newReportService()
	ctx := authContext(t, "admin-1", true)

	pdf, err := svc.ExportTimeEntriesReport(ctx, reportRequest("emp-1", report.FormatPDF))
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.Equal(t, "time-entries_emp-1_2024-03-04_2024-03-05.pdf", pdf.Name)
	assert.True(t, bytes.HasPrefix(pdf.Content, []byte("%PDF-")))

	xlsx, err := svc.ExportTimeEntriesReport(ctx, reportRequest("emp-1", report.FormatXLSX))
	require.NoError(t, err)
	assert.Equal(t, "time-entries_emp-1_2024-03-04_2024-03-05.xlsx", xlsx.Name)
	assert.True(t, bytes.HasPrefix(xlsx.Content, []byte("PK")))

	_, err = svc.ExportTimeEntriesReport(ctx, reportRequest("emp-1", report.FormatJSON))
	assert.ErrorIs(t, err, report.ErrInvalidFormat)
}

func TestMySummary_UsesCaller(t *testing.T) {
	svc := newReportService()
	ctx := authContext(t, "emp-1", false)

	r, err := svc.MySummary(ctx, timeentry.ListEntriesFilter{EmployeeID: "emp-2", StartDate: "2024-03-04", EndDate: "2024-03-04"})
	require.NoError(t, err)
	assert.Equal(t, "emp-1", r.EmployeeID)
	assert.Equal(t, "+00:03", r.PeriodBalance)
	assert.Equal(t, "2024-03-06T09:00:00-03:00", r.GeneratedAt)
}
