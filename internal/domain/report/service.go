package report

import (
	"context"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
)

type ReportService interface {
	// TimeEntriesReport computes the balance report of one employee.
	TimeEntriesReport(ctx context.Context, req TimeEntriesReportRequest) (TimeEntriesReport, error)

	// ExportTimeEntriesReport renders the same report as PDF or XLSX.
	ExportTimeEntriesReport(ctx context.Context, req TimeEntriesReportRequest) (File, error)

	// MySummary computes the caller's own balance; EmployeeID is ignored.
	MySummary(ctx context.Context, filter timeentry.ListEntriesFilter) (TimeEntriesReport, error)
}
