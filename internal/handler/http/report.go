package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/handler/http/response"
)

type ReportHandler interface {
	// Time entries with daily, monthly and period balances
	GetTimeEntriesReport(w http.ResponseWriter, r *http.Request)
}

type reportHandlerImpl struct {
	reportService report.ReportService
}

func NewReportHandler(reportService report.ReportService) ReportHandler {
	return &reportHandlerImpl{
		reportService: reportService,
	}
}

// GetTimeEntriesReport handles GET /api/admin/reports/time-entries
func (h *reportHandlerImpl) GetTimeEntriesReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	req := report.TimeEntriesReportRequest{
		ListEntriesFilter: timeentry.ListEntriesFilter{
			EmployeeID: query.Get("employee_id"),
			StartDate:  query.Get("start_date"),
			EndDate:    query.Get("end_date"),
		},
		Format: report.Format(query.Get("format")),
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if req.Format == report.FormatJSON {
		result, err := h.reportService.TimeEntriesReport(ctx, req)
		if err != nil {
			response.HandleError(w, err)
			return
		}
		response.Success(w, result)
		return
	}

	file, err := h.reportService.ExportTimeEntriesReport(ctx, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(file.Content)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file.Content)
}
