package report

import "errors"

var (
	ErrInvalidFormat          = errors.New("format must be json, pdf or xlsx")
	ErrRangeTooLarge          = errors.New("report range must not exceed 366 days")
	ErrReportGenerationFailed = errors.New("failed to generate report")
)
