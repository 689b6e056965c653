package report

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
)

// DaySummary is the reconstruction of one local calendar day.
type DaySummary struct {
	Date         time.Time
	Entries      []timeentry.TimeEntry
	Certificates []timeentry.TimeEntry
	TotalWork    time.Duration
	TotalBreak   time.Duration
	Expected     time.Duration
	HasClockOut  bool
}

func (d DaySummary) NetWork() time.Duration {
	return d.TotalWork - d.TotalBreak
}

// Excused reports whether a medical certificate covers the day.
func (d DaySummary) Excused() bool {
	return len(d.Certificates) > 0
}

// Complete reports whether the day may contribute to the period balance.
func (d DaySummary) Complete() bool {
	return d.HasClockOut || d.Expected == 0
}

// Balance returns the signed difference against the schedule. ok is false
// while the day is still in progress.
func (d DaySummary) Balance() (time.Duration, bool) {
	if !d.Complete() {
		return 0, false
	}
	return d.NetWork() - d.Expected, true
}

// MonthSummary aggregates the complete days of one calendar month.
type MonthSummary struct {
	Month   time.Time
	Balance time.Duration
}

// PeriodSummary aggregates a range of days.
type PeriodSummary struct {
	Days           []DaySummary
	Months         []MonthSummary
	HoursWorked    time.Duration
	NetWorked      time.Duration
	Balance        time.Duration
	InProgressDays int
}

// FormatDuration renders d as HH:MM, truncated to the minute.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	minutes := int64(d / time.Minute)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// FormatBalance renders d as a signed ±HH:MM, truncated to the minute. A
// balance under one minute in either direction renders as 00:00.
func FormatBalance(d time.Duration) string {
	if d > -time.Minute && d < time.Minute {
		return "00:00"
	}
	if d < 0 {
		return "-" + FormatDuration(d)
	}
	return "+" + FormatDuration(d)
}
