package report

import (
	"sort"
	"time"

	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/employee"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/report"
	"github.com/cmlabs-hris/punchclock-backend-go/internal/domain/timeentry"
)

// Compute reconstructs the worked and break time of every local day in loc
// that has at least one entry, and aggregates the days into monthly and
// period balances. Days still in progress are reported but never aggregated.
func Compute(entries []timeentry.TimeEntry, schedule *employee.WeeklySchedule, loc *time.Location) report.PeriodSummary {
	byDay := make(map[string][]timeentry.TimeEntry)
	var keys []string
	for _, e := range entries {
		key := e.Timestamp.In(loc).Format("2006-01-02")
		if _, ok := byDay[key]; !ok {
			keys = append(keys, key)
		}
		byDay[key] = append(byDay[key], e)
	}
	sort.Strings(keys)

	var summary report.PeriodSummary
	monthIndex := make(map[string]int)
	for _, key := range keys {
		date, _ := time.ParseInLocation("2006-01-02", key, loc)
		day := ComputeDay(date, byDay[key], schedule)
		summary.Days = append(summary.Days, day)

		summary.HoursWorked += day.TotalWork
		summary.NetWorked += day.NetWork()

		month := key[:7]
		i, ok := monthIndex[month]
		if !ok {
			i = len(summary.Months)
			monthIndex[month] = i
			summary.Months = append(summary.Months, report.MonthSummary{
				Month: time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, loc),
			})
		}

		balance, complete := day.Balance()
		if !complete {
			summary.InProgressDays++
			continue
		}
		summary.Balance += balance
		summary.Months[i].Balance += balance
	}
	return summary
}

// ComputeDay pairs the punches of one local date. Rejected entries stay in
// Entries for display but take no part in the pairing; medical certificates
// excuse the day instead of being paired.
func ComputeDay(date time.Time, entries []timeentry.TimeEntry, schedule *employee.WeeklySchedule) report.DaySummary {
	sorted := make([]timeentry.TimeEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Timestamp.Before(sorted[j].Timestamp) })

	day := report.DaySummary{Date: date}
	var openClockIn, openBreakStart *time.Time
	for i := range sorted {
		e := sorted[i]
		if e.Type == timeentry.TypeMedicalCertificate {
			day.Certificates = append(day.Certificates, e)
			continue
		}
		day.Entries = append(day.Entries, e)
		if e.IsRejected() {
			continue
		}

		at := e.Timestamp
		switch e.Type {
		case timeentry.TypeClockIn:
			openClockIn = &at
		case timeentry.TypeBreakStart:
			openBreakStart = &at
		case timeentry.TypeBreakEnd:
			if openBreakStart != nil {
				day.TotalBreak += at.Sub(*openBreakStart)
				openBreakStart = nil
			}
		case timeentry.TypeClockOut:
			day.HasClockOut = true
			if openClockIn != nil {
				day.TotalWork += at.Sub(*openClockIn)
				openClockIn = nil
			}
		}
	}

	if !day.Excused() {
		day.Expected = schedule.ExpectedOn(date)
	}
	return day
}
