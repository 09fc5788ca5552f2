package generic

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - Closed calendar interval used for reporting
// =============================================================================

// Period is the closed interval [Start, End] of calendar days.
//
// Examples:
//   - Quarter Q1 FY 2024-25: Jul 1 2024 - Sep 30 2024
//   - Fiscal year 2024-25:   Jul 1 2024 - Jun 30 2025
type Period struct {
	Start Date
	End   Date
}

// Contains returns true if the day is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// Days returns the number of calendar days covered, both ends included.
func (p Period) Days() int {
	return DaysBetween(p.Start, p.End) + 1
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// DATE RANGE - Effective-dated interval with an optional open end
// =============================================================================

// DateRange is [From, To] where a nil To means "until further notice".
type DateRange struct {
	From Date
	To   *Date
}

// end returns the effective upper bound, treating an open end as +infinity.
func (r DateRange) end() Date {
	if r.To == nil {
		return MaxDate
	}
	return *r.To
}

// Overlaps uses the closed-interval test a.start <= b.end && b.start <= a.end.
// Ranges that share a single endpoint day overlap.
func (r DateRange) Overlaps(other DateRange) bool {
	return r.From.BeforeOrEqual(other.end()) && other.From.BeforeOrEqual(r.end())
}

// Covers returns true if the day falls within the range.
func (r DateRange) Covers(d Date) bool {
	return r.From.BeforeOrEqual(d) && d.BeforeOrEqual(r.end())
}

func (r DateRange) String() string {
	if r.To == nil {
		return r.From.String() + " onwards"
	}
	return r.From.String() + " to " + r.To.String()
}

// =============================================================================
// FREQUENCY - How a fiscal year is split for reporting
// =============================================================================

type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyAnnual    Frequency = "annual"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyMonthly, FrequencyQuarterly, FrequencyAnnual:
		return true
	}
	return false
}

// IncrementMonths is the length of one reporting period. Anything unknown is annual.
func (f Frequency) IncrementMonths() int {
	switch f {
	case FrequencyMonthly:
		return 1
	case FrequencyQuarterly:
		return 3
	default:
		return 12
	}
}

func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(s)
	if !f.Valid() {
		return "", fmt.Errorf("unknown frequency %q", s)
	}
	return f, nil
}

// =============================================================================
// FISCAL CALENDAR - Determines which fiscal year a date falls into
// =============================================================================

// FiscalCalendar describes a fiscal year starting on the first day of StartMonth.
type FiscalCalendar struct {
	StartMonth time.Month
}

// StartYearFor returns the calendar year in which the fiscal year containing d began.
func (fc FiscalCalendar) StartYearFor(d Date) int {
	if d.Month() >= fc.StartMonth {
		return d.Year()
	}
	return d.Year() - 1
}

// Year returns the full fiscal year beginning in startYear.
func (fc FiscalCalendar) Year(startYear int) Period {
	start := NewDate(startYear, fc.StartMonth, 1)
	return Period{Start: start, End: start.AddYears(1).AddDays(-1)}
}

// PeriodFor returns the fiscal year that contains the given date.
func (fc FiscalCalendar) PeriodFor(d Date) Period {
	return fc.Year(fc.StartYearFor(d))
}
