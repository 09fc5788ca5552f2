/*
Package bas computes Business Activity Statement summaries.

PURPOSE:
  Splits a fiscal year into reporting periods (monthly, quarterly or
  annual) and aggregates GST collected on sales against GST paid on
  purchases for each period, on a cash or accrual basis.

FISCAL YEARS:
  A fiscal year is named by the calendar year it starts in. With the
  default July start, fiscal year 2024 is "FY 2024-25" and runs
  2024-07-01 to 2025-06-30.

PERIODS:
  monthly   12 periods  "Jul FY 2024-25"
  quarterly  4 periods  "Q1 FY 2024-25"
  annual     1 period   "FY 2024-25"

  Periods are contiguous, never overlap, and together cover exactly the
  twelve months of the fiscal year. They are computed on demand and
  never persisted (except inside a frozen Run).

SEE ALSO:
  - summary.go: Per-period aggregation
  - report.go: Request resolution and multi-period reports
  - generic/period.go: FiscalCalendar
*/
package bas

import (
	"fmt"
	"time"

	"github.com/warp/taxman/generic"
)

const monthsInYear = 12

// DefaultFYStartMonth is the Australian fiscal year start.
const DefaultFYStartMonth = time.July

// FiscalPeriod is one reporting sub-period within a fiscal year.
type FiscalPeriod struct {
	Label string       `json:"label"`
	Index int          `json:"index"` // 1-based
	Start generic.Date `json:"start"`
	End   generic.Date `json:"end"`
}

func (fp FiscalPeriod) Period() generic.Period {
	return generic.Period{Start: fp.Start, End: fp.End}
}

// GeneratePeriods splits the fiscal year beginning in fyStartMonth of
// fiscalYearStart into consecutive periods of the given frequency.
func GeneratePeriods(fiscalYearStart int, frequency generic.Frequency, fyStartMonth time.Month) []FiscalPeriod {
	increment := frequency.IncrementMonths()
	count := (monthsInYear + increment - 1) / increment
	yearLabel := FiscalYearLabel(fiscalYearStart)

	absoluteStart := generic.NewDate(fiscalYearStart, fyStartMonth, 1)

	periods := make([]FiscalPeriod, count)
	for i := range periods {
		start := absoluteStart.AddMonths(i * increment)
		end := absoluteStart.AddMonths((i + 1) * increment).AddDays(-1)
		periods[i] = FiscalPeriod{
			Label: periodLabel(frequency, i+1, start, yearLabel),
			Index: i + 1,
			Start: start,
			End:   end,
		}
	}
	return periods
}

// FiscalYearLabel formats "FY 2024-25" for the fiscal year starting in 2024.
func FiscalYearLabel(fiscalYearStart int) string {
	return fmt.Sprintf("FY %d-%02d", fiscalYearStart, (fiscalYearStart+1)%100)
}

// FiscalYear identifies a fiscal year by its start and end calendar years.
type FiscalYear struct {
	StartYear int `json:"startYear"`
	EndYear   int `json:"endYear"`
}

func (fy FiscalYear) Label() string { return FiscalYearLabel(fy.StartYear) }

// AlignDateToFinancialYear returns the fiscal year the date falls within.
func AlignDateToFinancialYear(date generic.Date, fyStartMonth time.Month) FiscalYear {
	start := generic.FiscalCalendar{StartMonth: fyStartMonth}.StartYearFor(date)
	return FiscalYear{StartYear: start, EndYear: start + 1}
}

func periodLabel(frequency generic.Frequency, index int, start generic.Date, yearLabel string) string {
	switch frequency {
	case generic.FrequencyMonthly:
		return start.Month().String()[:3] + " " + yearLabel
	case generic.FrequencyQuarterly:
		return fmt.Sprintf("Q%d %s", index, yearLabel)
	default:
		return yearLabel
	}
}
