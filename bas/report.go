package bas

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/warp/taxman/generic"
)

// =============================================================================
// REQUEST - Fully resolved report parameters
// =============================================================================

// Request is what the engine runs. Callers resolve settings and overrides
// once (ResolveRequest) and pass the result in; nothing below reads settings.
type Request struct {
	Frequency       generic.Frequency `json:"frequency"`
	Basis           generic.Basis     `json:"basis"`
	FiscalYearStart int               `json:"fiscalYearStart"`
	FYStartMonth    time.Month        `json:"fyStartMonth"`
}

// Defaults are the company-level choices used when a request omits a field.
type Defaults struct {
	Basis        generic.Basis
	Frequency    generic.Frequency
	FYStartMonth time.Month
}

// DefaultsFromSettings prefers stored company settings over the fallback.
func DefaultsFromSettings(s *generic.CompanySettings, fallback Defaults) Defaults {
	if s == nil {
		return fallback
	}
	d := fallback
	if s.GstBasis.Valid() {
		d.Basis = s.GstBasis
	}
	if s.BasFrequency.Valid() {
		d.Frequency = s.BasFrequency
	}
	if s.FYStartMonth >= time.January && s.FYStartMonth <= time.December {
		d.FYStartMonth = s.FYStartMonth
	}
	return d
}

// Overrides are the optional, caller-supplied report parameters.
type Overrides struct {
	Frequency       *string
	Basis           *string
	FiscalYearStart *int
	FYStartMonth    *int
}

// ResolveRequest merges overrides over defaults. The fiscal year defaults
// to the one containing today under the resolved start month.
func ResolveRequest(defaults Defaults, o Overrides, today generic.Date) (Request, error) {
	v := generic.NewValidationError()
	req := Request{
		Frequency:    defaults.Frequency,
		Basis:        defaults.Basis,
		FYStartMonth: defaults.FYStartMonth,
	}

	if o.Frequency != nil {
		req.Frequency = generic.Frequency(*o.Frequency)
	}
	if !req.Frequency.Valid() {
		v.Add("frequency", fmt.Sprintf("unknown frequency %q (use monthly, quarterly or annual)", req.Frequency))
	}

	if o.Basis != nil {
		req.Basis = generic.Basis(*o.Basis)
	}
	if !req.Basis.Valid() {
		v.Add("basis", fmt.Sprintf("unknown basis %q (use cash or accrual)", req.Basis))
	}

	if o.FYStartMonth != nil {
		req.FYStartMonth = time.Month(*o.FYStartMonth)
	}
	if req.FYStartMonth == 0 {
		req.FYStartMonth = DefaultFYStartMonth
	}
	if req.FYStartMonth < time.January || req.FYStartMonth > time.December {
		v.Add("fyStartMonth", "must be between 1 and 12")
	}

	if o.FiscalYearStart != nil {
		req.FiscalYearStart = *o.FiscalYearStart
		if req.FiscalYearStart < 1 || req.FiscalYearStart > 9998 {
			v.Add("fiscalYearStart", "must be a calendar year")
		}
	} else if req.FYStartMonth >= time.January && req.FYStartMonth <= time.December {
		req.FiscalYearStart = AlignDateToFinancialYear(today, req.FYStartMonth).StartYear
	}

	if err := v.OrNil(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// =============================================================================
// REPORT
// =============================================================================

type PeriodSummary struct {
	Period  FiscalPeriod `json:"period"`
	Summary Summary      `json:"summary"`
}

// Exception flags a row the user may want to look at before lodging.
type Exception struct {
	PeriodIndex int    `json:"periodIndex"`
	SourceType  string `json:"sourceType"`
	SourceID    string `json:"sourceId"`
	Kind        string `json:"kind"`
	Message     string `json:"message"`
}

const (
	ExceptionUncollectedInvoice = "uncollected_invoice"
	ExceptionMissingGstCode     = "expense_missing_gst_code"
)

type Report struct {
	Request         Request         `json:"request"`
	FiscalYearLabel string          `json:"fiscalYearLabel"`
	Periods         []PeriodSummary `json:"periods"`
	Exceptions      []Exception     `json:"exceptions"`
}

// Reporter runs a Request: one ComputeSummary per period, in parallel.
type Reporter struct {
	calc        *Calculator
	ledger      generic.LedgerReader
	parallelism int
	log         zerolog.Logger
}

func NewReporter(ledger generic.LedgerReader, parallelism int, log zerolog.Logger) *Reporter {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Reporter{
		calc:        NewCalculator(ledger),
		ledger:      ledger,
		parallelism: parallelism,
		log:         log.With().Str("component", "bas").Logger(),
	}
}

func (r *Reporter) Calculator() *Calculator { return r.calc }

// Run computes every period of the request. Periods are independent and
// read-only, so they run concurrently; results keep period order.
func (r *Reporter) Run(ctx context.Context, req Request) (*Report, error) {
	periods := GeneratePeriods(req.FiscalYearStart, req.Frequency, req.FYStartMonth)
	results := make([]PeriodSummary, len(periods))
	exceptions := make([][]Exception, len(periods))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)

	for i, period := range periods {
		g.Go(func() error {
			summary, err := r.calc.ComputeSummary(gctx, period, req.Basis)
			if err != nil {
				return err
			}
			results[i] = PeriodSummary{Period: period, Summary: summary}

			exc, err := r.exceptionsFor(gctx, period, req.Basis)
			if err != nil {
				return err
			}
			exceptions[i] = exc
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		Request:         req,
		FiscalYearLabel: FiscalYearLabel(req.FiscalYearStart),
		Periods:         results,
		Exceptions:      []Exception{},
	}
	for _, exc := range exceptions {
		report.Exceptions = append(report.Exceptions, exc...)
	}

	r.log.Debug().
		Str("frequency", string(req.Frequency)).
		Str("basis", string(req.Basis)).
		Int("fiscal_year_start", req.FiscalYearStart).
		Int("exceptions", len(report.Exceptions)).
		Msg("bas report computed")

	return report, nil
}

func (r *Reporter) exceptionsFor(ctx context.Context, period FiscalPeriod, basis generic.Basis) ([]Exception, error) {
	var result []Exception
	p := period.Period()

	if basis == generic.BasisCash {
		invoices, err := r.ledger.UncollectedInvoices(ctx, p)
		if err != nil {
			return nil, fmt.Errorf("uncollected invoices for %s: %w", period.Label, err)
		}
		for _, inv := range invoices {
			result = append(result, Exception{
				PeriodIndex: period.Index,
				SourceType:  "invoice",
				SourceID:    inv.ID,
				Kind:        ExceptionUncollectedInvoice,
				Message: fmt.Sprintf("invoice #%d issued %s has no cash received date and is excluded on a cash basis",
					inv.InvoiceNumber, inv.IssueDate),
			})
		}
	}

	expenses, err := r.ledger.ExpensesWithoutGstCode(ctx, p)
	if err != nil {
		return nil, fmt.Errorf("expenses without GST code for %s: %w", period.Label, err)
	}
	for _, e := range expenses {
		result = append(result, Exception{
			PeriodIndex: period.Index,
			SourceType:  "expense",
			SourceID:    e.ID,
			Kind:        ExceptionMissingGstCode,
			Message:     fmt.Sprintf("expense from %s on %s has no GST code", e.SupplierName, e.IncurredDate),
		})
	}

	return result, nil
}
