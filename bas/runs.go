package bas

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/warp/taxman/generic"
)

// =============================================================================
// RUN - Frozen summary of an elapsed period
// =============================================================================

// Run captures the summary of a period once it has ended, so later edits to
// invoices or expenses can be compared against what was reported.
type Run struct {
	ID          string            `json:"id"`
	Label       string            `json:"label"`
	Frequency   generic.Frequency `json:"frequency"`
	Basis       generic.Basis     `json:"basis"`
	PeriodStart generic.Date      `json:"periodStart"`
	PeriodEnd   generic.Date      `json:"periodEnd"`
	Summary     Summary           `json:"summary"`
	CreatedAt   time.Time         `json:"createdAt"`
}

type RunStore interface {
	SaveRun(ctx context.Context, run Run) error
	ListRuns(ctx context.Context) ([]Run, error)
	RunExists(ctx context.Context, basis generic.Basis, period generic.Period) (bool, error)
}

// Snapshotter freezes elapsed periods into runs.
type Snapshotter struct {
	calc *Calculator
	runs RunStore
	now  func() time.Time
	log  zerolog.Logger
}

func NewSnapshotter(calc *Calculator, runs RunStore, now func() time.Time, log zerolog.Logger) *Snapshotter {
	if now == nil {
		now = time.Now
	}
	return &Snapshotter{calc: calc, runs: runs, now: now, log: log.With().Str("component", "bas-runs").Logger()}
}

// CloseElapsed stores a run for every period of req that ended before today
// and has no run yet for req.Basis. Returns the runs created.
func (s *Snapshotter) CloseElapsed(ctx context.Context, req Request) ([]Run, error) {
	today := generic.DateOf(s.now())
	var created []Run

	for _, period := range GeneratePeriods(req.FiscalYearStart, req.Frequency, req.FYStartMonth) {
		if !period.End.Before(today) {
			continue
		}

		exists, err := s.runs.RunExists(ctx, req.Basis, period.Period())
		if err != nil {
			return created, fmt.Errorf("checking run for %s: %w", period.Label, err)
		}
		if exists {
			continue
		}

		summary, err := s.calc.ComputeSummary(ctx, period, req.Basis)
		if err != nil {
			return created, err
		}

		run := Run{
			ID:          uuid.NewString(),
			Label:       period.Label,
			Frequency:   req.Frequency,
			Basis:       req.Basis,
			PeriodStart: period.Start,
			PeriodEnd:   period.End,
			Summary:     summary,
			CreatedAt:   s.now().UTC(),
		}
		if err := s.runs.SaveRun(ctx, run); err != nil {
			return created, fmt.Errorf("saving run for %s: %w", period.Label, err)
		}

		s.log.Info().
			Str("period", period.Label).
			Str("basis", string(req.Basis)).
			Int64("net_gst_cents", int64(summary.NetGstCents)).
			Msg("bas period closed")
		created = append(created, run)
	}

	return created, nil
}
