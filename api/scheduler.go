/*
scheduler.go - Automated BAS period close

PURPOSE:
  Periodically freezes the summary of every BAS period that has ended,
  so later edits to invoices or expenses can be compared against what
  was reported at the time.

DESIGN:
  - robfig/cron drives the job (default "@daily"), with panic recovery
  - Each run covers the current and the previous fiscal year using the
    stored company settings (or configured defaults)
  - Periods already snapshotted for the basis are skipped, so runs are
    idempotent

USAGE:
  scheduler, err := NewBasScheduler(handler, "@daily", log)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers_reports.go: CloseBasRuns endpoint (manual close)
  - bas/runs.go: Snapshotter
*/
package api

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/warp/taxman/bas"
)

// BasScheduler runs the period close on a cron schedule.
type BasScheduler struct {
	handler *Handler
	cron    *cron.Cron
	timeout time.Duration
	log     zerolog.Logger
}

func NewBasScheduler(h *Handler, spec string, log zerolog.Logger) (*BasScheduler, error) {
	log = log.With().Str("component", "scheduler").Logger()
	cronLogger := cron.PrintfLogger(&log)

	s := &BasScheduler{
		handler: h,
		cron:    cron.New(cron.WithChain(cron.Recover(cronLogger))),
		timeout: 5 * time.Minute,
		log:     log,
	}

	if _, err := s.cron.AddFunc(spec, s.tick); err != nil {
		return nil, fmt.Errorf("invalid schedule %q: %w", spec, err)
	}
	return s, nil
}

func (s *BasScheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("scheduler started")
}

// Stop waits for a running job to finish.
func (s *BasScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

func (s *BasScheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.RunOnce(ctx); err != nil {
		s.log.Error().Err(err).Msg("bas period close failed")
	}
}

// RunOnce closes elapsed periods of the current and previous fiscal year.
func (s *BasScheduler) RunOnce(ctx context.Context) ([]bas.Run, error) {
	current, err := s.handler.resolveRequest(ctx, bas.Overrides{})
	if err != nil {
		return nil, err
	}
	previous := current
	previous.FiscalYearStart--

	var created []bas.Run
	for _, req := range []bas.Request{previous, current} {
		runs, err := s.handler.Snapshots.CloseElapsed(ctx, req)
		created = append(created, runs...)
		if err != nil {
			return created, fmt.Errorf("closing %s: %w", bas.FiscalYearLabel(req.FiscalYearStart), err)
		}
	}

	s.log.Info().Int("created", len(created)).Msg("bas period close complete")
	return created, nil
}
