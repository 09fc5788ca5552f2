package billing

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/warp/taxman/generic"
)

// HasOverlap reports the first existing rate whose range overlaps candidate.
// Open ends extend to infinity and a shared endpoint day counts as overlap.
func HasOverlap(existing []generic.RateRecord, candidate generic.DateRange) (*generic.RateRecord, bool) {
	for i := range existing {
		if existing[i].Range().Overlaps(candidate) {
			return &existing[i], true
		}
	}
	return nil, false
}

// =============================================================================
// RATE BOOK - Validated, conflict-free rate insertion
// =============================================================================

// RateInput is a proposed new rate.
type RateInput struct {
	ClientID      string
	EmployeeID    string
	RateCents     generic.Cents
	Unit          generic.Unit
	EffectiveFrom generic.Date
	EffectiveTo   *generic.Date
}

func (in RateInput) Validate() error {
	v := generic.NewValidationError()
	if strings.TrimSpace(in.ClientID) == "" {
		v.Add("clientId", "is required")
	}
	if strings.TrimSpace(in.EmployeeID) == "" {
		v.Add("employeeId", "is required")
	}
	if in.RateCents < 0 {
		v.Add("rateCents", "must not be negative")
	}
	if !in.Unit.Valid() {
		v.Add("unit", "must be hour, day or item")
	}
	if in.EffectiveFrom.IsZero() {
		v.Add("effectiveFrom", "is required")
	}
	if in.EffectiveTo != nil && !in.EffectiveFrom.IsZero() && in.EffectiveTo.Before(in.EffectiveFrom) {
		v.Add("effectiveTo", "must not be before effectiveFrom")
	}
	return v.OrNil()
}

// RateBook owns writes to the rate table.
type RateBook struct {
	store generic.TxStore
	now   func() time.Time
	log   zerolog.Logger
}

func NewRateBook(store generic.TxStore, log zerolog.Logger) *RateBook {
	return &RateBook{store: store, now: time.Now, log: log.With().Str("component", "rates").Logger()}
}

// AddRate inserts the rate unless it overlaps an existing one for the same
// (client, employee) pair. Check and insert share one transaction.
func (b *RateBook) AddRate(ctx context.Context, in RateInput) (generic.RateRecord, error) {
	if in.Unit == "" {
		in.Unit = generic.UnitHour
	}
	if err := in.Validate(); err != nil {
		return generic.RateRecord{}, err
	}

	record := generic.RateRecord{
		ID:            uuid.NewString(),
		ClientID:      in.ClientID,
		EmployeeID:    in.EmployeeID,
		RateCents:     in.RateCents,
		Unit:          in.Unit,
		EffectiveFrom: in.EffectiveFrom,
		EffectiveTo:   in.EffectiveTo,
		CreatedAt:     b.now().UTC(),
	}

	err := b.store.WithTx(ctx, func(tx generic.Store) error {
		if err := requireClientAndEmployee(ctx, tx, in.ClientID, in.EmployeeID); err != nil {
			return err
		}

		existing, err := tx.RatesForPair(ctx, in.ClientID, in.EmployeeID)
		if err != nil {
			return fmt.Errorf("loading existing rates: %w", err)
		}

		candidate := record.Range()
		if clash, overlaps := HasOverlap(existing, candidate); overlaps {
			return &generic.RateConflictError{
				ClientID:   in.ClientID,
				EmployeeID: in.EmployeeID,
				Candidate:  candidate,
				Existing:   *clash,
			}
		}

		return tx.InsertRate(ctx, record)
	})
	if err != nil {
		return generic.RateRecord{}, err
	}

	b.log.Info().
		Str("client_id", record.ClientID).
		Str("employee_id", record.EmployeeID).
		Str("range", record.Range().String()).
		Int64("rate_cents", int64(record.RateCents)).
		Msg("rate added")
	return record, nil
}

// List returns rates ordered by effective date. Empty clientID lists all.
func (b *RateBook) List(ctx context.Context, clientID string) ([]generic.RateRecord, error) {
	return b.store.ListRates(ctx, clientID)
}

func requireClientAndEmployee(ctx context.Context, s generic.ReferenceStore, clientID, employeeID string) error {
	client, err := s.GetClient(ctx, clientID)
	if err != nil {
		return fmt.Errorf("loading client: %w", err)
	}
	if client == nil {
		return &generic.ReferenceError{Kind: "client", ID: clientID}
	}

	employee, err := s.GetEmployee(ctx, employeeID)
	if err != nil {
		return fmt.Errorf("loading employee: %w", err)
	}
	if employee == nil {
		return &generic.ReferenceError{Kind: "employee", ID: employeeID}
	}
	return nil
}
