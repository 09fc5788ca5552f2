/*
Package billing prices work for clients.

PURPOSE:
  Resolves the billable rate of an employee for a client on a date,
  guards the effective-dated rate table against overlapping ranges,
  prices invoice lines (ex-GST amount and GST) and owns the invoice
  lifecycle: sequential numbering, wholesale line replacement and the
  receipt-aware delete guard.

RATE PRECEDENCE:
  1. A client-specific RateRecord covering the date (latest start wins)
  2. The employee's base rate
  3. Nothing: the caller gets an unresolvable-rate error, never zero

ATOMICITY:
  Invoice create/update and rate insertion run inside one store
  transaction each, so every lookup used for pricing or for the overlap
  check belongs to the same snapshot as the write that follows.

SEE ALSO:
  - rates.go: Resolver
  - conflict.go: Overlap check + RateBook
  - pricing.go: Pricer
  - invoices.go: InvoiceService
*/
package billing

import (
	"context"

	"github.com/warp/taxman/generic"
)

//go:generate mockgen -source=ports.go -destination=ports_mock.go -package=billing

// RateSource is what the Resolver reads.
type RateSource interface {
	RatesEffectiveOn(ctx context.Context, clientID, employeeID string, on generic.Date) ([]generic.RateRecord, error)
	GetEmployee(ctx context.Context, id string) (*generic.Employee, error)
}

// PricingSource is what the Pricer reads.
type PricingSource interface {
	RateSource
	GetGstCode(ctx context.Context, id string) (*generic.GstCode, error)
}
