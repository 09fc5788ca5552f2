package bas

import (
	"context"
	"fmt"

	"github.com/warp/taxman/generic"
)

// Summary holds the BAS figures for one period. Never persisted on its own.
type Summary struct {
	Basis             generic.Basis `json:"basis"`
	PeriodStart       generic.Date  `json:"periodStart"`
	PeriodEnd         generic.Date  `json:"periodEnd"`
	SalesExCents      generic.Cents `json:"salesExCents"`
	SalesGstCents     generic.Cents `json:"salesGstCents"`
	PurchasesExCents  generic.Cents `json:"purchasesExCents"`
	PurchasesGstCents generic.Cents `json:"purchasesGstCents"`
	// NetGstCents is payable when positive, refundable when negative.
	NetGstCents generic.Cents `json:"netGstCents"`
}

// Calculator aggregates ledger rows for a single period.
type Calculator struct {
	ledger generic.LedgerReader
}

func NewCalculator(ledger generic.LedgerReader) *Calculator {
	return &Calculator{ledger: ledger}
}

// ComputeSummary aggregates sales and purchases for the period.
//
// Accrual basis places an invoice by its issue date; cash basis by its cash
// received date, and uncollected invoices count nowhere. Purchases are always
// placed by incurred date: expenses carry no separate paid date.
func (c *Calculator) ComputeSummary(ctx context.Context, period FiscalPeriod, basis generic.Basis) (Summary, error) {
	field, err := salesDateField(basis)
	if err != nil {
		return Summary{}, err
	}
	p := period.Period()

	sales, err := c.ledger.SalesTotals(ctx, field, p)
	if err != nil {
		return Summary{}, fmt.Errorf("sales totals for %s: %w", period.Label, err)
	}

	purchases, err := c.ledger.PurchaseTotals(ctx, p)
	if err != nil {
		return Summary{}, fmt.Errorf("purchase totals for %s: %w", period.Label, err)
	}

	return Summary{
		Basis:             basis,
		PeriodStart:       period.Start,
		PeriodEnd:         period.End,
		SalesExCents:      sales.ExCents,
		SalesGstCents:     sales.GstCents,
		PurchasesExCents:  purchases.ExCents,
		PurchasesGstCents: purchases.GstCents,
		NetGstCents:       sales.GstCents - purchases.GstCents,
	}, nil
}

func salesDateField(basis generic.Basis) (generic.InvoiceDateField, error) {
	switch basis {
	case generic.BasisAccrual:
		return generic.ByIssueDate, nil
	case generic.BasisCash:
		return generic.ByCashReceivedDate, nil
	}
	v := generic.NewValidationError()
	v.Add("basis", fmt.Sprintf("unknown basis %q (use cash or accrual)", basis))
	return "", v
}
