package billing

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/taxman/generic"
)

// LineInput is one requested invoice line before pricing.
type LineInput struct {
	EmployeeID   string
	Description  string
	Quantity     decimal.Decimal
	Unit         generic.Unit
	Rate         decimal.Decimal // dollars, only used with OverrideRate
	GstCodeID    string
	OverrideRate bool
}

// PricedLine is a line with its rate and amounts fixed.
type PricedLine struct {
	Line   generic.InvoiceLine
	Origin RateOrigin
}

// PricedInvoice is the output of Price. Totals are sums of integer cents.
type PricedInvoice struct {
	Lines         []PricedLine
	TotalExCents  generic.Cents
	TotalGstCents generic.Cents
}

func (p PricedInvoice) TotalIncCents() generic.Cents {
	return p.TotalExCents + p.TotalGstCents
}

// InvoiceLines returns the priced lines without their rate origin.
func (p PricedInvoice) InvoiceLines() []generic.InvoiceLine {
	lines := make([]generic.InvoiceLine, len(p.Lines))
	for i, l := range p.Lines {
		lines[i] = l.Line
	}
	return lines
}

// Pricer computes line amounts, GST and totals for an invoice.
type Pricer struct {
	src      PricingSource
	resolver *Resolver
}

func NewPricer(src PricingSource) *Pricer {
	return &Pricer{src: src, resolver: NewResolver(src)}
}

// Price fails as a whole: an unknown GST code on any line is reported before
// any rate is resolved, and an unresolvable rate on any line yields no lines.
func (p *Pricer) Price(ctx context.Context, clientID string, issueDate generic.Date, inputs []LineInput) (PricedInvoice, error) {
	codes := make(map[string]*generic.GstCode, len(inputs))
	for i, in := range inputs {
		if _, seen := codes[in.GstCodeID]; seen {
			continue
		}
		code, err := p.src.GetGstCode(ctx, in.GstCodeID)
		if err != nil {
			return PricedInvoice{}, fmt.Errorf("loading GST code %s: %w", in.GstCodeID, err)
		}
		if code == nil {
			return PricedInvoice{}, &generic.MissingGstCodeError{Line: i, GstCodeID: in.GstCodeID}
		}
		codes[in.GstCodeID] = code
	}

	var result PricedInvoice
	for i, in := range inputs {
		res, err := p.rateFor(ctx, clientID, issueDate, i, in)
		if err != nil {
			return PricedInvoice{}, err
		}

		amountEx := res.RateCents.Extend(in.Quantity)
		gst := amountEx.Percent(codes[in.GstCodeID].RatePercent)

		result.Lines = append(result.Lines, PricedLine{
			Line: generic.InvoiceLine{
				EmployeeID:    in.EmployeeID,
				Description:   in.Description,
				Quantity:      in.Quantity,
				Unit:          in.Unit,
				RateCents:     res.RateCents,
				AmountExCents: amountEx,
				GstCents:      gst,
				GstCodeID:     in.GstCodeID,
			},
			Origin: res.Origin,
		})
		result.TotalExCents += amountEx
		result.TotalGstCents += gst
	}

	return result, nil
}

func (p *Pricer) rateFor(ctx context.Context, clientID string, on generic.Date, index int, in LineInput) (Resolution, error) {
	if in.OverrideRate && in.Rate.IsPositive() {
		// The resolver path checks the employee itself; an override skips it.
		emp, err := p.src.GetEmployee(ctx, in.EmployeeID)
		if err != nil {
			return Resolution{}, fmt.Errorf("line %d: loading employee: %w", index, err)
		}
		if emp == nil {
			return Resolution{}, fmt.Errorf("line %d: %w", index, &generic.ReferenceError{Kind: "employee", ID: in.EmployeeID})
		}
		return Resolution{RateCents: generic.CentsFromDollars(in.Rate), Origin: OriginOverride}, nil
	}

	res, ok, err := p.resolver.Resolve(ctx, clientID, in.EmployeeID, on)
	if err != nil {
		return Resolution{}, fmt.Errorf("line %d: %w", index, err)
	}
	if !ok {
		return Resolution{}, &generic.UnresolvableRateError{Line: index, EmployeeID: in.EmployeeID}
	}
	return res, nil
}
