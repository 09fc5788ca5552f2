package generic

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CENTS - Integer money (AUD). All stored and reported amounts use this.
// =============================================================================

type Cents int64

var hundred = decimal.NewFromInt(100)

func (c Cents) Decimal() decimal.Decimal { return decimal.NewFromInt(int64(c)) }

// Dollars renders the amount as a plain two-decimal string, e.g. "1234.50".
func (c Cents) Dollars() string {
	return c.Decimal().Div(hundred).StringFixed(2)
}

func (c Cents) String() string { return fmt.Sprintf("%d", int64(c)) }

// roundCents rounds half away from zero to a whole cent.
func roundCents(d decimal.Decimal) Cents {
	return Cents(d.Round(0).IntPart())
}

// CentsFromDollars converts a dollar figure such as 150 or 99.995 to cents.
func CentsFromDollars(dollars decimal.Decimal) Cents {
	return roundCents(dollars.Mul(hundred))
}

// Extend returns round(quantity x c), the ex-GST amount of a line.
func (c Cents) Extend(quantity decimal.Decimal) Cents {
	return roundCents(quantity.Mul(c.Decimal()))
}

// Percent returns round(c x pct / 100), e.g. the GST on an ex-GST amount.
func (c Cents) Percent(pct decimal.Decimal) Cents {
	return roundCents(c.Decimal().Mul(pct).Div(hundred))
}

// =============================================================================
// GST TOTALS - Ex-GST and GST sums over a set of rows
// =============================================================================

type GstTotals struct {
	ExCents  Cents
	GstCents Cents
}

func (t GstTotals) Add(o GstTotals) GstTotals {
	return GstTotals{ExCents: t.ExCents + o.ExCents, GstCents: t.GstCents + o.GstCents}
}

func (t GstTotals) IncCents() Cents { return t.ExCents + t.GstCents }
