/*
Package generic provides the core types shared by the billing and BAS engines.

PURPOSE:
  This package contains storage-agnostic types for a small-business GST
  ledger: calendar dates, reporting periods, integer money, the records
  the engines read (rates, invoices, expenses, GST codes) and the error
  taxonomy every layer speaks.

KEY CONCEPTS IN THIS FILE (types.go):
  - Unit / Basis / InvoiceStatus: Closed vocabularies validated at the edge
  - Client, Employee, GstCode, CompanySettings: Reference data
  - RateRecord: Effective-dated billing rate for a (client, employee) pair
  - Invoice, InvoiceLine, Expense, Receipt: Transaction rows

DESIGN PRINCIPLES:
  1. Money is always integer cents (Cents); fractional inputs go through decimal
  2. Dates are calendar days (Date), never instants
  3. Records are plain data; rules live in the bas and billing packages

SEE ALSO:
  - period.go: Period, DateRange, FiscalCalendar
  - money.go: Cents rounding helpers
  - store.go: Persistence interfaces
*/
package generic

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// VOCABULARIES
// =============================================================================

// Unit is what a quantity on a rate or invoice line counts.
type Unit string

const (
	UnitHour Unit = "hour"
	UnitDay  Unit = "day"
	UnitItem Unit = "item"
)

func (u Unit) Valid() bool {
	switch u {
	case UnitHour, UnitDay, UnitItem:
		return true
	}
	return false
}

// Basis selects how revenue is recognised for BAS.
type Basis string

const (
	BasisCash    Basis = "cash"
	BasisAccrual Basis = "accrual"
)

func (b Basis) Valid() bool { return b == BasisCash || b == BasisAccrual }

type InvoiceStatus string

const (
	InvoiceDraft     InvoiceStatus = "draft"
	InvoiceSubmitted InvoiceStatus = "submitted"
	InvoicePaid      InvoiceStatus = "paid"
	InvoiceVoid      InvoiceStatus = "void"
)

func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceDraft, InvoiceSubmitted, InvoicePaid, InvoiceVoid:
		return true
	}
	return false
}

// InvoiceDateField names the invoice date that decides period membership.
type InvoiceDateField string

const (
	ByIssueDate        InvoiceDateField = "issue_date"
	ByCashReceivedDate InvoiceDateField = "cash_received_date"
)

// =============================================================================
// REFERENCE DATA
// =============================================================================

// CompanySettings holds the company-wide reporting defaults.
type CompanySettings struct {
	LegalName    string
	ABN          string
	GstBasis     Basis
	BasFrequency Frequency
	FYStartMonth time.Month
}

// Validate checks the settings. The ABN may contain spaces; it must hold
// exactly 11 digits.
func (s CompanySettings) Validate() error {
	v := NewValidationError()
	if strings.TrimSpace(s.LegalName) == "" {
		v.Add("legalName", "is required")
	}
	digits := strings.ReplaceAll(s.ABN, " ", "")
	if len(digits) != 11 || strings.Trim(digits, "0123456789") != "" {
		v.Add("abn", "must be 11 digits")
	}
	if !s.GstBasis.Valid() {
		v.Add("gstBasis", "must be cash or accrual")
	}
	if !s.BasFrequency.Valid() {
		v.Add("basFrequency", "must be monthly, quarterly or annual")
	}
	if s.FYStartMonth < time.January || s.FYStartMonth > time.December {
		v.Add("fyStartMonth", "must be between 1 and 12")
	}
	return v.OrNil()
}

type GstCode struct {
	ID          string
	Code        string
	Description string
	RatePercent decimal.Decimal // 10 means 10%
	IsActive    bool
}

type Client struct {
	ID               string
	DisplayName      string
	ContactEmail     string
	DefaultRateCents *Cents
	PaymentTermsDays int
	IsActive         bool
	CreatedAt        time.Time
}

// Employee carries the fallback rate used when no client-specific rate applies.
type Employee struct {
	ID            string
	FullName      string
	Email         string
	BaseRateCents Cents
	DefaultUnit   Unit
	IsActive      bool
	CreatedAt     time.Time
}

// RateRecord is an effective-dated billing rate. Immutable once stored.
type RateRecord struct {
	ID            string
	ClientID      string
	EmployeeID    string
	RateCents     Cents
	Unit          Unit
	EffectiveFrom Date
	EffectiveTo   *Date // nil = open-ended
	CreatedAt     time.Time
}

func (r RateRecord) Range() DateRange {
	return DateRange{From: r.EffectiveFrom, To: r.EffectiveTo}
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

type Invoice struct {
	ID               string
	InvoiceNumber    int64
	ClientID         string
	IssueDate        Date
	DueDate          Date
	CashReceivedDate *Date // nil = not yet collected
	Status           InvoiceStatus
	Reference        string
	Notes            string
	TotalExCents     Cents
	TotalGstCents    Cents
	TotalIncCents    Cents
	Lines            []InvoiceLine
	CreatedAt        time.Time
}

type InvoiceLine struct {
	ID            string
	InvoiceID     string
	EmployeeID    string
	Description   string
	Quantity      decimal.Decimal
	Unit          Unit
	RateCents     Cents
	AmountExCents Cents
	GstCents      Cents
	GstCodeID     string
}

// InvoiceFilter narrows invoice listings. Zero values mean "any".
type InvoiceFilter struct {
	ClientID string
	From     *Date
	To       *Date
}

type Expense struct {
	ID            string
	SupplierName  string
	Category      string
	AmountExCents Cents
	GstCents      Cents
	GstCodeID     *string
	IncurredDate  Date
	Notes         string
}

type Receipt struct {
	ID           string
	InvoiceID    string
	ReceivedDate Date
	AmountCents  Cents
	Notes        string
}

type ReceiptAllocation struct {
	ID          string
	ReceiptID   string
	InvoiceID   string
	AmountCents Cents
}
