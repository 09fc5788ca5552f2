/*
store.go - Persistence interfaces for reference data and transaction rows

PURPOSE:
  Defines the boundary between the engines and the relational store.
  The engines only ever see these interfaces; store/sqlite provides the
  production implementation and generic/store provides an in-memory
  read model for tests.

KEY INTERFACES:
  ReferenceStore: settings, GST codes, clients, employees
  RateStore:      effective-dated rate records (insert-only)
  InvoiceStore:   invoices + lines, numbering counter, receipt references
  ExpenseStore:   purchase rows
  ReceiptStore:   receipts and their allocations
  LedgerReader:   period aggregates used by BAS
  TxStore:        all of the above plus WithTx for atomic read-then-write

ATOMICITY:
  Invoice numbering and rate-overlap validation are read-then-write.
  Both run inside WithTx so the read and the write see the same
  snapshot and concurrent writers are serialised.

LOOKUPS:
  Get* methods return (nil, nil) when the row does not exist. Turning
  that into a NotFoundError or ReferenceError is the caller's decision.

SEE ALSO:
  - store/sqlite: SQLite implementation
  - generic/store/memory.go: In-memory implementation for tests
*/
package generic

import "context"

// =============================================================================
// REFERENCE DATA
// =============================================================================

type ReferenceStore interface {
	GetSettings(ctx context.Context) (*CompanySettings, error)
	SaveSettings(ctx context.Context, s CompanySettings) error

	SaveGstCode(ctx context.Context, code GstCode) error
	GetGstCode(ctx context.Context, id string) (*GstCode, error)
	ListGstCodes(ctx context.Context) ([]GstCode, error)

	SaveClient(ctx context.Context, c Client) error
	GetClient(ctx context.Context, id string) (*Client, error)
	ListClients(ctx context.Context) ([]Client, error)

	SaveEmployee(ctx context.Context, e Employee) error
	GetEmployee(ctx context.Context, id string) (*Employee, error)
	ListEmployees(ctx context.Context) ([]Employee, error)
}

// =============================================================================
// RATES - Insert-only. No Update, no Delete.
// =============================================================================

type RateStore interface {
	InsertRate(ctx context.Context, r RateRecord) error

	// RatesForPair returns every rate of a (client, employee) pair.
	RatesForPair(ctx context.Context, clientID, employeeID string) ([]RateRecord, error)

	// RatesEffectiveOn returns the pair's rates whose range covers the day,
	// latest EffectiveFrom first.
	RatesEffectiveOn(ctx context.Context, clientID, employeeID string, on Date) ([]RateRecord, error)

	// ListRates returns rates ordered by EffectiveFrom. Empty clientID = all clients.
	ListRates(ctx context.Context, clientID string) ([]RateRecord, error)
}

// =============================================================================
// INVOICES
// =============================================================================

type InvoiceStore interface {
	// NextInvoiceNumber atomically reserves the next sequential number.
	// Must be called inside WithTx so a rollback releases the number.
	NextInvoiceNumber(ctx context.Context) (int64, error)

	InsertInvoice(ctx context.Context, inv Invoice) error

	// ReplaceInvoice rewrites the header and swaps the full line set.
	ReplaceInvoice(ctx context.Context, inv Invoice) error

	GetInvoice(ctx context.Context, id string) (*Invoice, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)
	DeleteInvoice(ctx context.Context, id string) error

	// CountInvoiceReceipts counts receipts and receipt allocations pointing at the invoice.
	CountInvoiceReceipts(ctx context.Context, invoiceID string) (int, error)
}

type ExpenseStore interface {
	InsertExpense(ctx context.Context, e Expense) error
	GetExpense(ctx context.Context, id string) (*Expense, error)
	ListExpenses(ctx context.Context, from, to *Date) ([]Expense, error)
}

type ReceiptStore interface {
	InsertReceipt(ctx context.Context, r Receipt, allocations []ReceiptAllocation) error
}

// =============================================================================
// LEDGER READER - Period aggregates for BAS (read-only)
// =============================================================================

type LedgerReader interface {
	// SalesTotals sums invoice ex/GST totals whose dateField lies in p.
	// Rows with a NULL dateField never match.
	SalesTotals(ctx context.Context, dateField InvoiceDateField, p Period) (GstTotals, error)

	// PurchaseTotals sums expense ex/GST amounts incurred in p.
	PurchaseTotals(ctx context.Context, p Period) (GstTotals, error)

	// UncollectedInvoices returns invoices issued in p with no cash received date.
	UncollectedInvoices(ctx context.Context, p Period) ([]Invoice, error)

	// ExpensesWithoutGstCode returns expenses incurred in p that carry no GST code.
	ExpensesWithoutGstCode(ctx context.Context, p Period) ([]Expense, error)
}

// =============================================================================
// AGGREGATE + TRANSACTIONAL STORE
// =============================================================================

type Store interface {
	ReferenceStore
	RateStore
	InvoiceStore
	ExpenseStore
	ReceiptStore
	LedgerReader
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	// If fn returns nil, transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
