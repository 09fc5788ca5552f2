package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/taxman/bas"
	"github.com/warp/taxman/generic"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func date(s string) generic.Date { return generic.MustParseDate(s) }

func datePtr(s string) *generic.Date {
	d := date(s)
	return &d
}

var created = time.Date(2024, time.July, 1, 9, 0, 0, 0, time.UTC)

func seedReference(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.SaveGstCode(ctx, generic.GstCode{ID: "gst", Code: "GST", Description: "Taxable", RatePercent: decimal.RequireFromString("10"), IsActive: true}))
	require.NoError(t, s.SaveClient(ctx, generic.Client{ID: "acme", DisplayName: "Acme", PaymentTermsDays: 14, IsActive: true, CreatedAt: created}))
	require.NoError(t, s.SaveEmployee(ctx, generic.Employee{ID: "alice", FullName: "Alice", BaseRateCents: 15000, DefaultUnit: generic.UnitHour, IsActive: true, CreatedAt: created}))
}

func invoice(id string, number int64, issue string, received *generic.Date, ex, gst generic.Cents) generic.Invoice {
	return generic.Invoice{
		ID: id, InvoiceNumber: number, ClientID: "acme",
		IssueDate: date(issue), DueDate: date(issue).AddDays(14), CashReceivedDate: received,
		Status: generic.InvoiceSubmitted, TotalExCents: ex, TotalGstCents: gst, TotalIncCents: ex + gst,
		CreatedAt: created,
		Lines: []generic.InvoiceLine{{
			ID: id + "-l1", EmployeeID: "alice", Quantity: decimal.RequireFromString("1.5"), Unit: generic.UnitHour,
			RateCents: 15000, AmountExCents: ex, GstCents: gst, GstCodeID: "gst",
		}},
	}
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

func TestSettings_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	got, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "no settings before the first save")

	want := generic.CompanySettings{
		LegalName: "Warp Pty Ltd", ABN: "51824753556",
		GstBasis: generic.BasisCash, BasFrequency: generic.FrequencyMonthly, FYStartMonth: time.July,
	}
	require.NoError(t, store.SaveSettings(ctx, want))
	want.GstBasis = generic.BasisAccrual
	require.NoError(t, store.SaveSettings(ctx, want))

	got, err = store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, &want, got)
}

func TestGstCodes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedReference(t, store)

	code, err := store.GetGstCode(ctx, "gst")
	require.NoError(t, err)
	require.NotNil(t, code)
	assert.True(t, decimal.NewFromInt(10).Equal(code.RatePercent))

	missing, err := store.GetGstCode(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// Code text is unique across ids
	err = store.SaveGstCode(ctx, generic.GstCode{ID: "other", Code: "GST", RatePercent: decimal.Zero})
	assert.ErrorIs(t, err, generic.ErrDuplicate)
	assert.ErrorIs(t, err, generic.ErrConflict)
}

func TestClientsAndEmployees(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedReference(t, store)

	rate := generic.Cents(20000)
	require.NoError(t, store.SaveClient(ctx, generic.Client{ID: "globex", DisplayName: "Globex", DefaultRateCents: &rate, PaymentTermsDays: 30, IsActive: true, CreatedAt: created}))

	c, err := store.GetClient(ctx, "globex")
	require.NoError(t, err)
	require.NotNil(t, c.DefaultRateCents)
	assert.Equal(t, rate, *c.DefaultRateCents)
	assert.Equal(t, 30, c.PaymentTermsDays)
	assert.True(t, c.CreatedAt.Equal(created))

	acme, err := store.GetClient(ctx, "acme")
	require.NoError(t, err)
	assert.Nil(t, acme.DefaultRateCents)

	clients, err := store.ListClients(ctx)
	require.NoError(t, err)
	assert.Len(t, clients, 2)

	e, err := store.GetEmployee(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, generic.Cents(15000), e.BaseRateCents)
	assert.Equal(t, generic.UnitHour, e.DefaultUnit)
}

// =============================================================================
// RATES
// =============================================================================

func TestRatesEffectiveOn(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedReference(t, store)

	require.NoError(t, store.InsertRate(ctx, generic.RateRecord{
		ID: "q1", ClientID: "acme", EmployeeID: "alice", RateCents: 18000, Unit: generic.UnitHour,
		EffectiveFrom: date("2024-07-01"), EffectiveTo: datePtr("2024-09-30"), CreatedAt: created,
	}))
	require.NoError(t, store.InsertRate(ctx, generic.RateRecord{
		ID: "q2on", ClientID: "acme", EmployeeID: "alice", RateCents: 19500, Unit: generic.UnitHour,
		EffectiveFrom: date("2024-10-01"), CreatedAt: created,
	}))

	onEnd, err := store.RatesEffectiveOn(ctx, "acme", "alice", date("2024-09-30"))
	require.NoError(t, err)
	require.Len(t, onEnd, 1)
	assert.Equal(t, "q1", onEnd[0].ID)
	require.NotNil(t, onEnd[0].EffectiveTo)

	later, err := store.RatesEffectiveOn(ctx, "acme", "alice", date("2030-01-01"))
	require.NoError(t, err)
	require.Len(t, later, 1)
	assert.Equal(t, "q2on", later[0].ID)
	assert.Nil(t, later[0].EffectiveTo)

	before, err := store.RatesEffectiveOn(ctx, "acme", "alice", date("2024-06-30"))
	require.NoError(t, err)
	assert.Empty(t, before)

	pair, err := store.RatesForPair(ctx, "acme", "alice")
	require.NoError(t, err)
	require.Len(t, pair, 2)
	assert.Equal(t, "q1", pair[0].ID)

	// Foreign keys are enforced
	err = store.InsertRate(ctx, generic.RateRecord{
		ID: "bad", ClientID: "nobody", EmployeeID: "alice", RateCents: 1, Unit: generic.UnitHour,
		EffectiveFrom: date("2024-07-01"), CreatedAt: created,
	})
	assert.ErrorIs(t, err, generic.ErrReference)
}

// =============================================================================
// INVOICES
// =============================================================================

func TestNextInvoiceNumber_RollbackReleasesNumber(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	var first int64
	require.NoError(t, store.WithTx(ctx, func(tx generic.Store) error {
		var err error
		first, err = tx.NextInvoiceNumber(ctx)
		return err
	}))
	assert.Equal(t, int64(1), first)

	rollback := errors.New("abort")
	err := store.WithTx(ctx, func(tx generic.Store) error {
		n, err := tx.NextInvoiceNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)
		return rollback
	})
	assert.ErrorIs(t, err, rollback)

	require.NoError(t, store.WithTx(ctx, func(tx generic.Store) error {
		n, err := tx.NextInvoiceNumber(ctx)
		assert.Equal(t, int64(2), n)
		return err
	}))
}

func TestInvoices_InsertGetReplaceDelete(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedReference(t, store)

	inv := invoice("inv-1", 1, "2024-08-01", nil, 22500, 2250)
	require.NoError(t, store.InsertInvoice(ctx, inv))

	got, err := store.GetInvoice(ctx, "inv-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Nil(t, got.CashReceivedDate)
	assert.Equal(t, "2024-08-15", got.DueDate.String())
	require.Len(t, got.Lines, 1)
	assert.Equal(t, "1.5", got.Lines[0].Quantity.String())

	// Duplicate number
	dup := invoice("inv-dup", 1, "2024-08-01", nil, 1, 0)
	dup.Lines = nil
	assert.ErrorIs(t, store.InsertInvoice(ctx, dup), generic.ErrDuplicate)

	// Replace swaps the line set
	inv.CashReceivedDate = datePtr("2024-08-20")
	inv.Lines = append(inv.Lines, generic.InvoiceLine{
		ID: "inv-1-l2", EmployeeID: "alice", Quantity: decimal.NewFromInt(1), Unit: generic.UnitHour,
		RateCents: 15000, AmountExCents: 15000, GstCents: 1500, GstCodeID: "gst",
	})
	inv.Lines[0].ID = "inv-1-l1b"
	require.NoError(t, store.ReplaceInvoice(ctx, inv))

	got, err = store.GetInvoice(ctx, "inv-1")
	require.NoError(t, err)
	require.Len(t, got.Lines, 2)
	assert.Equal(t, "inv-1-l1b", got.Lines[0].ID)
	require.NotNil(t, got.CashReceivedDate)

	assert.ErrorIs(t, store.ReplaceInvoice(ctx, invoice("missing", 9, "2024-08-01", nil, 1, 0)), generic.ErrNotFound)

	// Delete removes the items too
	require.NoError(t, store.DeleteInvoice(ctx, "inv-1"))
	got, err = store.GetInvoice(ctx, "inv-1")
	require.NoError(t, err)
	assert.Nil(t, got)

	var items int
	require.NoError(t, store.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM invoice_items").Scan(&items))
	assert.Equal(t, 0, items)
}

func TestCountInvoiceReceipts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedReference(t, store)
	require.NoError(t, store.InsertInvoice(ctx, invoice("inv-1", 1, "2024-08-01", nil, 100, 10)))

	n, err := store.CountInvoiceReceipts(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	require.NoError(t, store.InsertReceipt(ctx,
		generic.Receipt{ID: "r1", InvoiceID: "inv-1", ReceivedDate: date("2024-08-10"), AmountCents: 110},
		[]generic.ReceiptAllocation{{ID: "a1", InvoiceID: "inv-1", AmountCents: 110}},
	))

	n, err = store.CountInvoiceReceipts(ctx, "inv-1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

// =============================================================================
// LEDGER READER
// =============================================================================

func TestLedgerReader(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedReference(t, store)

	require.NoError(t, store.InsertInvoice(ctx, invoice("paid-late", 1, "2024-07-05", datePtr("2024-10-01"), 60000, 6000)))
	require.NoError(t, store.InsertInvoice(ctx, invoice("open", 2, "2024-09-30", nil, 20000, 2000)))
	gst := "gst"
	require.NoError(t, store.InsertExpense(ctx, generic.Expense{ID: "e1", SupplierName: "AWS", AmountExCents: 10000, GstCents: 1000, GstCodeID: &gst, IncurredDate: date("2024-07-01")}))
	require.NoError(t, store.InsertExpense(ctx, generic.Expense{ID: "e2", SupplierName: "Cafe", AmountExCents: 4500, IncurredDate: date("2024-09-30")}))

	q1 := generic.Period{Start: date("2024-07-01"), End: date("2024-09-30")}
	q2 := generic.Period{Start: date("2024-10-01"), End: date("2024-12-31")}

	accrual, err := store.SalesTotals(ctx, generic.ByIssueDate, q1)
	require.NoError(t, err)
	assert.Equal(t, generic.GstTotals{ExCents: 80000, GstCents: 8000}, accrual)

	cashQ1, err := store.SalesTotals(ctx, generic.ByCashReceivedDate, q1)
	require.NoError(t, err)
	assert.Equal(t, generic.GstTotals{}, cashQ1)

	cashQ2, err := store.SalesTotals(ctx, generic.ByCashReceivedDate, q2)
	require.NoError(t, err)
	assert.Equal(t, generic.GstTotals{ExCents: 60000, GstCents: 6000}, cashQ2)

	purchases, err := store.PurchaseTotals(ctx, q1)
	require.NoError(t, err)
	assert.Equal(t, generic.GstTotals{ExCents: 14500, GstCents: 1000}, purchases)

	open, err := store.UncollectedInvoices(ctx, q1)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, "open", open[0].ID)

	uncoded, err := store.ExpensesWithoutGstCode(ctx, q1)
	require.NoError(t, err)
	require.Len(t, uncoded, 1)
	assert.Equal(t, "e2", uncoded[0].ID)

	_, err = store.SalesTotals(ctx, generic.InvoiceDateField("due_date"), q1)
	assert.Error(t, err)
}

// =============================================================================
// BAS RUNS AND RESET
// =============================================================================

func TestRuns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	q1 := generic.Period{Start: date("2024-07-01"), End: date("2024-09-30")}

	exists, err := store.RunExists(ctx, generic.BasisAccrual, q1)
	require.NoError(t, err)
	assert.False(t, exists)

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	assert.NotNil(t, runs)
	assert.Empty(t, runs)

	run := bas.Run{
		ID: "run-1", Label: "Q1 FY 2024-25", Frequency: generic.FrequencyQuarterly, Basis: generic.BasisAccrual,
		PeriodStart: q1.Start, PeriodEnd: q1.End, CreatedAt: created,
		Summary: bas.Summary{Basis: generic.BasisAccrual, PeriodStart: q1.Start, PeriodEnd: q1.End, SalesGstCents: 6000, NetGstCents: 5000},
	}
	require.NoError(t, store.SaveRun(ctx, run))

	exists, err = store.RunExists(ctx, generic.BasisAccrual, q1)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = store.RunExists(ctx, generic.BasisCash, q1)
	require.NoError(t, err)
	assert.False(t, exists)

	runs, err = store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, generic.Cents(5000), runs[0].Summary.NetGstCents)
	assert.Equal(t, "2024-09-30", runs[0].PeriodEnd.String())

	run.ID = "run-2"
	assert.ErrorIs(t, store.SaveRun(ctx, run), generic.ErrDuplicate)
}

func TestReset(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	seedReference(t, store)
	require.NoError(t, store.InsertInvoice(ctx, invoice("inv-1", 1, "2024-08-01", nil, 100, 10)))

	require.NoError(t, store.Reset(ctx))

	clients, err := store.ListClients(ctx)
	require.NoError(t, err)
	assert.Empty(t, clients)

	invoices, err := store.ListInvoices(ctx, generic.InvoiceFilter{})
	require.NoError(t, err)
	assert.Empty(t, invoices)

	require.NoError(t, store.WithTx(ctx, func(tx generic.Store) error {
		n, err := tx.NextInvoiceNumber(ctx)
		assert.Equal(t, int64(1), n, "numbering restarts after reset")
		return err
	}))
}
