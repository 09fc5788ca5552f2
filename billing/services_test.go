package billing_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/taxman/billing"
	"github.com/warp/taxman/generic"
	"github.com/warp/taxman/store/sqlite"
)

func setupStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	ctx := context.Background()
	now := time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.SaveGstCode(ctx, generic.GstCode{ID: "gst", Code: "GST", RatePercent: decimal.NewFromInt(10), IsActive: true}))
	require.NoError(t, store.SaveClient(ctx, generic.Client{ID: "acme", DisplayName: "Acme", PaymentTermsDays: 14, IsActive: true, CreatedAt: now}))
	require.NoError(t, store.SaveEmployee(ctx, generic.Employee{ID: "alice", FullName: "Alice", BaseRateCents: 15000, DefaultUnit: generic.UnitHour, IsActive: true, CreatedAt: now}))
	return store
}

func date(s string) generic.Date { return generic.MustParseDate(s) }

func datePtr(s string) *generic.Date {
	d := date(s)
	return &d
}

func simpleDraft(issue string) billing.Draft {
	return billing.Draft{
		ClientID:  "acme",
		IssueDate: date(issue),
		Lines: []billing.LineInput{{
			EmployeeID: "alice", Description: "Advisory", Quantity: decimal.NewFromInt(2), GstCodeID: "gst",
		}},
	}
}

// =============================================================================
// RATE BOOK
// =============================================================================

func TestRateBook_RejectsTouchingRange(t *testing.T) {
	// GIVEN: A Q1 rate for (acme, alice)
	store := setupStore(t)
	book := billing.NewRateBook(store, zerolog.Nop())
	ctx := context.Background()

	_, err := book.AddRate(ctx, billing.RateInput{
		ClientID: "acme", EmployeeID: "alice", RateCents: 18000,
		EffectiveFrom: date("2024-07-01"), EffectiveTo: datePtr("2024-09-30"),
	})
	require.NoError(t, err)

	// WHEN: Adding a rate that starts on the last day of Q1
	_, err = book.AddRate(ctx, billing.RateInput{
		ClientID: "acme", EmployeeID: "alice", RateCents: 19000,
		EffectiveFrom: date("2024-09-30"), EffectiveTo: datePtr("2024-12-31"),
	})

	// THEN: It conflicts with the existing rate
	var conflict *generic.RateConflictError
	require.ErrorAs(t, err, &conflict)
	assert.ErrorIs(t, err, generic.ErrConflict)
	assert.Equal(t, int64(18000), int64(conflict.Existing.RateCents))

	// AND: Starting the next day succeeds
	rec, err := book.AddRate(ctx, billing.RateInput{
		ClientID: "acme", EmployeeID: "alice", RateCents: 19000,
		EffectiveFrom: date("2024-10-01"), EffectiveTo: datePtr("2024-12-31"),
	})
	require.NoError(t, err)
	assert.Equal(t, generic.UnitHour, rec.Unit, "unit defaults to hour")

	rates, err := book.List(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, rates, 2)
}

func TestRateBook_UnknownReferences(t *testing.T) {
	store := setupStore(t)
	book := billing.NewRateBook(store, zerolog.Nop())

	_, err := book.AddRate(context.Background(), billing.RateInput{
		ClientID: "nobody", EmployeeID: "alice", RateCents: 100, EffectiveFrom: date("2024-07-01"),
	})
	var ref *generic.ReferenceError
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, "client", ref.Kind)

	_, err = book.AddRate(context.Background(), billing.RateInput{
		ClientID: "acme", EmployeeID: "ghost", RateCents: 100, EffectiveFrom: date("2024-07-01"),
	})
	require.ErrorAs(t, err, &ref)
	assert.Equal(t, "employee", ref.Kind)
}

// =============================================================================
// INVOICES
// =============================================================================

func TestInvoiceService_Create(t *testing.T) {
	store := setupStore(t)
	svc := billing.NewInvoiceService(store, zerolog.Nop())

	inv, err := svc.Create(context.Background(), simpleDraft("2024-08-01"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), inv.InvoiceNumber)
	assert.Equal(t, generic.InvoiceDraft, inv.Status)
	assert.Equal(t, "2024-08-15", inv.DueDate.String(), "due date defaults to issue date + payment terms")
	require.Len(t, inv.Lines, 1)
	assert.Equal(t, generic.UnitHour, inv.Lines[0].Unit)
	assert.Equal(t, generic.Cents(30000), inv.TotalExCents)
	assert.Equal(t, generic.Cents(3000), inv.TotalGstCents)
	assert.Equal(t, generic.Cents(33000), inv.TotalIncCents)

	stored, err := svc.Get(context.Background(), inv.ID)
	require.NoError(t, err)
	assert.Equal(t, inv.TotalIncCents, stored.TotalIncCents)
	require.Len(t, stored.Lines, 1)
	assert.True(t, decimal.NewFromInt(2).Equal(stored.Lines[0].Quantity))
}

func TestInvoiceService_TotalsAreSumsOfLines(t *testing.T) {
	store := setupStore(t)
	svc := billing.NewInvoiceService(store, zerolog.Nop())

	d := simpleDraft("2024-08-01")
	d.Lines = []billing.LineInput{
		{EmployeeID: "alice", Quantity: decimal.RequireFromString("0.33"), GstCodeID: "gst"},
		{EmployeeID: "alice", Quantity: decimal.RequireFromString("1.01"), GstCodeID: "gst", Rate: decimal.RequireFromString("99.99"), OverrideRate: true},
		{EmployeeID: "alice", Quantity: decimal.RequireFromString("3.333"), GstCodeID: "gst"},
	}

	inv, err := svc.Create(context.Background(), d)
	require.NoError(t, err)

	var ex, gst generic.Cents
	for _, l := range inv.Lines {
		ex += l.AmountExCents
		gst += l.GstCents
	}
	assert.Equal(t, ex, inv.TotalExCents)
	assert.Equal(t, gst, inv.TotalGstCents)
	assert.Equal(t, inv.TotalExCents+inv.TotalGstCents, inv.TotalIncCents)
}

func TestInvoiceService_SequentialNumbers(t *testing.T) {
	store := setupStore(t)
	svc := billing.NewInvoiceService(store, zerolog.Nop())
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		inv, err := svc.Create(ctx, simpleDraft("2024-08-01"))
		require.NoError(t, err)
		assert.Equal(t, want, inv.InvoiceNumber)
	}

	// A failed create does not consume a number
	bad := simpleDraft("2024-08-01")
	bad.Lines[0].GstCodeID = "missing"
	_, err := svc.Create(ctx, bad)
	require.Error(t, err)

	inv, err := svc.Create(ctx, simpleDraft("2024-08-01"))
	require.NoError(t, err)
	assert.Equal(t, int64(4), inv.InvoiceNumber)
}

func TestInvoiceService_ConcurrentNumbersAreUnique(t *testing.T) {
	// GIVEN: Many concurrent creates
	store := setupStore(t)
	svc := billing.NewInvoiceService(store, zerolog.Nop())
	const n = 20

	var wg sync.WaitGroup
	numbers := make(chan int64, n)
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			inv, err := svc.Create(context.Background(), simpleDraft("2024-08-01"))
			if err != nil {
				errs <- err
				return
			}
			numbers <- inv.InvoiceNumber
		}()
	}
	wg.Wait()
	close(numbers)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	// THEN: Numbers are exactly 1..n
	seen := make(map[int64]bool)
	for num := range numbers {
		assert.False(t, seen[num], "duplicate invoice number %d", num)
		seen[num] = true
	}
	require.Len(t, seen, n)
	for want := int64(1); want <= n; want++ {
		assert.True(t, seen[want], "missing invoice number %d", want)
	}
}

func TestInvoiceService_Validation(t *testing.T) {
	store := setupStore(t)
	svc := billing.NewInvoiceService(store, zerolog.Nop())

	d := simpleDraft("2024-08-01")
	d.DueDate = datePtr("2024-07-31")
	d.Lines[0].Quantity = decimal.NewFromInt(-1)

	_, err := svc.Create(context.Background(), d)
	var v *generic.ValidationError
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.Fields, "dueDate")
	assert.Contains(t, v.Fields, "lines[0].quantity")

	_, err = svc.Create(context.Background(), billing.Draft{ClientID: "acme", IssueDate: date("2024-08-01")})
	require.ErrorAs(t, err, &v)
	assert.Contains(t, v.Fields, "lines")

	unknown := simpleDraft("2024-08-01")
	unknown.ClientID = "nobody"
	_, err = svc.Create(context.Background(), unknown)
	assert.ErrorIs(t, err, generic.ErrReference)
}

func TestInvoiceService_Update(t *testing.T) {
	store := setupStore(t)
	svc := billing.NewInvoiceService(store, zerolog.Nop())
	ctx := context.Background()

	inv, err := svc.Create(ctx, simpleDraft("2024-08-01"))
	require.NoError(t, err)

	// WHEN: Replacing the lines and recording cash received
	d := simpleDraft("2024-08-01")
	d.Status = generic.InvoicePaid
	d.CashReceivedDate = datePtr("2024-08-20")
	d.Lines = append(d.Lines, billing.LineInput{EmployeeID: "alice", Quantity: decimal.NewFromInt(1), GstCodeID: "gst"})

	updated, err := svc.Update(ctx, inv.ID, d)
	require.NoError(t, err)

	// THEN: Number is kept, totals re-priced
	assert.Equal(t, inv.InvoiceNumber, updated.InvoiceNumber)
	assert.Equal(t, generic.Cents(45000), updated.TotalExCents)

	stored, err := svc.Get(ctx, inv.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Lines, 2)
	require.NotNil(t, stored.CashReceivedDate)
	assert.Equal(t, "2024-08-20", stored.CashReceivedDate.String())
	assert.Equal(t, generic.InvoicePaid, stored.Status)

	_, err = svc.Update(ctx, "missing", d)
	assert.ErrorIs(t, err, generic.ErrNotFound)
}

// replaceFailsStore lets ReplaceInvoice write its rows, then fails, so the
// surrounding transaction has to undo the header update and the new lines.
type replaceFailsStore struct {
	*sqlite.Store
	err error
}

func (s replaceFailsStore) WithTx(ctx context.Context, fn func(generic.Store) error) error {
	return s.Store.WithTx(ctx, func(tx generic.Store) error {
		return fn(replaceFailsTx{Store: tx, err: s.err})
	})
}

type replaceFailsTx struct {
	generic.Store
	err error
}

func (tx replaceFailsTx) ReplaceInvoice(ctx context.Context, inv generic.Invoice) error {
	if err := tx.Store.ReplaceInvoice(ctx, inv); err != nil {
		return err
	}
	return tx.err
}

func TestInvoiceService_FailedUpdateRollsBack(t *testing.T) {
	// GIVEN: A priced invoice with one line
	store := setupStore(t)
	ctx := context.Background()
	inv, err := billing.NewInvoiceService(store, zerolog.Nop()).Create(ctx, simpleDraft("2024-08-01"))
	require.NoError(t, err)

	assertUnchanged := func(t *testing.T) {
		t.Helper()
		stored, err := store.GetInvoice(ctx, inv.ID)
		require.NoError(t, err)
		require.NotNil(t, stored)
		assert.Equal(t, inv.InvoiceNumber, stored.InvoiceNumber)
		assert.Equal(t, inv.TotalExCents, stored.TotalExCents)
		assert.Equal(t, inv.TotalGstCents, stored.TotalGstCents)
		assert.Nil(t, stored.CashReceivedDate)
		require.Len(t, stored.Lines, 1)
		assert.Equal(t, inv.Lines[0].ID, stored.Lines[0].ID)
	}

	grown := simpleDraft("2024-08-01")
	grown.CashReceivedDate = datePtr("2024-08-20")
	grown.Lines = append(grown.Lines, billing.LineInput{EmployeeID: "alice", Quantity: decimal.NewFromInt(3), GstCodeID: "gst"})

	t.Run("failure after rows are rewritten", func(t *testing.T) {
		// WHEN: The replace writes header and lines, then errors
		diskFull := errors.New("disk I/O error")
		svc := billing.NewInvoiceService(replaceFailsStore{Store: store, err: diskFull}, zerolog.Nop())
		_, err := svc.Update(ctx, inv.ID, grown)

		// THEN: Nothing of the update survives
		assert.ErrorIs(t, err, diskFull)
		assertUnchanged(t)
	})

	t.Run("unknown employee on an override line", func(t *testing.T) {
		bad := grown
		bad.Lines = append([]billing.LineInput{}, grown.Lines...)
		bad.Lines[1] = billing.LineInput{EmployeeID: "ghost", Quantity: decimal.NewFromInt(1), GstCodeID: "gst", OverrideRate: true, Rate: decimal.NewFromInt(100)}

		_, err := billing.NewInvoiceService(store, zerolog.Nop()).Update(ctx, inv.ID, bad)

		var ref *generic.ReferenceError
		require.ErrorAs(t, err, &ref)
		assert.Equal(t, "ghost", ref.ID)
		assertUnchanged(t)
	})

	// A failed create consumes no number either
	svc := billing.NewInvoiceService(replaceFailsStore{Store: store}, zerolog.Nop())
	ghost := simpleDraft("2024-08-02")
	ghost.Lines[0] = billing.LineInput{EmployeeID: "ghost", Quantity: decimal.NewFromInt(1), GstCodeID: "gst", OverrideRate: true, Rate: decimal.NewFromInt(100)}
	_, err = svc.Create(ctx, ghost)
	require.ErrorIs(t, err, generic.ErrReference)

	next, err := svc.Create(ctx, simpleDraft("2024-08-02"))
	require.NoError(t, err)
	assert.Equal(t, inv.InvoiceNumber+1, next.InvoiceNumber)
}

func TestInvoiceService_DeleteGuardedByReceipts(t *testing.T) {
	store := setupStore(t)
	svc := billing.NewInvoiceService(store, zerolog.Nop())
	receipts := billing.NewReceiptService(store, zerolog.Nop())
	ctx := context.Background()

	paid, err := svc.Create(ctx, simpleDraft("2024-08-01"))
	require.NoError(t, err)
	open, err := svc.Create(ctx, simpleDraft("2024-08-02"))
	require.NoError(t, err)

	_, err = receipts.Record(ctx, billing.ReceiptInput{InvoiceID: paid.ID, ReceivedDate: date("2024-08-20"), AmountCents: paid.TotalIncCents})
	require.NoError(t, err)

	// WHEN/THEN: The invoice with a receipt cannot be deleted
	err = svc.Delete(ctx, paid.ID)
	var integrity *generic.IntegrityError
	require.ErrorAs(t, err, &integrity)
	assert.ErrorIs(t, err, generic.ErrIntegrity)
	_, err = svc.Get(ctx, paid.ID)
	assert.NoError(t, err)

	// AND: The one without is removed
	require.NoError(t, svc.Delete(ctx, open.ID))
	_, err = svc.Get(ctx, open.ID)
	assert.ErrorIs(t, err, generic.ErrNotFound)

	assert.ErrorIs(t, svc.Delete(ctx, open.ID), generic.ErrNotFound)
}

func TestInvoiceService_List(t *testing.T) {
	store := setupStore(t)
	svc := billing.NewInvoiceService(store, zerolog.Nop())
	ctx := context.Background()

	for _, issue := range []string{"2024-07-15", "2024-08-15", "2024-10-15"} {
		_, err := svc.Create(ctx, simpleDraft(issue))
		require.NoError(t, err)
	}

	all, err := svc.List(ctx, generic.InvoiceFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	q1, err := svc.List(ctx, generic.InvoiceFilter{ClientID: "acme", From: datePtr("2024-07-01"), To: datePtr("2024-09-30")})
	require.NoError(t, err)
	require.Len(t, q1, 2)
	assert.Equal(t, int64(1), q1[0].InvoiceNumber)
}

// =============================================================================
// EXPENSES AND RECEIPTS
// =============================================================================

func TestExpenseService_Record(t *testing.T) {
	store := setupStore(t)
	svc := billing.NewExpenseService(store, zerolog.Nop())
	ctx := context.Background()
	gst := "gst"

	// GST derived from the code
	e, err := svc.Record(ctx, billing.ExpenseInput{SupplierName: "AWS", AmountExCents: 12345, GstCodeID: &gst, IncurredDate: date("2024-08-01")})
	require.NoError(t, err)
	assert.Equal(t, generic.Cents(1235), e.GstCents)

	// Explicit GST wins
	explicit := generic.Cents(1000)
	e, err = svc.Record(ctx, billing.ExpenseInput{SupplierName: "AWS", AmountExCents: 12345, GstCents: &explicit, GstCodeID: &gst, IncurredDate: date("2024-08-02")})
	require.NoError(t, err)
	assert.Equal(t, generic.Cents(1000), e.GstCents)

	// No code, no GST
	empty := ""
	e, err = svc.Record(ctx, billing.ExpenseInput{SupplierName: "Cafe", AmountExCents: 4500, GstCodeID: &empty, IncurredDate: date("2024-08-03")})
	require.NoError(t, err)
	assert.Nil(t, e.GstCodeID)
	assert.Equal(t, generic.Cents(0), e.GstCents)

	// Unknown code
	unknown := "nope"
	_, err = svc.Record(ctx, billing.ExpenseInput{SupplierName: "X", AmountExCents: 1, GstCodeID: &unknown, IncurredDate: date("2024-08-03")})
	assert.ErrorIs(t, err, generic.ErrReference)

	listed, err := svc.List(ctx, datePtr("2024-08-02"), nil)
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}

func TestReceiptService_Record(t *testing.T) {
	store := setupStore(t)
	receipts := billing.NewReceiptService(store, zerolog.Nop())

	_, err := receipts.Record(context.Background(), billing.ReceiptInput{InvoiceID: "missing", ReceivedDate: date("2024-08-01"), AmountCents: 100})
	assert.ErrorIs(t, err, generic.ErrReference)

	_, err = receipts.Record(context.Background(), billing.ReceiptInput{InvoiceID: "x", ReceivedDate: date("2024-08-01")})
	assert.ErrorIs(t, err, generic.ErrValidation)
}
