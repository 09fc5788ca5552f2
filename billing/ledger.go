package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/warp/taxman/generic"
)

// =============================================================================
// EXPENSES
// =============================================================================

type ExpenseInput struct {
	SupplierName  string
	Category      string
	AmountExCents generic.Cents
	GstCents      *generic.Cents // nil = derived from the GST code
	GstCodeID     *string
	IncurredDate  generic.Date
	Notes         string
}

func (in ExpenseInput) Validate() error {
	v := generic.NewValidationError()
	if strings.TrimSpace(in.SupplierName) == "" {
		v.Add("supplierName", "is required")
	}
	if in.AmountExCents < 0 {
		v.Add("amountExCents", "must not be negative")
	}
	if in.GstCents != nil && *in.GstCents < 0 {
		v.Add("gstCents", "must not be negative")
	}
	if in.IncurredDate.IsZero() {
		v.Add("incurredDate", "is required")
	}
	return v.OrNil()
}

type ExpenseService struct {
	store generic.TxStore
	log   zerolog.Logger
}

func NewExpenseService(store generic.TxStore, log zerolog.Logger) *ExpenseService {
	return &ExpenseService{store: store, log: log.With().Str("component", "expenses").Logger()}
}

// Record stores a purchase. When GstCents is omitted it is computed from the
// GST code's rate; with neither, the expense carries no GST.
func (s *ExpenseService) Record(ctx context.Context, in ExpenseInput) (*generic.Expense, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	expense := generic.Expense{
		ID:            uuid.NewString(),
		SupplierName:  strings.TrimSpace(in.SupplierName),
		Category:      in.Category,
		AmountExCents: in.AmountExCents,
		GstCodeID:     in.GstCodeID,
		IncurredDate:  in.IncurredDate,
		Notes:         in.Notes,
	}
	if in.GstCodeID != nil && *in.GstCodeID == "" {
		expense.GstCodeID = nil
	}

	err := s.store.WithTx(ctx, func(tx generic.Store) error {
		if expense.GstCodeID != nil {
			code, err := tx.GetGstCode(ctx, *expense.GstCodeID)
			if err != nil {
				return fmt.Errorf("loading GST code: %w", err)
			}
			if code == nil {
				return &generic.ReferenceError{Kind: "GST code", ID: *expense.GstCodeID}
			}
			if in.GstCents == nil {
				expense.GstCents = expense.AmountExCents.Percent(code.RatePercent)
			}
		}
		if in.GstCents != nil {
			expense.GstCents = *in.GstCents
		}
		return tx.InsertExpense(ctx, expense)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("expense_id", expense.ID).
		Str("supplier", expense.SupplierName).
		Int64("gst_cents", int64(expense.GstCents)).
		Msg("expense recorded")
	return &expense, nil
}

func (s *ExpenseService) List(ctx context.Context, from, to *generic.Date) ([]generic.Expense, error) {
	return s.store.ListExpenses(ctx, from, to)
}

func (s *ExpenseService) Get(ctx context.Context, id string) (*generic.Expense, error) {
	e, err := s.store.GetExpense(ctx, id)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, &generic.NotFoundError{Kind: "expense", ID: id}
	}
	return e, nil
}

// =============================================================================
// RECEIPTS
// =============================================================================

type ReceiptInput struct {
	InvoiceID    string
	ReceivedDate generic.Date
	AmountCents  generic.Cents
	Notes        string
}

func (in ReceiptInput) Validate() error {
	v := generic.NewValidationError()
	if strings.TrimSpace(in.InvoiceID) == "" {
		v.Add("invoiceId", "is required")
	}
	if in.ReceivedDate.IsZero() {
		v.Add("receivedDate", "is required")
	}
	if in.AmountCents <= 0 {
		v.Add("amountCents", "must be positive")
	}
	return v.OrNil()
}

type ReceiptService struct {
	store generic.TxStore
	log   zerolog.Logger
}

func NewReceiptService(store generic.TxStore, log zerolog.Logger) *ReceiptService {
	return &ReceiptService{store: store, log: log.With().Str("component", "receipts").Logger()}
}

// Record stores a receipt and allocates its full amount to the invoice.
func (s *ReceiptService) Record(ctx context.Context, in ReceiptInput) (*generic.Receipt, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	receipt := generic.Receipt{
		ID:           uuid.NewString(),
		InvoiceID:    in.InvoiceID,
		ReceivedDate: in.ReceivedDate,
		AmountCents:  in.AmountCents,
		Notes:        in.Notes,
	}
	allocation := generic.ReceiptAllocation{
		ID:          uuid.NewString(),
		ReceiptID:   receipt.ID,
		InvoiceID:   in.InvoiceID,
		AmountCents: in.AmountCents,
	}

	err := s.store.WithTx(ctx, func(tx generic.Store) error {
		inv, err := tx.GetInvoice(ctx, in.InvoiceID)
		if err != nil {
			return fmt.Errorf("loading invoice: %w", err)
		}
		if inv == nil {
			return &generic.ReferenceError{Kind: "invoice", ID: in.InvoiceID}
		}
		return tx.InsertReceipt(ctx, receipt, []generic.ReceiptAllocation{allocation})
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("receipt_id", receipt.ID).
		Str("invoice_id", receipt.InvoiceID).
		Int64("amount_cents", int64(receipt.AmountCents)).
		Msg("receipt recorded")
	return &receipt, nil
}
