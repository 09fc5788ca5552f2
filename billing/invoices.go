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

// =============================================================================
// DRAFT - Caller-supplied invoice content
// =============================================================================

// Draft is an invoice as submitted by a caller, before numbering and pricing.
type Draft struct {
	ClientID         string
	IssueDate        generic.Date
	DueDate          *generic.Date // nil = issue date + client payment terms
	CashReceivedDate *generic.Date
	Status           generic.InvoiceStatus
	Reference        string
	Notes            string
	Lines            []LineInput
}

// Validate checks the draft's shape without touching storage.
func (d Draft) Validate() error {
	v := generic.NewValidationError()
	if strings.TrimSpace(d.ClientID) == "" {
		v.Add("clientId", "is required")
	}
	if d.IssueDate.IsZero() {
		v.Add("issueDate", "is required")
	}
	if d.DueDate != nil && !d.IssueDate.IsZero() && d.DueDate.Before(d.IssueDate) {
		v.Add("dueDate", "must not be before issueDate")
	}
	if d.Status != "" && !d.Status.Valid() {
		v.Add("status", "must be draft, submitted, paid or void")
	}
	if len(d.Lines) == 0 {
		v.Add("lines", "at least one line is required")
	}
	for i, l := range d.Lines {
		prefix := fmt.Sprintf("lines[%d].", i)
		if strings.TrimSpace(l.EmployeeID) == "" {
			v.Add(prefix+"employeeId", "is required")
		}
		if strings.TrimSpace(l.GstCodeID) == "" {
			v.Add(prefix+"gstCodeId", "is required")
		}
		if l.Quantity.IsNegative() {
			v.Add(prefix+"quantity", "must not be negative")
		}
		if l.Unit != "" && !l.Unit.Valid() {
			v.Add(prefix+"unit", "must be hour, day or item")
		}
		if l.Rate.IsNegative() {
			v.Add(prefix+"rate", "must not be negative")
		}
	}
	return v.OrNil()
}

func (d Draft) withDefaults() Draft {
	if d.Status == "" {
		d.Status = generic.InvoiceDraft
	}
	lines := make([]LineInput, len(d.Lines))
	for i, l := range d.Lines {
		if l.Unit == "" {
			l.Unit = generic.UnitHour
		}
		lines[i] = l
	}
	d.Lines = lines
	return d
}

// =============================================================================
// SERVICE
// =============================================================================

// InvoiceService owns invoice writes. Every write is one transaction.
type InvoiceService struct {
	store generic.TxStore
	now   func() time.Time
	log   zerolog.Logger
}

func NewInvoiceService(store generic.TxStore, log zerolog.Logger) *InvoiceService {
	return &InvoiceService{store: store, now: time.Now, log: log.With().Str("component", "invoices").Logger()}
}

// Create prices and numbers a new invoice.
func (s *InvoiceService) Create(ctx context.Context, d Draft) (*generic.Invoice, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	d = d.withDefaults()

	var created generic.Invoice
	err := s.store.WithTx(ctx, func(tx generic.Store) error {
		client, err := tx.GetClient(ctx, d.ClientID)
		if err != nil {
			return fmt.Errorf("loading client: %w", err)
		}
		if client == nil {
			return &generic.ReferenceError{Kind: "client", ID: d.ClientID}
		}

		priced, err := NewPricer(tx).Price(ctx, d.ClientID, d.IssueDate, d.Lines)
		if err != nil {
			return err
		}

		number, err := tx.NextInvoiceNumber(ctx)
		if err != nil {
			return fmt.Errorf("reserving invoice number: %w", err)
		}

		created = assemble(uuid.NewString(), number, d, client, priced, s.now().UTC())
		return tx.InsertInvoice(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("invoice_id", created.ID).
		Int64("invoice_number", created.InvoiceNumber).
		Str("client_id", created.ClientID).
		Int64("total_inc_cents", int64(created.TotalIncCents)).
		Msg("invoice created")
	return &created, nil
}

// Update re-prices the invoice and replaces all of its lines. The invoice
// number and creation time are kept.
func (s *InvoiceService) Update(ctx context.Context, id string, d Draft) (*generic.Invoice, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	d = d.withDefaults()

	var updated generic.Invoice
	err := s.store.WithTx(ctx, func(tx generic.Store) error {
		existing, err := tx.GetInvoice(ctx, id)
		if err != nil {
			return fmt.Errorf("loading invoice: %w", err)
		}
		if existing == nil {
			return &generic.NotFoundError{Kind: "invoice", ID: id}
		}

		client, err := tx.GetClient(ctx, d.ClientID)
		if err != nil {
			return fmt.Errorf("loading client: %w", err)
		}
		if client == nil {
			return &generic.ReferenceError{Kind: "client", ID: d.ClientID}
		}

		priced, err := NewPricer(tx).Price(ctx, d.ClientID, d.IssueDate, d.Lines)
		if err != nil {
			return err
		}

		updated = assemble(id, existing.InvoiceNumber, d, client, priced, existing.CreatedAt)
		return tx.ReplaceInvoice(ctx, updated)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("invoice_id", updated.ID).
		Int64("invoice_number", updated.InvoiceNumber).
		Int("lines", len(updated.Lines)).
		Msg("invoice updated")
	return &updated, nil
}

// Delete removes an invoice and its lines unless a receipt or receipt
// allocation still references it.
func (s *InvoiceService) Delete(ctx context.Context, id string) error {
	err := s.store.WithTx(ctx, func(tx generic.Store) error {
		existing, err := tx.GetInvoice(ctx, id)
		if err != nil {
			return fmt.Errorf("loading invoice: %w", err)
		}
		if existing == nil {
			return &generic.NotFoundError{Kind: "invoice", ID: id}
		}

		refs, err := tx.CountInvoiceReceipts(ctx, id)
		if err != nil {
			return fmt.Errorf("counting receipts: %w", err)
		}
		if refs > 0 {
			return &generic.IntegrityError{
				Kind:   "invoice",
				ID:     id,
				Reason: fmt.Sprintf("%d receipt record(s) reference it", refs),
			}
		}

		return tx.DeleteInvoice(ctx, id)
	})
	if err != nil {
		return err
	}

	s.log.Info().Str("invoice_id", id).Msg("invoice deleted")
	return nil
}

func (s *InvoiceService) Get(ctx context.Context, id string) (*generic.Invoice, error) {
	inv, err := s.store.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, &generic.NotFoundError{Kind: "invoice", ID: id}
	}
	return inv, nil
}

func (s *InvoiceService) List(ctx context.Context, filter generic.InvoiceFilter) ([]generic.Invoice, error) {
	return s.store.ListInvoices(ctx, filter)
}

func assemble(id string, number int64, d Draft, client *generic.Client, priced PricedInvoice, createdAt time.Time) generic.Invoice {
	due := d.IssueDate.AddDays(client.PaymentTermsDays)
	if d.DueDate != nil {
		due = *d.DueDate
	}

	lines := priced.InvoiceLines()
	for i := range lines {
		lines[i].ID = uuid.NewString()
		lines[i].InvoiceID = id
	}

	return generic.Invoice{
		ID:               id,
		InvoiceNumber:    number,
		ClientID:         d.ClientID,
		IssueDate:        d.IssueDate,
		DueDate:          due,
		CashReceivedDate: d.CashReceivedDate,
		Status:           d.Status,
		Reference:        d.Reference,
		Notes:            d.Notes,
		TotalExCents:     priced.TotalExCents,
		TotalGstCents:    priced.TotalGstCents,
		TotalIncCents:    priced.TotalIncCents(),
		Lines:            lines,
		CreatedAt:        createdAt,
	}
}
