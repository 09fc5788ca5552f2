package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/taxman/generic"
)

// =============================================================================
// INVOICE NUMBERING
// =============================================================================

// NextInvoiceNumber increments the counter row and returns the new value.
// The first call seeds the counter from any invoices already present.
func (r *repo) NextInvoiceNumber(ctx context.Context) (int64, error) {
	var next int64
	err := r.q.QueryRowContext(ctx, `
		INSERT INTO invoice_counter (id, last_number)
		VALUES (1, (SELECT COALESCE(MAX(invoice_number), 0) FROM invoices) + 1)
		ON CONFLICT(id) DO UPDATE SET last_number = last_number + 1
		RETURNING last_number
	`).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("incrementing invoice counter: %w", err)
	}
	return next, nil
}

// =============================================================================
// INVOICES
// =============================================================================

const invoiceColumns = `id, invoice_number, client_id, issue_date, due_date, cash_received_date,
	status, reference, notes, total_ex_cents, total_gst_cents, total_inc_cents, created_at`

func (r *repo) InsertInvoice(ctx context.Context, inv generic.Invoice) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, inv.ID, inv.InvoiceNumber, inv.ClientID, inv.IssueDate.String(), inv.DueDate.String(),
		nullDate(inv.CashReceivedDate), string(inv.Status), inv.Reference, inv.Notes,
		int64(inv.TotalExCents), int64(inv.TotalGstCents), int64(inv.TotalIncCents),
		formatTime(inv.CreatedAt))
	if err != nil {
		return translate(err)
	}
	return r.insertLines(ctx, inv.ID, inv.Lines)
}

// ReplaceInvoice keeps invoice_number and created_at, rewrites the rest and
// swaps the whole line set.
func (r *repo) ReplaceInvoice(ctx context.Context, inv generic.Invoice) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE invoices SET
			client_id = ?, issue_date = ?, due_date = ?, cash_received_date = ?,
			status = ?, reference = ?, notes = ?,
			total_ex_cents = ?, total_gst_cents = ?, total_inc_cents = ?
		WHERE id = ?
	`, inv.ClientID, inv.IssueDate.String(), inv.DueDate.String(), nullDate(inv.CashReceivedDate),
		string(inv.Status), inv.Reference, inv.Notes,
		int64(inv.TotalExCents), int64(inv.TotalGstCents), int64(inv.TotalIncCents),
		inv.ID)
	if err != nil {
		return translate(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &generic.NotFoundError{Kind: "invoice", ID: inv.ID}
	}

	if _, err := r.q.ExecContext(ctx, "DELETE FROM invoice_items WHERE invoice_id = ?", inv.ID); err != nil {
		return err
	}
	return r.insertLines(ctx, inv.ID, inv.Lines)
}

func (r *repo) insertLines(ctx context.Context, invoiceID string, lines []generic.InvoiceLine) error {
	for i, l := range lines {
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO invoice_items (id, invoice_id, position, employee_id, description,
				quantity, unit, rate_cents, amount_ex_cents, gst_cents, gst_code_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, l.ID, invoiceID, i, l.EmployeeID, l.Description, l.Quantity.String(), string(l.Unit),
			int64(l.RateCents), int64(l.AmountExCents), int64(l.GstCents), l.GstCodeID)
		if err != nil {
			return fmt.Errorf("inserting line %d: %w", i, translate(err))
		}
	}
	return nil
}

func (r *repo) GetInvoice(ctx context.Context, id string) (*generic.Invoice, error) {
	invoices, err := r.queryInvoices(ctx, true, "WHERE id = ?", id)
	if err != nil || len(invoices) == 0 {
		return nil, err
	}
	return &invoices[0], nil
}

func (r *repo) ListInvoices(ctx context.Context, filter generic.InvoiceFilter) ([]generic.Invoice, error) {
	var where []string
	var args []any
	if filter.ClientID != "" {
		where = append(where, "client_id = ?")
		args = append(args, filter.ClientID)
	}
	if filter.From != nil {
		where = append(where, "issue_date >= ?")
		args = append(args, filter.From.String())
	}
	if filter.To != nil {
		where = append(where, "issue_date <= ?")
		args = append(args, filter.To.String())
	}

	clause := ""
	if len(where) > 0 {
		clause = "WHERE " + strings.Join(where, " AND ")
	}
	return r.queryInvoices(ctx, true, clause+" ORDER BY invoice_number", args...)
}

func (r *repo) DeleteInvoice(ctx context.Context, id string) error {
	if _, err := r.q.ExecContext(ctx, "DELETE FROM invoice_items WHERE invoice_id = ?", id); err != nil {
		return err
	}
	_, err := r.q.ExecContext(ctx, "DELETE FROM invoices WHERE id = ?", id)
	return translate(err)
}

func (r *repo) CountInvoiceReceipts(ctx context.Context, invoiceID string) (int, error) {
	var count int
	err := r.q.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM receipts WHERE invoice_id = ?) +
			(SELECT COUNT(*) FROM receipt_allocations WHERE invoice_id = ?)
	`, invoiceID, invoiceID).Scan(&count)
	return count, err
}

// queryInvoices reads headers first and closes the cursor before loading
// lines; an in-memory database has a single connection.
func (r *repo) queryInvoices(ctx context.Context, withLines bool, clause string, args ...any) ([]generic.Invoice, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT "+invoiceColumns+" FROM invoices "+clause, args...)
	if err != nil {
		return nil, err
	}

	var invoices []generic.Invoice
	for rows.Next() {
		var inv generic.Invoice
		var status, createdAt string
		var ex, gst, inc int64
		var cashReceived nullableDate
		if err := rows.Scan(&inv.ID, &inv.InvoiceNumber, &inv.ClientID, &inv.IssueDate, &inv.DueDate,
			&cashReceived, &status, &inv.Reference, &inv.Notes, &ex, &gst, &inc, &createdAt); err != nil {
			rows.Close()
			return nil, err
		}
		inv.CashReceivedDate = cashReceived.ptr()
		inv.Status = generic.InvoiceStatus(status)
		inv.TotalExCents = generic.Cents(ex)
		inv.TotalGstCents = generic.Cents(gst)
		inv.TotalIncCents = generic.Cents(inc)
		inv.CreatedAt = parseTime(createdAt)
		invoices = append(invoices, inv)
	}
	err = rows.Err()
	rows.Close()
	if err != nil {
		return nil, err
	}

	if withLines {
		for i := range invoices {
			if invoices[i].Lines, err = r.loadLines(ctx, invoices[i].ID); err != nil {
				return nil, err
			}
		}
	}
	return invoices, nil
}

func (r *repo) loadLines(ctx context.Context, invoiceID string) ([]generic.InvoiceLine, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, invoice_id, employee_id, description, quantity, unit,
			rate_cents, amount_ex_cents, gst_cents, gst_code_id
		FROM invoice_items
		WHERE invoice_id = ?
		ORDER BY position
	`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := []generic.InvoiceLine{}
	for rows.Next() {
		var l generic.InvoiceLine
		var qty, unit string
		var rate, amount, gst int64
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.EmployeeID, &l.Description, &qty, &unit,
			&rate, &amount, &gst, &l.GstCodeID); err != nil {
			return nil, err
		}
		if l.Quantity, err = decimal.NewFromString(qty); err != nil {
			return nil, fmt.Errorf("line %s quantity: %w", l.ID, err)
		}
		l.Unit = generic.Unit(unit)
		l.RateCents = generic.Cents(rate)
		l.AmountExCents = generic.Cents(amount)
		l.GstCents = generic.Cents(gst)
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
