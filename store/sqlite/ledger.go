package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/warp/taxman/generic"
)

// =============================================================================
// EXPENSES
// =============================================================================

const expenseColumns = `id, supplier_name, category, amount_ex_cents, gst_cents, gst_code_id, incurred_date, notes`

func (r *repo) InsertExpense(ctx context.Context, e generic.Expense) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.SupplierName, e.Category, int64(e.AmountExCents), int64(e.GstCents),
		nullString(e.GstCodeID), e.IncurredDate.String(), e.Notes)
	return translate(err)
}

func (r *repo) GetExpense(ctx context.Context, id string) (*generic.Expense, error) {
	expenses, err := r.queryExpenses(ctx, "WHERE id = ?", id)
	if err != nil || len(expenses) == 0 {
		return nil, err
	}
	return &expenses[0], nil
}

func (r *repo) ListExpenses(ctx context.Context, from, to *generic.Date) ([]generic.Expense, error) {
	var where []string
	var args []any
	if from != nil {
		where = append(where, "incurred_date >= ?")
		args = append(args, from.String())
	}
	if to != nil {
		where = append(where, "incurred_date <= ?")
		args = append(args, to.String())
	}
	clause := ""
	if len(where) > 0 {
		clause = "WHERE " + strings.Join(where, " AND ")
	}
	return r.queryExpenses(ctx, clause+" ORDER BY incurred_date, supplier_name", args...)
}

func (r *repo) queryExpenses(ctx context.Context, clause string, args ...any) ([]generic.Expense, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT "+expenseColumns+" FROM expenses "+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var expenses []generic.Expense
	for rows.Next() {
		var e generic.Expense
		var ex, gst int64
		var codeID *string
		if err := rows.Scan(&e.ID, &e.SupplierName, &e.Category, &ex, &gst, &codeID,
			&e.IncurredDate, &e.Notes); err != nil {
			return nil, err
		}
		e.AmountExCents = generic.Cents(ex)
		e.GstCents = generic.Cents(gst)
		e.GstCodeID = codeID
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}

// =============================================================================
// RECEIPTS
// =============================================================================

func (r *repo) InsertReceipt(ctx context.Context, rc generic.Receipt, allocations []generic.ReceiptAllocation) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO receipts (id, invoice_id, received_date, amount_cents, notes)
		VALUES (?, ?, ?, ?, ?)
	`, rc.ID, nullString(&rc.InvoiceID), rc.ReceivedDate.String(), int64(rc.AmountCents), rc.Notes)
	if err != nil {
		return translate(err)
	}

	for _, a := range allocations {
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO receipt_allocations (id, receipt_id, invoice_id, amount_cents)
			VALUES (?, ?, ?, ?)
		`, a.ID, rc.ID, a.InvoiceID, int64(a.AmountCents))
		if err != nil {
			return translate(err)
		}
	}
	return nil
}

// =============================================================================
// LEDGER READER - Closed-interval BETWEEN on 'YYYY-MM-DD' text
// =============================================================================

var salesDateColumns = map[generic.InvoiceDateField]string{
	generic.ByIssueDate:        "issue_date",
	generic.ByCashReceivedDate: "cash_received_date",
}

func (r *repo) SalesTotals(ctx context.Context, field generic.InvoiceDateField, p generic.Period) (generic.GstTotals, error) {
	column, ok := salesDateColumns[field]
	if !ok {
		return generic.GstTotals{}, fmt.Errorf("unsupported invoice date field %q", field)
	}

	var ex, gst int64
	err := r.q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(total_ex_cents), 0), COALESCE(SUM(total_gst_cents), 0)
		FROM invoices
		WHERE `+column+` IS NOT NULL AND `+column+` BETWEEN ? AND ?
	`, p.Start.String(), p.End.String()).Scan(&ex, &gst)
	if err != nil {
		return generic.GstTotals{}, err
	}
	return generic.GstTotals{ExCents: generic.Cents(ex), GstCents: generic.Cents(gst)}, nil
}

func (r *repo) PurchaseTotals(ctx context.Context, p generic.Period) (generic.GstTotals, error) {
	var ex, gst int64
	err := r.q.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(amount_ex_cents), 0), COALESCE(SUM(gst_cents), 0)
		FROM expenses
		WHERE incurred_date BETWEEN ? AND ?
	`, p.Start.String(), p.End.String()).Scan(&ex, &gst)
	if err != nil {
		return generic.GstTotals{}, err
	}
	return generic.GstTotals{ExCents: generic.Cents(ex), GstCents: generic.Cents(gst)}, nil
}

func (r *repo) UncollectedInvoices(ctx context.Context, p generic.Period) ([]generic.Invoice, error) {
	return r.queryInvoices(ctx, false, `
		WHERE cash_received_date IS NULL AND issue_date BETWEEN ? AND ?
		ORDER BY invoice_number
	`, p.Start.String(), p.End.String())
}

func (r *repo) ExpensesWithoutGstCode(ctx context.Context, p generic.Period) ([]generic.Expense, error) {
	return r.queryExpenses(ctx, `
		WHERE gst_code_id IS NULL AND incurred_date BETWEEN ? AND ?
		ORDER BY incurred_date, supplier_name
	`, p.Start.String(), p.End.String())
}
