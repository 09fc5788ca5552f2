/*
Package sqlite provides the SQLite-backed implementation of generic.TxStore.

PURPOSE:
  Single embedded relational store for reference data, rates, invoices,
  receipts, expenses and frozen BAS runs. The engines only see the
  generic interfaces; this package owns the SQL.

KEY TABLES:
  company_settings:    single row (id = 1)
  gst_codes:           tax codes with rate_percent as decimal text
  clients, employees:  reference data
  client_rates:        effective-dated rates, insert-only
  invoices:            header + totals, invoice_number UNIQUE
  invoice_items:       priced lines, replaced wholesale on update
  invoice_counter:     single row holding the last issued number
  receipts:            cash received against an invoice
  receipt_allocations: receipt amounts applied to invoices
  expenses:            purchases, gst_code_id nullable
  bas_runs:            frozen summaries of elapsed periods

DATES:
  Calendar dates are TEXT 'YYYY-MM-DD' so closed-interval period filters
  are plain BETWEEN comparisons. Timestamps are RFC3339 UTC.

CONCURRENCY:
  Opened with WAL, _txlock=immediate and a busy timeout. WithTx also
  serialises writers in-process with a mutex, so the read-then-write
  paths (invoice numbering, rate overlap check) cannot interleave.
  Inside WithTx only the store handed to fn may be used.

USAGE:
  store, err := sqlite.New("./data/taxman.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - generic/store.go: Interface definitions
  - generic/store/memory.go: In-memory read model for engine tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/warp/taxman/generic"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// repo implements generic.Store over any querier. The Store uses it with
// the connection pool; WithTx hands fn one bound to the transaction.
type repo struct {
	q querier
}

// Store implements generic.TxStore using SQLite.
type Store struct {
	repo
	db *sql.DB
	mu sync.Mutex
}

var _ generic.TxStore = (*Store)(nil)

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	dsn := dbPath + "?_foreign_keys=on&_journal_mode=WAL&_txlock=immediate&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	store := &Store{repo: repo{q: db}, db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS company_settings (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		legal_name TEXT NOT NULL,
		abn TEXT NOT NULL DEFAULT '',
		gst_basis TEXT NOT NULL CHECK (gst_basis IN ('cash', 'accrual')),
		bas_frequency TEXT NOT NULL CHECK (bas_frequency IN ('monthly', 'quarterly', 'annual')),
		fy_start_month INTEGER NOT NULL CHECK (fy_start_month BETWEEN 1 AND 12)
	);

	CREATE TABLE IF NOT EXISTS gst_codes (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		description TEXT NOT NULL DEFAULT '',
		rate_percent TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		contact_email TEXT NOT NULL DEFAULT '',
		default_rate_cents INTEGER,
		payment_terms_days INTEGER NOT NULL DEFAULT 14,
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		full_name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		base_rate_cents INTEGER NOT NULL,
		default_unit TEXT NOT NULL DEFAULT 'hour',
		is_active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);

	-- Rates are insert-only; overlaps are rejected in application code
	CREATE TABLE IF NOT EXISTS client_rates (
		id TEXT PRIMARY KEY,
		client_id TEXT NOT NULL REFERENCES clients(id),
		employee_id TEXT NOT NULL REFERENCES employees(id),
		rate_cents INTEGER NOT NULL CHECK (rate_cents >= 0),
		unit TEXT NOT NULL,
		effective_from TEXT NOT NULL,
		effective_to TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_client_rates_pair
		ON client_rates(client_id, employee_id, effective_from DESC);

	CREATE TABLE IF NOT EXISTS invoices (
		id TEXT PRIMARY KEY,
		invoice_number INTEGER NOT NULL UNIQUE,
		client_id TEXT NOT NULL REFERENCES clients(id),
		issue_date TEXT NOT NULL,
		due_date TEXT NOT NULL,
		cash_received_date TEXT,
		status TEXT NOT NULL DEFAULT 'draft',
		reference TEXT NOT NULL DEFAULT '',
		notes TEXT NOT NULL DEFAULT '',
		total_ex_cents INTEGER NOT NULL,
		total_gst_cents INTEGER NOT NULL,
		total_inc_cents INTEGER NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_invoices_issue_date ON invoices(issue_date);
	CREATE INDEX IF NOT EXISTS idx_invoices_cash_received_date
		ON invoices(cash_received_date) WHERE cash_received_date IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_invoices_client ON invoices(client_id);

	CREATE TABLE IF NOT EXISTS invoice_items (
		id TEXT PRIMARY KEY,
		invoice_id TEXT NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
		position INTEGER NOT NULL,
		employee_id TEXT NOT NULL REFERENCES employees(id),
		description TEXT NOT NULL DEFAULT '',
		quantity TEXT NOT NULL,
		unit TEXT NOT NULL,
		rate_cents INTEGER NOT NULL,
		amount_ex_cents INTEGER NOT NULL,
		gst_cents INTEGER NOT NULL,
		gst_code_id TEXT NOT NULL REFERENCES gst_codes(id)
	);

	CREATE INDEX IF NOT EXISTS idx_invoice_items_invoice ON invoice_items(invoice_id, position);

	CREATE TABLE IF NOT EXISTS invoice_counter (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		last_number INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS receipts (
		id TEXT PRIMARY KEY,
		invoice_id TEXT REFERENCES invoices(id),
		received_date TEXT NOT NULL,
		amount_cents INTEGER NOT NULL,
		notes TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS receipt_allocations (
		id TEXT PRIMARY KEY,
		receipt_id TEXT NOT NULL REFERENCES receipts(id),
		invoice_id TEXT NOT NULL REFERENCES invoices(id),
		amount_cents INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_receipts_invoice ON receipts(invoice_id);
	CREATE INDEX IF NOT EXISTS idx_receipt_allocations_invoice ON receipt_allocations(invoice_id);

	CREATE TABLE IF NOT EXISTS expenses (
		id TEXT PRIMARY KEY,
		supplier_name TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		amount_ex_cents INTEGER NOT NULL,
		gst_cents INTEGER NOT NULL DEFAULT 0,
		gst_code_id TEXT REFERENCES gst_codes(id),
		incurred_date TEXT NOT NULL,
		notes TEXT NOT NULL DEFAULT ''
	);

	CREATE INDEX IF NOT EXISTS idx_expenses_incurred_date ON expenses(incurred_date);

	CREATE TABLE IF NOT EXISTS bas_runs (
		id TEXT PRIMARY KEY,
		label TEXT NOT NULL,
		frequency TEXT NOT NULL,
		basis TEXT NOT NULL,
		period_start TEXT NOT NULL,
		period_end TEXT NOT NULL,
		summary_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE (basis, period_start, period_end)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTION SUPPORT
// =============================================================================

// WithTx executes fn within a transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store generic.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&repo{q: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for demo scenarios and tests).
func (s *Store) Reset(ctx context.Context) error {
	tables := []string{
		"bas_runs", "receipt_allocations", "receipts", "invoice_items", "invoices",
		"invoice_counter", "expenses", "client_rates", "employees", "clients",
		"gst_codes", "company_settings",
	}
	return s.WithTx(ctx, func(tx generic.Store) error {
		q := tx.(*repo).q
		for _, table := range tables {
			if _, err := q.ExecContext(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clearing %s: %w", table, err)
			}
		}
		return nil
	})
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339, s)
	return t
}

func nullDate(d *generic.Date) sql.NullString {
	if d == nil || d.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}

// nullableDate scans a date column that may be NULL.
type nullableDate struct {
	d *generic.Date
}

func (n *nullableDate) Scan(src any) error {
	if src == nil {
		n.d = nil
		return nil
	}
	var d generic.Date
	if err := d.Scan(src); err != nil {
		return err
	}
	n.d = &d
	return nil
}

func (n nullableDate) ptr() *generic.Date { return n.d }

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// translate maps driver constraint failures onto the generic taxonomy.
func translate(err error) error {
	if err == nil {
		return nil
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return fmt.Errorf("%w: %s", generic.ErrDuplicate, constraintTarget(sqliteErr.Error()))
		case sqlite3.ErrConstraintForeignKey:
			return fmt.Errorf("%w: %s", generic.ErrReference, "referenced row does not exist")
		}
	}
	return err
}

// constraintTarget extracts "table.column" from "UNIQUE constraint failed: table.column".
func constraintTarget(msg string) string {
	if i := strings.LastIndex(msg, ": "); i >= 0 {
		return msg[i+2:]
	}
	return msg
}
