package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/taxman/generic"
)

// =============================================================================
// COMPANY SETTINGS
// =============================================================================

func (r *repo) GetSettings(ctx context.Context) (*generic.CompanySettings, error) {
	var s generic.CompanySettings
	var month int
	err := r.q.QueryRowContext(ctx, `
		SELECT legal_name, abn, gst_basis, bas_frequency, fy_start_month
		FROM company_settings WHERE id = 1
	`).Scan(&s.LegalName, &s.ABN, &s.GstBasis, &s.BasFrequency, &month)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.FYStartMonth = time.Month(month)
	return &s, nil
}

func (r *repo) SaveSettings(ctx context.Context, s generic.CompanySettings) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO company_settings (id, legal_name, abn, gst_basis, bas_frequency, fy_start_month)
		VALUES (1, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			legal_name = excluded.legal_name,
			abn = excluded.abn,
			gst_basis = excluded.gst_basis,
			bas_frequency = excluded.bas_frequency,
			fy_start_month = excluded.fy_start_month
	`, s.LegalName, s.ABN, string(s.GstBasis), string(s.BasFrequency), int(s.FYStartMonth))
	return translate(err)
}

// =============================================================================
// GST CODES
// =============================================================================

func (r *repo) SaveGstCode(ctx context.Context, c generic.GstCode) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO gst_codes (id, code, description, rate_percent, is_active)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			code = excluded.code,
			description = excluded.description,
			rate_percent = excluded.rate_percent,
			is_active = excluded.is_active
	`, c.ID, c.Code, c.Description, c.RatePercent.String(), boolInt(c.IsActive))
	return translate(err)
}

func (r *repo) GetGstCode(ctx context.Context, id string) (*generic.GstCode, error) {
	codes, err := r.queryGstCodes(ctx, "WHERE id = ?", id)
	if err != nil || len(codes) == 0 {
		return nil, err
	}
	return &codes[0], nil
}

func (r *repo) ListGstCodes(ctx context.Context) ([]generic.GstCode, error) {
	return r.queryGstCodes(ctx, "ORDER BY code")
}

func (r *repo) queryGstCodes(ctx context.Context, clause string, args ...any) ([]generic.GstCode, error) {
	rows, err := r.q.QueryContext(ctx,
		"SELECT id, code, description, rate_percent, is_active FROM gst_codes "+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var codes []generic.GstCode
	for rows.Next() {
		var c generic.GstCode
		var pct string
		if err := rows.Scan(&c.ID, &c.Code, &c.Description, &pct, &c.IsActive); err != nil {
			return nil, err
		}
		if c.RatePercent, err = decimal.NewFromString(pct); err != nil {
			return nil, err
		}
		codes = append(codes, c)
	}
	return codes, rows.Err()
}

// =============================================================================
// CLIENTS
// =============================================================================

func (r *repo) SaveClient(ctx context.Context, c generic.Client) error {
	var defaultRate sql.NullInt64
	if c.DefaultRateCents != nil {
		defaultRate = sql.NullInt64{Int64: int64(*c.DefaultRateCents), Valid: true}
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO clients (id, display_name, contact_email, default_rate_cents,
			payment_terms_days, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			display_name = excluded.display_name,
			contact_email = excluded.contact_email,
			default_rate_cents = excluded.default_rate_cents,
			payment_terms_days = excluded.payment_terms_days,
			is_active = excluded.is_active
	`, c.ID, c.DisplayName, c.ContactEmail, defaultRate,
		c.PaymentTermsDays, boolInt(c.IsActive), formatTime(c.CreatedAt))
	return translate(err)
}

func (r *repo) GetClient(ctx context.Context, id string) (*generic.Client, error) {
	clients, err := r.queryClients(ctx, "WHERE id = ?", id)
	if err != nil || len(clients) == 0 {
		return nil, err
	}
	return &clients[0], nil
}

func (r *repo) ListClients(ctx context.Context) ([]generic.Client, error) {
	return r.queryClients(ctx, "ORDER BY display_name")
}

func (r *repo) queryClients(ctx context.Context, clause string, args ...any) ([]generic.Client, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, display_name, contact_email, default_rate_cents,
			payment_terms_days, is_active, created_at
		FROM clients `+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []generic.Client
	for rows.Next() {
		var c generic.Client
		var defaultRate sql.NullInt64
		var createdAt string
		if err := rows.Scan(&c.ID, &c.DisplayName, &c.ContactEmail, &defaultRate,
			&c.PaymentTermsDays, &c.IsActive, &createdAt); err != nil {
			return nil, err
		}
		if defaultRate.Valid {
			cents := generic.Cents(defaultRate.Int64)
			c.DefaultRateCents = &cents
		}
		c.CreatedAt = parseTime(createdAt)
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (r *repo) SaveEmployee(ctx context.Context, e generic.Employee) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO employees (id, full_name, email, base_rate_cents, default_unit, is_active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			full_name = excluded.full_name,
			email = excluded.email,
			base_rate_cents = excluded.base_rate_cents,
			default_unit = excluded.default_unit,
			is_active = excluded.is_active
	`, e.ID, e.FullName, e.Email, int64(e.BaseRateCents), string(e.DefaultUnit),
		boolInt(e.IsActive), formatTime(e.CreatedAt))
	return translate(err)
}

func (r *repo) GetEmployee(ctx context.Context, id string) (*generic.Employee, error) {
	employees, err := r.queryEmployees(ctx, "WHERE id = ?", id)
	if err != nil || len(employees) == 0 {
		return nil, err
	}
	return &employees[0], nil
}

func (r *repo) ListEmployees(ctx context.Context) ([]generic.Employee, error) {
	return r.queryEmployees(ctx, "ORDER BY full_name")
}

func (r *repo) queryEmployees(ctx context.Context, clause string, args ...any) ([]generic.Employee, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT id, full_name, email, base_rate_cents, default_unit, is_active, created_at
		FROM employees `+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []generic.Employee
	for rows.Next() {
		var e generic.Employee
		var baseRate int64
		var unit, createdAt string
		if err := rows.Scan(&e.ID, &e.FullName, &e.Email, &baseRate, &unit, &e.IsActive, &createdAt); err != nil {
			return nil, err
		}
		e.BaseRateCents = generic.Cents(baseRate)
		e.DefaultUnit = generic.Unit(unit)
		e.CreatedAt = parseTime(createdAt)
		employees = append(employees, e)
	}
	return employees, rows.Err()
}
