package sqlite

import (
	"context"

	"github.com/warp/taxman/generic"
)

// =============================================================================
// CLIENT RATES (insert-only)
// =============================================================================

const rateColumns = `id, client_id, employee_id, rate_cents, unit, effective_from, effective_to, created_at`

func (r *repo) InsertRate(ctx context.Context, rate generic.RateRecord) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO client_rates (`+rateColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rate.ID, rate.ClientID, rate.EmployeeID, int64(rate.RateCents), string(rate.Unit),
		rate.EffectiveFrom.String(), nullDate(rate.EffectiveTo), formatTime(rate.CreatedAt))
	return translate(err)
}

func (r *repo) RatesForPair(ctx context.Context, clientID, employeeID string) ([]generic.RateRecord, error) {
	return r.queryRates(ctx, `
		WHERE client_id = ? AND employee_id = ?
		ORDER BY effective_from
	`, clientID, employeeID)
}

func (r *repo) RatesEffectiveOn(ctx context.Context, clientID, employeeID string, on generic.Date) ([]generic.RateRecord, error) {
	day := on.String()
	return r.queryRates(ctx, `
		WHERE client_id = ? AND employee_id = ?
			AND effective_from <= ?
			AND (effective_to IS NULL OR effective_to >= ?)
		ORDER BY effective_from DESC
	`, clientID, employeeID, day, day)
}

func (r *repo) ListRates(ctx context.Context, clientID string) ([]generic.RateRecord, error) {
	if clientID == "" {
		return r.queryRates(ctx, "ORDER BY effective_from, client_id, employee_id")
	}
	return r.queryRates(ctx, "WHERE client_id = ? ORDER BY effective_from, employee_id", clientID)
}

func (r *repo) queryRates(ctx context.Context, clause string, args ...any) ([]generic.RateRecord, error) {
	rows, err := r.q.QueryContext(ctx, "SELECT "+rateColumns+" FROM client_rates "+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rates []generic.RateRecord
	for rows.Next() {
		var rate generic.RateRecord
		var cents int64
		var unit, createdAt string
		var effectiveTo nullableDate
		if err := rows.Scan(&rate.ID, &rate.ClientID, &rate.EmployeeID, &cents, &unit,
			&rate.EffectiveFrom, &effectiveTo, &createdAt); err != nil {
			return nil, err
		}
		rate.RateCents = generic.Cents(cents)
		rate.Unit = generic.Unit(unit)
		rate.EffectiveTo = effectiveTo.ptr()
		rate.CreatedAt = parseTime(createdAt)
		rates = append(rates, rate)
	}
	return rates, rows.Err()
}
