package bas

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/taxman/generic"
	"github.com/warp/taxman/generic/store"
)

func datePtr(s string) *generic.Date {
	d := generic.MustParseDate(s)
	return &d
}

func quarter(t *testing.T, index int) FiscalPeriod {
	t.Helper()
	periods := GeneratePeriods(2024, generic.FrequencyQuarterly, time.July)
	require.GreaterOrEqual(t, len(periods), index)
	return periods[index-1]
}

func TestComputeSummary_CashBasisExcludesUncollected(t *testing.T) {
	// GIVEN: An invoice issued in Q1 that was never collected
	ledger := store.NewMemory()
	ledger.AddInvoice(generic.Invoice{
		ID: "inv-1", IssueDate: generic.MustParseDate("2024-07-10"),
		TotalExCents: 60000, TotalGstCents: 6000,
	})
	calc := NewCalculator(ledger)
	ctx := context.Background()

	// WHEN: Summarizing every quarter on a cash basis
	for i := 1; i <= 4; i++ {
		s, err := calc.ComputeSummary(ctx, quarter(t, i), generic.BasisCash)
		require.NoError(t, err)

		// THEN: It contributes nothing anywhere
		assert.Equal(t, generic.Cents(0), s.SalesExCents, "Q%d", i)
	}

	// AND: On accrual basis it lands in Q1 only
	q1, err := calc.ComputeSummary(ctx, quarter(t, 1), generic.BasisAccrual)
	require.NoError(t, err)
	assert.Equal(t, generic.Cents(60000), q1.SalesExCents)
	assert.Equal(t, generic.Cents(6000), q1.SalesGstCents)

	q2, err := calc.ComputeSummary(ctx, quarter(t, 2), generic.BasisAccrual)
	require.NoError(t, err)
	assert.Equal(t, generic.Cents(0), q2.SalesExCents)
}

func TestComputeSummary_CashBasisUsesReceivedDate(t *testing.T) {
	// GIVEN: An invoice issued in July and paid on October 1
	ledger := store.NewMemory()
	ledger.AddInvoice(generic.Invoice{
		ID: "inv-1", IssueDate: generic.MustParseDate("2024-07-05"),
		CashReceivedDate: datePtr("2024-10-01"),
		TotalExCents:     60000, TotalGstCents: 6000,
	})
	calc := NewCalculator(ledger)
	ctx := context.Background()

	// WHEN/THEN: Cash basis puts it in Q2, not Q1
	q1, err := calc.ComputeSummary(ctx, quarter(t, 1), generic.BasisCash)
	require.NoError(t, err)
	assert.Equal(t, generic.Cents(0), q1.SalesExCents)

	q2, err := calc.ComputeSummary(ctx, quarter(t, 2), generic.BasisCash)
	require.NoError(t, err)
	assert.Equal(t, generic.Cents(60000), q2.SalesExCents)
	assert.Equal(t, "2024-10-01", q2.PeriodStart.String())
	assert.Equal(t, generic.BasisCash, q2.Basis)
}

func TestComputeSummary_NetGstAndPurchases(t *testing.T) {
	// GIVEN: Sales and purchases in the same quarter, plus a purchase in the next
	ledger := store.NewMemory()
	ledger.AddInvoice(generic.Invoice{
		ID: "inv-1", IssueDate: generic.MustParseDate("2024-08-01"),
		CashReceivedDate: datePtr("2024-08-20"),
		TotalExCents:     100000, TotalGstCents: 10000,
	})
	ledger.AddExpense(generic.Expense{ID: "exp-1", AmountExCents: 30000, GstCents: 3000, IncurredDate: generic.MustParseDate("2024-09-30")})
	ledger.AddExpense(generic.Expense{ID: "exp-2", AmountExCents: 50000, GstCents: 5000, IncurredDate: generic.MustParseDate("2024-10-01")})
	calc := NewCalculator(ledger)

	// WHEN: Summarizing Q1 under either basis
	for _, basis := range []generic.Basis{generic.BasisAccrual, generic.BasisCash} {
		s, err := calc.ComputeSummary(context.Background(), quarter(t, 1), basis)
		require.NoError(t, err)

		// THEN: Purchases follow incurred date regardless of basis
		assert.Equal(t, generic.Cents(30000), s.PurchasesExCents, basis)
		assert.Equal(t, generic.Cents(3000), s.PurchasesGstCents, basis)
		assert.Equal(t, generic.Cents(7000), s.NetGstCents, basis)
	}
}

func TestComputeSummary_RefundableNet(t *testing.T) {
	ledger := store.NewMemory()
	ledger.AddExpense(generic.Expense{ID: "exp-1", AmountExCents: 200000, GstCents: 20000, IncurredDate: generic.MustParseDate("2024-07-01")})

	s, err := NewCalculator(ledger).ComputeSummary(context.Background(), quarter(t, 1), generic.BasisAccrual)
	require.NoError(t, err)
	assert.Equal(t, generic.Cents(-20000), s.NetGstCents)
}

func TestComputeSummary_Errors(t *testing.T) {
	ledger := store.NewMemory()
	calc := NewCalculator(ledger)

	_, err := calc.ComputeSummary(context.Background(), quarter(t, 1), generic.Basis("hybrid"))
	assert.ErrorIs(t, err, generic.ErrValidation)

	ledger.Err = errors.New("database is locked")
	_, err = calc.ComputeSummary(context.Background(), quarter(t, 1), generic.BasisAccrual)
	require.Error(t, err)
	assert.ErrorIs(t, err, ledger.Err)
	assert.Contains(t, err.Error(), "Q1 FY 2024-25")
}
