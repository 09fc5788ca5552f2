// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/taxman/generic"
)

// =============================================================================
// MEMORY STORE - In-memory read model (for testing/dev)
// =============================================================================

// Memory holds invoices, expenses, rates, employees and GST codes in maps.
// It implements generic.LedgerReader plus the rate/GST lookups used by
// billing, which is enough to drive the engines without SQLite.
type Memory struct {
	mu        sync.RWMutex
	invoices  []generic.Invoice
	expenses  []generic.Expense
	rates     map[pair][]generic.RateRecord
	employees map[string]generic.Employee
	gstCodes  map[string]generic.GstCode

	// Err, when set, is returned by every read.
	Err error
}

type pair struct {
	ClientID   string
	EmployeeID string
}

func NewMemory() *Memory {
	return &Memory{
		rates:     make(map[pair][]generic.RateRecord),
		employees: make(map[string]generic.Employee),
		gstCodes:  make(map[string]generic.GstCode),
	}
}

// =============================================================================
// SEEDING
// =============================================================================

func (m *Memory) AddInvoice(inv generic.Invoice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invoices = append(m.invoices, inv)
}

func (m *Memory) AddExpense(e generic.Expense) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expenses = append(m.expenses, e)
}

func (m *Memory) AddEmployee(e generic.Employee) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.employees[e.ID] = e
}

func (m *Memory) AddGstCode(c generic.GstCode) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gstCodes[c.ID] = c
}

// AddRate appends without overlap checks so tests can build defensive cases.
func (m *Memory) AddRate(r generic.RateRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := pair{ClientID: r.ClientID, EmployeeID: r.EmployeeID}
	m.rates[k] = append(m.rates[k], r)
}

// =============================================================================
// LOOKUPS
// =============================================================================

func (m *Memory) GetEmployee(_ context.Context, id string) (*generic.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	e, ok := m.employees[id]
	if !ok {
		return nil, nil
	}
	return &e, nil
}

func (m *Memory) GetGstCode(_ context.Context, id string) (*generic.GstCode, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	c, ok := m.gstCodes[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m *Memory) RatesForPair(_ context.Context, clientID, employeeID string) ([]generic.RateRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	src := m.rates[pair{ClientID: clientID, EmployeeID: employeeID}]
	result := make([]generic.RateRecord, len(src))
	copy(result, src)
	return result, nil
}

func (m *Memory) RatesEffectiveOn(ctx context.Context, clientID, employeeID string, on generic.Date) ([]generic.RateRecord, error) {
	all, err := m.RatesForPair(ctx, clientID, employeeID)
	if err != nil {
		return nil, err
	}
	var result []generic.RateRecord
	for _, r := range all {
		if r.Range().Covers(on) {
			result = append(result, r)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].EffectiveFrom.After(result[j].EffectiveFrom)
	})
	return result, nil
}

// =============================================================================
// LEDGER READER (generic.LedgerReader interface)
// =============================================================================

func (m *Memory) SalesTotals(_ context.Context, dateField generic.InvoiceDateField, p generic.Period) (generic.GstTotals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return generic.GstTotals{}, m.Err
	}

	var totals generic.GstTotals
	for _, inv := range m.invoices {
		d := invoiceDate(inv, dateField)
		if d == nil || !p.Contains(*d) {
			continue
		}
		totals = totals.Add(generic.GstTotals{ExCents: inv.TotalExCents, GstCents: inv.TotalGstCents})
	}
	return totals, nil
}

func (m *Memory) PurchaseTotals(_ context.Context, p generic.Period) (generic.GstTotals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return generic.GstTotals{}, m.Err
	}

	var totals generic.GstTotals
	for _, e := range m.expenses {
		if p.Contains(e.IncurredDate) {
			totals = totals.Add(generic.GstTotals{ExCents: e.AmountExCents, GstCents: e.GstCents})
		}
	}
	return totals, nil
}

func (m *Memory) UncollectedInvoices(_ context.Context, p generic.Period) ([]generic.Invoice, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	var result []generic.Invoice
	for _, inv := range m.invoices {
		if inv.CashReceivedDate == nil && p.Contains(inv.IssueDate) {
			result = append(result, inv)
		}
	}
	return result, nil
}

func (m *Memory) ExpensesWithoutGstCode(_ context.Context, p generic.Period) ([]generic.Expense, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}

	var result []generic.Expense
	for _, e := range m.expenses {
		if e.GstCodeID == nil && p.Contains(e.IncurredDate) {
			result = append(result, e)
		}
	}
	return result, nil
}

func invoiceDate(inv generic.Invoice, field generic.InvoiceDateField) *generic.Date {
	switch field {
	case generic.ByCashReceivedDate:
		return inv.CashReceivedDate
	default:
		d := inv.IssueDate
		return &d
	}
}
