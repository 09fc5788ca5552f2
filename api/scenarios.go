/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:
	Provides pre-built data sets that populate the database through the
	same services the API uses, so every scenario exercises pricing,
	numbering and the rate overlap check.

AVAILABLE SCENARIOS:
	consultancy-quarterly: Accrual basis, quarterly BAS, two clients, a mid-year rate change
	cash-basis-lag:        Cash basis with invoices paid in a later quarter
	missing-gst-codes:     Expenses without GST codes, surfaced as report exceptions

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Save company settings and GST codes
 3. Create clients and employees
 4. Add client rates via RateBook
 5. Create invoices via InvoiceService, expenses and receipts via their services

USAGE VIA API:
	POST /api/scenarios/load
	{"scenarioId": "cash-basis-lag"}

NOTE:
	Scenarios reset the database. Only use in development/demo environments.
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/taxman/billing"
	"github.com/warp/taxman/generic"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "consultancy-quarterly",
		Name:        "Consultancy (quarterly, accrual)",
		Description: "Two clients, two consultants, a client rate that changes in October",
	},
	{
		ID:          "cash-basis-lag",
		Name:        "Cash basis with late payments",
		Description: "Invoices issued in Q1 and paid in Q2; one still unpaid",
	},
	{
		ID:          "missing-gst-codes",
		Name:        "Expenses missing GST codes",
		Description: "Purchases recorded without a GST code, flagged as report exceptions",
	},
}

// Fixed ids keep demo data readable in the UI and in tests.
const (
	scenarioGST       = "gst-10"
	scenarioGSTFree   = "gst-free"
	scenarioAcme      = "client-acme"
	scenarioGlobex    = "client-globex"
	scenarioAlice     = "emp-alice"
	scenarioBob       = "emp-bob"
	scenarioAbn       = "51 824 753 556"
	scenarioLegalName = "Warp Consulting Pty Ltd"
)

func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, scenarios)
}

func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeData(w, http.StatusOK, s)
			return
		}
	}
	writeData(w, http.StatusOK, nil)
}

func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	if err := h.loadScenario(r.Context(), req.ScenarioID); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, map[string]string{"status": "loaded", "scenarioId": req.ScenarioID})
}

func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.mu.Lock()
	h.currentScenario = ""
	h.mu.Unlock()
	writeData(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) loadScenario(ctx context.Context, id string) error {
	loaders := map[string]func(context.Context) error{
		"consultancy-quarterly": h.loadConsultancyScenario,
		"cash-basis-lag":        h.loadCashBasisScenario,
		"missing-gst-codes":     h.loadMissingGstCodesScenario,
	}
	load, ok := loaders[id]
	if !ok {
		v := generic.NewValidationError()
		v.Add("scenarioId", fmt.Sprintf("unknown scenario %q", id))
		return v
	}

	if err := h.Store.Reset(ctx); err != nil {
		return fmt.Errorf("resetting database: %w", err)
	}
	if err := load(ctx); err != nil {
		return fmt.Errorf("loading scenario %s: %w", id, err)
	}

	h.mu.Lock()
	h.currentScenario = id
	h.mu.Unlock()
	h.log.Info().Str("scenario", id).Msg("scenario loaded")
	return nil
}

// =============================================================================
// SHARED SEED DATA
// =============================================================================

func (h *Handler) seedReferenceData(ctx context.Context, basis generic.Basis) error {
	now := h.now().UTC()

	if err := h.Store.SaveSettings(ctx, generic.CompanySettings{
		LegalName:    scenarioLegalName,
		ABN:          scenarioAbn,
		GstBasis:     basis,
		BasFrequency: generic.FrequencyQuarterly,
		FYStartMonth: time.July,
	}); err != nil {
		return err
	}

	codes := []generic.GstCode{
		{ID: scenarioGST, Code: "GST", Description: "Taxable supply", RatePercent: decimal.NewFromInt(10), IsActive: true},
		{ID: scenarioGSTFree, Code: "FRE", Description: "GST-free supply", RatePercent: decimal.Zero, IsActive: true},
	}
	for _, c := range codes {
		if err := h.Store.SaveGstCode(ctx, c); err != nil {
			return err
		}
	}

	clients := []generic.Client{
		{ID: scenarioAcme, DisplayName: "Acme Corp", ContactEmail: "ap@acme.example", PaymentTermsDays: 14, IsActive: true, CreatedAt: now},
		{ID: scenarioGlobex, DisplayName: "Globex", ContactEmail: "accounts@globex.example", PaymentTermsDays: 30, IsActive: true, CreatedAt: now},
	}
	for _, c := range clients {
		if err := h.Store.SaveClient(ctx, c); err != nil {
			return err
		}
	}

	employees := []generic.Employee{
		{ID: scenarioAlice, FullName: "Alice Nguyen", Email: "alice@warp.example", BaseRateCents: 15000, DefaultUnit: generic.UnitHour, IsActive: true, CreatedAt: now},
		{ID: scenarioBob, FullName: "Bob Smith", Email: "bob@warp.example", BaseRateCents: 120000, DefaultUnit: generic.UnitDay, IsActive: true, CreatedAt: now},
	}
	for _, e := range employees {
		if err := h.Store.SaveEmployee(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) createInvoice(ctx context.Context, clientID, issue string, cashReceived string, lines ...billing.LineInput) (*generic.Invoice, error) {
	d := billing.Draft{
		ClientID:  clientID,
		IssueDate: generic.MustParseDate(issue),
		Status:    generic.InvoiceSubmitted,
		Lines:     lines,
	}
	if cashReceived != "" {
		paid := generic.MustParseDate(cashReceived)
		d.CashReceivedDate = &paid
		d.Status = generic.InvoicePaid
	}
	return h.Invoices.Create(ctx, d)
}

func hours(employeeID, description string, qty int64) billing.LineInput {
	return billing.LineInput{
		EmployeeID:  employeeID,
		Description: description,
		Quantity:    decimal.NewFromInt(qty),
		Unit:        generic.UnitHour,
		GstCodeID:   scenarioGST,
	}
}

func days(employeeID, description string, qty int64) billing.LineInput {
	l := hours(employeeID, description, qty)
	l.Unit = generic.UnitDay
	return l
}

func (h *Handler) recordExpense(ctx context.Context, supplier, category string, exCents generic.Cents, date string, gstCode *string) error {
	_, err := h.Expenses.Record(ctx, billing.ExpenseInput{
		SupplierName:  supplier,
		Category:      category,
		AmountExCents: exCents,
		GstCodeID:     gstCode,
		IncurredDate:  generic.MustParseDate(date),
	})
	return err
}

// =============================================================================
// SCENARIO: CONSULTANCY (ACCRUAL, QUARTERLY)
// =============================================================================

func (h *Handler) loadConsultancyScenario(ctx context.Context) error {
	if err := h.seedReferenceData(ctx, generic.BasisAccrual); err != nil {
		return err
	}

	july := generic.MustParseDate("2024-07-01")
	september := generic.MustParseDate("2024-09-30")
	october := generic.MustParseDate("2024-10-01")
	rates := []billing.RateInput{
		{ClientID: scenarioAcme, EmployeeID: scenarioAlice, RateCents: 18000, Unit: generic.UnitHour, EffectiveFrom: july, EffectiveTo: &september},
		{ClientID: scenarioAcme, EmployeeID: scenarioAlice, RateCents: 19500, Unit: generic.UnitHour, EffectiveFrom: october},
	}
	for _, in := range rates {
		if _, err := h.Rates.AddRate(ctx, in); err != nil {
			return err
		}
	}

	invoices := []struct {
		client, issue, paid string
		lines               []billing.LineInput
	}{
		{scenarioAcme, "2024-07-31", "2024-08-12", []billing.LineInput{hours(scenarioAlice, "July advisory", 20)}},
		{scenarioGlobex, "2024-08-30", "2024-09-25", []billing.LineInput{days(scenarioBob, "Platform migration", 5)}},
		{scenarioAcme, "2024-10-31", "2024-11-14", []billing.LineInput{hours(scenarioAlice, "October advisory", 16)}},
		{scenarioGlobex, "2024-11-29", "", []billing.LineInput{days(scenarioBob, "Platform migration", 3), hours(scenarioAlice, "Review", 4)}},
	}
	for _, inv := range invoices {
		if _, err := h.createInvoice(ctx, inv.client, inv.issue, inv.paid, inv.lines...); err != nil {
			return err
		}
	}

	gst := scenarioGST
	expenses := []struct {
		supplier, category string
		cents              generic.Cents
		date               string
	}{
		{"Officeworks", "office", 45000, "2024-07-15"},
		{"AWS", "hosting", 120000, "2024-08-01"},
		{"Qantas", "travel", 89000, "2024-10-20"},
	}
	for _, e := range expenses {
		if err := h.recordExpense(ctx, e.supplier, e.category, e.cents, e.date, &gst); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// SCENARIO: CASH BASIS LAG
// =============================================================================

func (h *Handler) loadCashBasisScenario(ctx context.Context) error {
	if err := h.seedReferenceData(ctx, generic.BasisCash); err != nil {
		return err
	}

	paidLate, err := h.createInvoice(ctx, scenarioAcme, "2024-07-05", "2024-10-01",
		hours(scenarioAlice, "Discovery workshop", 40))
	if err != nil {
		return err
	}
	if _, err := h.Receipts.Record(ctx, billing.ReceiptInput{
		InvoiceID:    paidLate.ID,
		ReceivedDate: generic.MustParseDate("2024-10-01"),
		AmountCents:  paidLate.TotalIncCents,
	}); err != nil {
		return err
	}

	if _, err := h.createInvoice(ctx, scenarioGlobex, "2024-09-20", "",
		days(scenarioBob, "Architecture review", 2)); err != nil {
		return err
	}

	gst := scenarioGST
	return h.recordExpense(ctx, "Officeworks", "office", 30000, "2024-08-10", &gst)
}

// =============================================================================
// SCENARIO: MISSING GST CODES
// =============================================================================

func (h *Handler) loadMissingGstCodesScenario(ctx context.Context) error {
	if err := h.seedReferenceData(ctx, generic.BasisAccrual); err != nil {
		return err
	}

	if _, err := h.createInvoice(ctx, scenarioAcme, "2024-08-15", "2024-08-29",
		hours(scenarioAlice, "Advisory", 10)); err != nil {
		return err
	}

	gst := scenarioGST
	if err := h.recordExpense(ctx, "Bunnings", "equipment", 25000, "2024-07-20", &gst); err != nil {
		return err
	}
	if err := h.recordExpense(ctx, "Local cafe", "meals", 4500, "2024-08-02", nil); err != nil {
		return err
	}
	return h.recordExpense(ctx, "Uber", "travel", 3800, "2024-11-11", nil)
}
