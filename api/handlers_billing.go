package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/taxman/generic"
)

// =============================================================================
// CLIENT RATES
// =============================================================================

// ListRates returns rates ordered by effective date.
// GET /api/client-rates?clientId=
func (h *Handler) ListRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.Rates.List(r.Context(), r.URL.Query().Get("clientId"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	dtos := make([]RateDTO, len(rates))
	for i, rate := range rates {
		dtos[i] = toRateDTO(rate)
	}
	writeData(w, http.StatusOK, dtos)
}

// CreateRate adds a rate, or 409 when it overlaps an existing range.
// POST /api/client-rates
func (h *Handler) CreateRate(w http.ResponseWriter, r *http.Request) {
	var req CreateRateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	rate, err := h.Rates.AddRate(r.Context(), req.toInput())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, toRateDTO(rate))
}

// =============================================================================
// INVOICES
// =============================================================================

// ListInvoices supports ?clientId=&from=&to= (issue date, inclusive).
func (h *Handler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := generic.InvoiceFilter{ClientID: q.Get("clientId")}

	v := generic.NewValidationError()
	filter.From = queryDate(q.Get("from"), "from", v)
	filter.To = queryDate(q.Get("to"), "to", v)
	if err := v.OrNil(); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	invoices, err := h.Invoices.List(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	dtos := make([]InvoiceDTO, len(invoices))
	for i, inv := range invoices {
		dtos[i] = toInvoiceDTO(inv)
	}
	writeData(w, http.StatusOK, dtos)
}

func (h *Handler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	inv, err := h.Invoices.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toInvoiceDTO(*inv))
}

func (h *Handler) CreateInvoice(w http.ResponseWriter, r *http.Request) {
	var req InvoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	inv, err := h.Invoices.Create(r.Context(), req.toDraft())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, toInvoiceDTO(*inv))
}

func (h *Handler) UpdateInvoice(w http.ResponseWriter, r *http.Request) {
	var req InvoiceRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	inv, err := h.Invoices.Update(r.Context(), chi.URLParam(r, "id"), req.toDraft())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toInvoiceDTO(*inv))
}

func (h *Handler) DeleteInvoice(w http.ResponseWriter, r *http.Request) {
	if err := h.Invoices.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// EXPENSES & RECEIPTS
// =============================================================================

// ListExpenses supports ?from=&to= (incurred date, inclusive).
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	v := generic.NewValidationError()
	from := queryDate(q.Get("from"), "from", v)
	to := queryDate(q.Get("to"), "to", v)
	if err := v.OrNil(); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	expenses, err := h.Expenses.List(r.Context(), from, to)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	dtos := make([]ExpenseDTO, len(expenses))
	for i, e := range expenses {
		dtos[i] = toExpenseDTO(e)
	}
	writeData(w, http.StatusOK, dtos)
}

func (h *Handler) GetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := h.Expenses.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toExpenseDTO(*expense))
}

func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req ExpenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	expense, err := h.Expenses.Record(r.Context(), req.toInput())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, toExpenseDTO(*expense))
}

func (h *Handler) CreateReceipt(w http.ResponseWriter, r *http.Request) {
	var req ReceiptRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	receipt, err := h.Receipts.Record(r.Context(), req.toInput())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, ReceiptDTO{
		ID:           receipt.ID,
		InvoiceID:    receipt.InvoiceID,
		ReceivedDate: receipt.ReceivedDate,
		AmountCents:  receipt.AmountCents,
		Notes:        receipt.Notes,
	})
}

// queryDate parses an optional YYYY-MM-DD query parameter, recording a
// field error on v when it is malformed.
func queryDate(raw, field string, v *generic.ValidationError) *generic.Date {
	if raw == "" {
		return nil
	}
	d, err := generic.ParseDate(raw)
	if err != nil {
		v.Add(field, "must be a YYYY-MM-DD date")
		return nil
	}
	return &d
}
