/*
handlers.go - HTTP API handlers for the GST/BAS ledger

PURPOSE:
  Exposes the billing and BAS engines via REST API. Handles HTTP
  request/response and JSON serialization, and delegates to the
  billing services and the BAS reporter.

ENDPOINTS:
  Reference data (this file):
    GET    /api/settings               Company settings
    PUT    /api/settings               Replace company settings
    GET    /api/gst-codes              List GST codes
    POST   /api/gst-codes              Create/replace a GST code
    GET    /api/clients                List clients
    POST   /api/clients                Create/replace a client
    GET    /api/clients/{id}           Get client
    GET    /api/employees              List employees
    POST   /api/employees              Create/replace an employee
    GET    /api/employees/{id}         Get employee

  Billing (handlers_billing.go):
    rates, invoices, expenses, receipts

  Reports (handlers_reports.go):
    BAS report, BAS runs

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Store: SQLite store for reference data
  - RateBook / InvoiceService / ExpenseService / ReceiptService
  - Reporter / Snapshotter for BAS
  - Defaults: report fallbacks when no company settings are stored

ERROR HANDLING:
  Services return the generic error taxonomy; writeServiceError maps it:
  - 400: Validation errors
  - 404: Not found
  - 409: Rate conflict, duplicate, integrity guard
  - 422: Unknown GST code / employee / client reference
  - 500: Anything else (logged)

SECURITY NOTE:
  No authentication. All endpoints are public.

SEE ALSO:
  - dto.go: Request/response data structures
  - errors.go: Response helpers and error mapping
  - server.go: Router setup and middleware
*/
package api

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/warp/taxman/bas"
	"github.com/warp/taxman/billing"
	"github.com/warp/taxman/generic"
	"github.com/warp/taxman/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

type Options struct {
	Defaults    bas.Defaults
	Parallelism int
	Now         func() time.Time
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store     *sqlite.Store
	Rates     *billing.RateBook
	Invoices  *billing.InvoiceService
	Expenses  *billing.ExpenseService
	Receipts  *billing.ReceiptService
	Reporter  *bas.Reporter
	Snapshots *bas.Snapshotter

	defaults bas.Defaults
	now      func() time.Time
	log      zerolog.Logger

	mu              sync.Mutex
	currentScenario string
}

func NewHandler(store *sqlite.Store, opts Options, log zerolog.Logger) *Handler {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	reporter := bas.NewReporter(store, opts.Parallelism, log)
	return &Handler{
		Store:     store,
		Rates:     billing.NewRateBook(store, log),
		Invoices:  billing.NewInvoiceService(store, log),
		Expenses:  billing.NewExpenseService(store, log),
		Receipts:  billing.NewReceiptService(store, log),
		Reporter:  reporter,
		Snapshots: bas.NewSnapshotter(reporter.Calculator(), store, opts.Now, log),
		defaults:  opts.Defaults,
		now:       opts.Now,
		log:       log.With().Str("component", "api").Logger(),
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "database unavailable", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// SETTINGS
// =============================================================================

// GetSettings returns stored settings, or the configured defaults with an
// empty legal name when nothing has been saved yet.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.Store.GetSettings(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if settings == nil {
		settings = &generic.CompanySettings{
			GstBasis:     h.defaults.Basis,
			BasFrequency: h.defaults.Frequency,
			FYStartMonth: h.defaults.FYStartMonth,
		}
	}
	writeData(w, http.StatusOK, toSettingsDTO(*settings))
}

func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	var req SettingsDTO
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	settings := req.toSettings()
	if err := settings.Validate(); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if err := h.Store.SaveSettings(r.Context(), settings); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, toSettingsDTO(settings))
}

// =============================================================================
// GST CODES
// =============================================================================

func (h *Handler) ListGstCodes(w http.ResponseWriter, r *http.Request) {
	codes, err := h.Store.ListGstCodes(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	dtos := make([]GstCodeDTO, len(codes))
	for i, c := range codes {
		dtos[i] = toGstCodeDTO(c)
	}
	writeData(w, http.StatusOK, dtos)
}

func (h *Handler) CreateGstCode(w http.ResponseWriter, r *http.Request) {
	var req CreateGstCodeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	v := generic.NewValidationError()
	if strings.TrimSpace(req.Code) == "" {
		v.Add("code", "is required")
	}
	if req.RatePercent.IsNegative() {
		v.Add("ratePercent", "must not be negative")
	}
	if err := v.OrNil(); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	code := generic.GstCode{
		ID:          orNewID(req.ID),
		Code:        strings.TrimSpace(req.Code),
		Description: req.Description,
		RatePercent: req.RatePercent,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	if err := h.Store.SaveGstCode(r.Context(), code); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, toGstCodeDTO(code))
}

// =============================================================================
// CLIENTS
// =============================================================================

const defaultPaymentTermsDays = 14

func (h *Handler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.Store.ListClients(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	dtos := make([]ClientDTO, len(clients))
	for i, c := range clients {
		dtos[i] = toClientDTO(c)
	}
	writeData(w, http.StatusOK, dtos)
}

func (h *Handler) GetClient(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	client, err := h.Store.GetClient(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if client == nil {
		h.writeServiceError(w, r, &generic.NotFoundError{Kind: "client", ID: id})
		return
	}
	writeData(w, http.StatusOK, toClientDTO(*client))
}

func (h *Handler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	terms := defaultPaymentTermsDays
	if req.PaymentTermsDays != nil {
		terms = *req.PaymentTermsDays
	}

	v := generic.NewValidationError()
	if strings.TrimSpace(req.DisplayName) == "" {
		v.Add("displayName", "is required")
	}
	if terms < 0 {
		v.Add("paymentTermsDays", "must not be negative")
	}
	if req.DefaultRateCents != nil && *req.DefaultRateCents < 0 {
		v.Add("defaultRateCents", "must not be negative")
	}
	if err := v.OrNil(); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	client := generic.Client{
		ID:               orNewID(req.ID),
		DisplayName:      strings.TrimSpace(req.DisplayName),
		ContactEmail:     req.ContactEmail,
		DefaultRateCents: req.DefaultRateCents,
		PaymentTermsDays: terms,
		IsActive:         req.IsActive == nil || *req.IsActive,
		CreatedAt:        h.now().UTC(),
	}
	if err := h.Store.SaveClient(r.Context(), client); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, toClientDTO(client))
}

// =============================================================================
// EMPLOYEES
// =============================================================================

func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeData(w, http.StatusOK, dtos)
}

func (h *Handler) GetEmployee(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	employee, err := h.Store.GetEmployee(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	if employee == nil {
		h.writeServiceError(w, r, &generic.NotFoundError{Kind: "employee", ID: id})
		return
	}
	writeData(w, http.StatusOK, toEmployeeDTO(*employee))
}

func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	unit := generic.Unit(req.DefaultUnit)
	if unit == "" {
		unit = generic.UnitHour
	}

	v := generic.NewValidationError()
	if strings.TrimSpace(req.FullName) == "" {
		v.Add("fullName", "is required")
	}
	if req.BaseRateCents < 0 {
		v.Add("baseRateCents", "must not be negative")
	}
	if !unit.Valid() {
		v.Add("defaultUnit", "must be hour, day or item")
	}
	if err := v.OrNil(); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	employee := generic.Employee{
		ID:            orNewID(req.ID),
		FullName:      strings.TrimSpace(req.FullName),
		Email:         req.Email,
		BaseRateCents: req.BaseRateCents,
		DefaultUnit:   unit,
		IsActive:      req.IsActive == nil || *req.IsActive,
		CreatedAt:     h.now().UTC(),
	}
	if err := h.Store.SaveEmployee(r.Context(), employee); err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusCreated, toEmployeeDTO(employee))
}

func orNewID(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.NewString()
}
