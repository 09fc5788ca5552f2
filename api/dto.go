/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the domain records in generic/ from the external contract.

CONVENTIONS:
  - camelCase field names
  - Dates as "YYYY-MM-DD" (generic.Date marshals itself)
  - Money as integer cents; invoice line "rate" overrides are dollars
  - Successful payloads are wrapped as {"data": ...}

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and services, not in DTOs.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/taxman/billing"
	"github.com/warp/taxman/generic"
)

type envelope struct {
	Data any `json:"data"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// =============================================================================
// REFERENCE DATA
// =============================================================================

type SettingsDTO struct {
	LegalName    string `json:"legalName"`
	ABN          string `json:"abn"`
	GstBasis     string `json:"gstBasis"`
	BasFrequency string `json:"basFrequency"`
	FYStartMonth int    `json:"fyStartMonth"`
}

func toSettingsDTO(s generic.CompanySettings) SettingsDTO {
	return SettingsDTO{
		LegalName:    s.LegalName,
		ABN:          s.ABN,
		GstBasis:     string(s.GstBasis),
		BasFrequency: string(s.BasFrequency),
		FYStartMonth: int(s.FYStartMonth),
	}
}

func (d SettingsDTO) toSettings() generic.CompanySettings {
	return generic.CompanySettings{
		LegalName:    d.LegalName,
		ABN:          d.ABN,
		GstBasis:     generic.Basis(d.GstBasis),
		BasFrequency: generic.Frequency(d.BasFrequency),
		FYStartMonth: time.Month(d.FYStartMonth),
	}
}

type GstCodeDTO struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Description string          `json:"description"`
	RatePercent decimal.Decimal `json:"ratePercent"`
	IsActive    bool            `json:"isActive"`
}

type CreateGstCodeRequest struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Description string          `json:"description"`
	RatePercent decimal.Decimal `json:"ratePercent"`
	IsActive    *bool           `json:"isActive"`
}

func toGstCodeDTO(c generic.GstCode) GstCodeDTO {
	return GstCodeDTO{
		ID:          c.ID,
		Code:        c.Code,
		Description: c.Description,
		RatePercent: c.RatePercent,
		IsActive:    c.IsActive,
	}
}

type ClientDTO struct {
	ID               string         `json:"id"`
	DisplayName      string         `json:"displayName"`
	ContactEmail     string         `json:"contactEmail"`
	DefaultRateCents *generic.Cents `json:"defaultRateCents"`
	PaymentTermsDays int            `json:"paymentTermsDays"`
	IsActive         bool           `json:"isActive"`
	CreatedAt        string         `json:"createdAt"`
}

type CreateClientRequest struct {
	ID               string         `json:"id"`
	DisplayName      string         `json:"displayName"`
	ContactEmail     string         `json:"contactEmail"`
	DefaultRateCents *generic.Cents `json:"defaultRateCents"`
	PaymentTermsDays *int           `json:"paymentTermsDays"`
	IsActive         *bool          `json:"isActive"`
}

func toClientDTO(c generic.Client) ClientDTO {
	return ClientDTO{
		ID:               c.ID,
		DisplayName:      c.DisplayName,
		ContactEmail:     c.ContactEmail,
		DefaultRateCents: c.DefaultRateCents,
		PaymentTermsDays: c.PaymentTermsDays,
		IsActive:         c.IsActive,
		CreatedAt:        c.CreatedAt.Format(time.RFC3339),
	}
}

type EmployeeDTO struct {
	ID            string        `json:"id"`
	FullName      string        `json:"fullName"`
	Email         string        `json:"email"`
	BaseRateCents generic.Cents `json:"baseRateCents"`
	DefaultUnit   string        `json:"defaultUnit"`
	IsActive      bool          `json:"isActive"`
	CreatedAt     string        `json:"createdAt"`
}

type CreateEmployeeRequest struct {
	ID            string        `json:"id"`
	FullName      string        `json:"fullName"`
	Email         string        `json:"email"`
	BaseRateCents generic.Cents `json:"baseRateCents"`
	DefaultUnit   string        `json:"defaultUnit"`
	IsActive      *bool         `json:"isActive"`
}

func toEmployeeDTO(e generic.Employee) EmployeeDTO {
	return EmployeeDTO{
		ID:            e.ID,
		FullName:      e.FullName,
		Email:         e.Email,
		BaseRateCents: e.BaseRateCents,
		DefaultUnit:   string(e.DefaultUnit),
		IsActive:      e.IsActive,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// RATES
// =============================================================================

type RateDTO struct {
	ID            string        `json:"id"`
	ClientID      string        `json:"clientId"`
	EmployeeID    string        `json:"employeeId"`
	RateCents     generic.Cents `json:"rateCents"`
	Unit          string        `json:"unit"`
	EffectiveFrom generic.Date  `json:"effectiveFrom"`
	EffectiveTo   *generic.Date `json:"effectiveTo"`
	CreatedAt     string        `json:"createdAt"`
}

type CreateRateRequest struct {
	ClientID      string        `json:"clientId"`
	EmployeeID    string        `json:"employeeId"`
	RateCents     generic.Cents `json:"rateCents"`
	Unit          string        `json:"unit"`
	EffectiveFrom generic.Date  `json:"effectiveFrom"`
	EffectiveTo   *generic.Date `json:"effectiveTo"`
}

func (req CreateRateRequest) toInput() billing.RateInput {
	return billing.RateInput{
		ClientID:      req.ClientID,
		EmployeeID:    req.EmployeeID,
		RateCents:     req.RateCents,
		Unit:          generic.Unit(req.Unit),
		EffectiveFrom: req.EffectiveFrom,
		EffectiveTo:   nonZero(req.EffectiveTo),
	}
}

func toRateDTO(r generic.RateRecord) RateDTO {
	return RateDTO{
		ID:            r.ID,
		ClientID:      r.ClientID,
		EmployeeID:    r.EmployeeID,
		RateCents:     r.RateCents,
		Unit:          string(r.Unit),
		EffectiveFrom: r.EffectiveFrom,
		EffectiveTo:   r.EffectiveTo,
		CreatedAt:     r.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// INVOICES
// =============================================================================

type InvoiceRequest struct {
	ClientID         string               `json:"clientId"`
	IssueDate        generic.Date         `json:"issueDate"`
	DueDate          *generic.Date        `json:"dueDate"`
	CashReceivedDate *generic.Date        `json:"cashReceivedDate"`
	Status           string               `json:"status"`
	Reference        string               `json:"reference"`
	Notes            string               `json:"notes"`
	Lines            []InvoiceLineRequest `json:"lines"`
}

type InvoiceLineRequest struct {
	EmployeeID   string          `json:"employeeId"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	Rate         decimal.Decimal `json:"rate"`
	GstCodeID    string          `json:"gstCodeId"`
	OverrideRate bool            `json:"overrideRate"`
}

func (req InvoiceRequest) toDraft() billing.Draft {
	lines := make([]billing.LineInput, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = billing.LineInput{
			EmployeeID:   l.EmployeeID,
			Description:  l.Description,
			Quantity:     l.Quantity,
			Unit:         generic.Unit(l.Unit),
			Rate:         l.Rate,
			GstCodeID:    l.GstCodeID,
			OverrideRate: l.OverrideRate,
		}
	}
	return billing.Draft{
		ClientID:         req.ClientID,
		IssueDate:        req.IssueDate,
		DueDate:          nonZero(req.DueDate),
		CashReceivedDate: nonZero(req.CashReceivedDate),
		Status:           generic.InvoiceStatus(req.Status),
		Reference:        req.Reference,
		Notes:            req.Notes,
		Lines:            lines,
	}
}

type InvoiceDTO struct {
	ID               string           `json:"id"`
	InvoiceNumber    int64            `json:"invoiceNumber"`
	ClientID         string           `json:"clientId"`
	IssueDate        generic.Date     `json:"issueDate"`
	DueDate          generic.Date     `json:"dueDate"`
	CashReceivedDate *generic.Date    `json:"cashReceivedDate"`
	Status           string           `json:"status"`
	Reference        string           `json:"reference"`
	Notes            string           `json:"notes"`
	TotalExCents     generic.Cents    `json:"totalExCents"`
	TotalGstCents    generic.Cents    `json:"totalGstCents"`
	TotalIncCents    generic.Cents    `json:"totalIncCents"`
	Lines            []InvoiceLineDTO `json:"lines"`
	CreatedAt        string           `json:"createdAt"`
}

type InvoiceLineDTO struct {
	ID            string        `json:"id"`
	EmployeeID    string        `json:"employeeId"`
	Description   string        `json:"description"`
	Quantity      float64       `json:"quantity"`
	Unit          string        `json:"unit"`
	RateCents     generic.Cents `json:"rateCents"`
	AmountExCents generic.Cents `json:"amountExCents"`
	GstCents      generic.Cents `json:"gstCents"`
	GstCodeID     string        `json:"gstCodeId"`
}

func toInvoiceDTO(inv generic.Invoice) InvoiceDTO {
	lines := make([]InvoiceLineDTO, len(inv.Lines))
	for i, l := range inv.Lines {
		lines[i] = InvoiceLineDTO{
			ID:            l.ID,
			EmployeeID:    l.EmployeeID,
			Description:   l.Description,
			Quantity:      l.Quantity.InexactFloat64(),
			Unit:          string(l.Unit),
			RateCents:     l.RateCents,
			AmountExCents: l.AmountExCents,
			GstCents:      l.GstCents,
			GstCodeID:     l.GstCodeID,
		}
	}
	return InvoiceDTO{
		ID:               inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		ClientID:         inv.ClientID,
		IssueDate:        inv.IssueDate,
		DueDate:          inv.DueDate,
		CashReceivedDate: inv.CashReceivedDate,
		Status:           string(inv.Status),
		Reference:        inv.Reference,
		Notes:            inv.Notes,
		TotalExCents:     inv.TotalExCents,
		TotalGstCents:    inv.TotalGstCents,
		TotalIncCents:    inv.TotalIncCents,
		Lines:            lines,
		CreatedAt:        inv.CreatedAt.Format(time.RFC3339),
	}
}

// =============================================================================
// EXPENSES & RECEIPTS
// =============================================================================

type ExpenseRequest struct {
	SupplierName  string         `json:"supplierName"`
	Category      string         `json:"category"`
	AmountExCents generic.Cents  `json:"amountExCents"`
	GstCents      *generic.Cents `json:"gstCents"`
	GstCodeID     *string        `json:"gstCodeId"`
	IncurredDate  generic.Date   `json:"incurredDate"`
	Notes         string         `json:"notes"`
}

func (req ExpenseRequest) toInput() billing.ExpenseInput {
	return billing.ExpenseInput{
		SupplierName:  req.SupplierName,
		Category:      req.Category,
		AmountExCents: req.AmountExCents,
		GstCents:      req.GstCents,
		GstCodeID:     req.GstCodeID,
		IncurredDate:  req.IncurredDate,
		Notes:         req.Notes,
	}
}

type ExpenseDTO struct {
	ID            string        `json:"id"`
	SupplierName  string        `json:"supplierName"`
	Category      string        `json:"category"`
	AmountExCents generic.Cents `json:"amountExCents"`
	GstCents      generic.Cents `json:"gstCents"`
	GstCodeID     *string       `json:"gstCodeId"`
	IncurredDate  generic.Date  `json:"incurredDate"`
	Notes         string        `json:"notes"`
}

func toExpenseDTO(e generic.Expense) ExpenseDTO {
	return ExpenseDTO{
		ID:            e.ID,
		SupplierName:  e.SupplierName,
		Category:      e.Category,
		AmountExCents: e.AmountExCents,
		GstCents:      e.GstCents,
		GstCodeID:     e.GstCodeID,
		IncurredDate:  e.IncurredDate,
		Notes:         e.Notes,
	}
}

type ReceiptRequest struct {
	InvoiceID    string        `json:"invoiceId"`
	ReceivedDate generic.Date  `json:"receivedDate"`
	AmountCents  generic.Cents `json:"amountCents"`
	Notes        string        `json:"notes"`
}

func (req ReceiptRequest) toInput() billing.ReceiptInput {
	return billing.ReceiptInput{
		InvoiceID:    req.InvoiceID,
		ReceivedDate: req.ReceivedDate,
		AmountCents:  req.AmountCents,
		Notes:        req.Notes,
	}
}

type ReceiptDTO struct {
	ID           string        `json:"id"`
	InvoiceID    string        `json:"invoiceId"`
	ReceivedDate generic.Date  `json:"receivedDate"`
	AmountCents  generic.Cents `json:"amountCents"`
	Notes        string        `json:"notes"`
}

// =============================================================================
// REPORTS & SCENARIOS
// =============================================================================

// SnapshotRequest optionally narrows which fiscal year and basis to close.
type SnapshotRequest struct {
	Frequency       *string `json:"frequency"`
	Basis           *string `json:"basis"`
	FiscalYearStart *int    `json:"fiscalYearStart"`
	FYStartMonth    *int    `json:"fyStartMonth"`
}

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenarioId"`
}

func nonZero(d *generic.Date) *generic.Date {
	if d == nil || d.IsZero() {
		return nil
	}
	return d
}
