package transport

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of issue and validity dates.
const DateLayout = "2006-01-02"

// ── Requests ──────────────────────────────────────────────────────────────────

// CreateQuoteRequest is the request body for creating a new quote
type CreateQuoteRequest struct {
	ProjectTitle   string           `json:"projectTitle" validate:"required,max=200"`
	ClientID       *uuid.UUID       `json:"clientId"`
	IssueDate      string           `json:"issueDate" validate:"omitempty,datetime=2006-01-02"`
	ValidUntil     string           `json:"validUntil" validate:"omitempty,datetime=2006-01-02"`
	VATType        string           `json:"vatType" validate:"omitempty,vattype"`
	DiscountAmount *decimal.Decimal `json:"discountAmount"`
	AgencyFeeRate  *decimal.Decimal `json:"agencyFeeRate"`
	TemplateID     *uuid.UUID       `json:"templateId"`
}

// UpdateQuoteRequest patches the quote header.
type UpdateQuoteRequest struct {
	Version         int              `json:"version" validate:"required,min=1"`
	ProjectTitle    *string          `json:"projectTitle" validate:"omitempty,max=200"`
	IssueDate       *string          `json:"issueDate" validate:"omitempty,datetime=2006-01-02"`
	ValidUntil      *string          `json:"validUntil" validate:"omitempty,datetime=2006-01-02"`
	ClearValidUntil bool             `json:"clearValidUntil"`
	VATType         *string          `json:"vatType" validate:"omitempty,vattype"`
	DiscountAmount  *decimal.Decimal `json:"discountAmount"`
	AgencyFeeRate   *decimal.Decimal `json:"agencyFeeRate"`
}

// ListQuotesRequest holds list filters and pagination.
type ListQuotesRequest struct {
	Status   string `form:"status" validate:"omitempty,oneof=draft submitted under_review approved rejected expired"`
	ClientID string `form:"clientId" validate:"omitempty,uuid"`
	Search   string `form:"search" validate:"max=100"`
	Page     int    `form:"page" validate:"omitempty,min=1"`
	PageSize int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

// TransitionRequest moves a quote along the status machine.
type TransitionRequest struct {
	Version int    `json:"version" validate:"required,min=1"`
	Status  string `json:"status" validate:"required,oneof=draft submitted under_review approved rejected expired"`
}

// VersionRequest carries only the expected version.
type VersionRequest struct {
	Version int `json:"version" form:"version" validate:"required,min=1"`
}

// AddGroupRequest appends a group.
type AddGroupRequest struct {
	Version int    `json:"version" validate:"required,min=1"`
	Name    string `json:"name" validate:"required,max=200"`
}

// UpdateGroupRequest patches a group.
type UpdateGroupRequest struct {
	Version      int     `json:"version" validate:"required,min=1"`
	Name         *string `json:"name" validate:"omitempty,max=200"`
	IncludeInFee *bool   `json:"includeInFee"`
	SortOrder    *int    `json:"sortOrder" validate:"omitempty,min=0"`
}

// AddItemRequest appends an item to a group.
type AddItemRequest struct {
	Version int    `json:"version" validate:"required,min=1"`
	Name    string `json:"name" validate:"required,max=200"`
}

// UpdateItemRequest patches an item.
type UpdateItemRequest struct {
	Version      int     `json:"version" validate:"required,min=1"`
	Name         *string `json:"name" validate:"omitempty,max=200"`
	IncludeInFee *bool   `json:"includeInFee"`
	SortOrder    *int    `json:"sortOrder" validate:"omitempty,min=0"`
}

// AddDetailRequest appends a blank line, or a snapshot of a master item
// when MasterItemID is set.
type AddDetailRequest struct {
	Version      int              `json:"version" validate:"required,min=1"`
	MasterItemID *uuid.UUID       `json:"masterItemId"`
	SupplierID   *uuid.UUID       `json:"supplierId"`
	Quantity     *decimal.Decimal `json:"quantity"`
	Days         *decimal.Decimal `json:"days"`
}

// UpdateDetailRequest patches a line.
type UpdateDetailRequest struct {
	Version     int              `json:"version" validate:"required,min=1"`
	Name        *string          `json:"name" validate:"omitempty,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=2000"`
	Unit        *string          `json:"unit" validate:"omitempty,max=50"`
	Quantity    *decimal.Decimal `json:"quantity"`
	Days        *decimal.Decimal `json:"days"`
	UnitPrice   *decimal.Decimal `json:"unitPrice"`
	CostPrice   *decimal.Decimal `json:"costPrice"`
	IsService   *bool            `json:"isService"`
	SortOrder   *int             `json:"sortOrder" validate:"omitempty,min=0"`
}

// ApplyTemplateRequest replaces the tree with a template.
type ApplyTemplateRequest struct {
	Version    int       `json:"version" validate:"required,min=1"`
	TemplateID uuid.UUID `json:"templateId" validate:"required"`
}

// SaveTemplateRequest stores a quote's tree as an organization template.
type SaveTemplateRequest struct {
	QuoteID     uuid.UUID `json:"quoteId" validate:"required"`
	Name        string    `json:"name" validate:"required,max=200"`
	Description string    `json:"description" validate:"max=2000"`
}

// CalculateRequest is a stateless calculation over an unsaved tree.
type CalculateRequest struct {
	Groups         []GroupInput    `json:"groups" validate:"dive"`
	AgencyFeeRate  decimal.Decimal `json:"agencyFeeRate"`
	DiscountAmount decimal.Decimal `json:"discountAmount"`
	VATType        string          `json:"vatType" validate:"omitempty,vattype"`
}

// GroupInput is a group of an unsaved tree.
type GroupInput struct {
	ID           *uuid.UUID  `json:"id"`
	Name         string      `json:"name" validate:"max=200"`
	SortOrder    int         `json:"sortOrder" validate:"min=0"`
	IncludeInFee *bool       `json:"includeInFee"`
	Items        []ItemInput `json:"items" validate:"dive"`
}

// ItemInput is an item of an unsaved tree.
type ItemInput struct {
	ID        *uuid.UUID    `json:"id"`
	Name      string        `json:"name" validate:"max=200"`
	SortOrder int           `json:"sortOrder" validate:"min=0"`
	Details   []DetailInput `json:"details" validate:"dive"`
}

// DetailInput is a line of an unsaved tree.
type DetailInput struct {
	ID        *uuid.UUID      `json:"id"`
	Name      string          `json:"name" validate:"max=200"`
	Quantity  decimal.Decimal `json:"quantity"`
	Days      decimal.Decimal `json:"days"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	CostPrice decimal.Decimal `json:"costPrice"`
	SortOrder int             `json:"sortOrder" validate:"min=0"`
}

// ── Responses ─────────────────────────────────────────────────────────────────

// DetailResponse is a line as returned to clients.
type DetailResponse struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	Days         decimal.Decimal `json:"days"`
	Unit         string          `json:"unit"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	CostPrice    decimal.Decimal `json:"costPrice"`
	LineTotal    decimal.Decimal `json:"lineTotal"`
	IsService    bool            `json:"isService"`
	SupplierID   *uuid.UUID      `json:"supplierId,omitempty"`
	SupplierName string          `json:"supplierName"`
	MasterItemID *uuid.UUID      `json:"masterItemId,omitempty"`
	SnapshotAt   *time.Time      `json:"snapshotAt,omitempty"`
	SortOrder    int             `json:"sortOrder"`
}

// ItemResponse is an item as returned to clients.
type ItemResponse struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	SortOrder    int              `json:"sortOrder"`
	IncludeInFee bool             `json:"includeInFee"`
	Details      []DetailResponse `json:"details"`
}

// GroupResponse is a group as returned to clients.
type GroupResponse struct {
	ID           uuid.UUID      `json:"id"`
	Name         string         `json:"name"`
	SortOrder    int            `json:"sortOrder"`
	IncludeInFee bool           `json:"includeInFee"`
	Items        []ItemResponse `json:"items"`
}

// ItemTotalResponse is the per-item calculation breakdown.
type ItemTotalResponse struct {
	ID    uuid.UUID       `json:"id"`
	Name  string          `json:"name"`
	Total decimal.Decimal `json:"total"`
	Cost  decimal.Decimal `json:"cost"`
}

// GroupBreakdownResponse is the per-group calculation breakdown.
type GroupBreakdownResponse struct {
	ID           uuid.UUID           `json:"id"`
	Name         string              `json:"name"`
	IncludeInFee bool                `json:"includeInFee"`
	Subtotal     decimal.Decimal     `json:"subtotal"`
	Cost         decimal.Decimal     `json:"cost"`
	Items        []ItemTotalResponse `json:"items"`
}

// CalculationResponse is the financial summary of a quote.
type CalculationResponse struct {
	Groups                 []GroupBreakdownResponse `json:"groups"`
	Subtotal               decimal.Decimal          `json:"subtotal"`
	FeeApplicableAmount    decimal.Decimal          `json:"feeApplicableAmount"`
	FeeExcludedAmount      decimal.Decimal          `json:"feeExcludedAmount"`
	AgencyFee              decimal.Decimal          `json:"agencyFee"`
	DiscountAmount         decimal.Decimal          `json:"discountAmount"`
	TotalBeforeVAT         decimal.Decimal          `json:"totalBeforeVat"`
	VATAmount              decimal.Decimal          `json:"vatAmount"`
	FinalTotal             decimal.Decimal          `json:"finalTotal"`
	TotalCost              decimal.Decimal          `json:"totalCost"`
	TotalProfit            decimal.Decimal          `json:"totalProfit"`
	ProfitMarginPercentage decimal.Decimal          `json:"profitMarginPercentage"`
	GrossMarginPercentage  decimal.Decimal          `json:"grossMarginPercentage"`
}

// QuoteResponse is the full quote with its tree and current calculation.
type QuoteResponse struct {
	ID             uuid.UUID            `json:"id"`
	QuoteNumber    string               `json:"quoteNumber"`
	ProjectTitle   string               `json:"projectTitle"`
	ClientID       *uuid.UUID           `json:"clientId,omitempty"`
	ClientName     string               `json:"clientName"`
	IssueDate      string               `json:"issueDate"`
	ValidUntil     *string              `json:"validUntil,omitempty"`
	Status         string               `json:"status"`
	VATType        string               `json:"vatType"`
	DiscountAmount decimal.Decimal      `json:"discountAmount"`
	AgencyFeeRate  decimal.Decimal      `json:"agencyFeeRate"`
	TotalAmount    decimal.Decimal      `json:"totalAmount"`
	Version        int                  `json:"version"`
	Groups         []GroupResponse      `json:"groups"`
	Calculation    *CalculationResponse `json:"calculation,omitempty"`
	Notices        []string             `json:"notices,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

// QuoteSummary is a list row.
type QuoteSummary struct {
	ID           uuid.UUID       `json:"id"`
	QuoteNumber  string          `json:"quoteNumber"`
	ProjectTitle string          `json:"projectTitle"`
	ClientID     *uuid.UUID      `json:"clientId,omitempty"`
	ClientName   string          `json:"clientName"`
	IssueDate    string          `json:"issueDate"`
	ValidUntil   *string         `json:"validUntil,omitempty"`
	Status       string          `json:"status"`
	TotalAmount  decimal.Decimal `json:"totalAmount"`
	Version      int             `json:"version"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// QuoteListResponse is a page of quotes.
type QuoteListResponse struct {
	Items      []QuoteSummary `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

// TemplateResponse is a built-in or organization template.
type TemplateResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	BuiltIn     bool            `json:"builtIn"`
	Groups      []GroupResponse `json:"groups"`
}

// ConvertResponse names the project created from a quote.
type ConvertResponse struct {
	QuoteID   uuid.UUID `json:"quoteId"`
	ProjectID uuid.UUID `json:"projectId"`
}
