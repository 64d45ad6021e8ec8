package transport

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Items

type CreateItemRequest struct {
	Name        string           `json:"name" validate:"required,min=1,max=200"`
	Description string           `json:"description" validate:"max=2000"`
	Unit        string           `json:"unit" validate:"max=50"`
	UnitPrice   decimal.Decimal  `json:"unitPrice"`
	CostPrice   *decimal.Decimal `json:"costPrice,omitempty"`
	IsService   bool             `json:"isService"`
}

type UpdateItemRequest struct {
	Name           *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description    *string          `json:"description,omitempty" validate:"omitempty,max=2000"`
	Unit           *string          `json:"unit,omitempty" validate:"omitempty,max=50"`
	UnitPrice      *decimal.Decimal `json:"unitPrice,omitempty"`
	CostPrice      *decimal.Decimal `json:"costPrice,omitempty"`
	ClearCostPrice bool             `json:"clearCostPrice,omitempty"`
	IsService      *bool            `json:"isService,omitempty"`
	IsActive       *bool            `json:"isActive,omitempty"`
}

type ListItemsRequest struct {
	Search          string `form:"search" validate:"max=100"`
	IncludeInactive bool   `form:"includeInactive"`
	Page            int    `form:"page" validate:"omitempty,min=1"`
	PageSize        int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
	SortBy          string `form:"sortBy" validate:"omitempty,oneof=name unitPrice createdAt updatedAt"`
	SortOrder       string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

type ItemResponse struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Unit        string           `json:"unit"`
	UnitPrice   decimal.Decimal  `json:"unitPrice"`
	CostPrice   *decimal.Decimal `json:"costPrice,omitempty"`
	IsService   bool             `json:"isService"`
	IsActive    bool             `json:"isActive"`
	CreatedAt   string           `json:"createdAt"`
	UpdatedAt   string           `json:"updatedAt"`
}

type ItemListResponse struct {
	Items      []ItemResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}

// Suppliers

type CreateSupplierRequest struct {
	Name        string  `json:"name" validate:"required,min=1,max=200"`
	ContactName *string `json:"contactName,omitempty" validate:"omitempty,max=100"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=30"`
}

type UpdateSupplierRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	ContactName *string `json:"contactName,omitempty" validate:"omitempty,max=100"`
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone       *string `json:"phone,omitempty" validate:"omitempty,max=30"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

type ListSuppliersRequest struct {
	Search          string `form:"search" validate:"max=100"`
	IncludeInactive bool   `form:"includeInactive"`
	Page            int    `form:"page" validate:"omitempty,min=1"`
	PageSize        int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
}

type SupplierResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	ContactName *string   `json:"contactName,omitempty"`
	Email       *string   `json:"email,omitempty"`
	Phone       *string   `json:"phone,omitempty"`
	IsActive    bool      `json:"isActive"`
	CreatedAt   string    `json:"createdAt"`
	UpdatedAt   string    `json:"updatedAt"`
}

type SupplierListResponse struct {
	Items      []SupplierResponse `json:"items"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	PageSize   int                `json:"pageSize"`
	TotalPages int                `json:"totalPages"`
}
