package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is a master catalog item that detail lines can be snapshotted from.
type Item struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	Description    string
	Unit           string
	UnitPrice      decimal.Decimal
	CostPrice      *decimal.Decimal
	IsService      bool
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Supplier is a master supplier record.
type Supplier struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	ContactName    *string
	Email          *string
	Phone          *string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateItemParams contains data for creating an item.
type CreateItemParams struct {
	OrganizationID uuid.UUID
	Name           string
	Description    string
	Unit           string
	UnitPrice      decimal.Decimal
	CostPrice      *decimal.Decimal
	IsService      bool
}

// UpdateItemParams contains data for updating an item. Nil fields are kept.
type UpdateItemParams struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           *string
	Description    *string
	Unit           *string
	UnitPrice      *decimal.Decimal
	CostPrice      *decimal.Decimal
	ClearCostPrice bool
	IsService      *bool
	IsActive       *bool
}

// ListItemsParams defines filters for listing items.
type ListItemsParams struct {
	OrganizationID  uuid.UUID
	Search          string
	IncludeInactive bool
	Offset          int
	Limit           int
	SortBy          string
	SortOrder       string
}

// CreateSupplierParams contains data for creating a supplier.
type CreateSupplierParams struct {
	OrganizationID uuid.UUID
	Name           string
	ContactName    *string
	Email          *string
	Phone          *string
}

// UpdateSupplierParams contains data for updating a supplier. Nil fields are kept.
type UpdateSupplierParams struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           *string
	ContactName    *string
	Email          *string
	Phone          *string
	IsActive       *bool
}

// ListSuppliersParams defines filters for listing suppliers.
type ListSuppliersParams struct {
	OrganizationID  uuid.UUID
	Search          string
	IncludeInactive bool
	Offset          int
	Limit           int
}

// Repository defines catalog storage operations.
type Repository interface {
	CreateItem(ctx context.Context, params CreateItemParams) (Item, error)
	UpdateItem(ctx context.Context, params UpdateItemParams) (Item, error)
	DeactivateItem(ctx context.Context, organizationID uuid.UUID, id uuid.UUID) error
	GetItemByID(ctx context.Context, organizationID uuid.UUID, id uuid.UUID) (Item, error)
	ListItems(ctx context.Context, params ListItemsParams) ([]Item, int, error)

	CreateSupplier(ctx context.Context, params CreateSupplierParams) (Supplier, error)
	UpdateSupplier(ctx context.Context, params UpdateSupplierParams) (Supplier, error)
	DeactivateSupplier(ctx context.Context, organizationID uuid.UUID, id uuid.UUID) error
	GetSupplierByID(ctx context.Context, organizationID uuid.UUID, id uuid.UUID) (Supplier, error)
	ListSuppliers(ctx context.Context, params ListSuppliersParams) ([]Supplier, int, error)
}
