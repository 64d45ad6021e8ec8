// Package ports defines the interfaces the quotes module consumes from
// other bounded contexts. Adapters in internal/adapters implement them.
package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MasterItem is the catalog view the snapshot builder needs.
type MasterItem struct {
	ID          uuid.UUID
	Name        string
	Description string
	Unit        string
	UnitPrice   decimal.Decimal
	CostPrice   *decimal.Decimal
	IsService   bool
	IsActive    bool
}

// MasterSupplier is the catalog view of a supplier.
type MasterSupplier struct {
	ID       uuid.UUID
	Name     string
	IsActive bool
}

// CatalogReader reads master records. Missing records return apperr.NotFound.
type CatalogReader interface {
	GetMasterItem(ctx context.Context, organizationID, id uuid.UUID) (MasterItem, error)
	GetMasterSupplier(ctx context.Context, organizationID, id uuid.UUID) (MasterSupplier, error)
}
