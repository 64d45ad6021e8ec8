package adapters

import (
	"context"

	"github.com/google/uuid"

	catrepo "quotedesk_backend/internal/catalog/repository"
	"quotedesk_backend/internal/quotes/ports"
)

// CatalogMasterReader is the narrow catalog surface the quotes module needs.
type CatalogMasterReader interface {
	GetMasterItem(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (catrepo.Item, error)
	GetMasterSupplier(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (catrepo.Supplier, error)
}

// QuotesCatalogReader adapts the catalog service for the quotes domain.
type QuotesCatalogReader struct {
	catalog CatalogMasterReader
}

// NewQuotesCatalogReader creates a new catalog reader adapter.
func NewQuotesCatalogReader(catalog CatalogMasterReader) *QuotesCatalogReader {
	return &QuotesCatalogReader{catalog: catalog}
}

// GetMasterItem returns the item including inactive ones; the snapshot
// builder decides whether an inactive item may be referenced.
func (a *QuotesCatalogReader) GetMasterItem(ctx context.Context, organizationID, id uuid.UUID) (ports.MasterItem, error) {
	item, err := a.catalog.GetMasterItem(ctx, organizationID, id)
	if err != nil {
		return ports.MasterItem{}, err
	}

	return ports.MasterItem{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Unit:        item.Unit,
		UnitPrice:   item.UnitPrice,
		CostPrice:   item.CostPrice,
		IsService:   item.IsService,
		IsActive:    item.IsActive,
	}, nil
}

func (a *QuotesCatalogReader) GetMasterSupplier(ctx context.Context, organizationID, id uuid.UUID) (ports.MasterSupplier, error) {
	supplier, err := a.catalog.GetMasterSupplier(ctx, organizationID, id)
	if err != nil {
		return ports.MasterSupplier{}, err
	}

	return ports.MasterSupplier{
		ID:       supplier.ID,
		Name:     supplier.Name,
		IsActive: supplier.IsActive,
	}, nil
}

// Compile-time check that QuotesCatalogReader implements ports.CatalogReader.
var _ ports.CatalogReader = (*QuotesCatalogReader)(nil)
