package adapters

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catrepo "quotedesk_backend/internal/catalog/repository"
	projectsvc "quotedesk_backend/internal/projects/service"
	"quotedesk_backend/internal/quotes/ports"
	"quotedesk_backend/platform/apperr"
)

type stubCatalog struct {
	items     map[uuid.UUID]catrepo.Item
	suppliers map[uuid.UUID]catrepo.Supplier
}

func (s stubCatalog) GetMasterItem(_ context.Context, tenantID, id uuid.UUID) (catrepo.Item, error) {
	item, ok := s.items[id]
	if !ok || item.OrganizationID != tenantID {
		return catrepo.Item{}, apperr.NotFound("item not found")
	}
	return item, nil
}

func (s stubCatalog) GetMasterSupplier(_ context.Context, tenantID, id uuid.UUID) (catrepo.Supplier, error) {
	sup, ok := s.suppliers[id]
	if !ok || sup.OrganizationID != tenantID {
		return catrepo.Supplier{}, apperr.NotFound("supplier not found")
	}
	return sup, nil
}

type stubProjects struct {
	got projectsvc.FromQuote
	id  uuid.UUID
}

func (s *stubProjects) CreateFromQuote(_ context.Context, in projectsvc.FromQuote) (uuid.UUID, error) {
	s.got = in
	return s.id, nil
}

func TestQuotesCatalogReaderMapsItem(t *testing.T) {
	orgID := uuid.New()
	cost := decimal.RequireFromString("7000")
	item := catrepo.Item{
		ID:             uuid.New(),
		OrganizationID: orgID,
		Name:           "Tile work",
		Unit:           "m2",
		UnitPrice:      decimal.RequireFromString("10000"),
		CostPrice:      &cost,
		IsActive:       false,
	}
	reader := NewQuotesCatalogReader(stubCatalog{items: map[uuid.UUID]catrepo.Item{item.ID: item}})

	got, err := reader.GetMasterItem(context.Background(), orgID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tile work", got.Name)
	assert.True(t, got.UnitPrice.Equal(item.UnitPrice))
	require.NotNil(t, got.CostPrice)
	assert.True(t, got.CostPrice.Equal(cost))
	assert.False(t, got.IsActive)
}

func TestQuotesCatalogReaderPropagatesNotFound(t *testing.T) {
	reader := NewQuotesCatalogReader(stubCatalog{})

	_, err := reader.GetMasterItem(context.Background(), uuid.New(), uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = reader.GetMasterSupplier(context.Background(), uuid.New(), uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestQuotesProjectCreatorMapsConvertedQuote(t *testing.T) {
	projects := &stubProjects{id: uuid.New()}
	creator := NewQuotesProjectCreator(projects)
	clientID := uuid.New()
	in := ports.ConvertedQuote{
		QuoteID:        uuid.New(),
		OrganizationID: uuid.New(),
		ClientID:       &clientID,
		Title:          "Office fit-out",
		ContractAmount: decimal.RequireFromString("1100000"),
		TotalCost:      decimal.RequireFromString("700000"),
	}

	id, err := creator.CreateFromQuote(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, projects.id, id)
	assert.Equal(t, in.QuoteID, projects.got.QuoteID)
	assert.Equal(t, &clientID, projects.got.ClientID)
	assert.True(t, projects.got.ContractAmount.Equal(in.ContractAmount))
}
