package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotedesk_backend/internal/catalog/repository"
	"quotedesk_backend/internal/catalog/transport"
	"quotedesk_backend/platform/apperr"
	"quotedesk_backend/platform/logger"
)

type fakeRepo struct {
	items      map[uuid.UUID]repository.Item
	suppliers  map[uuid.UUID]repository.Supplier
	lastList   repository.ListItemsParams
	lastUpdate repository.UpdateItemParams
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		items:     map[uuid.UUID]repository.Item{},
		suppliers: map[uuid.UUID]repository.Supplier{},
	}
}

func (f *fakeRepo) CreateItem(_ context.Context, p repository.CreateItemParams) (repository.Item, error) {
	item := repository.Item{
		ID: uuid.New(), OrganizationID: p.OrganizationID, Name: p.Name, Description: p.Description,
		Unit: p.Unit, UnitPrice: p.UnitPrice, CostPrice: p.CostPrice, IsService: p.IsService,
		IsActive: true, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}
	f.items[item.ID] = item
	return item, nil
}

func (f *fakeRepo) UpdateItem(_ context.Context, p repository.UpdateItemParams) (repository.Item, error) {
	f.lastUpdate = p
	item, ok := f.items[p.ID]
	if !ok || item.OrganizationID != p.OrganizationID {
		return repository.Item{}, apperr.NotFound("catalog item not found")
	}
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.UnitPrice != nil {
		item.UnitPrice = *p.UnitPrice
	}
	if p.ClearCostPrice {
		item.CostPrice = nil
	} else if p.CostPrice != nil {
		item.CostPrice = p.CostPrice
	}
	f.items[p.ID] = item
	return item, nil
}

func (f *fakeRepo) DeactivateItem(_ context.Context, orgID, id uuid.UUID) error {
	item, ok := f.items[id]
	if !ok || item.OrganizationID != orgID {
		return apperr.NotFound("catalog item not found")
	}
	item.IsActive = false
	f.items[id] = item
	return nil
}

func (f *fakeRepo) GetItemByID(_ context.Context, orgID, id uuid.UUID) (repository.Item, error) {
	item, ok := f.items[id]
	if !ok || item.OrganizationID != orgID {
		return repository.Item{}, apperr.NotFound("catalog item not found")
	}
	return item, nil
}

func (f *fakeRepo) ListItems(_ context.Context, p repository.ListItemsParams) ([]repository.Item, int, error) {
	f.lastList = p
	out := make([]repository.Item, 0)
	for _, item := range f.items {
		if item.OrganizationID == p.OrganizationID && (p.IncludeInactive || item.IsActive) {
			out = append(out, item)
		}
	}
	return out, len(out), nil
}

func (f *fakeRepo) CreateSupplier(_ context.Context, p repository.CreateSupplierParams) (repository.Supplier, error) {
	s := repository.Supplier{
		ID: uuid.New(), OrganizationID: p.OrganizationID, Name: p.Name,
		ContactName: p.ContactName, Email: p.Email, Phone: p.Phone, IsActive: true,
	}
	f.suppliers[s.ID] = s
	return s, nil
}

func (f *fakeRepo) UpdateSupplier(_ context.Context, p repository.UpdateSupplierParams) (repository.Supplier, error) {
	s, ok := f.suppliers[p.ID]
	if !ok {
		return repository.Supplier{}, apperr.NotFound("supplier not found")
	}
	if p.Phone != nil {
		s.Phone = p.Phone
	}
	f.suppliers[p.ID] = s
	return s, nil
}

func (f *fakeRepo) DeactivateSupplier(_ context.Context, _, id uuid.UUID) error {
	s, ok := f.suppliers[id]
	if !ok {
		return apperr.NotFound("supplier not found")
	}
	s.IsActive = false
	f.suppliers[id] = s
	return nil
}

func (f *fakeRepo) GetSupplierByID(_ context.Context, _, id uuid.UUID) (repository.Supplier, error) {
	s, ok := f.suppliers[id]
	if !ok {
		return repository.Supplier{}, apperr.NotFound("supplier not found")
	}
	return s, nil
}

func (f *fakeRepo) ListSuppliers(_ context.Context, _ repository.ListSuppliersParams) ([]repository.Supplier, int, error) {
	return nil, 0, nil
}

func ptr[T any](v T) *T { return &v }

func TestCreateItemSanitizesAndRejectsNegativePrice(t *testing.T) {
	svc := New(newFakeRepo(), logger.Nop())
	orgID := uuid.New()

	_, err := svc.CreateItem(context.Background(), orgID, transport.CreateItemRequest{
		Name:      "Stage",
		UnitPrice: decimal.NewFromInt(-1),
	})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	item, err := svc.CreateItem(context.Background(), orgID, transport.CreateItemRequest{
		Name:      "  LED   <b>wall</b> ",
		Unit:      " ea ",
		UnitPrice: decimal.NewFromInt(500000),
	})
	require.NoError(t, err)
	assert.Equal(t, "LED wall", item.Name)
	assert.Equal(t, "ea", item.Unit)
	assert.Nil(t, item.CostPrice)
	assert.True(t, item.IsActive)
}

func TestUpdateItemCostPriceFlagsAreExclusive(t *testing.T) {
	repo := newFakeRepo()
	svc := New(repo, logger.Nop())
	orgID := uuid.New()

	created, err := svc.CreateItem(context.Background(), orgID, transport.CreateItemRequest{
		Name: "Crew", UnitPrice: decimal.NewFromInt(100), CostPrice: ptr(decimal.NewFromInt(60)),
	})
	require.NoError(t, err)

	_, err = svc.UpdateItem(context.Background(), orgID, created.ID, transport.UpdateItemRequest{
		CostPrice: ptr(decimal.NewFromInt(70)), ClearCostPrice: true,
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	updated, err := svc.UpdateItem(context.Background(), orgID, created.ID, transport.UpdateItemRequest{ClearCostPrice: true})
	require.NoError(t, err)
	assert.Nil(t, updated.CostPrice)
	assert.True(t, repo.lastUpdate.ClearCostPrice)
}

func TestDeactivateItemHidesFromDefaultList(t *testing.T) {
	svc := New(newFakeRepo(), logger.Nop())
	orgID := uuid.New()

	created, err := svc.CreateItem(context.Background(), orgID, transport.CreateItemRequest{Name: "Truss", UnitPrice: decimal.NewFromInt(10)})
	require.NoError(t, err)
	require.NoError(t, svc.DeactivateItem(context.Background(), orgID, created.ID))

	list, err := svc.ListItems(context.Background(), orgID, transport.ListItemsRequest{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, defaultPageSize, list.PageSize)

	all, err := svc.ListItems(context.Background(), orgID, transport.ListItemsRequest{IncludeInactive: true, PageSize: 500})
	require.NoError(t, err)
	require.Len(t, all.Items, 1)
	assert.False(t, all.Items[0].IsActive)
	assert.Equal(t, maxPageSize, all.PageSize)

	master, err := svc.GetMasterItem(context.Background(), orgID, created.ID)
	require.NoError(t, err)
	assert.False(t, master.IsActive)
}

func TestDeactivateUnknownItemIsNotFound(t *testing.T) {
	svc := New(newFakeRepo(), logger.Nop())
	err := svc.DeactivateItem(context.Background(), uuid.New(), uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCreateSupplierNormalizesContactFields(t *testing.T) {
	svc := New(newFakeRepo(), logger.Nop())

	supplier, err := svc.CreateSupplier(context.Background(), uuid.New(), transport.CreateSupplierRequest{
		Name:  "Seoul Sound",
		Email: ptr("  Ops@SeoulSound.KR "),
		Phone: ptr("010-1234-5678"),
	})
	require.NoError(t, err)
	require.NotNil(t, supplier.Email)
	assert.Equal(t, "ops@seoulsound.kr", *supplier.Email)
	require.NotNil(t, supplier.Phone)
	assert.Equal(t, "+821012345678", *supplier.Phone)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, totalPages(0, 20))
	assert.Equal(t, 1, totalPages(20, 20))
	assert.Equal(t, 2, totalPages(21, 20))
}
