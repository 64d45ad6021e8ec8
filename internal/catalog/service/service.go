package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"quotedesk_backend/internal/catalog/repository"
	"quotedesk_backend/internal/catalog/transport"
	"quotedesk_backend/platform/apperr"
	"quotedesk_backend/platform/logger"
	"quotedesk_backend/platform/phone"
	"quotedesk_backend/platform/sanitize"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// Service provides business logic for the master catalog.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new catalog service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// GetItemByID retrieves an item by ID.
func (s *Service) GetItemByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (transport.ItemResponse, error) {
	item, err := s.repo.GetItemByID(ctx, tenantID, id)
	if err != nil {
		return transport.ItemResponse{}, err
	}
	return toItemResponse(item), nil
}

// GetMasterItem returns the stored item, including inactive ones, for
// cross-module readers.
func (s *Service) GetMasterItem(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (repository.Item, error) {
	return s.repo.GetItemByID(ctx, tenantID, id)
}

// GetMasterSupplier returns the stored supplier for cross-module readers.
func (s *Service) GetMasterSupplier(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (repository.Supplier, error) {
	return s.repo.GetSupplierByID(ctx, tenantID, id)
}

// ListItems retrieves items with search and pagination.
func (s *Service) ListItems(ctx context.Context, tenantID uuid.UUID, req transport.ListItemsRequest) (transport.ItemListResponse, error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)

	items, total, err := s.repo.ListItems(ctx, repository.ListItemsParams{
		OrganizationID:  tenantID,
		Search:          strings.TrimSpace(req.Search),
		IncludeInactive: req.IncludeInactive,
		Offset:          (page - 1) * pageSize,
		Limit:           pageSize,
		SortBy:          req.SortBy,
		SortOrder:       req.SortOrder,
	})
	if err != nil {
		return transport.ItemListResponse{}, err
	}

	resp := transport.ItemListResponse{
		Items:      make([]transport.ItemResponse, 0, len(items)),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}
	for _, item := range items {
		resp.Items = append(resp.Items, toItemResponse(item))
	}
	return resp, nil
}

// CreateItem creates a master item.
func (s *Service) CreateItem(ctx context.Context, tenantID uuid.UUID, req transport.CreateItemRequest) (transport.ItemResponse, error) {
	if err := validatePrices(&req.UnitPrice, req.CostPrice); err != nil {
		return transport.ItemResponse{}, err
	}

	item, err := s.repo.CreateItem(ctx, repository.CreateItemParams{
		OrganizationID: tenantID,
		Name:           sanitize.Name(req.Name),
		Description:    sanitize.Text(req.Description),
		Unit:           strings.TrimSpace(req.Unit),
		UnitPrice:      req.UnitPrice,
		CostPrice:      req.CostPrice,
		IsService:      req.IsService,
	})
	if err != nil {
		return transport.ItemResponse{}, err
	}

	s.log.Info("catalog item created", "id", item.ID, "name", item.Name)
	return toItemResponse(item), nil
}

// UpdateItem updates a master item. Quote lines already snapshotted from it
// are unaffected.
func (s *Service) UpdateItem(ctx context.Context, tenantID uuid.UUID, id uuid.UUID, req transport.UpdateItemRequest) (transport.ItemResponse, error) {
	if err := validatePrices(req.UnitPrice, req.CostPrice); err != nil {
		return transport.ItemResponse{}, err
	}
	if req.ClearCostPrice && req.CostPrice != nil {
		return transport.ItemResponse{}, apperr.Validation("costPrice and clearCostPrice are mutually exclusive")
	}

	var name *string
	if req.Name != nil {
		n := sanitize.Name(*req.Name)
		name = &n
	}

	item, err := s.repo.UpdateItem(ctx, repository.UpdateItemParams{
		ID:             id,
		OrganizationID: tenantID,
		Name:           name,
		Description:    sanitize.TextPtr(req.Description),
		Unit:           trimPtr(req.Unit),
		UnitPrice:      req.UnitPrice,
		CostPrice:      req.CostPrice,
		ClearCostPrice: req.ClearCostPrice,
		IsService:      req.IsService,
		IsActive:       req.IsActive,
	})
	if err != nil {
		return transport.ItemResponse{}, err
	}

	s.log.Info("catalog item updated", "id", item.ID, "name", item.Name)
	return toItemResponse(item), nil
}

// DeactivateItem soft-deletes a master item.
func (s *Service) DeactivateItem(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	if err := s.repo.DeactivateItem(ctx, tenantID, id); err != nil {
		return err
	}
	s.log.Info("catalog item deactivated", "id", id)
	return nil
}

// GetSupplierByID retrieves a supplier by ID.
func (s *Service) GetSupplierByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (transport.SupplierResponse, error) {
	supplier, err := s.repo.GetSupplierByID(ctx, tenantID, id)
	if err != nil {
		return transport.SupplierResponse{}, err
	}
	return toSupplierResponse(supplier), nil
}

// ListSuppliers retrieves suppliers with search and pagination.
func (s *Service) ListSuppliers(ctx context.Context, tenantID uuid.UUID, req transport.ListSuppliersRequest) (transport.SupplierListResponse, error) {
	page, pageSize := normalizePage(req.Page, req.PageSize)

	suppliers, total, err := s.repo.ListSuppliers(ctx, repository.ListSuppliersParams{
		OrganizationID:  tenantID,
		Search:          strings.TrimSpace(req.Search),
		IncludeInactive: req.IncludeInactive,
		Offset:          (page - 1) * pageSize,
		Limit:           pageSize,
	})
	if err != nil {
		return transport.SupplierListResponse{}, err
	}

	resp := transport.SupplierListResponse{
		Items:      make([]transport.SupplierResponse, 0, len(suppliers)),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}
	for _, supplier := range suppliers {
		resp.Items = append(resp.Items, toSupplierResponse(supplier))
	}
	return resp, nil
}

// CreateSupplier creates a supplier. Phone numbers are stored in E.164.
func (s *Service) CreateSupplier(ctx context.Context, tenantID uuid.UUID, req transport.CreateSupplierRequest) (transport.SupplierResponse, error) {
	supplier, err := s.repo.CreateSupplier(ctx, repository.CreateSupplierParams{
		OrganizationID: tenantID,
		Name:           sanitize.Name(req.Name),
		ContactName:    trimPtr(req.ContactName),
		Email:          normalizeEmail(req.Email),
		Phone:          phone.NormalizeE164Ptr(req.Phone),
	})
	if err != nil {
		return transport.SupplierResponse{}, err
	}

	s.log.Info("supplier created", "id", supplier.ID, "name", supplier.Name)
	return toSupplierResponse(supplier), nil
}

// UpdateSupplier updates a supplier.
func (s *Service) UpdateSupplier(ctx context.Context, tenantID uuid.UUID, id uuid.UUID, req transport.UpdateSupplierRequest) (transport.SupplierResponse, error) {
	var name *string
	if req.Name != nil {
		n := sanitize.Name(*req.Name)
		name = &n
	}

	supplier, err := s.repo.UpdateSupplier(ctx, repository.UpdateSupplierParams{
		ID:             id,
		OrganizationID: tenantID,
		Name:           name,
		ContactName:    trimPtr(req.ContactName),
		Email:          normalizeEmail(req.Email),
		Phone:          phone.NormalizeE164Ptr(req.Phone),
		IsActive:       req.IsActive,
	})
	if err != nil {
		return transport.SupplierResponse{}, err
	}

	s.log.Info("supplier updated", "id", supplier.ID, "name", supplier.Name)
	return toSupplierResponse(supplier), nil
}

// DeactivateSupplier soft-deletes a supplier.
func (s *Service) DeactivateSupplier(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) error {
	if err := s.repo.DeactivateSupplier(ctx, tenantID, id); err != nil {
		return err
	}
	s.log.Info("supplier deactivated", "id", id)
	return nil
}

func validatePrices(unitPrice, costPrice *decimal.Decimal) error {
	if unitPrice != nil && unitPrice.IsNegative() {
		return apperr.Validation("unitPrice must not be negative").WithDetails(map[string]string{"path": "unitPrice"})
	}
	if costPrice != nil && costPrice.IsNegative() {
		return apperr.Validation("costPrice must not be negative").WithDetails(map[string]string{"path": "costPrice"})
	}
	return nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return page, pageSize
}

func totalPages(total, pageSize int) int {
	if total == 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

func trimPtr(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	return &trimmed
}

func normalizeEmail(value *string) *string {
	if value == nil {
		return nil
	}
	normalized := strings.ToLower(strings.TrimSpace(*value))
	return &normalized
}

func toItemResponse(item repository.Item) transport.ItemResponse {
	return transport.ItemResponse{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Unit:        item.Unit,
		UnitPrice:   item.UnitPrice,
		CostPrice:   item.CostPrice,
		IsService:   item.IsService,
		IsActive:    item.IsActive,
		CreatedAt:   item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   item.UpdatedAt.Format(time.RFC3339),
	}
}

func toSupplierResponse(supplier repository.Supplier) transport.SupplierResponse {
	return transport.SupplierResponse{
		ID:          supplier.ID,
		Name:        supplier.Name,
		ContactName: supplier.ContactName,
		Email:       supplier.Email,
		Phone:       supplier.Phone,
		IsActive:    supplier.IsActive,
		CreatedAt:   supplier.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   supplier.UpdatedAt.Format(time.RFC3339),
	}
}
