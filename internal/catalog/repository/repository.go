package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"quotedesk_backend/platform/apperr"
)

const (
	itemNotFoundMessage     = "catalog item not found"
	supplierNotFoundMessage = "supplier not found"

	itemColumns     = "id, organization_id, name, description, unit, unit_price, cost_price, is_service, is_active, created_at, updated_at"
	supplierColumns = "id, organization_id, name, contact_name, email, phone, is_active, created_at, updated_at"
)

// Repo implements the catalog repository.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new catalog repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// CreateItem creates a master item.
func (r *Repo) CreateItem(ctx context.Context, params CreateItemParams) (Item, error) {
	query := `
		INSERT INTO catalog_items (organization_id, name, description, unit, unit_price, cost_price, is_service)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + itemColumns

	item, err := scanItem(r.pool.QueryRow(ctx, query,
		params.OrganizationID, params.Name, params.Description, params.Unit,
		params.UnitPrice, nullDecimal(params.CostPrice), params.IsService,
	))
	if err != nil {
		return Item{}, fmt.Errorf("create catalog item: %w", err)
	}
	return item, nil
}

// UpdateItem updates a master item.
func (r *Repo) UpdateItem(ctx context.Context, params UpdateItemParams) (Item, error) {
	query := `
		UPDATE catalog_items
		SET name = COALESCE($3, name),
			description = COALESCE($4, description),
			unit = COALESCE($5, unit),
			unit_price = COALESCE($6, unit_price),
			cost_price = CASE WHEN $7 THEN NULL ELSE COALESCE($8, cost_price) END,
			is_service = COALESCE($9, is_service),
			is_active = COALESCE($10, is_active),
			updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING ` + itemColumns

	item, err := scanItem(r.pool.QueryRow(ctx, query,
		params.ID, params.OrganizationID, params.Name, params.Description, params.Unit,
		nullDecimal(params.UnitPrice), params.ClearCostPrice, nullDecimal(params.CostPrice),
		params.IsService, params.IsActive,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, apperr.NotFound(itemNotFoundMessage)
		}
		return Item{}, fmt.Errorf("update catalog item: %w", err)
	}
	return item, nil
}

// DeactivateItem hides an item from the snapshot builder. Existing quote
// lines keep their frozen copy.
func (r *Repo) DeactivateItem(ctx context.Context, organizationID uuid.UUID, id uuid.UUID) error {
	query := `UPDATE catalog_items SET is_active = false, updated_at = now() WHERE id = $1 AND organization_id = $2`
	result, err := r.pool.Exec(ctx, query, id, organizationID)
	if err != nil {
		return fmt.Errorf("deactivate catalog item: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(itemNotFoundMessage)
	}
	return nil
}

// GetItemByID retrieves an item by ID, active or not.
func (r *Repo) GetItemByID(ctx context.Context, organizationID uuid.UUID, id uuid.UUID) (Item, error) {
	query := `SELECT ` + itemColumns + ` FROM catalog_items WHERE id = $1 AND organization_id = $2`

	item, err := scanItem(r.pool.QueryRow(ctx, query, id, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, apperr.NotFound(itemNotFoundMessage)
		}
		return Item{}, fmt.Errorf("get catalog item by id: %w", err)
	}
	return item, nil
}

// ListItems lists items with filters and pagination.
func (r *Repo) ListItems(ctx context.Context, params ListItemsParams) ([]Item, int, error) {
	whereClauses := []string{"organization_id = $1"}
	args := []interface{}{params.OrganizationID}
	argIdx := 2

	if !params.IncludeInactive {
		whereClauses = append(whereClauses, "is_active")
	}
	if params.Search != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("(name ILIKE $%d OR description ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+params.Search+"%")
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM catalog_items WHERE %s", whereClause)
	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count catalog items: %w", err)
	}

	sortColumn := "name"
	switch params.SortBy {
	case "unitPrice":
		sortColumn = "unit_price"
	case "createdAt":
		sortColumn = "created_at"
	case "updatedAt":
		sortColumn = "updated_at"
	}

	sortOrder := "ASC"
	if params.SortOrder == "desc" {
		sortOrder = "DESC"
	}

	args = append(args, params.Limit, params.Offset)
	query := fmt.Sprintf(`
		SELECT %s
		FROM catalog_items
		WHERE %s
		ORDER BY %s %s, name ASC
		LIMIT $%d OFFSET $%d
	`, itemColumns, whereClause, sortColumn, sortOrder, argIdx, argIdx+1)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list catalog items: %w", err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan catalog item: %w", err)
		}
		items = append(items, item)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate catalog items: %w", rows.Err())
	}

	return items, total, nil
}

// CreateSupplier creates a supplier.
func (r *Repo) CreateSupplier(ctx context.Context, params CreateSupplierParams) (Supplier, error) {
	query := `
		INSERT INTO catalog_suppliers (organization_id, name, contact_name, email, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + supplierColumns

	supplier, err := scanSupplier(r.pool.QueryRow(ctx, query,
		params.OrganizationID, params.Name, params.ContactName, params.Email, params.Phone,
	))
	if err != nil {
		return Supplier{}, fmt.Errorf("create supplier: %w", err)
	}
	return supplier, nil
}

// UpdateSupplier updates a supplier.
func (r *Repo) UpdateSupplier(ctx context.Context, params UpdateSupplierParams) (Supplier, error) {
	query := `
		UPDATE catalog_suppliers
		SET name = COALESCE($3, name),
			contact_name = COALESCE($4, contact_name),
			email = COALESCE($5, email),
			phone = COALESCE($6, phone),
			is_active = COALESCE($7, is_active),
			updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING ` + supplierColumns

	supplier, err := scanSupplier(r.pool.QueryRow(ctx, query,
		params.ID, params.OrganizationID, params.Name, params.ContactName, params.Email, params.Phone, params.IsActive,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Supplier{}, apperr.NotFound(supplierNotFoundMessage)
		}
		return Supplier{}, fmt.Errorf("update supplier: %w", err)
	}
	return supplier, nil
}

// DeactivateSupplier marks a supplier inactive.
func (r *Repo) DeactivateSupplier(ctx context.Context, organizationID uuid.UUID, id uuid.UUID) error {
	query := `UPDATE catalog_suppliers SET is_active = false, updated_at = now() WHERE id = $1 AND organization_id = $2`
	result, err := r.pool.Exec(ctx, query, id, organizationID)
	if err != nil {
		return fmt.Errorf("deactivate supplier: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperr.NotFound(supplierNotFoundMessage)
	}
	return nil
}

// GetSupplierByID retrieves a supplier by ID, active or not.
func (r *Repo) GetSupplierByID(ctx context.Context, organizationID uuid.UUID, id uuid.UUID) (Supplier, error) {
	query := `SELECT ` + supplierColumns + ` FROM catalog_suppliers WHERE id = $1 AND organization_id = $2`

	supplier, err := scanSupplier(r.pool.QueryRow(ctx, query, id, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Supplier{}, apperr.NotFound(supplierNotFoundMessage)
		}
		return Supplier{}, fmt.Errorf("get supplier by id: %w", err)
	}
	return supplier, nil
}

// ListSuppliers lists suppliers with filters and pagination.
func (r *Repo) ListSuppliers(ctx context.Context, params ListSuppliersParams) ([]Supplier, int, error) {
	query := `
		SELECT ` + supplierColumns + `, COUNT(*) OVER() AS total
		FROM catalog_suppliers
		WHERE organization_id = $1
			AND ($2::bool OR is_active)
			AND ($3::text = '' OR name ILIKE '%' || $3 || '%' OR contact_name ILIKE '%' || $3 || '%')
		ORDER BY name ASC
		LIMIT $4 OFFSET $5`

	rows, err := r.pool.Query(ctx, query, params.OrganizationID, params.IncludeInactive, params.Search, params.Limit, params.Offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	suppliers := make([]Supplier, 0)
	total := 0
	for rows.Next() {
		var s Supplier
		if err := rows.Scan(
			&s.ID, &s.OrganizationID, &s.Name, &s.ContactName, &s.Email, &s.Phone,
			&s.IsActive, &s.CreatedAt, &s.UpdatedAt, &total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan supplier: %w", err)
		}
		suppliers = append(suppliers, s)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate suppliers: %w", rows.Err())
	}

	return suppliers, total, nil
}

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	var cost decimal.NullDecimal
	if err := row.Scan(
		&item.ID, &item.OrganizationID, &item.Name, &item.Description, &item.Unit,
		&item.UnitPrice, &cost, &item.IsService, &item.IsActive, &item.CreatedAt, &item.UpdatedAt,
	); err != nil {
		return Item{}, err
	}
	if cost.Valid {
		v := cost.Decimal
		item.CostPrice = &v
	}
	return item, nil
}

func scanSupplier(row pgx.Row) (Supplier, error) {
	var s Supplier
	if err := row.Scan(
		&s.ID, &s.OrganizationID, &s.Name, &s.ContactName, &s.Email, &s.Phone,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return Supplier{}, err
	}
	return s, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
