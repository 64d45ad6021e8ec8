package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quotedesk_backend/platform/apperr"
)

const clientNotFoundMsg = "client not found"

const clientColumns = `id, organization_id, name, contact_name, email, phone, business_number, created_at, updated_at`

type Client struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           string
	ContactName    *string
	Email          *string
	Phone          *string
	BusinessNumber *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ClientUpdate struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	Name           *string
	ContactName    *string
	Email          *string
	Phone          *string
	BusinessNumber *string
}

type ListParams struct {
	OrganizationID uuid.UUID
	Search         string
	SortBy         string
	SortOrder      string
	Page           int
	PageSize       int
}

type ListResult struct {
	Items      []Client
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// Repository is the storage contract for clients.
type Repository interface {
	Create(ctx context.Context, client Client) (Client, error)
	GetByID(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (Client, error)
	Update(ctx context.Context, update ClientUpdate) (Client, error)
	List(ctx context.Context, params ListParams) (ListResult, error)
}

// Repo provides database operations for clients.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new clients repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

func (r *Repo) Create(ctx context.Context, client Client) (Client, error) {
	query := `
		INSERT INTO clients (id, organization_id, name, contact_name, email, phone, business_number)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + clientColumns

	created, err := scanClient(r.pool.QueryRow(ctx, query,
		client.ID,
		client.OrganizationID,
		client.Name,
		client.ContactName,
		client.Email,
		client.Phone,
		client.BusinessNumber,
	))
	if err != nil {
		return Client{}, fmt.Errorf("create client: %w", err)
	}
	return created, nil
}

func (r *Repo) GetByID(ctx context.Context, id uuid.UUID, organizationID uuid.UUID) (Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE id = $1 AND organization_id = $2`

	client, err := scanClient(r.pool.QueryRow(ctx, query, id, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, apperr.NotFound(clientNotFoundMsg)
		}
		return Client{}, fmt.Errorf("get client: %w", err)
	}
	return client, nil
}

func (r *Repo) Update(ctx context.Context, update ClientUpdate) (Client, error) {
	query := `
		UPDATE clients
		SET
			name = COALESCE($3, name),
			contact_name = COALESCE($4, contact_name),
			email = COALESCE($5, email),
			phone = COALESCE($6, phone),
			business_number = COALESCE($7, business_number),
			updated_at = now()
		WHERE id = $1 AND organization_id = $2
		RETURNING ` + clientColumns

	client, err := scanClient(r.pool.QueryRow(ctx, query,
		update.ID,
		update.OrganizationID,
		update.Name,
		update.ContactName,
		update.Email,
		update.Phone,
		update.BusinessNumber,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Client{}, apperr.NotFound(clientNotFoundMsg)
		}
		return Client{}, fmt.Errorf("update client: %w", err)
	}
	return client, nil
}

func (r *Repo) List(ctx context.Context, params ListParams) (ListResult, error) {
	searchParam := optionalSearch(params.Search)

	baseQuery := `
		FROM clients
		WHERE organization_id = $1
			AND ($2::text IS NULL OR name ILIKE $2 OR contact_name ILIKE $2 OR email ILIKE $2 OR business_number ILIKE $2)
	`
	args := []interface{}{params.OrganizationID, searchParam}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return ListResult{}, fmt.Errorf("count clients: %w", err)
	}

	page := params.Page
	pageSize := params.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	offset := (page - 1) * pageSize
	pageTotal := (total + pageSize - 1) / pageSize

	selectQuery := `SELECT ` + clientColumns + baseQuery + `
		ORDER BY
			CASE WHEN $3 = 'name' AND $4 = 'asc' THEN name END ASC,
			CASE WHEN $3 = 'name' AND $4 = 'desc' THEN name END DESC,
			CASE WHEN $3 = 'createdAt' AND $4 = 'asc' THEN created_at END ASC,
			CASE WHEN $3 = 'createdAt' AND $4 = 'desc' THEN created_at END DESC,
			name ASC
		LIMIT $5 OFFSET $6
	`
	rows, err := r.pool.Query(ctx, selectQuery, append(args, resolveSortBy(params.SortBy), resolveSortOrder(params.SortOrder), pageSize, offset)...)
	if err != nil {
		return ListResult{}, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	items := make([]Client, 0)
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return ListResult{}, fmt.Errorf("scan client: %w", err)
		}
		items = append(items, client)
	}
	if rows.Err() != nil {
		return ListResult{}, fmt.Errorf("iterate clients: %w", rows.Err())
	}

	return ListResult{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: pageTotal,
	}, nil
}

func scanClient(row pgx.Row) (Client, error) {
	var client Client
	err := row.Scan(
		&client.ID,
		&client.OrganizationID,
		&client.Name,
		&client.ContactName,
		&client.Email,
		&client.Phone,
		&client.BusinessNumber,
		&client.CreatedAt,
		&client.UpdatedAt,
	)
	return client, err
}

func optionalSearch(search string) *string {
	trimmed := strings.TrimSpace(search)
	if trimmed == "" {
		return nil
	}
	pattern := "%" + trimmed + "%"
	return &pattern
}

func resolveSortBy(sortBy string) string {
	if sortBy == "createdAt" {
		return sortBy
	}
	return "name"
}

func resolveSortOrder(order string) string {
	if order == "desc" {
		return order
	}
	return "asc"
}
