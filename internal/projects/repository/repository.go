package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"quotedesk_backend/internal/projects/domain"
	"quotedesk_backend/platform/apperr"
)

const (
	projectNotFoundMsg = "project not found"
	uniqueViolation    = "23505"

	projectColumns = `id, organization_id, quote_id, client_id, title, contract_amount, total_cost, status, created_at, updated_at`
)

type Project struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	QuoteID        uuid.UUID
	ClientID       *uuid.UUID
	Title          string
	ContractAmount decimal.Decimal
	TotalCost      decimal.Decimal
	Status         domain.Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type ListParams struct {
	OrganizationID uuid.UUID
	Status         *domain.Status
	Limit          int
	Offset         int
}

// Repository is the storage contract for projects.
type Repository interface {
	Create(ctx context.Context, p Project) (Project, error)
	GetByID(ctx context.Context, id, organizationID uuid.UUID) (Project, error)
	List(ctx context.Context, params ListParams) ([]Project, int, error)
	UpdateStatus(ctx context.Context, id, organizationID uuid.UUID, from, to domain.Status) (Project, error)
}

type Repo struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

var _ Repository = (*Repo)(nil)

// Create inserts a project. A second project for the same quote is a Conflict.
func (r *Repo) Create(ctx context.Context, p Project) (Project, error) {
	query := `
		INSERT INTO projects (id, organization_id, quote_id, client_id, title, contract_amount, total_cost, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + projectColumns

	created, err := scanProject(r.pool.QueryRow(ctx, query,
		p.ID, p.OrganizationID, p.QuoteID, p.ClientID, p.Title, p.ContractAmount, p.TotalCost, string(p.Status),
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Project{}, apperr.Conflict("quote already converted to a project").
				WithDetails(map[string]string{"quoteId": p.QuoteID.String()})
		}
		return Project{}, fmt.Errorf("create project: %w", err)
	}
	return created, nil
}

func (r *Repo) GetByID(ctx context.Context, id, organizationID uuid.UUID) (Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1 AND organization_id = $2`

	p, err := scanProject(r.pool.QueryRow(ctx, query, id, organizationID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, apperr.NotFound(projectNotFoundMsg)
		}
		return Project{}, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

func (r *Repo) List(ctx context.Context, params ListParams) ([]Project, int, error) {
	var status *string
	if params.Status != nil {
		s := string(*params.Status)
		status = &s
	}

	var total int
	if err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM projects
		WHERE organization_id = $1 AND ($2::text IS NULL OR status = $2)`,
		params.OrganizationID, status,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count projects: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+projectColumns+` FROM projects
		WHERE organization_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4`,
		params.OrganizationID, status, params.Limit, params.Offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	items := make([]Project, 0)
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan project: %w", err)
		}
		items = append(items, p)
	}
	if rows.Err() != nil {
		return nil, 0, fmt.Errorf("iterate projects: %w", rows.Err())
	}
	return items, total, nil
}

// UpdateStatus moves a project from one status to another. The from guard
// makes a concurrent transition fail instead of overwriting it.
func (r *Repo) UpdateStatus(ctx context.Context, id, organizationID uuid.UUID, from, to domain.Status) (Project, error) {
	query := `
		UPDATE projects SET status = $4, updated_at = now()
		WHERE id = $1 AND organization_id = $2 AND status = $3
		RETURNING ` + projectColumns

	p, err := scanProject(r.pool.QueryRow(ctx, query, id, organizationID, string(from), string(to)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Project{}, apperr.ConcurrentModification("project status changed concurrently")
		}
		return Project{}, fmt.Errorf("update project status: %w", err)
	}
	return p, nil
}

func scanProject(row pgx.Row) (Project, error) {
	var p Project
	var status string
	if err := row.Scan(
		&p.ID, &p.OrganizationID, &p.QuoteID, &p.ClientID, &p.Title,
		&p.ContractAmount, &p.TotalCost, &status, &p.CreatedAt, &p.UpdatedAt,
	); err != nil {
		return Project{}, err
	}
	p.Status = domain.Status(status)
	return p, nil
}
