package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"quotedesk_backend/internal/quotes/domain"
)

// ListParams contains parameters for listing quotes
type ListParams struct {
	OrganizationID uuid.UUID
	Status         *domain.Status
	ClientID       *uuid.UUID
	Search         string
	Page           int
	PageSize       int
}

// ListResult contains the paginated result of listing quotes. Listed quotes
// carry headers only.
type ListResult struct {
	Items      []domain.Quote
	Total      int
	Page       int
	PageSize   int
	TotalPages int
}

// ExpirableQuote identifies an approved quote whose validity has lapsed.
type ExpirableQuote struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
}

// Repository is the persistence boundary of the quote aggregate.
type Repository interface {
	NextQuoteNumber(ctx context.Context, orgID uuid.UUID, year int) (string, error)
	Create(ctx context.Context, q *domain.Quote) error
	GetByID(ctx context.Context, id, orgID uuid.UUID) (*domain.Quote, error)
	List(ctx context.Context, params ListParams) (*ListResult, error)
	// Save writes the header and replaces the tree when the stored version
	// still equals expectedVersion, then bumps the version.
	Save(ctx context.Context, q *domain.Quote, expectedVersion int) error
	ListExpirable(ctx context.Context, asOf time.Time, limit int) ([]ExpirableQuote, error)

	CreateTemplate(ctx context.Context, t domain.Template) error
	ListTemplates(ctx context.Context, orgID uuid.UUID) ([]domain.Template, error)
	GetTemplate(ctx context.Context, id, orgID uuid.UUID) (domain.Template, error)
}
