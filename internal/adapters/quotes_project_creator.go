package adapters

import (
	"context"

	"github.com/google/uuid"

	projectsvc "quotedesk_backend/internal/projects/service"
	"quotedesk_backend/internal/quotes/ports"
)

// ProjectFromQuoteCreator is the narrow projects surface used on convert.
type ProjectFromQuoteCreator interface {
	CreateFromQuote(ctx context.Context, in projectsvc.FromQuote) (uuid.UUID, error)
}

// QuotesProjectCreator adapts the projects service so converting a quote
// can create its project without the quotes module importing projects.
type QuotesProjectCreator struct {
	projects ProjectFromQuoteCreator
}

func NewQuotesProjectCreator(projects ProjectFromQuoteCreator) *QuotesProjectCreator {
	return &QuotesProjectCreator{projects: projects}
}

func (a *QuotesProjectCreator) CreateFromQuote(ctx context.Context, q ports.ConvertedQuote) (uuid.UUID, error) {
	return a.projects.CreateFromQuote(ctx, projectsvc.FromQuote{
		QuoteID:        q.QuoteID,
		OrganizationID: q.OrganizationID,
		ClientID:       q.ClientID,
		Title:          q.Title,
		ContractAmount: q.ContractAmount,
		TotalCost:      q.TotalCost,
	})
}

var _ ports.ProjectCreator = (*QuotesProjectCreator)(nil)
