package adapters

import (
	"context"

	"github.com/google/uuid"

	"quotedesk_backend/internal/quotes/ports"
)

// ClientNameReader is the narrow interface for fetching a client's name.
type ClientNameReader interface {
	GetClientName(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (string, error)
}

// QuotesClientReader adapts the clients service for the quotes domain.
type QuotesClientReader struct {
	clients ClientNameReader
}

func NewQuotesClientReader(clients ClientNameReader) *QuotesClientReader {
	return &QuotesClientReader{clients: clients}
}

func (a *QuotesClientReader) GetClientName(ctx context.Context, organizationID, id uuid.UUID) (string, error) {
	return a.clients.GetClientName(ctx, organizationID, id)
}

var _ ports.ClientReader = (*QuotesClientReader)(nil)
