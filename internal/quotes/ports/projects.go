package ports

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConvertedQuote carries what a project needs from an approved quote.
type ConvertedQuote struct {
	QuoteID        uuid.UUID
	OrganizationID uuid.UUID
	ClientID       *uuid.UUID
	Title          string
	ContractAmount decimal.Decimal
	TotalCost      decimal.Decimal
}

// ProjectCreator creates the downstream project for an approved quote.
type ProjectCreator interface {
	CreateFromQuote(ctx context.Context, q ConvertedQuote) (uuid.UUID, error)
}
