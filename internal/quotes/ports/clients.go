package ports

import (
	"context"

	"github.com/google/uuid"
)

// ClientReader resolves the client name frozen onto a new quote.
type ClientReader interface {
	GetClientName(ctx context.Context, organizationID, id uuid.UUID) (string, error)
}
