// Package clients provides the clients bounded context module. Quotes
// reference a client and freeze its name at creation.
package clients

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"quotedesk_backend/internal/clients/handler"
	"quotedesk_backend/internal/clients/repository"
	"quotedesk_backend/internal/clients/service"
	apphttp "quotedesk_backend/internal/http"
	"quotedesk_backend/platform/logger"
	"quotedesk_backend/platform/validator"
)

// Module is the clients bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the clients module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), log)
	return &Module{handler: handler.New(svc, val), service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "clients"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts client routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/clients"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
