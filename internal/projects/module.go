// Package projects provides the projects bounded context module. Projects
// are opened from approved quotes.
package projects

import (
	"github.com/jackc/pgx/v5/pgxpool"

	apphttp "quotedesk_backend/internal/http"
	"quotedesk_backend/internal/projects/handler"
	"quotedesk_backend/internal/projects/repository"
	"quotedesk_backend/internal/projects/service"
	"quotedesk_backend/platform/logger"
	"quotedesk_backend/platform/validator"
)

// Module is the projects bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the projects module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), log)
	return &Module{handler: handler.New(svc, val), service: svc}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "projects"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts project routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/projects"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
