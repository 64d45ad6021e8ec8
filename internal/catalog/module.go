// Package catalog provides the master catalog bounded context module:
// items and suppliers that quote lines are snapshotted from.
package catalog

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"quotedesk_backend/internal/catalog/handler"
	"quotedesk_backend/internal/catalog/repository"
	"quotedesk_backend/internal/catalog/service"
	apphttp "quotedesk_backend/internal/http"
	"quotedesk_backend/platform/logger"
	"quotedesk_backend/platform/validator"
)

// Module is the catalog bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the catalog module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	svc := service.New(repository.New(pool), log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "catalog"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts catalog routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Protected read-only endpoints
	ctx.Protected.GET("/catalog/items", m.handler.ListItems)
	ctx.Protected.GET("/catalog/items/:id", m.handler.GetItemByID)
	ctx.Protected.GET("/catalog/suppliers", m.handler.ListSuppliers)
	ctx.Protected.GET("/catalog/suppliers/:id", m.handler.GetSupplierByID)

	// Admin CRUD endpoints
	adminGroup := ctx.Admin.Group("/catalog")
	adminGroup.POST("/items", m.handler.CreateItem)
	adminGroup.PUT("/items/:id", m.handler.UpdateItem)
	adminGroup.DELETE("/items/:id", m.handler.DeactivateItem)
	adminGroup.POST("/suppliers", m.handler.CreateSupplier)
	adminGroup.PUT("/suppliers/:id", m.handler.UpdateSupplier)
	adminGroup.DELETE("/suppliers/:id", m.handler.DeactivateSupplier)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
