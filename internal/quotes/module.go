// Package quotes provides the quotes domain module: assembly, calculation,
// status lifecycle and templates.
package quotes

import (
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"quotedesk_backend/internal/events"
	apphttp "quotedesk_backend/internal/http"
	"quotedesk_backend/internal/quotes/handler"
	"quotedesk_backend/internal/quotes/ports"
	"quotedesk_backend/internal/quotes/repository"
	"quotedesk_backend/internal/quotes/service"
	"quotedesk_backend/platform/config"
	"quotedesk_backend/platform/logger"
	"quotedesk_backend/platform/validator"
)

// Collaborators are the cross-module readers and writers the quotes module
// consumes. Adapters in internal/adapters implement them.
type Collaborators struct {
	Catalog  ports.CatalogReader
	Clients  ports.ClientReader
	Projects ports.ProjectCreator
}

// Module represents the quotes domain module
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates a new quotes module with all dependencies wired
func NewModule(pool *pgxpool.Pool, eventBus events.Bus, val *validator.Validator, cfg config.PricingConfig, log *logger.Logger, deps Collaborators) (*Module, error) {
	policy, err := service.NewCostPolicy(cfg.GetCostPolicy(), cfg.GetDefaultCostRatio())
	if err != nil {
		return nil, fmt.Errorf("quotes cost policy: %w", err)
	}

	svc, err := service.New(service.Deps{
		Repo:           repository.New(pool),
		Snapshots:      service.NewSnapshotBuilder(deps.Catalog, policy, nil),
		Clients:        deps.Clients,
		Projects:       deps.Projects,
		EventBus:       eventBus,
		Log:            log,
		DefaultFeeRate: decimal.NewFromFloat(cfg.GetDefaultAgencyFeeRate()),
	})
	if err != nil {
		return nil, fmt.Errorf("quotes service: %w", err)
	}

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}, nil
}

// Name returns the module name for logging
func (m *Module) Name() string {
	return "quotes"
}

// Service returns the service layer for external use
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes registers the module's routes
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	m.handler.RegisterRoutes(ctx.Protected.Group("/quotes"))
	m.handler.RegisterTemplateRoutes(ctx.Protected.Group("/quote-templates"))
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
