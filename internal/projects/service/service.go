package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"quotedesk_backend/internal/projects/domain"
	"quotedesk_backend/internal/projects/repository"
	"quotedesk_backend/internal/projects/transport"
	"quotedesk_backend/platform/apperr"
	"quotedesk_backend/platform/logger"
)

// FromQuote is what a project copies from an approved quote.
type FromQuote struct {
	QuoteID        uuid.UUID
	OrganizationID uuid.UUID
	ClientID       *uuid.UUID
	Title          string
	ContractAmount decimal.Decimal
	TotalCost      decimal.Decimal
}

type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// CreateFromQuote opens a planned project for a quote. Each quote converts
// at most once.
func (s *Service) CreateFromQuote(ctx context.Context, in FromQuote) (uuid.UUID, error) {
	if in.ContractAmount.IsNegative() || in.TotalCost.IsNegative() {
		return uuid.Nil, apperr.Validation("project amounts must not be negative")
	}

	p, err := s.repo.Create(ctx, repository.Project{
		ID:             uuid.New(),
		OrganizationID: in.OrganizationID,
		QuoteID:        in.QuoteID,
		ClientID:       in.ClientID,
		Title:          in.Title,
		ContractAmount: in.ContractAmount,
		TotalCost:      in.TotalCost,
		Status:         domain.StatusPlanned,
	})
	if err != nil {
		return uuid.Nil, err
	}

	s.log.Info("project created from quote", "projectId", p.ID, "quoteId", in.QuoteID, "contractAmount", p.ContractAmount.String())
	return p.ID, nil
}

func (s *Service) GetByID(ctx context.Context, tenantID, id uuid.UUID) (transport.ProjectResponse, error) {
	p, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return transport.ProjectResponse{}, err
	}
	return toResponse(p), nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, req transport.ListProjectsRequest) (transport.ProjectListResponse, error) {
	page, pageSize := req.Page, req.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	params := repository.ListParams{OrganizationID: tenantID, Limit: pageSize, Offset: (page - 1) * pageSize}
	if req.Status != "" {
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			return transport.ProjectListResponse{}, err
		}
		params.Status = &status
	}

	items, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.ProjectListResponse{}, err
	}

	resp := transport.ProjectListResponse{
		Items:      make([]transport.ProjectResponse, 0, len(items)),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: (total + pageSize - 1) / pageSize,
	}
	for _, p := range items {
		resp.Items = append(resp.Items, toResponse(p))
	}
	return resp, nil
}

// UpdateStatus applies a lifecycle transition.
func (s *Service) UpdateStatus(ctx context.Context, tenantID, id uuid.UUID, req transport.UpdateStatusRequest) (transport.ProjectResponse, error) {
	next, err := domain.ParseStatus(req.Status)
	if err != nil {
		return transport.ProjectResponse{}, err
	}

	current, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return transport.ProjectResponse{}, err
	}
	if !current.Status.CanTransitionTo(next) {
		return transport.ProjectResponse{}, apperr.InvalidStateTransition(string(current.Status), string(next))
	}

	updated, err := s.repo.UpdateStatus(ctx, id, tenantID, current.Status, next)
	if err != nil {
		return transport.ProjectResponse{}, err
	}

	s.log.Info("project status changed", "projectId", id, "from", current.Status, "to", next)
	return toResponse(updated), nil
}

func toResponse(p repository.Project) transport.ProjectResponse {
	return transport.ProjectResponse{
		ID:             p.ID,
		QuoteID:        p.QuoteID,
		ClientID:       p.ClientID,
		Title:          p.Title,
		ContractAmount: p.ContractAmount,
		TotalCost:      p.TotalCost,
		Status:         string(p.Status),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}
