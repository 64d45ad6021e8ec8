package service

import (
	"context"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"quotedesk_backend/internal/clients/repository"
	"quotedesk_backend/internal/clients/transport"
	"quotedesk_backend/platform/apperr"
	"quotedesk_backend/platform/logger"
	"quotedesk_backend/platform/phone"
	"quotedesk_backend/platform/sanitize"
)

// Business registration numbers are 10 digits, usually written 000-00-00000.
var businessNumberPattern = regexp.MustCompile(`^\d{10}$`)

// Service provides business logic for clients.
type Service struct {
	repo repository.Repository
	log  *logger.Logger
}

// New creates a new clients service.
func New(repo repository.Repository, log *logger.Logger) *Service {
	return &Service{repo: repo, log: log}
}

func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req transport.CreateClientRequest) (transport.ClientResponse, error) {
	name := sanitize.Name(req.Name)
	if name == "" {
		return transport.ClientResponse{}, apperr.Validation("name is required")
	}

	businessNumber, err := normalizeBusinessNumber(req.BusinessNumber)
	if err != nil {
		return transport.ClientResponse{}, err
	}

	created, err := s.repo.Create(ctx, repository.Client{
		ID:             uuid.New(),
		OrganizationID: tenantID,
		Name:           name,
		ContactName:    normalizeOptional(req.ContactName, sanitize.Name),
		Email:          normalizeOptional(req.Email, normalizeEmail),
		Phone:          normalizeOptional(req.Phone, phone.NormalizeE164),
		BusinessNumber: businessNumber,
	})
	if err != nil {
		return transport.ClientResponse{}, err
	}

	s.log.Info("client created", "id", created.ID, "organizationId", tenantID)
	return mapClientResponse(created), nil
}

func (s *Service) GetByID(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (transport.ClientResponse, error) {
	client, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return transport.ClientResponse{}, err
	}
	return mapClientResponse(client), nil
}

// GetClientName returns the display name frozen onto new quotes.
func (s *Service) GetClientName(ctx context.Context, tenantID uuid.UUID, id uuid.UUID) (string, error) {
	client, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return "", err
	}
	return client.Name, nil
}

func (s *Service) Update(ctx context.Context, tenantID uuid.UUID, id uuid.UUID, req transport.UpdateClientRequest) (transport.ClientResponse, error) {
	var businessNumber *string
	if req.BusinessNumber != nil {
		normalized, err := normalizeBusinessNumber(*req.BusinessNumber)
		if err != nil {
			return transport.ClientResponse{}, err
		}
		businessNumber = normalized
	}

	updated, err := s.repo.Update(ctx, repository.ClientUpdate{
		ID:             id,
		OrganizationID: tenantID,
		Name:           normalizeOptionalString(req.Name, sanitize.Name),
		ContactName:    normalizeOptionalString(req.ContactName, sanitize.Name),
		Email:          normalizeOptionalString(req.Email, normalizeEmail),
		Phone:          normalizeOptionalString(req.Phone, phone.NormalizeE164),
		BusinessNumber: businessNumber,
	})
	if err != nil {
		return transport.ClientResponse{}, err
	}

	return mapClientResponse(updated), nil
}

func (s *Service) List(ctx context.Context, tenantID uuid.UUID, req transport.ListClientsRequest) (transport.ClientListResponse, error) {
	result, err := s.repo.List(ctx, repository.ListParams{
		OrganizationID: tenantID,
		Search:         req.Search,
		SortBy:         req.SortBy,
		SortOrder:      req.SortOrder,
		Page:           req.Page,
		PageSize:       req.PageSize,
	})
	if err != nil {
		return transport.ClientListResponse{}, err
	}

	items := make([]transport.ClientResponse, 0, len(result.Items))
	for _, client := range result.Items {
		items = append(items, mapClientResponse(client))
	}

	return transport.ClientListResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

func mapClientResponse(client repository.Client) transport.ClientResponse {
	return transport.ClientResponse{
		ID:             client.ID,
		Name:           client.Name,
		ContactName:    client.ContactName,
		Email:          client.Email,
		Phone:          client.Phone,
		BusinessNumber: client.BusinessNumber,
		CreatedAt:      client.CreatedAt,
		UpdatedAt:      client.UpdatedAt,
	}
}

// normalizeBusinessNumber strips separators and checks the digit count.
// An empty value means "not provided".
func normalizeBusinessNumber(value string) (*string, error) {
	digits := strings.NewReplacer("-", "", " ", "").Replace(strings.TrimSpace(value))
	if digits == "" {
		return nil, nil
	}
	if !businessNumberPattern.MatchString(digits) {
		return nil, apperr.Validation("businessNumber must contain 10 digits").
			WithDetails(map[string]string{"path": "businessNumber"})
	}
	return &digits, nil
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func normalizeOptional(value string, normalize func(string) string) *string {
	return normalizeOptionalString(&value, normalize)
}

func normalizeOptionalString(value *string, normalize func(string) string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	normalized := normalize(trimmed)
	if normalized == "" {
		return nil
	}
	return &normalized
}
