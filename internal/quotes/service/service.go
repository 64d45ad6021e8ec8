// Package service provides business logic for quotes.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"quotedesk_backend/internal/events"
	"quotedesk_backend/internal/quotes/domain"
	"quotedesk_backend/internal/quotes/ports"
	"quotedesk_backend/internal/quotes/repository"
	"quotedesk_backend/internal/quotes/transport"
	"quotedesk_backend/platform/apperr"
	"quotedesk_backend/platform/logger"
	"quotedesk_backend/platform/sanitize"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	msgStaleVersion = "quote was modified by someone else; reload and try again"
)

// Service provides business logic for quotes
type Service struct {
	repo           repository.Repository
	snapshots      *SnapshotBuilder
	clients        ports.ClientReader
	projects       ports.ProjectCreator
	builtins       []domain.Template
	eventBus       events.Bus
	log            *logger.Logger
	now            func() time.Time
	defaultFeeRate decimal.Decimal
}

// Deps groups the collaborators of the quotes service.
type Deps struct {
	Repo           repository.Repository
	Snapshots      *SnapshotBuilder
	Clients        ports.ClientReader
	Projects       ports.ProjectCreator
	EventBus       events.Bus
	Log            *logger.Logger
	Now            func() time.Time
	DefaultFeeRate decimal.Decimal
}

// New creates a new quotes service. Built-in templates are loaded from the
// embedded template files.
func New(d Deps) (*Service, error) {
	builtins, err := LoadBuiltinTemplates()
	if err != nil {
		return nil, err
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return &Service{
		repo:           d.Repo,
		snapshots:      d.Snapshots,
		clients:        d.Clients,
		projects:       d.Projects,
		builtins:       builtins,
		eventBus:       d.EventBus,
		log:            d.Log,
		now:            d.Now,
		defaultFeeRate: d.DefaultFeeRate,
	}, nil
}

func (s *Service) today() time.Time {
	y, m, d := s.now().UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Create creates a new draft quote, optionally seeded from a template.
func (s *Service) Create(ctx context.Context, tenantID uuid.UUID, req transport.CreateQuoteRequest) (transport.QuoteResponse, error) {
	issueDate := s.today()
	if req.IssueDate != "" {
		parsed, err := parseDate("issueDate", req.IssueDate)
		if err != nil {
			return transport.QuoteResponse{}, err
		}
		issueDate = parsed
	}
	var validUntil *time.Time
	if req.ValidUntil != "" {
		parsed, err := parseDate("validUntil", req.ValidUntil)
		if err != nil {
			return transport.QuoteResponse{}, err
		}
		validUntil = &parsed
	}
	vat, err := domain.ParseVATType(req.VATType)
	if err != nil {
		return transport.QuoteResponse{}, err
	}

	feeRate := s.defaultFeeRate
	if req.AgencyFeeRate != nil {
		feeRate = *req.AgencyFeeRate
	}
	discount := decimal.Zero
	if req.DiscountAmount != nil {
		discount = *req.DiscountAmount
	}

	clientName := ""
	if req.ClientID != nil {
		name, err := s.clients.GetClientName(ctx, tenantID, *req.ClientID)
		if err != nil {
			return transport.QuoteResponse{}, err
		}
		clientName = name
	}

	var template *domain.Template
	if req.TemplateID != nil {
		t, err := s.findTemplate(ctx, tenantID, *req.TemplateID)
		if err != nil {
			return transport.QuoteResponse{}, err
		}
		template = &t
	}

	number, err := s.repo.NextQuoteNumber(ctx, tenantID, issueDate.Year())
	if err != nil {
		return transport.QuoteResponse{}, err
	}

	q, err := domain.NewQuote(domain.NewQuoteParams{
		OrganizationID: tenantID,
		QuoteNumber:    number,
		ProjectTitle:   sanitize.Name(req.ProjectTitle),
		ClientID:       req.ClientID,
		ClientName:     clientName,
		IssueDate:      issueDate,
		ValidUntil:     validUntil,
		VATType:        vat,
		DiscountAmount: discount,
		AgencyFeeRate:  feeRate,
	})
	if err != nil {
		return transport.QuoteResponse{}, err
	}
	if template != nil {
		if err := q.ApplyTemplate(*template); err != nil {
			return transport.QuoteResponse{}, err
		}
	}

	calc, err := Calculate(q.Groups, ParamsOf(q))
	if err != nil {
		return transport.QuoteResponse{}, err
	}
	q.TotalAmount = calc.FinalTotal

	if err := s.repo.Create(ctx, q); err != nil {
		return transport.QuoteResponse{}, err
	}

	s.log.WithContext(ctx).QuoteEvent("created", q.ID.String(), string(q.Status), q.Version)
	return toQuoteResponse(q, &calc, nil), nil
}

// GetByID returns a quote with its tree and calculation.
func (s *Service) GetByID(ctx context.Context, id, tenantID uuid.UUID) (transport.QuoteResponse, error) {
	q, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return transport.QuoteResponse{}, err
	}
	calc, err := Calculate(q.Groups, ParamsOf(q))
	if err != nil {
		return transport.QuoteResponse{}, err
	}
	return toQuoteResponse(q, &calc, nil), nil
}

// GetCalculation recomputes the financial summary of a stored quote.
func (s *Service) GetCalculation(ctx context.Context, id, tenantID uuid.UUID) (transport.CalculationResponse, error) {
	q, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return transport.CalculationResponse{}, err
	}
	calc, err := Calculate(q.Groups, ParamsOf(q))
	if err != nil {
		return transport.CalculationResponse{}, err
	}
	return toCalculationResponse(calc), nil
}

// Calculate runs the calculation engine over an unsaved tree.
func (s *Service) Calculate(req transport.CalculateRequest) (transport.CalculationResponse, error) {
	vat, err := domain.ParseVATType(req.VATType)
	if err != nil {
		return transport.CalculationResponse{}, err
	}
	calc, err := Calculate(groupsFromInput(req.Groups), Params{
		AgencyFeeRate:  req.AgencyFeeRate,
		DiscountAmount: req.DiscountAmount,
		VATType:        vat,
	})
	if err != nil {
		return transport.CalculationResponse{}, err
	}
	return toCalculationResponse(calc), nil
}

// List returns a page of quote headers.
func (s *Service) List(ctx context.Context, tenantID uuid.UUID, req transport.ListQuotesRequest) (transport.QuoteListResponse, error) {
	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	params := repository.ListParams{
		OrganizationID: tenantID,
		Search:         strings.TrimSpace(req.Search),
		Page:           page,
		PageSize:       pageSize,
	}
	if req.Status != "" {
		status, err := domain.ParseStatus(req.Status)
		if err != nil {
			return transport.QuoteListResponse{}, err
		}
		params.Status = &status
	}
	if req.ClientID != "" {
		clientID, err := uuid.Parse(req.ClientID)
		if err != nil {
			return transport.QuoteListResponse{}, apperr.BadRequest("invalid client id")
		}
		params.ClientID = &clientID
	}

	result, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.QuoteListResponse{}, err
	}

	items := make([]transport.QuoteSummary, 0, len(result.Items))
	for i := range result.Items {
		items = append(items, toQuoteSummary(&result.Items[i]))
	}
	return transport.QuoteListResponse{
		Items:      items,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages,
	}, nil
}

// UpdateHeader patches the quote header.
func (s *Service) UpdateHeader(ctx context.Context, id, tenantID uuid.UUID, req transport.UpdateQuoteRequest) (transport.QuoteResponse, error) {
	patch := domain.HeaderPatch{
		ClearValidUntil: req.ClearValidUntil,
		DiscountAmount:  req.DiscountAmount,
		AgencyFeeRate:   req.AgencyFeeRate,
	}
	if req.ProjectTitle != nil {
		title := sanitize.Name(*req.ProjectTitle)
		patch.ProjectTitle = &title
	}
	if req.IssueDate != nil {
		parsed, err := parseDate("issueDate", *req.IssueDate)
		if err != nil {
			return transport.QuoteResponse{}, err
		}
		patch.IssueDate = &parsed
	}
	if req.ValidUntil != nil {
		parsed, err := parseDate("validUntil", *req.ValidUntil)
		if err != nil {
			return transport.QuoteResponse{}, err
		}
		patch.ValidUntil = &parsed
	}
	if req.VATType != nil {
		vat, err := domain.ParseVATType(*req.VATType)
		if err != nil {
			return transport.QuoteResponse{}, err
		}
		patch.VATType = &vat
	}

	return s.mutate(ctx, id, tenantID, req.Version, "header_updated", func(q *domain.Quote) error {
		return q.UpdateHeader(patch)
	})
}

// Transition moves a quote along the status machine and announces approvals
// and rejections.
func (s *Service) Transition(ctx context.Context, id, tenantID uuid.UUID, req transport.TransitionRequest) (transport.QuoteResponse, error) {
	to, err := domain.ParseStatus(req.Status)
	if err != nil {
		return transport.QuoteResponse{}, err
	}

	var saved *domain.Quote
	resp, err := s.mutate(ctx, id, tenantID, req.Version, "status_changed", func(q *domain.Quote) error {
		saved = q
		return q.Transition(to)
	})
	if err != nil {
		return transport.QuoteResponse{}, err
	}

	switch to {
	case domain.StatusApproved:
		s.publish(ctx, events.QuoteApproved{
			BaseEvent:      events.NewBaseEvent(),
			QuoteID:        saved.ID,
			OrganizationID: saved.OrganizationID,
			QuoteNumber:    saved.QuoteNumber,
			ProjectTitle:   saved.ProjectTitle,
		})
	case domain.StatusRejected:
		s.publish(ctx, events.QuoteRejected{
			BaseEvent:      events.NewBaseEvent(),
			QuoteID:        saved.ID,
			OrganizationID: saved.OrganizationID,
			QuoteNumber:    saved.QuoteNumber,
			ProjectTitle:   saved.ProjectTitle,
		})
	}
	return resp, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.eventBus == nil {
		return
	}
	s.eventBus.Publish(ctx, event)
}

// mutate loads the quote, checks the expected version, applies fn,
// recalculates and saves. Nothing is written when any step fails.
func (s *Service) mutate(ctx context.Context, id, tenantID uuid.UUID, version int, event string, fn func(q *domain.Quote) error, notices ...string) (transport.QuoteResponse, error) {
	q, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return transport.QuoteResponse{}, err
	}
	if q.Version != version {
		return transport.QuoteResponse{}, apperr.ConcurrentModification(msgStaleVersion).
			WithDetails(map[string]int{"expectedVersion": version, "currentVersion": q.Version})
	}
	if err := fn(q); err != nil {
		return transport.QuoteResponse{}, err
	}

	calc, err := Calculate(q.Groups, ParamsOf(q))
	if err != nil {
		return transport.QuoteResponse{}, err
	}
	q.TotalAmount = calc.FinalTotal

	if err := s.repo.Save(ctx, q, version); err != nil {
		return transport.QuoteResponse{}, err
	}

	s.log.WithContext(ctx).QuoteEvent(event, q.ID.String(), string(q.Status), q.Version)
	return toQuoteResponse(q, &calc, notices), nil
}

func parseDate(field, raw string) (time.Time, error) {
	t, err := time.Parse(transport.DateLayout, raw)
	if err != nil {
		return time.Time{}, apperr.Validation("invalid date").
			WithDetails(map[string]string{"path": field, "format": transport.DateLayout})
	}
	return t, nil
}
