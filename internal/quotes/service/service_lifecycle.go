package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"quotedesk_backend/internal/events"
	"quotedesk_backend/internal/quotes/domain"
	"quotedesk_backend/internal/quotes/ports"
	"quotedesk_backend/internal/quotes/transport"
	"quotedesk_backend/platform/apperr"
)

const expiryBatchSize = 100

// Duplicate copies a quote into a new draft with its own number.
func (s *Service) Duplicate(ctx context.Context, id, tenantID uuid.UUID) (transport.QuoteResponse, error) {
	src, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return transport.QuoteResponse{}, err
	}

	issueDate := s.today()
	number, err := s.repo.NextQuoteNumber(ctx, tenantID, issueDate.Year())
	if err != nil {
		return transport.QuoteResponse{}, err
	}

	q := src.Duplicate(number, issueDate)
	calc, err := Calculate(q.Groups, ParamsOf(q))
	if err != nil {
		return transport.QuoteResponse{}, err
	}
	q.TotalAmount = calc.FinalTotal

	if err := s.repo.Create(ctx, q); err != nil {
		return transport.QuoteResponse{}, err
	}
	s.log.WithContext(ctx).QuoteEvent("duplicated", q.ID.String(), string(q.Status), q.Version)
	return toQuoteResponse(q, &calc, nil), nil
}

// Convert creates the project for an approved quote. The quote itself is
// not changed.
func (s *Service) Convert(ctx context.Context, id, tenantID uuid.UUID, version int) (transport.ConvertResponse, error) {
	q, err := s.repo.GetByID(ctx, id, tenantID)
	if err != nil {
		return transport.ConvertResponse{}, err
	}
	if q.Version != version {
		return transport.ConvertResponse{}, apperr.ConcurrentModification(msgStaleVersion).
			WithDetails(map[string]int{"expectedVersion": version, "currentVersion": q.Version})
	}
	if q.Status != domain.StatusApproved {
		return transport.ConvertResponse{}, apperr.Conflict("only approved quotes can be converted into a project")
	}

	calc, err := Calculate(q.Groups, ParamsOf(q))
	if err != nil {
		return transport.ConvertResponse{}, err
	}

	projectID, err := s.projects.CreateFromQuote(ctx, ports.ConvertedQuote{
		QuoteID:        q.ID,
		OrganizationID: q.OrganizationID,
		ClientID:       q.ClientID,
		Title:          q.ProjectTitle,
		ContractAmount: calc.FinalTotal,
		TotalCost:      calc.TotalCost,
	})
	if err != nil {
		return transport.ConvertResponse{}, err
	}

	s.log.WithContext(ctx).QuoteEvent("converted", q.ID.String(), string(q.Status), q.Version)
	s.publish(ctx, events.QuoteConverted{
		BaseEvent:      events.NewBaseEvent(),
		QuoteID:        q.ID,
		OrganizationID: q.OrganizationID,
		ProjectID:      projectID,
		QuoteNumber:    q.QuoteNumber,
		ProjectTitle:   q.ProjectTitle,
	})
	return transport.ConvertResponse{QuoteID: q.ID, ProjectID: projectID}, nil
}

// ExpireDue moves approved quotes whose validity ended before now to
// expired. Quotes changed concurrently are skipped and picked up on the
// next run. It returns how many quotes were expired.
func (s *Service) ExpireDue(ctx context.Context, now time.Time) (int, error) {
	due, err := s.repo.ListExpirable(ctx, now, expiryBatchSize)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, candidate := range due {
		if err := ctx.Err(); err != nil {
			return expired, err
		}
		q, err := s.repo.GetByID(ctx, candidate.ID, candidate.OrganizationID)
		if err != nil {
			if apperr.Is(err, apperr.KindNotFound) {
				continue
			}
			return expired, err
		}
		version := q.Version
		if err := q.Expire(now); err != nil {
			s.log.Debug("quote not expirable", "quote_id", q.ID.String(), "error", err)
			continue
		}
		if err := s.repo.Save(ctx, q, version); err != nil {
			if apperr.Is(err, apperr.KindConcurrentModification) {
				s.log.Warn("quote expiry skipped after concurrent change", "quote_id", q.ID.String())
				continue
			}
			return expired, err
		}
		s.log.QuoteEvent("expired", q.ID.String(), string(q.Status), q.Version)
		expired++
	}
	return expired, nil
}
