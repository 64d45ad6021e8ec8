package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"quotedesk_backend/internal/quotes/domain"
	"quotedesk_backend/internal/quotes/transport"
	"quotedesk_backend/platform/sanitize"
)

// AddGroup appends a group to the quote.
func (s *Service) AddGroup(ctx context.Context, id, tenantID uuid.UUID, req transport.AddGroupRequest) (transport.QuoteResponse, error) {
	return s.mutate(ctx, id, tenantID, req.Version, "group_added", func(q *domain.Quote) error {
		_, err := q.AddGroup(sanitize.Name(req.Name))
		return err
	})
}

// UpdateGroup patches a group.
func (s *Service) UpdateGroup(ctx context.Context, id, groupID, tenantID uuid.UUID, req transport.UpdateGroupRequest) (transport.QuoteResponse, error) {
	patch := domain.GroupPatch{
		Name:         sanitize.TextPtr(req.Name),
		IncludeInFee: req.IncludeInFee,
		SortOrder:    req.SortOrder,
	}
	return s.mutate(ctx, id, tenantID, req.Version, "group_updated", func(q *domain.Quote) error {
		_, err := q.UpdateGroup(groupID, patch)
		return err
	})
}

// RemoveGroup deletes a group with its items and lines.
func (s *Service) RemoveGroup(ctx context.Context, id, groupID, tenantID uuid.UUID, version int) (transport.QuoteResponse, error) {
	return s.mutate(ctx, id, tenantID, version, "group_removed", func(q *domain.Quote) error {
		return q.RemoveGroup(groupID)
	})
}

// AddItem appends an item to a group.
func (s *Service) AddItem(ctx context.Context, id, groupID, tenantID uuid.UUID, req transport.AddItemRequest) (transport.QuoteResponse, error) {
	return s.mutate(ctx, id, tenantID, req.Version, "item_added", func(q *domain.Quote) error {
		_, err := q.AddItem(groupID, sanitize.Name(req.Name))
		return err
	})
}

// UpdateItem patches an item.
func (s *Service) UpdateItem(ctx context.Context, id, groupID, itemID, tenantID uuid.UUID, req transport.UpdateItemRequest) (transport.QuoteResponse, error) {
	patch := domain.ItemPatch{
		Name:         sanitize.TextPtr(req.Name),
		IncludeInFee: req.IncludeInFee,
		SortOrder:    req.SortOrder,
	}
	return s.mutate(ctx, id, tenantID, req.Version, "item_updated", func(q *domain.Quote) error {
		_, err := q.UpdateItem(groupID, itemID, patch)
		return err
	})
}

// RemoveItem deletes an item with its lines.
func (s *Service) RemoveItem(ctx context.Context, id, groupID, itemID, tenantID uuid.UUID, version int) (transport.QuoteResponse, error) {
	return s.mutate(ctx, id, tenantID, version, "item_removed", func(q *domain.Quote) error {
		return q.RemoveItem(groupID, itemID)
	})
}

// AddDetail appends a line to an item. With a master item id the line is a
// snapshot of the catalog record; otherwise it is a blank line.
func (s *Service) AddDetail(ctx context.Context, id, groupID, itemID, tenantID uuid.UUID, req transport.AddDetailRequest) (transport.QuoteResponse, error) {
	if req.MasterItemID == nil {
		return s.mutate(ctx, id, tenantID, req.Version, "detail_added", func(q *domain.Quote) error {
			_, err := q.AddDetail(groupID, itemID)
			return err
		})
	}
	return s.AddDetailFromMaster(ctx, id, groupID, itemID, tenantID, req)
}

// AddDetailFromMaster builds a snapshot of a master item and appends it as
// a line. Quantity and days default to 1.
func (s *Service) AddDetailFromMaster(ctx context.Context, id, groupID, itemID, tenantID uuid.UUID, req transport.AddDetailRequest) (transport.QuoteResponse, error) {
	quantity := decimal.NewFromInt(1)
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	days := decimal.NewFromInt(1)
	if req.Days != nil {
		days = *req.Days
	}

	snap, err := s.snapshots.Build(ctx, tenantID, *req.MasterItemID, req.SupplierID)
	if err != nil {
		return transport.QuoteResponse{}, err
	}

	var notices []string
	if snap.CostEstimated {
		notices = append(notices, fmt.Sprintf("%s has no cost price; an estimated cost of %s was used", snap.Name, snap.CostPrice.String()))
	}

	return s.mutate(ctx, id, tenantID, req.Version, "detail_added", func(q *domain.Quote) error {
		_, err := q.AddDetailFromSnapshot(groupID, itemID, snap, quantity, days)
		return err
	}, notices...)
}

// UpdateDetail patches a line.
func (s *Service) UpdateDetail(ctx context.Context, id, groupID, itemID, detailID, tenantID uuid.UUID, req transport.UpdateDetailRequest) (transport.QuoteResponse, error) {
	patch := domain.DetailPatch{
		Name:        sanitize.TextPtr(req.Name),
		Description: sanitize.TextPtr(req.Description),
		Unit:        sanitize.TextPtr(req.Unit),
		Quantity:    req.Quantity,
		Days:        req.Days,
		UnitPrice:   req.UnitPrice,
		CostPrice:   req.CostPrice,
		IsService:   req.IsService,
		SortOrder:   req.SortOrder,
	}
	return s.mutate(ctx, id, tenantID, req.Version, "detail_updated", func(q *domain.Quote) error {
		_, err := q.UpdateDetail(groupID, itemID, detailID, patch)
		return err
	})
}

// RemoveDetail deletes a line.
func (s *Service) RemoveDetail(ctx context.Context, id, groupID, itemID, detailID, tenantID uuid.UUID, version int) (transport.QuoteResponse, error) {
	return s.mutate(ctx, id, tenantID, version, "detail_removed", func(q *domain.Quote) error {
		return q.RemoveDetail(groupID, itemID, detailID)
	})
}
