package service

import (
	"time"

	"github.com/google/uuid"

	"quotedesk_backend/internal/quotes/domain"
	"quotedesk_backend/internal/quotes/transport"
)

func toQuoteResponse(q *domain.Quote, calc *Calculation, notices []string) transport.QuoteResponse {
	resp := transport.QuoteResponse{
		ID:             q.ID,
		QuoteNumber:    q.QuoteNumber,
		ProjectTitle:   q.ProjectTitle,
		ClientID:       q.ClientID,
		ClientName:     q.ClientName,
		IssueDate:      q.IssueDate.Format(transport.DateLayout),
		ValidUntil:     formatDatePtr(q.ValidUntil),
		Status:         string(q.Status),
		VATType:        string(q.VATType),
		DiscountAmount: q.DiscountAmount,
		AgencyFeeRate:  q.AgencyFeeRate,
		TotalAmount:    q.TotalAmount,
		Version:        q.Version,
		Groups:         toGroupResponses(q.Groups),
		Notices:        notices,
		CreatedAt:      q.CreatedAt,
		UpdatedAt:      q.UpdatedAt,
	}
	if calc != nil {
		c := toCalculationResponse(*calc)
		resp.Calculation = &c
	}
	return resp
}

func toQuoteSummary(q *domain.Quote) transport.QuoteSummary {
	return transport.QuoteSummary{
		ID:           q.ID,
		QuoteNumber:  q.QuoteNumber,
		ProjectTitle: q.ProjectTitle,
		ClientID:     q.ClientID,
		ClientName:   q.ClientName,
		IssueDate:    q.IssueDate.Format(transport.DateLayout),
		ValidUntil:   formatDatePtr(q.ValidUntil),
		Status:       string(q.Status),
		TotalAmount:  q.TotalAmount,
		Version:      q.Version,
		UpdatedAt:    q.UpdatedAt,
	}
}

func toGroupResponses(groups []domain.Group) []transport.GroupResponse {
	ordered := domain.CloneGroups(groups, false)
	result := make([]transport.GroupResponse, 0, len(ordered))
	for _, g := range ordered {
		gr := transport.GroupResponse{
			ID:           g.ID,
			Name:         g.Name,
			SortOrder:    g.SortOrder,
			IncludeInFee: g.IncludeInFee,
			Items:        make([]transport.ItemResponse, 0, len(g.Items)),
		}
		for _, it := range g.Items {
			ir := transport.ItemResponse{
				ID:           it.ID,
				Name:         it.Name,
				SortOrder:    it.SortOrder,
				IncludeInFee: it.IncludeInFee,
				Details:      make([]transport.DetailResponse, 0, len(it.Details)),
			}
			for _, d := range it.Details {
				ir.Details = append(ir.Details, transport.DetailResponse{
					ID:           d.ID,
					Name:         d.Name,
					Description:  d.Description,
					Quantity:     d.Quantity,
					Days:         d.Days,
					Unit:         d.Unit,
					UnitPrice:    d.UnitPrice,
					CostPrice:    d.CostPrice,
					LineTotal:    d.LineTotal(),
					IsService:    d.IsService,
					SupplierID:   d.SupplierID,
					SupplierName: d.SupplierName,
					MasterItemID: d.MasterItemID,
					SnapshotAt:   d.SnapshotAt,
					SortOrder:    d.SortOrder,
				})
			}
			gr.Items = append(gr.Items, ir)
		}
		result = append(result, gr)
	}
	return result
}

func toCalculationResponse(c Calculation) transport.CalculationResponse {
	groups := make([]transport.GroupBreakdownResponse, 0, len(c.Groups))
	for _, g := range c.Groups {
		items := make([]transport.ItemTotalResponse, 0, len(g.Items))
		for _, it := range g.Items {
			items = append(items, transport.ItemTotalResponse{ID: it.ID, Name: it.Name, Total: it.Total, Cost: it.Cost})
		}
		groups = append(groups, transport.GroupBreakdownResponse{
			ID:           g.ID,
			Name:         g.Name,
			IncludeInFee: g.IncludeInFee,
			Subtotal:     g.Subtotal,
			Cost:         g.Cost,
			Items:        items,
		})
	}
	return transport.CalculationResponse{
		Groups:                 groups,
		Subtotal:               c.Subtotal,
		FeeApplicableAmount:    c.FeeApplicableAmount,
		FeeExcludedAmount:      c.FeeExcludedAmount,
		AgencyFee:              c.AgencyFee,
		DiscountAmount:         c.DiscountAmount,
		TotalBeforeVAT:         c.TotalBeforeVAT,
		VATAmount:              c.VATAmount,
		FinalTotal:             c.FinalTotal,
		TotalCost:              c.TotalCost,
		TotalProfit:            c.TotalProfit,
		ProfitMarginPercentage: c.ProfitMarginPercentage,
		GrossMarginPercentage:  c.GrossMarginPercentage,
	}
}

func toTemplateResponse(t domain.Template) transport.TemplateResponse {
	return transport.TemplateResponse{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		BuiltIn:     t.BuiltIn,
		Groups:      toGroupResponses(t.Groups),
	}
}

// groupsFromInput builds a transient tree for stateless calculation.
// Missing ids are generated and items follow their group's fee flag.
func groupsFromInput(in []transport.GroupInput) []domain.Group {
	groups := make([]domain.Group, 0, len(in))
	for _, gi := range in {
		includeInFee := true
		if gi.IncludeInFee != nil {
			includeInFee = *gi.IncludeInFee
		}
		g := domain.Group{
			ID:           idOrNew(gi.ID),
			Name:         gi.Name,
			SortOrder:    gi.SortOrder,
			IncludeInFee: includeInFee,
			Items:        make([]domain.Item, 0, len(gi.Items)),
		}
		for _, ii := range gi.Items {
			it := domain.Item{
				ID:           idOrNew(ii.ID),
				Name:         ii.Name,
				SortOrder:    ii.SortOrder,
				IncludeInFee: includeInFee,
				Details:      make([]domain.DetailLine, 0, len(ii.Details)),
			}
			for _, di := range ii.Details {
				it.Details = append(it.Details, domain.DetailLine{
					ID:        idOrNew(di.ID),
					Name:      di.Name,
					Quantity:  di.Quantity,
					Days:      di.Days,
					UnitPrice: di.UnitPrice,
					CostPrice: di.CostPrice,
					SortOrder: di.SortOrder,
				})
			}
			g.Items = append(g.Items, it)
		}
		groups = append(groups, g)
	}
	return groups
}

func idOrNew(id *uuid.UUID) uuid.UUID {
	if id != nil {
		return *id
	}
	return uuid.New()
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(transport.DateLayout)
	return &s
}
