package service

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"quotedesk_backend/internal/quotes/domain"
	"quotedesk_backend/platform/apperr"
)

var (
	// VATRate is the Korean standard VAT rate.
	VATRate = decimal.RequireFromString("0.10")

	vatInclusiveDivisor = decimal.NewFromInt(1).Add(VATRate)
	hundred             = decimal.NewFromInt(100)
)

// Params are the quote-level inputs of a calculation.
type Params struct {
	AgencyFeeRate  decimal.Decimal
	DiscountAmount decimal.Decimal
	VATType        domain.VATType
}

// ParamsOf reads the calculation inputs from a quote header.
func ParamsOf(q *domain.Quote) Params {
	return Params{
		AgencyFeeRate:  q.AgencyFeeRate,
		DiscountAmount: q.DiscountAmount,
		VATType:        q.VATType,
	}
}

// ItemTotal is the per-item breakdown.
type ItemTotal struct {
	ID    uuid.UUID
	Name  string
	Total decimal.Decimal
	Cost  decimal.Decimal
}

// GroupBreakdown is the per-group breakdown.
type GroupBreakdown struct {
	ID           uuid.UUID
	Name         string
	IncludeInFee bool
	Subtotal     decimal.Decimal
	Cost         decimal.Decimal
	Items        []ItemTotal
}

// Calculation is the financial summary of a group tree. Only VATAmount is
// rounded; every other amount is exact.
type Calculation struct {
	Groups                 []GroupBreakdown
	Subtotal               decimal.Decimal
	FeeApplicableAmount    decimal.Decimal
	FeeExcludedAmount      decimal.Decimal
	AgencyFee              decimal.Decimal
	DiscountAmount         decimal.Decimal
	TotalBeforeVAT         decimal.Decimal
	VATAmount              decimal.Decimal
	FinalTotal             decimal.Decimal
	TotalCost              decimal.Decimal
	TotalProfit            decimal.Decimal
	ProfitMarginPercentage decimal.Decimal
	GrossMarginPercentage  decimal.Decimal
}

// Calculate computes the financial summary of a group tree. It is pure:
// no I/O, no logging, no shared state.
func Calculate(groups []domain.Group, params Params) (Calculation, error) {
	if err := validateParams(params); err != nil {
		return Calculation{}, err
	}
	if err := domain.ValidateTree(groups); err != nil {
		return Calculation{}, err
	}

	ordered := domain.CloneGroups(groups, false)
	calc := Calculation{
		Groups:              make([]GroupBreakdown, 0, len(ordered)),
		Subtotal:            decimal.Zero,
		FeeApplicableAmount: decimal.Zero,
		FeeExcludedAmount:   decimal.Zero,
		TotalCost:           decimal.Zero,
	}

	for _, g := range ordered {
		gb := GroupBreakdown{
			ID:           g.ID,
			Name:         g.Name,
			IncludeInFee: g.IncludeInFee,
			Subtotal:     decimal.Zero,
			Cost:         decimal.Zero,
			Items:        make([]ItemTotal, 0, len(g.Items)),
		}
		for _, it := range g.Items {
			itemTotal := decimal.Zero
			itemCost := decimal.Zero
			for _, d := range it.Details {
				itemTotal = itemTotal.Add(d.LineTotal())
				itemCost = itemCost.Add(d.LineCost())
			}
			gb.Items = append(gb.Items, ItemTotal{ID: it.ID, Name: it.Name, Total: itemTotal, Cost: itemCost})
			gb.Subtotal = gb.Subtotal.Add(itemTotal)
			gb.Cost = gb.Cost.Add(itemCost)
		}

		calc.Subtotal = calc.Subtotal.Add(gb.Subtotal)
		calc.TotalCost = calc.TotalCost.Add(gb.Cost)
		if g.IncludeInFee {
			calc.FeeApplicableAmount = calc.FeeApplicableAmount.Add(gb.Subtotal)
		} else {
			calc.FeeExcludedAmount = calc.FeeExcludedAmount.Add(gb.Subtotal)
		}
		calc.Groups = append(calc.Groups, gb)
	}

	calc.AgencyFee = calc.FeeApplicableAmount.Mul(params.AgencyFeeRate)
	calc.DiscountAmount = params.DiscountAmount

	// Drafts may carry a discount larger than their lines; submission rejects it.
	calc.TotalBeforeVAT = calc.Subtotal.Add(calc.AgencyFee).Sub(params.DiscountAmount)

	switch params.VATType {
	case domain.VATExclusive:
		calc.VATAmount = calc.TotalBeforeVAT.Mul(VATRate).Round(0)
		calc.FinalTotal = calc.TotalBeforeVAT.Add(calc.VATAmount)
	case domain.VATInclusive:
		calc.FinalTotal = calc.TotalBeforeVAT
		calc.VATAmount = calc.TotalBeforeVAT.Div(vatInclusiveDivisor).Mul(VATRate).Round(0)
	}

	calc.TotalProfit = calc.FinalTotal.Sub(calc.TotalCost).Sub(calc.AgencyFee)
	calc.ProfitMarginPercentage = percentage(calc.TotalProfit, calc.FinalTotal)
	calc.GrossMarginPercentage = percentage(calc.Subtotal.Sub(calc.TotalCost), calc.TotalCost)

	return calc, nil
}

// percentage returns part / whole × 100, or 0 when whole is not positive.
func percentage(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Mul(hundred).Div(whole)
}

func validateParams(p Params) error {
	if err := domain.ValidateAgencyFeeRate(p.AgencyFeeRate); err != nil {
		return err
	}
	if p.DiscountAmount.IsNegative() {
		return invalidParam("discountAmount", "discount cannot be negative")
	}
	if p.VATType != domain.VATExclusive && p.VATType != domain.VATInclusive {
		return invalidParam("vatType", fmt.Sprintf("unknown vat type %q", p.VATType))
	}
	return nil
}

func invalidParam(path, message string) error {
	return apperr.Validation(message).WithDetails(map[string]string{"path": path})
}
