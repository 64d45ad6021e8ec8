package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"quotedesk_backend/internal/quotes/domain"
	"quotedesk_backend/internal/quotes/ports"
	"quotedesk_backend/platform/apperr"
)

// DefaultCostRatio estimates a missing cost price as a share of the unit price.
var DefaultCostRatio = decimal.RequireFromString("0.7")

// CostPolicyMode names how a missing master cost price is filled in.
type CostPolicyMode string

const (
	CostPolicyRatio CostPolicyMode = "ratio"
	CostPolicyZero  CostPolicyMode = "zero"
)

// CostPolicy fills in a cost price when the master item has none.
type CostPolicy struct {
	Mode  CostPolicyMode
	Ratio decimal.Decimal
}

// RatioCostPolicy estimates cost as unit price × ratio.
func RatioCostPolicy(ratio decimal.Decimal) CostPolicy {
	return CostPolicy{Mode: CostPolicyRatio, Ratio: ratio}
}

// ZeroCostPolicy records a missing cost as zero.
func ZeroCostPolicy() CostPolicy {
	return CostPolicy{Mode: CostPolicyZero, Ratio: decimal.Zero}
}

// NewCostPolicy builds a policy from configuration values.
func NewCostPolicy(mode string, ratio float64) (CostPolicy, error) {
	switch CostPolicyMode(mode) {
	case CostPolicyZero:
		return ZeroCostPolicy(), nil
	case CostPolicyRatio, "":
		r := decimal.NewFromFloat(ratio)
		if r.IsNegative() || r.GreaterThan(decimal.NewFromInt(1)) {
			return CostPolicy{}, fmt.Errorf("cost ratio must be between 0 and 1, got %s", r)
		}
		return RatioCostPolicy(r), nil
	default:
		return CostPolicy{}, fmt.Errorf("unknown cost policy %q", mode)
	}
}

func (p CostPolicy) estimate(unitPrice decimal.Decimal) decimal.Decimal {
	if p.Mode == CostPolicyZero {
		return decimal.Zero
	}
	return unitPrice.Mul(p.Ratio)
}

// SnapshotBuilder freezes master item and supplier values for a new line.
type SnapshotBuilder struct {
	catalog ports.CatalogReader
	policy  CostPolicy
	now     func() time.Time
}

// NewSnapshotBuilder creates a builder. A nil clock uses time.Now.
func NewSnapshotBuilder(catalog ports.CatalogReader, policy CostPolicy, now func() time.Time) *SnapshotBuilder {
	if now == nil {
		now = time.Now
	}
	return &SnapshotBuilder{catalog: catalog, policy: policy, now: now}
}

// Build reads the master item, and the supplier when one is given, and
// returns a detached copy. Missing or inactive records are NotFound.
func (b *SnapshotBuilder) Build(ctx context.Context, organizationID, masterItemID uuid.UUID, supplierID *uuid.UUID) (domain.Snapshot, error) {
	item, err := b.catalog.GetMasterItem(ctx, organizationID, masterItemID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if !item.IsActive {
		return domain.Snapshot{}, apperr.NotFound("master item not found")
	}

	snap := domain.Snapshot{
		MasterItemID: item.ID,
		Name:         item.Name,
		Description:  item.Description,
		Unit:         item.Unit,
		UnitPrice:    item.UnitPrice,
		IsService:    item.IsService,
		SnapshotAt:   b.now().UTC(),
	}
	if item.CostPrice != nil {
		snap.CostPrice = *item.CostPrice
	} else {
		snap.CostPrice = b.policy.estimate(item.UnitPrice)
		snap.CostEstimated = true
	}

	if supplierID != nil {
		supplier, err := b.catalog.GetMasterSupplier(ctx, organizationID, *supplierID)
		if err != nil {
			return domain.Snapshot{}, err
		}
		if !supplier.IsActive {
			return domain.Snapshot{}, apperr.NotFound("supplier not found")
		}
		id := supplier.ID
		snap.SupplierID = &id
		snap.SupplierName = supplier.Name
	}

	return snap, nil
}
