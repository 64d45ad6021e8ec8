package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Snapshot is a detached copy of master item and supplier values taken at
// the moment a detail line is created. It holds no reference to the
// catalog records it was read from.
type Snapshot struct {
	MasterItemID  uuid.UUID
	Name          string
	Description   string
	Unit          string
	UnitPrice     decimal.Decimal
	CostPrice     decimal.Decimal
	CostEstimated bool
	IsService     bool
	SupplierID    *uuid.UUID
	SupplierName  string
	SnapshotAt    time.Time
}
