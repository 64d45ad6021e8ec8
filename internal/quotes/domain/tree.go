package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"quotedesk_backend/platform/apperr"
)

// DetailLine is the leaf financial unit of a quote. Name, description, unit,
// prices and supplier name are frozen copies taken when the line was created.
type DetailLine struct {
	ID           uuid.UUID
	Name         string
	Description  string
	Quantity     decimal.Decimal
	Days         decimal.Decimal
	Unit         string
	UnitPrice    decimal.Decimal
	CostPrice    decimal.Decimal
	IsService    bool
	SupplierID   *uuid.UUID
	SupplierName string
	MasterItemID *uuid.UUID
	SnapshotAt   *time.Time
	SortOrder    int
}

// LineTotal is quantity × days × unit price.
func (d DetailLine) LineTotal() decimal.Decimal {
	return d.Quantity.Mul(d.Days).Mul(d.UnitPrice)
}

// LineCost is quantity × days × cost price.
func (d DetailLine) LineCost() decimal.Decimal {
	return d.Quantity.Mul(d.Days).Mul(d.CostPrice)
}

// Item groups detail lines inside a Group.
type Item struct {
	ID           uuid.UUID
	Name         string
	SortOrder    int
	IncludeInFee bool
	Details      []DetailLine
}

// Group is a top-level quote section. IncludeInFee decides whether its
// subtotal carries the agency fee.
type Group struct {
	ID           uuid.UUID
	Name         string
	SortOrder    int
	IncludeInFee bool
	Items        []Item
}

// ValidateTree checks every numeric field of the tree and returns a
// Validation error naming the first offending path.
func ValidateTree(groups []Group) error {
	for gi, g := range groups {
		if g.SortOrder < 0 {
			return invalidField(fmt.Sprintf("groups[%d].sortOrder", gi), "sort order cannot be negative")
		}
		for ii, it := range g.Items {
			if it.SortOrder < 0 {
				return invalidField(fmt.Sprintf("groups[%d].items[%d].sortOrder", gi, ii), "sort order cannot be negative")
			}
			for di, d := range it.Details {
				if err := validateDetail(d, fmt.Sprintf("groups[%d].items[%d].details[%d]", gi, ii, di)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

func validateDetail(d DetailLine, path string) error {
	fields := []struct {
		name  string
		value decimal.Decimal
	}{
		{"quantity", d.Quantity},
		{"days", d.Days},
		{"unitPrice", d.UnitPrice},
		{"costPrice", d.CostPrice},
	}
	for _, f := range fields {
		if f.value.IsNegative() {
			return invalidField(path+"."+f.name, f.name+" cannot be negative")
		}
	}
	if d.SortOrder < 0 {
		return invalidField(path+".sortOrder", "sort order cannot be negative")
	}
	return nil
}

func invalidField(path, message string) error {
	return apperr.Validation(message).WithDetails(map[string]string{"path": path})
}

// CloneGroups deep-copies a tree. With fresh set, every entry gets a new id
// and sort orders are reset to 0..n-1 per level following the current order.
func CloneGroups(groups []Group, fresh bool) []Group {
	sorted := sortedGroups(groups)
	out := make([]Group, len(sorted))
	for gi, g := range sorted {
		ng := Group{ID: g.ID, Name: g.Name, SortOrder: g.SortOrder, IncludeInFee: g.IncludeInFee}
		items := sortedItems(g.Items)
		ng.Items = make([]Item, len(items))
		for ii, it := range items {
			ni := Item{ID: it.ID, Name: it.Name, SortOrder: it.SortOrder, IncludeInFee: it.IncludeInFee}
			details := sortedDetails(it.Details)
			ni.Details = make([]DetailLine, len(details))
			for di, d := range details {
				nd := cloneDetail(d)
				if fresh {
					nd.ID = uuid.New()
					nd.SortOrder = di
				}
				ni.Details[di] = nd
			}
			if fresh {
				ni.ID = uuid.New()
				ni.SortOrder = ii
			}
			ng.Items[ii] = ni
		}
		if fresh {
			ng.ID = uuid.New()
			ng.SortOrder = gi
		}
		out[gi] = ng
	}
	return out
}

func cloneDetail(d DetailLine) DetailLine {
	out := d
	out.SupplierID = cloneUUID(d.SupplierID)
	out.MasterItemID = cloneUUID(d.MasterItemID)
	if d.SnapshotAt != nil {
		at := *d.SnapshotAt
		out.SnapshotAt = &at
	}
	return out
}

func cloneUUID(id *uuid.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// SortTree orders every level by sort order. Ties keep their insertion order.
func SortTree(groups []Group) {
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].SortOrder < groups[j].SortOrder })
	for gi := range groups {
		items := groups[gi].Items
		sort.SliceStable(items, func(i, j int) bool { return items[i].SortOrder < items[j].SortOrder })
		for ii := range items {
			details := items[ii].Details
			sort.SliceStable(details, func(i, j int) bool { return details[i].SortOrder < details[j].SortOrder })
		}
	}
}

func sortedGroups(groups []Group) []Group {
	out := append([]Group(nil), groups...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

func sortedItems(items []Item) []Item {
	out := append([]Item(nil), items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

func sortedDetails(details []DetailLine) []DetailLine {
	out := append([]DetailLine(nil), details...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out
}

// nextSortOrder returns the entry count, moved past the largest existing
// value when removals left gaps so a new entry never ties with an old one.
func nextSortOrder[T any](entries []T, order func(T) int) int {
	next := len(entries)
	for _, e := range entries {
		if o := order(e); o >= next {
			next = o + 1
		}
	}
	return next
}
