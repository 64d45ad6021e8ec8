package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotedesk_backend/platform/apperr"
)

func newDraft(t *testing.T) *Quote {
	t.Helper()
	q, err := NewQuote(NewQuoteParams{
		OrganizationID: uuid.New(),
		QuoteNumber:    "Q-2026-0001",
		ProjectTitle:   "Spring launch event",
		IssueDate:      time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		VATType:        VATExclusive,
		AgencyFeeRate:  decimal.RequireFromString("0.15"),
	})
	require.NoError(t, err)
	return q
}

func withOneLine(t *testing.T, q *Quote) (Group, Item, DetailLine) {
	t.Helper()
	g, err := q.AddGroup("Production")
	require.NoError(t, err)
	it, err := q.AddItem(g.ID, "Stage")
	require.NoError(t, err)
	d, err := q.AddDetail(g.ID, it.ID)
	require.NoError(t, err)
	return g, it, d
}

func TestNewQuoteStartsAsDraftAtVersionOne(t *testing.T) {
	q := newDraft(t)

	assert.Equal(t, StatusDraft, q.Status)
	assert.Equal(t, 1, q.Version)
	assert.Empty(t, q.Groups)
	assert.True(t, q.IsDirty())
}

func TestNewQuoteRejectsNegativeDiscount(t *testing.T) {
	_, err := NewQuote(NewQuoteParams{
		ProjectTitle:   "x",
		DiscountAmount: decimal.NewFromInt(-1),
	})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestDraftCannotJumpToApproved(t *testing.T) {
	q := newDraft(t)
	withOneLine(t, q)

	err := q.Transition(StatusApproved)

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindInvalidStateTransition))
	assert.Contains(t, err.Error(), "draft")
	assert.Contains(t, err.Error(), "approved")
	assert.Equal(t, StatusDraft, q.Status)
}

func TestFullApprovalPath(t *testing.T) {
	q := newDraft(t)
	withOneLine(t, q)

	require.NoError(t, q.Transition(StatusSubmitted))
	require.NoError(t, q.Transition(StatusUnderReview))
	require.NoError(t, q.Transition(StatusApproved))
	assert.Equal(t, StatusApproved, q.Status)
}

func TestRejectedQuoteReturnsToDraft(t *testing.T) {
	q := newDraft(t)
	withOneLine(t, q)
	require.NoError(t, q.Transition(StatusSubmitted))
	require.NoError(t, q.Transition(StatusUnderReview))
	require.NoError(t, q.Transition(StatusRejected))

	require.NoError(t, q.Transition(StatusDraft))
	assert.Equal(t, StatusDraft, q.Status)
}

func TestSubmitRequiresADetailLine(t *testing.T) {
	q := newDraft(t)
	g, err := q.AddGroup("Production")
	require.NoError(t, err)
	_, err = q.AddItem(g.ID, "Stage")
	require.NoError(t, err)

	err = q.Transition(StatusSubmitted)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, StatusDraft, q.Status)
}

func TestSubmitRejectsDiscountAboveTotal(t *testing.T) {
	q := newDraft(t)
	withOneLine(t, q)
	q.Groups[0].Items[0].Details[0].UnitPrice = decimal.NewFromInt(1000)
	q.DiscountAmount = decimal.NewFromInt(1151)

	err := q.Transition(StatusSubmitted)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, StatusDraft, q.Status)

	q.DiscountAmount = decimal.NewFromInt(1150)
	require.NoError(t, q.Transition(StatusSubmitted))
}

func TestDraftKeepsDiscountWhileLinesChange(t *testing.T) {
	q := newDraft(t)
	q.DiscountAmount = decimal.NewFromInt(50000)

	g, it, d := withOneLine(t, q)
	require.NoError(t, q.RemoveDetail(g.ID, it.ID, d.ID))
	require.NoError(t, q.RemoveGroup(g.ID))
	assert.True(t, q.AmountBeforeDiscount().IsZero())
}

func TestAmountBeforeDiscountChargesFeeOnFeeBearingGroups(t *testing.T) {
	q := newDraft(t)
	withOneLine(t, q)
	withOneLine(t, q)
	q.Groups[0].Items[0].Details[0].UnitPrice = decimal.NewFromInt(1000)
	q.Groups[1].Items[0].Details[0].UnitPrice = decimal.NewFromInt(500)
	q.Groups[1].IncludeInFee = false

	assert.Equal(t, "1650", q.AmountBeforeDiscount().String())
}

func TestExpiredIsNotReachableThroughTransition(t *testing.T) {
	q := approvedQuote(t)

	err := q.Transition(StatusExpired)
	assert.True(t, apperr.Is(err, apperr.KindInvalidStateTransition))
}

func TestExpireAfterValidUntil(t *testing.T) {
	q := approvedQuote(t)
	validUntil := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	q.ValidUntil = &validUntil

	err := q.Expire(time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC))
	assert.True(t, apperr.Is(err, apperr.KindValidation), "still valid on its last day")

	require.NoError(t, q.Expire(time.Date(2026, 4, 1, 0, 0, 1, 0, time.UTC)))
	assert.Equal(t, StatusExpired, q.Status)

	err = q.Transition(StatusDraft)
	assert.True(t, apperr.Is(err, apperr.KindInvalidStateTransition), "expired is terminal")
}

func TestExpiryBoundaryIsTheCalendarDay(t *testing.T) {
	q := approvedQuote(t)
	validUntil := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	q.ValidUntil = &validUntil

	lastInstant := time.Date(2026, 3, 31, 23, 59, 59, 999, time.UTC)
	assert.False(t, ValidityLapsed(validUntil, lastInstant))
	assert.True(t, apperr.Is(q.Expire(lastInstant), apperr.KindValidation))

	midnight := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, ValidityLapsed(validUntil, midnight))
	assert.Equal(t, "2026-04-01", ExpiryCutoff(midnight).Format("2006-01-02"))
	require.NoError(t, q.Expire(midnight))
}

func TestValidateAgencyFeeRate(t *testing.T) {
	assert.NoError(t, ValidateAgencyFeeRate(decimal.Zero))
	assert.NoError(t, ValidateAgencyFeeRate(decimal.NewFromInt(1)))
	assert.True(t, apperr.Is(ValidateAgencyFeeRate(decimal.RequireFromString("1.5")), apperr.KindValidation))
	assert.True(t, apperr.Is(ValidateAgencyFeeRate(decimal.RequireFromString("-0.1")), apperr.KindValidation))
}

func TestExpireRequiresApproved(t *testing.T) {
	q := newDraft(t)
	err := q.Expire(time.Now())
	assert.True(t, apperr.Is(err, apperr.KindInvalidStateTransition))
}

func approvedQuote(t *testing.T) *Quote {
	t.Helper()
	q := newDraft(t)
	withOneLine(t, q)
	require.NoError(t, q.Transition(StatusSubmitted))
	require.NoError(t, q.Transition(StatusUnderReview))
	require.NoError(t, q.Transition(StatusApproved))
	return q
}

func TestApprovedQuoteIsImmutable(t *testing.T) {
	q := approvedQuote(t)
	g := q.Groups[0]
	it := g.Items[0]
	d := it.Details[0]
	qty := decimal.NewFromInt(3)

	checks := []struct {
		name string
		err  error
	}{
		{"addGroup", func() error { _, err := q.AddGroup("x"); return err }()},
		{"removeGroup", q.RemoveGroup(g.ID)},
		{"addItem", func() error { _, err := q.AddItem(g.ID, "x"); return err }()},
		{"removeItem", q.RemoveItem(g.ID, it.ID)},
		{"addDetail", func() error { _, err := q.AddDetail(g.ID, it.ID); return err }()},
		{"updateDetail", func() error {
			_, err := q.UpdateDetail(g.ID, it.ID, d.ID, DetailPatch{Quantity: &qty})
			return err
		}()},
		{"removeDetail", q.RemoveDetail(g.ID, it.ID, d.ID)},
		{"applyTemplate", q.ApplyTemplate(Template{})},
		{"updateHeader", q.UpdateHeader(HeaderPatch{})},
	}
	for _, c := range checks {
		assert.True(t, apperr.Is(c.err, apperr.KindImmutableState), c.name)
	}
	assert.Len(t, q.Groups, 1)
}

func TestAddGroupDefaults(t *testing.T) {
	q := newDraft(t)
	a, _ := q.AddGroup("A")
	b, _ := q.AddGroup("B")

	assert.Equal(t, 0, a.SortOrder)
	assert.Equal(t, 1, b.SortOrder)
	assert.True(t, a.IncludeInFee)
}

func TestRemoveGroupKeepsSortOrders(t *testing.T) {
	q := newDraft(t)
	a, _ := q.AddGroup("A")
	_, _ = q.AddGroup("B")
	_, _ = q.AddGroup("C")

	require.NoError(t, q.RemoveGroup(a.ID))

	require.Len(t, q.Groups, 2)
	assert.Equal(t, 1, q.Groups[0].SortOrder)
	assert.Equal(t, 2, q.Groups[1].SortOrder)

	d, _ := q.AddGroup("D")
	assert.Equal(t, 3, d.SortOrder, "new group must not tie with an existing one")
}

func TestRemoveUnknownGroupIsNotFound(t *testing.T) {
	q := newDraft(t)
	err := q.RemoveGroup(uuid.New())
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestItemsInheritGroupFeeFlag(t *testing.T) {
	q := newDraft(t)
	g, _ := q.AddGroup("Pass-through")
	off := false
	_, err := q.UpdateGroup(g.ID, GroupPatch{IncludeInFee: &off})
	require.NoError(t, err)

	it, err := q.AddItem(g.ID, "Venue rental")
	require.NoError(t, err)
	assert.False(t, it.IncludeInFee)

	on := true
	_, err = q.UpdateGroup(g.ID, GroupPatch{IncludeInFee: &on})
	require.NoError(t, err)
	assert.True(t, q.Groups[0].Items[0].IncludeInFee)
}

func TestUpdateGroupSortOrderReorders(t *testing.T) {
	q := newDraft(t)
	a, _ := q.AddGroup("A")
	_, _ = q.AddGroup("B")
	five := 5

	_, err := q.UpdateGroup(a.ID, GroupPatch{SortOrder: &five})
	require.NoError(t, err)
	assert.Equal(t, "B", q.Groups[0].Name)
	assert.Equal(t, "A", q.Groups[1].Name)
}

func TestAddDetailDefaults(t *testing.T) {
	q := newDraft(t)
	_, _, d := withOneLine(t, q)

	assert.True(t, d.Quantity.Equal(decimal.NewFromInt(1)))
	assert.True(t, d.Days.Equal(decimal.NewFromInt(1)))
	assert.True(t, d.UnitPrice.IsZero())
	assert.True(t, d.CostPrice.IsZero())
}

func TestUpdateDetailRejectsNegativeValuesWithoutChangingLine(t *testing.T) {
	q := newDraft(t)
	g, it, d := withOneLine(t, q)
	price := decimal.NewFromInt(50000)
	negative := decimal.NewFromInt(-2)

	_, err := q.UpdateDetail(g.ID, it.ID, d.ID, DetailPatch{UnitPrice: &price, Quantity: &negative})

	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	line := q.Groups[0].Items[0].Details[0]
	assert.True(t, line.UnitPrice.IsZero())
	assert.True(t, line.Quantity.Equal(decimal.NewFromInt(1)))
}

func TestAddDetailFromSnapshotCopiesValues(t *testing.T) {
	q := newDraft(t)
	g, _ := q.AddGroup("Equipment")
	it, _ := q.AddItem(g.ID, "Audio")
	supplierID := uuid.New()
	snap := Snapshot{
		MasterItemID: uuid.New(),
		Name:         "Line array speaker",
		Unit:         "ea",
		UnitPrice:    decimal.NewFromInt(150000),
		CostPrice:    decimal.NewFromInt(100000),
		SupplierID:   &supplierID,
		SupplierName: "Sound Co",
		SnapshotAt:   time.Now(),
	}

	d, err := q.AddDetailFromSnapshot(g.ID, it.ID, snap, decimal.NewFromInt(2), decimal.NewFromInt(1))
	require.NoError(t, err)

	supplierID[0] ^= 0xFF
	assert.Equal(t, "Line array speaker", d.Name)
	assert.Equal(t, "Sound Co", d.SupplierName)
	assert.NotEqual(t, supplierID, *q.Groups[0].Items[0].Details[0].SupplierID)
	assert.Equal(t, snap.MasterItemID, *d.MasterItemID)
}

func TestApplyTemplateDeepCopies(t *testing.T) {
	tmpl := Template{
		Name: "Conference",
		Groups: []Group{{
			ID: uuid.New(), Name: "Venue", SortOrder: 7, IncludeInFee: true,
			Items: []Item{{
				ID: uuid.New(), Name: "Hall", SortOrder: 3, IncludeInFee: true,
				Details: []DetailLine{{
					ID: uuid.New(), Name: "Main hall", SortOrder: 9,
					Quantity: decimal.NewFromInt(1), Days: decimal.NewFromInt(2),
					UnitPrice: decimal.NewFromInt(1000000), CostPrice: decimal.NewFromInt(800000),
				}},
			}},
		}},
	}
	q := newDraft(t)

	require.NoError(t, q.ApplyTemplate(tmpl))

	got := q.Groups[0]
	assert.NotEqual(t, tmpl.Groups[0].ID, got.ID)
	assert.NotEqual(t, tmpl.Groups[0].Items[0].Details[0].ID, got.Items[0].Details[0].ID)
	assert.Equal(t, 0, got.SortOrder)
	assert.Equal(t, 0, got.Items[0].SortOrder)
	assert.Equal(t, 0, got.Items[0].Details[0].SortOrder)

	price := decimal.NewFromInt(1)
	_, err := q.UpdateDetail(got.ID, got.Items[0].ID, got.Items[0].Details[0].ID, DetailPatch{UnitPrice: &price})
	require.NoError(t, err)
	q.Groups[0].Name = "Changed"

	assert.Equal(t, "Venue", tmpl.Groups[0].Name)
	assert.True(t, tmpl.Groups[0].Items[0].Details[0].UnitPrice.Equal(decimal.NewFromInt(1000000)))
}

func TestApplyInvalidTemplateLeavesTreeUntouched(t *testing.T) {
	q := newDraft(t)
	withOneLine(t, q)
	before := CloneGroups(q.Groups, false)

	err := q.ApplyTemplate(Template{Groups: []Group{{
		Items: []Item{{Details: []DetailLine{{Quantity: decimal.NewFromInt(-1)}}}},
	}}})

	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, before[0].ID, q.Groups[0].ID)
}

func TestDuplicateIsIndependentDraft(t *testing.T) {
	q := approvedQuote(t)

	dup := q.Duplicate("Q-2026-0002", time.Now())

	assert.Equal(t, StatusDraft, dup.Status)
	assert.Equal(t, 1, dup.Version)
	assert.NotEqual(t, q.ID, dup.ID)
	assert.NotEqual(t, q.Groups[0].ID, dup.Groups[0].ID)
	_, err := dup.AddGroup("Extra")
	require.NoError(t, err)
	assert.Len(t, q.Groups, 1)
}

func TestUpdateHeaderIsAllOrNothing(t *testing.T) {
	q := newDraft(t)
	title := "New title"
	badRate := decimal.RequireFromString("1.5")

	err := q.UpdateHeader(HeaderPatch{ProjectTitle: &title, AgencyFeeRate: &badRate})

	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, "Spring launch event", q.ProjectTitle)
}
