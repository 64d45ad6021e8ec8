package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"quotedesk_backend/platform/apperr"
)

const (
	msgGroupNotFound  = "group not found"
	msgItemNotFound   = "item not found"
	msgDetailNotFound = "detail not found"
)

// Quote is the aggregate root. Groups are kept ordered by sort order.
type Quote struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	QuoteNumber    string
	ProjectTitle   string
	ClientID       *uuid.UUID
	ClientName     string
	IssueDate      time.Time
	ValidUntil     *time.Time
	Status         Status
	VATType        VATType
	DiscountAmount decimal.Decimal
	AgencyFeeRate  decimal.Decimal
	TotalAmount    decimal.Decimal
	Version        int
	Groups         []Group
	CreatedAt      time.Time
	UpdatedAt      time.Time

	dirty bool
}

// NewQuoteParams carries the header of a new quote.
type NewQuoteParams struct {
	OrganizationID uuid.UUID
	QuoteNumber    string
	ProjectTitle   string
	ClientID       *uuid.UUID
	ClientName     string
	IssueDate      time.Time
	ValidUntil     *time.Time
	VATType        VATType
	DiscountAmount decimal.Decimal
	AgencyFeeRate  decimal.Decimal
}

// NewQuote creates an empty draft at version 1.
func NewQuote(p NewQuoteParams) (*Quote, error) {
	title := strings.TrimSpace(p.ProjectTitle)
	if title == "" {
		return nil, apperr.Validation("project title is required")
	}
	if p.VATType == "" {
		p.VATType = VATExclusive
	}
	if err := validateHeader(p.VATType, p.DiscountAmount, p.AgencyFeeRate, p.IssueDate, p.ValidUntil); err != nil {
		return nil, err
	}
	return &Quote{
		ID:             uuid.New(),
		OrganizationID: p.OrganizationID,
		QuoteNumber:    p.QuoteNumber,
		ProjectTitle:   title,
		ClientID:       cloneUUID(p.ClientID),
		ClientName:     p.ClientName,
		IssueDate:      p.IssueDate,
		ValidUntil:     p.ValidUntil,
		Status:         StatusDraft,
		VATType:        p.VATType,
		DiscountAmount: p.DiscountAmount,
		AgencyFeeRate:  p.AgencyFeeRate,
		Version:        1,
		Groups:         []Group{},
		dirty:          true,
	}, nil
}

func validateHeader(vat VATType, discount, feeRate decimal.Decimal, issue time.Time, validUntil *time.Time) error {
	if _, err := ParseVATType(string(vat)); err != nil {
		return err
	}
	if discount.IsNegative() {
		return invalidField("discountAmount", "discount cannot be negative")
	}
	if err := ValidateAgencyFeeRate(feeRate); err != nil {
		return err
	}
	if validUntil != nil && !issue.IsZero() && validUntil.Before(issue) {
		return invalidField("validUntil", "valid until cannot be before the issue date")
	}
	return nil
}

// ValidateAgencyFeeRate rejects fee rates outside [0, 1].
func ValidateAgencyFeeRate(rate decimal.Decimal) error {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return invalidField("agencyFeeRate", "agency fee rate must be between 0 and 1")
	}
	return nil
}

// IsDirty reports whether the aggregate changed since it was loaded.
func (q *Quote) IsDirty() bool { return q.dirty }

// MarkClean is called by the persistence layer after a successful save.
func (q *Quote) MarkClean() { q.dirty = false }

func (q *Quote) touch() { q.dirty = true }

func (q *Quote) ensureMutable() error {
	if q.Status.IsLocked() {
		return apperr.ImmutableState("quote is " + string(q.Status) + " and can no longer be edited")
	}
	return nil
}

// Transition moves the quote along the state machine. Expiry is time based
// and only happens through Expire.
func (q *Quote) Transition(to Status) error {
	if _, err := ParseStatus(string(to)); err != nil {
		return err
	}
	if to == StatusExpired || !CanTransition(q.Status, to) {
		return apperr.InvalidStateTransition(string(q.Status), string(to))
	}
	if to == StatusSubmitted {
		if err := q.validateSubmittable(); err != nil {
			return err
		}
		if err := q.validateDiscount(); err != nil {
			return err
		}
	}
	q.Status = to
	q.touch()
	return nil
}

// Expire moves an approved quote whose validity has lapsed to expired.
func (q *Quote) Expire(now time.Time) error {
	if !CanTransition(q.Status, StatusExpired) {
		return apperr.InvalidStateTransition(string(q.Status), string(StatusExpired))
	}
	if q.ValidUntil == nil || !ValidityLapsed(*q.ValidUntil, now) {
		return apperr.Validation("quote is still valid")
	}
	q.Status = StatusExpired
	q.touch()
	return nil
}

// ExpiryCutoff is the calendar day of now. Quotes valid until a day before
// it have lapsed.
func ExpiryCutoff(now time.Time) time.Time {
	return calendarDay(now)
}

// ValidityLapsed reports whether the valid-until day ended before now.
func ValidityLapsed(validUntil, now time.Time) bool {
	return calendarDay(validUntil).Before(ExpiryCutoff(now))
}

func calendarDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (q *Quote) validateSubmittable() error {
	for _, g := range q.Groups {
		for _, it := range g.Items {
			if len(it.Details) > 0 {
				return nil
			}
		}
	}
	return apperr.Validation("quote needs at least one group with an item and a detail line before it can be submitted")
}

func (q *Quote) validateDiscount() error {
	limit := q.AmountBeforeDiscount()
	if q.DiscountAmount.GreaterThan(limit) {
		return apperr.Validation("discount exceeds the quote total").WithDetails(map[string]string{
			"path":     "discountAmount",
			"maxValue": limit.String(),
		})
	}
	return nil
}

// AmountBeforeDiscount is the line subtotal plus the agency fee charged on
// fee-bearing groups.
func (q *Quote) AmountBeforeDiscount() decimal.Decimal {
	subtotal := decimal.Zero
	feeBase := decimal.Zero
	for _, g := range q.Groups {
		for _, it := range g.Items {
			for _, d := range it.Details {
				subtotal = subtotal.Add(d.LineTotal())
				if g.IncludeInFee {
					feeBase = feeBase.Add(d.LineTotal())
				}
			}
		}
	}
	return subtotal.Add(feeBase.Mul(q.AgencyFeeRate))
}

// HeaderPatch holds optional header changes.
type HeaderPatch struct {
	ProjectTitle    *string
	IssueDate       *time.Time
	ValidUntil      *time.Time
	ClearValidUntil bool
	VATType         *VATType
	DiscountAmount  *decimal.Decimal
	AgencyFeeRate   *decimal.Decimal
}

// UpdateHeader applies the patch after validating the combined result.
func (q *Quote) UpdateHeader(p HeaderPatch) error {
	if err := q.ensureMutable(); err != nil {
		return err
	}

	title := q.ProjectTitle
	if p.ProjectTitle != nil {
		title = strings.TrimSpace(*p.ProjectTitle)
		if title == "" {
			return apperr.Validation("project title is required")
		}
	}
	issue := q.IssueDate
	if p.IssueDate != nil {
		issue = *p.IssueDate
	}
	validUntil := q.ValidUntil
	if p.ClearValidUntil {
		validUntil = nil
	} else if p.ValidUntil != nil {
		v := *p.ValidUntil
		validUntil = &v
	}
	vat := q.VATType
	if p.VATType != nil {
		vat = *p.VATType
	}
	discount := q.DiscountAmount
	if p.DiscountAmount != nil {
		discount = *p.DiscountAmount
	}
	feeRate := q.AgencyFeeRate
	if p.AgencyFeeRate != nil {
		feeRate = *p.AgencyFeeRate
	}
	if err := validateHeader(vat, discount, feeRate, issue, validUntil); err != nil {
		return err
	}

	q.ProjectTitle = title
	q.IssueDate = issue
	q.ValidUntil = validUntil
	q.VATType = vat
	q.DiscountAmount = discount
	q.AgencyFeeRate = feeRate
	q.touch()
	return nil
}

// ---- groups ----

// AddGroup appends a group that carries the agency fee.
func (q *Quote) AddGroup(name string) (Group, error) {
	if err := q.ensureMutable(); err != nil {
		return Group{}, err
	}
	g := Group{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		SortOrder:    nextSortOrder(q.Groups, func(g Group) int { return g.SortOrder }),
		IncludeInFee: true,
		Items:        []Item{},
	}
	q.Groups = append(q.Groups, g)
	q.touch()
	return g, nil
}

// RemoveGroup deletes a group. Remaining sort orders keep their values.
func (q *Quote) RemoveGroup(groupID uuid.UUID) error {
	if err := q.ensureMutable(); err != nil {
		return err
	}
	gi := q.groupIndex(groupID)
	if gi < 0 {
		return apperr.NotFound(msgGroupNotFound)
	}
	q.Groups = append(q.Groups[:gi], q.Groups[gi+1:]...)
	q.touch()
	return nil
}

// GroupPatch holds optional group changes.
type GroupPatch struct {
	Name         *string
	IncludeInFee *bool
	SortOrder    *int
}

// UpdateGroup patches a group. A fee flag change is pushed down to its items.
func (q *Quote) UpdateGroup(groupID uuid.UUID, p GroupPatch) (Group, error) {
	if err := q.ensureMutable(); err != nil {
		return Group{}, err
	}
	gi := q.groupIndex(groupID)
	if gi < 0 {
		return Group{}, apperr.NotFound(msgGroupNotFound)
	}
	if p.SortOrder != nil && *p.SortOrder < 0 {
		return Group{}, invalidField("sortOrder", "sort order cannot be negative")
	}

	g := &q.Groups[gi]
	if p.Name != nil {
		g.Name = strings.TrimSpace(*p.Name)
	}
	if p.IncludeInFee != nil {
		g.IncludeInFee = *p.IncludeInFee
		for ii := range g.Items {
			g.Items[ii].IncludeInFee = *p.IncludeInFee
		}
	}
	if p.SortOrder != nil {
		g.SortOrder = *p.SortOrder
	}
	updated := *g
	SortTree(q.Groups)
	q.touch()
	return updated, nil
}

// ---- items ----

// AddItem appends an item that inherits the group's fee flag.
func (q *Quote) AddItem(groupID uuid.UUID, name string) (Item, error) {
	if err := q.ensureMutable(); err != nil {
		return Item{}, err
	}
	gi := q.groupIndex(groupID)
	if gi < 0 {
		return Item{}, apperr.NotFound(msgGroupNotFound)
	}
	g := &q.Groups[gi]
	it := Item{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		SortOrder:    nextSortOrder(g.Items, func(i Item) int { return i.SortOrder }),
		IncludeInFee: g.IncludeInFee,
		Details:      []DetailLine{},
	}
	g.Items = append(g.Items, it)
	q.touch()
	return it, nil
}

// RemoveItem deletes an item from its group.
func (q *Quote) RemoveItem(groupID, itemID uuid.UUID) error {
	if err := q.ensureMutable(); err != nil {
		return err
	}
	gi, ii, err := q.itemIndex(groupID, itemID)
	if err != nil {
		return err
	}
	items := q.Groups[gi].Items
	q.Groups[gi].Items = append(items[:ii], items[ii+1:]...)
	q.touch()
	return nil
}

// ItemPatch holds optional item changes.
type ItemPatch struct {
	Name         *string
	IncludeInFee *bool
	SortOrder    *int
}

// UpdateItem patches an item.
func (q *Quote) UpdateItem(groupID, itemID uuid.UUID, p ItemPatch) (Item, error) {
	if err := q.ensureMutable(); err != nil {
		return Item{}, err
	}
	gi, ii, err := q.itemIndex(groupID, itemID)
	if err != nil {
		return Item{}, err
	}
	if p.SortOrder != nil && *p.SortOrder < 0 {
		return Item{}, invalidField("sortOrder", "sort order cannot be negative")
	}

	it := &q.Groups[gi].Items[ii]
	if p.Name != nil {
		it.Name = strings.TrimSpace(*p.Name)
	}
	if p.IncludeInFee != nil {
		it.IncludeInFee = *p.IncludeInFee
	}
	if p.SortOrder != nil {
		it.SortOrder = *p.SortOrder
	}
	updated := *it
	SortTree(q.Groups)
	q.touch()
	return updated, nil
}

// ---- details ----

// AddDetail appends a blank line: quantity 1, days 1, zero prices.
func (q *Quote) AddDetail(groupID, itemID uuid.UUID) (DetailLine, error) {
	return q.appendDetail(groupID, itemID, DetailLine{
		Quantity:  decimal.NewFromInt(1),
		Days:      decimal.NewFromInt(1),
		UnitPrice: decimal.Zero,
		CostPrice: decimal.Zero,
	})
}

// AddDetailFromSnapshot appends a line built from a catalog snapshot.
func (q *Quote) AddDetailFromSnapshot(groupID, itemID uuid.UUID, snap Snapshot, quantity, days decimal.Decimal) (DetailLine, error) {
	masterID := snap.MasterItemID
	at := snap.SnapshotAt
	d := DetailLine{
		Name:         snap.Name,
		Description:  snap.Description,
		Quantity:     quantity,
		Days:         days,
		Unit:         snap.Unit,
		UnitPrice:    snap.UnitPrice,
		CostPrice:    snap.CostPrice,
		IsService:    snap.IsService,
		SupplierID:   cloneUUID(snap.SupplierID),
		SupplierName: snap.SupplierName,
		MasterItemID: &masterID,
		SnapshotAt:   &at,
	}
	if err := validateDetail(d, "detail"); err != nil {
		return DetailLine{}, err
	}
	return q.appendDetail(groupID, itemID, d)
}

func (q *Quote) appendDetail(groupID, itemID uuid.UUID, d DetailLine) (DetailLine, error) {
	if err := q.ensureMutable(); err != nil {
		return DetailLine{}, err
	}
	gi, ii, err := q.itemIndex(groupID, itemID)
	if err != nil {
		return DetailLine{}, err
	}
	it := &q.Groups[gi].Items[ii]
	d.ID = uuid.New()
	d.SortOrder = nextSortOrder(it.Details, func(d DetailLine) int { return d.SortOrder })
	it.Details = append(it.Details, d)
	q.touch()
	return cloneDetail(d), nil
}

// RemoveDetail deletes a line from its item.
func (q *Quote) RemoveDetail(groupID, itemID, detailID uuid.UUID) error {
	if err := q.ensureMutable(); err != nil {
		return err
	}
	gi, ii, di, err := q.detailIndex(groupID, itemID, detailID)
	if err != nil {
		return err
	}
	details := q.Groups[gi].Items[ii].Details
	q.Groups[gi].Items[ii].Details = append(details[:di], details[di+1:]...)
	q.touch()
	return nil
}

// DetailPatch holds optional line changes.
type DetailPatch struct {
	Name        *string
	Description *string
	Unit        *string
	Quantity    *decimal.Decimal
	Days        *decimal.Decimal
	UnitPrice   *decimal.Decimal
	CostPrice   *decimal.Decimal
	IsService   *bool
	SortOrder   *int
}

// UpdateDetail validates the patched line before storing it.
func (q *Quote) UpdateDetail(groupID, itemID, detailID uuid.UUID, p DetailPatch) (DetailLine, error) {
	if err := q.ensureMutable(); err != nil {
		return DetailLine{}, err
	}
	gi, ii, di, err := q.detailIndex(groupID, itemID, detailID)
	if err != nil {
		return DetailLine{}, err
	}

	d := cloneDetail(q.Groups[gi].Items[ii].Details[di])
	if p.Name != nil {
		d.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		d.Description = strings.TrimSpace(*p.Description)
	}
	if p.Unit != nil {
		d.Unit = strings.TrimSpace(*p.Unit)
	}
	if p.Quantity != nil {
		d.Quantity = *p.Quantity
	}
	if p.Days != nil {
		d.Days = *p.Days
	}
	if p.UnitPrice != nil {
		d.UnitPrice = *p.UnitPrice
	}
	if p.CostPrice != nil {
		d.CostPrice = *p.CostPrice
	}
	if p.IsService != nil {
		d.IsService = *p.IsService
	}
	if p.SortOrder != nil {
		d.SortOrder = *p.SortOrder
	}
	if err := validateDetail(d, "detail"); err != nil {
		return DetailLine{}, err
	}

	q.Groups[gi].Items[ii].Details[di] = d
	SortTree(q.Groups)
	q.touch()
	return cloneDetail(d), nil
}

// ApplyTemplate replaces the whole tree with a fresh copy of the template.
// Nothing is changed when the template is invalid.
func (q *Quote) ApplyTemplate(t Template) error {
	if err := q.ensureMutable(); err != nil {
		return err
	}
	if err := ValidateTree(t.Groups); err != nil {
		return err
	}
	q.Groups = CloneGroups(t.Groups, true)
	q.touch()
	return nil
}

// Duplicate returns a new draft carrying a fresh copy of the tree.
func (q *Quote) Duplicate(quoteNumber string, issueDate time.Time) *Quote {
	return &Quote{
		ID:             uuid.New(),
		OrganizationID: q.OrganizationID,
		QuoteNumber:    quoteNumber,
		ProjectTitle:   q.ProjectTitle,
		ClientID:       cloneUUID(q.ClientID),
		ClientName:     q.ClientName,
		IssueDate:      issueDate,
		Status:         StatusDraft,
		VATType:        q.VATType,
		DiscountAmount: q.DiscountAmount,
		AgencyFeeRate:  q.AgencyFeeRate,
		TotalAmount:    q.TotalAmount,
		Version:        1,
		Groups:         CloneGroups(q.Groups, true),
		dirty:          true,
	}
}

// ---- lookup ----

func (q *Quote) groupIndex(groupID uuid.UUID) int {
	for i := range q.Groups {
		if q.Groups[i].ID == groupID {
			return i
		}
	}
	return -1
}

func (q *Quote) itemIndex(groupID, itemID uuid.UUID) (int, int, error) {
	gi := q.groupIndex(groupID)
	if gi < 0 {
		return -1, -1, apperr.NotFound(msgGroupNotFound)
	}
	for ii := range q.Groups[gi].Items {
		if q.Groups[gi].Items[ii].ID == itemID {
			return gi, ii, nil
		}
	}
	return -1, -1, apperr.NotFound(msgItemNotFound)
}

func (q *Quote) detailIndex(groupID, itemID, detailID uuid.UUID) (int, int, int, error) {
	gi, ii, err := q.itemIndex(groupID, itemID)
	if err != nil {
		return -1, -1, -1, err
	}
	for di := range q.Groups[gi].Items[ii].Details {
		if q.Groups[gi].Items[ii].Details[di].ID == detailID {
			return gi, ii, di, nil
		}
	}
	return -1, -1, -1, apperr.NotFound(msgDetailNotFound)
}
