package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotedesk_backend/internal/events"
	"quotedesk_backend/internal/quotes/domain"
	"quotedesk_backend/internal/quotes/ports"
	"quotedesk_backend/internal/quotes/repository"
	"quotedesk_backend/internal/quotes/transport"
	"quotedesk_backend/platform/apperr"
)

// ── fakes ─────────────────────────────────────────────────────────────────────

type fakeRepo struct {
	mu        sync.Mutex
	quotes    map[uuid.UUID]domain.Quote
	templates map[uuid.UUID]domain.Template
	counters  map[string]int
	saves     int
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		quotes:    map[uuid.UUID]domain.Quote{},
		templates: map[uuid.UUID]domain.Template{},
		counters:  map[string]int{},
	}
}

var _ repository.Repository = (*fakeRepo)(nil)

func detach(q domain.Quote) domain.Quote {
	q.Groups = domain.CloneGroups(q.Groups, false)
	q.MarkClean()
	return q
}

func (r *fakeRepo) NextQuoteNumber(_ context.Context, orgID uuid.UUID, year int) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := fmt.Sprintf("%s/%d", orgID, year)
	r.counters[key]++
	return fmt.Sprintf("Q-%d-%04d", year, r.counters[key]), nil
}

func (r *fakeRepo) Create(_ context.Context, q *domain.Quote) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q.CreatedAt = fixedNow
	q.UpdatedAt = fixedNow
	r.quotes[q.ID] = detach(*q)
	q.MarkClean()
	return nil
}

func (r *fakeRepo) GetByID(_ context.Context, id, orgID uuid.UUID) (*domain.Quote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.quotes[id]
	if !ok || q.OrganizationID != orgID {
		return nil, apperr.NotFound("quote not found")
	}
	copied := detach(q)
	return &copied, nil
}

func (r *fakeRepo) List(_ context.Context, params repository.ListParams) (*repository.ListResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var items []domain.Quote
	for _, q := range r.quotes {
		if q.OrganizationID == params.OrganizationID {
			items = append(items, q)
		}
	}
	return &repository.ListResult{Items: items, Total: len(items), Page: params.Page, PageSize: params.PageSize, TotalPages: 1}, nil
}

func (r *fakeRepo) Save(_ context.Context, q *domain.Quote, expectedVersion int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.quotes[q.ID]
	if !ok || stored.Version != expectedVersion {
		return apperr.ConcurrentModification("stale")
	}
	q.Version = expectedVersion + 1
	r.quotes[q.ID] = detach(*q)
	r.saves++
	q.MarkClean()
	return nil
}

func (r *fakeRepo) ListExpirable(_ context.Context, asOf time.Time, limit int) ([]repository.ExpirableQuote, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []repository.ExpirableQuote
	for _, q := range r.quotes {
		if q.Status == domain.StatusApproved && q.ValidUntil != nil && domain.ValidityLapsed(*q.ValidUntil, asOf) {
			due = append(due, repository.ExpirableQuote{ID: q.ID, OrganizationID: q.OrganizationID})
		}
	}
	if len(due) > limit {
		due = due[:limit]
	}
	return due, nil
}

func (r *fakeRepo) CreateTemplate(_ context.Context, t domain.Template) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templates[t.ID] = t
	return nil
}

func (r *fakeRepo) ListTemplates(_ context.Context, orgID uuid.UUID) ([]domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []domain.Template
	for _, t := range r.templates {
		if t.OrganizationID != nil && *t.OrganizationID == orgID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (r *fakeRepo) GetTemplate(_ context.Context, id, orgID uuid.UUID) (domain.Template, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.templates[id]
	if !ok || t.OrganizationID == nil || *t.OrganizationID != orgID {
		return domain.Template{}, apperr.NotFound("template not found")
	}
	return t, nil
}

type fakeBus struct {
	mu        sync.Mutex
	published []events.Event
}

func (b *fakeBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.published = append(b.published, event)
}

func (b *fakeBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *fakeBus) Subscribe(string, events.Handler) {}

func (b *fakeBus) names() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	names := make([]string, 0, len(b.published))
	for _, e := range b.published {
		names = append(names, e.EventName())
	}
	return names
}

type fakeClients map[uuid.UUID]string

func (f fakeClients) GetClientName(_ context.Context, _, id uuid.UUID) (string, error) {
	name, ok := f[id]
	if !ok {
		return "", apperr.NotFound("client not found")
	}
	return name, nil
}

type fakeProjects struct {
	created map[uuid.UUID]ports.ConvertedQuote
}

func (f *fakeProjects) CreateFromQuote(_ context.Context, q ports.ConvertedQuote) (uuid.UUID, error) {
	if _, exists := f.created[q.QuoteID]; exists {
		return uuid.Nil, apperr.Conflict("quote already converted")
	}
	f.created[q.QuoteID] = q
	return uuid.New(), nil
}

// ── harness ───────────────────────────────────────────────────────────────────

type harness struct {
	svc      *Service
	repo     *fakeRepo
	bus      *fakeBus
	catalog  *fakeCatalog
	projects *fakeProjects
	clients  fakeClients
	orgID    uuid.UUID
	now      time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		repo:     newFakeRepo(),
		bus:      &fakeBus{},
		catalog:  newFakeCatalog(),
		projects: &fakeProjects{created: map[uuid.UUID]ports.ConvertedQuote{}},
		clients:  fakeClients{},
		orgID:    uuid.New(),
		now:      fixedNow,
	}
	svc, err := New(Deps{
		Repo:           h.repo,
		Snapshots:      NewSnapshotBuilder(h.catalog, RatioCostPolicy(DefaultCostRatio), fixedClock),
		Clients:        h.clients,
		Projects:       h.projects,
		EventBus:       h.bus,
		Now:            func() time.Time { return h.now },
		DefaultFeeRate: decimal.RequireFromString("0.15"),
	})
	require.NoError(t, err)
	h.svc = svc
	return h
}

func (h *harness) create(t *testing.T) transport.QuoteResponse {
	t.Helper()
	resp, err := h.svc.Create(context.Background(), h.orgID, transport.CreateQuoteRequest{
		ProjectTitle: "Spring launch",
		ValidUntil:   "2026-05-31",
	})
	require.NoError(t, err)
	return resp
}

// withPricedLine adds group > item > line priced at 100,000 with cost 60,000.
func (h *harness) withPricedLine(t *testing.T, q transport.QuoteResponse) transport.QuoteResponse {
	t.Helper()
	ctx := context.Background()
	q, err := h.svc.AddGroup(ctx, q.ID, h.orgID, transport.AddGroupRequest{Version: q.Version, Name: "Production"})
	require.NoError(t, err)
	groupID := q.Groups[0].ID
	q, err = h.svc.AddItem(ctx, q.ID, groupID, h.orgID, transport.AddItemRequest{Version: q.Version, Name: "Crew"})
	require.NoError(t, err)
	itemID := q.Groups[0].Items[0].ID
	q, err = h.svc.AddDetail(ctx, q.ID, groupID, itemID, h.orgID, transport.AddDetailRequest{Version: q.Version})
	require.NoError(t, err)
	detailID := q.Groups[0].Items[0].Details[0].ID
	price := decimal.NewFromInt(100000)
	cost := decimal.NewFromInt(60000)
	q, err = h.svc.UpdateDetail(ctx, q.ID, groupID, itemID, detailID, h.orgID, transport.UpdateDetailRequest{
		Version:   q.Version,
		UnitPrice: &price,
		CostPrice: &cost,
	})
	require.NoError(t, err)
	return q
}

func (h *harness) approve(t *testing.T, q transport.QuoteResponse) transport.QuoteResponse {
	t.Helper()
	var err error
	for _, status := range []string{"submitted", "under_review", "approved"} {
		q, err = h.svc.Transition(context.Background(), q.ID, h.orgID, transport.TransitionRequest{Version: q.Version, Status: status})
		require.NoError(t, err)
	}
	return q
}

// ── tests ─────────────────────────────────────────────────────────────────────

func TestCreateAssignsNumberAndStartsDraft(t *testing.T) {
	h := newHarness(t)
	clientID := uuid.New()
	h.clients[clientID] = "Acme Events"

	resp, err := h.svc.Create(context.Background(), h.orgID, transport.CreateQuoteRequest{
		ProjectTitle: "  <b>Spring</b>   launch ",
		ClientID:     &clientID,
	})
	require.NoError(t, err)

	assert.Equal(t, "Q-2026-0001", resp.QuoteNumber)
	assert.Equal(t, "Spring launch", resp.ProjectTitle)
	assert.Equal(t, "Acme Events", resp.ClientName)
	assert.Equal(t, "draft", resp.Status)
	assert.Equal(t, "exclusive", resp.VATType)
	assert.Equal(t, 1, resp.Version)
	assert.Equal(t, "2026-05-04", resp.IssueDate)
	assert.True(t, resp.AgencyFeeRate.Equal(decimal.RequireFromString("0.15")))
	require.NotNil(t, resp.Calculation)
	assert.True(t, resp.Calculation.FinalTotal.IsZero())

	second := h.create(t)
	assert.Equal(t, "Q-2026-0002", second.QuoteNumber)
}

func TestCreateWithUnknownClientFails(t *testing.T) {
	h := newHarness(t)
	missing := uuid.New()

	_, err := h.svc.Create(context.Background(), h.orgID, transport.CreateQuoteRequest{ProjectTitle: "x", ClientID: &missing})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestCreateFromBuiltinTemplate(t *testing.T) {
	h := newHarness(t)
	templates, err := h.svc.ListTemplates(context.Background(), h.orgID)
	require.NoError(t, err)
	require.NotEmpty(t, templates)

	tmpl := templates[0]
	resp, err := h.svc.Create(context.Background(), h.orgID, transport.CreateQuoteRequest{
		ProjectTitle: "Conference",
		TemplateID:   &tmpl.ID,
	})
	require.NoError(t, err)

	require.Len(t, resp.Groups, len(tmpl.Groups))
	assert.NotEqual(t, tmpl.Groups[0].ID, resp.Groups[0].ID)
	assert.True(t, resp.Calculation.FinalTotal.IsPositive())
	assert.True(t, resp.TotalAmount.Equal(resp.Calculation.FinalTotal))
}

func TestEachMutationBumpsVersionAndRecalculates(t *testing.T) {
	h := newHarness(t)
	q := h.withPricedLine(t, h.create(t))

	assert.Equal(t, 5, q.Version)
	require.NotNil(t, q.Calculation)
	// 100,000 + 15% fee = 115,000; VAT 11,500.
	assert.Equal(t, "126500", q.Calculation.FinalTotal.String())
	assert.Equal(t, "126500", q.TotalAmount.String())
	assert.Equal(t, "100000", q.Groups[0].Items[0].Details[0].LineTotal.String())
}

func TestDraftWithDiscountCanBeCreatedAndFilled(t *testing.T) {
	h := newHarness(t)
	discount := decimal.NewFromInt(50000)

	q, err := h.svc.Create(context.Background(), h.orgID, transport.CreateQuoteRequest{
		ProjectTitle:   "Discounted launch",
		DiscountAmount: &discount,
	})
	require.NoError(t, err)
	assert.Equal(t, "-55000", q.Calculation.FinalTotal.String())

	q = h.withPricedLine(t, q)
	// 100,000 + 15,000 fee − 50,000 = 65,000; VAT 6,500.
	assert.Equal(t, "71500", q.Calculation.FinalTotal.String())
}

func TestRemovingLinesKeepsDiscountedDraftEditable(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	q := h.withPricedLine(t, h.create(t))
	discount := decimal.NewFromInt(50000)
	q, err := h.svc.UpdateHeader(ctx, q.ID, h.orgID, transport.UpdateQuoteRequest{Version: q.Version, DiscountAmount: &discount})
	require.NoError(t, err)

	g := q.Groups[0]
	it := g.Items[0]
	q, err = h.svc.RemoveDetail(ctx, q.ID, g.ID, it.ID, it.Details[0].ID, h.orgID, q.Version)
	require.NoError(t, err)
	assert.Equal(t, "-50000", q.Calculation.TotalBeforeVAT.String())
	assert.Equal(t, "-55000", q.TotalAmount.String())

	q, err = h.svc.RemoveGroup(ctx, q.ID, g.ID, h.orgID, q.Version)
	require.NoError(t, err)
	assert.Empty(t, q.Groups)
}

func TestSubmitWithDiscountAboveTotalFails(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	q := h.withPricedLine(t, h.create(t))
	discount := decimal.NewFromInt(200000)
	q, err := h.svc.UpdateHeader(ctx, q.ID, h.orgID, transport.UpdateQuoteRequest{Version: q.Version, DiscountAmount: &discount})
	require.NoError(t, err)
	savesBefore := h.repo.saves

	_, err = h.svc.Transition(ctx, q.ID, h.orgID, transport.TransitionRequest{Version: q.Version, Status: "submitted"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
	assert.Equal(t, savesBefore, h.repo.saves)

	discount = decimal.NewFromInt(115000)
	q, err = h.svc.UpdateHeader(ctx, q.ID, h.orgID, transport.UpdateQuoteRequest{Version: q.Version, DiscountAmount: &discount})
	require.NoError(t, err)
	q, err = h.svc.Transition(ctx, q.ID, h.orgID, transport.TransitionRequest{Version: q.Version, Status: "submitted"})
	require.NoError(t, err)
	assert.Equal(t, "submitted", q.Status)
}

func TestStaleVersionIsRejectedWithoutWriting(t *testing.T) {
	h := newHarness(t)
	q := h.create(t)

	_, err := h.svc.AddGroup(context.Background(), q.ID, h.orgID, transport.AddGroupRequest{Version: q.Version, Name: "A"})
	require.NoError(t, err)
	savesBefore := h.repo.saves

	_, err = h.svc.AddGroup(context.Background(), q.ID, h.orgID, transport.AddGroupRequest{Version: q.Version, Name: "B"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.KindConcurrentModification))

	var appErr *apperr.Error
	require.ErrorAs(t, err, &appErr)
	assert.True(t, appErr.Retryable())
	assert.Equal(t, savesBefore, h.repo.saves)

	stored, err := h.svc.GetByID(context.Background(), q.ID, h.orgID)
	require.NoError(t, err)
	require.Len(t, stored.Groups, 1)
	assert.Equal(t, "A", stored.Groups[0].Name)
}

func TestAddDetailFromMasterSnapshotsCatalog(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	item := h.catalog.addItem("LED wall", 500000, nil)
	supplier := h.catalog.addSupplier("Bright Co")

	q := h.create(t)
	q, err := h.svc.AddGroup(ctx, q.ID, h.orgID, transport.AddGroupRequest{Version: q.Version, Name: "AV"})
	require.NoError(t, err)
	q, err = h.svc.AddItem(ctx, q.ID, q.Groups[0].ID, h.orgID, transport.AddItemRequest{Version: q.Version, Name: "Screens"})
	require.NoError(t, err)

	days := decimal.NewFromInt(2)
	q, err = h.svc.AddDetail(ctx, q.ID, q.Groups[0].ID, q.Groups[0].Items[0].ID, h.orgID, transport.AddDetailRequest{
		Version:      q.Version,
		MasterItemID: &item.ID,
		SupplierID:   &supplier.ID,
		Days:         &days,
	})
	require.NoError(t, err)

	line := q.Groups[0].Items[0].Details[0]
	assert.Equal(t, "LED wall", line.Name)
	assert.Equal(t, "Bright Co", line.SupplierName)
	assert.Equal(t, "500000", line.UnitPrice.String())
	assert.Equal(t, "350000", line.CostPrice.String())
	assert.Equal(t, "1", line.Quantity.String())
	assert.Equal(t, "2", line.Days.String())
	require.NotNil(t, line.MasterItemID)
	assert.Equal(t, item.ID, *line.MasterItemID)
	require.Len(t, q.Notices, 1)

	item.UnitPrice = decimal.NewFromInt(1)
	reloaded, err := h.svc.GetByID(ctx, q.ID, h.orgID)
	require.NoError(t, err)
	assert.Equal(t, "500000", reloaded.Groups[0].Items[0].Details[0].UnitPrice.String())
}

func TestInactiveMasterItemCannotBeAdded(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	item := h.catalog.addItem("Old prop", 1000, nil)
	item.IsActive = false

	q := h.create(t)
	q, err := h.svc.AddGroup(ctx, q.ID, h.orgID, transport.AddGroupRequest{Version: q.Version, Name: "G"})
	require.NoError(t, err)
	q, err = h.svc.AddItem(ctx, q.ID, q.Groups[0].ID, h.orgID, transport.AddItemRequest{Version: q.Version, Name: "I"})
	require.NoError(t, err)

	_, err = h.svc.AddDetail(ctx, q.ID, q.Groups[0].ID, q.Groups[0].Items[0].ID, h.orgID, transport.AddDetailRequest{
		Version:      q.Version,
		MasterItemID: &item.ID,
	})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestApprovalPublishesEventAndLocksQuote(t *testing.T) {
	h := newHarness(t)
	q := h.approve(t, h.withPricedLine(t, h.create(t)))

	assert.Equal(t, "approved", q.Status)
	assert.Equal(t, []string{"quotes.quote.approved"}, h.bus.names())

	_, err := h.svc.AddGroup(context.Background(), q.ID, h.orgID, transport.AddGroupRequest{Version: q.Version, Name: "late"})
	assert.True(t, apperr.Is(err, apperr.KindImmutableState))
}

func TestRejectionPublishesEvent(t *testing.T) {
	h := newHarness(t)
	q := h.withPricedLine(t, h.create(t))
	ctx := context.Background()
	var err error
	for _, status := range []string{"submitted", "under_review", "rejected"} {
		q, err = h.svc.Transition(ctx, q.ID, h.orgID, transport.TransitionRequest{Version: q.Version, Status: status})
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"quotes.quote.rejected"}, h.bus.names())
}

func TestTransitionToExpiredIsRejected(t *testing.T) {
	h := newHarness(t)
	q := h.approve(t, h.withPricedLine(t, h.create(t)))

	_, err := h.svc.Transition(context.Background(), q.ID, h.orgID, transport.TransitionRequest{Version: q.Version, Status: "expired"})
	assert.True(t, apperr.Is(err, apperr.KindInvalidStateTransition))
}

func TestConvertRequiresApproval(t *testing.T) {
	h := newHarness(t)
	q := h.withPricedLine(t, h.create(t))

	_, err := h.svc.Convert(context.Background(), q.ID, h.orgID, q.Version)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
	assert.Empty(t, h.projects.created)
}

func TestConvertCreatesProjectOnce(t *testing.T) {
	h := newHarness(t)
	q := h.approve(t, h.withPricedLine(t, h.create(t)))

	resp, err := h.svc.Convert(context.Background(), q.ID, h.orgID, q.Version)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, resp.ProjectID)

	created := h.projects.created[q.ID]
	assert.Equal(t, "126500", created.ContractAmount.String())
	assert.Equal(t, "60000", created.TotalCost.String())
	assert.Contains(t, h.bus.names(), "quotes.quote.converted")

	_, err = h.svc.Convert(context.Background(), q.ID, h.orgID, q.Version)
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestExpireDueMovesLapsedApprovedQuotes(t *testing.T) {
	h := newHarness(t)
	q := h.approve(t, h.withPricedLine(t, h.create(t)))

	n, err := h.svc.ExpireDue(context.Background(), time.Date(2026, 5, 31, 23, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	n, err = h.svc.ExpireDue(context.Background(), time.Date(2026, 6, 1, 0, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	stored, err := h.svc.GetByID(context.Background(), q.ID, h.orgID)
	require.NoError(t, err)
	assert.Equal(t, "expired", stored.Status)
	assert.Equal(t, q.Version+1, stored.Version)
}

func TestDuplicateCreatesIndependentDraft(t *testing.T) {
	h := newHarness(t)
	src := h.approve(t, h.withPricedLine(t, h.create(t)))

	dup, err := h.svc.Duplicate(context.Background(), src.ID, h.orgID)
	require.NoError(t, err)

	assert.NotEqual(t, src.ID, dup.ID)
	assert.NotEqual(t, src.QuoteNumber, dup.QuoteNumber)
	assert.Equal(t, "draft", dup.Status)
	assert.Equal(t, 1, dup.Version)
	assert.NotEqual(t, src.Groups[0].ID, dup.Groups[0].ID)
	assert.True(t, dup.Calculation.FinalTotal.Equal(src.Calculation.FinalTotal))
}

func TestSaveAndApplyOrganizationTemplate(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	src := h.withPricedLine(t, h.create(t))

	tmpl, err := h.svc.SaveTemplate(ctx, h.orgID, transport.SaveTemplateRequest{QuoteID: src.ID, Name: "Crew only"})
	require.NoError(t, err)
	assert.False(t, tmpl.BuiltIn)

	target := h.create(t)
	applied, err := h.svc.ApplyTemplate(ctx, target.ID, h.orgID, transport.ApplyTemplateRequest{Version: target.Version, TemplateID: tmpl.ID})
	require.NoError(t, err)
	require.Len(t, applied.Groups, 1)
	assert.NotEqual(t, src.Groups[0].ID, applied.Groups[0].ID)
	assert.Equal(t, 0, applied.Groups[0].SortOrder)
	assert.True(t, applied.Calculation.FinalTotal.Equal(src.Calculation.FinalTotal))
}

func TestApplyUnknownTemplateIsNotFound(t *testing.T) {
	h := newHarness(t)
	q := h.create(t)

	_, err := h.svc.ApplyTemplate(context.Background(), q.ID, h.orgID, transport.ApplyTemplateRequest{Version: q.Version, TemplateID: uuid.New()})
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestStatelessCalculate(t *testing.T) {
	h := newHarness(t)
	excluded := false
	resp, err := h.svc.Calculate(transport.CalculateRequest{
		AgencyFeeRate: decimal.RequireFromString("0.1"),
		Groups: []transport.GroupInput{
			{Name: "Fee", Items: []transport.ItemInput{{Name: "a", Details: []transport.DetailInput{
				{Quantity: decimal.NewFromInt(1), Days: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(1000)},
			}}}},
			{Name: "Pass-through", IncludeInFee: &excluded, Items: []transport.ItemInput{{Name: "b", Details: []transport.DetailInput{
				{Quantity: decimal.NewFromInt(1), Days: decimal.NewFromInt(1), UnitPrice: decimal.NewFromInt(500)},
			}}}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "100", resp.AgencyFee.String())
	assert.Equal(t, "500", resp.FeeExcludedAmount.String())
	assert.Equal(t, "1760", resp.FinalTotal.String())
}

func TestStatelessCalculateRejectsFeeRateAboveOne(t *testing.T) {
	h := newHarness(t)

	_, err := h.svc.Calculate(transport.CalculateRequest{AgencyFeeRate: decimal.RequireFromString("1.5")})
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestBuiltinTemplatesHaveStableIDs(t *testing.T) {
	first, err := LoadBuiltinTemplates()
	require.NoError(t, err)
	second, err := LoadBuiltinTemplates()
	require.NoError(t, err)

	require.Len(t, first, 2)
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
		assert.True(t, first[i].BuiltIn)
		assert.NoError(t, domain.ValidateTree(first[i].Groups))
	}
}
