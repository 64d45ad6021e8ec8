package notification

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotedesk_backend/internal/events"
	"quotedesk_backend/internal/notification/inapp"
	notificationoutbox "quotedesk_backend/internal/notification/outbox"
	"quotedesk_backend/platform/apperr"
	"quotedesk_backend/platform/logger"
)

type fakeOutbox struct {
	mu       sync.Mutex
	records  map[uuid.UUID]*notificationoutbox.Record
	lastErr  map[uuid.UUID]string
	retryAts map[uuid.UUID]time.Time
}

func newFakeOutbox() *fakeOutbox {
	return &fakeOutbox{
		records:  map[uuid.UUID]*notificationoutbox.Record{},
		lastErr:  map[uuid.UUID]string{},
		retryAts: map[uuid.UUID]time.Time{},
	}
}

func (f *fakeOutbox) Insert(_ context.Context, p notificationoutbox.InsertParams) (uuid.UUID, error) {
	payload, err := json.Marshal(p.Payload)
	if err != nil {
		return uuid.Nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := uuid.New()
	f.records[id] = &notificationoutbox.Record{
		ID:             id,
		OrganizationID: p.OrganizationID,
		Kind:           p.Kind,
		Payload:        payload,
		RunAt:          p.RunAt,
		Status:         notificationoutbox.StatusPending,
	}
	return id, nil
}

func (f *fakeOutbox) GetByID(_ context.Context, id uuid.UUID) (notificationoutbox.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rec, ok := f.records[id]
	if !ok {
		return notificationoutbox.Record{}, errors.New("not found")
	}
	return *rec, nil
}

func (f *fakeOutbox) ClaimPending(context.Context, int) ([]notificationoutbox.Record, error) {
	return nil, nil
}

func (f *fakeOutbox) setStatus(id uuid.UUID, status notificationoutbox.Status) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.records[id]; ok {
		rec.Status = status
	}
}

func (f *fakeOutbox) MarkPending(_ context.Context, id uuid.UUID, _ *string) error {
	f.setStatus(id, notificationoutbox.StatusPending)
	return nil
}

func (f *fakeOutbox) MarkProcessing(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rec, ok := f.records[id]; ok {
		rec.Status = notificationoutbox.StatusProcessing
		rec.Attempts++
	}
	return nil
}

func (f *fakeOutbox) MarkSucceeded(_ context.Context, id uuid.UUID) error {
	f.setStatus(id, notificationoutbox.StatusSucceeded)
	return nil
}

func (f *fakeOutbox) MarkFailed(_ context.Context, id uuid.UUID, lastError string) error {
	f.setStatus(id, notificationoutbox.StatusFailed)
	f.mu.Lock()
	f.lastErr[id] = lastError
	f.mu.Unlock()
	return nil
}

func (f *fakeOutbox) ScheduleRetry(_ context.Context, id uuid.UUID, runAt time.Time, lastError string) error {
	f.setStatus(id, notificationoutbox.StatusPending)
	f.mu.Lock()
	f.lastErr[id] = lastError
	f.retryAts[id] = runAt
	f.mu.Unlock()
	return nil
}

func (f *fakeOutbox) only(t *testing.T) notificationoutbox.Record {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.records, 1)
	for _, rec := range f.records {
		return *rec
	}
	return notificationoutbox.Record{}
}

type fakeInApp struct {
	mu       sync.Mutex
	created  []inapp.CreateParams
	failNext error
}

func (f *fakeInApp) Create(_ context.Context, p inapp.CreateParams) (inapp.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failNext != nil {
		err := f.failNext
		f.failNext = nil
		return inapp.Notification{}, err
	}
	f.created = append(f.created, p)
	return inapp.Notification{ID: uuid.New(), Type: p.Type, Title: p.Title, Content: p.Content, ResourceID: p.ResourceID, ResourceType: p.ResourceType, CreatedAt: time.Now()}, nil
}

func (f *fakeInApp) List(context.Context, uuid.UUID, bool, int, int) ([]inapp.Notification, int, error) {
	return nil, 0, nil
}

func (f *fakeInApp) CountUnread(context.Context, uuid.UUID) (int, error) { return 0, nil }

func (f *fakeInApp) MarkRead(context.Context, uuid.UUID, uuid.UUID) error {
	return apperr.NotFound("notification not found")
}

func (f *fakeInApp) MarkAllRead(context.Context, uuid.UUID) (int64, error) { return 0, nil }

func newTestModule() (*Module, *fakeOutbox, *fakeInApp) {
	outbox := newFakeOutbox()
	store := &fakeInApp{}
	return NewWithStores(outbox, store, logger.Nop()), outbox, store
}

func TestQuoteApprovedIsDeliveredThroughOutbox(t *testing.T) {
	m, outbox, store := newTestModule()
	ctx := context.Background()
	orgID := uuid.New()
	quoteID := uuid.New()

	err := m.Handle(ctx, events.QuoteApproved{
		BaseEvent:      events.NewBaseEvent(),
		QuoteID:        quoteID,
		OrganizationID: orgID,
		QuoteNumber:    "Q-2026-0001",
		ProjectTitle:   "Lobby renovation",
	})
	require.NoError(t, err)
	assert.Empty(t, store.created, "delivery waits for the outbox")

	rec := outbox.only(t)
	assert.Equal(t, notificationoutbox.KindInApp, rec.Kind)
	assert.Equal(t, orgID, rec.OrganizationID)

	err = m.Handle(ctx, events.NotificationOutboxDue{BaseEvent: events.NewBaseEvent(), OutboxID: rec.ID, TenantID: orgID})
	require.NoError(t, err)

	require.Len(t, store.created, 1)
	created := store.created[0]
	assert.Equal(t, orgID, created.OrganizationID)
	assert.Equal(t, events.NotificationQuoteApproved, created.Type)
	assert.Equal(t, "Quote approved", created.Title)
	assert.Contains(t, created.Content, "Q-2026-0001")
	require.NotNil(t, created.ResourceID)
	assert.Equal(t, quoteID, *created.ResourceID)
	require.NotNil(t, created.ResourceType)
	assert.Equal(t, "quote", *created.ResourceType)
	assert.Equal(t, notificationoutbox.StatusSucceeded, outbox.only(t).Status)
}

func TestSucceededOutboxRecordIsNotDeliveredTwice(t *testing.T) {
	m, outbox, store := newTestModule()
	ctx := context.Background()

	require.NoError(t, m.Handle(ctx, events.QuoteRejected{BaseEvent: events.NewBaseEvent(), QuoteID: uuid.New(), OrganizationID: uuid.New()}))
	rec := outbox.only(t)

	due := events.NotificationOutboxDue{BaseEvent: events.NewBaseEvent(), OutboxID: rec.ID, TenantID: rec.OrganizationID}
	require.NoError(t, m.Handle(ctx, due))
	require.NoError(t, m.Handle(ctx, due))

	assert.Len(t, store.created, 1)
}

func TestDeliveryFailureSchedulesRetry(t *testing.T) {
	m, outbox, store := newTestModule()
	ctx := context.Background()

	require.NoError(t, m.Handle(ctx, events.QuoteConverted{BaseEvent: events.NewBaseEvent(), QuoteID: uuid.New(), OrganizationID: uuid.New(), ProjectID: uuid.New()}))
	rec := outbox.only(t)
	store.failNext = errors.New("database unavailable")

	before := time.Now().UTC()
	err := m.Handle(ctx, events.NotificationOutboxDue{BaseEvent: events.NewBaseEvent(), OutboxID: rec.ID, TenantID: rec.OrganizationID})
	require.Error(t, err)

	after := outbox.only(t)
	assert.Equal(t, notificationoutbox.StatusPending, after.Status)
	assert.Equal(t, "database unavailable", outbox.lastErr[rec.ID])
	assert.True(t, outbox.retryAts[rec.ID].After(before))
	assert.Empty(t, store.created)
}

func TestUnsupportedOutboxKindIsMarkedFailed(t *testing.T) {
	m, outbox, store := newTestModule()
	ctx := context.Background()

	id, err := outbox.Insert(ctx, notificationoutbox.InsertParams{OrganizationID: uuid.New(), Kind: "carrier_pigeon", Payload: map[string]string{}})
	require.NoError(t, err)

	require.NoError(t, m.Handle(ctx, events.NotificationOutboxDue{BaseEvent: events.NewBaseEvent(), OutboxID: id}))
	assert.Equal(t, notificationoutbox.StatusFailed, outbox.only(t).Status)
	assert.Contains(t, outbox.lastErr[id], "carrier_pigeon")
	assert.Empty(t, store.created)
}

func TestComputeOutboxRetryDelay(t *testing.T) {
	assert.Equal(t, time.Minute, computeOutboxRetryDelay(0))
	assert.Equal(t, time.Minute, computeOutboxRetryDelay(1))
	assert.Equal(t, 4*time.Minute, computeOutboxRetryDelay(3))
	assert.Equal(t, 60*time.Minute, computeOutboxRetryDelay(10))
}
