package scheduler

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quotedesk_backend/internal/events"
	"quotedesk_backend/internal/notification/outbox"
	"quotedesk_backend/platform/logger"
)

type testSchedulerConfig struct {
	redisURL string
}

func (c testSchedulerConfig) GetRedisURL() string        { return c.redisURL }
func (c testSchedulerConfig) GetRedisTLSInsecure() bool  { return false }
func (c testSchedulerConfig) GetAsynqQueueName() string  { return "" }
func (c testSchedulerConfig) GetAsynqConcurrency() int   { return 0 }
func (c testSchedulerConfig) GetQuoteExpiryCron() string { return "@every 15m" }

type claimOnlyStore struct {
	outbox.Store
	claimed []outbox.Record
	pending map[uuid.UUID]string
}

func (s *claimOnlyStore) ClaimPending(context.Context, int) ([]outbox.Record, error) {
	records := s.claimed
	s.claimed = nil
	return records, nil
}

func (s *claimOnlyStore) MarkPending(_ context.Context, id uuid.UUID, lastError *string) error {
	if s.pending == nil {
		s.pending = map[uuid.UUID]string{}
	}
	s.pending[id] = *lastError
	return nil
}

type recordingBus struct {
	published []events.Event
}

func (b *recordingBus) Publish(_ context.Context, event events.Event) {
	b.published = append(b.published, event)
}

func (b *recordingBus) PublishSync(_ context.Context, event events.Event) error {
	b.published = append(b.published, event)
	return nil
}

func (b *recordingBus) Subscribe(string, events.Handler) {}

type fakeExpirer struct {
	calledWith time.Time
	expired    int
	err        error
}

func (f *fakeExpirer) ExpireDue(_ context.Context, now time.Time) (int, error) {
	f.calledWith = now
	return f.expired, f.err
}

func TestRedisClientOptParsesURL(t *testing.T) {
	opt, err := redisClientOpt("redis://:secret@localhost:6380/2", false)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opt.Addr)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, 2, opt.DB)
	assert.Nil(t, opt.TLSConfig)

	opt, err = redisClientOpt("rediss://localhost:6380", true)
	require.NoError(t, err)
	require.NotNil(t, opt.TLSConfig)
	assert.True(t, opt.TLSConfig.InsecureSkipVerify)
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	_, err := NewClient(testSchedulerConfig{})
	require.Error(t, err)
}

func TestDispatcherEnqueuesClaimedRecords(t *testing.T) {
	mr := miniredis.RunT(t)
	store := &claimOnlyStore{}
	d, err := NewNotificationOutboxDispatcher(testSchedulerConfig{redisURL: "redis://" + mr.Addr()}, store, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })

	rec := outbox.Record{
		ID:             uuid.New(),
		OrganizationID: uuid.New(),
		Kind:           outbox.KindInApp,
		RunAt:          time.Now().Add(-time.Second),
		Status:         outbox.StatusEnqueued,
	}
	store.claimed = []outbox.Record{rec}

	assert.Equal(t, 1, d.dispatchOnce(context.Background()))
	assert.Empty(t, store.pending)

	ids, err := mr.List("asynq:{default}:pending")
	require.NoError(t, err)
	require.Len(t, ids, 1)

	assert.Equal(t, 0, d.dispatchOnce(context.Background()))
}

func TestEnqueueQuoteExpiryCollapsesDuplicates(t *testing.T) {
	mr := miniredis.RunT(t)
	c, err := NewClient(testSchedulerConfig{redisURL: "redis://" + mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })

	require.NoError(t, c.EnqueueQuoteExpiry(context.Background()))
	require.NoError(t, c.EnqueueQuoteExpiry(context.Background()))

	ids, err := mr.List("asynq:{default}:pending")
	require.NoError(t, err)
	assert.Len(t, ids, 1)
}

func TestWorkerPublishesOutboxDue(t *testing.T) {
	bus := &recordingBus{}
	w := newWorker(nil, bus, logger.Nop())

	outboxID := uuid.New()
	orgID := uuid.New()
	data, err := json.Marshal(NotificationOutboxDuePayload{OutboxID: outboxID.String(), TenantID: orgID.String()})
	require.NoError(t, err)

	require.NoError(t, w.mux.ProcessTask(context.Background(), asynq.NewTask(TaskNotificationOutboxDue, data)))
	require.Len(t, bus.published, 1)
	due, ok := bus.published[0].(events.NotificationOutboxDue)
	require.True(t, ok)
	assert.Equal(t, outboxID, due.OutboxID)
	assert.Equal(t, orgID, due.TenantID)
}

func TestWorkerRejectsMalformedOutboxPayload(t *testing.T) {
	w := newWorker(nil, &recordingBus{}, logger.Nop())
	data, _ := json.Marshal(NotificationOutboxDuePayload{OutboxID: "nope", TenantID: uuid.NewString()})
	require.Error(t, w.mux.ProcessTask(context.Background(), asynq.NewTask(TaskNotificationOutboxDue, data)))
}

func TestWorkerRunsQuoteExpiry(t *testing.T) {
	expirer := &fakeExpirer{expired: 3}
	w := newWorker(expirer, &recordingBus{}, logger.Nop())
	fixed := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	w.nowFunc = func() time.Time { return fixed }

	task, err := NewQuoteExpiryTask()
	require.NoError(t, err)
	require.NoError(t, w.mux.ProcessTask(context.Background(), task))
	assert.Equal(t, fixed, expirer.calledWith)

	expirer.err = errors.New("db down")
	require.Error(t, w.mux.ProcessTask(context.Background(), task))
}
