// Package notification turns quote lifecycle events into organization-wide
// in-app notifications. Events are first recorded in a durable outbox; the
// scheduler later publishes NotificationOutboxDue and this module delivers.
package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"quotedesk_backend/internal/events"
	apphttp "quotedesk_backend/internal/http"
	notifhandler "quotedesk_backend/internal/notification/handler"
	"quotedesk_backend/internal/notification/inapp"
	notificationoutbox "quotedesk_backend/internal/notification/outbox"
	"quotedesk_backend/platform/logger"
)

const (
	invalidOutboxPayloadPrefix = "invalid payload: "
	maxOutboxRetryAttempts     = 5
	outboxRetryBaseDelay       = time.Minute
	outboxRetryMaxDelay        = 60 * time.Minute
	quoteResourceType          = "quote"
)

var noticeTitles = map[string]string{
	events.NotificationQuoteApproved:  "Quote approved",
	events.NotificationQuoteRejected:  "Quote rejected",
	events.NotificationQuoteConverted: "Quote converted to project",
}

// Module handles all notification-related event subscriptions.
type Module struct {
	log                *logger.Logger
	notificationOutbox notificationoutbox.Store
	inAppService       *inapp.Service
	inAppHandler       *notifhandler.HTTPHandler
}

// New creates a new notification module backed by Postgres.
func New(pool *pgxpool.Pool, log *logger.Logger) *Module {
	return NewWithStores(notificationoutbox.New(pool), inapp.NewRepository(pool), log)
}

// NewWithStores wires the module on top of explicit stores.
func NewWithStores(outbox notificationoutbox.Store, inAppStore inapp.Store, log *logger.Logger) *Module {
	inAppSvc := inapp.NewService(inAppStore, log)
	return &Module{
		log:                log,
		notificationOutbox: outbox,
		inAppService:       inAppSvc,
		inAppHandler:       notifhandler.NewHTTPHandler(inAppSvc),
	}
}

func (m *Module) Name() string { return "notification" }

// RegisterRoutes registers notification API routes.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	if m.inAppHandler == nil {
		return
	}

	notifications := ctx.Protected.Group("/notifications")
	m.inAppHandler.RegisterRoutes(notifications)
}

// InAppService exposes the in-app notification service for integration points.
func (m *Module) InAppService() *inapp.Service { return m.inAppService }

func (m *Module) RegisterHandlers(bus *events.InMemoryBus) {
	bus.Subscribe(events.QuoteApproved{}.EventName(), m)
	bus.Subscribe(events.QuoteRejected{}.EventName(), m)
	bus.Subscribe(events.QuoteConverted{}.EventName(), m)
	bus.Subscribe(events.NotificationOutboxDue{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.NotificationOutboxDue:
		return m.handleNotificationOutboxDue(ctx, e)
	case events.Noticer:
		return m.enqueueNotice(ctx, e.Notice())
	default:
		m.log.Debug("notification module ignoring event", "event", event.EventName())
		return nil
	}
}

func (m *Module) enqueueNotice(ctx context.Context, notice events.QuoteNotice) error {
	if m.notificationOutbox == nil {
		m.log.Debug("notification outbox repository not configured; dropping notice", "type", notice.Type, "quoteId", notice.QuoteID)
		return nil
	}

	id, err := m.notificationOutbox.Insert(ctx, notificationoutbox.InsertParams{
		OrganizationID: notice.OrganizationID,
		Kind:           notificationoutbox.KindInApp,
		Payload:        notice,
		RunAt:          time.Now().UTC(),
	})
	if err != nil {
		m.log.Error("failed to enqueue notice", "type", notice.Type, "quoteId", notice.QuoteID, "error", err)
		return err
	}
	m.log.Debug("notice enqueued", "outboxId", id, "type", notice.Type, "quoteId", notice.QuoteID)
	return nil
}

func (m *Module) handleNotificationOutboxDue(ctx context.Context, e events.NotificationOutboxDue) error {
	if m.notificationOutbox == nil {
		m.log.Debug("notification outbox repository not configured; skipping outbox due event", "outboxId", e.OutboxID, "tenantId", e.TenantID)
		return nil
	}
	m.log.Info("processing outbox due event", "outboxId", e.OutboxID, "tenantId", e.TenantID)
	rec, process, err := m.prepareOutboxRecord(ctx, e.OutboxID)
	if err != nil || !process {
		if err != nil {
			m.log.Error("failed to prepare outbox record", "outboxId", e.OutboxID, "error", err)
		}
		return err
	}

	if rec.Kind != notificationoutbox.KindInApp {
		m.markOutboxUnsupported(ctx, rec)
		return nil
	}

	if err := m.processInAppOutbox(ctx, rec); err != nil {
		m.handleOutboxDeliveryError(ctx, rec, err)
		return err
	}
	m.log.Info("outbox record processed successfully", "outboxId", rec.ID.String(), "kind", rec.Kind)

	return nil
}

func (m *Module) processInAppOutbox(ctx context.Context, rec notificationoutbox.Record) error {
	var notice events.QuoteNotice
	if err := json.Unmarshal(rec.Payload, &notice); err != nil {
		_ = m.notificationOutbox.MarkFailed(ctx, rec.ID, invalidOutboxPayloadPrefix+err.Error())
		return nil
	}

	orgID := rec.OrganizationID
	if notice.OrganizationID != uuid.Nil {
		orgID = notice.OrganizationID
	}

	title, ok := noticeTitles[notice.Type]
	if !ok {
		title = "Quote update"
	}
	quoteID := notice.QuoteID
	if _, err := m.inAppService.Send(ctx, inapp.SendParams{
		OrgID:        orgID,
		Type:         notice.Type,
		Title:        title,
		Content:      notice.Message,
		ResourceID:   &quoteID,
		ResourceType: quoteResourceType,
	}); err != nil {
		return err
	}

	_ = m.notificationOutbox.MarkSucceeded(ctx, rec.ID)
	m.log.Info("in-app outbox delivered", "outboxId", rec.ID.String(), "orgId", orgID, "type", notice.Type)
	return nil
}

func (m *Module) handleOutboxDeliveryError(ctx context.Context, rec notificationoutbox.Record, deliveryErr error) {
	attempt := rec.Attempts + 1
	if attempt >= maxOutboxRetryAttempts {
		_ = m.notificationOutbox.MarkFailed(ctx, rec.ID, deliveryErr.Error())
		m.log.Warn("notification outbox exhausted retries",
			"outboxId", rec.ID.String(),
			"kind", rec.Kind,
			"attempt", attempt,
			"maxAttempts", maxOutboxRetryAttempts,
			"error", deliveryErr,
		)
		return
	}

	retryAt := time.Now().UTC().Add(computeOutboxRetryDelay(attempt))
	if err := m.notificationOutbox.ScheduleRetry(ctx, rec.ID, retryAt, deliveryErr.Error()); err != nil {
		_ = m.notificationOutbox.MarkFailed(ctx, rec.ID, deliveryErr.Error())
		m.log.Error("notification outbox retry scheduling failed; marked failed",
			"outboxId", rec.ID.String(),
			"attempt", attempt,
			"error", err,
		)
		return
	}

	m.log.Warn("notification outbox scheduled retry",
		"outboxId", rec.ID.String(),
		"kind", rec.Kind,
		"attempt", attempt,
		"maxAttempts", maxOutboxRetryAttempts,
		"retryAt", retryAt,
		"error", deliveryErr,
	)
}

func computeOutboxRetryDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := outboxRetryBaseDelay << (attempt - 1)
	if delay > outboxRetryMaxDelay {
		return outboxRetryMaxDelay
	}
	return delay
}

func (m *Module) prepareOutboxRecord(ctx context.Context, outboxID uuid.UUID) (notificationoutbox.Record, bool, error) {
	rec, err := m.notificationOutbox.GetByID(ctx, outboxID)
	if err != nil {
		return notificationoutbox.Record{}, false, err
	}
	if rec.Status == notificationoutbox.StatusSucceeded {
		m.log.Debug("outbox record already succeeded; skipping", "outboxId", rec.ID.String())
		return rec, false, nil
	}
	if err := m.notificationOutbox.MarkProcessing(ctx, rec.ID); err != nil {
		return notificationoutbox.Record{}, false, err
	}
	m.log.Debug("outbox record marked processing", "outboxId", rec.ID.String(), "kind", rec.Kind)
	return rec, true, nil
}

func (m *Module) markOutboxUnsupported(ctx context.Context, rec notificationoutbox.Record) {
	msg := fmt.Sprintf("unsupported outbox kind: %s", rec.Kind)
	_ = m.notificationOutbox.MarkFailed(ctx, rec.ID, msg)
	m.log.Warn("unsupported outbox record", "outboxId", rec.ID.String(), "kind", rec.Kind)
}
