// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"quotedesk_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// Notification types carried in quote event payloads.
const (
	NotificationQuoteApproved  = "quote_approved"
	NotificationQuoteRejected  = "quote_rejected"
	NotificationQuoteConverted = "quote_converted"
)

// QuoteNotice is the fire-and-forget payload shared by quote events.
type QuoteNotice struct {
	Type           string    `json:"type"`
	QuoteID        uuid.UUID `json:"quoteId"`
	OrganizationID uuid.UUID `json:"orgId"`
	Message        string    `json:"message"`
}

// Noticer is implemented by events that produce an in-app notice.
type Noticer interface {
	Event
	Notice() QuoteNotice
}

// =============================================================================
// Quote Domain Events
// =============================================================================

// QuoteApproved is published when a quote under review is approved.
type QuoteApproved struct {
	BaseEvent
	QuoteID        uuid.UUID `json:"quoteId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	QuoteNumber    string    `json:"quoteNumber"`
	ProjectTitle   string    `json:"projectTitle"`
}

func (e QuoteApproved) EventName() string { return "quotes.quote.approved" }

func (e QuoteApproved) Notice() QuoteNotice {
	return QuoteNotice{
		Type:           NotificationQuoteApproved,
		QuoteID:        e.QuoteID,
		OrganizationID: e.OrganizationID,
		Message:        "Quote " + e.QuoteNumber + " (" + e.ProjectTitle + ") was approved",
	}
}

// QuoteRejected is published when a quote under review is rejected.
type QuoteRejected struct {
	BaseEvent
	QuoteID        uuid.UUID `json:"quoteId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	QuoteNumber    string    `json:"quoteNumber"`
	ProjectTitle   string    `json:"projectTitle"`
}

func (e QuoteRejected) EventName() string { return "quotes.quote.rejected" }

func (e QuoteRejected) Notice() QuoteNotice {
	return QuoteNotice{
		Type:           NotificationQuoteRejected,
		QuoteID:        e.QuoteID,
		OrganizationID: e.OrganizationID,
		Message:        "Quote " + e.QuoteNumber + " (" + e.ProjectTitle + ") was rejected",
	}
}

// QuoteConverted is published when an approved quote becomes a project.
type QuoteConverted struct {
	BaseEvent
	QuoteID        uuid.UUID `json:"quoteId"`
	OrganizationID uuid.UUID `json:"organizationId"`
	ProjectID      uuid.UUID `json:"projectId"`
	QuoteNumber    string    `json:"quoteNumber"`
	ProjectTitle   string    `json:"projectTitle"`
}

func (e QuoteConverted) EventName() string { return "quotes.quote.converted" }

func (e QuoteConverted) Notice() QuoteNotice {
	return QuoteNotice{
		Type:           NotificationQuoteConverted,
		QuoteID:        e.QuoteID,
		OrganizationID: e.OrganizationID,
		Message:        "Quote " + e.QuoteNumber + " was converted into project " + e.ProjectTitle,
	}
}

// =============================================================================
// Notification Events
// =============================================================================

// NotificationOutboxDue is published by the scheduler when a notification outbox
// record should be processed.
type NotificationOutboxDue struct {
	BaseEvent
	OutboxID uuid.UUID `json:"outboxId"`
	TenantID uuid.UUID `json:"tenantId"`
}

func (e NotificationOutboxDue) EventName() string { return "notification.outbox.due" }
