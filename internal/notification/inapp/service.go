package inapp

import (
	"context"

	"github.com/google/uuid"

	"quotedesk_backend/platform/apperr"
	"quotedesk_backend/platform/logger"
	"quotedesk_backend/platform/sanitize"
)

type Service struct {
	repo Store
	log  *logger.Logger
}

func NewService(repo Store, log *logger.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
	}
}

type SendParams struct {
	OrgID        uuid.UUID
	Type         string
	Title        string
	Content      string
	ResourceID   *uuid.UUID
	ResourceType string
}

// ListResult is one page of notifications plus the unread badge count.
type ListResult struct {
	Items       []Notification `json:"items"`
	Total       int            `json:"total"`
	UnreadCount int            `json:"unreadCount"`
	Page        int            `json:"page"`
	PageSize    int            `json:"pageSize"`
}

// Send persists a notification visible to every member of the organization.
func (s *Service) Send(ctx context.Context, p SendParams) (Notification, error) {
	if s == nil || s.repo == nil {
		return Notification{}, apperr.Internal("in-app notification service not configured")
	}

	var resourceType *string
	if p.ResourceType != "" {
		resourceType = &p.ResourceType
	}

	notif, err := s.repo.Create(ctx, CreateParams{
		OrganizationID: p.OrgID,
		Type:           p.Type,
		Title:          sanitize.Name(p.Title),
		Content:        sanitize.Text(p.Content),
		ResourceID:     p.ResourceID,
		ResourceType:   resourceType,
	})
	if err != nil {
		if s.log != nil {
			s.log.Error("failed to persist in-app notification", "error", err, "orgId", p.OrgID)
		}
		return Notification{}, err
	}

	return notif, nil
}

func (s *Service) List(ctx context.Context, orgID uuid.UUID, unreadOnly bool, page, pageSize int) (ListResult, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 50 {
		pageSize = 50
	}

	offset := (page - 1) * pageSize
	items, total, err := s.repo.List(ctx, orgID, unreadOnly, pageSize, offset)
	if err != nil {
		return ListResult{}, err
	}
	unread, err := s.repo.CountUnread(ctx, orgID)
	if err != nil {
		return ListResult{}, err
	}

	return ListResult{Items: items, Total: total, UnreadCount: unread, Page: page, PageSize: pageSize}, nil
}

func (s *Service) MarkRead(ctx context.Context, orgID, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, orgID, id)
}

func (s *Service) MarkAllRead(ctx context.Context, orgID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, orgID)
}
