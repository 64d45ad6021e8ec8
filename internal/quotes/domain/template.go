package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"quotedesk_backend/platform/apperr"
)

// Template is a reusable group tree. Built-in templates have no owner.
type Template struct {
	ID             uuid.UUID
	OrganizationID *uuid.UUID
	Name           string
	Description    string
	Groups         []Group
	BuiltIn        bool
	CreatedAt      time.Time
}

// NewTemplateFromQuote captures a deep copy of the quote's tree.
func NewTemplateFromQuote(q *Quote, name, description string) (Template, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Template{}, apperr.Validation("template name is required")
	}
	if len(q.Groups) == 0 {
		return Template{}, apperr.Validation("quote has no groups to save as a template")
	}
	orgID := q.OrganizationID
	return Template{
		ID:             uuid.New(),
		OrganizationID: &orgID,
		Name:           name,
		Description:    strings.TrimSpace(description),
		Groups:         CloneGroups(q.Groups, true),
	}, nil
}
