package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"quotedesk_backend/internal/quotes/domain"
	"quotedesk_backend/platform/apperr"
)

// Templates store their tree as one JSONB document. Ids are kept only so
// the document is self-describing; applying a template always assigns new ones.

type templateGroup struct {
	ID           uuid.UUID      `json:"id"`
	Name         string         `json:"name"`
	SortOrder    int            `json:"sortOrder"`
	IncludeInFee bool           `json:"includeInFee"`
	Items        []templateItem `json:"items"`
}

type templateItem struct {
	ID           uuid.UUID        `json:"id"`
	Name         string           `json:"name"`
	SortOrder    int              `json:"sortOrder"`
	IncludeInFee bool             `json:"includeInFee"`
	Details      []templateDetail `json:"details"`
}

type templateDetail struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Quantity     decimal.Decimal `json:"quantity"`
	Days         decimal.Decimal `json:"days"`
	Unit         string          `json:"unit"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	CostPrice    decimal.Decimal `json:"costPrice"`
	IsService    bool            `json:"isService"`
	SupplierID   *uuid.UUID      `json:"supplierId,omitempty"`
	SupplierName string          `json:"supplierName"`
	MasterItemID *uuid.UUID      `json:"masterItemId,omitempty"`
	SortOrder    int             `json:"sortOrder"`
}

func encodeTemplateGroups(groups []domain.Group) ([]byte, error) {
	doc := make([]templateGroup, 0, len(groups))
	for _, g := range groups {
		tg := templateGroup{ID: g.ID, Name: g.Name, SortOrder: g.SortOrder, IncludeInFee: g.IncludeInFee, Items: make([]templateItem, 0, len(g.Items))}
		for _, it := range g.Items {
			ti := templateItem{ID: it.ID, Name: it.Name, SortOrder: it.SortOrder, IncludeInFee: it.IncludeInFee, Details: make([]templateDetail, 0, len(it.Details))}
			for _, d := range it.Details {
				ti.Details = append(ti.Details, templateDetail{
					ID: d.ID, Name: d.Name, Description: d.Description,
					Quantity: d.Quantity, Days: d.Days, Unit: d.Unit,
					UnitPrice: d.UnitPrice, CostPrice: d.CostPrice, IsService: d.IsService,
					SupplierID: d.SupplierID, SupplierName: d.SupplierName,
					MasterItemID: d.MasterItemID, SortOrder: d.SortOrder,
				})
			}
			tg.Items = append(tg.Items, ti)
		}
		doc = append(doc, tg)
	}
	return json.Marshal(doc)
}

func decodeTemplateGroups(raw []byte) ([]domain.Group, error) {
	var doc []templateGroup
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	groups := make([]domain.Group, 0, len(doc))
	for _, tg := range doc {
		g := domain.Group{ID: tg.ID, Name: tg.Name, SortOrder: tg.SortOrder, IncludeInFee: tg.IncludeInFee, Items: make([]domain.Item, 0, len(tg.Items))}
		for _, ti := range tg.Items {
			it := domain.Item{ID: ti.ID, Name: ti.Name, SortOrder: ti.SortOrder, IncludeInFee: ti.IncludeInFee, Details: make([]domain.DetailLine, 0, len(ti.Details))}
			for _, td := range ti.Details {
				it.Details = append(it.Details, domain.DetailLine{
					ID: td.ID, Name: td.Name, Description: td.Description,
					Quantity: td.Quantity, Days: td.Days, Unit: td.Unit,
					UnitPrice: td.UnitPrice, CostPrice: td.CostPrice, IsService: td.IsService,
					SupplierID: td.SupplierID, SupplierName: td.SupplierName,
					MasterItemID: td.MasterItemID, SortOrder: td.SortOrder,
				})
			}
			g.Items = append(g.Items, it)
		}
		groups = append(groups, g)
	}
	return groups, nil
}

// CreateTemplate stores an organization template.
func (r *Repo) CreateTemplate(ctx context.Context, t domain.Template) error {
	doc, err := encodeTemplateGroups(t.Groups)
	if err != nil {
		return fmt.Errorf("failed to encode template groups: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO quote_templates (id, organization_id, name, description, groups)
		VALUES ($1, $2, $3, $4, $5)`,
		t.ID, t.OrganizationID, t.Name, t.Description, doc)
	if err != nil {
		return fmt.Errorf("failed to insert template: %w", err)
	}
	return nil
}

// ListTemplates returns the organization's templates, newest first.
func (r *Repo) ListTemplates(ctx context.Context, orgID uuid.UUID) ([]domain.Template, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, organization_id, name, description, groups, created_at
		FROM quote_templates WHERE organization_id = $1
		ORDER BY created_at DESC`, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}
	templates, err := pgx.CollectRows(rows, scanTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to scan templates: %w", err)
	}
	return templates, nil
}

// GetTemplate loads one organization template.
func (r *Repo) GetTemplate(ctx context.Context, id, orgID uuid.UUID) (domain.Template, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, organization_id, name, description, groups, created_at
		FROM quote_templates WHERE id = $1 AND organization_id = $2`, id, orgID)
	if err != nil {
		return domain.Template{}, fmt.Errorf("failed to get template: %w", err)
	}
	t, err := pgx.CollectExactlyOneRow(rows, scanTemplate)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Template{}, apperr.NotFound(templateNotFoundMsg)
		}
		return domain.Template{}, fmt.Errorf("failed to get template: %w", err)
	}
	return t, nil
}

func scanTemplate(row pgx.CollectableRow) (domain.Template, error) {
	var t domain.Template
	var orgID uuid.UUID
	var raw []byte
	if err := row.Scan(&t.ID, &orgID, &t.Name, &t.Description, &raw, &t.CreatedAt); err != nil {
		return domain.Template{}, err
	}
	groups, err := decodeTemplateGroups(raw)
	if err != nil {
		return domain.Template{}, fmt.Errorf("decode template %s: %w", t.ID, err)
	}
	t.OrganizationID = &orgID
	t.Groups = groups
	return t, nil
}
