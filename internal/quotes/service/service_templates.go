package service

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"quotedesk_backend/internal/quotes/domain"
	"quotedesk_backend/internal/quotes/transport"
	"quotedesk_backend/platform/apperr"
)

//go:embed templates/*.yaml
var builtinTemplateFS embed.FS

// builtinNamespace derives stable ids for built-in templates from their file names.
var builtinNamespace = uuid.MustParse("5b0d4c1e-7f7a-4f0e-9a49-2d7c6a0f3e11")

type templateFile struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Groups      []templateGroup `yaml:"groups"`
}

type templateGroup struct {
	Name         string         `yaml:"name"`
	IncludeInFee *bool          `yaml:"includeInFee"`
	Items        []templateItem `yaml:"items"`
}

type templateItem struct {
	Name    string           `yaml:"name"`
	Details []templateDetail `yaml:"details"`
}

// Amounts are strings so they parse exactly.
type templateDetail struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Unit        string `yaml:"unit"`
	Quantity    string `yaml:"quantity"`
	Days        string `yaml:"days"`
	UnitPrice   string `yaml:"unitPrice"`
	CostPrice   string `yaml:"costPrice"`
	IsService   bool   `yaml:"isService"`
}

// LoadBuiltinTemplates parses the embedded template files.
func LoadBuiltinTemplates() ([]domain.Template, error) {
	return loadTemplates(builtinTemplateFS, "templates")
}

func loadTemplates(fsys fs.FS, dir string) ([]domain.Template, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read template dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	templates := make([]domain.Template, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		raw, err := fs.ReadFile(fsys, dir+"/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", entry.Name(), err)
		}
		t, err := parseTemplate(entry.Name(), raw)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", entry.Name(), err)
		}
		templates = append(templates, t)
	}
	return templates, nil
}

func parseTemplate(fileName string, raw []byte) (domain.Template, error) {
	var f templateFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return domain.Template{}, err
	}
	if f.Name == "" {
		return domain.Template{}, fmt.Errorf("template name is required")
	}

	groups := make([]domain.Group, 0, len(f.Groups))
	for gi, tg := range f.Groups {
		includeInFee := true
		if tg.IncludeInFee != nil {
			includeInFee = *tg.IncludeInFee
		}
		g := domain.Group{
			ID:           uuid.New(),
			Name:         tg.Name,
			SortOrder:    gi,
			IncludeInFee: includeInFee,
			Items:        make([]domain.Item, 0, len(tg.Items)),
		}
		for ii, ti := range tg.Items {
			it := domain.Item{
				ID:           uuid.New(),
				Name:         ti.Name,
				SortOrder:    ii,
				IncludeInFee: includeInFee,
				Details:      make([]domain.DetailLine, 0, len(ti.Details)),
			}
			for di, td := range ti.Details {
				d, err := parseTemplateDetail(td, di)
				if err != nil {
					return domain.Template{}, fmt.Errorf("%s/%s/%s: %w", tg.Name, ti.Name, td.Name, err)
				}
				it.Details = append(it.Details, d)
			}
			g.Items = append(g.Items, it)
		}
		groups = append(groups, g)
	}
	if err := domain.ValidateTree(groups); err != nil {
		return domain.Template{}, err
	}

	return domain.Template{
		ID:          uuid.NewSHA1(builtinNamespace, []byte(fileName)),
		Name:        f.Name,
		Description: f.Description,
		Groups:      groups,
		BuiltIn:     true,
	}, nil
}

func parseTemplateDetail(td templateDetail, sortOrder int) (domain.DetailLine, error) {
	amount := func(raw, fallback string) (decimal.Decimal, error) {
		if raw == "" {
			raw = fallback
		}
		return decimal.NewFromString(raw)
	}
	quantity, err := amount(td.Quantity, "1")
	if err != nil {
		return domain.DetailLine{}, fmt.Errorf("quantity: %w", err)
	}
	days, err := amount(td.Days, "1")
	if err != nil {
		return domain.DetailLine{}, fmt.Errorf("days: %w", err)
	}
	unitPrice, err := amount(td.UnitPrice, "0")
	if err != nil {
		return domain.DetailLine{}, fmt.Errorf("unitPrice: %w", err)
	}
	costPrice, err := amount(td.CostPrice, "0")
	if err != nil {
		return domain.DetailLine{}, fmt.Errorf("costPrice: %w", err)
	}
	return domain.DetailLine{
		ID:          uuid.New(),
		Name:        td.Name,
		Description: td.Description,
		Unit:        td.Unit,
		Quantity:    quantity,
		Days:        days,
		UnitPrice:   unitPrice,
		CostPrice:   costPrice,
		IsService:   td.IsService,
		SortOrder:   sortOrder,
	}, nil
}

func (s *Service) findTemplate(ctx context.Context, tenantID, templateID uuid.UUID) (domain.Template, error) {
	for _, t := range s.builtins {
		if t.ID == templateID {
			return t, nil
		}
	}
	return s.repo.GetTemplate(ctx, templateID, tenantID)
}

// ListTemplates returns the built-in templates followed by the
// organization's own.
func (s *Service) ListTemplates(ctx context.Context, tenantID uuid.UUID) ([]transport.TemplateResponse, error) {
	own, err := s.repo.ListTemplates(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	result := make([]transport.TemplateResponse, 0, len(s.builtins)+len(own))
	for _, t := range s.builtins {
		result = append(result, toTemplateResponse(t))
	}
	for _, t := range own {
		result = append(result, toTemplateResponse(t))
	}
	return result, nil
}

// SaveTemplate stores a deep copy of a quote's tree as an organization template.
func (s *Service) SaveTemplate(ctx context.Context, tenantID uuid.UUID, req transport.SaveTemplateRequest) (transport.TemplateResponse, error) {
	q, err := s.repo.GetByID(ctx, req.QuoteID, tenantID)
	if err != nil {
		return transport.TemplateResponse{}, err
	}
	t, err := domain.NewTemplateFromQuote(q, req.Name, req.Description)
	if err != nil {
		return transport.TemplateResponse{}, err
	}
	t.CreatedAt = s.now().UTC()
	if err := s.repo.CreateTemplate(ctx, t); err != nil {
		return transport.TemplateResponse{}, err
	}
	s.log.WithContext(ctx).Info("quote template saved", "template_id", t.ID.String(), "quote_id", q.ID.String())
	return toTemplateResponse(t), nil
}

// ApplyTemplate replaces a quote's tree with a fresh copy of a template.
func (s *Service) ApplyTemplate(ctx context.Context, id, tenantID uuid.UUID, req transport.ApplyTemplateRequest) (transport.QuoteResponse, error) {
	t, err := s.findTemplate(ctx, tenantID, req.TemplateID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return transport.QuoteResponse{}, apperr.NotFound("template not found")
		}
		return transport.QuoteResponse{}, err
	}
	return s.mutate(ctx, id, tenantID, req.Version, "template_applied", func(q *domain.Quote) error {
		return q.ApplyTemplate(t)
	})
}
