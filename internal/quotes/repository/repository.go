package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"quotedesk_backend/internal/quotes/domain"
	"quotedesk_backend/platform/apperr"
)

const (
	quoteNotFoundMsg    = "quote not found"
	templateNotFoundMsg = "template not found"
	staleQuoteMsg       = "quote was modified by someone else; reload and try again"
)

// Repo implements Repository on PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new quotes repository
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

const quoteColumns = `
	id, organization_id, quote_number, project_title, client_id, client_name,
	issue_date, valid_until, status, vat_type, discount_amount, agency_fee_rate,
	total_amount, version, created_at, updated_at`

// NextQuoteNumber atomically generates the next quote number for an organization
func (r *Repo) NextQuoteNumber(ctx context.Context, orgID uuid.UUID, year int) (string, error) {
	var nextNum int
	query := `
		INSERT INTO quote_counters (organization_id, year, last_seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (organization_id, year) DO UPDATE SET last_seq = quote_counters.last_seq + 1
		RETURNING last_seq`

	if err := r.pool.QueryRow(ctx, query, orgID, year).Scan(&nextNum); err != nil {
		return "", fmt.Errorf("failed to generate quote number: %w", err)
	}
	return fmt.Sprintf("Q-%d-%04d", year, nextNum), nil
}

// Create inserts a new quote and its tree in a single transaction
func (r *Repo) Create(ctx context.Context, q *domain.Quote) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		INSERT INTO quotes (` + quoteColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, now(), now())
		RETURNING created_at, updated_at`

	if err := tx.QueryRow(ctx, query,
		q.ID, q.OrganizationID, q.QuoteNumber, q.ProjectTitle, q.ClientID, q.ClientName,
		q.IssueDate, q.ValidUntil, string(q.Status), string(q.VATType), q.DiscountAmount, q.AgencyFeeRate,
		q.TotalAmount, q.Version,
	).Scan(&q.CreatedAt, &q.UpdatedAt); err != nil {
		return fmt.Errorf("failed to insert quote: %w", err)
	}

	if err := insertTree(ctx, tx, q.ID, q.Groups); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit quote: %w", err)
	}
	q.MarkClean()
	return nil
}

// Save performs the optimistic version check, writes the header and
// replaces the tree. A stale version leaves the stored quote untouched.
func (r *Repo) Save(ctx context.Context, q *domain.Quote, expectedVersion int) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query := `
		UPDATE quotes SET
			project_title = $4, client_id = $5, client_name = $6, issue_date = $7,
			valid_until = $8, status = $9, vat_type = $10, discount_amount = $11,
			agency_fee_rate = $12, total_amount = $13,
			version = version + 1, updated_at = now()
		WHERE id = $1 AND organization_id = $2 AND version = $3
		RETURNING version, updated_at`

	err = tx.QueryRow(ctx, query,
		q.ID, q.OrganizationID, expectedVersion,
		q.ProjectTitle, q.ClientID, q.ClientName, q.IssueDate,
		q.ValidUntil, string(q.Status), string(q.VATType), q.DiscountAmount,
		q.AgencyFeeRate, q.TotalAmount,
	).Scan(&q.Version, &q.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.ConcurrentModification(staleQuoteMsg).
				WithDetails(map[string]int{"expectedVersion": expectedVersion})
		}
		return fmt.Errorf("failed to update quote: %w", err)
	}

	if _, err := tx.Exec(ctx, `DELETE FROM quote_groups WHERE quote_id = $1`, q.ID); err != nil {
		return fmt.Errorf("failed to clear quote tree: %w", err)
	}
	if err := insertTree(ctx, tx, q.ID, q.Groups); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit quote: %w", err)
	}
	q.MarkClean()
	return nil
}

func insertTree(ctx context.Context, tx pgx.Tx, quoteID uuid.UUID, groups []domain.Group) error {
	batch := &pgx.Batch{}
	for _, g := range groups {
		batch.Queue(`
			INSERT INTO quote_groups (id, quote_id, name, sort_order, include_in_fee)
			VALUES ($1, $2, $3, $4, $5)`,
			g.ID, quoteID, g.Name, g.SortOrder, g.IncludeInFee)
		for _, it := range g.Items {
			batch.Queue(`
				INSERT INTO quote_items (id, quote_id, group_id, name, sort_order, include_in_fee)
				VALUES ($1, $2, $3, $4, $5, $6)`,
				it.ID, quoteID, g.ID, it.Name, it.SortOrder, it.IncludeInFee)
			for _, d := range it.Details {
				batch.Queue(`
					INSERT INTO quote_details (
						id, quote_id, item_id, name, description, quantity, days, unit,
						unit_price, cost_price, is_service, supplier_id, supplier_name,
						master_item_id, snapshot_at, sort_order
					) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
					d.ID, quoteID, it.ID, d.Name, d.Description, d.Quantity, d.Days, d.Unit,
					d.UnitPrice, d.CostPrice, d.IsService, d.SupplierID, d.SupplierName,
					d.MasterItemID, d.SnapshotAt, d.SortOrder)
			}
		}
	}
	if batch.Len() == 0 {
		return nil
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("failed to insert quote tree: %w", err)
	}
	return nil
}

// GetByID loads a quote with its full tree ordered by sort order
func (r *Repo) GetByID(ctx context.Context, id, orgID uuid.UUID) (*domain.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = $1 AND organization_id = $2`

	q, err := scanQuote(r.pool.QueryRow(ctx, query, id, orgID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(quoteNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get quote: %w", err)
	}

	groups, err := r.loadTree(ctx, q.ID)
	if err != nil {
		return nil, err
	}
	q.Groups = groups
	return q, nil
}

func (r *Repo) loadTree(ctx context.Context, quoteID uuid.UUID) ([]domain.Group, error) {
	groupRows, err := r.pool.Query(ctx, `
		SELECT id, name, sort_order, include_in_fee
		FROM quote_groups WHERE quote_id = $1
		ORDER BY sort_order ASC, id ASC`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote groups: %w", err)
	}
	groups, err := pgx.CollectRows(groupRows, func(row pgx.CollectableRow) (domain.Group, error) {
		var g domain.Group
		err := row.Scan(&g.ID, &g.Name, &g.SortOrder, &g.IncludeInFee)
		g.Items = []domain.Item{}
		return g, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan quote groups: %w", err)
	}

	type itemRow struct {
		groupID uuid.UUID
		item    domain.Item
	}
	itemRows, err := r.pool.Query(ctx, `
		SELECT group_id, id, name, sort_order, include_in_fee
		FROM quote_items WHERE quote_id = $1
		ORDER BY sort_order ASC, id ASC`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote items: %w", err)
	}
	items, err := pgx.CollectRows(itemRows, func(row pgx.CollectableRow) (itemRow, error) {
		var ir itemRow
		err := row.Scan(&ir.groupID, &ir.item.ID, &ir.item.Name, &ir.item.SortOrder, &ir.item.IncludeInFee)
		ir.item.Details = []domain.DetailLine{}
		return ir, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan quote items: %w", err)
	}

	detailRows, err := r.pool.Query(ctx, `
		SELECT item_id, id, name, description, quantity, days, unit, unit_price, cost_price,
			is_service, supplier_id, supplier_name, master_item_id, snapshot_at, sort_order
		FROM quote_details WHERE quote_id = $1
		ORDER BY sort_order ASC, id ASC`, quoteID)
	if err != nil {
		return nil, fmt.Errorf("failed to query quote details: %w", err)
	}
	defer detailRows.Close()

	detailsByItem := make(map[uuid.UUID][]domain.DetailLine)
	for detailRows.Next() {
		var itemID uuid.UUID
		var d domain.DetailLine
		if err := detailRows.Scan(
			&itemID, &d.ID, &d.Name, &d.Description, &d.Quantity, &d.Days, &d.Unit,
			&d.UnitPrice, &d.CostPrice, &d.IsService, &d.SupplierID, &d.SupplierName,
			&d.MasterItemID, &d.SnapshotAt, &d.SortOrder,
		); err != nil {
			return nil, fmt.Errorf("failed to scan quote detail: %w", err)
		}
		detailsByItem[itemID] = append(detailsByItem[itemID], d)
	}
	if err := detailRows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quote details: %w", err)
	}

	groupIdx := make(map[uuid.UUID]int, len(groups))
	for i, g := range groups {
		groupIdx[g.ID] = i
	}
	for _, ir := range items {
		i, ok := groupIdx[ir.groupID]
		if !ok {
			continue
		}
		if details, ok := detailsByItem[ir.item.ID]; ok {
			ir.item.Details = details
		}
		groups[i].Items = append(groups[i].Items, ir.item)
	}
	return groups, nil
}

// List retrieves quote headers with filtering and pagination
func (r *Repo) List(ctx context.Context, params ListParams) (*ListResult, error) {
	var searchParam interface{}
	if params.Search != "" {
		searchParam = "%" + params.Search + "%"
	}

	var statusParam interface{}
	if params.Status != nil {
		statusParam = string(*params.Status)
	}

	var clientParam interface{}
	if params.ClientID != nil {
		clientParam = *params.ClientID
	}

	baseQuery := `
		FROM quotes
		WHERE organization_id = $1
			AND ($2::text IS NULL OR status = $2)
			AND ($3::uuid IS NULL OR client_id = $3)
			AND ($4::text IS NULL OR quote_number ILIKE $4 OR project_title ILIKE $4 OR client_name ILIKE $4)
	`
	args := []interface{}{params.OrganizationID, statusParam, clientParam, searchParam}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) "+baseQuery, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count quotes: %w", err)
	}

	totalPages := (total + params.PageSize - 1) / params.PageSize
	offset := (params.Page - 1) * params.PageSize

	selectQuery := `SELECT ` + quoteColumns + baseQuery + `
		ORDER BY created_at DESC, id DESC
		LIMIT $5 OFFSET $6`
	args = append(args, params.PageSize, offset)

	rows, err := r.pool.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}
	defer rows.Close()

	items := make([]domain.Quote, 0, params.PageSize)
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan quote: %w", err)
		}
		items = append(items, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quotes: %w", err)
	}

	return &ListResult{
		Items:      items,
		Total:      total,
		Page:       params.Page,
		PageSize:   params.PageSize,
		TotalPages: totalPages,
	}, nil
}

// ListExpirable returns approved quotes whose valid-until day ended before asOf.
func (r *Repo) ListExpirable(ctx context.Context, asOf time.Time, limit int) ([]ExpirableQuote, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, organization_id
		FROM quotes
		WHERE status = 'approved' AND valid_until IS NOT NULL AND valid_until < $1::date
		ORDER BY valid_until ASC
		LIMIT $2`, domain.ExpiryCutoff(asOf).Format("2006-01-02"), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query expirable quotes: %w", err)
	}
	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ExpirableQuote, error) {
		var e ExpirableQuote
		err := row.Scan(&e.ID, &e.OrganizationID)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan expirable quotes: %w", err)
	}
	return result, nil
}

func scanQuote(row pgx.Row) (*domain.Quote, error) {
	var q domain.Quote
	var status, vatType string
	if err := row.Scan(
		&q.ID, &q.OrganizationID, &q.QuoteNumber, &q.ProjectTitle, &q.ClientID, &q.ClientName,
		&q.IssueDate, &q.ValidUntil, &status, &vatType, &q.DiscountAmount, &q.AgencyFeeRate,
		&q.TotalAmount, &q.Version, &q.CreatedAt, &q.UpdatedAt,
	); err != nil {
		return nil, err
	}
	q.Status = domain.Status(status)
	q.VATType = domain.VATType(vatType)
	q.Groups = []domain.Group{}
	return &q, nil
}
