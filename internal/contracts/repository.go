package contracts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contracthub/contracthub/internal/platform/db"
)

// Repository is the contract store.
type Repository interface {
	Get(ctx context.Context, id int64) (*Contract, error)
	List(ctx context.Context, filter ListFilter) ([]Contract, int, error)
	Create(ctx context.Context, c Contract) (*Contract, error)
	Update(ctx context.Context, id int64, req UpdateContractRequest) (*Contract, error)
	Delete(ctx context.Context, id int64) error
	// Approve activates a draft contract. It reports ErrNotDraft when the
	// contract exists but is no longer a draft.
	Approve(ctx context.Context, id, approverID int64, at time.Time) (*Contract, error)
	OwnerOf(ctx context.Context, id int64) (int64, error)
}

type repository struct {
	db db.DBTX
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const contractColumns = `id, customer_id, product_id, reseller_id, contract_number, title, description,
	value, currency, billing_cycle, start_date, end_date, status, approved_by, approved_at,
	created_by, created_at, updated_at`

func scanContract(row pgx.Row) (*Contract, error) {
	var (
		c     Contract
		value pgtype.Numeric
		end   pgtype.Date
		start pgtype.Date
	)
	err := row.Scan(&c.ID, &c.CustomerID, &c.ProductID, &c.ResellerID, &c.ContractNumber, &c.Title, &c.Description,
		&value, &c.Currency, &c.BillingCycle, &start, &end, &c.Status, &c.ApprovedBy, &c.ApprovedAt,
		&c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if value.Valid {
		f, _ := value.Float64Value()
		c.Value = f.Float64
	}
	if start.Valid {
		c.StartDate = start.Time
	}
	if end.Valid {
		t := end.Time
		c.EndDate = &t
	}
	return &c, nil
}

func mapWriteError(err error) error {
	switch {
	case db.IsUniqueViolation(err):
		return ErrNumberTaken
	case db.IsForeignKeyViolation(err):
		return ErrUnknownRelation
	}
	return err
}

func (r *repository) Get(ctx context.Context, id int64) (*Contract, error) {
	return scanContract(r.db.QueryRow(ctx, `SELECT `+contractColumns+` FROM contracts WHERE id = $1`, id))
}

func (r *repository) OwnerOf(ctx context.Context, id int64) (int64, error) {
	var customerID int64
	if err := r.db.QueryRow(ctx, `SELECT customer_id FROM contracts WHERE id = $1`, id).Scan(&customerID); err != nil {
		if db.IsNoRows(err) {
			return 0, ErrNotFound
		}
		return 0, err
	}
	return customerID, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Contract, int, error) {
	var conditions []string
	var args []any
	if filter.CustomerID > 0 {
		args = append(args, filter.CustomerID)
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(contract_number ILIKE $%d OR title ILIKE $%d)", len(args), len(args)))
	}
	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM contracts "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("contracts: count: %w", err)
	}

	args = append(args, filter.Limit, filter.Offset)
	query := fmt.Sprintf(`SELECT %s FROM contracts %s ORDER BY start_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		contractColumns, whereClause, len(args)-1, len(args))
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("contracts: list: %w", err)
	}
	defer rows.Close()

	var out []Contract
	for rows.Next() {
		c, err := scanContract(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Contract) (*Contract, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO contracts
	(customer_id, product_id, reseller_id, contract_number, title, description, value, currency,
	 billing_cycle, start_date, end_date, status, created_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING `+contractColumns,
		c.CustomerID, c.ProductID, c.ResellerID, c.ContractNumber, c.Title, c.Description, c.Value, c.Currency,
		string(c.BillingCycle), c.StartDate, c.EndDate, string(c.Status), c.CreatedBy)
	created, err := scanContract(row)
	if err != nil {
		return nil, mapWriteError(err)
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, id int64, req UpdateContractRequest) (*Contract, error) {
	sets := []string{"updated_at = NOW()"}
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if req.ProductID != nil {
		add("product_id", *req.ProductID)
	}
	if req.ResellerID != nil {
		add("reseller_id", *req.ResellerID)
	}
	if req.Title != nil {
		add("title", *req.Title)
	}
	if req.Description != nil {
		add("description", *req.Description)
	}
	if req.Value != nil {
		add("value", *req.Value)
	}
	if req.Currency != nil {
		add("currency", *req.Currency)
	}
	if req.BillingCycle != nil {
		add("billing_cycle", string(*req.BillingCycle))
	}
	if req.EndDate != nil {
		add("end_date", *req.EndDate)
	}
	if req.Status != nil {
		add("status", string(*req.Status))
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE contracts SET %s WHERE id = $%d RETURNING %s`, strings.Join(sets, ", "), len(args), contractColumns)
	updated, err := scanContract(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapWriteError(err)
	}
	return updated, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM contracts WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrHasDependents
		}
		return fmt.Errorf("contracts: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) Approve(ctx context.Context, id, approverID int64, at time.Time) (*Contract, error) {
	row := r.db.QueryRow(ctx, `UPDATE contracts
SET status = 'active',
	approved_by = COALESCE(approved_by, $2),
	approved_at = COALESCE(approved_at, $3),
	updated_at = NOW()
WHERE id = $1 AND status = 'draft'
RETURNING `+contractColumns, id, approverID, at.UTC())
	c, err := scanContract(row)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if _, getErr := r.Get(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrNotDraft
}
