package purchaseorders

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

// Repository persists purchase orders.
type Repository interface {
	Get(ctx context.Context, id int64) (*PurchaseOrder, error)
	List(ctx context.Context, filter ListFilter) ([]PurchaseOrder, int, error)
	Create(ctx context.Context, po PurchaseOrder) (*PurchaseOrder, error)
	// Review moves a pending order to approved or rejected. It reports
	// ErrNotPending when the order exists but was already reviewed.
	Review(ctx context.Context, id int64, to Status, reviewerID int64, at time.Time, reason *string) (*PurchaseOrder, error)
	OwnerOf(ctx context.Context, id int64) (int64, error)
}

type repository struct {
	db db.DBTX
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const poColumns = `id, contract_id, customer_id, po_number, amount, currency, file_name, file_path,
	file_size, content_type, status, reviewed_by, reviewed_at, rejection_reason, uploaded_by,
	created_at, updated_at`

func scanPO(row pgx.Row) (*PurchaseOrder, error) {
	var (
		po     PurchaseOrder
		amount pgtype.Numeric
	)
	err := row.Scan(&po.ID, &po.ContractID, &po.CustomerID, &po.PONumber, &amount, &po.Currency, &po.FileName,
		&po.FilePath, &po.FileSize, &po.ContentType, &po.Status, &po.ReviewedBy, &po.ReviewedAt,
		&po.RejectionReason, &po.UploadedBy, &po.CreatedAt, &po.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if amount.Valid {
		f, _ := amount.Float64Value()
		v := f.Float64
		po.Amount = &v
	}
	return &po, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*PurchaseOrder, error) {
	return scanPO(r.db.QueryRow(ctx, `SELECT `+poColumns+` FROM purchase_orders WHERE id = $1`, id))
}

func (r *repository) OwnerOf(ctx context.Context, id int64) (int64, error) {
	var customerID int64
	err := r.db.QueryRow(ctx, `SELECT customer_id FROM purchase_orders WHERE id = $1`, id).Scan(&customerID)
	if err != nil {
		if db.IsNoRows(err) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("purchaseorders: owner: %w", err)
	}
	return customerID, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]PurchaseOrder, int, error) {
	var conditions []string
	var args []any
	if filter.CustomerID > 0 {
		args = append(args, filter.CustomerID)
		conditions = append(conditions, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if filter.ContractID > 0 {
		args = append(args, filter.ContractID)
		conditions = append(conditions, fmt.Sprintf("contract_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("po_number ILIKE $%d", len(args)))
	}
	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM purchase_orders "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("purchaseorders: count: %w", err)
	}
	args = append(args, filter.Limit, filter.Offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT %s FROM purchase_orders %s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		poColumns, whereClause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("purchaseorders: list: %w", err)
	}
	defer rows.Close()

	var out []PurchaseOrder
	for rows.Next() {
		po, err := scanPO(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *po)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, po PurchaseOrder) (*PurchaseOrder, error) {
	created, err := scanPO(r.db.QueryRow(ctx, `INSERT INTO purchase_orders
	(contract_id, customer_id, po_number, amount, currency, file_name, file_path, file_size, content_type, status, uploaded_by)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
RETURNING `+poColumns,
		po.ContractID, po.CustomerID, po.PONumber, po.Amount, po.Currency, po.FileName, po.FilePath,
		po.FileSize, po.ContentType, string(po.Status), po.UploadedBy))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return nil, ErrNumberTaken
		}
		return nil, fmt.Errorf("purchaseorders: create: %w", err)
	}
	return created, nil
}

func (r *repository) Review(ctx context.Context, id int64, to Status, reviewerID int64, at time.Time, reason *string) (*PurchaseOrder, error) {
	po, err := scanPO(r.db.QueryRow(ctx, `UPDATE purchase_orders
SET status = $2, reviewed_by = $3, reviewed_at = $4, rejection_reason = $5, updated_at = NOW()
WHERE id = $1 AND status = 'pending'
RETURNING `+poColumns, id, string(to), reviewerID, at.UTC(), reason))
	if err == nil {
		return po, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("purchaseorders: review: %w", err)
	}
	if _, getErr := r.Get(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrNotPending
}
