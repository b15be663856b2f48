package dashboard

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contracthub/contracthub/internal/platform/db"
)

// Repository runs the aggregate queries behind the dashboard.
type Repository interface {
	CustomerStatusCounts(ctx context.Context) (map[string]int, error)
	ContractStatusCounts(ctx context.Context) (map[string]int, error)
	PurchaseOrderStatusCounts(ctx context.Context) (map[string]int, error)
	ActiveContractValue(ctx context.Context) (float64, error)
}

type repository struct {
	db db.DBTX
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

func (r *repository) countBy(ctx context.Context, table string) (map[string]int, error) {
	rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT status, COUNT(*) FROM %s GROUP BY status`, table))
	if err != nil {
		return nil, fmt.Errorf("dashboard: count %s: %w", table, err)
	}
	defer rows.Close()
	out := make(map[string]int)
	for rows.Next() {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		out[status] = n
	}
	return out, rows.Err()
}

func (r *repository) CustomerStatusCounts(ctx context.Context) (map[string]int, error) {
	return r.countBy(ctx, "customers")
}

func (r *repository) ContractStatusCounts(ctx context.Context) (map[string]int, error) {
	return r.countBy(ctx, "contracts")
}

func (r *repository) PurchaseOrderStatusCounts(ctx context.Context) (map[string]int, error) {
	return r.countBy(ctx, "purchase_orders")
}

func (r *repository) ActiveContractValue(ctx context.Context) (float64, error) {
	var total pgtype.Numeric
	if err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(value), 0) FROM contracts WHERE status = 'active'`).Scan(&total); err != nil {
		return 0, fmt.Errorf("dashboard: contract value: %w", err)
	}
	f, err := total.Float64Value()
	if err != nil {
		return 0, err
	}
	return f.Float64, nil
}
