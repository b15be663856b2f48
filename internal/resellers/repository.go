package resellers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contracthub/contracthub/internal/platform/db"
)

// Repository persists resellers.
type Repository interface {
	Get(ctx context.Context, id int64) (*Reseller, error)
	List(ctx context.Context, filter ListFilter) ([]Reseller, int, error)
	Create(ctx context.Context, r Reseller) (*Reseller, error)
	Update(ctx context.Context, id int64, req UpdateResellerRequest) (*Reseller, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const resellerColumns = `id, name, contact_name, email, phone, commission_rate, is_active, created_at, updated_at`

func scanReseller(row pgx.Row) (*Reseller, error) {
	var (
		r    Reseller
		rate pgtype.Numeric
	)
	if err := row.Scan(&r.ID, &r.Name, &r.ContactName, &r.Email, &r.Phone, &rate, &r.IsActive, &r.CreatedAt, &r.UpdatedAt); err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if rate.Valid {
		f, _ := rate.Float64Value()
		r.CommissionRate = f.Float64
	}
	return &r, nil
}

func mapWriteError(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return err
	case db.IsUniqueViolation(err):
		return ErrEmailTaken
	case db.IsForeignKeyViolation(err):
		return ErrInUse
	default:
		return fmt.Errorf("resellers: %s: %w", op, err)
	}
}

func (r *repository) Get(ctx context.Context, id int64) (*Reseller, error) {
	return scanReseller(r.db.QueryRow(ctx, `SELECT `+resellerColumns+` FROM resellers WHERE id = $1`, id))
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Reseller, int, error) {
	var conditions []string
	var args []any
	if filter.ActiveOnly {
		conditions = append(conditions, "is_active")
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(name ILIKE $%d OR email ILIKE $%d)", len(args), len(args)))
	}
	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM resellers "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("resellers: count: %w", err)
	}
	args = append(args, filter.Limit, filter.Offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT %s FROM resellers %s ORDER BY name, id LIMIT $%d OFFSET $%d`,
		resellerColumns, whereClause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("resellers: list: %w", err)
	}
	defer rows.Close()

	var out []Reseller
	for rows.Next() {
		item, err := scanReseller(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *item)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, in Reseller) (*Reseller, error) {
	created, err := scanReseller(r.db.QueryRow(ctx, `INSERT INTO resellers (name, contact_name, email, phone, commission_rate, is_active)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING `+resellerColumns, in.Name, in.ContactName, in.Email, in.Phone, in.CommissionRate, in.IsActive))
	return created, mapWriteError("create", err)
}

func (r *repository) Update(ctx context.Context, id int64, req UpdateResellerRequest) (*Reseller, error) {
	sets := []string{"updated_at = NOW()"}
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if req.Name != nil {
		add("name", *req.Name)
	}
	if req.ContactName != nil {
		add("contact_name", *req.ContactName)
	}
	if req.Email != nil {
		add("email", strings.ToLower(*req.Email))
	}
	if req.Phone != nil {
		add("phone", *req.Phone)
	}
	if req.CommissionRate != nil {
		add("commission_rate", *req.CommissionRate)
	}
	if req.IsActive != nil {
		add("is_active", *req.IsActive)
	}
	args = append(args, id)
	updated, err := scanReseller(r.db.QueryRow(ctx, fmt.Sprintf(`UPDATE resellers SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), resellerColumns), args...))
	return updated, mapWriteError("update", err)
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM resellers WHERE id = $1`, id)
	if err != nil {
		return mapWriteError("delete", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
