package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contracthub/contracthub/internal/auth"
	"github.com/contracthub/contracthub/internal/platform/db"
	"github.com/contracthub/contracthub/internal/rbac"
)

// Repository provides user administration persistence.
type Repository interface {
	Get(ctx context.Context, id int64) (*auth.User, error)
	List(ctx context.Context, filter ListFilter) ([]auth.User, int, error)
	Create(ctx context.Context, u auth.User) (*auth.User, error)
	UpdateRole(ctx context.Context, id int64, role rbac.Role) (*auth.User, error)
	SetActive(ctx context.Context, id int64, active bool) (*auth.User, error)
	Delete(ctx context.Context, id int64) error
}

type repository struct {
	db db.DBTX
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool}
}

const columns = `id, email, name, role, is_active, last_login_at, created_at, updated_at`

func scan(row pgx.Row) (*auth.User, error) {
	var (
		u         auth.User
		role      string
		lastLogin pgtype.Timestamptz
	)
	if err := row.Scan(&u.ID, &u.Email, &u.Name, &role, &u.IsActive, &lastLogin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	u.Role = rbac.Role(role)
	if lastLogin.Valid {
		t := lastLogin.Time
		u.LastLoginAt = &t
	}
	return &u, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*auth.User, error) {
	return scan(r.db.QueryRow(ctx, `SELECT `+columns+` FROM users WHERE id = $1`, id))
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]auth.User, int, error) {
	var conditions []string
	var args []any
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conditions = append(conditions, fmt.Sprintf("(email ILIKE $%d OR name ILIKE $%d)", len(args), len(args)))
	}
	if filter.Role != "" {
		args = append(args, filter.Role)
		conditions = append(conditions, fmt.Sprintf("role = $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("is_active = $%d", len(args)))
	}
	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM users "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("users: count: %w", err)
	}
	args = append(args, filter.Limit, filter.Offset)
	rows, err := r.db.Query(ctx, fmt.Sprintf(`SELECT %s FROM users %s ORDER BY name, id LIMIT $%d OFFSET $%d`,
		columns, whereClause, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("users: list: %w", err)
	}
	defer rows.Close()

	var out []auth.User
	for rows.Next() {
		u, err := scan(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *u)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, u auth.User) (*auth.User, error) {
	return auth.InsertUser(ctx, r.db, u)
}

func (r *repository) UpdateRole(ctx context.Context, id int64, role rbac.Role) (*auth.User, error) {
	return scan(r.db.QueryRow(ctx, `UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1 RETURNING `+columns, id, string(role)))
}

func (r *repository) SetActive(ctx context.Context, id int64, active bool) (*auth.User, error) {
	return scan(r.db.QueryRow(ctx, `UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1 RETURNING `+columns, id, active))
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrHasHistory
		}
		return fmt.Errorf("users: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
