package customers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contracthub/contracthub/internal/auth"
	"github.com/contracthub/contracthub/internal/platform/db"
)

// Repository is the customer profile store.
type Repository interface {
	Get(ctx context.Context, id int64) (*Customer, error)
	FindByUserID(ctx context.Context, userID int64) (*Customer, error)
	List(ctx context.Context, filter ListFilter) ([]Customer, int, error)
	Create(ctx context.Context, c Customer) (*Customer, error)
	Update(ctx context.Context, id int64, req UpdateCustomerRequest) (*Customer, error)
	Delete(ctx context.Context, id int64) error
	// UpdateStatus sets status. When approverID is non-nil the approval
	// metadata is recorded unless it is already present.
	UpdateStatus(ctx context.Context, id int64, status Status, approverID *int64, at time.Time) (*Customer, error)
	// LinkNewUser creates u and links it to the profile in one transaction.
	LinkNewUser(ctx context.Context, customerID int64, u auth.User) (*auth.User, *Customer, error)
}

type repository struct {
	db   db.DBTX
	pool *pgxpool.Pool
}

// NewRepository constructs the PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{db: pool, pool: pool}
}

const customerColumns = `id, company_name, contact_name, email, phone, address, tax_id, notes,
	status, user_id, assigned_to, approved_by, approved_at, created_at, updated_at`

func scanCustomer(row pgx.Row) (*Customer, error) {
	var c Customer
	err := row.Scan(&c.ID, &c.CompanyName, &c.ContactName, &c.Email, &c.Phone, &c.Address, &c.TaxID, &c.Notes,
		&c.Status, &c.UserID, &c.AssignedTo, &c.ApprovedBy, &c.ApprovedAt, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Customer, error) {
	return scanCustomer(r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, id))
}

func (r *repository) FindByUserID(ctx context.Context, userID int64) (*Customer, error) {
	return scanCustomer(r.db.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE user_id = $1`, userID))
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Customer, int, error) {
	var conditions []string
	var args []any
	argPos := 1

	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
		args = append(args, string(filter.Status))
		argPos++
	}
	if filter.AssignedTo > 0 {
		conditions = append(conditions, fmt.Sprintf("assigned_to = $%d", argPos))
		args = append(args, filter.AssignedTo)
		argPos++
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(company_name ILIKE $%d OR contact_name ILIKE $%d OR email ILIKE $%d)", argPos, argPos, argPos))
		args = append(args, "%"+filter.Search+"%")
		argPos++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := r.db.QueryRow(ctx, "SELECT COUNT(*) FROM customers "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("customers: count: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM customers %s ORDER BY company_name, id LIMIT $%d OFFSET $%d`,
		customerColumns, whereClause, argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("customers: list: %w", err)
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, *c)
	}
	return out, total, rows.Err()
}

func (r *repository) Create(ctx context.Context, c Customer) (*Customer, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO customers
	(company_name, contact_name, email, phone, address, tax_id, notes, status, assigned_to)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
RETURNING `+customerColumns,
		c.CompanyName, c.ContactName, c.Email, c.Phone, c.Address, c.TaxID, c.Notes, string(c.Status), c.AssignedTo)
	created, err := scanCustomer(row)
	if err != nil {
		return nil, fmt.Errorf("customers: create: %w", err)
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, id int64, req UpdateCustomerRequest) (*Customer, error) {
	sets := []string{"updated_at = NOW()"}
	var args []any
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if req.CompanyName != nil {
		add("company_name", *req.CompanyName)
	}
	if req.ContactName != nil {
		add("contact_name", *req.ContactName)
	}
	if req.Email != nil {
		add("email", *req.Email)
	}
	if req.Phone != nil {
		add("phone", *req.Phone)
	}
	if req.Address != nil {
		add("address", *req.Address)
	}
	if req.TaxID != nil {
		add("tax_id", *req.TaxID)
	}
	if req.Notes != nil {
		add("notes", *req.Notes)
	}
	if req.AssignedTo != nil {
		add("assigned_to", *req.AssignedTo)
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE customers SET %s WHERE id = $%d RETURNING %s`,
		strings.Join(sets, ", "), len(args), customerColumns)
	return scanCustomer(r.db.QueryRow(ctx, query, args...))
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM customers WHERE id = $1`, id)
	if err != nil {
		if db.IsForeignKeyViolation(err) {
			return ErrHasDependents
		}
		return fmt.Errorf("customers: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, status Status, approverID *int64, at time.Time) (*Customer, error) {
	row := r.db.QueryRow(ctx, `UPDATE customers
SET status = $2,
	approved_by = COALESCE(approved_by, $3),
	approved_at = CASE WHEN $3::bigint IS NULL THEN approved_at ELSE COALESCE(approved_at, $4) END,
	updated_at = NOW()
WHERE id = $1
RETURNING `+customerColumns, id, string(status), approverID, at.UTC())
	return scanCustomer(row)
}

func (r *repository) LinkNewUser(ctx context.Context, customerID int64, u auth.User) (*auth.User, *Customer, error) {
	var (
		user     *auth.User
		customer *Customer
	)
	err := db.InTx(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := scanCustomer(tx.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = $1 FOR UPDATE`, customerID))
		if err != nil {
			return err
		}
		if current.UserID != nil {
			return ErrAlreadyLinked
		}
		user, err = auth.InsertUser(ctx, tx, u)
		if err != nil {
			return err
		}
		customer, err = scanCustomer(tx.QueryRow(ctx, `UPDATE customers SET user_id = $2, updated_at = NOW()
WHERE id = $1 RETURNING `+customerColumns, customerID, user.ID))
		return err
	})
	if err != nil {
		return nil, nil, err
	}
	return user, customer, nil
}
