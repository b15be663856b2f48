package shared

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/contracthub/contracthub/internal/platform/db"
)

// Audit actions recorded by the services.
const (
	AuditCustomerStatus   = "customer.status"
	AuditCustomerApprove  = "customer.approve"
	AuditPortalGrant      = "customer.grant_access"
	AuditContractApprove  = "contract.approve"
	AuditPurchaseApprove  = "po.approve"
	AuditPurchaseReject   = "po.reject"
	AuditPurchaseUpload   = "po.upload"
	AuditUserRoleChange   = "user.role"
	AuditUserActiveChange = "user.active"
)

// AuditLog represents a record stored in audit_logs.
type AuditLog struct {
	ActorID  int64
	Action   string
	Entity   string
	EntityID string
	Meta     map[string]any
	At       time.Time
}

// Auditor records audit entries.
type Auditor interface {
	Record(ctx context.Context, log AuditLog) error
}

// AuditLogger writes records into audit_logs.
type AuditLogger struct {
	db     db.DBTX
	logger *slog.Logger
}

// NewAuditLogger returns a new AuditLogger.
func NewAuditLogger(conn db.DBTX, logger *slog.Logger) *AuditLogger {
	return &AuditLogger{db: conn, logger: logger}
}

// Record persists the log entry.
func (l *AuditLogger) Record(ctx context.Context, log AuditLog) error {
	if l == nil {
		return errors.New("audit logger not initialised")
	}
	if log.Action == "" || log.Entity == "" || log.EntityID == "" {
		return errors.New("audit log requires action/entity/entity_id")
	}
	metaJSON, err := json.Marshal(log.Meta)
	if err != nil {
		return err
	}
	var at *time.Time
	if !log.At.IsZero() {
		at = &log.At
	}
	_, err = l.db.Exec(ctx, `INSERT INTO audit_logs (actor_id, action, entity, entity_id, meta, occurred_at) VALUES ($1, $2, $3, $4, $5, COALESCE($6, NOW()))`, log.ActorID, log.Action, log.Entity, log.EntityID, metaJSON, at)
	if err != nil && l.logger != nil {
		l.logger.Error("record audit log", slog.String("action", log.Action), slog.Any("error", err))
	}
	return err
}

// RecordQuietly writes the entry and only logs a failure. Audit rows never
// undo a committed business change.
func RecordQuietly(ctx context.Context, a Auditor, logger *slog.Logger, log AuditLog) {
	if a == nil {
		return
	}
	if err := a.Record(ctx, log); err != nil && logger != nil {
		logger.Warn("audit record dropped", slog.String("action", log.Action), slog.Any("error", err))
	}
}
