package purchaseorders

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/contracthub/contracthub/internal/auth"
	"github.com/contracthub/contracthub/internal/contracts"
	"github.com/contracthub/contracthub/internal/platform/httpx"
	"github.com/contracthub/contracthub/internal/shared"
	"github.com/contracthub/contracthub/internal/storage"
)

// ContractReader resolves the contract an order is submitted against.
type ContractReader interface {
	Get(ctx context.Context, id int64) (*contracts.Contract, error)
}

// Service implements purchase-order submission and review.
type Service struct {
	repo      Repository
	contracts ContractReader
	store     storage.Store
	audit     shared.Auditor
	logger    *slog.Logger
	now       func() time.Time
}

// NewService wires the service. audit and logger may be nil.
func NewService(repo Repository, contracts ContractReader, store storage.Store, audit shared.Auditor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, contracts: contracts, store: store, audit: audit, logger: logger, now: time.Now}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]PurchaseOrder, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, httpx.Invalid("status", "Status must be one of: pending, approved, rejected")
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (*PurchaseOrder, error) {
	return s.repo.Get(ctx, id)
}

// ListForCustomer lists the orders of one customer profile.
func (s *Service) ListForCustomer(ctx context.Context, customerID int64, page shared.PageRequest) ([]PurchaseOrder, int, error) {
	return s.repo.List(ctx, ListFilter{CustomerID: customerID, Search: page.Search, Limit: page.PerPage, Offset: page.Offset()})
}

// OwnerOf returns the customer profile id an order belongs to.
func (s *Service) OwnerOf(ctx context.Context, id int64) (int64, error) {
	return s.repo.OwnerOf(ctx, id)
}

// Submit stores an uploaded document and records a pending order against
// contractID. The caller has already established that the contract belongs
// to the actor's customer profile.
func (s *Service) Submit(ctx context.Context, actor *auth.Principal, contractID int64, req SubmitRequest, file io.Reader) (*PurchaseOrder, error) {
	customerID, ok := actor.CustomerID()
	if !ok {
		return nil, contracts.ErrNotFound
	}
	if actor.Profile.Status != "active" {
		return nil, ErrAccountInactive
	}
	contract, err := s.contracts.Get(ctx, contractID)
	if err != nil {
		return nil, err
	}
	if contract.CustomerID != customerID {
		return nil, contracts.ErrNotFound
	}
	if contract.Status != contracts.StatusActive {
		return nil, ErrContractInactive
	}

	obj, err := s.store.Save(ctx, file)
	if err != nil {
		return nil, err
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = contract.Currency
	}
	po, err := s.repo.Create(ctx, PurchaseOrder{
		ContractID:  contractID,
		CustomerID:  customerID,
		PONumber:    strings.TrimSpace(req.PONumber),
		Amount:      req.Amount,
		Currency:    currency,
		FileName:    req.FileName,
		FilePath:    obj.Path,
		FileSize:    obj.Size,
		ContentType: obj.ContentType,
		Status:      StatusPending,
		UploadedBy:  actor.ID,
	})
	if err != nil {
		if rmErr := s.store.Remove(obj.Path); rmErr != nil {
			s.logger.Warn("orphaned upload", slog.String("path", obj.Path), slog.Any("error", rmErr))
		}
		return nil, err
	}
	s.record(ctx, actor, shared.AuditPurchaseUpload, po.ID, map[string]any{"contract_id": contractID, "po_number": po.PONumber})
	return po, nil
}

// Approve accepts a pending order.
func (s *Service) Approve(ctx context.Context, actor *auth.Principal, id int64) (*PurchaseOrder, error) {
	po, err := s.repo.Review(ctx, id, StatusApproved, actor.ID, s.now(), nil)
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, shared.AuditPurchaseApprove, id, nil)
	return po, nil
}

// Reject declines a pending order with a reason.
func (s *Service) Reject(ctx context.Context, actor *auth.Principal, id int64, reason string) (*PurchaseOrder, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, httpx.Invalid("reason", "Reason is required")
	}
	po, err := s.repo.Review(ctx, id, StatusRejected, actor.ID, s.now(), &reason)
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, shared.AuditPurchaseReject, id, map[string]any{"reason": reason})
	return po, nil
}

func (s *Service) record(ctx context.Context, actor *auth.Principal, action string, id int64, meta map[string]any) {
	shared.RecordQuietly(ctx, s.audit, s.logger, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "purchase_order",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
		At:       s.now(),
	})
}
