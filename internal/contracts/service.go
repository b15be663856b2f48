package contracts

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/contracthub/contracthub/internal/auth"
	"github.com/contracthub/contracthub/internal/shared"
)

// Service implements contract use cases.
type Service struct {
	repo   Repository
	audit  shared.Auditor
	logger *slog.Logger
	now    func() time.Time
}

// NewService builds a Service. audit may be nil.
func NewService(repo Repository, audit shared.Auditor, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger, now: time.Now}
}

// List returns a page of contracts.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Contract, int, error) {
	return s.repo.List(ctx, filter)
}

// Get returns one contract.
func (s *Service) Get(ctx context.Context, id int64) (*Contract, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a new draft contract.
func (s *Service) Create(ctx context.Context, actor *auth.Principal, req CreateContractRequest) (*Contract, error) {
	c := Contract{
		CustomerID:     req.CustomerID,
		ProductID:      req.ProductID,
		ResellerID:     req.ResellerID,
		ContractNumber: strings.ToUpper(strings.TrimSpace(req.ContractNumber)),
		Title:          strings.TrimSpace(req.Title),
		Description:    req.Description,
		Value:          req.Value,
		Currency:       strings.ToUpper(req.Currency),
		BillingCycle:   req.BillingCycle,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		Status:         StatusDraft,
	}
	if actor != nil {
		c.CreatedBy = actor.ID
	}
	return s.repo.Create(ctx, c)
}

// Update edits a contract.
func (s *Service) Update(ctx context.Context, id int64, req UpdateContractRequest) (*Contract, error) {
	if req.Currency != nil {
		currency := strings.ToUpper(*req.Currency)
		req.Currency = &currency
	}
	return s.repo.Update(ctx, id, req)
}

// Delete removes a contract.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// Approve activates a draft contract and records the approver.
func (s *Service) Approve(ctx context.Context, actor *auth.Principal, id int64) (*Contract, error) {
	c, err := s.repo.Approve(ctx, id, actor.ID, s.now())
	if err != nil {
		return nil, err
	}
	shared.RecordQuietly(ctx, s.audit, s.logger, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   shared.AuditContractApprove,
		Entity:   "contract",
		EntityID: strconv.FormatInt(id, 10),
		At:       s.now(),
	})
	return c, nil
}

// ListForCustomer returns the contracts owned by one customer profile.
func (s *Service) ListForCustomer(ctx context.Context, customerID int64, page shared.PageRequest) ([]Contract, int, error) {
	return s.repo.List(ctx, ListFilter{CustomerID: customerID, Limit: page.PerPage, Offset: page.Offset()})
}

// OwnerOf returns the customer profile id owning the contract.
func (s *Service) OwnerOf(ctx context.Context, id int64) (int64, error) {
	return s.repo.OwnerOf(ctx, id)
}
