package customers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/contracthub/contracthub/internal/auth"
	"github.com/contracthub/contracthub/internal/platform/httpx"
	"github.com/contracthub/contracthub/internal/rbac"
	"github.com/contracthub/contracthub/internal/shared"
)

// Service implements customer profile use cases.
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

// List returns a page of profiles.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Customer, int, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, httpx.Invalid("status", "Status must be one of: active, inactive, suspended, pending_approval")
	}
	return s.repo.List(ctx, filter)
}

// Get returns one profile.
func (s *Service) Get(ctx context.Context, id int64) (*Customer, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a new profile. New profiles wait for approval unless a status
// is given.
func (s *Service) Create(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	status := req.Status
	if status == "" {
		status = StatusPendingApproval
	}
	return s.repo.Create(ctx, Customer{
		CompanyName: strings.TrimSpace(req.CompanyName),
		ContactName: strings.TrimSpace(req.ContactName),
		Email:       strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:       req.Phone,
		Address:     req.Address,
		TaxID:       req.TaxID,
		Notes:       req.Notes,
		AssignedTo:  req.AssignedTo,
		Status:      status,
	})
}

// Update edits profile fields other than status.
func (s *Service) Update(ctx context.Context, id int64, req UpdateCustomerRequest) (*Customer, error) {
	if req.Empty() {
		return s.repo.Get(ctx, id)
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		req.Email = &email
	}
	return s.repo.Update(ctx, id, req)
}

// Delete removes a profile.
func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}

// ChangeStatus applies a plain status update on behalf of actor. Suspension
// needs customer.suspend, every other target needs customer.update.
func (s *Service) ChangeStatus(ctx context.Context, actor *auth.Principal, id int64, to Status) (*Customer, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckTransition(current, to); err != nil {
		return nil, err
	}
	if !actor.Can(PermissionForStatus(to)) {
		return nil, ErrStatusDenied
	}
	if current.Status == to {
		return current, nil
	}
	updated, err := s.repo.UpdateStatus(ctx, id, to, nil, s.now())
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, shared.AuditCustomerStatus, id, map[string]any{"from": current.Status, "to": to})
	return updated, nil
}

// Approve activates a profile that was never approved and records the
// approver.
func (s *Service) Approve(ctx context.Context, actor *auth.Principal, id int64) (*Customer, error) {
	if !actor.Can(rbac.PermCustomerApprove) {
		return nil, ErrStatusDenied
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := CheckApprove(current); err != nil {
		return nil, err
	}
	approver := actor.ID
	updated, err := s.repo.UpdateStatus(ctx, id, StatusActive, &approver, s.now())
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, shared.AuditCustomerApprove, id, nil)
	return updated, nil
}

// GrantPortalAccess creates a customer-role account and links it to the
// profile. A profile can be linked only once.
func (s *Service) GrantPortalAccess(ctx context.Context, actor *auth.Principal, req GrantAccessRequest) (*PortalAccess, error) {
	current, err := s.repo.Get(ctx, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if current.UserID != nil {
		return nil, ErrAlreadyLinked
	}
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = current.ContactName
	}
	user, customer, err := s.repo.LinkNewUser(ctx, req.CustomerID, auth.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         name,
		PasswordHash: hash,
		Role:         rbac.RoleCustomer,
		IsActive:     true,
	})
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, shared.AuditPortalGrant, req.CustomerID, map[string]any{"user_id": user.ID})
	return &PortalAccess{User: user, Customer: customer}, nil
}

// FindProfileByUserID resolves the profile linked to a portal account.
func (s *Service) FindProfileByUserID(ctx context.Context, userID int64) (*auth.LinkedProfile, error) {
	c, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, httpx.ErrNotFound
		}
		return nil, fmt.Errorf("customers: profile for user %d: %w", userID, err)
	}
	return c.Linked(), nil
}

func (s *Service) record(ctx context.Context, actor *auth.Principal, action string, id int64, meta map[string]any) {
	var actorID int64
	if actor != nil {
		actorID = actor.ID
	}
	shared.RecordQuietly(ctx, s.audit, s.logger, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "customer",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
		At:       s.now(),
	})
}

var _ auth.ProfileFinder = (*Service)(nil)
