package users

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/contracthub/contracthub/internal/auth"
	"github.com/contracthub/contracthub/internal/platform/httpx"
	"github.com/contracthub/contracthub/internal/rbac"
	"github.com/contracthub/contracthub/internal/shared"
)

// Service handles user administration.
type Service struct {
	repo   Repository
	audit  shared.Auditor
	logger *slog.Logger
	hash   func(string) (string, error)
}

// NewService constructs the user service. audit may be nil.
func NewService(repo Repository, audit shared.Auditor, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, logger: logger, hash: auth.HashPassword}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]auth.User, int, error) {
	if filter.Role != "" {
		if _, ok := rbac.ParseRole(filter.Role); !ok {
			return nil, 0, invalidRole()
		}
	}
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (*auth.User, error) {
	return s.repo.Get(ctx, id)
}

// Create adds an active staff account. Customer accounts are only created by
// granting portal access so that they are always linked to a profile.
func (s *Service) Create(ctx context.Context, req CreateUserRequest) (*auth.User, error) {
	role, err := staffRole(req.Role)
	if err != nil {
		return nil, err
	}
	hash, err := s.hash(req.Password)
	if err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, auth.User{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Name:         strings.TrimSpace(req.Name),
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	})
}

// ChangeRole assigns a new staff role. The new role applies on the next
// request because principals are resolved from storage every time.
func (s *Service) ChangeRole(ctx context.Context, actor *auth.Principal, id int64, raw string) (*auth.User, error) {
	if actor.ID == id {
		return nil, ErrSelfRole
	}
	role, err := staffRole(raw)
	if err != nil {
		return nil, err
	}
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Role == rbac.RoleCustomer {
		return nil, ErrCustomerRole
	}
	if current.Role == role {
		return current, nil
	}
	u, err := s.repo.UpdateRole(ctx, id, role)
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, shared.AuditUserRoleChange, id, map[string]any{"from": string(current.Role), "to": string(role)})
	return u, nil
}

// SetActive toggles whether a user can authenticate.
func (s *Service) SetActive(ctx context.Context, actor *auth.Principal, id int64, active bool) (*auth.User, error) {
	if actor.ID == id && !active {
		return nil, ErrSelfDeactivate
	}
	u, err := s.repo.SetActive(ctx, id, active)
	if err != nil {
		return nil, err
	}
	s.record(ctx, actor, shared.AuditUserActiveChange, id, map[string]any{"active": active})
	return u, nil
}

func (s *Service) Delete(ctx context.Context, actor *auth.Principal, id int64) error {
	if actor.ID == id {
		return ErrSelfDelete
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) record(ctx context.Context, actor *auth.Principal, action string, id int64, meta map[string]any) {
	shared.RecordQuietly(ctx, s.audit, s.logger, shared.AuditLog{
		ActorID:  actor.ID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(id, 10),
		Meta:     meta,
		At:       time.Now(),
	})
}

func staffRole(raw string) (rbac.Role, error) {
	role, ok := rbac.ParseRole(raw)
	if !ok {
		return "", invalidRole()
	}
	if !role.IsStaff() {
		return "", ErrCustomerRole
	}
	return role, nil
}

func invalidRole() error {
	names := make([]string, 0, len(rbac.Roles()))
	for _, r := range rbac.Roles() {
		names = append(names, string(r))
	}
	return httpx.Invalid("role", "Role must be one of: "+strings.Join(names, ", "))
}
