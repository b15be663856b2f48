package resellers

import (
	"context"
	"strings"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Reseller, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (*Reseller, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) Create(ctx context.Context, req CreateResellerRequest) (*Reseller, error) {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return s.repo.Create(ctx, Reseller{
		Name:           strings.TrimSpace(req.Name),
		ContactName:    req.ContactName,
		Email:          strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:          req.Phone,
		CommissionRate: req.CommissionRate,
		IsActive:       active,
	})
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateResellerRequest) (*Reseller, error) {
	return s.repo.Update(ctx, id, req)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
