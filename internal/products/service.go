package products

import (
	"context"
	"strings"
)

// Service implements catalog use cases.
type Service struct {
	repo Repository
}

// NewService builds a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	return s.repo.Get(ctx, id)
}

// Create stores a product. Products are active unless stated otherwise.
func (s *Service) Create(ctx context.Context, req ProductRequest) (*Product, error) {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return s.repo.Create(ctx, Product{
		SKU:         strings.ToUpper(strings.TrimSpace(req.SKU)),
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		Price:       req.Price,
		Currency:    strings.ToUpper(req.Currency),
		IsActive:    active,
	})
}

func (s *Service) Update(ctx context.Context, id int64, req UpdateProductRequest) (*Product, error) {
	if req.Currency != nil {
		c := strings.ToUpper(*req.Currency)
		req.Currency = &c
	}
	return s.repo.Update(ctx, id, req)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
