package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

const statsKey = "dashboard:stats"

// Stats is the staff dashboard summary.
type Stats struct {
	Customers             map[string]int `json:"customers"`
	Contracts             map[string]int `json:"contracts"`
	PurchaseOrders        map[string]int `json:"purchaseOrders"`
	PendingApprovals      int            `json:"pendingApprovals"`
	PendingPurchaseOrders int            `json:"pendingPurchaseOrders"`
	ActiveContractValue   float64        `json:"activeContractValue"`
	GeneratedAt           time.Time      `json:"generatedAt"`
}

// Service aggregates dashboard figures.
type Service struct {
	repo  Repository
	cache *Cache
	now   func() time.Time
}

// NewService wires the service. cache may be nil.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: time.Now}
}

// Stats returns the summary, served from cache while it is fresh.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	var out Stats
	err := s.cache.FetchJSON(ctx, statsKey, &out, func(ctx context.Context) (any, error) {
		return s.compute(ctx)
	})
	return out, err
}

func (s *Service) compute(ctx context.Context) (Stats, error) {
	var stats Stats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		counts, err := s.repo.CustomerStatusCounts(ctx)
		if err != nil {
			return err
		}
		stats.Customers = counts
		return nil
	})

	g.Go(func() error {
		counts, err := s.repo.ContractStatusCounts(ctx)
		if err != nil {
			return err
		}
		stats.Contracts = counts
		return nil
	})

	g.Go(func() error {
		counts, err := s.repo.PurchaseOrderStatusCounts(ctx)
		if err != nil {
			return err
		}
		stats.PurchaseOrders = counts
		return nil
	})

	g.Go(func() error {
		value, err := s.repo.ActiveContractValue(ctx)
		if err != nil {
			return err
		}
		stats.ActiveContractValue = value
		return nil
	})

	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	stats.PendingApprovals = stats.Customers["pending_approval"]
	stats.PendingPurchaseOrders = stats.PurchaseOrders["pending"]
	stats.GeneratedAt = s.now().UTC()
	return stats, nil
}
