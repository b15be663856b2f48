package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/contracthub/contracthub/internal/auth"
	"github.com/contracthub/contracthub/internal/authz"
	"github.com/contracthub/contracthub/internal/contracts"
	"github.com/contracthub/contracthub/internal/customers"
	"github.com/contracthub/contracthub/internal/dashboard"
	"github.com/contracthub/contracthub/internal/observability"
	"github.com/contracthub/contracthub/internal/platform/cache"
	"github.com/contracthub/contracthub/internal/platform/db"
	"github.com/contracthub/contracthub/internal/platform/httpx"
	"github.com/contracthub/contracthub/internal/portal"
	"github.com/contracthub/contracthub/internal/products"
	"github.com/contracthub/contracthub/internal/purchaseorders"
	"github.com/contracthub/contracthub/internal/resellers"
	"github.com/contracthub/contracthub/internal/roles"
	"github.com/contracthub/contracthub/internal/shared"
	"github.com/contracthub/contracthub/internal/storage"
	"github.com/contracthub/contracthub/internal/users"
)

// Application owns the long-lived connections behind the HTTP handler.
type Application struct {
	Handler http.Handler
	Pool    *pgxpool.Pool
	Redis   *redis.Client
}

// Close releases the connections.
func (a *Application) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
}

// Build connects to PostgreSQL and Redis and wires every module.
func Build(ctx context.Context, cfg *Config, logger *slog.Logger) (*Application, error) {
	pool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
	if err != nil {
		return nil, err
	}
	redisClient, err := cache.New(ctx, cache.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
	if err != nil {
		pool.Close()
		return nil, err
	}
	store, err := storage.NewLocalStore(cfg.UploadDir, cfg.UploadMaxBytes)
	if err != nil {
		pool.Close()
		_ = redisClient.Close()
		return nil, fmt.Errorf("app: %w", err)
	}

	metrics := observability.NewMetrics()
	responder := httpx.Responder{Logger: logger, Debug: cfg.IsDevelopment()}
	audit := shared.NewAuditLogger(pool, logger)

	customerService := customers.NewService(customers.NewRepository(pool), audit, logger)
	contractService := contracts.NewService(contracts.NewRepository(pool), audit, logger)
	orderService := purchaseorders.NewService(purchaseorders.NewRepository(pool), contractService, store, audit, logger)

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTTTL)
	revocations := auth.NewRedisRevocationList(redisClient)
	authRepo := auth.NewRepository(pool)
	authn := auth.Middleware{
		Resolver:   auth.NewResolver(tokens, authRepo, customerService, revocations),
		Responder:  responder,
		CookieName: cfg.AuthCookieName,
		Logger:     logger,
		Denials:    metrics,
	}

	gate := authz.NewGate(responder, logger, metrics)
	gate.RegisterOwner(authz.ResourceContract, contractService.OwnerOf)
	gate.RegisterOwner(authz.ResourcePurchaseOrder, orderService.OwnerOf)

	handler := NewRouter(RouterParams{
		Logger:                logger,
		Config:                cfg,
		Metrics:               metrics,
		Authn:                 authn,
		AuthHandler:           auth.NewHandler(logger, auth.NewService(authRepo, tokens, revocations), authn, metrics, cfg.IsProduction()),
		UsersHandler:          users.NewHandler(logger, users.NewService(users.NewRepository(pool), audit, logger), gate, responder),
		RolesHandler:          roles.NewHandler(gate),
		CustomersHandler:      customers.NewHandler(logger, customerService, gate, responder),
		ContractsHandler:      contracts.NewHandler(logger, contractService, gate, responder),
		ProductsHandler:       products.NewHandler(products.NewService(products.NewRepository(pool)), gate, responder),
		ResellersHandler:      resellers.NewHandler(resellers.NewService(resellers.NewRepository(pool)), gate, responder),
		PurchaseOrdersHandler: purchaseorders.NewHandler(logger, orderService, gate, responder),
		PortalHandler:         portal.NewHandler(logger, customerService, contractService, orderService, gate, responder, cfg.UploadMaxBytes),
		DashboardHandler: dashboard.NewHandler(
			dashboard.NewService(dashboard.NewRepository(pool), dashboard.NewCache(redisClient, cfg.DashboardCacheTTL)),
			gate, responder),
	})

	return &Application{Handler: handler, Pool: pool, Redis: redisClient}, nil
}
