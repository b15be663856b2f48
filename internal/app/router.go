package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/contracthub/contracthub/internal/auth"
	"github.com/contracthub/contracthub/internal/contracts"
	"github.com/contracthub/contracthub/internal/customers"
	"github.com/contracthub/contracthub/internal/dashboard"
	"github.com/contracthub/contracthub/internal/observability"
	"github.com/contracthub/contracthub/internal/platform/httpx"
	"github.com/contracthub/contracthub/internal/portal"
	"github.com/contracthub/contracthub/internal/products"
	"github.com/contracthub/contracthub/internal/purchaseorders"
	"github.com/contracthub/contracthub/internal/resellers"
	"github.com/contracthub/contracthub/internal/roles"
	"github.com/contracthub/contracthub/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger  *slog.Logger
	Config  *Config
	Metrics *observability.Metrics
	// Authn authenticates every route outside /auth, /healthz and /metrics.
	Authn auth.Middleware

	AuthHandler           *auth.Handler
	UsersHandler          *users.Handler
	RolesHandler          *roles.Handler
	CustomersHandler      *customers.Handler
	ContractsHandler      *contracts.Handler
	ProductsHandler       *products.Handler
	ResellersHandler      *resellers.Handler
	PurchaseOrdersHandler *purchaseorders.Handler
	PortalHandler         *portal.Handler
	DashboardHandler      *dashboard.Handler
}

// NewRouter constructs the chi.Router with ContractHub defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.Fail(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	if params.AuthHandler != nil {
		r.Route("/auth", func(r chi.Router) {
			params.AuthHandler.MountRoutes(r, LoginLimiter(params.Config))
		})
	}

	r.Group(func(r chi.Router) {
		r.Use(params.Authn.Authenticate)

		mount := func(pattern string, h interface{ MountRoutes(chi.Router) }) {
			r.Route(pattern, h.MountRoutes)
		}
		if params.UsersHandler != nil {
			mount("/users", params.UsersHandler)
		}
		if params.RolesHandler != nil {
			mount("/roles", params.RolesHandler)
		}
		if params.CustomersHandler != nil {
			mount("/customers", params.CustomersHandler)
		}
		if params.ContractsHandler != nil {
			mount("/contracts", params.ContractsHandler)
		}
		if params.ProductsHandler != nil {
			mount("/products", params.ProductsHandler)
		}
		if params.ResellersHandler != nil {
			mount("/resellers", params.ResellersHandler)
		}
		if params.PurchaseOrdersHandler != nil {
			mount("/purchase-orders", params.PurchaseOrdersHandler)
		}
		if params.PortalHandler != nil {
			mount("/portal", params.PortalHandler)
		}
		if params.DashboardHandler != nil {
			mount("/dashboard", params.DashboardHandler)
		}
	})

	return r
}
