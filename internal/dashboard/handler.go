package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/contracthub/contracthub/internal/authz"
	"github.com/contracthub/contracthub/internal/platform/httpx"
	"github.com/contracthub/contracthub/internal/rbac"
)

// Handler serves /dashboard.
type Handler struct {
	service   *Service
	gate      *authz.Gate
	responder httpx.Responder
}

func NewHandler(service *Service, gate *authz.Gate, responder httpx.Responder) *Handler {
	return &Handler{service: service, gate: gate, responder: responder}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.gate.RequireStaff)
	r.With(h.gate.RequireAny(rbac.PermCustomerRead, rbac.PermContractRead)).Get("/stats", h.stats)
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, stats)
}
