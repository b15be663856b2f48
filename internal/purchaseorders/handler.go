package purchaseorders

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/contracthub/contracthub/internal/auth"
	"github.com/contracthub/contracthub/internal/authz"
	"github.com/contracthub/contracthub/internal/platform/httpx"
	"github.com/contracthub/contracthub/internal/platform/validate"
	"github.com/contracthub/contracthub/internal/rbac"
	"github.com/contracthub/contracthub/internal/shared"
)

// Handler serves the staff review API. Customer submission lives in the
// portal package.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	gate      *authz.Gate
	responder httpx.Responder
}

// NewHandler constructs a Handler.
func NewHandler(logger *slog.Logger, service *Service, gate *authz.Gate, responder httpx.Responder) *Handler {
	return &Handler{logger: logger, service: service, gate: gate, responder: responder}
}

// MountRoutes registers staff purchase-order routes.
func (h *Handler) MountRoutes(r chi.Router) {
	g := h.gate
	r.Use(g.RequireStaff)
	r.With(g.RequirePermission(rbac.PermPORead)).Get("/", h.list)
	r.With(g.RequirePermission(rbac.PermPORead)).Get("/{id}", h.get)
	r.With(g.RequirePermission(rbac.PermPOApprove)).Post("/{id}/approve", h.approve)
	r.With(g.RequirePermission(rbac.PermPOReject)).Post("/{id}/reject", h.reject)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page := shared.PageFromRequest(r)
	filter := ListFilter{
		Status: Status(r.URL.Query().Get("status")),
		Search: page.Search,
		Limit:  page.PerPage,
		Offset: page.Offset(),
	}
	for _, q := range []struct {
		param string
		dst   *int64
	}{{"contractId", &filter.ContractID}, {"customerId", &filter.CustomerID}} {
		param, dst := q.param, q.dst
		raw := r.URL.Query().Get(param)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.responder.Error(w, r, httpx.Invalid(param, "Must be a positive integer"))
			return
		}
		*dst = id
	}
	items, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, shared.NewPage(items, page, total))
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.responder.Error(w, r, ErrNotFound)
		return
	}
	po, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, po)
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.responder.Error(w, r, ErrNotFound)
		return
	}
	po, err := h.service.Approve(r.Context(), auth.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, po)
}

func (h *Handler) reject(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.responder.Error(w, r, ErrNotFound)
		return
	}
	var req RejectRequest
	if err := validate.Decode(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	po, err := h.service.Reject(r.Context(), auth.PrincipalFromContext(r.Context()), id, req.Reason)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, po)
}
