package contracts

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

// Handler serves the staff contract API.
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

// MountRoutes registers contract routes.
func (h *Handler) MountRoutes(r chi.Router) {
	g := h.gate
	r.Use(g.RequireStaff)
	r.With(g.RequirePermission(rbac.PermContractRead)).Get("/", h.list)
	r.With(g.RequirePermission(rbac.PermContractCreate)).Post("/", h.create)
	r.With(g.RequirePermission(rbac.PermContractRead)).Get("/{id}", h.get)
	r.With(g.RequirePermission(rbac.PermContractUpdate)).Put("/{id}", h.update)
	r.With(g.RequirePermission(rbac.PermContractDelete)).Delete("/{id}", h.delete)
	r.With(g.RequirePermission(rbac.PermContractApprove)).Post("/{id}/approve", h.approve)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page := shared.PageFromRequest(r)
	filter := ListFilter{
		Search: page.Search,
		Status: Status(r.URL.Query().Get("status")),
		Limit:  page.PerPage,
		Offset: page.Offset(),
	}
	if filter.Status != "" && !filter.Status.Valid() {
		h.responder.Error(w, r, httpx.Invalid("status", "Status must be one of: draft, active, expired, terminated"))
		return
	}
	if raw := r.URL.Query().Get("customerId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.responder.Error(w, r, httpx.Invalid("customerId", "Customer ID must be a positive number"))
			return
		}
		filter.CustomerID = id
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
	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, c)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateContractRequest
	if err := validate.Decode(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	c, err := h.service.Create(r.Context(), auth.PrincipalFromContext(r.Context()), req)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusCreated, c)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.responder.Error(w, r, ErrNotFound)
		return
	}
	var req UpdateContractRequest
	if err := validate.Decode(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	c, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, c)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.responder.Error(w, r, ErrNotFound)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]int64{"id": id})
}

func (h *Handler) approve(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.responder.Error(w, r, ErrNotFound)
		return
	}
	c, err := h.service.Approve(r.Context(), auth.PrincipalFromContext(r.Context()), id)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	if h.logger != nil {
		h.logger.Info("contract approved", slog.Int64("contract_id", id), slog.Int64("customer_id", c.CustomerID))
	}
	httpx.OK(w, http.StatusOK, c)
}
