package customers

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

// Handler serves the staff customer API.
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

// MountRoutes registers customer routes. The caller must have authenticated
// the request.
func (h *Handler) MountRoutes(r chi.Router) {
	g := h.gate
	r.Use(g.RequireStaff)
	r.With(g.RequirePermission(rbac.PermCustomerRead)).Get("/", h.list)
	r.With(g.RequirePermission(rbac.PermCustomerCreate)).Post("/", h.create)
	r.With(g.RequirePermission(rbac.PermCustomerGrantAccess)).Post("/portal-access", h.grantAccess)
	r.With(g.RequirePermission(rbac.PermCustomerRead)).Get("/{id}", h.get)
	r.With(g.RequirePermission(rbac.PermCustomerUpdate)).Put("/{id}", h.update)
	r.With(g.RequirePermission(rbac.PermCustomerDelete)).Delete("/{id}", h.delete)
	r.With(g.RequireAny(rbac.PermCustomerUpdate, rbac.PermCustomerSuspend)).Patch("/{id}/status", h.changeStatus)
	r.With(g.RequirePermission(rbac.PermCustomerApprove)).Post("/{id}/approve", h.approve)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page := shared.PageFromRequest(r)
	filter := ListFilter{
		Search: page.Search,
		Status: Status(r.URL.Query().Get("status")),
		Limit:  page.PerPage,
		Offset: page.Offset(),
	}
	if raw := r.URL.Query().Get("assignedTo"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.responder.Error(w, r, httpx.Invalid("assignedTo", "Assigned To must be a positive number"))
			return
		}
		filter.AssignedTo = id
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
	var req CreateCustomerRequest
	if err := validate.Decode(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	c, err := h.service.Create(r.Context(), req)
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
	var req UpdateCustomerRequest
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

func (h *Handler) changeStatus(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.responder.Error(w, r, ErrNotFound)
		return
	}
	var req StatusRequest
	if err := validate.Decode(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	c, err := h.service.ChangeStatus(r.Context(), auth.PrincipalFromContext(r.Context()), id, req.Status)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, c)
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
	httpx.OK(w, http.StatusOK, c)
}

func (h *Handler) grantAccess(w http.ResponseWriter, r *http.Request) {
	var req GrantAccessRequest
	if err := validate.Decode(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	access, err := h.service.GrantPortalAccess(r.Context(), auth.PrincipalFromContext(r.Context()), req)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	if h.logger != nil {
		h.logger.Info("portal access granted",
			slog.Int64("customer_id", req.CustomerID),
			slog.Int64("user_id", access.User.ID))
	}
	httpx.OK(w, http.StatusOK, access)
}
