package products

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/contracthub/contracthub/internal/authz"
	"github.com/contracthub/contracthub/internal/platform/httpx"
	"github.com/contracthub/contracthub/internal/platform/validate"
	"github.com/contracthub/contracthub/internal/rbac"
	"github.com/contracthub/contracthub/internal/shared"
)

// Handler serves the product catalog API.
type Handler struct {
	service   *Service
	gate      *authz.Gate
	responder httpx.Responder
}

// NewHandler constructs a Handler.
func NewHandler(service *Service, gate *authz.Gate, responder httpx.Responder) *Handler {
	return &Handler{service: service, gate: gate, responder: responder}
}

// MountRoutes registers product routes.
func (h *Handler) MountRoutes(r chi.Router) {
	g := h.gate
	r.Use(g.RequireStaff)
	r.With(g.RequirePermission(rbac.PermProductRead)).Get("/", h.list)
	r.With(g.RequirePermission(rbac.PermProductCreate)).Post("/", h.create)
	r.With(g.RequirePermission(rbac.PermProductRead)).Get("/{id}", h.get)
	r.With(g.RequirePermission(rbac.PermProductUpdate)).Put("/{id}", h.update)
	r.With(g.RequirePermission(rbac.PermProductDelete)).Delete("/{id}", h.delete)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page := shared.PageFromRequest(r)
	items, total, err := h.service.List(r.Context(), ListFilter{
		Search:     page.Search,
		ActiveOnly: r.URL.Query().Get("active") == "true",
		Limit:      page.PerPage,
		Offset:     page.Offset(),
	})
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
	p, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, p)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := validate.Decode(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	p, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusCreated, p)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.responder.Error(w, r, ErrNotFound)
		return
	}
	var req UpdateProductRequest
	if err := validate.Decode(r, &req); err != nil {
		h.responder.Error(w, r, err)
		return
	}
	p, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, p)
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
