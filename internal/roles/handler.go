// Package roles publishes the static role/permission table to staff clients.
package roles

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/contracthub/contracthub/internal/authz"
	"github.com/contracthub/contracthub/internal/platform/httpx"
	"github.com/contracthub/contracthub/internal/rbac"
)

// RoleView is one row of the role table.
type RoleView struct {
	Role        rbac.Role         `json:"role"`
	Staff       bool              `json:"staff"`
	Permissions []rbac.Permission `json:"permissions"`
}

// Catalog is the full table plus the permission universe.
type Catalog struct {
	Roles       []RoleView        `json:"roles"`
	Permissions []rbac.Permission `json:"permissions"`
}

// BuildCatalog snapshots the role table in display order.
func BuildCatalog() Catalog {
	roles := rbac.Roles()
	out := Catalog{Roles: make([]RoleView, 0, len(roles)), Permissions: rbac.AllPermissions()}
	for _, role := range roles {
		out.Roles = append(out.Roles, RoleView{Role: role, Staff: role.IsStaff(), Permissions: rbac.PermissionsFor(role)})
	}
	return out
}

// Handler serves GET /roles.
type Handler struct {
	gate *authz.Gate
}

func NewHandler(gate *authz.Gate) *Handler {
	return &Handler{gate: gate}
}

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.gate.RequireStaff)
	r.Get("/", h.list)
	r.Get("/{role}", h.get)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	httpx.OK(w, http.StatusOK, BuildCatalog())
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	role, ok := rbac.ParseRole(chi.URLParam(r, "role"))
	if !ok {
		h.gate.Responder.Error(w, r, httpx.NewError(httpx.ErrNotFound, "role not found"))
		return
	}
	httpx.OK(w, http.StatusOK, RoleView{Role: role, Staff: role.IsStaff(), Permissions: rbac.PermissionsFor(role)})
}
