// Package authz layers role, permission and ownership checks on top of an
// authenticated principal. Each check is an independent chi middleware.
package authz

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/contracthub/contracthub/internal/auth"
	"github.com/contracthub/contracthub/internal/platform/httpx"
	"github.com/contracthub/contracthub/internal/rbac"
)

// ResourceType names a customer-owned resource kind.
type ResourceType string

const (
	ResourceContract      ResourceType = "contract"
	ResourcePurchaseOrder ResourceType = "purchase_order"
)

func (t ResourceType) label() string {
	return strings.ReplaceAll(string(t), "_", " ")
}

// OwnerLookup returns the customer profile id that owns the resource, or an
// error wrapping httpx.ErrNotFound when it does not exist.
type OwnerLookup func(ctx context.Context, id int64) (int64, error)

var (
	ErrStaffOnly        = httpx.NewError(httpx.ErrForbidden, "staff access required")
	ErrRoleDenied       = httpx.NewError(httpx.ErrForbidden, "insufficient role")
	ErrPermissionDenied = httpx.NewError(httpx.ErrForbidden, "insufficient permissions")
)

// Gate builds authorization middleware. All checks fail closed.
type Gate struct {
	Responder httpx.Responder
	Logger    *slog.Logger
	Denials   auth.DenialRecorder

	mu     sync.RWMutex
	owners map[ResourceType]OwnerLookup
}

// NewGate constructs a Gate. denials may be nil.
func NewGate(responder httpx.Responder, logger *slog.Logger, denials auth.DenialRecorder) *Gate {
	return &Gate{
		Responder: responder,
		Logger:    logger,
		Denials:   denials,
		owners:    make(map[ResourceType]OwnerLookup),
	}
}

// RegisterOwner installs the owner lookup for a resource type.
func (g *Gate) RegisterOwner(t ResourceType, lookup OwnerLookup) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.owners[t] = lookup
}

func (g *Gate) owner(t ResourceType) OwnerLookup {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.owners[t]
}

// RequireStaff admits every role except customer.
func (g *Gate) RequireStaff(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := g.principal(w, r)
		if !ok {
			return
		}
		if !p.IsStaff() {
			g.deny(w, r, "role", "staff_only", ErrStaffOnly)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireRole admits only the listed roles.
func (g *Gate) RequireRole(roles ...rbac.Role) func(http.Handler) http.Handler {
	allowed := make(map[rbac.Role]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := g.principal(w, r)
			if !ok {
				return
			}
			if _, ok := allowed[p.Role]; !ok {
				g.deny(w, r, "role", "role_mismatch", ErrRoleDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequirePermission admits principals whose current role holds perm.
func (g *Gate) RequirePermission(perm rbac.Permission) func(http.Handler) http.Handler {
	return g.RequireAny(perm)
}

// RequireAny admits principals whose role holds at least one of perms. An
// empty list denies everyone.
func (g *Gate) RequireAny(perms ...rbac.Permission) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := g.principal(w, r)
			if !ok {
				return
			}
			if !p.Active || !rbac.HasAny(p.Role, perms...) {
				g.deny(w, r, "permission", "missing_permission", ErrPermissionDenied)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireOwnership admits a customer principal only when the resource named
// by the idParam route parameter belongs to its linked profile. Every failure
// is reported as not found so existence is never confirmed to a non-owner.
func (g *Gate) RequireOwnership(t ResourceType, idParam string) func(http.Handler) http.Handler {
	notFound := httpx.NewError(httpx.ErrNotFound, t.label()+" not found")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := g.principal(w, r)
			if !ok {
				return
			}
			customerID, linked := p.CustomerID()
			if !linked {
				g.deny(w, r, "ownership", "no_profile", notFound)
				return
			}
			id, err := strconv.ParseInt(chi.URLParam(r, idParam), 10, 64)
			if err != nil || id <= 0 {
				g.deny(w, r, "ownership", "bad_id", notFound)
				return
			}
			lookup := g.owner(t)
			if lookup == nil {
				if g.Logger != nil {
					g.Logger.Error("authz: no owner lookup registered", slog.String("resource", string(t)))
				}
				g.deny(w, r, "ownership", "unregistered", notFound)
				return
			}
			owner, err := lookup(r.Context(), id)
			if err != nil {
				if errors.Is(err, httpx.ErrNotFound) {
					g.deny(w, r, "ownership", "absent", notFound)
					return
				}
				g.Responder.Error(w, r, err)
				return
			}
			if owner != customerID {
				g.deny(w, r, "ownership", "not_owner", notFound)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g *Gate) principal(w http.ResponseWriter, r *http.Request) (*auth.Principal, bool) {
	p := auth.PrincipalFromContext(r.Context())
	if p == nil {
		g.deny(w, r, "authentication", "missing", auth.ErrCredentialMissing)
		return nil, false
	}
	return p, true
}

func (g *Gate) deny(w http.ResponseWriter, r *http.Request, layer, reason string, err error) {
	if g.Denials != nil {
		g.Denials.RecordDenial(layer, reason)
	}
	if g.Logger != nil && layer != "authentication" {
		var userID int64
		if p := auth.PrincipalFromContext(r.Context()); p != nil {
			userID = p.ID
		}
		g.Logger.Info("authorization denied",
			slog.String("layer", layer),
			slog.String("reason", reason),
			slog.Int64("user_id", userID),
			slog.String("path", r.URL.Path))
	}
	g.Responder.Error(w, r, err)
}
