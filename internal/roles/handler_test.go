package roles

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contracthub/contracthub/internal/auth"
	"github.com/contracthub/contracthub/internal/authz"
	"github.com/contracthub/contracthub/internal/platform/httpx"
	"github.com/contracthub/contracthub/internal/rbac"
)

func TestBuildCatalogMatchesTable(t *testing.T) {
	catalog := BuildCatalog()
	require.Len(t, catalog.Roles, len(rbac.Roles()))
	assert.ElementsMatch(t, rbac.AllPermissions(), catalog.Permissions)
	for _, row := range catalog.Roles {
		assert.Equal(t, rbac.PermissionsFor(row.Role), row.Permissions, row.Role)
		assert.Equal(t, row.Role != rbac.RoleCustomer, row.Staff, row.Role)
	}
}

func TestCatalogIsACopy(t *testing.T) {
	catalog := BuildCatalog()
	for i := range catalog.Roles {
		if catalog.Roles[i].Role == rbac.RoleViewer {
			catalog.Roles[i].Permissions[0] = rbac.PermUserDelete
		}
	}
	assert.False(t, rbac.HasPermission(rbac.RoleViewer, rbac.PermUserDelete))
}

func serve(role rbac.Role, path string) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	r.Route("/roles", NewHandler(authz.NewGate(httpx.Responder{}, nil, nil)).MountRoutes)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req = req.WithContext(auth.ContextWithPrincipal(req.Context(), &auth.Principal{ID: 1, Role: role, Active: true}))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestRolesEndpoint(t *testing.T) {
	rr := serve(rbac.RoleViewer, "/roles/")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Data Catalog `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Len(t, body.Data.Roles, len(rbac.Roles()))

	rr = serve(rbac.RoleSales, "/roles/support")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"customer.update"`)
	assert.NotContains(t, rr.Body.String(), `"customer.delete"`)

	assert.Equal(t, http.StatusNotFound, serve(rbac.RoleAdmin, "/roles/owner").Code)
	assert.Equal(t, http.StatusForbidden, serve(rbac.RoleCustomer, "/roles/").Code)
}
