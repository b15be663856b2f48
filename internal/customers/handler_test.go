package customers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contracthub/contracthub/internal/auth"
	"github.com/contracthub/contracthub/internal/authz"
	"github.com/contracthub/contracthub/internal/customers"
	"github.com/contracthub/contracthub/internal/platform/httpx"
	"github.com/contracthub/contracthub/internal/rbac"
	_ "github.com/contracthub/contracthub/testing"
)

type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data"`
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

func newRouter(repo *memRepo, p *auth.Principal) chi.Router {
	svc := customers.NewService(repo, nil, nil)
	gate := authz.NewGate(httpx.Responder{}, nil, nil)
	h := customers.NewHandler(nil, svc, gate, httpx.Responder{})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.ContextWithPrincipal(req.Context(), p)))
		})
	})
	r.Route("/customers", h.MountRoutes)
	return r
}

func call(r chi.Router, method, path, body string) (int, envelope) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	var env envelope
	_ = json.Unmarshal(rr.Body.Bytes(), &env)
	return rr.Code, env
}

func TestPortalAccessScenario(t *testing.T) {
	repo := newMemRepo()
	id := repo.seed(customers.Customer{CompanyName: "Acme", ContactName: "Ana", Status: customers.StatusActive})
	require.Equal(t, int64(1), id)
	r := newRouter(repo, actor(1, rbac.RoleAdmin))

	status, env := call(r, http.MethodPost, "/customers/portal-access", `{"customerId":1,"email":"c@x.com","password":"short"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Password must be at least 8 characters", env.Error)
	assert.Equal(t, "Password must be at least 8 characters", env.Details["password"])

	status, env = call(r, http.MethodPost, "/customers/portal-access", `{"customerId":1,"email":"c@x.com","password":"`+strings.Repeat("é", 40)+`"}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Password must be at most 72 bytes", env.Details["password"])

	status, env = call(r, http.MethodPost, "/customers/portal-access", `{"customerId":1,"email":"c@x.com","password":"longenough"}`)
	require.Equal(t, http.StatusOK, status, env.Error)
	var access struct {
		User struct {
			ID   int64     `json:"id"`
			Role rbac.Role `json:"role"`
		} `json:"user"`
		Customer struct {
			UserID *int64 `json:"userId"`
		} `json:"customer"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &access))
	assert.Equal(t, rbac.RoleCustomer, access.User.Role)
	require.NotNil(t, access.Customer.UserID)
	assert.Equal(t, access.User.ID, *access.Customer.UserID)
	assert.NotContains(t, string(env.Data), "password")

	status, _ = call(r, http.MethodPost, "/customers/portal-access", `{"customerId":1,"email":"d@x.com","password":"longenough"}`)
	assert.Equal(t, http.StatusConflict, status)
}

func TestPortalAccessRequiresPermission(t *testing.T) {
	repo := newMemRepo()
	repo.seed(customers.Customer{CompanyName: "Acme", Status: customers.StatusActive})
	r := newRouter(repo, actor(4, rbac.RoleSupport))

	status, _ := call(r, http.MethodPost, "/customers/portal-access", `{"customerId":1,"email":"c@x.com","password":"longenough"}`)
	assert.Equal(t, http.StatusForbidden, status)
}

func TestCustomerRoutesRejectCustomers(t *testing.T) {
	r := newRouter(newMemRepo(), &auth.Principal{ID: 9, Role: rbac.RoleCustomer, Active: true})
	status, _ := call(r, http.MethodGet, "/customers/", "")
	assert.Equal(t, http.StatusForbidden, status)
}

func TestSupportCanUpdateButNotDelete(t *testing.T) {
	repo := newMemRepo()
	repo.seed(customers.Customer{CompanyName: "Acme", Status: customers.StatusActive})
	r := newRouter(repo, actor(4, rbac.RoleSupport))

	status, env := call(r, http.MethodPut, "/customers/1", `{"companyName":"Acme Ltd"}`)
	require.Equal(t, http.StatusOK, status, env.Error)

	status, _ = call(r, http.MethodDelete, "/customers/1", "")
	assert.Equal(t, http.StatusForbidden, status)
}

func TestStatusEndpoint(t *testing.T) {
	repo := newMemRepo()
	repo.seed(customers.Customer{CompanyName: "Acme", Status: customers.StatusPendingApproval})
	r := newRouter(repo, actor(2, rbac.RoleManager))

	status, _ := call(r, http.MethodPatch, "/customers/1/status", `{"status":"active"}`)
	assert.Equal(t, http.StatusConflict, status)

	status, env := call(r, http.MethodPost, "/customers/1/approve", "")
	require.Equal(t, http.StatusOK, status, env.Error)
	var c customers.Customer
	require.NoError(t, json.Unmarshal(env.Data, &c))
	assert.Equal(t, customers.StatusActive, c.Status)
	require.NotNil(t, c.ApprovedBy)
	assert.Equal(t, int64(2), *c.ApprovedBy)

	status, _ = call(r, http.MethodPost, "/customers/1/approve", "")
	assert.Equal(t, http.StatusConflict, status)

	status, env = call(r, http.MethodPatch, "/customers/1/status", `{"status":"suspended"}`)
	require.Equal(t, http.StatusOK, status, env.Error)

	status, env = call(r, http.MethodPatch, "/customers/1/status", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Status is required", env.Error)
}

func TestGetUnknownAndMalformedID(t *testing.T) {
	r := newRouter(newMemRepo(), actor(1, rbac.RoleViewer))

	status, env := call(r, http.MethodGet, "/customers/77", "")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "customer not found", env.Error)

	status, _ = call(r, http.MethodGet, "/customers/abc", "")
	assert.Equal(t, http.StatusNotFound, status)
}

func TestListPaginates(t *testing.T) {
	repo := newMemRepo()
	for _, name := range []string{"Acme", "Beta", "Acme West"} {
		repo.seed(customers.Customer{CompanyName: name, Status: customers.StatusActive})
	}
	r := newRouter(repo, actor(1, rbac.RoleViewer))

	status, env := call(r, http.MethodGet, "/customers/?search=acme&perPage=1", "")
	require.Equal(t, http.StatusOK, status)
	var page struct {
		Items      []customers.Customer `json:"items"`
		Pagination struct {
			Total      int `json:"total"`
			TotalPages int `json:"totalPages"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &page))
	assert.Len(t, page.Items, 1)
	assert.Equal(t, 2, page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)

	status, _ = call(r, http.MethodGet, "/customers/?status=archived", "")
	assert.Equal(t, http.StatusBadRequest, status)
}
