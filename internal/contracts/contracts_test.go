package contracts_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contracthub/contracthub/internal/auth"
	"github.com/contracthub/contracthub/internal/authz"
	"github.com/contracthub/contracthub/internal/contracts"
	"github.com/contracthub/contracthub/internal/platform/httpx"
	"github.com/contracthub/contracthub/internal/rbac"
)

type memRepo struct {
	mu    sync.Mutex
	items map[int64]*contracts.Contract
	next  int64
}

func newMemRepo() *memRepo {
	return &memRepo{items: map[int64]*contracts.Contract{}, next: 1}
}

func (m *memRepo) Get(ctx context.Context, id int64) (*contracts.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) List(ctx context.Context, f contracts.ListFilter) ([]contracts.Contract, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []contracts.Contract
	for id := int64(1); id < m.next; id++ {
		c, ok := m.items[id]
		if !ok || (f.CustomerID > 0 && c.CustomerID != f.CustomerID) {
			continue
		}
		out = append(out, *c)
	}
	return out, len(out), nil
}

func (m *memRepo) Create(ctx context.Context, c contracts.Contract) (*contracts.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.items {
		if existing.ContractNumber == c.ContractNumber {
			return nil, contracts.ErrNumberTaken
		}
	}
	c.ID = m.next
	m.next++
	m.items[c.ID] = &c
	cp := c
	return &cp, nil
}

func (m *memRepo) Update(ctx context.Context, id int64, req contracts.UpdateContractRequest) (*contracts.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	if req.Title != nil {
		c.Title = *req.Title
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[id]; !ok {
		return contracts.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *memRepo) Approve(ctx context.Context, id, approverID int64, at time.Time) (*contracts.Contract, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	if c.Status != contracts.StatusDraft {
		return nil, contracts.ErrNotDraft
	}
	c.Status = contracts.StatusActive
	c.ApprovedBy = &approverID
	c.ApprovedAt = &at
	cp := *c
	return &cp, nil
}

func (m *memRepo) OwnerOf(ctx context.Context, id int64) (int64, error) {
	c, err := m.Get(ctx, id)
	if err != nil {
		return 0, err
	}
	return c.CustomerID, nil
}

func router(repo *memRepo, role rbac.Role) chi.Router {
	p := &auth.Principal{ID: 3, Role: role, Active: true}
	h := contracts.NewHandler(nil, contracts.NewService(repo, nil, nil), authz.NewGate(httpx.Responder{}, nil, nil), httpx.Responder{})
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.ContextWithPrincipal(req.Context(), p)))
		})
	})
	r.Route("/contracts", h.MountRoutes)
	return r
}

func send(r chi.Router, method, path, body string) (int, httpx.Envelope, []byte) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	var env httpx.Envelope
	_ = json.Unmarshal(rr.Body.Bytes(), &env)
	return rr.Code, env, rr.Body.Bytes()
}

const validContract = `{"customerId":1,"contractNumber":"ch-001","title":"Support","value":1200,
"currency":"USD","billingCycle":"monthly","startDate":"2026-01-01T00:00:00Z","endDate":"2026-12-31T00:00:00Z"}`

func TestCreateAndApproveContract(t *testing.T) {
	repo := newMemRepo()
	sales := router(repo, rbac.RoleSales)

	status, env, _ := send(sales, http.MethodPost, "/contracts/", validContract)
	require.Equal(t, http.StatusCreated, status, env.Error)

	c, err := repo.Get(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "CH-001", c.ContractNumber)
	assert.Equal(t, "USD", c.Currency)
	assert.Equal(t, contracts.StatusDraft, c.Status)
	assert.Equal(t, int64(3), c.CreatedBy)

	status, _, _ = send(sales, http.MethodPost, "/contracts/", validContract)
	assert.Equal(t, http.StatusConflict, status)

	status, _, _ = send(sales, http.MethodPost, "/contracts/1/approve", "")
	assert.Equal(t, http.StatusForbidden, status)

	finance := router(repo, rbac.RoleFinance)
	status, env, _ = send(finance, http.MethodPost, "/contracts/1/approve", "")
	require.Equal(t, http.StatusOK, status, env.Error)

	status, env, _ = send(finance, http.MethodPost, "/contracts/1/approve", "")
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "only draft contracts can be approved", env.Error)
}

func TestCreateContractValidation(t *testing.T) {
	r := router(newMemRepo(), rbac.RoleManager)
	body := `{"customerId":1,"contractNumber":"X","title":"T","currency":"ZZZ","billingCycle":"weekly",
"startDate":"2026-06-01T00:00:00Z","endDate":"2026-01-01T00:00:00Z"}`
	status, env, _ := send(r, http.MethodPost, "/contracts/", body)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Currency must be a valid currency code", env.Details["currency"])
	assert.Equal(t, "Billing Cycle must be one of: monthly, quarterly, annually, one_time", env.Details["billingCycle"])
	assert.Equal(t, "End Date must be after Start Date", env.Details["endDate"])
}

func TestViewerIsReadOnly(t *testing.T) {
	repo := newMemRepo()
	_, err := repo.Create(context.Background(), contracts.Contract{CustomerID: 1, ContractNumber: "A", Status: contracts.StatusDraft})
	require.NoError(t, err)
	r := router(repo, rbac.RoleViewer)

	status, _, _ := send(r, http.MethodGet, "/contracts/1", "")
	assert.Equal(t, http.StatusOK, status)
	status, _, _ = send(r, http.MethodPut, "/contracts/1", `{"title":"New"}`)
	assert.Equal(t, http.StatusForbidden, status)
	status, _, _ = send(r, http.MethodGet, "/contracts/?status=bogus", "")
	assert.Equal(t, http.StatusBadRequest, status)
}
