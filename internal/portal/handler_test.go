package portal_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contracthub/contracthub/internal/auth"
	"github.com/contracthub/contracthub/internal/authz"
	"github.com/contracthub/contracthub/internal/contracts"
	"github.com/contracthub/contracthub/internal/customers"
	"github.com/contracthub/contracthub/internal/platform/httpx"
	"github.com/contracthub/contracthub/internal/portal"
	"github.com/contracthub/contracthub/internal/purchaseorders"
	"github.com/contracthub/contracthub/internal/rbac"
	"github.com/contracthub/contracthub/internal/shared"
)

type profileStub map[int64]*customers.Customer

func (s profileStub) Get(ctx context.Context, id int64) (*customers.Customer, error) {
	c, ok := s[id]
	if !ok {
		return nil, customers.ErrNotFound
	}
	return c, nil
}

type contractStub map[int64]*contracts.Contract

func (s contractStub) Get(ctx context.Context, id int64) (*contracts.Contract, error) {
	c, ok := s[id]
	if !ok {
		return nil, contracts.ErrNotFound
	}
	return c, nil
}

func (s contractStub) ListForCustomer(ctx context.Context, customerID int64, page shared.PageRequest) ([]contracts.Contract, int, error) {
	var out []contracts.Contract
	for id := int64(1); id <= int64(len(s)); id++ {
		if c, ok := s[id]; ok && c.CustomerID == customerID {
			out = append(out, *c)
		}
	}
	return out, len(out), nil
}

type orderStub struct {
	items     map[int64]*purchaseorders.PurchaseOrder
	submitted []purchaseorders.SubmitRequest
	bodies    [][]byte
}

func (s *orderStub) Get(ctx context.Context, id int64) (*purchaseorders.PurchaseOrder, error) {
	po, ok := s.items[id]
	if !ok {
		return nil, purchaseorders.ErrNotFound
	}
	return po, nil
}

func (s *orderStub) ListForCustomer(ctx context.Context, customerID int64, page shared.PageRequest) ([]purchaseorders.PurchaseOrder, int, error) {
	var out []purchaseorders.PurchaseOrder
	for _, po := range s.items {
		if po.CustomerID == customerID {
			out = append(out, *po)
		}
	}
	return out, len(out), nil
}

func (s *orderStub) Submit(ctx context.Context, actor *auth.Principal, contractID int64, req purchaseorders.SubmitRequest, file io.Reader) (*purchaseorders.PurchaseOrder, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	s.submitted = append(s.submitted, req)
	s.bodies = append(s.bodies, data)
	customerID, _ := actor.CustomerID()
	return &purchaseorders.PurchaseOrder{ID: 50, ContractID: contractID, CustomerID: customerID,
		PONumber: req.PONumber, FileName: req.FileName, FilePath: "secret.pdf", FileSize: int64(len(data))}, nil
}

type env struct {
	contracts contractStub
	orders    *orderStub
	router    chi.Router
}

func newEnv(t *testing.T, p *auth.Principal, maxUpload int64) *env {
	t.Helper()
	notes := "internal note"
	e := &env{
		contracts: contractStub{
			1: {ID: 1, CustomerID: 7, ContractNumber: "C-1"},
			2: {ID: 2, CustomerID: 8, ContractNumber: "C-2"},
		},
		orders: &orderStub{items: map[int64]*purchaseorders.PurchaseOrder{
			10: {ID: 10, CustomerID: 7, ContractID: 1, PONumber: "PO-A"},
			11: {ID: 11, CustomerID: 8, ContractID: 2, PONumber: "PO-B"},
		}},
	}
	profiles := profileStub{7: {ID: 7, CompanyName: "Acme", Email: "ops@acme.test", Notes: &notes, Status: customers.StatusActive}}

	gate := authz.NewGate(httpx.Responder{}, nil, nil)
	gate.RegisterOwner(authz.ResourceContract, func(ctx context.Context, id int64) (int64, error) {
		c, err := e.contracts.Get(ctx, id)
		if err != nil {
			return 0, err
		}
		return c.CustomerID, nil
	})
	gate.RegisterOwner(authz.ResourcePurchaseOrder, func(ctx context.Context, id int64) (int64, error) {
		po, err := e.orders.Get(ctx, id)
		if err != nil {
			return 0, err
		}
		return po.CustomerID, nil
	})

	h := portal.NewHandler(nil, profiles, e.contracts, e.orders, gate, httpx.Responder{}, maxUpload)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(auth.ContextWithPrincipal(req.Context(), p)))
		})
	})
	r.Route("/portal", h.MountRoutes)
	e.router = r
	return e
}

func (e *env) do(req *http.Request) (*httptest.ResponseRecorder, httpx.Envelope) {
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	var body httpx.Envelope
	_ = json.Unmarshal(rr.Body.Bytes(), &body)
	return rr, body
}

func (e *env) get(path string) (*httptest.ResponseRecorder, httpx.Envelope) {
	return e.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func customerPrincipal(profileID int64) *auth.Principal {
	return &auth.Principal{ID: 40, Role: rbac.RoleCustomer, Active: true,
		Profile: &auth.LinkedProfile{ID: profileID, CompanyName: "Acme", Status: "active"}}
}

func uploadRequest(t *testing.T, path string, fields map[string]string, fileName string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileName != "" {
		fw, err := mw.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestProfileHidesInternalFields(t *testing.T) {
	e := newEnv(t, customerPrincipal(7), 0)
	rr, body := e.get("/portal/profile")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, body.Success)
	assert.NotContains(t, rr.Body.String(), "internal note")
	assert.Contains(t, rr.Body.String(), `"companyName":"Acme"`)
}

func TestOwnContractsOnly(t *testing.T) {
	e := newEnv(t, customerPrincipal(7), 0)

	rr, _ := e.get("/portal/contracts")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "C-1")
	assert.NotContains(t, rr.Body.String(), "C-2")

	rr, _ = e.get("/portal/contracts/1")
	assert.Equal(t, http.StatusOK, rr.Code)

	foreign, foreignBody := e.get("/portal/contracts/2")
	absent, absentBody := e.get("/portal/contracts/999")
	assert.Equal(t, http.StatusNotFound, foreign.Code)
	assert.Equal(t, absent.Code, foreign.Code)
	assert.Equal(t, absentBody.Error, foreignBody.Error)
	assert.Equal(t, "contract not found", foreignBody.Error)
}

func TestOwnPurchaseOrdersOnly(t *testing.T) {
	e := newEnv(t, customerPrincipal(7), 0)

	rr, _ := e.get("/portal/purchase-orders/10")
	assert.Equal(t, http.StatusOK, rr.Code)
	rr, body := e.get("/portal/purchase-orders/11")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "purchase order not found", body.Error)

	rr, _ = e.get("/portal/purchase-orders")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "PO-A")
	assert.NotContains(t, rr.Body.String(), "PO-B")
}

func TestStaffAndUnlinkedCustomersRejected(t *testing.T) {
	staff := newEnv(t, &auth.Principal{ID: 1, Role: rbac.RoleAdmin, Active: true}, 0)
	rr, _ := staff.get("/portal/contracts")
	assert.Equal(t, http.StatusForbidden, rr.Code)

	unlinked := newEnv(t, &auth.Principal{ID: 41, Role: rbac.RoleCustomer, Active: true}, 0)
	rr, body := unlinked.get("/portal/profile")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "customer profile not found", body.Error)
	rr, _ = unlinked.get("/portal/contracts/1")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestUploadPurchaseOrder(t *testing.T) {
	e := newEnv(t, customerPrincipal(7), 1024)
	content := []byte("%PDF-1.4 body")

	req := uploadRequest(t, "/portal/contracts/1/purchase-orders",
		map[string]string{"poNumber": "PO-77", "amount": "1500.50", "currency": "eur"}, "../../po.pdf", content)
	rr, body := e.do(req)
	require.Equal(t, http.StatusCreated, rr.Code, body.Error)
	assert.NotContains(t, rr.Body.String(), "secret.pdf")

	require.Len(t, e.orders.submitted, 1)
	got := e.orders.submitted[0]
	assert.Equal(t, "PO-77", got.PONumber)
	assert.Equal(t, "EUR", got.Currency)
	assert.Equal(t, "po.pdf", got.FileName)
	require.NotNil(t, got.Amount)
	assert.Equal(t, 1500.50, *got.Amount)
	assert.Equal(t, content, e.orders.bodies[0])
}

func TestUploadRejections(t *testing.T) {
	e := newEnv(t, customerPrincipal(7), 16)

	rr, _ := e.do(uploadRequest(t, "/portal/contracts/2/purchase-orders", map[string]string{"poNumber": "X"}, "po.pdf", []byte("%PDF")))
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr, body := e.do(uploadRequest(t, "/portal/contracts/1/purchase-orders", map[string]string{"poNumber": "X"}, "", nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "File is required", body.Details["file"])

	rr, body = e.do(uploadRequest(t, "/portal/contracts/1/purchase-orders", map[string]string{"amount": "lots"}, "po.pdf", []byte("%PDF")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "Amount must be a number", body.Details["amount"])

	rr, body = e.do(uploadRequest(t, "/portal/contracts/1/purchase-orders", nil, "po.pdf", []byte("%PDF")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "PO Number is required", body.Details["poNumber"])

	big := bytes.Repeat([]byte("x"), 200<<10)
	rr, body = e.do(uploadRequest(t, "/portal/contracts/1/purchase-orders", map[string]string{"poNumber": "X"}, "po.pdf", big))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "File exceeds the maximum upload size", body.Details["file"])

	assert.Empty(t, e.orders.submitted)
}
