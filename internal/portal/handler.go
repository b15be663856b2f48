// Package portal serves the customer self-service API. Every route requires
// the customer role and single-resource routes additionally require the
// resource to belong to the caller's linked profile.
package portal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/contracthub/contracthub/internal/auth"
	"github.com/contracthub/contracthub/internal/authz"
	"github.com/contracthub/contracthub/internal/contracts"
	"github.com/contracthub/contracthub/internal/customers"
	"github.com/contracthub/contracthub/internal/platform/httpx"
	"github.com/contracthub/contracthub/internal/platform/validate"
	"github.com/contracthub/contracthub/internal/purchaseorders"
	"github.com/contracthub/contracthub/internal/rbac"
	"github.com/contracthub/contracthub/internal/shared"
	"github.com/contracthub/contracthub/internal/storage"
)

// multipartOverhead covers form fields and boundaries on top of the file.
const multipartOverhead = 64 << 10

var errNoProfile = httpx.NewError(httpx.ErrNotFound, "customer profile not found")

// Profiles reads customer profiles.
type Profiles interface {
	Get(ctx context.Context, id int64) (*customers.Customer, error)
}

// Contracts reads contracts on behalf of a customer.
type Contracts interface {
	Get(ctx context.Context, id int64) (*contracts.Contract, error)
	ListForCustomer(ctx context.Context, customerID int64, page shared.PageRequest) ([]contracts.Contract, int, error)
}

// Orders lists and accepts purchase orders on behalf of a customer.
type Orders interface {
	Get(ctx context.Context, id int64) (*purchaseorders.PurchaseOrder, error)
	ListForCustomer(ctx context.Context, customerID int64, page shared.PageRequest) ([]purchaseorders.PurchaseOrder, int, error)
	Submit(ctx context.Context, actor *auth.Principal, contractID int64, req purchaseorders.SubmitRequest, file io.Reader) (*purchaseorders.PurchaseOrder, error)
}

// Handler serves /portal.
type Handler struct {
	logger         *slog.Logger
	profiles       Profiles
	contracts      Contracts
	orders         Orders
	gate           *authz.Gate
	responder      httpx.Responder
	maxUploadBytes int64
}

// NewHandler constructs a Handler. maxUploadBytes bounds the uploaded file.
func NewHandler(logger *slog.Logger, profiles Profiles, contracts Contracts, orders Orders, gate *authz.Gate, responder httpx.Responder, maxUploadBytes int64) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:         logger,
		profiles:       profiles,
		contracts:      contracts,
		orders:         orders,
		gate:           gate,
		responder:      responder,
		maxUploadBytes: maxUploadBytes,
	}
}

// MountRoutes registers portal routes.
func (h *Handler) MountRoutes(r chi.Router) {
	g := h.gate
	ownsContract := g.RequireOwnership(authz.ResourceContract, "id")
	ownsOrder := g.RequireOwnership(authz.ResourcePurchaseOrder, "id")

	r.Use(g.RequireRole(rbac.RoleCustomer))
	r.Get("/profile", h.profile)
	r.Get("/contracts", h.listContracts)
	r.With(ownsContract).Get("/contracts/{id}", h.getContract)
	r.With(ownsContract).Post("/contracts/{id}/purchase-orders", h.upload)
	r.Get("/purchase-orders", h.listOrders)
	r.With(ownsOrder).Get("/purchase-orders/{id}", h.getOrder)
}

type profileView struct {
	ID          int64            `json:"id"`
	CompanyName string           `json:"companyName"`
	ContactName string           `json:"contactName"`
	Email       string           `json:"email"`
	Phone       *string          `json:"phone,omitempty"`
	Address     *string          `json:"address,omitempty"`
	TaxID       *string          `json:"taxId,omitempty"`
	Status      customers.Status `json:"status"`
}

func (h *Handler) customerID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, ok := auth.PrincipalFromContext(r.Context()).CustomerID()
	if !ok {
		h.responder.Error(w, r, errNoProfile)
	}
	return id, ok
}

func (h *Handler) profile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.customerID(w, r)
	if !ok {
		return
	}
	c, err := h.profiles.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			err = errNoProfile
		}
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, profileView{
		ID:          c.ID,
		CompanyName: c.CompanyName,
		ContactName: c.ContactName,
		Email:       c.Email,
		Phone:       c.Phone,
		Address:     c.Address,
		TaxID:       c.TaxID,
		Status:      c.Status,
	})
}

func (h *Handler) listContracts(w http.ResponseWriter, r *http.Request) {
	id, ok := h.customerID(w, r)
	if !ok {
		return
	}
	page := shared.PageFromRequest(r)
	items, total, err := h.contracts.ListForCustomer(r.Context(), id, page)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, shared.NewPage(items, page, total))
}

func (h *Handler) getContract(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.responder.Error(w, r, contracts.ErrNotFound)
		return
	}
	c, err := h.contracts.Get(r.Context(), id)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, c)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := h.customerID(w, r)
	if !ok {
		return
	}
	page := shared.PageFromRequest(r)
	items, total, err := h.orders.ListForCustomer(r.Context(), id, page)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, shared.NewPage(items, page, total))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		h.responder.Error(w, r, purchaseorders.ErrNotFound)
		return
	}
	po, err := h.orders.Get(r.Context(), id)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, po)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	contractID, err := httpx.IDParam(r, "id")
	if err != nil {
		h.responder.Error(w, r, contracts.ErrNotFound)
		return
	}
	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+multipartOverhead)
	}
	if err := r.ParseMultipartForm(1 << 20); err != nil {
		h.responder.Error(w, r, uploadError(err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.responder.Error(w, r, uploadError(err))
		return
	}
	defer file.Close()

	req, err := submitRequest(r, header)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	po, err := h.orders.Submit(r.Context(), auth.PrincipalFromContext(r.Context()), contractID, req, file)
	if err != nil {
		h.responder.Error(w, r, err)
		return
	}
	h.logger.Info("purchase order uploaded",
		slog.Int64("purchase_order_id", po.ID),
		slog.Int64("contract_id", contractID),
		slog.Int64("size", po.FileSize))
	httpx.OK(w, http.StatusCreated, po)
}

func submitRequest(r *http.Request, header *multipart.FileHeader) (purchaseorders.SubmitRequest, error) {
	req := purchaseorders.SubmitRequest{
		PONumber: strings.TrimSpace(r.FormValue("poNumber")),
		Currency: strings.ToUpper(strings.TrimSpace(r.FormValue("currency"))),
		FileName: filepath.Base(header.Filename),
	}
	if raw := strings.TrimSpace(r.FormValue("amount")); raw != "" {
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return req, httpx.Invalid("amount", "Amount must be a number")
		}
		req.Amount = &amount
	}
	if err := validate.Struct(req); err != nil {
		return req, err
	}
	return req, nil
}

func uploadError(err error) error {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), strings.Contains(err.Error(), "request body too large"):
		return storage.ErrTooLarge
	case errors.Is(err, http.ErrMissingFile):
		return storage.ErrEmpty
	case errors.Is(err, http.ErrNotMultipart):
		return httpx.Invalid("file", "Request must be multipart/form-data")
	default:
		return httpx.Invalid("file", "Upload could not be read")
	}
}
