package auth

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/contracthub/contracthub/internal/platform/httpx"
	"github.com/contracthub/contracthub/internal/platform/validate"
	"github.com/contracthub/contracthub/internal/rbac"
)

// LoginRecorder counts login outcomes.
type LoginRecorder interface {
	RecordLogin(outcome string)
}

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger       *slog.Logger
	service      *Service
	mw           Middleware
	logins       LoginRecorder
	secureCookie bool
}

// NewHandler constructs a Handler instance. logins may be nil.
func NewHandler(logger *slog.Logger, service *Service, mw Middleware, logins LoginRecorder, secureCookie bool) *Handler {
	return &Handler{logger: logger, service: service, mw: mw, logins: logins, secureCookie: secureCookie}
}

// MountRoutes registers auth routes on provided router. loginLimiter guards
// the login endpoint and may be nil.
func (h *Handler) MountRoutes(r chi.Router, loginLimiter func(http.Handler) http.Handler) {
	r.Group(func(r chi.Router) {
		if loginLimiter != nil {
			r.Use(loginLimiter)
		}
		r.Post("/login", h.handleLogin)
	})
	r.With(h.mw.Optional).Get("/status", h.handleStatus)
	r.Group(func(r chi.Router) {
		r.Use(h.mw.Authenticate)
		r.Post("/logout", h.handleLogout)
		r.Get("/me", h.handleMe)
		r.Put("/password", h.handleChangePassword)
	})
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token       string            `json:"token"`
	ExpiresAt   time.Time         `json:"expiresAt"`
	User        *Principal        `json:"user"`
	Permissions []rbac.Permission `json:"permissions"`
}

type meResponse struct {
	User        *Principal        `json:"user"`
	Permissions []rbac.Permission `json:"permissions"`
}

type statusResponse struct {
	Authenticated bool       `json:"authenticated"`
	User          *Principal `json:"user,omitempty"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" label:"Password" validate:"required,min=8,max=72,maxbytes=72"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := validate.Decode(r, &req); err != nil {
		h.mw.Responder.Error(w, r, err)
		return
	}

	sess, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if httpx.StatusFor(err) == http.StatusUnauthorized {
			h.recordLogin("failure")
			if h.logger != nil {
				h.logger.Info("login rejected", slog.String("email", req.Email))
			}
		}
		h.mw.Responder.Error(w, r, err)
		return
	}
	h.recordLogin("success")

	http.SetCookie(w, &http.Cookie{
		Name:     h.mw.CookieName,
		Value:    sess.Token.Value,
		Path:     "/",
		Expires:  sess.Token.ExpiresAt,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	httpx.OK(w, http.StatusOK, loginResponse{
		Token:       sess.Token.Value,
		ExpiresAt:   sess.Token.ExpiresAt,
		User:        sess.Principal,
		Permissions: rbac.PermissionsFor(sess.Principal.Role),
	})
}

func (h *Handler) recordLogin(outcome string) {
	if h.logins != nil {
		h.logins.RecordLogin(outcome)
	}
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	if err := h.service.Logout(r.Context(), principal); err != nil {
		h.mw.Responder.Error(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     h.mw.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	httpx.OK(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	httpx.OK(w, http.StatusOK, meResponse{User: principal, Permissions: rbac.PermissionsFor(principal.Role)})
}

func (h *Handler) handleStatus(w http.ResponseWriter, r *http.Request) {
	principal := PrincipalFromContext(r.Context())
	httpx.OK(w, http.StatusOK, statusResponse{Authenticated: principal != nil, User: principal})
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := validate.Decode(r, &req); err != nil {
		h.mw.Responder.Error(w, r, err)
		return
	}
	principal := PrincipalFromContext(r.Context())
	if err := h.service.ChangePassword(r.Context(), principal.ID, req.CurrentPassword, req.NewPassword); err != nil {
		h.mw.Responder.Error(w, r, err)
		return
	}
	httpx.OK(w, http.StatusOK, map[string]string{"message": "password updated"})
}
