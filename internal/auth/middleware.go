package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/contracthub/contracthub/internal/platform/httpx"
)

// DenialRecorder counts rejected requests per gate layer.
type DenialRecorder interface {
	RecordDenial(layer, reason string)
}

// Middleware attaches the request principal.
type Middleware struct {
	Resolver   *Resolver
	Responder  httpx.Responder
	CookieName string
	Logger     *slog.Logger
	Denials    DenialRecorder
}

// Authenticate requires a valid credential for an active principal.
func (m Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := m.Resolver.Resolve(r.Context(), TokenFromRequest(r, m.CookieName))
		if err != nil {
			m.deny(err)
			m.Responder.Error(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}

// Optional resolves the principal when possible and otherwise continues as
// anonymous. It never fails the request.
func (m Middleware) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := m.Resolver.Resolve(r.Context(), TokenFromRequest(r, m.CookieName))
		if err != nil {
			if !isAuthFailure(err) && m.Logger != nil {
				m.Logger.Warn("optional auth lookup failed", slog.Any("error", err))
			}
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(ContextWithPrincipal(r.Context(), principal)))
	})
}

func (m Middleware) deny(err error) {
	if m.Denials == nil || !isAuthFailure(err) {
		return
	}
	reason := "invalid"
	switch {
	case errors.Is(err, ErrCredentialMissing):
		reason = "missing"
	case errors.Is(err, ErrPrincipalInactive):
		reason = "inactive"
	}
	m.Denials.RecordDenial("authentication", reason)
}

func isAuthFailure(err error) bool {
	return errors.Is(err, httpx.ErrUnauthenticated) || errors.Is(err, httpx.ErrUnauthorized)
}
