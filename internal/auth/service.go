package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/contracthub/contracthub/internal/platform/httpx"
)

// Session is the result of a successful login.
type Session struct {
	Principal *Principal
	Token     Token
}

// Service wraps authentication business rules.
type Service struct {
	repo    Repository
	tokens  *TokenManager
	revoked RevocationList
	now     func() time.Time
}

// NewService constructs a new Service. revoked may be nil.
func NewService(repo Repository, tokens *TokenManager, revoked RevocationList) *Service {
	return &Service{repo: repo, tokens: tokens, revoked: revoked, now: time.Now}
}

// Login validates email/password credentials and issues a token. It is the
// only place that records the last-login timestamp.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("auth: find user: %w", err)
	}
	if !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Role)
	if err != nil {
		return nil, err
	}
	if err := s.repo.TouchLastLogin(ctx, user.ID, s.now()); err != nil {
		return nil, fmt.Errorf("auth: touch last login: %w", err)
	}

	principal := principalFromUser(user)
	principal.TokenID = token.ID
	principal.TokenExpiresAt = token.ExpiresAt
	return &Session{Principal: principal, Token: token}, nil
}

// Logout revokes the principal's current token.
func (s *Service) Logout(ctx context.Context, p *Principal) error {
	if s.revoked == nil || p == nil || p.TokenID == "" {
		return nil
	}
	return s.revoked.Revoke(ctx, p.TokenID, p.TokenExpiresAt)
}

// ChangePassword replaces the principal's password after checking the
// current one.
func (s *Service) ChangePassword(ctx context.Context, principalID int64, current, next string) error {
	user, err := s.repo.FindByID(ctx, principalID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)); err != nil {
		return httpx.Invalid("currentPassword", "Current password is incorrect")
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, principalID, hash)
}

// HashPassword returns the bcrypt hash of password. Passwords longer than
// bcrypt's 72-byte input are a validation error, not an internal one.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if errors.Is(err, bcrypt.ErrPasswordTooLong) {
		return "", httpx.Invalid("password", "Password must be at most 72 bytes")
	}
	if err != nil {
		return "", fmt.Errorf("auth: hash password: %w", err)
	}
	return string(hash), nil
}
