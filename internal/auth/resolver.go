package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/contracthub/contracthub/internal/platform/httpx"
	"github.com/contracthub/contracthub/internal/rbac"
)

// UserStore is the principal store of record.
type UserStore interface {
	FindByID(ctx context.Context, id int64) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
}

// ProfileFinder looks up the customer profile linked to a user.
type ProfileFinder interface {
	FindProfileByUserID(ctx context.Context, userID int64) (*LinkedProfile, error)
}

// Resolver turns a raw credential into a Principal.
type Resolver struct {
	verifier Verifier
	users    UserStore
	profiles ProfileFinder
	revoked  RevocationList
}

// NewResolver constructs a Resolver. profiles and revoked may be nil.
func NewResolver(verifier Verifier, users UserStore, profiles ProfileFinder, revoked RevocationList) *Resolver {
	return &Resolver{verifier: verifier, users: users, profiles: profiles, revoked: revoked}
}

// Resolve verifies raw and loads the principal's current role and status. It
// performs lookups only and never writes.
func (r *Resolver) Resolve(ctx context.Context, raw string) (*Principal, error) {
	if raw == "" {
		return nil, ErrCredentialMissing
	}
	claims, err := r.verifier.Verify(raw)
	if err != nil {
		if errors.Is(err, httpx.ErrUnauthenticated) || errors.Is(err, httpx.ErrUnauthorized) {
			return nil, err
		}
		return nil, errors.Join(ErrCredentialInvalid, err)
	}
	if r.revoked != nil {
		revoked, err := r.revoked.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, ErrCredentialInvalid
		}
	}

	id, err := claims.PrincipalID()
	if err != nil {
		return nil, errors.Join(ErrCredentialInvalid, err)
	}
	user, err := r.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, httpx.ErrNotFound) {
			return nil, ErrPrincipalInactive
		}
		return nil, fmt.Errorf("auth: load principal %d: %w", id, err)
	}
	if user == nil || !user.IsActive {
		return nil, ErrPrincipalInactive
	}

	principal := principalFromUser(user)
	principal.TokenID = claims.ID
	if claims.ExpiresAt != nil {
		principal.TokenExpiresAt = claims.ExpiresAt.Time
	}

	if principal.Role == rbac.RoleCustomer && r.profiles != nil {
		profile, err := r.profiles.FindProfileByUserID(ctx, principal.ID)
		switch {
		case err == nil:
			principal.Profile = profile
		case errors.Is(err, httpx.ErrNotFound):
		default:
			return nil, fmt.Errorf("auth: load customer profile for %d: %w", principal.ID, err)
		}
	}
	return principal, nil
}
