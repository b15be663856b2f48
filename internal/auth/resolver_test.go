package auth_test

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contracthub/contracthub/internal/auth"
	"github.com/contracthub/contracthub/internal/platform/httpx"
	"github.com/contracthub/contracthub/internal/rbac"
)

type resolverFixture struct {
	tokens   *auth.TokenManager
	users    *memUsers
	revoked  *auth.RedisRevocationList
	resolver *auth.Resolver
}

func newResolverFixture(t *testing.T) *resolverFixture {
	t.Helper()
	f := &resolverFixture{
		tokens: auth.NewTokenManager(testSecret, "contracthub", time.Hour),
		users: newMemUsers(
			newUser(t, 5, "sam@example.com", rbac.RoleSales, true),
			newUser(t, 6, "buyer@acme.test", rbac.RoleCustomer, true),
			newUser(t, 7, "gone@example.com", rbac.RoleViewer, false),
			newUser(t, 8, "nolink@acme.test", rbac.RoleCustomer, true),
		),
		revoked: newRevocations(t),
	}
	profiles := memProfiles{6: {ID: 42, CompanyName: "Acme", Status: "active"}}
	f.resolver = auth.NewResolver(f.tokens, f.users, profiles, f.revoked)
	return f
}

func (f *resolverFixture) issue(t *testing.T, id int64, role rbac.Role) auth.Token {
	t.Helper()
	tok, err := f.tokens.Issue(id, role)
	require.NoError(t, err)
	return tok
}

func TestResolveMissingCredential(t *testing.T) {
	f := newResolverFixture(t)
	_, err := f.resolver.Resolve(context.Background(), "")
	require.ErrorIs(t, err, auth.ErrCredentialMissing)
	assert.Equal(t, http.StatusUnauthorized, httpx.StatusFor(err))
	assert.Equal(t, "authentication required", err.Error())
}

func TestResolveActivePrincipal(t *testing.T) {
	f := newResolverFixture(t)
	tok := f.issue(t, 5, rbac.RoleSales)

	p, err := f.resolver.Resolve(context.Background(), tok.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(5), p.ID)
	assert.Equal(t, rbac.RoleSales, p.Role)
	assert.True(t, p.Active)
	assert.Equal(t, tok.ID, p.TokenID)
	assert.Nil(t, p.Profile)
}

func TestResolveInactivePrincipal(t *testing.T) {
	f := newResolverFixture(t)
	tok := f.issue(t, 7, rbac.RoleViewer)

	_, err := f.resolver.Resolve(context.Background(), tok.Value)
	require.ErrorIs(t, err, auth.ErrPrincipalInactive)
	assert.Equal(t, "user not found or inactive", err.Error())
	assert.Equal(t, http.StatusUnauthorized, httpx.StatusFor(err))
}

func TestResolveUnknownPrincipal(t *testing.T) {
	f := newResolverFixture(t)
	tok := f.issue(t, 99, rbac.RoleAdmin)

	_, err := f.resolver.Resolve(context.Background(), tok.Value)
	require.ErrorIs(t, err, auth.ErrPrincipalInactive)
}

func TestResolveDeactivatedAfterIssue(t *testing.T) {
	f := newResolverFixture(t)
	tok := f.issue(t, 5, rbac.RoleSales)

	_, err := f.resolver.Resolve(context.Background(), tok.Value)
	require.NoError(t, err)

	f.users.update(5, func(u *auth.User) { u.IsActive = false })

	_, err = f.resolver.Resolve(context.Background(), tok.Value)
	require.ErrorIs(t, err, auth.ErrPrincipalInactive)
}

func TestResolveUsesCurrentRole(t *testing.T) {
	f := newResolverFixture(t)
	tok := f.issue(t, 5, rbac.RoleSales)

	f.users.update(5, func(u *auth.User) { u.Role = rbac.RoleViewer })

	p, err := f.resolver.Resolve(context.Background(), tok.Value)
	require.NoError(t, err)
	assert.Equal(t, rbac.RoleViewer, p.Role)
	assert.False(t, p.Can(rbac.PermCustomerUpdate))
	assert.True(t, p.Can(rbac.PermCustomerRead))
}

func TestResolveRevokedToken(t *testing.T) {
	f := newResolverFixture(t)
	tok := f.issue(t, 5, rbac.RoleSales)
	require.NoError(t, f.revoked.Revoke(context.Background(), tok.ID, tok.ExpiresAt))

	_, err := f.resolver.Resolve(context.Background(), tok.Value)
	require.ErrorIs(t, err, auth.ErrCredentialInvalid)

	other := f.issue(t, 5, rbac.RoleSales)
	_, err = f.resolver.Resolve(context.Background(), other.Value)
	require.NoError(t, err)
}

func TestResolveAttachesCustomerProfile(t *testing.T) {
	f := newResolverFixture(t)

	p, err := f.resolver.Resolve(context.Background(), f.issue(t, 6, rbac.RoleCustomer).Value)
	require.NoError(t, err)
	require.NotNil(t, p.Profile)
	assert.Equal(t, int64(42), p.Profile.ID)
	customerID, ok := p.CustomerID()
	assert.True(t, ok)
	assert.Equal(t, int64(42), customerID)
	assert.False(t, p.IsStaff())

	unlinked, err := f.resolver.Resolve(context.Background(), f.issue(t, 8, rbac.RoleCustomer).Value)
	require.NoError(t, err)
	assert.Nil(t, unlinked.Profile)
}

func TestResolveStoreFailureIsInternal(t *testing.T) {
	f := newResolverFixture(t)
	tok := f.issue(t, 5, rbac.RoleSales)
	f.users.err = errors.New("connection reset")

	_, err := f.resolver.Resolve(context.Background(), tok.Value)
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, httpx.StatusFor(err))
}

func TestTokenFromRequest(t *testing.T) {
	r, _ := http.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer abc")
	r.AddCookie(&http.Cookie{Name: "tok", Value: "cookie"})
	assert.Equal(t, "abc", auth.TokenFromRequest(r, "tok"))

	r.Header.Del("Authorization")
	assert.Equal(t, "cookie", auth.TokenFromRequest(r, "tok"))
	assert.Equal(t, "", auth.TokenFromRequest(r, ""))

	r.Header.Set("Authorization", "Basic xyz")
	assert.Equal(t, "Basic xyz", auth.TokenFromRequest(r, "tok"))
}
