package auth_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/contracthub/contracthub/internal/auth"
	"github.com/contracthub/contracthub/internal/platform/httpx"
	"github.com/contracthub/contracthub/internal/rbac"
	_ "github.com/contracthub/contracthub/testing"
)

const testSecret = "unit-test-secret"

type memUsers struct {
	mu    sync.Mutex
	users map[int64]*auth.User
	err   error
}

func newMemUsers(users ...*auth.User) *memUsers {
	m := &memUsers{users: make(map[int64]*auth.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *memUsers) FindByID(ctx context.Context, id int64) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, httpx.ErrNotFound
}

func (m *memUsers) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		u.LastLoginAt = &at
	}
	return nil
}

func (m *memUsers) UpdatePassword(ctx context.Context, id int64, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return httpx.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (m *memUsers) update(id int64, fn func(*auth.User)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.users[id])
}

type memProfiles map[int64]*auth.LinkedProfile

func (m memProfiles) FindProfileByUserID(ctx context.Context, userID int64) (*auth.LinkedProfile, error) {
	p, ok := m[userID]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return p, nil
}

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func newUser(t *testing.T, id int64, email string, role rbac.Role, active bool) *auth.User {
	t.Helper()
	return &auth.User{
		ID:           id,
		Email:        email,
		Name:         "User " + email,
		PasswordHash: hashed(t, "password123"),
		Role:         role,
		IsActive:     active,
	}
}

func newRevocations(t *testing.T) *auth.RedisRevocationList {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return auth.NewRedisRevocationList(client)
}
