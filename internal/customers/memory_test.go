package customers_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/contracthub/contracthub/internal/auth"
	"github.com/contracthub/contracthub/internal/customers"
	"github.com/contracthub/contracthub/internal/shared"
)

// memRepo mirrors the PostgreSQL repository, including the rule that
// approval metadata is only ever filled, never overwritten.
type memRepo struct {
	mu        sync.Mutex
	nextID    int64
	nextUser  int64
	customers map[int64]*customers.Customer
	emails    map[string]bool
}

func newMemRepo() *memRepo {
	return &memRepo{nextID: 1, nextUser: 100, customers: map[int64]*customers.Customer{}, emails: map[string]bool{}}
}

func (m *memRepo) Get(ctx context.Context, id int64) (*customers.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok {
		return nil, customers.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) FindByUserID(ctx context.Context, userID int64) (*customers.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.UserID != nil && *c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, customers.ErrNotFound
}

func (m *memRepo) List(ctx context.Context, f customers.ListFilter) ([]customers.Customer, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []customers.Customer
	for _, c := range m.customers {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(c.CompanyName), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := len(out)
	if f.Offset >= len(out) {
		return nil, total, nil
	}
	out = out[f.Offset:]
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, total, nil
}

func (m *memRepo) Create(ctx context.Context, c customers.Customer) (*customers.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.nextID
	m.nextID++
	c.CreatedAt = time.Now()
	c.UpdatedAt = c.CreatedAt
	m.customers[c.ID] = &c
	cp := c
	return &cp, nil
}

func (m *memRepo) Update(ctx context.Context, id int64, req customers.UpdateCustomerRequest) (*customers.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok {
		return nil, customers.ErrNotFound
	}
	if req.CompanyName != nil {
		c.CompanyName = *req.CompanyName
	}
	if req.Email != nil {
		c.Email = *req.Email
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[id]; !ok {
		return customers.ErrNotFound
	}
	delete(m.customers, id)
	return nil
}

func (m *memRepo) UpdateStatus(ctx context.Context, id int64, status customers.Status, approverID *int64, at time.Time) (*customers.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[id]
	if !ok {
		return nil, customers.ErrNotFound
	}
	c.Status = status
	if approverID != nil {
		if c.ApprovedBy == nil {
			v := *approverID
			c.ApprovedBy = &v
		}
		if c.ApprovedAt == nil {
			t := at
			c.ApprovedAt = &t
		}
	}
	cp := *c
	return &cp, nil
}

func (m *memRepo) LinkNewUser(ctx context.Context, customerID int64, u auth.User) (*auth.User, *customers.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[customerID]
	if !ok {
		return nil, nil, customers.ErrNotFound
	}
	if c.UserID != nil {
		return nil, nil, customers.ErrAlreadyLinked
	}
	if m.emails[u.Email] {
		return nil, nil, auth.ErrEmailTaken
	}
	m.emails[u.Email] = true
	u.ID = m.nextUser
	m.nextUser++
	id := u.ID
	c.UserID = &id
	cp := *c
	return &u, &cp, nil
}

func (m *memRepo) seed(c customers.Customer) int64 {
	created, _ := m.Create(context.Background(), c)
	return created.ID
}

type auditSpy struct {
	mu   sync.Mutex
	logs []shared.AuditLog
}

func (a *auditSpy) Record(ctx context.Context, log shared.AuditLog) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.logs = append(a.logs, log)
	return nil
}

func (a *auditSpy) actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.logs))
	for _, l := range a.logs {
		out = append(out, l.Action)
	}
	return out
}

var _ customers.Repository = (*memRepo)(nil)
