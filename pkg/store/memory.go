// Package store provides persistence for ecobin: an in-memory store for
// tests and DSN-less development, and a Postgres store for production.
package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ecobin/ecobin/pkg/auth"
	"github.com/ecobin/ecobin/pkg/market"
	"github.com/ecobin/ecobin/pkg/rewards"
)

// Memory is a mutex-guarded in-memory store implementing the auth,
// rewards, and market store interfaces.
type Memory struct {
	mu sync.Mutex

	nextUserID  int64
	nextTokenID int64
	nextItemID  int64

	users  map[int64]*auth.User
	tokens map[string]*rewards.Token
	items  []market.Item
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:  make(map[int64]*auth.User),
		tokens: make(map[string]*rewards.Token),
	}
}

// CreateUser assigns an ID and stores a copy of the user.
func (m *Memory) CreateUser(ctx context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextUserID++
	u.ID = m.nextUserID
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

// UserByID returns a copy of the user.
func (m *Memory) UserByID(ctx context.Context, id int64) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, auth.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

// UserByUsername looks a user up case-insensitively.
func (m *Memory) UserByUsername(ctx context.Context, username string) (*auth.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, auth.ErrUserNotFound
}

// UpdateUser overwrites the stored user.
func (m *Memory) UpdateUser(ctx context.Context, u *auth.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[u.ID]; !ok {
		return auth.ErrUserNotFound
	}
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

// CreateToken assigns an ID and stores a copy of the token.
func (m *Memory) CreateToken(ctx context.Context, t *rewards.Token) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextTokenID++
	t.ID = m.nextTokenID
	cp := *t
	m.tokens[t.Value] = &cp
	return nil
}

// TokenByValue returns a copy of the token.
func (m *Memory) TokenByValue(ctx context.Context, value string) (*rewards.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tokens[value]
	if !ok {
		return nil, rewards.ErrTokenNotFound
	}
	cp := *t
	return &cp, nil
}

// RedeemToken marks the token redeemed and credits the user atomically
// under the store lock.
func (m *Memory) RedeemToken(ctx context.Context, value string, userID int64, at time.Time) (*rewards.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.tokens[value]
	if !ok {
		return nil, rewards.ErrTokenNotFound
	}
	if t.Redeemed {
		return nil, rewards.ErrAlreadyRedeemed
	}
	u, ok := m.users[userID]
	if !ok {
		return nil, auth.ErrUserNotFound
	}

	t.Redeemed = true
	t.RedeemedAt = &at
	t.RedeemedBy = userID
	u.Points += t.Points

	cp := *t
	return &cp, nil
}

// UnredeemedTokens returns up to limit unredeemed tokens, newest first.
func (m *Memory) UnredeemedTokens(ctx context.Context, limit int) ([]rewards.Token, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []rewards.Token
	for _, t := range m.tokens {
		if !t.Redeemed {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CreateItem assigns an ID and stores the item.
func (m *Memory) CreateItem(ctx context.Context, item *market.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextItemID++
	item.ID = m.nextItemID
	m.items = append(m.items, *item)
	return nil
}

// ListItems returns items newest first.
func (m *Memory) ListItems(ctx context.Context) ([]market.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]market.Item, len(m.items))
	copy(out, m.items)
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Close is a no-op for the memory store.
func (m *Memory) Close() {}
