package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

// mapStore is a minimal Store for service tests.
type mapStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]*User
}

func newMapStore() *mapStore {
	return &mapStore{users: make(map[int64]*User)}
}

func (s *mapStore) CreateUser(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	u.ID = s.nextID
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *mapStore) UserByID(ctx context.Context, id int64) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *mapStore) UserByUsername(ctx context.Context, username string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, username) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrUserNotFound
}

func (s *mapStore) UpdateUser(ctx context.Context, u *User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.ID]; !ok {
		return ErrUserNotFound
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMapStore())

	u, err := svc.Register(ctx, " eco ", "", "secret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.Username != "eco" {
		t.Errorf("username = %q, want trimmed %q", u.Username, "eco")
	}
	if u.Language != "ru" {
		t.Errorf("default language = %q, want ru", u.Language)
	}
	if u.PasswordHash == "secret" || u.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}

	if _, err := svc.Login(ctx, "eco", "secret"); err != nil {
		t.Errorf("Login with valid credentials: %v", err)
	}
	if _, err := svc.Login(ctx, "eco", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login with wrong password = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Login(ctx, "ghost", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Login for unknown user = %v, want ErrInvalidCredentials", err)
	}
}

func TestRegisterRequiresCredentials(t *testing.T) {
	ctx := context.Background()
	svc := NewService(newMapStore())

	if _, err := svc.Register(ctx, "", "", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("empty username error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.Register(ctx, "eco", "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("empty password error = %v, want ErrInvalidCredentials", err)
	}
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	svc := NewService(store)

	u, _ := svc.Register(ctx, "eco", "", "secret")

	if err := svc.ChangePassword(ctx, u, "wrong", "next"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("wrong current password error = %v, want ErrInvalidCredentials", err)
	}
	if err := svc.ChangePassword(ctx, u, "secret", "next"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if _, err := svc.Login(ctx, "eco", "next"); err != nil {
		t.Errorf("Login with new password: %v", err)
	}
}

func TestEnsureAdminIdempotent(t *testing.T) {
	ctx := context.Background()
	store := newMapStore()
	svc := NewService(store)

	if err := svc.EnsureAdmin(ctx, "admin", "admin@example.com", "admin123"); err != nil {
		t.Fatalf("EnsureAdmin: %v", err)
	}
	if err := svc.EnsureAdmin(ctx, "admin", "admin@example.com", "admin123"); err != nil {
		t.Fatalf("EnsureAdmin twice: %v", err)
	}

	u, err := store.UserByUsername(ctx, "admin")
	if err != nil {
		t.Fatalf("admin missing: %v", err)
	}
	if !u.Admin {
		t.Error("seed user must be admin")
	}
	if len(store.users) != 1 {
		t.Errorf("admin created %d times", len(store.users))
	}
}

func TestSessions(t *testing.T) {
	s := NewSessions(50 * time.Millisecond)

	id := s.Create(7)
	sess, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if sess.UserID != 7 {
		t.Errorf("session user = %d, want 7", sess.UserID)
	}

	if _, err := s.Get("unknown"); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("unknown session error = %v, want ErrSessionNotFound", err)
	}

	time.Sleep(60 * time.Millisecond)
	if _, err := s.Get(id); !errors.Is(err, ErrSessionExpired) {
		t.Errorf("expired session error = %v, want ErrSessionExpired", err)
	}
	// Expired sessions are evicted on lookup.
	if _, err := s.Get(id); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("evicted session error = %v, want ErrSessionNotFound", err)
	}

	s.Delete(s.Create(8))
}
