package auth

import (
	"context"
	"errors"
	"strings"
	"time"
)

// Service implements account registration and login on top of a Store.
type Service struct {
	store Store
}

// NewService creates an auth service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Register creates a new user. Username and password are required; email
// is optional. Duplicate usernames (case-insensitive) are rejected.
func (s *Service) Register(ctx context.Context, username, email, password string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	if _, err := s.store.UserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &User{
		Username:     username,
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
		Language:     "ru",
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.store.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// Login verifies credentials and returns the user.
func (s *Service) Login(ctx context.Context, username, password string) (*User, error) {
	u, err := s.store.UserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !u.CheckPassword(password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// ChangePassword verifies the current password before setting a new one.
func (s *Service) ChangePassword(ctx context.Context, u *User, current, next string) error {
	if !u.CheckPassword(current) {
		return ErrInvalidCredentials
	}
	if next == "" {
		return ErrInvalidCredentials
	}
	hash, err := HashPassword(next)
	if err != nil {
		return err
	}
	u.PasswordHash = hash
	return s.store.UpdateUser(ctx, u)
}

// UpdateProfile applies a username/email/language change, rejecting a
// username already held by another account.
func (s *Service) UpdateProfile(ctx context.Context, u *User, username, email, language string) error {
	username = strings.TrimSpace(username)
	if username != "" && !strings.EqualFold(username, u.Username) {
		existing, err := s.store.UserByUsername(ctx, username)
		if err == nil && existing.ID != u.ID {
			return ErrUsernameTaken
		}
		if err != nil && !errors.Is(err, ErrUserNotFound) {
			return err
		}
		u.Username = username
	}
	u.Email = strings.TrimSpace(email)
	if language != "" {
		u.Language = language
	}
	return s.store.UpdateUser(ctx, u)
}

// EnsureAdmin creates the seed admin account if it does not exist yet.
func (s *Service) EnsureAdmin(ctx context.Context, username, email, password string) error {
	if _, err := s.store.UserByUsername(ctx, username); err == nil {
		return nil
	} else if !errors.Is(err, ErrUserNotFound) {
		return err
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}
	return s.store.CreateUser(ctx, &User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Language:     "ru",
		Admin:        true,
		CreatedAt:    time.Now().UTC(),
	})
}
