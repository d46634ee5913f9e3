package rewards

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Service implements minting and redemption on top of a Store.
type Service struct {
	store Store
}

// NewService creates a rewards service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Mint creates an unredeemed token for the given material.
func (s *Service) Mint(ctx context.Context, material Material) (*Token, error) {
	points, err := PointsFor(material)
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	t := &Token{
		Value:     hex.EncodeToString(id[:]),
		Material:  material,
		Points:    points,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateToken(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// Redeem marks the token used and credits its points to the user.
// The token value is trimmed before lookup.
func (s *Service) Redeem(ctx context.Context, value string, userID int64) (*Token, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, ErrTokenNotFound
	}
	return s.store.RedeemToken(ctx, value, userID, time.Now().UTC())
}

// Lookup returns the token for a value without redeeming it.
func (s *Service) Lookup(ctx context.Context, value string) (*Token, error) {
	return s.store.TokenByValue(ctx, strings.TrimSpace(value))
}

// Recent returns the latest unredeemed tokens, newest first.
func (s *Service) Recent(ctx context.Context, limit int) ([]Token, error) {
	return s.store.UnredeemedTokens(ctx, limit)
}
