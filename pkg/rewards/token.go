// Package rewards implements reward tokens: minting, redemption, point
// levels, and QR image generation.
package rewards

import (
	"context"
	"errors"
	"time"
)

// Material is the kind of recyclable a token was minted for.
type Material string

// Accepted materials.
const (
	MaterialBottle Material = "bottle"
	MaterialPaper  Material = "paper"
)

// Points awarded per material.
const (
	PointsBottle = 100
	PointsPaper  = 50
)

// Errors returned by reward operations.
var (
	// ErrTokenNotFound is returned when no token matches a value.
	ErrTokenNotFound = errors.New("reward token not found")
	// ErrAlreadyRedeemed is returned when a token was already used.
	ErrAlreadyRedeemed = errors.New("reward token already redeemed")
	// ErrUnknownMaterial is returned for a material other than bottle or paper.
	ErrUnknownMaterial = errors.New("material must be 'bottle' or 'paper'")
)

// Token is a one-shot reward voucher encoded into a QR code.
type Token struct {
	ID         int64      `json:"id"`
	Value      string     `json:"token"`
	Material   Material   `json:"material"`
	Points     int        `json:"points"`
	CreatedAt  time.Time  `json:"created_at"`
	Redeemed   bool       `json:"redeemed"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
	RedeemedBy int64      `json:"redeemed_by,omitempty"`
}

// Store is the persistence interface for reward tokens. RedeemToken must
// atomically mark the token redeemed and credit its points to the user,
// returning ErrTokenNotFound or ErrAlreadyRedeemed as appropriate.
type Store interface {
	CreateToken(ctx context.Context, t *Token) error
	TokenByValue(ctx context.Context, value string) (*Token, error)
	RedeemToken(ctx context.Context, value string, userID int64, at time.Time) (*Token, error)
	UnredeemedTokens(ctx context.Context, limit int) ([]Token, error)
}

// PointsFor returns the points value for a material.
func PointsFor(m Material) (int, error) {
	switch m {
	case MaterialBottle:
		return PointsBottle, nil
	case MaterialPaper:
		return PointsPaper, nil
	default:
		return 0, ErrUnknownMaterial
	}
}
