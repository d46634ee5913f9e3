package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ecobin/ecobin/pkg/auth"
	"github.com/ecobin/ecobin/pkg/market"
	"github.com/ecobin/ecobin/pkg/rewards"
)

// PG persists ecobin state in Postgres.
type PG struct {
	pool *pgxpool.Pool
}

// NewPG connects and initializes the schema.
func NewPG(ctx context.Context, dsn string) (*PG, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	s := &PG{pool: pool}
	if err := s.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PG) initSchema(ctx context.Context) error {
	schema := `
CREATE TABLE IF NOT EXISTS users (
  id BIGSERIAL PRIMARY KEY,
  username TEXT NOT NULL UNIQUE,
  email TEXT,
  password_hash TEXT NOT NULL,
  points INT NOT NULL DEFAULT 0,
  language TEXT NOT NULL DEFAULT 'ru',
  is_admin BOOLEAN NOT NULL DEFAULT false,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_lower ON users (lower(username));

CREATE TABLE IF NOT EXISTS reward_tokens (
  id BIGSERIAL PRIMARY KEY,
  token TEXT NOT NULL UNIQUE,
  material TEXT NOT NULL,
  points INT NOT NULL,
  created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
  redeemed BOOLEAN NOT NULL DEFAULT false,
  redeemed_at TIMESTAMPTZ,
  redeemed_by BIGINT REFERENCES users(id)
);
CREATE INDEX IF NOT EXISTS idx_reward_tokens_unredeemed ON reward_tokens (created_at DESC) WHERE NOT redeemed;

CREATE TABLE IF NOT EXISTS market_items (
  id BIGSERIAL PRIMARY KEY,
  name TEXT NOT NULL,
  description TEXT,
  price INT NOT NULL DEFAULT 0,
  created_by BIGINT REFERENCES users(id),
  created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// CreateUser inserts the user and fills in its assigned ID.
func (s *PG) CreateUser(ctx context.Context, u *auth.User) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, points, language, is_admin, created_at)
		 VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7) RETURNING id`,
		u.Username, u.Email, u.PasswordHash, u.Points, u.Language, u.Admin, u.CreatedAt,
	).Scan(&u.ID)
}

func scanUser(row pgx.Row) (*auth.User, error) {
	var u auth.User
	var email *string
	err := row.Scan(&u.ID, &u.Username, &email, &u.PasswordHash, &u.Points, &u.Language, &u.Admin, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, auth.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if email != nil {
		u.Email = *email
	}
	return &u, nil
}

const userColumns = `id, username, email, password_hash, points, language, is_admin, created_at`

// UserByID fetches a user by primary key.
func (s *PG) UserByID(ctx context.Context, id int64) (*auth.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// UserByUsername fetches a user case-insensitively.
func (s *PG) UserByUsername(ctx context.Context, username string) (*auth.User, error) {
	return scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username))
}

// UpdateUser saves profile, password, and points changes.
func (s *PG) UpdateUser(ctx context.Context, u *auth.User) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE users SET username = $2, email = NULLIF($3, ''), password_hash = $4,
		 points = $5, language = $6, is_admin = $7 WHERE id = $1`,
		u.ID, u.Username, u.Email, u.PasswordHash, u.Points, u.Language, u.Admin)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return auth.ErrUserNotFound
	}
	return nil
}

// CreateToken inserts the token and fills in its assigned ID.
func (s *PG) CreateToken(ctx context.Context, t *rewards.Token) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO reward_tokens (token, material, points, created_at)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		t.Value, string(t.Material), t.Points, t.CreatedAt,
	).Scan(&t.ID)
}

func scanToken(row pgx.Row) (*rewards.Token, error) {
	var t rewards.Token
	var material string
	var redeemedBy *int64
	err := row.Scan(&t.ID, &t.Value, &material, &t.Points, &t.CreatedAt, &t.Redeemed, &t.RedeemedAt, &redeemedBy)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, rewards.ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	t.Material = rewards.Material(material)
	if redeemedBy != nil {
		t.RedeemedBy = *redeemedBy
	}
	return &t, nil
}

const tokenColumns = `id, token, material, points, created_at, redeemed, redeemed_at, redeemed_by`

// TokenByValue fetches a token by its opaque value.
func (s *PG) TokenByValue(ctx context.Context, value string) (*rewards.Token, error) {
	return scanToken(s.pool.QueryRow(ctx,
		`SELECT `+tokenColumns+` FROM reward_tokens WHERE token = $1`, value))
}

// RedeemToken marks the token redeemed and credits the user in one
// transaction.
func (s *PG) RedeemToken(ctx context.Context, value string, userID int64, at time.Time) (*rewards.Token, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	t, err := scanToken(tx.QueryRow(ctx,
		`SELECT `+tokenColumns+` FROM reward_tokens WHERE token = $1 FOR UPDATE`, value))
	if err != nil {
		return nil, err
	}
	if t.Redeemed {
		return nil, rewards.ErrAlreadyRedeemed
	}

	if _, err := tx.Exec(ctx,
		`UPDATE reward_tokens SET redeemed = true, redeemed_at = $2, redeemed_by = $3 WHERE token = $1`,
		value, at, userID); err != nil {
		return nil, err
	}
	tag, err := tx.Exec(ctx, `UPDATE users SET points = points + $2 WHERE id = $1`, userID, t.Points)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, auth.ErrUserNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	t.Redeemed = true
	t.RedeemedAt = &at
	t.RedeemedBy = userID
	return t, nil
}

// UnredeemedTokens returns up to limit unredeemed tokens, newest first.
func (s *PG) UnredeemedTokens(ctx context.Context, limit int) ([]rewards.Token, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tokenColumns+` FROM reward_tokens WHERE NOT redeemed
		 ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []rewards.Token
	for rows.Next() {
		t, err := scanToken(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

// CreateItem inserts the item and fills in its assigned ID.
func (s *PG) CreateItem(ctx context.Context, item *market.Item) error {
	return s.pool.QueryRow(ctx,
		`INSERT INTO market_items (name, description, price, created_by, created_at)
		 VALUES ($1, NULLIF($2, ''), $3, NULLIF($4, 0), $5) RETURNING id`,
		item.Name, item.Description, item.Price, item.CreatedBy, item.CreatedAt,
	).Scan(&item.ID)
}

// ListItems returns items newest first.
func (s *PG) ListItems(ctx context.Context) ([]market.Item, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, description, price, created_by, created_at
		 FROM market_items ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.Item
	for rows.Next() {
		var item market.Item
		var desc *string
		var createdBy *int64
		if err := rows.Scan(&item.ID, &item.Name, &desc, &item.Price, &createdBy, &item.CreatedAt); err != nil {
			return nil, err
		}
		if desc != nil {
			item.Description = *desc
		}
		if createdBy != nil {
			item.CreatedBy = *createdBy
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// Close releases the connection pool.
func (s *PG) Close() {
	s.pool.Close()
}
