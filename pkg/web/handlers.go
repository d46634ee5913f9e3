package web

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ecobin/ecobin/pkg/auth"
	"github.com/ecobin/ecobin/pkg/market"
	"github.com/ecobin/ecobin/pkg/rewards"
)

// credentialsRequest is the body for register and login.
type credentialsRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

func (s *Server) setSession(c *fiber.Ctx, userID int64) {
	id := s.sessions.Create(userID)
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookie,
		Value:    id,
		HTTPOnly: true,
		Expires:  time.Now().Add(auth.DefaultSessionTTL),
	})
}

func (s *Server) handleRegister(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Password != req.Confirm {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "passwords do not match"})
	}

	u, err := s.accounts.Register(c.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUsernameTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "username already taken"})
		case errors.Is(err, auth.ErrInvalidCredentials):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username and password are required"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "registration failed"})
		}
	}

	s.setSession(c, u.ID)
	return c.Status(fiber.StatusCreated).JSON(u)
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	var req credentialsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	u, err := s.accounts.Login(c.Context(), req.Username, req.Password)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid username or password"})
	}

	s.setSession(c, u.ID)
	return c.JSON(u)
}

func (s *Server) handleLogout(c *fiber.Ctx) error {
	if id := c.Cookies(SessionCookie); id != "" {
		s.sessions.Delete(id)
	}
	c.ClearCookie(SessionCookie)
	return c.JSON(fiber.Map{"ok": true})
}

// greetingFor returns the day-part greeting for a username.
func greetingFor(name string, hour int) string {
	switch {
	case hour >= 5 && hour < 12:
		return fmt.Sprintf("Доброе утро, %s!", name)
	case hour >= 12 && hour < 18:
		return fmt.Sprintf("Добрый день, %s!", name)
	case hour >= 18 && hour < 23:
		return fmt.Sprintf("Добрый вечер, %s!", name)
	default:
		return fmt.Sprintf("Доброй ночи, %s!", name)
	}
}

func (s *Server) handleDashboard(c *fiber.Ctx) error {
	u := currentUser(c)
	return c.JSON(fiber.Map{
		"greeting": greetingFor(u.Username, time.Now().Hour()),
		"points":   u.Points,
		"level":    rewards.LevelFor(u.Points),
		"progress": rewards.ProgressFor(u.Points),
	})
}

func (s *Server) handleScanPage(c *fiber.Ctx) error {
	tokens, err := s.rewards.Recent(c.Context(), 5)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "storage error"})
	}
	return c.JSON(fiber.Map{"available_rewards": tokens})
}

// scanRequest is the body for POST /scan.
type scanRequest struct {
	Token string `json:"token"`
}

func (s *Server) handleScan(c *fiber.Ctx) error {
	u := currentUser(c)

	var req scanRequest
	if err := c.BodyParser(&req); err != nil || req.Token == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "token is required"})
	}

	t, err := s.rewards.Redeem(c.Context(), req.Token, u.ID)
	if err != nil {
		switch {
		case errors.Is(err, rewards.ErrTokenNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "token not found"})
		case errors.Is(err, rewards.ErrAlreadyRedeemed):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "token already redeemed"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "redeem failed"})
		}
	}

	s.events.BroadcastEvent(Event{
		Type:     EventRedeemed,
		Token:    t.Value,
		Material: string(t.Material),
		Points:   t.Points,
		Username: u.Username,
	})

	return c.JSON(fiber.Map{
		"material": t.Material,
		"points":   t.Points,
		"total":    u.Points + t.Points,
	})
}

func (s *Server) handleMarket(c *fiber.Ctx) error {
	items, err := s.store.ListItems(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "storage error"})
	}
	return c.JSON(fiber.Map{"items": items})
}

// marketCreateRequest is the body for POST /market.
type marketCreateRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
}

func (s *Server) handleMarketCreate(c *fiber.Ctx) error {
	u := currentUser(c)
	if !u.Admin {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "admin only"})
	}

	var req marketCreateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	item, ok := market.New(req.Name, req.Description, req.Price, u.ID)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "item name is required"})
	}
	if err := s.store.CreateItem(c.Context(), item); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "storage error"})
	}
	return c.Status(fiber.StatusCreated).JSON(item)
}

func (s *Server) handleProfile(c *fiber.Ctx) error {
	u := currentUser(c)
	return c.JSON(fiber.Map{
		"user":  u,
		"level": rewards.LevelFor(u.Points),
	})
}

// profileRequest is the body for POST /profile.
type profileRequest struct {
	Action          string `json:"action"` // update_info or change_password
	Username        string `json:"username"`
	Email           string `json:"email"`
	Language        string `json:"language"`
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

func (s *Server) handleProfileUpdate(c *fiber.Ctx) error {
	u := currentUser(c)

	var req profileRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	switch req.Action {
	case "update_info":
		err := s.accounts.UpdateProfile(c.Context(), u, req.Username, req.Email, req.Language)
		if errors.Is(err, auth.ErrUsernameTaken) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "username already taken"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "update failed"})
		}
		return c.JSON(u)

	case "change_password":
		if req.NewPassword == "" || req.NewPassword != req.ConfirmPassword {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "new password is invalid"})
		}
		err := s.accounts.ChangePassword(c.Context(), u, req.CurrentPassword, req.NewPassword)
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "current password is incorrect"})
		}
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "update failed"})
		}
		return c.JSON(fiber.Map{"ok": true})

	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown action"})
	}
}

func (s *Server) handleReward(c *fiber.Ctx) error {
	t, err := s.rewards.Lookup(c.Context(), c.Params("token"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "token not found"})
	}
	return c.JSON(t)
}

func (s *Server) handleRedeemReward(c *fiber.Ctx) error {
	u := currentUser(c)

	t, err := s.rewards.Redeem(c.Context(), c.Params("token"), u.ID)
	if err != nil {
		switch {
		case errors.Is(err, rewards.ErrTokenNotFound):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "token not found"})
		case errors.Is(err, rewards.ErrAlreadyRedeemed):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": "token already redeemed"})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "redeem failed"})
		}
	}

	s.events.BroadcastEvent(Event{
		Type:     EventRedeemed,
		Token:    t.Value,
		Material: string(t.Material),
		Points:   t.Points,
		Username: u.Username,
	})

	return c.JSON(fiber.Map{"points": t.Points})
}

func (s *Server) handleRewardQR(c *fiber.Ctx) error {
	t, err := s.rewards.Lookup(c.Context(), c.Params("token"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "token not found"})
	}

	path, err := s.qr.Ensure(t.Value, s.redeemURL(t.Value))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "qr generation failed"})
	}
	return c.SendFile(path)
}

// mintRequest is the body for POST /api/reward.
type mintRequest struct {
	Material string `json:"material"`
}

func (s *Server) handleMintReward(c *fiber.Ctx) error {
	if c.Get("X-API-KEY") != s.cfg.APIToken {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	var req mintRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	material := rewards.Material(strings.ToLower(req.Material))
	t, err := s.rewards.Mint(c.Context(), material)
	if err != nil {
		if errors.Is(err, rewards.ErrUnknownMaterial) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "material must be 'bottle' or 'paper'"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "mint failed"})
	}

	if _, err := s.qr.Ensure(t.Value, s.redeemURL(t.Value)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "qr generation failed"})
	}

	s.events.BroadcastEvent(Event{
		Type:     EventMinted,
		Token:    t.Value,
		Material: string(t.Material),
		Points:   t.Points,
	})

	return c.JSON(fiber.Map{
		"token":      t.Value,
		"material":   t.Material,
		"points":     t.Points,
		"redeem_url": s.redeemURL(t.Value),
		"qr_url":     s.cfg.BaseURL + "/reward/" + t.Value + "/qrcode",
	})
}

func (s *Server) redeemURL(tokenValue string) string {
	return s.cfg.BaseURL + "/reward/" + tokenValue
}
