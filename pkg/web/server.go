// Package web provides the ecobin HTTP API and live event feed.
package web

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/ecobin/ecobin/pkg/auth"
	"github.com/ecobin/ecobin/pkg/market"
	"github.com/ecobin/ecobin/pkg/rewards"
)

// SessionCookie is the login session cookie name.
const SessionCookie = "ecobin_session"

// Store is the combined persistence surface the server needs.
type Store interface {
	auth.Store
	rewards.Store
	market.Store
}

// Config holds server settings.
type Config struct {
	Addr     string
	APIToken string // shared key for POST /api/reward
	BaseURL  string // external base URL for redeem/qr links
	QRDir    string
}

// Server is the ecobin backend server.
type Server struct {
	app *fiber.App
	cfg Config

	store    Store
	accounts *auth.Service
	sessions *auth.Sessions
	rewards  *rewards.Service
	qr       *rewards.QRCache
	events   *Hub
}

// NewServer wires the API routes over the given store.
func NewServer(cfg Config, store Store) (*Server, error) {
	qr, err := rewards.NewQRCache(cfg.QRDir)
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:      cfg,
		store:    store,
		accounts: auth.NewService(store),
		sessions: auth.NewSessions(0),
		rewards:  rewards.NewService(store),
		qr:       qr,
		events:   NewHub(),
	}

	app := fiber.New(fiber.Config{
		AppName:               "EcoBin",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())

	app.Post("/register", s.handleRegister)
	app.Post("/login", s.handleLogin)
	app.Post("/logout", s.requireUser, s.handleLogout)

	app.Get("/dashboard", s.requireUser, s.handleDashboard)

	app.Get("/scan", s.requireUser, s.handleScanPage)
	app.Post("/scan", s.requireUser, s.handleScan)

	app.Get("/market", s.requireUser, s.handleMarket)
	app.Post("/market", s.requireUser, s.handleMarketCreate)

	app.Get("/profile", s.requireUser, s.handleProfile)
	app.Post("/profile", s.requireUser, s.handleProfileUpdate)

	app.Get("/reward/:token", s.handleReward)
	app.Post("/reward/:token/redeem", s.requireUser, s.handleRedeemReward)
	app.Get("/reward/:token/qrcode", s.handleRewardQR)

	app.Post("/api/reward", s.handleMintReward)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/events", websocket.New(s.handleEventsWS))

	s.app = app
	return s, nil
}

// Start runs the event hub and serves until Shutdown.
func (s *Server) Start() error {
	go s.events.Run()
	return s.app.Listen(s.cfg.Addr)
}

// Shutdown stops the event hub and the server gracefully.
func (s *Server) Shutdown() error {
	s.events.Stop()
	return s.app.Shutdown()
}

// App exposes the fiber app for handler tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// EnsureAdmin seeds the admin account at startup.
func (s *Server) EnsureAdmin(ctx context.Context, username, email, password string) error {
	return s.accounts.EnsureAdmin(ctx, username, email, password)
}

// requireUser resolves the session cookie into a user and stores it in
// the request locals.
func (s *Server) requireUser(c *fiber.Ctx) error {
	id := c.Cookies(SessionCookie)
	if id == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
	}
	sess, err := s.sessions.Get(id)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
	}
	u, err := s.store.UserByID(c.Context(), sess.UserID)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "login required"})
	}
	c.Locals("user", u)
	return c.Next()
}

func currentUser(c *fiber.Ctx) *auth.User {
	u, _ := c.Locals("user").(*auth.User)
	return u
}

func (s *Server) handleEventsWS(conn *websocket.Conn) {
	client := newClient(s.events, conn)
	client.run()
}
