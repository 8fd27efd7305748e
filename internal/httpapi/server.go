// Package httpapi wires the dashboard API surface: authentication endpoints,
// admin passthrough CRUD, and the analytics/messages reads.
package httpapi

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"go.uber.org/zap"

	"github.com/classpulse/dashboard-api/internal/auth"
	"github.com/classpulse/dashboard-api/internal/middleware"
	"github.com/classpulse/dashboard-api/internal/store"
)

const (
	serviceName    = "classpulse-dashboard-api"
	serviceVersion = "1.0.0"
)

// Server owns the fiber app and the handler dependencies.
type Server struct {
	app    *fiber.App
	logger *zap.Logger

	auther *auth.Authenticator
	tokens auth.TokenService

	users      *store.Users // anonymous-key store, normal operations
	adminUsers *store.Users // service-key store, privileged passthrough
	data       *store.Client
}

// Options collects the collaborators the server needs. Everything is
// constructed at startup and injected; the server holds no global state.
type Options struct {
	Logger      *zap.Logger
	Auther      *auth.Authenticator
	Tokens      auth.TokenService
	Users       *store.Users
	AdminUsers  *store.Users
	Data        *store.Client
	CORSOrigins []string
	AllowList   middleware.AllowList
}

// New builds the fiber app with the access gate, CORS, and all routes mounted.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		logger:     logger,
		auther:     opts.Auther,
		tokens:     opts.Tokens,
		users:      opts.Users,
		adminUsers: opts.AdminUsers,
		data:       opts.Data,
	}

	app := fiber.New(fiber.Config{
		AppName:      serviceName,
		ErrorHandler: NewErrorHandler(logger),
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(opts.CORSOrigins, ","),
		AllowCredentials: true,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
	}))

	gate := middleware.NewGate(opts.Tokens, opts.AllowList, logger)
	app.Use(gate.Handler())

	s.app = app
	s.registerRoutes()

	return s
}

// App exposes the fiber app for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen blocks serving HTTP on addr.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) registerRoutes() {
	s.app.Get("/health", s.handleHealth)

	authGroup := s.app.Group("/auth")
	authGroup.Post("/signup", s.handleSignup)
	authGroup.Post("/login", s.handleLogin)
	authGroup.Post("/refresh", s.handleRefresh)
	authGroup.Get("/me", s.handleCurrentUser)
	authGroup.Post("/logout", s.handleLogout)
	authGroup.Post("/password", s.handleChangePassword)

	admin := s.app.Group("/admin", middleware.RequireRole(auth.RoleAdmin))
	admin.Get("/users", s.handleAdminListUsers)
	admin.Post("/users", s.handleAdminCreateUser)
	admin.Put("/users/:id", s.handleAdminUpdateUser)
	admin.Delete("/users/:id", s.handleAdminDeleteUser)

	analytics := s.app.Group("/analytics")
	analytics.Get("/overview", s.handleAnalyticsOverview)
	analytics.Get("/daily", s.handleAnalyticsDaily)
	analytics.Get("/messages", s.handleAnalyticsMessages)

	messages := s.app.Group("/messages")
	messages.Get("/", s.handleListMessages)
	messages.Get("/:id", s.handleGetMessage)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}
