package accounts

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"github.com/rhoeln/go-accounts/middleware/jwtware"
)

// ServerConfig carries the knobs the HTTP layer needs
type ServerConfig struct {
	// ClientURL is the single origin allowed to send credentialed
	// cross-site requests
	ClientURL string
	// RateLimitMax caps requests per window on the throttled auth routes
	RateLimitMax int
	// RateLimitWindow is the throttle window
	RateLimitWindow time.Duration
	Logger          Logger
}

// Server wires controllers, guards, and middleware into a fiber app
type Server struct {
	App    *fiber.App
	auth   *AuthController
	users  *UsersController
	tokens TokenService
	cfg    ServerConfig
}

func NewServer(cfg ServerConfig, tokens TokenService, auth *AuthController, users *UsersController) *Server {
	if cfg.Logger == nil {
		cfg.Logger = defLogger{}
	}

	if cfg.RateLimitMax == 0 {
		cfg.RateLimitMax = 5
	}

	if cfg.RateLimitWindow == 0 {
		cfg.RateLimitWindow = time.Minute
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: NewErrorHandler(cfg.Logger),
	})

	srv := &Server{
		App:    app,
		auth:   auth,
		users:  users,
		tokens: tokens,
		cfg:    cfg,
	}

	srv.registerMiddleware()
	srv.registerRoutes()

	return srv
}

func (s *Server) registerMiddleware() {
	s.App.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.ClientURL,
		AllowCredentials: true,
	}))
}

func (s *Server) registerRoutes() {
	// login and reset-password share one counter per client IP
	throttle := limiter.New(limiter.Config{
		Max:        s.cfg.RateLimitMax,
		Expiration: s.cfg.RateLimitWindow,
	})

	guard := jwtware.New(jwtware.Config{
		Validator: s.validateAccessToken,
		ContextEnricher: func(ctx context.Context, claims jwtware.AuthClaims) context.Context {
			if ac, ok := claims.(AuthClaims); ok {
				return WithClaimsContext(ctx, ac)
			}
			return ctx
		},
	})

	s.App.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	auth := s.App.Group("/auth")
	auth.Post("/signup", s.auth.SignupPost)
	auth.Post("/login", throttle, s.auth.LoginPost)
	auth.Post("/logout", guard, s.auth.LogoutPost)
	auth.Get("/refresh-token", s.auth.RefreshGet)
	auth.Post("/forgot-password", s.auth.ForgotPasswordPost)
	auth.Post("/reset-password", throttle, s.auth.ResetPasswordPost)

	users := s.App.Group("/users", guard)
	users.Get("/", jwtware.RequireRole(RoleAdmin), s.users.Index)
	users.Get("/:id", s.users.Show)
	users.Put("/:id", s.users.Update)
	users.Delete("/:id", jwtware.RequireRole(RoleAdmin), s.users.Destroy)
}

func (s *Server) validateAccessToken(raw string) (jwtware.AuthClaims, error) {
	claims, err := s.tokens.ValidateAccessToken(raw)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Listen starts serving on the given address, blocking until shutdown
func (s *Server) Listen(addr string) error {
	return s.App.Listen(addr)
}

// Shutdown drains in-flight requests and stops the listener
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}
