// Package jwtware guards HTTP routes with bearer access tokens and
// role checks.
package jwtware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
)

var (
	// ErrJWTMissing means no bearer token was presented
	ErrJWTMissing = errors.New("access token required")
	// ErrJWTInvalid covers bad signatures and expired tokens
	ErrJWTInvalid = errors.New("invalid or expired access token")
	// ErrForbidden means the token is fine but the role is not
	ErrForbidden = errors.New("insufficient permissions")
	// ErrUnauthenticated means a role check ran without attached claims
	ErrUnauthenticated = errors.New("not logged in")
)

// AuthClaims is the claim surface the guard needs. It mirrors the
// accounts package claims without importing it.
type AuthClaims interface {
	UserID() string
	Role() string
	HasRole(role string) bool
	IsAtLeast(minRole string) bool
}

// TokenValidator verifies a raw token and returns its claims
type TokenValidator func(raw string) (AuthClaims, error)

// DefaultContextKey is where validated claims land in fiber locals
const DefaultContextKey = "claims"

type Config struct {
	// Filter skips the middleware when it returns true
	Filter func(*fiber.Ctx) bool
	// Validator is required
	Validator TokenValidator
	// ContextKey is the fiber locals key for validated claims
	ContextKey string
	// AuthScheme defaults to "Bearer"
	AuthScheme string
	// RequiredRole demands an exact role match
	RequiredRole string
	// MinimumRole demands at least the given role in the hierarchy
	MinimumRole string
	// ErrorHandler translates guard failures into responses
	ErrorHandler func(*fiber.Ctx, error) error
	// ContextEnricher propagates claims into the standard Go context
	ContextEnricher func(context.Context, AuthClaims) context.Context
}

// New returns a fiber handler enforcing bearer-token authentication and
// optional role authorization. Missing tokens map to 401, everything
// else to 403.
func New(config ...Config) fiber.Handler {
	cfg := configDefault(config...)

	return func(c *fiber.Ctx) error {
		if cfg.Filter != nil && cfg.Filter(c) {
			return c.Next()
		}

		raw, err := TokenFromHeader(c, cfg.AuthScheme)
		if err != nil {
			return cfg.ErrorHandler(c, err)
		}

		claims, err := cfg.Validator(raw)
		if err != nil {
			return cfg.ErrorHandler(c, ErrJWTInvalid)
		}

		if err := checkRoles(claims, cfg); err != nil {
			return cfg.ErrorHandler(c, err)
		}

		c.Locals(cfg.ContextKey, claims)

		if cfg.ContextEnricher != nil {
			c.SetUserContext(cfg.ContextEnricher(c.UserContext(), claims))
		}

		return c.Next()
	}
}

// RequireRole returns a handler enforcing an exact role on claims a
// previous guard attached. ADMIN-only routes use this.
func RequireRole(role string, config ...Config) fiber.Handler {
	cfg := roleConfigDefault(config...)

	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c, cfg.ContextKey)
		if !ok {
			return cfg.ErrorHandler(c, ErrUnauthenticated)
		}

		if !claims.HasRole(role) {
			return cfg.ErrorHandler(c, ErrForbidden)
		}

		return c.Next()
	}
}

// RequireAtLeast returns a handler enforcing a minimum role, so ADMIN
// passes USER-level checks.
func RequireAtLeast(minRole string, config ...Config) fiber.Handler {
	cfg := roleConfigDefault(config...)

	return func(c *fiber.Ctx) error {
		claims, ok := ClaimsFromContext(c, cfg.ContextKey)
		if !ok {
			return cfg.ErrorHandler(c, ErrUnauthenticated)
		}

		if !claims.IsAtLeast(minRole) {
			return cfg.ErrorHandler(c, ErrForbidden)
		}

		return c.Next()
	}
}

// ClaimsFromContext retrieves claims a guard stored in fiber locals
func ClaimsFromContext(c *fiber.Ctx, key string) (AuthClaims, bool) {
	if key == "" {
		key = DefaultContextKey
	}

	raw := c.Locals(key)
	if raw == nil {
		return nil, false
	}

	claims, ok := raw.(AuthClaims)
	return claims, ok
}

// TokenFromHeader extracts the bearer token from the Authorization header
func TokenFromHeader(c *fiber.Ctx, authScheme string) (string, error) {
	header := c.Get(fiber.HeaderAuthorization)
	if header == "" {
		return "", ErrJWTMissing
	}

	l := len(authScheme)
	if len(header) > l+1 && strings.EqualFold(header[:l], authScheme) && header[l] == ' ' {
		return strings.TrimSpace(header[l:]), nil
	}

	return "", ErrJWTMissing
}

func checkRoles(claims AuthClaims, cfg Config) error {
	if cfg.RequiredRole != "" && !claims.HasRole(cfg.RequiredRole) {
		return ErrForbidden
	}

	if cfg.MinimumRole != "" && !claims.IsAtLeast(cfg.MinimumRole) {
		return ErrForbidden
	}

	return nil
}

func configDefault(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.Validator == nil {
		panic("ACCOUNTS: JWT middleware configuration: Validator is required.")
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	return cfg
}

func roleConfigDefault(config ...Config) (cfg Config) {
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = DefaultContextKey
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	return cfg
}

func defaultErrorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusForbidden
	if errors.Is(err, ErrJWTMissing) || errors.Is(err, ErrUnauthenticated) {
		status = fiber.StatusUnauthorized
	}

	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
