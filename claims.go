package accounts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AuthClaims represents structured JWT claims attached to a request
type AuthClaims interface {
	Subject() string
	UserID() string
	UserName() string
	UserEmail() string
	Role() string
	HasRole(role string) bool
	IsAtLeast(minRole string) bool
	Expires() time.Time
	IssuedAt() time.Time
}

// Claims is the concrete implementation of AuthClaims. The payload is
// typed on both issuance and verification; no map claims anywhere.
type Claims struct {
	jwt.RegisteredClaims
	UID      string   `json:"uid,omitempty"`
	Name     string   `json:"name,omitempty"`
	Email    string   `json:"email,omitempty"`
	UserRole UserRole `json:"role,omitempty"`
}

// Verify interface compliance
var _ AuthClaims = (*Claims)(nil)

// Subject returns the subject claim
func (c *Claims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID returns the user ID
func (c *Claims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.Subject()
}

// UserName returns the user's display name
func (c *Claims) UserName() string {
	return c.Name
}

// UserEmail returns the user's email
func (c *Claims) UserEmail() string {
	return c.Email
}

// Role returns the user's role
func (c *Claims) Role() string {
	return c.UserRole
}

// HasRole checks if the claims carry the exact role
func (c *Claims) HasRole(role string) bool {
	return c.UserRole == role
}

// IsAtLeast checks if the role is at least the minimum required role
func (c *Claims) IsAtLeast(minRole string) bool {
	return RoleAtLeast(c.UserRole, minRole)
}

// Expires returns the expiration time
func (c *Claims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issued at time
func (c *Claims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
