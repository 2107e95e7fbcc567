package accounts

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

const (
	// DefaultAccessTokenTTL bounds how long a stolen access token is usable
	DefaultAccessTokenTTL = 15 * time.Minute
	// DefaultRefreshTokenTTL is the cryptographic ceiling; revocation
	// happens earlier by deleting the store row
	DefaultRefreshTokenTTL = 7 * 24 * time.Hour
	// DefaultResetTokenTTL keeps password-reset links short-lived
	DefaultResetTokenTTL = 2 * time.Minute
)

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	accessKey  []byte
	refreshKey []byte
	resetKey   []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	resetTTL   time.Duration
	issuer     string
	logger     Logger
}

var _ TokenService = (*TokenServiceImpl)(nil)

// TokenServiceOption customizes a TokenServiceImpl
type TokenServiceOption func(*TokenServiceImpl)

// WithAccessTokenTTL overrides the access token lifetime
func WithAccessTokenTTL(ttl time.Duration) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if ttl > 0 {
			ts.accessTTL = ttl
		}
	}
}

// WithRefreshTokenTTL overrides the refresh token lifetime
func WithRefreshTokenTTL(ttl time.Duration) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if ttl > 0 {
			ts.refreshTTL = ttl
		}
	}
}

// WithResetTokenTTL overrides the reset token lifetime
func WithResetTokenTTL(ttl time.Duration) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if ttl > 0 {
			ts.resetTTL = ttl
		}
	}
}

// WithTokenLogger overrides the logger used by the token service
func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(ts *TokenServiceImpl) {
		if logger != nil {
			ts.logger = logger
		}
	}
}

// NewTokenService creates a new TokenService instance. Each token kind
// gets its own signing secret.
func NewTokenService(accessKey, refreshKey, resetKey []byte, issuer string, opts ...TokenServiceOption) *TokenServiceImpl {
	ts := &TokenServiceImpl{
		accessKey:  accessKey,
		refreshKey: refreshKey,
		resetKey:   resetKey,
		accessTTL:  DefaultAccessTokenTTL,
		refreshTTL: DefaultRefreshTokenTTL,
		resetTTL:   DefaultResetTokenTTL,
		issuer:     issuer,
		logger:     defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(ts)
		}
	}

	return ts
}

// IssueAccessToken signs a short-lived token carrying the user claim
// payload. No side effects.
func (ts *TokenServiceImpl) IssueAccessToken(user *User) (string, error) {
	return ts.sign(user, ts.accessKey, ts.accessTTL)
}

// IssueRefreshToken signs a long-lived token. The caller must persist
// it; an unpersisted refresh token is unusable.
func (ts *TokenServiceImpl) IssueRefreshToken(user *User) (string, error) {
	return ts.sign(user, ts.refreshKey, ts.refreshTTL)
}

// IssueResetToken signs a single-purpose password-reset token.
func (ts *TokenServiceImpl) IssueResetToken(user *User) (string, error) {
	return ts.sign(user, ts.resetKey, ts.resetTTL)
}

// ValidateAccessToken parses and validates an access token
func (ts *TokenServiceImpl) ValidateAccessToken(raw string) (*Claims, error) {
	return ts.validate(raw, ts.accessKey)
}

// ValidateRefreshToken parses and validates a refresh token. Validation
// is pure; the store lookup that enforces revocation happens elsewhere.
func (ts *TokenServiceImpl) ValidateRefreshToken(raw string) (*Claims, error) {
	return ts.validate(raw, ts.refreshKey)
}

// ValidateResetToken parses and validates a password-reset token
func (ts *TokenServiceImpl) ValidateResetToken(raw string) (*Claims, error) {
	return ts.validate(raw, ts.resetKey)
}

func (ts *TokenServiceImpl) sign(user *User, key []byte, ttl time.Duration) (string, error) {
	if user == nil {
		return "", goerrors.New("user must not be nil", goerrors.CategoryInternal)
	}

	now := time.Now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UID:      user.ID.String(),
		Name:     user.Name,
		Email:    user.Email,
		UserRole: user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(key)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

func (ts *TokenServiceImpl) validate(raw string, key []byte) (*Claims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &Claims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return key, nil
	}, parserOptions...)

	if err != nil {
		if goerrors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, goerrors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode).
			WithCode(ErrTokenMalformed.Code)
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	ts.logger.Error("TokenService validate could not decode or validate claims")
	return nil, ErrTokenMalformed
}
