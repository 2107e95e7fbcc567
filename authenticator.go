package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// Auther orchestrates login, refresh, and logout against the credential
// store, the password hasher, and the token service.
type Auther struct {
	repo         RepositoryManager
	tokenService TokenService
	hasher       PasswordAuthenticator
	logger       Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(repo RepositoryManager, tokenService TokenService, hasher PasswordAuthenticator) *Auther {
	return &Auther{
		repo:         repo,
		tokenService: tokenService,
		hasher:       hasher,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// Login verifies credentials and issues a token pair, persisting the
// refresh token. Unknown emails and wrong passwords produce the same
// error so responses cannot be used to enumerate accounts.
func (s *Auther) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	user, err := s.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("Login user lookup error", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user")
	}

	if err := s.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		s.logger.Info("Login password mismatch", "email", email)
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.tokenService.IssueAccessToken(user)
	if err != nil {
		s.logger.Error("Login access token issuance error", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue access token")
	}

	refreshToken, err := s.tokenService.IssueRefreshToken(user)
	if err != nil {
		s.logger.Error("Login refresh token issuance error", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue refresh token")
	}

	if _, err := s.repo.RefreshTokens().Store(ctx, user.ID, refreshToken); err != nil {
		s.logger.Error("Login refresh token persistence error", "error", err)
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to persist refresh token")
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Refresh exchanges a stored, still-valid refresh token for a new
// access token. The refresh token itself is not rotated.
func (s *Auther) Refresh(ctx context.Context, rawRefreshToken string) (string, error) {
	if rawRefreshToken == "" {
		return "", ErrMissingRefreshToken
	}

	// Store presence first: a revoked token must fail even while its
	// signature is still valid.
	record, err := s.repo.RefreshTokens().Find(ctx, rawRefreshToken)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return "", ErrRevokedToken
		}
		s.logger.Error("Refresh token lookup error", "error", err)
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up refresh token")
	}

	claims, err := s.tokenService.ValidateRefreshToken(rawRefreshToken)
	if err != nil {
		s.logger.Info("Refresh token validation failed", "user_id", record.UserID.String(), "error", err)
		return "", err
	}

	user := &User{
		ID:    record.UserID,
		Name:  claims.Name,
		Email: claims.Email,
		Role:  claims.UserRole,
	}

	accessToken, err := s.tokenService.IssueAccessToken(user)
	if err != nil {
		s.logger.Error("Refresh access token issuance error", "error", err)
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue access token")
	}

	return accessToken, nil
}

// Logout revokes a refresh token by deleting its row. Absent tokens are
// not an error; logging out twice succeeds both times. Reports whether
// a token was actually revoked.
func (s *Auther) Logout(ctx context.Context, rawRefreshToken string) (bool, error) {
	if rawRefreshToken == "" {
		return false, nil
	}

	deleted, err := s.repo.RefreshTokens().Delete(ctx, rawRefreshToken)
	if err != nil {
		s.logger.Error("Logout token deletion error", "error", err)
		return false, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to revoke refresh token")
	}

	return deleted, nil
}
