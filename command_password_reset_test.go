package accounts_test

import (
	"context"
	"strings"
	"testing"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	accounts "github.com/rhoeln/go-accounts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestInitializePasswordResetHandler_Execute(t *testing.T) {
	user := &accounts.User{
		ID:    uuid.New(),
		Name:  "Ann",
		Email: "ann@example.com",
		Role:  accounts.RoleUser,
	}

	t.Run("sends a reset link for a known email", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		tokens := &MockTokenService{}
		mailer := &MockMailer{}

		repo.UsersRepo.On("GetByEmail", mock.Anything, "ann@example.com").Return(user, nil)
		tokens.On("IssueResetToken", user).Return("reset-token", nil)
		mailer.On("Send", mock.Anything, "ann@example.com", "Password Reset",
			mock.MatchedBy(func(body string) bool {
				return strings.Contains(body, "https://app.example.com/reset-password?token=reset-token")
			})).Return(nil)

		handler := accounts.NewInitializePasswordResetHandler(repo, tokens, mailer, "https://app.example.com")

		var resp *accounts.InitializePasswordResetResponse
		err := handler.Execute(context.Background(), accounts.InitializePasswordResetMessage{
			Email: "ann@example.com",
			OnResponse: func(r *accounts.InitializePasswordResetResponse) {
				resp = r
			},
		})

		assert.NoError(t, err)
		assert.NotNil(t, resp)
		assert.True(t, resp.Success)
		assert.Equal(t, "reset-token", resp.ResetToken)

		mailer.AssertExpectations(t)
	})

	t.Run("unknown email is reported", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		tokens := &MockTokenService{}
		mailer := &MockMailer{}

		repo.UsersRepo.On("GetByEmail", mock.Anything, "ghost@example.com").
			Return(nil, repository.NewRecordNotFound())

		handler := accounts.NewInitializePasswordResetHandler(repo, tokens, mailer, "https://app.example.com")

		err := handler.Execute(context.Background(), accounts.InitializePasswordResetMessage{
			Email: "ghost@example.com",
		})

		assert.ErrorIs(t, err, accounts.ErrUserNotFound)
		mailer.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestFinalizePasswordResetHandler_Execute(t *testing.T) {
	userID := uuid.New()

	claims := &accounts.Claims{
		UID:      userID.String(),
		Email:    "ann@example.com",
		UserRole: accounts.RoleUser,
	}

	t.Run("updates the stored hash for a valid token", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		tokens := &MockTokenService{}
		hasher := &MockHasher{}

		tokens.On("ValidateResetToken", "reset-token").Return(claims, nil)
		hasher.On("HashPassword", "new-password").Return("new-hash", nil)
		repo.UsersRepo.On("ResetPasswordTx", mock.Anything, mock.Anything, userID, "new-hash").Return(nil)

		handler := accounts.NewFinalizePasswordResetHandler(repo, tokens, hasher)

		err := handler.Execute(context.Background(), accounts.FinalizePasswordResetMessage{
			Token:    "reset-token",
			Password: "new-password",
		})

		assert.NoError(t, err)
		repo.UsersRepo.AssertExpectations(t)
	})

	t.Run("expired token is rejected", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		tokens := &MockTokenService{}
		hasher := &MockHasher{}

		tokens.On("ValidateResetToken", "reset-token").Return(nil, accounts.ErrTokenExpired)

		handler := accounts.NewFinalizePasswordResetHandler(repo, tokens, hasher)

		err := handler.Execute(context.Background(), accounts.FinalizePasswordResetMessage{
			Token:    "reset-token",
			Password: "new-password",
		})

		assert.ErrorIs(t, err, accounts.ErrTokenExpired)
		assert.True(t, accounts.IsTokenExpiredError(err))
		hasher.AssertNotCalled(t, "HashPassword", mock.Anything)
	})

	t.Run("token with a non-uuid subject is rejected", func(t *testing.T) {
		repo := NewMockRepositoryManager()
		tokens := &MockTokenService{}
		hasher := &MockHasher{}

		tokens.On("ValidateResetToken", "reset-token").
			Return(&accounts.Claims{UID: "not-a-uuid"}, nil)

		handler := accounts.NewFinalizePasswordResetHandler(repo, tokens, hasher)

		err := handler.Execute(context.Background(), accounts.FinalizePasswordResetMessage{
			Token:    "reset-token",
			Password: "new-password",
		})

		assert.Error(t, err)
		repo.UsersRepo.AssertNotCalled(t, "ResetPasswordTx",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}
