package accounts

import (
	"context"
	"fmt"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type InitializePasswordResetMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

type InitializePasswordResetResponse struct {
	ResetToken string
	Success    bool
}

type InitializePasswordResetHandler struct {
	repo         RepositoryManager
	tokenService TokenService
	mailer       Mailer
	clientURL    string
	logger       Logger
}

// NewInitializePasswordResetHandler creates a handler with sane defaults.
func NewInitializePasswordResetHandler(repo RepositoryManager, tokenService TokenService, mailer Mailer, clientURL string) *InitializePasswordResetHandler {
	if mailer == nil {
		mailer = logMailer{logger: defLogger{}}
	}
	return &InitializePasswordResetHandler{
		repo:         repo,
		tokenService: tokenService,
		mailer:       mailer,
		clientURL:    clientURL,
		logger:       defLogger{},
	}
}

// WithLogger overrides the logger used by the handler.
func (h *InitializePasswordResetHandler) WithLogger(logger Logger) *InitializePasswordResetHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUserNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	resetToken, err := h.tokenService.IssueResetToken(user)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue password reset token")
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", h.clientURL, resetToken)
	body := fmt.Sprintf("Click the following link to reset your password: %s", link)

	if err := h.mailer.Send(ctx, user.Email, "Password Reset", body); err != nil {
		h.logger.Error("InitializePasswordReset mail delivery error", "email", user.Email, "error", err)
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to send password reset email")
	}

	if event.OnResponse != nil {
		event.OnResponse(&InitializePasswordResetResponse{
			ResetToken: resetToken,
			Success:    true,
		})
	}

	return nil
}
