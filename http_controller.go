package accounts

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"

	"github.com/rhoeln/go-accounts/middleware/jwtware"
)

// AuthController handles the session lifecycle routes
type AuthController struct {
	Auth          Authenticator
	Register      *RegisterUserHandler
	InitReset     *InitializePasswordResetHandler
	FinalizeReset *FinalizePasswordResetHandler
	RefreshTTL    time.Duration
	Logger        Logger
}

func NewAuthController(auth Authenticator, register *RegisterUserHandler, initReset *InitializePasswordResetHandler, finalizeReset *FinalizePasswordResetHandler) *AuthController {
	return &AuthController{
		Auth:          auth,
		Register:      register,
		InitReset:     initReset,
		FinalizeReset: finalizeReset,
		RefreshTTL:    DefaultRefreshTokenTTL,
		Logger:        defLogger{},
	}
}

// SignupPayload is the signup request body
type SignupPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will validate the payload
func (p SignupPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Email, validation.Required, validation.Length(6, 100), is.Email),
		validation.Field(&p.Password, validation.Required, validation.Length(6, 100)),
	)
}

func (a *AuthController) SignupPost(c *fiber.Ctx) error {
	payload := new(SignupPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("signup parse payload: ", "error", err)
		return errBadBody(err)
	}

	if err := payload.Validate(); err != nil {
		return errValidation(err)
	}

	user, err := a.Register.Execute(c.UserContext(), RegisterUserMessage{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "user registered successfully",
		"user":    user,
	})
}

// LoginPayload is the login request body
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will validate the payload
func (p LoginPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
		validation.Field(&p.Password, validation.Required),
	)
}

func (a *AuthController) LoginPost(c *fiber.Ctx) error {
	payload := new(LoginPayload)
	if err := c.BodyParser(payload); err != nil {
		a.Logger.Error("login parse payload: ", "error", err)
		return errBadBody(err)
	}

	if err := payload.Validate(); err != nil {
		return errValidation(err)
	}

	pair, err := a.Auth.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	SetRefreshCookie(c, pair.RefreshToken, a.RefreshTTL)

	return c.JSON(fiber.Map{
		"message":      "logged in successfully",
		"access_token": pair.AccessToken,
	})
}

func (a *AuthController) RefreshGet(c *fiber.Ctx) error {
	accessToken, err := a.Auth.Refresh(c.UserContext(), c.Cookies(RefreshCookieName))
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"access_token": accessToken})
}

func (a *AuthController) LogoutPost(c *fiber.Ctx) error {
	raw := c.Cookies(RefreshCookieName)
	if raw == "" {
		// already logged out
		return c.SendStatus(fiber.StatusNoContent)
	}

	if _, err := a.Auth.Logout(c.UserContext(), raw); err != nil {
		return err
	}

	ClearRefreshCookie(c)

	return c.JSON(fiber.Map{"message": "logged out successfully"})
}

// ForgotPasswordPayload is the forgot-password request body
type ForgotPasswordPayload struct {
	Email string `json:"email"`
}

// Validate will validate the payload
func (p ForgotPasswordPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Email, validation.Required, is.Email),
	)
}

func (a *AuthController) ForgotPasswordPost(c *fiber.Ctx) error {
	payload := new(ForgotPasswordPayload)
	if err := c.BodyParser(payload); err != nil {
		return errBadBody(err)
	}

	if err := payload.Validate(); err != nil {
		return errValidation(err)
	}

	err := a.InitReset.Execute(c.UserContext(), InitializePasswordResetMessage{
		Email: payload.Email,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "password reset email sent"})
}

// ResetPasswordPayload is the reset-password request body
type ResetPasswordPayload struct {
	Token    string `json:"token"`
	Password string `json:"new_password"`
}

// Validate will validate the payload
func (p ResetPasswordPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Token, validation.Required),
		validation.Field(&p.Password, validation.Required, validation.Length(6, 100)),
	)
}

func (a *AuthController) ResetPasswordPost(c *fiber.Ctx) error {
	payload := new(ResetPasswordPayload)
	if err := c.BodyParser(payload); err != nil {
		return errBadBody(err)
	}

	if err := payload.Validate(); err != nil {
		return errValidation(err)
	}

	err := a.FinalizeReset.Execute(c.UserContext(), FinalizePasswordResetMessage{
		Token:    payload.Token,
		Password: payload.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "password reset successful"})
}

// UsersController handles user CRUD routes
type UsersController struct {
	Repo   RepositoryManager
	Logger Logger
}

func NewUsersController(repo RepositoryManager) *UsersController {
	return &UsersController{
		Repo:   repo,
		Logger: defLogger{},
	}
}

func (u *UsersController) Index(c *fiber.Ctx) error {
	page := c.QueryInt("page", 1)

	users, err := u.Repo.Users().List(c.UserContext(), page)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to fetch users")
	}

	return c.JSON(users)
}

func (u *UsersController) Show(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	if err := requireSelfOrAdmin(c, id); err != nil {
		return err
	}

	user, err := u.Repo.Users().GetByID(c.UserContext(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUserNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to fetch user")
	}

	return c.JSON(user)
}

// UpdateUserPayload is the profile update request body
type UpdateUserPayload struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Validate will validate the payload
func (p UpdateUserPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&p.Email, validation.Required, validation.Length(6, 100), is.Email),
	)
}

func (u *UsersController) Update(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	if err := requireSelfOrAdmin(c, id); err != nil {
		return err
	}

	payload := new(UpdateUserPayload)
	if err := c.BodyParser(payload); err != nil {
		u.Logger.Error("update user parse payload: ", "error", err)
		return errBadBody(err)
	}

	if err := payload.Validate(); err != nil {
		return errValidation(err)
	}

	user, err := u.Repo.Users().UpdateProfile(c.UserContext(), id, payload.Name, payload.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUserNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user")
	}

	return c.JSON(user)
}

func (u *UsersController) Destroy(c *fiber.Ctx) error {
	id, err := parseUserID(c)
	if err != nil {
		return err
	}

	if err := u.Repo.Users().Delete(c.UserContext(), id); err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUserNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete user")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func parseUserID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, goerrors.New("invalid user id", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}
	return id, nil
}

// requireSelfOrAdmin lets admins through and everyone else only when
// they target their own record.
func requireSelfOrAdmin(c *fiber.Ctx, id uuid.UUID) error {
	claims, ok := jwtware.ClaimsFromContext(c, jwtware.DefaultContextKey)
	if !ok {
		return ErrMissingToken
	}

	if claims.HasRole(RoleAdmin) {
		return nil
	}

	if claims.UserID() != id.String() {
		return ErrForbidden
	}

	return nil
}

func errBadBody(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body").
		WithCode(goerrors.CodeBadRequest)
}

func errValidation(err error) error {
	return goerrors.New(err.Error(), goerrors.CategoryValidation).
		WithCode(goerrors.CodeBadRequest)
}
