package controller

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"terravista/internal/auth"
	"terravista/internal/httpx"
	"terravista/internal/social/google"
)

// AuthController exposes the authentication endpoints
type AuthController struct {
	auth   *auth.Authenticator
	google *google.Provider
	state  *google.StateManager
}

// NewAuthController creates the auth controller
func NewAuthController(authenticator *auth.Authenticator, provider *google.Provider, state *google.StateManager) *AuthController {
	return &AuthController{
		auth:   authenticator,
		google: provider,
		state:  state,
	}
}

// RegisterRoutes mounts the auth endpoints on the given group
func (ac *AuthController) RegisterRoutes(r fiber.Router) {
	r.Post("/register", ac.Register)
	r.Post("/login", ac.Login)
	r.Post("/logout", ac.Logout)
	r.Post("/refresh-token", ac.Refresh)
	r.Post("/forgot-password", ac.ForgotPassword)
	r.Post("/reset-password", ac.ResetPassword)
	r.Post("/send-verification-email", ac.SendVerificationEmail)
	r.Post("/verify-email", ac.VerifyEmail)
	r.Get("/google", ac.GoogleRedirect)
	r.Get("/google/callback", ac.GoogleCallback)
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r registerRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required, validation.Length(1, 128)),
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
	)
}

// Register creates a new account
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if _, err := ac.auth.Register(c.UserContext(), req.Name, req.Email, req.Password); err != nil {
		return err
	}

	return httpx.Created(c, "Register successful", nil)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r loginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// Login authenticates with email and password
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, pair, err := ac.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return httpx.OK(c, "Login successful", fiber.Map{
		"user": fiber.Map{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
		"access_token":  pair.Access.Token,
		"refresh_token": pair.Refresh.Token,
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (r refreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.RefreshToken, validation.Required),
	)
}

// Logout consumes the presented refresh token
func (ac *AuthController) Logout(c *fiber.Ctx) error {
	var req refreshRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := ac.auth.Logout(c.UserContext(), req.RefreshToken); err != nil {
		return err
	}

	return httpx.OK(c, "Logout successful", nil)
}

// Refresh rotates the refresh token and issues a fresh pair
func (ac *AuthController) Refresh(c *fiber.Ctx) error {
	var req refreshRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	pair, err := ac.auth.Refresh(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}

	// the pair goes out bare, unlike the other auth responses
	return c.JSON(fiber.Map{
		"access": fiber.Map{
			"token":   pair.Access.Token,
			"expires": pair.Access.Expires,
		},
		"refresh": fiber.Map{
			"token":   pair.Refresh.Token,
			"expires": pair.Refresh.Expires,
		},
	})
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

func (r forgotPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// ForgotPassword issues a password reset token
func (ac *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var req forgotPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	token, err := ac.auth.ForgotPassword(c.UserContext(), req.Email)
	if err != nil {
		return err
	}

	// delivery is out of band; the token rides the response until a
	// mailer is wired up
	return httpx.OK(c, "Password reset token issued", fiber.Map{
		"reset_token": token,
	})
}

type resetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (r resetPasswordRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 128)),
	)
}

// ResetPassword redeems a reset token and installs a new password
func (ac *AuthController) ResetPassword(c *fiber.Ctx) error {
	var req resetPasswordRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := ac.auth.ResetPassword(c.UserContext(), req.Token, req.Password); err != nil {
		return err
	}

	return httpx.OK(c, "Password reset successful", nil)
}

type sendVerificationRequest struct {
	Email string `json:"email"`
}

func (r sendVerificationRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
	)
}

// SendVerificationEmail issues an email verification token
func (ac *AuthController) SendVerificationEmail(c *fiber.Ctx) error {
	var req sendVerificationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	token, err := ac.auth.SendVerificationEmail(c.UserContext(), req.Email)
	if err != nil {
		return err
	}

	return httpx.OK(c, "Verification email token issued", fiber.Map{
		"verify_token": token,
	})
}

type verifyEmailRequest struct {
	Token string `json:"token"`
}

func (r verifyEmailRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Token, validation.Required),
	)
}

// VerifyEmail redeems a verification token
func (ac *AuthController) VerifyEmail(c *fiber.Ctx) error {
	var req verifyEmailRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	if err := ac.auth.VerifyEmail(c.UserContext(), req.Token); err != nil {
		return err
	}

	return httpx.OK(c, "Email verified", nil)
}

// GoogleRedirect sends the client to the Google consent screen
func (ac *AuthController) GoogleRedirect(c *fiber.Ctx) error {
	state, err := ac.state.Encode()
	if err != nil {
		return err
	}
	return c.Redirect(ac.google.AuthCodeURL(state), fiber.StatusFound)
}

// GoogleCallback completes the OAuth code exchange and signs the user in
func (ac *AuthController) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	if code == "" {
		return goerrors.New("Missing authorization code", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	if state := c.Query("state"); state != "" {
		if err := ac.state.Verify(state); err != nil {
			return goerrors.New("Invalid OAuth state", goerrors.CategoryBadInput).
				WithCode(goerrors.CodeBadRequest)
		}
	}

	token, err := ac.google.Exchange(c.UserContext(), code)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "Authorization code exchange failed").
			WithCode(goerrors.CodeBadRequest)
	}

	profile, err := ac.google.UserInfo(c.UserContext(), token)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "Failed to fetch Google profile").
			WithCode(goerrors.CodeBadRequest)
	}

	_, pair, err := ac.auth.OAuthLogin(c.UserContext(), profile.Name, profile.Email)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"error":   false,
		"message": "Login successful",
		"token":   pair.Access.Token,
	})
}

func parseBody(c *fiber.Ctx, dst interface{ Validate() error }) error {
	if err := c.BodyParser(dst); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "Invalid request body").
			WithCode(goerrors.CodeBadRequest)
	}
	if err := dst.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, err.Error()).
			WithCode(goerrors.CodeBadRequest)
	}
	return nil
}
