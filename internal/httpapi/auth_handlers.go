package httpapi

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/classpulse/dashboard-api/internal/auth"
	"github.com/classpulse/dashboard-api/internal/middleware"
)

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

type loginResponse struct {
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
	User         *auth.PublicUser `json:"user"`
	ExpiresIn    int64            `json:"expires_in"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func (s *Server) handleSignup(c *fiber.Ctx) error {
	payload := new(auth.SignupInput)
	if err := c.BodyParser(payload); err != nil {
		return badBody(err)
	}

	user, err := s.auther.Signup(c.UserContext(), *payload)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"user_id":    user.ID,
		"email":      user.Email,
		"name":       user.Name,
		"role":       user.Role,
		"created_at": user.CreatedAt,
	})
}

func (s *Server) handleLogin(c *fiber.Ctx) error {
	payload := new(LoginRequest)
	if err := c.BodyParser(payload); err != nil {
		return badBody(err)
	}

	if err := payload.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid login payload").
			WithTextCode(auth.TextCodeValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	pair, user, err := s.auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	return c.JSON(loginResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		User:         user,
		ExpiresIn:    pair.ExpiresIn,
	})
}

func (s *Server) handleRefresh(c *fiber.Ctx) error {
	payload := new(refreshRequest)
	if err := c.BodyParser(payload); err != nil {
		return badBody(err)
	}

	pair, err := s.auther.Refresh(c.UserContext(), payload.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(refreshResponse{
		AccessToken: pair.AccessToken,
		ExpiresIn:   pair.ExpiresIn,
	})
}

func (s *Server) handleCurrentUser(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromCtx(c)
	if !ok {
		return auth.ErrInvalidToken
	}

	user, err := s.auther.CurrentUser(c.UserContext(), claims.UserID())
	if err != nil {
		return err
	}

	return c.JSON(user)
}

// handleLogout acknowledges the client discarding its tokens. Sessions are
// stateless, so there is nothing to revoke server side.
func (s *Server) handleLogout(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"message": "logged out successfully"})
}

func (s *Server) handleChangePassword(c *fiber.Ctx) error {
	claims, ok := middleware.ClaimsFromCtx(c)
	if !ok {
		return auth.ErrInvalidToken
	}

	payload := new(auth.ChangePasswordInput)
	if err := c.BodyParser(payload); err != nil {
		return badBody(err)
	}

	if err := s.auther.ChangePassword(c.UserContext(), claims.UserID(), *payload); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "password updated"})
}

func badBody(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to parse request body").
		WithTextCode(auth.TextCodeValidation).
		WithCode(goerrors.CodeBadRequest)
}
