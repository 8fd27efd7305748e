package httpapi

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"

	"github.com/classpulse/dashboard-api/internal/auth"
)

// AdminCreateUserRequest is the admin user-creation payload. Unlike signup it
// may assign any role directly.
type AdminCreateUserRequest struct {
	Email    string        `json:"email"`
	Name     string        `json:"name"`
	Password string        `json:"password"`
	Role     auth.UserRole `json:"role"`
}

// Validate will run validation rules
func (r AdminCreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		validation.Field(&r.Role, validation.Required, validation.In(auth.RoleAdmin, auth.RoleStaff, auth.RoleViewer)),
	)
}

func (s *Server) handleAdminListUsers(c *fiber.Ctx) error {
	users, err := s.adminUsers.List(c.UserContext())
	if err != nil {
		return err
	}

	rows := make([]*auth.PublicUser, 0, len(users))
	for i := range users {
		rows = append(rows, users[i].Public())
	}

	return c.JSON(fiber.Map{"data": rows})
}

func (s *Server) handleAdminCreateUser(c *fiber.Ctx) error {
	payload := new(AdminCreateUserRequest)
	if err := c.BodyParser(payload); err != nil {
		return badBody(err)
	}

	if err := payload.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid user payload").
			WithTextCode(auth.TextCodeValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	existing, err := s.adminUsers.FindByEmail(c.UserContext(), payload.Email)
	if err != nil && !goerrors.IsNotFound(err) {
		return err
	}
	if existing != nil {
		return auth.ErrEmailTaken
	}

	hash, err := auth.HashPassword(payload.Password)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	now := time.Now().UTC()
	user, err := s.adminUsers.Insert(c.UserContext(), &auth.User{
		Email:        payload.Email,
		Name:         payload.Name,
		Role:         payload.Role,
		PasswordHash: hash,
		CreatedAt:    &now,
	})
	if err != nil {
		return err
	}

	return c.JSON(user.Public())
}

func (s *Server) handleAdminUpdateUser(c *fiber.Ctx) error {
	id := c.Params("id")

	patch := map[string]any{}
	if err := c.BodyParser(&patch); err != nil {
		return badBody(err)
	}
	if len(patch) == 0 {
		return goerrors.New("empty update payload", goerrors.CategoryValidation).
			WithTextCode(auth.TextCodeValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	// plaintext passwords never pass through to the datastore
	if plain, ok := patch["password"].(string); ok {
		delete(patch, "password")
		hash, err := auth.HashPassword(plain)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}
		patch["password_hash"] = hash
	}

	user, err := s.adminUsers.Update(c.UserContext(), id, patch)
	if err != nil {
		return err
	}

	return c.JSON(user.Public())
}

func (s *Server) handleAdminDeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")

	if err := s.adminUsers.Delete(c.UserContext(), id); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "user deleted"})
}
