package controller

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	"terravista/internal/middleware"
	"terravista/internal/model"
	"terravista/internal/repository"
	"terravista/internal/search"
)

// UsersController exposes user management endpoints
type UsersController struct {
	users *repository.UsersRepository
}

// NewUsersController creates the users controller
func NewUsersController(users *repository.UsersRepository) *UsersController {
	return &UsersController{users: users}
}

// RegisterRoutes mounts the user endpoints. The caller wraps the group
// with the authorization gate; admin-only handlers get their own gate.
func (uc *UsersController) RegisterRoutes(r fiber.Router, adminGate fiber.Handler) {
	r.Get("/me", uc.Me)
	r.Get("/", adminGate, uc.List)
	r.Get("/search", adminGate, uc.Search)
	r.Patch("/:id", adminGate, uc.Update)
	r.Delete("/:id", adminGate, uc.Delete)
}

// Me returns the authenticated user's own record
func (uc *UsersController) Me(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return goerrors.New("Please authenticate", goerrors.CategoryAuth).
			WithCode(goerrors.CodeUnauthorized)
	}
	return ok200(c, "User found", user)
}

// List returns a page of users
func (uc *UsersController) List(c *fiber.Ctx) error {
	users, err := uc.users.List(c.UserContext(), queryOptions(c))
	if err != nil {
		return err
	}
	return ok200(c, "Users found", users)
}

// Search runs a free-text query over names and emails
func (uc *UsersController) Search(c *fiber.Ctx) error {
	q := c.Query("q")
	if q == "" {
		return goerrors.New("Missing search query", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	users, err := uc.users.List(c.UserContext(), repository.QueryOptions{Limit: searchCorpusLimit})
	if err != nil {
		return err
	}

	docs := make([]search.Document, 0, len(users))
	byID := make(map[uuid.UUID]*model.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
		docs = append(docs, search.Document{
			ID: user.ID,
			Fields: map[string]any{
				"name":  user.Name,
				"email": user.Email,
			},
		})
	}

	ids, err := search.Query(docs, q)
	if err != nil {
		return err
	}

	matches := make([]*model.User, 0, len(ids))
	for _, id := range ids {
		if user, ok := byID[id]; ok {
			matches = append(matches, user)
		}
	}

	return ok200(c, "Users found", matches)
}

type updateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

func (r updateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Length(1, 128)),
		validation.Field(&r.Email, is.Email),
		validation.Field(&r.Role, validation.In(model.RoleUser, model.RoleAdmin)),
	)
}

// Update applies a partial update to a user
func (uc *UsersController) Update(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	user, err := uc.users.Update(c.UserContext(), id, &repository.UserPatch{
		Name:  req.Name,
		Email: req.Email,
		Role:  req.Role,
	})
	if err != nil {
		return err
	}

	return ok200(c, "User updated", user)
}

// Delete removes a user
func (uc *UsersController) Delete(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}

	if err := uc.users.Delete(c.UserContext(), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}
