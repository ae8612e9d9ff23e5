package handlers

import (
	"foodgram/internal/middleware"
	"foodgram/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserHandler handles HTTP requests for users and subscriptions.
type UserHandler struct {
	authService     *services.AuthService
	userService     *services.UserService
	relationService *services.RelationService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authService *services.AuthService, userService *services.UserService, relationService *services.RelationService) *UserHandler {
	return &UserHandler{
		authService:     authService,
		userService:     userService,
		relationService: relationService,
	}
}

// HandleListUsers returns one page of users.
func (h *UserHandler) HandleListUsers(c *fiber.Ctx) error {
	page, err := h.userService.ListUsers(c.UserContext(), middleware.CurrentUser(c), pageRequest(c))
	if err != nil {
		return respondError(c, err)
	}
	return paginated(c, page)
}

// HandleRegister creates an account.
func (h *UserHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.RegisterInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}

	user, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         user.ID,
		"email":      user.Email,
		"username":   user.Username,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
	})
}

// HandleMe returns the requester's profile.
func (h *UserHandler) HandleMe(c *fiber.Ctx) error {
	return c.JSON(h.userService.Me(middleware.CurrentUser(c)))
}

// HandleSetPassword changes the requester's password.
func (h *UserHandler) HandleSetPassword(c *fiber.Ctx) error {
	var req services.SetPasswordInput
	if err := c.BodyParser(&req); err != nil {
		return invalidBody(c, err)
	}
	if err := h.authService.ChangePassword(c.UserContext(), middleware.CurrentUser(c), req); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleSubscriptions lists the authors the requester follows.
func (h *UserHandler) HandleSubscriptions(c *fiber.Ctx) error {
	limit, err := services.ParseRecipesLimit(c.Query("recipes_limit"))
	if err != nil {
		return respondError(c, err)
	}
	page, err := h.userService.ListSubscriptions(c.UserContext(), middleware.CurrentUser(c), pageRequest(c), limit)
	if err != nil {
		return respondError(c, err)
	}
	return paginated(c, page)
}

// HandleGetUser returns one profile.
func (h *UserHandler) HandleGetUser(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c)
	}
	user, err := h.userService.GetUser(c.UserContext(), middleware.CurrentUser(c), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(user)
}

// HandleSubscribe follows an author.
func (h *UserHandler) HandleSubscribe(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c)
	}
	limit, err := services.ParseRecipesLimit(c.Query("recipes_limit"))
	if err != nil {
		return respondError(c, err)
	}
	view, err := h.relationService.Subscribe(c.UserContext(), middleware.CurrentUser(c), id, limit)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(view)
}

// HandleUnsubscribe stops following an author.
func (h *UserHandler) HandleUnsubscribe(c *fiber.Ctx) error {
	id, ok := paramID(c)
	if !ok {
		return notFound(c)
	}
	if err := h.relationService.Unsubscribe(c.UserContext(), middleware.CurrentUser(c), id); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
