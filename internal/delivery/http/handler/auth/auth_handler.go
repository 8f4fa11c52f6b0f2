package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Glenferdinza/sporton/internal/delivery/middleware"
	authuc "github.com/Glenferdinza/sporton/internal/usecase/auth"
)

type Handler struct {
	login *authuc.AdminLoginUsecase
}

func New(login *authuc.AdminLoginUsecase) *Handler {
	return &Handler{login: login}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login answers 401 for both unknown email and wrong password.
func (h *Handler) Login(c *fiber.Ctx) error {
	var body credentials
	if err := c.BodyParser(&body); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}
	if strings.TrimSpace(body.Email) == "" || body.Password == "" {
		return fiber.NewError(fiber.StatusBadRequest, "email and password are required")
	}

	res, err := h.login.Execute(c.UserContext(), body.Email, body.Password)
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(res)
}

// Me echoes the identity RequireAdmin put on the request.
func (h *Handler) Me(c *fiber.Ctx) error {
	id, _ := c.Locals(middleware.LocalAdminID).(string)
	email, _ := c.Locals(middleware.LocalAdminEmail).(string)
	return c.JSON(fiber.Map{"_id": id, "email": email})
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, authuc.ErrInvalidCredentials):
		return fiber.NewError(fiber.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, authuc.ErrInactiveAdmin):
		return fiber.NewError(fiber.StatusForbidden, "admin account is inactive")
	default:
		return err
	}
}
