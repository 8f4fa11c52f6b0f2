package bank

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Glenferdinza/sporton/internal/delivery/http/handler"
	bankuc "github.com/Glenferdinza/sporton/internal/usecase/bank"
)

type Handler struct {
	uc *bankuc.Usecase
}

func New(uc *bankuc.Usecase) *Handler {
	return &Handler{uc: uc}
}

func (h *Handler) Create(c *fiber.Ctx) error {
	var in bankuc.CreateInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	out, err := h.uc.Create(c.UserContext(), in)
	return writeOne(c, out, err, fiber.StatusCreated)
}

func (h *Handler) List(c *fiber.Ctx) error {
	out, err := h.uc.List(c.UserContext())
	if err != nil {
		return mapErr(err)
	}
	return c.JSON(out)
}

func (h *Handler) GetByID(c *fiber.Ctx) error {
	out, err := h.uc.GetByID(c.UserContext(), c.Params("id"))
	return writeOne(c, out, err, fiber.StatusOK)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	var in bankuc.UpdateInput
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	out, err := h.uc.Update(c.UserContext(), c.Params("id"), in)
	return writeOne(c, out, err, fiber.StatusOK)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return mapErr(err)
	}
	return handler.Deleted(c, "bank")
}

func writeOne(c *fiber.Ctx, out *bankuc.Bank, err error, okStatus int) error {
	if err != nil {
		return mapErr(err)
	}
	return c.Status(okStatus).JSON(out)
}

func mapErr(err error) error {
	switch {
	case errors.Is(err, bankuc.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, "bankName, accountName and a numeric accountNumber are required")
	case errors.Is(err, bankuc.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	default:
		return err
	}
}
