package category

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Glenferdinza/sporton/internal/delivery/http/handler"
	categoryuc "github.com/Glenferdinza/sporton/internal/usecase/category"
)

type Handler struct {
	uc *categoryuc.Usecase
}

func New(uc *categoryuc.Usecase) *Handler {
	return &Handler{uc: uc}
}

func (h *Handler) Create(c *fiber.Ctx) error {
	form, err := handler.ParseForm(c)
	if err != nil {
		return err
	}
	img, closer, err := form.File("image")
	if err != nil {
		return err
	}
	defer closer.Close()

	out, err := h.uc.Create(c.UserContext(), categoryuc.CreateInput{
		Name:        form.String("name"),
		Description: form.String("description"),
		Image:       img,
	})
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
	form, err := handler.ParseForm(c)
	if err != nil {
		return err
	}
	img, closer, err := form.File("image")
	if err != nil {
		return err
	}
	defer closer.Close()

	out, err := h.uc.Update(c.UserContext(), c.Params("id"), categoryuc.UpdateInput{
		Name:        form.Value("name"),
		Description: form.Value("description"),
		Image:       img,
	})
	return writeOne(c, out, err, fiber.StatusOK)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return mapErr(err)
	}
	return handler.Deleted(c, "category")
}

func writeOne(c *fiber.Ctx, out *categoryuc.Category, err error, okStatus int) error {
	if err != nil {
		return mapErr(err)
	}
	return c.Status(okStatus).JSON(out)
}

func mapErr(err error) error {
	if fe, ok := handler.UploadError(err); ok {
		return fe
	}
	switch {
	case errors.Is(err, categoryuc.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, "name is required")
	case errors.Is(err, categoryuc.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, categoryuc.ErrInUse):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}
