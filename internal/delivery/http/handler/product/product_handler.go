package product

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/Glenferdinza/sporton/internal/delivery/http/handler"
	productuc "github.com/Glenferdinza/sporton/internal/usecase/product"
)

type Handler struct {
	uc *productuc.Usecase
}

func New(uc *productuc.Usecase) *Handler {
	return &Handler{uc: uc}
}

func (h *Handler) Create(c *fiber.Ctx) error {
	form, err := handler.ParseForm(c)
	if err != nil {
		return err
	}
	stock, err := parseStock(form.Value("stock"))
	if err != nil {
		return err
	}
	img, closer, err := form.File("image")
	if err != nil {
		return err
	}
	defer closer.Close()

	in := productuc.CreateInput{
		Name:        form.String("name"),
		Description: form.String("description"),
		Price:       form.String("price"),
		CategoryID:  form.String("category"),
		Image:       img,
	}
	if stock != nil {
		in.Stock = *stock
	}

	out, err := h.uc.Create(c.UserContext(), in)
	return writeOne(c, out, err, fiber.StatusCreated)
}

func (h *Handler) List(c *fiber.Ctx) error {
	var q productuc.ListQuery
	if cat := c.Query("category"); cat != "" {
		q.CategoryID = &cat
	}

	out, err := h.uc.List(c.UserContext(), q)
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
	stock, err := parseStock(form.Value("stock"))
	if err != nil {
		return err
	}
	img, closer, err := form.File("image")
	if err != nil {
		return err
	}
	defer closer.Close()

	out, err := h.uc.Update(c.UserContext(), c.Params("id"), productuc.UpdateInput{
		Name:        form.Value("name"),
		Description: form.Value("description"),
		Price:       form.Value("price"),
		Stock:       stock,
		CategoryID:  form.Value("category"),
		Image:       img,
	})
	return writeOne(c, out, err, fiber.StatusOK)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return mapErr(err)
	}
	return handler.Deleted(c, "product")
}

func parseStock(v *string) (*int, error) {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(*v))
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, "stock must be a whole number")
	}
	return &n, nil
}

func writeOne(c *fiber.Ctx, out *productuc.Product, err error, okStatus int) error {
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
	case errors.Is(err, productuc.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, "name, a positive price and a non-negative stock are required")
	case errors.Is(err, productuc.ErrInvalidFilter), errors.Is(err, productuc.ErrCategoryMissing):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, productuc.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, productuc.ErrInUse):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}
