package transaction

import (
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Glenferdinza/sporton/internal/delivery/http/handler"
	txuc "github.com/Glenferdinza/sporton/internal/usecase/transaction"
)

type Handler struct {
	uc *txuc.Usecase
}

func New(uc *txuc.Usecase) *Handler {
	return &Handler{uc: uc}
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) Checkout(c *fiber.Ctx) error {
	form, err := handler.ParseForm(c)
	if err != nil {
		return err
	}

	var items []txuc.ItemInput
	if raw := form.String("purchasedItems"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &items); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "purchasedItems must be a JSON array of {productId, qty}")
		}
	}

	proof, closer, err := form.File("paymentProof")
	if err != nil {
		return err
	}
	defer closer.Close()

	out, err := h.uc.Checkout(c.UserContext(), txuc.CheckoutInput{
		CustomerName:    form.String("customerName"),
		CustomerContact: form.String("customerContact"),
		CustomerAddress: form.String("customerAddress"),
		Items:           items,
		PaymentProof:    proof,
	})
	return writeOne(c, out, err, fiber.StatusCreated)
}

func (h *Handler) List(c *fiber.Ctx) error {
	var q txuc.ListQuery
	if s := c.Query("status"); s != "" {
		q.Status = &s
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
	proof, closer, err := form.File("paymentProof")
	if err != nil {
		return err
	}
	defer closer.Close()

	out, err := h.uc.Update(c.UserContext(), c.Params("id"), txuc.UpdateInput{
		CustomerName:    form.Value("customerName"),
		CustomerContact: form.Value("customerContact"),
		CustomerAddress: form.Value("customerAddress"),
		PaymentProof:    proof,
	})
	return writeOne(c, out, err, fiber.StatusOK)
}

func (h *Handler) UpdateStatus(c *fiber.Ctx) error {
	var in updateStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid json")
	}

	out, err := h.uc.UpdateStatus(c.UserContext(), c.Params("id"), in.Status)
	return writeOne(c, out, err, fiber.StatusOK)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	if err := h.uc.Delete(c.UserContext(), c.Params("id")); err != nil {
		return mapErr(err)
	}
	return handler.Deleted(c, "transaction")
}

func writeOne(c *fiber.Ctx, out *txuc.Transaction, err error, okStatus int) error {
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
	case errors.Is(err, txuc.ErrInvalidInput):
		return fiber.NewError(fiber.StatusBadRequest, "customer name, contact, address and at least one item with qty >= 1 are required")
	case errors.Is(err, txuc.ErrProofRequired),
		errors.Is(err, txuc.ErrInvalidStatus),
		errors.Is(err, txuc.ErrProductMissing):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, txuc.ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, txuc.ErrInsufficientStock),
		errors.Is(err, txuc.ErrInvalidTransition),
		errors.Is(err, txuc.ErrNotEditable):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	default:
		return err
	}
}
