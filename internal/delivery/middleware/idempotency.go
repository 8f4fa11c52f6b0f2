package middleware

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Glenferdinza/sporton/internal/logging"
)

const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderIdempotencyHit = "X-Idempotency-Hit"
)

// IdempotencyStore claims keys before the handler runs. A claimed key with
// status 0 belongs to a request that has not finished yet.
type IdempotencyStore interface {
	// Reserve claims key. When it is already claimed, reserved is false and
	// status/body hold the recorded response, or status is 0 while in flight.
	Reserve(ctx context.Context, key string) (reserved bool, status int, body []byte, err error)
	Complete(ctx context.Context, key string, status int, body []byte) error
	Release(ctx context.Context, key string) error
}

// Idempotency replays the first successful response recorded for an
// Idempotency-Key and answers 409 while that first request is still running.
// Requests without the header pass straight through.
func Idempotency(store IdempotencyStore) fiber.Handler {
	log := logging.L().Named("idempotency")

	return func(c *fiber.Ctx) error {
		key := c.Get(HeaderIdempotencyKey)
		if key == "" {
			return c.Next()
		}
		if len(key) > 255 {
			return fiber.NewError(fiber.StatusBadRequest, "idempotency key too long")
		}
		// keys are scoped to the route so one key cannot replay another endpoint
		scoped := c.Method() + " " + c.Path() + " " + key
		ctx := c.UserContext()

		reserved, status, body, err := store.Reserve(ctx, scoped)
		if err != nil {
			log.Error("idempotency reserve failed", zap.String("key", key), zap.Error(err))
			return fiber.NewError(fiber.StatusInternalServerError, "internal error")
		}
		if !reserved {
			if status == 0 {
				return fiber.NewError(fiber.StatusConflict, "a request with this idempotency key is still in progress")
			}
			log.Debug("idempotency hit", zap.String("key", key))
			c.Set(HeaderIdempotencyHit, "true")
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			return c.Status(status).Send(body)
		}

		completed := false
		defer func() {
			if completed {
				return
			}
			if err := store.Release(context.WithoutCancel(ctx), scoped); err != nil {
				log.Error("idempotency release failed", zap.String("key", key), zap.Error(err))
			}
		}()

		if err := c.Next(); err != nil {
			return err
		}

		resStatus := c.Response().StatusCode()
		if resStatus < 200 || resStatus >= 300 {
			return nil
		}
		resBody := append([]byte(nil), c.Response().Body()...)
		if err := store.Complete(ctx, scoped, resStatus, resBody); err != nil {
			log.Error("idempotency save failed", zap.String("key", key), zap.Error(err))
			return nil
		}
		completed = true
		return nil
	}
}
