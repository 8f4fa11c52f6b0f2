package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.uber.org/zap"

	"github.com/Glenferdinza/sporton/internal/delivery/middleware"
	"github.com/Glenferdinza/sporton/internal/logging"
)

type ServerOptions struct {
	AppName     string
	BodyLimit   int
	CORSOrigins string
	Logger      *logging.Logger
	Recorder    middleware.RequestRecorder
}

// NewFiber builds the fiber app with the shared middleware stack. Every
// error leaves as {"error": message}.
func NewFiber(opts ServerOptions) *fiber.App {
	log := opts.Logger
	if log == nil {
		log = logging.NewNop()
	}
	if opts.CORSOrigins == "" {
		opts.CORSOrigins = "*"
	}

	app := fiber.New(fiber.Config{
		AppName:      opts.AppName,
		BodyLimit:    opts.BodyLimit,
		ErrorHandler: ErrorHandler(log),
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  opts.CORSOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, " + middleware.HeaderIdempotencyKey + ", " + middleware.HeaderRequestID,
		AllowMethods:  "GET,POST,PUT,DELETE,OPTIONS",
		ExposeHeaders: middleware.HeaderRequestID + ", " + middleware.HeaderIdempotencyHit,
	}))
	app.Use(middleware.RequestLog(log.Named("http"), opts.Recorder))

	return app
}

func ErrorHandler(log *logging.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		msg := "internal error"

		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
			msg = fe.Message
		} else {
			log.Error("unhandled error",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}
		return c.Status(code).JSON(fiber.Map{"error": msg})
	}
}
