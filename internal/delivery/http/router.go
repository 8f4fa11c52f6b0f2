package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	authhandler "github.com/Glenferdinza/sporton/internal/delivery/http/handler/auth"
	bankhandler "github.com/Glenferdinza/sporton/internal/delivery/http/handler/bank"
	categoryhandler "github.com/Glenferdinza/sporton/internal/delivery/http/handler/category"
	producthandler "github.com/Glenferdinza/sporton/internal/delivery/http/handler/product"
	trxhandler "github.com/Glenferdinza/sporton/internal/delivery/http/handler/transaction"
	"github.com/Glenferdinza/sporton/internal/delivery/middleware"
	"github.com/Glenferdinza/sporton/internal/metrics"
	"github.com/Glenferdinza/sporton/internal/storage"
	authuc "github.com/Glenferdinza/sporton/internal/usecase/auth"
	bankuc "github.com/Glenferdinza/sporton/internal/usecase/bank"
	categoryuc "github.com/Glenferdinza/sporton/internal/usecase/category"
	productuc "github.com/Glenferdinza/sporton/internal/usecase/product"
	trxuc "github.com/Glenferdinza/sporton/internal/usecase/transaction"
)

// Deps is everything the routes need. Metrics and Idempotency may be nil.
type Deps struct {
	JWTSecret string
	UploadDir string

	Login        *authuc.AdminLoginUsecase
	Banks        *bankuc.Usecase
	Categories   *categoryuc.Usecase
	Products     *productuc.Usecase
	Transactions *trxuc.Usecase

	Idempotency middleware.IdempotencyStore
	Metrics     *metrics.Collector
}

func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})
	if d.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(d.Metrics.Handler()))
	}
	if d.UploadDir != "" {
		app.Static(storage.PublicPrefix, d.UploadDir)
	}

	api := app.Group("/api")
	admin := middleware.RequireAdmin(middleware.JWTConfig{Secret: d.JWTSecret})

	// Auth
	authH := authhandler.New(d.Login)
	api.Post("/admin/login", authH.Login)
	api.Get("/admin/me", admin, authH.Me)

	// Banks
	bankH := bankhandler.New(d.Banks)
	api.Get("/banks", bankH.List)
	api.Get("/banks/:id", bankH.GetByID)
	api.Post("/banks", admin, bankH.Create)
	api.Put("/banks/:id", admin, bankH.Update)
	api.Delete("/banks/:id", admin, bankH.Delete)

	// Categories
	categoryH := categoryhandler.New(d.Categories)
	api.Get("/categories", categoryH.List)
	api.Get("/categories/:id", categoryH.GetByID)
	api.Post("/categories", admin, categoryH.Create)
	api.Put("/categories/:id", admin, categoryH.Update)
	api.Delete("/categories/:id", admin, categoryH.Delete)

	// Products
	productH := producthandler.New(d.Products)
	api.Get("/products", productH.List)
	api.Get("/products/:id", productH.GetByID)
	api.Post("/products", admin, productH.Create)
	api.Put("/products/:id", admin, productH.Update)
	api.Delete("/products/:id", admin, productH.Delete)

	// Transactions
	trxH := trxhandler.New(d.Transactions)
	checkout := []fiber.Handler{trxH.Checkout}
	if d.Idempotency != nil {
		checkout = append([]fiber.Handler{middleware.Idempotency(d.Idempotency)}, checkout...)
	}
	api.Post("/transactions/checkout", checkout...)
	api.Get("/transactions", admin, trxH.List)
	api.Get("/transactions/:id", trxH.GetByID)
	api.Put("/transactions/:id", admin, trxH.Update)
	api.Put("/transactions/:id/status", admin, trxH.UpdateStatus)
	api.Delete("/transactions/:id", admin, trxH.Delete)
}
