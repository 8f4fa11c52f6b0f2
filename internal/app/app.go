package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/Glenferdinza/sporton/internal/config"
	"github.com/Glenferdinza/sporton/internal/db"
	httpdelivery "github.com/Glenferdinza/sporton/internal/delivery/http"
	"github.com/Glenferdinza/sporton/internal/logging"
	"github.com/Glenferdinza/sporton/internal/metrics"
	"github.com/Glenferdinza/sporton/internal/notify"
	"github.com/Glenferdinza/sporton/internal/repository/postgres"
	"github.com/Glenferdinza/sporton/internal/storage"
	authuc "github.com/Glenferdinza/sporton/internal/usecase/auth"
	bankuc "github.com/Glenferdinza/sporton/internal/usecase/bank"
	categoryuc "github.com/Glenferdinza/sporton/internal/usecase/category"
	productuc "github.com/Glenferdinza/sporton/internal/usecase/product"
	trxuc "github.com/Glenferdinza/sporton/internal/usecase/transaction"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	cfg  config.Config
	f    *fiber.App
	pool *pgxpool.Pool
	log  *logging.Logger
	txs  *trxuc.Usecase
}

func New(ctx context.Context, cfg config.Config, log *logging.Logger) (*App, error) {
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return nil, fmt.Errorf("db connect failed: %w", err)
	}

	uploads, err := storage.NewLocal(cfg.UploadDir, cfg.UploadMaxBytes())
	if err != nil {
		pool.Close()
		return nil, err
	}

	m := metrics.New()
	notifier := notify.New(cfg.WebhookURL, cfg.WebhookSecret, m)

	f := httpdelivery.NewFiber(httpdelivery.ServerOptions{
		AppName: "sporton",
		// multipart overhead on top of the largest allowed image
		BodyLimit:   int(cfg.UploadMaxBytes()) + 1<<20,
		CORSOrigins: cfg.CORSOrigins,
		Logger:      log,
		Recorder:    m,
	})

	txs := trxuc.New(
		postgres.NewTransactionStoreAdapter(postgres.NewTransactionRepo(pool)),
		uploads,
		trxuc.WithNotifier(notifier),
		trxuc.WithRecorder(m),
	)

	httpdelivery.RegisterRoutes(f, httpdelivery.Deps{
		JWTSecret: cfg.JWTSecret,
		UploadDir: uploads.Root(),
		Login: authuc.NewAdminLoginUsecase(
			postgres.NewAdminFinderAdapter(postgres.NewAdminRepo(pool)),
			cfg.JWTSecret,
			cfg.JWTExpiresMinutes,
		),
		Banks: bankuc.New(postgres.NewBankStoreAdapter(postgres.NewBankRepo(pool))),
		Categories: categoryuc.New(
			postgres.NewCategoryStoreAdapter(postgres.NewCategoryRepo(pool)),
			uploads,
		),
		Products: productuc.New(
			postgres.NewProductStoreAdapter(postgres.NewProductRepo(pool)),
			uploads,
		),
		Transactions: txs,
		Idempotency:  postgres.NewIdempotencyRepo(pool),
		Metrics:      m,
	})

	return &App{cfg: cfg, f: f, pool: pool, log: log, txs: txs}, nil
}

// Run serves until ctx is cancelled, then drains in-flight requests and
// pending status webhooks.
func (a *App) Run(ctx context.Context) error {
	defer a.pool.Close()

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", zap.String("port", a.cfg.Port))
		errCh <- a.f.Listen(":" + a.cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	if err := a.f.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	wctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.txs.Wait(wctx); err != nil {
		a.log.Warn("pending webhooks dropped on shutdown", zap.Error(err))
	}
	return nil
}
