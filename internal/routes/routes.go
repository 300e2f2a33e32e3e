package routes

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/atlas-pay/atlas_ledger/internal/config"
	"github.com/atlas-pay/atlas_ledger/internal/events"
	kafkaevents "github.com/atlas-pay/atlas_ledger/internal/events/kafka"
	"github.com/atlas-pay/atlas_ledger/internal/journal"
	"github.com/atlas-pay/atlas_ledger/internal/ledger"
	"github.com/atlas-pay/atlas_ledger/internal/middleware"
	"github.com/atlas-pay/atlas_ledger/internal/notification"
	"github.com/atlas-pay/atlas_ledger/internal/transfers"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
		TimeFormat: "15:04:05",
		TimeZone:   "Local",
	}))

	RegisterHealthRoutes(app, d)

	led := ledger.NewLedger()

	var jrnl journal.Journal
	if d.DB != nil {
		jrnl = journal.NewPostgres(d.DB)
	} else {
		jrnl = journal.NewMemory()
	}

	var publisher events.Publisher
	if len(d.Cfg.KafkaBrokers) > 0 {
		publisher = kafkaevents.NewPublisher(d.Cfg.KafkaBrokers, d.Cfg.KafkaTopic)
	}

	notifier := notification.NewLoggerNotifier(d.Logger)
	transferSvc := transfers.NewService(led, notifier, jrnl, publisher, d.Logger)

	accountHandler := ledger.NewHandler(led)
	transferHandler := transfers.NewHandler(transferSvc, jrnl)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterAccountRoutes(api, accountHandler, transferHandler)

	// Transfers are the one unsafe endpoint worth replay protection; guard
	// them with the idempotency middleware when Redis is available.
	transferGroup := api.Group("")
	if d.Cache != nil {
		transferGroup.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}
	RegisterTransferRoutes(transferGroup, transferHandler)

	return nil
}
