package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"

	"github.com/chainware/supplyledger/internal/api"
	"github.com/chainware/supplyledger/internal/config"
	"github.com/chainware/supplyledger/internal/jobs"
	"github.com/chainware/supplyledger/internal/ledger"
	"github.com/chainware/supplyledger/internal/publisher"
	"github.com/chainware/supplyledger/internal/rabbitmq"
	"github.com/chainware/supplyledger/internal/rate"
	"github.com/chainware/supplyledger/internal/store"
	"github.com/chainware/supplyledger/pkg/eventbus"
	"github.com/chainware/supplyledger/pkg/logger"
	"github.com/chainware/supplyledger/pkg/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Load configuration ---
	cfg := config.Load()

	logger.Init(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer logger.Sync()
	logg := logger.S()
	logg.Info("starting [ledgerd]...")
	logg.Info("connection to DSN: ", utils.MaskDSN(cfg.PostgresDSN))

	// --- Event bus and ledger core ---
	bus := eventbus.New()
	l := ledger.New(
		ledger.WithEventBus(bus),
		ledger.WithLogger(logger.L()),
		ledger.WithPolicy(ledger.Policy{
			ApprovalWindow: cfg.ApprovalWindow,
			PaymentWindow:  cfg.PaymentWindow,
		}),
	)

	// --- Connect to NATS ---
	nc, err := nats.Connect(cfg.NATSURL)
	if err != nil {
		logg.Fatalw("failed to connect to NATS", "error", err)
	}

	// --- Publisher + bus forwarder ---
	pub, err := publisher.New(nc, cfg.NATSSubjBase, cfg.ServiceName)
	if err != nil {
		logg.Fatalw("failed to init publisher", "error", err)
	}
	if err := pub.EnsureStream(cfg.NATSStream); err != nil {
		logg.Fatalw("failed to ensure JetStream stream", "error", err)
	}
	publisher.NewForwarder(pub, cfg.PublishTimeout).Attach(bus)

	// --- Store (Redis + Postgres hybrid) ---
	st, err := store.NewHybrid(cfg.RedisAddr, cfg.RedisDB, cfg.PostgresDSN, store.PGPoolConfig{}, logg.Desugar())
	if err != nil {
		logg.Fatalw("failed to init store", "error", err)
	}
	store.NewRecorder(l, st, logg.Desugar()).Attach(bus)

	// --- RabbitMQ command consumer ---
	consumer, err := rabbitmq.NewConsumer(cfg.AMQPURL, cfg.OrderQueue, cfg.ExpiryQueue, l, logg.Desugar())
	if err != nil {
		logg.Fatalw("failed to connect to RabbitMQ", "error", err)
	}
	if err := consumer.Start(ctx); err != nil {
		logg.Fatalw("failed to start RabbitMQ consumer", "error", err)
	}

	// --- Expiry sweeper ---
	sweeper := jobs.NewExpirySweeper(logg.Desugar(), l, cfg.SweepInterval)
	go sweeper.Start(ctx)

	// --- Rate limiter ---
	rateMgr := rate.NewManager(rate.Config{
		RequestsPerSecond: cfg.RateLimitRPS,
		Burst:             cfg.RateLimitBurst,
	})

	// --- Fiber HTTP Server ---
	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	handler := api.NewLedgerHandler(logg.Desugar(), l)
	handler.AttachInvalidation(bus)
	api.RegisterRoutes(app, nc, st, handler, rateMgr)

	go func() {
		logg.Infof("HTTP API listening on %s", cfg.HTTPAddr)
		if err := app.Listen(cfg.HTTPAddr); err != nil {
			logg.Fatalw("fiber.listen_failed", "error", err)
		}
	}()

	logg.Infow("[ledgerd] running",
		"nats", cfg.NATSURL,
		"env", cfg.Env,
		"sweep_interval", cfg.SweepInterval)

	<-ctx.Done()
	logg.Info("shutting down [ledgerd]...")

	sweeper.Stop()
	if err := consumer.Close(); err != nil {
		logg.Warnw("rabbitmq.close_failed", "error", err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logg.Warnw("fiber.shutdown_failed", "error", err)
	}
	if err := nc.Drain(); err != nil {
		logg.Warnw("nats.drain_failed", "error", err)
	}
	if err := st.Close(); err != nil {
		logg.Warnw("store.close_failed", "error", err)
	}
}
