package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"

	"github.com/fairyhunter13/storefront/internal/config"
	"github.com/fairyhunter13/storefront/internal/handler"
	"github.com/fairyhunter13/storefront/internal/messaging"
	"github.com/fairyhunter13/storefront/internal/middleware"
	"github.com/fairyhunter13/storefront/internal/repository"
	"github.com/fairyhunter13/storefront/internal/service"
	"github.com/fairyhunter13/storefront/internal/telemetry"
	"github.com/fairyhunter13/storefront/internal/validator"
	"github.com/fairyhunter13/storefront/pkg/database"
)

func main() {
	// Load configuration first
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	initLogger(cfg)

	ctx := context.Background()

	shutdownTracer, err := telemetry.InitTracerProvider(ctx, cfg.Telemetry.OTLPEndpoint,
		cfg.Telemetry.ServiceName, cfg.Telemetry.ServiceVersion)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracing")
	}
	metricsHandler, shutdownMeter, err := telemetry.InitMeterProvider(cfg.Telemetry.ServiceName, cfg.Telemetry.ServiceVersion)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}
	checkoutMetrics, err := telemetry.NewCheckoutMetrics(otel.GetMeterProvider())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register checkout metrics")
	}

	if cfg.DB.AutoMigrate {
		if err := database.MigrateUp(cfg.DB.URL()); err != nil {
			log.Fatal().Err(err).Msg("failed to apply migrations")
		}
	}

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), 5)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	app := fiber.New(fiber.Config{
		AppName:      "Storefront",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())

	validate := validator.New()

	productRepo := repository.NewProductRepository(pool)
	cartRepo := repository.NewCartRepository(pool)
	couponRepo := repository.NewUserCouponRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)

	membershipService := service.NewMembershipService(pool, orderRepo, couponRepo)

	deps := service.CheckoutDeps{
		Products:        productRepo,
		Carts:           cartRepo,
		Coupons:         couponRepo,
		Orders:          orderRepo,
		Ledger:          membershipService,
		Recorder:        checkoutMetrics,
		BaseShippingFee: cfg.Shop.BaseShippingFee,
	}

	var producer *messaging.Producer
	if cfg.Kafka.Enabled() {
		producer = messaging.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic)
		deps.Publisher = producer
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.OrderTopic).Msg("order events enabled")
	}

	checkoutService := service.NewCheckoutService(pool, deps)

	handler.Register(app, handler.Handlers{
		Health:     handler.NewHealthHandler(pool, cfg.Telemetry.ServiceVersion),
		Products:   handler.NewProductHandler(service.NewProductService(productRepo), validate),
		Cart:       handler.NewCartHandler(service.NewCartService(pool, productRepo, cartRepo, cfg.Shop.BaseShippingFee), validate),
		Checkout:   handler.NewCheckoutHandler(checkoutService, validate),
		Orders:     handler.NewOrderHandler(service.NewOrderService(orderRepo)),
		Membership: handler.NewMembershipHandler(membershipService),
	}, middleware.Auth([]byte(cfg.Auth.JWTSecret)))

	app.Get("/metrics", adaptor.HTTPHandler(metricsHandler))

	// Start server with graceful shutdown
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := app.Listen(":" + cfg.Server.Port); err != nil {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
	log.Info().Int("timeout_seconds", cfg.Server.ShutdownTimeout).Msg("shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer shutdownCancel()

	// Shutdown server (waits for in-flight requests)
	log.Info().Msg("waiting for in-flight requests to complete...")
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error during server shutdown")
	}

	// Flush queued order events
	if producer != nil {
		if err := producer.Close(); err != nil {
			log.Error().Err(err).Msg("error closing event producer")
		}
	}

	log.Info().Msg("closing database connections...")
	pool.Close()

	if err := shutdownTracer(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error flushing traces")
	}
	if err := shutdownMeter(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("error shutting down metrics")
	}
	log.Info().Msg("server stopped")
}

// initLogger configures zerolog based on the application configuration.
func initLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		// Human-readable output for development
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
	} else {
		zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	}
}
