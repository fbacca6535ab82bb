package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"shiporbit/internal/app"
	"shiporbit/internal/config"
	"shiporbit/internal/geo"
	"shiporbit/internal/handler"
	"shiporbit/internal/processor"
	internalRedis "shiporbit/internal/redis"
	"shiporbit/internal/repository/postgres"
	"shiporbit/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	var err error
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	// Wire dependencies.
	server := wireServer(db, redisClient, nrApp, cfg)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) *http.Server {
	// Initialize Redis stores.
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	cityRepo := postgres.NewCityRepository(db)
	quoteRepo := postgres.NewRouteQuoteRepository(db)
	shipmentRepo := postgres.NewShipmentRepository(db)
	locationRepo := postgres.NewLocationRepository(db)
	historyRepo := postgres.NewStatusHistoryRepository(db)
	invoiceRepo := postgres.NewInvoiceRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	userRepo := postgres.NewUserRepository(db)

	// Initialize external clients.
	stripeClient := processor.NewStripeClient(cfg.Stripe.SecretKey, cfg.Stripe.WebhookSecret)
	geoClient := geo.NewClient(cfg.GeoDB.BaseURL, cfg.GeoDB.APIKey, cfg.GeoDB.APIHost, cacheStore)

	// Initialize services.
	notificationService := service.NewNotificationService()
	quoteService := service.NewQuoteService(cityRepo, quoteRepo)
	shipmentService := service.NewShipmentService(shipmentRepo, locationRepo, quoteRepo, historyRepo, notificationService)
	invoiceService := service.NewInvoiceService(invoiceRepo, shipmentRepo)
	paymentService := service.NewPaymentService(db, shipmentRepo, invoiceRepo, paymentRepo, userRepo, historyRepo, stripeClient, notificationService)

	// Initialize handlers.
	quoteHandler := handler.NewQuoteHandler(quoteService)
	cityHandler := handler.NewCityHandler(geoClient)
	shipmentHandler := handler.NewShipmentHandler(shipmentService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	paymentHandler := handler.NewPaymentHandler(paymentService, stripeClient)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		QuoteHandler:    quoteHandler,
		CityHandler:     cityHandler,
		ShipmentHandler: shipmentHandler,
		InvoiceHandler:  invoiceHandler,
		PaymentHandler:  paymentHandler,
		RedisClient:     redisClient,
		NewRelicApp:     nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}
