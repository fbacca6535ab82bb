package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"shiporbit/internal/handler"
	"shiporbit/internal/middleware"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	QuoteHandler    *handler.QuoteHandler
	CityHandler     *handler.CityHandler
	ShipmentHandler *handler.ShipmentHandler
	InvoiceHandler  *handler.InvoiceHandler
	PaymentHandler  *handler.PaymentHandler
	RedisClient     *redis.Client
	NewRelicApp     *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// API v1 routes.
	v1 := router.Group("/v1")
	{
		// Quote routes.
		quotes := v1.Group("/quotes")
		{
			quotes.POST("", deps.QuoteHandler.GetQuote)
			quotes.GET("/recent", deps.QuoteHandler.ListRecent)
		}

		// Geocoding proxy routes.
		v1.GET("/cities", deps.CityHandler.SearchCities)
		v1.GET("/regions", deps.CityHandler.SearchRegions)

		// Shipment routes (booking wizard and lifecycle).
		shipments := v1.Group("/shipments")
		{
			shipments.POST("", deps.ShipmentHandler.CreateShipment)
			shipments.GET("", deps.ShipmentHandler.ListShipments)
			shipments.GET("/dashboard", deps.ShipmentHandler.Dashboard)
			shipments.GET("/:id", deps.ShipmentHandler.GetShipment)
			shipments.PUT("/:id/appointment", deps.ShipmentHandler.UpdateAppointment)
			shipments.PUT("/:id/finalize", deps.ShipmentHandler.FinalizeShipment)
			shipments.POST("/:id/status", deps.ShipmentHandler.UpdateStatus)
			shipments.GET("/:id/history", deps.ShipmentHandler.GetHistory)
			shipments.DELETE("/:id", deps.ShipmentHandler.DeleteShipment)
		}

		// Invoice routes.
		invoices := v1.Group("/invoices")
		{
			invoices.POST("", deps.InvoiceHandler.CreateInvoice)
			invoices.GET("", deps.InvoiceHandler.ListInvoices)
			invoices.GET("/:id", deps.InvoiceHandler.GetInvoice)
		}

		// Payment routes.
		payments := v1.Group("/payments")
		{
			payments.POST("", deps.PaymentHandler.CreatePayment)
			payments.GET("", deps.PaymentHandler.ListPayments)
			payments.GET("/:intent_id", deps.PaymentHandler.GetPayment)
			payments.POST("/:intent_id/confirm", deps.PaymentHandler.ConfirmPayment)
		}

		// Processor webhooks.
		v1.POST("/webhooks/stripe", deps.PaymentHandler.Webhook)
	}

	return router
}
