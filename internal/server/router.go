package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yarff/flashing-backend/internal/handlers"
	"github.com/yarff/flashing-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware  *middleware.AuthMiddleware
	FlashingHandler *handlers.FlashingHandler
	CartHandler     *handlers.CartHandler
	CheckoutHandler *handlers.CheckoutHandler
	CatalogHandler  *handlers.CatalogHandler
	AddressHandler  *handlers.AddressHandler
	OrderHandler    *handlers.OrderHandler

	AllowOrigins []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	origins := cfg.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:5173"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	// Public
	router.GET("/healthcheck", handlers.HealthCheck)
	router.POST("/payments/webhook", cfg.CheckoutHandler.PaymentWebhook)

	// Protected
	protected := router.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())

	// Catalog
	protected.GET("/factory", cfg.CatalogHandler.GetFactory)
	protected.GET("/materials", cfg.CatalogHandler.ListMaterials)
	protected.GET("/delivery-methods", cfg.CatalogHandler.ListDeliveryMethods)

	// Flashings
	protected.POST("/flashings", cfg.FlashingHandler.Create)
	protected.GET("/flashings", cfg.FlashingHandler.List)
	protected.GET("/flashings/:id", cfg.FlashingHandler.Get)
	protected.PUT("/flashings/:id/geometry", cfg.FlashingHandler.UpdateGeometry)
	protected.PATCH("/flashings/:id", cfg.FlashingHandler.UpdateOptions)
	protected.DELETE("/flashings/:id", cfg.FlashingHandler.Delete)
	protected.POST("/flashings/:id/specifications", cfg.FlashingHandler.AddSpecification)
	protected.PUT("/specifications/:id", cfg.FlashingHandler.UpdateSpecification)
	protected.DELETE("/specifications/:id", cfg.FlashingHandler.DeleteSpecification)

	// Cart
	protected.GET("/cart", cfg.CartHandler.Get)
	protected.PUT("/cart/address", cfg.CartHandler.SetAddress)
	protected.PUT("/cart/pickup", cfg.CartHandler.SetPickup)
	protected.PUT("/cart/date", cfg.CartHandler.SetDate)
	protected.GET("/cart/earliest-date", cfg.CartHandler.EarliestDate)
	protected.DELETE("/cart/flashings/:id", cfg.CartHandler.RemoveFlashing)

	// Job references and addresses
	protected.GET("/job-references", cfg.AddressHandler.ListJobReferences)
	protected.DELETE("/job-references/:id", cfg.AddressHandler.DeleteJobReference)
	protected.POST("/job-references/:id/addresses", cfg.AddressHandler.AddAddress)
	protected.GET("/addresses/:id/delivery-method", cfg.AddressHandler.BestDeliveryMethod)
	protected.GET("/job-reference-draft", cfg.AddressHandler.GetDraft)
	protected.PATCH("/job-reference-draft", cfg.AddressHandler.UpdateDraft)
	protected.POST("/job-reference-draft/commit", cfg.AddressHandler.CommitDraft)

	// Checkout and orders
	protected.POST("/checkout", cfg.CheckoutHandler.RequestPayment)
	protected.GET("/orders", cfg.OrderHandler.List)
	protected.GET("/orders/:code", cfg.OrderHandler.Get)

	return router
}
