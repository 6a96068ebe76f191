package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/yarff/flashing-backend/internal/clients/geocode"
	"github.com/yarff/flashing-backend/internal/clients/stripe"
	"github.com/yarff/flashing-backend/internal/db"
	"github.com/yarff/flashing-backend/internal/handlers"
	"github.com/yarff/flashing-backend/internal/logger"
	"github.com/yarff/flashing-backend/internal/middleware"
	"github.com/yarff/flashing-backend/internal/repos"
	"github.com/yarff/flashing-backend/internal/seed"
	"github.com/yarff/flashing-backend/internal/server"
	"github.com/yarff/flashing-backend/internal/services"
	"github.com/yarff/flashing-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	successURL := utils.GetEnv("CHECKOUT_SUCCESS_URL", "http://localhost:3000/checkout/success", log)
	cancelURL := utils.GetEnv("CHECKOUT_CANCEL_URL", "http://localhost:3000/checkout/cancel", log)
	seedPath := utils.GetEnv("SEED_FILE", "seed.yaml", log)
	allowOrigins := utils.GetEnv("CORS_ALLOW_ORIGINS", "", log)

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Fatal("Postgres init failed", "error", err)
	}
	if err = postgresService.AutoMigrateAll(); err != nil {
		log.Fatal("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Seed catalog
	if err := seed.Apply(context.Background(), thePG, log, seedPath); err != nil {
		log.Warn("Seed catalog failed", "error", err)
	}

	// Repos
	log.Info("Setting up Repos from main...")
	clientRepo := repos.NewClientRepo(thePG, log)
	factoryRepo := repos.NewFactoryRepo(thePG, log)
	materialRepo := repos.NewMaterialRepo(thePG, log)
	methodRepo := repos.NewDeliveryMethodRepo(thePG, log)
	jobRefRepo := repos.NewJobReferenceRepo(thePG, log)
	flashingRepo := repos.NewFlashingRepo(thePG, log)
	cartRepo := repos.NewCartRepo(thePG, log)
	orderRepo := repos.NewOrderRepo(thePG, log)

	// External clients
	log.Info("Setting up external clients from main...")
	stripeClient, err := stripe.NewClient(log)
	if err != nil {
		log.Error("Could not init Stripe client", "error", err)
		os.Exit(1)
	}
	geocodeClient, err := geocode.NewClient(log)
	if err != nil {
		log.Error("Could not init geocode client", "error", err)
		os.Exit(1)
	}

	// Services
	log.Info("Setting up Services from main...")
	authService := services.NewAuthService(thePG, log, clientRepo, jwtSecretKey)
	catalogService := services.NewCatalogService(thePG, log, factoryRepo, materialRepo, methodRepo)
	flashingService := services.NewFlashingService(thePG, log, flashingRepo, cartRepo)
	cartService := services.NewCartService(thePG, log, cartRepo, clientRepo, factoryRepo, jobRefRepo, methodRepo, flashingRepo)
	addressService := services.NewAddressService(thePG, log, jobRefRepo, clientRepo, factoryRepo, methodRepo, geocodeClient)
	checkoutService := services.NewCheckoutService(
		thePG,
		log,
		cartRepo,
		clientRepo,
		factoryRepo,
		jobRefRepo,
		methodRepo,
		materialRepo,
		flashingRepo,
		orderRepo,
		cartService,
		stripeClient,
		successURL,
		cancelURL,
	)
	orderService := services.NewOrderService(thePG, log, orderRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	flashingHandler := handlers.NewFlashingHandler(log, flashingService)
	cartHandler := handlers.NewCartHandler(log, cartService)
	checkoutHandler := handlers.NewCheckoutHandler(log, checkoutService)
	catalogHandler := handlers.NewCatalogHandler(log, catalogService)
	addressHandler := handlers.NewAddressHandler(log, addressService)
	orderHandler := handlers.NewOrderHandler(log, orderService)

	// Middleware
	log.Info("Setting up middleware from main...")
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	var origins []string
	if allowOrigins != "" {
		origins = strings.Split(allowOrigins, ",")
	}
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:  authMiddleware,
		FlashingHandler: flashingHandler,
		CartHandler:     cartHandler,
		CheckoutHandler: checkoutHandler,
		CatalogHandler:  catalogHandler,
		AddressHandler:  addressHandler,
		OrderHandler:    orderHandler,
		AllowOrigins:    origins,
	})

	port := utils.GetEnv("PORT", "8080", log)
	fmt.Printf("Server listening on :%s\n", port)
	if err := router.Run(":" + port); err != nil {
		log.Warn("Server failed", "error", err)
	}
}
