package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/farmfreshconnect/farmfresh-backend/api/controllers"
	"github.com/farmfreshconnect/farmfresh-backend/api/routes"
	"github.com/farmfreshconnect/farmfresh-backend/internal/auth"
	"github.com/farmfreshconnect/farmfresh-backend/internal/cart"
	checkoutsvc "github.com/farmfreshconnect/farmfresh-backend/internal/checkout"
	"github.com/farmfreshconnect/farmfresh-backend/internal/listings"
	"github.com/farmfreshconnect/farmfresh-backend/internal/orders"
	"github.com/farmfreshconnect/farmfresh-backend/internal/profile"
	sessionstate "github.com/farmfreshconnect/farmfresh-backend/internal/session"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/auth/session"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/config"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/db"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/logger"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/metrics"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/migrate"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/pubsub"
	"github.com/farmfreshconnect/farmfresh-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	checkoutMetrics := metrics.NewCheckoutMetrics(registry)

	pingers := map[string]controllers.Pinger{
		"database": dbClient,
		"redis":    redisClient,
	}

	var eventPublisher checkoutsvc.EventPublisher = checkoutsvc.NoopPublisher{}
	if cfg.PubSub.Enabled() {
		pubsubClient, err := pubsub.NewClient(context.Background(), cfg.PubSub, logg)
		if err != nil {
			logg.Error(context.Background(), "failed to bootstrap pubsub", err)
			os.Exit(1)
		}
		defer func() {
			if err := pubsubClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing pubsub", err)
			}
		}()
		eventPublisher = checkoutsvc.NewPubSubPublisher(pubsubClient)
		pingers["pubsub"] = pubsubClient
	}

	identities := sessionstate.NewBroadcaster()

	userRepo := auth.NewRepository(dbClient.DB())
	profileRepo := profile.NewRepository(dbClient.DB())
	listingsRepo := listings.NewRepository(dbClient.DB())
	cartRepo := cart.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       userRepo,
		SessionManager: sessionManager,
		Identities:     identities,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	profileService := profile.NewService(profileRepo)
	listingsService := listings.NewService(listingsRepo)

	notifier := cart.NewNotifier()
	aggregator := cart.NewAggregator(cartRepo, listingsRepo, notifier, logg)
	cartService := cart.NewService(cartRepo, listingsRepo, notifier, aggregator)

	checkoutService, err := checkoutsvc.NewService(
		dbClient,
		cartRepo,
		listingsRepo,
		ordersRepo,
		aggregator,
		userRepo,
		redisClient,
		eventPublisher,
		checkoutMetrics,
		notifier,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}

	ordersService, err := orders.NewService(ordersRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			Redis:           redisClient,
			SessionChecker:  sessionManager,
			Pingers:         pingers,
			MetricsGatherer: registry,
			AuthService:     authService,
			ProfileService:  profileService,
			ListingsService: listingsService,
			CartService:     cartService,
			CheckoutService: checkoutService,
			OrdersService:   ordersService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
