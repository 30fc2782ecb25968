package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/paylinkhq/paylink-backend/api/routes"
	"github.com/paylinkhq/paylink-backend/internal/billinginfo"
	"github.com/paylinkhq/paylink-backend/internal/paymentlinks"
	"github.com/paylinkhq/paylink-backend/internal/payments"
	"github.com/paylinkhq/paylink-backend/internal/products"
	"github.com/paylinkhq/paylink-backend/internal/users"
	stripewebhook "github.com/paylinkhq/paylink-backend/internal/webhooks/stripe"
	"github.com/paylinkhq/paylink-backend/pkg/config"
	"github.com/paylinkhq/paylink-backend/pkg/db"
	"github.com/paylinkhq/paylink-backend/pkg/logger"
	"github.com/paylinkhq/paylink-backend/pkg/metrics"
	"github.com/paylinkhq/paylink-backend/pkg/migrate"
	"github.com/paylinkhq/paylink-backend/pkg/redis"
	"github.com/paylinkhq/paylink-backend/pkg/stripe"
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

	stripeClient, err := stripe.NewClient(context.Background(), cfg.Stripe, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap stripe", err)
		os.Exit(1)
	}

	checkoutMetrics := metrics.NewCheckoutMetrics(prometheus.DefaultRegisterer)
	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)
	gateway := payments.NewGatewayClient(stripeClient)

	resolver, err := paymentlinks.NewResolver(paymentlinks.ServiceParams{
		UserRepo:    users.NewRepository(dbClient.DB()),
		ProductRepo: products.NewRepository(dbClient.DB()),
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create link resolver", err)
		os.Exit(1)
	}

	paymentRepo := payments.NewRepository(dbClient.DB())
	paymentService, err := payments.NewService(payments.ServiceParams{
		Repo:     paymentRepo,
		Resolver: resolver,
		Gateway:  gateway,
		Logger:   logg,
		Metrics:  checkoutMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	extractor, err := billinginfo.NewExtractor(billinginfo.ServiceParams{
		Gateway: gateway,
		Logger:  logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create billing extractor", err)
		os.Exit(1)
	}

	webhookService, err := stripewebhook.NewService(stripewebhook.ServiceParams{
		PaymentRepo: paymentRepo,
		Extractor:   extractor,
		Logger:      logg,
		Metrics:     checkoutMetrics,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook service", err)
		os.Exit(1)
	}

	webhookGuard, err := stripewebhook.NewIdempotencyGuard(redisClient, cfg.Checkout.EventIdempotencyTTL, "stripe-payment-events")
	if err != nil {
		logg.Error(context.Background(), "failed to create webhook idempotency guard", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":        cfg.App.Env,
		"addr":       addr,
		"stripe_env": stripeClient.Environment(),
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			httpMetrics,
			paymentService,
			stripeClient,
			webhookService,
			webhookGuard,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
