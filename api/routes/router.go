package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/paylinkhq/paylink-backend/api/controllers"
	webhookcontrollers "github.com/paylinkhq/paylink-backend/api/controllers/webhooks"
	"github.com/paylinkhq/paylink-backend/api/middleware"
	stripewebhook "github.com/paylinkhq/paylink-backend/internal/webhooks/stripe"
	"github.com/paylinkhq/paylink-backend/pkg/config"
	"github.com/paylinkhq/paylink-backend/pkg/db"
	"github.com/paylinkhq/paylink-backend/pkg/logger"
	"github.com/paylinkhq/paylink-backend/pkg/metrics"
	"github.com/paylinkhq/paylink-backend/pkg/redis"
	"github.com/paylinkhq/paylink-backend/pkg/stripe"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	httpMetrics *metrics.HTTPMetrics,
	checkoutService controllers.CheckoutService,
	stripeClient *stripe.Client,
	stripeWebhookService *stripewebhook.Service,
	stripeWebhookGuard *stripewebhook.IdempotencyGuard,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Post("/stripe", webhookcontrollers.StripeWebhook(stripeWebhookService, stripeClient, stripeWebhookGuard, logg))
	})

	r.Route("/api/v1/checkout", func(r chi.Router) {
		r.Post("/session", controllers.CheckoutSession(checkoutService, logg))
		r.Post("/sync", controllers.CheckoutSync(checkoutService, logg))
		r.Post("/cancel", controllers.CheckoutCancel(checkoutService, logg))
		r.Post("/verify-microdeposits", controllers.CheckoutVerifyMicrodeposits(checkoutService, logg))
	})

	return r
}
