package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/paylinkhq/paylink-backend/internal/payments"
	"github.com/paylinkhq/paylink-backend/pkg/config"
	"github.com/paylinkhq/paylink-backend/pkg/db/models"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubCheckoutService struct{}

func (stubCheckoutService) CreateOrRetrieve(ctx context.Context, input payments.CreateOrRetrieveInput) (*payments.CheckoutSession, error) {
	return &payments.CheckoutSession{GatewayIntentID: "pi_1"}, nil
}

func (stubCheckoutService) Sync(ctx context.Context, clientSecret string) (*payments.SyncResult, error) {
	return &payments.SyncResult{}, nil
}

func (stubCheckoutService) Cancel(ctx context.Context, clientSecret string, reason *string) (*models.PaymentIntent, error) {
	return &models.PaymentIntent{}, nil
}

func (stubCheckoutService) VerifyMicrodeposits(ctx context.Context, clientSecret string, amounts [2]int64) (*models.PaymentIntent, error) {
	return &models.PaymentIntent{}, nil
}

func newTestRouter() http.Handler {
	cfg := &config.Config{}
	cfg.App.Env = "test"
	return NewRouter(cfg, nil, stubPinger{}, stubPinger{}, nil, stubCheckoutService{}, nil, nil, nil)
}

func TestRouter_HealthEndpoints(t *testing.T) {
	router := newTestRouter()

	for _, path := range []string{"/health/live", "/health/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: expected 200, got %d", path, rec.Code)
		}
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRouter_CheckoutRoutesWired(t *testing.T) {
	router := newTestRouter()

	paths := []string{
		"/api/v1/checkout/session",
		"/api/v1/checkout/sync",
		"/api/v1/checkout/cancel",
		"/api/v1/checkout/verify-microdeposits",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		if rec.Code == http.StatusNotFound || rec.Code == http.StatusMethodNotAllowed {
			t.Fatalf("%s: route not wired, got %d", path, rec.Code)
		}
	}
}

func TestRouter_WebhookRouteRejectsUnsigned(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/stripe", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code == http.StatusNotFound {
		t.Fatalf("webhook route not wired")
	}
	if rec.Code == http.StatusOK {
		t.Fatalf("unsigned webhook must not be accepted")
	}
}
