package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/paylinkhq/paylink-backend/internal/payments"
	"github.com/paylinkhq/paylink-backend/pkg/db/models"
	"github.com/paylinkhq/paylink-backend/pkg/enums"
	pkgerrors "github.com/paylinkhq/paylink-backend/pkg/errors"
)

type stubCheckoutService struct {
	session    *payments.CheckoutSession
	sessionErr error
	lastInput  payments.CreateOrRetrieveInput

	syncResult *payments.SyncResult
	syncErr    error

	intent      *models.PaymentIntent
	cancelErr   error
	verifyErr   error
	lastAmounts [2]int64
}

func (s *stubCheckoutService) CreateOrRetrieve(ctx context.Context, input payments.CreateOrRetrieveInput) (*payments.CheckoutSession, error) {
	s.lastInput = input
	return s.session, s.sessionErr
}

func (s *stubCheckoutService) Sync(ctx context.Context, clientSecret string) (*payments.SyncResult, error) {
	return s.syncResult, s.syncErr
}

func (s *stubCheckoutService) Cancel(ctx context.Context, clientSecret string, reason *string) (*models.PaymentIntent, error) {
	return s.intent, s.cancelErr
}

func (s *stubCheckoutService) VerifyMicrodeposits(ctx context.Context, clientSecret string, amounts [2]int64) (*models.PaymentIntent, error) {
	s.lastAmounts = amounts
	return s.intent, s.verifyErr
}

func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestCheckoutSession_CreatedReturns201(t *testing.T) {
	svc := &stubCheckoutService{session: &payments.CheckoutSession{
		GatewayIntentID: "pi_1",
		ClientSecret:    "pi_1_secret_a",
		ProductID:       uuid.New(),
		Amount:          1999,
		Currency:        enums.CurrencyUSD,
		Status:          enums.IntentStatusInitiated,
	}}
	handler := CheckoutSession(svc, nil)

	rec := postJSON(t, handler, "/api/v1/checkout/session", map[string]any{
		"payment_link": "ada/pro-preset-pack",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.lastInput.PaymentLink != "ada/pro-preset-pack" {
		t.Fatalf("unexpected payment link: %q", svc.lastInput.PaymentLink)
	}
	if svc.lastInput.ClientSecret != nil {
		t.Fatalf("expected no client secret forwarded")
	}
}

func TestCheckoutSession_ResumedReturns200(t *testing.T) {
	svc := &stubCheckoutService{session: &payments.CheckoutSession{
		GatewayIntentID: "pi_1",
		IsExisting:      true,
	}}
	handler := CheckoutSession(svc, nil)

	rec := postJSON(t, handler, "/api/v1/checkout/session", map[string]any{
		"payment_link":  "ada/pro-preset-pack",
		"client_secret": "pi_1_secret_a",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.lastInput.ClientSecret == nil || *svc.lastInput.ClientSecret != "pi_1_secret_a" {
		t.Fatalf("expected client secret forwarded, got %v", svc.lastInput.ClientSecret)
	}
}

func TestCheckoutSession_MissingPaymentLink(t *testing.T) {
	handler := CheckoutSession(&stubCheckoutService{}, nil)

	rec := postJSON(t, handler, "/api/v1/checkout/session", map[string]any{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestCheckoutSync_ReturnsResult(t *testing.T) {
	svc := &stubCheckoutService{syncResult: &payments.SyncResult{
		Synced:         true,
		PreviousStatus: enums.IntentStatusInitiated,
		CurrentStatus:  enums.IntentStatusProcessing,
	}}
	handler := CheckoutSync(svc, nil)

	rec := postJSON(t, handler, "/api/v1/checkout/sync", map[string]any{
		"client_secret": "pi_1_secret_a",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data payments.SyncResult `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !envelope.Data.Synced || envelope.Data.CurrentStatus != enums.IntentStatusProcessing {
		t.Fatalf("unexpected result: %+v", envelope.Data)
	}
}

func TestCheckoutSync_NotFound(t *testing.T) {
	svc := &stubCheckoutService{syncErr: pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")}
	handler := CheckoutSync(svc, nil)

	rec := postJSON(t, handler, "/api/v1/checkout/sync", map[string]any{
		"client_secret": "pi_x_secret_a",
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestCheckoutCancel_ReturnsIntent(t *testing.T) {
	svc := &stubCheckoutService{intent: &models.PaymentIntent{
		GatewayIntentID: "pi_1",
		Status:          enums.IntentStatusCancelled,
		Amount:          1999,
		Currency:        enums.CurrencyUSD,
	}}
	handler := CheckoutCancel(svc, nil)

	rec := postJSON(t, handler, "/api/v1/checkout/cancel", map[string]any{
		"client_secret": "pi_1_secret_a",
		"reason":        "requested_by_customer",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Data paymentIntentResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if envelope.Data.Status != "cancelled" {
		t.Fatalf("expected cancelled, got %s", envelope.Data.Status)
	}
}

func TestCheckoutVerifyMicrodeposits_ForwardsAmounts(t *testing.T) {
	svc := &stubCheckoutService{intent: &models.PaymentIntent{
		GatewayIntentID: "pi_1",
		Status:          enums.IntentStatusMicrodepositsVerified,
	}}
	handler := CheckoutVerifyMicrodeposits(svc, nil)

	rec := postJSON(t, handler, "/api/v1/checkout/verify-microdeposits", map[string]any{
		"client_secret": "pi_1_secret_a",
		"amounts":       []int64{32, 45},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}
	if svc.lastAmounts != [2]int64{32, 45} {
		t.Fatalf("unexpected amounts: %v", svc.lastAmounts)
	}
}

func TestCheckoutVerifyMicrodeposits_WrongAmountCount(t *testing.T) {
	handler := CheckoutVerifyMicrodeposits(&stubCheckoutService{}, nil)

	rec := postJSON(t, handler, "/api/v1/checkout/verify-microdeposits", map[string]any{
		"client_secret": "pi_1_secret_a",
		"amounts":       []int64{32},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d (%s)", rec.Code, rec.Body.String())
	}
}
