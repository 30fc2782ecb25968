package controllers

import (
	"context"
	"net/http"

	"github.com/paylinkhq/paylink-backend/api/responses"
	"github.com/paylinkhq/paylink-backend/api/validators"
	"github.com/paylinkhq/paylink-backend/internal/payments"
	"github.com/paylinkhq/paylink-backend/pkg/db/models"
	pkgerrors "github.com/paylinkhq/paylink-backend/pkg/errors"
	"github.com/paylinkhq/paylink-backend/pkg/logger"
)

type CheckoutService interface {
	CreateOrRetrieve(ctx context.Context, input payments.CreateOrRetrieveInput) (*payments.CheckoutSession, error)
	Sync(ctx context.Context, clientSecret string) (*payments.SyncResult, error)
	Cancel(ctx context.Context, clientSecret string, reason *string) (*models.PaymentIntent, error)
	VerifyMicrodeposits(ctx context.Context, clientSecret string, amounts [2]int64) (*models.PaymentIntent, error)
}

// CheckoutSession opens or resumes a checkout session for a payment link.
func CheckoutSession(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload checkoutSessionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.CreateOrRetrieve(r.Context(), payments.CreateOrRetrieveInput{
			PaymentLink:  payload.PaymentLink,
			ClientSecret: payload.ClientSecret,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status := http.StatusCreated
		if session.IsExisting {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, session)
	}
}

// CheckoutSync reconciles a local record against the gateway's current view.
func CheckoutSync(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload clientSecretRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Sync(r.Context(), payload.ClientSecret)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// CheckoutCancel cancels an open payment intent.
func CheckoutCancel(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload cancelRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := svc.Cancel(r.Context(), payload.ClientSecret, payload.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPaymentIntentResponse(intent))
	}
}

// CheckoutVerifyMicrodeposits confirms bank account ownership for ACH
// intents awaiting microdeposit verification.
func CheckoutVerifyMicrodeposits(svc CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "checkout service unavailable"))
			return
		}

		var payload verifyMicrodepositsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		intent, err := svc.VerifyMicrodeposits(r.Context(), payload.ClientSecret, [2]int64{payload.Amounts[0], payload.Amounts[1]})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newPaymentIntentResponse(intent))
	}
}

type checkoutSessionRequest struct {
	PaymentLink  string  `json:"payment_link" validate:"required"`
	ClientSecret *string `json:"client_secret,omitempty" validate:"omitempty,min=1"`
}

type clientSecretRequest struct {
	ClientSecret string `json:"client_secret" validate:"required"`
}

type cancelRequest struct {
	ClientSecret string  `json:"client_secret" validate:"required"`
	Reason       *string `json:"reason,omitempty" validate:"omitempty,max=255"`
}

type verifyMicrodepositsRequest struct {
	ClientSecret string  `json:"client_secret" validate:"required"`
	Amounts      []int64 `json:"amounts" validate:"required,len=2"`
}

type paymentIntentResponse struct {
	GatewayIntentID string `json:"gateway_intent_id"`
	Status          string `json:"status"`
	Amount          int64  `json:"amount"`
	Currency        string `json:"currency"`
}

func newPaymentIntentResponse(intent *models.PaymentIntent) paymentIntentResponse {
	return paymentIntentResponse{
		GatewayIntentID: intent.GatewayIntentID,
		Status:          intent.Status.String(),
		Amount:          intent.Amount,
		Currency:        intent.Currency.String(),
	}
}
