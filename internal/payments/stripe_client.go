package payments

import (
	"context"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"
	"github.com/stripe/stripe-go/v84/paymentmethod"

	pkgstripe "github.com/paylinkhq/paylink-backend/pkg/stripe"
)

// GatewayClient exposes the subset of gateway operations required by the
// payment intent lifecycle, so services stay mockable.
type GatewayClient interface {
	CreateIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	GetIntent(ctx context.Context, id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	CancelIntent(ctx context.Context, id string, params *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error)
	VerifyMicrodeposits(ctx context.Context, id string, params *stripe.PaymentIntentVerifyMicrodepositsParams) (*stripe.PaymentIntent, error)
	GetPaymentMethod(ctx context.Context, id string) (*stripe.PaymentMethod, error)
}

type gatewayClientWrapper struct{}

// NewGatewayClient wraps the provided Stripe client so payment services can
// be constructed with an explicit, injectable gateway boundary.
func NewGatewayClient(api *pkgstripe.Client) GatewayClient {
	if api == nil {
		return nil
	}
	return &gatewayClientWrapper{}
}

func (w *gatewayClientWrapper) CreateIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	if params != nil {
		params.Context = ctx
	}
	return paymentintent.New(params)
}

func (w *gatewayClientWrapper) GetIntent(ctx context.Context, id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	if params == nil {
		params = &stripe.PaymentIntentParams{}
	}
	params.Context = ctx
	return paymentintent.Get(id, params)
}

func (w *gatewayClientWrapper) CancelIntent(ctx context.Context, id string, params *stripe.PaymentIntentCancelParams) (*stripe.PaymentIntent, error) {
	if params == nil {
		params = &stripe.PaymentIntentCancelParams{}
	}
	params.Context = ctx
	return paymentintent.Cancel(id, params)
}

func (w *gatewayClientWrapper) VerifyMicrodeposits(ctx context.Context, id string, params *stripe.PaymentIntentVerifyMicrodepositsParams) (*stripe.PaymentIntent, error) {
	if params == nil {
		params = &stripe.PaymentIntentVerifyMicrodepositsParams{}
	}
	params.Context = ctx
	return paymentintent.VerifyMicrodeposits(id, params)
}

func (w *gatewayClientWrapper) GetPaymentMethod(ctx context.Context, id string) (*stripe.PaymentMethod, error) {
	params := &stripe.PaymentMethodParams{}
	params.Context = ctx
	return paymentmethod.Get(id, params)
}
