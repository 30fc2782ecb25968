package billinginfo

import (
	"context"

	"github.com/stripe/stripe-go/v84"

	pkgerrors "github.com/paylinkhq/paylink-backend/pkg/errors"
	"github.com/paylinkhq/paylink-backend/pkg/logger"
)

// BillingInfo is the customer name and email recovered from a gateway
// intent. Either field may be nil; extraction is best effort.
type BillingInfo struct {
	Name  *string
	Email *string
}

// Empty reports whether nothing was recovered.
func (b BillingInfo) Empty() bool {
	return b.Name == nil && b.Email == nil
}

func (b BillingInfo) complete() bool {
	return b.Name != nil && b.Email != nil
}

type gatewayFetcher interface {
	GetIntent(ctx context.Context, id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	GetPaymentMethod(ctx context.Context, id string) (*stripe.PaymentMethod, error)
}

// ServiceParams groups dependencies for the extractor.
type ServiceParams struct {
	Gateway gatewayFetcher
	Logger  *logger.Logger
}

// Extractor pulls customer billing details out of webhook intent payloads.
// Webhook payloads carry unexpanded references, so most sources are absent
// most of the time; the extractor walks a fallback chain and takes whatever
// it finds.
type Extractor struct {
	gateway gatewayFetcher
	logg    *logger.Logger
}

// NewExtractor builds a billing info extractor.
func NewExtractor(params ServiceParams) (*Extractor, error) {
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "gateway client required")
	}
	return &Extractor{
		gateway: params.Gateway,
		logg:    params.Logger,
	}, nil
}

// Extract recovers billing details for an intent. Sources are tried in
// order and merged field by field, stopping once both name and email are
// known. The expanded re-fetch is reserved for succeeded intents, where a
// charge with full billing details is guaranteed to exist. Extraction
// never fails; an empty result means no source had the data.
func (e *Extractor) Extract(ctx context.Context, intent *stripe.PaymentIntent, succeeded bool) BillingInfo {
	var info BillingInfo
	if intent == nil {
		return info
	}

	info = merge(info, fromCharge(intent.LatestCharge))
	if info.complete() {
		return info
	}

	info = merge(info, e.fromPaymentMethod(ctx, intent.PaymentMethod))
	if info.complete() {
		return info
	}

	if intent.LastPaymentError != nil {
		info = merge(info, fromPaymentMethodDetails(intent.LastPaymentError.PaymentMethod))
		if info.complete() {
			return info
		}
	}

	if succeeded {
		info = merge(info, e.fromExpandedIntent(ctx, intent.ID))
	}
	return info
}

// fromPaymentMethod reads billing details off an attached payment method,
// fetching it from the gateway when the webhook payload carries only the
// unexpanded reference. Fetch failures are tolerated.
func (e *Extractor) fromPaymentMethod(ctx context.Context, pm *stripe.PaymentMethod) BillingInfo {
	if pm == nil {
		return BillingInfo{}
	}
	if info := fromPaymentMethodDetails(pm); !info.Empty() {
		return info
	}
	if pm.ID == "" {
		return BillingInfo{}
	}

	fetched, err := e.gateway.GetPaymentMethod(ctx, pm.ID)
	if err != nil {
		if e.logg != nil {
			e.logg.Warn(ctx, "billing info payment method fetch failed, continuing without")
		}
		return BillingInfo{}
	}
	return fromPaymentMethodDetails(fetched)
}

func (e *Extractor) fromExpandedIntent(ctx context.Context, intentID string) BillingInfo {
	if intentID == "" {
		return BillingInfo{}
	}

	params := &stripe.PaymentIntentParams{}
	params.AddExpand("payment_method")
	params.AddExpand("latest_charge")

	expanded, err := e.gateway.GetIntent(ctx, intentID, params)
	if err != nil {
		if e.logg != nil {
			ctx = e.logg.WithIntentID(ctx, intentID)
			e.logg.Warn(ctx, "billing info expanded intent fetch failed, continuing without")
		}
		return BillingInfo{}
	}

	info := fromCharge(expanded.LatestCharge)
	if info.complete() {
		return info
	}
	return merge(info, fromPaymentMethodDetails(expanded.PaymentMethod))
}

func fromCharge(charge *stripe.Charge) BillingInfo {
	if charge == nil || charge.BillingDetails == nil {
		return BillingInfo{}
	}
	return fromValues(charge.BillingDetails.Name, charge.BillingDetails.Email)
}

func fromPaymentMethodDetails(pm *stripe.PaymentMethod) BillingInfo {
	if pm == nil || pm.BillingDetails == nil {
		return BillingInfo{}
	}
	return fromValues(pm.BillingDetails.Name, pm.BillingDetails.Email)
}

func fromValues(name, email string) BillingInfo {
	var info BillingInfo
	if name != "" {
		info.Name = &name
	}
	if email != "" {
		info.Email = &email
	}
	return info
}

// merge fills base's missing fields from next without overwriting values
// found by an earlier source.
func merge(base, next BillingInfo) BillingInfo {
	if base.Name == nil {
		base.Name = next.Name
	}
	if base.Email == nil {
		base.Email = next.Email
	}
	return base
}
