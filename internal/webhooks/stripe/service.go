package stripewebhook

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/stripe/stripe-go/v84"

	"github.com/paylinkhq/paylink-backend/internal/billinginfo"
	"github.com/paylinkhq/paylink-backend/internal/payments"
	"github.com/paylinkhq/paylink-backend/pkg/db/models"
	"github.com/paylinkhq/paylink-backend/pkg/enums"
	pkgerrors "github.com/paylinkhq/paylink-backend/pkg/errors"
	"github.com/paylinkhq/paylink-backend/pkg/logger"
	"github.com/paylinkhq/paylink-backend/pkg/metrics"
)

type paymentRepository interface {
	FindByGatewayIntentID(ctx context.Context, gatewayIntentID string) (*models.PaymentIntent, error)
	Update(ctx context.Context, intent *models.PaymentIntent) error
}

type billingExtractor interface {
	Extract(ctx context.Context, intent *stripe.PaymentIntent, succeeded bool) billinginfo.BillingInfo
}

type ServiceParams struct {
	PaymentRepo paymentRepository
	Extractor   billingExtractor
	Logger      *logger.Logger
	Metrics     *metrics.CheckoutMetrics
}

// Service applies payment intent webhook events to local records. It is the
// push half of status synchronization; pull-based sync covers missed
// deliveries.
type Service struct {
	paymentRepo paymentRepository
	extractor   billingExtractor
	logg        *logger.Logger
	metrics     *metrics.CheckoutMetrics
}

func NewService(params ServiceParams) (*Service, error) {
	if params.PaymentRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment repo required")
	}
	if params.Extractor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "billing extractor required")
	}
	return &Service{
		paymentRepo: params.PaymentRepo,
		extractor:   params.Extractor,
		logg:        params.Logger,
		metrics:     params.Metrics,
	}, nil
}

// HandleEvent processes a verified webhook event. A nil return acknowledges
// the delivery; only storage failures propagate, so the gateway retries
// exactly the events whose local writes failed.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentCreated,
		stripe.EventTypePaymentIntentProcessing,
		stripe.EventTypePaymentIntentRequiresAction,
		stripe.EventTypePaymentIntentSucceeded,
		stripe.EventTypePaymentIntentPaymentFailed,
		stripe.EventTypePaymentIntentCanceled:
		return s.handlePaymentIntent(ctx, event)
	default:
		if s.logg != nil {
			logCtx := s.logg.WithEventID(ctx, event.ID)
			logCtx = s.logg.WithFields(logCtx, map[string]any{"event_type": string(event.Type)})
			s.logg.Info(logCtx, "ignoring unhandled webhook event type")
		}
		s.metrics.IncWebhookEvent(string(event.Type), "ignored")
		return nil
	}
}

func (s *Service) handlePaymentIntent(ctx context.Context, event *stripe.Event) error {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode payment intent event")
	}
	if s.logg != nil {
		ctx = s.logg.WithEventID(ctx, event.ID)
		ctx = s.logg.WithIntentID(ctx, intent.ID)
	}

	stored, err := s.paymentRepo.FindByGatewayIntentID(ctx, intent.ID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment intent")
	}
	if stored == nil {
		// Events can reference intents created out of band or arrive
		// before the local row exists; acknowledge and drop.
		if s.logg != nil {
			s.logg.Info(ctx, "event references unknown payment intent, dropping")
		}
		s.metrics.IncWebhookEvent(string(event.Type), "unknown_intent")
		return nil
	}

	mapped := mapEventStatus(ctx, s.logg, event.Type, &intent)

	outcome := "applied"
	if mapped != stored.Status {
		if stored.Status.CanTransition(mapped) {
			stored.Status = mapped
		} else {
			if s.logg != nil {
				s.logg.Warn(ctx, fmt.Sprintf("event would regress status %s -> %s, keeping local", stored.Status, mapped))
			}
			outcome = "regression_skipped"
		}
	}

	if len(intent.PaymentMethodTypes) > 0 {
		stored.PaymentMethodTypes = intent.PaymentMethodTypes
	}

	billing := s.extractor.Extract(ctx, &intent, event.Type == stripe.EventTypePaymentIntentSucceeded)
	if billing.Name != nil {
		stored.CustomerName = billing.Name
	}
	if billing.Email != nil {
		stored.CustomerEmail = billing.Email
	}

	if err := s.paymentRepo.Update(ctx, stored); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist payment intent update")
	}

	s.metrics.IncWebhookEvent(string(event.Type), outcome)
	return nil
}

// mapEventStatus derives the local status for an event. The failed event
// type is authoritative on its own: the gateway reports the intent back in
// requires_payment_method after a failed attempt, which would otherwise
// read as a reset to initiated.
func mapEventStatus(ctx context.Context, logg *logger.Logger, eventType stripe.EventType, intent *stripe.PaymentIntent) enums.IntentStatus {
	if eventType == stripe.EventTypePaymentIntentPaymentFailed {
		return enums.IntentStatusFailed
	}
	return payments.StatusFromGateway(ctx, logg, intent.Status)
}
