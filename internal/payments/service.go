package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"

	"github.com/paylinkhq/paylink-backend/internal/paymentlinks"
	"github.com/paylinkhq/paylink-backend/pkg/db"
	"github.com/paylinkhq/paylink-backend/pkg/db/models"
	"github.com/paylinkhq/paylink-backend/pkg/enums"
	pkgerrors "github.com/paylinkhq/paylink-backend/pkg/errors"
	"github.com/paylinkhq/paylink-backend/pkg/logger"
	"github.com/paylinkhq/paylink-backend/pkg/metrics"
)

// The gateway caps statement descriptor suffixes at 22 characters.
const statementSuffixMaxLen = 22

const (
	metadataSellerID  = "seller_id"
	metadataProductID = "product_id"
)

type linkResolver interface {
	Resolve(ctx context.Context, link string) (*paymentlinks.ResolvedLink, error)
	ValidateEligibility(product *models.Product) error
}

// ServiceParams groups dependencies for the payment service.
type ServiceParams struct {
	Repo     Repository
	Resolver linkResolver
	Gateway  GatewayClient
	Logger   *logger.Logger
	Metrics  *metrics.CheckoutMetrics
}

// Service owns the payment intent lifecycle: opening or resuming checkout
// sessions, pull-based reconciliation, cancellation and microdeposit
// verification.
type Service struct {
	repo     Repository
	resolver linkResolver
	gateway  GatewayClient
	logg     *logger.Logger
	metrics  *metrics.CheckoutMetrics
}

// NewService builds a payment service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payment repo required")
	}
	if params.Resolver == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "link resolver required")
	}
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "gateway client required")
	}
	return &Service{
		repo:     params.Repo,
		resolver: params.Resolver,
		gateway:  params.Gateway,
		logg:     params.Logger,
		metrics:  params.Metrics,
	}, nil
}

// CreateOrRetrieveInput carries the checkout session request.
type CreateOrRetrieveInput struct {
	PaymentLink  string
	ClientSecret *string
}

// CheckoutSession is the buyer-facing view of an open payment intent.
type CheckoutSession struct {
	GatewayIntentID string             `json:"gateway_intent_id"`
	ClientSecret    string             `json:"client_secret"`
	ProductID       uuid.UUID          `json:"product_id"`
	Amount          int64              `json:"amount"`
	Currency        enums.Currency     `json:"currency"`
	Status          enums.IntentStatus `json:"status"`
	PaymentLink     string             `json:"payment_link"`
	IsExisting      bool               `json:"is_existing"`
}

// SyncResult reports the outcome of a pull-based reconciliation.
type SyncResult struct {
	Synced         bool               `json:"synced"`
	PreviousStatus enums.IntentStatus `json:"previous_status"`
	CurrentStatus  enums.IntentStatus `json:"current_status"`
}

// CreateOrRetrieve opens a checkout session for a payment link, resuming
// the existing intent when the caller presents a still-valid client secret.
// Stale secrets are expected (page refreshes, re-priced products), so the
// retrieval path never errors out; it falls through to a fresh creation.
func (s *Service) CreateOrRetrieve(ctx context.Context, input CreateOrRetrieveInput) (*CheckoutSession, error) {
	if input.ClientSecret != nil && *input.ClientSecret != "" {
		if session, ok := s.resume(ctx, input.PaymentLink, *input.ClientSecret); ok {
			s.metrics.IncSession("resumed")
			return session, nil
		}
	}

	session, err := s.create(ctx, input.PaymentLink)
	if err != nil {
		return nil, err
	}
	s.metrics.IncSession("created")
	return session, nil
}

// resume validates the presented secret against the live gateway intent and
// the re-resolved payment link. Any fetch failure or mismatch reports false
// so the caller can fall back to creating a fresh intent.
func (s *Service) resume(ctx context.Context, link, clientSecret string) (*CheckoutSession, bool) {
	gatewayIntentID, err := GatewayIntentIDFromSecret(clientSecret)
	if err != nil {
		return nil, false
	}

	live, err := s.gateway.GetIntent(ctx, gatewayIntentID, nil)
	if err != nil {
		if s.logg != nil {
			ctx = s.logg.WithIntentID(ctx, gatewayIntentID)
			s.logg.Warn(ctx, "stale client secret: gateway fetch failed, creating fresh intent")
		}
		return nil, false
	}

	resolved, err := s.resolver.Resolve(ctx, link)
	if err != nil {
		return nil, false
	}
	if live.Metadata[metadataProductID] != resolved.Product.ID.String() {
		return nil, false
	}

	stored, err := s.repo.FindByGatewayIntentID(ctx, gatewayIntentID)
	if err != nil || stored == nil {
		return nil, false
	}

	return &CheckoutSession{
		GatewayIntentID: stored.GatewayIntentID,
		ClientSecret:    stored.ClientSecret,
		ProductID:       stored.ProductID,
		Amount:          stored.Amount,
		Currency:        stored.Currency,
		Status:          stored.Status,
		PaymentLink:     link,
		IsExisting:      true,
	}, true
}

func (s *Service) create(ctx context.Context, link string) (*CheckoutSession, error) {
	resolved, err := s.resolver.Resolve(ctx, link)
	if err != nil {
		return nil, err
	}
	if err := s.resolver.ValidateEligibility(resolved.Product); err != nil {
		return nil, err
	}

	product := resolved.Product
	seller := resolved.Seller
	amount := minorUnits(product.Price)

	params := &stripe.PaymentIntentParams{
		Amount:                    stripe.Int64(amount),
		Currency:                  stripe.String(product.Currency.String()),
		Description:               stripe.String(fmt.Sprintf("Payment for %s", product.Name)),
		StatementDescriptorSuffix: stripe.String(statementSuffix(product.Name)),
	}
	params.AddMetadata(metadataSellerID, seller.ID.String())
	params.AddMetadata(metadataProductID, product.ID.String())

	live, err := s.gateway.CreateIntent(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gateway intent")
	}

	intent := &models.PaymentIntent{
		UserID:             seller.ID,
		ProductID:          product.ID,
		Slug:               product.Slug,
		UserUniqueName:     seller.UniqueName,
		GatewayIntentID:    live.ID,
		ClientSecret:       live.ClientSecret,
		Amount:             amount,
		Currency:           product.Currency,
		PaymentMethodTypes: live.PaymentMethodTypes,
		Status:             enums.IntentStatusInitiated,
	}
	// A persistence failure here leaves an orphan intent at the gateway;
	// a later sync call reconciles it.
	if err := s.repo.Create(ctx, intent); err != nil {
		if db.IsUniqueViolation(err, "payment_intents_gateway_intent_id_idx") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "payment intent already recorded")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist payment intent")
	}

	return &CheckoutSession{
		GatewayIntentID: intent.GatewayIntentID,
		ClientSecret:    intent.ClientSecret,
		ProductID:       intent.ProductID,
		Amount:          intent.Amount,
		Currency:        intent.Currency,
		Status:          intent.Status,
		PaymentLink:     link,
		IsExisting:      false,
	}, nil
}

// Sync pulls the gateway's current status and converges the local record on
// it. It never creates records and is safe to call repeatedly; it is the
// only recovery path for missed or delayed webhooks.
func (s *Service) Sync(ctx context.Context, clientSecret string) (*SyncResult, error) {
	gatewayIntentID, err := GatewayIntentIDFromSecret(clientSecret)
	if err != nil {
		return nil, err
	}

	stored, err := s.repo.FindByGatewayIntentID(ctx, gatewayIntentID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment intent")
	}
	if stored == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
	}

	live, err := s.gateway.GetIntent(ctx, gatewayIntentID, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch gateway intent")
	}

	mapped := StatusFromGateway(ctx, s.logg, live.Status)
	if mapped == stored.Status {
		s.metrics.IncSync("noop")
		return &SyncResult{Synced: false, PreviousStatus: stored.Status, CurrentStatus: stored.Status}, nil
	}
	if !stored.Status.CanTransition(mapped) {
		if s.logg != nil {
			ctx = s.logg.WithIntentID(ctx, gatewayIntentID)
			s.logg.Warn(ctx, fmt.Sprintf("sync would regress status %s -> %s, keeping local", stored.Status, mapped))
		}
		s.metrics.IncSync("regression_skipped")
		return &SyncResult{Synced: false, PreviousStatus: stored.Status, CurrentStatus: stored.Status}, nil
	}

	previous := stored.Status
	stored.Status = mapped
	if err := s.repo.Update(ctx, stored); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist synced status")
	}

	s.metrics.IncSync("synced")
	return &SyncResult{Synced: true, PreviousStatus: previous, CurrentStatus: mapped}, nil
}

// Cancel cancels an intent at the gateway and locally. Cancelling an
// already-cancelled intent short-circuits without a second gateway call.
func (s *Service) Cancel(ctx context.Context, clientSecret string, reason *string) (*models.PaymentIntent, error) {
	if _, err := GatewayIntentIDFromSecret(clientSecret); err != nil {
		return nil, err
	}

	stored, err := s.repo.FindByClientSecret(ctx, clientSecret)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment intent")
	}
	if stored == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
	}
	if stored.Status == enums.IntentStatusCancelled {
		return stored, nil
	}

	params := &stripe.PaymentIntentCancelParams{}
	if reason != nil && *reason != "" {
		params.CancellationReason = stripe.String(*reason)
	}
	if _, err := s.gateway.CancelIntent(ctx, stored.GatewayIntentID, params); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "cancel gateway intent")
	}

	stored.Status = enums.IntentStatusCancelled
	if err := s.repo.Update(ctx, stored); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cancelled status")
	}
	return stored, nil
}

// VerifyMicrodeposits confirms bank account ownership with the two small
// deposit amounts. The local status is set to microdeposits_verified
// regardless of the exact post-verification gateway status; the next
// webhook or sync refines it.
func (s *Service) VerifyMicrodeposits(ctx context.Context, clientSecret string, amounts [2]int64) (*models.PaymentIntent, error) {
	for _, amount := range amounts {
		if amount < 1 || amount > 99 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "microdeposit amounts must be between 1 and 99")
		}
	}
	if _, err := GatewayIntentIDFromSecret(clientSecret); err != nil {
		return nil, err
	}

	stored, err := s.repo.FindByClientSecret(ctx, clientSecret)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment intent")
	}
	if stored == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "payment not found")
	}

	params := &stripe.PaymentIntentVerifyMicrodepositsParams{
		Amounts: []*int64{stripe.Int64(amounts[0]), stripe.Int64(amounts[1])},
	}
	if _, err := s.gateway.VerifyMicrodeposits(ctx, stored.GatewayIntentID, params); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "verify microdeposits")
	}

	stored.Status = enums.IntentStatusMicrodepositsVerified
	if err := s.repo.Update(ctx, stored); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist verified status")
	}
	return stored, nil
}

// minorUnits converts a product's decimal price to the gateway's integer
// minor units (19.99 -> 1999).
func minorUnits(price decimal.Decimal) int64 {
	return price.Shift(2).Round(0).IntPart()
}

func statementSuffix(name string) string {
	runes := []rune(name)
	if len(runes) > statementSuffixMaxLen {
		runes = runes[:statementSuffixMaxLen]
	}
	return string(runes)
}
