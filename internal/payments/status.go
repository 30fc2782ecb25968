package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v84"

	"github.com/paylinkhq/paylink-backend/pkg/enums"
	"github.com/paylinkhq/paylink-backend/pkg/logger"
)

// StatusFromGateway is the single canonical mapping from the gateway's
// status vocabulary to the local one. Both the webhook processor and the
// sync path go through here so they can never disagree. Unrecognized
// values map to pending and are logged, never rejected.
func StatusFromGateway(ctx context.Context, logg *logger.Logger, status stripe.PaymentIntentStatus) enums.IntentStatus {
	switch status {
	case stripe.PaymentIntentStatusRequiresPaymentMethod, stripe.PaymentIntentStatusRequiresConfirmation:
		return enums.IntentStatusInitiated
	case stripe.PaymentIntentStatusRequiresAction:
		return enums.IntentStatusRequiresAction
	case stripe.PaymentIntentStatusProcessing:
		return enums.IntentStatusProcessing
	case stripe.PaymentIntentStatusRequiresCapture:
		return enums.IntentStatusPending
	case stripe.PaymentIntentStatusSucceeded:
		return enums.IntentStatusSucceeded
	case stripe.PaymentIntentStatusCanceled:
		return enums.IntentStatusCancelled
	default:
		if logg != nil {
			logg.Warn(ctx, fmt.Sprintf("unrecognized gateway status %q, treating as pending", status))
		}
		return enums.IntentStatusPending
	}
}
