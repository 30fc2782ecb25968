package payments

import (
	"strings"

	pkgerrors "github.com/paylinkhq/paylink-backend/pkg/errors"
)

// secretDelimiter is fixed by the gateway's client secret format:
// "{gatewayIntentId}_secret_{opaqueSuffix}".
const secretDelimiter = "_secret_"

// GatewayIntentIDFromSecret recovers the gateway intent id from a client
// secret. Malformed secrets fail validation before any gateway call.
func GatewayIntentIDFromSecret(clientSecret string) (string, error) {
	trimmed := strings.TrimSpace(clientSecret)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "client secret is required")
	}
	prefix, suffix, found := strings.Cut(trimmed, secretDelimiter)
	if !found || prefix == "" || suffix == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "malformed client secret")
	}
	return prefix, nil
}
