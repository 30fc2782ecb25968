package stripe

import (
	"context"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v84"

	"github.com/paylinkhq/paylink-backend/pkg/config"
	"github.com/paylinkhq/paylink-backend/pkg/logger"
)

const (
	envTest = "test"
	envLive = "live"
)

// keyPrefixesByEnv guards against pointing a live deployment at test keys
// and vice versa.
var keyPrefixesByEnv = map[string][]string{
	envTest: {"sk_test", "rk_test"},
	envLive: {"sk_live", "rk_live"},
}

// Client holds the configured Stripe API client, the normalized environment
// and the webhook signing secret.
type Client struct {
	api           *stripe.Client
	environment   string
	signingSecret string
}

// NewClient validates the Stripe configuration and initializes the API
// client once at startup.
func NewClient(ctx context.Context, cfg config.StripeConfig, logg *logger.Logger) (*Client, error) {
	env := strings.TrimSpace(strings.ToLower(cfg.Environment()))
	if env == "" {
		env = envTest
	}
	prefixes, ok := keyPrefixesByEnv[env]
	if !ok {
		return nil, fmt.Errorf("stripe environment must be %q or %q", envTest, envLive)
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, fmt.Errorf("stripe api key is required")
	}
	if !hasAnyPrefix(apiKey, prefixes) {
		return nil, fmt.Errorf("stripe environment %q requires a secret key prefixed %s", env, strings.Join(prefixes, "/"))
	}

	signingSecret := strings.TrimSpace(cfg.Secret)
	if signingSecret == "" {
		return nil, fmt.Errorf("stripe webhook secret is required")
	}

	api := stripe.NewClient(apiKey)
	stripe.Key = apiKey

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("stripe client initialized (%s)", env))
	}

	return &Client{
		api:           api,
		environment:   env,
		signingSecret: signingSecret,
	}, nil
}

// API returns the underlying Stripe API client.
func (c *Client) API() *stripe.Client {
	if c == nil {
		return nil
	}
	return c.api
}

// Environment reports the normalized Stripe environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// SigningSecret returns the webhook signing secret.
func (c *Client) SigningSecret() string {
	if c == nil {
		return ""
	}
	return c.signingSecret
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
