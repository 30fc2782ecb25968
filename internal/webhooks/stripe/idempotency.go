package stripewebhook

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/paylinkhq/paylink-backend/pkg/redis"
)

// IdempotencyGuard deduplicates webhook deliveries by event id. The gateway
// retries deliveries until acknowledged, so the same event can arrive more
// than once.
type IdempotencyGuard struct {
	store redis.IdempotencyStore
	ttl   time.Duration
	scope string
}

func NewIdempotencyGuard(store redis.IdempotencyStore, ttl time.Duration, scope string) (*IdempotencyGuard, error) {
	if store == nil {
		return nil, errors.New("idempotency store is required")
	}
	if ttl < 0 {
		return nil, errors.New("ttl must be non-negative")
	}
	if scope == "" {
		return nil, errors.New("scope is required")
	}
	return &IdempotencyGuard{
		store: store,
		ttl:   ttl,
		scope: scope,
	}, nil
}

// CheckAndMark reports whether the event was already seen, marking it as
// seen when it was not.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	key, err := g.key(eventID)
	if err != nil {
		return false, err
	}
	set, err := g.store.SetNX(ctx, key, "1", g.ttl)
	if err != nil {
		return false, fmt.Errorf("set idempotency key: %w", err)
	}
	return !set, nil
}

// Delete unmarks an event so the gateway's retry can reprocess it after a
// handling failure.
func (g *IdempotencyGuard) Delete(ctx context.Context, eventID string) error {
	key, err := g.key(eventID)
	if err != nil {
		return err
	}
	return g.store.Del(ctx, key)
}

func (g *IdempotencyGuard) key(eventID string) (string, error) {
	if eventID == "" {
		return "", errors.New("event id is required")
	}
	return g.store.IdempotencyKey(g.scope, eventID), nil
}
