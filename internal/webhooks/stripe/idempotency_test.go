package stripewebhook

import (
	"context"
	"errors"
	"testing"
	"time"
)

type stubIdempotencyStore struct {
	seen     map[string]bool
	setNXErr error
	deleted  []string
}

func newStubIdempotencyStore() *stubIdempotencyStore {
	return &stubIdempotencyStore{seen: map[string]bool{}}
}

func (s *stubIdempotencyStore) Get(ctx context.Context, key string) (string, error) {
	if s.seen[key] {
		return "1", nil
	}
	return "", nil
}

func (s *stubIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if s.setNXErr != nil {
		return false, s.setNXErr
	}
	if s.seen[key] {
		return false, nil
	}
	s.seen[key] = true
	return true, nil
}

func (s *stubIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	s.deleted = append(s.deleted, keys...)
	for _, key := range keys {
		delete(s.seen, key)
	}
	return nil
}

func (s *stubIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "idempotency:" + scope + ":" + id
}

func TestIdempotencyGuard_CheckAndMark(t *testing.T) {
	store := newStubIdempotencyStore()
	guard, err := NewIdempotencyGuard(store, time.Hour, "stripe-payment-events")
	if err != nil {
		t.Fatalf("setup guard: %v", err)
	}

	duplicate, err := guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	if duplicate {
		t.Fatal("first delivery must not be a duplicate")
	}

	duplicate, err = guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if !duplicate {
		t.Fatal("second delivery must be a duplicate")
	}
}

func TestIdempotencyGuard_DeleteAllowsReprocessing(t *testing.T) {
	store := newStubIdempotencyStore()
	guard, err := NewIdempotencyGuard(store, time.Hour, "stripe-payment-events")
	if err != nil {
		t.Fatalf("setup guard: %v", err)
	}

	if _, err := guard.CheckAndMark(context.Background(), "evt_1"); err != nil {
		t.Fatalf("mark: %v", err)
	}
	if err := guard.Delete(context.Background(), "evt_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	duplicate, err := guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil {
		t.Fatalf("re-check: %v", err)
	}
	if duplicate {
		t.Fatal("deleted mark must allow reprocessing")
	}
}

func TestIdempotencyGuard_StoreFailurePropagates(t *testing.T) {
	store := newStubIdempotencyStore()
	store.setNXErr = errors.New("connection refused")
	guard, err := NewIdempotencyGuard(store, time.Hour, "stripe-payment-events")
	if err != nil {
		t.Fatalf("setup guard: %v", err)
	}

	if _, err := guard.CheckAndMark(context.Background(), "evt_1"); err == nil {
		t.Fatal("expected store failure to propagate")
	}
}

func TestNewIdempotencyGuard_Validation(t *testing.T) {
	if _, err := NewIdempotencyGuard(nil, time.Hour, "scope"); err == nil {
		t.Fatal("expected error for nil store")
	}
	if _, err := NewIdempotencyGuard(newStubIdempotencyStore(), -time.Hour, "scope"); err == nil {
		t.Fatal("expected error for negative ttl")
	}
	if _, err := NewIdempotencyGuard(newStubIdempotencyStore(), time.Hour, ""); err == nil {
		t.Fatal("expected error for empty scope")
	}
}
