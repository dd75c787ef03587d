package stripewebhook

import (
	"context"
	"time"

	redisclient "github.com/kybernushq/kybernus-backend/pkg/redis"
)

const idempotencyScope = "stripe_event"

// IdempotencyGuard prevents a redelivered Stripe event from being applied
// twice. CheckAndMark claims the event id atomically; Delete releases the
// claim when processing fails so Stripe's retry can succeed.
type IdempotencyGuard struct {
	store redisclient.IdempotencyStore
	ttl   time.Duration
}

func NewIdempotencyGuard(store redisclient.IdempotencyStore, ttl time.Duration) *IdempotencyGuard {
	return &IdempotencyGuard{store: store, ttl: ttl}
}

// CheckAndMark returns true when the event was already processed.
func (g *IdempotencyGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	claimed, err := g.store.SetNX(ctx, g.store.IdempotencyKey(idempotencyScope, eventID), "1", g.ttl)
	if err != nil {
		return false, err
	}
	return !claimed, nil
}

// Delete releases the claim on an event id.
func (g *IdempotencyGuard) Delete(ctx context.Context, eventID string) error {
	return g.store.Del(ctx, g.store.IdempotencyKey(idempotencyScope, eventID))
}
