package licenses

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	redisclient "github.com/kybernushq/kybernus-backend/pkg/redis"
)

type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	LicenseCacheKey(licenseKey string) string
}

// Cache holds recent positive validation results in Redis. Invalid results
// are never stored, so a record that turns valid (e.g. after checkout) is
// picked up on the next request rather than after the TTL.
type Cache struct {
	store cacheStore
	ttl   time.Duration
}

func NewCache(store cacheStore, ttl time.Duration) *Cache {
	return &Cache{store: store, ttl: ttl}
}

// Get returns the cached result for the key, or ok=false on a miss. A cached
// trial whose expiration has passed since it was written is treated as a
// miss; the caller re-evaluates against the store.
func (c *Cache) Get(ctx context.Context, licenseKey string, now time.Time) (ValidationResult, bool, error) {
	raw, err := c.store.Get(ctx, c.store.LicenseCacheKey(licenseKey))
	if errors.Is(err, redisclient.Nil) {
		return ValidationResult{}, false, nil
	}
	if err != nil {
		return ValidationResult{}, false, err
	}

	var res ValidationResult
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return ValidationResult{}, false, nil
	}
	if res.Expiration != nil && now.After(*res.Expiration) {
		return ValidationResult{}, false, nil
	}
	return res, true, nil
}

// Put stores a validation result. Only valid results are written.
func (c *Cache) Put(ctx context.Context, licenseKey string, res ValidationResult) error {
	if !res.Valid {
		return nil
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.store.LicenseCacheKey(licenseKey), string(raw), c.ttl)
}

// Invalidate drops the cached entry for a key. Called on plan transitions so
// webhook-driven changes are visible immediately.
func (c *Cache) Invalidate(ctx context.Context, licenseKey string) error {
	return c.store.Del(ctx, c.store.LicenseCacheKey(licenseKey))
}
