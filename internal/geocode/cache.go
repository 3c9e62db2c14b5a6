// server/internal/geocode/cache.go
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"shipment-tracking-api-server/internal/logger"
	"shipment-tracking-api-server/internal/metrics"
	"shipment-tracking-api-server/internal/models"
)

// CachedGeocoder keeps resolved coordinates in Redis. Cache failures are
// logged and skipped; only the provider's errors reach the caller.
type CachedGeocoder struct {
	next   Resolver
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewCachedGeocoder(next Resolver, rdb redis.Cmdable, prefix string, ttl time.Duration) *CachedGeocoder {
	return &CachedGeocoder{next: next, rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *CachedGeocoder) key(address string) string {
	return c.prefix + strings.ToLower(Normalize(address))
}

func (c *CachedGeocoder) Resolve(ctx context.Context, address string) (models.Coordinates, error) {
	key := c.key(address)

	data, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var coords models.Coordinates
		if jerr := json.Unmarshal(data, &coords); jerr == nil {
			metrics.GeocodeCacheTotal.WithLabelValues("hit").Inc()
			return coords, nil
		}
		logger.Warn("discarding corrupt geocode cache entry", "key", key)
	case errors.Is(err, redis.Nil):
	default:
		logger.Warn("geocode cache read failed", "key", key, "error", err)
	}
	metrics.GeocodeCacheTotal.WithLabelValues("miss").Inc()

	coords, err := c.next.Resolve(ctx, address)
	if err != nil {
		return coords, err
	}

	if data, err := json.Marshal(coords); err == nil {
		if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
			logger.Warn("geocode cache write failed", "key", key, "error", err)
		}
	}
	return coords, nil
}
