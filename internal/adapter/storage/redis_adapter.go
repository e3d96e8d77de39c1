package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	stockKeyPrefix = "stock:"
	stockKeyTTL    = 24 * time.Hour
)

// applyDeltaScript shifts a cached stock value only when the entry exists.
// Applying a delta to a missing key would fabricate an absolute value, so
// missing keys are left for the next read to fill from the ledger.
var applyDeltaScript = redis.NewScript(`
local key = KEYS[1]
local delta = tonumber(ARGV[1])

if redis.call('EXISTS', key) == 0 then
	return 0
end

redis.call('INCRBY', key, delta)
redis.call('EXPIRE', key, ARGV[2])
return 1
`)

// RedisAdapter implements port.CacheRepository over a shared Redis client.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) GetStock(ctx context.Context, itemID int64) (int, bool, error) {
	stock, err := r.client.Get(ctx, stockKey(itemID)).Int()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return stock, true, nil
}

func (r *RedisAdapter) SetStock(ctx context.Context, itemID int64, stock int) error {
	return r.client.Set(ctx, stockKey(itemID), stock, stockKeyTTL).Err()
}

func (r *RedisAdapter) ApplyDelta(ctx context.Context, itemID int64, delta int) error {
	return applyDeltaScript.Run(ctx, r.client, []string{stockKey(itemID)},
		delta, int(stockKeyTTL.Seconds())).Err()
}

func (r *RedisAdapter) InvalidateStock(ctx context.Context, itemID int64) error {
	return r.client.Del(ctx, stockKey(itemID)).Err()
}

func stockKey(itemID int64) string {
	return fmt.Sprintf("%s%d", stockKeyPrefix, itemID)
}
