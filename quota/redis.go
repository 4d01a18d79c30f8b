package quota

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"weatherwizard/manager"
)

const keyTTL = 48 * time.Hour

// consumeScript creates the day's counter on first use and increments it
// unless fewer than ARGV[2] calls are left. It returns {allowed, calls, limit}.
var consumeScript = redis.NewScript(`
redis.call('HSETNX', KEYS[1], 'calls', 0)
redis.call('HSETNX', KEYS[1], 'limit', ARGV[1])
redis.call('EXPIRE', KEYS[1], ARGV[3])
local calls = tonumber(redis.call('HGET', KEYS[1], 'calls'))
local limit = tonumber(redis.call('HGET', KEYS[1], 'limit'))
if calls >= limit - tonumber(ARGV[2]) then
	return {0, calls, limit}
end
calls = redis.call('HINCRBY', KEYS[1], 'calls', 1)
return {1, calls, limit}
`)

// RedisLedger keeps daily counters in Redis hashes, one key per provider and day.
type RedisLedger struct {
	client *redis.Client
	limits Limits
	now    func() time.Time
}

func NewRedisLedger(client *redis.Client, limits Limits, now func() time.Time) *RedisLedger {
	if now == nil {
		now = time.Now
	}
	return &RedisLedger{client: client, limits: limits, now: now}
}

func (l *RedisLedger) key(provider manager.Provider, t time.Time) string {
	return fmt.Sprintf("quota:%s:%s", provider, day(t))
}

func (l *RedisLedger) Consume(ctx context.Context, provider manager.Provider) error {
	log := zerolog.Ctx(ctx)

	res, err := consumeScript.Run(ctx, l.client,
		[]string{l.key(provider, l.now())},
		l.limits.For(provider), Margin, int(keyTTL.Seconds()),
	).Int64Slice()
	if err != nil {
		return fmt.Errorf("consume quota: %w", err)
	}
	if len(res) != 3 {
		return fmt.Errorf("consume quota: unexpected reply %v", res)
	}

	if res[0] == 0 {
		log.Info().Str("provider", provider.String()).Int64("calls", res[1]).Int64("limit", res[2]).Msg("rate limit reached")
		return fmt.Errorf("%s: %w", provider, manager.ErrQuotaExceeded)
	}

	log.Info().Str("provider", provider.String()).Msgf("%d of %d calls made", res[1], res[2])
	return nil
}

func (l *RedisLedger) Usage(ctx context.Context, provider manager.Provider) (manager.QuotaEntry, error) {
	now := l.now()
	entry := manager.QuotaEntry{
		Date:     manager.Truncate(now),
		Provider: provider,
		Limit:    l.limits.For(provider),
	}

	vals, err := l.client.HMGet(ctx, l.key(provider, now), "calls", "limit").Result()
	if err != nil {
		return entry, fmt.Errorf("read quota: %w", err)
	}

	if s, ok := vals[0].(string); ok {
		entry.Calls, _ = strconv.Atoi(s)
	}
	if s, ok := vals[1].(string); ok {
		if limit, err := strconv.Atoi(s); err == nil {
			entry.Limit = limit
		}
	}

	return entry, nil
}
