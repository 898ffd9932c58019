package registry

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// A read-then-delete sweep would let two processes reclaim the same id, so
// the range read and the removal run as one script.
const sweepScript = `
local due = redis.call("ZRANGEBYSCORE", KEYS[1], "-inf", "(" .. ARGV[1])
for i = 1, #due do
  redis.call("ZREM", KEYS[1], due[i])
end
return due
`

var sweepLua = redis.NewScript(sweepScript)

// RedisRegistry stores expiry deadlines in one sorted set per namespace.
type RedisRegistry struct {
	client redis.UniversalClient
	prefix string
	now    func() time.Time
}

// NewRedisRegistry creates a registry backed by a shared redis store.
// A nil clock defaults to time.Now.
func NewRedisRegistry(client redis.UniversalClient, prefix string, now func() time.Time) *RedisRegistry {
	if prefix == "" {
		prefix = "parley:expiry:"
	}
	if now == nil {
		now = time.Now
	}
	return &RedisRegistry{client: client, prefix: prefix, now: now}
}

func (r *RedisRegistry) key(namespace string) string {
	return r.prefix + namespace
}

// Record upserts the connection's eviction deadline.
func (r *RedisRegistry) Record(ctx context.Context, namespace, connID string, expiresAt time.Time, margin time.Duration) error {
	err := r.client.ZAdd(ctx, r.key(namespace), redis.Z{
		Score:  float64(deadlineMillis(expiresAt, margin)),
		Member: connID,
	}).Err()
	if err != nil {
		return fmt.Errorf("registry record: %w", err)
	}
	return nil
}

// Remove deletes the connection's entry, if any.
func (r *RedisRegistry) Remove(ctx context.Context, namespace, connID string) error {
	if err := r.client.ZRem(ctx, r.key(namespace), connID).Err(); err != nil {
		return fmt.Errorf("registry remove: %w", err)
	}
	return nil
}

// Sweep pops all entries due strictly before now, atomically.
func (r *RedisRegistry) Sweep(ctx context.Context, namespace string) ([]string, error) {
	nowArg := strconv.FormatInt(r.now().UnixMilli(), 10)
	res, err := sweepLua.Run(ctx, r.client, []string{r.key(namespace)}, nowArg).Result()
	if err != nil {
		return nil, fmt.Errorf("registry sweep: %w", err)
	}

	raw, ok := res.([]any)
	if !ok {
		return nil, fmt.Errorf("registry sweep: unexpected script result %T", res)
	}
	ids := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			ids = append(ids, s)
		}
	}
	return ids, nil
}
