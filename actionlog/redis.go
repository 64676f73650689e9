package actionlog

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/zeu5/subgoal-rl/rl"
)

const DefaultRedisKey = "subgoal-rl:actions"

// RedisLog pushes the tokens onto a redis list
type RedisLog struct {
	client  *redis.Client
	key     string
	timeout time.Duration
}

var _ rl.ActionLog = &RedisLog{}

func NewRedisLog(addr, key string) *RedisLog {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisLog{
		client: redis.NewClient(&redis.Options{
			Addr:        addr,
			DialTimeout: 100 * time.Millisecond,
		}),
		key:     key,
		timeout: time.Second,
	}
}

func (r *RedisLog) Key() string {
	return r.key
}

func (r *RedisLog) Append(tokens ...string) error {
	if len(tokens) == 0 {
		return nil
	}
	values := make([]interface{}, len(tokens))
	for i, t := range tokens {
		values[i] = t
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.client.RPush(ctx, r.key, values...).Err()
}

func (r *RedisLog) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.client.Del(ctx, r.key).Err()
}

// Tokens reads back the whole log
func (r *RedisLog) Tokens(ctx context.Context) ([]string, error) {
	return r.client.LRange(ctx, r.key, 0, -1).Result()
}

func (r *RedisLog) Close() error {
	return r.client.Close()
}
