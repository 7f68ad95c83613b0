package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

type redisPublisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisRelay republishes hub signals on a Redis channel so processes
// outside this server can follow order changes.
type RedisRelay struct {
	client  redisPublisher
	channel string
	now     func() time.Time
}

func NewRedisClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         addr,
		ReadTimeout:  500 * time.Millisecond,
		WriteTimeout: 500 * time.Millisecond,
		DialTimeout:  500 * time.Millisecond,
	})
}

func NewRedisRelay(client redisPublisher, channel string) *RedisRelay {
	return &RedisRelay{client: client, channel: channel, now: time.Now}
}

func (r *RedisRelay) Notify(ctx context.Context) error {
	b, err := json.Marshal(newEvent(r.now()))
	if err != nil {
		return err
	}
	return r.client.Publish(ctx, r.channel, b).Err()
}
