package health

import (
	"context"

	"github.com/redis/go-redis/v9"
)

// RedisProvider checks Redis reachability
type RedisProvider struct {
	BaseProvider
	client *redis.Client
}

// NewRedisProvider creates a provider around an existing client
func NewRedisProvider(client *redis.Client) *RedisProvider {
	return &RedisProvider{
		BaseProvider: BaseProvider{serviceType: "redis"},
		client:       client,
	}
}

// HealthCheck verifies Redis connectivity
func (p *RedisProvider) HealthCheck(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
