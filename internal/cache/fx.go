package cache

import (
	"strings"

	"github.com/pantrysense/pantrysense/internal/config"
	redis "github.com/redis/go-redis/v9"
	"go.uber.org/fx"
)

var Module = fx.Module("cache",
	fx.Provide(provideRedis),
	fx.Provide(NewLocker),
	fx.Provide(provideResponseCache),
)

// provideRedis returns nil when no address is configured; callers treat
// that as caching and locking disabled.
func provideRedis(cfg config.Config) *redis.Client {
	addr := strings.TrimSpace(cfg.RedisAddr)
	if addr == "" {
		return nil
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(cfg.RedisPassword),
	})
}

func provideResponseCache(client *redis.Client, cfg config.Config) *ResponseCache {
	return NewResponseCache(client, cfg.SummaryCacheTTL)
}
