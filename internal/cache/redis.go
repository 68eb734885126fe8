package cache

import (
	"context"
	"fmt"

	"movi/internal/config"
	"movi/internal/logger"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

// Init connects to Redis if R_HOST is configured. Without it the client stays
// nil and catalog responses are fetched fresh on every request.
func Init(ctx context.Context) {
	host, port, password := config.RedisConfig()
	if host == "" {
		logger.Get().Info("Redis not configured, catalog caching disabled")
		return
	}

	redisClient = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", host, port),
		Password: password,
		DB:       0,
	})

	if _, err := redisClient.Ping(ctx).Result(); err != nil {
		logger.Get().WithError(err).Warn("Failed to connect to Redis, caching disabled")
		redisClient = nil
		return
	}
	logger.Get().Info("Connection to Redis successful")
}

func Get() *redis.Client {
	return redisClient
}

func Close() {
	if redisClient != nil {
		redisClient.Close()
	}
}
