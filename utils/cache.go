// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"time"

	"staybook/config"

	"github.com/go-redis/redis/v8"
)

var (
	// LockClient backs the distributed admission locks.
	LockClient *redis.Client
)

// RedisEnabled reports whether a Redis address was configured.
func RedisEnabled() bool {
	return config.AppConfig.RedisAddr != ""
}

// InitLockClient initializes the Redis client used for admission locks.
func InitLockClient() {
	LockClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisLockDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := LockClient.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (Lock): %v", err)
	}
}

// GetLockClient returns the Redis client for admission locks.
func GetLockClient() *redis.Client {
	if LockClient == nil {
		InitLockClient()
	}
	return LockClient
}
