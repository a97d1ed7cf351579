package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/loomshop/loomshop-backend/config"
	"github.com/loomshop/loomshop-backend/pkg/logger"
	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// Init initializes Redis connection
func Init(cfg *config.RedisConfig) error {
	logger.Info("Initializing Redis connection", map[string]interface{}{
		"host": cfg.Host,
		"port": cfg.Port,
		"db":   cfg.DB,
	})

	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		logger.Error("Failed to connect to Redis", err, map[string]interface{}{
			"host": cfg.Host,
			"port": cfg.Port,
		})
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Redis connection established successfully", nil)
	return nil
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	return client
}

// Close closes the Redis connection
func Close() error {
	if client != nil {
		logger.Info("Closing Redis connection", nil)
		return client.Close()
	}
	return nil
}

// GetCachedDocument loads a cached catalog document into dest.
// Returns false when the key is absent or the client is not initialized.
func GetCachedDocument(ctx context.Context, key string, dest interface{}) (bool, error) {
	if client == nil {
		return false, nil
	}

	raw, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to read cached document", err, map[string]interface{}{
			"key": key,
		})
		return false, err
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		logger.Warn("Dropping undecodable cached document", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		client.Del(ctx, key)
		return false, nil
	}
	return true, nil
}

// SetCachedDocument stores a catalog document as JSON with a TTL.
func SetCachedDocument(ctx context.Context, key string, doc interface{}, ttl time.Duration) error {
	if client == nil {
		return nil
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	if err := client.Set(ctx, key, raw, ttl).Err(); err != nil {
		logger.Error("Failed to cache document", err, map[string]interface{}{
			"key": key,
		})
		return err
	}

	logger.Debug("Document cached", map[string]interface{}{
		"key": key,
		"ttl": ttl.String(),
	})
	return nil
}

// InvalidateDocument removes cached catalog documents after admin writes.
func InvalidateDocument(ctx context.Context, keys ...string) {
	if client == nil || len(keys) == 0 {
		return
	}

	if err := client.Del(ctx, keys...).Err(); err != nil {
		logger.Error("Failed to invalidate cached documents", err, map[string]interface{}{
			"keys": keys,
		})
		return
	}

	logger.Debug("Cached documents invalidated", map[string]interface{}{
		"keys": keys,
	})
}

// BlacklistToken adds a revoked token to the blacklist
func BlacklistToken(ctx context.Context, token string, expiry time.Duration) error {
	if client == nil {
		return nil
	}

	key := fmt.Sprintf("blacklist:%s", token)
	err := client.Set(ctx, key, "revoked", expiry).Err()
	if err != nil {
		logger.Error("Failed to blacklist token", err, nil)
		return err
	}

	logger.Debug("Token successfully blacklisted", nil)
	return nil
}

// IsTokenBlacklisted checks if a token is in the blacklist
func IsTokenBlacklisted(ctx context.Context, token string) (bool, error) {
	if client == nil {
		return false, nil
	}

	key := fmt.Sprintf("blacklist:%s", token)
	val, err := client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		logger.Error("Failed to check token blacklist", err, nil)
		return false, err
	}

	return val == "revoked", nil
}
