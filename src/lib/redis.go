package lib

import (
	"bitlibro/src/types"
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		return nil
	}
	opt, err := redis.ParseURL(redisHost)
	if err != nil {
		log.Printf("[redis] Error parsing connection string: %s\n", err.Error())
		return nil
	}
	rdb := redis.NewClient(opt)
	redisClient = rdb
	return rdb
}

// NewRedisClient Replace redis instance with custom client implementation
func NewRedisClient(c *redis.Client) *redis.Client {
	redisClient = c
	return redisClient
}

func revokedKey(jti string) string {
	return fmt.Sprintf("revoked:%s", jti)
}

// RevokeToken marks the token id as revoked for ttl, the token's remaining lifetime.
func RevokeToken(ctx context.Context, jti string, ttl time.Duration) error {
	rdb := GetRedisClient()
	if rdb == nil {
		log.Printf("[redis] Token %s not revoked: no redis client configured\n", jti)
		return types.NewUnavailableError("token revocation is unavailable")
	}
	if ttl <= 0 {
		return nil
	}
	return rdb.Set(ctx, revokedKey(jti), 1, ttl).Err()
}

func IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	rdb := GetRedisClient()
	if rdb == nil || jti == "" {
		return false, nil
	}
	n, err := rdb.Exists(ctx, revokedKey(jti)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
