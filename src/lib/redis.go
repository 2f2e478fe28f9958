package lib

import (
	"clubdesk/src/config"
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisClient *redis.Client

func GetRedisClient() *redis.Client {
	if redisClient != nil {
		return redisClient
	}
	opt, err := redis.ParseURL(config.RedisURL())
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

// CacheGetJSON loads key into dest. It reports false on a miss or when redis
// is not configured.
func CacheGetJSON(ctx context.Context, key string, dest any) bool {
	rd := GetRedisClient()
	if rd == nil {
		return false
	}
	content, err := rd.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("Error reading from cache [%s]: %s\n", key, err.Error())
		}
		return false
	}
	if err := json.Unmarshal([]byte(content), dest); err != nil {
		log.Printf("Error decoding cached value [%s]: %s\n", key, err.Error())
		return false
	}
	return true
}

func CacheSetJSON(ctx context.Context, key string, value any, ttl time.Duration) {
	rd := GetRedisClient()
	if rd == nil {
		return
	}
	b, err := json.Marshal(value)
	if err != nil {
		log.Printf("Error encoding value for cache [%s]: %s\n", key, err.Error())
		return
	}
	if err := rd.SetEx(ctx, key, string(b), ttl).Err(); err != nil {
		log.Printf("Error writing to cache [%s]: %s\n", key, err.Error())
	}
}

func CacheDel(ctx context.Context, keys ...string) {
	rd := GetRedisClient()
	if rd == nil {
		return
	}
	if err := rd.Del(ctx, keys...).Err(); err != nil {
		log.Printf("Error evicting cache keys %v: %s\n", keys, err.Error())
	}
}

// CacheGeneration returns the counter stored at key, zero when it is unset or
// redis is not configured.
func CacheGeneration(ctx context.Context, key string) int64 {
	rd := GetRedisClient()
	if rd == nil {
		return 0
	}
	gen, err := rd.Get(ctx, key).Int64()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("Error reading cache generation [%s]: %s\n", key, err.Error())
		}
		return 0
	}
	return gen
}

// CacheBump advances the counter at key so values cached under the previous
// generation are no longer looked up.
func CacheBump(ctx context.Context, key string) {
	rd := GetRedisClient()
	if rd == nil {
		return
	}
	if err := rd.Incr(ctx, key).Err(); err != nil {
		log.Printf("Error bumping cache generation [%s]: %s\n", key, err.Error())
	}
}

// AllowAttempt counts one attempt against key inside a fixed window and
// reports whether the caller is still within limit. Without redis every
// attempt is allowed.
func AllowAttempt(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	rd := GetRedisClient()
	if rd == nil {
		return true, nil
	}
	count, err := rd.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := rd.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(limit), nil
}

func ResetAttempts(ctx context.Context, key string) {
	CacheDel(ctx, key)
}
