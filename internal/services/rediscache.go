package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/redis/go-redis/v9"

	"portfolio-api/internal/models"
)

const redisKeyPrefix = "portfolio:page:"

var errStaleGeneration = errors.New("cache generation moved")

// RedisCacheService is a PageCache shared between server replicas. Each tag
// keeps a set of its member keys so invalidation needs no key scan, and a
// version counter that Set watches.
type RedisCacheService struct {
	client *redis.Client
	ttl    time.Duration
	logger *log.Logger
}

// NewRedisCacheService connects using a redis:// URL and verifies the connection.
func NewRedisCacheService(ctx context.Context, redisURL string, ttl time.Duration) (*RedisCacheService, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis: %w", err)
	}
	return NewRedisCacheServiceWithClient(client, ttl), nil
}

func NewRedisCacheServiceWithClient(client *redis.Client, ttl time.Duration) *RedisCacheService {
	return &RedisCacheService{
		client: client,
		ttl:    ttl,
		logger: log.New(os.Stdout, "[Cache] ", log.LstdFlags),
	}
}

func (rc *RedisCacheService) Get(ctx context.Context, key string) (*models.CacheEntry, bool) {
	values, err := rc.client.HGetAll(ctx, redisKeyPrefix+key).Result()
	if err != nil {
		rc.logger.Printf("Get %s failed: %v", key, err)
		return nil, false
	}
	data, ok := values["data"]
	if !ok {
		return nil, false
	}
	return &models.CacheEntry{
		Data:        []byte(data),
		ContentType: values["contentType"],
	}, true
}

func (rc *RedisCacheService) Generation(ctx context.Context, tag string) (uint64, error) {
	gen, err := rc.client.Get(ctx, versionKey(tag)).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read generation of %s: %w", tag, err)
	}
	return gen, nil
}

// Set writes the entry only while the tag's version still equals gen. The
// version key is watched so an Invalidate racing the write aborts it.
func (rc *RedisCacheService) Set(ctx context.Context, key string, gen uint64, data []byte, contentType string) {
	tag := cacheTag(key)
	redisKey := redisKeyPrefix + key
	verKey := versionKey(tag)

	err := rc.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, verKey).Uint64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleGeneration
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, redisKey, "data", data, "contentType", contentType)
			pipe.Expire(ctx, redisKey, rc.ttl)
			pipe.SAdd(ctx, tagSetKey(tag), redisKey)
			return nil
		})
		return err
	}, verKey)
	switch {
	case err == nil, errors.Is(err, errStaleGeneration), errors.Is(err, redis.TxFailedErr):
	default:
		rc.logger.Printf("Set %s failed: %v", key, err)
	}
}

// Invalidate bumps the tag's version before deleting its members, so a
// rendering started before the call can no longer be stored.
func (rc *RedisCacheService) Invalidate(ctx context.Context, tag string) error {
	if err := rc.client.Incr(ctx, versionKey(tag)).Err(); err != nil {
		return fmt.Errorf("failed to bump tag %s: %w", tag, err)
	}
	setKey := tagSetKey(tag)
	members, err := rc.client.SMembers(ctx, setKey).Result()
	if err != nil {
		return fmt.Errorf("failed to read tag %s: %w", tag, err)
	}
	keys := append(members, setKey)
	if err := rc.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to invalidate tag %s: %w", tag, err)
	}
	return nil
}

func (rc *RedisCacheService) Close() error {
	return rc.client.Close()
}

func tagSetKey(tag string) string {
	return redisKeyPrefix + "tag:" + tag
}

func versionKey(tag string) string {
	return redisKeyPrefix + "ver:" + tag
}

