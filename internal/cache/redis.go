package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oszuidwest/zwfm-mixdown/internal/config"
)

const (
	redisKeyPrefix     = "mixdown:mix:"
	redisFieldData       = "data"
	redisFieldDuration   = "duration"
	redisFieldSampleRate = "sample_rate"
	redisFieldChannels   = "channels"
	redisFieldFrames     = "frames"
)

// RedisCache stores renderings as hashes that expire after a fixed TTL.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(ctx context.Context, cfg *config.CacheConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisCacheWithClient(client, cfg.TTL), nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func redisKey(key string) string {
	return redisKeyPrefix + key
}

func (c *RedisCache) Get(ctx context.Context, key string) (Entry, bool, error) {
	values, err := c.client.HGetAll(ctx, redisKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Entry{}, false, nil
		}
		return Entry{}, false, fmt.Errorf("failed to read cache entry: %w", err)
	}
	return decodeRedisEntry(values)
}

func decodeRedisEntry(values map[string]string) (Entry, bool, error) {
	data, ok := values[redisFieldData]
	if !ok {
		return Entry{}, false, nil
	}
	entry := Entry{Data: []byte(data)}
	var err error
	if entry.Duration, err = strconv.ParseFloat(values[redisFieldDuration], 64); err != nil {
		return Entry{}, false, fmt.Errorf("corrupt cache entry duration: %w", err)
	}
	ints := []struct {
		field string
		dst   *int
	}{
		{redisFieldSampleRate, &entry.SampleRate},
		{redisFieldChannels, &entry.Channels},
		{redisFieldFrames, &entry.Frames},
	}
	for _, f := range ints {
		if *f.dst, err = strconv.Atoi(values[f.field]); err != nil {
			return Entry{}, false, fmt.Errorf("corrupt cache entry %s: %w", f.field, err)
		}
	}
	return entry, true, nil
}

func (c *RedisCache) Put(ctx context.Context, key string, entry Entry) error {
	k := redisKey(key)
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, k,
			redisFieldData, entry.Data,
			redisFieldDuration, strconv.FormatFloat(entry.Duration, 'g', -1, 64),
			redisFieldSampleRate, entry.SampleRate,
			redisFieldChannels, entry.Channels,
			redisFieldFrames, entry.Frames,
		)
		if c.ttl > 0 {
			pipe.Expire(ctx, k, c.ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to write cache entry: %w", err)
	}
	return nil
}

func (c *RedisCache) Remove(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, redisKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to remove cache entry: %w", err)
	}
	return nil
}

// Len counts cached renderings with a SCAN over the key prefix.
func (c *RedisCache) Len(ctx context.Context) (int, error) {
	count := 0
	iter := c.client.Scan(ctx, 0, redisKeyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0, fmt.Errorf("failed to count cache entries: %w", err)
	}
	return count, nil
}

// Close releases the Redis connection.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
