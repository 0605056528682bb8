package iocache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/huangsam/leaguerank/internal/contract"
	"github.com/huangsam/leaguerank/schema"
	"github.com/redis/go-redis/v9"
)

// Redis cache settings.
const (
	redisOpTimeout = 5 * time.Second
	redisEntryTTL  = 30 * 24 * time.Hour
	redisScanBatch = 500
)

// ErrCacheMiss is returned by the Redis store when a key is absent.
var ErrCacheMiss = errors.New("cache miss")

// redisEntry is the value stored under each Redis key.
type redisEntry struct {
	Version   int    `json:"v"`
	Timestamp int64  `json:"ts"`
	Data      []byte `json:"data"`
}

// RedisCacheStore keeps cached intervals in Redis under a key prefix.
type RedisCacheStore struct {
	client *redis.Client
	prefix string
}

var _ contract.CacheStore = &RedisCacheStore{} // Compile-time check

// NewRedisCacheStore connects to Redis using a redis:// or rediss:// URL.
func NewRedisCacheStore(prefix, url string) (*RedisCacheStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return &RedisCacheStore{client: client, prefix: prefix + ":"}, nil
}

func (rs *RedisCacheStore) key(k string) string {
	return rs.prefix + k
}

// Get implements the CacheStore interface.
func (rs *RedisCacheStore) Get(key string) ([]byte, int, int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	raw, err := rs.client.Get(ctx, rs.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, 0, 0, ErrCacheMiss
	}
	if err != nil {
		return nil, 0, 0, err
	}
	entry, err := decodeRedisEntry(raw)
	if err != nil {
		return nil, 0, 0, err
	}
	return entry.Data, entry.Version, entry.Timestamp, nil
}

// Set implements the CacheStore interface. Entries expire after redisEntryTTL.
func (rs *RedisCacheStore) Set(key string, value []byte, version int, timestamp int64) error {
	raw, err := json.Marshal(redisEntry{Version: version, Timestamp: timestamp, Data: value})
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	return rs.client.Set(ctx, rs.key(key), raw, redisEntryTTL).Err()
}

// GetStatus implements the CacheStore interface by scanning the key prefix.
func (rs *RedisCacheStore) GetStatus() (schema.CacheStatus, error) {
	status := schema.CacheStatus{Backend: string(schema.RedisBackend), Connected: true}
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()

	keys, err := rs.scanKeys(ctx)
	if err != nil {
		return status, fmt.Errorf("failed to scan cache keys: %w", err)
	}
	status.TotalEntries = len(keys)
	if len(keys) == 0 {
		return status, nil
	}

	values, err := rs.client.MGet(ctx, keys...).Result()
	if err != nil {
		return status, fmt.Errorf("failed to read cache entries: %w", err)
	}
	var newest, oldest int64
	for _, v := range values {
		s, ok := v.(string)
		if !ok {
			continue // expired between scan and read
		}
		status.TableSizeBytes += int64(len(s))
		entry, err := decodeRedisEntry([]byte(s))
		if err != nil {
			continue
		}
		if newest == 0 || entry.Timestamp > newest {
			newest = entry.Timestamp
		}
		if oldest == 0 || entry.Timestamp < oldest {
			oldest = entry.Timestamp
		}
	}
	status.LastEntryTime = time.Unix(newest, 0)
	status.OldestEntryTime = time.Unix(oldest, 0)
	return status, nil
}

// Clear deletes every key under the store prefix.
func (rs *RedisCacheStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpTimeout)
	defer cancel()
	keys, err := rs.scanKeys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return rs.client.Del(ctx, keys...).Err()
}

// Close implements the CacheStore interface.
func (rs *RedisCacheStore) Close() error {
	return rs.client.Close()
}

func (rs *RedisCacheStore) scanKeys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := rs.client.Scan(ctx, 0, rs.prefix+"*", redisScanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	return keys, iter.Err()
}

func decodeRedisEntry(raw []byte) (redisEntry, error) {
	var entry redisEntry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return entry, fmt.Errorf("corrupt cache entry: %w", err)
	}
	return entry, nil
}
