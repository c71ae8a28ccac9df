package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"go-jobradar-automation/internal/jobs"
)

const (
	redisSourcesKey = "jobradar:sources"
	redisSeenPrefix = "jobradar:seen:"
)

// RedisStore keeps one set of seen job ids per source, plus a set of known
// source names so LoadAll does not need a SCAN.
type RedisStore struct {
	url string
	rdb *redis.Client
}

func NewRedisStore(url string) *RedisStore {
	return &RedisStore{url: url}
}

func (s *RedisStore) Connect(ctx context.Context) error {
	opts, err := redis.ParseURL(s.url)
	if err != nil {
		return fmt.Errorf("redis.ParseURL(%q): %w", s.url, err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}

	s.rdb = client
	return nil
}

func (s *RedisStore) LoadAll(ctx context.Context) (map[string]map[string]struct{}, error) {
	if s.rdb == nil {
		return nil, fmt.Errorf("redis store is not connected")
	}
	sources, err := s.rdb.SMembers(ctx, redisSourcesKey).Result()
	if err != nil {
		return nil, fmt.Errorf("loading source names: %w", err)
	}

	out := make(map[string]map[string]struct{}, len(sources))
	for _, source := range sources {
		ids, err := s.rdb.SMembers(ctx, redisSeenPrefix+source).Result()
		if err != nil {
			return nil, fmt.Errorf("loading seen set for %s: %w", source, err)
		}
		set := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		out[source] = set
	}
	return out, nil
}

// Insert SADDs the whole batch in one pipeline round trip. SADD is already
// idempotent, and the pipeline keeps the batch atomic enough for our
// contract: either the connection survived and everything landed, or
// nothing did.
func (s *RedisStore) Insert(ctx context.Context, source string, records []jobs.Record) error {
	if len(records) == 0 {
		return nil
	}
	if s.rdb == nil {
		return fmt.Errorf("redis store is not connected")
	}

	ids := make([]interface{}, 0, len(records))
	for _, r := range records {
		ids = append(ids, r.ID)
	}

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SAdd(ctx, redisSourcesKey, source)
		pipe.SAdd(ctx, redisSeenPrefix+source, ids...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("inserting %d jobs for %s: %w", len(records), source, err)
	}
	return nil
}

func (s *RedisStore) Close() {
	if s.rdb != nil {
		_ = s.rdb.Close()
	}
}
