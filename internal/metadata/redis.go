package metadata

import (
	"context"
	"fmt"
	"strconv"
)

// KeyValue is the subset of the Redis client the store needs.
type KeyValue interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Ping(ctx context.Context) error
	Close() error
}

// RedisStore keeps one string key per document: <prefix><docID> -> URL.
type RedisStore struct {
	kv     KeyValue
	prefix string
	isMiss func(error) bool
}

// NewRedisStore wraps kv. isMiss reports whether an error from Get means the
// key does not exist.
func NewRedisStore(kv KeyValue, prefix string, isMiss func(error) bool) *RedisStore {
	return &RedisStore{kv: kv, prefix: prefix, isMiss: isMiss}
}

func (s *RedisStore) Key(docID int) string {
	return s.prefix + strconv.Itoa(docID)
}

func (s *RedisStore) Lookup(ctx context.Context, docID int) (string, bool, error) {
	url, err := s.kv.Get(ctx, s.Key(docID))
	if err != nil {
		if s.isMiss(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("redis get %s: %w", s.Key(docID), err)
	}
	if url == "" {
		return "", false, nil
	}
	return url, true, nil
}

func (s *RedisStore) Put(ctx context.Context, docID int, url string) error {
	if err := s.kv.Set(ctx, s.Key(docID), url); err != nil {
		return fmt.Errorf("redis set %s: %w", s.Key(docID), err)
	}
	return nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.kv.Ping(ctx)
}

func (s *RedisStore) Close() error {
	return s.kv.Close()
}
