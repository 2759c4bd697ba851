package blob

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps each blob in a hash so the payload bytes and the upload
// metadata travel together and expire together.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, key string, data []byte, meta Metadata) error {
	fields := map[string]interface{}{
		"data":         data,
		"filename":     meta.FileName,
		"content_type": meta.ContentType,
	}
	if err := s.client.HSet(ctx, key, fields).Err(); err != nil {
		return fmt.Errorf("blob put %s: %w", key, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, Metadata, error) {
	values, err := s.client.HGetAll(ctx, key).Result()
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("blob get %s: %w", key, err)
	}
	if len(values) == 0 {
		return nil, Metadata{}, ErrNotFound
	}
	meta := Metadata{
		FileName:    values["filename"],
		ContentType: values["content_type"],
	}
	return []byte(values["data"]), meta, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("blob delete %s: %w", key, err)
	}
	return nil
}
