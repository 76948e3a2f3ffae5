package storage

import (
	"context"
	"errors"
	"fmt"

	kvjetstream "github.com/go-monolith/mono/plugin/kv-jetstream"
)

const healthCheckKey = "__health_check__"

// KVStorage adapts a kv-jetstream bucket. The bucket's lifecycle belongs to
// the kv-jetstream plugin, so Close is a no-op.
type KVStorage struct {
	bucket kvjetstream.KVStoragePort
}

var _ Storage = (*KVStorage)(nil)

// NewKVStorage wraps a bucket obtained from kvjetstream.PluginModule.Bucket.
func NewKVStorage(bucket kvjetstream.KVStoragePort) *KVStorage {
	return &KVStorage{bucket: bucket}
}

func (s *KVStorage) Save(_ context.Context, key string, value []byte) error {
	if err := s.bucket.Set(key, value, 0); err != nil {
		return fmt.Errorf("kv set error: %w", err)
	}
	return nil
}

func (s *KVStorage) Load(_ context.Context, key string) ([]byte, bool, error) {
	data, err := s.bucket.Get(key)
	if err != nil {
		if errors.Is(err, kvjetstream.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("kv get error: %w", err)
	}
	return data, true, nil
}

func (s *KVStorage) Delete(_ context.Context, key string) error {
	if err := s.bucket.Delete(key); err != nil && !errors.Is(err, kvjetstream.ErrKeyNotFound) {
		return fmt.Errorf("kv delete error: %w", err)
	}
	return nil
}

func (s *KVStorage) Exists(ctx context.Context, key string) (bool, error) {
	_, found, err := s.Load(ctx, key)
	return found, err
}

func (s *KVStorage) Ping(ctx context.Context) error {
	_, _, err := s.Load(ctx, healthCheckKey)
	return err
}

func (s *KVStorage) Close() error {
	return nil
}
