package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/alextreichler/spiritflow/internal/config"
)

// ErrNotFound is returned by a Backend when a key has never been written.
var ErrNotFound = errors.New("key not found")

// Backend is the durable key-value medium the store mirrors its collections to.
// Each key holds one independently serialized collection.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// OpenBackend builds the backend selected by cfg.StorageDriver.
func OpenBackend(ctx context.Context, cfg *config.Config) (Backend, error) {
	switch strings.ToLower(cfg.StorageDriver) {
	case "", "sqlite":
		return NewSQLBackend(ctx, "sqlite", cfg.DBPath)
	case "postgres":
		return NewSQLBackend(ctx, "postgres", cfg.DatabaseURL)
	case "redis":
		return NewRedisBackend(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	case "memory":
		return NewMemoryBackend(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}

// MemoryBackend keeps values in process memory. Used by tests and throwaway demos.
type MemoryBackend struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (m *MemoryBackend) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *MemoryBackend) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

func (m *MemoryBackend) Close() error { return nil }
