// Package factory 提供存储工厂
package factory

import (
	"context"
	"fmt"

	"resource-base/internal/core/store"
	"resource-base/internal/core/store/embedded"
	"resource-base/internal/core/store/memory"
	redisstore "resource-base/internal/core/store/redis"
)

// =============================================================================
// StoreFactory 存储工厂
// =============================================================================

// StoreFactory 按存储配置创建 KVStore
type StoreFactory struct {
	config *store.StorageConfig
}

// NewStoreFactory 创建存储工厂，nil 配置使用默认值（embedded）
func NewStoreFactory(config *store.StorageConfig) (*StoreFactory, error) {
	if config == nil {
		config = store.DefaultStorageConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid storage config: %w", err)
	}

	return &StoreFactory{config: config}, nil
}

// Type 返回最终使用的存储类型
func (f *StoreFactory) Type() store.StoreType {
	return f.config.Type
}

// CreateKVStore 创建存储，调用方负责 Close
func (f *StoreFactory) CreateKVStore(ctx context.Context) (store.KVStore, error) {
	switch f.config.Type {
	case store.StoreTypeMemory:
		return memory.NewMemoryStore(), nil

	case store.StoreTypeEmbedded:
		s, err := embedded.NewEmbeddedStore()
		if err != nil {
			return nil, fmt.Errorf("create embedded store: %w", err)
		}
		return s, nil

	case store.StoreTypeRedis:
		s, err := redisstore.NewRedisStoreFromConfig(ctx, f.config.Redis)
		if err != nil {
			return nil, fmt.Errorf("create redis store: %w", err)
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", f.config.Type)
	}
}

// New 根据配置直接创建存储
func New(ctx context.Context, config *store.StorageConfig) (store.KVStore, error) {
	f, err := NewStoreFactory(config)
	if err != nil {
		return nil, err
	}
	return f.CreateKVStore(ctx)
}
