// Package redis 提供 Redis 存储实现
package redis

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"resource-base/internal/core/store"
)

const (
	storeType = "redis"

	// scanBatch 每次 SCAN 的 COUNT 提示
	scanBatch = 100

	// pingTimeout 建立连接时的探活超时
	pingTimeout = 5 * time.Second
)

// =============================================================================
// RedisStore Redis 存储实现
// =============================================================================

// RedisStore 基于 go-redis 的 KVStore
// 键原样写入，不加前缀（键模板由资源配置决定）
type RedisStore struct {
	client  redis.UniversalClient
	metrics *store.StoreMetrics
	owned   bool
}

// NewRedisStore 使用已有客户端创建存储，Close 不会关闭该客户端
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{
		client:  client,
		metrics: store.NewStoreMetrics(),
	}
}

// NewRedisStoreFromConfig 从配置创建 Redis 存储并测试连接
func NewRedisStoreFromConfig(ctx context.Context, cfg *store.RedisConfig) (*RedisStore, error) {
	if cfg == nil {
		cfg = store.DefaultRedisConfig()
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		MaxRetries:   cfg.MaxRetries,
	})

	// 测试连接
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, store.NewStoreError(storeType, "Ping", cfg.Addr, fmt.Errorf("%w: %v", store.ErrConnectionFailed, err))
	}

	s := NewRedisStore(client)
	s.owned = true
	return s, nil
}

// Client 返回底层客户端
func (s *RedisStore) Client() redis.UniversalClient {
	return s.client
}

// wrapError 将 go-redis 错误归类为存储层错误
func wrapError(op, key string, err error) error {
	if err == nil {
		return nil
	}

	var netErr net.Error
	switch {
	case errors.Is(err, redis.ErrClosed):
		err = store.ErrClosed
	case errors.Is(err, context.DeadlineExceeded):
		err = fmt.Errorf("%w: %v", store.ErrTimeout, err)
	case errors.As(err, &netErr) && netErr.Timeout():
		err = fmt.Errorf("%w: %v", store.ErrTimeout, err)
	case errors.As(err, &netErr):
		err = fmt.Errorf("%w: %v", store.ErrConnectionFailed, err)
	case strings.Contains(err.Error(), "would overflow"):
		err = fmt.Errorf("%w: %v", store.ErrOverflow, err)
	case strings.HasPrefix(err.Error(), "WRONGTYPE"),
		strings.Contains(err.Error(), "not an integer"):
		err = fmt.Errorf("%w: %v", store.ErrInvalidType, err)
	}
	return store.NewStoreError(storeType, op, key, err)
}

// Get 获取值，redis.Nil 视为未命中
func (s *RedisStore) Get(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()

	value, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		s.metrics.RecordGet(time.Since(start), false, nil)
		return "", false, nil
	}
	if err != nil {
		wrapped := wrapError("Get", key, err)
		s.metrics.RecordGet(time.Since(start), false, wrapped)
		return "", false, wrapped
	}

	s.metrics.RecordGet(time.Since(start), true, nil)
	return value, true, nil
}

// Set 设置值（不过期）
func (s *RedisStore) Set(ctx context.Context, key string, value string) error {
	start := time.Now()
	err := wrapError("Set", key, s.client.Set(ctx, key, value, 0).Err())
	s.metrics.RecordSet(time.Since(start), err)
	return err
}

// Delete 删除键
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	err := wrapError("Delete", key, s.client.Del(ctx, key).Err())
	s.metrics.RecordDelete(err)
	return err
}

// Incr 原子递增
func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	value, err := s.client.Incr(ctx, key).Result()
	err = wrapError("Incr", key, err)
	s.metrics.RecordIncr(err)
	if err != nil {
		return 0, err
	}
	return value, nil
}

// SAdd 向集合添加元素
func (s *RedisStore) SAdd(ctx context.Context, key string, member string) error {
	err := wrapError("SAdd", key, s.client.SAdd(ctx, key, member).Err())
	s.metrics.RecordSetOp(err)
	return err
}

// SRem 从集合移除元素
func (s *RedisStore) SRem(ctx context.Context, key string, member string) error {
	err := wrapError("SRem", key, s.client.SRem(ctx, key, member).Err())
	s.metrics.RecordSetOp(err)
	return err
}

// SIsMember 检查元素是否在集合中
func (s *RedisStore) SIsMember(ctx context.Context, key string, member string) (bool, error) {
	ok, err := s.client.SIsMember(ctx, key, member).Result()
	err = wrapError("SIsMember", key, err)
	s.metrics.RecordSetOp(err)
	if err != nil {
		return false, err
	}
	return ok, nil
}

// SMembers 获取集合所有成员
func (s *RedisStore) SMembers(ctx context.Context, key string) ([]string, error) {
	members, err := s.client.SMembers(ctx, key).Result()
	err = wrapError("SMembers", key, err)
	s.metrics.RecordSetOp(err)
	if err != nil {
		return nil, err
	}
	if members == nil {
		members = []string{}
	}
	return members, nil
}

// Scan 使用 SCAN 游标遍历匹配的键，结果去重
func (s *RedisStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	seen := make(map[string]struct{})
	keys := make([]string, 0)

	var cursor uint64
	for {
		batch, next, err := s.client.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return nil, wrapError("Scan", pattern, err)
		}
		for _, key := range batch {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			keys = append(keys, key)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return keys, nil
}

// Ping 健康检查
func (s *RedisStore) Ping(ctx context.Context) error {
	return wrapError("Ping", "", s.client.Ping(ctx).Err())
}

// Close 关闭由本存储创建的客户端
func (s *RedisStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

// GetMetrics 获取指标
func (s *RedisStore) GetMetrics() *store.StoreMetrics {
	return s.metrics
}

var (
	_ store.KVStore         = (*RedisStore)(nil)
	_ store.KeyScanner      = (*RedisStore)(nil)
	_ store.MetricsProvider = (*RedisStore)(nil)
)
