// Package embedded 提供内嵌 Redis (miniredis) 实现
package embedded

import (
	"fmt"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"resource-base/internal/core/store"
	redisstore "resource-base/internal/core/store/redis"
)

// =============================================================================
// EmbeddedRedis 内嵌 Redis 服务
// =============================================================================

// EmbeddedRedis 内嵌 Redis 服务（基于 miniredis）
// 用于单机模式，无需外部 Redis 依赖
type EmbeddedRedis struct {
	server *miniredis.Miniredis
	client *redis.Client
}

// NewEmbeddedRedis 创建内嵌 Redis
func NewEmbeddedRedis() (*EmbeddedRedis, error) {
	server, err := miniredis.Run()
	if err != nil {
		return nil, fmt.Errorf("start miniredis failed: %w", err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: server.Addr(),
	})

	return &EmbeddedRedis{
		server: server,
		client: client,
	}, nil
}

// GetClient 获取 Redis 客户端
func (e *EmbeddedRedis) GetClient() *redis.Client {
	return e.client
}

// GetAddr 获取服务地址
func (e *EmbeddedRedis) GetAddr() string {
	return e.server.Addr()
}

// Server 获取 miniredis 实例（测试中直接检查数据）
func (e *EmbeddedRedis) Server() *miniredis.Miniredis {
	return e.server
}

// Close 关闭服务
func (e *EmbeddedRedis) Close() error {
	if err := e.client.Close(); err != nil {
		return err
	}
	e.server.Close()
	return nil
}

// FastForward 快进时间
func (e *EmbeddedRedis) FastForward(d time.Duration) {
	e.server.FastForward(d)
}

// FlushAll 清空所有数据
func (e *EmbeddedRedis) FlushAll() {
	e.server.FlushAll()
}

// =============================================================================
// EmbeddedStore 内嵌 Redis 存储
// =============================================================================

// EmbeddedStore 内嵌 Redis 存储
// 封装 miniredis，提供与 RedisStore 相同的接口
type EmbeddedStore struct {
	*redisstore.RedisStore
	embedded *EmbeddedRedis
}

// NewEmbeddedStore 创建内嵌 Redis 存储
func NewEmbeddedStore() (*EmbeddedStore, error) {
	embedded, err := NewEmbeddedRedis()
	if err != nil {
		return nil, err
	}

	return &EmbeddedStore{
		RedisStore: redisstore.NewRedisStore(embedded.GetClient()),
		embedded:   embedded,
	}, nil
}

// Close 关闭存储和内嵌服务
func (s *EmbeddedStore) Close() error {
	return s.embedded.Close()
}

// GetEmbeddedRedis 获取内嵌 Redis 实例
func (s *EmbeddedStore) GetEmbeddedRedis() *EmbeddedRedis {
	return s.embedded
}

var (
	_ store.KVStore    = (*EmbeddedStore)(nil)
	_ store.KeyScanner = (*EmbeddedStore)(nil)
)
