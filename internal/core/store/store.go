// Package store 定义资源层依赖的键值存储协作方
//
// 存储层次结构:
//   - KVStore: 资源层需要的全部原语（字符串值 + 计数器 + 集合）
//   - KeyScanner: 可选扩展，按模式遍历键（用于一致性校验）
//   - HealthChecker / Closer: 连接生命周期
//
// 实现:
//   - redis: 基于 go-redis 的共享存储
//   - embedded: 基于 miniredis 的内嵌存储（单机模式、测试）
//   - memory: 进程内存储
package store

import "context"

// =============================================================================
// 基础存储接口
// =============================================================================

// StringStore 字符串键值操作
type StringStore interface {
	// Get 获取值，键不存在时返回 ("", false, nil)
	Get(ctx context.Context, key string) (string, bool, error)

	// Set 设置值
	Set(ctx context.Context, key string, value string) error

	// Delete 删除键，不存在不返回错误
	Delete(ctx context.Context, key string) error
}

// CounterStore 计数器操作
type CounterStore interface {
	// Incr 原子递增整数值并返回新值，键不存在时从 0 开始
	Incr(ctx context.Context, key string) (int64, error)
}

// SetStore 集合操作（成员为字符串，无序）
type SetStore interface {
	// SAdd 向集合添加元素
	SAdd(ctx context.Context, key string, member string) error

	// SRem 从集合移除元素
	SRem(ctx context.Context, key string, member string) error

	// SIsMember 检查元素是否在集合中
	SIsMember(ctx context.Context, key string, member string) (bool, error)

	// SMembers 获取集合所有成员，集合不存在时返回空切片
	SMembers(ctx context.Context, key string) ([]string, error)
}

// HealthChecker 健康检查接口
type HealthChecker interface {
	// Ping 检查连接是否正常
	Ping(ctx context.Context) error
}

// Closer 关闭接口
type Closer interface {
	// Close 关闭存储连接
	Close() error
}

// KVStore 资源层使用的完整键值存储
// 除 Incr 外，各操作之间没有原子性保证
type KVStore interface {
	StringStore
	CounterStore
	SetStore
	HealthChecker
	Closer
}

// =============================================================================
// 扩展接口
// =============================================================================

// KeyScanner 按 glob 模式遍历键（Redis SCAN 语义，结果无序）
type KeyScanner interface {
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// MetricsProvider 暴露存储指标
type MetricsProvider interface {
	GetMetrics() *StoreMetrics
}

// =============================================================================
// 存储类型标识
// =============================================================================

// StoreType 存储类型
type StoreType string

const (
	// StoreTypeMemory 内存存储
	StoreTypeMemory StoreType = "memory"

	// StoreTypeRedis Redis 存储
	StoreTypeRedis StoreType = "redis"

	// StoreTypeEmbedded 内嵌 Redis (miniredis)
	StoreTypeEmbedded StoreType = "embedded"
)
