package store

import (
	"fmt"
	"time"
)

// =============================================================================
// 存储配置
// =============================================================================

// StorageConfig 存储配置
type StorageConfig struct {
	// Type 存储类型：redis | embedded | memory
	Type StoreType `yaml:"type"`

	// Redis Redis 配置（Type=redis 时使用）
	Redis *RedisConfig `yaml:"redis,omitempty"`
}

// RedisConfig Redis 配置
type RedisConfig struct {
	// Addr Redis 地址
	Addr string `yaml:"addr"`

	// Password 密码
	Password string `yaml:"password"`

	// DB 数据库编号
	DB int `yaml:"db"`

	// PoolSize 连接池大小
	PoolSize int `yaml:"pool_size"`

	// MinIdleConns 最小空闲连接数
	MinIdleConns int `yaml:"min_idle_conns"`

	// DialTimeout 连接超时
	DialTimeout time.Duration `yaml:"dial_timeout"`

	// ReadTimeout 读取超时
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout 写入超时
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// MaxRetries 客户端层重试次数（资源层本身不做重试）
	MaxRetries int `yaml:"max_retries"`
}

// DefaultStorageConfig 默认存储配置：内嵌 Redis
func DefaultStorageConfig() *StorageConfig {
	return &StorageConfig{
		Type: StoreTypeEmbedded,
	}
}

// DefaultRedisConfig 默认 Redis 配置
func DefaultRedisConfig() *RedisConfig {
	return &RedisConfig{
		Addr:         "localhost:6379",
		Password:     "",
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		MaxRetries:   3,
	}
}

// Validate 验证配置并填充默认值
func (c *StorageConfig) Validate() error {
	if c.Type == "" {
		c.Type = StoreTypeEmbedded
	}

	switch c.Type {
	case StoreTypeMemory, StoreTypeEmbedded:
		return nil
	case StoreTypeRedis:
	default:
		return fmt.Errorf("unsupported storage type: %s", c.Type)
	}

	if c.Redis == nil {
		c.Redis = DefaultRedisConfig()
	}
	defaults := DefaultRedisConfig()
	if c.Redis.Addr == "" {
		c.Redis.Addr = defaults.Addr
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("invalid redis db: %d", c.Redis.DB)
	}
	if c.Redis.PoolSize <= 0 {
		c.Redis.PoolSize = defaults.PoolSize
	}
	if c.Redis.DialTimeout <= 0 {
		c.Redis.DialTimeout = defaults.DialTimeout
	}
	if c.Redis.ReadTimeout <= 0 {
		c.Redis.ReadTimeout = defaults.ReadTimeout
	}
	if c.Redis.WriteTimeout <= 0 {
		c.Redis.WriteTimeout = defaults.WriteTimeout
	}
	return nil
}
