package schema

import (
	"encoding/json"
	"time"

	"resource-base/internal/core/store"
)

// StorageConfig contains storage configuration
type StorageConfig struct {
	Type  string      `yaml:"type" json:"type"` // redis/embedded/memory
	Redis RedisConfig `yaml:"redis" json:"redis"`
}

// RedisConfig contains Redis settings
type RedisConfig struct {
	Addr         string        `yaml:"addr" json:"addr"`
	Password     Secret        `yaml:"password" json:"password"`
	DB           int           `yaml:"db" json:"db"`
	PoolSize     int           `yaml:"pool_size" json:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns" json:"min_idle_conns"`
	MaxRetries   int           `yaml:"max_retries" json:"max_retries"`
	DialTimeout  time.Duration `yaml:"dial_timeout" json:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
}

// Storage type constants
const (
	StorageTypeMemory   = string(store.StoreTypeMemory)
	StorageTypeRedis    = string(store.StoreTypeRedis)
	StorageTypeEmbedded = string(store.StoreTypeEmbedded)
)

// ToStoreConfig converts to the store factory configuration
func (c StorageConfig) ToStoreConfig() *store.StorageConfig {
	cfg := &store.StorageConfig{Type: store.StoreType(c.Type)}
	if cfg.Type == store.StoreTypeRedis {
		cfg.Redis = &store.RedisConfig{
			Addr:         c.Redis.Addr,
			Password:     c.Redis.Password.Value(),
			DB:           c.Redis.DB,
			PoolSize:     c.Redis.PoolSize,
			MinIdleConns: c.Redis.MinIdleConns,
			DialTimeout:  c.Redis.DialTimeout,
			ReadTimeout:  c.Redis.ReadTimeout,
			WriteTimeout: c.Redis.WriteTimeout,
			MaxRetries:   c.Redis.MaxRetries,
		}
	}
	return cfg
}

// Secret is a string that is masked when printed or serialized
type Secret string

// String masks everything but the first and last character
func (s Secret) String() string {
	switch {
	case s == "":
		return ""
	case len(s) <= 6:
		return "******"
	default:
		return string(s[0]) + "******" + string(s[len(s)-1])
	}
}

// Value returns the unmasked value
func (s Secret) Value() string {
	return string(s)
}

// MarshalJSON writes the masked form
func (s Secret) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// MarshalYAML writes the masked form
func (s Secret) MarshalYAML() (interface{}, error) {
	return s.String(), nil
}
