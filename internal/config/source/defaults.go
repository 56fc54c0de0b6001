package source

import (
	"time"

	"resource-base/internal/config/schema"
)

// DefaultSource provides default configuration values
type DefaultSource struct{}

// NewDefaultSource creates a new DefaultSource
func NewDefaultSource() *DefaultSource {
	return &DefaultSource{}
}

// Name returns the source name
func (s *DefaultSource) Name() string {
	return "defaults"
}

// Priority returns the source priority
func (s *DefaultSource) Priority() int {
	return PriorityDefaults
}

// LoadInto loads default values into the configuration
// No resources are declared by default
func (s *DefaultSource) LoadInto(cfg *schema.Root) error {
	// Log defaults
	cfg.Log.Level = "info"
	cfg.Log.Format = "text"
	cfg.Log.Output = "stderr"

	// Storage defaults
	cfg.Storage.Type = schema.StorageTypeEmbedded
	cfg.Storage.Redis.Addr = "localhost:6379"
	cfg.Storage.Redis.DB = 0
	cfg.Storage.Redis.PoolSize = 10
	cfg.Storage.Redis.MinIdleConns = 2
	cfg.Storage.Redis.MaxRetries = 3
	cfg.Storage.Redis.DialTimeout = 5 * time.Second
	cfg.Storage.Redis.ReadTimeout = 3 * time.Second
	cfg.Storage.Redis.WriteTimeout = 3 * time.Second

	return nil
}
