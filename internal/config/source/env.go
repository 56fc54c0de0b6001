package source

import (
	"os"
	"strconv"
	"time"

	"resource-base/internal/config/schema"
)

// DefaultEnvPrefix is the environment variable prefix used by resctl
const DefaultEnvPrefix = "RESBASE"

// EnvSource loads configuration from environment variables
type EnvSource struct {
	prefix string
}

// NewEnvSource creates a new EnvSource with the specified prefix
func NewEnvSource(prefix string) *EnvSource {
	return &EnvSource{
		prefix: prefix,
	}
}

// Name returns the source name
func (s *EnvSource) Name() string {
	return "env"
}

// Priority returns the source priority
func (s *EnvSource) Priority() int {
	return PriorityEnv
}

// LoadInto loads environment variables into the config structure
// Resource definitions are only read from YAML
func (s *EnvSource) LoadInto(cfg *schema.Root) error {
	// Log
	s.loadString("LOG_LEVEL", &cfg.Log.Level)
	s.loadString("LOG_FORMAT", &cfg.Log.Format)
	s.loadString("LOG_OUTPUT", &cfg.Log.Output)
	s.loadString("LOG_FILE", &cfg.Log.File)

	// Storage
	s.loadString("STORAGE_TYPE", &cfg.Storage.Type)
	s.loadString("REDIS_ADDR", &cfg.Storage.Redis.Addr)
	s.loadSecret("REDIS_PASSWORD", &cfg.Storage.Redis.Password)
	s.loadInt("REDIS_DB", &cfg.Storage.Redis.DB)
	s.loadInt("REDIS_POOL_SIZE", &cfg.Storage.Redis.PoolSize)
	s.loadInt("REDIS_MIN_IDLE_CONNS", &cfg.Storage.Redis.MinIdleConns)
	s.loadInt("REDIS_MAX_RETRIES", &cfg.Storage.Redis.MaxRetries)
	s.loadDuration("REDIS_DIAL_TIMEOUT", &cfg.Storage.Redis.DialTimeout)
	s.loadDuration("REDIS_READ_TIMEOUT", &cfg.Storage.Redis.ReadTimeout)
	s.loadDuration("REDIS_WRITE_TIMEOUT", &cfg.Storage.Redis.WriteTimeout)

	return nil
}

// getEnv gets environment variable with the configured prefix
func (s *EnvSource) getEnv(key string) (string, bool) {
	prefixedKey := s.prefix + "_" + key
	if v := os.Getenv(prefixedKey); v != "" {
		return v, true
	}
	return "", false
}

func (s *EnvSource) loadString(key string, target *string) {
	if v, ok := s.getEnv(key); ok {
		*target = v
	}
}

func (s *EnvSource) loadSecret(key string, target *schema.Secret) {
	if v, ok := s.getEnv(key); ok {
		*target = schema.Secret(v)
	}
}

// loadInt ignores values that do not parse; the validator reports the result
func (s *EnvSource) loadInt(key string, target *int) {
	if v, ok := s.getEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			*target = i
		}
	}
}

func (s *EnvSource) loadDuration(key string, target *time.Duration) {
	if v, ok := s.getEnv(key); ok {
		if d, err := time.ParseDuration(v); err == nil {
			*target = d
		}
	}
}
