package source

import (
	"testing"
	"time"

	"resource-base/internal/config/schema"
)

func TestEnvSource_Priority(t *testing.T) {
	s := NewEnvSource(DefaultEnvPrefix)
	if s.Name() != "env" {
		t.Errorf("Name() = %q, want %q", s.Name(), "env")
	}
	if s.Priority() != PriorityEnv {
		t.Errorf("Priority() = %d, want %d", s.Priority(), PriorityEnv)
	}
}

func TestEnvSource_LoadInto(t *testing.T) {
	t.Setenv("RESBASE_LOG_LEVEL", "debug")
	t.Setenv("RESBASE_STORAGE_TYPE", "redis")
	t.Setenv("RESBASE_REDIS_ADDR", "redis:6379")
	t.Setenv("RESBASE_REDIS_PASSWORD", "hunter22")
	t.Setenv("RESBASE_REDIS_DB", "3")
	t.Setenv("RESBASE_REDIS_DIAL_TIMEOUT", "250ms")

	cfg := &schema.Root{}
	if err := NewEnvSource(DefaultEnvPrefix).LoadInto(cfg); err != nil {
		t.Fatalf("LoadInto() error = %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "debug")
	}
	if cfg.Storage.Type != "redis" {
		t.Errorf("Storage.Type = %q, want %q", cfg.Storage.Type, "redis")
	}
	if cfg.Storage.Redis.Addr != "redis:6379" {
		t.Errorf("Redis.Addr = %q", cfg.Storage.Redis.Addr)
	}
	if cfg.Storage.Redis.Password.Value() != "hunter22" {
		t.Errorf("Redis.Password not loaded")
	}
	if cfg.Storage.Redis.DB != 3 {
		t.Errorf("Redis.DB = %d, want 3", cfg.Storage.Redis.DB)
	}
	if cfg.Storage.Redis.DialTimeout != 250*time.Millisecond {
		t.Errorf("Redis.DialTimeout = %v, want 250ms", cfg.Storage.Redis.DialTimeout)
	}
}

func TestEnvSource_InvalidValuesIgnored(t *testing.T) {
	t.Setenv("RESBASE_REDIS_DB", "not-a-number")
	t.Setenv("RESBASE_REDIS_READ_TIMEOUT", "soon")

	cfg := &schema.Root{}
	cfg.Storage.Redis.DB = 1
	cfg.Storage.Redis.ReadTimeout = time.Second
	if err := NewEnvSource(DefaultEnvPrefix).LoadInto(cfg); err != nil {
		t.Fatalf("LoadInto() error = %v", err)
	}

	if cfg.Storage.Redis.DB != 1 {
		t.Errorf("Redis.DB = %d, want 1", cfg.Storage.Redis.DB)
	}
	if cfg.Storage.Redis.ReadTimeout != time.Second {
		t.Errorf("Redis.ReadTimeout = %v, want 1s", cfg.Storage.Redis.ReadTimeout)
	}
}

func TestEnvSource_CustomPrefix(t *testing.T) {
	t.Setenv("OTHER_LOG_LEVEL", "warn")
	t.Setenv("RESBASE_LOG_LEVEL", "debug")

	cfg := &schema.Root{}
	_ = NewEnvSource("OTHER").LoadInto(cfg)
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q", cfg.Log.Level, "warn")
	}
}
