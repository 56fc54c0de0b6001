package loader

import (
	"os"
	"path/filepath"
	"testing"

	"resource-base/internal/config/schema"
	"resource-base/internal/config/source"
	coreerrors "resource-base/internal/core/errors"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configFile := filepath.Join(t.TempDir(), "resctl.yaml")
	if err := os.WriteFile(configFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return configFile
}

func TestLoader_NewLoader(t *testing.T) {
	l := NewLoader()
	if l == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if len(l.sources) != 0 {
		t.Errorf("NewLoader() sources = %d, want 0", len(l.sources))
	}
}

func TestLoader_Load_NoSources(t *testing.T) {
	_, err := NewLoader().Load()
	if !coreerrors.IsCode(err, coreerrors.CodeConfigError) {
		t.Errorf("Load() error = %v, want CONFIG_ERROR", err)
	}
}

func TestLoader_Load_DefaultsOnly(t *testing.T) {
	l := NewLoader()
	l.AddSource(source.NewDefaultSource())

	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Type != schema.StorageTypeEmbedded {
		t.Errorf("Storage.Type = %q, want %q", cfg.Storage.Type, schema.StorageTypeEmbedded)
	}
	if len(cfg.Resources) != 0 {
		t.Errorf("Resources = %d, want 0", len(cfg.Resources))
	}
}

func TestLoader_Load_PriorityOrder(t *testing.T) {
	configFile := writeConfig(t, `
log:
  level: warn
storage:
  type: memory
`)
	t.Setenv("RESBASE_LOG_LEVEL", "error")

	l := NewLoader()
	// Registered out of order on purpose
	l.AddSource(&source.FlagSource{StorageType: schema.StorageTypeRedis})
	l.AddSource(source.NewEnvSource("RESBASE"))
	l.AddSource(source.NewYAMLSource(configFile))
	l.AddSource(source.NewDefaultSource())

	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Log.Level != "error" {
		t.Errorf("Log.Level = %q, want %q (env should override yaml)", cfg.Log.Level, "error")
	}
	if cfg.Storage.Type != schema.StorageTypeRedis {
		t.Errorf("Storage.Type = %q, want %q (flags should override yaml)", cfg.Storage.Type, schema.StorageTypeRedis)
	}
}

func TestLoader_Load_ValidationFailure(t *testing.T) {
	configFile := writeConfig(t, `
resources:
  - name: article
    fields: [title]
    search_field: slug
`)

	l := NewLoader()
	l.AddSource(source.NewDefaultSource())
	l.AddSource(source.NewYAMLSource(configFile))

	_, err := l.Load()
	if !coreerrors.IsCode(err, coreerrors.CodeConfigError) {
		t.Fatalf("Load() error = %v, want CONFIG_ERROR", err)
	}

	l.SetSkipValidation(true)
	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load() with validation skipped error = %v", err)
	}
	if len(cfg.Resources) != 1 {
		t.Errorf("Resources = %d, want 1", len(cfg.Resources))
	}
}

func TestLoaderBuilder(t *testing.T) {
	configFile := writeConfig(t, `
resources:
  - name: article
    fields: [title, slug]
    search_field: slug
`)
	t.Setenv("TEST_STORAGE_TYPE", "memory")

	l := NewLoaderBuilder().
		WithPrefix("TEST").
		WithConfigFile(configFile).
		WithFlags(&source.FlagSource{LogLevel: "debug"}).
		Build()

	// defaults, yaml, env, flags
	if len(l.sources) != 4 {
		t.Fatalf("Build() sources = %d, want 4", len(l.sources))
	}

	cfg, err := l.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Type != schema.StorageTypeMemory {
		t.Errorf("Storage.Type = %q, want memory", cfg.Storage.Type)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("Log.Level = %q, want debug", cfg.Log.Level)
	}
	if _, ok := cfg.Resource("article"); !ok {
		t.Error("resource article not loaded")
	}
}

func TestLoaderBuilder_MissingExplicitFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.yaml")

	_, err := NewLoaderBuilder().WithConfigFile(missing).Build().Load()
	if !coreerrors.IsCode(err, coreerrors.CodeConfigError) {
		t.Errorf("Load() error = %v, want CONFIG_ERROR", err)
	}
}

func TestLoad_Convenience(t *testing.T) {
	configFile := writeConfig(t, `
storage:
  type: memory
`)

	cfg, err := Load(configFile)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Type != schema.StorageTypeMemory {
		t.Errorf("Storage.Type = %q, want memory", cfg.Storage.Type)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want defaults applied", cfg.Log.Level)
	}
}
