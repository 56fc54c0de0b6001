// Package loader provides multi-source configuration loading
package loader

import (
	"sort"

	"resource-base/internal/config/schema"
	"resource-base/internal/config/source"
	"resource-base/internal/config/validator"
	coreerrors "resource-base/internal/core/errors"
	corelog "resource-base/internal/core/log"
)

// DefaultEnvPrefix is the environment variable prefix used by the builder
const DefaultEnvPrefix = source.DefaultEnvPrefix

// Loader loads configuration from multiple sources in priority order
type Loader struct {
	sources        []source.Source
	skipValidation bool
}

// NewLoader creates a new Loader
func NewLoader() *Loader {
	return &Loader{
		sources: make([]source.Source, 0),
	}
}

// AddSource adds a configuration source
func (l *Loader) AddSource(s source.Source) {
	l.sources = append(l.sources, s)
}

// SetSkipValidation disables the validation phase
func (l *Loader) SetSkipValidation(skip bool) {
	l.skipValidation = skip
}

// Load loads configuration from all sources in priority order
// Lower priority sources are loaded first, then higher priority sources override
func (l *Loader) Load() (*schema.Root, error) {
	if len(l.sources) == 0 {
		return nil, coreerrors.New(coreerrors.CodeConfigError, "no configuration sources registered")
	}

	// Sort sources by priority (ascending), keeping registration order for ties
	sorted := make([]source.Source, len(l.sources))
	copy(sorted, l.sources)
	sort.Stable(source.ByPriority(sorted))

	cfg := &schema.Root{}

	for _, s := range sorted {
		corelog.Debugf("Loading configuration from source: %s (priority %d)", s.Name(), s.Priority())
		if err := s.LoadInto(cfg); err != nil {
			if coreerrors.IsCode(err, coreerrors.CodeConfigError) {
				return nil, err
			}
			return nil, coreerrors.Wrapf(err, coreerrors.CodeConfigError,
				"failed to load configuration from source %s", s.Name())
		}
	}

	if !l.skipValidation {
		if err := validator.ValidateConfig(cfg).Err(); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// LoaderBuilder helps build a Loader with common configurations
type LoaderBuilder struct {
	loader         *Loader
	prefix         string
	configFile     string
	flags          *source.FlagSource
	skipValidation bool
}

// NewLoaderBuilder creates a new LoaderBuilder
func NewLoaderBuilder() *LoaderBuilder {
	return &LoaderBuilder{
		loader: NewLoader(),
		prefix: DefaultEnvPrefix,
	}
}

// WithPrefix sets the environment variable prefix
func (b *LoaderBuilder) WithPrefix(prefix string) *LoaderBuilder {
	b.prefix = prefix
	return b
}

// WithConfigFile sets the configuration file path
// An explicit file must exist; without one the standard locations are searched
func (b *LoaderBuilder) WithConfigFile(path string) *LoaderBuilder {
	b.configFile = path
	return b
}

// WithFlags adds command-line overrides (highest priority)
func (b *LoaderBuilder) WithFlags(flags *source.FlagSource) *LoaderBuilder {
	b.flags = flags
	return b
}

// WithSkipValidation enables or disables the validation phase
func (b *LoaderBuilder) WithSkipValidation(skip bool) *LoaderBuilder {
	b.skipValidation = skip
	return b
}

// Build creates the configured Loader
func (b *LoaderBuilder) Build() *Loader {
	// 1. Add default source (lowest priority)
	b.loader.AddSource(source.NewDefaultSource())

	// 2. Add YAML source
	if b.configFile != "" {
		b.loader.AddSource(source.NewYAMLSource(b.configFile).Required())
		corelog.Debugf("Using config file: %s", b.configFile)
	} else if found := source.FindConfigFile(""); found != "" {
		b.loader.AddSource(source.NewYAMLSource(found))
		corelog.Debugf("Using config file: %s", found)
	}

	// 3. Add environment variable source
	b.loader.AddSource(source.NewEnvSource(b.prefix))

	// 4. Add CLI overrides
	if b.flags != nil {
		b.loader.AddSource(b.flags)
	}

	b.loader.SetSkipValidation(b.skipValidation)

	return b.loader
}

// Load is a convenience function that creates a loader and loads configuration
func Load(configFile string) (*schema.Root, error) {
	return NewLoaderBuilder().
		WithConfigFile(configFile).
		Build().
		Load()
}
