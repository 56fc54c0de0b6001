package source

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"resource-base/internal/config/schema"
	coreerrors "resource-base/internal/core/errors"
)

// YAMLSource loads configuration from YAML files
type YAMLSource struct {
	paths    []string // list of YAML file paths to load
	required bool     // missing files are an error
}

// NewYAMLSource creates a new YAMLSource with the specified file paths
func NewYAMLSource(paths ...string) *YAMLSource {
	return &YAMLSource{
		paths: paths,
	}
}

// Required makes missing files an error instead of being skipped
func (s *YAMLSource) Required() *YAMLSource {
	s.required = true
	return s
}

// Name returns the source name
func (s *YAMLSource) Name() string {
	return "yaml"
}

// Priority returns the source priority
func (s *YAMLSource) Priority() int {
	return PriorityYAML
}

// LoadInto loads YAML configuration into the config structure
// Files are loaded in order, with later files overriding earlier ones.
// A later file that declares resources replaces the whole resource list.
func (s *YAMLSource) LoadInto(cfg *schema.Root) error {
	for _, path := range s.paths {
		if path == "" {
			continue
		}

		// Expand path (handle ~ and relative paths)
		expandedPath, err := expandPath(path)
		if err != nil {
			return coreerrors.Wrapf(err, coreerrors.CodeConfigError, "failed to expand path %q", path)
		}

		data, err := os.ReadFile(expandedPath)
		if errors.Is(err, os.ErrNotExist) && !s.required {
			// Skip non-existent files silently
			continue
		}
		if err != nil {
			return coreerrors.Wrapf(err, coreerrors.CodeConfigError, "failed to read config file %q", expandedPath)
		}

		if err := decodeStrict(data, cfg); err != nil {
			return coreerrors.Wrapf(err, coreerrors.CodeConfigError, "failed to parse YAML file %q", expandedPath)
		}
	}

	return nil
}

// decodeStrict rejects unknown keys so typos in resource definitions surface early
func decodeStrict(data []byte, cfg *schema.Root) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// FindConfigFile searches for a configuration file in standard locations
// Returns the first found file path, or empty string if none found
func FindConfigFile(configFile string) string {
	// If explicitly specified, use that
	if configFile != "" {
		expanded, err := expandPath(configFile)
		if err == nil {
			return expanded
		}
		return configFile
	}

	searchPaths := []string{
		"./resctl.yaml",
		"./resources.yaml",
	}

	// Add user config directory
	if homeDir, err := os.UserHomeDir(); err == nil {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".resctl", "config.yaml"))
	}

	// Add system config directory
	searchPaths = append(searchPaths, "/etc/resctl/config.yaml")

	// Search for first existing file
	for _, path := range searchPaths {
		expanded, err := expandPath(path)
		if err != nil {
			continue
		}
		if _, err := os.Stat(expanded); err == nil {
			return expanded
		}
	}

	return ""
}

// expandPath expands ~ to user home directory
func expandPath(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[1:])
	}

	return filepath.Clean(path), nil
}
