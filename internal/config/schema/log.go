package schema

import corelog "resource-base/internal/core/log"

// LogConfig contains logging configuration
type LogConfig struct {
	Level  string `yaml:"level" json:"level"`   // debug/info/warn/error
	Format string `yaml:"format" json:"format"` // text/json
	Output string `yaml:"output" json:"output"` // stdout/stderr/file
	File   string `yaml:"file" json:"file"`     // log file path when output is file
}

// ToLogConfig converts to the logger configuration
func (c LogConfig) ToLogConfig() corelog.Config {
	return corelog.Config{
		Level:  c.Level,
		Format: c.Format,
		Output: c.Output,
		File:   c.File,
	}
}
