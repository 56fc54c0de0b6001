package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// 日志格式与输出目标
const (
	FormatText = "text"
	FormatJSON = "json"

	OutputStdout = "stdout"
	OutputStderr = "stderr"
	OutputFile   = "file"
)

// Config 日志配置
type Config struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"`
	Output string `json:"output" yaml:"output"`
	File   string `json:"file" yaml:"file"`
}

// DefaultConfig 默认日志配置：info 级别，文本格式，输出到 stderr
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Format: FormatText,
		Output: OutputStderr,
	}
}

// NewLogrus 按配置创建 logrus.Logger
// 返回的 io.Closer 在输出为文件时关闭文件，其余情况为空操作
func NewLogrus(cfg Config) (*logrus.Logger, io.Closer, error) {
	l := logrus.New()

	level := cfg.Level
	if level == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level: %s", cfg.Level)
	}
	l.SetLevel(parsed)

	switch strings.ToLower(cfg.Format) {
	case "", FormatText:
		l.SetFormatter(&logrus.TextFormatter{
			TimestampFormat: time.RFC3339,
			FullTimestamp:   true,
		})
	case FormatJSON:
		l.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	default:
		return nil, nil, fmt.Errorf("invalid log format: %s", cfg.Format)
	}

	var closer io.Closer = nopCloser{}
	switch strings.ToLower(cfg.Output) {
	case "", OutputStderr:
		l.SetOutput(os.Stderr)
	case OutputStdout:
		l.SetOutput(os.Stdout)
	case OutputFile:
		if cfg.File == "" {
			return nil, nil, fmt.Errorf("log output is file but no file path is configured")
		}
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		l.SetOutput(file)
		closer = file
	default:
		return nil, nil, fmt.Errorf("invalid log output: %s", cfg.Output)
	}

	return l, closer, nil
}

// Configure 按配置创建 Logger 并设为默认 Logger
func Configure(cfg Config) (Logger, io.Closer, error) {
	l, closer, err := NewLogrus(cfg)
	if err != nil {
		return nil, nil, err
	}
	logger := NewLogrusLogger(l)
	SetDefault(logger)
	return logger, closer, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
