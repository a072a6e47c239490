// Package logging builds the zap loggers used by the managers and the container.
package logging

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config describes a logger.
type Config struct {
	// Level is one of debug, info, warn, error. Empty means info.
	Level string

	// Encoding is json or console. Empty means json.
	Encoding string

	// Output receives the log stream. Nil means stdout.
	Output io.Writer

	// File, when set, adds a rotating file sink next to Output.
	File *FileConfig
}

// FileConfig configures the rotating file sink.
type FileConfig struct {
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

// DefaultConfig returns an info level JSON logger writing to stdout.
func DefaultConfig() Config {
	return Config{Level: "info", Encoding: "json"}
}

// Validate checks the level, the encoding and the file sink.
func (c Config) Validate() error {
	if _, err := c.level(); err != nil {
		return err
	}
	switch c.Encoding {
	case "", "json", "console":
	default:
		return fmt.Errorf("logging: unknown encoding %q", c.Encoding)
	}
	if c.File != nil && c.File.Path == "" {
		return fmt.Errorf("logging: file path is required")
	}
	return nil
}

func (c Config) level() (zapcore.Level, error) {
	if c.Level == "" {
		return zapcore.InfoLevel, nil
	}
	lvl, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return lvl, fmt.Errorf("logging: %w", err)
	}
	return lvl, nil
}

func (c Config) encoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	if c.Encoding == "console" {
		return zapcore.NewConsoleEncoder(encoderConfig)
	}
	return zapcore.NewJSONEncoder(encoderConfig)
}

// New builds a logger from cfg.
func New(cfg Config) (*zap.Logger, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	level, _ := cfg.level()

	var out io.Writer = os.Stdout
	if cfg.Output != nil {
		out = cfg.Output
	}

	cores := []zapcore.Core{
		zapcore.NewCore(cfg.encoder(), zapcore.AddSync(out), level),
	}

	if cfg.File != nil {
		cores = append(cores, zapcore.NewCore(
			cfg.encoder(),
			zapcore.AddSync(&lumberjack.Logger{
				Filename:   cfg.File.Path,
				MaxSize:    cfg.File.MaxSizeMB,
				MaxBackups: cfg.File.MaxBackups,
				MaxAge:     cfg.File.MaxAgeDays,
				Compress:   cfg.File.Compress,
			}),
			level,
		))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)), nil
}
