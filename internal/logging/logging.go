// Package logging provides structured logging utilities.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Logger is the global logger instance
	Logger *zap.Logger

	closeOutput = func() {}
)

// Config contains logging configuration
type Config struct {
	// Level is the minimum log level
	Level string `json:"level" yaml:"level" mapstructure:"level"`

	// Format is the output format (json, console)
	Format string `json:"format" yaml:"format" mapstructure:"format"`

	// Output is stdout, stderr or a file path
	Output string `json:"output" yaml:"output" mapstructure:"output"`

	// Development enables development mode
	Development bool `json:"development" yaml:"development" mapstructure:"development"`
}

// DefaultConfig keeps the CLI quiet unless something goes wrong
func DefaultConfig() Config {
	return Config{
		Level:  "warn",
		Format: "console",
		Output: "stderr",
	}
}

// level parses the configured level, falling back to info
func (c Config) level() zapcore.Level {
	l, err := zapcore.ParseLevel(c.Level)
	if err != nil {
		return zapcore.InfoLevel
	}
	return l
}

// New builds a logger without touching the global one.
// The returned func releases the output and must be called once the
// logger is no longer used.
func New(cfg Config) (*zap.Logger, func(), error) {
	return build(cfg, cfg.level())
}

// NewEventLogger builds a logger for analytics events. Events are logged
// at info, so a quieter configured level is lowered to info.
func NewEventLogger(cfg Config) (*zap.Logger, func(), error) {
	l := cfg.level()
	if l > zapcore.InfoLevel {
		l = zapcore.InfoLevel
	}
	return build(cfg, l)
}

func build(cfg Config, level zapcore.Level) (*zap.Logger, func(), error) {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	if cfg.Format == "console" {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	output := cfg.Output
	if output == "" {
		output = "stderr"
	}
	sink, closeSink, err := zap.Open(output)
	if err != nil {
		return nil, nil, err
	}

	opts := []zap.Option{zap.AddCaller()}
	if cfg.Development {
		opts = append(opts, zap.Development(), zap.AddStacktrace(zapcore.ErrorLevel))
	}
	return zap.New(zapcore.NewCore(encoder, sink, level), opts...), closeSink, nil
}

// Initialize replaces the global logger and releases the previous output
func Initialize(cfg Config) error {
	logger, closeSink, err := New(cfg)
	if err != nil {
		return err
	}
	Close()
	Logger = logger
	closeOutput = closeSink
	return nil
}

// Close flushes the global logger and releases its output.
// Logging after Close is discarded.
func Close() {
	if Logger != nil {
		_ = Logger.Sync()
	}
	closeOutput()
	closeOutput = func() {}
	Logger = zap.NewNop()
}

// Debug logs at debug level
func Debug(msg string, fields ...zap.Field) {
	Logger.Debug(msg, fields...)
}

// Info logs at info level
func Info(msg string, fields ...zap.Field) {
	Logger.Info(msg, fields...)
}

// Warn logs at warn level
func Warn(msg string, fields ...zap.Field) {
	Logger.Warn(msg, fields...)
}

func init() {
	_ = Initialize(DefaultConfig())
}
