// Package logging builds the zap logger shared by the CLI and the API server
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// LogDirEnv overrides the directory log files are written to
	LogDirEnv = "HOSTEL_LOG_DIR"
	// LogLevelEnv sets the console level (debug, info, warn, error)
	LogLevelEnv = "HOSTEL_LOG_LEVEL"

	defaultLogDir = "logs"
)

// Options controls where and how much InitLoggerWithOptions writes
type Options struct {
	Dir          string
	ConsoleLevel zapcore.Level
	Console      zapcore.WriteSyncer
	Now          func() time.Time
}

// InitLogger initializes a zap logger writing human-readable lines to stdout and JSON to
// logs/<env>_<timestamp>.log. HOSTEL_LOG_DIR and HOSTEL_LOG_LEVEL override the defaults.
func InitLogger(env string) (*zap.Logger, error) {
	opts := Options{
		Dir:          defaultLogDir,
		ConsoleLevel: zapcore.InfoLevel,
		Console:      zapcore.AddSync(os.Stdout),
		Now:          time.Now,
	}

	if dir := os.Getenv(LogDirEnv); dir != "" {
		opts.Dir = dir
	}
	if raw := os.Getenv(LogLevelEnv); raw != "" {
		level, err := zapcore.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", LogLevelEnv, err)
		}
		opts.ConsoleLevel = level
	}

	return InitLoggerWithOptions(env, opts)
}

// InitLoggerWithOptions is InitLogger with explicit settings. The file always logs at debug.
func InitLoggerWithOptions(env string, opts Options) (*zap.Logger, error) {
	if env == "" {
		env = "default"
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Console == nil {
		opts.Console = zapcore.AddSync(os.Stdout)
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	timestamp := opts.Now().Format("2006-01-02_15-04-05")
	logFileName := filepath.Join(opts.Dir, fmt.Sprintf("%s_%s.log", env, timestamp))
	logFile, err := os.OpenFile(logFileName, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	consoleEncoderConfig := zap.NewDevelopmentEncoderConfig()
	consoleEncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	consoleEncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	fileEncoderConfig := zap.NewProductionEncoderConfig()
	fileEncoderConfig.TimeKey = "timestamp"
	fileEncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	core := zapcore.NewTee(
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleEncoderConfig), opts.Console, opts.ConsoleLevel),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEncoderConfig), zapcore.AddSync(logFile), zapcore.DebugLevel),
	)

	logger := zap.New(core, zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)).
		With(zap.String("env", env))

	return logger, nil
}
