// internal/logger/logger.go
package logger

import (
	"errors"
	"io"
	"os"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger расширяет функционал zap.Logger
type Logger struct {
	*zap.Logger
	config *Config
}

// New создает логгер: консоль (stderr) плюс, если задан LogFile, JSON файл с ротацией.
func New(cfg *Config) (*Logger, error) {
	return NewWithConsole(cfg, os.Stderr)
}

// NewWithConsole is New with console output sent to w. The TUI passes a
// LogBuffer here so log lines never reach the terminal it draws on.
func NewWithConsole(cfg *Config, w io.Writer) (*Logger, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if w == nil {
		return nil, errors.New("console writer is required")
	}

	level := zapcore.InfoLevel
	if cfg.Development {
		level = zapcore.DebugLevel
	}

	cores := []zapcore.Core{
		zapcore.NewCore(PrettyEncoder(isTerminal(w)), zapcore.AddSync(w), level),
	}
	if cfg.LogFile != "" {
		cores = append(cores, fileCore(cfg, level))
	}

	return &Logger{
		Logger: zap.New(zapcore.NewTee(cores...),
			zap.AddCaller(),
			zap.AddStacktrace(zapcore.ErrorLevel),
		),
		config: cfg,
	}, nil
}

// fileCore пишет JSON в файл с ротацией lumberjack
func fileCore(cfg *Config, level zapcore.Level) zapcore.Core {
	rotator := &lumberjack.Logger{
		Filename:   cfg.LogFile,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
		Compress:   cfg.Compress,
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	encoderConfig.EncodeCaller = zapcore.ShortCallerEncoder

	return zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(rotator), level)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// WithOperation tags every entry of one CLI operation with a correlation id.
func (l *Logger) WithOperation(operation string) *zap.Logger {
	return l.With(
		zap.String("operation", operation),
		zap.String("correlation_id", uuid.New().String()),
	)
}

// WithComponent добавляет информацию о компоненте системы
func (l *Logger) WithComponent(component string) *zap.Logger {
	return l.With(zap.String("component", component))
}

// TrackPerformance returns an operation logger and a func that logs the
// elapsed time when called.
func (l *Logger) TrackPerformance(operation string) (opLogger *zap.Logger, end func()) {
	start := time.Now()
	opLogger = l.WithOperation(operation)
	opLogger.Debug("Starting operation")

	return opLogger, func() {
		opLogger.Debug("Operation completed", zap.Duration("duration", time.Since(start)))
	}
}

// Sync flushes buffered entries. Terminals and pipes reject fsync; those
// errors are dropped.
func (l *Logger) Sync() error {
	err := l.Logger.Sync()
	if errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) {
		return nil
	}
	return err
}
