// Package zaplog adapts a go.uber.org/zap logger to the lockstep Logger
// interface.
//
// Example:
//
//	zl, _ := zap.NewProduction()
//	executor, err := lockstep.NewExecutor(registry,
//	    lockstep.WithLogger(zaplog.New(zl)),
//	)
package zaplog

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/arloliu/lockstep/types"
)

// Logger forwards lockstep log calls to a zap SugaredLogger.
type Logger struct {
	sugar *zap.SugaredLogger
}

var _ types.Logger = (*Logger)(nil)

// New wraps a zap logger. A nil logger yields a no-op logger.
func New(l *zap.Logger) *Logger {
	if l == nil {
		l = zap.NewNop()
	}

	// skip the adapter frame so callers are reported correctly
	return &Logger{sugar: l.WithOptions(zap.AddCallerSkip(1)).Sugar()}
}

// NewDevelopment builds a human-readable console logger at the given level.
//
// Parameters:
//   - level: Minimum enabled level ("debug", "info", "warn", "error")
//
// Returns:
//   - *Logger: The adapter
//   - error: If the level is unknown or the logger cannot be built
func NewDevelopment(level string) (*Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.DisableStacktrace = true

	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}

	return New(zl), nil
}

// Debug logs at debug level.
func (l *Logger) Debug(msg string, keysAndValues ...any) {
	l.sugar.Debugw(msg, keysAndValues...)
}

// Info logs at info level.
func (l *Logger) Info(msg string, keysAndValues ...any) {
	l.sugar.Infow(msg, keysAndValues...)
}

// Warn logs at warn level.
func (l *Logger) Warn(msg string, keysAndValues ...any) {
	l.sugar.Warnw(msg, keysAndValues...)
}

// Error logs at error level.
func (l *Logger) Error(msg string, keysAndValues ...any) {
	l.sugar.Errorw(msg, keysAndValues...)
}

// Sync flushes buffered entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}
