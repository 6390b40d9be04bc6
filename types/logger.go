package types

// Logger is the structured logger used throughout lockstep.
//
// Messages carry alternating key/value pairs. The interface is satisfied by
// *slog.Logger; contrib/logging/zaplog adapts a zap logger.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}
