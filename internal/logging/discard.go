// Package logging holds the logger lockstep falls back to when the caller
// configures none.
package logging

import "github.com/arloliu/lockstep/types"

type discard struct{}

func (discard) Debug(string, ...any) {}
func (discard) Info(string, ...any) {}
func (discard) Warn(string, ...any) {}
func (discard) Error(string, ...any) {}

// Discard drops every message. Executors and datasource registries start
// with it, so their code never checks for a nil logger.
var Discard types.Logger = discard{}

// OrDiscard returns logger, or Discard when logger is nil.
//
// Parameters:
//   - logger: The configured logger, possibly nil
//
// Returns:
//   - types.Logger: A logger that is safe to call
func OrDiscard(logger types.Logger) types.Logger {
	if logger == nil {
		return Discard
	}

	return logger
}
