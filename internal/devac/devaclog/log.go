// Package devaclog is the structured-logging ambient stack used by the CLI
// and the parser orchestrator. The orchestrator holds a *zap.SugaredLogger
// handle passed in at construction (the seed writer and federation hub take
// no logger), the same way internal/store.Store and
// internal/cache.Cache are handed explicit *sql.DB handles rather than
// reaching for package-level globals.
package devaclog

import "go.uber.org/zap"

// New builds a development-friendly sugared logger. Production callers
// (the CLI) should build their own *zap.Logger with the desired sink and
// call .Sugar() on it instead.
func New() *zap.SugaredLogger {
	logger, err := zap.NewDevelopment()
	if err != nil {
		// zap.NewDevelopment only fails on an unconstructable sink; fall
		// back to the guaranteed-constructible no-op logger rather than
		// panic in a logging helper.
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

// Nop returns a logger that discards everything, for tests that don't want
// log noise but still need a non-nil logger handle.
func Nop() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}
