// Package obslog provides the structured logger shared by the prover and
// verifier pipelines, grounded on gnark's logger.Logger() accessor (a
// package-level zerolog.Logger returned by value, decorated per call site
// with .With()...Logger()).
package obslog

import (
	"os"
	"sync"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
)

// Logger returns the shared logger. Safe for concurrent use.
func Logger() zerolog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// SetLogger replaces the shared logger, e.g. to redirect to a file or raise
// the level; callers embedding this module in a larger service should call
// this once at startup.
func SetLogger(l zerolog.Logger) {
	mu.Lock()
	defer mu.Unlock()
	logger = l
}
