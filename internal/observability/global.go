package observability

import "sync"

var (
	globalMu     sync.RWMutex
	globalLogger Logger = NopLogger()
)

// SetGlobalLogger sets the process-wide logger used by code without an
// injected logger.
func SetGlobalLogger(logger Logger) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalLogger = logger
}

// GetGlobalLogger returns the process-wide logger.
func GetGlobalLogger() Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalLogger
}
