package logging

import (
	"io"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	closerMutex sync.Mutex
	closer      io.Closer
)

// ReloadGlobalLogger reinitializes the global logger instance with updated
// configurations, flushing the writer of the previous one.
func ReloadGlobalLogger() {
	logger, c := NewLogger()

	closerMutex.Lock()
	prev := closer
	closer = c
	closerMutex.Unlock()

	log.Logger = *logger
	zerolog.DefaultContextLogger = &log.Logger

	if prev != nil {
		_ = prev.Close()
	}
}

// Flush drains pending log messages. Safe to call when no logger was loaded.
func Flush() {
	closerMutex.Lock()
	defer closerMutex.Unlock()

	if closer != nil {
		_ = closer.Close()
		closer = nil
	}
}
