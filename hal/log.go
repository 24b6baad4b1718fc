package hal

import "sync"

// LogLevel classifies a message on the HAL log stream.
type LogLevel int

const (
	LogFatal LogLevel = iota + 1
	LogCritical
	LogError
	LogWarning
	LogNotice
	LogInfo
	LogDebug
	LogTrace
	// LogSSI carries streaming status indicators such as "U" (underflow)
	// and "O" (overflow).
	LogSSI
)

var (
	logMu      sync.RWMutex
	logHandler func(LogLevel, string)
)

// SetLogHandler installs the function that receives driver log messages.
// A nil handler discards them.
func SetLogHandler(f func(LogLevel, string)) {
	logMu.Lock()
	logHandler = f
	logMu.Unlock()
}

// Log emits a message on the HAL log stream. Intended for driver use.
func Log(level LogLevel, message string) {
	logMu.RLock()
	f := logHandler
	logMu.RUnlock()
	if f != nil {
		f(level, message)
	}
}
