package soapysdr

import (
	"context"
	"log/slog"
	"strings"

	"github.com/kevinmehall/go-soapysdr/hal"
)

// ConfigureLogging routes the HAL's log stream, including driver messages
// and streaming status indicators such as "U" (underflow) and "O"
// (overflow), to the given slog logger. A nil logger discards the stream.
func ConfigureLogging(l *slog.Logger) {
	if l == nil {
		hal.SetLogHandler(nil)
		return
	}
	hal.SetLogHandler(func(level hal.LogLevel, message string) {
		l.Log(context.Background(), slogLevel(level), strings.TrimLeft(message, "\r\n"))
	})
}

func slogLevel(level hal.LogLevel) slog.Level {
	switch level {
	case hal.LogFatal, hal.LogCritical, hal.LogError:
		return slog.LevelError
	case hal.LogWarning:
		return slog.LevelWarn
	case hal.LogNotice, hal.LogInfo, hal.LogSSI:
		return slog.LevelInfo
	case hal.LogDebug, hal.LogTrace:
		return slog.LevelDebug
	}
	return slog.LevelError
}
