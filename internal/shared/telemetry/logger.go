package telemetry

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

var (
	mu     sync.RWMutex
	logger = newLogger("dev")
)

// Init reconfigures the process logger for the given environment. Dev gets a
// console writer at debug level; everything else emits JSON at info level.
func Init(env string) {
	mu.Lock()
	logger = newLogger(env)
	mu.Unlock()
}

func newLogger(env string) zerolog.Logger {
	level := zerolog.InfoLevel
	dev := false
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local", "development":
		level = zerolog.DebugLevel
		dev = true
	}

	l := zerolog.New(os.Stdout).
		Level(level).
		With().
		Timestamp().
		Logger()
	if dev {
		l = l.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	return l
}

// Info writes an info-level log line with the given fields.
func Info(msg string, fields map[string]any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Info().Fields(fields).Msg(msg)
}

// Error writes an error-level log line with the given fields.
func Error(msg string, fields map[string]any) {
	mu.RLock()
	l := logger
	mu.RUnlock()
	l.Error().Fields(fields).Msg(msg)
}
