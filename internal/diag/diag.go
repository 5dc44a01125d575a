// Package diag carries the diagnostics injected into frames and solvers: a
// leveled log sink and a set of Prometheus counters.
package diag

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LevelEnv overrides the log level chosen on the command line.
const LevelEnv = "BRANCHWAVE_LOG_LEVEL"

// Sink receives diagnostic messages. Implementations must be safe for concurrent use.
type Sink interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Debugf(string, ...any) {}
func (Nop) Infof(string, ...any)  {}

// Zerolog adapts a zerolog.Logger to Sink.
type Zerolog struct {
	Logger zerolog.Logger
}

func (z Zerolog) Debugf(format string, args ...any) { z.Logger.Debug().Msgf(format, args...) }
func (z Zerolog) Infof(format string, args ...any)  { z.Logger.Info().Msgf(format, args...) }

// NewZerolog returns a console logger writing to w at level, unless LevelEnv
// names another level. A nil w writes to stderr.
func NewZerolog(w io.Writer, level string) (Zerolog, error) {
	if env := os.Getenv(LevelEnv); env != "" {
		level = env
	}
	lvl, err := ParseLevel(level)
	if err != nil {
		return Zerolog{}, err
	}
	if w == nil {
		w = os.Stderr
	}
	output := zerolog.ConsoleWriter{
		Out:        w,
		TimeFormat: time.RFC3339,
	}
	logger := zerolog.New(output).Level(lvl).With().Timestamp().Str("app", "branchwave").Logger()
	return Zerolog{Logger: logger}, nil
}

// ParseLevel maps a level name to a zerolog level. An empty name is "info".
func ParseLevel(name string) (zerolog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "info":
		return zerolog.InfoLevel, nil
	case "debug":
		return zerolog.DebugLevel, nil
	case "trace":
		return zerolog.TraceLevel, nil
	case "warn", "warning":
		return zerolog.WarnLevel, nil
	case "error":
		return zerolog.ErrorLevel, nil
	case "off", "disabled":
		return zerolog.Disabled, nil
	}
	return zerolog.NoLevel, fmt.Errorf("diag: unknown log level %q", name)
}
