package core

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// LogLevel mirrors the levels of the underlying logger so callers never
// import it directly.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

var once sync.Once

type logger struct {
	*log.Logger
}

var singleton *logger

func getLogger() *logger {
	once.Do(
		func() {
			l := log.NewWithOptions(os.Stderr, log.Options{
				ReportCaller:    true,
				ReportTimestamp: true,
				TimeFormat:      time.RFC3339,
				Prefix:          "anima-ui 🖼️ ",
				// skip the Log* wrappers when reporting the caller
				CallerOffset: 1,
			})
			l.SetLevel(log.DebugLevel)
			singleton = &logger{l}
		})
	return singleton
}

// ParseLogLevel validates a level read from configuration.
func ParseLogLevel(s string) (LogLevel, error) {
	level := LogLevel(strings.ToLower(strings.TrimSpace(s)))
	if _, err := log.ParseLevel(string(level)); err != nil {
		return "", fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// SetLogLevel changes the level of the engine logger. Unknown levels fall back to info.
func SetLogLevel(level LogLevel) {
	l, err := log.ParseLevel(string(level))
	if err != nil {
		l = log.InfoLevel
	}
	getLogger().SetLevel(l)
}

// SetLogOutput redirects the engine logger, os.Stderr by default.
func SetLogOutput(w io.Writer) {
	getLogger().SetOutput(w)
}

// SlogLogger exposes the engine logger through log/slog for libraries that
// accept a *slog.Logger.
func SlogLogger() *slog.Logger {
	return slog.New(getLogger().Logger)
}

// The Log* functions take a printf format. Pass values, errors included,
// as arguments rather than as msg.

func LogDebug(msg string, args ...interface{}) {
	getLogger().Debugf(msg, args...)
}

func LogInfo(msg string, args ...interface{}) {
	getLogger().Infof(msg, args...)
}

func LogWarn(msg string, args ...interface{}) {
	getLogger().Warnf(msg, args...)
}

func LogError(msg string, args ...interface{}) {
	getLogger().Errorf(msg, args...)
}

func LogFatal(msg string, args ...interface{}) {
	getLogger().Fatalf(msg, args...)
}
