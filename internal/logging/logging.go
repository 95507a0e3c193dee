// Package logging provides the process-wide structured logger.
package logging

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var (
	once      sync.Once
	singleton *log.Logger
)

func get() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "retarget",
		})
		singleton.SetLevel(log.InfoLevel)
	})
	return singleton
}

// Logger returns the shared logger, for callers that want With(...) children.
func Logger() *log.Logger {
	return get()
}

// SetLevel parses and applies a level name (debug, info, warn, error, fatal).
func SetLevel(name string) error {
	if name == "" {
		return nil
	}
	lvl, err := log.ParseLevel(name)
	if err != nil {
		return err
	}
	get().SetLevel(lvl)
	return nil
}

// SetOutput redirects log output, mostly for tests.
func SetOutput(w io.Writer) {
	get().SetOutput(w)
}

func Debug(msg string, keyvals ...interface{}) {
	get().Debug(msg, keyvals...)
}

func Info(msg string, keyvals ...interface{}) {
	get().Info(msg, keyvals...)
}

func Warn(msg string, keyvals ...interface{}) {
	get().Warn(msg, keyvals...)
}

func Error(msg string, keyvals ...interface{}) {
	get().Error(msg, keyvals...)
}

// Fatal logs and exits with status 1.
func Fatal(msg string, keyvals ...interface{}) {
	get().Fatal(msg, keyvals...)
}
