// Package logging is the process-wide logger of the command line tools.
// Decoder packages never log; they return errors and warnings.
package logging

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var once sync.Once

var singleton *log.Logger

func get() *log.Logger {
	once.Do(func() {
		singleton = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.RFC3339,
			Prefix:          "wld",
		})
		singleton.SetLevel(log.InfoLevel)
	})
	return singleton
}

// SetLevel sets the minimum level by name: debug, info, warn or error.
func SetLevel(name string) error {
	l, err := log.ParseLevel(name)
	if err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	get().SetLevel(l)
	return nil
}

// SetOutput redirects the logger.
func SetOutput(w io.Writer) {
	get().SetOutput(w)
}

// With returns a child logger carrying keyvals on every line.
func With(keyvals ...any) *log.Logger {
	return get().With(keyvals...)
}

func Debug(msg string, args ...any) {
	get().Debugf(msg, args...)
}

func Info(msg string, args ...any) {
	get().Infof(msg, args...)
}

func Warn(msg string, args ...any) {
	get().Warnf(msg, args...)
}

func Error(msg string, args ...any) {
	get().Errorf(msg, args...)
}

func Fatal(msg string, args ...any) {
	get().Fatalf(msg, args...)
}
