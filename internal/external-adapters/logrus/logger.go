// Package logrus adapts sirupsen/logrus to the domain Logger interface.
package logrus

import (
	"io"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/ochairo/pbs-scraper/internal/domain/interfaces"
)

// Logger implements interfaces.Logger
type Logger struct {
	entry *logrus.Entry
}

// NewLogger creates a text logger writing to out at the given level name
func NewLogger(out io.Writer, level string) (*Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid log level %q", level)
	}

	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(lvl)
	l.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})

	return &Logger{entry: logrus.NewEntry(l)}, nil
}

// Debug logs debug-level messages
func (l *Logger) Debug(msg string, fields ...interfaces.Field) {
	l.with(fields).Debug(msg)
}

// Info logs informational messages
func (l *Logger) Info(msg string, fields ...interfaces.Field) {
	l.with(fields).Info(msg)
}

// Warn logs warning messages
func (l *Logger) Warn(msg string, fields ...interfaces.Field) {
	l.with(fields).Warn(msg)
}

// Error logs error messages
func (l *Logger) Error(msg string, fields ...interfaces.Field) {
	l.with(fields).Error(msg)
}

func (l *Logger) with(fields []interfaces.Field) *logrus.Entry {
	if len(fields) == 0 {
		return l.entry
	}

	lf := make(logrus.Fields, len(fields))
	for _, f := range fields {
		lf[f.Key] = f.Value
	}
	return l.entry.WithFields(lf)
}
