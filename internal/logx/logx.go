// Package logx provides the data space's structured logging facade, a thin
// wrapper over logrus. It exists so the mutation engine can trace cascades
// and store lifecycle events without requiring callers to wire up logging
// to use the library embedded.
package logx

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Logger is the leveled logging surface the data space depends on.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// logrusLogger adapts a *logrus.Logger to Logger.
type logrusLogger struct {
	l *logrus.Logger
}

func (a *logrusLogger) Debugf(format string, args ...interface{}) { a.l.Debugf(format, args...) }
func (a *logrusLogger) Infof(format string, args ...interface{})  { a.l.Infof(format, args...) }
func (a *logrusLogger) Warnf(format string, args ...interface{})  { a.l.Warnf(format, args...) }
func (a *logrusLogger) Errorf(format string, args ...interface{}) { a.l.Errorf(format, args...) }

// Discard returns a Logger that drops everything, the default for an
// embedded library that must not write to stderr unless asked to.
func Discard() Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return &logrusLogger{l: l}
}

// New wraps an existing *logrus.Logger, letting callers supply their own
// formatter, level, and output.
func New(l *logrus.Logger) Logger {
	if l == nil {
		return Discard()
	}
	return &logrusLogger{l: l}
}
