// Package logging wraps github.com/sirupsen/logrus behind a small
// structured-field Logger interface, shared by every core package instead
// of each writing to stdout/stderr directly.
package logging

import (
	"io"

	"github.com/sirupsen/logrus"
)

// Fields is a set of structured key/value pairs attached to a log entry.
type Fields map[string]interface{}

// Logger is the structured, leveled logging surface every core package
// accepts. stage/itry/netName are the fields this engine's iterative
// algorithms attach most often, per the component design.
type Logger interface {
	Debug(msg string, fields Fields)
	Info(msg string, fields Fields)
	Warn(msg string, fields Fields)
	Error(msg string, fields Fields)
	// Fatal logs at fatal level and terminates the process with exit
	// code 1, for input problems cliapp decides are unrecoverable.
	Fatal(msg string, fields Fields)
	// With returns a Logger that merges extra fields into every entry it
	// emits, without mutating the receiver.
	With(fields Fields) Logger
}

type logrusLogger struct {
	entry *logrus.Entry
}

// New builds a Logger backed by a fresh logrus.Logger writing to w at the
// given level.
func New(w io.Writer, level logrus.Level) Logger {
	l := logrus.New()
	l.SetOutput(w)
	l.SetLevel(level)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	return &logrusLogger{entry: logrus.NewEntry(l)}
}

// Discard returns a Logger that drops every entry, for use in tests and
// packages that were not given an explicit Logger.
func Discard() Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)

	return &logrusLogger{entry: logrus.NewEntry(l)}
}

func (l *logrusLogger) Debug(msg string, fields Fields) {
	l.entry.WithFields(logrus.Fields(fields)).Debug(msg)
}

func (l *logrusLogger) Info(msg string, fields Fields) {
	l.entry.WithFields(logrus.Fields(fields)).Info(msg)
}

func (l *logrusLogger) Warn(msg string, fields Fields) {
	l.entry.WithFields(logrus.Fields(fields)).Warn(msg)
}

func (l *logrusLogger) Error(msg string, fields Fields) {
	l.entry.WithFields(logrus.Fields(fields)).Error(msg)
}

func (l *logrusLogger) Fatal(msg string, fields Fields) {
	l.entry.WithFields(logrus.Fields(fields)).Fatal(msg)
}

func (l *logrusLogger) With(fields Fields) Logger {
	return &logrusLogger{entry: l.entry.WithFields(logrus.Fields(fields))}
}
