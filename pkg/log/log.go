// Package log adds a thin wrapper around logrus so that call sites can
// attach structured fields without depending on logrus directly.
package log

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

var (
	l     = logrus.New()
	debug = false
)

// SetDebug controls debug logging.
func SetDebug(to bool) {
	debug = to
	if to {
		l.Level = logrus.DebugLevel
	}
}

// SetOutput sets the output.
func SetOutput(to io.Writer) {
	l.Out = to
}

// Fields is a map of logging fields.
type Fields map[string]interface{}

// LogFields implements Fielder for Fields.
func (f Fields) LogFields() Fields {
	return f
}

// A Fielder provides Fields via the LogFields method.
type Fielder interface {
	LogFields() Fields
}

// Err wraps an error into a Fielder, logging its message and type.
func Err(e error) Fielder {
	return Fields{
		"error": e.Error(),
		"type":  fmt.Sprintf("%T", e),
	}
}

// fields flattens the Fields of all given Fielders into a single
// logrus.Fields. Later Fielders win on key collisions.
func fields(fielders []Fielder) logrus.Fields {
	merged := make(logrus.Fields, len(fielders))
	for _, f := range fielders {
		if f == nil {
			continue
		}
		for k, v := range f.LogFields() {
			merged[k] = v
		}
	}
	return merged
}

// Debug logs at the debug level if debug logging is enabled.
func Debug(v interface{}, fielders ...Fielder) {
	if debug {
		l.WithFields(fields(fielders)).Debug(v)
	}
}

// Info logs at the info level.
func Info(v interface{}, fielders ...Fielder) {
	l.WithFields(fields(fielders)).Info(v)
}

// Warn logs at the warning level.
func Warn(v interface{}, fielders ...Fielder) {
	l.WithFields(fields(fielders)).Warn(v)
}

// Error logs at the error level.
func Error(v interface{}, fielders ...Fielder) {
	l.WithFields(fields(fielders)).Error(v)
}

// Fatal logs at the fatal level and exits with a status code != 0.
func Fatal(v interface{}, fielders ...Fielder) {
	l.WithFields(fields(fielders)).Fatal(v)
}
