// Package logging is warpdesk's structured-logging wrapper, matching the
// retrieved corpus's KVM-style tool (bnema/waymon's internal/logger): a
// single package-level logger over charmbracelet/log with short helper
// functions, rather than every package reaching for its own *log.Logger.
package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

var base = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	Prefix:          "warpdesk",
})

// SetLevel adjusts global verbosity; "debug" is typically used for
// diagnosing handshake/attach failures, "info" for steady-state operation.
func SetLevel(level log.Level) {
	base.SetLevel(level)
}

// With returns a sub-logger tagged with the given key/value pairs, used by
// a component to prefix its lines (e.g. logging.With("cid", cid)).
func With(keyvals ...interface{}) *log.Logger {
	return base.With(keyvals...)
}

func Debugf(format string, args ...interface{}) { base.Debugf(format, args...) }
func Infof(format string, args ...interface{})  { base.Infof(format, args...) }
func Warnf(format string, args ...interface{})  { base.Warnf(format, args...) }
func Errorf(format string, args ...interface{}) { base.Errorf(format, args...) }

func Debug(msg string, keyvals ...interface{}) { base.Debug(msg, keyvals...) }
func Info(msg string, keyvals ...interface{})  { base.Info(msg, keyvals...) }
func Warn(msg string, keyvals ...interface{})  { base.Warn(msg, keyvals...) }
func Error(msg string, keyvals ...interface{}) { base.Error(msg, keyvals...) }
