// Package logging holds the logrus field vocabulary shared by the metadata
// packages, so log lines from the open, walk and dump stages can be joined.
package logging

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

const (
	FieldPkg         = "pkg"
	FieldPath        = "path"
	FieldOutput      = "output"
	FieldFormat      = "format"
	FieldRepair      = "repair"
	FieldCacheBlocks = "cache_blocks"
	FieldBlockSize   = "block_size"
	FieldPolicy      = "policy"
	FieldVersion     = "version"
	FieldBlock       = "block"
	FieldCBlock      = "cblock"
	FieldCBlockBegin = "cblock_begin"
	FieldCBlockEnd   = "cblock_end"
	FieldKind        = "kind"
	FieldReason      = "reason"
	FieldEmitted     = "emitted"
	FieldSkipped     = "skipped"
	FieldDamage      = "damage"

	FieldEvent    = "event"
	EventOpen     = "open"
	EventWalk     = "walk"
	EventDump     = "dump"
	EventCheck    = "check"
	EventDamage   = "damage"
	EventComplete = "complete"
	EventAbort    = "abort"
)

// Options configures the process-wide logger.
type Options struct {
	Output io.Writer
	Level  logrus.Level
	JSON   bool
}

// Init configures the standard logrus logger. Call from main before any
// package logs.
func Init(opts Options) {
	if opts.Output != nil {
		logrus.SetOutput(opts.Output)
	}
	logrus.SetLevel(opts.Level)
	if opts.JSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
		return
	}
	logrus.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
}

// For returns the logger used by pkg.
func For(pkg string) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{FieldPkg: pkg})
}

// LoggingError is an error that has already been described by a log entry.
type LoggingError struct {
	entry *logrus.Entry
	error
}

// Unwrap exposes the wrapped error to errors.Is and errors.As.
func (e LoggingError) Unwrap() error { return e.error }

// Log writes the entry at error level.
func (e LoggingError) Log() { e.entry.Error(e.error.Error()) }

// ErrorWithFields builds an error carrying structured fields for later logging.
// The %w verb is honoured.
func ErrorWithFields(pkg string, fields logrus.Fields, format string, v ...interface{}) LoggingError {
	f := logrus.Fields{FieldPkg: pkg}
	for k, val := range fields {
		f[k] = val
	}
	return LoggingError{logrus.WithFields(f), fmt.Errorf(format, v...)}
}
