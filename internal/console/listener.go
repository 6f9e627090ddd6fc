// Package console is the operator-facing output channel of a build or job.
// Progress lines and fatal error summaries go here, technical details go to
// the logger.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Listener receives human-readable progress and fatal-error messages
type Listener interface {
	// Printf writes a progress line
	Printf(format string, args ...interface{})
	// FatalError reports an error that aborts the current operation
	FatalError(format string, args ...interface{})
}

// WriterListener writes every message as one line to an io.Writer
type WriterListener struct {
	mu  sync.Mutex
	out io.Writer
}

// NewWriterListener creates a listener writing to w
func NewWriterListener(w io.Writer) *WriterListener {
	return &WriterListener{out: w}
}

// Printf implements Listener.Printf
func (l *WriterListener) Printf(format string, args ...interface{}) {
	l.writeLine("", format, args...)
}

// FatalError implements Listener.FatalError
func (l *WriterListener) FatalError(format string, args ...interface{}) {
	l.writeLine("FATAL: ", format, args...)
}

func (l *WriterListener) writeLine(prefix, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.out, prefix+msg)
}

// Discard is a Listener that drops everything
var Discard Listener = NewWriterListener(io.Discard)
