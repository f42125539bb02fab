// Package notice delivers user-facing messages. The audit board and the
// DOS admin see these, not log lines; wording mirrors what the workflow
// pages surface for each outcome.
package notice

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
)

const (
	red    = "\033[0;31m"
	green  = "\033[0;32m"
	yellow = "\033[1;33m"
	reset  = "\033[0m"
)

// Notifier writes leveled notices to a single destination.
type Notifier struct {
	mu    sync.Mutex
	out   io.Writer
	color bool
}

// New returns a notifier writing to stderr, colorized when attached to a
// terminal.
func New() *Notifier {
	return &Notifier{
		out:   os.Stderr,
		color: isatty.IsTerminal(os.Stderr.Fd()),
	}
}

// NewWriter returns a notifier for an arbitrary destination (tests).
func NewWriter(w io.Writer) *Notifier {
	return &Notifier{out: w}
}

func (n *Notifier) emit(color, level, format string, args ...any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	msg := fmt.Sprintf(format, args...)
	if n.color {
		fmt.Fprintf(n.out, "%s%s%s %s\n", color, level, reset, msg)
	} else {
		fmt.Fprintf(n.out, "%s %s\n", level, msg)
	}
}

// OK reports a successful action.
func (n *Notifier) OK(format string, args ...any) {
	n.emit(green, "OK", format, args...)
}

// Warn suggests a remediation after a failure.
func (n *Notifier) Warn(format string, args ...any) {
	n.emit(yellow, "WARN", format, args...)
}

// Danger reports a failed action.
func (n *Notifier) Danger(format string, args ...any) {
	n.emit(red, "FAIL", format, args...)
}
