// Package herror implements component H: typed errors and call-trace
// capture (spec.md §4.H, §7).
//
// herror has no dependency on internal/value or internal/frame — it is the
// leaf of the error/trace component, imported by every other package that
// needs to raise or report a typed error. Values carried by a thrown script
// exception live in frame.State.ThrownValue (a *value.Value), not here.
package herror

import (
	"fmt"

	"github.com/google/uuid"
)

// Kind is the error classification from spec.md §7.
type Kind int

const (
	// Generic covers I/O, range, and invalid-argument failures.
	Generic Kind = iota
	// Syntax covers malformed source, undefined identifiers, unsupported
	// operators, and arity mismatches.
	Syntax
	// Warning is non-fatal: printed but never propagated as throwing.
	Warning
)

func (k Kind) String() string {
	switch k {
	case Syntax:
		return "Syntax"
	case Warning:
		return "Warning"
	default:
		return "Generic"
	}
}

// Error is a host-raised typed error (spec.md §4.H). Script-level thrown
// values (`throw x`) are *not* wrapped as Error — they carry an arbitrary
// value.Value through frame.State.ThrownValue instead; Error is reserved for
// native/host failures raised via hyb_error.
type Error struct {
	Kind    Kind
	Message string
	Pos     Position
}

// Position is a source location, filled in by internal/eval when it has
// one; zero value means "no position available".
type Position struct {
	File   string
	Line   int
	Column int
}

func (p Position) String() string {
	if p.Line == 0 {
		return ""
	}
	if p.File == "" {
		return fmt.Sprintf("%d:%d", p.Line, p.Column)
	}
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

func (e *Error) Error() string {
	if pos := e.Pos.String(); pos != "" {
		return fmt.Sprintf("%s error at %s: %s", e.Kind, pos, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// New builds a Kind error with a plain message.
func New(kind Kind, msg string) *Error { return &Error{Kind: kind, Message: msg} }

// Newf builds a Kind error with a formatted message — the common case
// (hyb_error(kind, fmt, ...) in the original implementation).
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithPos attaches a source position to err in place and returns it,
// letting callers chain `return herror.Newf(...).WithPos(pos)`.
func (e *Error) WithPos(p Position) *Error {
	e.Pos = p
	return e
}

// CallFrame is one entry in the VM's push/pop call trace (function name +
// source position), printed on unhandled errors when --trace is enabled
// (spec.md §4.H, §6).
type CallFrame struct {
	ID       uuid.UUID
	Function string
	Pos      Position
}

// Trace is the VM-wide call-trace stack. It is not safe for concurrent use
// — matching the single-threaded execution model of spec.md §5.
type Trace struct {
	frames   []CallFrame
	warnings []*Error
}

// Push records entering fn at pos, returning a fresh id used only for
// debugging/log correlation (spec.md's "push/pop call trace").
func (t *Trace) Push(fn string, pos Position) uuid.UUID {
	id := uuid.New()
	t.frames = append(t.frames, CallFrame{ID: id, Function: fn, Pos: pos})
	return id
}

// Pop removes the most recently pushed frame. Called on every exit path of
// the scope that pushed it, including thrown exceptions (spec.md §5
// "Scoped acquisition").
func (t *Trace) Pop() {
	if len(t.frames) > 0 {
		t.frames = t.frames[:len(t.frames)-1]
	}
}

// Snapshot returns the current trace, oldest call first, for printing.
func (t *Trace) Snapshot() []CallFrame {
	out := make([]CallFrame, len(t.frames))
	copy(out, t.frames)
	return out
}

// Depth reports how many frames are currently on the trace.
func (t *Trace) Depth() int { return len(t.frames) }

// Warn records a non-fatal Warning (spec.md §7: "printed but never
// propagated as throwing") against this trace rather than raising it.
func (t *Trace) Warn(msg string, pos Position) {
	t.warnings = append(t.warnings, &Error{Kind: Warning, Message: msg, Pos: pos})
}

// Warnings returns every warning recorded so far, oldest first.
func (t *Trace) Warnings() []*Error {
	out := make([]*Error, len(t.warnings))
	copy(out, t.warnings)
	return out
}
