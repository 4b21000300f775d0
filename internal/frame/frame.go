// Package frame implements component D: an insertion-ordered binding
// table plus the control-flow state record that propagates return/break/
// next/throw through the recursive evaluator (spec.md §4.D). Frames do
// not form a lexical chain automatically — the evaluator passes the
// target frame explicitly into every recursive call.
package frame

import "github.com/hybris-lang/hybris/internal/value"

type binding struct {
	name string
	val  *value.Value
}

// State is the per-frame control-flow record (spec.md §4.D). Exactly one
// of Returning/Breaking/Continuing/Throwing should be set at a time in
// practice, but the evaluator only ever tests them individually.
type State struct {
	Returning   bool
	Breaking    bool
	Continuing  bool
	Throwing    bool
	ThrownValue *value.Value
	ReturnValue *value.Value
}

// ShortCircuit reports whether exec should stop evaluating further
// statements in the frame and propagate (spec.md §4.E "State").
func (s *State) ShortCircuit() bool {
	return s.Returning || s.Breaking || s.Continuing || s.Throwing
}

// Reset clears every control-flow bit and carried value; internal/eval uses
// it before running a `finally` block and after reporting an uncaught
// top-level throw.
func (s *State) Reset() {
	*s = State{}
}

// Frame is one lexical binding scope plus its control-flow state
// (glossary: "Frame"). Bindings preserve insertion order, per spec.md
// §4.D ("Lookup is linear in insertion order... implementors may use a
// hash index as long as insertion order is preserved for reflection").
type Frame struct {
	Name string // enclosing function/method name, for call-trace reporting

	order []binding
	index map[string]int

	State State
}

// New creates an empty frame. name is purely descriptive (used in error
// messages and call traces), not a lookup key.
func New(name string) *Frame {
	return &Frame{Name: name, index: make(map[string]int)}
}

// Insert binds name to v, replacing any existing binding (decrementing
// the old value's references) or creating a fresh one (incrementing v's),
// per spec.md §4.D "Binding rules".
func (f *Frame) Insert(name string, v *value.Value) {
	if i, ok := f.index[name]; ok {
		old := f.order[i].val
		f.order[i].val = v
		value.SetReferences(old, -1)
		value.SetReferences(v, 1)
		return
	}
	f.index[name] = len(f.order)
	f.order = append(f.order, binding{name: name, val: v})
	value.SetReferences(v, 1)
}

// Lookup finds name in this frame only (no chain traversal — the
// evaluator is responsible for falling back to the global frame per
// spec.md §4.E "Identifier").
func (f *Frame) Lookup(name string) (*value.Value, bool) {
	if i, ok := f.index[name]; ok {
		return f.order[i].val, true
	}
	return nil, false
}

// Names returns bound identifiers in insertion order.
func (f *Frame) Names() []string {
	out := make([]string, len(f.order))
	for i, b := range f.order {
		out[i] = b.name
	}
	return out
}

// Destroy decrements every held value's references exactly once (spec.md
// §4.D "Destruction decrements every held value's references exactly
// once"), called when the frame goes out of scope at call exit.
func (f *Frame) Destroy() {
	for _, b := range f.order {
		value.SetReferences(b.val, -1)
	}
	f.order = nil
	f.index = make(map[string]int)
}

// GCRoots implements gc.Root: every value this frame currently binds is a
// live root for the mark pass (spec.md §4.B "every live frame on the
// current call stack").
func (f *Frame) GCRoots() []*value.Value {
	out := make([]*value.Value, 0, len(f.order)+2)
	for _, b := range f.order {
		out = append(out, b.val)
	}
	if f.State.ThrownValue != nil {
		out = append(out, f.State.ThrownValue)
	}
	if f.State.ReturnValue != nil {
		out = append(out, f.State.ReturnValue)
	}
	return out
}
