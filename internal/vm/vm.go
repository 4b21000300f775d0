// Package vm assembles components B (internal/gc), D (internal/frame),
// F (internal/class), G (internal/ext) and H (internal/herror) behind one
// handle and wires them to E (internal/eval), matching spec.md §9's "a
// thin driver that owns the arena, the global frame, the class registry
// and the native-function table, and hands them to the evaluator".
//
// vm also enforces spec.md §5's single-thread invariant: the core
// provides no internal synchronization, so every entry point here panics
// if called from a goroutine other than the one that created the VM.
package vm

import (
	"fmt"
	"io"

	"github.com/petermattis/goid"

	"github.com/hybris-lang/hybris/internal/ast"
	"github.com/hybris-lang/hybris/internal/class"
	"github.com/hybris-lang/hybris/internal/eval"
	"github.com/hybris-lang/hybris/internal/ext"
	"github.com/hybris-lang/hybris/internal/frame"
	"github.com/hybris-lang/hybris/internal/gc"
	"github.com/hybris-lang/hybris/internal/herror"
	"github.com/hybris-lang/hybris/internal/parser"
	"github.com/hybris-lang/hybris/internal/value"
)

// VM is the top-level handle a driver (cmd/hybris, or an embedder) holds.
// One VM owns exactly one arena, one global frame and one class registry
// for the lifetime of a process — spec.md §9 notes the vtable registry is
// the sole process-wide global; everything else here is reached through
// this struct.
type VM struct {
	Arena   *gc.Arena
	Classes *class.Registry
	Global  *frame.Frame
	Trace   *herror.Trace
	Interp  *eval.Interp

	ownerGoroutine int64
}

// New builds a VM with the given GC byte threshold (0 disables automatic
// sweeping) and wires every component together: the global frame becomes
// a GC root, class.Exec is bound to the evaluator's block executor, and
// the class-instance vtable is installed (spec.md §9's "wiring time").
func New(gcThreshold uint64) *VM {
	arena := gc.New(gcThreshold)
	classes := class.NewRegistry()
	global := frame.New("global")
	arena.AddRoot(global)
	trace := &herror.Trace{}

	it := eval.New(arena, classes, global, trace)
	class.Exec = it.ExecBlock
	class.Warnings = trace
	class.RegisterOps()

	return &VM{
		Arena:          arena,
		Classes:        classes,
		Global:         global,
		Trace:          trace,
		Interp:         it,
		ownerGoroutine: goid.Get(),
	}
}

// guard panics if called off the goroutine that constructed the VM
// (spec.md §5 "Shared resources ... mutated only by the single
// interpreter thread; the core provides none" of its own synchronization).
func (m *VM) guard() {
	if g := goid.Get(); g != m.ownerGoroutine {
		panic(fmt.Sprintf("hybris: vm accessed from goroutine %d, owned by goroutine %d", g, m.ownerGoroutine))
	}
}

// LoadModule registers a native module's functions, constants and
// structure templates into this VM (spec.md §4.G). Structure templates
// declared by a manifest are indistinguishable to script code from ones
// declared with the `structure` keyword — both resolve through the same
// Interp.Structures-adjacent lookup inside `new`.
func (m *VM) LoadModule(mod *ext.Module) {
	m.guard()
	m.Interp.RegisterModule(mod)
	for _, st := range mod.Manifest.Structures {
		m.Interp.RegisterNativeStructure(st.Name, st.Fields)
	}
}

// RunSource parses src and executes it against the VM's global frame.
func (m *VM) RunSource(src string) error {
	m.guard()
	prog, err := parser.Parse(src)
	if err != nil {
		return err
	}
	return m.Interp.RunProgram(prog)
}

// RunProgram executes an already-parsed program, for callers (tests, the
// dump/load path) that built or deserialized an *ast.Program directly.
func (m *VM) RunProgram(prog *ast.Program) error {
	m.guard()
	return m.Interp.RunProgram(prog)
}

// Collect forces an immediate mark-sweep pass from host code, bypassing
// the byte threshold. The script-level `gc_collect()` builtin does the
// same by calling Arena.Collect directly (spec.md §8 scenario 4).
func (m *VM) Collect() {
	m.guard()
	m.Arena.Collect()
}

// Lookup resolves a top-level binding by name, mainly for host-side
// inspection (tests, a REPL's `:print` command).
func (m *VM) Lookup(name string) (*value.Value, bool) {
	m.guard()
	return m.Global.Lookup(name)
}

// SetOutput redirects where the println/print builtins write (default
// os.Stdout) — cmd/hybris leaves this alone, while tests swap in a buffer
// to assert on a script's printed output.
func (m *VM) SetOutput(w io.Writer) {
	m.guard()
	m.Interp.SetOutput(w)
}
