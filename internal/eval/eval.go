// Package eval implements component E: the recursive tree-walking
// evaluator `exec(frame, node) -> value` (spec.md §4.E), wired against
// component A (internal/value), component B (internal/gc), component D
// (internal/frame) and component F (internal/class).
//
// Interp owns no package-level state — every piece of mutable state (the
// arena, the global frame, the class/function tables) lives on the struct,
// matching spec.md §9's "the only true global is the vtable registry."
package eval

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hybris-lang/hybris/internal/ast"
	"github.com/hybris-lang/hybris/internal/class"
	"github.com/hybris-lang/hybris/internal/ext"
	"github.com/hybris-lang/hybris/internal/frame"
	"github.com/hybris-lang/hybris/internal/gc"
	"github.com/hybris-lang/hybris/internal/herror"
	"github.com/hybris-lang/hybris/internal/token"
	"github.com/hybris-lang/hybris/internal/value"
)

// NativeFunc is a registered native function bound into CallExpr's
// identifier namespace alongside user-declared functions (spec.md §4.G).
type NativeFunc func(it *Interp, argv []*value.Value) (*value.Value, error)

// Interp is the evaluator's handle: the GC arena new values are registered
// with, the global frame top-level statements run against, the class
// registry classes declare into, and the function/structure/constant
// tables populated as declarations are executed in source order.
type Interp struct {
	Arena   *gc.Arena
	Classes *class.Registry
	Global  *frame.Frame
	Trace   *herror.Trace

	// Out is where the println/print builtins write (spec.md §8's worked
	// scenarios all run against stdout). Defaults to os.Stdout; tests
	// redirect it with SetOutput to capture output without touching the
	// real terminal, the same reason the teacher's own I/O builtins write
	// through an Evaluator.Out field rather than os.Stdout directly.
	Out io.Writer

	Functions     map[string]*ast.FunctionDeclaration
	Structures    map[string]*ast.StructureDeclaration
	Natives       map[string]NativeFunc
	nativeStructs map[string][]string

	constants map[string]bool
}

// New builds an Interp. The caller (internal/vm) is responsible for
// wiring class.Exec to it.ExecBlock before any class is instantiated or
// any method called, and for registering Global with arena.AddRoot.
func New(arena *gc.Arena, classes *class.Registry, global *frame.Frame, trace *herror.Trace) *Interp {
	it := &Interp{
		Arena:         arena,
		Classes:       classes,
		Global:        global,
		Trace:         trace,
		Out:           os.Stdout,
		Functions:     make(map[string]*ast.FunctionDeclaration),
		Structures:    make(map[string]*ast.StructureDeclaration),
		Natives:       make(map[string]NativeFunc),
		nativeStructs: make(map[string][]string),
		constants:     make(map[string]bool),
	}
	it.registerCoreBuiltins()
	return it
}

// SetOutput redirects println/print output; the zero value from New is
// os.Stdout.
func (it *Interp) SetOutput(w io.Writer) { it.Out = w }

// registerCoreBuiltins wires println/print directly into Natives rather
// than through an ext.Module: _examples/original_source/include/object.h
// declares println as a method on the core Object itself, not a
// stdlib/native-module export, and every one of spec.md §8's worked
// scenarios calls it with no module bound. A class instance argument
// stringifies through its __to_string descriptor, since value.Print
// dispatches to the same per-Kind SValue slot class.RegisterOps installs.
func (it *Interp) registerCoreBuiltins() {
	it.Natives["print"] = func(ii *Interp, argv []*value.Value) (*value.Value, error) {
		return ii.writeOut(argv, false)
	}
	it.Natives["println"] = func(ii *Interp, argv []*value.Value) (*value.Value, error) {
		return ii.writeOut(argv, true)
	}
	// gc_collect forces an out-of-band mark-sweep pass (spec.md §8
	// scenario 4: "trigger GC (call gc_collect() exposed as a builtin)").
	it.Natives["gc_collect"] = func(ii *Interp, argv []*value.Value) (*value.Value, error) {
		ii.Arena.Collect()
		return value.NewNil(), nil
	}
}

func (it *Interp) writeOut(argv []*value.Value, newline bool) (*value.Value, error) {
	parts := make([]string, len(argv))
	for i, a := range argv {
		parts[i] = value.Print(a)
	}
	line := strings.Join(parts, " ")
	if newline {
		line += "\n"
	}
	fmt.Fprint(it.Out, line)
	return value.NewNil(), nil
}

// RegisterNativeStructure binds a native module's structure template under
// name, resolved by `new` exactly like a script-declared `structure`
// (spec.md §4.G "structure templates"). Called by internal/vm while
// loading a module's manifest.
func (it *Interp) RegisterNativeStructure(name string, fields []string) {
	it.nativeStructs[name] = fields
}

// RegisterModule exposes every function a loaded native module declares
// under both its bare name and its "module.name" qualified form (spec.md
// §4.G: native functions are "consumed by name from script code"), and
// binds its constants into the global frame.
func (it *Interp) RegisterModule(mod *ext.Module) {
	for name := range mod.Functions {
		fnName := name
		wrapped := func(ii *Interp, argv []*value.Value) (*value.Value, error) {
			return mod.Call(fnName, ii, argv)
		}
		it.Natives[name] = wrapped
		it.Natives[mod.Manifest.Name+"."+fnName] = wrapped
	}
	for name, v := range mod.Manifest.ConstantValues() {
		it.alloc(v)
		it.Global.Insert(name, v)
	}
}

func (it *Interp) alloc(v *value.Value) *value.Value {
	if it.Arena != nil {
		it.Arena.Register(v)
	}
	return v
}

func posOf(t token.Token) herror.Position { return herror.Position{Line: t.Line, Column: t.Column} }

// RunProgram executes prog's top-level statements against Global, in
// source order (spec.md §2: top-level code runs against the global
// frame). An uncaught throw at the top level surfaces as a Generic host
// error carrying the thrown value's printed form.
func (it *Interp) RunProgram(prog *ast.Program) error {
	for _, s := range prog.Statements {
		if it.Global.State.ShortCircuit() {
			break
		}
		if err := it.execStmt(it.Global, s); err != nil {
			return err
		}
		it.Arena.MaybeCollect()
	}
	if it.Global.State.Throwing {
		msg := value.SValue(it.Global.State.ThrownValue)
		it.Global.State.Reset()
		return herror.Newf(herror.Generic, "uncaught exception: %s", msg)
	}
	return nil
}

// ExecBlock runs every statement of b against f, stopping as soon as f's
// control-flow state short-circuits (spec.md §4.D/§4.E: "exec checks the
// frame's control-flow bits on entry"). This is also the function wired
// as class.Exec, so method/constructor/descriptor bodies share exactly
// this execution path.
func (it *Interp) ExecBlock(f *frame.Frame, b *ast.Block) error {
	for _, s := range b.Stmts {
		if f.State.ShortCircuit() {
			break
		}
		if err := it.execStmt(f, s); err != nil {
			return err
		}
	}
	return nil
}

func (it *Interp) execStmt(f *frame.Frame, s ast.Statement) error {
	switch n := s.(type) {
	case *ast.Block:
		return it.ExecBlock(f, n)
	case *ast.ExpressionStatement:
		if _, err := it.eval(f, n.Expr); err != nil {
			return err
		}
		return nil
	case *ast.IfStatement:
		return it.execIf(f, n)
	case *ast.WhileStatement:
		return it.execWhile(f, n)
	case *ast.DoWhileStatement:
		return it.execDoWhile(f, n)
	case *ast.ForStatement:
		return it.execFor(f, n)
	case *ast.ForeachStatement:
		return it.execForeach(f, n)
	case *ast.SwitchStatement:
		return it.execSwitch(f, n)
	case *ast.BreakStatement:
		f.State.Breaking = true
		return nil
	case *ast.NextStatement:
		f.State.Continuing = true
		return nil
	case *ast.ReturnStatement:
		v := value.NewNil()
		if n.Value != nil {
			rv, err := it.eval(f, n.Value)
			if err != nil {
				return err
			}
			if f.State.Throwing {
				return nil
			}
			v = rv
		}
		f.State.Returning = true
		f.State.ReturnValue = v
		return nil
	case *ast.ThrowStatement:
		v, err := it.eval(f, n.Value)
		if err != nil {
			return err
		}
		if f.State.Throwing {
			return nil
		}
		f.State.Throwing = true
		f.State.ThrownValue = v
		return nil
	case *ast.TryStatement:
		return it.execTry(f, n)
	case *ast.FunctionDeclaration:
		it.Functions[n.Name] = n
		return nil
	case *ast.ClassDeclaration:
		return it.Classes.Define(n)
	case *ast.StructureDeclaration:
		it.Structures[n.Name] = n
		return nil
	case *ast.ConstantDeclaration:
		if it.constants[n.Name] {
			return herror.Newf(herror.Syntax, "constant '%s' already defined", n.Name).WithPos(posOf(n.Token))
		}
		v, err := it.eval(f, n.Value)
		if err != nil {
			return err
		}
		if f.State.Throwing {
			return nil
		}
		f.Insert(n.Name, v)
		it.constants[n.Name] = true
		return nil
	}
	return herror.Newf(herror.Syntax, "unsupported statement node %T", s)
}

func (it *Interp) execIf(f *frame.Frame, n *ast.IfStatement) error {
	cond, err := it.eval(f, n.Cond)
	if err != nil {
		return err
	}
	if f.State.Throwing {
		return nil
	}
	if value.IsTruthy(cond) {
		return it.ExecBlock(f, n.Then)
	}
	if n.Else != nil {
		return it.execStmt(f, n.Else)
	}
	return nil
}

func (it *Interp) execWhile(f *frame.Frame, n *ast.WhileStatement) error {
	for {
		cond, err := it.eval(f, n.Cond)
		if err != nil {
			return err
		}
		if f.State.Throwing {
			return nil
		}
		if !value.IsTruthy(cond) {
			return nil
		}
		if err := it.ExecBlock(f, n.Body); err != nil {
			return err
		}
		if f.State.Breaking {
			f.State.Breaking = false
			return nil
		}
		if f.State.Returning || f.State.Throwing {
			return nil
		}
		if f.State.Continuing {
			f.State.Continuing = false
		}
	}
}

func (it *Interp) execDoWhile(f *frame.Frame, n *ast.DoWhileStatement) error {
	for {
		if err := it.ExecBlock(f, n.Body); err != nil {
			return err
		}
		if f.State.Breaking {
			f.State.Breaking = false
			return nil
		}
		if f.State.Returning || f.State.Throwing {
			return nil
		}
		if f.State.Continuing {
			f.State.Continuing = false
		}
		cond, err := it.eval(f, n.Cond)
		if err != nil {
			return err
		}
		if f.State.Throwing {
			return nil
		}
		if !value.IsTruthy(cond) {
			return nil
		}
	}
}

func (it *Interp) execFor(f *frame.Frame, n *ast.ForStatement) error {
	if n.Init != nil {
		if err := it.execStmt(f, n.Init); err != nil {
			return err
		}
		if f.State.Throwing {
			return nil
		}
	}
	for {
		if n.Cond != nil {
			cond, err := it.eval(f, n.Cond)
			if err != nil {
				return err
			}
			if f.State.Throwing {
				return nil
			}
			if !value.IsTruthy(cond) {
				return nil
			}
		}
		if err := it.ExecBlock(f, n.Body); err != nil {
			return err
		}
		if f.State.Breaking {
			f.State.Breaking = false
			return nil
		}
		if f.State.Returning || f.State.Throwing {
			return nil
		}
		if f.State.Continuing {
			f.State.Continuing = false
		}
		if n.Step != nil {
			if err := it.execStmt(f, n.Step); err != nil {
				return err
			}
			if f.State.Throwing {
				return nil
			}
		}
	}
}

func (it *Interp) execForeach(f *frame.Frame, n *ast.ForeachStatement) error {
	coll, err := it.eval(f, n.Collection)
	if err != nil {
		return err
	}
	if f.State.Throwing {
		return nil
	}
	cv := value.Deref(coll)

	runBody := func() (stop bool, err error) {
		if err := it.ExecBlock(f, n.Body); err != nil {
			return true, err
		}
		if f.State.Breaking {
			f.State.Breaking = false
			return true, nil
		}
		if f.State.Returning || f.State.Throwing {
			return true, nil
		}
		if f.State.Continuing {
			f.State.Continuing = false
		}
		return false, nil
	}

	switch cv.Kind {
	case value.KindVector:
		elems := append([]*value.Value(nil), cv.Vec...)
		for i, el := range elems {
			if n.KeyName != "" {
				f.Insert(n.KeyName, it.alloc(value.NewInt(int64(i))))
			}
			f.Insert(n.ValueName, el)
			stop, err := runBody()
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
		}
		return nil
	case value.KindMap:
		for _, p := range cv.Map.Pairs() {
			if n.KeyName != "" {
				f.Insert(n.KeyName, p.Key)
			}
			f.Insert(n.ValueName, p.Value)
			stop, err := runBody()
			if err != nil {
				return err
			}
			if stop {
				return nil
			}
		}
		return nil
	}
	return herror.Newf(herror.Syntax, "foreach over non-iterable type %s", value.TypeName(cv)).WithPos(posOf(n.Token))
}

func (it *Interp) execSwitch(f *frame.Frame, n *ast.SwitchStatement) error {
	subj, err := it.eval(f, n.Subject)
	if err != nil {
		return err
	}
	if f.State.Throwing {
		return nil
	}

	matchIdx, defaultIdx := -1, -1
	for i, c := range n.Cases {
		if c.IsDefault {
			defaultIdx = i
			continue
		}
		cv, err := it.eval(f, c.Value)
		if err != nil {
			return err
		}
		if f.State.Throwing {
			return nil
		}
		cmp, err := value.Cmp(subj, cv)
		if err != nil {
			return err
		}
		if cmp == 0 {
			matchIdx = i
			break
		}
	}
	start := matchIdx
	if start < 0 {
		start = defaultIdx
	}
	if start < 0 {
		return nil
	}

	// The parser does not require a `break` per arm: execution runs from
	// the matching arm (or default) through the following arms until a
	// `break` or another control-flow bit stops it, as in a C switch.
	for i := start; i < len(n.Cases); i++ {
		for _, st := range n.Cases[i].Body {
			if f.State.ShortCircuit() {
				break
			}
			if err := it.execStmt(f, st); err != nil {
				return err
			}
		}
		if f.State.Breaking {
			f.State.Breaking = false
			return nil
		}
		if f.State.ShortCircuit() {
			return nil
		}
	}
	return nil
}

func (it *Interp) execTry(f *frame.Frame, n *ast.TryStatement) error {
	if err := it.ExecBlock(f, n.Body); err != nil {
		return err
	}
	if f.State.Throwing {
		thrown := f.State.ThrownValue
		f.State.Throwing = false
		f.State.ThrownValue = nil
		f.Insert(n.CatchName, thrown)
		if err := it.ExecBlock(f, n.Handler); err != nil {
			return err
		}
	}
	if n.Finally != nil {
		pending := f.State
		f.State.Reset()
		if err := it.ExecBlock(f, n.Finally); err != nil {
			return err
		}
		if !f.State.ShortCircuit() {
			f.State = pending
		}
	}
	return nil
}
