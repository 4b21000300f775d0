// Package class implements component F: attribute/method tables,
// single-level inheritance, operator-overload dispatch via mangled method
// names, and the four descriptor hooks (spec.md §4.F).
//
// class registers its vtable into internal/value's global registry at
// wiring time (RegisterOps below is called by internal/vm), rather than
// internal/value importing internal/class — that would be a cycle, since
// this package needs value.Value, ast and frame.Frame, and must call back
// into the evaluator to run method bodies. The callback is a package-level
// function variable, Exec, set once during startup; this mirrors spec.md
// §9's note that the vtable registry is the one permissible global.
package class

import (
	"fmt"

	"github.com/hybris-lang/hybris/internal/ast"
	"github.com/hybris-lang/hybris/internal/frame"
	"github.com/hybris-lang/hybris/internal/herror"
	"github.com/hybris-lang/hybris/internal/value"
)

// Exec runs a method/descriptor/operator body against a freshly built
// frame and reports its outcome through f.State (Returning/ReturnValue/
// Throwing/ThrownValue), the same contract internal/eval's block executor
// already has to satisfy for ordinary calls. Set once by internal/vm
// during wiring; nil here would mean "no evaluator wired yet" which is a
// programming error, not a runtime one.
var Exec func(f *frame.Frame, body *ast.Block) error

// Warnings is the VM-wide trace non-fatal Warning kinds are recorded
// against (spec.md §7). Set once by internal/vm during wiring, mirroring
// Exec; nil means no trace is wired yet, in which case resolveOverload's
// fallback simply isn't recorded anywhere (tests that build a Registry
// directly, without going through internal/vm, keep today's behavior).
var Warnings *herror.Trace

// MangleOperator produces the internal method name a class must declare to
// overload op (spec.md §4.F: "a method named internally __op@<op>").
func MangleOperator(op string) string { return "__op@" + op }

const (
	descSize      = "__size"
	descToString  = "__to_string"
	descAttribute = "__attribute"
	descExpire    = "__expire"
)

// Def is a class template as declared in source: the attribute defaults
// and method variations new instances are cloned from.
type Def struct {
	Name      string
	Parents   []string
	AttrOrder []string
	Attrs     map[string]*ast.AttributeDeclaration
	Methods   map[string][]*ast.MethodDeclaration
}

// overrideVariation appends m to variations, replacing any existing entry
// with the same parameter count so a subclass's redeclaration of an
// inherited arity wins outright (spec.md §4.F "last-write-wins by
// declaration order") rather than shadowing it only by search order.
func overrideVariation(variations []*ast.MethodDeclaration, m *ast.MethodDeclaration) []*ast.MethodDeclaration {
	for i, v := range variations {
		if len(v.Params) == len(m.Params) {
			variations[i] = m
			return variations
		}
	}
	return append(variations, m)
}

// Registry holds every declared class template, keyed by name (spec.md
// §4.E "new Cls(args)": "Look up the class in the global frame" — here the
// registry stands in for that global binding so constructors and `new`
// don't need a value.Value wrapper around a template).
type Registry struct {
	defs map[string]*Def
}

// NewRegistry returns an empty class registry.
func NewRegistry() *Registry { return &Registry{defs: make(map[string]*Def)} }

// Lookup returns the template for name, if declared.
func (r *Registry) Lookup(name string) (*Def, bool) {
	d, ok := r.defs[name]
	return d, ok
}

// Define registers decl, applying inheritance: each parent's attribute and
// method tables are cloned in first (left to right), then decl's own
// attributes/methods are applied on top, last write wins by declaration
// order (spec.md §4.F: "effectively C3-free linear override with
// last-write-wins by declaration order").
func (r *Registry) Define(decl *ast.ClassDeclaration) error {
	d := &Def{
		Name:    decl.Name,
		Parents: append([]string(nil), decl.Parents...),
		Attrs:   make(map[string]*ast.AttributeDeclaration),
		Methods: make(map[string][]*ast.MethodDeclaration),
	}

	for _, pname := range decl.Parents {
		parent, ok := r.defs[pname]
		if !ok {
			return herror.Newf(herror.Syntax, "class %s extends undeclared class %s", decl.Name, pname)
		}
		d.overlayFrom(parent)
	}

	for _, attr := range decl.Attributes {
		if _, seen := d.Attrs[attr.Name]; !seen {
			d.AttrOrder = append(d.AttrOrder, attr.Name)
		}
		d.Attrs[attr.Name] = attr
	}
	for _, m := range decl.Methods {
		d.Methods[m.Name] = overrideVariation(d.Methods[m.Name], m)
	}

	r.defs[decl.Name] = d
	return nil
}

func (d *Def) overlayFrom(parent *Def) {
	for _, name := range parent.AttrOrder {
		if _, seen := d.Attrs[name]; !seen {
			d.AttrOrder = append(d.AttrOrder, name)
		}
		d.Attrs[name] = parent.Attrs[name]
	}
	for name, variations := range parent.Methods {
		d.Methods[name] = append(append([]*ast.MethodDeclaration(nil), variations...))
	}
}

// New instantiates cls: clones its attribute/method tables into a fresh
// value.ClassInstance, evaluates attribute default-value expressions
// against a short-lived frame, then runs the matching constructor
// (a method variation named cls.Name) if one was declared.
func (r *Registry) New(clsName string, args []*value.Value) (*value.Value, error) {
	def, ok := r.defs[clsName]
	if !ok {
		return nil, herror.Newf(herror.Syntax, "class %s is not declared", clsName)
	}

	inst := value.NewClassInstance(def.Name, def.Parents)
	inst.Class.AttrOrder = append([]string(nil), def.AttrOrder...)
	for _, name := range def.AttrOrder {
		decl := def.Attrs[name]
		var v *value.Value
		if decl.Default != nil {
			init := frame.New(def.Name + "." + name)
			if err := Exec(init, &ast.Block{Stmts: []ast.Statement{&ast.ReturnStatement{Value: decl.Default}}}); err != nil {
				return nil, err
			}
			if init.State.Throwing {
				return nil, herror.Newf(herror.Generic, "error evaluating default for %s.%s", def.Name, name)
			}
			v = init.State.ReturnValue
		}
		if v == nil {
			v = value.NewNil()
		}
		inst.Class.Attrs[name] = &value.ClassAttribute{Access: int(decl.Access), Value: v}
	}
	for name, variations := range def.Methods {
		inst.Class.Methods[name] = append([]*ast.MethodDeclaration(nil), variations...)
	}

	if ctor, ok := resolveOverload(inst.Class.Methods, def.Name, len(args)); ok {
		cf, err := invoke(inst, ctor, args)
		if err != nil {
			return nil, err
		}
		if cf.State.Throwing {
			return nil, &thrownError{inst: def.Name, value: cf.State.ThrownValue}
		}
	}
	return inst, nil
}

// resolveOverload picks the variation matching argc exactly, falling back
// to the first declared variation otherwise (spec.md §4.F, Open Questions:
// "reimplementers should consider raising here instead" — this module
// keeps the documented fallback for ordinary methods; see DESIGN.md).
func resolveOverload(methods map[string][]*ast.MethodDeclaration, name string, argc int) (*ast.MethodDeclaration, bool) {
	variations, ok := methods[name]
	if !ok || len(variations) == 0 {
		return nil, false
	}
	for _, m := range variations {
		if len(m.Params) == argc {
			return m, true
		}
	}
	if Warnings != nil {
		Warnings.Warn(fmt.Sprintf(
			"method %s called with %d argument(s); no matching overload, falling back to the first declared variation (expects %d)",
			name, argc, len(variations[0].Params),
		), herror.Position{})
	}
	return variations[0], true
}

// callerStack tracks the `me` of the method currently running, innermost
// last, so GetAttribute/SetAttribute can tell whether an attribute access
// originates from inside a method body (and whose) or from outside any
// class entirely (top-level script code). A package-level stack rather
// than a parameter threaded through every dispatch call mirrors this
// package's existing use of a package-level Exec var; both rely on the
// single-VM-goroutine invariant internal/vm enforces.
var callerStack []*value.Value

func pushCaller(inst *value.Value) { callerStack = append(callerStack, inst) }

func popCaller() { callerStack = callerStack[:len(callerStack)-1] }

func currentCaller() (*value.Value, bool) {
	if len(callerStack) == 0 {
		return nil, false
	}
	return callerStack[len(callerStack)-1], true
}

// canAccess reports whether the currently running method context (if any)
// may read/write an attribute of owner declared with the given
// ast.Access level (spec.md §4.E: "the owning class's access rules").
// Public is always reachable. Private requires the access to originate
// from inside a method of the exact same class. Protected additionally
// reaches across a single-level parent/child relation, matching this
// package's own single-level-inheritance model (Define, spec.md §4.F).
func canAccess(owner *value.Value, access int) bool {
	if access == int(ast.AccessPublic) {
		return true
	}
	caller, ok := currentCaller()
	if !ok {
		return false
	}
	if caller.Class.Name == owner.Class.Name {
		return true
	}
	if access == int(ast.AccessPrivate) {
		return false
	}
	for _, p := range owner.Class.Parents {
		if p == caller.Class.Name {
			return true
		}
	}
	for _, p := range caller.Class.Parents {
		if p == owner.Class.Name {
			return true
		}
	}
	return false
}

// invoke runs m against inst in a fresh frame, binding me and each
// parameter by name, and returns that frame. Its State carries the
// method's result in ReturnValue (nil for a bare `return` / fallthrough)
// and any Throwing state for the caller to inspect and propagate.
func invoke(inst *value.Value, m *ast.MethodDeclaration, args []*value.Value) (*frame.Frame, error) {
	f := frame.New(m.Name)
	f.Insert("me", inst)
	for i, p := range m.Params {
		var v *value.Value
		if i < len(args) {
			v = args[i]
		} else {
			v = value.NewNil()
		}
		f.Insert(p, v)
	}
	pushCaller(inst)
	defer popCaller()
	if err := Exec(f, m.Body); err != nil {
		return f, err
	}
	return f, nil
}

// CallMethod resolves and runs an ordinary (non-operator) method by name
// and argument count.
func CallMethod(inst *value.Value, name string, args []*value.Value) (*value.Value, error) {
	m, ok := resolveOverload(inst.Class.Methods, name, len(args))
	if !ok {
		return nil, herror.Newf(herror.Syntax, "class %s has no method %s", inst.Class.Name, name)
	}
	f, err := invoke(inst, m, args)
	if err != nil {
		return nil, err
	}
	if f.State.Throwing {
		return nil, &thrownError{inst: inst.Class.Name, value: f.State.ThrownValue}
	}
	return resultOrNil(f), nil
}

func resultOrNil(f *frame.Frame) *value.Value {
	if f.State.ReturnValue != nil {
		return f.State.ReturnValue
	}
	return value.NewNil()
}

// thrownError lets an unhandled script-level throw surface through Go's
// error interface when this package's vtable hooks (which must return
// `error`, not frame state) need to report it to internal/eval.
type thrownError struct {
	inst  string
	value *value.Value
}

func (e *thrownError) Error() string {
	return "uncaught exception from " + e.inst + ": " + value.SValue(e.value)
}

// ThrownValue unwraps the script-level value a thrownError carries, for
// internal/eval to rebind onto its own frame's Throwing state.
func ThrownValue(err error) (*value.Value, bool) {
	if te, ok := err.(*thrownError); ok {
		return te.value, true
	}
	return nil, false
}

// CallOperator dispatches op to inst's __op@<op> method. Unlike ordinary
// method overload resolution, arity mismatch here is a hard error
// (supplemented from the original implementation's class.cpp, see
// DESIGN.md), not a silent fallback — there is exactly one sensible
// parameter count for a binary or unary operator.
func CallOperator(inst *value.Value, op string, operands []*value.Value) (*value.Value, error) {
	mangled := MangleOperator(op)
	variations, ok := inst.Class.Methods[mangled]
	if !ok || len(variations) == 0 {
		return nil, herror.Newf(herror.Syntax, "class %s does not overload '%s'", inst.Class.Name, op)
	}
	var m *ast.MethodDeclaration
	for _, v := range variations {
		if len(v.Params) == len(operands) {
			m = v
			break
		}
	}
	if m == nil {
		return nil, herror.Newf(herror.Syntax, "class %s overload '%s' expects %d argument(s)", inst.Class.Name, op, len(variations[0].Params))
	}
	f, err := invoke(inst, m, operands)
	if err != nil {
		return nil, err
	}
	if f.State.Throwing {
		return nil, &thrownError{inst: inst.Class.Name, value: f.State.ThrownValue}
	}
	return resultOrNil(f), nil
}

// callDescriptor runs a descriptor hook if declared. The body runs in a
// fresh frame of its own (see invoke), so the caller's frame state is
// never read or changed; a throw inside the descriptor comes back as a
// thrownError. Returns ok=false when the class has no such descriptor so
// the caller can fall back to the default behavior.
func callDescriptor(inst *value.Value, name string, args []*value.Value) (v *value.Value, ok bool, err error) {
	variations, has := inst.Class.Methods[name]
	if !has || len(variations) == 0 {
		return nil, false, nil
	}
	m, matched := resolveOverload(inst.Class.Methods, name, len(args))
	if !matched {
		return nil, false, nil
	}
	f, err := invoke(inst, m, args)
	if err != nil {
		return nil, true, err
	}
	if f.State.Throwing {
		return nil, true, &thrownError{inst: inst.Class.Name, value: f.State.ThrownValue}
	}
	return resultOrNil(f), true, nil
}
