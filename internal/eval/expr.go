package eval

import (
	"strings"

	"github.com/hybris-lang/hybris/internal/ast"
	"github.com/hybris-lang/hybris/internal/class"
	"github.com/hybris-lang/hybris/internal/frame"
	"github.com/hybris-lang/hybris/internal/herror"
	"github.com/hybris-lang/hybris/internal/value"
)

// eval dispatches an expression node to its produced value. On a
// script-level throw it returns (nil, nil) with f.State.Throwing already
// set — callers must check f.State.Throwing immediately after every eval
// call before touching the returned value (mirrors the statement
// executor's own discipline).
func (it *Interp) eval(f *frame.Frame, e ast.Expression) (*value.Value, error) {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return it.alloc(value.NewInt(n.Value)), nil
	case *ast.FloatLiteral:
		return it.alloc(value.NewFloat(n.Value)), nil
	case *ast.CharLiteral:
		return it.alloc(value.NewChar(n.Value)), nil
	case *ast.BoolLiteral:
		return it.alloc(value.NewBool(n.Value)), nil
	case *ast.NilLiteral:
		return value.NewNil(), nil
	case *ast.StringLiteral:
		return it.evalStringLiteral(f, n)
	case *ast.Identifier:
		return it.lookupIdentifier(f, n)
	case *ast.VectorLiteral:
		return it.evalVectorLiteral(f, n)
	case *ast.MapLiteral:
		return it.evalMapLiteral(f, n)
	case *ast.BinaryExpr:
		return it.evalBinary(f, n)
	case *ast.CompoundAssignExpr:
		return it.evalCompoundAssign(f, n)
	case *ast.UnaryExpr:
		return it.evalUnary(f, n)
	case *ast.AssignExpr:
		v, err := it.eval(f, n.Value)
		if err != nil || f.State.Throwing {
			return nil, err
		}
		if err := it.assignTarget(f, n.Target, v); err != nil {
			return nil, err
		}
		return v, nil
	case *ast.IndexExpr:
		return it.evalIndex(f, n)
	case *ast.IndexAssignExpr:
		return it.evalIndexAssign(f, n)
	case *ast.AttributeAccess:
		obj, err := it.eval(f, n.Object)
		if err != nil || f.State.Throwing {
			return nil, err
		}
		v, err := value.GetAttribute(obj, n.Name)
		if err != nil {
			return nil, it.unwrapThrow(f, err)
		}
		return v, nil
	case *ast.DollarExpr:
		return it.evalDollar(f, n)
	case *ast.CallExpr:
		return it.evalCall(f, n)
	case *ast.NewExpr:
		return it.evalNew(f, n)
	case *ast.TernaryExpr:
		cond, err := it.eval(f, n.Cond)
		if err != nil || f.State.Throwing {
			return nil, err
		}
		if value.IsTruthy(cond) {
			return it.eval(f, n.Then)
		}
		return it.eval(f, n.Else)
	}
	return nil, herror.Newf(herror.Syntax, "unsupported expression node %T", e)
}

// unwrapThrow turns an error carrying a script-level thrown value (from
// internal/class's method/operator/constructor dispatch) into the
// caller's frame state, returning nil so the caller treats it like any
// other already-handled throw; any other error is passed through as a
// host-level failure.
func (it *Interp) unwrapThrow(f *frame.Frame, err error) error {
	if err == nil {
		return nil
	}
	if v, ok := class.ThrownValue(err); ok {
		f.State.Throwing = true
		f.State.ThrownValue = v
		return nil
	}
	if ct, ok := err.(*callThrow); ok {
		f.State.Throwing = true
		f.State.ThrownValue = ct.value
		return nil
	}
	return err
}

func (it *Interp) lookupIdentifier(f *frame.Frame, n *ast.Identifier) (*value.Value, error) {
	if v, ok := f.Lookup(n.Name); ok {
		return v, nil
	}
	if f != it.Global {
		if v, ok := it.Global.Lookup(n.Name); ok {
			return v, nil
		}
	}
	return nil, herror.Newf(herror.Syntax, "undefined identifier %s", n.Name).WithPos(posOf(n.Token))
}

func (it *Interp) evalStringLiteral(f *frame.Frame, n *ast.StringLiteral) (*value.Value, error) {
	if len(n.Parts) == 0 {
		return it.alloc(value.NewString(n.Value)), nil
	}
	var sb strings.Builder
	for _, p := range n.Parts {
		if p.Ident == "" {
			sb.WriteString(p.Literal)
			continue
		}
		v, ok := f.Lookup(p.Ident)
		if !ok {
			if f != it.Global {
				v, ok = it.Global.Lookup(p.Ident)
			}
			if !ok {
				return nil, herror.Newf(herror.Syntax, "undefined identifier %s", p.Ident).WithPos(posOf(n.Token))
			}
		}
		sb.WriteString(value.SValue(v))
	}
	return it.alloc(value.NewString(sb.String())), nil
}

func (it *Interp) evalVectorLiteral(f *frame.Frame, n *ast.VectorLiteral) (*value.Value, error) {
	elems := make([]*value.Value, 0, len(n.Elements))
	for _, el := range n.Elements {
		v, err := it.eval(f, el)
		if err != nil || f.State.Throwing {
			return nil, err
		}
		elems = append(elems, v)
	}
	return it.alloc(value.NewVector(elems)), nil
}

func (it *Interp) evalMapLiteral(f *frame.Frame, n *ast.MapLiteral) (*value.Value, error) {
	m := value.NewOrderedMap()
	for _, entry := range n.Entries {
		k, err := it.eval(f, entry.Key)
		if err != nil || f.State.Throwing {
			return nil, err
		}
		v, err := it.eval(f, entry.Value)
		if err != nil || f.State.Throwing {
			return nil, err
		}
		m.Put(k, v)
	}
	return it.alloc(value.NewMap(m)), nil
}

func (it *Interp) evalBinary(f *frame.Frame, n *ast.BinaryExpr) (*value.Value, error) {
	left, err := it.eval(f, n.Left)
	if err != nil || f.State.Throwing {
		return nil, err
	}

	// && and || short-circuit on the already-evaluated left operand before
	// the right side is even parsed into a value (spec.md §4.E).
	if n.Op == ast.OpAnd && !value.IsTruthy(left) {
		return it.alloc(value.NewBool(false)), nil
	}
	if n.Op == ast.OpOr && value.IsTruthy(left) {
		return it.alloc(value.NewBool(true)), nil
	}

	right, err := it.eval(f, n.Right)
	if err != nil || f.State.Throwing {
		return nil, err
	}

	switch n.Op {
	case ast.OpDotConcat:
		return it.alloc(value.NewString(value.SValue(left) + value.SValue(right))), nil
	case ast.OpRange:
		v, err := value.Range(left, right)
		if err != nil {
			return nil, it.unwrapThrow(f, err)
		}
		return it.alloc(v), nil
	case ast.OpRegex:
		v, err := value.Regex(left, right)
		if err != nil {
			return nil, it.unwrapThrow(f, err)
		}
		return it.alloc(v), nil
	}

	v, err := value.BinOp(n.Op, left, right)
	if err != nil {
		return nil, it.unwrapThrow(f, err)
	}
	return it.alloc(v), nil
}

func (it *Interp) evalUnary(f *frame.Frame, n *ast.UnaryExpr) (*value.Value, error) {
	if n.Op == ast.OpPreInc || n.Op == ast.OpPreDec {
		cur, err := it.eval(f, n.Operand)
		if err != nil || f.State.Throwing {
			return nil, err
		}
		delta := ast.OpAdd
		if n.Op == ast.OpPreDec {
			delta = ast.OpSub
		}
		next, err := value.BinOp(delta, cur, value.NewInt(1))
		if err != nil {
			return nil, it.unwrapThrow(f, err)
		}
		it.alloc(next)
		if err := it.assignTarget(f, n.Operand, next); err != nil {
			return nil, err
		}
		return next, nil
	}

	operand, err := it.eval(f, n.Operand)
	if err != nil || f.State.Throwing {
		return nil, err
	}
	v, err := value.UnaryOp(n.Op, operand)
	if err != nil {
		return nil, it.unwrapThrow(f, err)
	}
	return it.alloc(v), nil
}

func (it *Interp) evalCompoundAssign(f *frame.Frame, n *ast.CompoundAssignExpr) (*value.Value, error) {
	cur, err := it.eval(f, n.Target)
	if err != nil || f.State.Throwing {
		return nil, err
	}
	rhs, err := it.eval(f, n.Value)
	if err != nil || f.State.Throwing {
		return nil, err
	}
	next, err := value.BinOp(n.Op, cur, rhs)
	if err != nil {
		return nil, it.unwrapThrow(f, err)
	}
	it.alloc(next)
	if err := it.assignTarget(f, n.Target, next); err != nil {
		return nil, err
	}
	return next, nil
}

// assignTarget implements spec.md §4.E "Assignment": a bare identifier
// binds in the current frame; an index target routes through the
// collection's Set vtable slot; an attribute target routes through
// SetAttribute.
func (it *Interp) assignTarget(f *frame.Frame, target ast.Expression, v *value.Value) error {
	switch t := target.(type) {
	case *ast.Identifier:
		f.Insert(t.Name, v)
		return nil
	case *ast.IndexExpr:
		coll, err := it.eval(f, t.Collection)
		if err != nil || f.State.Throwing {
			return err
		}
		idx, err := it.eval(f, t.Index)
		if err != nil || f.State.Throwing {
			return err
		}
		if err := value.Set(coll, idx, v); err != nil {
			return it.unwrapThrow(f, err)
		}
		return nil
	case *ast.AttributeAccess:
		obj, err := it.eval(f, t.Object)
		if err != nil || f.State.Throwing {
			return err
		}
		if err := value.SetAttribute(obj, t.Name, v); err != nil {
			return it.unwrapThrow(f, err)
		}
		return nil
	}
	return herror.Newf(herror.Syntax, "invalid assignment target %T", target)
}

func (it *Interp) evalIndex(f *frame.Frame, n *ast.IndexExpr) (*value.Value, error) {
	coll, err := it.eval(f, n.Collection)
	if err != nil || f.State.Throwing {
		return nil, err
	}
	idx, err := it.eval(f, n.Index)
	if err != nil || f.State.Throwing {
		return nil, err
	}
	v, err := value.At(coll, idx)
	if err != nil {
		return nil, it.unwrapThrow(f, err)
	}
	return v, nil
}

func (it *Interp) evalIndexAssign(f *frame.Frame, n *ast.IndexAssignExpr) (*value.Value, error) {
	coll, err := it.eval(f, n.Collection)
	if err != nil || f.State.Throwing {
		return nil, err
	}
	val, err := it.eval(f, n.Value)
	if err != nil || f.State.Throwing {
		return nil, err
	}
	if n.Index == nil {
		if err := value.Push(coll, val); err != nil {
			return nil, it.unwrapThrow(f, err)
		}
		return val, nil
	}
	idx, err := it.eval(f, n.Index)
	if err != nil || f.State.Throwing {
		return nil, err
	}
	if err := value.Set(coll, idx, val); err != nil {
		return nil, it.unwrapThrow(f, err)
	}
	return val, nil
}

func (it *Interp) evalDollar(f *frame.Frame, n *ast.DollarExpr) (*value.Value, error) {
	v, err := it.eval(f, n.Expr)
	if err != nil || f.State.Throwing {
		return nil, err
	}
	name := value.SValue(v)
	if bound, ok := f.Lookup(name); ok {
		return bound, nil
	}
	if f != it.Global {
		if bound, ok := it.Global.Lookup(name); ok {
			return bound, nil
		}
	}
	return nil, herror.Newf(herror.Syntax, "undefined identifier %s", name).WithPos(posOf(n.Token))
}

func (it *Interp) evalArgs(f *frame.Frame, exprs []ast.Expression) ([]*value.Value, error) {
	argv := make([]*value.Value, 0, len(exprs))
	for _, a := range exprs {
		v, err := it.eval(f, a)
		if err != nil || f.State.Throwing {
			return nil, err
		}
		argv = append(argv, v)
	}
	return argv, nil
}

func (it *Interp) evalCall(f *frame.Frame, n *ast.CallExpr) (*value.Value, error) {
	if attr, ok := n.Callee.(*ast.AttributeAccess); ok {
		obj, err := it.eval(f, attr.Object)
		if err != nil || f.State.Throwing {
			return nil, err
		}
		argv, err := it.evalArgs(f, n.Args)
		if err != nil || f.State.Throwing {
			return nil, err
		}
		target := value.Deref(obj)
		if target == nil || target.Kind != value.KindClass {
			return nil, herror.Newf(herror.Syntax, "cannot call method %s on type %s", attr.Name, value.TypeName(target)).WithPos(posOf(n.Token))
		}
		v, err := class.CallMethod(target, attr.Name, argv)
		if err != nil {
			return nil, it.unwrapThrow(f, err)
		}
		return v, nil
	}

	ident, ok := n.Callee.(*ast.Identifier)
	if !ok {
		return nil, herror.Newf(herror.Syntax, "expression is not callable").WithPos(posOf(n.Token))
	}
	argv, err := it.evalArgs(f, n.Args)
	if err != nil || f.State.Throwing {
		return nil, err
	}

	if fn, ok := it.Functions[ident.Name]; ok {
		v, err := it.callFunction(fn, argv)
		if err != nil {
			return nil, it.unwrapThrow(f, err)
		}
		return v, nil
	}
	if native, ok := it.Natives[ident.Name]; ok {
		v, err := native(it, argv)
		if err != nil {
			return nil, it.unwrapThrow(f, err)
		}
		return it.alloc(v), nil
	}
	return nil, herror.Newf(herror.Syntax, "undefined function %s", ident.Name).WithPos(posOf(n.Token))
}

func (it *Interp) callFunction(fn *ast.FunctionDeclaration, argv []*value.Value) (*value.Value, error) {
	cf := frame.New(fn.Name)
	for i, p := range fn.Params {
		var v *value.Value
		if i < len(argv) {
			v = argv[i]
		} else {
			v = value.NewNil()
		}
		cf.Insert(p, v)
	}
	if it.Trace != nil {
		it.Trace.Push(fn.Name, posOf(fn.Token))
		defer it.Trace.Pop()
	}
	if err := it.ExecBlock(cf, fn.Body); err != nil {
		return nil, err
	}
	if cf.State.Throwing {
		return nil, &callThrow{value: cf.State.ThrownValue}
	}
	if cf.State.ReturnValue != nil {
		return cf.State.ReturnValue, nil
	}
	return value.NewNil(), nil
}

// callThrow propagates an uncaught throw out of a plain function call the
// same way internal/class's thrownError propagates one out of a method
// call; evalCall unwraps it via the same unwrapThrow path, which checks
// class.ThrownValue first and this type second.
type callThrow struct{ value *value.Value }

func (e *callThrow) Error() string { return "uncaught exception: " + value.SValue(e.value) }

func (it *Interp) evalNew(f *frame.Frame, n *ast.NewExpr) (*value.Value, error) {
	argv, err := it.evalArgs(f, n.Args)
	if err != nil || f.State.Throwing {
		return nil, err
	}
	if _, ok := it.Classes.Lookup(n.ClassName); ok {
		v, err := it.Classes.New(n.ClassName, argv)
		if err != nil {
			return nil, it.unwrapThrow(f, err)
		}
		return it.alloc(v), nil
	}
	if sdecl, ok := it.Structures[n.ClassName]; ok {
		return it.newStructValue(f, n.ClassName, sdecl.Fields, argv)
	}
	if fields, ok := it.nativeStructs[n.ClassName]; ok {
		return it.newStructValue(f, n.ClassName, fields, argv)
	}
	return nil, herror.Newf(herror.Syntax, "%s is not a declared class or structure", n.ClassName).WithPos(posOf(n.Token))
}

func (it *Interp) newStructValue(f *frame.Frame, name string, fields []string, argv []*value.Value) (*value.Value, error) {
	s := value.NewStruct(name, fields)
	for i, field := range fields {
		if i >= len(argv) {
			break
		}
		if err := value.SetAttribute(s, field, argv[i]); err != nil {
			return nil, it.unwrapThrow(f, err)
		}
	}
	return it.alloc(s), nil
}
