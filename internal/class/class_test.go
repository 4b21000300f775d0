package class_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hybris-lang/hybris/internal/ast"
	"github.com/hybris-lang/hybris/internal/class"
	"github.com/hybris-lang/hybris/internal/frame"
	"github.com/hybris-lang/hybris/internal/value"
)

// fakeExec is a minimal stand-in for internal/eval's block executor: it
// only understands the handful of statement/expression shapes this test
// file builds by hand, enough to exercise attribute defaults, a
// constructor and an operator overload without needing the real
// evaluator.
func fakeExec(f *frame.Frame, body *ast.Block) error {
	for _, stmt := range body.Stmts {
		switch s := stmt.(type) {
		case *ast.ReturnStatement:
			if s.Value != nil {
				v, err := evalExpr(f, s.Value)
				if err != nil {
					return err
				}
				f.State.ReturnValue = v
			}
			f.State.Returning = true
			return nil
		case *ast.ExpressionStatement:
			v, err := evalExpr(f, s.Expr)
			if err != nil {
				return err
			}
			f.State.ReturnValue = v
		}
		if f.State.ShortCircuit() {
			return nil
		}
	}
	return nil
}

func evalExpr(f *frame.Frame, e ast.Expression) (*value.Value, error) {
	switch n := e.(type) {
	case *ast.IntegerLiteral:
		return value.NewInt(n.Value), nil
	case *ast.Identifier:
		v, ok := f.Lookup(n.Name)
		if !ok {
			return value.NewNil(), nil
		}
		return v, nil
	case *ast.AttributeAccess:
		obj, err := evalExpr(f, n.Object)
		if err != nil {
			return nil, err
		}
		return value.GetAttribute(obj, n.Name)
	case *ast.AssignExpr:
		v, err := evalExpr(f, n.Value)
		if err != nil {
			return nil, err
		}
		if attr, ok := n.Target.(*ast.AttributeAccess); ok {
			obj, err := evalExpr(f, attr.Object)
			if err != nil {
				return nil, err
			}
			return v, value.SetAttribute(obj, attr.Name, v)
		}
		if ident, ok := n.Target.(*ast.Identifier); ok {
			f.Insert(ident.Name, v)
			return v, nil
		}
	case *ast.BinaryExpr:
		l, err := evalExpr(f, n.Left)
		if err != nil {
			return nil, err
		}
		r, err := evalExpr(f, n.Right)
		if err != nil {
			return nil, err
		}
		return value.BinOp(n.Op, l, r)
	}
	return value.NewNil(), nil
}

func meAttr(name string) *ast.AttributeAccess {
	return &ast.AttributeAccess{Object: &ast.Identifier{Name: "me"}, Name: name}
}

func TestNewRunsConstructorAndOverloadedOperator(t *testing.T) {
	class.Exec = fakeExec
	class.RegisterOps()
	reg := class.NewRegistry()

	ctor := &ast.MethodDeclaration{
		Name:   "V",
		Params: []string{"a"},
		Body: &ast.Block{Stmts: []ast.Statement{
			&ast.ExpressionStatement{Expr: &ast.AssignExpr{Target: meAttr("x"), Value: &ast.Identifier{Name: "a"}}},
		}},
	}
	plus := &ast.MethodDeclaration{
		Name:   class.MangleOperator("+"),
		Params: []string{"o"},
		Body: &ast.Block{Stmts: []ast.Statement{
			&ast.ReturnStatement{Value: &ast.BinaryExpr{Op: ast.OpAdd, Left: meAttr("x"), Right: &ast.AttributeAccess{Object: &ast.Identifier{Name: "o"}, Name: "x"}}},
		}},
	}

	require.NoError(t, reg.Define(&ast.ClassDeclaration{
		Name:       "V",
		Attributes: []*ast.AttributeDeclaration{{Access: ast.AccessPublic, Name: "x"}},
		Methods:    []*ast.MethodDeclaration{ctor, plus},
	}))

	a, err := reg.New("V", []*value.Value{value.NewInt(1)})
	require.NoError(t, err)
	b, err := reg.New("V", []*value.Value{value.NewInt(2)})
	require.NoError(t, err)

	ax, err := value.GetAttribute(a, "x")
	require.NoError(t, err)
	av, _ := value.IValue(ax)
	assert.EqualValues(t, 1, av)

	sum, err := class.CallOperator(a, "+", []*value.Value{b})
	require.NoError(t, err)
	si, err := value.IValue(sum)
	require.NoError(t, err)
	assert.EqualValues(t, 3, si)
}

func TestInheritanceOverlaysParentTables(t *testing.T) {
	class.Exec = fakeExec
	reg := class.NewRegistry()

	require.NoError(t, reg.Define(&ast.ClassDeclaration{
		Name:       "Base",
		Attributes: []*ast.AttributeDeclaration{{Access: ast.AccessPublic, Name: "a"}},
	}))
	require.NoError(t, reg.Define(&ast.ClassDeclaration{
		Name:       "Derived",
		Parents:    []string{"Base"},
		Attributes: []*ast.AttributeDeclaration{{Access: ast.AccessPublic, Name: "b"}},
	}))

	inst, err := reg.New("Derived", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, inst.Class.AttrOrder)
}

func TestOperatorArityMismatchIsHardError(t *testing.T) {
	class.Exec = fakeExec
	reg := class.NewRegistry()
	plus := &ast.MethodDeclaration{Name: class.MangleOperator("+"), Params: []string{"o"}, Body: &ast.Block{}}
	require.NoError(t, reg.Define(&ast.ClassDeclaration{Name: "V", Methods: []*ast.MethodDeclaration{plus}}))

	inst, err := reg.New("V", nil)
	require.NoError(t, err)

	_, err = class.CallOperator(inst, "+", nil) // zero operands, overload expects one
	assert.Error(t, err)
}

// TestCollectionOperatorsMangleDistinctly exercises value.Push/At/Set
// against a class declaring all three of []=, [] and []<, confirming each
// dispatches to its own mangled method rather than push/at colliding on
// the same "[]" overload.
func TestCollectionOperatorsMangleDistinctly(t *testing.T) {
	class.Exec = fakeExec
	class.RegisterOps()
	reg := class.NewRegistry()

	pushed := &ast.MethodDeclaration{
		Name:   class.MangleOperator("[]="),
		Params: []string{"v"},
		Body: &ast.Block{Stmts: []ast.Statement{
			&ast.ExpressionStatement{Expr: &ast.AssignExpr{Target: meAttr("pushed"), Value: &ast.Identifier{Name: "v"}}},
		}},
	}
	at := &ast.MethodDeclaration{
		Name:   class.MangleOperator("[]"),
		Params: []string{"i"},
		Body: &ast.Block{Stmts: []ast.Statement{
			&ast.ReturnStatement{Value: &ast.Identifier{Name: "i"}},
		}},
	}
	set := &ast.MethodDeclaration{
		Name:   class.MangleOperator("[]<"),
		Params: []string{"i", "v"},
		Body: &ast.Block{Stmts: []ast.Statement{
			&ast.ExpressionStatement{Expr: &ast.AssignExpr{Target: meAttr("set"), Value: &ast.Identifier{Name: "v"}}},
		}},
	}

	require.NoError(t, reg.Define(&ast.ClassDeclaration{
		Name:       "Coll",
		Attributes: []*ast.AttributeDeclaration{{Access: ast.AccessPublic, Name: "pushed"}, {Access: ast.AccessPublic, Name: "set"}},
		Methods:    []*ast.MethodDeclaration{pushed, at, set},
	}))

	inst, err := reg.New("Coll", nil)
	require.NoError(t, err)

	require.NoError(t, value.Push(inst, value.NewInt(7)))
	pv, err := value.GetAttribute(inst, "pushed")
	require.NoError(t, err)
	assert.EqualValues(t, 7, pv.I)

	av, err := value.At(inst, value.NewInt(3))
	require.NoError(t, err)
	assert.EqualValues(t, 3, av.I)

	require.NoError(t, value.Set(inst, value.NewInt(0), value.NewInt(9)))
	sv, err := value.GetAttribute(inst, "set")
	require.NoError(t, err)
	assert.EqualValues(t, 9, sv.I)
}

// TestPrivateAttributeNotAccessibleFromOutside confirms GetAttribute/
// SetAttribute enforce ast.AccessPrivate: a private attribute is readable
// from inside the declaring class's own methods but not from top-level
// script code (no method executing, so no caller context).
func TestPrivateAttributeNotAccessibleFromOutside(t *testing.T) {
	class.Exec = fakeExec
	class.RegisterOps()
	reg := class.NewRegistry()

	reveal := &ast.MethodDeclaration{
		Name: "reveal",
		Body: &ast.Block{Stmts: []ast.Statement{
			&ast.ReturnStatement{Value: meAttr("secret")},
		}},
	}
	require.NoError(t, reg.Define(&ast.ClassDeclaration{
		Name:       "Vault",
		Attributes: []*ast.AttributeDeclaration{{Access: ast.AccessPrivate, Name: "secret"}},
		Methods:    []*ast.MethodDeclaration{reveal},
	}))

	inst, err := reg.New("Vault", nil)
	require.NoError(t, err)

	_, err = value.GetAttribute(inst, "secret")
	assert.Error(t, err, "private attribute must not be readable from outside any method")

	v, err := class.CallMethod(inst, "reveal", nil)
	require.NoError(t, err, "private attribute must be readable from within the declaring class's own method")
	_ = v

	err = value.SetAttribute(inst, "secret", value.NewInt(1))
	assert.Error(t, err, "private attribute must not be writable from outside any method")
}
