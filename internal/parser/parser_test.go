package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hybris-lang/hybris/internal/ast"
	"github.com/hybris-lang/hybris/internal/parser"
)

func TestParseArithmeticPrecedence(t *testing.T) {
	prog, err := parser.Parse("1 + 2 * 3;")
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)

	es := prog.Statements[0].(*ast.ExpressionStatement)
	bin := es.Expr.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpAdd, bin.Op)
	assert.EqualValues(t, 1, bin.Left.(*ast.IntegerLiteral).Value)

	rhs := bin.Right.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpMul, rhs.Op)
}

func TestParseAssignmentIsRightAssociativeAndLowest(t *testing.T) {
	prog, err := parser.Parse("x = y = 1 + 2;")
	require.NoError(t, err)

	es := prog.Statements[0].(*ast.ExpressionStatement)
	outer := es.Expr.(*ast.AssignExpr)
	assert.Equal(t, "x", outer.Target.(*ast.Identifier).Name)

	inner := outer.Value.(*ast.AssignExpr)
	assert.Equal(t, "y", inner.Target.(*ast.Identifier).Name)
	assert.IsType(t, &ast.BinaryExpr{}, inner.Value)
}

func TestParseAttributeAccessAndDotConcatAreDistinct(t *testing.T) {
	prog, err := parser.Parse(`me->name . "!";`)
	require.NoError(t, err)

	es := prog.Statements[0].(*ast.ExpressionStatement)
	bin := es.Expr.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpDotConcat, bin.Op)

	attr := bin.Left.(*ast.AttributeAccess)
	assert.Equal(t, "name", attr.Name)
	assert.Equal(t, "me", attr.Object.(*ast.Identifier).Name)
}

func TestParseIndexAssignAndPush(t *testing.T) {
	prog, err := parser.Parse(`v[0] = 9; v[] = 1;`)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 2)

	set := prog.Statements[0].(*ast.ExpressionStatement).Expr.(*ast.IndexAssignExpr)
	require.NotNil(t, set.Index)

	push := prog.Statements[1].(*ast.ExpressionStatement).Expr.(*ast.IndexAssignExpr)
	assert.Nil(t, push.Index)
}

func TestParseClassWithOperatorOverload(t *testing.T) {
	src := `
class Vec {
	public:
	x = 0;
	method Vec(a) {
		me->x = a;
	}
	method +(o) {
		return me->x + o->x;
	}
}
`
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	require.Len(t, prog.Statements, 1)

	cls := prog.Statements[0].(*ast.ClassDeclaration)
	assert.Equal(t, "Vec", cls.Name)
	require.Len(t, cls.Attributes, 1)
	assert.Equal(t, "x", cls.Attributes[0].Name)
	assert.Equal(t, ast.AccessPublic, cls.Attributes[0].Access)

	require.Len(t, cls.Methods, 2)
	assert.Equal(t, "Vec", cls.Methods[0].Name)
	assert.Equal(t, "__op@+", cls.Methods[1].Name)
}

func TestParseForeachWithKeyValue(t *testing.T) {
	prog, err := parser.Parse(`foreach (k -> v of m) { x = v; }`)
	require.NoError(t, err)

	fe := prog.Statements[0].(*ast.ForeachStatement)
	assert.Equal(t, "k", fe.KeyName)
	assert.Equal(t, "v", fe.ValueName)
}

func TestParseTryCatchFinally(t *testing.T) {
	prog, err := parser.Parse(`
try {
	throw 1;
} catch (e) {
	x = e;
} finally {
	y = 2;
}
`)
	require.NoError(t, err)
	stmt := prog.Statements[0].(*ast.TryStatement)
	assert.Equal(t, "e", stmt.CatchName)
	require.NotNil(t, stmt.Finally)
}

func TestParseSwitch(t *testing.T) {
	prog, err := parser.Parse(`
switch (x) {
	case 1:
		y = 1;
		break;
	default:
		y = 2;
		break;
}
`)
	require.NoError(t, err)
	stmt := prog.Statements[0].(*ast.SwitchStatement)
	require.Len(t, stmt.Cases, 2)
	assert.False(t, stmt.Cases[0].IsDefault)
	assert.True(t, stmt.Cases[1].IsDefault)
}

func TestParseTernaryAndRange(t *testing.T) {
	prog, err := parser.Parse(`x = (a > b ? a : b);`)
	require.NoError(t, err)
	assign := prog.Statements[0].(*ast.ExpressionStatement).Expr.(*ast.AssignExpr)
	assert.IsType(t, &ast.TernaryExpr{}, assign.Value)

	prog2, err := parser.Parse(`r = 1 .. 5;`)
	require.NoError(t, err)
	assign2 := prog2.Statements[0].(*ast.ExpressionStatement).Expr.(*ast.AssignExpr)
	bin := assign2.Value.(*ast.BinaryExpr)
	assert.Equal(t, ast.OpRange, bin.Op)
}

func TestParseNewAndCallChain(t *testing.T) {
	prog, err := parser.Parse(`x = new Vec(1, 2)->x;`)
	require.NoError(t, err)
	assign := prog.Statements[0].(*ast.ExpressionStatement).Expr.(*ast.AssignExpr)
	attr := assign.Value.(*ast.AttributeAccess)
	newExpr := attr.Object.(*ast.NewExpr)
	assert.Equal(t, "Vec", newExpr.ClassName)
	require.Len(t, newExpr.Args, 2)
}
