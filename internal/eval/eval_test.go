package eval_test

import (
	"testing"

	"github.com/kr/pretty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hybris-lang/hybris/internal/class"
	"github.com/hybris-lang/hybris/internal/eval"
	"github.com/hybris-lang/hybris/internal/frame"
	"github.com/hybris-lang/hybris/internal/gc"
	"github.com/hybris-lang/hybris/internal/herror"
	"github.com/hybris-lang/hybris/internal/parser"
	"github.com/hybris-lang/hybris/internal/value"
)

// assertIntVector compares a vector value's elements against the wanted
// ints, pretty-printing both sides on mismatch — a plain %v on a slice of
// *value.Value only prints pointer addresses, useless for a failure
// message.
func assertIntVector(t *testing.T, want []int64, got *value.Value) {
	t.Helper()
	if got.Kind != value.KindVector || len(got.Vec) != len(want) {
		t.Fatalf("vector shape mismatch:\nwant %# v\ngot  %# v", pretty.Formatter(want), pretty.Formatter(got))
	}
	gotInts := make([]int64, len(got.Vec))
	for i, el := range got.Vec {
		gotInts[i] = el.I
	}
	if !assert.Equal(t, want, gotInts) {
		t.Logf("want %# v\ngot  %# v", pretty.Formatter(want), pretty.Formatter(got))
	}
}

// newInterp wires components B/D/F/H together the way internal/vm will,
// scoped to a single test so package-level state (class.Exec, the value
// vtable registry) never leaks across tests that rely on distinct arenas.
func newInterp(t *testing.T, threshold uint64) *eval.Interp {
	t.Helper()
	arena := gc.New(threshold)
	classes := class.NewRegistry()
	global := frame.New("global")
	arena.AddRoot(global)

	it := eval.New(arena, classes, global, &herror.Trace{})
	class.Exec = it.ExecBlock
	class.RegisterOps()
	return it
}

func run(t *testing.T, it *eval.Interp, src string) {
	t.Helper()
	prog, err := parser.Parse(src)
	require.NoError(t, err)
	require.NoError(t, it.RunProgram(prog))
}

func TestArithmeticPromotionAndStringInterpolation(t *testing.T) {
	it := newInterp(t, 0)
	run(t, it, `
x = 1 + 2 * 3;
y = x + 0.5;
name = "world";
s = "hello $name, x=$x";
`)
	x, ok := it.Global.Lookup("x")
	require.True(t, ok)
	assert.EqualValues(t, 7, x.I)

	y, ok := it.Global.Lookup("y")
	require.True(t, ok)
	assert.Equal(t, value.KindFloat, y.Kind)
	assert.InDelta(t, 7.5, y.F, 1e-9)

	s, ok := it.Global.Lookup("s")
	require.True(t, ok)
	assert.Equal(t, "hello world, x=7", s.S)
}

func TestClassWithOverloadedOperator(t *testing.T) {
	it := newInterp(t, 0)
	run(t, it, `
class Vec {
	public:
	x = 0;
	method Vec(a) {
		me->x = a;
	}
	method +(o) {
		return new Vec(me->x + o->x);
	}
}
a = new Vec(1);
b = new Vec(2);
c = a + b;
r = c->x;
`)
	r, ok := it.Global.Lookup("r")
	require.True(t, ok)
	assert.EqualValues(t, 3, r.I)
}

func TestForeachOverMapPreservesInsertionOrder(t *testing.T) {
	it := newInterp(t, 0)
	run(t, it, `
m = {"a": 1, "b": 2, "c": 3};
out = "";
foreach (k -> v of m) {
	out = out . k;
}
`)
	out, ok := it.Global.Lookup("out")
	require.True(t, ok)
	assert.Equal(t, "abc", out.S)
}

func TestTryCatchFinallyRunsOnThrow(t *testing.T) {
	it := newInterp(t, 0)
	run(t, it, `
log = "";
function fails() {
	throw "boom";
}
try {
	fails();
	log = log . "unreachable";
} catch (e) {
	log = log . "caught:" . e;
} finally {
	log = log . ":done";
}
`)
	logv, ok := it.Global.Lookup("log")
	require.True(t, ok)
	assert.Equal(t, "caught:boom:done", logv.S)
}

func TestSwitchFallthroughRequiresBreak(t *testing.T) {
	it := newInterp(t, 0)
	run(t, it, `
x = 1;
total = 0;
switch (x) {
	case 1:
		total = total + 1;
	case 2:
		total = total + 10;
		break;
	default:
		total = total + 100;
}
`)
	total, ok := it.Global.Lookup("total")
	require.True(t, ok)
	assert.EqualValues(t, 11, total.I)
}

func TestVectorPushIndexAndForLoop(t *testing.T) {
	it := newInterp(t, 0)
	run(t, it, `
v = [];
for (i = 0; i < 5; i = i + 1) {
	v[] = i * i;
}
sum = 0;
foreach (n of v) {
	sum = sum + n;
}
`)
	sum, ok := it.Global.Lookup("sum")
	require.True(t, ok)
	assert.EqualValues(t, 0+1+4+9+16, sum.I)

	v, ok := it.Global.Lookup("v")
	require.True(t, ok)
	assertIntVector(t, []int64{0, 1, 4, 9, 16}, v)
}

func TestConstantRebindingIsSyntaxError(t *testing.T) {
	it := newInterp(t, 0)
	prog, err := parser.Parse(`
const N = 1;
const N = 2;
`)
	require.NoError(t, err)
	err = it.RunProgram(prog)
	require.Error(t, err)
	herr, ok := err.(*herror.Error)
	require.True(t, ok)
	assert.Equal(t, herror.Syntax, herr.Kind)
}

func TestGCSweepKeepsReachableValuesAlive(t *testing.T) {
	it := newInterp(t, 64*3)
	run(t, it, `
kept = 1;
for (i = 0; i < 50; i = i + 1) {
	garbage = i;
}
`)
	it.Arena.Collect()
	kept, ok := it.Global.Lookup("kept")
	require.True(t, ok)
	assert.EqualValues(t, 1, kept.I)
	assert.True(t, it.Arena.Stats().Sweeps > 0)
}

func TestUncaughtThrowAtTopLevelIsReported(t *testing.T) {
	it := newInterp(t, 0)
	prog, err := parser.Parse(`throw "unhandled";`)
	require.NoError(t, err)
	err = it.RunProgram(prog)
	require.Error(t, err)
	herr, ok := err.(*herror.Error)
	require.True(t, ok)
	assert.Equal(t, herror.Generic, herr.Kind)
}
