package yl

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// runCapture runs src on a fresh VM and returns everything written via
// `print`, trimmed of the trailing newline.
func runCapture(t *testing.T, src string) string {
	t.Helper()
	cfg := NewConfig()
	vm := NewVM(cfg, &MapModuleLoader{Sources: map[string]string{}})
	var out strings.Builder
	vm.Out = &out
	_, err := vm.Run(src, "<test>")
	require.NoError(t, err)
	return strings.TrimSuffix(out.String(), "\n")
}

func TestClosuresAndUpvalues(t *testing.T) {
	out := runCapture(t, `
		fn make() { var x = 1; fn inc() { x = x + 1; print x; } return inc; }
		var f = make(); f(); f(); f();
	`)
	assert.Equal(t, "2\n3\n4", out)
}

func TestClassInheritance(t *testing.T) {
	out := runCapture(t, `
		class A { fn greet(self) { print "A"; } }
		#[derive(A)]
		class B { fn greet(self) { super.greet(); print "B"; } }
		B().greet();
	`)
	assert.Equal(t, "A\nB", out)
}

func TestFibonacci(t *testing.T) {
	out := runCapture(t, `
		fn f(n) { if (n < 2) { return n; } return f(n-1) + f(n-2); }
		print f(10);
	`)
	assert.Equal(t, "55", out)
}

func TestRangeIteration(t *testing.T) {
	out := runCapture(t, `
		var s = 0;
		for i in 1..5 { s = s + i; }
		print s;
	`)
	assert.Equal(t, "10", out)
}

func TestDescendingRangeIteration(t *testing.T) {
	out := runCapture(t, `
		var s = "";
		for i in 5..1 { s = s + i.to_string(); }
		print s;
	`)
	assert.Equal(t, "5432", out)
}

func TestFiberYieldResume(t *testing.T) {
	out := runCapture(t, `
		var g = Fiber.new(|| { Fiber.yield(1); Fiber.yield(2); return 3; });
		print g.call();
		print g.call();
		print g.call();
		print g.has_finished();
	`)
	assert.Equal(t, "1\n2\n3\ntrue", out)
}

func TestTryCatchFinally(t *testing.T) {
	out := runCapture(t, `
		fn risky() {
			try {
				throw "boom";
				print "unreached";
			} catch (e) {
				print "caught";
			} finally {
				print "finally";
			}
		}
		risky();
	`)
	assert.Equal(t, "caught\nfinally", out)
}

func TestStringInterningIdentity(t *testing.T) {
	cfg := NewConfig()
	vm := NewVM(cfg, &MapModuleLoader{})
	a := vm.Strings.Intern("hello", vm.Classes.String)
	b := vm.Strings.Intern("hello", vm.Classes.String)
	assert.Same(t, a, b)
	assert.True(t, Equal(ObjectValue(a), ObjectValue(b)))
}

func TestIterationProtocolReturnsSentinelAfterExhaustion(t *testing.T) {
	out := runCapture(t, `
		var v = #[1, 2];
		var it = v.iter();
		print it.next();
		print it.next();
		print it.next() == sentinel;
		print it.next() == sentinel;
	`)
	assert.Equal(t, "1\n2\ntrue\ntrue", out)
}

func TestImportIdempotence(t *testing.T) {
	cfg := NewConfig()
	loader := &MapModuleLoader{Sources: map[string]string{
		"counted": "print \"loaded\";",
	}}
	vm := NewVM(cfg, loader)
	var out strings.Builder
	vm.Out = &out
	_, err := vm.Run(`import "counted"; import "counted";`, "<test>")
	require.NoError(t, err)
	assert.Equal(t, "loaded\n", out.String())
}

func TestHashMapBasics(t *testing.T) {
	out := runCapture(t, `
		var m = #{"a": 1, "b": 2};
		print m.len();
		print m.get("a");
		print m.has_key("c");
		m.insert("c", 3);
		print m.len();
		m.remove("a");
		print m.has_key("a");
	`)
	assert.Equal(t, "2\n1\nfalse\n3\nfalse", out)
}

func TestVecSortWithAndWithoutComparator(t *testing.T) {
	out := runCapture(t, `
		var v = #[3, 1, 2];
		v.sort();
		print v;
		var w = #[3, 1, 2];
		w.sort(|a, b| a > b);
		print w;
	`)
	assert.Equal(t, "[1, 2, 3]\n[3, 2, 1]", out)
}

func TestRuntimeErrorExitsWithBacktraceMessage(t *testing.T) {
	cfg := NewConfig()
	vm := NewVM(cfg, &MapModuleLoader{})
	_, err := vm.Run(`var v = #[]; v.pop();`, "<test>")
	require.Error(t, err)
	lerr, ok := err.(*LangError)
	require.True(t, ok)
	assert.Equal(t, IndexError, lerr.Kind)
	assert.Contains(t, lerr.Message, "[module \"<test>\", line 1] in script")
}

func TestMethodRequiresSelfParameter(t *testing.T) {
	out := runCapture(t, `
		class Greeter { fn greet(self, name) { print "hi " + name; } }
		Greeter().greet("world");
	`)
	assert.Equal(t, "hi world", out)
}

func TestStaticFieldLivesOnClassNotInstance(t *testing.T) {
	out := runCapture(t, `
		class Counter {
			#[static] var total = 0;
			fn bump(self) { Counter.total = Counter.total + 1; }
		}
		Counter().bump();
		Counter().bump();
		print Counter.total;
	`)
	assert.Equal(t, "2", out)
}

// Tuple hashing XOR-folds each element's hash (value.go's Hash), so
// it is order-independent even though tuple equality is not -- two
// tuples holding the same elements in different order hash equal but
// are not Equal, which a HashMap must not confuse with a genuine key
// match.
func TestTupleHashIsOrderIndependentButEqualityIsNot(t *testing.T) {
	cfg := NewConfig()
	vm := NewVM(cfg, &MapModuleLoader{})
	forward := NewTuple([]Value{NumberValue(1), NumberValue(2), NumberValue(3)}, vm.Classes.Tuple)
	reversed := NewTuple([]Value{NumberValue(3), NumberValue(2), NumberValue(1)}, vm.Classes.Tuple)

	assert.Equal(t, Hash(ObjectValue(forward)), Hash(ObjectValue(reversed)))
	assert.False(t, Equal(ObjectValue(forward), ObjectValue(reversed)))

	var want uint64
	for _, v := range forward.Items() {
		want ^= Hash(v)
	}
	assert.Equal(t, want, Hash(ObjectValue(forward)))

	out := runCapture(t, `
		var m = #{};
		m.insert(#(1, 2, 3), "forward");
		print m.get(#(1, 2, 3));
		print m.has_key(#(3, 2, 1));
	`)
	assert.Equal(t, "forward\nfalse", out)
}

// Exercises testable property 4: after a collection, every object
// reachable from a Root handle survives and every unrooted,
// otherwise-unreferenced object is swept.
func TestGCCollectsUnreachableKeepsRooted(t *testing.T) {
	cfg := NewConfig()
	vm := NewVM(cfg, &MapModuleLoader{})

	kept := NewVec(vm.Classes.Vec)
	vm.Heap.Track(kept)
	root := NewRoot(kept)
	defer root.Release()

	garbage := NewVec(vm.Classes.Vec)
	vm.Heap.Track(garbage)

	before := len(vm.Heap.objects)
	vm.Heap.Collect()
	after := len(vm.Heap.objects)
	assert.Less(t, after, before)

	survived := false
	for _, o := range vm.Heap.objects {
		if o == Obj(kept) {
			survived = true
		}
		assert.NotSame(t, garbage, o)
	}
	assert.True(t, survived, "rooted object must survive a collection")
}

// Exercises GCStress mode (collect on every allocation) together with
// block-scoped locals going out of reach each loop iteration. The two
// strings each pass interns stay rooted by the string table (interned
// strings are a GC root category), so what must not accumulate is
// every other object: those are freed rather than left to pile up.
func TestGCStressFreesLoopScopedGarbage(t *testing.T) {
	cfg := NewConfig()
	cfg.GCStress = true
	vm := NewVM(cfg, &MapModuleLoader{})
	_, err := vm.Run(`
		var i = 0;
		while (i < 200) {
			var s = i.to_string() + "-garbage";
			i = i + 1;
		}
	`, "<test>")
	require.NoError(t, err)

	stats := vm.Heap.Stats()
	assert.Greater(t, stats.Collections, 0)
	assert.Greater(t, stats.ObjectsFreed, 0)
	assert.Less(t, len(vm.Heap.objects)-len(vm.Strings.strs), 200)
}
