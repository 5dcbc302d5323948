package yl

// registerBuiltins wires every native method table and seeds vm.globals
// with the built-in classes and free functions a program can reference
// by name (`String.from(...)`, `Fiber.new(...)`, `print(...)`).
func (vm *VM) registerBuiltins() {
	vm.registerStringMethods()
	vm.registerVecMethods()
	vm.registerTupleMethods()
	vm.registerRangeMethods()
	vm.registerHashMapMethods()
	vm.registerObjectMethods()
	vm.registerFiberMethods()

	classes := map[string]*ObjClass{
		"Object":        vm.Classes.Object,
		"Type":          vm.Classes.Type,
		"Nil":           vm.Classes.NilClass,
		"Bool":          vm.Classes.Bool,
		"Num":           vm.Classes.Num,
		"Sentinel":      vm.Classes.Sentinel,
		"Func":          vm.Classes.Func,
		"BuiltIn":       vm.Classes.BuiltIn,
		"Method":        vm.Classes.Method,
		"BuiltInMethod": vm.Classes.BuiltInMethod,
		"String":        vm.Classes.String,
		"StringIter":    vm.Classes.StringIter,
		"Iter":          vm.Classes.Iter,
		"MapIter":       vm.Classes.MapIter,
		"FilterIter":    vm.Classes.FilterIter,
		"Tuple":         vm.Classes.Tuple,
		"TupleIter":     vm.Classes.TupleIter,
		"Vec":           vm.Classes.Vec,
		"VecIter":       vm.Classes.VecIter,
		"Range":         vm.Classes.Range,
		"RangeIter":     vm.Classes.RangeIter,
		"HashMap":       vm.Classes.HashMap,
		"Module":        vm.Classes.Module,
		"Fiber":         vm.Classes.Fiber,
	}

	// NewClassStore copies a superclass's Methods into each subclass at
	// construction time, but Object's own native methods (derives,
	// to_string) are only wired above, after every native class already
	// exists -- so backfill them into every class that descends from
	// Object, the same way a subsequent #[derive(...)] would have
	// picked them up had Object defined them first.
	for _, cls := range classes {
		if cls == vm.Classes.Object || cls == vm.Classes.Type {
			continue
		}
		for name, m := range vm.Classes.Object.Methods {
			if _, exists := cls.Methods[name]; !exists {
				cls.Methods[name] = m
			}
		}
	}

	for name, cls := range classes {
		vm.globals[name] = ObjectValue(cls)
	}
	vm.globals["sentinel"] = Sentinel

	vm.defineGlobal("print", -1, func(vm *VM, recv Value, args []Value) (Value, error) {
		for _, a := range args {
			vm.writeOut(vm.Display(a))
		}
		vm.writeOut("\n")
		return Nil, nil
	})
}

// defineGlobal installs a bare native function reachable by name
// without going through any class's method table (`print`, not
// `Foo.print`).
func (vm *VM) defineGlobal(name string, arity int, fn NativeFn) {
	n := &ObjNative{ObjHeader: ObjHeader{cls: vm.Classes.BuiltIn}, Name: name, Fn: fn, Arity: arity}
	vm.Heap.Track(n)
	vm.globals[name] = ObjectValue(n)
}

// writeOut sends program output through vm.Out when capturing (tests,
// embedding) and through vm.Stdout otherwise.
func (vm *VM) writeOut(s string) {
	if vm.Out != nil {
		vm.Out.WriteString(s)
		return
	}
	vm.Stdout(s)
}
