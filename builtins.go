package yl

// defineMethod installs a native instance method on cls, wrapped in an
// ObjNative carrying arity so callNative enforces it the same way it
// enforces a closure's declared arity. arity -1 means variadic (the
// native itself checks argument count and shape).
func (vm *VM) defineMethod(cls *ObjClass, name string, arity int, fn NativeFn) {
	n := &ObjNative{ObjHeader: ObjHeader{cls: vm.Classes.BuiltInMethod}, Name: name, Fn: fn, Arity: arity}
	vm.Heap.Track(n)
	cls.Methods[name] = ObjectValue(n)
}

// defineStatic installs a native method on cls's metaclass, reachable
// as e.g. `String.from(...)` (§4.8's "Static:" method lists).
func (vm *VM) defineStatic(cls *ObjClass, name string, arity int, fn NativeFn) {
	n := &ObjNative{ObjHeader: ObjHeader{cls: vm.Classes.BuiltIn}, Name: name, Fn: fn, Arity: arity}
	vm.Heap.Track(n)
	cls.class().Methods[name] = ObjectValue(n)
}

func (vm *VM) str(s string) Value {
	return ObjectValue(vm.Strings.Intern(s, vm.Classes.String))
}

func (vm *VM) newVec(items []Value) Value {
	v := NewVec(vm.Classes.Vec)
	v.items = append(v.items, items...)
	vm.Heap.Track(v)
	return ObjectValue(v)
}

// callSyncValue invokes any callable Value (closure, native, bound
// method) to completion and returns its result, used by native
// methods that themselves take a callback (e.g. Vec.sort's comparator).
// Slot 0 of the callee's frame is always reserved for a receiver that
// plain functions and lambdas simply never reference, so passing Nil
// here is correct for non-method callables.
func (vm *VM) callSyncValue(callee Value, args []Value) (Value, error) {
	if !callee.IsObject() {
		return Nil, NewError(TypeError, 0, "value is not callable")
	}
	if bm, ok := callee.AsObject().(*ObjBoundMethod); ok {
		return vm.callMethodSync(bm.Method, bm.Receiver, args)
	}
	return vm.callMethodSync(callee, Nil, args)
}
