package yl

// registerFiberMethods wires the Fiber class (§4.6, §4.8): static
// `new`/`yield`, instance `call`/`has_finished`. Fiber.new takes a
// closure directly rather than going through ordinary instantiation --
// ObjFiber isn't an ObjInstance, so `vm.instantiate` (which only knows
// how to build plain instances) never runs for it.
func (vm *VM) registerFiberMethods() {
	cls := vm.Classes.Fiber

	vm.defineStatic(cls, "new", 1, func(vm *VM, recv Value, args []Value) (Value, error) {
		closure, ok := args[0].AsObject().(*ObjClosure)
		if !ok {
			return Nil, NewError(TypeError, 0, "Fiber.new expects a closure")
		}
		if closure.Fn.Arity > 1 {
			return Nil, NewError(TypeError, 0, "fiber entry function must take at most one argument")
		}
		fiber := NewFiber(closure, cls)
		vm.Heap.Track(fiber)
		return ObjectValue(fiber), nil
	})

	// Fiber.yield is static (called as `Fiber.yield(v)`, not
	// `someFiber.yield(v)`) and suspends whichever fiber is currently
	// running by returning a *yieldSignal, which callNative/raiseErr
	// both special-case to unwind straight back to callFiber without
	// being treated as a catchable exception.
	vm.defineStatic(cls, "yield", -1, func(vm *VM, recv Value, args []Value) (Value, error) {
		if vm.current == nil || vm.current.caller == nil {
			return Nil, NewError(RuntimeError, 0, "cannot yield outside a running fiber")
		}
		v := Nil
		if len(args) > 0 {
			v = args[0]
		}
		return Nil, &yieldSignal{value: v}
	})

	vm.defineMethod(cls, "call", -1, func(vm *VM, recv Value, args []Value) (Value, error) {
		fiber, ok := recv.AsObject().(*ObjFiber)
		if !ok {
			return Nil, NewError(TypeError, 0, "call expects a Fiber receiver")
		}
		return vm.callFiber(fiber, args)
	})
	vm.defineMethod(cls, "has_finished", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		fiber, ok := recv.AsObject().(*ObjFiber)
		if !ok {
			return Nil, NewError(TypeError, 0, "has_finished expects a Fiber receiver")
		}
		return BoolValue(fiber.status == FiberFinished), nil
	})
}
