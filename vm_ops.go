package yl

import "math"

// yieldSignal is the internal control-flow value a suspended fiber
// uses to unwind out of its own (possibly deeply recursive) dispatch
// loop back to whoever called Fiber.call. It satisfies error so it
// can ride the same return-value plumbing as a genuine LangError
// without being mistaken for one (raiseErr special-cases it).
type yieldSignal struct {
	value Value
}

func (y *yieldSignal) Error() string { return "fiber yield outside any active call" }

// binaryOp implements the arithmetic, comparison and bitwise opcodes
// that share a "pop two, push one" shape (§4.5). Add also concatenates
// two strings; every other operator requires two numbers.
func (vm *VM) binaryOp(op OpCode) error {
	b := vm.current.Pop()
	a := vm.current.Pop()

	if op == OpAdd && a.IsObject() && b.IsObject() {
		if as, ok := a.AsObject().(*ObjString); ok {
			if bs, ok := b.AsObject().(*ObjString); ok {
				vm.current.Push(ObjectValue(vm.Strings.Intern(as.s+bs.s, vm.Classes.String)))
				return nil
			}
		}
	}

	if !a.IsNumber() || !b.IsNumber() {
		return NewError(TypeError, 0, "%s requires two numbers", op)
	}
	x, y := a.AsNumber(), b.AsNumber()
	switch op {
	case OpGreater:
		vm.current.Push(BoolValue(x > y))
	case OpGreaterEqual:
		vm.current.Push(BoolValue(x >= y))
	case OpLess:
		vm.current.Push(BoolValue(x < y))
	case OpLessEqual:
		vm.current.Push(BoolValue(x <= y))
	case OpAdd:
		vm.current.Push(NumberValue(x + y))
	case OpSubtract:
		vm.current.Push(NumberValue(x - y))
	case OpMultiply:
		vm.current.Push(NumberValue(x * y))
	case OpDivide:
		if y == 0 {
			return NewError(ValueError, 0, "division by zero")
		}
		vm.current.Push(NumberValue(x / y))
	case OpModulo:
		if y == 0 {
			return NewError(ValueError, 0, "modulo by zero")
		}
		vm.current.Push(NumberValue(math.Mod(x, y)))
	case OpBitAnd:
		vm.current.Push(NumberValue(float64(int64(x) & int64(y))))
	case OpBitOr:
		vm.current.Push(NumberValue(float64(int64(x) | int64(y))))
	case OpBitXor:
		vm.current.Push(NumberValue(float64(int64(x) ^ int64(y))))
	case OpShiftLeft:
		vm.current.Push(NumberValue(float64(int64(x) << uint(int64(y)))))
	case OpShiftRight:
		vm.current.Push(NumberValue(float64(int64(x) >> uint(int64(y)))))
	default:
		return NewError(RuntimeError, 0, "unsupported binary operator %s", op)
	}
	return nil
}

// getProperty resolves `receiver.name`: an instance's own field wins
// over a method of the same name, otherwise the class (and its
// ancestors, via the already-flattened copy-on-definition method
// table) is consulted and the result bound to receiver (§3 invariant 5).
func (vm *VM) getProperty(receiver Value, name string) (Value, error) {
	if inst, ok := receiver.AsObject().(*ObjInstance); ok {
		if v, ok := inst.Fields[name]; ok {
			return v, nil
		}
	}
	if owner, ok := receiver.AsObject().(*ObjClass); ok {
		if v, ok := owner.StaticFields[name]; ok {
			return v, nil
		}
	}
	cls := vm.Classes.ClassOf(receiver)
	return vm.bindMethod(cls, name, receiver)
}

// callMethodSync runs a single method call to completion on a
// throwaway fiber, used by VM-native code (index operators, iteration,
// Vec.sort's comparator) that needs a result back immediately rather than
// threading through the dispatch loop's own continuation.
func (vm *VM) callMethodSync(method, receiver Value, args []Value) (Value, error) {
	switch fn := method.AsObject().(type) {
	case *ObjNative:
		return fn.Fn(vm, receiver, args)
	case *ObjClosure:
		fiber := NewFiber(fn, vm.Classes.Fiber)
		vm.Heap.Track(fiber)
		prev := vm.current
		vm.current = fiber
		fiber.status = FiberRunning
		fiber.Push(receiver)
		for _, a := range args {
			fiber.Push(a)
		}
		if err := vm.call(fn, len(args)); err != nil {
			vm.current = prev
			return Nil, err
		}
		result, err := vm.dispatch(0)
		fiber.status = FiberFinished
		vm.current = prev
		return result, err
	}
	return Nil, NewError(TypeError, 0, "value is not callable")
}

func (vm *VM) indexInt(index Value, length int) (int, error) {
	if !index.IsNumber() {
		return 0, NewError(TypeError, 0, "index must be a number")
	}
	i := int(index.AsNumber())
	if i < 0 {
		i += length
	}
	if i < 0 || i >= length {
		return 0, NewError(IndexError, 0, "index %d out of range (length %d)", int(index.AsNumber()), length)
	}
	return i, nil
}

// getIndex implements `receiver[index]`. Built-in collections have a
// direct native fast path; an instance falls back to a user-defined
// __getitem__ method, matching §6's "indexing desugars to a method
// call" rule for everything the VM doesn't special-case itself.
func (vm *VM) getIndex(receiver, index Value) (Value, error) {
	if !receiver.IsObject() {
		return Nil, NewError(TypeError, 0, "value does not support indexing")
	}
	switch o := receiver.AsObject().(type) {
	case *ObjVec:
		i, err := vm.indexInt(index, o.Len())
		if err != nil {
			return Nil, err
		}
		return o.At(i), nil
	case *ObjTuple:
		i, err := vm.indexInt(index, o.Len())
		if err != nil {
			return Nil, err
		}
		return o.At(i), nil
	case *ObjString:
		runes := []rune(o.s)
		i, err := vm.indexInt(index, len(runes))
		if err != nil {
			return Nil, err
		}
		return ObjectValue(vm.Strings.Intern(string(runes[i]), vm.Classes.String)), nil
	case *ObjHashMap:
		v, ok := o.Get(index)
		if !ok {
			return Nil, NewError(IndexError, 0, "key not found")
		}
		return v, nil
	case *ObjInstance:
		method, ok := o.class().LookupMethod("__getitem__")
		if !ok {
			return Nil, NewError(AttributeError, 0, "%s has no method \"__getitem__\"", o.class().Name)
		}
		return vm.callMethodSync(method, receiver, []Value{index})
	}
	return Nil, NewError(TypeError, 0, "value does not support indexing")
}

// setIndex implements `receiver[index] = value`.
func (vm *VM) setIndex(receiver, index, value Value) error {
	if !receiver.IsObject() {
		return NewError(TypeError, 0, "value does not support indexed assignment")
	}
	switch o := receiver.AsObject().(type) {
	case *ObjVec:
		i, err := vm.indexInt(index, o.Len())
		if err != nil {
			return err
		}
		o.Set(i, value)
		return nil
	case *ObjHashMap:
		if !Hashable(index) {
			return NewError(TypeError, 0, "unhashable key")
		}
		o.Set(index, value)
		return nil
	case *ObjInstance:
		method, ok := o.class().LookupMethod("__setitem__")
		if !ok {
			return NewError(AttributeError, 0, "%s has no method \"__setitem__\"", o.class().Name)
		}
		_, err := vm.callMethodSync(method, receiver, []Value{index, value})
		return err
	}
	return NewError(TypeError, 0, "value does not support indexed assignment")
}

// iterNext advances an iterator object one step, returning Sentinel
// once exhausted (§8 testable property 6). Built-in iterator objects
// are advanced directly; anything else must implement `next` as an
// ordinary method.
func (vm *VM) iterNext(iter Value) (Value, error) {
	if iter.IsObject() {
		switch it := iter.AsObject().(type) {
		case *ObjVecIter:
			if v, ok := it.Next(); ok {
				return v, nil
			}
			return Sentinel, nil
		case *ObjTupleIter:
			if v, ok := it.Next(); ok {
				return v, nil
			}
			return Sentinel, nil
		case *ObjStringIter:
			if s, ok := it.Next(); ok {
				return ObjectValue(vm.Strings.Intern(s, vm.Classes.String)), nil
			}
			return Sentinel, nil
		case *ObjRangeIter:
			if n, ok := it.Next(); ok {
				return NumberValue(n), nil
			}
			return Sentinel, nil
		}
	}
	cls := vm.Classes.ClassOf(iter)
	method, ok := cls.LookupMethod("next")
	if !ok {
		return Nil, NewError(AttributeError, 0, "%s is not iterable", cls.Name)
	}
	return vm.callMethodSync(method, iter, nil)
}

// startImport resolves and (on first import) compiles and runs a
// module, leaving its Module object on the stack (§4.7's
// StartImport/FinishImport pair). On first import the module body runs
// to completion right here, through a nested dispatch that stops when
// the module's frame returns; the following OpFinishImport then marks
// the module done.
func (vm *VM) startImport(path string) error {
	mod, source, needsRun, err := vm.Modules.StartImport(path, vm.Classes.Module)
	if err != nil {
		return NewError(ImportError, 0, "%s", err.Error())
	}
	if !needsRun {
		vm.current.Push(ObjectValue(mod))
		return nil
	}
	fn, cerr := Compile(source, path, vm.Classes, vm.Strings, vm.Heap)
	if cerr != nil {
		return NewError(ImportError, 0, "%s", cerr.Error())
	}
	closure := &ObjClosure{ObjHeader: ObjHeader{cls: vm.Classes.Func}, Fn: fn, Module: mod}
	vm.Heap.Track(closure)
	stopDepth := len(vm.current.frames)
	vm.current.Push(ObjectValue(closure))
	if err := vm.call(closure, 0); err != nil {
		vm.current.Pop()
		return err
	}
	if _, rerr := vm.dispatch(stopDepth); rerr != nil {
		return rerr
	}
	vm.Modules.FinishImport(mod)
	vm.current.Push(ObjectValue(mod))
	return nil
}

// callFiber resumes (or starts) fiber with args, recursing into
// dispatch on the VM's shared Go call stack -- fibers are cooperative,
// not OS threads, so "running" a fiber just means vm.current points
// at it while its own frames/stack take over the dispatch loop.
func (vm *VM) callFiber(fiber *ObjFiber, args []Value) (Value, error) {
	switch fiber.status {
	case FiberFinished:
		return Nil, NewError(RuntimeError, 0, "cannot call a finished fiber")
	case FiberRunning:
		return Nil, NewError(RuntimeError, 0, "fiber is already running")
	}
	starting := fiber.status == FiberReady

	caller := vm.current
	fiber.caller = caller
	vm.current = fiber
	fiber.status = FiberRunning

	var err error
	if starting {
		fiber.Push(ObjectValue(fiber.startClosure))
		for _, a := range args {
			fiber.Push(a)
		}
		err = vm.call(fiber.startClosure, len(args))
	} else {
		resume := Nil
		if len(args) > 0 {
			resume = args[0]
		}
		fiber.Push(resume)
	}

	var result Value
	if err == nil {
		result, err = vm.dispatch(0)
	}
	vm.current = caller

	if ys, ok := err.(*yieldSignal); ok {
		fiber.status = FiberSuspended
		return ys.value, nil
	}
	if err != nil {
		fiber.status = FiberFinished
		fiber.failed = true
		return Nil, err
	}
	fiber.status = FiberFinished
	fiber.resultOrError = result
	return result, nil
}
