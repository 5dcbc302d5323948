package yl

import (
	"fmt"
	"math"
	"strings"
)

// VM owns the class store, string table, heap and module cache shared
// across every fiber, plus whichever fiber is currently running
// (§4.6: "fibers... own their stack and frames; the VM just tracks
// which one is running").
type VM struct {
	Classes *ClassStore
	Strings *StringTable
	Heap    *Heap
	Modules *ModuleCache
	Config  *Config

	rangeCache *RangeCache
	current    *ObjFiber
	globals map[string]Value
	Out     *strings.Builder // captures `print`; nil means write to stdout via Stdout

	Stdout func(string)
}

func NewVM(cfg *Config, loader ModuleLoader) *VM {
	vm := &VM{Config: cfg, globals: make(map[string]Value)}
	// Stress mode is switched on only once every root source exists, so
	// bootstrap allocations never collect against a half-built VM.
	vm.Heap = NewHeap(vm, false)
	vm.Classes = NewClassStore(vm.Heap)
	vm.Strings = NewStringTable(vm.Heap)
	vm.Modules = NewModuleCache(loader)
	vm.rangeCache = NewRangeCache(vm.Heap, vm.Classes.Range)
	vm.Stdout = func(s string) { fmt.Print(s) }
	vm.registerBuiltins()
	vm.Heap.stress = cfg.GCStress
	return vm
}

// GCRoots implements RootSource: globals, every string, every class,
// every loaded module, and the whole call stack of the running fiber
// (which itself roots its caller chain, §4.1/§9).
func (vm *VM) GCRoots(mark func(Value)) {
	for _, v := range vm.globals {
		mark(v)
	}
	vm.Strings.GCRoots(mark)
	vm.Classes.GCRoots(mark)
	vm.Modules.GCRoots(mark)
	if vm.current != nil {
		mark(ObjectValue(vm.current))
	}
}

// Run compiles and executes source as the top-level module at path.
func (vm *VM) Run(source, path string) (Value, error) {
	mainModule := NewModule(path, vm.Classes.Module)
	vm.Heap.Track(mainModule)
	fn, err := Compile(source, path, vm.Classes, vm.Strings, vm.Heap)
	if err != nil {
		return Nil, err
	}
	closure := &ObjClosure{ObjHeader: ObjHeader{cls: vm.Classes.Func}, Fn: fn, Module: mainModule}
	vm.Heap.Track(closure)
	fiber := NewFiber(closure, vm.Classes.Fiber)
	vm.Heap.Track(fiber)
	return vm.runFiber(fiber, closure, nil)
}

func (vm *VM) runFiber(fiber *ObjFiber, closure *ObjClosure, args []Value) (Value, error) {
	prev := vm.current
	vm.current = fiber
	fiber.status = FiberRunning
	fiber.Push(ObjectValue(closure))
	for _, a := range args {
		fiber.Push(a)
	}
	if err := vm.call(closure, len(args)); err != nil {
		vm.current = prev
		return Nil, err
	}
	result, err := vm.dispatch(0)
	fiber.status = FiberFinished
	vm.current = prev
	return result, err
}

func (vm *VM) frame() *CallFrame { return vm.current.CurrentFrame() }

// call sets up a new CallFrame for closure with argCount arguments
// already pushed onto the running fiber's stack (§4.6's calling
// convention: the callee and its arguments occupy a contiguous window
// that becomes the new frame's locals, slot 0 being the callee itself
// so methods can find `self` there).
func (vm *VM) call(closure *ObjClosure, argCount int) error {
	if len(vm.current.frames) >= FramesMax {
		return NewError(RuntimeError, 0, "stack overflow")
	}
	if argCount != closure.Fn.Arity {
		return NewError(TypeError, 0, "expected %d arguments but got %d", closure.Fn.Arity, argCount)
	}
	vm.current.frames = append(vm.current.frames, CallFrame{
		closure:   closure,
		stackBase: vm.current.stackTop - argCount - 1,
	})
	return nil
}

func (vm *VM) callValue(callee Value, argCount int) error {
	if callee.IsObject() {
		switch o := callee.AsObject().(type) {
		case *ObjClosure:
			return vm.call(o, argCount)
		case *ObjNative:
			return vm.callNative(o, Nil, argCount)
		case *ObjBoundMethod:
			vm.current.stack[vm.current.stackTop-argCount-1] = o.Receiver
			if nat, ok := o.Method.AsObject().(*ObjNative); ok {
				return vm.callNative(nat, o.Receiver, argCount)
			}
			return vm.callValue(o.Method, argCount)
		case *ObjClass:
			return vm.instantiate(o, argCount)
		}
	}
	return NewError(TypeError, 0, "value is not callable")
}

// callNative runs a native method synchronously. receiver is Nil for a
// bare function call (OpCall on a global native like `print`); for a
// method dispatched through invoke/bindMethod it is the actual object
// the method was looked up on, letting native method bodies recover
// `self` the same way a Go method would (§4.8's built-in method
// tables are plain NativeFn closures, not bytecode, so they need an
// explicit receiver parameter rather than a stack slot).
func (vm *VM) callNative(n *ObjNative, receiver Value, argCount int) error {
	if n.Arity >= 0 && argCount != n.Arity {
		return NewError(TypeError, 0, "expected %d arguments but got %d", n.Arity, argCount)
	}
	base := vm.current.stackTop - argCount
	args := vm.current.stack[base:vm.current.stackTop]
	result, err := n.Fn(vm, receiver, args)
	if ys, ok := err.(*yieldSignal); ok {
		vm.current.stackTop = base - 1
		return ys
	}
	if err != nil {
		return err
	}
	vm.current.stackTop = base - 1
	vm.current.Push(result)
	return nil
}

func (vm *VM) instantiate(cls *ObjClass, argCount int) error {
	inst := NewInstance(cls)
	vm.Heap.Track(inst)
	base := vm.current.stackTop - argCount - 1
	vm.current.stack[base] = ObjectValue(inst)
	for _, name := range cls.Fields {
		if def, ok := cls.FieldDefaults[name]; ok {
			inst.Fields[name] = def
		}
	}
	if ctor, ok := cls.LookupMethod("__init__"); ok {
		if closure, ok := ctor.AsObject().(*ObjClosure); ok {
			return vm.call(closure, argCount)
		}
		if nat, ok := ctor.AsObject().(*ObjNative); ok {
			return vm.callNative(nat, ObjectValue(inst), argCount)
		}
	} else if argCount != 0 {
		return NewError(TypeError, 0, "class %s has no constructor but got %d arguments", cls.Name, argCount)
	}
	vm.current.stackTop = base + 1
	return nil
}

func (vm *VM) invoke(name string, argCount int) error {
	receiver := vm.current.Peek(argCount)
	cls := vm.Classes.ClassOf(receiver)
	if inst, ok := receiver.AsObject().(*ObjInstance); ok {
		if field, ok := inst.Fields[name]; ok {
			vm.current.stack[vm.current.stackTop-argCount-1] = field
			return vm.callValue(field, argCount)
		}
	}
	method, ok := cls.LookupMethod(name)
	if !ok {
		return NewError(AttributeError, 0, "%s has no method %q", cls.Name, name)
	}
	if nat, ok := method.AsObject().(*ObjNative); ok {
		return vm.callNative(nat, receiver, argCount)
	}
	return vm.callValue(method, argCount)
}

func (vm *VM) bindMethod(cls *ObjClass, name string, receiver Value) (Value, error) {
	method, ok := cls.LookupMethod(name)
	if !ok {
		return Nil, NewError(AttributeError, 0, "%s has no method %q", cls.Name, name)
	}
	bound := &ObjBoundMethod{ObjHeader: ObjHeader{cls: vm.Classes.Method}, Receiver: receiver, Method: method}
	vm.Heap.Track(bound)
	return ObjectValue(bound), nil
}

// dispatch is the core fetch/decode/execute loop. Every opcode either
// falls through to advance ip by its own encoded width or explicitly
// sets frame.ip itself (jumps, calls, returns). stopDepth is the
// running fiber's frame count at the moment this dispatch call began;
// OpReturn treats popping back down to that depth as "done" instead of
// always waiting for the fiber's frames to empty completely, which is
// what lets startImport recurse into dispatch mid-loop on the fiber
// that is already running without swallowing its caller's remaining
// bytecode once the imported module itself returns.
func (vm *VM) dispatch(stopDepth int) (Value, error) {
	for {
		frame := vm.frame()
		chunk := frame.closure.Fn.Chunk
		op := OpCode(chunk.code[frame.ip])
		frame.ip++

		switch op {
		case OpConstant:
			idx := vm.readU16(frame)
			vm.current.Push(chunk.Constant(idx))

		case OpNil:
			vm.current.Push(Nil)
		case OpTrue:
			vm.current.Push(True)
		case OpFalse:
			vm.current.Push(False)
		case OpPop:
			vm.current.Pop()
		case OpDup:
			vm.current.Push(vm.current.Peek(0))

		case OpGetLocal:
			slot := vm.readByte(frame)
			vm.current.Push(vm.current.stack[frame.stackBase+int(slot)])
		case OpSetLocal:
			slot := vm.readByte(frame)
			vm.current.stack[frame.stackBase+int(slot)] = vm.current.Peek(0)

		case OpGetUpvalue:
			slot := vm.readByte(frame)
			vm.current.Push(frame.closure.Upvalues[slot].Get())
		case OpSetUpvalue:
			slot := vm.readByte(frame)
			frame.closure.Upvalues[slot].Set(vm.current.Peek(0))

		case OpGetGlobal:
			name := chunk.Constant(vm.readU16(frame)).AsObject().(*ObjString).s
			v, ok := frame.closure.Module.Globals[name]
			if !ok {
				v, ok = vm.globals[name]
			}
			if !ok {
				if err := vm.raise(NameError, 0, "undefined name %q", name); err != nil {
					return Nil, err
				}
				continue
			}
			vm.current.Push(v)
		case OpDefineGlobal:
			name := chunk.Constant(vm.readU16(frame)).AsObject().(*ObjString).s
			frame.closure.Module.Globals[name] = vm.current.Pop()
		case OpSetGlobal:
			name := chunk.Constant(vm.readU16(frame)).AsObject().(*ObjString).s
			if _, ok := frame.closure.Module.Globals[name]; ok {
				frame.closure.Module.Globals[name] = vm.current.Peek(0)
			} else {
				vm.globals[name] = vm.current.Peek(0)
			}

		case OpGetProperty:
			name := chunk.Constant(vm.readU16(frame)).AsObject().(*ObjString).s
			receiver := vm.current.Pop()
			v, err := vm.getProperty(receiver, name)
			if err != nil {
				if err2 := vm.raiseErr(err); err2 != nil {
					return Nil, err2
				}
				continue
			}
			vm.current.Push(v)
		case OpSetProperty:
			name := chunk.Constant(vm.readU16(frame)).AsObject().(*ObjString).s
			value := vm.current.Pop()
			receiver := vm.current.Pop()
			switch target := receiver.AsObject().(type) {
			case *ObjInstance:
				target.Fields[name] = value
			case *ObjClass:
				if _, ok := target.StaticFields[name]; !ok {
					if err := vm.raise(AttributeError, 0, "class %s has no static field %q", target.Name, name); err != nil {
						return Nil, err
					}
					continue
				}
				target.StaticFields[name] = value
			default:
				if err := vm.raise(TypeError, 0, "cannot set property on non-instance value"); err != nil {
					return Nil, err
				}
				continue
			}
			vm.current.Push(value)

		case OpGetSuper:
			name := chunk.Constant(vm.readU16(frame)).AsObject().(*ObjString).s
			super := vm.current.Pop().AsObject().(*ObjClass)
			receiver := vm.current.Pop()
			v, err := vm.bindMethod(super, name, receiver)
			if err != nil {
				if err2 := vm.raiseErr(err); err2 != nil {
					return Nil, err2
				}
				continue
			}
			vm.current.Push(v)

		case OpGetIndex:
			index := vm.current.Pop()
			receiver := vm.current.Pop()
			v, err := vm.getIndex(receiver, index)
			if err != nil {
				if err2 := vm.raiseErr(err); err2 != nil {
					return Nil, err2
				}
				continue
			}
			vm.current.Push(v)
		case OpSetIndex:
			value := vm.current.Pop()
			index := vm.current.Pop()
			receiver := vm.current.Pop()
			if err := vm.setIndex(receiver, index, value); err != nil {
				if err2 := vm.raiseErr(err); err2 != nil {
					return Nil, err2
				}
				continue
			}
			vm.current.Push(value)

		case OpEqual:
			b, a := vm.current.Pop(), vm.current.Pop()
			vm.current.Push(BoolValue(Equal(a, b)))
		case OpNotEqual:
			b, a := vm.current.Pop(), vm.current.Pop()
			vm.current.Push(BoolValue(!Equal(a, b)))

		case OpGreater, OpGreaterEqual, OpLess, OpLessEqual,
			OpAdd, OpSubtract, OpMultiply, OpDivide, OpModulo,
			OpBitAnd, OpBitOr, OpBitXor, OpShiftLeft, OpShiftRight:
			if err := vm.binaryOp(op); err != nil {
				if err2 := vm.raiseErr(err); err2 != nil {
					return Nil, err2
				}
				continue
			}

		case OpBitNot:
			v := vm.current.Pop()
			if !v.IsNumber() {
				if err := vm.raise(TypeError, 0, "'~' requires a number"); err != nil {
					return Nil, err
				}
				continue
			}
			vm.current.Push(NumberValue(float64(^int64(v.AsNumber()))))
		case OpNot:
			vm.current.Push(BoolValue(!vm.current.Pop().Truthy()))
		case OpNegate:
			v := vm.current.Pop()
			if !v.IsNumber() {
				if err := vm.raise(TypeError, 0, "unary '-' requires a number"); err != nil {
					return Nil, err
				}
				continue
			}
			vm.current.Push(NumberValue(-v.AsNumber()))

		case OpFormatString:
			n := int(vm.readByte(frame))
			vm.formatString(n)

		case OpBuildRange:
			inclusive := vm.readByte(frame) != 0
			end := vm.current.Pop()
			begin := vm.current.Pop()
			r := vm.rangeCache.Get(begin.AsNumber(), end.AsNumber(), inclusive)
			vm.current.Push(ObjectValue(r))

		case OpBuildVec:
			n := int(vm.readU16(frame))
			vec := NewVec(vm.Classes.Vec)
			base := vm.current.stackTop - n
			vec.items = append(vec.items, vm.current.stack[base:vm.current.stackTop]...)
			vm.current.stackTop = base
			vm.Heap.Track(vec)
			vm.current.Push(ObjectValue(vec))

		case OpBuildTuple:
			n := int(vm.readU16(frame))
			base := vm.current.stackTop - n
			items := append([]Value(nil), vm.current.stack[base:vm.current.stackTop]...)
			vm.current.stackTop = base
			t := NewTuple(items, vm.Classes.Tuple)
			vm.Heap.Track(t)
			vm.current.Push(ObjectValue(t))

		case OpBuildMap:
			n := int(vm.readU16(frame))
			m := NewHashMap(vm.Classes.HashMap)
			base := vm.current.stackTop - n*2
			for i := 0; i < n; i++ {
				k := vm.current.stack[base+i*2]
				v := vm.current.stack[base+i*2+1]
				m.Set(k, v)
			}
			vm.current.stackTop = base
			vm.Heap.Track(m)
			vm.current.Push(ObjectValue(m))

		case OpJump:
			offset := vm.readU16(frame)
			frame.ip += int(offset)
		case OpJumpIfFalse:
			offset := vm.readU16(frame)
			if !vm.current.Peek(0).Truthy() {
				frame.ip += int(offset)
			}
		case OpLoop:
			offset := vm.readU16(frame)
			frame.ip -= int(offset)

		case OpCall:
			argCount := int(vm.readByte(frame))
			callee := vm.current.Peek(argCount)
			if err := vm.callValue(callee, argCount); err != nil {
				if err2 := vm.raiseErr(err); err2 != nil {
					return Nil, err2
				}
			}
		case OpInvoke:
			name := chunk.Constant(vm.readU16(frame)).AsObject().(*ObjString).s
			argCount := int(vm.readByte(frame))
			if err := vm.invoke(name, argCount); err != nil {
				if err2 := vm.raiseErr(err); err2 != nil {
					return Nil, err2
				}
			}
		case OpSuperInvoke:
			name := chunk.Constant(vm.readU16(frame)).AsObject().(*ObjString).s
			argCount := int(vm.readByte(frame))
			super := vm.current.Pop().AsObject().(*ObjClass)
			method, ok := super.LookupMethod(name)
			if !ok {
				if err := vm.raise(AttributeError, 0, "%s has no method %q", super.Name, name); err != nil {
					return Nil, err
				}
				continue
			}
			if err := vm.callValue(method, argCount); err != nil {
				if err2 := vm.raiseErr(err); err2 != nil {
					return Nil, err2
				}
			}

		case OpClosure:
			fn := chunk.Constant(vm.readU16(frame)).AsObject().(*ObjFunction)
			closure := &ObjClosure{ObjHeader: ObjHeader{cls: vm.Classes.Func}, Fn: fn, Module: frame.closure.Module}
			for i := 0; i < fn.UpvalueCnt; i++ {
				isLocal := vm.readByte(frame) != 0
				index := vm.readByte(frame)
				if isLocal {
					closure.Upvalues = append(closure.Upvalues, vm.current.captureUpvalue(frame.stackBase+int(index)))
				} else {
					closure.Upvalues = append(closure.Upvalues, frame.closure.Upvalues[index])
				}
			}
			vm.Heap.Track(closure)
			vm.current.Push(ObjectValue(closure))
		case OpCloseUpvalue:
			vm.current.closeUpvaluesFrom(vm.current.stackTop - 1)
			vm.current.Pop()

		case OpReturn:
			result := vm.current.Pop()
			vm.current.closeUpvaluesFrom(frame.stackBase)
			done := len(vm.current.frames) == stopDepth+1
			vm.current.stackTop = frame.stackBase
			vm.current.frames = vm.current.frames[:len(vm.current.frames)-1]
			if done {
				return result, nil
			}
			vm.current.Push(result)

		case OpDeclareClass:
			name := chunk.Constant(vm.readU16(frame)).AsObject().(*ObjString).s
			cls := NewClass(vm.Heap, name, nil, vm.Classes.Type)
			vm.Heap.Track(cls)
			vm.current.Push(ObjectValue(cls))
		case OpDefineClass:
			// no-op marker: the class on the stack is already fully
			// populated by the Method/StaticMethod/Inherit opcodes that
			// ran between DeclareClass and here; kept as its own
			// opcode so disassembly mirrors the compiler's emission
			// structure 1:1.
		case OpInherit:
			super := vm.current.Peek(1).AsObject().(*ObjClass)
			sub := vm.current.Peek(0).AsObject().(*ObjClass)
			for k, v := range super.Methods {
				sub.Methods[k] = v
			}
			for k, v := range super.class().Methods {
				sub.class().Methods[k] = v
			}
			for k, v := range super.FieldDefaults {
				sub.FieldDefaults[k] = v
			}
			for k, v := range super.StaticFields {
				sub.StaticFields[k] = v
			}
			sub.Super = super
			sub.Fields = append(sub.Fields, super.Fields...)
		case OpMethod:
			name := chunk.Constant(vm.readU16(frame)).AsObject().(*ObjString).s
			method := vm.current.Pop()
			cls := vm.current.Peek(0).AsObject().(*ObjClass)
			cls.Methods[name] = method
		case OpStaticMethod:
			name := chunk.Constant(vm.readU16(frame)).AsObject().(*ObjString).s
			method := vm.current.Pop()
			cls := vm.current.Peek(0).AsObject().(*ObjClass)
			cls.class().Methods[name] = method
		case OpField:
			name := chunk.Constant(vm.readU16(frame)).AsObject().(*ObjString).s
			def := vm.current.Pop()
			cls := vm.current.Peek(0).AsObject().(*ObjClass)
			cls.Fields = append(cls.Fields, name)
			cls.FieldDefaults[name] = def
		case OpStaticField:
			name := chunk.Constant(vm.readU16(frame)).AsObject().(*ObjString).s
			init := vm.current.Pop()
			cls := vm.current.Peek(0).AsObject().(*ObjClass)
			cls.StaticFields[name] = init

		case OpGetClass:
			v := vm.current.Pop()
			vm.current.Push(ObjectValue(vm.Classes.ClassOf(v)))

		case OpIterNext:
			iter := vm.current.Pop()
			v, err := vm.iterNext(iter)
			if err != nil {
				if err2 := vm.raiseErr(err); err2 != nil {
					return Nil, err2
				}
				continue
			}
			vm.current.Push(v)

		case OpPushExcHandler:
			catchPC := vm.readU16(frame)
			afterPC := vm.readU16(frame)
			frame.pushHandler(int(catchPC), int(afterPC), vm.current.stackTop)
		case OpPopExcHandler:
			frame.popHandler()
		case OpThrow:
			val := vm.current.Pop()
			if err := vm.raiseErr(ThrownValue(val, 0)); err != nil {
				return Nil, err
			}
		case OpJumpFinally:
			addr := vm.readU16(frame)
			frame.pushFinallyReturn(frame.ip)
			frame.ip = int(addr)
		case OpFinallyReturn:
			if addr, ok := frame.popFinallyReturn(); ok {
				frame.ip = addr
			}

		case OpStartImport:
			path := chunk.Constant(vm.readU16(frame)).AsObject().(*ObjString).s
			if err := vm.startImport(path); err != nil {
				if err2 := vm.raiseErr(err); err2 != nil {
					return Nil, err2
				}
			}
		case OpFinishImport:
			mod := vm.current.Pop().AsObject().(*ObjModule)
			vm.Modules.FinishImport(mod)
			vm.current.Push(ObjectValue(mod))

		default:
			return Nil, NewError(RuntimeError, 0, "unknown opcode %d", op)
		}
	}
}

func (vm *VM) readByte(frame *CallFrame) byte {
	b := frame.closure.Fn.Chunk.code[frame.ip]
	frame.ip++
	return b
}

func (vm *VM) readU16(frame *CallFrame) uint16 {
	v := frame.closure.Fn.Chunk.ReadU16(frame.ip)
	frame.ip += 2
	return v
}

// raise turns a VM-detected error condition into either a catchable
// jump (if a handler is active somewhere on the call stack) or a hard
// Go error that unwinds out of dispatch entirely.
func (vm *VM) raise(kind ErrorKind, line int, format string, args ...interface{}) error {
	return vm.raiseErr(NewError(kind, line, format, args...))
}

// raiseErr implements §5's unwind: walk frames from innermost
// outward, and in each one look for a handler whose catch target is
// still valid (LIFO within the frame). The first one found becomes
// the new PC; stack and finallyReturns are truncated to match, since
// an exception unwind abandons any pending finally-return sites
// exactly like a normal frame pop would (this is how "a throw inside
// finally supersedes a pending return" falls out for free).
//
// A *yieldSignal is not a catchable exception -- it is the internal
// mechanism a suspended fiber uses to unwind back to whoever resumed
// it, so it passes straight through any try/catch in its way.
func (vm *VM) raiseErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(*yieldSignal); ok {
		return err
	}
	lerr, ok := err.(*LangError)
	if !ok {
		lerr = NewError(RuntimeError, 0, "%s", err.Error())
	}
	for i := len(vm.current.frames) - 1; i >= 0; i-- {
		f := &vm.current.frames[i]
		if h, ok := f.popHandler(); ok {
			vm.current.frames = vm.current.frames[:i+1]
			vm.current.closeUpvaluesFrom(h.stackDepth)
			vm.current.stackTop = h.stackDepth
			var excValue Value
			if lerr.HasValue {
				excValue = lerr.Value
			} else {
				excValue = vm.errorValue(lerr)
			}
			vm.current.Push(excValue)
			f.ip = h.catchPC
			f.finallyReturns = nil
			return nil
		}
	}
	for i := len(vm.current.frames) - 1; i >= 0; i-- {
		f := &vm.current.frames[i]
		fn := f.closure.Fn
		where := fn.Name + "()"
		if fn.Name == "script" {
			where = "script"
		}
		lerr.Message += fmt.Sprintf("\n[module %q, line %d] in %s", fn.ModulePath, fn.Chunk.Line(f.ip-1), where)
	}
	return lerr
}

// errorValue boxes a VM-raised LangError as a catchable value: an
// instance of Object (there are no per-kind error classes) whose
// `kind` and `message` fields hold the error's kind name and message.
func (vm *VM) errorValue(lerr *LangError) Value {
	cls := vm.Classes.Object
	inst := NewInstance(cls)
	vm.Heap.Track(inst)
	inst.Fields["kind"] = ObjectValue(vm.Strings.Intern(lerr.Kind.String(), vm.Classes.String))
	inst.Fields["message"] = ObjectValue(vm.Strings.Intern(lerr.Message, vm.Classes.String))
	return ObjectValue(inst)
}

func (vm *VM) formatString(n int) {
	base := vm.current.stackTop - n
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString(vm.Display(vm.current.stack[base+i]))
	}
	vm.current.stackTop = base
	vm.current.Push(ObjectValue(vm.Strings.Intern(b.String(), vm.Classes.String)))
}

// Display implements the default to_string conversion used by string
// interpolation and the `print` builtin.
func (vm *VM) Display(v Value) string {
	switch {
	case v.IsNil():
		return "nil"
	case v.IsSentinel():
		return "sentinel"
	case v.IsBool():
		if v.AsBool() {
			return "true"
		}
		return "false"
	case v.IsNumber():
		n := v.AsNumber()
		if n == math.Trunc(n) && !math.IsInf(n, 0) {
			return fmt.Sprintf("%d", int64(n))
		}
		return fmt.Sprintf("%g", n)
	case v.IsObject():
		switch o := v.AsObject().(type) {
		case *ObjString:
			return o.s
		case *ObjClass:
			return o.Name
		case *ObjInstance:
			if method, ok := o.class().LookupMethod("to_string"); ok {
				if closure, ok := method.AsObject().(*ObjClosure); ok {
					result, err := vm.callSync(closure, []Value{v})
					if err == nil {
						return vm.Display(result)
					}
				}
			}
			return fmt.Sprintf("<%s instance>", o.class().Name)
		case *ObjVec:
			parts := make([]string, len(o.items))
			for i, it := range o.items {
				parts[i] = vm.Display(it)
			}
			return "[" + strings.Join(parts, ", ") + "]"
		case *ObjTuple:
			parts := make([]string, len(o.items))
			for i, it := range o.items {
				parts[i] = vm.Display(it)
			}
			return "(" + strings.Join(parts, ", ") + ")"
		case *ObjRange:
			sep := ".."
			if o.inclusive {
				sep = "..="
			}
			return fmt.Sprintf("%g%s%g", o.begin, sep, o.end)
		case *ObjFunction:
			return fmt.Sprintf("<fn %s>", o.Name)
		case *ObjClosure:
			return fmt.Sprintf("<fn %s>", o.Fn.Name)
		case *ObjNative:
			return fmt.Sprintf("<native %s>", o.Name)
		case *ObjFiber:
			return "<fiber>"
		case *ObjModule:
			return fmt.Sprintf("<module %s>", o.Path)
		case *ObjHashMap:
			var parts []string
			o.Each(func(k, val Value) {
				parts = append(parts, vm.Display(k)+": "+vm.Display(val))
			})
			return "{" + strings.Join(parts, ", ") + "}"
		}
	}
	return "<value>"
}

// callSync invokes a closure on a throwaway one-shot call and returns
// its result without disturbing the currently dispatching fiber --
// used by Display's to_string fallback.
func (vm *VM) callSync(closure *ObjClosure, args []Value) (Value, error) {
	fiber := NewFiber(closure, vm.Classes.Fiber)
	vm.Heap.Track(fiber)
	return vm.runFiber(fiber, closure, args)
}
