package yl

// registerHashMapMethods wires HashMap (§4.8). Unhashable keys raise
// ValueError rather than silently coercing or panicking.
func (vm *VM) registerHashMapMethods() {
	cls := vm.Classes.HashMap

	checkKey := func(k Value) error {
		if !Hashable(k) {
			return NewError(ValueError, 0, "unhashable key")
		}
		return nil
	}

	vm.defineMethod(cls, "has_key", 1, func(vm *VM, recv Value, args []Value) (Value, error) {
		if err := checkKey(args[0]); err != nil {
			return Nil, err
		}
		_, ok := recv.AsObject().(*ObjHashMap).Get(args[0])
		return BoolValue(ok), nil
	})
	vm.defineMethod(cls, "get", 1, func(vm *VM, recv Value, args []Value) (Value, error) {
		if err := checkKey(args[0]); err != nil {
			return Nil, err
		}
		v, ok := recv.AsObject().(*ObjHashMap).Get(args[0])
		if !ok {
			return Nil, nil
		}
		return v, nil
	})
	vm.defineMethod(cls, "insert", 2, func(vm *VM, recv Value, args []Value) (Value, error) {
		if err := checkKey(args[0]); err != nil {
			return Nil, err
		}
		m := recv.AsObject().(*ObjHashMap)
		prev, had := m.Get(args[0])
		m.Set(args[0], args[1])
		if !had {
			return Nil, nil
		}
		return prev, nil
	})
	vm.defineMethod(cls, "remove", 1, func(vm *VM, recv Value, args []Value) (Value, error) {
		if err := checkKey(args[0]); err != nil {
			return Nil, err
		}
		m := recv.AsObject().(*ObjHashMap)
		prev, had := m.Get(args[0])
		m.Delete(args[0])
		if !had {
			return Nil, nil
		}
		return prev, nil
	})
	vm.defineMethod(cls, "clear", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		m := recv.AsObject().(*ObjHashMap)
		var keys []Value
		m.Each(func(k, v Value) { keys = append(keys, k) })
		for _, k := range keys {
			m.Delete(k)
		}
		return Nil, nil
	})
	vm.defineMethod(cls, "len", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		return NumberValue(float64(recv.AsObject().(*ObjHashMap).Len())), nil
	})
	vm.defineMethod(cls, "keys", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		var items []Value
		recv.AsObject().(*ObjHashMap).Each(func(k, v Value) { items = append(items, k) })
		return vm.newVec(items), nil
	})
	vm.defineMethod(cls, "values", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		var items []Value
		recv.AsObject().(*ObjHashMap).Each(func(k, v Value) { items = append(items, v) })
		return vm.newVec(items), nil
	})
	vm.defineMethod(cls, "items", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		var items []Value
		recv.AsObject().(*ObjHashMap).Each(func(k, v Value) {
			t := NewTuple([]Value{k, v}, vm.Classes.Tuple)
			vm.Heap.Track(t)
			items = append(items, ObjectValue(t))
		})
		return vm.newVec(items), nil
	})
	vm.defineMethod(cls, "merge", 1, func(vm *VM, recv Value, args []Value) (Value, error) {
		other, ok := args[0].AsObject().(*ObjHashMap)
		if !ok {
			return Nil, NewError(TypeError, 0, "merge expects a HashMap")
		}
		result := NewHashMap(vm.Classes.HashMap)
		recv.AsObject().(*ObjHashMap).Each(func(k, v Value) { result.Set(k, v) })
		result.Merge(other)
		vm.Heap.Track(result)
		return ObjectValue(result), nil
	})
}
