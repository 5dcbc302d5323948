package yl

import "sort"

// registerVecMethods wires Vec/VecIter (§4.8). VEC_ELEMS_MAX isn't
// enforceable as a real bound on a Go slice-backed Vec (it's
// isize::MAX+1 in the original, far beyond anything reachable here),
// so push has no capacity check of its own beyond what Go's allocator
// would refuse anyway.
func (vm *VM) registerVecMethods() {
	cls := vm.Classes.Vec

	vm.defineMethod(cls, "push", 1, func(vm *VM, recv Value, args []Value) (Value, error) {
		recv.AsObject().(*ObjVec).Push(args[0])
		return recv, nil
	})
	vm.defineMethod(cls, "pop", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		v, ok := recv.AsObject().(*ObjVec).Pop()
		if !ok {
			return Nil, NewError(IndexError, 0, "pop from an empty Vec")
		}
		return v, nil
	})
	vm.defineMethod(cls, "len", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		return NumberValue(float64(recv.AsObject().(*ObjVec).Len())), nil
	})
	vm.defineMethod(cls, "clear", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		recv.AsObject().(*ObjVec).Clear()
		return Nil, nil
	})
	vm.defineMethod(cls, "contains", 1, func(vm *VM, recv Value, args []Value) (Value, error) {
		for _, it := range recv.AsObject().(*ObjVec).items {
			if Equal(it, args[0]) {
				return True, nil
			}
		}
		return False, nil
	})
	vm.defineMethod(cls, "iter", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		it := NewVecIter(recv.AsObject().(*ObjVec), vm.Classes.VecIter)
		vm.Heap.Track(it)
		return ObjectValue(it), nil
	})
	vm.defineMethod(cls, "sort", -1, func(vm *VM, recv Value, args []Value) (Value, error) {
		vec := recv.AsObject().(*ObjVec)
		var cmp Value
		hasCmp := len(args) > 0
		if hasCmp {
			cmp = args[0]
		}
		var sortErr error
		sort.SliceStable(vec.items, func(i, j int) bool {
			if sortErr != nil {
				return false
			}
			if hasCmp {
				result, err := vm.callSyncValue(cmp, []Value{vec.items[i], vec.items[j]})
				if err != nil {
					sortErr = err
					return false
				}
				return result.Truthy()
			}
			less, err := defaultLess(vec.items[i], vec.items[j])
			if err != nil {
				sortErr = err
				return false
			}
			return less
		})
		if sortErr != nil {
			return Nil, sortErr
		}
		return recv, nil
	})

	iterCls := vm.Classes.VecIter
	vm.defineMethod(iterCls, "next", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		it := recv.AsObject().(*ObjVecIter)
		if v, ok := it.Next(); ok {
			return v, nil
		}
		return Sentinel, nil
	})
}

// defaultLess implements the natural ordering used by Vec.sort() when
// no comparator is given: numeric for numbers, lexicographic for
// strings. Anything else is a TypeError, matching the rest of the
// runtime's "no implicit cross-type ordering" stance.
func defaultLess(a, b Value) (bool, error) {
	if a.IsNumber() && b.IsNumber() {
		return a.AsNumber() < b.AsNumber(), nil
	}
	as, aok := a.AsObject().(*ObjString)
	bs, bok := b.AsObject().(*ObjString)
	if a.IsObject() && b.IsObject() && aok && bok {
		return as.s < bs.s, nil
	}
	return false, NewError(TypeError, 0, "sort requires a comparator for non-numeric, non-string elements")
}

// registerTupleMethods wires Tuple/TupleIter (§4.8).
func (vm *VM) registerTupleMethods() {
	cls := vm.Classes.Tuple

	vm.defineMethod(cls, "len", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		return NumberValue(float64(recv.AsObject().(*ObjTuple).Len())), nil
	})
	vm.defineMethod(cls, "iter", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		it := NewTupleIter(recv.AsObject().(*ObjTuple), vm.Classes.TupleIter)
		vm.Heap.Track(it)
		return ObjectValue(it), nil
	})

	iterCls := vm.Classes.TupleIter
	vm.defineMethod(iterCls, "next", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		it := recv.AsObject().(*ObjTupleIter)
		if v, ok := it.Next(); ok {
			return v, nil
		}
		return Sentinel, nil
	})
}

// registerRangeMethods wires Range/RangeIter (§4.8).
func (vm *VM) registerRangeMethods() {
	cls := vm.Classes.Range

	vm.defineMethod(cls, "iter", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		it := NewRangeIter(recv.AsObject().(*ObjRange), vm.Classes.RangeIter)
		vm.Heap.Track(it)
		return ObjectValue(it), nil
	})

	iterCls := vm.Classes.RangeIter
	vm.defineMethod(iterCls, "next", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		it := recv.AsObject().(*ObjRangeIter)
		if n, ok := it.Next(); ok {
			return NumberValue(n), nil
		}
		return Sentinel, nil
	})
}
