package yl

// registerObjectMethods wires the methods every value's ultimate base
// class carries (§4.8). User classes only pick these up if they
// explicitly `#[derive(Object)]` or derive a chain that ends there —
// this runtime does not implicitly root every class at Object, so a
// plain `class Foo { }` has no superclass at all (DESIGN.md).
func (vm *VM) registerObjectMethods() {
	cls := vm.Classes.Object

	vm.defineMethod(cls, "derives", 1, func(vm *VM, recv Value, args []Value) (Value, error) {
		target, ok := args[0].AsObject().(*ObjClass)
		if !ok {
			return Nil, NewError(TypeError, 0, "derives expects a class")
		}
		for c := vm.Classes.ClassOf(recv); c != nil; c = c.Super {
			if c == target {
				return True, nil
			}
		}
		return False, nil
	})
	vm.defineMethod(cls, "to_string", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		if inst, ok := recv.AsObject().(*ObjInstance); ok {
			return vm.str(sprintInstance(inst)), nil
		}
		return vm.str(vm.Display(recv)), nil
	})
}

func sprintInstance(inst *ObjInstance) string {
	return "<" + inst.class().Name + " instance>"
}
