package yl

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

// registerStringMethods wires the String/StringIter method tables
// (§4.8). Byte offsets, not rune offsets, are the unit for len/find/
// replace per the UTF-8-byte-sequence data model in §3.
func (vm *VM) registerStringMethods() {
	cls := vm.Classes.String

	vm.defineMethod(cls, "iter", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		s := recv.AsObject().(*ObjString)
		it := &ObjStringIter{ObjHeader: ObjHeader{cls: vm.Classes.StringIter}, str: s}
		vm.Heap.Track(it)
		return ObjectValue(it), nil
	})
	vm.defineMethod(cls, "len", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		return NumberValue(float64(len(recv.AsObject().(*ObjString).s))), nil
	})
	vm.defineMethod(cls, "count_chars", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		return NumberValue(float64(utf8.RuneCountInString(recv.AsObject().(*ObjString).s))), nil
	})
	vm.defineMethod(cls, "char_byte_index", 1, func(vm *VM, recv Value, args []Value) (Value, error) {
		s := recv.AsObject().(*ObjString).s
		n := int(args[0].AsNumber())
		i := 0
		for r := 0; r < n; r++ {
			if i >= len(s) {
				return Nil, NewError(IndexError, 0, "char index %d out of range", n)
			}
			_, size := utf8.DecodeRuneInString(s[i:])
			i += size
		}
		return NumberValue(float64(i)), nil
	})
	vm.defineMethod(cls, "find", 2, func(vm *VM, recv Value, args []Value) (Value, error) {
		s := recv.AsObject().(*ObjString).s
		sub, ok := args[0].AsObject().(*ObjString)
		if !ok {
			return Nil, NewError(TypeError, 0, "find expects a string")
		}
		start := int(args[1].AsNumber())
		if start < 0 || start > len(s) {
			return Nil, NewError(IndexError, 0, "start %d out of range", start)
		}
		idx := strings.Index(s[start:], sub.s)
		if idx < 0 {
			return Nil, nil
		}
		return NumberValue(float64(start + idx)), nil
	})
	vm.defineMethod(cls, "replace", 2, func(vm *VM, recv Value, args []Value) (Value, error) {
		s := recv.AsObject().(*ObjString).s
		old, ok1 := args[0].AsObject().(*ObjString)
		nw, ok2 := args[1].AsObject().(*ObjString)
		if !ok1 || !ok2 {
			return Nil, NewError(TypeError, 0, "replace expects two strings")
		}
		return vm.str(strings.ReplaceAll(s, old.s, nw.s)), nil
	})
	vm.defineMethod(cls, "split", 1, func(vm *VM, recv Value, args []Value) (Value, error) {
		s := recv.AsObject().(*ObjString).s
		delim, ok := args[0].AsObject().(*ObjString)
		if !ok {
			return Nil, NewError(TypeError, 0, "split expects a string")
		}
		parts := strings.Split(s, delim.s)
		items := make([]Value, len(parts))
		for i, p := range parts {
			items[i] = vm.str(p)
		}
		return vm.newVec(items), nil
	})
	vm.defineMethod(cls, "starts_with", 1, func(vm *VM, recv Value, args []Value) (Value, error) {
		s := recv.AsObject().(*ObjString).s
		pre, ok := args[0].AsObject().(*ObjString)
		if !ok {
			return Nil, NewError(TypeError, 0, "starts_with expects a string")
		}
		return BoolValue(strings.HasPrefix(s, pre.s)), nil
	})
	vm.defineMethod(cls, "ends_with", 1, func(vm *VM, recv Value, args []Value) (Value, error) {
		s := recv.AsObject().(*ObjString).s
		suf, ok := args[0].AsObject().(*ObjString)
		if !ok {
			return Nil, NewError(TypeError, 0, "ends_with expects a string")
		}
		return BoolValue(strings.HasSuffix(s, suf.s)), nil
	})
	vm.defineMethod(cls, "trim", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		return vm.str(strings.TrimSpace(recv.AsObject().(*ObjString).s)), nil
	})
	vm.defineMethod(cls, "to_upper", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		return vm.str(strings.ToUpper(recv.AsObject().(*ObjString).s)), nil
	})
	vm.defineMethod(cls, "to_lower", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		return vm.str(strings.ToLower(recv.AsObject().(*ObjString).s)), nil
	})
	vm.defineMethod(cls, "to_num", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		s := recv.AsObject().(*ObjString).s
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return Nil, NewError(ValueError, 0, "cannot parse %q as a number", s)
		}
		return NumberValue(n), nil
	})
	vm.defineMethod(cls, "to_bytes", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		s := recv.AsObject().(*ObjString).s
		items := make([]Value, len(s))
		for i := 0; i < len(s); i++ {
			items[i] = NumberValue(float64(s[i]))
		}
		return vm.newVec(items), nil
	})
	vm.defineMethod(cls, "to_code_points", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		s := recv.AsObject().(*ObjString).s
		var items []Value
		for _, r := range s {
			items = append(items, NumberValue(float64(r)))
		}
		return vm.newVec(items), nil
	})

	vm.defineStatic(cls, "from", 1, func(vm *VM, recv Value, args []Value) (Value, error) {
		return vm.str(vm.Display(args[0])), nil
	})
	vm.defineStatic(cls, "from_ascii", 1, func(vm *VM, recv Value, args []Value) (Value, error) {
		vec, ok := args[0].AsObject().(*ObjVec)
		if !ok {
			return Nil, NewError(TypeError, 0, "from_ascii expects a Vec")
		}
		b := make([]byte, len(vec.items))
		for i, v := range vec.items {
			if !v.IsNumber() {
				return Nil, NewError(TypeError, 0, "from_ascii expects a Vec of numbers")
			}
			b[i] = byte(int(v.AsNumber()))
		}
		return vm.str(string(b)), nil
	})
	vm.defineStatic(cls, "from_utf8", 1, func(vm *VM, recv Value, args []Value) (Value, error) {
		vec, ok := args[0].AsObject().(*ObjVec)
		if !ok {
			return Nil, NewError(TypeError, 0, "from_utf8 expects a Vec")
		}
		b := make([]byte, len(vec.items))
		for i, v := range vec.items {
			if !v.IsNumber() {
				return Nil, NewError(TypeError, 0, "from_utf8 expects a Vec of numbers")
			}
			b[i] = byte(int(v.AsNumber()))
		}
		if !utf8.Valid(b) {
			return Nil, NewError(ValueError, 0, "invalid UTF-8 byte sequence")
		}
		return vm.str(string(b)), nil
	})
	vm.defineStatic(cls, "from_code_points", 1, func(vm *VM, recv Value, args []Value) (Value, error) {
		vec, ok := args[0].AsObject().(*ObjVec)
		if !ok {
			return Nil, NewError(TypeError, 0, "from_code_points expects a Vec")
		}
		var b strings.Builder
		for _, v := range vec.items {
			if !v.IsNumber() {
				return Nil, NewError(TypeError, 0, "from_code_points expects a Vec of numbers")
			}
			b.WriteRune(rune(int(v.AsNumber())))
		}
		return vm.str(b.String()), nil
	})

	iterCls := vm.Classes.StringIter
	vm.defineMethod(iterCls, "next", 0, func(vm *VM, recv Value, args []Value) (Value, error) {
		it := recv.AsObject().(*ObjStringIter)
		if s, ok := it.Next(); ok {
			return vm.str(s), nil
		}
		return Sentinel, nil
	})
}
