package yl

import "math"

// ValueKind tags the variant held by a Value. Kept small and
// word-cheap per the data model: a Value is either an immediate
// (Nil/Bool/Number/Sentinel) or a reference into the heap.
type ValueKind uint8

const (
	KindNil ValueKind = iota
	KindBool
	KindNumber
	KindSentinel
	KindObject
)

// Value is a tagged union. num doubles as the bool storage (0/1) so
// the struct stays four words wide (tag, float64, interface) regardless
// of variant.
type Value struct {
	kind ValueKind
	num  float64
	obj  Obj
}

var Nil = Value{kind: KindNil}
var True = Value{kind: KindBool, num: 1}
var False = Value{kind: KindBool, num: 0}

// Sentinel is the single distinguished end-of-iteration marker. User
// code can't construct it directly except via the `sentinel` builtin.
var Sentinel = Value{kind: KindSentinel}

func BoolValue(b bool) Value {
	if b {
		return True
	}
	return False
}

func NumberValue(n float64) Value { return Value{kind: KindNumber, num: n} }

func ObjectValue(o Obj) Value {
	if o == nil {
		return Nil
	}
	return Value{kind: KindObject, obj: o}
}

func (v Value) IsNil() bool      { return v.kind == KindNil }
func (v Value) IsBool() bool     { return v.kind == KindBool }
func (v Value) IsNumber() bool   { return v.kind == KindNumber }
func (v Value) IsSentinel() bool { return v.kind == KindSentinel }
func (v Value) IsObject() bool   { return v.kind == KindObject }

func (v Value) AsBool() bool     { return v.num != 0 }
func (v Value) AsNumber() float64 { return v.num }
func (v Value) AsObject() Obj    { return v.obj }

// Truthy mirrors the reference runtime: everything is truthy except
// nil and false.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindNil:
		return false
	case KindBool:
		return v.num != 0
	default:
		return true
	}
}

func (v Value) Is(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNil, KindSentinel:
		return true
	case KindBool, KindNumber:
		return v.num == o.num
	default:
		return v.obj == o.obj
	}
}

// Equal implements §3's equality rule: structural for
// Boolean/Number/Nil/String/Tuple/Range, identity for everything else.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNil, KindSentinel:
		return true
	case KindBool, KindNumber:
		return a.num == b.num
	case KindObject:
		return equalObj(a.obj, b.obj)
	}
	return false
}

func equalObj(a, b Obj) bool {
	if a == b {
		return true
	}
	switch av := a.(type) {
	case *ObjString:
		bv, ok := b.(*ObjString)
		return ok && av.s == bv.s
	case *ObjTuple:
		bv, ok := b.(*ObjTuple)
		if !ok || len(av.items) != len(bv.items) {
			return false
		}
		for i := range av.items {
			if !Equal(av.items[i], bv.items[i]) {
				return false
			}
		}
		return true
	case *ObjRange:
		bv, ok := b.(*ObjRange)
		return ok && av.begin == bv.begin && av.end == bv.end && av.inclusive == bv.inclusive
	}
	return false
}

// Hashable reports whether a Value can be used as a HashMap key, per
// §3: Boolean, Number, String, Class, Nil, Range always are; Tuple iff
// every element is; Vec/Map/Instance/Fiber never are.
func Hashable(v Value) bool {
	switch v.kind {
	case KindNil, KindBool, KindNumber, KindSentinel:
		return true
	case KindObject:
		switch o := v.obj.(type) {
		case *ObjString, *ObjClass, *ObjRange:
			return true
		case *ObjTuple:
			for _, it := range o.items {
				if !Hashable(it) {
					return false
				}
			}
			return true
		}
	}
	return false
}

// Hash computes the hash of a hashable Value. Callers must check
// Hashable first; Hash panics on a non-hashable kind.
func Hash(v Value) uint64 {
	switch v.kind {
	case KindNil:
		return 0x9e3779b97f4a7c15
	case KindSentinel:
		return 0x9e3779b97f4a7c16
	case KindBool:
		if v.num != 0 {
			return 1
		}
		return 0
	case KindNumber:
		return math.Float64bits(v.num)
	case KindObject:
		switch o := v.obj.(type) {
		case *ObjString:
			return o.hash
		case *ObjClass:
			return uint64(uintptr(ptrOf(o)))
		case *ObjRange:
			return uint64(o.begin)*31 + uint64(o.end)
		case *ObjTuple:
			var h uint64
			for _, it := range o.items {
				h ^= Hash(it)
			}
			return h
		}
	}
	panic("yl: Hash called on unhashable value")
}

// ptrOf returns a stable integer identity for an Obj without leaking
// an actual unsafe.Pointer type into callers.
func ptrOf(o Obj) uintptr {
	return objIdentity(o)
}

// fnv1a64 implements the FNV-1a hash used to precompute String hashes
// at intern time (§3: "precomputed 64-bit hash (FNV-1a over bytes)").
func fnv1a64(data []byte) uint64 {
	const (
		offset uint64 = 14695981039346656037
		prime  uint64 = 1099511628211
	)
	h := offset
	for _, b := range data {
		h ^= uint64(b)
		h *= prime
	}
	return h
}
