package yl

// ClassStore holds every built-in class singleton (§3's "the built-in
// classes are themselves ordinary Class objects, seeded before any
// user code runs"). Iter is the shared base class of the concrete
// iterator classes; it defines no methods of its own (no map/filter),
// so each iterator class carries only the methods registered on it.
type ClassStore struct {
	Object     *ObjClass
	Type       *ObjClass // class of every metaclass, and of itself; each class's own class is its private metaclass
	NilClass   *ObjClass
	Bool       *ObjClass
	Num        *ObjClass
	Sentinel   *ObjClass
	Func       *ObjClass
	BuiltIn    *ObjClass
	Method     *ObjClass
	BuiltInMethod *ObjClass
	String     *ObjClass
	StringIter *ObjClass
	Iter       *ObjClass
	MapIter    *ObjClass
	FilterIter *ObjClass
	Tuple      *ObjClass
	TupleIter  *ObjClass
	Vec        *ObjClass
	VecIter    *ObjClass
	Range      *ObjClass
	RangeIter  *ObjClass
	HashMap    *ObjClass
	Module     *ObjClass
	Fiber      *ObjClass
}

// NewClassStore bootstraps the built-in class graph. Type is its own
// metaclass (class_of(Type) == Type), which is how the "classes are
// objects too" invariant terminates instead of recursing forever.
func NewClassStore(heap *Heap) *ClassStore {
	cs := &ClassStore{}

	cs.Type = &ObjClass{ObjHeader: ObjHeader{}, Name: "Type", Methods: make(map[string]Value), StaticFields: make(map[string]Value), Native: true}
	cs.Type.cls = cs.Type
	heap.Track(cs.Type)

	mk := func(name string, super *ObjClass) *ObjClass {
		c := NewClass(heap, name, super, cs.Type)
		c.Native = true
		return c
	}

	cs.Object = mk("Object", nil)
	cs.NilClass = mk("Nil", cs.Object)
	cs.Bool = mk("Bool", cs.Object)
	cs.Num = mk("Num", cs.Object)
	cs.Sentinel = mk("Sentinel", cs.Object)
	cs.Func = mk("Func", cs.Object)
	cs.BuiltIn = mk("BuiltIn", cs.Object)
	cs.Method = mk("Method", cs.Object)
	cs.BuiltInMethod = mk("BuiltInMethod", cs.Object)
	cs.String = mk("String", cs.Object)
	cs.Tuple = mk("Tuple", cs.Object)
	cs.Vec = mk("Vec", cs.Object)
	cs.Range = mk("Range", cs.Object)
	cs.HashMap = mk("HashMap", cs.Object)
	cs.Module = mk("Module", cs.Object)
	cs.Fiber = mk("Fiber", cs.Object)

	cs.Iter = mk("Iter", cs.Object)
	cs.MapIter = mk("MapIter", cs.Iter)
	cs.FilterIter = mk("FilterIter", cs.Iter)
	cs.StringIter = mk("StringIter", cs.Iter)
	cs.TupleIter = mk("TupleIter", cs.Iter)
	cs.VecIter = mk("VecIter", cs.Iter)
	cs.RangeIter = mk("RangeIter", cs.Iter)

	return cs
}

// GCRoots keeps every built-in class singleton alive regardless of
// user-program reachability, since the VM consults them (e.g.
// class_of dispatch, `is` checks against built-ins) even when no user
// value currently references them.
func (cs *ClassStore) GCRoots(mark func(Value)) {
	for _, c := range cs.all() {
		mark(ObjectValue(c))
	}
}

func (cs *ClassStore) all() []*ObjClass {
	return []*ObjClass{
		cs.Object, cs.Type, cs.NilClass, cs.Bool, cs.Num, cs.Sentinel,
		cs.Func, cs.BuiltIn, cs.Method, cs.BuiltInMethod, cs.String,
		cs.StringIter, cs.Iter, cs.MapIter, cs.FilterIter, cs.Tuple,
		cs.TupleIter, cs.Vec, cs.VecIter, cs.Range, cs.RangeIter,
		cs.HashMap, cs.Module, cs.Fiber,
	}
}

// ClassOf returns the runtime class of any Value, built-in or
// user-defined, per §3's class_of semantics.
func (cs *ClassStore) ClassOf(v Value) *ObjClass {
	switch {
	case v.IsNil():
		return cs.NilClass
	case v.IsBool():
		return cs.Bool
	case v.IsNumber():
		return cs.Num
	case v.IsSentinel():
		return cs.Sentinel
	case v.IsObject():
		// A class's own class is its private metaclass (see NewClass),
		// so the generic o.class() dispatch below is correct even when
		// o is itself an *ObjClass -- no special case needed.
		return v.AsObject().class()
	}
	return cs.Object
}
