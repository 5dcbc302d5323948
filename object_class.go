package yl

// ObjClass is both an ordinary class and, for the built-in metaclass
// hierarchy, a class's own class (§3, invariant 5). Each class owns
// its method table by value: single inheritance is implemented by
// copying the superclass's Methods into the subclass when it is
// created with a superclass (NewClass) or inherits one (OpInherit),
// so later edits to a superclass never retroactively change a
// subclass already defined (invariant 5).
type ObjClass struct {
	ObjHeader
	Name    string
	Super   *ObjClass
	Methods map[string]Value
	// Fields lists the instance field names declared in the class body,
	// in declaration order, used to give new instances a stable layout.
	Fields []string
	// FieldDefaults holds the compile-time default expression's value
	// for each entry in Fields, applied when a new instance is created.
	FieldDefaults map[string]Value
	// StaticFields holds `#[static] var` declarations: unlike Fields,
	// these live on the class itself, not on each instance, and are
	// read/written directly (ClassName.field), never copied per-instance.
	StaticFields map[string]Value
	Native       bool // true for built-in classes (Num, String, Vec, ...)
}

// NewClass builds a class together with its own private metaclass
// (rootMetaclass is the self-describing Type singleton, the metaclass
// of every metaclass). Giving each class a distinct metaclass object
// -- rather than sharing Type's method table across every class --
// is what lets two unrelated classes each define a same-named static
// method without colliding (§4.2).
func NewClass(heap *Heap, name string, super *ObjClass, rootMetaclass *ObjClass) *ObjClass {
	meta := &ObjClass{
		ObjHeader:    ObjHeader{cls: rootMetaclass},
		Name:         name + " metaclass",
		Methods:      make(map[string]Value),
		StaticFields: make(map[string]Value),
	}
	heap.Track(meta)
	c := &ObjClass{
		ObjHeader:     ObjHeader{cls: meta},
		Name:          name,
		Super:         super,
		Methods:       make(map[string]Value),
		FieldDefaults: make(map[string]Value),
		StaticFields:  make(map[string]Value),
	}
	if super != nil {
		for k, v := range super.Methods {
			c.Methods[k] = v
		}
		c.Fields = append(c.Fields, super.Fields...)
		for k, v := range super.FieldDefaults {
			c.FieldDefaults[k] = v
		}
		for k, v := range super.StaticFields {
			c.StaticFields[k] = v
		}
		for k, v := range super.class().Methods {
			meta.Methods[k] = v
		}
	}
	heap.Track(c)
	return c
}

func (o *ObjClass) trace(mark func(Value)) {
	if o.Super != nil {
		mark(ObjectValue(o.Super))
	}
	for _, v := range o.Methods {
		mark(v)
	}
	for _, v := range o.FieldDefaults {
		mark(v)
	}
	for _, v := range o.StaticFields {
		mark(v)
	}
}

// LookupMethod walks the (already-flattened) method table; single
// inheritance means there's no further walk to do at lookup time, only
// at definition time (invariant 5).
func (o *ObjClass) LookupMethod(name string) (Value, bool) {
	v, ok := o.Methods[name]
	return v, ok
}

// ObjInstance is a plain object's runtime state: its class plus a
// dynamically-growable field map (the spec allows assigning new fields
// outside the declared set, so this is not a fixed-layout struct).
type ObjInstance struct {
	ObjHeader
	Fields map[string]Value
}

func NewInstance(cls *ObjClass) *ObjInstance {
	return &ObjInstance{ObjHeader: ObjHeader{cls: cls}, Fields: make(map[string]Value)}
}

func (o *ObjInstance) trace(mark func(Value)) {
	for _, v := range o.Fields {
		mark(v)
	}
}
