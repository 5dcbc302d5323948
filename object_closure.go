package yl

// ObjUpvalue is two states in one cell (§3): Open while `location`
// points directly at a live fiber stack slot, Closed once `Close` has
// copied the slot's value into the cell's own storage and repointed
// `location` at itself. The transition is one-way.
type ObjUpvalue struct {
	ObjHeader
	location *Value
	closed   Value
	slot     int // stack index this upvalue watches while Open; used for dedup/closing
	fiber    *ObjFiber
}

func newOpenUpvalue(fiber *ObjFiber, slot int) *ObjUpvalue {
	u := &ObjUpvalue{slot: slot, fiber: fiber}
	u.location = &fiber.stack[slot]
	return u
}

func (u *ObjUpvalue) IsOpen() bool { return u.location != &u.closed }

func (u *ObjUpvalue) Get() Value  { return *u.location }
func (u *ObjUpvalue) Set(v Value) { *u.location = v }

// Close detaches the upvalue from the stack, copying the current
// value into its own storage (invariant 3).
func (u *ObjUpvalue) Close() {
	if !u.IsOpen() {
		return
	}
	u.closed = *u.location
	u.location = &u.closed
}

func (o *ObjUpvalue) trace(mark func(Value)) { mark(o.Get()) }

// ObjClosure pairs a compiled Function with its captured upvalues and
// the module it was defined in (used to resolve globals at runtime).
type ObjClosure struct {
	ObjHeader
	Fn       *ObjFunction
	Upvalues []*ObjUpvalue
	Module   *ObjModule
}

func (o *ObjClosure) trace(mark func(Value)) {
	mark(ObjectValue(o.Fn))
	mark(ObjectValue(o.Module))
	for _, u := range o.Upvalues {
		mark(ObjectValue(u))
	}
}

// ObjBoundMethod pairs a receiver with a method Value, which may hold
// either a Closure or a Native (§3's BoundMethod<T>).
type ObjBoundMethod struct {
	ObjHeader
	Receiver Value
	Method   Value
}

func (o *ObjBoundMethod) trace(mark func(Value)) {
	mark(o.Receiver)
	mark(o.Method)
}
