package yl

import "reflect"

// gcColor is the tri-color mark used by the collector (§4.1).
type gcColor uint8

const (
	colorWhite gcColor = iota
	colorGrey
	colorBlack
)

// ObjHeader is embedded in every heap object. It carries the GC's
// color, the number of live Root handles keeping the object alive
// regardless of graph reachability, and the object's class.
type ObjHeader struct {
	cls       *ObjClass
	color     gcColor
	rootCount int32
}

// Obj is implemented by every heap object variant listed in §3. It is
// intentionally minimal: class() for class_of dispatch and trace()
// for the GC to discover an object's children.
type Obj interface {
	objHeader() *ObjHeader
	class() *ObjClass
	trace(mark func(Value))
}

func (h *ObjHeader) objHeader() *ObjHeader { return h }
func (h *ObjHeader) class() *ObjClass      { return h.cls }

// objIdentity returns a stable integer identity for an Obj, used for
// hashing Class values and for cycle-detection in Display.
func objIdentity(o Obj) uintptr {
	return reflect.ValueOf(o).Pointer()
}
