package yl

// HeapInitBytesMax is the initial collection threshold, per §4.1.
const HeapInitBytesMax = 65536

// GCGrowthFactor is applied to bytesAllocated after each collection
// to compute the next threshold.
const GCGrowthFactor = 2

// RootSource is implemented by the host so the collector can find
// every live fiber/module/string-table/in-progress-class root without
// the Heap knowing about VM internals directly (§4.1, §9: "the set of
// GC roots is explicit").
type RootSource interface {
	GCRoots(mark func(Value))
}

// Heap owns every allocated object in a flat registry. Sweeping an
// object means dropping it from the registry (and therefore from any
// Go-reachable path through the heap), after which the host Go
// runtime's own allocator is free to reclaim the memory. This is the
// idiomatic way to host a tracing mark-sweep collector's semantics on
// top of a GC'd implementation language: Gc pointers are ordinary Go
// pointers, and it's the registry membership -- not Go reachability --
// that stands in for "alive" per the spec's invariants.
type Heap struct {
	objects        []Obj
	bytesAllocated int
	threshold      int
	stress         bool
	roots          RootSource
	stats          HeapStats
}

// HeapStats is surfaced to the host for diagnostics (the CLI's
// `-gc-stats` flag); it never influences collection decisions.
type HeapStats struct {
	Collections    int
	ObjectsFreed   int
	BytesAllocated int
	Threshold      int
}

func NewHeap(roots RootSource, stress bool) *Heap {
	return &Heap{
		threshold: HeapInitBytesMax,
		stress:    stress,
		roots:     roots,
	}
}

// sizeOf is a coarse per-object byte estimate used only to drive the
// collection threshold; it need not be exact.
func sizeOf(o Obj) int {
	switch v := o.(type) {
	case *ObjString:
		return 32 + len(v.s)
	case *ObjVec:
		return 32 + len(v.items)*24
	case *ObjTuple:
		return 32 + len(v.items)*24
	case *ObjHashMap:
		return 32 + v.m.len()*48
	default:
		return 48
	}
}

// Track registers a freshly allocated object with the heap, possibly
// triggering a collection first. NewClass, StringTable.Intern and
// RangeCache.Get call it themselves; objects from the other
// constructors are tracked by their callers, once, right after
// construction.
func (h *Heap) Track(o Obj) {
	h.maybeCollect()
	h.objects = append(h.objects, o)
	h.bytesAllocated += sizeOf(o)
}

func (h *Heap) maybeCollect() {
	if h.stress {
		h.Collect()
		return
	}
	if h.bytesAllocated >= h.threshold {
		h.Collect()
	}
}

// Root is an RAII-style handle keeping an object alive regardless of
// graph reachability. Retain/Release adjust the object's root count;
// callers must Release exactly once per Retain (the Go GC doesn't
// enforce this, but failing to do so leaks the object in our heap
// registry forever).
type Root struct {
	obj Obj
}

func NewRoot(o Obj) Root {
	r := Root{obj: o}
	r.Retain()
	return r
}

func (r Root) Retain() {
	if r.obj != nil {
		r.obj.objHeader().rootCount++
	}
}

func (r Root) Release() {
	if r.obj != nil {
		r.obj.objHeader().rootCount--
	}
}

func (r Root) Value() Value { return ObjectValue(r.obj) }
func (r Root) Obj() Obj     { return r.obj }

func (h *Heap) Stats() HeapStats {
	h.stats.BytesAllocated = h.bytesAllocated
	h.stats.Threshold = h.threshold
	return h.stats
}
