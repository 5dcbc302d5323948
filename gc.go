package yl

// Collect runs one full tri-color mark-sweep cycle per §4.1:
//
//  1. Mark roots: every object starts White; anything reachable
//     directly from a Root handle or from the host's root set becomes
//     Grey.
//  2. Trace: repeatedly pick a Grey object, blacken it (mark its
//     children Grey), until no Grey objects remain.
//  3. Sweep: free every object still White.
func (h *Heap) Collect() {
	grey := make([]Obj, 0, len(h.objects)/4+1)

	markRoot := func(o Obj) {
		if o == nil {
			return
		}
		hdr := o.objHeader()
		if hdr.color == colorWhite {
			hdr.color = colorGrey
			grey = append(grey, o)
		}
	}
	markValue := func(v Value) {
		if v.IsObject() {
			markRoot(v.AsObject())
		}
	}
	markClass := func(c *ObjClass) {
		if c != nil {
			markRoot(c)
		}
	}

	for _, o := range h.objects {
		o.objHeader().color = colorWhite
	}
	for _, o := range h.objects {
		if o.objHeader().rootCount > 0 {
			markRoot(o)
		}
	}
	if h.roots != nil {
		h.roots.GCRoots(markValue)
	}

	for len(grey) > 0 {
		o := grey[len(grey)-1]
		grey = grey[:len(grey)-1]
		hdr := o.objHeader()
		if hdr.color == colorBlack {
			continue
		}
		hdr.color = colorBlack
		markClass(o.class())
		o.trace(markValue)
	}

	kept := h.objects[:0]
	freed := 0
	freedBytes := 0
	for _, o := range h.objects {
		if o.objHeader().color == colorBlack {
			kept = append(kept, o)
		} else {
			freed++
			freedBytes += sizeOf(o)
		}
	}
	h.objects = kept
	h.bytesAllocated -= freedBytes
	if h.bytesAllocated < 0 {
		h.bytesAllocated = 0
	}
	h.threshold = h.bytesAllocated * GCGrowthFactor
	if h.threshold < HeapInitBytesMax {
		h.threshold = HeapInitBytesMax
	}
	h.stats.Collections++
	h.stats.ObjectsFreed += freed
}
