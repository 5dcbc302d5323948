package yl

import "unicode/utf8"

// ObjString is an immutable, interned UTF-8 byte sequence (§3).
// Interning guarantees pointer equality iff content equality
// (invariant 2), so equalObj/Equal can take the fast path first.
type ObjString struct {
	ObjHeader
	s    string
	hash uint64
}

func (o *ObjString) trace(mark func(Value)) {}

// StringTable interns strings process-wide (§3, §9: "global
// singletons... live inside the VM object", so this is owned by the
// VM, not an ambient package global).
type StringTable struct {
	heap *Heap
	strs map[string]*ObjString
}

func NewStringTable(heap *Heap) *StringTable {
	return &StringTable{heap: heap, strs: make(map[string]*ObjString)}
}

// Intern returns the canonical ObjString for s, allocating one the
// first time s is seen.
func (t *StringTable) Intern(s string, cls *ObjClass) *ObjString {
	if existing, ok := t.strs[s]; ok {
		return existing
	}
	str := &ObjString{ObjHeader: ObjHeader{cls: cls}, s: s, hash: fnv1a64([]byte(s))}
	t.strs[s] = str
	t.heap.Track(str)
	return str
}

// GCRoots marks every interned string as a root source (§3's
// lifecycle: "interned strings" is explicitly one of the GC root
// categories).
func (t *StringTable) GCRoots(mark func(Value)) {
	for _, s := range t.strs {
		mark(ObjectValue(s))
	}
}

// Sweep drops entries for strings the collector actually freed, so
// the table doesn't grow without bound across a long-running fiber.
// Because strings are always rooted while interned (GCRoots above),
// in practice this only matters if a caller removes the root-source
// wiring; kept for completeness of the interning contract.
func (t *StringTable) Sweep(isAlive func(Obj) bool) {
	for k, v := range t.strs {
		if !isAlive(v) {
			delete(t.strs, k)
		}
	}
}

// ObjStringIter yields char-boundary-aligned substrings of a String.
type ObjStringIter struct {
	ObjHeader
	str *ObjString
	pos int
}

func (o *ObjStringIter) trace(mark func(Value)) { mark(ObjectValue(o.str)) }

func (o *ObjStringIter) Next() (string, bool) {
	if o.pos >= len(o.str.s) {
		return "", false
	}
	_, size := utf8.DecodeRuneInString(o.str.s[o.pos:])
	chunk := o.str.s[o.pos : o.pos+size]
	o.pos += size
	return chunk, true
}
