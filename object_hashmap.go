package yl

// hashMapBucket chains entries that hash-collide. Go's == on Value
// compares object pointers, while key equality here is the language's
// structural Equal (tuples, ranges), so Value is not used directly as
// a Go map key; entries are bucketed by the language's own Hash/Equal
// per value.go.
type hashMapBucket struct {
	key   Value
	val   Value
	next  *hashMapBucket
}

type hashMapStorage struct {
	buckets map[uint64]*hashMapBucket
	count   int
}

func newHashMapStorage() *hashMapStorage {
	return &hashMapStorage{buckets: make(map[uint64]*hashMapBucket)}
}

func (m *hashMapStorage) len() int { return m.count }

func (m *hashMapStorage) get(k Value) (Value, bool) {
	h := Hash(k)
	for b := m.buckets[h]; b != nil; b = b.next {
		if Equal(b.key, k) {
			return b.val, true
		}
	}
	return Nil, false
}

func (m *hashMapStorage) set(k, v Value) {
	h := Hash(k)
	for b := m.buckets[h]; b != nil; b = b.next {
		if Equal(b.key, k) {
			b.val = v
			return
		}
	}
	m.buckets[h] = &hashMapBucket{key: k, val: v, next: m.buckets[h]}
	m.count++
}

func (m *hashMapStorage) delete(k Value) bool {
	h := Hash(k)
	var prev *hashMapBucket
	for b := m.buckets[h]; b != nil; b = b.next {
		if Equal(b.key, k) {
			if prev == nil {
				if b.next == nil {
					delete(m.buckets, h)
				} else {
					m.buckets[h] = b.next
				}
			} else {
				prev.next = b.next
			}
			m.count--
			return true
		}
		prev = b
	}
	return false
}

func (m *hashMapStorage) each(fn func(k, v Value)) {
	for _, b := range m.buckets {
		for e := b; e != nil; e = e.next {
			fn(e.key, e.val)
		}
	}
}

// ObjHashMap is a mutable, insertion-order-agnostic key/value store
// (§3). Keys must satisfy Hashable (value.go).
type ObjHashMap struct {
	ObjHeader
	m *hashMapStorage
}

func NewHashMap(cls *ObjClass) *ObjHashMap {
	return &ObjHashMap{ObjHeader: ObjHeader{cls: cls}, m: newHashMapStorage()}
}

func (o *ObjHashMap) Len() int                  { return o.m.len() }
func (o *ObjHashMap) Get(k Value) (Value, bool) { return o.m.get(k) }
func (o *ObjHashMap) Set(k, v Value)            { o.m.set(k, v) }
func (o *ObjHashMap) Delete(k Value) bool       { return o.m.delete(k) }
func (o *ObjHashMap) Each(fn func(k, v Value))  { o.m.each(fn) }

// Merge copies every entry of other into o, overwriting on key
// collision (the supplemented HashMap.merge builtin).
func (o *ObjHashMap) Merge(other *ObjHashMap) {
	other.Each(func(k, v Value) { o.Set(k, v) })
}

func (o *ObjHashMap) trace(mark func(Value)) {
	o.m.each(func(k, v Value) {
		mark(k)
		mark(v)
	})
}
