package yl

// rangeCacheSize is the LRU cache depth for interned Range objects
// (§3: ranges are cheap enough to intern like small integers in
// adjacent implementations, bounded so the cache can't grow without
// limit).
const rangeCacheSize = 8

// ObjRange is an immutable half-open (or, when Inclusive, closed)
// numeric interval.
type ObjRange struct {
	ObjHeader
	begin     float64
	end       float64
	inclusive bool
}

func (o *ObjRange) Begin() float64    { return o.begin }
func (o *ObjRange) End() float64      { return o.end }
func (o *ObjRange) Inclusive() bool   { return o.inclusive }

func (o *ObjRange) trace(mark func(Value)) {}

// RangeCache interns the last few distinct (begin, end, inclusive)
// Ranges built by the running program, least-recently-used eviction.
type RangeCache struct {
	heap    *Heap
	cls     *ObjClass
	entries []*ObjRange
}

func NewRangeCache(heap *Heap, cls *ObjClass) *RangeCache {
	return &RangeCache{heap: heap, cls: cls}
}

func (c *RangeCache) Get(begin, end float64, inclusive bool) *ObjRange {
	for i, r := range c.entries {
		if r.begin == begin && r.end == end && r.inclusive == inclusive {
			c.touch(i)
			return r
		}
	}
	r := &ObjRange{ObjHeader: ObjHeader{cls: c.cls}, begin: begin, end: end, inclusive: inclusive}
	c.heap.Track(r)
	c.entries = append(c.entries, r)
	if len(c.entries) > rangeCacheSize {
		c.entries = c.entries[1:]
	}
	return r
}

// touch moves the entry at i to the most-recently-used end.
func (c *RangeCache) touch(i int) {
	r := c.entries[i]
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	c.entries = append(c.entries, r)
}

// ObjRangeIter walks a Range in integer steps of sign(end-begin),
// honoring Inclusive, so a descending range like `5..1` counts down
// instead of never advancing (§4.8).
type ObjRangeIter struct {
	ObjHeader
	r    *ObjRange
	cur  float64
	step float64
	done bool
}

func NewRangeIter(r *ObjRange, cls *ObjClass) *ObjRangeIter {
	step := 1.0
	if r.end < r.begin {
		step = -1.0
	}
	return &ObjRangeIter{ObjHeader: ObjHeader{cls: cls}, r: r, cur: r.begin, step: step}
}

func (o *ObjRangeIter) trace(mark func(Value)) { mark(ObjectValue(o.r)) }

func (o *ObjRangeIter) Next() (float64, bool) {
	if o.done {
		return 0, false
	}
	if o.step > 0 {
		if o.r.inclusive {
			if o.cur > o.r.end {
				o.done = true
				return 0, false
			}
		} else if o.cur >= o.r.end {
			o.done = true
			return 0, false
		}
	} else {
		if o.r.inclusive {
			if o.cur < o.r.end {
				o.done = true
				return 0, false
			}
		} else if o.cur <= o.r.end {
			o.done = true
			return 0, false
		}
	}
	v := o.cur
	o.cur += o.step
	return v, true
}
