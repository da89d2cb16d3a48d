package heap

import "sync"

// StringObj is a refcounted, immutable byte string. Capacity collapses
// to len here since Go's string type is already immutable and
// capacity-free; a growable byte buffer would only matter for an
// in-place string-builder primitive, which naml has no syntax for.
type StringObj struct {
	Header
	Bytes string
}

// NewString allocates a refcount-1 string object.
func NewString(s string) *StringObj {
	h := NewHeader(TagString, defaultFlags())
	return &StringObj{Header: h, Bytes: s}
}

func (o *StringObj) Hdr() *Header { return &o.Header }
func (o *StringObj) Destroy()         {}

// ArrayObj is a refcounted, growable array of Refs-or-scalars. ElemIsRef
// distinguishes whether elements are themselves heap references (so
// Destroy must decref each) or unboxed scalars, avoiding a per-element
// type dispatch in the destructor's hot path.
type ArrayObj struct {
	Header
	ElemIsRef bool
	Refs      []Ref   // populated when ElemIsRef
	Scalars   []int64 // populated otherwise (ints/bools/floats bit-cast)
}

// NewArray allocates an empty refcount-1 array.
func NewArray(elemIsRef bool) *ArrayObj {
	return &ArrayObj{Header: NewHeader(TagArray, defaultFlags()), ElemIsRef: elemIsRef}
}

func (o *ArrayObj) Hdr() *Header { return &o.Header }

func (o *ArrayObj) Destroy() {
	if o.ElemIsRef {
		for _, r := range o.Refs {
			r.Decref()
		}
	}
}

// Len reports the array's current length.
func (o *ArrayObj) Len() int {
	if o.ElemIsRef {
		return len(o.Refs)
	}
	return len(o.Scalars)
}

// Push appends a scalar element, incref'ing if this array holds refs is
// the caller's responsibility (PushRef below) — scalars need no refcount
// bookkeeping.
func (o *ArrayObj) Push(v int64) { o.Scalars = append(o.Scalars, v) }

// PushRef appends a ref element, taking ownership of one strong
// reference (the caller must already have incref'd if it keeps its own
// copy).
func (o *ArrayObj) PushRef(r Ref) { o.Refs = append(o.Refs, r) }

// MapEntry is one open-addressed slot: {key, value, occupied_flag}.
type MapEntry struct {
	Key      interface{} // comparable Go value: string/int64/bool, or a *StringObj-derived key string
	Value    interface{} // either a Ref (if ValueIsRef) or a scalar int64/float64/bool
	Occupied bool
}

// MapObj is a refcounted hash map. Go's builtin map already gives us
// open addressing's amortized O(1) semantics without hand-rolling probe
// sequences, so entries live in a native map keyed by a comparable Go
// value; MapEntry above documents the conceptual slot shape // names even though the backing store is `map[interface{}]MapEntry`.
type MapObj struct {
	Header
	ValueIsRef bool
	entries    map[interface{}]MapEntry
}

// NewMap allocates an empty refcount-1 map.
func NewMap(valueIsRef bool) *MapObj {
	return &MapObj{Header: NewHeader(TagMap, defaultFlags()), ValueIsRef: valueIsRef, entries: make(map[interface{}]MapEntry)}
}

func (o *MapObj) Hdr() *Header { return &o.Header }

func (o *MapObj) Destroy() {
	if o.ValueIsRef {
		for _, e := range o.entries {
			if r, ok := e.Value.(Ref); ok {
				r.Decref()
			}
		}
	}
}

// Get returns (value, true) if key is present.
func (o *MapObj) Get(key interface{}) (interface{}, bool) {
	e, ok := o.entries[key]
	if !ok {
		return nil, false
	}
	return e.Value, true
}

// Set inserts or overwrites key's value, decref'ing any previous
// ref-typed value it displaces.
func (o *MapObj) Set(key, value interface{}) {
	if o.ValueIsRef {
		if prev, ok := o.entries[key]; ok {
			if r, ok := prev.Value.(Ref); ok {
				r.Decref()
			}
		}
	}
	o.entries[key] = MapEntry{Key: key, Value: value, Occupied: true}
}

// Delete removes key, decref'ing a ref-typed value, and reports whether
// it was present.
func (o *MapObj) Delete(key interface{}) bool {
	e, ok := o.entries[key]
	if !ok {
		return false
	}
	if o.ValueIsRef {
		if r, ok := e.Value.(Ref); ok {
			r.Decref()
		}
	}
	delete(o.entries, key)
	return true
}

// Len reports the map's entry count.
func (o *MapObj) Len() int { return len(o.entries) }

// Keys returns every occupied key; map.keys() makes no ordering guarantee,
// so callers get Go's randomized map iteration order.
func (o *MapObj) Keys() []interface{} {
	ks := make([]interface{}, 0, len(o.entries))
	for k := range o.entries {
		ks = append(ks, k)
	}
	return ks
}

// StructObj is a heap-allocated struct instance: header + type_id +
// field_count + field slots. FieldIsRef marks which slots are themselves
// heap references, driving Destroy's per-field decref and the per-struct
// decref codegen's layout decisions.
type StructObj struct {
	Header
	TypeID     uint32
	FieldNames []string
	Fields     []interface{} // Ref or scalar int64/float64/bool per slot
	FieldIsRef []bool

	// SelfField marks slots whose declared type is this same struct type
	// (a linked-list/tree "next"-style field). Destroy leaves these to the
	// iterative decref internal/codegen/release.go's releaseRef drives via
	// DecrefIterative, so a long self-referential chain never recurses
	// through Destroy itself.
	SelfField []bool
}

// NewStruct allocates a refcount-1 struct instance with fieldCount
// zero-valued slots. selfField may be nil when the type has no
// self-referential fields.
func NewStruct(typeID uint32, fieldNames []string, fieldIsRef []bool, selfField []bool) *StructObj {
	return &StructObj{
		Header:     NewHeader(TagStruct, defaultFlags()),
		TypeID:     typeID,
		FieldNames: fieldNames,
		Fields:     make([]interface{}, len(fieldNames)),
		FieldIsRef: fieldIsRef,
		SelfField:  selfField,
	}
}

func (o *StructObj) Hdr() *Header { return &o.Header }

// Destroy decrefs every ref-typed field except self-referential ones
//: a field whose type is
// this same struct type is instead torn down iteratively by whichever
// Ref released the last strong reference to this object, via
// DecrefIterative, to keep a long chain's teardown off the Go call
// stack. A struct with no self-referential fields (SelfField is nil or
// all-false) behaves exactly like the original direct-recursive form.
func (o *StructObj) Destroy() {
	for i, isRef := range o.FieldIsRef {
		if isRef && !(i < len(o.SelfField) && o.SelfField[i]) {
			if r, ok := o.Fields[i].(Ref); ok {
				r.Decref()
			}
		}
	}
}

// SetField sets field i to v, decref'ing any previous ref value it
// displaces.
func (o *StructObj) SetField(i int, v interface{}) {
	if o.FieldIsRef[i] {
		if prev, ok := o.Fields[i].(Ref); ok {
			prev.Decref()
		}
	}
	o.Fields[i] = v
}

// FieldIndex returns the slot index for name, or -1 if absent.
func (o *StructObj) FieldIndex(name string) int {
	for i, n := range o.FieldNames {
		if n == name {
			return i
		}
	}
	return -1
}

// ChannelObj is a bounded or unbounded FIFO channel.
// Both kinds are a slice queue (buf) guarded by mu, with cond waking
// blocked senders and receivers; no Go `chan` is used, since Go channels
// are fixed-capacity and "unbounded" needs its own queue.
type ChannelObj struct {
	Header
	mu        sync.Mutex
	cond      *sync.Cond
	buf       []interface{}
	capacity  int // 0 means unbounded
	closed    bool
	ElemIsRef bool
}

// NewChannel allocates a refcount-1 channel. capacity == 0 means
// unbounded.
func NewChannel(capacity int, elemIsRef bool) *ChannelObj {
	c := &ChannelObj{Header: NewHeader(TagChannel, defaultFlags()), capacity: capacity, ElemIsRef: elemIsRef}
	c.cond = sync.NewCond(&c.mu)
	return c
}

func (o *ChannelObj) Hdr() *Header { return &o.Header }

func (o *ChannelObj) Destroy() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.ElemIsRef {
		for _, v := range o.buf {
			if r, ok := v.(Ref); ok {
				r.Decref()
			}
		}
	}
}

// Send blocks while the channel is full (bounded) and reports false if
// the channel was already closed, since close makes further sends fail.
func (o *ChannelObj) Send(v interface{}) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for o.capacity > 0 && len(o.buf) >= o.capacity && !o.closed {
		o.cond.Wait()
	}
	if o.closed {
		return false
	}
	o.buf = append(o.buf, v)
	o.cond.Broadcast()
	return true
}

// Recv blocks while the channel is empty and open; returns (value,
// true) on success, (nil, false) once the channel is drained and closed.
func (o *ChannelObj) Recv() (interface{}, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for len(o.buf) == 0 && !o.closed {
		o.cond.Wait()
	}
	if len(o.buf) == 0 {
		return nil, false
	}
	v := o.buf[0]
	o.buf = o.buf[1:]
	o.cond.Broadcast()
	return v, true
}

// Close marks the channel closed and wakes every blocked sender/receiver.
func (o *ChannelObj) Close() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.closed = true
	o.cond.Broadcast()
}

// MutexObj backs the `locked` statement's non-read-write form.
type MutexObj struct {
	Header
	mu    sync.Mutex
	Value Ref // the guarded value, if the mutex wraps a heap value
}

func NewMutex() *MutexObj { return &MutexObj{Header: NewHeader(TagMutex, defaultFlags())} }

func (o *MutexObj) Hdr() *Header { return &o.Header }
func (o *MutexObj) Destroy()         { o.Value.Decref() }
func (o *MutexObj) Lock()            { o.mu.Lock() }
func (o *MutexObj) Unlock()          { o.mu.Unlock() }

// RwLockObj backs `locked` blocks opened for read vs. write; a write
// unlock writes the possibly-modified value back into Value.
type RwLockObj struct {
	Header
	mu    sync.RWMutex
	Value Ref
}

func NewRwLock() *RwLockObj { return &RwLockObj{Header: NewHeader(TagRwLock, defaultFlags())} }

func (o *RwLockObj) Hdr() *Header { return &o.Header }
func (o *RwLockObj) Destroy()         { o.Value.Decref() }
func (o *RwLockObj) RLock()           { o.mu.RLock() }
func (o *RwLockObj) RUnlock()         { o.mu.RUnlock() }
func (o *RwLockObj) Lock()            { o.mu.Lock() }
func (o *RwLockObj) Unlock()          { o.mu.Unlock() }

// AtomicCell backs AtomicInt/AtomicUint/AtomicBool: a heap-allocated
// cell with sequentially-consistent load/store/add/sub/cas/swap
//.
// Go's sync/atomic is already SC on every platform it supports, so no
// explicit memory-order parameter is threaded through.
type AtomicCell struct {
	Header
	v int64
}

func NewAtomicCell(tag Tag, initial int64) *AtomicCell {
	return &AtomicCell{Header: NewHeader(tag, defaultFlags()), v: initial}
}

func (o *AtomicCell) Hdr() *Header { return &o.Header }
func (o *AtomicCell) Destroy()         {}

func (o *AtomicCell) Load() int64  { return atomicLoad(&o.v) }
func (o *AtomicCell) Store(v int64) { atomicStore(&o.v, v) }
func (o *AtomicCell) Add(delta int64) int64 { return atomicAdd(&o.v, delta) }
func (o *AtomicCell) Sub(delta int64) int64 { return atomicAdd(&o.v, -delta) }
func (o *AtomicCell) Swap(new int64) int64  { return atomicSwap(&o.v, new) }
func (o *AtomicCell) CAS(old, new int64) bool { return atomicCAS(&o.v, old, new) }
