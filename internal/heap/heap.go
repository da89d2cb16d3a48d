// Package heap implements naml's reference-counted runtime heap. Go's
// garbage collector already reclaims the backing memory of every object
// this package allocates; Header and the Incref/Decref/destructor
// machinery exist because naml's own semantics are refcounted, not
// GC'd — a struct's fields are released the instant its count hits
// zero, synchronization primitives unlock deterministically, and
// "needs-clone" call sites (internal/typedast) depend on visible
// incref/decref pairs rather than on whenever the collector happens to
// run. This is a byte-header layout translated into Go fields instead
// of raw offsets: Go has no portable, idiomatic way to hand-lay-out a
// struct at fixed byte offsets without `unsafe`, so Header is a normal
// Go struct with an atomic refcount rather than a 16-byte packed blob.
package heap

import "sync/atomic"

// Tag distinguishes the kinds of heap object this package allocates.
type Tag uint32

const (
	TagString Tag = iota
	TagArray
	TagMap
	TagBytes
	TagStruct
	TagChannel
	TagMutex
	TagRwLock
	TagAtomicInt
	TagAtomicUint
	TagAtomicBool
	TagJSON
	TagException
)

// Flags are per-object bits; FlagUnsafeFast marks an object created under
// the "unsafe fast" mode where refcount ops may be
// non-atomic because the program is known single-threaded.
type Flags uint32

const FlagUnsafeFast Flags = 1 << 0

// unsafeMode is a process-wide switch consulted by every object
// constructor in this package, set once by the driver before a module
// runs (`unsafe_mode` option: "Use non-atomic refcount
// operations (single-threaded programs)"). Atomic so a program that
// never opts in pays only an uncontended load per allocation.
var unsafeMode int32

// SetUnsafeMode toggles whether subsequently allocated heap objects carry
// FlagUnsafeFast. Intended to be set once, before a module starts
// running; toggling it mid-run only affects objects allocated after the
// call.
func SetUnsafeMode(on bool) {
	v := int32(0)
	if on {
		v = 1
	}
	atomic.StoreInt32(&unsafeMode, v)
}

// defaultFlags returns the Flags every object constructor in this
// package passes to NewHeader.
func defaultFlags() Flags {
	if atomic.LoadInt32(&unsafeMode) != 0 {
		return FlagUnsafeFast
	}
	return 0
}

// Header is the fixed prefix every heap allocation carries: an
// atomically-refcounted object with a type tag and flags. Header is
// embedded by every concrete heap type in this package.
type Header struct {
	refcount int64
	Tag      Tag
	Flags    Flags
}

// NewHeader returns a Header with refcount 1, the convention every
// constructor in this package follows: an allocation starts owned by
// its creator.
func NewHeader(tag Tag, flags Flags) Header {
	return Header{refcount: 1, Tag: tag, Flags: flags}
}

// Refcount reads the current count; exported for tests only.
func (h *Header) Refcount() int64 {
	if h.Flags&FlagUnsafeFast != 0 {
		return h.refcount
	}
	return atomic.LoadInt64(&h.refcount)
}

// Incref atomically increments the header's refcount. A nil-receiver guard isn't needed: callers hold
// a Ref which is never a bare nil pointer to this type once constructed;
// nullable heap references are represented as Ref with a nil inner
// pointer and Incref/Decref on Ref handle that case.
func (h *Header) Incref() {
	if h.Flags&FlagUnsafeFast != 0 {
		h.refcount++
		return
	}
	atomic.AddInt64(&h.refcount, 1)
}

// decref decrements and reports whether the count transitioned to zero,
// at which point the caller must run the type-specific destructor.
func (h *Header) decref() bool {
	if h.Flags&FlagUnsafeFast != 0 {
		h.refcount--
		return h.refcount == 0
	}
	// Release ordering on the decrement; AddInt64 on amd64/arm64 already
	// provides the full barrier Go's memory model guarantees between
	// goroutines, so the acquire fence a freeing thread needs before it
	// reads the dying object's fields falls out of AddInt64's own
	// synchronization.
	return atomic.AddInt64(&h.refcount, -1) == 0
}

// Object is implemented by every heap-allocated value. Destroy runs the
// type-specific teardown once the refcount reaches zero; it must be
// idempotent-safe to call at most once, which Decref guarantees by only
// invoking it on the 1→0 transition.
type Object interface {
	Hdr() *Header
	Destroy()
}

// Ref is a nullable strong reference to a heap Object: a null Ref is a
// valid, inert value — Incref/Decref on it are no-ops.
type Ref struct {
	Obj Object
}

// Incref increments r's refcount if r is non-null.
func (r Ref) Incref() {
	if r.Obj != nil {
		r.Obj.Hdr().Incref()
	}
}

// Decref decrements r's refcount if r is non-null, running Destroy on the
// 1→0 transition.
func (r Ref) Decref() {
	if r.Obj == nil {
		return
	}
	if r.Obj.Hdr().decref() {
		r.Obj.Destroy()
	}
}

// IsNil reports whether r holds no object.
func (r Ref) IsNil() bool { return r.Obj == nil }
