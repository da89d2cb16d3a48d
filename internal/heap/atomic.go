package heap

import "sync/atomic"

// Thin wrappers so AtomicCell's methods read as plain verbs
// (load/store/add/swap/cas) rather than sync/atomic's Int64-suffixed
// names.

func atomicLoad(p *int64) int64        { return atomic.LoadInt64(p) }
func atomicStore(p *int64, v int64)    { atomic.StoreInt64(p, v) }
func atomicAdd(p *int64, d int64) int64 { return atomic.AddInt64(p, d) }
func atomicSwap(p *int64, v int64) int64 { return atomic.SwapInt64(p, v) }
func atomicCAS(p *int64, old, new int64) bool {
	return atomic.CompareAndSwapInt64(p, old, new)
}
