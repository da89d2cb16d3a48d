package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/naml-lang/namlc/internal/exception"
	"github.com/stretchr/testify/require"
)

func TestSpawnClosureAndWaitAll(t *testing.T) {
	pool := NewPool(4)
	pool.Start()
	defer pool.Stop()

	var count int64
	const n = 50
	for i := 0; i < n; i++ {
		pool.SpawnClosure(func(data interface{}, exc *exception.State) {
			atomic.AddInt64(&count, 1)
		}, nil)
	}
	pool.WaitAll()

	require.EqualValues(t, n, atomic.LoadInt64(&count))
}

func TestWaitAllBlocksUntilTasksComplete(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	defer pool.Stop()

	var done int32
	pool.SpawnClosure(func(data interface{}, exc *exception.State) {
		time.Sleep(20 * time.Millisecond)
		atomic.StoreInt32(&done, 1)
	}, nil)
	pool.WaitAll()

	require.EqualValues(t, 1, atomic.LoadInt32(&done))
}

func TestTimersFireAfterDeadline(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	defer pool.Stop()
	timers := NewTimers(pool)
	defer timers.Stop()

	var fired int32
	timers.SetTimeout(10, func(data interface{}, exc *exception.State) {
		atomic.StoreInt32(&fired, 1)
	}, nil)

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&fired) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestTimersCancelPreventsFiring(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	defer pool.Stop()
	timers := NewTimers(pool)
	defer timers.Stop()

	var fired int32
	id := timers.SetTimeout(20, func(data interface{}, exc *exception.State) {
		atomic.StoreInt32(&fired, 1)
	}, nil)
	timers.CancelTimeout(id)

	time.Sleep(60 * time.Millisecond)
	require.EqualValues(t, 0, atomic.LoadInt32(&fired))
}
