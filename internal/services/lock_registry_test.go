package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lockCount(r *LockRegistry) int {
	n := 0
	r.locks.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

func TestLockRegistry_SameUserSameLock(t *testing.T) {
	registry := NewLockRegistry()

	assert.Same(t, registry.LockFor(1), registry.LockFor(1))
	assert.NotSame(t, registry.LockFor(1), registry.LockFor(2))
	assert.Equal(t, 2, lockCount(registry))
}

// TestLockRegistry_ConcurrentFirstDemand races many goroutines on the first
// LockFor call for one user; all of them must get the same lock.
func TestLockRegistry_ConcurrentFirstDemand(t *testing.T) {
	registry := NewLockRegistry()

	const goroutines = 64
	locks := make([]*UserLock, goroutines)
	start := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			locks[i] = registry.LockFor(99)
		}(i)
	}
	close(start)
	wg.Wait()

	for _, l := range locks {
		assert.Same(t, locks[0], l)
	}
	assert.Equal(t, 1, lockCount(registry))
}

func TestUserLock_MutualExclusion(t *testing.T) {
	lock := NewLockRegistry().LockFor(1)

	require.NoError(t, lock.Lock(context.Background()))
	assert.False(t, lock.sem.TryAcquire(1))

	lock.Unlock()
	assert.True(t, lock.sem.TryAcquire(1))
	lock.Unlock()
}

func TestUserLock_LockHonorsContext(t *testing.T) {
	lock := NewLockRegistry().LockFor(1)
	require.NoError(t, lock.Lock(context.Background()))
	defer lock.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := lock.Lock(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

// TestUserLock_FIFO queues waiters one by one behind a held lock and checks
// they are granted in arrival order.
func TestUserLock_FIFO(t *testing.T) {
	lock := NewLockRegistry().LockFor(1)
	require.NoError(t, lock.Lock(context.Background()))

	const waiters = 5
	var (
		mu    sync.Mutex
		order []int
		wg    sync.WaitGroup
	)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := lock.Lock(context.Background()); err != nil {
				return
			}
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			lock.Unlock()
		}(i)
		// let waiter i enqueue before i+1 arrives
		time.Sleep(20 * time.Millisecond)
	}

	lock.Unlock()
	wg.Wait()

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
}
