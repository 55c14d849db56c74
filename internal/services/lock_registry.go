package services

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// UserLock is a fair mutex: semaphore.Weighted hands the permit to waiters in
// FIFO order.
type UserLock struct {
	sem *semaphore.Weighted
}

func newUserLock() *UserLock {
	return &UserLock{sem: semaphore.NewWeighted(1)}
}

// Lock blocks until the lock is granted or ctx is done.
func (l *UserLock) Lock(ctx context.Context) error {
	return l.sem.Acquire(ctx, 1)
}

func (l *UserLock) Unlock() {
	l.sem.Release(1)
}

// LockRegistry hands out one lock per user. Locks are created on first demand
// and never evicted.
type LockRegistry struct {
	locks sync.Map // uint64 -> *UserLock
}

// NewLockRegistry yeni registry oluşturur
func NewLockRegistry() *LockRegistry {
	return &LockRegistry{}
}

// LockFor returns the user's lock, creating it if needed. Concurrent first
// calls for the same user get the same lock.
func (r *LockRegistry) LockFor(userID uint64) *UserLock {
	if l, ok := r.locks.Load(userID); ok {
		return l.(*UserLock)
	}
	l, _ := r.locks.LoadOrStore(userID, newUserLock())
	return l.(*UserLock)
}
