package week_lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

var ErrLockCancelled = errors.New("week lock wait cancelled")

// Locker serializes read-modify-write sequences on the documents of one week.
// The storage has no per-key update, so two writers of the same week document
// would otherwise lose each other's changes. Different weeks never block each other.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*weekLock
}

type weekLock struct {
	sem  chan struct{}
	refs int
}

func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*weekLock)}
}

// WithWeekLock runs fn while holding the lock of (owner, weekId). Waiting for
// the lock stops when ctx is done. The lock is not reentrant.
func (l *Locker) WithWeekLock(ctx context.Context, owner string, weekId string, fn func(ctx context.Context) error) error {
	key := owner + "/" + weekId
	lock := l.acquireRef(key)
	defer l.releaseRef(key, lock)

	select {
	case lock.sem <- struct{}{}:
	case <-ctx.Done():
		return fmt.Errorf("%w: %s: %w", ErrLockCancelled, weekId, ctx.Err())
	}
	defer func() { <-lock.sem }()

	return fn(ctx)
}

func (l *Locker) acquireRef(key string) *weekLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &weekLock{sem: make(chan struct{}, 1)}
		l.locks[key] = lock
	}
	lock.refs++
	return lock
}

func (l *Locker) releaseRef(key string, lock *weekLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, key)
	}
}

// size is the number of weeks currently locked or waited on.
func (l *Locker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
