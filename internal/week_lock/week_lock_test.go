package week_lock

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocker_SerializesSameWeek(t *testing.T) {
	locker := NewLocker()
	counter := 0
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithWeekLock(context.Background(), "owner", "2024-03-04", func(ctx context.Context) error {
				// read-modify-write with a suspension point in between
				current := counter
				time.Sleep(time.Microsecond)
				counter = current + 1
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, counter)
	assert.Equal(t, 0, locker.size())
}

func TestLocker_DifferentWeeksDoNotBlock(t *testing.T) {
	locker := NewLocker()
	inside := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = locker.WithWeekLock(context.Background(), "owner", "2024-03-04", func(ctx context.Context) error {
			close(inside)
			<-release
			return nil
		})
	}()
	<-inside

	done := make(chan struct{})
	go func() {
		_ = locker.WithWeekLock(context.Background(), "owner", "2024-03-11", func(ctx context.Context) error {
			return nil
		})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock of another week blocked")
	}
	close(release)
}

func TestLocker_CancelledWait(t *testing.T) {
	locker := NewLocker()
	inside := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_ = locker.WithWeekLock(context.Background(), "owner", "w", func(ctx context.Context) error {
			close(inside)
			<-release
			return nil
		})
	}()
	<-inside

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	called := false
	err := locker.WithWeekLock(ctx, "owner", "w", func(ctx context.Context) error {
		called = true
		return nil
	})

	require.ErrorIs(t, err, ErrLockCancelled)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, called)
	close(release)
}
