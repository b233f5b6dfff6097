package lock

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	m := NewKeyedMutex()

	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := m.Lock(context.Background(), "sale:1")
			if !assert.NoError(t, err) {
				return
			}
			n := inside.Add(1)
			for {
				cur := maxInside.Load()
				if n <= cur || maxInside.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
			unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Equal(t, 0, m.size())
}

func TestKeyedMutex_DistinctKeysDoNotBlock(t *testing.T) {
	m := NewKeyedMutex()

	unlockA, err := m.Lock(context.Background(), "plot:a")
	require.NoError(t, err)
	defer unlockA()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlockB, err := m.Lock(ctx, "plot:b")
	require.NoError(t, err)
	unlockB()
}

func TestKeyedMutex_ContextCancelReleasesPartialSet(t *testing.T) {
	m := NewKeyedMutex()

	unlockB, err := m.Lock(context.Background(), "b")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = m.Lock(ctx, "b", "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// "a" was taken first and must have been released
	unlockA, err := m.Lock(context.Background(), "a")
	require.NoError(t, err)
	unlockA()
	unlockB()
	assert.Equal(t, 0, m.size())
}

func TestKeyedMutex_OverlappingSetsDoNotDeadlock(t *testing.T) {
	m := NewKeyedMutex()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		keys := []string{"sale:1", "plot:1", "rsnumber:1"}
		if i%2 == 0 {
			keys = []string{"rsnumber:1", "sale:1", "plot:1"}
		}
		wg.Add(1)
		go func(keys []string) {
			defer wg.Done()
			unlock, err := m.Lock(ctx, keys...)
			if assert.NoError(t, err) {
				unlock()
			}
		}(keys)
	}
	wg.Wait()
	assert.Equal(t, 0, m.size())
}

func TestKeyedMutex_DuplicateKeysAndDoubleUnlock(t *testing.T) {
	m := NewKeyedMutex()

	unlock, err := m.Lock(context.Background(), "sale:1", "sale:1", "")
	require.NoError(t, err)
	unlock()
	unlock()

	assert.Equal(t, 0, m.size())
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, []string{"account:1", "sale:1"}, normalize([]string{"sale:1", "", "account:1", "sale:1"}))
	assert.Empty(t, normalize(nil))
}
