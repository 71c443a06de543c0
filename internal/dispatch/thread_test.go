package dispatch

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func startThread(t *testing.T) *Thread {
	th := NewThread(t.Name())
	require.NoError(t, th.Start())
	t.Cleanup(th.Stop)
	return th
}

func TestSendBeforeStart(t *testing.T) {
	th := NewThread("idle")
	assert.Equal(t, ErrNotRunning, th.Send(func() {}))
	assert.Equal(t, ErrNotRunning, th.Post(func() {}))
}

func TestSendAfterStop(t *testing.T) {
	th := NewThread("stopped")
	require.NoError(t, th.Start())
	th.Stop()
	th.Stop()

	ran := false
	assert.Equal(t, ErrClosed, th.Send(func() { ran = true }))
	assert.False(t, ran)
	assert.Equal(t, ErrClosed, th.Start())
}

func TestSendRunsOnThread(t *testing.T) {
	th := startThread(t)

	assert.False(t, th.IsCurrent())

	var onThread bool
	require.NoError(t, th.Send(func() { onThread = th.IsCurrent() }))
	assert.True(t, onThread)
}

func TestSendFromThreadRunsInPlace(t *testing.T) {
	th := startThread(t)

	var order []int
	err := th.Send(func() {
		order = append(order, 1)
		// Would deadlock if this were queued behind the running item.
		require.NoError(t, th.Send(func() { order = append(order, 2) }))
		order = append(order, 3)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestPostRunsInOrder(t *testing.T) {
	th := startThread(t)

	var got []int
	for i := 0; i < 10; i++ {
		i := i
		require.NoError(t, th.Post(func() { got = append(got, i) }))
	}
	// Send is queued behind the posts.
	require.NoError(t, th.Send(func() {}))
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, got)
}

func TestStopAbandonsQueuedWork(t *testing.T) {
	th := NewThread("abandon")
	require.NoError(t, th.Start())

	release := make(chan struct{})
	blocked := make(chan struct{})
	require.NoError(t, th.Post(func() {
		close(blocked)
		<-release
	}))
	<-blocked

	result := make(chan error, 1)
	go func() {
		result <- th.Send(func() {})
	}()

	// Wait until the Send is queued behind the blocked item.
	require.Eventually(t, func() bool {
		th.mu.Lock()
		defer th.mu.Unlock()
		return len(th.queue) == 1
	}, time.Second, time.Millisecond)

	stopped := make(chan struct{})
	go func() {
		th.Stop()
		close(stopped)
	}()

	assert.Equal(t, ErrClosed, <-result)
	close(release)
	<-stopped
}

func TestSendPropagatesPanic(t *testing.T) {
	th := startThread(t)

	assert.PanicsWithValue(t, "boom", func() {
		_ = th.Send(func() { panic("boom") })
	})

	// The thread survives.
	assert.NoError(t, th.Send(func() {}))
}

func TestConcurrentSendsAreSerialized(t *testing.T) {
	th := startThread(t)

	const goroutines, calls = 8, 200
	var (
		inside    int
		maxInside int
		seen      = make(map[int][]int)
		wg        sync.WaitGroup
	)
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < calls; i++ {
				i := i
				assert.NoError(t, th.Send(func() {
					inside++
					if inside > maxInside {
						maxInside = inside
					}
					seen[g] = append(seen[g], i)
					inside--
				}))
			}
		}(g)
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside)
	for g := 0; g < goroutines; g++ {
		require.Len(t, seen[g], calls)
		for i, v := range seen[g] {
			assert.Equal(t, i, v, "goroutine %d out of order", g)
		}
	}
}
