package dispatch

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	owner *Thread
	n     int
	log   []string
}

func (c *counter) add(t *testing.T, who string) {
	assert.True(t, c.owner.IsCurrent(), "counter touched off its thread")
	c.n++
	c.log = append(c.log, who)
}

func TestBindRequiresRunningThread(t *testing.T) {
	_, err := Bind(NewThread("idle"), &counter{})
	assert.Equal(t, ErrNotRunning, err)

	_, err = Construct(NewThread("idle"), func() (*counter, error) { return &counter{}, nil })
	assert.Equal(t, ErrNotRunning, err)
}

func TestConstructRunsOnThread(t *testing.T) {
	th := startThread(t)

	var onThread bool
	d, err := Construct(th, func() (*counter, error) {
		onThread = th.IsCurrent()
		return &counter{owner: th}, nil
	})
	require.NoError(t, err)
	assert.True(t, onThread)
	assert.Same(t, th, d.Thread())

	_, err = Construct(th, func() (*counter, error) { return nil, errors.New("nope") })
	assert.EqualError(t, err, "nope")
}

func TestCallSameResultOnAndOffThread(t *testing.T) {
	th := startThread(t)
	d, err := Bind(th, &counter{owner: th, n: 41})
	require.NoError(t, err)

	remote, err := Call(d, func(c *counter) int { return c.n + 1 })
	require.NoError(t, err)

	var local int
	require.NoError(t, th.Send(func() {
		local, err = Call(d, func(c *counter) int { return c.n + 1 })
	}))
	require.NoError(t, err)

	assert.Equal(t, 42, remote)
	assert.Equal(t, remote, local)
}

func TestDispatcherSerializesConcurrentCallers(t *testing.T) {
	th := startThread(t)
	d, err := Bind(th, &counter{owner: th})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, who := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(who string) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				assert.NoError(t, Do(d, func(c *counter) { c.add(t, who) }))
			}
		}(who)
	}
	wg.Wait()

	n, err := Call(d, func(c *counter) int { return c.n })
	require.NoError(t, err)
	assert.Equal(t, 400, n)
}

func TestDispatcherClose(t *testing.T) {
	th := startThread(t)
	d, err := Bind(th, &counter{owner: th})
	require.NoError(t, err)

	var tornDownOnThread bool
	require.NoError(t, d.Close(func(c *counter) error {
		tornDownOnThread = th.IsCurrent()
		return nil
	}))
	assert.True(t, tornDownOnThread)

	_, err = Call(d, func(c *counter) int { return c.n })
	assert.Equal(t, ErrClosed, err)
	assert.Equal(t, ErrClosed, d.Close(nil))
}

func TestDispatcherCloseFailureKeepsObject(t *testing.T) {
	th := startThread(t)
	d, err := Bind(th, &counter{owner: th})
	require.NoError(t, err)

	busy := errors.New("busy")
	assert.Equal(t, busy, d.Close(func(*counter) error { return busy }))

	require.NoError(t, Do(d, func(c *counter) { c.n++ }))
	require.NoError(t, d.Close(nil))
}

func TestDispatcherPost(t *testing.T) {
	th := startThread(t)
	d, err := Bind(th, &counter{owner: th})
	require.NoError(t, err)

	done := make(chan int)
	require.NoError(t, Post(d, func(c *counter) { c.add(t, "post") }))
	require.NoError(t, Post(d, func(c *counter) { done <- c.n }))
	assert.Equal(t, 1, <-done)

	require.NoError(t, d.Close(nil))
	assert.Equal(t, ErrClosed, Post(d, func(c *counter) { c.n++ }))
}

func TestDispatcherAfterThreadStop(t *testing.T) {
	th := NewThread("short-lived")
	require.NoError(t, th.Start())
	d, err := Bind(th, &counter{owner: th})
	require.NoError(t, err)

	th.Stop()

	assert.Equal(t, ErrClosed, Do(d, func(c *counter) { c.n++ }))
}
