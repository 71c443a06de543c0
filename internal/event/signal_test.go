package event

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignalFanOut(t *testing.T) {
	var s Signal[string, int]
	s.Emit("nobody", 0)

	var got []string
	a := s.Connect(func(sender string, v int) { got = append(got, "a") })
	s.Connect(func(sender string, v int) {
		assert.Equal(t, "src", sender)
		assert.Equal(t, 7, v)
		got = append(got, "b")
	})
	assert.Equal(t, 2, s.Len())

	s.Emit("src", 7)
	assert.Equal(t, []string{"a", "b"}, got)

	assert.True(t, s.Disconnect(a))
	assert.False(t, s.Disconnect(a))

	got = nil
	s.Emit("src", 7)
	assert.Equal(t, []string{"b"}, got)

	s.DisconnectAll()
	assert.Zero(t, s.Len())
}

func TestSignalDisconnectDuringEmit(t *testing.T) {
	var s Signal[int, int]
	var calls int
	var second Connection
	s.Connect(func(int, int) {
		calls++
		s.Disconnect(second)
	})
	second = s.Connect(func(int, int) { calls++ })

	// The emission in progress still sees the snapshot taken when it began.
	s.Emit(0, 0)
	assert.Equal(t, 2, calls)

	s.Emit(0, 0)
	assert.Equal(t, 3, calls)
}

func TestSignalConcurrentConnect(t *testing.T) {
	var s Signal[int, int]
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c := s.Connect(func(int, int) {})
				s.Emit(0, j)
				s.Disconnect(c)
			}
		}()
	}
	wg.Wait()
	assert.Zero(t, s.Len())
}
