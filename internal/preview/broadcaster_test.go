package preview

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeAndWrite(t *testing.T) {
	b := NewBroadcaster()

	var subs []<-chan []byte
	for i := 0; i < 100; i++ {
		subs = append(subs, b.Subscribe(1))
	}

	packet := []byte{0xc0, 0xff, 0xee}
	n, err := b.Write(packet)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	var wg sync.WaitGroup
	for _, s := range subs {
		wg.Add(1)
		go func(s <-chan []byte) {
			defer wg.Done()
			p, ok := <-s
			assert.True(t, ok)
			assert.True(t, bytes.Equal(packet, p))
		}(s)
	}
	wg.Wait()
}

func TestWriteDropsOldest(t *testing.T) {
	b := NewBroadcaster()
	s := b.Subscribe(2)

	for i := byte(0); i < 5; i++ {
		b.Write([]byte{i})
	}
	assert.Equal(t, []byte{3}, <-s)
	assert.Equal(t, []byte{4}, <-s)
}

func TestUnsubscribe(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe(10)

	require.NoError(t, b.Unsubscribe(ch))
	_, ok := <-ch
	assert.False(t, ok)
	assert.Equal(t, errNotFound, b.Unsubscribe(ch))
}

func TestClose(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe(1)
	require.NoError(t, b.Close())

	_, ok := <-ch
	assert.False(t, ok)
	_, err := b.Write([]byte{1})
	assert.Equal(t, errClosed, err)

	_, ok = <-b.Subscribe(1)
	assert.False(t, ok)
}
