//////////////////////////////////////////////////////////////////////////////
//
// Broadcast encoded frames from one writer to multiple subscribers.
//
// Each subscriber has its own channel (i.e. queue). When a writer
// broadcasts a byte slice, the byte slice is added to each subscriber's
// channel. Note that this is a shallow copy -- the data within the slice
// is not copied, so writers must not reuse it.
//
// Each subscriber may specify the maximum number of byte slices it
// wishes to buffer. Once this capacity is reached, the oldest byte slice
// is dropped for each new written byte slice.
//
// Copyright 2019 Lanikai Labs LLC. All rights reserved.
//
//////////////////////////////////////////////////////////////////////////////

package preview

import (
	"sync"

	"github.com/pkg/errors"
)

var (
	errNotFound = errors.New("preview: subscriber not found")
	errClosed   = errors.New("preview: broadcaster closed")
)

// Broadcaster implements io.WriteCloser, fanning writes out to subscribers.
type Broadcaster struct {
	mutex       sync.Mutex
	subscribers []chan []byte
	closed      bool
}

// NewBroadcaster instantiates a new one-to-many byte slice broadcaster
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{}
}

// Close the broadcaster. All subscriber channels are closed and later
// writes return an error.
func (b *Broadcaster) Close() error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for _, subscriber := range b.subscribers {
		close(subscriber)
	}
	b.subscribers = nil
	b.closed = true
	return nil
}

// Subscribe to broadcasts, buffering up to n byte slices for the subscriber.
// Subscribing to a closed broadcaster returns a closed channel.
func (b *Broadcaster) Subscribe(n int) <-chan []byte {
	if n < 1 {
		panic("malformed buffer size")
	}

	channel := make(chan []byte, n)
	b.mutex.Lock()
	defer b.mutex.Unlock()
	if b.closed {
		close(channel)
		return channel
	}
	b.subscribers = append(b.subscribers, channel)
	return channel
}

// Unsubscribe from broadcaster by providing the read-only channel returned
// by Subscribe().
func (b *Broadcaster) Unsubscribe(s <-chan []byte) error {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	for i, subscriber := range b.subscribers {
		if s == subscriber {
			// Remove subscriber from slice (order not preserved)
			close(subscriber)
			last := len(b.subscribers) - 1
			b.subscribers[i] = b.subscribers[last]
			b.subscribers = b.subscribers[:last]
			return nil
		}
	}
	return errNotFound
}

// Len returns the number of subscribers.
func (b *Broadcaster) Len() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return len(b.subscribers)
}

// Write buffer to subscribers
func (b *Broadcaster) Write(p []byte) (int, error) {
	b.mutex.Lock()
	defer b.mutex.Unlock()

	if b.closed {
		return 0, errClosed
	}
	for _, subscriber := range b.subscribers {
		for {
			select {
			case subscriber <- p:
			default:
				// Subscriber backlogged. Drop oldest byte slice and retry.
				select {
				case <-subscriber:
				default:
				}
				continue
			}
			break
		}
	}
	return len(p), nil
}
