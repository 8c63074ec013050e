package output_storage

import (
	"errors"
	"sync"
)

var errBroadcasterStopped = errors.New("failed to subscribe: broadcaster is stopped")

// Broadcaster fans a stream of values out to subscribers. Delivery is lossy:
// a subscriber that falls behind only keeps the latest value, which is all the
// output storage needs to wake its readers.
type Broadcaster[T any] struct {
	messageReceiver chan T
	mu              sync.Mutex
	subscribers     map[chan T]struct{}
	stopped         bool
	stopOnce        sync.Once
	closing         bool
}

func RunNewBroadcaster[T any]() *Broadcaster[T] {
	broadcaster := &Broadcaster[T]{
		messageReceiver: make(chan T, 1),
		subscribers:     make(map[chan T]struct{}),
	}

	go broadcaster.start()

	return broadcaster
}

func (broadcaster *Broadcaster[T]) start() {
	for msg := range broadcaster.messageReceiver {
		broadcaster.mu.Lock()
		subscribers := make([]chan T, 0, len(broadcaster.subscribers))
		for s := range broadcaster.subscribers {
			subscribers = append(subscribers, s)
		}
		broadcaster.mu.Unlock()

		for _, s := range subscribers {
			offerLatest(s, msg)
		}
	}

	broadcaster.mu.Lock()
	for s := range broadcaster.subscribers {
		close(s)
	}
	broadcaster.subscribers = nil
	broadcaster.stopped = true
	broadcaster.mu.Unlock()
}

// offerLatest sends msg without blocking, dropping the oldest buffered value if needed.
func offerLatest[T any](ch chan T, msg T) {
	select {
	case ch <- msg:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- msg:
	default:
	}
}

// Stop closes every subscriber channel once pending messages are delivered.
// It is safe to call more than once.
func (broadcaster *Broadcaster[T]) Stop() {
	broadcaster.stopOnce.Do(func() {
		broadcaster.mu.Lock()
		broadcaster.closing = true
		broadcaster.mu.Unlock()
		close(broadcaster.messageReceiver)
	})
}

func (broadcaster *Broadcaster[T]) Subscribe() (chan T, error) {
	// Use a buffer of 1 so we can drop stale notifications without blocking.
	ch := make(chan T, 1)
	broadcaster.mu.Lock()
	defer broadcaster.mu.Unlock()
	if broadcaster.stopped || broadcaster.closing {
		return nil, errBroadcasterStopped
	}
	broadcaster.subscribers[ch] = struct{}{}
	return ch, nil
}

func (broadcaster *Broadcaster[T]) Unsubscribe(subscriberSender chan T) {
	broadcaster.mu.Lock()
	defer broadcaster.mu.Unlock()
	if _, ok := broadcaster.subscribers[subscriberSender]; !ok {
		return
	}
	delete(broadcaster.subscribers, subscriberSender)
	close(subscriberSender)
}

// Publish is a no-op after Stop.
func (broadcaster *Broadcaster[T]) Publish(msg T) {
	broadcaster.mu.Lock()
	defer broadcaster.mu.Unlock()
	if broadcaster.closing {
		return
	}
	offerLatest(broadcaster.messageReceiver, msg)
}
