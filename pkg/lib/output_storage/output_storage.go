package output_storage

import (
	"sync"
	"sync/atomic"
)

// node is an element of the append-only list. The head of the list is a
// sentinel so appends never special-case the empty list.
type node struct {
	data []byte
	next atomic.Pointer[node]
}

// OutputStorage accumulates the output of one process stream. It has a single
// writer (the pipe copier started by os/exec) and any number of concurrent
// readers: Bytes/String take a snapshot, Subscribe replays the backlog and
// then follows new chunks until Stop.
type OutputStorage struct {
	head *node // sentinel head, immutable
	tail *node // last element in the list (or sentinel if empty)

	firstWrite     chan struct{}
	firstWriteOnce sync.Once
	done           chan struct{}
	stopOnce       sync.Once

	broadcaster *Broadcaster[struct{}]
}

// RunNewOutputStorage creates a new, empty OutputStorage.
func RunNewOutputStorage() *OutputStorage {
	sentinel := &node{}
	return &OutputStorage{
		head:        sentinel,
		tail:        sentinel,
		firstWrite:  make(chan struct{}),
		done:        make(chan struct{}),
		broadcaster: RunNewBroadcaster[struct{}](),
	}
}

// Stop marks the stream as finished. Subscribers receive the remaining
// backlog and then see their channel closed.
func (s *OutputStorage) Stop() {
	if s == nil {
		return
	}
	s.stopOnce.Do(func() {
		close(s.done)
		s.broadcaster.Stop()
	})
}

// FirstWrite is closed when the first non-empty chunk is appended.
func (s *OutputStorage) FirstWrite() <-chan struct{} {
	return s.firstWrite
}

// Done is closed by Stop.
func (s *OutputStorage) Done() <-chan struct{} {
	return s.done
}

// Append adds data to the end of the list. The slice is stored as-is.
// Append must not be called concurrently with itself.
func (s *OutputStorage) Append(data []byte) {
	if s == nil || len(data) == 0 {
		return
	}

	newTail := &node{data: data}
	s.tail.next.Store(newTail)
	s.tail = newTail

	s.firstWriteOnce.Do(func() { close(s.firstWrite) })
	s.broadcaster.Publish(struct{}{})
}

// Subscribe returns a channel that delivers every chunk from the beginning
// of the stream, in order, and is closed after Stop once the backlog is drained.
func (s *OutputStorage) Subscribe(capacity int) <-chan []byte {
	ch := make(chan []byte, capacity)
	notifier, err := s.broadcaster.Subscribe()
	if err != nil {
		go s.drain(s.head, ch)
		return ch
	}

	go func() {
		prev := s.head
		for {
			if current := prev.next.Load(); current != nil {
				prev = current
				ch <- current.data
				continue
			}
			if _, ok := <-notifier; !ok {
				s.drain(prev, ch)
				return
			}
		}
	}()
	return ch
}

// drain sends every chunk after prev and closes ch.
func (s *OutputStorage) drain(prev *node, ch chan []byte) {
	for current := prev.next.Load(); current != nil; current = current.next.Load() {
		ch <- current.data
	}
	close(ch)
}

// ForEach iterates over all stored byte slices in insertion order.
// The iterator function receives each slice; if it returns false, iteration stops early.
func (s *OutputStorage) ForEach(iter func([]byte) bool) {
	if s == nil || iter == nil {
		return
	}
	for cur := s.head.next.Load(); cur != nil; cur = cur.next.Load() {
		if !iter(cur.data) {
			return
		}
	}
}

// Bytes concatenates all stored byte slices into a single slice.
func (s *OutputStorage) Bytes() []byte {
	total := 0
	s.ForEach(func(b []byte) bool {
		total += len(b)
		return true
	})
	out := make([]byte, 0, total)
	s.ForEach(func(b []byte) bool {
		out = append(out, b...)
		return true
	})
	return out
}

// String returns all stored byte slices concatenated into a single string.
func (s *OutputStorage) String() string {
	return string(s.Bytes())
}
