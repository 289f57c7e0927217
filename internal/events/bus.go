// Package events is the process-wide change notification channel.
//
// A Bus outlives its subscribers. Each subscriber holds a Subscription and
// must Unsubscribe when its view is torn down; after that it receives
// nothing more. Publish never blocks: a subscriber that has not consumed
// the previous signal already has a refresh pending, so the new one is
// coalesced into it.
package events

import "sync"

const defaultBuffer = 1

// Bus is a typed broadcast channel.
type Bus[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   map[int]*Subscription[T]
	closed bool
}

// NewBus returns an empty bus.
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{subs: map[int]*Subscription[T]{}}
}

// Subscription is a handle tied to one subscriber's lifetime.
type Subscription[T any] struct {
	bus   *Bus[T]
	id    int
	ch    chan T
	match func(T) bool
	once  sync.Once
}

// C delivers published values. It is closed on Unsubscribe or bus Close.
func (s *Subscription[T]) C() <-chan T {
	return s.ch
}

// Unsubscribe detaches the handle. Safe to call more than once.
func (s *Subscription[T]) Unsubscribe() {
	if s == nil {
		return
	}
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if _, ok := s.bus.subs[s.id]; ok {
		delete(s.bus.subs, s.id)
	}
	s.close()
}

func (s *Subscription[T]) close() {
	s.once.Do(func() { close(s.ch) })
}

// Subscribe attaches a new subscriber receiving every value.
func (b *Bus[T]) Subscribe() *Subscription[T] {
	return b.SubscribeFunc(defaultBuffer, nil)
}

// SubscribeFunc attaches a subscriber that only receives values accepted
// by match (all values when nil), buffering up to buf pending values.
// Subscribing to a closed bus returns an already closed handle.
func (b *Bus[T]) SubscribeFunc(buf int, match func(T) bool) *Subscription[T] {
	if buf < 1 {
		buf = defaultBuffer
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	sub := &Subscription[T]{bus: b, id: b.nextID, ch: make(chan T, buf), match: match}
	if b.closed {
		sub.close()
		return sub
	}
	b.subs[sub.id] = sub
	return sub
}

// Publish delivers v to every matching subscriber and reports how many
// received it. Coalesced deliveries are not counted.
func (b *Bus[T]) Publish(v T) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0
	}
	delivered := 0
	for _, sub := range b.subs {
		if sub.match != nil && !sub.match(v) {
			continue
		}
		select {
		case sub.ch <- v:
			delivered++
		default:
		}
	}
	return delivered
}

// Len reports the number of live subscriptions.
func (b *Bus[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Close detaches every subscriber.
func (b *Bus[T]) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for id, sub := range b.subs {
		delete(b.subs, id)
		sub.close()
	}
}
