package game

import (
	"sync"

	"github.com/autoreleasefool/hive-for-ios-sub001/internal/protocol"
	"github.com/google/uuid"
)

type EventType int

const (
	EventConnected EventType = iota
	EventAlreadyConnected
	EventMessage
)

func (t EventType) String() string {
	switch t {
	case EventConnected:
		return "connected"
	case EventAlreadyConnected:
		return "already_connected"
	case EventMessage:
		return "message"
	default:
		return "unknown"
	}
}

// Event is one entry of an EventStream. Message is set only for EventMessage.
type Event struct {
	Type    EventType
	Message protocol.ServerMessage
}

// EventStream fans the events of one connection attempt out to any number of
// subscribers, in publication order. It ends exactly once, either normally
// (nil error) or with a fault; nothing is delivered after that. Subscribers
// only see events published after they joined.
type EventStream struct {
	ID uuid.UUID

	mu       sync.Mutex
	subs     map[*Subscription]struct{}
	finished bool
	err      error
	done     chan struct{}
}

func newEventStream() *EventStream {
	return &EventStream{
		ID:   uuid.New(),
		subs: make(map[*Subscription]struct{}),
		done: make(chan struct{}),
	}
}

// failedStream is a stream that ended before anything was published.
func failedStream(err error) *EventStream {
	s := newEventStream()
	s.finish(err)
	return s
}

// Subscribe joins the stream. Subscribing to a finished stream yields a
// subscription that is already complete with the stream's error.
func (s *EventStream) Subscribe() *Subscription {
	sub := newSubscription(s)

	s.mu.Lock()
	if s.finished {
		err := s.err
		s.mu.Unlock()
		sub.finish(err)
		return sub
	}
	s.subs[sub] = struct{}{}
	s.mu.Unlock()

	return sub
}

// Done is closed when the stream ends.
func (s *EventStream) Done() <-chan struct{} {
	return s.done
}

// Err is the terminal fault, nil for a normal completion or a live stream.
func (s *EventStream) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *EventStream) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.finished
}

// publish reports false when the stream already ended and the event was dropped.
func (s *EventStream) publish(e Event) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finished {
		return false
	}
	for sub := range s.subs {
		sub.push(e)
	}
	return true
}

// finish ends the stream; only the first call has any effect.
func (s *EventStream) finish(err error) bool {
	s.mu.Lock()
	if s.finished {
		s.mu.Unlock()
		return false
	}
	s.finished = true
	s.err = err
	subs := s.subs
	s.subs = nil
	close(s.done)
	s.mu.Unlock()

	for sub := range subs {
		sub.finish(err)
	}
	return true
}

func (s *EventStream) unsubscribe(sub *Subscription) {
	s.mu.Lock()
	delete(s.subs, sub)
	s.mu.Unlock()
}

// Subscription is one consumer's view of an EventStream. Events are queued
// without bound so the publisher never waits on a slow consumer. Its delivery
// goroutine exits only once Events has been drained to the end or Cancel is
// called; a consumer that stops reading early must Cancel.
type Subscription struct {
	stream *EventStream

	mu       sync.Mutex
	queue    []Event
	finished bool
	err      error

	wake      chan struct{}
	events    chan Event
	cancel    chan struct{}
	cancelOne sync.Once
	done      chan struct{}
}

func newSubscription(stream *EventStream) *Subscription {
	sub := &Subscription{
		stream: stream,
		wake:   make(chan struct{}, 1),
		events: make(chan Event),
		cancel: make(chan struct{}),
		done:   make(chan struct{}),
	}
	go sub.pump()
	return sub
}

// Stream returns the shared stream this subscription reads from.
func (sub *Subscription) Stream() *EventStream {
	return sub.stream
}

// Events is closed after the last event once the stream has ended or the
// subscription was cancelled.
func (sub *Subscription) Events() <-chan Event {
	return sub.events
}

// Err is the stream's terminal error; meaningful once Events is closed.
func (sub *Subscription) Err() error {
	sub.mu.Lock()
	defer sub.mu.Unlock()
	return sub.err
}

// Cancel stops delivery to this subscriber without affecting the stream.
func (sub *Subscription) Cancel() {
	sub.cancelOne.Do(func() {
		close(sub.cancel)
	})
	sub.stream.unsubscribe(sub)
	<-sub.done
}

func (sub *Subscription) push(e Event) {
	sub.mu.Lock()
	sub.queue = append(sub.queue, e)
	sub.mu.Unlock()
	sub.signal()
}

func (sub *Subscription) finish(err error) {
	sub.mu.Lock()
	sub.finished = true
	sub.err = err
	sub.mu.Unlock()
	sub.signal()
}

func (sub *Subscription) signal() {
	select {
	case sub.wake <- struct{}{}:
	default:
	}
}

func (sub *Subscription) pump() {
	defer close(sub.done)
	defer close(sub.events)

	for {
		sub.mu.Lock()
		if len(sub.queue) == 0 {
			finished := sub.finished
			sub.mu.Unlock()
			if finished {
				return
			}
			select {
			case <-sub.wake:
				continue
			case <-sub.cancel:
				return
			}
		}
		e := sub.queue[0]
		sub.queue[0] = Event{}
		sub.queue = sub.queue[1:]
		sub.mu.Unlock()

		select {
		case sub.events <- e:
		case <-sub.cancel:
			return
		}
	}
}
