// Package feed turns a store's snapshot callbacks into a single-consumer stream of typed events.
package feed

import (
	"sync"
	"sync/atomic"

	"famjam-cli/internal/model"
	"famjam-cli/internal/remote"
)

// Source is the subscribe half of remote.Store.
type Source interface {
	Subscribe(board string, onSnapshot func([]remote.Doc), onError func(error)) (cancel func())
}

// Event is either a full snapshot of the board (Err == nil) or the terminal failure of the
// subscription. SubID identifies the subscription that produced it.
type Event struct {
	SubID uint64
	Tasks []model.Task
	Err   error
}

var lastSubID atomic.Uint64

// Subscription holds one live board subscription.
//
// Snapshots replace each other: if the consumer has not read the previous snapshot yet it is
// dropped in favour of the newer one. After an error event or Cancel the channel is closed.
type Subscription struct {
	id uint64
	ch chan Event

	// mu guards closed and stop. The source may call back before Subscribe has returned
	// its cancel func, so stop is only ever read and cleared under mu.
	mu     sync.Mutex
	closed bool
	stop   func()

	cancelOnce sync.Once
}

// Subscribe starts delivery for board. Tasks are decoded and defaulted here, once.
func Subscribe(src Source, board string) *Subscription {
	s := &Subscription{
		id: lastSubID.Add(1),
		ch: make(chan Event, 1),
	}
	stop := src.Subscribe(board, s.onSnapshot, s.onError)

	s.mu.Lock()
	s.stop = stop
	release := s.closed
	s.mu.Unlock()
	if release {
		// Failed or cancelled before the source handed back its cancel func.
		s.releaseSource()
	}
	return s
}

func (s *Subscription) ID() uint64 { return s.id }
func (s *Subscription) Events() <-chan Event { return s.ch }

// Cancel stops delivery and closes the event channel. Safe to call more than once.
func (s *Subscription) Cancel() {
	s.cancelOnce.Do(func() {
		s.mu.Lock()
		if !s.closed {
			s.closed = true
			close(s.ch)
		}
		s.mu.Unlock()
		s.releaseSource()
	})
}

func (s *Subscription) onSnapshot(docs []remote.Doc) {
	tasks := make([]model.Task, 0, len(docs))
	for _, d := range docs {
		tasks = append(tasks, model.Decode(d.ID, d.Fields))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.replacePending(Event{SubID: s.id, Tasks: tasks})
}

func (s *Subscription) onError(err error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.replacePending(Event{SubID: s.id, Err: err})
	s.closed = true
	close(s.ch)
	s.mu.Unlock()

	// Terminal: release the store side too. No auto-retry.
	s.releaseSource()
}

// releaseSource calls the source's cancel func at most once. If Subscribe has not stored it
// yet this is a no-op and Subscribe releases it on return.
func (s *Subscription) releaseSource() {
	s.mu.Lock()
	stop := s.stop
	s.stop = nil
	s.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// replacePending must be called with mu held. Only this type sends on ch, so after draining
// there is always room in the one-slot buffer.
func (s *Subscription) replacePending(ev Event) {
	select {
	case <-s.ch:
	default:
	}
	s.ch <- ev
}
