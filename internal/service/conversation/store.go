package conversation

import (
	"sync"

	"github.com/zhouzirui/z-chat/internal/model/chat"
)

// Store owns the conversation state of a single session.
//
// Every mutation publishes a snapshot to subscribers. Subscribers only ever
// see the latest snapshot: a slow reader skips intermediate states but never
// misses the final one.
type Store struct {
	mu     sync.Mutex
	state  chat.State
	nextID int
	subs   map[int]chan chat.State
	subSeq int
}

// NewStore returns an empty store. Message ids start at 1.
func NewStore() *Store {
	return &Store{
		state:  chat.State{Messages: make([]chat.Message, 0, 16)},
		nextID: 1,
		subs:   make(map[int]chan chat.State),
	}
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() chat.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// SetInput replaces the pending input verbatim. Edits are accepted while busy.
func (s *Store) SetInput(text string) chat.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.state.WithInput(text)
	s.publishLocked()
	return s.state.Clone()
}

// SetBusy toggles the in-flight flag.
func (s *Store) SetBusy(busy bool) chat.State {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.state.WithBusy(busy)
	s.publishLocked()
	return s.state.Clone()
}

// AppendMessage numbers msg and adds it to the end of the conversation.
func (s *Store) AppendMessage(msg chat.Message) chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg = s.appendLocked(msg)
	s.publishLocked()
	return msg
}

// Begin starts a submission. It is a no-op returning ok=false while busy or
// while the pending input is blank.
func (s *Store) Begin() (sent chat.Message, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, sent, ok := s.state.BeginSubmit(s.nextID)
	if !ok {
		return chat.Message{}, false
	}

	s.nextID++
	s.state = next
	s.publishLocked()
	return sent, true
}

// Complete appends the reply and clears the in-flight flag.
func (s *Store) Complete(reply chat.Message) chat.Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	reply = s.appendLocked(reply)
	s.state = s.state.WithBusy(false)
	s.publishLocked()
	return reply
}

// Subscribe returns a channel receiving state snapshots, primed with the
// current one, and a func releasing the subscription.
func (s *Store) Subscribe() (<-chan chat.State, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.subSeq
	s.subSeq++

	ch := make(chan chat.State, 1)
	ch <- s.state.Clone()
	s.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if sub, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(sub)
			}
		})
	}
	return ch, cancel
}

// Close releases every subscriber.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, ch := range s.subs {
		delete(s.subs, id)
		close(ch)
	}
}

func (s *Store) appendLocked(msg chat.Message) chat.Message {
	msg.ID = s.nextID
	s.nextID++
	s.state = s.state.WithMessage(msg)
	return msg
}

func (s *Store) publishLocked() {
	for _, ch := range s.subs {
		snapshot := s.state.Clone()
		select {
		case ch <- snapshot:
		default:
			// drop the stale snapshot and replace it
			select {
			case <-ch:
			default:
			}
			ch <- snapshot
		}
	}
}
