package chat

import "strings"

// State is the whole conversation as seen by a view.
//
// Update methods return a new State and never share the Messages backing
// array with the receiver, so a snapshot handed to a view stays stable.
type State struct {
	Messages     []Message `json:"messages"`
	PendingInput string    `json:"pendingInput"`
	Busy         bool      `json:"isBusy"`
}

// CanSubmit reports whether a submission would be accepted.
func (s State) CanSubmit() bool {
	return !s.Busy && strings.TrimSpace(s.PendingInput) != ""
}

// Clone returns a deep copy of the state.
func (s State) Clone() State {
	out := s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	return out
}

// WithMessage appends msg to the end of the conversation.
func (s State) WithMessage(msg Message) State {
	out := s
	out.Messages = make([]Message, len(s.Messages), len(s.Messages)+1)
	copy(out.Messages, s.Messages)
	out.Messages = append(out.Messages, msg)
	return out
}

// WithInput replaces the pending input verbatim.
func (s State) WithInput(text string) State {
	out := s.Clone()
	out.PendingInput = text
	return out
}

// WithBusy sets the in-flight flag.
func (s State) WithBusy(busy bool) State {
	out := s.Clone()
	out.Busy = busy
	return out
}

// BeginSubmit starts a submission using id for the user message. When the
// state cannot submit, it is returned unchanged with ok=false.
func (s State) BeginSubmit(id int) (next State, sent Message, ok bool) {
	if !s.CanSubmit() {
		return s, Message{}, false
	}

	sent = UserMessage(s.PendingInput)
	sent.ID = id

	next = s.WithMessage(sent)
	next.PendingInput = ""
	next.Busy = true
	return next, sent, true
}
