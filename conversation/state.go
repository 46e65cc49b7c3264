package conversation

import (
	"encoding/json"
	"fmt"
	"sync"

	ai "github.com/spetersoncode/agentry"
)

// InvariantError reports a message that would break the log's invariants.
type InvariantError struct {
	// Index is the position the offending message would have taken.
	Index  int
	Reason string
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("conversation: message %d: %s", e.Index, e.Reason)
}

// State is an append-only, ordered message log.
// It is safe for concurrent use.
type State struct {
	mu       sync.RWMutex
	messages []ai.Message
	calls    map[string]bool // call id -> answered
}

// New creates a State seeded with history. The history must satisfy the
// same invariants as Append.
func New(history ...ai.Message) (*State, error) {
	s := &State{calls: make(map[string]bool)}
	if err := s.Append(history...); err != nil {
		return nil, err
	}
	return s, nil
}

// Append validates msgs against the log and adds them. Either all messages
// are appended or none are. Messages without an ID are assigned one.
func (s *State) Append(msgs ...ai.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make(map[string]bool, len(s.calls))
	for id, answered := range s.calls {
		pending[id] = answered
	}

	staged := make([]ai.Message, 0, len(msgs))
	for i, msg := range msgs {
		idx := len(s.messages) + i
		if err := check(idx, msg, pending); err != nil {
			return err
		}
		c := msg.Clone()
		if c.ID == "" {
			c.ID = ai.GenerateMessageID()
		}
		staged = append(staged, c)
	}

	s.messages = append(s.messages, staged...)
	s.calls = pending
	return nil
}

func check(idx int, msg ai.Message, calls map[string]bool) error {
	switch msg.Role {
	case ai.RoleUser:
	case ai.RoleAssistant:
		for _, tc := range msg.ToolCalls {
			if tc.ID == "" {
				return &InvariantError{Index: idx, Reason: fmt.Sprintf("tool call %q has no id", tc.Name)}
			}
			if _, dup := calls[tc.ID]; dup {
				return &InvariantError{Index: idx, Reason: fmt.Sprintf("duplicate tool call id %q", tc.ID)}
			}
			calls[tc.ID] = false
		}
	case ai.RoleTool:
		if len(msg.ToolResults) == 0 {
			return &InvariantError{Index: idx, Reason: "tool message has no results"}
		}
		for _, tr := range msg.ToolResults {
			answered, ok := calls[tr.ToolCallID]
			if !ok {
				return &InvariantError{Index: idx, Reason: fmt.Sprintf("tool result %q has no matching call", tr.ToolCallID)}
			}
			if answered {
				return &InvariantError{Index: idx, Reason: fmt.Sprintf("tool call %q already has a result", tr.ToolCallID)}
			}
			calls[tr.ToolCallID] = true
		}
	default:
		return &InvariantError{Index: idx, Reason: fmt.Sprintf("role %q cannot be stored", msg.Role)}
	}
	if msg.Role != ai.RoleAssistant && len(msg.ToolCalls) > 0 {
		return &InvariantError{Index: idx, Reason: fmt.Sprintf("%s message carries tool calls", msg.Role)}
	}
	if msg.Role != ai.RoleTool && len(msg.ToolResults) > 0 {
		return &InvariantError{Index: idx, Reason: fmt.Sprintf("%s message carries tool results", msg.Role)}
	}
	return nil
}

// Messages returns a copy of the log.
func (s *State) Messages() []ai.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.messages)
}

// Since returns copies of the messages from index n on.
func (s *State) Since(n int) []ai.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n < 0 {
		n = 0
	}
	if n >= len(s.messages) {
		return nil
	}
	return cloneAll(s.messages[n:])
}

// Len returns the number of messages.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Last returns the most recent message.
func (s *State) Last() (ai.Message, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.messages) == 0 {
		return ai.Message{}, false
	}
	return s.messages[len(s.messages)-1].Clone(), true
}

// Unanswered returns the IDs of tool calls that have no result yet.
func (s *State) Unanswered() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for _, msg := range s.messages {
		for _, tc := range msg.ToolCalls {
			if !s.calls[tc.ID] {
				ids = append(ids, tc.ID)
			}
		}
	}
	return ids
}

// Clone returns an independent copy of the State.
func (s *State) Clone() *State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c := &State{
		messages: cloneAll(s.messages),
		calls:    make(map[string]bool, len(s.calls)),
	}
	for id, answered := range s.calls {
		c.calls[id] = answered
	}
	return c
}

// Export encodes the log as a JSON array of messages.
func (s *State) Export() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	msgs := s.messages
	if msgs == nil {
		msgs = []ai.Message{}
	}
	return json.Marshal(msgs)
}

// Import decodes an exported log and validates it.
func Import(data []byte) (*State, error) {
	var msgs []ai.Message
	if err := json.Unmarshal(data, &msgs); err != nil {
		return nil, fmt.Errorf("conversation: import: %w", err)
	}
	return New(msgs...)
}

func cloneAll(msgs []ai.Message) []ai.Message {
	out := make([]ai.Message, len(msgs))
	for i, m := range msgs {
		out[i] = m.Clone()
	}
	return out
}
