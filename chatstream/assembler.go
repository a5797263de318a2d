package chatstream

import (
	"errors"
	"strings"
)

// Roles
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ErrFinalized is returned when appending to a finalized Assembler
var ErrFinalized = errors.New("message already finalized")

// Message is one entry of a conversation
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationLog is an ordered list of Messages.
// It is append-only except for the in-place update of the message an Assembler is building.
// A ConversationLog is not safe for concurrent use.
type ConversationLog struct {
	messages []Message
}

// Append adds m to the end of the log and returns its index
func (l *ConversationLog) Append(m Message) int {
	l.messages = append(l.messages, m)
	return len(l.messages) - 1
}

// Len returns the number of messages
func (l *ConversationLog) Len() int {
	return len(l.messages)
}

// At returns the message at index i
func (l *ConversationLog) At(i int) Message {
	return l.messages[i]
}

func (l *ConversationLog) replace(i int, m Message) {
	l.messages[i] = m
}

// Snapshot returns a copy of the messages
func (l *ConversationLog) Snapshot() []Message {
	messages := make([]Message, len(l.messages))
	copy(messages, l.messages)
	return messages
}

// Assembler folds the fragments of one response into a single assistant message of a ConversationLog.
// The message is created by the first non-empty fragment.
type Assembler struct {
	log       *ConversationLog
	index     int
	content   strings.Builder
	finalized bool
}

// NewAssembler returns an Assembler writing to log
func NewAssembler(log *ConversationLog) *Assembler {
	return &Assembler{log: log, index: -1}
}

// Append adds fragment to the message being built and returns the updated message
func (a *Assembler) Append(fragment string) (Message, error) {
	if a.finalized {
		return Message{}, ErrFinalized
	}
	if fragment == "" {
		return a.Message(), nil
	}

	a.content.WriteString(fragment)
	m := Message{Role: RoleAssistant, Content: a.content.String()}

	if a.index < 0 {
		a.index = a.log.Append(m)
	} else {
		a.log.replace(a.index, m)
	}

	return m, nil
}

// Message returns the message built so far, or a zero Message if no fragment has arrived
func (a *Assembler) Message() Message {
	if a.index < 0 {
		return Message{}
	}
	return a.log.At(a.index)
}

// Started reports whether a message has been created
func (a *Assembler) Started() bool {
	return a.index >= 0
}

// Finalize stops further mutation of the message
func (a *Assembler) Finalize() {
	a.finalized = true
}

// Finalized reports whether Finalize has been called
func (a *Assembler) Finalized() bool {
	return a.finalized
}
